package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"gocv.io/x/gocv"

	vehiclecount "github.com/roadmetrics/go-vehiclecount"
	"github.com/roadmetrics/go-vehiclecount/detect"
	"github.com/roadmetrics/go-vehiclecount/tracker"
	"github.com/roadmetrics/go-vehiclecount/zone"
)

// VehicleCounter ties the detection, tracking, and counting stages together
// for offline processing of a video file
type VehicleCounter struct {
	// detector runs YOLO inference on each frame
	detector *detect.Detector
	// track associates detections across frames into stable track ids
	track *tracker.Tracker
	// counter deduplicates track ids into the per class tally
	counter *vehiclecount.Counter
	// countZone optionally restricts counting to a region of the frame
	countZone *zone.Zone
	// minZoneOverlap is the box area fraction required inside the zone
	minZoneOverlap float64
	// evictWindow drops track records not seen within this many frames,
	// zero disables eviction
	evictWindow int
}

// NewVehicleCounter creates the processing pipeline for the given model
// and class map
func NewVehicleCounter(modelFile string, inputSize int, boxThresh float64,
	classes *vehiclecount.ClassMap) (*VehicleCounter, error) {

	params := detect.YOLOv8COCOParams()
	params.BoxThreshold = float32(boxThresh)

	detector, err := detect.NewDetector(modelFile, inputSize, params)

	if err != nil {
		return nil, fmt.Errorf("error creating detector: %w", err)
	}

	counter, err := vehiclecount.NewCounter(classes)

	if err != nil {
		detector.Close()
		return nil, fmt.Errorf("error creating counter: %w", err)
	}

	return &VehicleCounter{
		detector: detector,
		track:    tracker.NewTracker(30, 30, 0.25, float32(boxThresh)),
		counter:  counter,
	}, nil
}

// Close frees the detector resources
func (vc *VehicleCounter) Close() error {
	return vc.detector.Close()
}

// ProcessFrame runs one frame through detection, tracking, and counting
func (vc *VehicleCounter) ProcessFrame(img gocv.Mat) error {

	results, err := vc.detector.Detect(img)

	if err != nil {
		return fmt.Errorf("error detecting objects: %w", err)
	}

	detections := make([]tracker.Detection, 0, len(results))

	for _, res := range results {

		// objects outside the counting zone are withheld from tracking
		// and counting
		if vc.countZone != nil && !vc.countZone.Contains(res.Box, vc.minZoneOverlap) {
			continue
		}

		detections = append(detections, tracker.NewDetection(
			tracker.NewRect(float32(res.Box.Left), float32(res.Box.Top),
				float32(res.Box.Width()), float32(res.Box.Height())),
			res.Class, res.Probability, res.ID,
		))
	}

	tracks, err := vc.track.Update(detections)

	if err != nil {
		return fmt.Errorf("error updating tracker: %w", err)
	}

	frameID := vc.track.FrameID()

	for _, track := range tracks {
		if _, _, err := vc.counter.Observe(track.GetTrackID(),
			track.GetLabel(), frameID); err != nil {
			// a malformed observation is skipped, not fatal to the run
			log.Printf("Skipping observation for track %d: %v",
				track.GetTrackID(), err)
		}
	}

	if vc.evictWindow > 0 {
		vc.counter.Evict(frameID - vc.evictWindow)
	}

	return nil
}

// Run drains the video file frame by frame until the stream ends or the
// context is cancelled.  The counter state is valid and queryable whenever
// Run returns.
func (vc *VehicleCounter) Run(ctx context.Context, vidFile string) error {

	video, err := gocv.VideoCaptureFile(vidFile)

	if err != nil {
		return fmt.Errorf("error opening video file: %w", err)
	}

	defer video.Close()

	img := gocv.NewMat()
	defer img.Close()

	frames := 0

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		if ok := video.Read(&img); !ok {
			// reached last video frame
			return nil
		}

		if img.Empty() {
			continue
		}

		if err := vc.ProcessFrame(img); err != nil {
			return err
		}

		frames++

		if frames%100 == 0 {
			snap := vc.counter.Snapshot()
			log.Printf("Processed %d frames, counted %d vehicles", frames, snap.Total)
		}
	}
}

func main() {
	// disable logging timestamps
	log.SetFlags(0)

	// read in cli flags
	vidFile := flag.String("v", "../data/traffic.mp4", "Video file to count vehicles in")
	modelFile := flag.String("m", "../data/yolov8n.onnx", "ONNX YOLOv8 model file")
	inputSize := flag.Int("size", 640, "Model input size in pixels")
	boxThresh := flag.Float64("conf", 0.25, "Confidence threshold for detections")
	classFile := flag.String("l", "", "Class map file with id:label lines, defaults to COCO vehicle classes")
	zonePoly := flag.String("z", "", "Counting zone polygon as space delimited x,y points, eg: \"100,200 500,200 500,600\"")
	zoneMin := flag.Float64("zmin", 0.5, "Box area fraction required inside the counting zone")
	evict := flag.Int("evict", 0, "Evict track records not seen within this many frames, 0 disables")

	flag.Parse()

	classes := vehiclecount.VehicleClasses()

	if *classFile != "" {
		var err error
		classes, err = vehiclecount.LoadClassMap(*classFile)

		if err != nil {
			log.Fatalf("Error loading class map: %v", err)
		}
	}

	vc, err := NewVehicleCounter(*modelFile, *inputSize, *boxThresh, classes)

	if err != nil {
		log.Fatalf("Error creating vehicle counter: %v", err)
	}

	defer vc.Close()

	vc.evictWindow = *evict
	vc.minZoneOverlap = *zoneMin

	if *zonePoly != "" {
		points, err := zone.ParsePoints(*zonePoly)

		if err != nil {
			log.Fatalf("Error parsing zone polygon: %v", err)
		}

		vc.countZone, err = zone.NewZone("count", points)

		if err != nil {
			log.Fatalf("Error creating zone: %v", err)
		}
	}

	// interrupt cancels the processing loop, the tally is still valid and
	// reported below
	ctx, stop := signal.NotifyContext(context.Background(),
		os.Interrupt, syscall.SIGTERM)
	defer stop()

	err = vc.Run(ctx, *vidFile)

	if errors.Is(err, context.Canceled) {
		log.Println("Interrupted, reporting counts so far")
	} else if err != nil {
		log.Printf("Error processing video: %v", err)
	}

	fmt.Print(vc.counter.Snapshot().Summary())
}
