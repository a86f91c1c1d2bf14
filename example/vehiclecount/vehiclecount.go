package main

import (
	"flag"
	"fmt"
	"log"
	"net/http"
	"time"

	"gocv.io/x/gocv"

	vehiclecount "github.com/roadmetrics/go-vehiclecount"
	"github.com/roadmetrics/go-vehiclecount/detect"
	"github.com/roadmetrics/go-vehiclecount/render"
	"github.com/roadmetrics/go-vehiclecount/tracker"
)

var (
	// FPS is the number of FPS to simulate
	FPS         = int64(30)
	FPSinterval = time.Duration(float64(time.Second) / float64(FPS))
)

// ResultFrame is a struct to wrap the gocv byte buffer and error result
type ResultFrame struct {
	Buf *gocv.NativeByteBuffer
	Err error
}

// Demo defines the struct for running the vehicle counting demo as a
// streaming HTTP server
type Demo struct {
	// vidBuffer buffers the video frames into memory
	vidBuffer []gocv.Mat
	// pool of detectors to perform inference in parallel
	pool *detect.Pool
	// track associates detections across frames into stable track ids
	track *tracker.Tracker
	// counter deduplicates track ids into the per class tally
	counter *vehiclecount.Counter
	// classes maps raw class ids to the vehicle labels counted
	classes *vehiclecount.ClassMap
	// classNames are the COCO labels the model was trained on
	classNames []string
	// trail is the track history used to draw motion trails
	trail *tracker.Trail
}

// NewDemo returns an instance of Demo, a streaming HTTP server showing
// video with vehicle counting overlays
func NewDemo(vidFile, modelFile string, inputSize int, poolSize int,
	boxThresh float64) (*Demo, error) {

	d := &Demo{
		classes: vehiclecount.VehicleClasses(),
		trail:   tracker.NewTrail(90),
	}

	err := d.bufferVideo(vidFile)

	if err != nil {
		return nil, fmt.Errorf("error buffering video: %w", err)
	}

	params := detect.YOLOv8COCOParams()
	params.BoxThreshold = float32(boxThresh)

	// create new pool
	d.pool, err = detect.NewPool(poolSize, modelFile, inputSize, params)

	if err != nil {
		return nil, fmt.Errorf("error creating detector pool: %w", err)
	}

	d.track = tracker.NewTracker(int(FPS), 30, 0.25, float32(boxThresh))

	d.counter, err = vehiclecount.NewCounter(d.classes)

	if err != nil {
		return nil, fmt.Errorf("error creating counter: %w", err)
	}

	d.classNames = cocoNames()

	return d, nil
}

// bufferVideo reads in the video frames and saves them to a buffer
func (d *Demo) bufferVideo(vidFile string) error {

	// open handle to read frames of video file
	video, err := gocv.VideoCaptureFile(vidFile)

	if err != nil {
		return err
	}

	defer video.Close()

	d.vidBuffer = make([]gocv.Mat, 0)

	for {
		img := gocv.NewMat()

		// read the next frame from the video
		if ok := video.Read(&img); !ok {
			// reached last video frame
			break
		}

		// check if the frame is empty
		if img.Empty() {
			continue
		}

		// push frame onto buffer
		d.vidBuffer = append(d.vidBuffer, img)
	}

	if len(d.vidBuffer) == 0 {
		return fmt.Errorf("no frames read from video file")
	}

	return nil
}

// Stream is the HTTP handler function used to stream video frames to browser
func (d *Demo) Stream(w http.ResponseWriter, r *http.Request) {

	log.Printf("New client connection established")

	w.Header().Set("Content-Type", "multipart/x-mixed-replace; boundary=frame")

	// pointer to position in video buffer
	frameNum := -1

	// used for calculating FPS
	frameCount := 0
	startTime := time.Now()
	fps := float64(0)

	ticker := time.NewTicker(FPSinterval)
	defer ticker.Stop()

	// chan to receive processed frames
	recvFrame := make(chan ResultFrame, 30)

loop:
	for {
		select {
		case <-r.Context().Done():
			log.Printf("Client disconnected")
			break loop

		// simulate reading a 30FPS camera
		case <-ticker.C:

			// increment pointer to next image in the video buffer
			frameNum++
			if frameNum > len(d.vidBuffer)-1 {
				frameNum = 0

				// the looped video is a new counting session
				d.track.Reset()
				d.counter.Reset()
				d.trail.Reset()
			}

			go d.ProcessFrame(d.vidBuffer[frameNum], recvFrame, fps)

		case buf := <-recvFrame:

			if buf.Err != nil {
				log.Printf("Error occured during ProcessFrame: %v", buf.Err)

			} else {
				// write the image to the response writer
				w.Write([]byte("--frame\r\n"))
				w.Write([]byte("Content-Type: image/jpeg\r\n\r\n"))
				w.Write(buf.Buf.GetBytes())
				w.Write([]byte("\r\n"))

				// flush the buffer
				flusher, ok := w.(http.Flusher)
				if ok {
					flusher.Flush()
				}

				buf.Buf.Close()
			}

			// calculate FPS
			frameCount++
			elapsed := time.Since(startTime).Seconds()

			if elapsed >= 1.0 {
				fps = float64(frameCount) / elapsed
				frameCount = 0
				startTime = time.Now()
			}
		}
	}

	// report the counts for the session so far
	fmt.Print(d.counter.Snapshot().Summary())
}

// ProcessFrame takes an image from the video, runs detection, tracking and
// counting on it, annotates the image and returns the result encoded as a
// JPG file
func (d *Demo) ProcessFrame(img gocv.Mat, retChan chan<- ResultFrame, fps float64) {

	resImg := gocv.NewMat()
	defer resImg.Close()

	// run object detection on frame
	detector := d.pool.Get()
	results, err := detector.Detect(img)
	d.pool.Return(detector)

	if err != nil {
		retChan <- ResultFrame{Err: fmt.Errorf("error detecting objects: %w", err)}
		return
	}

	// only vehicle classes are tracked and counted
	detections := make([]tracker.Detection, 0, len(results))

	for _, res := range results {

		if _, ok := d.classes.Classify(res.Class); !ok {
			continue
		}

		detections = append(detections, tracker.NewDetection(
			tracker.NewRect(float32(res.Box.Left), float32(res.Box.Top),
				float32(res.Box.Width()), float32(res.Box.Height())),
			res.Class, res.Probability, res.ID,
		))
	}

	tracks, err := d.track.Update(detections)

	if err != nil {
		retChan <- ResultFrame{Err: fmt.Errorf("error updating tracker: %w", err)}
		return
	}

	frameID := d.track.FrameID()

	for _, track := range tracks {
		d.trail.Add(track)

		if _, _, err := d.counter.Observe(track.GetTrackID(),
			track.GetLabel(), frameID); err != nil {
			log.Printf("Skipping observation for track %d: %v",
				track.GetTrackID(), err)
		}
	}

	// copy the source image and annotate the copy
	img.CopyTo(&resImg)
	d.AnnotateImg(resImg, tracks, fps, frameID)

	// encode the image to JPEG format
	buf, err := gocv.IMEncode(".jpg", resImg)

	retChan <- ResultFrame{
		Buf: buf,
		Err: err,
	}
}

// AnnotateImg draws the tracker boxes, trails, and running counts on the
// image
func (d *Demo) AnnotateImg(img gocv.Mat, tracks []*tracker.Track,
	fps float64, frameID int) {

	render.TrackerBoxes(&img, tracks, d.classNames, render.DefaultFont(), 2)
	render.Trail(&img, tracks, d.trail, render.DefaultTrailStyle())
	render.Counts(&img, d.counter.Snapshot(), render.DefaultCountStyle())

	stats := fmt.Sprintf("Frame: %d, FPS: %.2f, Objects: %d",
		frameID, fps, len(tracks))

	gocv.PutText(&img, stats, cornerPt, gocv.FontHersheyDuplex, 0.5,
		render.Red, 1)
}

func main() {
	// disable logging timestamps
	log.SetFlags(0)

	// read in cli flags
	modelFile := flag.String("m", "../data/yolov8n.onnx", "ONNX YOLOv8 model file")
	vidFile := flag.String("v", "../data/traffic.mp4", "Video file to run vehicle counting on")
	inputSize := flag.Int("size", 640, "Model input size in pixels")
	httpAddr := flag.String("a", "localhost:8080", "HTTP Address to run server on, format address:port")
	poolSize := flag.Int("s", 3, "Size of detector pool")
	boxThresh := flag.Float64("conf", 0.25, "Confidence threshold for detections")

	flag.Parse()

	demo, err := NewDemo(*vidFile, *modelFile, *inputSize, *poolSize, *boxThresh)

	if err != nil {
		log.Fatalf("Error creating demo: %v", err)
	}

	defer demo.pool.Close()

	http.HandleFunc("/stream", demo.Stream)

	// start http server
	log.Printf("Open browser and view video at http://%s/stream", *httpAddr)
	log.Fatal(http.ListenAndServe(*httpAddr, nil))
}
