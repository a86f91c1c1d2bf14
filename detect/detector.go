/*
Package detect runs YOLOv8 object detection on video frames using the GoCV
DNN module with an ONNX model file, and decodes the network output into
bounding box detection results.
*/
package detect

import (
	"fmt"
	"image"
	"image/color"
	"sync"

	"gocv.io/x/gocv"
)

// Detector runs YOLOv8 inference on single frames using an ONNX model
// loaded into the GoCV DNN module
type Detector struct {
	// net is the loaded DNN network
	net gocv.Net
	// inputSize is the square model input dimension in pixels, eg: 640
	inputSize int
	// process is the YOLO object detection post processor
	process *YOLOv8
	// resizer caches letterbox parameters for the current frame size
	resizer *Resizer
}

// NewDetector loads the given ONNX model file and returns a Detector with
// the given square input size and post processing parameters
func NewDetector(modelFile string, inputSize int, p YOLOv8Params) (*Detector, error) {

	net := gocv.ReadNetFromONNX(modelFile)

	if net.Empty() {
		return nil, fmt.Errorf("error loading model file: %s", modelFile)
	}

	return &Detector{
		net:       net,
		inputSize: inputSize,
		process:   NewYOLOv8(p),
	}, nil
}

// Close frees resources allocated by the network
func (d *Detector) Close() error {

	if d.resizer != nil {
		if err := d.resizer.Close(); err != nil {
			return err
		}
		d.resizer = nil
	}

	return d.net.Close()
}

// Detect runs object detection on a single BGR frame and returns results
// with bounding boxes in the frame's coordinates
func (d *Detector) Detect(img gocv.Mat) ([]DetectResult, error) {

	if img.Empty() {
		return nil, fmt.Errorf("input frame is empty")
	}

	// renew cached letterbox parameters if the frame size changed
	if d.resizer == nil || d.resizer.SrcWidth() != img.Cols() ||
		d.resizer.SrcHeight() != img.Rows() {

		if d.resizer != nil {
			d.resizer.Close()
		}

		d.resizer = NewResizer(img.Cols(), img.Rows(), d.inputSize, d.inputSize)
	}

	square := gocv.NewMat()
	defer square.Close()

	d.resizer.LetterBoxResize(img, &square, color.RGBA{R: 114, G: 114, B: 114, A: 255})

	// scale pixel values to [0,1] and swap BGR to RGB
	blob := gocv.BlobFromImage(square, 1.0/255.0,
		image.Pt(d.inputSize, d.inputSize), gocv.NewScalar(0, 0, 0, 0),
		true, false)
	defer blob.Close()

	d.net.SetInput(blob, "")

	output := d.net.Forward("")
	defer output.Close()

	data, err := output.DataPtrFloat32()

	if err != nil {
		return nil, fmt.Errorf("error reading network output: %w", err)
	}

	channels := 4 + d.process.Params.ObjectClassNum
	boxes := output.Total() / channels

	return d.process.DetectObjects(data, boxes, d.resizer)
}

// Pool is a simple pool of detectors used to run inference on multiple
// frames in parallel
type Pool struct {
	// pool of detectors
	detectors chan *Detector
	// size of pool
	size  int
	close sync.Once
}

// NewPool creates a new detector pool of the given size, loading the model
// once per detector
func NewPool(size int, modelFile string, inputSize int, p YOLOv8Params) (*Pool, error) {

	pool := &Pool{
		detectors: make(chan *Detector, size),
		size:      size,
	}

	for i := 0; i < size; i++ {
		d, err := NewDetector(modelFile, inputSize, p)

		if err != nil {
			// close any instances that may have been created before
			// receiving the error
			pool.Close()
			return nil, err
		}

		// attach to pool
		pool.Return(d)
	}

	return pool, nil
}

// Get a detector from the pool
func (p *Pool) Get() *Detector {
	return <-p.detectors
}

// Return a detector to the pool
func (p *Pool) Return(d *Detector) {
	select {
	case p.detectors <- d:
	default:
		// pool is full or closed
	}
}

// Close the pool and all detectors in it
func (p *Pool) Close() {
	p.close.Do(func() {
		// close channel
		close(p.detectors)

		// close all detectors
		for next := range p.detectors {
			_ = next.Close()
		}
	})
}
