package detect

import (
	"fmt"
	"sort"
)

// YOLOv8 defines the struct for YOLOv8 model inference post processing
type YOLOv8 struct {
	// Params are the Model configuration parameters
	Params YOLOv8Params
	// idGen provides the next number for each detection result ID
	idGen *idGenerator
}

// YOLOv8Params defines the struct containing the YOLOv8 parameters to use
// for post processing operations
type YOLOv8Params struct {
	// BoxThreshold is the minimum probability score required for a bounding
	// box region to be considered for processing
	BoxThreshold float32
	// NMSThreshold is the Non-Maximum Suppression threshold used for
	// defining the maximum allowed Intersection Over Union (IoU) between
	// two bounding boxes for both to be kept
	NMSThreshold float32
	// ObjectClassNum is the number of different object classes the Model
	// has been trained with
	ObjectClassNum int
	// MaxObjectNumber is the maximum number of objects detected that can
	// be returned
	MaxObjectNumber int
}

// YOLOv8COCOParams returns an instance of YOLOv8Params configured with
// default values for a Model trained on the COCO dataset featuring:
// - Object Classes: 80
// - Box Threshold: 0.25
// - NMS Threshold: 0.45
// - Maximum Object Number: 64
func YOLOv8COCOParams() YOLOv8Params {
	return YOLOv8Params{
		BoxThreshold:    0.25,
		NMSThreshold:    0.45,
		ObjectClassNum:  80,
		MaxObjectNumber: 64,
	}
}

// NewYOLOv8 returns an instance of the YOLOv8 post processor
func NewYOLOv8(p YOLOv8Params) *YOLOv8 {
	return &YOLOv8{
		Params: p,
		idGen:  newIDGenerator(),
	}
}

// DetectObjects decodes the raw DNN forward pass output into object
// detection results.  The output tensor has shape
// [4+ObjectClassNum, boxes] flattened row major: four box channels
// (center x, center y, width, height in model input pixels) followed by
// one score channel per class.  When a resizer is given, bounding boxes
// are translated from model input coordinates back to the source image.
func (y *YOLOv8) DetectObjects(output []float32, boxes int,
	resizer *Resizer) ([]DetectResult, error) {

	channels := 4 + y.Params.ObjectClassNum

	if boxes <= 0 || len(output) < channels*boxes {
		return nil, fmt.Errorf("output tensor has %d values, expected %d",
			len(output), channels*boxes)
	}

	var candidates []candidate

	for i := 0; i < boxes; i++ {

		// highest scoring class for this box
		classID := -1
		score := float32(0)

		for c := 0; c < y.Params.ObjectClassNum; c++ {
			if s := output[(4+c)*boxes+i]; s > score {
				score = s
				classID = c
			}
		}

		if score < y.Params.BoxThreshold {
			continue
		}

		cx := output[0*boxes+i]
		cy := output[1*boxes+i]
		w := output[2*boxes+i]
		h := output[3*boxes+i]

		candidates = append(candidates, candidate{
			x:       cx - w/2,
			y:       cy - h/2,
			w:       w,
			h:       h,
			classID: classID,
			score:   score,
		})
	}

	if len(candidates) == 0 {
		// no object detected
		return nil, nil
	}

	sort.Slice(candidates, func(i, j int) bool {
		return candidates[i].score > candidates[j].score
	})

	suppressed := nms(candidates, y.Params.NMSThreshold)

	var results []DetectResult

	for i, cand := range candidates {

		if suppressed[i] {
			continue
		}

		if len(results) >= y.Params.MaxObjectNumber {
			break
		}

		box := BoxRect{
			Left:   int(cand.x),
			Top:    int(cand.y),
			Right:  int(cand.x + cand.w),
			Bottom: int(cand.y + cand.h),
		}

		if resizer != nil {
			box = resizer.TranslateBox(box)
		}

		results = append(results, DetectResult{
			Class:       cand.classID,
			Box:         box,
			Probability: cand.score,
			ID:          y.idGen.getNext(),
		})
	}

	return results, nil
}
