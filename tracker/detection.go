package tracker

// Detection represents a single object detection handed to the tracker for
// one frame
type Detection struct {
	// Rect is the bounding box of the detected object
	Rect Rect
	// Label is the raw class id of the object detected
	Label int
	// Score is the confidence of the object detected
	Score float32
	// ID is a unique id assigned to the detection result which can be used
	// to match an input detection with the track it was associated to
	ID int64
}

// NewDetection is a constructor function for the Detection struct
func NewDetection(rect Rect, label int, score float32, id int64) Detection {
	return Detection{
		Rect:  rect,
		Label: label,
		Score: score,
		ID:    id,
	}
}
