package detect

// candidate is a filtered bounding box prior to Non-Maximum Suppression,
// held in (x, y, width, height) format in model input coordinates
type candidate struct {
	x, y, w, h float32
	classID    int
	score      float32
}

// calcIoU calculates the Intersection over Union between two candidate
// boxes
func calcIoU(a, b candidate) float32 {

	xmin := maxFloat(a.x, b.x)
	ymin := maxFloat(a.y, b.y)
	xmax := minFloat(a.x+a.w, b.x+b.w)
	ymax := minFloat(a.y+a.h, b.y+b.h)

	iw := xmax - xmin + 1
	ih := ymax - ymin + 1

	if iw <= 0 || ih <= 0 {
		return 0
	}

	union := a.w*a.h + b.w*b.h - iw*ih

	if union <= 0 {
		return 0
	}

	return iw * ih / union
}

// nms performs per class Non-Maximum Suppression over the candidates,
// which must be sorted by descending score.  It returns a flag per
// candidate marking those suppressed by a higher scoring overlapping box
// of the same class.
func nms(candidates []candidate, threshold float32) []bool {

	suppressed := make([]bool, len(candidates))

	for i := 0; i < len(candidates); i++ {

		if suppressed[i] {
			continue
		}

		for j := i + 1; j < len(candidates); j++ {

			if suppressed[j] || candidates[j].classID != candidates[i].classID {
				continue
			}

			if calcIoU(candidates[i], candidates[j]) > threshold {
				suppressed[j] = true
			}
		}
	}

	return suppressed
}

// minFloat returns the smaller of two float32 values
func minFloat(a, b float32) float32 {
	if a < b {
		return a
	}
	return b
}

// maxFloat returns the larger of two float32 values
func maxFloat(a, b float32) float32 {
	if a > b {
		return a
	}
	return b
}
