package tracker

// Tlwh (top-left x, top-left y, width, height) represents a 1x4 matrix
type Tlwh []float32

// Xyah (center x, center y, aspect ratio, height) represents a 1x4 matrix
type Xyah []float32

// Rect represents a bounding box in Tlwh (top-left x, top-left y, width,
// height) format
type Rect struct {
	Tlwh Tlwh
}

// NewRect creates a new Rect with given coordinates
func NewRect(x, y, width, height float32) Rect {
	return Rect{
		Tlwh: Tlwh{x, y, width, height},
	}
}

// X returns the x coordinate of the rectangle
func (r *Rect) X() float32 {
	return r.Tlwh[0]
}

// Y returns the y coordinate of the rectangle
func (r *Rect) Y() float32 {
	return r.Tlwh[1]
}

// Width returns the width of the rectangle
func (r *Rect) Width() float32 {
	return r.Tlwh[2]
}

// Height returns the height of the rectangle
func (r *Rect) Height() float32 {
	return r.Tlwh[3]
}

// TLX returns the top-left x coordinate of the rectangle
func (r *Rect) TLX() float32 {
	return r.Tlwh[0]
}

// TLY returns the top-left y coordinate of the rectangle
func (r *Rect) TLY() float32 {
	return r.Tlwh[1]
}

// BRX returns the bottom-right x coordinate of the rectangle
func (r *Rect) BRX() float32 {
	return r.Tlwh[0] + r.Tlwh[2]
}

// BRY returns the bottom-right y coordinate of the rectangle
func (r *Rect) BRY() float32 {
	return r.Tlwh[1] + r.Tlwh[3]
}

// CenterX returns the x coordinate of the rectangle's center point
func (r *Rect) CenterX() float32 {
	return r.Tlwh[0] + r.Tlwh[2]/2
}

// CenterY returns the y coordinate of the rectangle's center point
func (r *Rect) CenterY() float32 {
	return r.Tlwh[1] + r.Tlwh[3]/2
}

// ToXyah converts the rectangle to Xyah (center x, center y, aspect ratio,
// height) format used as the Kalman filter measurement
func (r *Rect) ToXyah() Xyah {
	return Xyah{
		r.Tlwh[0] + r.Tlwh[2]/2,
		r.Tlwh[1] + r.Tlwh[3]/2,
		r.Tlwh[2] / r.Tlwh[3],
		r.Tlwh[3],
	}
}

// RectFromXyah converts an Xyah measurement back to a Rect
func RectFromXyah(x Xyah) Rect {
	width := x[2] * x[3]
	height := x[3]

	return NewRect(x[0]-width/2, x[1]-height/2, width, height)
}

// CalcIoU calculates the Intersection over Union between this rectangle
// and another.  Returns 0 when the rectangles do not overlap.
func (r *Rect) CalcIoU(other Rect) float32 {

	boxArea := (other.Width() + 1) * (other.Height() + 1)

	iw := minFloat(r.BRX(), other.BRX()) - maxFloat(r.TLX(), other.TLX()) + 1

	if iw <= 0 {
		return 0
	}

	ih := minFloat(r.BRY(), other.BRY()) - maxFloat(r.TLY(), other.TLY()) + 1

	if ih <= 0 {
		return 0
	}

	ua := (r.BRX()-r.TLX()+1)*(r.BRY()-r.TLY()+1) + boxArea - iw*ih

	return iw * ih / ua
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
