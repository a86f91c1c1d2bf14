/*
Package zone provides polygon counting zones.  A zone restricts counting to
a region of the frame, such as one approach of an intersection, by testing
how much of a detection's bounding box falls inside the polygon.
*/
package zone

import (
	"fmt"
	"image"
	"math"
	"strings"

	clipper "github.com/ctessum/go.clipper"

	"github.com/roadmetrics/go-vehiclecount/detect"
)

// Zone is a closed polygon region of the frame in pixel coordinates
type Zone struct {
	name    string
	polygon clipper.Path
}

// NewZone creates a zone from the given polygon points.  At least three
// points are required.
func NewZone(name string, points []image.Point) (*Zone, error) {

	if len(points) < 3 {
		return nil, fmt.Errorf("zone %q needs at least 3 points, got %d",
			name, len(points))
	}

	polygon := make(clipper.Path, 0, len(points))

	for _, pt := range points {
		polygon = append(polygon, &clipper.IntPoint{
			X: clipper.CInt(pt.X),
			Y: clipper.CInt(pt.Y),
		})
	}

	return &Zone{
		name:    name,
		polygon: polygon,
	}, nil
}

// Name returns the zone name
func (z *Zone) Name() string {
	return z.name
}

// Overlap returns the fraction of the bounding box area that falls inside
// the zone, in the range [0, 1]
func (z *Zone) Overlap(box detect.BoxRect) float64 {

	boxArea := float64(box.Width()) * float64(box.Height())

	if boxArea <= 0 {
		return 0
	}

	boxPath := clipper.Path{
		&clipper.IntPoint{X: clipper.CInt(box.Left), Y: clipper.CInt(box.Top)},
		&clipper.IntPoint{X: clipper.CInt(box.Right), Y: clipper.CInt(box.Top)},
		&clipper.IntPoint{X: clipper.CInt(box.Right), Y: clipper.CInt(box.Bottom)},
		&clipper.IntPoint{X: clipper.CInt(box.Left), Y: clipper.CInt(box.Bottom)},
	}

	c := clipper.NewClipper(clipper.IoNone)
	c.AddPath(boxPath, clipper.PtSubject, true)
	c.AddPath(z.polygon, clipper.PtClip, true)

	solution, ok := c.Execute1(clipper.CtIntersection,
		clipper.PftNonZero, clipper.PftNonZero)

	if !ok {
		return 0
	}

	inside := float64(0)

	for _, path := range solution {
		inside += math.Abs(clipper.Area(path))
	}

	return inside / boxArea
}

// Contains reports whether at least minOverlap of the bounding box area
// falls inside the zone
func (z *Zone) Contains(box detect.BoxRect, minOverlap float64) bool {
	return z.Overlap(box) >= minOverlap
}

// ParsePoints parses a polygon given as space separated "x,y" pairs,
// eg: "100,200 500,200 500,600 100,600"
func ParsePoints(s string) ([]image.Point, error) {

	var points []image.Point

	for _, pair := range strings.Fields(s) {

		var x, y int

		if _, err := fmt.Sscanf(pair, "%d,%d", &x, &y); err != nil {
			return nil, fmt.Errorf("malformed point %q: %w", pair, err)
		}

		points = append(points, image.Pt(x, y))
	}

	return points, nil
}
