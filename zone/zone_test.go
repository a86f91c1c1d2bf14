package zone

import (
	"image"
	"math"
	"testing"

	"github.com/roadmetrics/go-vehiclecount/detect"
)

// square returns a 100x100 test zone at the origin
func square(t *testing.T) *Zone {
	t.Helper()

	z, err := NewZone("test", []image.Point{
		image.Pt(0, 0), image.Pt(100, 0), image.Pt(100, 100), image.Pt(0, 100),
	})

	if err != nil {
		t.Fatalf("error creating zone: %v", err)
	}

	return z
}

// TestOverlap checks the inside area fraction for boxes in, across and
// outside the zone
func TestOverlap(t *testing.T) {

	z := square(t)

	tests := []struct {
		name string
		box  detect.BoxRect
		want float64
	}{
		{"fully inside", detect.BoxRect{Left: 10, Top: 10, Right: 50, Bottom: 50}, 1.0},
		{"half inside", detect.BoxRect{Left: 50, Top: 0, Right: 150, Bottom: 100}, 0.5},
		{"outside", detect.BoxRect{Left: 200, Top: 200, Right: 300, Bottom: 300}, 0.0},
		{"quarter inside", detect.BoxRect{Left: 50, Top: 50, Right: 150, Bottom: 150}, 0.25},
	}

	for _, tc := range tests {
		got := z.Overlap(tc.box)

		if math.Abs(got-tc.want) > 1e-6 {
			t.Errorf("%s: expected overlap %.2f, got %.4f", tc.name, tc.want, got)
		}
	}
}

// TestContains checks the overlap threshold behaviour
func TestContains(t *testing.T) {

	z := square(t)

	half := detect.BoxRect{Left: 50, Top: 0, Right: 150, Bottom: 100}

	if !z.Contains(half, 0.5) {
		t.Error("expected box with half overlap to be contained at 0.5")
	}

	if z.Contains(half, 0.6) {
		t.Error("expected box with half overlap to be excluded at 0.6")
	}
}

// TestOverlapDegenerateBox checks a zero area box reports no overlap
func TestOverlapDegenerateBox(t *testing.T) {

	z := square(t)

	if got := z.Overlap(detect.BoxRect{Left: 10, Top: 10, Right: 10, Bottom: 10}); got != 0 {
		t.Errorf("expected overlap 0 for zero area box, got %.4f", got)
	}
}

// TestNewZoneValidation checks degenerate polygons are rejected
func TestNewZoneValidation(t *testing.T) {

	if _, err := NewZone("bad", []image.Point{image.Pt(0, 0), image.Pt(1, 1)}); err == nil {
		t.Error("expected error for polygon with 2 points, got nil")
	}
}

// TestParsePoints checks polygon string parsing
func TestParsePoints(t *testing.T) {

	points, err := ParsePoints("100,200 500,200 500,600")

	if err != nil {
		t.Fatalf("error parsing points: %v", err)
	}

	want := []image.Point{image.Pt(100, 200), image.Pt(500, 200), image.Pt(500, 600)}

	if len(points) != len(want) {
		t.Fatalf("expected %v, got %v", want, points)
	}

	for i := range want {
		if points[i] != want[i] {
			t.Errorf("point %d: expected %v, got %v", i, want[i], points[i])
		}
	}

	if _, err := ParsePoints("100;200"); err == nil {
		t.Error("expected error for malformed point, got nil")
	}
}
