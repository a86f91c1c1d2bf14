package detect

import "testing"

// TestResizerPreCalc checks letterbox scaling parameters for a wide frame
func TestResizerPreCalc(t *testing.T) {

	r := NewResizer(1920, 1080, 640, 640)
	defer r.Close()

	if !almostEqual(r.ScaleFactor(), 640.0/1920.0, 1e-5) {
		t.Errorf("expected scale %.5f, got %.5f", 640.0/1920.0, r.ScaleFactor())
	}

	if r.XPad() != 0 {
		t.Errorf("expected x padding 0, got %d", r.XPad())
	}

	// 1080 * (640/1920) = 360, padded to 640
	if r.YPad() != (640-360)/2 {
		t.Errorf("expected y padding %d, got %d", (640-360)/2, r.YPad())
	}
}

// TestTranslateBox checks model input coordinates map back to the source
// image with padding removed and clamping applied
func TestTranslateBox(t *testing.T) {

	r := NewResizer(1920, 1080, 640, 640)
	defer r.Close()

	// a box spanning the full letterboxed image area maps to the full frame
	full := r.TranslateBox(BoxRect{Left: 0, Top: 140, Right: 640, Bottom: 500})

	if full.Left != 0 || full.Top != 0 || full.Right != 1920 || full.Bottom != 1080 {
		t.Errorf("expected full frame box, got %+v", full)
	}

	// a box reaching into the padding clamps to the frame bounds
	clamped := r.TranslateBox(BoxRect{Left: -20, Top: 0, Right: 700, Bottom: 640})

	if clamped.Left != 0 || clamped.Top != 0 ||
		clamped.Right != 1920 || clamped.Bottom != 1080 {
		t.Errorf("expected clamped box, got %+v", clamped)
	}

	// a centered box scales by the inverse letterbox factor
	mid := r.TranslateBox(BoxRect{Left: 320, Top: 320, Right: 480, Bottom: 400})

	if mid.Left != 960 || mid.Top != 540 || mid.Right != 1440 || mid.Bottom != 780 {
		t.Errorf("expected box (960,540)-(1440,780), got %+v", mid)
	}
}
