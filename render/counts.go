package render

import (
	"fmt"
	"image"
	"strings"

	"gocv.io/x/gocv"

	vehiclecount "github.com/roadmetrics/go-vehiclecount"
)

// CountStyle defines the parameters for rendering the live count block
type CountStyle struct {
	// Origin is the top left position of the count block
	Origin image.Point
	// LineHeight is the vertical spacing between count lines
	LineHeight int
	// LabelColor is the text color of the per label count lines
	LabelColor Font
	// TotalColor is the text color of the total line
	TotalColor Font
}

// DefaultCountStyle returns default count block settings
func DefaultCountStyle() CountStyle {

	labelFont := DefaultFont()
	labelFont.Color = Green
	labelFont.Scale = 0.8
	labelFont.Thickness = 2

	totalFont := labelFont
	totalFont.Color = Orange
	totalFont.Scale = 0.9

	return CountStyle{
		Origin:     image.Pt(20, 30),
		LineHeight: 30,
		LabelColor: labelFont,
		TotalColor: totalFont,
	}
}

// Counts draws the running per label counts and total onto the frame, one
// line per label in lexicographic order
func Counts(img *gocv.Mat, snapshot vehiclecount.CountSnapshot, style CountStyle) {

	y := style.Origin.Y

	for _, label := range snapshot.Labels() {

		text := fmt.Sprintf("%s: %d", titleCase(label), snapshot.Counts[label])

		gocv.PutTextWithParams(img, text, image.Pt(style.Origin.X, y),
			style.LabelColor.Face, style.LabelColor.Scale, style.LabelColor.Color,
			style.LabelColor.Thickness, style.LabelColor.LineType, false)

		y += style.LineHeight
	}

	gocv.PutTextWithParams(img, fmt.Sprintf("Total: %d", snapshot.Total),
		image.Pt(style.Origin.X, y),
		style.TotalColor.Face, style.TotalColor.Scale, style.TotalColor.Color,
		style.TotalColor.Thickness, style.TotalColor.LineType, false)
}

// titleCase upper cases the first letter of a label for display
func titleCase(label string) string {
	if label == "" {
		return label
	}
	return strings.ToUpper(label[:1]) + label[1:]
}
