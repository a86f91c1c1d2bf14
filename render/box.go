/*
Package render draws detection results, tracker output, and counting
overlays onto video frames using GoCV.
*/
package render

import (
	"fmt"
	"image"
	"image/color"

	"gocv.io/x/gocv"

	"github.com/roadmetrics/go-vehiclecount/detect"
	"github.com/roadmetrics/go-vehiclecount/tracker"
)

// DetectionBoxes renders the bounding boxes around the objects detected
func DetectionBoxes(img *gocv.Mat, detectResults []detect.DetectResult,
	classNames []string, font Font, lineThickness int) {

	for i, detResult := range detectResults {

		useClr := ClassColor(int64(i))

		rect := image.Rect(detResult.Box.Left, detResult.Box.Top,
			detResult.Box.Right, detResult.Box.Bottom)
		gocv.Rectangle(img, rect, useClr, lineThickness)

		text := fmt.Sprintf("%s %.2f",
			className(classNames, detResult.Class), detResult.Probability)

		drawBoxLabel(img, text, rect, useClr, font)
	}
}

// TrackerBoxes renders the bounding boxes around the objects being tracked,
// labelled with the object class and track id
func TrackerBoxes(img *gocv.Mat, tracks []*tracker.Track,
	classNames []string, font Font, lineThickness int) {

	for _, track := range tracks {

		useClr := ClassColor(track.GetTrackID())

		rect := image.Rect(int(track.GetRect().TLX()), int(track.GetRect().TLY()),
			int(track.GetRect().BRX()), int(track.GetRect().BRY()))
		gocv.Rectangle(img, rect, useClr, lineThickness)

		text := fmt.Sprintf("%s #%d",
			className(classNames, track.GetLabel()), track.GetTrackID())

		drawBoxLabel(img, text, rect, useClr, font)
	}
}

// className returns the name for a class id, falling back to the numeric id
// when no name is known
func className(classNames []string, class int) string {

	if class >= 0 && class < len(classNames) {
		return classNames[class]
	}

	return fmt.Sprintf("class %d", class)
}

// drawBoxLabel draws a filled label banner above the bounding box with the
// given text on it
func drawBoxLabel(img *gocv.Mat, text string, box image.Rectangle,
	clr color.RGBA, font Font) {

	textSize := gocv.GetTextSize(text, font.Face, font.Scale, font.Thickness)

	var leftX int

	switch font.Alignment {
	case Center:
		leftX = (box.Min.X+box.Max.X)/2 - textSize.X/2

	case Right:
		leftX = box.Max.X - textSize.X - font.RightPad

	case Left:
		fallthrough
	default:
		leftX = box.Min.X
	}

	banner := image.Rect(leftX,
		box.Min.Y-textSize.Y-font.TopPad-font.BottomPad,
		leftX+textSize.X+font.LeftPad+font.RightPad,
		box.Min.Y)

	// filled banner behind the label text
	gocv.RectangleWithParams(img, banner, clr, -1, font.LineType, 0)

	gocv.PutTextWithParams(img, text,
		image.Pt(leftX+font.LeftPad, box.Min.Y-font.BottomPad),
		font.Face, font.Scale, font.Color, font.Thickness, font.LineType, false)
}
