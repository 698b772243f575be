package render

import (
	"image"
	"image/color"

	"github.com/swdee/go-poseaction/geometry"
	"github.com/swdee/go-poseaction/pose"
	"gocv.io/x/gocv"
)

// circleRadius is the radius of the joint circles
const circleRadius = 3

// Person draws the skeleton of the person on the image.  Only keypoints with
// a score meeting the threshold are drawn, and a joint line is drawn only
// when both its ends are confident
func Person(img *gocv.Mat, p pose.Person, threshold float32, lineThickness int) {

	for _, j := range pose.Joints {

		if !p.Confident(threshold, j.From, j.To) {
			continue
		}

		gocv.Line(img, p.KeyPoint(j.From).Position, p.KeyPoint(j.To).Position,
			jointColor(j), lineThickness)
	}

	for _, kp := range p.KeyPoints {

		if !kp.Confident(threshold) {
			continue
		}

		gocv.Circle(img, kp.Position, circleRadius, keyPointColors[kp.Part], -1)
	}
}

// TrailStyle defines the parameters used for rendering a movement trail
type TrailStyle struct {
	LineColor     color.RGBA
	LineThickness int
	CircleColor   color.RGBA
	CircleRadius  int
}

// DefaultTrailStyle returns default trail style settings
func DefaultTrailStyle() TrailStyle {
	return TrailStyle{
		LineColor:     Yellow,
		LineThickness: 1,
		CircleColor:   Pink,
		CircleRadius:  3,
	}
}

// Trail draws the movement history of a joint, oldest point first, with a
// circle marking the newest position
func Trail(img *gocv.Mat, points []geometry.MovementPoint, style TrailStyle) {

	if len(points) < 2 {
		return
	}

	for i := 1; i < len(points); i++ {
		gocv.Line(img, points[i-1].Point(), points[i].Point(),
			style.LineColor, style.LineThickness)
	}

	gocv.Circle(img, points[len(points)-1].Point(), style.CircleRadius,
		style.CircleColor, -1)
}

// Status draws the lines of text top left on the image over a black banner
func Status(img *gocv.Mat, lines []string, font Font) {

	if len(lines) == 0 {
		return
	}

	width := 0
	height := 0

	for _, line := range lines {
		size := gocv.GetTextSize(line, font.Face, font.Scale, font.Thickness)

		if size.X > width {
			width = size.X
		}

		if size.Y > height {
			height = size.Y
		}
	}

	step := height + font.LineSpacing

	banner := image.Rect(0, 0, width+2*font.LeftPad, len(lines)*step+2*font.TopPad)
	gocv.Rectangle(img, banner, Black, -1) // -1 fills the rectangle

	for i, line := range lines {
		pos := image.Pt(font.LeftPad, font.TopPad+(i+1)*step-font.LineSpacing/2)
		gocv.PutTextWithParams(img, line, pos, font.Face, font.Scale, font.Color,
			font.Thickness, font.LineType, false)
	}
}
