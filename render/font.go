package render

import (
	"image/color"

	"gocv.io/x/gocv"
)

// Font defines the parameters for rendering text on an image using GoCV
type Font struct {
	Face      gocv.HersheyFont
	Scale     float64
	Color     color.RGBA
	Thickness int
	LineType  gocv.LineType
	// LineSpacing is the vertical gap in pixels between lines of text
	LineSpacing int
	// Padding around the text block
	LeftPad int
	TopPad  int
}

// DefaultFont returns default font settings
func DefaultFont() Font {
	return Font{
		Face:        gocv.FontHersheySimplex,
		Scale:       0.5,
		Color:       White,
		Thickness:   1,
		LineType:    gocv.LineAA,
		LineSpacing: 6,
		LeftPad:     4,
		TopPad:      4,
	}
}
