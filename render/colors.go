package render

import (
	"image/color"

	"github.com/swdee/go-poseaction/pose"
)

var (
	Black  = color.RGBA{R: 0, G: 0, B: 0, A: 255}
	White  = color.RGBA{R: 255, G: 255, B: 255, A: 255}
	Yellow = color.RGBA{R: 255, G: 255, B: 50, A: 255}
	Pink   = color.RGBA{R: 255, G: 0, B: 255, A: 255}
	Green  = color.RGBA{R: 0, G: 255, B: 0, A: 255}

	// posePalette are the colors used for the skeleton
	posePalette = []color.RGBA{
		{R: 255, G: 128, B: 0, A: 255},  // arms
		{R: 255, G: 51, B: 255, A: 255}, // torso
		{R: 51, G: 153, B: 255, A: 255}, // legs
		{R: 0, G: 255, B: 0, A: 255},    // head
	}

	// keyPointColors are the joint circle colors indexed by body part
	keyPointColors = [pose.KeyPointsNumber]color.RGBA{
		posePalette[3], posePalette[3], posePalette[3], posePalette[3], posePalette[3],
		posePalette[1], posePalette[1], posePalette[0], posePalette[0], posePalette[0],
		posePalette[0], posePalette[1], posePalette[1], posePalette[2], posePalette[2],
		posePalette[2], posePalette[2],
	}
)

// jointColor returns the line color for a skeleton joint, limbs take the
// color of the body part they end on
func jointColor(j pose.Joint) color.RGBA {
	if j.From == pose.LeftShoulder || j.From == pose.RightShoulder ||
		j.From == pose.LeftHip || j.From == pose.RightHip {
		return keyPointColors[j.To]
	}
	return keyPointColors[j.From]
}
