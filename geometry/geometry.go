// Package geometry provides the angle, distance and speed calculations used
// on keypoints in image pixel space.
package geometry

import (
	"image"
	"math"

	"gonum.org/v1/gonum/floats"
)

// MovementPoint is a keypoint position sample together with the inference
// latency that produced it
type MovementPoint struct {
	X, Y int
	// ElapsedTime is the per frame inference latency in milliseconds, it is
	// used as the interval since the previous sample
	ElapsedTime int64
}

// Point returns the sample position as an image.Point
func (m MovementPoint) Point() image.Point {
	return image.Pt(m.X, m.Y)
}

// RotationAngleDegrees returns the angle of the vector from center to target
// measured clockwise from vertical up, in the range [0,360).  Downstream
// thresholds at 90 and 270 degrees are calibrated to this convention
func RotationAngleDegrees(center, target image.Point) float64 {

	theta := math.Atan2(float64(target.Y-center.Y), float64(target.X-center.X))
	theta += math.Pi / 2.0

	angle := theta * 180.0 / math.Pi

	if angle < 0 {
		angle += 360.0
	}

	// a tiny negative angle can round up to 360 after wrapping
	if angle >= 360.0 {
		angle -= 360.0
	}

	return angle
}

// Distance returns the Euclidean distance between two points
func Distance(p1, p2 image.Point) float64 {
	dx := float64(p2.X - p1.X)
	dy := float64(p2.Y - p1.Y)
	return math.Sqrt(dx*dx + dy*dy)
}

// Velocity returns the mean speed across the sequence of movement points in
// pixels per millisecond.  It is the sum of distances between consecutive
// points divided by the sum of their time intervals, where the interval of
// a pair is the ElapsedTime of the later point.  Returns 0 for less than two
// points or when no time has elapsed
func Velocity(points []MovementPoint) float64 {

	if len(points) < 2 {
		return 0
	}

	dists := make([]float64, len(points)-1)
	times := make([]float64, len(points)-1)

	for i := 0; i < len(points)-1; i++ {
		dists[i] = Distance(points[i].Point(), points[i+1].Point())
		times[i] = float64(points[i+1].ElapsedTime)
	}

	totalTime := floats.Sum(times)

	if totalTime <= 0 {
		return 0
	}

	return floats.Sum(dists) / totalTime
}

// InDegreeRange reports if current lies within the open interval
// (required-leeway, required+leeway)
func InDegreeRange(current, required, leeway float64) bool {
	return required+leeway > current && required-leeway < current
}
