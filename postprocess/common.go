package postprocess

import (
	"math"
)

// sigmoid is the logistic function computed in float32
func sigmoid(x float32) float32 {
	return 1.0 / (1.0 + float32(math.Exp(float64(-x))))
}
