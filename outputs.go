package poseaction

import (
	"fmt"
)

// PoseNet model output tensor positions
const (
	OutputHeatmaps = iota
	OutputOffsets
	OutputDisplacementsFwd
	OutputDisplacementsBwd
)

// Outputs holds the output tensors of a PoseNet model
type Outputs struct {
	// Heatmaps has shape [1, H, W, K] with one channel per keypoint
	Heatmaps *Tensor
	// Offsets has shape [1, H, W, 2K], y offsets in channels [0,K) and x
	// offsets in channels [K,2K)
	Offsets *Tensor
	// DisplacementsFwd and DisplacementsBwd are emitted by the multi-pose
	// model and are not used by single pose decoding
	DisplacementsFwd *Tensor
	DisplacementsBwd *Tensor
}

// NewOutputs maps positional model outputs to Outputs.  At least the
// heatmaps and offsets tensors are required
func NewOutputs(tensors []*Tensor) (*Outputs, error) {

	if len(tensors) < 2 {
		return nil, fmt.Errorf("expected at least 2 output tensors, got %d", len(tensors))
	}

	o := &Outputs{
		Heatmaps: tensors[OutputHeatmaps],
		Offsets:  tensors[OutputOffsets],
	}

	if len(tensors) > OutputDisplacementsFwd {
		o.DisplacementsFwd = tensors[OutputDisplacementsFwd]
	}

	if len(tensors) > OutputDisplacementsBwd {
		o.DisplacementsBwd = tensors[OutputDisplacementsBwd]
	}

	return o, nil
}
