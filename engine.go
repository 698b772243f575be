package poseaction

import (
	"fmt"
	"strings"
)

// Backend selects the execution backend used by an Engine to run the model.
// Decoding and classification are backend agnostic
type Backend int

const (
	// BackendDefault runs the model on the engine's default device
	BackendDefault Backend = iota
	// BackendAccelerated runs the model on a hardware accelerator when one
	// is available, falling back to the default device otherwise
	BackendAccelerated
)

// String returns a readable name of the backend
func (b Backend) String() string {
	switch b {
	case BackendDefault:
		return "default"
	case BackendAccelerated:
		return "accelerated"
	default:
		return fmt.Sprintf("unknown backend %d", int(b))
	}
}

// ParseBackend converts a backend name into a Backend
func ParseBackend(name string) (Backend, error) {

	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "default", "cpu":
		return BackendDefault, nil
	case "accelerated", "npu", "gpu":
		return BackendAccelerated, nil
	}

	return BackendDefault, fmt.Errorf("unknown backend %q, use 'default' or 'accelerated'", name)
}

// Input is a model input image as normalised float32 values in NHWC layout
// with channel order R,G,B
type Input struct {
	Width  int
	Height int
	Data   []float32
}

// Channels is the number of color channels in an Input
const Channels = 3

// Validate checks the data length matches the image dimensions
func (i *Input) Validate() error {

	if i.Width <= 0 || i.Height <= 0 {
		return fmt.Errorf("invalid input size %dx%d", i.Width, i.Height)
	}

	if want := i.Width * i.Height * Channels; len(i.Data) != want {
		return fmt.Errorf("input data length %d does not match %dx%dx%d",
			len(i.Data), i.Width, i.Height, Channels)
	}

	return nil
}

// Engine runs the pose estimation model on an input image.  Inference is
// blocking and an Engine is not expected to be safe for concurrent use.  The
// input may be reused by the caller once Inference returns so an Engine must
// not retain it
type Engine interface {
	// Inference runs the model and returns its output tensors
	Inference(in *Input) (*Outputs, error)
	// Close releases the resources held by the engine
	Close() error
}
