package poseaction

import (
	"errors"
	"fmt"
)

// ErrTensorShape is returned when tensor data does not match its dimensions
var ErrTensorShape = errors.New("tensor shape mismatch")

// Tensor is a dense float32 output tensor in row major order
type Tensor struct {
	// Name is the model output name, if known
	Name string
	// Dims are the tensor dimensions, eg: [1, H, W, C] for NHWC
	Dims []int
	// Data holds the tensor values
	Data []float32
}

// NewTensor returns a tensor with the given dimensions and data, checking
// the data length equals the product of the dimensions
func NewTensor(dims []int, data []float32) (*Tensor, error) {

	n := 1

	for _, d := range dims {
		if d <= 0 {
			return nil, fmt.Errorf("%w: invalid dimension %d in %v", ErrTensorShape, d, dims)
		}
		n *= d
	}

	if len(dims) == 0 || len(data) != n {
		return nil, fmt.Errorf("%w: %d elements for dims %v", ErrTensorShape, len(data), dims)
	}

	return &Tensor{
		Dims: append([]int(nil), dims...),
		Data: data,
	}, nil
}

// NewTensorFromFloat16 returns a float32 tensor converted from the raw
// float16 bits of a model output
func NewTensorFromFloat16(dims []int, buf []uint16) (*Tensor, error) {
	return NewTensor(dims, ConvertFloat16(buf))
}

// NumElements returns the number of values the dimensions describe
func (t *Tensor) NumElements() int {

	if len(t.Dims) == 0 {
		return 0
	}

	n := 1

	for _, d := range t.Dims {
		n *= d
	}

	return n
}

// Validate checks the tensor is 4D with the data length matching
func (t *Tensor) Validate() error {

	if len(t.Dims) != 4 {
		return fmt.Errorf("%w: expected 4 dimensions, got %v", ErrTensorShape, t.Dims)
	}

	if len(t.Data) != t.NumElements() {
		return fmt.Errorf("%w: %d elements for dims %v", ErrTensorShape, len(t.Data), t.Dims)
	}

	return nil
}

// At4 returns the value at the given index of a 4D tensor.  No bounds
// checking beyond the slice access is done
func (t *Tensor) At4(n, h, w, c int) float32 {
	return t.Data[((n*t.Dims[1]+h)*t.Dims[2]+w)*t.Dims[3]+c]
}

// String returns the tensor name and dimensions
func (t *Tensor) String() string {
	return fmt.Sprintf("name=%s, dims=%v, n_elems=%d", t.Name, t.Dims, len(t.Data))
}

// NewTensorFromNCHW returns an NHWC tensor from data laid out as NCHW with
// the given NCHW dimensions
func NewTensorFromNCHW(dims []int, data []float32) (*Tensor, error) {

	src, err := NewTensor(dims, data)

	if err != nil {
		return nil, err
	}

	if err := src.Validate(); err != nil {
		return nil, err
	}

	n, c, h, w := dims[0], dims[1], dims[2], dims[3]
	out := make([]float32, len(data))

	for b := 0; b < n; b++ {
		for ch := 0; ch < c; ch++ {
			for y := 0; y < h; y++ {
				for x := 0; x < w; x++ {
					out[((b*h+y)*w+x)*c+ch] = data[((b*c+ch)*h+y)*w+x]
				}
			}
		}
	}

	return NewTensor([]int{n, h, w, c}, out)
}
