package poseaction

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/x448/float16"
)

func TestNewTensor(t *testing.T) {

	tensor, err := NewTensor([]int{1, 2, 3, 4}, make([]float32, 24))
	require.NoError(t, err)
	assert.Equal(t, 24, tensor.NumElements())
	assert.NoError(t, tensor.Validate())

	_, err = NewTensor([]int{1, 2, 3, 4}, make([]float32, 23))
	assert.True(t, errors.Is(err, ErrTensorShape))

	_, err = NewTensor([]int{1, 0, 3, 4}, nil)
	assert.True(t, errors.Is(err, ErrTensorShape))

	_, err = NewTensor(nil, nil)
	assert.True(t, errors.Is(err, ErrTensorShape))

	flat, err := NewTensor([]int{6}, make([]float32, 6))
	require.NoError(t, err)
	assert.Error(t, flat.Validate())
}

func TestTensorAt4(t *testing.T) {

	data := make([]float32, 2*3*4)

	for i := range data {
		data[i] = float32(i)
	}

	tensor, err := NewTensor([]int{1, 2, 3, 4}, data)
	require.NoError(t, err)

	assert.Equal(t, float32(0), tensor.At4(0, 0, 0, 0))
	assert.Equal(t, float32(3), tensor.At4(0, 0, 0, 3))
	assert.Equal(t, float32(4), tensor.At4(0, 0, 1, 0))
	assert.Equal(t, float32(12), tensor.At4(0, 1, 0, 0))
	assert.Equal(t, float32(23), tensor.At4(0, 1, 2, 3))
}

func TestConvertFloat16(t *testing.T) {

	vals := []float32{0, 1, -2.5, 0.125, 1024}
	buf := make([]uint16, len(vals))

	for i, v := range vals {
		buf[i] = float16.Fromfloat32(v).Bits()
	}

	tensor, err := NewTensorFromFloat16([]int{1, 1, 1, 5}, buf)
	require.NoError(t, err)
	assert.Equal(t, vals, tensor.Data)
}

func TestNewOutputs(t *testing.T) {

	heat := &Tensor{Name: "heatmaps"}
	off := &Tensor{Name: "offsets"}
	fwd := &Tensor{Name: "fwd"}
	bwd := &Tensor{Name: "bwd"}

	_, err := NewOutputs([]*Tensor{heat})
	assert.Error(t, err)

	o, err := NewOutputs([]*Tensor{heat, off})
	require.NoError(t, err)
	assert.Same(t, heat, o.Heatmaps)
	assert.Same(t, off, o.Offsets)
	assert.Nil(t, o.DisplacementsFwd)

	o, err = NewOutputs([]*Tensor{heat, off, fwd, bwd})
	require.NoError(t, err)
	assert.Same(t, fwd, o.DisplacementsFwd)
	assert.Same(t, bwd, o.DisplacementsBwd)
}

func TestParseBackend(t *testing.T) {

	tests := []struct {
		in   string
		want Backend
		err  bool
	}{
		{"", BackendDefault, false},
		{"default", BackendDefault, false},
		{"CPU", BackendDefault, false},
		{"accelerated", BackendAccelerated, false},
		{" npu ", BackendAccelerated, false},
		{"tpu", BackendDefault, true},
	}

	for _, tc := range tests {
		got, err := ParseBackend(tc.in)

		if tc.err {
			assert.Error(t, err, tc.in)
			continue
		}

		require.NoError(t, err, tc.in)
		assert.Equal(t, tc.want, got, tc.in)
	}

	assert.Equal(t, "accelerated", BackendAccelerated.String())
}

func TestInputValidate(t *testing.T) {

	in := &Input{Width: 2, Height: 2, Data: make([]float32, 12)}
	assert.NoError(t, in.Validate())

	in.Data = in.Data[:11]
	assert.Error(t, in.Validate())

	assert.Error(t, (&Input{}).Validate())
}

func TestNewTensorFromNCHW(t *testing.T) {

	// 2 channels of a 2x3 grid, channel 0 holds 0..5, channel 1 holds 10..15
	data := []float32{
		0, 1, 2,
		3, 4, 5,
		10, 11, 12,
		13, 14, 15,
	}

	tensor, err := NewTensorFromNCHW([]int{1, 2, 2, 3}, data)
	require.NoError(t, err)

	assert.Equal(t, []int{1, 2, 3, 2}, tensor.Dims)

	for y := 0; y < 2; y++ {
		for x := 0; x < 3; x++ {
			assert.Equal(t, float32(y*3+x), tensor.At4(0, y, x, 0))
			assert.Equal(t, float32(10+y*3+x), tensor.At4(0, y, x, 1))
		}
	}

	_, err = NewTensorFromNCHW([]int{1, 2, 3}, make([]float32, 6))
	assert.ErrorIs(t, err, ErrTensorShape)
}
