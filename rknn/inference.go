package rknn

/*
#include "rknn_api.h"
#include <stdlib.h>
*/
import "C"
import (
	"errors"
	"fmt"
	"unsafe"

	"github.com/swdee/go-poseaction"
)

// ErrClosed is returned when running inference on a closed runtime
var ErrClosed = errors.New("rknn runtime closed")

// Inference runs the pose model on the normalised input image and returns
// the output tensors in NHWC layout.  The output data is copied into Go
// memory and the C buffers are released before returning
func (r *Runtime) Inference(in *poseaction.Input) (*poseaction.Outputs, error) {

	if err := in.Validate(); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return nil, ErrClosed
	}

	if w, h := r.inputAttrs[0].ImageSize(); w != in.Width || h != in.Height {
		return nil, fmt.Errorf("input size %dx%d does not match model input %dx%d",
			in.Width, in.Height, w, h)
	}

	if err := r.setInput(in.Data); err != nil {
		return nil, err
	}

	ret := C.rknn_run(r.ctx, nil)

	if ret < 0 {
		return nil, callError("rknn_run", ret)
	}

	tensors, err := r.getOutputs()

	if err != nil {
		return nil, err
	}

	return poseaction.NewOutputs(tensors)
}

// setInput copies the float32 NHWC data into the C input buffer and wraps
// C.rknn_inputs_set
func (r *Runtime) setInput(data []float32) error {

	if len(data) != r.inputLen {
		return fmt.Errorf("input has %d values, model expects %d", len(data), r.inputLen)
	}

	copy(unsafe.Slice((*float32)(r.inputBuf), r.inputLen), data)

	var cInput C.rknn_input
	cInput.index = 0
	cInput.buf = r.inputBuf
	cInput.size = C.uint32_t(r.inputLen * 4)
	cInput.pass_through = 0
	cInput._type = C.RKNN_TENSOR_FLOAT32
	cInput.fmt = C.RKNN_TENSOR_NHWC

	ret := C.rknn_inputs_set(r.ctx, 1, &cInput)

	if ret != C.RKNN_SUCC {
		return callError("rknn_inputs_set", ret)
	}

	return nil
}

// getOutputs wraps C.rknn_outputs_get.  Float16 outputs are fetched as raw
// half precision and converted in Go, all others are dequantised to float32
// by the runtime
func (r *Runtime) getOutputs() ([]*poseaction.Tensor, error) {

	n := len(r.outputAttrs)
	cOutputs := make([]C.rknn_output, n)

	for i, attr := range r.outputAttrs {
		cOutputs[i].index = C.uint32_t(i)
		cOutputs[i].want_float = 1

		if attr.Type == TensorFloat16 {
			cOutputs[i].want_float = 0
		}
	}

	ret := C.rknn_outputs_get(r.ctx, C.uint32_t(n), &cOutputs[0], nil)

	if ret < 0 {
		return nil, callError("rknn_outputs_get", ret)
	}

	tensors := make([]*poseaction.Tensor, n)
	var err error

	for i, attr := range r.outputAttrs {
		tensors[i], err = toTensor(attr, &cOutputs[i])

		if err != nil {
			break
		}
	}

	ret = C.rknn_outputs_release(r.ctx, C.uint32_t(n), &cOutputs[0])

	if err != nil {
		return nil, err
	}

	if ret != C.RKNN_SUCC {
		return nil, callError("rknn_outputs_release", ret)
	}

	return tensors, nil
}

// toTensor copies an output buffer into a Go tensor in NHWC layout
func toTensor(attr TensorAttr, cOut *C.rknn_output) (*poseaction.Tensor, error) {

	var data []float32

	if cOut.want_float == 0 {
		raw := unsafe.Slice((*uint16)(cOut.buf), int(cOut.size)/2)
		data = poseaction.ConvertFloat16(raw)
	} else {
		raw := unsafe.Slice((*float32)(cOut.buf), int(cOut.size)/4)
		data = make([]float32, len(raw))
		copy(data, raw)
	}

	var (
		t   *poseaction.Tensor
		err error
	)

	if attr.Fmt == TensorNCHW {
		t, err = poseaction.NewTensorFromNCHW(attr.Shape(), data)
	} else {
		t, err = poseaction.NewTensor(attr.Shape(), data)
	}

	if err != nil {
		return nil, fmt.Errorf("output %s: %w", attr.Name, err)
	}

	t.Name = attr.Name

	return t, nil
}
