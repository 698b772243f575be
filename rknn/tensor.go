package rknn

/*
#include "rknn_api.h"
#include <stdlib.h>
*/
import "C"
import (
	"fmt"
	"strings"
	"unsafe"
)

// TensorFormat wraps C.rknn_tensor_format
type TensorFormat int

const (
	TensorNCHW      TensorFormat = C.RKNN_TENSOR_NCHW
	TensorNHWC      TensorFormat = C.RKNN_TENSOR_NHWC
	TensorNC1HWC2   TensorFormat = C.RKNN_TENSOR_NC1HWC2
	TensorUndefined TensorFormat = C.RKNN_TENSOR_UNDEFINED
)

// TensorType wraps C.rknn_tensor_type
type TensorType int

const (
	TensorFloat32 TensorType = C.RKNN_TENSOR_FLOAT32
	TensorFloat16 TensorType = C.RKNN_TENSOR_FLOAT16
	TensorInt8    TensorType = C.RKNN_TENSOR_INT8
	TensorUint8   TensorType = C.RKNN_TENSOR_UINT8
	TensorInt16   TensorType = C.RKNN_TENSOR_INT16
	TensorUint16  TensorType = C.RKNN_TENSOR_UINT16
	TensorInt32   TensorType = C.RKNN_TENSOR_INT32
	TensorUint32  TensorType = C.RKNN_TENSOR_UINT32
	TensorInt64   TensorType = C.RKNN_TENSOR_INT64
	TensorBool    TensorType = C.RKNN_TENSOR_BOOL
	TensorInt4    TensorType = C.RKNN_TENSOR_INT4
)

// TensorQntType wraps C.rknn_tensor_qnt_type
type TensorQntType int

const (
	TensorQntNone   TensorQntType = C.RKNN_TENSOR_QNT_NONE
	TensorQntDFP    TensorQntType = C.RKNN_TENSOR_QNT_DFP
	TensorQntAffine TensorQntType = C.RKNN_TENSOR_QNT_AFFINE_ASYMMETRIC
)

// maximum field lengths of a tensor attribute
const (
	attrMaxDimension  = C.RKNN_MAX_DIMS
	attrMaxNameLength = C.RKNN_MAX_NAME_LEN
)

// TensorAttr holds the fields of C.rknn_tensor_attr used to shape the pose
// model inputs and outputs
type TensorAttr struct {
	Index   uint32
	NDims   uint32
	Dims    [attrMaxDimension]uint32
	Name    string
	NElems  uint32
	Size    uint32
	Fmt     TensorFormat
	Type    TensorType
	QntType TensorQntType
	ZP      int32
	Scale   float32
}

// convertTensorAttr converts a C.rknn_tensor_attr to a Go TensorAttr
func convertTensorAttr(cAttr *C.rknn_tensor_attr) TensorAttr {

	name := string(C.GoBytes(unsafe.Pointer(&cAttr.name[0]), C.int(attrMaxNameLength)))

	// trim at the C string terminator
	if i := strings.IndexByte(name, 0); i != -1 {
		name = name[:i]
	}

	return TensorAttr{
		Index:   uint32(cAttr.index),
		NDims:   uint32(cAttr.n_dims),
		Dims:    *(*[attrMaxDimension]uint32)(unsafe.Pointer(&cAttr.dims)),
		Name:    name,
		NElems:  uint32(cAttr.n_elems),
		Size:    uint32(cAttr.size),
		Fmt:     TensorFormat(cAttr.fmt),
		Type:    TensorType(cAttr._type),
		QntType: TensorQntType(cAttr.qnt_type),
		ZP:      int32(cAttr.zp),
		Scale:   float32(cAttr.scale),
	}
}

// queryTensors queries the attributes of n tensors of the given kind
func (r *Runtime) queryTensors(cmd C.rknn_query_cmd, n uint32) ([]TensorAttr, error) {

	attrs := make([]TensorAttr, n)

	for i := uint32(0); i < n; i++ {
		var cAttr C.rknn_tensor_attr
		cAttr.index = C.uint32_t(i)

		ret := C.rknn_query(r.ctx, cmd, unsafe.Pointer(&cAttr), C.uint(unsafe.Sizeof(cAttr)))

		if ret != C.RKNN_SUCC {
			return nil, callError("rknn_query", ret)
		}

		attrs[i] = convertTensorAttr(&cAttr)
	}

	return attrs, nil
}

// QueryInputTensors gets the model input tensor attributes
func (r *Runtime) QueryInputTensors() ([]TensorAttr, error) {
	return r.queryTensors(C.RKNN_QUERY_INPUT_ATTR, r.ioNum.NumberInput)
}

// QueryOutputTensors gets the model output tensor attributes
func (r *Runtime) QueryOutputTensors() ([]TensorAttr, error) {
	return r.queryTensors(C.RKNN_QUERY_OUTPUT_ATTR, r.ioNum.NumberOutput)
}

// Shape returns the used dimensions of the tensor
func (a TensorAttr) Shape() []int {

	dims := make([]int, a.NDims)

	for i := range dims {
		dims[i] = int(a.Dims[i])
	}

	return dims
}

// ImageSize returns the width and height of a 4D image tensor
func (a TensorAttr) ImageSize() (int, int) {

	if a.Fmt == TensorNCHW {
		return int(a.Dims[3]), int(a.Dims[2])
	}

	return int(a.Dims[2]), int(a.Dims[1])
}

// String returns the TensorAttr's attributes formatted as a string
func (a TensorAttr) String() string {
	return fmt.Sprintf("index=%d, name=%s, dims=%v, n_elems=%d, size=%d, "+
		"fmt=%s, type=%s, qnt_type=%s, zp=%d, scale=%f",
		a.Index, a.Name, a.Shape(), a.NElems, a.Size, a.Fmt, a.Type,
		a.QntType, a.ZP, a.Scale,
	)
}

// String returns a readable description of the TensorType
func (t TensorType) String() string {
	switch t {
	case TensorFloat32:
		return "FP32"
	case TensorFloat16:
		return "FP16"
	case TensorInt8:
		return "INT8"
	case TensorUint8:
		return "UINT8"
	case TensorInt16:
		return "INT16"
	case TensorUint16:
		return "UINT16"
	case TensorInt32:
		return "INT32"
	case TensorUint32:
		return "UINT32"
	case TensorInt64:
		return "INT64"
	case TensorBool:
		return "BOOL"
	case TensorInt4:
		return "INT4"
	default:
		return "UNKNOWN"
	}
}

// String returns a readable description of the TensorQntType
func (t TensorQntType) String() string {
	switch t {
	case TensorQntNone:
		return "NONE"
	case TensorQntDFP:
		return "DFP"
	case TensorQntAffine:
		return "AFFINE"
	default:
		return "UNKNOWN"
	}
}

// String returns a readable description of the TensorFormat
func (t TensorFormat) String() string {
	switch t {
	case TensorNCHW:
		return "NCHW"
	case TensorNHWC:
		return "NHWC"
	case TensorNC1HWC2:
		return "NC1HWC2"
	case TensorUndefined:
		return "UNDEFINED"
	default:
		return "UNKNOWN"
	}
}
