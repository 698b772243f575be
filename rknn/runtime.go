// Package rknn runs the pose model on the Rockchip NPU through the RKNN
// Toolkit2 C API and implements poseaction.Engine.
package rknn

/*
#cgo LDFLAGS: -lrknnrt
#include "rknn_api.h"
#include <stdlib.h>
*/
import "C"
import (
	"fmt"
	"os"
	"sync"
	"unsafe"

	"github.com/swdee/go-poseaction"
)

// CoreMask wraps C.rknn_core_mask
type CoreMask int

// rknn_core_mask values select which NPU cores the model runs on.  Auto picks
// an idle core, the multi core masks split supported ops across the cores
// and fall back to Core0 for the rest
const (
	NPUCoreAuto    CoreMask = C.RKNN_NPU_CORE_AUTO
	NPUCore0       CoreMask = C.RKNN_NPU_CORE_0
	NPUCore1       CoreMask = C.RKNN_NPU_CORE_1
	NPUCore2       CoreMask = C.RKNN_NPU_CORE_2
	NPUCore01      CoreMask = C.RKNN_NPU_CORE_0_1
	NPUCore012     CoreMask = C.RKNN_NPU_CORE_0_1_2
	NPUSkipSetCore CoreMask = 9999
)

// CoreMaskFor returns the NPU core mask used for a backend.  The accelerated
// backend spreads the model over all three cores of an RK3588
func CoreMaskFor(b poseaction.Backend) CoreMask {
	if b == poseaction.BackendAccelerated {
		return NPUCore012
	}
	return NPUCoreAuto
}

// ErrorCodes are the return codes of the C API
type ErrorCodes int

const (
	Success              ErrorCodes = C.RKNN_SUCC
	ErrFail              ErrorCodes = C.RKNN_ERR_FAIL
	ErrTimeout           ErrorCodes = C.RKNN_ERR_TIMEOUT
	ErrDeviceUnavailable ErrorCodes = C.RKNN_ERR_DEVICE_UNAVAILABLE
	ErrMallocFail        ErrorCodes = C.RKNN_ERR_MALLOC_FAIL
	ErrParamInvalid      ErrorCodes = C.RKNN_ERR_PARAM_INVALID
	ErrModelInvalid      ErrorCodes = C.RKNN_ERR_MODEL_INVALID
	ErrCtxInvalid        ErrorCodes = C.RKNN_ERR_CTX_INVALID
	ErrInputInvalid      ErrorCodes = C.RKNN_ERR_INPUT_INVALID
	ErrOutputInvalid     ErrorCodes = C.RKNN_ERR_OUTPUT_INVALID
	ErrDeviceMismatch    ErrorCodes = C.RKNN_ERR_DEVICE_UNMATCH
	ErrPlatformMismatch  ErrorCodes = C.RKNN_ERR_TARGET_PLATFORM_UNMATCH
)

// String returns a readable description of the error code
func (e ErrorCodes) String() string {
	switch e {
	case Success:
		return "execution successful"
	case ErrFail:
		return "execution failed"
	case ErrTimeout:
		return "execution timed out"
	case ErrDeviceUnavailable:
		return "device is unavailable"
	case ErrMallocFail:
		return "C memory allocation failed"
	case ErrParamInvalid:
		return "parameter is invalid"
	case ErrModelInvalid:
		return "model file is invalid"
	case ErrCtxInvalid:
		return "context is invalid"
	case ErrInputInvalid:
		return "input is invalid"
	case ErrOutputInvalid:
		return "output is invalid"
	case ErrDeviceMismatch:
		return "device mismatch, please update rknn sdk and npu driver/firmware"
	case ErrPlatformMismatch:
		return "the RKNN model target platform is not compatible with the current platform"
	default:
		return fmt.Sprintf("unknown error code %d", e)
	}
}

// callError formats a failed C call
func callError(fn string, ret C.int) error {
	return fmt.Errorf("C.%s failed with code %d, error: %s", fn, int(ret),
		ErrorCodes(ret).String())
}

// Runtime is a loaded pose model on the NPU.  Calls to Inference are
// serialised as a context can only run one inference at a time
type Runtime struct {
	mu sync.Mutex
	// ctx is the C runtime context
	ctx         C.rknn_context
	ioNum       IONumber
	inputAttrs  []TensorAttr
	outputAttrs []TensorAttr
	// inputBuf is C memory for the model input of inputLen float32 values
	inputBuf unsafe.Pointer
	inputLen int
	closed   bool
}

// NewRuntime loads the RKNN compiled model file and pins it to the NPU
// cores of the given backend
func NewRuntime(modelFile string, backend poseaction.Backend) (*Runtime, error) {
	return NewRuntimeWithCore(modelFile, CoreMaskFor(backend))
}

// NewRuntimeWithCore loads the model onto a specific core mask.  Use
// NPUSkipSetCore on single core SoCs such as the RK3566
func NewRuntimeWithCore(modelFile string, core CoreMask) (*Runtime, error) {

	r := &Runtime{}

	if err := r.init(modelFile); err != nil {
		return nil, err
	}

	if core != NPUSkipSetCore {
		if err := r.setCoreMask(core); err != nil {
			_ = r.Close()
			return nil, err
		}
	}

	var err error

	if r.ioNum, err = r.QueryModelIONumber(); err != nil {
		_ = r.Close()
		return nil, err
	}

	if r.inputAttrs, err = r.QueryInputTensors(); err != nil {
		_ = r.Close()
		return nil, err
	}

	if r.outputAttrs, err = r.QueryOutputTensors(); err != nil {
		_ = r.Close()
		return nil, err
	}

	if len(r.inputAttrs) != 1 {
		_ = r.Close()
		return nil, fmt.Errorf("pose model must have a single input, has %d",
			len(r.inputAttrs))
	}

	if len(r.outputAttrs) < 2 {
		_ = r.Close()
		return nil, fmt.Errorf("pose model must have heatmap and offset outputs, has %d",
			len(r.outputAttrs))
	}

	w, h := r.inputAttrs[0].ImageSize()
	r.inputLen = w * h * poseaction.Channels
	r.inputBuf = C.malloc(C.size_t(r.inputLen * 4))

	if r.inputBuf == nil {
		_ = r.Close()
		return nil, fmt.Errorf("error allocating %d byte input buffer", r.inputLen*4)
	}

	return r, nil
}

// init wraps C.rknn_init
func (r *Runtime) init(modelFile string) error {

	info, err := os.Stat(modelFile)

	if err != nil {
		return fmt.Errorf("model file does not exist at %s, error: %w",
			modelFile, err)
	}

	if info.IsDir() {
		return fmt.Errorf("model file %s is a directory", modelFile)
	}

	cModelFile := C.CString(modelFile)
	defer C.free(unsafe.Pointer(cModelFile))

	ret := C.rknn_init(&r.ctx, unsafe.Pointer(cModelFile), 0, 0, nil)

	if ret != C.RKNN_SUCC {
		return callError("rknn_init", ret)
	}

	return nil
}

// setCoreMask wraps C.rknn_set_core_mask
func (r *Runtime) setCoreMask(mask CoreMask) error {

	ret := C.rknn_set_core_mask(r.ctx, C.rknn_core_mask(mask))

	if ret != C.RKNN_SUCC {
		return callError("rknn_set_core_mask", ret)
	}

	return nil
}

// Close unloads the model and releases the C context.  Closing twice is a
// no-op
func (r *Runtime) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return nil
	}

	r.closed = true

	if r.inputBuf != nil {
		C.free(r.inputBuf)
		r.inputBuf = nil
	}

	ret := C.rknn_destroy(r.ctx)

	if ret != C.RKNN_SUCC {
		return callError("rknn_destroy", ret)
	}

	return nil
}

// SDKVersion holds the RKNN API and driver versions
type SDKVersion struct {
	DriverVersion string
	APIVersion    string
}

// SDKVersion queries the RKNN API and driver versions
func (r *Runtime) SDKVersion() (SDKVersion, error) {

	var cSdkVer C.rknn_sdk_version

	ret := C.rknn_query(r.ctx, C.RKNN_QUERY_SDK_VERSION,
		unsafe.Pointer(&cSdkVer), C.uint(C.sizeof_rknn_sdk_version))

	if ret != C.RKNN_SUCC {
		return SDKVersion{}, callError("rknn_query", ret)
	}

	return SDKVersion{
		DriverVersion: C.GoString(&(cSdkVer.drv_version[0])),
		APIVersion:    C.GoString(&(cSdkVer.api_version[0])),
	}, nil
}

// InputAttrs returns the model input tensor attributes
func (r *Runtime) InputAttrs() []TensorAttr {
	return r.inputAttrs
}

// OutputAttrs returns the model output tensor attributes
func (r *Runtime) OutputAttrs() []TensorAttr {
	return r.outputAttrs
}

// InputSize returns the width and height of the model input image
func (r *Runtime) InputSize() (int, int) {
	return r.inputAttrs[0].ImageSize()
}
