package rknn

import (
	"fmt"
	"strings"
	"sync"

	"github.com/swdee/go-poseaction"
)

var (
	// Rockchip SoCs and their NPU cores, for passing to NewPool to pin each
	// runtime of the pool to its own core
	RK3588 = []CoreMask{NPUCore0, NPUCore1, NPUCore2}
	RK3582 = []CoreMask{NPUCore0, NPUCore1, NPUCore2}
	RK3576 = []CoreMask{NPUCore0, NPUCore1}
	RK3568 = []CoreMask{NPUSkipSetCore}
	RK3566 = []CoreMask{NPUSkipSetCore}
	RK3562 = []CoreMask{NPUSkipSetCore}
)

// PlatformCores returns the NPU core list of the named platform, one of
// rk3562|rk3566|rk3568|rk3576|rk3582|rk3588
func PlatformCores(platform string) ([]CoreMask, error) {

	switch strings.ToLower(strings.TrimSpace(platform)) {
	case "rk3588":
		return RK3588, nil
	case "rk3582":
		return RK3582, nil
	case "rk3576":
		return RK3576, nil
	case "rk3568":
		return RK3568, nil
	case "rk3566":
		return RK3566, nil
	case "rk3562":
		return RK3562, nil
	}

	return nil, fmt.Errorf("unknown platform: %s", platform)
}

// Pool holds several runtimes of the same model pinned across the NPU cores.
// It implements poseaction.Engine so a pipeline can run inference on
// whichever core is free
type Pool struct {
	runtimes chan *Runtime
	size     int
	// mu guards closed and sending on runtimes
	mu     sync.Mutex
	closed bool
}

// NewPool loads size runtimes of the model file, assigning the cores in
// round robin order
func NewPool(size int, modelFile string, cores []CoreMask) (*Pool, error) {

	if size <= 0 || len(cores) == 0 {
		return nil, fmt.Errorf("pool needs a positive size and at least one core")
	}

	p := &Pool{
		runtimes: make(chan *Runtime, size),
		size:     size,
	}

	for i := 0; i < size; i++ {
		rt, err := NewRuntimeWithCore(modelFile, cores[i%len(cores)])

		if err != nil {
			// release the runtimes created so far
			_ = p.Close()
			return nil, err
		}

		p.Return(rt)
	}

	return p, nil
}

// Size returns the number of runtimes in the pool
func (p *Pool) Size() int {
	return p.size
}

// Get takes a runtime from the pool, blocking until one is free.  Returns
// nil once the pool is closed
func (p *Pool) Get() *Runtime {
	return <-p.runtimes
}

// Return puts a runtime back in the pool, or closes it if the pool has been
// closed
func (p *Pool) Return(runtime *Runtime) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		_ = runtime.Close()
		return
	}

	select {
	case p.runtimes <- runtime:
	default:
		// pool is full
		_ = runtime.Close()
	}
}

// Inference runs the model on the next free runtime
func (p *Pool) Inference(in *poseaction.Input) (*poseaction.Outputs, error) {

	rt := p.Get()

	if rt == nil {
		return nil, ErrClosed
	}

	defer p.Return(rt)

	return rt.Inference(in)
}

// Close releases every runtime in the pool.  Runtimes out on loan are closed
// when returned
func (p *Pool) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return nil
	}

	p.closed = true
	close(p.runtimes)

	var firstErr error

	for rt := range p.runtimes {
		if err := rt.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}

	return firstErr
}
