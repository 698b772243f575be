package preprocess

import (
	"sync"

	"github.com/swdee/go-poseaction"
)

// InputPool recycles model input buffers of a fixed image size
type InputPool struct {
	pool   sync.Pool
	width  int
	height int
}

// NewInputPool returns a pool of inputs for a width x height model
func NewInputPool(width, height int) *InputPool {

	p := &InputPool{
		width:  width,
		height: height,
	}

	p.pool.New = func() any {
		return &poseaction.Input{
			Width:  width,
			Height: height,
			Data:   make([]float32, 0, width*height*poseaction.Channels),
		}
	}

	return p
}

// Get returns an input with an empty data slice of full capacity
func (p *InputPool) Get() *poseaction.Input {
	in := p.pool.Get().(*poseaction.Input)
	in.Data = in.Data[:0]
	return in
}

// Put returns an input to the pool.  Inputs of another size are dropped
func (p *InputPool) Put(in *poseaction.Input) {

	if in == nil || in.Width != p.width || in.Height != p.height ||
		cap(in.Data) < p.width*p.height*poseaction.Channels {
		return
	}

	p.pool.Put(in)
}
