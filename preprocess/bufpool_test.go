package preprocess

import (
	"image"
	"image/color"
	"testing"

	"github.com/swdee/go-poseaction"
)

func TestInputPoolReuse(t *testing.T) {

	p := NewInputPool(4, 3)

	in := p.Get()

	if in.Width != 4 || in.Height != 3 {
		t.Fatalf("expected 4x3 input, got %dx%d", in.Width, in.Height)
	}

	if len(in.Data) != 0 || cap(in.Data) != 4*3*poseaction.Channels {
		t.Fatalf("expected empty data of capacity %d, got len %d cap %d",
			4*3*poseaction.Channels, len(in.Data), cap(in.Data))
	}

	in.Data = append(in.Data, 1, 2, 3)
	p.Put(in)

	again := p.Get()

	if len(again.Data) != 0 {
		t.Errorf("expected data reset on Get, got len %d", len(again.Data))
	}

	// other sizes and nil are ignored
	p.Put(&poseaction.Input{Width: 8, Height: 8})
	p.Put(nil)
}

func TestResizerInputRelease(t *testing.T) {

	src := image.NewRGBA(image.Rect(0, 0, 20, 10))

	for y := 0; y < 10; y++ {
		for x := 0; x < 20; x++ {
			src.Set(x, y, color.RGBA{R: 255, G: 255, B: 255, A: 255})
		}
	}

	r := NewResizer(20, 10, 4, 4)

	first := r.Input(src)
	want := append([]float32(nil), first.Data...)
	r.Release(first)

	second := r.Input(src)

	if err := second.Validate(); err != nil {
		t.Fatalf("invalid input: %v", err)
	}

	for i, v := range second.Data {
		if v != want[i] {
			t.Fatalf("value %d differs after reuse, expected %v, got %v", i, want[i], v)
		}
	}
}

func TestNormalizeIntoGrowsBuffer(t *testing.T) {

	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	data := NormalizeInto(make([]float32, 5), img)

	if len(data) != 2*2*poseaction.Channels {
		t.Fatalf("expected %d values, got %d", 2*2*poseaction.Channels, len(data))
	}

	if data[0] != (0-Mean)/Std {
		t.Errorf("expected %v, got %v", (0-Mean)/Std, data[0])
	}
}
