package preprocess

import (
	"image"
	"math"

	"github.com/swdee/go-poseaction"
	"golang.org/x/image/draw"
)

const (
	// Mean is subtracted from each 8 bit channel value during normalisation
	Mean = 128.0
	// Std divides each mean centred channel value during normalisation
	Std = 128.0
	// maxRatioDifference is the tolerance at which aspect ratios are
	// considered equal and no cropping is done
	maxRatioDifference = 1e-5
)

// Resizer defines the struct used for cropping and scaling source frames
// to the model's input tensor size
type Resizer struct {
	// srcWidth is the width of the source image
	srcWidth int
	// srcHeight is the height of the source image
	srcHeight int
	// destWidth is the width to scale to
	destWidth int
	// destHeight is the height to scale to
	destHeight int
	// crop is the centred region of the source matching the destination
	// aspect ratio, relative to the source origin
	crop image.Rectangle
	// dest is reused between calls to Resize
	dest *image.RGBA
	// scaler interpolates the cropped region to the destination size
	scaler draw.Scaler
	// inputs recycles the normalised model inputs
	inputs *InputPool
}

// NewResizer returns a resizer used for cropping and scaling an image to the
// needed dimensions for the input tensor size
func NewResizer(srcWidth, srcHeight, destWidth, destHeight int) *Resizer {
	r := &Resizer{
		srcWidth:   srcWidth,
		srcHeight:  srcHeight,
		destWidth:  destWidth,
		destHeight: destHeight,
		dest:       image.NewRGBA(image.Rect(0, 0, destWidth, destHeight)),
		scaler:     draw.ApproxBiLinear,
		inputs:     NewInputPool(destWidth, destHeight),
	}

	// precalculate crop region
	r.preCalc()

	return r
}

// preCalc works out the centred crop of the source image that has the same
// aspect ratio as the destination
func (r *Resizer) preCalc() {

	r.crop = image.Rect(0, 0, r.srcWidth, r.srcHeight)

	srcRatio := float64(r.srcHeight) / float64(r.srcWidth)
	destRatio := float64(r.destHeight) / float64(r.destWidth)

	switch {
	case math.Abs(destRatio-srcRatio) < maxRatioDifference:
		// same aspect, scale only

	case destRatio < srcRatio:
		// source is taller, crop top and bottom
		cropH := int(float64(r.srcWidth) * destRatio)
		top := (r.srcHeight - cropH) / 2
		r.crop = image.Rect(0, top, r.srcWidth, top+cropH)

	default:
		// source is wider, crop left and right
		cropW := int(float64(r.srcHeight) / destRatio)
		left := (r.srcWidth - cropW) / 2
		r.crop = image.Rect(left, 0, left+cropW, r.srcHeight)
	}
}

// Resize crops the centre of src to the destination aspect ratio and scales
// it to the destination size.  The returned image is reused on the next call
func (r *Resizer) Resize(src image.Image) *image.RGBA {

	region := r.crop.Add(src.Bounds().Min)
	r.scaler.Scale(r.dest, r.dest.Bounds(), src, region, draw.Src, nil)

	return r.dest
}

// Input crops, scales and normalises src into a model input.  Pass the
// input to Release once the engine has finished with it
func (r *Resizer) Input(src image.Image) *poseaction.Input {
	in := r.inputs.Get()
	in.Data = NormalizeInto(in.Data, r.Resize(src))
	return in
}

// Release returns an input created by Input for reuse
func (r *Resizer) Release(in *poseaction.Input) {
	r.inputs.Put(in)
}

// Crop returns the region of the source image used, relative to the source
// image origin
func (r *Resizer) Crop() image.Rectangle {
	return r.crop
}

// SrcWidth returns the width of the source image
func (r *Resizer) SrcWidth() int {
	return r.srcWidth
}

// SrcHeight returns the height of the source image
func (r *Resizer) SrcHeight() int {
	return r.srcHeight
}

// Normalize converts an image into float32 R,G,B values in NHWC layout
// normalised with Mean and Std
func Normalize(img image.Image) *poseaction.Input {

	b := img.Bounds()

	return &poseaction.Input{
		Width:  b.Dx(),
		Height: b.Dy(),
		Data:   NormalizeInto(nil, img),
	}
}

// NormalizeInto appends the normalised values of img to dst[:0] and returns
// the extended slice
func NormalizeInto(dst []float32, img image.Image) []float32 {

	b := img.Bounds()
	data := dst[:0]

	if n := b.Dx() * b.Dy() * poseaction.Channels; cap(data) < n {
		data = make([]float32, 0, n)
	}

	if rgba, ok := img.(*image.RGBA); ok {
		// fast path reading pixel bytes directly
		for y := b.Min.Y; y < b.Max.Y; y++ {
			row := rgba.Pix[rgba.PixOffset(b.Min.X, y):rgba.PixOffset(b.Max.X, y)]

			for i := 0; i < len(row); i += 4 {
				data = append(data,
					(float32(row[i])-Mean)/Std,
					(float32(row[i+1])-Mean)/Std,
					(float32(row[i+2])-Mean)/Std,
				)
			}
		}

	} else {
		for y := b.Min.Y; y < b.Max.Y; y++ {
			for x := b.Min.X; x < b.Max.X; x++ {
				cr, cg, cb, _ := img.At(x, y).RGBA()
				data = append(data,
					(float32(cr>>8)-Mean)/Std,
					(float32(cg>>8)-Mean)/Std,
					(float32(cb>>8)-Mean)/Std,
				)
			}
		}
	}

	return data
}
