//go:build integration
// +build integration

package rknn

import (
	"image"
	"os"
	"testing"

	"github.com/swdee/go-poseaction"
	"github.com/swdee/go-poseaction/pose"
	"github.com/swdee/go-poseaction/postprocess"
	"github.com/swdee/go-poseaction/preprocess"
	"gocv.io/x/gocv"
)

// loadFixture reads the model and image named by the RKNN_MODEL and
// RKNN_IMAGE environment variables
func loadFixture(t *testing.T) (string, image.Image) {

	modelFile := os.Getenv("RKNN_MODEL")

	if modelFile == "" {
		t.Skip("No Model file provided in RKNN_MODEL")
	}

	imgFile := os.Getenv("RKNN_IMAGE")

	if imgFile == "" {
		t.Skip("No Image file provided in RKNN_IMAGE")
	}

	mat := gocv.IMRead(imgFile, gocv.IMReadColor)

	if mat.Empty() {
		t.Fatalf("Error reading image from: %s", imgFile)
	}

	defer mat.Close()

	// ToImage converts the BGR Mat to RGBA
	img, err := mat.ToImage()

	if err != nil {
		t.Fatalf("Error converting Mat to image: %v", err)
	}

	return modelFile, img
}

func TestPoseNetInference(t *testing.T) {

	modelFile, img := loadFixture(t)

	rt, err := NewRuntime(modelFile, poseaction.BackendAccelerated)

	if err != nil {
		t.Fatalf("NewRuntime failed: %v", err)
	}

	defer rt.Close()

	w, h := rt.InputSize()
	b := img.Bounds()
	resizer := preprocess.NewResizer(b.Dx(), b.Dy(), w, h)

	outputs, err := rt.Inference(resizer.Input(img))

	if err != nil {
		t.Fatalf("Inference error: %v", err)
	}

	if got := outputs.Heatmaps.Dims[3]; got != pose.KeyPointsNumber {
		t.Fatalf("expected %d heatmap channels, got %d", pose.KeyPointsNumber, got)
	}

	if got := outputs.Offsets.Dims[3]; got != 2*pose.KeyPointsNumber {
		t.Fatalf("expected %d offset channels, got %d", 2*pose.KeyPointsNumber, got)
	}

	crop := resizer.Crop()
	decoder := postprocess.NewPoseNet(postprocess.PoseNetCOCOParams())
	person, err := decoder.DecodePose(outputs, crop.Dx(), crop.Dy())

	if err != nil {
		t.Fatalf("DecodePose error: %v", err)
	}

	for _, kp := range person.KeyPoints {
		if kp.Score < 0 || kp.Score > 1 {
			t.Errorf("%s: score %v out of [0,1]", kp.Part, kp.Score)
		}
	}

	if person.Score < 0.1 {
		t.Errorf("person score %v too low, is there a person in the image?", person.Score)
	}
}

func TestPoolInference(t *testing.T) {

	modelFile, img := loadFixture(t)

	pool, err := NewPool(3, modelFile, RK3588)

	if err != nil {
		t.Fatalf("NewPool failed: %v", err)
	}

	defer pool.Close()

	rt := pool.Get()
	w, h := rt.InputSize()
	pool.Return(rt)

	b := img.Bounds()
	in := preprocess.NewResizer(b.Dx(), b.Dy(), w, h).Input(img)

	for i := 0; i < pool.Size()*2; i++ {
		if _, err := pool.Inference(in); err != nil {
			t.Fatalf("Inference %d error: %v", i, err)
		}
	}

	if err := pool.Close(); err != nil {
		t.Errorf("Close error: %v", err)
	}

	if _, err := pool.Inference(in); err != ErrClosed {
		t.Errorf("expected ErrClosed after Close, got %v", err)
	}
}
