package postprocess

import (
	"errors"
	"fmt"
	"image"

	"github.com/swdee/go-poseaction"
	"github.com/swdee/go-poseaction/pose"
)

var (
	// ErrMissingOutput is returned when the heatmaps or offsets tensor is nil
	ErrMissingOutput = errors.New("missing output tensor")
	// ErrDegenerateGrid is returned when the heatmap grid has a height or
	// width of 1, which can not be projected back to image space
	ErrDegenerateGrid = errors.New("degenerate heatmap grid")
	// ErrKeyPointCount is returned when the heatmap channel count is not the
	// number of keypoints expected
	ErrKeyPointCount = errors.New("unexpected keypoint channel count")
	// ErrShapeMismatch is returned when the offsets tensor does not match
	// the heatmaps tensor
	ErrShapeMismatch = errors.New("output tensor shape mismatch")
	// ErrImageSize is returned for a non positive source image size
	ErrImageSize = errors.New("invalid image size")
)

// PoseNet defines the struct for PoseNet model single pose post processing
type PoseNet struct {
	// Params are the Model configuration parameters
	Params PoseNetParams
}

// PoseNetParams defines the struct containing the PoseNet parameters to use
// for post processing operations
type PoseNetParams struct {
	// KeyPointsNumber is the number of COCO keypoints representing different
	// parts of the body the pose model is trained on
	KeyPointsNumber int
}

// PoseNetCOCOParams returns an instance of PoseNetParams configured with
// default values for a Model trained on the COCO dataset featuring:
// - KeyPoints Number: 17
func PoseNetCOCOParams() PoseNetParams {
	return PoseNetParams{
		KeyPointsNumber: pose.KeyPointsNumber,
	}
}

// NewPoseNet returns an instance of the PoseNet post processor
func NewPoseNet(p PoseNetParams) *PoseNet {
	return &PoseNet{
		Params: p,
	}
}

// DecodePose takes the PoseNet outputs and decodes the single best scoring
// location of each keypoint into a Person.  The imgWidth and imgHeight are
// the dimensions of the source image the keypoint positions are projected to
func (p *PoseNet) DecodePose(outputs *poseaction.Outputs, imgWidth,
	imgHeight int) (pose.Person, error) {

	gridH, gridW, numKeyPoints, err := p.checkShape(outputs)

	if err != nil {
		return pose.Person{}, err
	}

	if imgWidth <= 0 || imgHeight <= 0 {
		return pose.Person{}, fmt.Errorf("%w: %dx%d", ErrImageSize, imgWidth, imgHeight)
	}

	heatmaps := outputs.Heatmaps
	offsets := outputs.Offsets

	var positions [pose.KeyPointsNumber]image.Point
	var scores [pose.KeyPointsNumber]float32

	for k := 0; k < numKeyPoints; k++ {

		row, col, maxVal := argmax(heatmaps, gridH, gridW, k)

		offY := offsets.At4(0, row, col, k)
		offX := offsets.At4(0, row, col, k+numKeyPoints)

		y := float32(row)/float32(gridH-1)*float32(imgHeight) + offY
		x := float32(col)/float32(gridW-1)*float32(imgWidth) + offX

		// truncate towards zero
		positions[k] = image.Pt(int(x), int(y))
		scores[k] = sigmoid(maxVal)
	}

	return pose.NewPerson(positions, scores), nil
}

// checkShape validates the heatmaps and offsets tensors and returns the
// grid height, width and number of keypoints
func (p *PoseNet) checkShape(outputs *poseaction.Outputs) (int, int, int, error) {

	if outputs == nil || outputs.Heatmaps == nil || outputs.Offsets == nil {
		return 0, 0, 0, ErrMissingOutput
	}

	heatmaps := outputs.Heatmaps
	offsets := outputs.Offsets

	if err := heatmaps.Validate(); err != nil {
		return 0, 0, 0, fmt.Errorf("heatmaps: %w", err)
	}

	if err := offsets.Validate(); err != nil {
		return 0, 0, 0, fmt.Errorf("offsets: %w", err)
	}

	gridH := heatmaps.Dims[1]
	gridW := heatmaps.Dims[2]
	numKeyPoints := heatmaps.Dims[3]

	if numKeyPoints != p.Params.KeyPointsNumber || numKeyPoints != pose.KeyPointsNumber {
		return 0, 0, 0, fmt.Errorf("%w: got %d, want %d", ErrKeyPointCount,
			numKeyPoints, p.Params.KeyPointsNumber)
	}

	if gridH < 2 || gridW < 2 {
		return 0, 0, 0, fmt.Errorf("%w: %dx%d", ErrDegenerateGrid, gridH, gridW)
	}

	if offsets.Dims[0] != heatmaps.Dims[0] || offsets.Dims[1] != gridH ||
		offsets.Dims[2] != gridW || offsets.Dims[3] != 2*numKeyPoints {
		return 0, 0, 0, fmt.Errorf("%w: heatmaps %v, offsets %v", ErrShapeMismatch,
			heatmaps.Dims, offsets.Dims)
	}

	return gridH, gridW, numKeyPoints, nil
}

// argmax scans the full heatmap grid of keypoint channel k and returns the
// row and column of the highest activation along with its value.  The first
// maximum found in row major order wins
func argmax(heatmaps *poseaction.Tensor, gridH, gridW, k int) (int, int, float32) {

	maxVal := heatmaps.At4(0, 0, 0, k)
	maxRow := 0
	maxCol := 0

	for row := 0; row < gridH; row++ {
		for col := 0; col < gridW; col++ {
			if v := heatmaps.At4(0, row, col, k); v > maxVal {
				maxVal = v
				maxRow = row
				maxCol = col
			}
		}
	}

	return maxRow, maxCol, maxVal
}
