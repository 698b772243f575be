package pose

import (
	"fmt"
	"image"

	"gonum.org/v1/gonum/stat"
)

// ConfidenceThreshold is the minimum keypoint score for a keypoint to be
// trusted by any consuming logic
const ConfidenceThreshold float32 = 0.5

// BodyPart is one of the 17 COCO keypoints a pose model is trained on.  The
// ordinal matches the channel index of the model's heatmap tensor
type BodyPart int

const (
	Nose BodyPart = iota
	LeftEye
	RightEye
	LeftEar
	RightEar
	LeftShoulder
	RightShoulder
	LeftElbow
	RightElbow
	LeftWrist
	RightWrist
	LeftHip
	RightHip
	LeftKnee
	RightKnee
	LeftAnkle
	RightAnkle
)

// KeyPointsNumber is the number of body parts in a skeleton
const KeyPointsNumber = 17

var bodyPartNames = [KeyPointsNumber]string{
	"nose",
	"left_eye",
	"right_eye",
	"left_ear",
	"right_ear",
	"left_shoulder",
	"right_shoulder",
	"left_elbow",
	"right_elbow",
	"left_wrist",
	"right_wrist",
	"left_hip",
	"right_hip",
	"left_knee",
	"right_knee",
	"left_ankle",
	"right_ankle",
}

// String returns the snake case name of the body part
func (b BodyPart) String() string {
	if !b.Valid() {
		return fmt.Sprintf("body_part(%d)", int(b))
	}
	return bodyPartNames[b]
}

// Valid reports if the body part is one of the 17 canonical joints
func (b BodyPart) Valid() bool {
	return b >= Nose && b <= RightAnkle
}

// BodyParts returns all body parts in canonical order
func BodyParts() []BodyPart {
	parts := make([]BodyPart, KeyPointsNumber)

	for i := range parts {
		parts[i] = BodyPart(i)
	}

	return parts
}

// KeyPoint is a single body joint detected in a frame
type KeyPoint struct {
	// Part is the body part this keypoint represents
	Part BodyPart
	// Position is the location in source image pixel space
	Position image.Point
	// Score is the confidence score in the range [0,1]
	Score float32
}

// Confident reports if the keypoint score meets the given threshold
func (k KeyPoint) Confident(threshold float32) bool {
	return k.Score >= threshold
}

// Person is the decoded skeleton of a single subject for one frame.  There
// is always exactly one KeyPoint per BodyPart, indexed by the BodyPart
// ordinal.  Undetected joints carry a low score, they are never absent
type Person struct {
	KeyPoints [KeyPointsNumber]KeyPoint
	// Score is the mean of all keypoint scores
	Score float32
}

// NewPerson builds a Person from the keypoint positions and scores given in
// canonical body part order and calculates the overall score
func NewPerson(positions [KeyPointsNumber]image.Point,
	scores [KeyPointsNumber]float32) Person {

	p := Person{}
	vals := make([]float64, KeyPointsNumber)

	for i := 0; i < KeyPointsNumber; i++ {
		p.KeyPoints[i] = KeyPoint{
			Part:     BodyPart(i),
			Position: positions[i],
			Score:    scores[i],
		}
		vals[i] = float64(scores[i])
	}

	p.Score = float32(stat.Mean(vals, nil))

	return p
}

// KeyPoint returns the keypoint for the given body part
func (p *Person) KeyPoint(part BodyPart) KeyPoint {
	return p.KeyPoints[part]
}

// Confident reports if all the given body parts meet the threshold score
func (p *Person) Confident(threshold float32, parts ...BodyPart) bool {
	for _, part := range parts {
		if !p.KeyPoints[part].Confident(threshold) {
			return false
		}
	}

	return true
}

// Translate returns a copy of the Person with every keypoint position moved
// by d
func (p Person) Translate(d image.Point) Person {

	for i := range p.KeyPoints {
		p.KeyPoints[i].Position = p.KeyPoints[i].Position.Add(d)
	}

	return p
}

// Joint is a pair of body parts connected by a line in the skeleton
type Joint struct {
	From, To BodyPart
}

// Joints defines the skeleton topology used for drawing lines between
// keypoints
var Joints = []Joint{
	{LeftWrist, LeftElbow},
	{LeftElbow, LeftShoulder},
	{LeftShoulder, RightShoulder},
	{RightShoulder, RightElbow},
	{RightElbow, RightWrist},
	{LeftShoulder, LeftHip},
	{LeftHip, RightHip},
	{RightHip, RightShoulder},
	{LeftHip, LeftKnee},
	{LeftKnee, LeftAnkle},
	{RightHip, RightKnee},
	{RightKnee, RightAnkle},
}
