package classify

import (
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/swdee/go-poseaction/geometry"
	"github.com/swdee/go-poseaction/pose"
)

// PushUpParams defines the angles used for push up counting
type PushUpParams struct {
	// Threshold is the minimum keypoint score for elbows and shoulders
	Threshold float32
	// LeftAngle is the shoulder to elbow angle of the left side when in the
	// push up position
	LeftAngle float64
	// RightAngle is the shoulder to elbow angle of the right side when in
	// the push up position
	RightAngle float64
	// Leeway is the allowed deviation in degrees, exclusive, either side of
	// the required angles
	Leeway float64
}

// DefaultPushUpParams returns an instance of PushUpParams configured with:
// - Threshold: 0.5
// - Left Angle: 90
// - Right Angle: 270
// - Leeway: 10
func DefaultPushUpParams() PushUpParams {
	return PushUpParams{
		Threshold:  pose.ConfidenceThreshold,
		LeftAngle:  90,
		RightAngle: 270,
		Leeway:     10,
	}
}

// PushUpCounter counts push up repetitions.  A repetition is counted once on
// each transition into the push up position, staying in position does not
// count again.  The count never resets for the life of the instance
type PushUpCounter struct {
	params PushUpParams
	// inPosition is true while the subject holds the push up position
	inPosition bool
	// count of push ups
	count int
	log   zerolog.Logger
}

// NewPushUp returns a push up counter
func NewPushUp(p PushUpParams, logger zerolog.Logger) *PushUpCounter {
	return &PushUpCounter{
		params: p,
		log:    logger.With().Str("classifier", "pushup").Logger(),
	}
}

// Name of the classifier
func (p *PushUpCounter) Name() string {
	return "pushup"
}

// Count returns the number of push ups counted
func (p *PushUpCounter) Count() int {
	return p.count
}

// InPosition reports if the last evaluated frame was in the push up position
func (p *PushUpCounter) InPosition() bool {
	return p.inPosition
}

// Update applies the shoulder to elbow angles of a frame to the counter and
// reports if a new repetition was counted
func (p *PushUpCounter) Update(degreesLeft, degreesRight float64) bool {

	if geometry.InDegreeRange(degreesLeft, p.params.LeftAngle, p.params.Leeway) &&
		geometry.InDegreeRange(degreesRight, p.params.RightAngle, p.params.Leeway) {

		if !p.inPosition {
			p.count++
			p.inPosition = true
			return true
		}

		return false
	}

	p.inPosition = false
	return false
}

// Classify evaluates the frame only when both elbows and both shoulders are
// confident, otherwise the frame is skipped with no change of state
func (p *PushUpCounter) Classify(person *pose.Person, _ time.Duration) Result {

	if !person.Confident(p.params.Threshold,
		pose.LeftElbow, pose.RightElbow, pose.LeftShoulder, pose.RightShoulder) {
		return Result{}
	}

	degreesLeft := geometry.RotationAngleDegrees(
		person.KeyPoint(pose.LeftShoulder).Position,
		person.KeyPoint(pose.LeftElbow).Position,
	)

	degreesRight := geometry.RotationAngleDegrees(
		person.KeyPoint(pose.RightShoulder).Position,
		person.KeyPoint(pose.RightElbow).Position,
	)

	var res Result

	if p.Update(degreesLeft, degreesRight) {
		res.Actions = append(res.Actions, PushUp)
		p.log.Debug().Int("count", p.count).Msg("push up counted")
	}

	res.Messages = []string{
		fmt.Sprintf("Left side angle: %.1f", degreesLeft),
		fmt.Sprintf("Right side angle: %.1f", degreesRight),
		fmt.Sprintf("Push ups count: %d", p.count),
	}

	return res
}
