package classify

import (
	"time"

	"github.com/rs/zerolog"
	"github.com/swdee/go-poseaction/geometry"
	"github.com/swdee/go-poseaction/pose"
)

// ArmRaiseParams defines the thresholds used for raised arm detection
type ArmRaiseParams struct {
	// Threshold is the minimum keypoint score for wrist and shoulder
	Threshold float32
	// LowerAngle and UpperAngle bound the open interval of shoulder to
	// wrist angles that count as lowered, angles outside it are raised
	LowerAngle float64
	UpperAngle float64
}

// DefaultArmRaiseParams returns an instance of ArmRaiseParams configured
// with:
// - Threshold: 0.5
// - Lower Angle: 90
// - Upper Angle: 270
func DefaultArmRaiseParams() ArmRaiseParams {
	return ArmRaiseParams{
		Threshold:  pose.ConfidenceThreshold,
		LowerAngle: 90,
		UpperAngle: 270,
	}
}

// side pairs the keypoints of one arm with the action reported when raised
type side struct {
	name     string
	wrist    pose.BodyPart
	shoulder pose.BodyPart
	action   Action
}

// arms are evaluated left body side first.  The reported action is swapped
// as a front facing camera mirrors the subject, so the subject's left arm
// shows on the right of the frame
var arms = []side{
	{"left", pose.LeftWrist, pose.LeftShoulder, RightHandUp},
	{"right", pose.RightWrist, pose.RightShoulder, LeftHandUp},
}

// ArmRaise detects an arm raised above the shoulder on either side
type ArmRaise struct {
	params ArmRaiseParams
	log    zerolog.Logger
}

// NewArmRaise returns a raised arm detector
func NewArmRaise(p ArmRaiseParams, logger zerolog.Logger) *ArmRaise {
	return &ArmRaise{
		params: p,
		log:    logger.With().Str("classifier", "armraise").Logger(),
	}
}

// Name of the classifier
func (a *ArmRaise) Name() string {
	return "armraise"
}

// Raised reports if the shoulder to wrist angle is outside the lowered range
func (a *ArmRaise) Raised(degrees float64) bool {
	return degrees > a.params.UpperAngle || degrees < a.params.LowerAngle
}

// Classify checks each arm independently
func (a *ArmRaise) Classify(person *pose.Person, _ time.Duration) Result {

	var res Result

	for _, arm := range arms {

		if !person.Confident(a.params.Threshold, arm.wrist, arm.shoulder) {
			continue
		}

		degrees := geometry.RotationAngleDegrees(
			person.KeyPoint(arm.shoulder).Position,
			person.KeyPoint(arm.wrist).Position,
		)

		a.log.Debug().Str("arm", arm.name).Float64("degrees", degrees).Msg("arm angle")

		if a.Raised(degrees) {
			res.Actions = append(res.Actions, arm.action)
		}
	}

	return res
}
