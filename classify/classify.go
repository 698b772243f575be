// Package classify contains the temporal action classifiers that consume a
// per frame Person and recognise hand waving, raised arms and push up
// repetitions.
package classify

import (
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/swdee/go-poseaction/geometry"
	"github.com/swdee/go-poseaction/pose"
)

// Action is a discrete human action recognised by a classifier
type Action int

const (
	Waving Action = iota
	LeftHandUp
	RightHandUp
	PushUp
)

// String returns a readable description of the action
func (a Action) String() string {
	switch a {
	case Waving:
		return "waving"
	case LeftHandUp:
		return "left hand up"
	case RightHandUp:
		return "right hand up"
	case PushUp:
		return "push up"
	default:
		return fmt.Sprintf("unknown action %d", int(a))
	}
}

// Result is the outcome of classifying a single frame
type Result struct {
	// Actions recognised in this frame, in the order they were evaluated
	Actions []Action
	// Messages are human readable status lines for display
	Messages []string
}

// Last returns the last action recognised in the frame
func (r Result) Last() (Action, bool) {

	if len(r.Actions) == 0 {
		return 0, false
	}

	return r.Actions[len(r.Actions)-1], true
}

// merge appends the other result onto this one
func (r *Result) merge(other Result) {
	r.Actions = append(r.Actions, other.Actions...)
	r.Messages = append(r.Messages, other.Messages...)
}

// Classifier consumes the Person decoded from each frame, updates its own
// private state and reports what it recognised.  The elapsed time is the
// inference latency of the frame.  Classifiers are not safe for concurrent
// use, a keypoint below the confidence threshold is skipped rather than
// treated as an error
type Classifier interface {
	Name() string
	Classify(person *pose.Person, elapsed time.Duration) Result
}

// Trailer is implemented by classifiers tracking joint movement, Trails
// returns a copy of the movement history of each tracked joint, oldest
// point first
type Trailer interface {
	Trails() map[pose.BodyPart][]geometry.MovementPoint
}

// Mode selects a set of classifiers to run
type Mode int

const (
	// ModeGestures recognises raised arms and hand waving
	ModeGestures Mode = iota
	// ModePushUps counts push up repetitions
	ModePushUps
)

// String returns a readable name of the mode
func (m Mode) String() string {
	switch m {
	case ModeGestures:
		return "gestures"
	case ModePushUps:
		return "pushups"
	default:
		return fmt.Sprintf("unknown mode %d", int(m))
	}
}

// ParseMode converts a mode name into a Mode
func ParseMode(name string) (Mode, error) {

	switch strings.ToLower(strings.TrimSpace(name)) {
	case "gestures", "gesture", "hands":
		return ModeGestures, nil
	case "pushups", "pushup", "push-ups":
		return ModePushUps, nil
	}

	return ModeGestures, fmt.Errorf("unknown mode %q, use 'gestures' or 'pushups'", name)
}

// Params holds the parameters of all classifiers
type Params struct {
	ArmRaise ArmRaiseParams
	Wave     WaveParams
	PushUp   PushUpParams
}

// DefaultParams returns the default parameters of all classifiers
func DefaultParams() Params {
	return Params{
		ArmRaise: DefaultArmRaiseParams(),
		Wave:     DefaultWaveParams(),
		PushUp:   DefaultPushUpParams(),
	}
}

// New returns a fresh classifier for the given mode.  A new instance must be
// created per session as classifiers keep state between frames
func New(mode Mode, p Params, logger zerolog.Logger) (Classifier, error) {

	switch mode {
	case ModeGestures:
		return NewGestures(
			NewArmRaise(p.ArmRaise, logger),
			NewWave(p.Wave, logger),
		), nil
	case ModePushUps:
		return NewPushUp(p.PushUp, logger), nil
	}

	return nil, fmt.Errorf("unknown mode %d", int(mode))
}
