package tracker

import (
	"time"

	"github.com/swdee/go-poseaction/geometry"
	"github.com/swdee/go-poseaction/pose"
)

// TrackerParams defines the thresholds and history size used for tracking
// joint movement
type TrackerParams struct {
	// Threshold is the minimum keypoint score for a sample to be recorded
	Threshold float32
	// Capacity is the maximum number of samples kept per joint
	Capacity int
	// VelocityThreshold is the speed in pixels per millisecond above which
	// a joint is considered to be moving
	VelocityThreshold float64
}

// DefaultTrackerParams returns an instance of TrackerParams configured with:
// - Threshold: 0.5
// - Capacity: 6
// - Velocity Threshold: 0.15
func DefaultTrackerParams() TrackerParams {
	return TrackerParams{
		Threshold:         pose.ConfidenceThreshold,
		Capacity:          6,
		VelocityThreshold: 0.15,
	}
}

// Movement is the result of a single tracker update for a joint
type Movement struct {
	Part pose.BodyPart
	// Tracked is true when the keypoint met the confidence threshold and was
	// added to the history
	Tracked bool
	// Velocity is the mean speed over the joint history, zero when not Tracked
	Velocity float64
	// Moving is true when Velocity exceeded the velocity threshold
	Moving bool
}

// Tracker keeps a movement history per joint.  A confident sample is pushed
// onto the joint's history, a low confidence sample drops the oldest entry
// so a briefly occluded joint's trend decays rather than vanishing.
//
// Tracker is not safe for concurrent use
type Tracker struct {
	params TrackerParams
	// history of movement points per joint
	history map[pose.BodyPart]*History
}

// NewTracker returns a new joint movement tracker
func NewTracker(p TrackerParams) *Tracker {
	return &Tracker{
		params:  p,
		history: make(map[pose.BodyPart]*History),
	}
}

// Params returns the tracker parameters
func (t *Tracker) Params() TrackerParams {
	return t.params
}

// Reset clears all history
func (t *Tracker) Reset() {
	t.history = make(map[pose.BodyPart]*History)
}

// get returns the history for the given joint, creating it if needed
func (t *Tracker) get(part pose.BodyPart) *History {

	h, exists := t.history[part]

	if !exists {
		h = NewHistory(t.params.Capacity)
		t.history[part] = h
	}

	return h
}

// Update records the keypoint sample for its joint with the inference
// latency that produced it and returns the joint's movement
func (t *Tracker) Update(kp pose.KeyPoint, elapsed time.Duration) Movement {

	h := t.get(kp.Part)

	if !kp.Confident(t.params.Threshold) {
		h.DropOldest()
		return Movement{Part: kp.Part}
	}

	h.Push(geometry.MovementPoint{
		X:           kp.Position.X,
		Y:           kp.Position.Y,
		ElapsedTime: elapsed.Milliseconds(),
	})

	v := geometry.Velocity(h.Points())

	return Movement{
		Part:     kp.Part,
		Tracked:  true,
		Velocity: v,
		Moving:   v > t.params.VelocityThreshold,
	}
}

// History returns a copy of the movement points for a joint, oldest first
func (t *Tracker) History(part pose.BodyPart) []geometry.MovementPoint {

	if h, exists := t.history[part]; exists {
		return h.Points()
	}

	// no history yet
	return nil
}

// Len returns the number of movement points held for a joint
func (t *Tracker) Len(part pose.BodyPart) int {

	if h, exists := t.history[part]; exists {
		return h.Len()
	}

	return 0
}
