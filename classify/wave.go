package classify

import (
	"time"

	"github.com/rs/zerolog"
	"github.com/swdee/go-poseaction/geometry"
	"github.com/swdee/go-poseaction/pose"
	"github.com/swdee/go-poseaction/tracker"
)

// WaveParams defines the parameters used for hand wave detection
type WaveParams struct {
	Tracker tracker.TrackerParams
}

// DefaultWaveParams returns an instance of WaveParams configured with the
// default tracker parameters
func DefaultWaveParams() WaveParams {
	return WaveParams{
		Tracker: tracker.DefaultTrackerParams(),
	}
}

// wrists are the joints tracked for waving
var wrists = []pose.BodyPart{pose.LeftWrist, pose.RightWrist}

// Wave detects a waving hand from the speed of each wrist over its recent
// movement history
type Wave struct {
	tracker *tracker.Tracker
	log     zerolog.Logger
}

// NewWave returns a hand wave detector
func NewWave(p WaveParams, logger zerolog.Logger) *Wave {
	return &Wave{
		tracker: tracker.NewTracker(p.Tracker),
		log:     logger.With().Str("classifier", "wave").Logger(),
	}
}

// Name of the classifier
func (w *Wave) Name() string {
	return "wave"
}

// Tracker returns the wrist movement tracker
func (w *Wave) Tracker() *tracker.Tracker {
	return w.tracker
}

// Trails returns the movement history of both wrists
func (w *Wave) Trails() map[pose.BodyPart][]geometry.MovementPoint {

	trails := make(map[pose.BodyPart][]geometry.MovementPoint, len(wrists))

	for _, part := range wrists {
		trails[part] = w.tracker.History(part)
	}

	return trails
}

// Classify updates the movement history of both wrists and reports Waving
// when either is moving fast enough
func (w *Wave) Classify(person *pose.Person, elapsed time.Duration) Result {

	var res Result

	for _, part := range wrists {

		m := w.tracker.Update(person.KeyPoint(part), elapsed)

		if !m.Tracked {
			continue
		}

		w.log.Debug().Stringer("part", part).Float64("velocity", m.Velocity).
			Msg("wrist velocity")

		if m.Moving {
			res.Actions = append(res.Actions, Waving)
		}
	}

	return res
}
