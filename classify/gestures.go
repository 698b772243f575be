package classify

import (
	"time"

	"github.com/swdee/go-poseaction/geometry"
	"github.com/swdee/go-poseaction/pose"
)

// Gestures runs a list of classifiers in order on each frame and combines
// their results
type Gestures struct {
	classifiers []Classifier
}

// NewGestures returns a classifier combining the given classifiers
func NewGestures(classifiers ...Classifier) *Gestures {
	return &Gestures{
		classifiers: classifiers,
	}
}

// Name of the classifier
func (g *Gestures) Name() string {
	return "gestures"
}

// Classifiers returns the combined classifiers
func (g *Gestures) Classifiers() []Classifier {
	return g.classifiers
}

// Trails merges the movement history of the combined classifiers that
// track joints
func (g *Gestures) Trails() map[pose.BodyPart][]geometry.MovementPoint {

	trails := make(map[pose.BodyPart][]geometry.MovementPoint)

	for _, c := range g.classifiers {
		if t, ok := c.(Trailer); ok {
			for part, points := range t.Trails() {
				trails[part] = points
			}
		}
	}

	return trails
}

// Classify runs every classifier on the frame
func (g *Gestures) Classify(person *pose.Person, elapsed time.Duration) Result {

	var res Result

	for _, c := range g.classifiers {
		res.merge(c.Classify(person, elapsed))
	}

	return res
}
