package classify

import (
	"image"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/swdee/go-poseaction/pose"
)

// person returns a Person with all keypoints confident at the origin
func person() *pose.Person {

	p := &pose.Person{Score: 0.9}

	for i := range p.KeyPoints {
		p.KeyPoints[i] = pose.KeyPoint{
			Part:  pose.BodyPart(i),
			Score: 0.9,
		}
	}

	return p
}

// place sets the position and score of a keypoint
func place(p *pose.Person, part pose.BodyPart, x, y int, score float32) {
	p.KeyPoints[part].Position = image.Pt(x, y)
	p.KeyPoints[part].Score = score
}

func TestArmRaiseBoundary(t *testing.T) {

	a := NewArmRaise(DefaultArmRaiseParams(), zerolog.Nop())

	tests := []struct {
		degrees float64
		raised  bool
	}{
		{0, true},
		{45, true},
		{89.9, true},
		{90, false},
		{90.1, false},
		{180, false},
		{269.9, false},
		{270, false},
		{270.1, true},
		{359.9, true},
	}

	for _, tc := range tests {
		assert.Equal(t, tc.raised, a.Raised(tc.degrees), "degrees %v", tc.degrees)
	}
}

func TestArmRaiseMirrored(t *testing.T) {

	a := NewArmRaise(DefaultArmRaiseParams(), zerolog.Nop())

	// left wrist above left shoulder, right wrist below right shoulder
	p := person()
	place(p, pose.LeftShoulder, 100, 200, 0.9)
	place(p, pose.LeftWrist, 100, 50, 0.9)
	place(p, pose.RightShoulder, 300, 200, 0.9)
	place(p, pose.RightWrist, 300, 350, 0.9)

	res := a.Classify(p, 0)
	assert.Equal(t, []Action{RightHandUp}, res.Actions)

	// right wrist raised too
	place(p, pose.RightWrist, 320, 40, 0.9)
	res = a.Classify(p, 0)
	assert.Equal(t, []Action{RightHandUp, LeftHandUp}, res.Actions)

	last, ok := res.Last()
	require.True(t, ok)
	assert.Equal(t, LeftHandUp, last)
}

func TestArmRaiseLowConfidenceSkipped(t *testing.T) {

	a := NewArmRaise(DefaultArmRaiseParams(), zerolog.Nop())

	p := person()
	place(p, pose.LeftShoulder, 100, 200, 0.9)
	place(p, pose.LeftWrist, 100, 50, 0.3)
	place(p, pose.RightShoulder, 300, 200, 0.2)
	place(p, pose.RightWrist, 300, 50, 0.9)

	res := a.Classify(p, 0)
	assert.Empty(t, res.Actions)

	_, ok := res.Last()
	assert.False(t, ok)
}

func TestWave(t *testing.T) {

	w := NewWave(DefaultWaveParams(), zerolog.Nop())
	p := person()

	// first sample has no velocity
	place(p, pose.LeftWrist, 100, 100, 0.9)
	place(p, pose.RightWrist, 300, 100, 0.9)
	res := w.Classify(p, 20*time.Millisecond)
	assert.Empty(t, res.Actions)

	// left wrist moves 30px in 20ms, right wrist stays still
	place(p, pose.LeftWrist, 130, 100, 0.9)
	res = w.Classify(p, 20*time.Millisecond)
	assert.Equal(t, []Action{Waving}, res.Actions)

	// both wrists occluded, histories decay and nothing is reported
	place(p, pose.LeftWrist, 400, 100, 0.1)
	place(p, pose.RightWrist, 0, 0, 0.1)
	res = w.Classify(p, 20*time.Millisecond)
	assert.Empty(t, res.Actions)
	assert.Equal(t, 1, w.Tracker().Len(pose.LeftWrist))
	assert.Equal(t, 1, w.Tracker().Len(pose.RightWrist))
}

func TestWaveStillHands(t *testing.T) {

	w := NewWave(DefaultWaveParams(), zerolog.Nop())
	p := person()
	place(p, pose.LeftWrist, 100, 100, 0.9)
	place(p, pose.RightWrist, 300, 100, 0.9)

	for i := 0; i < 20; i++ {
		res := w.Classify(p, 30*time.Millisecond)
		assert.Empty(t, res.Actions)
		assert.LessOrEqual(t, w.Tracker().Len(pose.LeftWrist), 6)
	}
}

func TestGesturesTrails(t *testing.T) {

	c, err := New(ModeGestures, DefaultParams(), zerolog.Nop())
	require.NoError(t, err)

	p := person()
	place(p, pose.LeftWrist, 100, 100, 0.9)
	place(p, pose.RightWrist, 300, 100, 0.2)

	c.Classify(p, 20*time.Millisecond)
	place(p, pose.LeftWrist, 110, 100, 0.9)
	c.Classify(p, 20*time.Millisecond)

	tr, ok := c.(Trailer)
	require.True(t, ok)

	trails := tr.Trails()
	require.Len(t, trails[pose.LeftWrist], 2)
	assert.Equal(t, 110, trails[pose.LeftWrist][1].X)
	assert.Empty(t, trails[pose.RightWrist])

	// push up counter tracks no joints
	pu, err := New(ModePushUps, DefaultParams(), zerolog.Nop())
	require.NoError(t, err)
	_, ok = pu.(Trailer)
	assert.False(t, ok)
}

func TestPushUpScriptedSequence(t *testing.T) {

	pu := NewPushUp(DefaultPushUpParams(), zerolog.Nop())

	in := [2]float64{90, 270}
	out := [2]float64{180, 180}

	seq := [][2]float64{in, out, in, in, out, in}
	counted := []bool{true, false, true, false, false, true}

	for i, angles := range seq {
		assert.Equal(t, counted[i], pu.Update(angles[0], angles[1]), "frame %d", i)
	}

	assert.Equal(t, 3, pu.Count())
	assert.True(t, pu.InPosition())
}

func TestPushUpLeeway(t *testing.T) {

	pu := NewPushUp(DefaultPushUpParams(), zerolog.Nop())

	// leeway is exclusive
	assert.False(t, pu.Update(80, 270))
	assert.False(t, pu.Update(90, 280))
	assert.True(t, pu.Update(80.5, 279.5))
	assert.Equal(t, 1, pu.Count())

	// only one side in position leaves the position
	assert.False(t, pu.Update(90, 180))
	assert.False(t, pu.InPosition())
	assert.True(t, pu.Update(99, 261))
	assert.Equal(t, 2, pu.Count())
}

func TestPushUpClassify(t *testing.T) {

	pu := NewPushUp(DefaultPushUpParams(), zerolog.Nop())

	down := person()
	place(down, pose.LeftShoulder, 100, 100, 0.9)
	place(down, pose.LeftElbow, 150, 100, 0.9)
	place(down, pose.RightShoulder, 300, 100, 0.9)
	place(down, pose.RightElbow, 250, 100, 0.9)

	up := person()
	place(up, pose.LeftShoulder, 100, 100, 0.9)
	place(up, pose.LeftElbow, 100, 150, 0.9)
	place(up, pose.RightShoulder, 300, 100, 0.9)
	place(up, pose.RightElbow, 300, 150, 0.9)

	res := pu.Classify(down, 0)
	assert.Equal(t, []Action{PushUp}, res.Actions)
	assert.Equal(t, []string{
		"Left side angle: 90.0",
		"Right side angle: 270.0",
		"Push ups count: 1",
	}, res.Messages)

	// low confidence elbow skips the frame with no state change
	occluded := *up
	occluded.KeyPoints[pose.RightElbow].Score = 0.1
	res = pu.Classify(&occluded, 0)
	assert.Empty(t, res.Actions)
	assert.Empty(t, res.Messages)
	assert.True(t, pu.InPosition())

	// still down after the skipped frame, no double count
	res = pu.Classify(down, 0)
	assert.Empty(t, res.Actions)
	assert.Equal(t, 1, pu.Count())

	pu.Classify(up, 0)
	assert.False(t, pu.InPosition())

	res = pu.Classify(down, 0)
	assert.Equal(t, []Action{PushUp}, res.Actions)
	assert.Equal(t, 2, pu.Count())
}

func TestGesturesCombines(t *testing.T) {

	c, err := New(ModeGestures, DefaultParams(), zerolog.Nop())
	require.NoError(t, err)
	assert.Equal(t, "gestures", c.Name())

	p := person()
	place(p, pose.LeftShoulder, 100, 200, 0.9)
	place(p, pose.LeftWrist, 100, 50, 0.9)
	place(p, pose.RightShoulder, 300, 200, 0.9)
	place(p, pose.RightWrist, 300, 350, 0.9)

	c.Classify(p, 20*time.Millisecond)

	place(p, pose.LeftWrist, 140, 50, 0.9)
	res := c.Classify(p, 20*time.Millisecond)

	// arm raise is evaluated before waving
	assert.Equal(t, []Action{RightHandUp, Waving}, res.Actions)
}

func TestNewMode(t *testing.T) {

	c, err := New(ModePushUps, DefaultParams(), zerolog.Nop())
	require.NoError(t, err)
	assert.IsType(t, &PushUpCounter{}, c)

	_, err = New(Mode(9), DefaultParams(), zerolog.Nop())
	assert.Error(t, err)

	m, err := ParseMode("PushUps")
	require.NoError(t, err)
	assert.Equal(t, ModePushUps, m)

	_, err = ParseMode("dance")
	assert.Error(t, err)

	assert.Equal(t, "right hand up", RightHandUp.String())
}
