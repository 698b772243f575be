// Package session runs the pose to action pipeline for a stream of frames.
// A single worker takes the newest frame, runs inference, decodes the pose
// and classifies it, then hands the Report to a publisher so a slow sink
// never blocks inference.
package session

import (
	"context"
	"errors"
	"fmt"
	"image"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/swdee/go-poseaction"
	"github.com/swdee/go-poseaction/classify"
	"github.com/swdee/go-poseaction/geometry"
	"github.com/swdee/go-poseaction/pose"
	"github.com/swdee/go-poseaction/postprocess"
	"github.com/swdee/go-poseaction/preprocess"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	"golang.org/x/sync/errgroup"
)

// ErrRunning is returned by Run when the session is already running
var ErrRunning = errors.New("session already running")

// Report is the result of processing a frame, published to the Sink
type Report struct {
	// Person is the decoded skeleton in source image pixel space
	Person pose.Person
	// Latency is the inference time of the frame
	Latency time.Duration
	// Result is what the classifiers recognised in this frame
	Result classify.Result
	// LastAction is the most recent action recognised during the session,
	// empty if none yet
	LastAction string
	// Lines are formatted status lines for display
	Lines []string
	// Trails is the movement history of tracked joints, empty when the
	// classifier does not track movement
	Trails map[pose.BodyPart][]geometry.MovementPoint
}

// Sink receives published reports.  Publish is called from a single
// goroutine
type Sink interface {
	Publish(r Report)
}

// SinkFunc adapts a function to a Sink
type SinkFunc func(r Report)

// Publish calls f(r)
func (f SinkFunc) Publish(r Report) {
	f(r)
}

// Factory creates the classifier used for a session run
type Factory func(logger zerolog.Logger) (classify.Classifier, error)

// Config defines the model input size frames are cropped and scaled to
type Config struct {
	ModelWidth  int
	ModelHeight int
}

// DefaultConfig returns the input size of the PoseNet MobileNet model
func DefaultConfig() Config {
	return Config{
		ModelWidth:  257,
		ModelHeight: 257,
	}
}

// Option configures a Session
type Option func(*Session)

// WithLogger sets the logger used by the session and its classifiers
func WithLogger(logger zerolog.Logger) Option {
	return func(s *Session) {
		s.log = logger
	}
}

// WithMeterProvider sets the OpenTelemetry meter provider used to record
// session metrics
func WithMeterProvider(mp metric.MeterProvider) Option {
	return func(s *Session) {
		s.meterProvider = mp
	}
}

// metrics are the instruments recorded by a session
type metrics struct {
	processed metric.Int64Counter
	failed    metric.Int64Counter
	dropped   metric.Int64Counter
	latency   metric.Float64Histogram
}

// Session is a single inference pipeline.  Classifier state is scoped to a
// call of Run and discarded when it returns, so a restarted session begins
// with fresh counters and movement history
type Session struct {
	engine  poseaction.Engine
	decoder *postprocess.PoseNet
	factory Factory
	cfg     Config

	log           zerolog.Logger
	meterProvider metric.MeterProvider
	metrics       metrics

	// mu guards everything below and serialises frame processing as the
	// engine and classifiers are not safe for concurrent use
	mu         sync.Mutex
	classifier classify.Classifier
	resizer    *preprocess.Resizer
	lastAction string

	running atomic.Bool
}

// New returns a session running frames through the engine, decoder and the
// classifier created by factory
func New(engine poseaction.Engine, decoder *postprocess.PoseNet, factory Factory,
	cfg Config, opts ...Option) (*Session, error) {

	if engine == nil || decoder == nil || factory == nil {
		return nil, fmt.Errorf("engine, decoder and factory are required")
	}

	if cfg.ModelWidth <= 0 || cfg.ModelHeight <= 0 {
		return nil, fmt.Errorf("invalid model size %dx%d", cfg.ModelWidth, cfg.ModelHeight)
	}

	s := &Session{
		engine:        engine,
		decoder:       decoder,
		factory:       factory,
		cfg:           cfg,
		log:           zerolog.Nop(),
		meterProvider: noop.NewMeterProvider(),
	}

	for _, opt := range opts {
		opt(s)
	}

	if err := s.initMetrics(); err != nil {
		return nil, err
	}

	return s, nil
}

// initMetrics creates the metric instruments
func (s *Session) initMetrics() error {

	meter := s.meterProvider.Meter("github.com/swdee/go-poseaction/session")

	var err error

	s.metrics.processed, err = meter.Int64Counter("poseaction.frames.processed",
		metric.WithDescription("Frames decoded and classified"))

	if err != nil {
		return fmt.Errorf("error creating processed counter: %w", err)
	}

	s.metrics.failed, err = meter.Int64Counter("poseaction.frames.failed",
		metric.WithDescription("Frames skipped due to inference or decode errors"))

	if err != nil {
		return fmt.Errorf("error creating failed counter: %w", err)
	}

	s.metrics.dropped, err = meter.Int64Counter("poseaction.reports.dropped",
		metric.WithDescription("Reports replaced before the sink received them"))

	if err != nil {
		return fmt.Errorf("error creating dropped counter: %w", err)
	}

	s.metrics.latency, err = meter.Float64Histogram("poseaction.inference.latency",
		metric.WithDescription("Model inference time"), metric.WithUnit("ms"))

	if err != nil {
		return fmt.Errorf("error creating latency histogram: %w", err)
	}

	return nil
}

// reset discards the classifier state and creates a fresh classifier
func (s *Session) reset(logger zerolog.Logger) (classify.Classifier, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, err := s.factory(logger)

	if err != nil {
		return nil, fmt.Errorf("error creating classifier: %w", err)
	}

	s.classifier = c
	s.lastAction = ""

	return c, nil
}

// Run processes frames from src until the context is cancelled or the source
// is closed, publishing a Report per processed frame to sink.  Frames that
// fail inference or decoding are logged and skipped without touching the
// classifier state
func (s *Session) Run(ctx context.Context, src FrameSource, sink Sink) error {

	if !s.running.CompareAndSwap(false, true) {
		return ErrRunning
	}

	defer s.running.Store(false)

	log := s.log.With().Str("session", uuid.NewString()).Logger()

	c, err := s.reset(log)

	if err != nil {
		return err
	}

	log.Info().Str("classifier", c.Name()).Msg("Session started")

	// holds at most one report, a newer report replaces one not yet
	// published
	reports := make(chan Report, 1)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		defer close(reports)
		return s.loop(gctx, src, reports, log)
	})

	g.Go(func() error {
		for r := range reports {
			sink.Publish(r)
		}
		return nil
	})

	err = g.Wait()

	log.Info().Err(err).Msg("Session stopped")

	if errors.Is(err, ErrClosed) || errors.Is(err, context.Canceled) {
		return nil
	}

	return err
}

// loop is the inference worker
func (s *Session) loop(ctx context.Context, src FrameSource,
	reports chan Report, log zerolog.Logger) error {

	for {
		img, err := src.Next(ctx)

		if err != nil {
			return err
		}

		rep, err := s.ProcessFrame(ctx, img)

		if err != nil {
			log.Error().Err(err).Msg("Error processing frame")
			continue
		}

		if offer(reports, rep) {
			s.metrics.dropped.Add(ctx, 1)
		}
	}
}

// offer puts the report on the channel, replacing any report still waiting.
// It reports if a report was replaced.  Only one goroutine may send
func offer(ch chan Report, r Report) bool {

	select {
	case ch <- r:
		return false
	default:
	}

	dropped := false

	select {
	case <-ch:
		dropped = true
	default:
		// publisher took it meanwhile
	}

	ch <- r

	return dropped
}

// ProcessFrame runs a single frame through inference, decoding and
// classification.  Calls are serialised
func (s *Session) ProcessFrame(ctx context.Context, img image.Image) (Report, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.classifier == nil {
		c, err := s.factory(s.log)

		if err != nil {
			return Report{}, fmt.Errorf("error creating classifier: %w", err)
		}

		s.classifier = c
	}

	b := img.Bounds()

	if s.resizer == nil || s.resizer.SrcWidth() != b.Dx() || s.resizer.SrcHeight() != b.Dy() {
		s.resizer = preprocess.NewResizer(b.Dx(), b.Dy(), s.cfg.ModelWidth, s.cfg.ModelHeight)
	}

	in := s.resizer.Input(img)

	start := time.Now()
	outputs, err := s.engine.Inference(in)
	latency := time.Since(start)
	s.resizer.Release(in)

	if err != nil {
		s.metrics.failed.Add(ctx, 1)
		return Report{}, fmt.Errorf("error running inference: %w", err)
	}

	s.metrics.latency.Record(ctx, float64(latency.Microseconds())/1000)

	crop := s.resizer.Crop()
	person, err := s.decoder.DecodePose(outputs, crop.Dx(), crop.Dy())

	if err != nil {
		s.metrics.failed.Add(ctx, 1)
		return Report{}, fmt.Errorf("error decoding pose: %w", err)
	}

	// keypoints are relative to the crop, move them to source image space
	person = person.Translate(crop.Min.Add(b.Min))

	result := s.classifier.Classify(&person, latency)

	if last, ok := result.Last(); ok {
		s.lastAction = last.String()
	}

	s.metrics.processed.Add(ctx, 1)

	rep := Report{
		Person:     person,
		Latency:    latency,
		Result:     result,
		LastAction: s.lastAction,
		Lines:      s.lines(person, latency, result),
	}

	if t, ok := s.classifier.(classify.Trailer); ok {
		rep.Trails = t.Trails()
	}

	return rep, nil
}

// lines formats the status lines for display
func (s *Session) lines(person pose.Person, latency time.Duration,
	result classify.Result) []string {

	lines := []string{
		fmt.Sprintf("Prediction score: %.3f", person.Score),
		fmt.Sprintf("Prediction time: %d ms", latency.Milliseconds()),
	}

	if s.lastAction != "" {
		lines = append(lines, fmt.Sprintf("Last recognised action: %s", s.lastAction))
	}

	return append(lines, result.Messages...)
}

// Classifier returns the classifier of the current run, nil before the
// first frame or run
func (s *Session) Classifier() classify.Classifier {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.classifier
}
