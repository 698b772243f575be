/*
Example streaming the action recognition pipeline over HTTP as an MJPEG video.
A video file is buffered into memory and played back at the configured FPS to
simulate a web camera, each frame is posted to the pipeline and annotated with
the newest skeleton and status report before being sent to the browser.

Usage:

	go run actions.go -c poseaction.yaml -mode pushups

then open http://localhost:8080/ in a browser.
*/
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"image"
	"net/http"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	"github.com/swdee/go-poseaction"
	"github.com/swdee/go-poseaction/classify"
	"github.com/swdee/go-poseaction/internal/config"
	"github.com/swdee/go-poseaction/internal/logging"
	"github.com/swdee/go-poseaction/postprocess"
	"github.com/swdee/go-poseaction/render"
	"github.com/swdee/go-poseaction/rknn"
	"github.com/swdee/go-poseaction/session"
	"gocv.io/x/gocv"
)

// latest holds the newest report published by the session
type latest struct {
	mu  sync.Mutex
	rep *session.Report
}

// Publish implements session.Sink
func (l *latest) Publish(r session.Report) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.rep = &r
}

// get returns the newest report, nil if none yet
func (l *latest) get() *session.Report {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.rep
}

// reset clears the held report
func (l *latest) reset() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.rep = nil
}

// Demo defines the struct for running the action recognition stream
type Demo struct {
	cfg config.Config
	log zerolog.Logger
	// vidBuffer buffers the video frames into memory
	vidBuffer []gocv.Mat
	// frames are the video frames converted for the pipeline
	frames  []image.Image
	engine  poseaction.Engine
	session *session.Session
	// busy is set while a client is streaming, the session runs for one
	// client at a time
	busy atomic.Bool
}

// NewDemo loads the video and model and creates the pipeline session
func NewDemo(cfg config.Config, log zerolog.Logger) (*Demo, error) {

	d := &Demo{
		cfg: cfg,
		log: log,
	}

	if err := d.bufferVideo(cfg.Video); err != nil {
		d.Close()
		return nil, fmt.Errorf("error buffering video: %w", err)
	}

	if cfg.PoolSize > 1 {
		cores, err := rknn.PlatformCores(cfg.Platform)

		if err != nil {
			d.Close()
			return nil, err
		}

		pool, err := rknn.NewPool(cfg.PoolSize, cfg.Model, cores)

		if err != nil {
			d.Close()
			return nil, fmt.Errorf("error creating RKNN pool: %w", err)
		}

		d.engine = pool

	} else {
		rt, err := rknn.NewRuntime(cfg.Model, cfg.BackendValue())

		if err != nil {
			d.Close()
			return nil, fmt.Errorf("error creating RKNN runtime: %w", err)
		}

		if err := rt.LogModelInfo(log); err != nil {
			log.Warn().Err(err).Msg("Error querying model")
		}

		d.engine = rt
	}

	mode := cfg.ModeValue()
	params := cfg.ClassifyParams()

	factory := func(logger zerolog.Logger) (classify.Classifier, error) {
		return classify.New(mode, params, logger)
	}

	var err error

	d.session, err = session.New(d.engine,
		postprocess.NewPoseNet(postprocess.PoseNetCOCOParams()),
		factory, cfg.SessionConfig(),
		session.WithLogger(logging.Sampled(log)),
	)

	if err != nil {
		d.Close()
		return nil, err
	}

	return d, nil
}

// bufferVideo reads in the video frames and saves them to a buffer
func (d *Demo) bufferVideo(vidFile string) error {

	video, err := gocv.VideoCaptureFile(vidFile)

	if err != nil {
		return err
	}

	defer video.Close()

	for {
		img := gocv.NewMat()

		if ok := video.Read(&img); !ok {
			// reached last video frame
			img.Close()
			break
		}

		if img.Empty() {
			img.Close()
			continue
		}

		frame, err := img.ToImage()

		if err != nil {
			img.Close()
			return fmt.Errorf("error converting frame %d: %w", len(d.frames), err)
		}

		d.vidBuffer = append(d.vidBuffer, img)
		d.frames = append(d.frames, frame)
	}

	if len(d.vidBuffer) == 0 {
		return fmt.Errorf("no frames in video %s", vidFile)
	}

	d.log.Info().Int("frames", len(d.vidBuffer)).Str("video", vidFile).
		Msg("Video buffered")

	return nil
}

// Close releases the video buffer and engine
func (d *Demo) Close() {

	for _, mat := range d.vidBuffer {
		mat.Close()
	}

	if d.engine != nil {
		if err := d.engine.Close(); err != nil {
			d.log.Error().Err(err).Msg("Error closing engine")
		}
	}
}

// Stream is the HTTP handler function used to stream video frames to browser
func (d *Demo) Stream(w http.ResponseWriter, r *http.Request) {

	if !d.busy.CompareAndSwap(false, true) {
		http.Error(w, "stream already in use", http.StatusConflict)
		return
	}

	defer d.busy.Store(false)

	d.log.Info().Str("remote", r.RemoteAddr).Msg("New client connection established")

	w.Header().Set("Content-Type", "multipart/x-mixed-replace; boundary=frame")

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	// a fresh session run per client so counters start from zero
	mailbox := session.NewMailbox()
	reports := &latest{}
	done := make(chan error, 1)

	go func() {
		done <- d.session.Run(ctx, mailbox, reports)
	}()

	frameNum := -1
	ticker := time.NewTicker(time.Second / time.Duration(d.cfg.FPS))
	defer ticker.Stop()

	resImg := gocv.NewMat()
	defer resImg.Close()

	running := true

loop:
	for {
		select {
		case <-ctx.Done():
			d.log.Info().Msg("Client disconnected")
			break loop

		case err := <-done:
			running = false
			if err != nil {
				d.log.Error().Err(err).Msg("Session stopped")
			}
			break loop

		case <-ticker.C:

			frameNum++
			if frameNum > len(d.vidBuffer)-1 {
				// loop back to start of video
				frameNum = 0
			}

			mailbox.Put(d.frames[frameNum])

			d.vidBuffer[frameNum].CopyTo(&resImg)
			d.annotate(&resImg, reports.get(), frameNum)

			if err := writeFrame(w, resImg); err != nil {
				d.log.Debug().Err(err).Msg("Error writing frame")
				break loop
			}
		}
	}

	mailbox.Close()
	cancel()

	if running {
		<-done
	}

	reports.reset()

	d.log.Info().Int64("dropped", mailbox.Dropped()).Msg("Stream ended")
}

// annotate draws the skeleton, wrist trails and status lines of the report
// onto the frame
func (d *Demo) annotate(img *gocv.Mat, rep *session.Report, frameNum int) {

	lines := []string{fmt.Sprintf("Frame: %d, Mode: %s", frameNum, d.cfg.Mode)}

	if rep != nil {
		render.Person(img, rep.Person, float32(d.cfg.ConfidenceThreshold), 2)

		for _, points := range rep.Trails {
			render.Trail(img, points, render.DefaultTrailStyle())
		}

		lines = append(lines, rep.Lines...)
	}

	render.Status(img, lines, render.DefaultFont())
}

// writeFrame encodes the image as JPEG and writes it as a multipart frame
func writeFrame(w http.ResponseWriter, img gocv.Mat) error {

	buf, err := gocv.IMEncode(".jpg", img)

	if err != nil {
		return fmt.Errorf("error encoding frame: %w", err)
	}

	defer buf.Close()

	if _, err := w.Write([]byte("--frame\r\nContent-Type: image/jpeg\r\n\r\n")); err != nil {
		return err
	}

	if _, err := w.Write(buf.GetBytes()); err != nil {
		return err
	}

	if _, err := w.Write([]byte("\r\n")); err != nil {
		return err
	}

	if flusher, ok := w.(http.Flusher); ok {
		flusher.Flush()
	}

	return nil
}

func main() {
	cfgFile := flag.String("c", "", "Config file, json or yaml")
	modelFile := flag.String("m", "", "RKNN compiled PoseNet model file, overrides config")
	vidFile := flag.String("v", "", "Video file to run pipeline on, overrides config")
	mode := flag.String("mode", "", "Classifier mode 'gestures' or 'pushups', overrides config")
	listen := flag.String("l", "", "HTTP address to listen on, overrides config")

	flag.Parse()

	cfg, err := config.Load(*cfgFile)

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}

	if *modelFile != "" {
		cfg.Model = *modelFile
	}

	if *vidFile != "" {
		cfg.Video = *vidFile
	}

	if *mode != "" {
		cfg.Mode = *mode
	}

	if *listen != "" {
		cfg.Listen = *listen
	}

	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid config: %v\n", err)
		os.Exit(1)
	}

	log, err := logging.New(cfg.LogLevel, os.Stdout)

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating logger: %v\n", err)
		os.Exit(1)
	}

	// keep inference and post processing on the fast cores
	if err := rknn.SetCPUAffinityByPlatform(cfg.Platform, rknn.FastCores); err != nil {
		log.Warn().Err(err).Msg("Failed to set CPU Affinity")
	}

	demo, err := NewDemo(cfg, log)

	if err != nil {
		log.Fatal().Err(err).Msg("Error creating demo")
	}

	defer demo.Close()

	http.HandleFunc("/stream", demo.Stream)

	http.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		fmt.Fprint(w, `<html><body style="margin:0;background:#000">
<img src="/stream" style="max-width:100%"></body></html>`)
	})

	log.Info().Str("listen", cfg.Listen).Str("mode", cfg.Mode).
		Msg("Open browser and view video stream")

	if err := http.ListenAndServe(cfg.Listen, nil); err != nil &&
		!errors.Is(err, http.ErrServerClosed) {
		log.Error().Err(err).Msg("HTTP server stopped")
	}
}
