// Package logging builds the zerolog loggers used by the command.
package logging

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// ParseLevel converts a level name into a zerolog level, unknown names are
// an error
func ParseLevel(level string) (zerolog.Level, error) {

	switch strings.ToLower(strings.TrimSpace(level)) {
	case "trace":
		return zerolog.TraceLevel, nil
	case "debug":
		return zerolog.DebugLevel, nil
	case "", "info":
		return zerolog.InfoLevel, nil
	case "warn", "warning":
		return zerolog.WarnLevel, nil
	case "error":
		return zerolog.ErrorLevel, nil
	}

	return zerolog.InfoLevel, fmt.Errorf("unknown log level %q", level)
}

// New returns a console format logger writing to w at the given level with
// UTC timestamps
func New(level string, w io.Writer) (zerolog.Logger, error) {

	lvl, err := ParseLevel(level)

	if err != nil {
		return zerolog.Nop(), err
	}

	zerolog.TimestampFunc = func() time.Time {
		return time.Now().UTC()
	}

	out := zerolog.ConsoleWriter{
		Out:        w,
		TimeFormat: time.RFC3339,
		NoColor:    true,
	}

	return zerolog.New(out).Level(lvl).With().Timestamp().Logger(), nil
}

// Sampled returns a logger for per frame messages allowing a burst of 5
// entries every 10 seconds and 1 in 100 after that
func Sampled(logger zerolog.Logger) zerolog.Logger {
	return logger.With().Bool("sampled", true).Logger().Sample(&zerolog.BurstSampler{
		Burst:       5,
		Period:      10 * time.Second,
		NextSampler: &zerolog.BasicSampler{N: 100},
	})
}
