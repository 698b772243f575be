// Package config loads the settings of the action recognition command from
// an optional config file, environment variables and defaults.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
	"github.com/swdee/go-poseaction"
	"github.com/swdee/go-poseaction/classify"
	"github.com/swdee/go-poseaction/session"
)

// EnvPrefix is the prefix of environment variables overriding config keys,
// eg: POSEACTION_MODE=pushups
const EnvPrefix = "POSEACTION"

// Config holds the command settings
type Config struct {
	// Model is the RKNN compiled PoseNet model file
	Model string `mapstructure:"model"`
	// Video is the video file frames are read from
	Video string `mapstructure:"video"`
	// Backend is the inference backend, default or accelerated
	Backend string `mapstructure:"backend"`
	// Platform is the Rockchip SoC used to pin CPU affinity
	Platform string `mapstructure:"platform"`
	// PoolSize is the number of runtimes to load across the NPU cores
	PoolSize int `mapstructure:"poolSize"`
	// Mode selects the classifiers, gestures or pushups
	Mode     string `mapstructure:"mode"`
	LogLevel string `mapstructure:"logLevel"`

	ConfidenceThreshold float64 `mapstructure:"confidenceThreshold"`
	VelocityThreshold   float64 `mapstructure:"velocityThreshold"`
	HistoryCapacity     int     `mapstructure:"historyCapacity"`
	PushUpLeeway        float64 `mapstructure:"pushUpLeeway"`

	ModelWidth  int `mapstructure:"modelWidth"`
	ModelHeight int `mapstructure:"modelHeight"`

	// Listen is the HTTP address the annotated stream is served on
	Listen string `mapstructure:"listen"`
	// FPS is the rate frames are fed to the pipeline
	FPS int `mapstructure:"fps"`
}

// setDefaults registers the default value of every key
func setDefaults(v *viper.Viper) {
	v.SetDefault("model", "../data/posenet_mobilenet-rk3588.rknn")
	v.SetDefault("video", "../data/pushups.mp4")
	v.SetDefault("backend", "accelerated")
	v.SetDefault("platform", "rk3588")
	v.SetDefault("poolSize", 1)
	v.SetDefault("mode", "gestures")
	v.SetDefault("logLevel", "info")

	v.SetDefault("confidenceThreshold", 0.5)
	v.SetDefault("velocityThreshold", 0.15)
	v.SetDefault("historyCapacity", 6)
	v.SetDefault("pushUpLeeway", 10.0)

	v.SetDefault("modelWidth", 257)
	v.SetDefault("modelHeight", 257)

	v.SetDefault("listen", ":8080")
	v.SetDefault("fps", 30)
}

// Load reads the config file at path, json or yaml by extension, applying
// environment overrides and defaults.  An empty path loads defaults and
// environment only
func Load(path string) (Config, error) {

	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)

		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var cfg Config

	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("error decoding config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// Validate checks every value is in range
func (c Config) Validate() error {

	var errs []error

	if _, err := poseaction.ParseBackend(c.Backend); err != nil {
		errs = append(errs, err)
	}

	if _, err := classify.ParseMode(c.Mode); err != nil {
		errs = append(errs, err)
	}

	if c.ConfidenceThreshold < 0 || c.ConfidenceThreshold > 1 {
		errs = append(errs, fmt.Errorf("confidenceThreshold %v not in [0,1]",
			c.ConfidenceThreshold))
	}

	if c.VelocityThreshold <= 0 {
		errs = append(errs, fmt.Errorf("velocityThreshold %v must be positive",
			c.VelocityThreshold))
	}

	if c.HistoryCapacity < 2 {
		errs = append(errs, fmt.Errorf("historyCapacity %d must be at least 2",
			c.HistoryCapacity))
	}

	if c.PushUpLeeway <= 0 || c.PushUpLeeway >= 90 {
		errs = append(errs, fmt.Errorf("pushUpLeeway %v not in (0,90)", c.PushUpLeeway))
	}

	if c.ModelWidth <= 0 || c.ModelHeight <= 0 {
		errs = append(errs, fmt.Errorf("invalid model size %dx%d", c.ModelWidth,
			c.ModelHeight))
	}

	if c.PoolSize < 1 {
		errs = append(errs, fmt.Errorf("poolSize %d must be at least 1", c.PoolSize))
	}

	if c.FPS <= 0 {
		errs = append(errs, fmt.Errorf("fps %d must be positive", c.FPS))
	}

	return errors.Join(errs...)
}

// BackendValue returns the parsed inference backend
func (c Config) BackendValue() poseaction.Backend {
	b, _ := poseaction.ParseBackend(c.Backend)
	return b
}

// ModeValue returns the parsed classifier mode
func (c Config) ModeValue() classify.Mode {
	m, _ := classify.ParseMode(c.Mode)
	return m
}

// ClassifyParams returns the classifier parameters with the configured
// thresholds applied
func (c Config) ClassifyParams() classify.Params {

	p := classify.DefaultParams()
	th := float32(c.ConfidenceThreshold)

	p.ArmRaise.Threshold = th
	p.PushUp.Threshold = th
	p.PushUp.Leeway = c.PushUpLeeway
	p.Wave.Tracker.Threshold = th
	p.Wave.Tracker.Capacity = c.HistoryCapacity
	p.Wave.Tracker.VelocityThreshold = c.VelocityThreshold

	return p
}

// SessionConfig returns the session model input size
func (c Config) SessionConfig() session.Config {
	return session.Config{
		ModelWidth:  c.ModelWidth,
		ModelHeight: c.ModelHeight,
	}
}
