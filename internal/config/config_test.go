package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/swdee/go-poseaction"
	"github.com/swdee/go-poseaction/classify"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoad_DefaultValues(t *testing.T) {

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "accelerated", cfg.Backend)
	assert.Equal(t, "gestures", cfg.Mode)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, 0.5, cfg.ConfidenceThreshold)
	assert.Equal(t, 0.15, cfg.VelocityThreshold)
	assert.Equal(t, 6, cfg.HistoryCapacity)
	assert.Equal(t, 10.0, cfg.PushUpLeeway)
	assert.Equal(t, 257, cfg.ModelWidth)
	assert.Equal(t, 257, cfg.ModelHeight)
	assert.Equal(t, ":8080", cfg.Listen)
	assert.Equal(t, 30, cfg.FPS)
	assert.Equal(t, 1, cfg.PoolSize)
}

func TestLoad_JSONFile(t *testing.T) {

	path := writeFile(t, "poseaction.json", `{
		"mode": "pushups",
		"backend": "default",
		"pushUpLeeway": 15,
		"listen": "127.0.0.1:9000"
	}`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, classify.ModePushUps, cfg.ModeValue())
	assert.Equal(t, poseaction.BackendDefault, cfg.BackendValue())
	assert.Equal(t, 15.0, cfg.PushUpLeeway)
	assert.Equal(t, "127.0.0.1:9000", cfg.Listen)
	// untouched keys keep defaults
	assert.Equal(t, 6, cfg.HistoryCapacity)
}

func TestLoad_YAMLFile(t *testing.T) {

	path := writeFile(t, "poseaction.yaml", "mode: gestures\nhistoryCapacity: 8\nvelocityThreshold: 0.3\n")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 8, cfg.HistoryCapacity)
	assert.Equal(t, 0.3, cfg.VelocityThreshold)
}

func TestLoad_EnvOverride(t *testing.T) {

	t.Setenv("POSEACTION_MODE", "pushups")
	t.Setenv("POSEACTION_FPS", "15")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "pushups", cfg.Mode)
	assert.Equal(t, 15, cfg.FPS)
}

func TestLoad_MissingFile(t *testing.T) {

	_, err := Load("/nonexistent/poseaction.json")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "error reading config file")
}

func TestLoad_InvalidValues(t *testing.T) {

	path := writeFile(t, "poseaction.json", `{
		"mode": "dancing",
		"confidenceThreshold": 1.5,
		"historyCapacity": 1
	}`)

	_, err := Load(path)
	require.Error(t, err)

	assert.Contains(t, err.Error(), "unknown mode")
	assert.Contains(t, err.Error(), "confidenceThreshold")
	assert.Contains(t, err.Error(), "historyCapacity")
}

func TestClassifyParams(t *testing.T) {

	cfg, err := Load("")
	require.NoError(t, err)

	cfg.ConfidenceThreshold = 0.6
	cfg.HistoryCapacity = 10
	cfg.VelocityThreshold = 0.2
	cfg.PushUpLeeway = 12

	p := cfg.ClassifyParams()

	assert.Equal(t, float32(0.6), p.ArmRaise.Threshold)
	assert.Equal(t, float32(0.6), p.PushUp.Threshold)
	assert.Equal(t, 12.0, p.PushUp.Leeway)
	assert.Equal(t, 10, p.Wave.Tracker.Capacity)
	assert.Equal(t, 0.2, p.Wave.Tracker.VelocityThreshold)

	// fixed angles are unchanged
	assert.Equal(t, 90.0, p.PushUp.LeftAngle)
	assert.Equal(t, 270.0, p.ArmRaise.UpperAngle)

	sc := cfg.SessionConfig()
	assert.Equal(t, 257, sc.ModelWidth)
}
