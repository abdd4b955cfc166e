package config

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "koe.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, "{}\n"))
	require.NoError(t, err)

	assert.Equal(t, 8081, cfg.Server.HealthPort)
	assert.True(t, cfg.Transports.HTTP.Enabled)
	assert.Equal(t, 50021, cfg.Transports.HTTP.Port)
	assert.False(t, cfg.Transports.Wyoming.Enabled)
	assert.Equal(t, 10200, cfg.Transports.Wyoming.Port)
	assert.True(t, cfg.Engine.InterrogativeUpspeak)
	assert.Equal(t, 1.0, cfg.Engine.SpeedScale)
	assert.Equal(t, 0.1, cfg.Engine.PrePhonemeLength)
	assert.Equal(t, 24000, cfg.Engine.OutputSamplingRate)
	assert.Equal(t, 10*time.Minute, cfg.Engine.MaxDuration)
	assert.Equal(t, 10*time.Second, cfg.Analyzer.Timeout)
	assert.Equal(t, "onnx", cfg.Model.Backend)
}

func TestLoad_FileAndEnv(t *testing.T) {
	path := writeConfig(t, `
engine:
  default_speaker: 2
  output_stereo: true
  output_sampling_rate: 48000
analyzer:
  endpoint: http://labels:9000/labels
  timeout: 3s
  token: ${KOE_TEST_ANALYZER_TOKEN}
transports:
  wyoming:
    enabled: true
`)
	t.Setenv("KOE_ENGINE_SPEED_SCALE", "1.5")
	t.Setenv("KOE_TEST_ANALYZER_TOKEN", "secret")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, int64(2), cfg.Engine.DefaultSpeaker)
	assert.True(t, cfg.Engine.OutputStereo)
	assert.Equal(t, 48000, cfg.Engine.OutputSamplingRate)
	assert.Equal(t, 1.5, cfg.Engine.SpeedScale)
	assert.Equal(t, "http://labels:9000/labels", cfg.Analyzer.Endpoint)
	assert.Equal(t, 3*time.Second, cfg.Analyzer.Timeout)
	assert.Equal(t, "secret", cfg.Analyzer.Token)
	assert.True(t, cfg.Transports.Wyoming.Enabled)
}

func TestLoad_Invalid(t *testing.T) {
	tests := map[string]string{
		"rate":     "engine:\n  output_sampling_rate: 44100\n",
		"speed":    "engine:\n  speed_scale: 0\n",
		"volume":   "engine:\n  volume_scale: -1\n",
		"duration": "engine:\n  max_duration: 0s\n",
		"backend":  "model:\n  backend: tensorflow\n",
	}
	for name, body := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Load(writeConfig(t, body))
			assert.Error(t, err)
		})
	}
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestResolveEnvRef(t *testing.T) {
	t.Setenv("KOE_TEST_REF", "value")
	assert.Equal(t, "value", resolveEnvRef("${KOE_TEST_REF}"))
	assert.Equal(t, "${KOE_TEST_UNSET_REF}", resolveEnvRef("${KOE_TEST_UNSET_REF}"))
	assert.Equal(t, "plain", resolveEnvRef("plain"))
}

func TestNewHandler(t *testing.T) {
	var buf bytes.Buffer
	h := NewHandler(LoggingConfig{Level: "warn", Format: "text"}, &buf)
	assert.False(t, h.Enabled(context.Background(), slog.LevelInfo))
	assert.True(t, h.Enabled(context.Background(), slog.LevelWarn))

	slog.New(h).Warn("hello", "k", 1)
	assert.Contains(t, buf.String(), "msg=hello")

	buf.Reset()
	slog.New(NewHandler(LoggingConfig{Level: "debug"}, &buf)).Debug("hi")
	assert.Contains(t, buf.String(), `"msg":"hi"`)
}
