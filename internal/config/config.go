// Package config handles loading and validating the koe configuration.
package config

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config is the root configuration for the koe daemon.
type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Transports TransportsConfig `mapstructure:"transports"`
	Engine     EngineConfig     `mapstructure:"engine"`
	Analyzer   AnalyzerConfig   `mapstructure:"analyzer"`
	Model      ModelConfig      `mapstructure:"model"`
	Logging    LoggingConfig    `mapstructure:"logging"`
}

// ServerConfig holds the health and metrics server settings.
type ServerConfig struct {
	HealthPort int `mapstructure:"health_port"`
}

// TransportsConfig holds the configuration for each transport layer.
type TransportsConfig struct {
	HTTP    HTTPConfig    `mapstructure:"http"`
	GRPC    GRPCConfig    `mapstructure:"grpc"`
	Wyoming WyomingConfig `mapstructure:"wyoming"`
}

// HTTPConfig configures the VOICEVOX-compatible HTTP API.
type HTTPConfig struct {
	Enabled bool `mapstructure:"enabled"`
	Port    int  `mapstructure:"port"`
}

// GRPCConfig configures the gRPC transport.
type GRPCConfig struct {
	Enabled bool `mapstructure:"enabled"`
	Port    int  `mapstructure:"port"`
}

// WyomingConfig configures the Wyoming TCP server used by Home Assistant
// voice pipelines.
type WyomingConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Port    int    `mapstructure:"port"`
	Voice   string `mapstructure:"voice"` // voice name advertised in the info event
}

// EngineConfig holds synthesis defaults applied when a request leaves them out.
type EngineConfig struct {
	DefaultSpeaker       int64   `mapstructure:"default_speaker"`
	InterrogativeUpspeak bool    `mapstructure:"interrogative_upspeak"`
	SpeedScale           float64 `mapstructure:"speed_scale"`
	PitchScale           float64 `mapstructure:"pitch_scale"`
	IntonationScale      float64 `mapstructure:"intonation_scale"`
	VolumeScale          float64 `mapstructure:"volume_scale"`
	PrePhonemeLength     float64 `mapstructure:"pre_phoneme_length"`
	PostPhonemeLength    float64 `mapstructure:"post_phoneme_length"`
	OutputSamplingRate   int     `mapstructure:"output_sampling_rate"`
	OutputStereo         bool    `mapstructure:"output_stereo"`

	// MaxDuration caps the audio one synthesis may render.
	MaxDuration time.Duration `mapstructure:"max_duration"`
}

// AnalyzerConfig points at the label service that runs the phonetic analyzer.
type AnalyzerConfig struct {
	Endpoint string        `mapstructure:"endpoint"`
	Token    string        `mapstructure:"token"` // optional bearer token, may be "${ENV_VAR}"
	Timeout  time.Duration `mapstructure:"timeout"`
}

// ModelConfig selects and configures the acoustic model backend.
type ModelConfig struct {
	Backend string     `mapstructure:"backend"` // "onnx"
	ONNX    ONNXConfig `mapstructure:"onnx"`
}

// ONNXConfig holds onnxruntime settings and the three model files.
type ONNXConfig struct {
	LibraryPath     string `mapstructure:"library_path"` // onnxruntime shared library
	DurationModel   string `mapstructure:"duration_model"`
	IntonationModel string `mapstructure:"intonation_model"`
	DecoderModel    string `mapstructure:"decoder_model"`
	IntraOpThreads  int    `mapstructure:"intra_op_threads"`
}

// LoggingConfig holds structured logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`  // debug, info, warn, error
	Format string `mapstructure:"format"` // json, text
}

// Load reads the configuration from file, environment variables, and defaults.
// If configFile is non-empty it is used directly; otherwise the standard
// search order applies: ./koe.yaml, ./configs/koe.yaml, /etc/koe/koe.yaml.
func Load(configFile string) (*Config, error) {
	v := viper.New()

	// Defaults
	v.SetDefault("server.health_port", 8081)
	v.SetDefault("transports.http.enabled", true)
	v.SetDefault("transports.http.port", 50021)
	v.SetDefault("transports.grpc.enabled", false)
	v.SetDefault("transports.grpc.port", 50051)
	v.SetDefault("transports.wyoming.enabled", false)
	v.SetDefault("transports.wyoming.port", 10200)
	v.SetDefault("transports.wyoming.voice", "koe")
	v.SetDefault("engine.default_speaker", 0)
	v.SetDefault("engine.interrogative_upspeak", true)
	v.SetDefault("engine.speed_scale", 1.0)
	v.SetDefault("engine.pitch_scale", 0.0)
	v.SetDefault("engine.intonation_scale", 1.0)
	v.SetDefault("engine.volume_scale", 1.0)
	v.SetDefault("engine.pre_phoneme_length", 0.1)
	v.SetDefault("engine.post_phoneme_length", 0.1)
	v.SetDefault("engine.output_sampling_rate", 24000)
	v.SetDefault("engine.output_stereo", false)
	v.SetDefault("engine.max_duration", "10m")
	v.SetDefault("analyzer.endpoint", "http://localhost:50022/labels")
	v.SetDefault("analyzer.timeout", 10*time.Second)
	v.SetDefault("model.backend", "onnx")
	v.SetDefault("model.onnx.library_path", "")
	v.SetDefault("model.onnx.duration_model", "models/duration.onnx")
	v.SetDefault("model.onnx.intonation_model", "models/intonation.onnx")
	v.SetDefault("model.onnx.decoder_model", "models/decode.onnx")
	v.SetDefault("model.onnx.intra_op_threads", 0)
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	// Config file
	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("koe")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
		v.AddConfigPath("/etc/koe")
	}

	// Environment variables: KOE_SERVER_HEALTH_PORT, KOE_ENGINE_DEFAULT_SPEAKER, etc.
	v.SetEnvPrefix("KOE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Read config file (optional, env vars and defaults are sufficient)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading config: %w", err)
		}
		slog.Info("no config file found, using defaults and environment variables")
	} else {
		slog.Info("loaded config file", "path", v.ConfigFileUsed())
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}

	cfg.Analyzer.Token = resolveEnvRef(cfg.Analyzer.Token)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks values that would otherwise fail on the first request.
func (c *Config) Validate() error {
	e := c.Engine
	switch {
	case e.SpeedScale <= 0:
		return fmt.Errorf("config: engine.speed_scale must be positive, got %v", e.SpeedScale)
	case e.VolumeScale < 0:
		return fmt.Errorf("config: engine.volume_scale must not be negative, got %v", e.VolumeScale)
	case e.PrePhonemeLength < 0 || e.PostPhonemeLength < 0:
		return fmt.Errorf("config: engine phoneme lengths must not be negative")
	case e.OutputSamplingRate <= 0 || e.OutputSamplingRate%24000 != 0:
		return fmt.Errorf("config: engine.output_sampling_rate must be a multiple of 24000, got %d", e.OutputSamplingRate)
	case e.MaxDuration <= 0:
		return fmt.Errorf("config: engine.max_duration must be positive, got %v", e.MaxDuration)
	case c.Model.Backend != "onnx":
		return fmt.Errorf("config: unknown model backend %q", c.Model.Backend)
	}
	return nil
}

// resolveEnvRef replaces "${VAR_NAME}" patterns with the corresponding env var value.
func resolveEnvRef(val string) string {
	if strings.HasPrefix(val, "${") && strings.HasSuffix(val, "}") {
		envKey := val[2 : len(val)-1]
		if envVal := os.Getenv(envKey); envVal != "" {
			return envVal
		}
	}
	return val
}

// SetupLogging configures the global slog logger based on config.
func SetupLogging(cfg LoggingConfig) {
	slog.SetDefault(slog.New(NewHandler(cfg, os.Stdout)))
}

// NewHandler builds the slog handler described by cfg, writing to w.
func NewHandler(cfg LoggingConfig, w io.Writer) slog.Handler {
	var level slog.Level
	switch strings.ToLower(cfg.Level) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}

	if strings.ToLower(cfg.Format) == "text" {
		return slog.NewTextHandler(w, opts)
	}
	return slog.NewJSONHandler(w, opts)
}
