package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"

	"github.com/Raikerian/go-media-mixer/pkg/video"
)

// EnvPrefix namespaces every environment override, e.g. MIXER_CANVAS_FPS.
const EnvPrefix = "MIXER_"

// CanvasConfig stores the output surface settings.
type CanvasConfig struct {
	FPS             int         `yaml:"fps" env:"FPS"`
	Width           int         `yaml:"width" env:"WIDTH"`
	Height          int         `yaml:"height" env:"HEIGHT"`
	BackgroundColor video.Color `yaml:"background_color" env:"BACKGROUND_COLOR"`
}

// MixerConfig stores engine tuning.
type MixerConfig struct {
	EnableAudio    bool   `yaml:"enable_audio" env:"ENABLE_AUDIO"`
	EnableVideo    bool   `yaml:"enable_video" env:"ENABLE_VIDEO"`
	AudioPolicy    string `yaml:"audio_policy" env:"AUDIO_POLICY"`
	JitterFrames   int    `yaml:"jitter_frames" env:"JITTER_FRAMES"`
	MaxQueueFrames int    `yaml:"max_queue_frames" env:"MAX_QUEUE_FRAMES"`
	ErrorQueueSize int    `yaml:"error_queue_size" env:"ERROR_QUEUE_SIZE"`
	ScaleCacheSize int    `yaml:"scale_cache_size" env:"SCALE_CACHE_SIZE"`
}

// RegionConfig is one entry of the layout applied at startup.
type RegionConfig struct {
	SourceID        string         `yaml:"source_id"`
	X               int            `yaml:"x"`
	Y               int            `yaml:"y"`
	Width           int            `yaml:"width"`
	Height          int            `yaml:"height"`
	BackgroundColor video.Color    `yaml:"background_color"`
	FillMode        video.FillMode `yaml:"fill_mode"`
	ZOrder          int            `yaml:"z_order"`
}

// AdminConfig stores the HTTP control plane settings. An empty Addr
// disables the server.
type AdminConfig struct {
	Addr string `yaml:"addr" env:"ADDR"`
}

// SinkConfig stores the output consumer settings.
type SinkConfig struct {
	SummaryInterval time.Duration `yaml:"summary_interval" env:"SUMMARY_INTERVAL"`
	StallTimeout    time.Duration `yaml:"stall_timeout" env:"STALL_TIMEOUT"`
}

// DemoSourceConfig describes one synthetic producer.
type DemoSourceConfig struct {
	ID        string      `yaml:"id"`
	Audio     bool        `yaml:"audio"`
	Video     bool        `yaml:"video"`
	ToneHz    float64     `yaml:"tone_hz"`
	Amplitude float64     `yaml:"amplitude"`
	Width     int         `yaml:"width"`
	Height    int         `yaml:"height"`
	FPS       int         `yaml:"fps"`
	Color     video.Color `yaml:"color"`
	RateSkew  float64     `yaml:"rate_skew"` // -0.1 runs 10% slow, 0.1 runs 10% fast
}

// DemoConfig stores the synthetic producers fed into the mixer.
type DemoConfig struct {
	Enabled bool               `yaml:"enabled"`
	Sources []DemoSourceConfig `yaml:"sources"`
}

// Config stores the application configuration.
type Config struct {
	LogLevel string         `yaml:"log_level"`
	Canvas   CanvasConfig   `yaml:"canvas"`
	Mixer    MixerConfig    `yaml:"mixer"`
	Layout   []RegionConfig `yaml:"layout"`
	Admin    AdminConfig    `yaml:"admin"`
	Sink     SinkConfig     `yaml:"sink"`
	Demo     DemoConfig     `yaml:"demo"`
}

// Default returns the configuration used for every field the file and the
// environment leave unset.
func Default() Config {
	return Config{
		LogLevel: "info",
		Canvas: CanvasConfig{
			FPS:             15,
			Width:           640,
			Height:          360,
			BackgroundColor: video.Black,
		},
		Mixer: MixerConfig{
			EnableAudio:    true,
			EnableVideo:    true,
			AudioPolicy:    "all",
			JitterFrames:   5,
			MaxQueueFrames: 20,
			ErrorQueueSize: 64,
			ScaleCacheSize: 64,
		},
		Sink: SinkConfig{
			SummaryInterval: 10 * time.Second,
			StallTimeout:    2 * time.Second,
		},
	}
}

// LoadConfig loads the configuration from the given file path, applies
// MIXER_* environment overrides and validates the result.
func LoadConfig(filePath string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", filePath, err)
	}

	if err := ApplyEnv(&cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// ApplyEnv overrides cfg with any MIXER_* variables that are set. Sections
// are parsed one by one so list-valued settings (layout, demo sources) stay
// file-only.
func ApplyEnv(cfg *Config) error {
	root := rootEnv{LogLevel: cfg.LogLevel, DemoEnabled: cfg.Demo.Enabled}
	sections := []struct {
		prefix string
		target any
	}{
		{"", &root},
		{"CANVAS_", &cfg.Canvas},
		{"", &cfg.Mixer},
		{"ADMIN_", &cfg.Admin},
		{"SINK_", &cfg.Sink},
	}
	for _, s := range sections {
		if err := env.ParseWithOptions(s.target, env.Options{Prefix: EnvPrefix + s.prefix}); err != nil {
			return fmt.Errorf("environment variables are invalid: %w", err)
		}
	}
	cfg.LogLevel = root.LogLevel
	cfg.Demo.Enabled = root.DemoEnabled
	return nil
}

type rootEnv struct {
	LogLevel    string `env:"LOG_LEVEL"`
	DemoEnabled bool   `env:"DEMO_ENABLED"`
}

// Validate checks value ranges and cross-field constraints.
func (c *Config) Validate() error {
	var errs []error

	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Errorf("log_level %q must be one of debug, info, warn, error", c.LogLevel))
	}

	if c.Canvas.FPS < 1 || c.Canvas.FPS > 60 {
		errs = append(errs, fmt.Errorf("canvas.fps must be in [1, 60], got %d", c.Canvas.FPS))
	}
	if c.Canvas.Width < 2 || c.Canvas.Width > video.MaxDimension {
		errs = append(errs, fmt.Errorf("canvas.width must be in [2, %d], got %d", video.MaxDimension, c.Canvas.Width))
	}
	if c.Canvas.Height < 2 || c.Canvas.Height > video.MaxDimension {
		errs = append(errs, fmt.Errorf("canvas.height must be in [2, %d], got %d", video.MaxDimension, c.Canvas.Height))
	}

	if !c.Mixer.EnableAudio && !c.Mixer.EnableVideo {
		errs = append(errs, errors.New("mixer: at least one of enable_audio, enable_video must be true"))
	}
	switch strings.ToLower(c.Mixer.AudioPolicy) {
	case "", "all", "region_only", "region-only":
	default:
		errs = append(errs, fmt.Errorf("mixer.audio_policy %q must be all or region_only", c.Mixer.AudioPolicy))
	}
	if c.Mixer.JitterFrames <= 0 {
		errs = append(errs, fmt.Errorf("mixer.jitter_frames must be positive, got %d", c.Mixer.JitterFrames))
	}
	if c.Mixer.MaxQueueFrames <= c.Mixer.JitterFrames {
		errs = append(errs, fmt.Errorf("mixer.max_queue_frames (%d) must exceed jitter_frames (%d)", c.Mixer.MaxQueueFrames, c.Mixer.JitterFrames))
	}
	if c.Mixer.ErrorQueueSize <= 0 {
		errs = append(errs, fmt.Errorf("mixer.error_queue_size must be positive, got %d", c.Mixer.ErrorQueueSize))
	}
	if c.Mixer.ScaleCacheSize <= 0 {
		errs = append(errs, fmt.Errorf("mixer.scale_cache_size must be positive, got %d", c.Mixer.ScaleCacheSize))
	}

	seen := make(map[string]bool, len(c.Layout))
	for i, r := range c.Layout {
		if r.SourceID == "" {
			errs = append(errs, fmt.Errorf("layout[%d]: source_id is required", i))
		} else if seen[r.SourceID] {
			errs = append(errs, fmt.Errorf("layout[%d]: duplicate source_id %q", i, r.SourceID))
		}
		seen[r.SourceID] = true
		if r.Width <= 0 || r.Height <= 0 {
			errs = append(errs, fmt.Errorf("layout[%d]: width and height must be positive", i))
		}
		if r.X < 0 || r.Y < 0 {
			errs = append(errs, fmt.Errorf("layout[%d]: x and y must not be negative", i))
		}
		if r.ZOrder < 1 {
			errs = append(errs, fmt.Errorf("layout[%d]: z_order must be >= 1, got %d", i, r.ZOrder))
		}
	}

	if c.Sink.SummaryInterval < 0 {
		errs = append(errs, fmt.Errorf("sink.summary_interval must not be negative, got %s", c.Sink.SummaryInterval))
	}
	if c.Sink.StallTimeout < 0 {
		errs = append(errs, fmt.Errorf("sink.stall_timeout must not be negative, got %s", c.Sink.StallTimeout))
	}

	if c.Demo.Enabled {
		ids := make(map[string]bool, len(c.Demo.Sources))
		for i, s := range c.Demo.Sources {
			if s.ID == "" {
				errs = append(errs, fmt.Errorf("demo.sources[%d]: id is required", i))
			} else if ids[s.ID] {
				errs = append(errs, fmt.Errorf("demo.sources[%d]: duplicate id %q", i, s.ID))
			}
			ids[s.ID] = true
			if !s.Audio && !s.Video {
				errs = append(errs, fmt.Errorf("demo.sources[%d]: at least one of audio, video must be true", i))
			}
			if s.Video && (s.Width < 2 || s.Height < 2 || s.FPS < 1) {
				errs = append(errs, fmt.Errorf("demo.sources[%d]: video needs width, height >= 2 and fps >= 1", i))
			}
			if s.Amplitude < 0 || s.Amplitude > 1 {
				errs = append(errs, fmt.Errorf("demo.sources[%d]: amplitude must be in [0, 1], got %g", i, s.Amplitude))
			}
			if s.RateSkew <= -0.5 || s.RateSkew >= 0.5 {
				errs = append(errs, fmt.Errorf("demo.sources[%d]: rate_skew must be in (-0.5, 0.5), got %g", i, s.RateSkew))
			}
		}
	}

	return errors.Join(errs...)
}
