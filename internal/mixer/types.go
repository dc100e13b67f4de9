package mixer

import (
	"fmt"
	"strings"

	"github.com/Raikerian/go-media-mixer/pkg/audio"
	"github.com/Raikerian/go-media-mixer/pkg/video"
)

// SourceID identifies an input stream. It is chosen by the producer.
type SourceID string

// Canvas limits.
const (
	MinFPS       = 1
	MaxFPS       = 60
	MinDimension = 2
)

// Canvas describes the composited output.
type Canvas struct {
	FPS             int
	Width           int
	Height          int
	BackgroundColor video.Color
}

// Validate checks the canvas bounds.
func (c Canvas) Validate() error {
	if c.FPS < MinFPS || c.FPS > MaxFPS {
		return fmt.Errorf("fps %d out of range [%d, %d]", c.FPS, MinFPS, MaxFPS)
	}
	if c.Width < MinDimension || c.Width > video.MaxDimension {
		return fmt.Errorf("width %d out of range [%d, %d]", c.Width, MinDimension, video.MaxDimension)
	}
	if c.Height < MinDimension || c.Height > video.MaxDimension {
		return fmt.Errorf("height %d out of range [%d, %d]", c.Height, MinDimension, video.MaxDimension)
	}
	if c.BackgroundColor > 0xFFFFFF {
		return fmt.Errorf("background color %#x is not 24-bit RGB", uint32(c.BackgroundColor))
	}
	return nil
}

// Region places one source on the canvas. Higher ZOrder draws on top.
type Region struct {
	X               int            `json:"x"`
	Y               int            `json:"y"`
	Width           int            `json:"width"`
	Height          int            `json:"height"`
	BackgroundColor video.Color    `json:"background_color"`
	FillMode        video.FillMode `json:"fill_mode"`
	ZOrder          int            `json:"z_order"`
}

// Validate checks the region's own fields. Bounds against the canvas are not
// enforced; overhanging pixels are clipped when drawing.
func (r Region) Validate() error {
	if r.Width <= 0 || r.Height <= 0 {
		return fmt.Errorf("region size %dx%d must be positive", r.Width, r.Height)
	}
	if r.Width > video.MaxDimension || r.Height > video.MaxDimension {
		return fmt.Errorf("region size %dx%d exceeds %d", r.Width, r.Height, video.MaxDimension)
	}
	if r.X < 0 || r.Y < 0 {
		return fmt.Errorf("region offset (%d,%d) must not be negative", r.X, r.Y)
	}
	if r.ZOrder < 1 {
		return fmt.Errorf("z_order %d must be >= 1", r.ZOrder)
	}
	if !r.FillMode.Valid() {
		return fmt.Errorf("unknown fill mode %d", int(r.FillMode))
	}
	if r.BackgroundColor > 0xFFFFFF {
		return fmt.Errorf("background color %#x is not 24-bit RGB", uint32(r.BackgroundColor))
	}
	return nil
}

// Rect returns the region's placement on the canvas.
func (r Region) Rect() video.Rect {
	return video.Rect{X: r.X, Y: r.Y, W: r.Width, H: r.Height}
}

// AudioFrame is one 20 ms block of 16-bit little-endian PCM. A zero
// SampleRate or Channels means the standard format.
type AudioFrame struct {
	Data       []byte
	SampleRate int
	Channels   int
	Timestamp  uint64 // milliseconds
}

// NewAudioFrame wraps pcm in the standard format.
func NewAudioFrame(pcm []byte, timestamp uint64) *AudioFrame {
	return &AudioFrame{
		Data:       pcm,
		SampleRate: audio.SampleRate,
		Channels:   audio.Channels,
		Timestamp:  timestamp,
	}
}

// Validate checks that f matches the mixing format.
func (f *AudioFrame) Validate() error {
	if f == nil {
		return fmt.Errorf("nil audio frame")
	}
	if f.SampleRate != 0 && f.SampleRate != audio.SampleRate {
		return fmt.Errorf("sample rate %d, want %d", f.SampleRate, audio.SampleRate)
	}
	if f.Channels != 0 && f.Channels != audio.Channels {
		return fmt.Errorf("channels %d, want %d", f.Channels, audio.Channels)
	}
	return audio.ValidateFrame(f.Data)
}

// AudioPolicy selects which sources contribute to the mixed audio.
type AudioPolicy int

const (
	// AudioPolicyAll mixes every source that has delivered audio, whether
	// or not it has a region.
	AudioPolicyAll AudioPolicy = iota
	// AudioPolicyRegionOnly mixes only sources present in the active
	// region table.
	AudioPolicyRegionOnly
)

func (p AudioPolicy) String() string {
	switch p {
	case AudioPolicyAll:
		return "all"
	case AudioPolicyRegionOnly:
		return "region_only"
	default:
		return fmt.Sprintf("AudioPolicy(%d)", int(p))
	}
}

// ParseAudioPolicy accepts "all" or "region_only".
func ParseAudioPolicy(s string) (AudioPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "all":
		return AudioPolicyAll, nil
	case "region_only", "region-only":
		return AudioPolicyRegionOnly, nil
	default:
		return 0, fmt.Errorf("unknown audio policy %q", s)
	}
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (p *AudioPolicy) UnmarshalText(text []byte) error {
	parsed, err := ParseAudioPolicy(string(text))
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (p AudioPolicy) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// State is the mixer lifecycle state.
type State int32

const (
	StateCreated State = iota
	StateConfigured
	StateRunning
	StateStopped
)

func (s State) String() string {
	switch s {
	case StateCreated:
		return "created"
	case StateConfigured:
		return "configured"
	case StateRunning:
		return "running"
	case StateStopped:
		return "stopped"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// LayoutState reports whether the pending table holds unpublished edits.
type LayoutState int

const (
	LayoutEmpty LayoutState = iota
	LayoutPending
)

func (s LayoutState) String() string {
	if s == LayoutPending {
		return "pending"
	}
	return "empty"
}
