package mixer

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/Raikerian/go-media-mixer/internal/config"
)

// Module provides the mixing engine built from configuration.
var Module = fx.Module("mixer",
	fx.Provide(NewFromConfig),
)

// NewFromConfigParams holds dependencies for NewFromConfig.
type NewFromConfigParams struct {
	fx.In
	Cfg        *config.Config
	Logger     *zap.Logger
	Registerer prometheus.Registerer
}

// NewFromConfig creates a mixer, configures its canvas and publishes the
// configured layout. The mixer is left in the CONFIGURED state; starting
// it is up to the caller.
func NewFromConfig(params NewFromConfigParams) (*Mixer, error) {
	cfg := params.Cfg

	policy, err := ParseAudioPolicy(cfg.Mixer.AudioPolicy)
	if err != nil {
		return nil, wrapError(CodeInvalidParam, "new", err)
	}

	m, err := New(
		WithLogger(params.Logger.Named("mixer")),
		WithRegisterer(params.Registerer),
		WithAudioPolicy(policy),
		WithJitterBuffer(cfg.Mixer.JitterFrames, cfg.Mixer.MaxQueueFrames),
		WithErrorQueueSize(cfg.Mixer.ErrorQueueSize),
		WithScaleCacheSize(cfg.Mixer.ScaleCacheSize),
	)
	if err != nil {
		return nil, err
	}

	if err := m.SetCanvas(CanvasFromConfig(cfg.Canvas)); err != nil {
		return nil, err
	}
	if err := m.ApplyLayout(RegionsFromConfig(cfg.Layout)); err != nil {
		return nil, err
	}
	return m, nil
}

// CanvasFromConfig converts the canvas section.
func CanvasFromConfig(c config.CanvasConfig) Canvas {
	return Canvas{
		FPS:             c.FPS,
		Width:           c.Width,
		Height:          c.Height,
		BackgroundColor: c.BackgroundColor,
	}
}

// RegionsFromConfig converts the layout section.
func RegionsFromConfig(layout []config.RegionConfig) []RegionEntry {
	out := make([]RegionEntry, 0, len(layout))
	for _, r := range layout {
		out = append(out, RegionEntry{
			SourceID: SourceID(r.SourceID),
			Region: Region{
				X:               r.X,
				Y:               r.Y,
				Width:           r.Width,
				Height:          r.Height,
				BackgroundColor: r.BackgroundColor,
				FillMode:        r.FillMode,
				ZOrder:          r.ZOrder,
			},
		})
	}
	return out
}

// ApplyLayout replaces the whole table with entries and publishes it.
// Nothing is staged if any entry is invalid.
func (m *Mixer) ApplyLayout(entries []RegionEntry) error {
	for _, e := range entries {
		if e.SourceID == "" {
			return newError(CodeInvalidParam, "apply layout", "empty source id")
		}
		if err := e.Validate(); err != nil {
			return wrapError(CodeInvalidParam, "apply layout", fmt.Errorf("source %q: %w", e.SourceID, err))
		}
	}

	m.ClearRegions()
	for _, e := range entries {
		r := e.Region
		if err := m.SetRegion(e.SourceID, &r); err != nil {
			return err
		}
	}
	return m.ApplyRegions()
}
