package synth

import (
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/Raikerian/go-media-mixer/internal/config"
	"github.com/Raikerian/go-media-mixer/internal/mixer"
)

// Module provides the demo Feeder.
var Module = fx.Module("synth",
	fx.Provide(NewFeederFromConfig),
)

// NewFeederFromConfigParams holds dependencies for NewFeederFromConfig.
type NewFeederFromConfigParams struct {
	fx.In
	Cfg    *config.Config
	Logger *zap.Logger
	Mixer  *mixer.Mixer
}

// NewFeederFromConfig builds a Feeder for the configured demo sources. With
// the demo disabled the Feeder has no sources and Start does nothing useful.
func NewFeederFromConfig(params NewFeederFromConfigParams) *Feeder {
	var sources []Source
	if params.Cfg.Demo.Enabled {
		sources = SourcesFromConfig(params.Cfg.Demo.Sources)
	}
	return NewFeeder(params.Logger.Named("synth"), params.Mixer, sources)
}

// SourcesFromConfig converts the demo source list.
func SourcesFromConfig(demo []config.DemoSourceConfig) []Source {
	sources := make([]Source, 0, len(demo))
	for _, s := range demo {
		src := Source{ID: mixer.SourceID(s.ID), FPS: s.FPS, RateSkew: s.RateSkew}
		if s.Audio {
			freq := s.ToneHz
			if freq <= 0 {
				freq = 440
			}
			src.Tone = NewTone(freq, s.Amplitude)
		}
		if s.Video {
			src.Pattern = NewPattern(s.Width, s.Height, s.FPS, s.Color)
		}
		sources = append(sources, src)
	}
	return sources
}
