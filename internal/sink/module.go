package sink

import (
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/Raikerian/go-media-mixer/internal/config"
)

// Module provides the output Counter.
var Module = fx.Module("sink",
	fx.Provide(NewCounterFromConfig),
)

// NewCounterFromConfig builds a Counter with the configured summary interval
// and stall timeout.
func NewCounterFromConfig(cfg config.SinkConfig, logger *zap.Logger) *Counter {
	return NewCounter(logger.Named("sink"), cfg.SummaryInterval, cfg.StallTimeout)
}
