package admin

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/Raikerian/go-media-mixer/internal/config"
	"github.com/Raikerian/go-media-mixer/internal/mixer"
	"github.com/Raikerian/go-media-mixer/internal/sink"
)

// Module provides the admin Server and ties it to the application
// lifecycle.
var Module = fx.Module("admin",
	fx.Provide(NewServer),
)

// NewServerParams holds dependencies for NewServer.
type NewServerParams struct {
	fx.In
	Cfg      config.AdminConfig
	LC       fx.Lifecycle
	Logger   *zap.Logger
	Mixer    *mixer.Mixer
	Output   *sink.Counter
	Gatherer prometheus.Gatherer
}

// NewServer creates the admin server. It listens only when admin.addr is
// set.
func NewServer(params NewServerParams) *Server {
	s := New(params.Logger.Named("admin"), params.Mixer, params.Output, params.Gatherer)

	addr := params.Cfg.Addr
	if addr == "" {
		params.Logger.Info("Admin server disabled")
		return s
	}

	params.LC.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			return s.Start(addr)
		},
		OnStop: func(ctx context.Context) error {
			return s.Stop(ctx)
		},
	})
	return s
}
