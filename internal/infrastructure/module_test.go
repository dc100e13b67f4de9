package infrastructure

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/fx"
	"go.uber.org/fx/fxtest"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/Raikerian/go-media-mixer/internal/config"
)

func TestZapConfigFor(t *testing.T) {
	tests := []struct {
		level string
		want  zapcore.Level
		dev   bool
	}{
		{"debug", zap.DebugLevel, true},
		{"info", zap.InfoLevel, false},
		{"", zap.InfoLevel, false},
		{"warn", zap.WarnLevel, false},
		{"error", zap.ErrorLevel, false},
	}
	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			cfg, err := zapConfigFor(tt.level)
			require.NoError(t, err)
			assert.Equal(t, tt.want, cfg.Level.Level())
			assert.Equal(t, tt.dev, cfg.Development)
		})
	}

	_, err := zapConfigFor("verbose")
	assert.Error(t, err)
}

func TestNewMetricsRegistry_GathersRuntimeMetrics(t *testing.T) {
	reg := NewMetricsRegistry()
	families, err := reg.Gather()
	require.NoError(t, err)

	var found bool
	for _, f := range families {
		if f.GetName() == "go_goroutines" {
			found = true
		}
	}
	assert.True(t, found)
}

func TestModules_ProvideLoggerAndRegistry(t *testing.T) {
	cfg := config.Default()
	var (
		logger *zap.Logger
		reg    prometheus.Registerer
		gat    prometheus.Gatherer
	)
	app := fxtest.New(t,
		fx.Supply(&cfg),
		LoggerModule,
		MetricsModule,
		fx.Populate(&logger, &reg, &gat),
	)
	app.RequireStart()
	defer app.RequireStop()

	require.NotNil(t, logger)
	assert.Same(t, reg.(*prometheus.Registry), gat.(*prometheus.Registry))
}
