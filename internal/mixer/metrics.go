package mixer

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the mixer's Prometheus collectors.
type Metrics struct {
	// Tick metrics
	Ticks        *prometheus.CounterVec
	TickDuration *prometheus.HistogramVec
	TicksSkipped *prometheus.CounterVec

	// Input metrics
	FramesReceived *prometheus.CounterVec
	FramesRejected *prometheus.CounterVec
	AudioDropped   *prometheus.CounterVec
	LiveSources    prometheus.Gauge

	// Policy metrics
	SilenceSubstituted prometheus.Counter
	VideoHeld          prometheus.Counter

	// Consumer metrics
	CallbackPanics prometheus.Counter
	ErrorsDropped  prometheus.Counter

	Running prometheus.Gauge
}

// NewMetrics registers the collectors on reg. Every series carries a
// mixer_id label so several mixers can share one registry.
func NewMetrics(reg prometheus.Registerer, mixerID string) *Metrics {
	factory := promauto.With(prometheus.WrapRegistererWith(prometheus.Labels{"mixer_id": mixerID}, reg))

	return &Metrics{
		Ticks: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "mediamixer_ticks_total",
				Help: "Total number of mixing ticks executed",
			},
			[]string{"stage"}, // stage: audio or video
		),
		TickDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "mediamixer_tick_duration_seconds",
				Help:    "Time spent producing one mixed frame",
				Buckets: prometheus.ExponentialBuckets(0.0001, 2, 12), // 100us to ~200ms
			},
			[]string{"stage"},
		),
		TicksSkipped: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "mediamixer_ticks_skipped_total",
				Help: "Ticks skipped while resynchronising after the scheduler fell behind",
			},
			[]string{"stage"},
		),
		FramesReceived: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "mediamixer_frames_received_total",
				Help: "Total number of input frames accepted",
			},
			[]string{"kind"}, // kind: audio or video
		),
		FramesRejected: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "mediamixer_frames_rejected_total",
				Help: "Total number of input frames rejected",
			},
			[]string{"kind"},
		),
		AudioDropped: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "mediamixer_audio_frames_dropped_total",
				Help: "Audio frames discarded by the jitter buffer",
			},
			[]string{"reason"}, // reason: jitter or overflow
		),
		LiveSources: factory.NewGauge(prometheus.GaugeOpts{
			Name: "mediamixer_live_sources",
			Help: "Number of sources currently registered",
		}),
		SilenceSubstituted: factory.NewCounter(prometheus.CounterOpts{
			Name: "mediamixer_audio_silence_substituted_total",
			Help: "Audio ticks where a source had no frame and contributed silence",
		}),
		VideoHeld: factory.NewCounter(prometheus.CounterOpts{
			Name: "mediamixer_video_frames_held_total",
			Help: "Video ticks where a source's previous frame was drawn again",
		}),
		CallbackPanics: factory.NewCounter(prometheus.CounterOpts{
			Name: "mediamixer_callback_panics_total",
			Help: "Panics recovered from output callbacks",
		}),
		ErrorsDropped: factory.NewCounter(prometheus.CounterOpts{
			Name: "mediamixer_error_reports_dropped_total",
			Help: "Error reports discarded because the delivery queue was full",
		}),
		Running: factory.NewGauge(prometheus.GaugeOpts{
			Name: "mediamixer_running",
			Help: "1 while the mixing clock is running",
		}),
	}
}
