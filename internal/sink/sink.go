// Package sink consumes the mixer's output. It keeps running totals of what
// was delivered and periodically logs a summary.
package sink

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/Raikerian/go-media-mixer/internal/mixer"
	"github.com/Raikerian/go-media-mixer/pkg/audio"
	"github.com/Raikerian/go-media-mixer/pkg/video"
)

// Summary is a point-in-time view of what the sink has received.
type Summary struct {
	AudioFrames    uint64 `json:"audio_frames"`
	VideoFrames    uint64 `json:"video_frames"`
	Errors         uint64 `json:"errors"`
	LastAudioTS    uint64 `json:"last_audio_ts"`
	LastVideoTS    uint64 `json:"last_video_ts"`
	AudioPeak      int    `json:"audio_peak"`
	LastError      string `json:"last_error,omitempty"`
	LastVideoWidth int    `json:"last_video_width"`
}

// Counter implements mixer.Callback.
type Counter struct {
	logger   *zap.Logger
	interval time.Duration
	stall    time.Duration
	wd       atomic.Pointer[watchdog]

	audioFrames atomic.Uint64
	videoFrames atomic.Uint64
	errors      atomic.Uint64
	lastAudioTS atomic.Uint64
	lastVideoTS atomic.Uint64
	audioPeak   atomic.Int64
	videoWidth  atomic.Int64

	mu        sync.Mutex
	lastError string
	cancel    context.CancelFunc
	done      chan struct{}
}

var _ mixer.Callback = (*Counter)(nil)

// NewCounter creates a Counter. A zero interval disables the periodic
// summary; a zero stall timeout disables the stall warning.
func NewCounter(logger *zap.Logger, interval, stall time.Duration) *Counter {
	return &Counter{logger: logger, interval: interval, stall: stall}
}

func (c *Counter) OnMixedAudioFrame(f *mixer.AudioFrame) {
	c.feed()
	c.audioFrames.Add(1)
	c.lastAudioTS.Store(f.Timestamp)

	peak := 0
	for _, s := range audio.LEToPCMInt16(f.Data) {
		v := int(s)
		if v < 0 {
			v = -v
		}
		peak = max(peak, v)
	}
	c.audioPeak.Store(int64(peak))
}

func (c *Counter) OnMixedVideoFrame(f *video.Frame) {
	c.feed()
	c.videoFrames.Add(1)
	c.lastVideoTS.Store(f.Timestamp)
	c.videoWidth.Store(int64(f.Width))
}

func (c *Counter) OnError(err error) {
	c.errors.Add(1)
	c.mu.Lock()
	c.lastError = err.Error()
	c.mu.Unlock()
	c.logger.Warn("Mixer reported an error",
		zap.Stringer("code", mixer.CodeOf(err)),
		zap.Error(err))
}

// Summary returns the current totals.
func (c *Counter) Summary() Summary {
	c.mu.Lock()
	lastErr := c.lastError
	c.mu.Unlock()
	return Summary{
		AudioFrames:    c.audioFrames.Load(),
		VideoFrames:    c.videoFrames.Load(),
		Errors:         c.errors.Load(),
		LastAudioTS:    c.lastAudioTS.Load(),
		LastVideoTS:    c.lastVideoTS.Load(),
		AudioPeak:      int(c.audioPeak.Load()),
		LastError:      lastErr,
		LastVideoWidth: int(c.videoWidth.Load()),
	}
}

func (c *Counter) feed() {
	if wd := c.wd.Load(); wd != nil {
		wd.feed()
	}
}

// Start begins periodic summary logging and stall detection.
func (c *Counter) Start() {
	if c.interval <= 0 && c.stall <= 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cancel != nil {
		return
	}

	var wd *watchdog
	if c.stall > 0 {
		wd = newWatchdog(c.stall)
		c.wd.Store(wd)
	}
	ctx, cancel := context.WithCancel(context.Background())
	c.cancel = cancel
	c.done = make(chan struct{})
	go c.report(ctx, wd, c.done)
}

// Stop ends background reporting and writes a final summary.
func (c *Counter) Stop() {
	c.mu.Lock()
	cancel, done := c.cancel, c.done
	c.cancel, c.done = nil, nil
	c.mu.Unlock()
	if cancel != nil {
		cancel()
		<-done
	}
	if wd := c.wd.Swap(nil); wd != nil {
		wd.stop()
	}
	c.log("Final output summary")
}

func (c *Counter) report(ctx context.Context, wd *watchdog, done chan struct{}) {
	defer close(done)

	var tick, stalled <-chan time.Time
	if c.interval > 0 {
		ticker := time.NewTicker(c.interval)
		defer ticker.Stop()
		tick = ticker.C
	}
	if wd != nil {
		stalled = wd.C()
	}

	for {
		select {
		case <-ctx.Done():
			return
		case <-tick:
			c.log("Output summary")
		case <-stalled:
			c.logger.Warn("No mixed output received",
				zap.Duration("timeout", c.stall),
				zap.Uint64("audio_frames", c.audioFrames.Load()),
				zap.Uint64("video_frames", c.videoFrames.Load()))
			wd.feed()
		}
	}
}

func (c *Counter) log(msg string) {
	s := c.Summary()
	c.logger.Info(msg,
		zap.Uint64("audio_frames", s.AudioFrames),
		zap.Uint64("video_frames", s.VideoFrames),
		zap.Uint64("errors", s.Errors),
		zap.Uint64("last_audio_ts", s.LastAudioTS),
		zap.Uint64("last_video_ts", s.LastVideoTS),
		zap.Int("audio_peak", s.AudioPeak))
}
