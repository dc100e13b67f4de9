package synth

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/Raikerian/go-media-mixer/internal/mixer"
	"github.com/Raikerian/go-media-mixer/pkg/audio"
	"github.com/Raikerian/go-media-mixer/pkg/video"
)

// Sink accepts produced frames. *mixer.Mixer satisfies it.
type Sink interface {
	AddAudioFrame(id mixer.SourceID, f *mixer.AudioFrame) error
	AddVideoFrame(id mixer.SourceID, f *video.Frame) error
}

// Source describes one synthetic producer. A nil Tone or Pattern
// disables that medium.
type Source struct {
	ID       mixer.SourceID
	Tone     *Tone
	Pattern  *Pattern
	FPS      int
	RateSkew float64
}

// interval scales a nominal period by the source's rate skew.
func (s Source) interval(nominal time.Duration) time.Duration {
	return time.Duration(float64(nominal) / (1 + s.RateSkew))
}

// Feeder drives every Source on its own goroutines until stopped.
type Feeder struct {
	logger  *zap.Logger
	sink    Sink
	sources []Source

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan error
}

func NewFeeder(logger *zap.Logger, sink Sink, sources []Source) *Feeder {
	return &Feeder{
		logger:  logger,
		sink:    sink,
		sources: sources,
	}
}

// Run produces frames until ctx is cancelled. It returns nil on
// cancellation.
func (f *Feeder) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)

	for _, src := range f.sources {
		if src.Tone != nil {
			g.Go(func() error {
				return f.loop(ctx, src.ID, "audio", src.interval(audio.FrameDuration), func(n uint64) error {
					return f.sink.AddAudioFrame(src.ID, mixer.NewAudioFrame(src.Tone.Next(), n*uint64(audio.FrameDuration/time.Millisecond)))
				})
			})
		}
		if src.Pattern != nil && src.FPS > 0 {
			g.Go(func() error {
				return f.loop(ctx, src.ID, "video", src.interval(time.Second/time.Duration(src.FPS)), func(uint64) error {
					return f.sink.AddVideoFrame(src.ID, src.Pattern.Next())
				})
			})
		}
	}

	f.logger.Info("Synthetic producers running", zap.Int("sources", len(f.sources)))
	err := g.Wait()
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// loop calls produce once per interval. Rejected frames are logged and
// skipped; only cancellation ends the loop.
func (f *Feeder) loop(ctx context.Context, id mixer.SourceID, kind string, interval time.Duration, produce func(n uint64) error) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for n := uint64(0); ; n++ {
		if err := produce(n); err != nil {
			f.logger.Warn("Frame rejected",
				zap.String("source_id", string(id)),
				zap.String("kind", kind),
				zap.Error(err))
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// Start runs the feeder in the background.
func (f *Feeder) Start() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.cancel != nil {
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	f.cancel = cancel
	f.done = make(chan error, 1)
	go func() { f.done <- f.Run(ctx) }()
}

// Stop cancels a background run and waits for it to finish.
func (f *Feeder) Stop(ctx context.Context) error {
	f.mu.Lock()
	cancel, done := f.cancel, f.done
	f.cancel, f.done = nil, nil
	f.mu.Unlock()
	if cancel == nil {
		return nil
	}

	cancel()
	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}
