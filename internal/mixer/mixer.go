// Package mixer combines many asynchronously produced raw audio and video
// streams into one mixed PCM stream and one composited I420 canvas, emitted
// at a fixed cadence through a Callback.
package mixer

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/Raikerian/go-media-mixer/pkg/audio"
	"github.com/Raikerian/go-media-mixer/pkg/video"
)

// DefaultErrorQueueSize bounds the number of ingestion errors waiting to be
// delivered through OnError.
const DefaultErrorQueueSize = 64

type options struct {
	id             string
	logger         *zap.Logger
	registerer     prometheus.Registerer
	policy         AudioPolicy
	jitterFrames   int
	maxQueueFrames int
	errorQueueSize int
	scaleCacheSize int
}

// Option configures a Mixer.
type Option func(*options)

// WithID overrides the generated mixer id.
func WithID(id string) Option {
	return func(o *options) { o.id = id }
}

func WithLogger(logger *zap.Logger) Option {
	return func(o *options) { o.logger = logger }
}

// WithRegisterer registers the mixer's metrics on reg instead of a private
// registry.
func WithRegisterer(reg prometheus.Registerer) Option {
	return func(o *options) { o.registerer = reg }
}

func WithAudioPolicy(p AudioPolicy) Option {
	return func(o *options) { o.policy = p }
}

// WithJitterBuffer sets the per-source jitter tolerance and queue capacity
// in frames.
func WithJitterBuffer(tolerance, capacity int) Option {
	return func(o *options) {
		o.jitterFrames = tolerance
		o.maxQueueFrames = capacity
	}
}

func WithErrorQueueSize(n int) Option {
	return func(o *options) { o.errorQueueSize = n }
}

func WithScaleCacheSize(n int) Option {
	return func(o *options) { o.scaleCacheSize = n }
}

// Mixer is one mixing engine instance. Control calls (SetCanvas,
// SetCallback, Start, Stop, Close) are serialised internally; layout and
// ingestion calls may be made from any goroutine at any time.
type Mixer struct {
	id      string
	logger  *zap.Logger
	metrics *Metrics
	policy  AudioPolicy

	registry *registry
	layout   *layout
	scales   *video.ScaleCache
	errs     chan error
	stats    counters

	mu        sync.Mutex // serialises control calls; guards the fields below
	canvas    Canvas
	hasCanvas bool
	callback  Callback
	sess      *session

	state   atomic.Int32
	loopGID atomic.Uint64 // goroutine id of the running mixing goroutine

	// Owned by the mixing goroutine.
	acc audio.Accumulator
}

// session is one Start/Stop cycle.
type session struct {
	cb       Callback
	canvas   Canvas
	audio    bool
	video    bool
	template *video.Frame
	sched    *schedule

	cancel context.CancelFunc
	done   chan struct{}
}

// New creates a mixer in the CREATED state.
func New(opts ...Option) (*Mixer, error) {
	o := options{
		logger:         zap.NewNop(),
		policy:         AudioPolicyAll,
		jitterFrames:   audio.DefaultJitterFrames,
		maxQueueFrames: audio.DefaultMaxQueueFrames,
		errorQueueSize: DefaultErrorQueueSize,
		scaleCacheSize: video.DefaultScaleCacheSize,
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.id == "" {
		o.id = uuid.NewString()
	}
	if o.registerer == nil {
		o.registerer = prometheus.NewRegistry()
	}
	if o.errorQueueSize <= 0 {
		o.errorQueueSize = DefaultErrorQueueSize
	}
	if o.policy != AudioPolicyAll && o.policy != AudioPolicyRegionOnly {
		return nil, newError(CodeInvalidParam, "new", "unknown audio policy %d", int(o.policy))
	}

	scales, err := video.NewScaleCache(o.scaleCacheSize)
	if err != nil {
		return nil, wrapError(CodeMemoryFailed, "new", fmt.Errorf("create scale cache: %w", err))
	}

	m := &Mixer{
		id:       o.id,
		logger:   o.logger.With(zap.String("mixer_id", o.id)),
		metrics:  NewMetrics(o.registerer, o.id),
		policy:   o.policy,
		registry: newRegistry(o.jitterFrames, o.maxQueueFrames),
		layout:   newLayout(),
		scales:   scales,
		errs:     make(chan error, o.errorQueueSize),
	}
	m.state.Store(int32(StateCreated))

	m.logger.Debug("Mixer created",
		zap.Stringer("audio_policy", o.policy),
		zap.Int("jitter_frames", o.jitterFrames),
		zap.Int("max_queue_frames", o.maxQueueFrames))
	return m, nil
}

// ID returns the mixer instance id.
func (m *Mixer) ID() string { return m.id }

// State returns the lifecycle state.
func (m *Mixer) State() State { return State(m.state.Load()) }

// AudioPolicy returns the participation policy the mixer was built with.
func (m *Mixer) AudioPolicy() AudioPolicy { return m.policy }

// Canvas returns the configured canvas, if any.
func (m *Mixer) Canvas() (Canvas, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.canvas, m.hasCanvas
}

// SetCallback registers the output sink. Passing nil clears it. Rejected
// while running.
func (m *Mixer) SetCallback(cb Callback) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.State() == StateRunning {
		return newError(CodeWrongState, "set callback", "mixer is running")
	}
	m.callback = cb
	return nil
}

// SetCanvas configures the output surface. It may only be called before the
// first Start; the canvas is immutable afterwards.
func (m *Mixer) SetCanvas(c Canvas) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	switch st := m.State(); st {
	case StateCreated, StateConfigured:
	default:
		return newError(CodeWrongState, "set canvas", "canvas is fixed once the mixer has started (state %s)", st)
	}
	if err := c.Validate(); err != nil {
		return wrapError(CodeInvalidParam, "set canvas", err)
	}
	m.canvas = c
	m.hasCanvas = true
	m.state.Store(int32(StateConfigured))

	m.logger.Info("Canvas configured",
		zap.Int("fps", c.FPS),
		zap.Int("width", c.Width),
		zap.Int("height", c.Height),
		zap.Stringer("background_color", c.BackgroundColor))
	return nil
}

// Start launches the mixing goroutine. Audio and video enablement is fixed
// until Stop. A second Start while running fails with CodeWrongState and
// leaves the running session untouched.
func (m *Mixer) Start(enableAudio, enableVideo bool) error {
	if m.onMixingGoroutine() {
		return newError(CodeWrongState, "start", "called from a mixer callback")
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.State() == StateRunning {
		return newError(CodeWrongState, "start", "already running")
	}
	if !enableAudio && !enableVideo {
		return newError(CodeInvalidParam, "start", "neither audio nor video enabled")
	}

	sess, err := m.newSession(enableAudio, enableVideo, time.Now())
	if err != nil {
		return err
	}

	if stale := m.discardErrors(); stale > 0 {
		m.logger.Debug("Discarded errors from previous session", zap.Int("errors", stale))
	}

	ctx, cancel := context.WithCancel(context.Background())
	sess.cancel = cancel
	sess.done = make(chan struct{})
	m.sess = sess
	m.state.Store(int32(StateRunning))
	m.metrics.Running.Set(1)

	go m.run(ctx, sess)

	m.logger.Info("Mixer started",
		zap.Bool("audio", enableAudio),
		zap.Bool("video", enableVideo),
		zap.Int("fps", sess.canvas.FPS))
	return nil
}

// newSession validates the start preconditions and allocates the canvas
// template. It does not change the mixer state.
func (m *Mixer) newSession(enableAudio, enableVideo bool, origin time.Time) (*session, error) {
	sess := &session{
		cb:     m.callback,
		canvas: m.canvas,
		audio:  enableAudio,
		video:  enableVideo,
	}
	fps := audio.FramesPerSecond
	if enableVideo {
		if !m.hasCanvas {
			return nil, newError(CodeWrongState, "start", "video enabled but no canvas configured")
		}
		tmpl, err := allocCanvas(m.canvas)
		if err != nil {
			return nil, err
		}
		sess.template = tmpl
		fps = m.canvas.FPS
	}
	sess.sched = newSchedule(origin, fps, enableAudio, enableVideo)
	return sess, nil
}

// newCanvasFrame allocates the background template. Tests replace it.
var newCanvasFrame = video.NewFrameFilled

// allocCanvas converts an allocation panic into CodeMemoryFailed. A Go heap
// exhaustion is fatal and cannot be caught here.
func allocCanvas(c Canvas) (f *video.Frame, err error) {
	defer func() {
		if r := recover(); r != nil {
			f = nil
			err = newError(CodeMemoryFailed, "start", "allocate %dx%d canvas: %v", c.Width, c.Height, r)
		}
	}()
	return newCanvasFrame(c.Width, c.Height, c.BackgroundColor), nil
}

// Stop halts the mixing goroutine after its in-flight tick, releases every
// per-source buffer and returns once the goroutine has exited. Stop on a
// mixer that is not running is a no-op. Called from a Callback it fails with
// CodeWrongState instead of waiting on itself.
func (m *Mixer) Stop() error {
	if m.onMixingGoroutine() {
		return newError(CodeWrongState, "stop", "called from a mixer callback")
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.State() != StateRunning {
		return nil
	}
	sess := m.sess
	sess.cancel()
	<-sess.done

	released := m.registry.reset()
	m.sess = nil
	m.state.Store(int32(StateStopped))
	m.metrics.Running.Set(0)
	m.metrics.LiveSources.Set(0)
	// Rejections racing the state change land after the final delivery.
	undelivered := m.discardErrors()

	m.logger.Info("Mixer stopped",
		zap.Uint64("audio_ticks", sess.sched.audioTick),
		zap.Uint64("video_ticks", sess.sched.videoTick),
		zap.Int("released_sources", released),
		zap.Int("undelivered_errors", undelivered))
	return nil
}

// discardErrors empties the error queue without delivering it.
func (m *Mixer) discardErrors() int {
	var n int
	for {
		select {
		case <-m.errs:
			n++
		default:
			if n > 0 {
				m.stats.errorsDropped.Add(uint64(n))
				m.metrics.ErrorsDropped.Add(float64(n))
			}
			return n
		}
	}
}

func (m *Mixer) onMixingGoroutine() bool {
	id := m.loopGID.Load()
	return id != 0 && id == goroutineID()
}

// Close stops the mixer and drops the callback. The mixer may not be used
// afterwards.
func (m *Mixer) Close() error {
	if err := m.Stop(); err != nil {
		return err
	}
	m.mu.Lock()
	m.callback = nil
	m.mu.Unlock()
	return nil
}

// ClearRegions empties the pending region table. The change is invisible
// until ApplyRegions.
func (m *Mixer) ClearRegions() {
	m.layout.clear()
}

// SetRegion stages a region for id in the pending table, or marks id for
// removal when r is nil.
func (m *Mixer) SetRegion(id SourceID, r *Region) error {
	if id == "" {
		return newError(CodeInvalidParam, "set region", "empty source id")
	}
	if r != nil {
		if err := r.Validate(); err != nil {
			return wrapError(CodeInvalidParam, "set region", fmt.Errorf("source %q: %w", id, err))
		}
	}
	m.layout.set(id, r)
	return nil
}

// ApplyRegions atomically publishes the pending table. Sources dropped from
// the table keep their cached video frame so a later SetRegion shows it
// immediately. Under AudioPolicyRegionOnly their queued audio is discarded;
// under AudioPolicyAll they keep feeding the mix.
func (m *Mixer) ApplyRegions() error {
	prev, next := m.layout.apply()

	var flushed int
	if m.policy == AudioPolicyRegionOnly {
		for _, e := range prev.ordered {
			if next.Has(e.SourceID) {
				continue
			}
			if s, ok := m.registry.get(e.SourceID); ok {
				s.audio.Reset()
				flushed++
			}
		}
	}

	m.logger.Debug("Regions applied",
		zap.Int("regions", next.Len()),
		zap.Int("flushed_audio_queues", flushed))
	return nil
}

// ActiveRegions returns the published table in draw order.
func (m *Mixer) ActiveRegions() []RegionEntry {
	return m.layout.snapshot().Entries()
}

// PendingRegions returns the unpublished table in draw order.
func (m *Mixer) PendingRegions() []RegionEntry {
	return m.layout.pendingEntries()
}

// LayoutState reports whether unpublished layout edits exist.
func (m *Mixer) LayoutState() LayoutState {
	return m.layout.state()
}

// RemoveSource releases id's buffers. It reports whether the source existed.
// A later frame for id creates it again.
func (m *Mixer) RemoveSource(id SourceID) bool {
	ok := m.registry.remove(id)
	if ok {
		m.metrics.LiveSources.Set(float64(m.registry.len()))
		m.logger.Debug("Source removed", zap.String("source_id", string(id)))
	}
	return ok
}

// AddAudioFrame queues one 20 ms frame for id. The PCM is copied, so the
// caller may reuse its buffer.
func (m *Mixer) AddAudioFrame(id SourceID, f *AudioFrame) error {
	if id == "" {
		return m.reject("add audio frame", "audio", newError(CodeInvalidParam, "add audio frame", "empty source id"))
	}
	if err := f.Validate(); err != nil {
		return m.reject("add audio frame", "audio", wrapError(CodeInvalidParam, "add audio frame", fmt.Errorf("source %q: %w", id, err)))
	}

	s, created := m.registry.getOrCreate(id)
	if created {
		m.onSourceCreated(id)
	}
	if dropped := s.pushAudio(append([]byte(nil), f.Data...)); dropped > 0 {
		m.stats.overflowDropped.Add(uint64(dropped))
		m.metrics.AudioDropped.WithLabelValues("overflow").Add(float64(dropped))
		m.logger.Debug("Audio queue overflow, dropped oldest frame",
			zap.String("source_id", string(id)),
			zap.Int("dropped", dropped))
	}
	m.stats.audioIn.Add(1)
	m.metrics.FramesReceived.WithLabelValues("audio").Inc()
	return nil
}

// AddVideoFrame replaces id's cached frame. The frame is copied, so the
// caller may reuse its buffer.
func (m *Mixer) AddVideoFrame(id SourceID, f *video.Frame) error {
	if id == "" {
		return m.reject("add video frame", "video", newError(CodeInvalidParam, "add video frame", "empty source id"))
	}
	if err := f.Validate(); err != nil {
		return m.reject("add video frame", "video", wrapError(CodeInvalidParam, "add video frame", fmt.Errorf("source %q: %w", id, err)))
	}

	s, created := m.registry.getOrCreate(id)
	if created {
		m.onSourceCreated(id)
	}
	if err := s.storeVideo(f.Clone()); err != nil {
		return m.reject("add video frame", "video", wrapError(CodeInvalidParam, "add video frame", fmt.Errorf("source %q: %w", id, err)))
	}
	m.stats.videoIn.Add(1)
	m.metrics.FramesReceived.WithLabelValues("video").Inc()
	return nil
}

func (m *Mixer) onSourceCreated(id SourceID) {
	m.metrics.LiveSources.Set(float64(m.registry.len()))
	m.logger.Debug("Source registered", zap.String("source_id", string(id)))
}

// reject counts a malformed input frame and, while running, queues the
// error for delivery through OnError. It never blocks.
func (m *Mixer) reject(op, kind string, err *Error) error {
	if kind == "audio" {
		m.stats.audioRejected.Add(1)
	} else {
		m.stats.videoRejected.Add(1)
	}
	m.metrics.FramesRejected.WithLabelValues(kind).Inc()
	m.logger.Warn("Input frame rejected", zap.String("op", op), zap.Error(err))

	if m.State() == StateRunning {
		select {
		case m.errs <- err:
		default:
			m.stats.errorsDropped.Add(1)
			m.metrics.ErrorsDropped.Inc()
		}
	}
	return err
}

// Stats returns a snapshot of the mixer's counters.
func (m *Mixer) Stats() Stats {
	s := Stats{
		State:         m.State().String(),
		LayoutState:   m.LayoutState().String(),
		Sources:       m.registry.len(),
		ActiveRegions: m.layout.snapshot().Len(),
	}
	m.stats.fill(&s)
	return s
}
