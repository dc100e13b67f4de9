package mixer

import (
	"bytes"
	"context"
	"fmt"
	"runtime"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/Raikerian/go-media-mixer/pkg/audio"
	"github.com/Raikerian/go-media-mixer/pkg/video"
)

// run is the mixing goroutine. It sleeps until the next deadline, then runs
// exactly one stage tick. Cancellation is observed only between ticks so an
// in-flight tick always completes.
func (m *Mixer) run(ctx context.Context, sess *session) {
	defer close(sess.done)
	m.loopGID.Store(goroutineID())
	defer m.loopGID.Store(0)

	timer := time.NewTimer(time.Hour)
	timer.Stop()
	defer timer.Stop()

	for {
		_, at := sess.sched.next()
		if wait := time.Until(at); wait > 0 {
			timer.Reset(wait)
			select {
			case <-ctx.Done():
				m.deliverErrors(sess)
				return
			case <-timer.C:
			}
		} else if ctx.Err() != nil {
			m.deliverErrors(sess)
			return
		}

		if a, v := sess.sched.resync(time.Now()); a+v > 0 {
			m.countSkipped(a, v)
		}
		m.deliverErrors(sess)

		st, _ := sess.sched.next()
		m.tick(sess, st, sess.sched.advance(st))
	}
}

// tick runs one stage for one tick index.
func (m *Mixer) tick(sess *session, st stage, n uint64) {
	start := time.Now()
	switch st {
	case stageAudio:
		frame := m.mixAudio(n)
		m.stats.audioTicks.Add(1)
		m.emit(sess, "on mixed audio frame", func() { sess.cb.OnMixedAudioFrame(frame) })
	case stageVideo:
		frame := m.composite(sess, n)
		m.stats.videoTicks.Add(1)
		m.emit(sess, "on mixed video frame", func() { sess.cb.OnMixedVideoFrame(frame) })
	}
	m.metrics.Ticks.WithLabelValues(st.String()).Inc()
	m.metrics.TickDuration.WithLabelValues(st.String()).Observe(time.Since(start).Seconds())
}

// mixAudio pops one frame per participating source and sums them. Sources
// with an empty queue contribute silence for this tick.
func (m *Mixer) mixAudio(n uint64) *AudioFrame {
	table := m.layout.snapshot()
	m.acc.Reset()

	for _, s := range m.registry.snapshot() {
		if m.policy == AudioPolicyRegionOnly && !table.Has(s.id) {
			continue
		}
		if !s.audioSeen() {
			continue
		}
		pcm, dropped, ok := s.audio.Pop()
		if dropped > 0 {
			m.stats.jitterDropped.Add(uint64(dropped))
			m.metrics.AudioDropped.WithLabelValues("jitter").Add(float64(dropped))
			m.logger.Debug("Audio backlog above jitter tolerance, dropped oldest frames",
				zap.String("source_id", string(s.id)),
				zap.Int("dropped", dropped))
		}
		if !ok {
			m.stats.silence.Add(1)
			m.metrics.SilenceSubstituted.Inc()
			continue
		}
		if err := m.acc.Add(pcm); err != nil {
			// Frames are validated on ingestion.
			m.logger.Error("Queued audio frame malformed", zap.String("source_id", string(s.id)), zap.Error(err))
		}
	}

	return &AudioFrame{
		Data:       m.acc.Bytes(),
		SampleRate: audio.SampleRate,
		Channels:   audio.Channels,
		Timestamp:  n * uint64(audio.FrameDuration/time.Millisecond),
	}
}

// composite draws the active table onto a fresh canvas in z-order. A region
// whose source has no frame yet is filled with its own background colour; a
// source that has not delivered a new frame since the last tick is drawn
// again from its cache.
func (m *Mixer) composite(sess *session, n uint64) *video.Frame {
	table := m.layout.snapshot()
	canvas := sess.template.Clone()
	canvas.Timestamp = n * 1000 / uint64(sess.canvas.FPS)

	for _, e := range table.ordered {
		rect := e.Rect()
		var frame *video.Frame
		var seq uint64
		s, ok := m.registry.get(e.SourceID)
		if ok {
			frame, seq = s.latestVideo()
		}
		if frame == nil {
			canvas.FillRect(rect, e.BackgroundColor)
			continue
		}
		if seq == s.drawnSeq {
			m.stats.held.Add(1)
			m.metrics.VideoHeld.Inc()
		}
		s.drawnSeq = seq

		sm := m.scales.Map(frame.Width, frame.Height, e.Width, e.Height, e.FillMode)
		canvas.Draw(frame, rect, sm)
	}
	return canvas
}

// emit invokes a consumer callback, converting a panic into an OnError
// report so a faulty consumer cannot take the mixing goroutine down.
func (m *Mixer) emit(sess *session, op string, fn func()) {
	if sess.cb == nil {
		return
	}
	if err := m.guard(op, fn); err != nil {
		_ = m.guard("on error", func() { sess.cb.OnError(err) })
	}
}

func (m *Mixer) guard(op string, fn func()) (err error) {
	defer func() {
		if r := recover(); r != nil {
			m.stats.callbackPanics.Add(1)
			m.metrics.CallbackPanics.Inc()
			err = wrapError(CodeUnknown, op, fmt.Errorf("callback panicked: %v", r))
			m.logger.Error("Callback panicked", zap.String("op", op), zap.Any("panic", r))
		}
	}()
	fn()
	return nil
}

// deliverErrors drains queued ingestion errors through OnError.
func (m *Mixer) deliverErrors(sess *session) {
	for {
		select {
		case err := <-m.errs:
			if sess.cb != nil {
				_ = m.guard("on error", func() { sess.cb.OnError(err) })
			}
		default:
			return
		}
	}
}

// goroutineID parses the current goroutine's id from its stack header,
// "goroutine 18 [running]:".
func goroutineID() uint64 {
	var buf [64]byte
	b := buf[:runtime.Stack(buf[:], false)]
	b = bytes.TrimPrefix(b, []byte("goroutine "))
	if i := bytes.IndexByte(b, ' '); i > 0 {
		b = b[:i]
	}
	id, _ := strconv.ParseUint(string(b), 10, 64)
	return id
}

func (m *Mixer) countSkipped(audioSkipped, videoSkipped uint64) {
	m.stats.skipped.Add(audioSkipped + videoSkipped)
	m.metrics.TicksSkipped.WithLabelValues(stageAudio.String()).Add(float64(audioSkipped))
	m.metrics.TicksSkipped.WithLabelValues(stageVideo.String()).Add(float64(videoSkipped))
	m.logger.Warn("Mixer fell behind, skipped ticks",
		zap.Uint64("audio", audioSkipped),
		zap.Uint64("video", videoSkipped))
}
