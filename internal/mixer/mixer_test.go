package mixer_test

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/Raikerian/go-media-mixer/internal/mixer"
	"github.com/Raikerian/go-media-mixer/pkg/audio"
	"github.com/Raikerian/go-media-mixer/pkg/video"
)

type sink struct {
	mu     sync.Mutex
	audio  []uint64
	video  []uint64
	errors []error
}

func (s *sink) OnMixedAudioFrame(f *mixer.AudioFrame) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.audio = append(s.audio, f.Timestamp)
}

func (s *sink) OnMixedVideoFrame(f *video.Frame) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.video = append(s.video, f.Timestamp)
}

func (s *sink) OnError(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.errors = append(s.errors, err)
}

func (s *sink) counts() (a, v, e int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.audio), len(s.video), len(s.errors)
}

func newMixer(t *testing.T, opts ...mixer.Option) *mixer.Mixer {
	t.Helper()
	m, err := mixer.New(append([]mixer.Option{mixer.WithLogger(zaptest.NewLogger(t))}, opts...)...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = m.Close() })
	return m
}

var testCanvas = mixer.Canvas{FPS: 50, Width: 32, Height: 18, BackgroundColor: video.Black}

func TestLifecycle_StartStopReentrancy(t *testing.T) {
	m := newMixer(t)
	assert.Equal(t, mixer.StateCreated, m.State())

	require.NoError(t, m.SetCanvas(testCanvas))
	assert.Equal(t, mixer.StateConfigured, m.State())

	var mu sync.Mutex
	var stamps []uint64
	cb := mixer.NewMockCallback(t)
	cb.On("OnMixedAudioFrame", mock.Anything).Run(func(args mock.Arguments) {
		mu.Lock()
		defer mu.Unlock()
		stamps = append(stamps, args.Get(0).(*mixer.AudioFrame).Timestamp)
	}).Maybe()
	cb.On("OnMixedVideoFrame", mock.Anything).Maybe()
	require.NoError(t, m.SetCallback(cb))

	require.NoError(t, m.Start(true, true))
	assert.Equal(t, mixer.StateRunning, m.State())

	err := m.Start(true, true)
	require.ErrorIs(t, err, mixer.ErrWrongState)
	assert.Equal(t, mixer.StateRunning, m.State())

	assert.ErrorIs(t, m.SetCanvas(testCanvas), mixer.ErrWrongState)
	assert.ErrorIs(t, m.SetCallback(nil), mixer.ErrWrongState)

	// A second mixing goroutine would restart the tick count at zero.
	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(stamps) >= 10
	}, 2*time.Second, 5*time.Millisecond)

	require.NoError(t, m.Stop())
	assert.Equal(t, mixer.StateStopped, m.State())
	require.NoError(t, m.Stop(), "second stop is a no-op")
	assert.Equal(t, mixer.StateStopped, m.State())

	mu.Lock()
	for i := 1; i < len(stamps); i++ {
		require.Greater(t, stamps[i], stamps[i-1], "one tick sequence, no duplicates")
	}
	mu.Unlock()
	cb.AssertNotCalled(t, "OnError", mock.Anything)

	// STOPPED re-enters RUNNING; the canvas stays fixed.
	require.NoError(t, m.Start(false, true))
	assert.ErrorIs(t, m.SetCanvas(testCanvas), mixer.ErrWrongState)
	require.NoError(t, m.Stop())
	require.NoError(t, m.SetCallback(nil), "callback can be cleared after stop")
}

func TestStart_Preconditions(t *testing.T) {
	m := newMixer(t)

	assert.ErrorIs(t, m.Start(false, false), mixer.ErrInvalidParam)
	assert.ErrorIs(t, m.Start(false, true), mixer.ErrWrongState, "video needs a canvas")
	assert.Equal(t, mixer.StateCreated, m.State(), "failed start leaves state unchanged")

	require.NoError(t, m.Start(true, false), "audio-only needs no canvas")
	require.NoError(t, m.Stop())
}

func TestSetCanvas_Validation(t *testing.T) {
	tests := []struct {
		name   string
		canvas mixer.Canvas
	}{
		{"zero fps", mixer.Canvas{FPS: 0, Width: 640, Height: 360}},
		{"fps too high", mixer.Canvas{FPS: 61, Width: 640, Height: 360}},
		{"width too small", mixer.Canvas{FPS: 15, Width: 1, Height: 360}},
		{"height too large", mixer.Canvas{FPS: 15, Width: 640, Height: video.MaxDimension + 1}},
		{"colour out of range", mixer.Canvas{FPS: 15, Width: 640, Height: 360, BackgroundColor: 0x1000000}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newMixer(t)
			err := m.SetCanvas(tt.canvas)
			require.ErrorIs(t, err, mixer.ErrInvalidParam)
			assert.Equal(t, mixer.StateCreated, m.State())
		})
	}
}

func TestSetRegion_Validation(t *testing.T) {
	valid := mixer.Region{Width: 10, Height: 10, ZOrder: 1}
	tests := []struct {
		name   string
		id     mixer.SourceID
		mutate func(r *mixer.Region)
	}{
		{"empty id", "", func(r *mixer.Region) {}},
		{"zero width", "a", func(r *mixer.Region) { r.Width = 0 }},
		{"negative height", "a", func(r *mixer.Region) { r.Height = -4 }},
		{"negative offset", "a", func(r *mixer.Region) { r.X = -1 }},
		{"z below one", "a", func(r *mixer.Region) { r.ZOrder = 0 }},
		{"unknown fill mode", "a", func(r *mixer.Region) { r.FillMode = video.FillMode(9) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newMixer(t)
			r := valid
			tt.mutate(&r)
			assert.ErrorIs(t, m.SetRegion(tt.id, &r), mixer.ErrInvalidParam)
			assert.Equal(t, mixer.LayoutEmpty, m.LayoutState())
		})
	}
}

func TestLayout_EditPublishCycle(t *testing.T) {
	m := newMixer(t)
	assert.Equal(t, mixer.LayoutEmpty, m.LayoutState())

	require.NoError(t, m.SetRegion("b", &mixer.Region{Width: 4, Height: 4, ZOrder: 2}))
	require.NoError(t, m.SetRegion("a", &mixer.Region{Width: 4, Height: 4, ZOrder: 2}))
	require.NoError(t, m.SetRegion("c", &mixer.Region{Width: 4, Height: 4, ZOrder: 1}))
	assert.Equal(t, mixer.LayoutPending, m.LayoutState())
	assert.Empty(t, m.ActiveRegions(), "edits are invisible until applied")

	require.NoError(t, m.ApplyRegions())
	assert.Equal(t, mixer.LayoutEmpty, m.LayoutState())
	var ids []mixer.SourceID
	for _, e := range m.ActiveRegions() {
		ids = append(ids, e.SourceID)
	}
	assert.Equal(t, []mixer.SourceID{"c", "a", "b"}, ids, "z-order then id")

	// Pending carries over, so single edits are incremental.
	require.NoError(t, m.SetRegion("c", nil))
	require.NoError(t, m.ApplyRegions())
	assert.Len(t, m.ActiveRegions(), 2)

	m.ClearRegions()
	assert.Equal(t, mixer.LayoutPending, m.LayoutState())
	assert.Len(t, m.ActiveRegions(), 2, "clear only touches pending")
	assert.Empty(t, m.PendingRegions())
	require.NoError(t, m.ApplyRegions())
	assert.Empty(t, m.ActiveRegions())
}

func TestApplyRegions_KeepsBuffersOfRemovedRegions(t *testing.T) {
	m := newMixer(t)
	require.NoError(t, m.AddVideoFrame("a", video.NewFrameFilled(4, 4, video.White)))
	require.NoError(t, m.AddVideoFrame("b", video.NewFrameFilled(4, 4, video.White)))
	require.NoError(t, m.AddAudioFrame("b", mixer.NewAudioFrame(make([]byte, audio.FrameBytes), 0)))
	require.NoError(t, m.AddVideoFrame("loose", video.NewFrameFilled(4, 4, video.White)))

	require.NoError(t, m.ApplyLayout([]mixer.RegionEntry{
		{SourceID: "a", Region: mixer.Region{Width: 4, Height: 4, ZOrder: 1}},
		{SourceID: "b", Region: mixer.Region{Width: 4, Height: 4, ZOrder: 2}},
	}))
	assert.Equal(t, 3, m.Stats().Sources)

	require.NoError(t, m.SetRegion("b", nil))
	require.NoError(t, m.ApplyRegions())
	assert.Equal(t, 3, m.Stats().Sources, "removing a region keeps its source")

	// Only explicit teardown releases buffers.
	assert.True(t, m.RemoveSource("b"))
	assert.True(t, m.RemoveSource("loose"))
	assert.False(t, m.RemoveSource("loose"))
	assert.Equal(t, 1, m.Stats().Sources)
}

func TestApplyLayout_RejectsInvalidEntryAtomically(t *testing.T) {
	m := newMixer(t)
	require.NoError(t, m.ApplyLayout([]mixer.RegionEntry{
		{SourceID: "a", Region: mixer.Region{Width: 4, Height: 4, ZOrder: 1}},
	}))

	err := m.ApplyLayout([]mixer.RegionEntry{
		{SourceID: "b", Region: mixer.Region{Width: 4, Height: 4, ZOrder: 1}},
		{SourceID: "c", Region: mixer.Region{Width: 4, Height: 4, ZOrder: 0}},
	})
	require.ErrorIs(t, err, mixer.ErrInvalidParam)
	require.Len(t, m.ActiveRegions(), 1)
	assert.Equal(t, mixer.SourceID("a"), m.ActiveRegions()[0].SourceID)
	assert.Equal(t, mixer.LayoutEmpty, m.LayoutState())
}

func TestAddFrames_RejectsMalformedInput(t *testing.T) {
	m := newMixer(t)
	good := make([]byte, audio.FrameBytes)

	tests := []struct {
		name string
		call func() error
	}{
		{"nil audio frame", func() error { return m.AddAudioFrame("a", nil) }},
		{"empty audio", func() error { return m.AddAudioFrame("a", &mixer.AudioFrame{}) }},
		{"short audio", func() error { return m.AddAudioFrame("a", &mixer.AudioFrame{Data: good[:100]}) }},
		{"wrong sample rate", func() error {
			return m.AddAudioFrame("a", &mixer.AudioFrame{Data: good, SampleRate: 44_100})
		}},
		{"stereo", func() error { return m.AddAudioFrame("a", &mixer.AudioFrame{Data: good, Channels: 2}) }},
		{"empty audio id", func() error { return m.AddAudioFrame("", mixer.NewAudioFrame(good, 0)) }},
		{"nil video frame", func() error { return m.AddVideoFrame("v", nil) }},
		{"video without data", func() error { return m.AddVideoFrame("v", &video.Frame{Width: 4, Height: 4}) }},
		{"video wrong length", func() error {
			return m.AddVideoFrame("v", &video.Frame{Width: 4, Height: 4, Data: make([]byte, 3)})
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.call()
			require.ErrorIs(t, err, mixer.ErrInvalidParam)
			assert.Equal(t, mixer.CodeInvalidParam, mixer.CodeOf(err))
		})
	}

	stats := m.Stats()
	assert.Equal(t, uint64(6), stats.AudioRejected)
	assert.Equal(t, uint64(3), stats.VideoRejected)
	assert.Zero(t, stats.Sources, "rejected frames create no source")

	require.NoError(t, m.AddAudioFrame("a", mixer.NewAudioFrame(good, 0)))
	require.NoError(t, m.AddAudioFrame("a", &mixer.AudioFrame{Data: good}), "zero format fields mean standard format")
	assert.Equal(t, uint64(2), m.Stats().AudioFramesIn)
}

func TestAddVideoFrame_RejectsOutOfOrderTimestamps(t *testing.T) {
	m := newMixer(t)
	f := video.NewFrameFilled(4, 4, video.White)

	f.Timestamp = 100
	require.NoError(t, m.AddVideoFrame("a", f))
	f.Timestamp = 100
	require.NoError(t, m.AddVideoFrame("a", f), "equal timestamps are allowed")
	f.Timestamp = 99
	assert.ErrorIs(t, m.AddVideoFrame("a", f), mixer.ErrInvalidParam)
}

func TestRealtime_DeliversOrderedOutputAndErrors(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := newMixer(t, mixer.WithRegisterer(reg))
	out := &sink{}
	require.NoError(t, m.SetCanvas(testCanvas))
	require.NoError(t, m.SetCallback(out))
	require.NoError(t, m.Start(true, true))

	require.ErrorIs(t, m.AddAudioFrame("a", &mixer.AudioFrame{Data: []byte{0}}), mixer.ErrInvalidParam)
	require.Eventually(t, func() bool {
		a, v, e := out.counts()
		return a >= 5 && v >= 5 && e == 1
	}, 2*time.Second, 5*time.Millisecond)

	require.NoError(t, m.Stop())
	a, v, _ := out.counts()
	time.Sleep(60 * time.Millisecond)
	a2, v2, _ := out.counts()
	assert.Equal(t, a, a2, "no output after Stop returns")
	assert.Equal(t, v, v2)

	out.mu.Lock()
	defer out.mu.Unlock()
	for _, series := range [][]uint64{out.audio, out.video} {
		assert.Equal(t, uint64(0), series[0])
		for i := 1; i < len(series); i++ {
			assert.Greater(t, series[i], series[i-1], "strictly tick-ordered")
			assert.Zero(t, series[i]%20)
		}
	}
	assert.True(t, errors.Is(out.errors[0], mixer.ErrInvalidParam))

	families, err := reg.Gather()
	require.NoError(t, err)
	names := map[string]bool{}
	for _, f := range families {
		names[f.GetName()] = true
	}
	assert.True(t, names["mediamixer_ticks_total"])
	assert.True(t, names["mediamixer_frames_rejected_total"])
}

func TestStop_ReleasesSourceBuffers(t *testing.T) {
	m := newMixer(t)
	require.NoError(t, m.Start(true, false))
	require.NoError(t, m.AddAudioFrame("a", mixer.NewAudioFrame(make([]byte, audio.FrameBytes), 0)))
	assert.Equal(t, 1, m.Stats().Sources)

	require.NoError(t, m.Stop())
	assert.Zero(t, m.Stats().Sources)
}

func TestMetrics_SeveralMixersShareARegistry(t *testing.T) {
	reg := prometheus.NewRegistry()
	newMixer(t, mixer.WithRegisterer(reg), mixer.WithID("one"))
	assert.NotPanics(t, func() {
		newMixer(t, mixer.WithRegisterer(reg), mixer.WithID("two"))
	})
}

func TestNew_GeneratesID(t *testing.T) {
	a, b := newMixer(t), newMixer(t)
	assert.NotEmpty(t, a.ID())
	assert.NotEqual(t, a.ID(), b.ID())
}

func TestError_Taxonomy(t *testing.T) {
	err := &mixer.Error{Code: mixer.CodeWrongState, Op: "start", Err: errors.New("already running")}
	assert.Equal(t, "mixer: start: WRONG_STATE: already running", err.Error())
	assert.ErrorIs(t, err, mixer.ErrWrongState)
	assert.NotErrorIs(t, err, mixer.ErrInvalidParam)
	assert.Equal(t, mixer.CodeWrongState, mixer.CodeOf(err))
	assert.Equal(t, mixer.CodeUnknown, mixer.CodeOf(errors.New("plain")))
	assert.Equal(t, "MEMORY_FAILED", mixer.CodeMemoryFailed.String())
}

func TestAudioPolicy_Parse(t *testing.T) {
	p, err := mixer.ParseAudioPolicy("region_only")
	require.NoError(t, err)
	assert.Equal(t, mixer.AudioPolicyRegionOnly, p)

	p, err = mixer.ParseAudioPolicy("")
	require.NoError(t, err)
	assert.Equal(t, mixer.AudioPolicyAll, p)

	_, err = mixer.ParseAudioPolicy("loudest")
	assert.Error(t, err)
}
