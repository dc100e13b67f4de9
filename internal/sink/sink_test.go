package sink

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/Raikerian/go-media-mixer/internal/mixer"
	"github.com/Raikerian/go-media-mixer/pkg/audio"
	"github.com/Raikerian/go-media-mixer/pkg/video"
)

func TestCounter_TracksOutput(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	c := NewCounter(zap.New(core), 0, 0)

	samples := make([]int16, audio.FrameSize)
	samples[10] = -1200
	samples[20] = 800
	c.OnMixedAudioFrame(mixer.NewAudioFrame(audio.PCMInt16ToLE(samples), 0))
	c.OnMixedAudioFrame(mixer.NewAudioFrame(make([]byte, audio.FrameBytes), 20))

	f := video.NewFrame(32, 18)
	f.Timestamp = 66
	c.OnMixedVideoFrame(f)

	c.OnError(mixer.ErrInvalidParam)

	s := c.Summary()
	assert.Equal(t, uint64(2), s.AudioFrames)
	assert.Equal(t, uint64(1), s.VideoFrames)
	assert.Equal(t, uint64(1), s.Errors)
	assert.Equal(t, uint64(20), s.LastAudioTS)
	assert.Equal(t, uint64(66), s.LastVideoTS)
	assert.Equal(t, 0, s.AudioPeak, "peak tracks the latest frame")
	assert.Equal(t, 32, s.LastVideoWidth)
	assert.NotEmpty(t, s.LastError)

	warn := logs.FilterMessage("Mixer reported an error").All()
	require.Len(t, warn, 1)
	assert.Equal(t, "INVALID_PARAM", warn[0].ContextMap()["code"])
}

func TestCounter_PeakOfLatestFrame(t *testing.T) {
	c := NewCounter(zap.NewNop(), 0, 0)
	samples := make([]int16, audio.FrameSize)
	samples[3] = -1200
	samples[4] = 800
	c.OnMixedAudioFrame(mixer.NewAudioFrame(audio.PCMInt16ToLE(samples), 0))
	assert.Equal(t, 1200, c.Summary().AudioPeak)
}

func TestCounter_PeriodicSummary(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	c := NewCounter(zap.New(core), 10*time.Millisecond, 0)

	c.Start()
	c.Start()
	require.Eventually(t, func() bool {
		return logs.FilterMessage("Output summary").Len() >= 2
	}, time.Second, 5*time.Millisecond)
	c.Stop()

	assert.Equal(t, 1, logs.FilterMessage("Final output summary").Len())
	n := logs.FilterMessage("Output summary").Len()
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, n, logs.FilterMessage("Output summary").Len(), "no summaries after Stop")
}

func TestCounter_StopWithoutStart(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	c := NewCounter(zap.New(core), 0, 0)
	c.Start()
	c.Stop()
	assert.Equal(t, 1, logs.FilterMessage("Final output summary").Len())
}

func TestCounter_ErrorsKeepLatestMessage(t *testing.T) {
	c := NewCounter(zap.NewNop(), 0, 0)
	c.OnError(errors.New("first"))
	c.OnError(errors.New("second"))
	assert.Equal(t, "second", c.Summary().LastError)
	assert.Equal(t, uint64(2), c.Summary().Errors)
}

func TestCounter_WarnsWhenOutputStalls(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	c := NewCounter(zap.New(core), 0, 30*time.Millisecond)

	c.Start()
	defer c.Stop()

	require.Eventually(t, func() bool {
		return logs.FilterMessage("No mixed output received").Len() >= 1
	}, time.Second, 5*time.Millisecond)
}

func TestCounter_OutputHoldsOffStallWarning(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	c := NewCounter(zap.New(core), 0, 200*time.Millisecond)

	c.Start()
	for i := range 10 {
		c.OnMixedAudioFrame(mixer.NewAudioFrame(make([]byte, audio.FrameBytes), uint64(i*20)))
		time.Sleep(10 * time.Millisecond)
	}
	c.Stop()

	assert.Zero(t, logs.FilterMessage("No mixed output received").Len())
}
