package audio_test

import (
	"math"
	"testing"

	"github.com/Raikerian/go-media-mixer/pkg/audio"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// sineFrame renders one 20 ms frame of a sine wave at the given amplitude
// (1.0 == full scale) starting at sample offset.
func sineFrame(freq, amplitude float64, offset int) []int16 {
	out := make([]int16, audio.FrameSize)
	for i := range out {
		t := float64(offset+i) / audio.SampleRate
		v := amplitude * math.Sin(2*math.Pi*freq*t) * 32767
		out[i] = int16(math.Round(v))
	}
	return out
}

func TestAccumulator_SilenceByDefault(t *testing.T) {
	var acc audio.Accumulator
	out := acc.Bytes()

	require.Len(t, out, audio.FrameBytes)
	assert.Equal(t, make([]byte, audio.FrameBytes), out)
	assert.Equal(t, 0, acc.Sources())
}

func TestAccumulator_SumsWithoutClipping(t *testing.T) {
	var acc audio.Accumulator
	a := make([]int16, audio.FrameSize)
	b := make([]int16, audio.FrameSize)
	for i := range a {
		a[i] = 1000
		b[i] = -250
	}

	require.NoError(t, acc.AddSamples(a))
	require.NoError(t, acc.Add(audio.PCMInt16ToLE(b)))

	for _, s := range acc.Samples() {
		assert.Equal(t, int16(750), s)
	}
	assert.Equal(t, 2, acc.Sources())
}

func TestAccumulator_Saturation(t *testing.T) {
	for _, n := range []int{2, 3, 8, 32} {
		var acc audio.Accumulator
		for src := 0; src < n; src++ {
			// Same phase for every source is the worst case for overflow.
			require.NoError(t, acc.AddSamples(sineFrame(440, 1.0, 0)))
		}

		samples := acc.Samples()
		var sawPositiveClip, sawNegativeClip bool
		for i, s := range samples {
			ref := sineFrame(440, 1.0, 0)[i]
			// Saturation keeps the sign of the reference signal: no wraparound.
			if ref > 0 {
				assert.GreaterOrEqual(t, s, int16(0), "sample %d wrapped for n=%d", i, n)
			}
			if ref < 0 {
				assert.LessOrEqual(t, s, int16(0), "sample %d wrapped for n=%d", i, n)
			}
			sawPositiveClip = sawPositiveClip || s == math.MaxInt16
			sawNegativeClip = sawNegativeClip || s == math.MinInt16
		}
		assert.True(t, sawPositiveClip, "n=%d should clip high", n)
		assert.True(t, sawNegativeClip, "n=%d should clip low", n)
	}
}

func TestAccumulator_RejectsMalformedFrames(t *testing.T) {
	var acc audio.Accumulator

	assert.Error(t, acc.Add(nil))
	assert.Error(t, acc.Add(make([]byte, audio.FrameBytes-2)))
	assert.Error(t, acc.AddSamples(make([]int16, 10)))
	assert.Equal(t, 0, acc.Sources())
}

func TestAccumulator_Reset(t *testing.T) {
	var acc audio.Accumulator
	require.NoError(t, acc.AddSamples(sineFrame(1000, 0.5, 0)))
	acc.Reset()

	assert.Equal(t, 0, acc.Sources())
	assert.Equal(t, make([]int16, audio.FrameSize), acc.Samples())
}

func TestMixFrames(t *testing.T) {
	a := audio.PCMInt16ToLE(sineFrame(440, 0.25, 0))
	b := audio.PCMInt16ToLE(sineFrame(880, 0.25, 0))

	mixed, err := audio.MixFrames(a, b)
	require.NoError(t, err)
	require.Len(t, mixed, audio.FrameBytes)

	sa, sb, sm := audio.LEToPCMInt16(a), audio.LEToPCMInt16(b), audio.LEToPCMInt16(mixed)
	for i := range sm {
		assert.Equal(t, sa[i]+sb[i], sm[i])
	}

	_, err = audio.MixFrames(a, []byte{1, 2, 3})
	assert.Error(t, err)
}

func TestPCMRoundTrip(t *testing.T) {
	in := []int16{0, 1, -1, math.MaxInt16, math.MinInt16, 12345}
	assert.Equal(t, in, audio.LEToPCMInt16(audio.PCMInt16ToLE(in)))
	assert.Equal(t, []byte{0x39, 0x30}, audio.PCMInt16ToLE([]int16{12345}))
}
