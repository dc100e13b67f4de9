// Package synth produces synthetic raw audio and video so the mixer can be
// exercised without real capture devices.
package synth

import (
	"math"

	"github.com/Raikerian/go-media-mixer/pkg/audio"
	"github.com/Raikerian/go-media-mixer/pkg/video"
)

// Tone generates a continuous sine wave in 20 ms frames. The phase carries
// over between frames so consecutive frames join without a click.
type Tone struct {
	step      float64
	amplitude float64
	phase     float64
	samples   [audio.FrameSize]int16
}

// NewTone creates a tone at freqHz. Amplitude is a fraction of full scale
// and is clamped to [0, 1].
func NewTone(freqHz, amplitude float64) *Tone {
	return &Tone{
		step:      2 * math.Pi * freqHz / audio.SampleRate,
		amplitude: math.Max(0, math.Min(1, amplitude)),
	}
}

// Next returns the following frame as little-endian PCM.
func (t *Tone) Next() []byte {
	for i := range t.samples {
		t.samples[i] = int16(math.Round(t.amplitude * math.MaxInt16 * math.Sin(t.phase)))
		t.phase += t.step
	}
	t.phase = math.Mod(t.phase, 2*math.Pi)
	return audio.PCMInt16ToLE(t.samples[:])
}

// Pattern renders a solid background with a white vertical bar that sweeps
// across the frame once per second of output.
type Pattern struct {
	width, height int
	fps           int
	background    video.Color
	barWidth      int
	n             uint64
}

// NewPattern creates a pattern generator for frames of the given size.
func NewPattern(width, height, fps int, background video.Color) *Pattern {
	return &Pattern{
		width:      width,
		height:     height,
		fps:        max(fps, 1),
		background: background,
		barWidth:   max(width/16, 2),
	}
}

// BarX returns the bar's left edge for frame n.
func (p *Pattern) BarX(n uint64) int {
	span := p.width - p.barWidth
	if span <= 0 {
		return 0
	}
	return int(n%uint64(p.fps)) * span / max(p.fps-1, 1)
}

// Next renders the following frame, stamped with its position on the
// source's own timeline.
func (p *Pattern) Next() *video.Frame {
	f := video.NewFrameFilled(p.width, p.height, p.background)
	f.FillRect(video.Rect{X: p.BarX(p.n), Y: 0, W: p.barWidth, H: p.height}, video.White)
	f.Timestamp = p.n * 1000 / uint64(p.fps)
	p.n++
	return f
}
