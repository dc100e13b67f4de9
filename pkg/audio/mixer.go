package audio

import "fmt"

// Accumulator sums 20 ms mono frames from many sources into one frame.
//
// Samples are accumulated in int32 so that intermediate sums never wrap; the
// result is saturated to the int16 range only when the mix is read out. A
// zero Accumulator is ready to use and represents one frame of silence.
//
// Accumulator is not safe for concurrent use; the mixing stage owns one and
// reuses it every tick.
type Accumulator struct {
	buffer  [FrameSize]int32
	sources int
}

// Reset returns the accumulator to silence.
func (a *Accumulator) Reset() {
	a.buffer = [FrameSize]int32{}
	a.sources = 0
}

// Add mixes one little-endian PCM frame into the accumulator.
func (a *Accumulator) Add(pcm []byte) error {
	if err := ValidateFrame(pcm); err != nil {
		return err
	}
	for i := 0; i < FrameSize; i++ {
		a.buffer[i] += int32(int16(uint16(pcm[2*i]) | uint16(pcm[2*i+1])<<8))
	}
	a.sources++
	return nil
}

// AddSamples mixes one frame of decoded samples into the accumulator.
func (a *Accumulator) AddSamples(pcm []int16) error {
	if len(pcm) != FrameSize {
		return fmt.Errorf("pcm length must be %d, got %d", FrameSize, len(pcm))
	}
	for i, v := range pcm {
		a.buffer[i] += int32(v)
	}
	a.sources++
	return nil
}

// Sources reports how many frames were added since the last Reset.
func (a *Accumulator) Sources() int {
	return a.sources
}

// MixInto writes the saturated mix as little-endian PCM into dst, which must
// hold at least FrameBytes bytes.
func (a *Accumulator) MixInto(dst []byte) {
	for i, v := range a.buffer {
		s := uint16(saturateInt16(v))
		dst[2*i] = byte(s)
		dst[2*i+1] = byte(s >> 8)
	}
}

// Bytes returns a freshly allocated little-endian copy of the saturated mix.
func (a *Accumulator) Bytes() []byte {
	out := make([]byte, FrameBytes)
	a.MixInto(out)
	return out
}

// Samples returns the saturated mix as int16 samples.
func (a *Accumulator) Samples() []int16 {
	out := make([]int16, FrameSize)
	for i, v := range a.buffer {
		out[i] = saturateInt16(v)
	}
	return out
}

// MixFrames sums the given frames with saturation and returns one frame.
// Passing no frames yields silence.
func MixFrames(frames ...[]byte) ([]byte, error) {
	var acc Accumulator
	for i, f := range frames {
		if err := acc.Add(f); err != nil {
			return nil, fmt.Errorf("frame %d: %w", i, err)
		}
	}
	return acc.Bytes(), nil
}

// saturateInt16 clamps v to the valid int16 range.
func saturateInt16(v int32) int16 {
	if v > 32767 {
		return 32767
	}
	if v < -32768 {
		return -32768
	}
	return int16(v)
}
