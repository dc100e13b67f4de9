package audio

import "time"

// Format constants shared by the jitter buffer and the mixing stage. Every
// frame that enters or leaves the mixer uses this layout; nothing is
// resampled.
const (
	SampleRate    = 48_000 // Hz
	Channels      = 1      // mono
	BitsPerSample = 16
	FrameSize     = 960 // samples (20 ms)
	FrameDuration = 20 * time.Millisecond

	// FrameBytes is the wire size of one frame (1920).
	FrameBytes = FrameSize * Channels * BitsPerSample / 8
)

// FramesPerSecond is the audio tick rate implied by FrameDuration.
const FramesPerSecond = int(time.Second / FrameDuration)
