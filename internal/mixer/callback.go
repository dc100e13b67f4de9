package mixer

import "github.com/Raikerian/go-media-mixer/pkg/video"

// Callback receives the mixer's output. All methods are invoked serially on
// the mixing goroutine; implementations must return quickly. Start, Stop
// and Close called from a callback fail with CodeWrongState.
//
// Output frames are freshly allocated each tick and may be retained.
type Callback interface {
	OnMixedAudioFrame(frame *AudioFrame)
	OnMixedVideoFrame(frame *video.Frame)
	OnError(err error)
}

// CallbackFuncs adapts plain functions to Callback. Nil fields are skipped.
type CallbackFuncs struct {
	Audio func(frame *AudioFrame)
	Video func(frame *video.Frame)
	Error func(err error)
}

func (c CallbackFuncs) OnMixedAudioFrame(frame *AudioFrame) {
	if c.Audio != nil {
		c.Audio(frame)
	}
}

func (c CallbackFuncs) OnMixedVideoFrame(frame *video.Frame) {
	if c.Video != nil {
		c.Video(frame)
	}
}

func (c CallbackFuncs) OnError(err error) {
	if c.Error != nil {
		c.Error(err)
	}
}
