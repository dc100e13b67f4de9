package mixer

import "sync/atomic"

// Stats is a point-in-time snapshot of the mixer's counters.
type Stats struct {
	State         string `json:"state"`
	LayoutState   string `json:"layout_state"`
	Sources       int    `json:"sources"`
	ActiveRegions int    `json:"active_regions"`

	AudioTicks uint64 `json:"audio_ticks"`
	VideoTicks uint64 `json:"video_ticks"`

	AudioFramesIn   uint64 `json:"audio_frames_in"`
	VideoFramesIn   uint64 `json:"video_frames_in"`
	AudioRejected   uint64 `json:"audio_rejected"`
	VideoRejected   uint64 `json:"video_rejected"`
	JitterDropped   uint64 `json:"jitter_dropped"`
	OverflowDropped uint64 `json:"overflow_dropped"`

	SilenceSubstituted uint64 `json:"silence_substituted"`
	VideoFramesHeld    uint64 `json:"video_frames_held"`
	TicksSkipped       uint64 `json:"ticks_skipped"`

	CallbackPanics uint64 `json:"callback_panics"`
	ErrorsDropped  uint64 `json:"errors_dropped"`
}

type counters struct {
	audioTicks, videoTicks         atomic.Uint64
	audioIn, videoIn               atomic.Uint64
	audioRejected, videoRejected   atomic.Uint64
	jitterDropped, overflowDropped atomic.Uint64
	silence, held, skipped         atomic.Uint64
	callbackPanics, errorsDropped  atomic.Uint64
}

func (c *counters) fill(s *Stats) {
	s.AudioTicks = c.audioTicks.Load()
	s.VideoTicks = c.videoTicks.Load()
	s.AudioFramesIn = c.audioIn.Load()
	s.VideoFramesIn = c.videoIn.Load()
	s.AudioRejected = c.audioRejected.Load()
	s.VideoRejected = c.videoRejected.Load()
	s.JitterDropped = c.jitterDropped.Load()
	s.OverflowDropped = c.overflowDropped.Load()
	s.SilenceSubstituted = c.silence.Load()
	s.VideoFramesHeld = c.held.Load()
	s.TicksSkipped = c.skipped.Load()
	s.CallbackPanics = c.callbackPanics.Load()
	s.ErrorsDropped = c.errorsDropped.Load()
}
