package mixer

import (
	"time"

	"github.com/Raikerian/go-media-mixer/pkg/audio"
)

type stage int

const (
	stageAudio stage = iota
	stageVideo
)

func (s stage) String() string {
	if s == stageAudio {
		return "audio"
	}
	return "video"
}

// maxCatchUp bounds how many late ticks of one stage are run back to back
// before the schedule jumps forward to the present.
const maxCatchUp = 10

// schedule derives every deadline from one origin so that rounding never
// accumulates: audio tick n is due at origin+n*20ms and video tick n at
// origin+n/fps seconds.
type schedule struct {
	origin time.Time
	fps    int
	audio  bool
	video  bool

	audioTick uint64
	videoTick uint64
}

func newSchedule(origin time.Time, fps int, audioOn, videoOn bool) *schedule {
	return &schedule{origin: origin, fps: fps, audio: audioOn, video: videoOn}
}

func (s *schedule) audioAt(tick uint64) time.Time {
	return s.origin.Add(time.Duration(tick) * audio.FrameDuration)
}

func (s *schedule) videoAt(tick uint64) time.Time {
	return s.origin.Add(time.Duration(tick) * time.Second / time.Duration(s.fps))
}

// next returns the stage whose tick is due first. Audio wins ties so a
// period's audio is delivered before its video.
func (s *schedule) next() (stage, time.Time) {
	switch {
	case s.audio && s.video:
		a, v := s.audioAt(s.audioTick), s.videoAt(s.videoTick)
		if v.Before(a) {
			return stageVideo, v
		}
		return stageAudio, a
	case s.audio:
		return stageAudio, s.audioAt(s.audioTick)
	default:
		return stageVideo, s.videoAt(s.videoTick)
	}
}

// advance consumes and returns the next tick index of st.
func (s *schedule) advance(st stage) uint64 {
	if st == stageAudio {
		t := s.audioTick
		s.audioTick++
		return t
	}
	t := s.videoTick
	s.videoTick++
	return t
}

// resync skips ticks lagging more than maxCatchUp periods behind now and
// reports how many were skipped per stage.
func (s *schedule) resync(now time.Time) (audioSkipped, videoSkipped uint64) {
	elapsed := now.Sub(s.origin)
	if elapsed <= 0 {
		return 0, 0
	}
	if s.audio && now.Sub(s.audioAt(s.audioTick)) > maxCatchUp*audio.FrameDuration {
		target := uint64(elapsed / audio.FrameDuration)
		audioSkipped = target - s.audioTick
		s.audioTick = target
	}
	if s.video {
		period := time.Second / time.Duration(s.fps)
		if now.Sub(s.videoAt(s.videoTick)) > maxCatchUp*period {
			target := uint64(elapsed * time.Duration(s.fps) / time.Second)
			videoSkipped = target - s.videoTick
			s.videoTick = target
		}
	}
	return audioSkipped, videoSkipped
}
