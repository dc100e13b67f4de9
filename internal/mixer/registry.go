package mixer

import (
	"cmp"
	"fmt"
	"slices"
	"sync"

	"github.com/Raikerian/go-media-mixer/pkg/audio"
	"github.com/Raikerian/go-media-mixer/pkg/video"
)

// source holds the per-stream state: an audio jitter buffer fed by the
// producer and drained once per audio tick, and a single-slot video cache
// overwritten by the producer and read once per video tick.
type source struct {
	id    SourceID
	audio *audio.JitterBuffer

	mu        sync.Mutex // guards the fields below
	hasAudio  bool
	frame     *video.Frame
	frameSeq  uint64
	lastVideo uint64

	// Touched only by the mixing goroutine.
	drawnSeq uint64
}

func (s *source) pushAudio(pcm []byte) int {
	s.mu.Lock()
	s.hasAudio = true
	s.mu.Unlock()
	return s.audio.Push(pcm)
}

func (s *source) audioSeen() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hasAudio
}

// storeVideo replaces the cached frame. Frames older than the cached one
// are rejected so a late duplicate cannot roll the picture back.
func (s *source) storeVideo(f *video.Frame) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.frame != nil && f.Timestamp < s.lastVideo {
		return fmt.Errorf("video timestamp %d older than cached %d", f.Timestamp, s.lastVideo)
	}
	s.frame = f
	s.frameSeq++
	s.lastVideo = f.Timestamp
	return nil
}

// latestVideo returns the cached frame and its sequence number. The frame is
// never mutated after being stored, so it can be read without the lock.
func (s *source) latestVideo() (*video.Frame, uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.frame, s.frameSeq
}

func (s *source) release() {
	s.audio.Reset()
	s.mu.Lock()
	s.frame = nil
	s.hasAudio = false
	s.mu.Unlock()
}

// registry maps source ids to their buffers. Sources are created lazily on
// the first frame and looked up by the mixing goroutine every tick.
type registry struct {
	mu      sync.RWMutex
	sources map[SourceID]*source

	jitterFrames int
	maxQueue     int
}

func newRegistry(jitterFrames, maxQueue int) *registry {
	return &registry{
		sources:      make(map[SourceID]*source),
		jitterFrames: jitterFrames,
		maxQueue:     maxQueue,
	}
}

func (r *registry) getOrCreate(id SourceID) (*source, bool) {
	r.mu.RLock()
	s, ok := r.sources[id]
	r.mu.RUnlock()
	if ok {
		return s, false
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok := r.sources[id]; ok {
		return s, false
	}
	s = &source{
		id:    id,
		audio: audio.NewJitterBuffer(r.jitterFrames, r.maxQueue),
	}
	r.sources[id] = s
	return s, true
}

func (r *registry) get(id SourceID) (*source, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sources[id]
	return s, ok
}

func (r *registry) remove(id SourceID) bool {
	r.mu.Lock()
	s, ok := r.sources[id]
	delete(r.sources, id)
	r.mu.Unlock()
	if ok {
		s.release()
	}
	return ok
}

// reset releases every source.
func (r *registry) reset() int {
	r.mu.Lock()
	old := r.sources
	r.sources = make(map[SourceID]*source)
	r.mu.Unlock()
	for _, s := range old {
		s.release()
	}
	return len(old)
}

func (r *registry) len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sources)
}

// snapshot returns the current sources ordered by id.
func (r *registry) snapshot() []*source {
	r.mu.RLock()
	out := make([]*source, 0, len(r.sources))
	for _, s := range r.sources {
		out = append(out, s)
	}
	r.mu.RUnlock()
	slices.SortFunc(out, func(a, b *source) int {
		return cmp.Compare(a.id, b.id)
	})
	return out
}
