package audio

import "sync"

// Jitter buffer defaults: a 20 ms cadence tolerates ±5 frames before the
// mixer starts trimming, and never holds more than 20 frames (400 ms).
const (
	DefaultJitterFrames   = 5
	DefaultMaxQueueFrames = 20
)

// JitterStats counts what a JitterBuffer did with the frames it was given.
type JitterStats struct {
	Pushed          uint64
	Popped          uint64
	Underruns       uint64 // Pop found the queue empty
	DroppedJitter   uint64 // trimmed at Pop because the queue exceeded the tolerance
	DroppedOverflow uint64 // evicted at Push because the queue was full
}

// JitterBuffer is a bounded FIFO of 20 ms frames for one source.
//
// Producers Push from any goroutine; the mixing goroutine Pops once per tick.
// The queue never grows past its capacity: a full queue evicts its oldest
// frame on Push, and Pop trims the head down to the jitter tolerance before
// returning a frame, so latency stays bounded when a producer runs fast.
type JitterBuffer struct {
	mu        sync.Mutex
	ring      [][]byte
	head      int
	n         int
	tolerance int
	stats     JitterStats
}

// NewJitterBuffer creates a buffer that keeps at most tolerance frames
// queued across ticks and at most capacity frames between ticks.
// Non-positive values fall back to the package defaults; capacity is raised
// to tolerance+1 if needed.
func NewJitterBuffer(tolerance, capacity int) *JitterBuffer {
	if tolerance <= 0 {
		tolerance = DefaultJitterFrames
	}
	if capacity <= 0 {
		capacity = DefaultMaxQueueFrames
	}
	if capacity <= tolerance {
		capacity = tolerance + 1
	}
	return &JitterBuffer{
		ring:      make([][]byte, capacity),
		tolerance: tolerance,
	}
}

// Push appends a frame. It returns the number of frames evicted to make
// room (0 or 1).
func (j *JitterBuffer) Push(frame []byte) int {
	j.mu.Lock()
	defer j.mu.Unlock()

	dropped := 0
	if j.n == len(j.ring) {
		j.dropHeadLocked()
		j.stats.DroppedOverflow++
		dropped = 1
	}
	j.ring[(j.head+j.n)%len(j.ring)] = frame
	j.n++
	j.stats.Pushed++
	return dropped
}

// Pop removes and returns the next frame for this tick. Frames beyond the
// jitter tolerance are discarded oldest-first; the count is returned
// as dropped. ok is false when the queue was empty, in which case the caller
// substitutes silence.
func (j *JitterBuffer) Pop() (frame []byte, dropped int, ok bool) {
	j.mu.Lock()
	defer j.mu.Unlock()

	for j.n > j.tolerance {
		j.dropHeadLocked()
		dropped++
	}
	j.stats.DroppedJitter += uint64(dropped)

	if j.n == 0 {
		j.stats.Underruns++
		return nil, dropped, false
	}
	frame = j.ring[j.head]
	j.ring[j.head] = nil
	j.head = (j.head + 1) % len(j.ring)
	j.n--
	j.stats.Popped++
	return frame, dropped, true
}

// Len returns the number of queued frames.
func (j *JitterBuffer) Len() int {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.n
}

// Tolerance returns the number of frames kept across ticks.
func (j *JitterBuffer) Tolerance() int {
	return j.tolerance
}

// Capacity returns the maximum number of queued frames.
func (j *JitterBuffer) Capacity() int {
	return len(j.ring)
}

// Stats returns a copy of the buffer counters.
func (j *JitterBuffer) Stats() JitterStats {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.stats
}

// Reset discards all queued frames. Counters are kept.
func (j *JitterBuffer) Reset() {
	j.mu.Lock()
	defer j.mu.Unlock()
	for j.n > 0 {
		j.dropHeadLocked()
	}
	j.head = 0
}

func (j *JitterBuffer) dropHeadLocked() {
	j.ring[j.head] = nil
	j.head = (j.head + 1) % len(j.ring)
	j.n--
}
