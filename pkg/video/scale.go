package video

import (
	"fmt"
	"math"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"
)

// FillMode decides how a source picture is mapped onto a destination
// rectangle of a different size.
type FillMode int

const (
	// FillFit stretches the source to exactly the destination size. The
	// aspect ratio is not preserved.
	FillFit FillMode = iota
	// FillFull scales uniformly until the destination is covered and
	// centre-crops whatever overflows on the longer axis.
	FillFull
)

func (m FillMode) String() string {
	switch m {
	case FillFit:
		return "fit"
	case FillFull:
		return "full"
	default:
		return fmt.Sprintf("FillMode(%d)", int(m))
	}
}

// Valid reports whether m is a known mode.
func (m FillMode) Valid() bool {
	return m == FillFit || m == FillFull
}

// ParseFillMode parses "fit" or "full" (case-insensitive).
func ParseFillMode(s string) (FillMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "fit":
		return FillFit, nil
	case "full":
		return FillFull, nil
	default:
		return 0, fmt.Errorf("unknown fill mode %q", s)
	}
}

// MarshalText implements encoding.TextMarshaler.
func (m FillMode) MarshalText() ([]byte, error) {
	if !m.Valid() {
		return nil, fmt.Errorf("unknown fill mode %d", int(m))
	}
	return []byte(m.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (m *FillMode) UnmarshalText(text []byte) error {
	parsed, err := ParseFillMode(string(text))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// ScaleMap is a nearest-neighbour sampling table for one (source size,
// destination size, mode) combination. X[i] is the source luma column drawn
// at destination column i; Y likewise for rows. ChromaX and ChromaY hold the
// equivalent chroma tables for a destination that starts on an even [0] or
// odd [1] luma coordinate.
//
// A ScaleMap is immutable once built and may be shared between goroutines.
type ScaleMap struct {
	SrcW, SrcH int
	DstW, DstH int
	Mode       FillMode

	X, Y             []int
	ChromaX, ChromaY [2][]int
}

// NewScaleMap builds the sampling table. Source and destination sizes must be
// positive.
func NewScaleMap(srcW, srcH, dstW, dstH int, mode FillMode) *ScaleMap {
	m := &ScaleMap{SrcW: srcW, SrcH: srcH, DstW: dstW, DstH: dstH, Mode: mode}

	switch mode {
	case FillFull:
		scale := math.Max(float64(dstW)/float64(srcW), float64(dstH)/float64(srcH))
		cropW := float64(dstW) / scale
		cropH := float64(dstH) / scale
		m.X = axisMap(dstW, srcW, (float64(srcW)-cropW)/2, 1/scale)
		m.Y = axisMap(dstH, srcH, (float64(srcH)-cropH)/2, 1/scale)
	default:
		m.X = axisMap(dstW, srcW, 0, float64(srcW)/float64(dstW))
		m.Y = axisMap(dstH, srcH, 0, float64(srcH)/float64(dstH))
	}

	for parity := 0; parity < 2; parity++ {
		m.ChromaX[parity] = chromaMap(m.X, parity)
		m.ChromaY[parity] = chromaMap(m.Y, parity)
	}
	return m
}

// axisMap samples the centre of each destination pixel.
func axisMap(dst, src int, offset, step float64) []int {
	out := make([]int, dst)
	for i := range out {
		s := int(math.Floor(offset + (float64(i)+0.5)*step))
		if s < 0 {
			s = 0
		}
		if s >= src {
			s = src - 1
		}
		out[i] = s
	}
	return out
}

// chromaMap derives chroma sampling for a destination span whose first luma
// coordinate has the given parity.
func chromaMap(luma []int, parity int) []int {
	n := (parity + len(luma) + 1) / 2
	out := make([]int, n)
	for i := range out {
		l := 2*i - parity
		if l < 0 {
			l = 0
		}
		if l >= len(luma) {
			l = len(luma) - 1
		}
		out[i] = luma[l] / 2
	}
	return out
}

type scaleKey struct {
	srcW, srcH, dstW, dstH int
	mode                   FillMode
}

// DefaultScaleCacheSize bounds the number of distinct sampling tables kept.
const DefaultScaleCacheSize = 64

// ScaleCache memoises ScaleMaps. Layouts change rarely while frames arrive
// every tick, so the same few tables are looked up over and over.
type ScaleCache struct {
	*lru.Cache[scaleKey, *ScaleMap]
}

// NewScaleCache creates a cache holding at most size tables.
func NewScaleCache(size int) (*ScaleCache, error) {
	if size <= 0 {
		size = DefaultScaleCacheSize
	}
	c, err := lru.New[scaleKey, *ScaleMap](size)
	if err != nil {
		return nil, err
	}
	return &ScaleCache{Cache: c}, nil
}

// Map returns the table for the given geometry, building it on a miss.
func (sc *ScaleCache) Map(srcW, srcH, dstW, dstH int, mode FillMode) *ScaleMap {
	key := scaleKey{srcW, srcH, dstW, dstH, mode}
	if m, ok := sc.Cache.Get(key); ok {
		return m
	}
	m := NewScaleMap(srcW, srcH, dstW, dstH, mode)
	sc.Cache.Add(key, m)
	return m
}
