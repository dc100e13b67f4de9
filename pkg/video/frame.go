// Package video provides the raw planar YUV 4:2:0 (I420) frame type used by
// the compositor, together with colour conversion, FIT/FULL scaling maps and
// clipped rectangle fill/draw primitives.
package video

import (
	"errors"
	"fmt"
)

// Limits applied to every frame the compositor accepts.
const (
	MaxDimension = 8192
)

var (
	ErrEmptyFrame     = errors.New("video frame has no data")
	ErrBadDimensions  = errors.New("video frame dimensions out of range")
	ErrBadFrameLength = errors.New("video frame length does not match dimensions")
)

// Frame is one raw I420 picture: a full-resolution Y plane followed by U and
// V planes subsampled by two in both directions (odd sizes round up).
type Frame struct {
	Width     int
	Height    int
	Timestamp uint64 // capture time in milliseconds
	Data      []byte
}

// ChromaSize returns the chroma plane dimensions for a luma size.
func ChromaSize(width, height int) (int, int) {
	return (width + 1) / 2, (height + 1) / 2
}

// FrameLength returns the byte length of an I420 frame of the given size.
func FrameLength(width, height int) int {
	cw, ch := ChromaSize(width, height)
	return width*height + 2*cw*ch
}

// NewFrame allocates a zeroed frame. Callers normally Fill it afterwards.
func NewFrame(width, height int) *Frame {
	return &Frame{
		Width:  width,
		Height: height,
		Data:   make([]byte, FrameLength(width, height)),
	}
}

// NewFrameFilled allocates a frame painted with c.
func NewFrameFilled(width, height int, c Color) *Frame {
	f := NewFrame(width, height)
	f.Fill(c)
	return f
}

// Validate checks dimensions and buffer length.
func (f *Frame) Validate() error {
	if f == nil || len(f.Data) == 0 {
		return ErrEmptyFrame
	}
	if f.Width <= 0 || f.Height <= 0 || f.Width > MaxDimension || f.Height > MaxDimension {
		return fmt.Errorf("%w: %dx%d", ErrBadDimensions, f.Width, f.Height)
	}
	if want := FrameLength(f.Width, f.Height); len(f.Data) != want {
		return fmt.Errorf("%w: got %d bytes, want %d for %dx%d",
			ErrBadFrameLength, len(f.Data), want, f.Width, f.Height)
	}
	return nil
}

// Y returns the luma plane (stride == Width).
func (f *Frame) Y() []byte {
	return f.Data[:f.Width*f.Height]
}

// U returns the Cb plane (stride == (Width+1)/2).
func (f *Frame) U() []byte {
	cw, ch := ChromaSize(f.Width, f.Height)
	off := f.Width * f.Height
	return f.Data[off : off+cw*ch]
}

// V returns the Cr plane (stride == (Width+1)/2).
func (f *Frame) V() []byte {
	cw, ch := ChromaSize(f.Width, f.Height)
	off := f.Width*f.Height + cw*ch
	return f.Data[off : off+cw*ch]
}

// Clone returns a deep copy of f.
func (f *Frame) Clone() *Frame {
	data := make([]byte, len(f.Data))
	copy(data, f.Data)
	return &Frame{Width: f.Width, Height: f.Height, Timestamp: f.Timestamp, Data: data}
}

// LumaAt returns the Y sample at (x, y). It is intended for tests and diagnostics.
func (f *Frame) LumaAt(x, y int) byte {
	return f.Data[y*f.Width+x]
}

// ChromaAt returns the U and V samples covering luma position (x, y).
func (f *Frame) ChromaAt(x, y int) (byte, byte) {
	cw, _ := ChromaSize(f.Width, f.Height)
	i := (y/2)*cw + x/2
	return f.U()[i], f.V()[i]
}
