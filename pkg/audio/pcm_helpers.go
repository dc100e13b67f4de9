package audio

import (
	"encoding/binary"
	"fmt"
)

// PCMInt16ToLE converts int16 samples to raw little-endian bytes.
func PCMInt16ToLE(samples []int16) []byte {
	out := make([]byte, len(samples)*2)
	PutPCMInt16LE(out, samples)
	return out
}

// PutPCMInt16LE writes samples into dst, which must hold len(samples)*2 bytes.
func PutPCMInt16LE(dst []byte, samples []int16) {
	for i, s := range samples {
		binary.LittleEndian.PutUint16(dst[i*2:], uint16(s))
	}
}

// LEToPCMInt16 converts raw little-endian bytes back to int16 samples.
// A trailing odd byte is ignored.
func LEToPCMInt16(b []byte) []int16 {
	out := make([]int16, len(b)/2)
	for i := range out {
		out[i] = int16(binary.LittleEndian.Uint16(b[i*2:]))
	}
	return out
}

// ValidateFrame checks that pcm is exactly one 20 ms mono 16-bit frame.
func ValidateFrame(pcm []byte) error {
	if len(pcm) == 0 {
		return fmt.Errorf("pcm frame is empty")
	}
	if len(pcm) != FrameBytes {
		return fmt.Errorf("invalid frame length %d, want %d", len(pcm), FrameBytes)
	}
	return nil
}
