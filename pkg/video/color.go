package video

import (
	"fmt"
	"strconv"
	"strings"
)

// Color is a 24-bit RGB value laid out as 0xRRGGBB.
type Color uint32

const (
	Black Color = 0x000000
	White Color = 0xFFFFFF
)

// RGB splits c into its components.
func (c Color) RGB() (r, g, b uint8) {
	return uint8(c >> 16), uint8(c >> 8), uint8(c)
}

// YUV converts c to limited-range BT.601 Y'CbCr, the colour space raw I420
// camera frames use.
func (c Color) YUV() (y, u, v uint8) {
	r, g, b := c.RGB()
	ri, gi, bi := int(r), int(g), int(b)

	yy := ((66*ri + 129*gi + 25*bi + 128) >> 8) + 16
	uu := ((-38*ri - 74*gi + 112*bi + 128) >> 8) + 128
	vv := ((112*ri - 94*gi - 18*bi + 128) >> 8) + 128

	return clampByte(yy), clampByte(uu), clampByte(vv)
}

// String renders c as "#RRGGBB".
func (c Color) String() string {
	return fmt.Sprintf("#%06X", uint32(c)&0xFFFFFF)
}

// ParseColor accepts "#RRGGBB", "0xRRGGBB" or bare "RRGGBB".
func ParseColor(s string) (Color, error) {
	s = strings.TrimSpace(s)
	switch {
	case strings.HasPrefix(s, "#"):
		s = s[1:]
	case strings.HasPrefix(s, "0x"), strings.HasPrefix(s, "0X"):
		s = s[2:]
	}
	if len(s) != 6 {
		return 0, fmt.Errorf("invalid color %q: want 6 hex digits", s)
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid color %q: %w", s, err)
	}
	return Color(v), nil
}

// MarshalText implements encoding.TextMarshaler.
func (c Color) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler so colours can be
// written as strings in YAML, JSON and environment variables.
func (c *Color) UnmarshalText(text []byte) error {
	parsed, err := ParseColor(string(text))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

func clampByte(v int) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v)
}
