package scene

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrInvalidColor is returned for colour strings that are not 6-digit hex.
var ErrInvalidColor = errors.New("invalid color")

// Color is a linear RGB colour with components in [0, 1].
type Color [3]float32

// String returns the colour as "#rrggbb".
func (c Color) String() string {
	return fmt.Sprintf("#%02x%02x%02x", toByte(c[0]), toByte(c[1]), toByte(c[2]))
}

// ColorFromHex converts a packed 0xRRGGBB value.
func ColorFromHex(v uint32) Color {
	return Color{
		float32((v>>16)&0xff) / 255,
		float32((v>>8)&0xff) / 255,
		float32(v&0xff) / 255,
	}
}

// ParseHexColor parses "#rrggbb", "0xrrggbb" or "rrggbb".
func ParseHexColor(s string) (Color, error) {
	h := strings.TrimSpace(s)
	h = strings.TrimPrefix(h, "#")
	h = strings.TrimPrefix(strings.TrimPrefix(h, "0x"), "0X")
	if len(h) != 6 {
		return Color{}, fmt.Errorf("%w: %q", ErrInvalidColor, s)
	}
	v, err := strconv.ParseUint(h, 16, 32)
	if err != nil {
		return Color{}, fmt.Errorf("%w: %q", ErrInvalidColor, s)
	}
	return ColorFromHex(uint32(v)), nil
}

func toByte(f float32) uint8 {
	if f <= 0 {
		return 0
	}
	if f >= 1 {
		return 255
	}
	return uint8(f*255 + 0.5)
}
