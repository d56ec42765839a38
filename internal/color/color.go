// Package color implements the small RGB color model used to derive theme palettes.
package color

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
)

// ErrInvalidHex is returned by ParseHex for input that is not a 3- or 6-digit hex color.
var ErrInvalidHex = errors.New("invalid hex color")

// RGB is a 24-bit color.
type RGB struct {
	R uint8 `json:"r"`
	G uint8 `json:"g"`
	B uint8 `json:"b"`
}

// Hex encodes the color as a lower-case #rrggbb string.
func (c RGB) Hex() string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// Triplet returns the channels joined as "r, g, b".
func (c RGB) Triplet() string {
	return fmt.Sprintf("%d, %d, %d", c.R, c.G, c.B)
}

// Luminance returns the relative luminance of the color.
func (c RGB) Luminance() float64 {
	return RelativeLuminance(c.R, c.G, c.B)
}

// ParseHex parses a 3- or 6-digit hex color, with or without a leading '#'.
func ParseHex(hex string) (RGB, error) {
	h := expandShorthand(strings.TrimPrefix(strings.TrimSpace(hex), "#"))
	if len(h) != 6 {
		return RGB{}, fmt.Errorf("%w: %q", ErrInvalidHex, hex)
	}

	v, err := strconv.ParseUint(h, 16, 32)
	if err != nil {
		return RGB{}, fmt.Errorf("%w: %q", ErrInvalidHex, hex)
	}

	return RGB{
		R: uint8(v >> 16),
		G: uint8(v >> 8),
		B: uint8(v),
	}, nil
}

// HexToRGB is the lenient form of ParseHex. Malformed input yields black and never panics;
// callers that need to reject bad input use ParseHex.
func HexToRGB(hex string) RGB {
	c, _ := ParseHex(hex)
	return c
}

func expandShorthand(h string) string {
	if len(h) != 3 {
		return h
	}
	var b strings.Builder
	b.Grow(6)
	for i := 0; i < len(h); i++ {
		b.WriteByte(h[i])
		b.WriteByte(h[i])
	}
	return b.String()
}

// RelativeLuminance computes the gamma-corrected luminance of an sRGB color, in [0,1].
func RelativeLuminance(r, g, b uint8) float64 {
	return 0.2126*linearize(r) + 0.7152*linearize(g) + 0.0722*linearize(b)
}

func linearize(channel uint8) float64 {
	v := float64(channel) / 255
	if v <= 0.03928 {
		return v / 12.92
	}
	return math.Pow((v+0.055)/1.055, 2.4)
}

// AdjustLightness moves every channel toward white (percent > 0) or black (percent < 0).
// A percent of 0.35 closes 35% of the gap to 255; -0.12 removes 12% of each channel.
func AdjustLightness(hex string, percent float64) string {
	c := HexToRGB(hex)
	return RGB{
		R: adjustChannel(c.R, percent),
		G: adjustChannel(c.G, percent),
		B: adjustChannel(c.B, percent),
	}.Hex()
}

func adjustChannel(channel uint8, percent float64) uint8 {
	v := float64(channel)
	switch {
	case percent > 0:
		v += (255 - v) * percent
	case percent < 0:
		v += v * percent
	}

	// Round half up, then clamp.
	v = math.Floor(v + 0.5)
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v)
}

// FromHSL converts hue (degrees), saturation and lightness (percent) to RGB.
func FromHSL(hue, saturation, lightness float64) RGB {
	c := colorful.Hsl(math.Mod(hue, 360), saturation/100, lightness/100).Clamped()
	r, g, b := c.RGB255()
	return RGB{R: r, G: g, B: b}
}
