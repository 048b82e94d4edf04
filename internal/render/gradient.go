package render

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// RGB is an 8-bit-per-channel color.
type RGB struct {
	R, G, B uint8
}

// Hex formats the color as "#rrggbb".
func (c RGB) Hex() string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// ParseHexColor parses "#rgb" or "#rrggbb", with or without the hash.
func ParseHexColor(s string) (RGB, error) {
	h := strings.TrimPrefix(strings.TrimSpace(s), "#")
	switch len(h) {
	case 3:
		h = string([]byte{h[0], h[0], h[1], h[1], h[2], h[2]})
	case 6:
	default:
		return RGB{}, fmt.Errorf("render: invalid hex color %q", s)
	}
	v, err := strconv.ParseUint(h, 16, 32)
	if err != nil {
		return RGB{}, fmt.Errorf("render: invalid hex color %q", s)
	}
	return RGB{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v)}, nil
}

// Gradient maps a confidence in [0, 1] onto a color between a low and a
// high endpoint by linear RGB interpolation.
type Gradient struct {
	Low  RGB
	High RGB
}

// At returns the interpolated color for confidence p. Values outside
// [0, 1] are clamped; p = 0 and p = 1 return the exact endpoints.
func (g Gradient) At(p float64) RGB {
	if p <= 0 || math.IsNaN(p) {
		return g.Low
	}
	if p >= 1 {
		return g.High
	}
	lerp := func(a, b uint8) uint8 {
		return uint8(math.Round(float64(a) + (float64(b)-float64(a))*p))
	}
	return RGB{
		R: lerp(g.Low.R, g.High.R),
		G: lerp(g.Low.G, g.High.G),
		B: lerp(g.Low.B, g.High.B),
	}
}

// LogProbConfidence maps a segment's average log probability onto [0, 1]
// for gradient coloring. exp(avg_logprob) is the geometric mean token
// probability, already in the right range.
func LogProbConfidence(avgLogProb float64) float64 {
	p := math.Exp(avgLogProb)
	if p > 1 {
		return 1
	}
	if p < 0 {
		return 0
	}
	return p
}
