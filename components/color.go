package components

import "math"

// Color is a linear RGB colour with channels nominally in [0, 1]. Channels
// are not clamped; RGBA8 clamps when converting for display.
type Color struct {
	R, G, B float64
}

// White is the default actor colour.
var White = Color{R: 1, G: 1, B: 1}

// RGB builds a Color from 0-255 channel values.
func RGB(r, g, b float64) Color {
	return Color{R: r / 255, G: g / 255, B: b / 255}
}

// ColorFromSize maps an actor size to its signature colour. Small actors are
// warm, large actors shift to blue. Green is intentionally unclamped.
func ColorFromSize(size float64) Color {
	blue := clamp(-100+80*size, 0, 255)
	red := math.Max(clamp(100+5*size, 0, 255)-blue, 0)
	green := 80 + 5*size - blue
	return RGB(red, green, blue)
}

// RGBA8 converts to 8-bit channels, clamping out-of-range values.
func (c Color) RGBA8(alpha float64) (r, g, b, a uint8) {
	return to8(c.R), to8(c.G), to8(c.B), to8(alpha)
}

// Lerp interpolates between c and o by t.
func (c Color) Lerp(o Color, t float64) Color {
	return Color{
		R: c.R + (o.R-c.R)*t,
		G: c.G + (o.G-c.G)*t,
		B: c.B + (o.B-c.B)*t,
	}
}

func to8(v float64) uint8 {
	return uint8(math.Round(clamp(v, 0, 1) * 255))
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
