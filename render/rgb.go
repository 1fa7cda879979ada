package render

import "github.com/gdamore/tcell/v2"

// RGB is a 24-bit color composited in the buffer before it reaches tcell
type RGB struct {
	R, G, B uint8
}

// Color converts to a tcell true color
func (c RGB) Color() tcell.Color {
	return tcell.NewRGBColor(int32(c.R), int32(c.G), int32(c.B))
}

// clamp converts float to uint8 efficiently
func clamp(v float64) uint8 {
	if v >= 255.0 {
		return 255
	}
	if v <= 0.0 {
		return 0
	}
	return uint8(v)
}

// Blend mixes src over c with alpha in [0,1]
func Blend(c, src RGB, alpha float64) RGB {
	if alpha <= 0 {
		return c
	}
	if alpha >= 1 {
		return src
	}
	inv := 1.0 - alpha
	return RGB{
		R: clamp(float64(c.R)*inv + float64(src.R)*alpha + 0.5),
		G: clamp(float64(c.G)*inv + float64(src.G)*alpha + 0.5),
		B: clamp(float64(c.B)*inv + float64(src.B)*alpha + 0.5),
	}
}

// Scale multiplies every channel by factor
func Scale(c RGB, factor float64) RGB {
	return RGB{
		R: clamp(float64(c.R)*factor + 0.5),
		G: clamp(float64(c.G)*factor + 0.5),
		B: clamp(float64(c.B)*factor + 0.5),
	}
}

// Lerp interpolates from a to b, t clamped to [0,1]
func Lerp(a, b RGB, t float64) RGB {
	return Blend(a, b, t)
}
