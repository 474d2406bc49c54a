package core

import "math"

// intensity clamps linear channel values before quantization to [0, 255]
var intensity = Interval{Min: 0.000, Max: 0.999}

// Color is a linear RGB value in the X, Y, Z components of a Vec3
type Color Vec3

// NewColor creates a new color
func NewColor(r, g, b float64) Color {
	return Color{X: r, Y: g, Z: b}
}

// Common colors
var (
	Black = NewColor(0, 0, 0)
	White = NewColor(1, 1, 1)
)

// R returns the red channel
func (c Color) R() float64 { return c.X }

// G returns the green channel
func (c Color) G() float64 { return c.Y }

// B returns the blue channel
func (c Color) B() float64 { return c.Z }

// Add returns the channel-wise sum
func (c Color) Add(other Color) Color {
	return Color(Vec3(c).Add(Vec3(other)))
}

// Multiply scales every channel
func (c Color) Multiply(scalar float64) Color {
	return Color(Vec3(c).Multiply(scalar))
}

// Attenuate returns the channel-wise product, used to tint light by a surface
func (c Color) Attenuate(other Color) Color {
	return Color(Vec3(c).MultiplyVec(Vec3(other)))
}

// Lerp blends linearly from c (t=0) to other (t=1)
func (c Color) Lerp(other Color, t float64) Color {
	return c.Multiply(1 - t).Add(other.Multiply(t))
}

// Luminance returns the perceptual luminance of an RGB color
// Uses standard luminance weights: 0.299*R + 0.587*G + 0.114*B
func (c Color) Luminance() float64 {
	return 0.299*c.X + 0.587*c.Y + 0.114*c.Z
}

// Gamma applies the gamma 2 transform to every channel
func (c Color) Gamma() Color {
	return Color{X: LinearToGamma(c.X), Y: LinearToGamma(c.Y), Z: LinearToGamma(c.Z)}
}

// ToRGB8 gamma-corrects, clamps to [0, 0.999] and quantizes to [0, 255]
func (c Color) ToRGB8() (r, g, b uint8) {
	g2 := c.Gamma()
	return quantize(g2.X), quantize(g2.Y), quantize(g2.Z)
}

// LinearToGamma converts a linear channel value with gamma 2.
// Non-positive inputs map to 0.
func LinearToGamma(linear float64) float64 {
	if linear > 0 {
		return math.Sqrt(linear)
	}
	return 0
}

func quantize(x float64) uint8 {
	return uint8(256 * intensity.Clamp(x))
}
