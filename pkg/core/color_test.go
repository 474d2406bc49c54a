package core

import (
	"math"
	"testing"
)

func TestLinearToGamma_RoundTrip(t *testing.T) {
	for i := 0; i <= 100; i++ {
		x := float64(i) / 100
		g := LinearToGamma(x)
		if math.Abs(g*g-x) > 1e-12 {
			t.Errorf("gamma(%f)^2 = %f, expected %f", x, g*g, x)
		}
	}
	if LinearToGamma(-0.5) != 0 {
		t.Errorf("Negative input should map to 0, got %f", LinearToGamma(-0.5))
	}
}

func TestColor_ToRGB8(t *testing.T) {
	tests := []struct {
		name    string
		color   Color
		r, g, b uint8
	}{
		{"Black", Black, 0, 0, 0},
		{"White clamps to 255", White, 255, 255, 255},
		{"Over-bright clamps", NewColor(4, 2, 1.5), 255, 255, 255},
		{"Negative clamps to zero", NewColor(-1, -0.2, 0), 0, 0, 0},
		{"Quarter linear is half gamma", NewColor(0.25, 0.25, 0.25), 128, 128, 128},
		{"Sky", NewColor(0.5, 0.7, 1.0), 181, 214, 255},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, g, b := tt.color.ToRGB8()
			if r != tt.r || g != tt.g || b != tt.b {
				t.Errorf("Expected (%d,%d,%d), got (%d,%d,%d)", tt.r, tt.g, tt.b, r, g, b)
			}
		})
	}
}

func TestColor_Operations(t *testing.T) {
	c := NewColor(0.5, 0.25, 1)
	if got := c.Attenuate(NewColor(0.5, 2, 0)); got != NewColor(0.25, 0.5, 0) {
		t.Errorf("Attenuate: got %v", got)
	}
	if got := White.Lerp(NewColor(0.5, 0.7, 1.0), 0.5); !Vec3(got).ApproxEquals(NewVec3(0.75, 0.85, 1.0), 1e-12) {
		t.Errorf("Lerp: got %v", got)
	}
	if got := c.Add(c).Multiply(0.5); got != c {
		t.Errorf("Add/Multiply: got %v", got)
	}
}
