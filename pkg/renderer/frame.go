package renderer

import (
	"image"
	"image/color"
)

// RGB8 is a quantized display pixel
type RGB8 struct {
	R, G, B uint8
}

// Frame is a row-major 8-bit pixel buffer, top row first
type Frame struct {
	Width, Height int
	Pixels        []RGB8
}

// NewFrame allocates a black frame
func NewFrame(width, height int) *Frame {
	return &Frame{
		Width:  width,
		Height: height,
		Pixels: make([]RGB8, width*height),
	}
}

// At returns the pixel in column x of row y
func (f *Frame) At(x, y int) RGB8 {
	return f.Pixels[y*f.Width+x]
}

// Set stores the pixel in column x of row y
func (f *Frame) Set(x, y int, c RGB8) {
	f.Pixels[y*f.Width+x] = c
}

// Row returns the pixels of row y, sharing storage with the frame
func (f *Frame) Row(y int) []RGB8 {
	return f.Pixels[y*f.Width : (y+1)*f.Width]
}

// ToRGBA converts the frame for the image encoders
func (f *Frame) ToRGBA() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, f.Width, f.Height))
	for y := 0; y < f.Height; y++ {
		for x := 0; x < f.Width; x++ {
			p := f.At(x, y)
			img.SetRGBA(x, y, color.RGBA{R: p.R, G: p.G, B: p.B, A: 255})
		}
	}
	return img
}
