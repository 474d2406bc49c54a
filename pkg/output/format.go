package output

import (
	"fmt"
	"image/png"
	"io"
	"path/filepath"
	"strings"

	"github.com/df07/go-sphere-raytracer/pkg/renderer"
)

// Format is an image file format
type Format string

const (
	FormatPPM Format = "ppm"
	FormatPNG Format = "png"
)

// ParseFormat accepts a format name in any case
func ParseFormat(name string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(name))); f {
	case FormatPPM, FormatPNG:
		return f, nil
	default:
		return "", fmt.Errorf("unknown output format %q (expected ppm or png)", name)
	}
}

// FormatFromPath picks the format from the file extension, defaulting to PPM
func FormatFromPath(path string) Format {
	if strings.EqualFold(filepath.Ext(path), ".png") {
		return FormatPNG
	}
	return FormatPPM
}

// WritePNG writes the frame as a PNG image
func WritePNG(w io.Writer, frame *renderer.Frame) error {
	if err := png.Encode(w, frame.ToRGBA()); err != nil {
		return fmt.Errorf("failed to encode PNG: %w", err)
	}
	return nil
}

// Encode writes the frame in the given format
func Encode(w io.Writer, frame *renderer.Frame, format Format) error {
	switch format {
	case FormatPPM:
		return WritePPM(w, frame)
	case FormatPNG:
		return WritePNG(w, frame)
	default:
		return fmt.Errorf("unknown output format %q", format)
	}
}
