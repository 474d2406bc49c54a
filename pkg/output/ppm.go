package output

import (
	"bufio"
	"fmt"
	"io"
	"strconv"

	"github.com/df07/go-sphere-raytracer/pkg/renderer"
)

// WritePPM writes the frame as an ASCII (P3) portable pixmap:
// a "P3\n{width} {height}\n255\n" header, then one "R G B\n" line per pixel,
// rows top to bottom and pixels left to right.
func WritePPM(w io.Writer, frame *renderer.Frame) error {
	bw := bufio.NewWriter(w)

	if _, err := fmt.Fprintf(bw, "P3\n%d %d\n255\n", frame.Width, frame.Height); err != nil {
		return fmt.Errorf("failed to write PPM header: %w", err)
	}

	line := make([]byte, 0, len("255 255 255\n"))
	for _, p := range frame.Pixels {
		line = line[:0]
		line = strconv.AppendUint(line, uint64(p.R), 10)
		line = append(line, ' ')
		line = strconv.AppendUint(line, uint64(p.G), 10)
		line = append(line, ' ')
		line = strconv.AppendUint(line, uint64(p.B), 10)
		line = append(line, '\n')
		if _, err := bw.Write(line); err != nil {
			return fmt.Errorf("failed to write PPM pixel data: %w", err)
		}
	}

	if err := bw.Flush(); err != nil {
		return fmt.Errorf("failed to flush PPM output: %w", err)
	}
	return nil
}
