package renderer

import (
	"time"

	"gonum.org/v1/gonum/stat"
)

// RenderStats contains statistics about the rendering process
type RenderStats struct {
	Width, Height    int           // Image dimensions
	TotalPixels      int           // Total number of pixels rendered
	TotalSamples     int64         // Total number of camera samples taken
	TotalRays        int64         // Camera and scattered rays traced
	MaxBounces       int           // Deepest scatter chain seen
	MeanLuminance    float64       // Mean linear luminance of averaged pixels
	StdDevLuminance  float64       // Standard deviation of pixel luminance
	Workers          int           // Number of scanline workers
	Duration         time.Duration // Wall time of the render
	RaysPerSecond    float64       // TotalRays / Duration
	ScanlinesSkipped int           // Rows never rendered because of cancellation
}

// traceCounters accumulate work done while tracing one scanline
type traceCounters struct {
	rays       int64
	maxBounces int
}

// statsCollector merges scanline results into RenderStats
type statsCollector struct {
	stats     RenderStats
	luminance []float64
	rows      int
}

func newStatsCollector(width, height, workers int) *statsCollector {
	return &statsCollector{
		stats: RenderStats{
			Width:   width,
			Height:  height,
			Workers: workers,
		},
		luminance: make([]float64, 0, width*height),
	}
}

// add records one finished scanline
func (sc *statsCollector) add(result ScanlineResult) {
	sc.luminance = append(sc.luminance, result.Luminance...)
	sc.stats.TotalPixels += len(result.Pixels)
	sc.stats.TotalSamples += result.Samples
	sc.stats.TotalRays += result.counters.rays
	sc.stats.MaxBounces = max(sc.stats.MaxBounces, result.counters.maxBounces)
	sc.rows++
}

// finish computes the aggregate figures
func (sc *statsCollector) finish(elapsed time.Duration) RenderStats {
	s := sc.stats
	s.Duration = elapsed
	s.ScanlinesSkipped = s.Height - sc.rows
	switch {
	case len(sc.luminance) > 1:
		s.MeanLuminance, s.StdDevLuminance = stat.MeanStdDev(sc.luminance, nil)
	case len(sc.luminance) == 1:
		s.MeanLuminance = sc.luminance[0]
	}
	if secs := elapsed.Seconds(); secs > 0 {
		s.RaysPerSecond = float64(s.TotalRays) / secs
	}
	return s
}
