package renderer

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"time"

	"github.com/df07/go-sphere-raytracer/pkg/core"
)

// hitEpsilon skips intersections right at a ray origin so scattered rays
// do not re-hit the surface they left
const hitEpsilon = 0.001

// Background gradient endpoints
var (
	horizonColor = core.White
	skyColor     = core.NewColor(0.5, 0.7, 1.0)
)

// RenderConfig controls how a render pass is scheduled
type RenderConfig struct {
	Seed             int64 // Base seed, scanline j draws from Seed + j
	NumWorkers       int   // Parallel scanline workers (0 = use CPU count)
	ProgressInterval int   // Log progress every N finished scanlines (0 = never)
}

// DefaultRenderConfig returns sensible default values
func DefaultRenderConfig() RenderConfig {
	return RenderConfig{
		Seed:             42, // Deterministic for testing
		NumWorkers:       0,
		ProgressInterval: 25,
	}
}

// Raytracer handles the rendering process. The world and camera are only
// read while rendering, so scanlines can be traced concurrently.
type Raytracer struct {
	world  core.Hittable
	camera *Camera
	config RenderConfig
	logger core.Logger
}

// NewRaytracer creates a new raytracer
func NewRaytracer(world core.Hittable, camera *Camera, config RenderConfig, logger core.Logger) *Raytracer {
	if logger == nil {
		logger = NopLogger{}
	}
	return &Raytracer{
		world:  world,
		camera: camera,
		config: config,
		logger: logger,
	}
}

// Camera returns the camera used for rendering
func (rt *Raytracer) Camera() *Camera {
	return rt.camera
}

// Config returns the render configuration
func (rt *Raytracer) Config() RenderConfig {
	return rt.config
}

// Background returns the sky gradient seen along a ray that escapes the scene
func Background(r core.Ray) core.Color {
	unitDirection := r.Direction.UnitVector()
	a := 0.5 * (unitDirection.Y + 1.0)
	return horizonColor.Lerp(skyColor, a)
}

// RayColor returns the light arriving along r with at most depth rays traced
func (rt *Raytracer) RayColor(r core.Ray, depth int, random *rand.Rand) core.Color {
	var counters traceCounters
	return rt.rayColor(r, depth, random, &counters, 0)
}

// rayColor is the bounded recursive integrator
func (rt *Raytracer) rayColor(r core.Ray, depth int, random *rand.Rand, counters *traceCounters, bounce int) core.Color {
	// If we've exceeded the ray bounce limit, no more light is gathered
	if depth <= 0 {
		return core.Black
	}

	counters.rays++
	counters.maxBounces = max(counters.maxBounces, bounce)

	hit, isHit := rt.world.Hit(r, core.NewInterval(hitEpsilon, math.Inf(1)))
	if !isHit {
		return Background(r)
	}
	if hit.Material == nil {
		return core.Black
	}

	scatter, didScatter := hit.Material.Scatter(r, hit, random)
	if !didScatter {
		return core.Black // Material absorbed the ray
	}

	incoming := rt.rayColor(scatter.Scattered, depth-1, random, counters, bounce+1)
	return scatter.Attenuation.Attenuate(incoming)
}

// SamplePixel returns the average linear color of pixel (i, j)
func (rt *Raytracer) SamplePixel(i, j int, random *rand.Rand) core.Color {
	var counters traceCounters
	return rt.samplePixel(i, j, random, &counters)
}

func (rt *Raytracer) samplePixel(i, j int, random *rand.Rand, counters *traceCounters) core.Color {
	config := rt.camera.Config()
	colorAccum := core.Black
	for sample := 0; sample < config.SamplesPerPixel; sample++ {
		ray := rt.camera.GetRay(i, j, random)
		colorAccum = colorAccum.Add(rt.rayColor(ray, config.MaxDepth, random, counters, 0))
	}
	return colorAccum.Multiply(1.0 / float64(config.SamplesPerPixel))
}

// ScanlineRandom returns the generator that drives scanline j
func (rt *Raytracer) ScanlineRandom(j int) *rand.Rand {
	return rand.New(rand.NewSource(rt.config.Seed + int64(j)))
}

// RenderScanline renders row j independently of every other row
func (rt *Raytracer) RenderScanline(j int) ScanlineResult {
	width := rt.camera.ImageWidth()
	random := rt.ScanlineRandom(j)

	result := ScanlineResult{
		Row:       j,
		Pixels:    make([]RGB8, width),
		Luminance: make([]float64, width),
		Samples:   int64(width) * int64(rt.camera.Config().SamplesPerPixel),
	}

	for i := 0; i < width; i++ {
		pixelColor := rt.samplePixel(i, j, random, &result.counters)
		r, g, b := pixelColor.ToRGB8()
		result.Pixels[i] = RGB8{R: r, G: g, B: b}
		result.Luminance[i] = pixelColor.Luminance()
	}

	return result
}

// Render traces the full frame. Cancellation is honored between scanlines.
func (rt *Raytracer) Render(ctx context.Context) (*Frame, RenderStats, error) {
	startTime := time.Now()
	width, height := rt.camera.ImageWidth(), rt.camera.ImageHeight()
	config := rt.camera.Config()

	frame := NewFrame(width, height)
	pool := NewWorkerPool(rt, rt.config.NumWorkers)
	collector := newStatsCollector(width, height, pool.NumWorkers())

	rt.logger.Printf("Rendering %dx%d: %d samples per pixel, max depth %d (using %d workers)...\n",
		width, height, config.SamplesPerPixel, config.MaxDepth, pool.NumWorkers())

	completed := 0
	err := pool.Run(ctx, height, func(result ScanlineResult) {
		copy(frame.Row(result.Row), result.Pixels)
		collector.add(result)
		completed++

		interval := rt.config.ProgressInterval
		if interval > 0 && (completed%interval == 0 || completed == height) {
			rt.logger.Printf("Scanlines remaining: %d\n", height-completed)
		}
	})

	stats := collector.finish(time.Since(startTime))
	if err != nil {
		rt.logger.Printf("Rendering cancelled after %d of %d scanlines\n", completed, height)
		return nil, stats, fmt.Errorf("render cancelled: %w", err)
	}

	rt.logger.Printf("Render completed in %v (%d rays, %.0f rays/s, deepest bounce %d)\n",
		stats.Duration, stats.TotalRays, stats.RaysPerSecond, stats.MaxBounces)

	return frame, stats, nil
}
