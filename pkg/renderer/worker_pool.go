package renderer

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// ScanlineTask represents one row for the worker pool
type ScanlineTask struct {
	Row int
}

// ScanlineResult contains the result from rendering a scanline
type ScanlineResult struct {
	Row       int
	Pixels    []RGB8    // Quantized pixels, left to right
	Luminance []float64 // Linear luminance of each averaged pixel
	Samples   int64     // Camera samples taken

	counters traceCounters
}

// WorkerPool manages parallel scanline rendering
type WorkerPool struct {
	raytracer  *Raytracer
	numWorkers int
}

// NewWorkerPool creates a worker pool with the specified number of workers
func NewWorkerPool(raytracer *Raytracer, numWorkers int) *WorkerPool {
	if numWorkers <= 0 {
		numWorkers = runtime.NumCPU()
	}
	return &WorkerPool{
		raytracer:  raytracer,
		numWorkers: numWorkers,
	}
}

// NumWorkers returns the number of workers in the pool
func (wp *WorkerPool) NumWorkers() int {
	return wp.numWorkers
}

// Run renders rows 0..height-1 and hands each result to handle on the
// calling goroutine. Rows are queued top to bottom; with one worker they
// also finish in that order. Run stops queueing once ctx is done.
func (wp *WorkerPool) Run(ctx context.Context, height int, handle func(ScanlineResult)) error {
	g, ctx := errgroup.WithContext(ctx)
	taskQueue := make(chan ScanlineTask)
	resultQueue := make(chan ScanlineResult, wp.numWorkers)

	// Producer
	g.Go(func() error {
		defer close(taskQueue)
		for row := 0; row < height; row++ {
			select {
			case taskQueue <- ScanlineTask{Row: row}:
			case <-ctx.Done():
				return ctx.Err()
			}
		}
		return nil
	})

	// Workers
	for i := 0; i < wp.numWorkers; i++ {
		g.Go(func() error {
			for task := range taskQueue {
				// Never start a scanline after cancellation
				if err := ctx.Err(); err != nil {
					return err
				}
				resultQueue <- wp.raytracer.RenderScanline(task.Row)
			}
			return nil
		})
	}

	var runErr error
	go func() {
		runErr = g.Wait()
		close(resultQueue)
	}()

	for result := range resultQueue {
		handle(result)
	}

	return runErr
}
