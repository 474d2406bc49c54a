package renderer

import (
	"context"
	"testing"

	"github.com/df07/go-sphere-raytracer/pkg/geometry"
)

func TestWorkerPool_DefaultsToCPUCount(t *testing.T) {
	pool := NewWorkerPool(nil, 0)
	if pool.NumWorkers() < 1 {
		t.Errorf("Expected at least one worker, got %d", pool.NumWorkers())
	}
}

func TestWorkerPool_SingleWorkerIsSequential(t *testing.T) {
	rt := newTestRaytracer(t, geometry.NewHittableList(), nil, DefaultRenderConfig())
	pool := NewWorkerPool(rt, 1)

	var rows []int
	err := pool.Run(context.Background(), rt.Camera().ImageHeight(), func(result ScanlineResult) {
		rows = append(rows, result.Row)
	})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if len(rows) != rt.Camera().ImageHeight() {
		t.Fatalf("Expected %d rows, got %d", rt.Camera().ImageHeight(), len(rows))
	}
	for i, row := range rows {
		if row != i {
			t.Fatalf("Expected rows in order, got %v", rows)
		}
	}
}

func TestWorkerPool_EveryRowOnce(t *testing.T) {
	rt := newTestRaytracer(t, twoSphereWorld(), nil, DefaultRenderConfig())
	pool := NewWorkerPool(rt, 6)
	height := rt.Camera().ImageHeight()

	seen := make(map[int]int)
	err := pool.Run(context.Background(), height, func(result ScanlineResult) {
		seen[result.Row]++
		if len(result.Pixels) != rt.Camera().ImageWidth() {
			t.Errorf("Row %d has %d pixels", result.Row, len(result.Pixels))
		}
	})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	for row := 0; row < height; row++ {
		if seen[row] != 1 {
			t.Errorf("Row %d rendered %d times", row, seen[row])
		}
	}
}

func TestWorkerPool_StopsAfterCancel(t *testing.T) {
	rt := newTestRaytracer(t, twoSphereWorld(), nil, DefaultRenderConfig())
	pool := NewWorkerPool(rt, 1)
	ctx, cancel := context.WithCancel(context.Background())

	handled := 0
	err := pool.Run(ctx, rt.Camera().ImageHeight(), func(result ScanlineResult) {
		handled++
		if handled == 2 {
			cancel()
		}
	})
	if err == nil {
		t.Fatal("Expected cancellation error")
	}
	// Rows already queued or being traced may still finish
	if handled >= rt.Camera().ImageHeight() {
		t.Errorf("Expected cancellation to skip rows, handled %d of %d", handled, rt.Camera().ImageHeight())
	}
}
