package material

import (
	"math/rand"
	"testing"

	"github.com/df07/go-sphere-raytracer/pkg/core"
)

func TestNewMetal_FuzznessClamp(t *testing.T) {
	tests := []struct {
		name             string
		inputFuzzness    float64
		expectedFuzzness float64
	}{
		{"Valid fuzzness 0.0", 0.0, 0.0},
		{"Valid fuzzness 0.5", 0.5, 0.5},
		{"Valid fuzzness 1.0", 1.0, 1.0},
		{"Clamp above 1.0", 1.5, 1.0},
		{"Clamp below 0.0", -0.5, 0.0},
		{"Clamp large positive", 10.0, 1.0},
		{"Clamp large negative", -10.0, 0.0},
	}

	albedo := core.NewColor(0.8, 0.8, 0.8)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			metal := NewMetal(albedo, tt.inputFuzzness)
			if metal.Fuzzness != tt.expectedFuzzness {
				t.Errorf("Expected fuzzness %f, got %f", tt.expectedFuzzness, metal.Fuzzness)
			}
		})
	}
}

func TestMetal_PerfectReflection(t *testing.T) {
	albedo := core.NewColor(0.9, 0.9, 0.9)
	metal := NewMetal(albedo, 0.0)
	random := rand.New(rand.NewSource(42))

	// Ray hitting surface at 45 degrees
	rayIn := core.NewRay(core.NewVec3(0, 1, 1), core.NewVec3(0, -1, -1))
	hit := core.HitRecord{
		Point:  core.NewVec3(0, 0, 0),
		Normal: core.NewVec3(0, 0, 1),
	}

	scatter, didScatter := metal.Scatter(rayIn, hit, random)
	if !didScatter {
		t.Fatal("Metal should scatter")
	}

	// Incident (0, -1, -1) normalized reflects to (0, -0.707, 0.707)
	expected := core.NewVec3(0, -1, 1).UnitVector()
	if !scatter.Scattered.Direction.ApproxEquals(expected, 1e-10) {
		t.Errorf("Perfect reflection failed: expected %v, got %v", expected, scatter.Scattered.Direction)
	}

	if scatter.Attenuation != albedo {
		t.Errorf("Attenuation should equal albedo: expected %v, got %v", albedo, scatter.Attenuation)
	}
}

func TestMetal_AbsorbedIffBelowSurface(t *testing.T) {
	// Maximum fuzz on a grazing ray pushes many reflections into the surface
	metal := NewMetal(core.NewColor(0.8, 0.6, 0.2), 1.0)
	rayIn := core.NewRay(core.NewVec3(-1, 0.05, 0), core.NewVec3(1, -0.05, 0))
	hit := core.HitRecord{
		Point:  core.NewVec3(0, 0, 0),
		Normal: core.NewVec3(0, 1, 0),
	}

	absorbed, scattered := 0, 0
	for seed := int64(0); seed < 2000; seed++ {
		// Replay the same draws to recover the perturbed direction on absorption
		unit := rayIn.Direction.UnitVector()
		expectedDir := core.Reflect(unit, hit.Normal).
			Add(core.RandomUnitVector(rand.New(rand.NewSource(seed))).Multiply(metal.Fuzzness))

		scatter, didScatter := metal.Scatter(rayIn, hit, rand.New(rand.NewSource(seed)))
		below := expectedDir.Dot(hit.Normal) <= 0

		if didScatter == below {
			t.Fatalf("seed %d: scatter=%t but dot(direction, normal)=%f", seed, didScatter, expectedDir.Dot(hit.Normal))
		}
		if didScatter {
			scattered++
			if !scatter.Scattered.Direction.ApproxEquals(expectedDir, 1e-12) {
				t.Fatalf("seed %d: expected direction %v, got %v", seed, expectedDir, scatter.Scattered.Direction)
			}
		} else {
			absorbed++
		}
	}

	if absorbed == 0 || scattered == 0 {
		t.Errorf("Expected both outcomes, got absorbed=%d scattered=%d", absorbed, scattered)
	}
}
