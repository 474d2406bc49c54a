package geometry

import (
	"math"
	"math/rand"
	"testing"

	"github.com/df07/go-sphere-raytracer/pkg/core"
)

// markerMaterial lets tests tell which object produced a hit
type markerMaterial struct {
	name string
}

func (m *markerMaterial) Scatter(rayIn core.Ray, hit core.HitRecord, random *rand.Rand) (core.ScatterResult, bool) {
	return core.ScatterResult{}, false
}

var defaultRange = core.NewInterval(0.001, math.Inf(1))

func TestSphere_Hit_Miss(t *testing.T) {
	sphere := NewSphere(core.NewVec3(0, 0, 0), 1.0, nil)
	ray := core.NewRay(core.NewVec3(2, 0, 0), core.NewVec3(0, 1, 0))

	hit, isHit := sphere.Hit(ray, defaultRange)
	if isHit {
		t.Errorf("Expected miss, but got hit at t=%f", hit.T)
	}
}

func TestSphere_Hit_AimedAtCenter(t *testing.T) {
	tests := []struct {
		name   string
		origin core.Vec3
		center core.Vec3
		radius float64
	}{
		{"Along -z", core.NewVec3(0, 0, 0), core.NewVec3(0, 0, -1), 0.5},
		{"Diagonal", core.NewVec3(3, -2, 7), core.NewVec3(-1, 4, 0.5), 1.25},
		{"Far away", core.NewVec3(0, 100, 0), core.NewVec3(0, -100.5, -1), 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sphere := NewSphere(tt.center, tt.radius, nil)
			direction := tt.center.Subtract(tt.origin).UnitVector()
			hit, isHit := sphere.Hit(core.NewRay(tt.origin, direction), defaultRange)
			if !isHit {
				t.Fatal("Expected hit, but got miss")
			}

			expectedT := tt.center.Subtract(tt.origin).Length() - tt.radius
			if math.Abs(hit.T-expectedT) > 1e-9 {
				t.Errorf("Expected t=%f, got t=%f", expectedT, hit.T)
			}
		})
	}
}

func TestSphere_Hit_FrontAndBackFace(t *testing.T) {
	sphere := NewSphere(core.NewVec3(0, 0, 0), 1.0, nil)

	tests := []struct {
		name           string
		rayOrigin      core.Vec3
		rayDirection   core.Vec3
		expectedT      float64
		expectedFront  bool
		expectedNormal core.Vec3
	}{
		{
			name:           "front face hit",
			rayOrigin:      core.NewVec3(0, 0, 2),
			rayDirection:   core.NewVec3(0, 0, -1),
			expectedT:      1.0,
			expectedFront:  true,
			expectedNormal: core.NewVec3(0, 0, 1),
		},
		{
			name:           "back face hit",
			rayOrigin:      core.NewVec3(0, 0, 0),
			rayDirection:   core.NewVec3(0, 0, 1),
			expectedT:      1.0,
			expectedFront:  false,
			expectedNormal: core.NewVec3(0, 0, -1),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ray := core.NewRay(tt.rayOrigin, tt.rayDirection)
			hit, isHit := sphere.Hit(ray, defaultRange)

			if !isHit {
				t.Fatal("Expected hit, but got miss")
			}

			if math.Abs(hit.T-tt.expectedT) > 1e-9 {
				t.Errorf("Expected t=%f, got t=%f", tt.expectedT, hit.T)
			}

			if hit.FrontFace != tt.expectedFront {
				t.Errorf("Expected front face %t, got %t", tt.expectedFront, hit.FrontFace)
			}

			if !hit.Normal.ApproxEquals(tt.expectedNormal, 1e-9) {
				t.Errorf("Expected normal %v, got %v", tt.expectedNormal, hit.Normal)
			}
		})
	}
}

func TestSphere_Hit_NormalFacesRay(t *testing.T) {
	random := rand.New(rand.NewSource(42))
	sphere := NewSphere(core.NewVec3(0.3, -0.2, -1), 0.75, nil)

	hits := 0
	for i := 0; i < 2000; i++ {
		origin := core.RandomVec3(random, -2, 2)
		direction := core.RandomUnitVector(random)
		hit, isHit := sphere.Hit(core.NewRay(origin, direction), defaultRange)
		if !isHit {
			continue
		}
		hits++

		if math.Abs(hit.Normal.Length()-1) > 1e-9 {
			t.Fatalf("Expected unit normal, got length %f", hit.Normal.Length())
		}
		if hit.Normal.Dot(direction) > 0 {
			t.Fatalf("Normal %v should face against ray direction %v", hit.Normal, direction)
		}
	}
	if hits == 0 {
		t.Fatal("Expected at least one random ray to hit")
	}
}

func TestSphere_Hit_BehindCameraIsMissed(t *testing.T) {
	front := NewSphere(core.NewVec3(0, 0, -1), 0.5, nil)
	behind := NewSphere(core.NewVec3(0, 0, 1), 0.5, nil)
	ray := core.NewRay(core.NewVec3(0, 0, 0), core.NewVec3(0, 0, -1))

	if _, isHit := front.Hit(ray, defaultRange); !isHit {
		t.Error("Expected sphere in front of the ray to be hit")
	}
	if hit, isHit := behind.Hit(ray, defaultRange); isHit {
		t.Errorf("Sphere behind the ray origin should be missed, got t=%f", hit.T)
	}
}

func TestSphere_Hit_Bounds(t *testing.T) {
	sphere := NewSphere(core.NewVec3(0, 0, 0), 1.0, nil)
	ray := core.NewRay(core.NewVec3(0, 0, 2), core.NewVec3(0, 0, -1))

	// Test tMax bound
	hit, isHit := sphere.Hit(ray, core.NewInterval(0.001, 0.5))
	if isHit {
		t.Errorf("Expected miss due to tMax bound, but got hit at t=%f", hit.T)
	}

	// Test tMin bound
	hit, isHit = sphere.Hit(ray, core.NewInterval(3.5, 1000.0))
	if isHit {
		t.Errorf("Expected miss due to tMin bound, but got hit at t=%f", hit.T)
	}

	// Near root excluded, far root accepted
	hit, isHit = sphere.Hit(ray, core.NewInterval(1.5, 1000.0))
	if !isHit || math.Abs(hit.T-3.0) > 1e-9 {
		t.Errorf("Expected far root at t=3, got hit=%t t=%f", isHit, hit.T)
	}

	// Roots on the interval boundary are excluded
	if _, isHit = sphere.Hit(ray, core.NewInterval(1.0, 3.0)); isHit {
		t.Error("Expected miss when roots lie exactly on the interval bounds")
	}
}

func TestSphere_Hit_Material(t *testing.T) {
	mat := &markerMaterial{name: "shared"}
	a := NewSphere(core.NewVec3(0, 0, -1), 0.5, mat)
	b := NewSphere(core.NewVec3(0, 0, -3), 0.5, mat)
	ray := core.NewRay(core.NewVec3(0, 0, 0), core.NewVec3(0, 0, -1))

	hitA, _ := a.Hit(ray, defaultRange)
	hitB, _ := b.Hit(ray, defaultRange)
	if hitA.Material != core.Material(mat) || hitB.Material != core.Material(mat) {
		t.Error("Both spheres should reference the shared material")
	}
}

func TestSphere_Hit_NegativeRadiusFlipsNormal(t *testing.T) {
	sphere := NewSphere(core.NewVec3(0, 0, 0), -1.0, nil)
	ray := core.NewRay(core.NewVec3(0, 0, 2), core.NewVec3(0, 0, -1))

	hit, isHit := sphere.Hit(ray, defaultRange)
	if !isHit {
		t.Fatal("Expected hit, but got miss")
	}
	// Outward normal points inward, so the ray is seen as hitting a back face
	if hit.FrontFace {
		t.Error("Expected back face hit for negative radius sphere")
	}
	if !hit.Normal.ApproxEquals(core.NewVec3(0, 0, 1), 1e-9) {
		t.Errorf("Expected normal facing the ray, got %v", hit.Normal)
	}
}
