package scene

import (
	"fmt"
	"math/rand"

	"github.com/df07/go-sphere-raytracer/pkg/core"
	"github.com/df07/go-sphere-raytracer/pkg/material"
	"github.com/df07/go-sphere-raytracer/pkg/renderer"
)

const finalSceneSeed = 1

// NewFinalScene creates a ground sphere covered with a grid of small random
// spheres around three large feature spheres. The layout is fixed by seed.
func NewFinalScene(seed int64) *Scene {
	s := New("final")

	s.CameraConfig = finalCameraConfig(s.CameraConfig)

	random := rand.New(rand.NewSource(seed))

	ground := s.AddMaterial("ground", material.NewLambertian(core.NewColor(0.5, 0.5, 0.5)))
	s.AddSphere(core.NewVec3(0, -1000, 0), 1000, ground)

	// Small spheres keep clear of the large metal sphere at (4, 1, 0)
	clearing := core.NewVec3(4, 0.2, 0)
	glass := s.AddMaterial("glass", material.NewDielectric(1.5))

	for a := -11; a < 11; a++ {
		for b := -11; b < 11; b++ {
			center := core.NewVec3(
				float64(a)+0.9*random.Float64(),
				0.2,
				float64(b)+0.9*random.Float64(),
			)
			if center.Subtract(clearing).Length() <= 0.9 {
				continue
			}

			var sphereMaterial core.Material
			switch chooseMat := random.Float64(); {
			case chooseMat < 0.8:
				// Diffuse
				albedo := core.Color(core.RandomVec3(random, 0, 1).MultiplyVec(core.RandomVec3(random, 0, 1)))
				sphereMaterial = material.NewLambertian(albedo)
			case chooseMat < 0.95:
				// Metal
				albedo := core.Color(core.RandomVec3(random, 0.5, 1))
				fuzz := core.RandomFloat(random, 0, 0.5)
				sphereMaterial = material.NewMetal(albedo, fuzz)
			default:
				sphereMaterial = glass
			}
			if sphereMaterial != glass {
				s.AddMaterial(fmt.Sprintf("sphere_%d_%d", a, b), sphereMaterial)
			}

			s.AddSphere(center, 0.2, sphereMaterial)
		}
	}

	diffuse := s.AddMaterial("feature_diffuse", material.NewLambertian(core.NewColor(0.4, 0.2, 0.1)))
	metal := s.AddMaterial("feature_metal", material.NewMetal(core.NewColor(0.7, 0.6, 0.5), 0.0))

	s.AddSphere(core.NewVec3(0, 1, 0), 1.0, glass)
	s.AddSphere(core.NewVec3(-4, 1, 0), 1.0, diffuse)
	s.AddSphere(core.NewVec3(4, 1, 0), 1.0, metal)

	return s
}

func finalCameraConfig(config renderer.CameraConfig) renderer.CameraConfig {
	config.AspectRatio = 16.0 / 9.0
	config.ImageWidth = 1200
	config.SamplesPerPixel = 500
	config.MaxDepth = 50
	config.VFov = 20
	config.LookFrom = core.NewVec3(13, 2, 3)
	config.LookAt = core.NewVec3(0, 0, 0)
	config.Up = core.NewVec3(0, 1, 0)
	config.DefocusAngle = 0.6
	config.FocusDistance = 10.0
	return config
}
