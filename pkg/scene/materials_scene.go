package scene

import (
	"github.com/df07/go-sphere-raytracer/pkg/core"
	"github.com/df07/go-sphere-raytracer/pkg/material"
)

// NewMaterialsScene creates three spheres on a ground sphere: a hollow glass
// sphere on the left, a diffuse one in the middle and fuzzy gold on the right
func NewMaterialsScene() *Scene {
	s := New("materials")

	s.CameraConfig.SamplesPerPixel = 100
	s.CameraConfig.MaxDepth = 50
	s.CameraConfig.VFov = 20
	s.CameraConfig.LookFrom = core.NewVec3(-2, 2, 1)
	s.CameraConfig.LookAt = core.NewVec3(0, 0, -1)
	s.CameraConfig.Up = core.NewVec3(0, 1, 0)
	s.CameraConfig.DefocusAngle = 10
	s.CameraConfig.FocusDistance = 3.4

	ground := s.AddMaterial("ground", material.NewLambertian(core.NewColor(0.8, 0.8, 0.0)))
	center := s.AddMaterial("center", material.NewLambertian(core.NewColor(0.1, 0.2, 0.5)))
	glass := s.AddMaterial("glass", material.NewDielectric(1.5))
	gold := s.AddMaterial("gold", material.NewMetal(core.NewColor(0.8, 0.6, 0.2), 1.0))

	s.AddSphere(core.NewVec3(0, -100.5, -1), 100, ground)
	s.AddSphere(core.NewVec3(0, 0, -1.2), 0.5, center)
	s.AddSphere(core.NewVec3(-1, 0, -1), 0.5, glass)
	// Negative radius flips the normals inward, making the glass sphere hollow
	s.AddSphere(core.NewVec3(-1, 0, -1), -0.4, glass)
	s.AddSphere(core.NewVec3(1, 0, -1), 0.5, gold)

	return s
}
