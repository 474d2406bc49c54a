package scene

import (
	"github.com/df07/go-sphere-raytracer/pkg/core"
	"github.com/df07/go-sphere-raytracer/pkg/material"
)

// NewTwoSpheresScene creates a grey diffuse sphere sitting on a large ground
// sphere, viewed with the default camera
func NewTwoSpheresScene() *Scene {
	s := New("two-spheres")

	grey := s.AddMaterial("grey", material.NewLambertian(core.NewColor(0.5, 0.5, 0.5)))

	s.AddSphere(core.NewVec3(0, 0, -1), 0.5, grey)
	s.AddSphere(core.NewVec3(0, -100.5, -1), 100, grey)

	return s
}
