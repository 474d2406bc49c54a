package scene

import (
	"github.com/df07/go-sphere-raytracer/pkg/core"
	"github.com/df07/go-sphere-raytracer/pkg/geometry"
	"github.com/df07/go-sphere-raytracer/pkg/renderer"
)

// Scene contains all the elements needed for rendering
type Scene struct {
	Name         string
	World        *geometry.HittableList   // Objects in the scene
	Materials    map[string]core.Material // Named materials, shared by the spheres that use them
	CameraConfig renderer.CameraConfig
}

// New creates an empty scene with the default camera
func New(name string) *Scene {
	return &Scene{
		Name:         name,
		World:        geometry.NewHittableList(),
		Materials:    make(map[string]core.Material),
		CameraConfig: renderer.DefaultCameraConfig(),
	}
}

// AddMaterial registers a named material and returns it for further use
func (s *Scene) AddMaterial(name string, m core.Material) core.Material {
	s.Materials[name] = m
	return m
}

// AddSphere adds a sphere to the world
func (s *Scene) AddSphere(center core.Point3, radius float64, m core.Material) *geometry.Sphere {
	sphere := geometry.NewSphere(center, radius, m)
	s.World.Add(sphere)
	return sphere
}

// Camera builds the camera for the scene's camera configuration
func (s *Scene) Camera() (*renderer.Camera, error) {
	return renderer.NewCamera(s.CameraConfig)
}

// GetPrimitiveCount returns the number of spheres in the scene
func (s *Scene) GetPrimitiveCount() int {
	return s.World.Len()
}
