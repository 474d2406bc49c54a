package scene

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/image/colornames"
	"gopkg.in/yaml.v3"

	"github.com/df07/go-sphere-raytracer/pkg/core"
	"github.com/df07/go-sphere-raytracer/pkg/material"
	"github.com/df07/go-sphere-raytracer/pkg/renderer"
)

// ErrInvalidScene is returned for scene files that cannot be built
var ErrInvalidScene = errors.New("invalid scene file")

// sceneFile is the YAML layout of a scene description:
//
//	name: demo
//	camera:
//	  image_width: 400
//	  look_from: [13, 2, 3]
//	materials:
//	  ground: {type: lambertian, albedo: [0.5, 0.5, 0.5]}
//	  sky: {type: metal, albedo: skyblue, fuzz: 0.1}
//	  glass: {type: dielectric, refraction_index: 1.5}
//	spheres:
//	  - {center: [0, -1000, 0], radius: 1000, material: ground}
type sceneFile struct {
	Name      string                   `yaml:"name"`
	Camera    cameraBlock              `yaml:"camera"`
	Materials map[string]materialEntry `yaml:"materials"`
	Spheres   []sphereEntry            `yaml:"spheres"`
}

// cameraBlock overrides the default camera; missing keys keep their defaults
type cameraBlock struct {
	AspectRatio     *float64   `yaml:"aspect_ratio"`
	ImageWidth      *int       `yaml:"image_width"`
	SamplesPerPixel *int       `yaml:"samples_per_pixel"`
	MaxDepth        *int       `yaml:"max_depth"`
	VFov            *float64   `yaml:"vfov"`
	LookFrom        *vec3Value `yaml:"look_from"`
	LookAt          *vec3Value `yaml:"look_at"`
	Up              *vec3Value `yaml:"up"`
	DefocusAngle    *float64   `yaml:"defocus_angle"`
	FocusDistance   *float64   `yaml:"focus_distance"`
}

type materialEntry struct {
	Type            string      `yaml:"type"`
	Albedo          *colorValue `yaml:"albedo"`
	Fuzz            float64     `yaml:"fuzz"`
	RefractionIndex float64     `yaml:"refraction_index"`
}

type sphereEntry struct {
	Center   vec3Value `yaml:"center"`
	Radius   float64   `yaml:"radius"`
	Material string    `yaml:"material"`
}

// vec3Value decodes a three element sequence
type vec3Value core.Vec3

func (v *vec3Value) UnmarshalYAML(node *yaml.Node) error {
	var components []float64
	if err := node.Decode(&components); err != nil {
		return fmt.Errorf("line %d: expected [x, y, z]: %v", node.Line, err)
	}
	if len(components) != 3 {
		return fmt.Errorf("line %d: expected 3 components, got %d", node.Line, len(components))
	}
	*v = vec3Value{X: components[0], Y: components[1], Z: components[2]}
	return nil
}

// colorValue decodes either [r, g, b] in [0,1] or an SVG colour name
type colorValue core.Color

func (c *colorValue) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		named, ok := colornames.Map[strings.ToLower(strings.TrimSpace(node.Value))]
		if !ok {
			return fmt.Errorf("line %d: unknown colour name %q", node.Line, node.Value)
		}
		*c = colorValue(core.NewColor(
			float64(named.R)/255,
			float64(named.G)/255,
			float64(named.B)/255,
		))
		return nil
	}

	var v vec3Value
	if err := v.UnmarshalYAML(node); err != nil {
		return err
	}
	*c = colorValue(v)
	return nil
}

// LoadFile reads a YAML scene description from disk. Scenes without a name
// are named after the file.
func LoadFile(path string) (*Scene, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open scene file: %w", err)
	}
	defer f.Close()

	s, err := Load(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if s.Name == "" {
		s.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return s, nil
}

// Load decodes a YAML scene description and builds the scene
func Load(r io.Reader) (*Scene, error) {
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)

	var file sceneFile
	if err := decoder.Decode(&file); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: empty document", ErrInvalidScene)
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidScene, err)
	}

	return file.build()
}

func (f *sceneFile) build() (*Scene, error) {
	s := New(f.Name)
	f.Camera.applyTo(&s.CameraConfig)
	if err := s.CameraConfig.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidScene, err)
	}

	// Sorted so the first reported error does not depend on map order
	names := make([]string, 0, len(f.Materials))
	for name := range f.Materials {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		m, err := f.Materials[name].build()
		if err != nil {
			return nil, fmt.Errorf("%w: material %q: %v", ErrInvalidScene, name, err)
		}
		s.AddMaterial(name, m)
	}

	for i, entry := range f.Spheres {
		m, ok := s.Materials[entry.Material]
		if !ok {
			return nil, fmt.Errorf("%w: sphere %d references unknown material %q", ErrInvalidScene, i, entry.Material)
		}
		if entry.Radius == 0 {
			return nil, fmt.Errorf("%w: sphere %d has zero radius", ErrInvalidScene, i)
		}
		s.AddSphere(core.Point3(entry.Center), entry.Radius, m)
	}

	return s, nil
}

func (m materialEntry) build() (core.Material, error) {
	switch strings.ToLower(m.Type) {
	case "lambertian":
		if m.Albedo == nil {
			return nil, errors.New("lambertian requires an albedo")
		}
		return material.NewLambertian(core.Color(*m.Albedo)), nil
	case "metal":
		if m.Albedo == nil {
			return nil, errors.New("metal requires an albedo")
		}
		return material.NewMetal(core.Color(*m.Albedo), m.Fuzz), nil
	case "dielectric":
		if !(m.RefractionIndex > 0) {
			return nil, fmt.Errorf("dielectric refraction index %v must be positive", m.RefractionIndex)
		}
		return material.NewDielectric(m.RefractionIndex), nil
	default:
		return nil, fmt.Errorf("unknown material type %q", m.Type)
	}
}

func (c cameraBlock) applyTo(config *renderer.CameraConfig) {
	if c.AspectRatio != nil {
		config.AspectRatio = *c.AspectRatio
	}
	if c.ImageWidth != nil {
		config.ImageWidth = *c.ImageWidth
	}
	if c.SamplesPerPixel != nil {
		config.SamplesPerPixel = *c.SamplesPerPixel
	}
	if c.MaxDepth != nil {
		config.MaxDepth = *c.MaxDepth
	}
	if c.VFov != nil {
		config.VFov = *c.VFov
	}
	if c.LookFrom != nil {
		config.LookFrom = core.Point3(*c.LookFrom)
	}
	if c.LookAt != nil {
		config.LookAt = core.Point3(*c.LookAt)
	}
	if c.Up != nil {
		config.Up = core.Vec3(*c.Up)
	}
	if c.DefocusAngle != nil {
		config.DefocusAngle = *c.DefocusAngle
	}
	if c.FocusDistance != nil {
		config.FocusDistance = *c.FocusDistance
	}
}
