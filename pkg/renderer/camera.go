package renderer

import (
	"errors"
	"fmt"
	"math"
	"math/rand"

	"github.com/df07/go-sphere-raytracer/pkg/core"
)

// ErrInvalidCamera is returned for camera configurations that cannot form a view
var ErrInvalidCamera = errors.New("invalid camera configuration")

// CameraConfig contains the flat camera and sampling parameters
type CameraConfig struct {
	AspectRatio     float64     // Ratio of image width over height
	ImageWidth      int         // Rendered image width in pixel count
	SamplesPerPixel int         // Count of random samples for each pixel
	MaxDepth        int         // Maximum number of ray bounces into scene
	VFov            float64     // Vertical view angle (field of view) in degrees
	LookFrom        core.Point3 // Point camera is looking from
	LookAt          core.Point3 // Point camera is looking at
	Up              core.Vec3   // Camera-relative "up" direction
	DefocusAngle    float64     // Variation angle of rays through each pixel in degrees
	FocusDistance   float64     // Distance from camera look-from point to plane of perfect focus
}

// DefaultCameraConfig returns sensible default values
func DefaultCameraConfig() CameraConfig {
	return CameraConfig{
		AspectRatio:     16.0 / 9.0,
		ImageWidth:      400,
		SamplesPerPixel: 100,
		MaxDepth:        50,
		VFov:            90,
		LookFrom:        core.NewVec3(0, 0, 0),
		LookAt:          core.NewVec3(0, 0, -1),
		Up:              core.NewVec3(0, 1, 0),
		DefocusAngle:    0,
		FocusDistance:   1,
	}
}

// Validate reports whether the configuration can build a camera
func (c CameraConfig) Validate() error {
	switch {
	case c.ImageWidth < 1:
		return fmt.Errorf("%w: image width %d must be at least 1", ErrInvalidCamera, c.ImageWidth)
	case !(c.AspectRatio > 0) || math.IsInf(c.AspectRatio, 0):
		return fmt.Errorf("%w: aspect ratio %v must be positive", ErrInvalidCamera, c.AspectRatio)
	case c.SamplesPerPixel < 1:
		return fmt.Errorf("%w: samples per pixel %d must be at least 1", ErrInvalidCamera, c.SamplesPerPixel)
	case c.MaxDepth < 0:
		return fmt.Errorf("%w: max depth %d must not be negative", ErrInvalidCamera, c.MaxDepth)
	case !(c.VFov > 0 && c.VFov < 180):
		return fmt.Errorf("%w: vertical fov %v must be in (0, 180) degrees", ErrInvalidCamera, c.VFov)
	case !(c.FocusDistance > 0):
		return fmt.Errorf("%w: focus distance %v must be positive", ErrInvalidCamera, c.FocusDistance)
	case !(c.DefocusAngle >= 0 && c.DefocusAngle < 180):
		return fmt.Errorf("%w: defocus angle %v must be in [0, 180) degrees", ErrInvalidCamera, c.DefocusAngle)
	}

	view := c.LookFrom.Subtract(c.LookAt)
	if view.NearZero() {
		return fmt.Errorf("%w: look-from and look-at are the same point", ErrInvalidCamera)
	}
	if c.Up.Cross(view).NearZero() {
		return fmt.Errorf("%w: up vector is parallel to the view direction", ErrInvalidCamera)
	}
	return nil
}

// Camera generates rays for rendering. All derived state is fixed at construction.
type Camera struct {
	config       CameraConfig
	imageHeight  int
	center       core.Point3 // Camera center
	pixel00      core.Point3 // Location of pixel 0, 0
	pixelDeltaU  core.Vec3   // Offset to pixel to the right
	pixelDeltaV  core.Vec3   // Offset to pixel below
	u, v, w      core.Vec3   // Camera frame basis vectors
	defocusDiskU core.Vec3   // Defocus disk horizontal radius
	defocusDiskV core.Vec3   // Defocus disk vertical radius
}

// NewCamera derives viewport and lens geometry from the configuration
func NewCamera(config CameraConfig) (*Camera, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	imageHeight := max(1, int(float64(config.ImageWidth)/config.AspectRatio))
	center := config.LookFrom

	// Viewport dimensions
	theta := degreesToRadians(config.VFov)
	h := math.Tan(theta / 2)
	viewportHeight := 2 * h * config.FocusDistance
	viewportWidth := viewportHeight * (float64(config.ImageWidth) / float64(imageHeight))

	// Orthonormal basis for the camera frame
	w := config.LookFrom.Subtract(config.LookAt).UnitVector()
	u := config.Up.Cross(w).UnitVector()
	v := w.Cross(u)

	// Vectors across the horizontal and down the vertical viewport edges
	viewportU := u.Multiply(viewportWidth)
	viewportV := v.Negate().Multiply(viewportHeight)

	pixelDeltaU := viewportU.Divide(float64(config.ImageWidth))
	pixelDeltaV := viewportV.Divide(float64(imageHeight))

	viewportUpperLeft := center.
		Subtract(w.Multiply(config.FocusDistance)).
		Subtract(viewportU.Divide(2)).
		Subtract(viewportV.Divide(2))
	pixel00 := viewportUpperLeft.Add(pixelDeltaU.Add(pixelDeltaV).Multiply(0.5))

	defocusRadius := config.FocusDistance * math.Tan(degreesToRadians(config.DefocusAngle/2))

	return &Camera{
		config:       config,
		imageHeight:  imageHeight,
		center:       center,
		pixel00:      pixel00,
		pixelDeltaU:  pixelDeltaU,
		pixelDeltaV:  pixelDeltaV,
		u:            u,
		v:            v,
		w:            w,
		defocusDiskU: u.Multiply(defocusRadius),
		defocusDiskV: v.Multiply(defocusRadius),
	}, nil
}

// GetRay returns a randomly sampled ray through pixel (i, j).
// The ray starts on the defocus disk when the defocus angle is positive.
func (c *Camera) GetRay(i, j int, random *rand.Rand) core.Ray {
	offsetX := random.Float64() - 0.5
	offsetY := random.Float64() - 0.5
	pixelSample := c.pixel00.
		Add(c.pixelDeltaU.Multiply(float64(i) + offsetX)).
		Add(c.pixelDeltaV.Multiply(float64(j) + offsetY))

	origin := c.center
	if c.config.DefocusAngle > 0 {
		origin = c.defocusDiskSample(random)
	}

	return core.NewRay(origin, pixelSample.Subtract(origin))
}

// defocusDiskSample returns a random point on the camera defocus disk
func (c *Camera) defocusDiskSample(random *rand.Rand) core.Point3 {
	p := core.RandomInUnitDisk(random)
	return c.center.Add(c.defocusDiskU.Multiply(p.X)).Add(c.defocusDiskV.Multiply(p.Y))
}

// Config returns the configuration the camera was built from
func (c *Camera) Config() CameraConfig { return c.config }

// ImageWidth returns the rendered image width in pixels
func (c *Camera) ImageWidth() int { return c.config.ImageWidth }

// ImageHeight returns the rendered image height in pixels
func (c *Camera) ImageHeight() int { return c.imageHeight }

// Center returns the camera center
func (c *Camera) Center() core.Point3 { return c.center }

// Pixel00 returns the location of the upper-left pixel center
func (c *Camera) Pixel00() core.Point3 { return c.pixel00 }

// PixelDeltaU returns the offset from one pixel to the next on the right
func (c *Camera) PixelDeltaU() core.Vec3 { return c.pixelDeltaU }

// PixelDeltaV returns the offset from one pixel to the next below
func (c *Camera) PixelDeltaV() core.Vec3 { return c.pixelDeltaV }

// DefocusDiskU returns the horizontal defocus disk radius vector
func (c *Camera) DefocusDiskU() core.Vec3 { return c.defocusDiskU }

// DefocusDiskV returns the vertical defocus disk radius vector
func (c *Camera) DefocusDiskV() core.Vec3 { return c.defocusDiskV }

// Basis returns the camera frame: u right, v up, w opposite the view direction
func (c *Camera) Basis() (u, v, w core.Vec3) { return c.u, c.v, c.w }

func degreesToRadians(degrees float64) float64 {
	return degrees * math.Pi / 180.0
}
