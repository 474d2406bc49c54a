package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/df07/go-sphere-raytracer/pkg/core"
	"github.com/df07/go-sphere-raytracer/pkg/output"
	"github.com/df07/go-sphere-raytracer/pkg/renderer"
)

// ErrInvalidConfig is returned when a loaded configuration fails validation
var ErrInvalidConfig = errors.New("invalid configuration")

// Unset marks a camera override whose zero value is meaningful (max depth, defocus angle)
const Unset = -1

const (
	configName = "raytracer"
	envPrefix  = "RAYTRACER"
)

// Config represents the render configuration
type Config struct {
	Scene  SceneConfig   `yaml:"scene" mapstructure:"scene"`
	Output OutputConfig  `yaml:"output" mapstructure:"output"`
	Render RenderOptions `yaml:"render" mapstructure:"render"`
	Camera CameraConfig  `yaml:"camera" mapstructure:"camera"`
}

// SceneConfig selects the scene to render. File takes precedence over Name.
type SceneConfig struct {
	Name string `yaml:"name" mapstructure:"name"`
	File string `yaml:"file" mapstructure:"file"`
}

// OutputConfig controls where the image is written. An empty path writes to
// output/<scene>/render_<timestamp>.<format>; an empty format is taken from the path.
type OutputConfig struct {
	Path   string `yaml:"path" mapstructure:"path"`
	Format string `yaml:"format" mapstructure:"format"`
}

// RenderOptions contains scheduling options for the render pass
type RenderOptions struct {
	Seed             int64 `yaml:"seed" mapstructure:"seed"`
	Workers          int   `yaml:"workers" mapstructure:"workers"`
	ProgressInterval int   `yaml:"progress_interval" mapstructure:"progress_interval"`
}

// CameraConfig overrides the scene camera. Zero values (Unset for max depth and
// defocus angle, empty for vectors) keep the scene's own setting.
type CameraConfig struct {
	ImageWidth      int       `yaml:"image_width" mapstructure:"image_width"`
	AspectRatio     float64   `yaml:"aspect_ratio" mapstructure:"aspect_ratio"`
	SamplesPerPixel int       `yaml:"samples_per_pixel" mapstructure:"samples_per_pixel"`
	MaxDepth        int       `yaml:"max_depth" mapstructure:"max_depth"`
	VFov            float64   `yaml:"vfov" mapstructure:"vfov"`
	LookFrom        []float64 `yaml:"look_from,flow" mapstructure:"look_from"`
	LookAt          []float64 `yaml:"look_at,flow" mapstructure:"look_at"`
	Up              []float64 `yaml:"up,flow" mapstructure:"up"`
	DefocusAngle    float64   `yaml:"defocus_angle" mapstructure:"defocus_angle"`
	FocusDistance   float64   `yaml:"focus_distance" mapstructure:"focus_distance"`
}

// DefaultConfig returns a default configuration
func DefaultConfig() *Config {
	render := renderer.DefaultRenderConfig()
	return &Config{
		Scene: SceneConfig{
			Name: "two-spheres",
		},
		Output: OutputConfig{
			Format: string(output.FormatPPM),
		},
		Render: RenderOptions{
			Seed:             render.Seed,
			Workers:          render.NumWorkers,
			ProgressInterval: render.ProgressInterval,
		},
		Camera: CameraConfig{
			MaxDepth:     Unset,
			DefocusAngle: Unset,
		},
	}
}

// NewViper returns a viper instance with every key defaulted, reading
// RAYTRACER_* environment variables (RAYTRACER_RENDER_SEED for render.seed)
func NewViper() *viper.Viper {
	v := viper.New()

	defaults := DefaultConfig()
	v.SetDefault("scene.name", defaults.Scene.Name)
	v.SetDefault("scene.file", defaults.Scene.File)
	v.SetDefault("output.path", defaults.Output.Path)
	v.SetDefault("output.format", defaults.Output.Format)
	v.SetDefault("render.seed", defaults.Render.Seed)
	v.SetDefault("render.workers", defaults.Render.Workers)
	v.SetDefault("render.progress_interval", defaults.Render.ProgressInterval)
	v.SetDefault("camera.image_width", defaults.Camera.ImageWidth)
	v.SetDefault("camera.aspect_ratio", defaults.Camera.AspectRatio)
	v.SetDefault("camera.samples_per_pixel", defaults.Camera.SamplesPerPixel)
	v.SetDefault("camera.max_depth", defaults.Camera.MaxDepth)
	v.SetDefault("camera.vfov", defaults.Camera.VFov)
	v.SetDefault("camera.look_from", []float64{})
	v.SetDefault("camera.look_at", []float64{})
	v.SetDefault("camera.up", []float64{})
	v.SetDefault("camera.defocus_angle", defaults.Camera.DefocusAngle)
	v.SetDefault("camera.focus_distance", defaults.Camera.FocusDistance)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return v
}

// Load reads the configuration into v and unmarshals it. With an empty
// configFile, raytracer.yaml is searched for in ., ./configs and
// $HOME/.raytracer, and a missing file is not an error.
func Load(v *viper.Viper, configFile string) (*Config, error) {
	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName(configName)
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
		if homeDir, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(homeDir, ".raytracer"))
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

// Save writes the configuration as YAML, creating the parent directory
func Save(config *Config, path string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create config directory: %w", err)
		}
	}

	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// Validate checks the configuration. Camera overrides are checked for range
// only; the merged camera is validated again when it is built.
func (c *Config) Validate() error {
	if c.Scene.Name == "" && c.Scene.File == "" {
		return invalid("a scene name or scene file is required")
	}

	if c.Output.Format != "" {
		if _, err := output.ParseFormat(c.Output.Format); err != nil {
			return invalid("%v", err)
		}
	}

	if c.Render.Workers < 0 {
		return invalid("workers %d must not be negative", c.Render.Workers)
	}
	if c.Render.ProgressInterval < 0 {
		return invalid("progress interval %d must not be negative", c.Render.ProgressInterval)
	}

	cam := c.Camera
	switch {
	case cam.ImageWidth < 0:
		return invalid("image width %d must be at least 1", cam.ImageWidth)
	case cam.AspectRatio < 0:
		return invalid("aspect ratio %v must be positive", cam.AspectRatio)
	case cam.SamplesPerPixel < 0:
		return invalid("samples per pixel %d must be at least 1", cam.SamplesPerPixel)
	case cam.MaxDepth < Unset:
		return invalid("max depth %d must not be negative", cam.MaxDepth)
	case cam.VFov < 0 || cam.VFov >= 180:
		return invalid("vertical fov %v must be in (0, 180) degrees", cam.VFov)
	case cam.DefocusAngle < 0 && cam.DefocusAngle != Unset:
		return invalid("defocus angle %v must not be negative", cam.DefocusAngle)
	case cam.FocusDistance < 0:
		return invalid("focus distance %v must be positive", cam.FocusDistance)
	}

	for name, vec := range map[string][]float64{"look_from": cam.LookFrom, "look_at": cam.LookAt, "up": cam.Up} {
		if len(vec) != 0 && len(vec) != 3 {
			return invalid("camera %s needs 3 components, got %d", name, len(vec))
		}
	}

	return nil
}

// ApplyTo returns base with every set camera override applied
func (c CameraConfig) ApplyTo(base renderer.CameraConfig) renderer.CameraConfig {
	if c.ImageWidth > 0 {
		base.ImageWidth = c.ImageWidth
	}
	if c.AspectRatio > 0 {
		base.AspectRatio = c.AspectRatio
	}
	if c.SamplesPerPixel > 0 {
		base.SamplesPerPixel = c.SamplesPerPixel
	}
	if c.MaxDepth != Unset {
		base.MaxDepth = c.MaxDepth
	}
	if c.VFov > 0 {
		base.VFov = c.VFov
	}
	if len(c.LookFrom) == 3 {
		base.LookFrom = toVec3(c.LookFrom)
	}
	if len(c.LookAt) == 3 {
		base.LookAt = toVec3(c.LookAt)
	}
	if len(c.Up) == 3 {
		base.Up = toVec3(c.Up)
	}
	if c.DefocusAngle != Unset {
		base.DefocusAngle = c.DefocusAngle
	}
	if c.FocusDistance > 0 {
		base.FocusDistance = c.FocusDistance
	}
	return base
}

// RendererConfig converts the render options for the raytracer
func (r RenderOptions) RendererConfig() renderer.RenderConfig {
	return renderer.RenderConfig{
		Seed:             r.Seed,
		NumWorkers:       r.Workers,
		ProgressInterval: r.ProgressInterval,
	}
}

func toVec3(components []float64) core.Vec3 {
	return core.NewVec3(components[0], components[1], components[2])
}

func invalid(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrInvalidConfig, fmt.Sprintf(format, args...))
}
