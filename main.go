package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/df07/go-sphere-raytracer/pkg/config"
	"github.com/df07/go-sphere-raytracer/pkg/core"
	"github.com/df07/go-sphere-raytracer/pkg/output"
	"github.com/df07/go-sphere-raytracer/pkg/renderer"
	"github.com/df07/go-sphere-raytracer/pkg/scene"
	"github.com/df07/go-sphere-raytracer/web/server"
)

const appName = "raytracer"

// app carries the state shared by the commands of one invocation
type app struct {
	viper      *viper.Viper
	configFile string
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	a := &app{viper: config.NewViper()}

	rootCmd := &cobra.Command{
		Use:   appName,
		Short: "Monte Carlo sphere raytracer",
		Long: `Renders scenes made of diffuse, metal and glass spheres with recursive
Monte Carlo ray tracing, antialiasing and depth of field, and writes the
image as PPM (P3) or PNG.

Configuration is read from raytracer.yaml in ., ./configs or
$HOME/.raytracer, from RAYTRACER_* environment variables and from flags.`,
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().StringVar(&a.configFile, "config", "", "config file (default: search for raytracer.yaml)")

	rootCmd.AddCommand(a.newRenderCmd(), a.newScenesCmd(), a.newInitCmd(), a.newServeCmd())
	return rootCmd
}

func (a *app) newRenderCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render a scene to an image file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(a.viper, a.configFile)
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()

			return render(ctx, cfg, renderer.NewDefaultLogger())
		},
	}

	flags := cmd.Flags()
	flags.String("scene", "two-spheres", "builtin scene name (see 'raytracer scenes')")
	flags.String("scene-file", "", "YAML scene file, takes precedence over --scene")
	flags.StringP("output", "o", "", "output file (default: output/<scene>/render_<timestamp>.<format>)")
	flags.String("format", "", "output format: ppm or png (default: from output extension, else ppm)")
	flags.Int("width", 0, "image width in pixels (0 keeps the scene value)")
	flags.Float64("aspect", 0, "aspect ratio width/height (0 keeps the scene value)")
	flags.Int("samples", 0, "samples per pixel (0 keeps the scene value)")
	flags.Int("depth", config.Unset, "maximum ray bounces (-1 keeps the scene value)")
	flags.Int64("seed", renderer.DefaultRenderConfig().Seed, "random seed")
	flags.Int("workers", 0, "parallel scanline workers (0 = number of CPUs)")

	for key, flag := range map[string]string{
		"scene.name":               "scene",
		"scene.file":               "scene-file",
		"output.path":              "output",
		"output.format":            "format",
		"camera.image_width":       "width",
		"camera.aspect_ratio":      "aspect",
		"camera.samples_per_pixel": "samples",
		"camera.max_depth":         "depth",
		"render.seed":              "seed",
		"render.workers":           "workers",
	} {
		_ = a.viper.BindPFlag(key, flags.Lookup(flag))
	}

	return cmd
}

func (a *app) newScenesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "scenes",
		Short: "List the builtin scenes",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			out := cmd.OutOrStdout()
			for _, info := range scene.List() {
				fmt.Fprintf(out, "  %-12s %s\n", info.Name, info.Description)
			}
		},
	}
}

func (a *app) newInitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init [path]",
		Short: "Write the effective configuration to a YAML file",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "raytracer.yaml"
			if len(args) == 1 {
				path = args[0]
			}

			cfg, err := config.Load(a.viper, a.configFile)
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			if err := config.Save(cfg, path); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Configuration saved to: %s\n", path)
			return nil
		},
	}
}

func (a *app) newServeCmd() *cobra.Command {
	var port int
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve renders over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			log.Printf("Visit http://localhost:%d/api/render?scene=materials to start rendering", port)
			return server.NewServer(port).Start()
		},
	}
	cmd.Flags().IntVar(&port, "port", 8080, "port to serve on")
	return cmd
}

// render builds and renders the configured scene and writes the image
func render(ctx context.Context, cfg *config.Config, logger core.Logger) error {
	selectedScene, err := createScene(cfg.Scene)
	if err != nil {
		return err
	}
	selectedScene.CameraConfig = cfg.Camera.ApplyTo(selectedScene.CameraConfig)

	camera, err := selectedScene.Camera()
	if err != nil {
		return err
	}

	path, format, err := resolveOutput(cfg.Output, selectedScene.Name, time.Now())
	if err != nil {
		return err
	}

	logger.Printf("Rendering scene %q (%d spheres)\n", selectedScene.Name, selectedScene.GetPrimitiveCount())

	raytracer := renderer.NewRaytracer(selectedScene.World, camera, cfg.Render.RendererConfig(), logger)
	frame, stats, err := raytracer.Render(ctx)
	if err != nil {
		return err
	}

	if err := writeImage(path, frame, format); err != nil {
		return err
	}

	logger.Printf("Mean luminance: %.4f (stddev %.4f), %d rays, max bounce %d\n",
		stats.MeanLuminance, stats.StdDevLuminance, stats.TotalRays, stats.MaxBounces)
	logger.Printf("Render saved as %s\n", path)
	return nil
}

// createScene loads the scene file if one is given, otherwise the named builtin
func createScene(sc config.SceneConfig) (*scene.Scene, error) {
	if sc.File != "" {
		return scene.LoadFile(sc.File)
	}
	return scene.Lookup(sc.Name)
}

// resolveOutput picks the output path and format. Without a path the image goes
// to output/<scene>/render_<timestamp>.<format>.
func resolveOutput(oc config.OutputConfig, sceneName string, now time.Time) (string, output.Format, error) {
	var format output.Format
	switch {
	case oc.Format != "":
		f, err := output.ParseFormat(oc.Format)
		if err != nil {
			return "", "", err
		}
		format = f
	case oc.Path != "":
		format = output.FormatFromPath(oc.Path)
	default:
		format = output.FormatPPM
	}

	if oc.Path != "" {
		return oc.Path, format, nil
	}

	name := sanitizeName(sceneName)
	timestamp := now.Format("20060102_150405")
	return filepath.Join("output", name, fmt.Sprintf("render_%s.%s", timestamp, format)), format, nil
}

// sanitizeName turns a scene name into a single path element
func sanitizeName(name string) string {
	name = strings.Map(func(r rune) rune {
		if r == '/' || r == '\\' || r == ' ' {
			return '-'
		}
		return r
	}, strings.TrimSpace(name))
	if name == "" || name == "." || name == ".." {
		return "scene"
	}
	return name
}

// writeImage creates the parent directory and encodes the frame
func writeImage(path string, frame *renderer.Frame, format output.Format) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("error creating output directory: %w", err)
		}
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("error creating file: %w", err)
	}

	if err := output.Encode(file, frame, format); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}
