package scene

import (
	"errors"
	"fmt"
	"sort"
)

// ErrUnknownScene is returned by Lookup for names that are not registered
var ErrUnknownScene = errors.New("unknown scene")

// SceneInfo describes a builtin scene
type SceneInfo struct {
	Name        string `json:"name" yaml:"name"`
	Description string `json:"description" yaml:"description"`
}

type builtinScene struct {
	info  SceneInfo
	build func() *Scene
}

var builtins = map[string]builtinScene{
	"two-spheres": {
		info:  SceneInfo{Name: "two-spheres", Description: "Diffuse sphere resting on a large ground sphere"},
		build: NewTwoSpheresScene,
	},
	"materials": {
		info:  SceneInfo{Name: "materials", Description: "Diffuse, hollow glass and fuzzy metal spheres side by side"},
		build: NewMaterialsScene,
	},
	"final": {
		info:  SceneInfo{Name: "final", Description: "Random field of small spheres around three large ones, with defocus blur"},
		build: func() *Scene { return NewFinalScene(finalSceneSeed) },
	},
}

// List returns the builtin scenes sorted by name
func List() []SceneInfo {
	scenes := make([]SceneInfo, 0, len(builtins))
	for _, b := range builtins {
		scenes = append(scenes, b.info)
	}
	sort.Slice(scenes, func(i, j int) bool {
		return scenes[i].Name < scenes[j].Name
	})
	return scenes
}

// Lookup builds a new instance of the named builtin scene
func Lookup(name string) (*Scene, error) {
	b, ok := builtins[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownScene, name)
	}
	return b.build(), nil
}
