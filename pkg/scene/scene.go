package scene

import (
	"errors"
	"fmt"
	"math/rand"
	"sort"

	"github.com/df07/go-material-eval/pkg/core"
	"github.com/df07/go-material-eval/pkg/geometry"
	"github.com/df07/go-material-eval/pkg/log"
	"github.com/df07/go-material-eval/pkg/material"
	"github.com/df07/go-material-eval/pkg/shading"
)

var logger = log.New("scene")

// ErrUnknownScene is returned for scene names that are not built in
var ErrUnknownScene = errors.New("unknown scene")

// Scene contains the geometry and materials to probe through a camera
type Scene struct {
	Camera       *geometry.Camera
	CameraConfig geometry.CameraConfig
	Shapes       []geometry.Shape
	Materials    *material.Table
	BVH          *geometry.BVH
}

// PixelPoint is a shading point found by a primary ray
type PixelPoint struct {
	X, Y  int
	Point shading.Point
}

// NewGroundQuad creates a horizontal quad centered at the given point with normal pointing up (0,1,0).
// u × v = (0,0,size) × (size,0,0) = (0,size²,0).
func NewGroundQuad(center core.Vec3, size float64, mat material.MaterialID) *geometry.Quad {
	corner := core.NewVec3(center.X-size/2, center.Y, center.Z-size/2)
	u := core.NewVec3(0, 0, size)
	v := core.NewVec3(size, 0, 0)
	return geometry.NewQuad(corner, u, v, mat)
}

// mustPreset adds a preset that is known to exist
func mustPreset(t *material.Table, name string) material.MaterialID {
	id, err := AddPreset(t, name)
	core.CheckFatal(err == nil, "built-in scene: %v", err)
	return id
}

// Preprocess builds the acceleration structure
func (s *Scene) Preprocess() {
	s.BVH = geometry.NewBVH(s.Shapes)
	logger.Debugf("Built BVH over %d shapes, %d materials", len(s.Shapes), s.Materials.Len())
}

// ShadingPoints traces one primary ray through every stride'th pixel, jittered
// within the pixel by random, and returns the hits. Differentials are scaled to
// the stride so texture filtering matches the sampling rate.
func (s *Scene) ShadingPoints(stride int, random *rand.Rand) []PixelPoint {
	if s.BVH == nil {
		s.Preprocess()
	}
	if stride < 1 {
		stride = 1
	}

	var points []PixelPoint
	for y := 0; y < s.Camera.Height(); y += stride {
		for x := 0; x < s.Camera.Width(); x += stride {
			rd := s.Camera.GenerateRay(float64(x)+random.Float64(), float64(y)+random.Float64())
			rd.ScaleDifferentials(float64(stride))
			isect, ok := s.BVH.HitDifferential(rd, 1e-4, 1e9)
			wavelengthU := random.Float64()
			if !ok {
				continue
			}
			points = append(points, PixelPoint{
				X: x,
				Y: y,
				Point: shading.Point{
					Interaction: isect.Interaction,
					Material:    isect.Material,
					WavelengthU: wavelengthU,
				},
			})
		}
	}
	return points
}

type sceneBuilder func(cameraOverrides ...geometry.CameraConfig) *Scene

var builtins = map[string]sceneBuilder{
	"default":       NewDefaultScene,
	"material-grid": NewMaterialGridScene,
}

// ListScenes returns the names of the built-in scenes
func ListScenes() []string {
	names := make([]string, 0, len(builtins))
	for name := range builtins {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// NewScene builds the named built-in scene
func NewScene(name string, cameraOverrides ...geometry.CameraConfig) (*Scene, error) {
	build, ok := builtins[name]
	if !ok {
		return nil, fmt.Errorf("%q: %w", name, ErrUnknownScene)
	}
	return build(cameraOverrides...), nil
}

func mergeCamera(defaults geometry.CameraConfig, overrides []geometry.CameraConfig) geometry.CameraConfig {
	if len(overrides) > 0 {
		return geometry.MergeCameraConfig(defaults, overrides[0])
	}
	return defaults
}
