package scene

import (
	"math"

	"github.com/df07/go-material-eval/pkg/core"
	"github.com/df07/go-material-eval/pkg/geometry"
	"github.com/df07/go-material-eval/pkg/material"
)

// NewMaterialGridScene places one sphere per preset on a square grid over a matte floor
func NewMaterialGridScene(cameraOverrides ...geometry.CameraConfig) *Scene {
	infos := ListPresets()
	gridSize := int(math.Ceil(math.Sqrt(float64(len(infos)))))
	spacing := 1.2
	extent := spacing * float64(gridSize-1)

	cameraConfig := mergeCamera(geometry.CameraConfig{
		Center:      core.NewVec3(extent/2, extent*0.9, extent+4),
		LookAt:      core.NewVec3(extent/2, 0.4, extent/2),
		Up:          core.NewVec3(0, 1, 0),
		Width:       480,
		AspectRatio: 4.0 / 3.0,
		VFov:        45.0,
	}, cameraOverrides)

	table := material.NewTable()
	s := &Scene{
		Camera:       geometry.NewCamera(cameraConfig),
		CameraConfig: cameraConfig,
		Materials:    table,
	}

	floor := mustPreset(table, "matte")
	s.Shapes = append(s.Shapes, NewGroundQuad(core.NewVec3(extent/2, 0, extent/2), 4*extent+20, floor))

	for i, info := range infos {
		x := float64(i%gridSize) * spacing
		z := float64(i/gridSize) * spacing
		id := mustPreset(table, info.Name)
		s.Shapes = append(s.Shapes, geometry.NewSphere(core.NewVec3(x, 0.45, z), 0.45, id))
	}
	return s
}
