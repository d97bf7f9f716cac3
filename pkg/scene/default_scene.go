package scene

import (
	"github.com/df07/go-material-eval/pkg/core"
	"github.com/df07/go-material-eval/pkg/geometry"
	"github.com/df07/go-material-eval/pkg/material"
)

// NewDefaultScene creates a few spheres on a dusty ground, one per material family
func NewDefaultScene(cameraOverrides ...geometry.CameraConfig) *Scene {
	cameraConfig := mergeCamera(geometry.CameraConfig{
		Center:      core.NewVec3(0, 0.75, 2),
		LookAt:      core.NewVec3(0, 0.5, -1),
		Up:          core.NewVec3(0, 1, 0),
		Width:       400,
		AspectRatio: 16.0 / 9.0,
		VFov:        40.0,
	}, cameraOverrides)

	table := material.NewTable()
	s := &Scene{
		Camera:       geometry.NewCamera(cameraConfig),
		CameraConfig: cameraConfig,
		Materials:    table,
	}

	plastic := mustPreset(table, "plastic")
	gold := mustPreset(table, "gold")
	glass := mustPreset(table, "crown-glass")
	skin := mustPreset(table, "skin")
	hammered := mustPreset(table, "hammered")
	ground := mustPreset(table, "dust")

	s.Shapes = append(s.Shapes,
		NewGroundQuad(core.NewVec3(0, 0, 0), 100, ground),
		geometry.NewSphere(core.NewVec3(0, 0.5, -1), 0.5, plastic),
		geometry.NewSphere(core.NewVec3(-1, 0.5, -1), 0.5, gold),
		geometry.NewSphere(core.NewVec3(1, 0.5, -1), 0.5, hammered),
		geometry.NewSphere(core.NewVec3(0.5, 0.25, -0.5), 0.25, glass),
		geometry.NewSphere(core.NewVec3(-0.5, 0.25, -0.5), 0.25, skin),
	)
	return s
}
