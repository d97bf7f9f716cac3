package server

import (
	"math"
	"net/http"

	"github.com/df07/go-material-eval/pkg/core"
	"github.com/df07/go-material-eval/pkg/geometry"
	"github.com/df07/go-material-eval/pkg/material"
	"github.com/df07/go-material-eval/pkg/scene"
	"github.com/df07/go-material-eval/pkg/shading"
)

// InspectResponse represents the JSON response for object inspection
type InspectResponse struct {
	Hit           bool                   `json:"hit"`
	MaterialKind  string                 `json:"materialKind,omitempty"`
	MaterialName  string                 `json:"materialName,omitempty"`
	GeometryType  string                 `json:"geometryType,omitempty"`
	Point         [3]float64             `json:"point"`
	Normal        [3]float64             `json:"normal"`
	ShadingNormal [3]float64             `json:"shadingNormal"`
	UV            [2]float64             `json:"uv"`
	Distance      float64                `json:"distance"`
	Flags         string                 `json:"flags,omitempty"`
	Lambda        []float64              `json:"lambda,omitempty"`
	F             []float64              `json:"f,omitempty"`
	PDF           float64                `json:"pdf"`
	BSSRDF        bool                   `json:"bssrdf"`
	Fallback      bool                   `json:"fallback"`
	Properties    map[string]interface{} `json:"properties,omitempty"`
}

func vec(v core.Vec3) [3]float64 {
	return [3]float64{v.X, v.Y, v.Z}
}

// extractMaterialInfo describes a material, following mixes down to their children
func extractMaterialInfo(t *material.Table, m material.Material) map[string]interface{} {
	properties := map[string]interface{}{
		"kind":        m.Kind().String(),
		"description": m.String(),
		"subsurface":  m.HasSubsurfaceScattering(),
	}
	if m.GetDisplacement() != nil {
		properties["displacement"] = true
	}
	if m.GetNormalMap() != nil {
		properties["normalMap"] = true
	}
	if mix, ok := m.(*material.Mix); ok {
		properties["materials"] = []interface{}{
			extractMaterialInfo(t, t.Get(mix.GetMaterial(0))),
			extractMaterialInfo(t, t.Get(mix.GetMaterial(1))),
		}
	}
	return properties
}

// extractGeometryInfo extracts detailed geometry information
func extractGeometryInfo(shape geometry.Shape) (string, map[string]interface{}) {
	properties := make(map[string]interface{})

	switch geom := shape.(type) {
	case *geometry.Sphere:
		properties["center"] = vec(geom.Center)
		properties["radius"] = geom.Radius
		return "sphere", properties

	case *geometry.Quad:
		properties["corner"] = vec(geom.Corner)
		properties["u"] = vec(geom.U)
		properties["v"] = vec(geom.V)
		properties["normal"] = vec(geom.Normal)
		return "quad", properties

	default:
		return "unknown", properties
	}
}

// inspectPixel casts a ray through the center of the pixel and returns the
// first intersection along with the shape that produced it
func inspectPixel(scn *scene.Scene, pixelX, pixelY int) (*geometry.Intersection, geometry.Shape, bool) {
	if scn.BVH == nil {
		scn.Preprocess()
	}
	rd := scn.Camera.GenerateRay(float64(pixelX)+0.5, float64(pixelY)+0.5)
	isect, ok := scn.BVH.HitDifferential(rd, 1e-4, math.Inf(1))
	if !ok {
		return nil, nil, false
	}

	// The BVH doesn't report the shape, find the one hit at the same distance
	for _, shape := range scn.Shapes {
		if hit, ok := shape.Hit(rd.Ray, 1e-4, isect.T+1e-4); ok && hit.T == isect.T {
			return isect, shape, true
		}
	}
	return isect, nil, true
}

// handleInspect shades the surface seen through a pixel of a built-in scene
func (s *Server) handleInspect(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	name := query.Get("scene")
	if name == "" {
		name = "default"
	}
	width, err := parseIntParam(query, "width", 400, 1, 4096)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	scn, err := scene.NewScene(name, geometry.CameraConfig{Width: width})
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	pixelX, err := parseIntParam(query, "x", -1, 0, scn.Camera.Width()-1)
	if err != nil || pixelX < 0 {
		writeError(w, http.StatusBadRequest, "Invalid x coordinate")
		return
	}
	pixelY, err := parseIntParam(query, "y", -1, 0, scn.Camera.Height()-1)
	if err != nil || pixelY < 0 {
		writeError(w, http.StatusBadRequest, "Invalid y coordinate")
		return
	}

	isect, shape, ok := inspectPixel(scn, pixelX, pixelY)
	if !ok {
		writeJSON(w, http.StatusOK, InspectResponse{Hit: false})
		return
	}

	shadingScene := shading.NewScene(scn.Materials, nil)
	buf := core.NewScratchBuffer()
	p := shading.Point{Interaction: isect.Interaction, Material: isect.Material, WavelengthU: 0.5}
	rec := shading.Summarize(shadingScene, 0, p, buf)
	if rec.Err != nil {
		writeError(w, http.StatusInternalServerError, rec.Err.Error())
		return
	}
	// Shade again for the perturbed geometry, which the record does not keep
	buf.Reset()
	res, err := shading.Shade(shadingScene, p, buf)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	geometryType, geometryProps := extractGeometryInfo(shape)
	si := res.Interaction
	response := InspectResponse{
		Hit:           true,
		MaterialKind:  rec.Kind.String(),
		MaterialName:  rec.Name,
		GeometryType:  geometryType,
		Point:         vec(si.P),
		Normal:        vec(si.N),
		ShadingNormal: vec(si.Shading.N),
		UV:            [2]float64{si.UV.X, si.UV.Y},
		Distance:      isect.T,
		Flags:         rec.Flags.String(),
		Lambda:        wavelengths(rec),
		F:             rec.F[:],
		PDF:           rec.PDF,
		BSSRDF:        rec.HasBSSRDF,
		Fallback:      rec.Fallback,
		Properties: map[string]interface{}{
			"material": extractMaterialInfo(scn.Materials, scn.Materials.Get(isect.Material)),
			"geometry": geometryProps,
		},
	}
	writeJSON(w, http.StatusOK, response)
}
