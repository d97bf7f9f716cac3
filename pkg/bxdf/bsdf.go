package bxdf

import (
	"github.com/df07/go-material-eval/pkg/core"
	"github.com/df07/go-material-eval/pkg/spectrum"
)

// BSDF pairs a scattering kernel with the shading frame it lives in and
// converts between render space and the kernel's local space.
type BSDF struct {
	bxdf  BxDF
	frame core.Frame
}

// NewBSDF builds the shading frame from the shading normal and dp/du
func NewBSDF(ns, dpdus core.Vec3, bxdf BxDF) BSDF {
	x := core.GramSchmidt(dpdus, ns).Normalize()
	if x.IsZero() {
		return BSDF{bxdf: bxdf, frame: core.FrameFromZ(ns)}
	}
	return BSDF{bxdf: bxdf, frame: core.FrameFromXZ(x, ns)}
}

// IsValid reports whether the BSDF wraps a kernel
func (b BSDF) IsValid() bool {
	return b.bxdf != nil
}

// BxDF returns the wrapped kernel
func (b BSDF) BxDF() BxDF {
	return b.bxdf
}

// Frame returns the shading frame
func (b BSDF) Frame() core.Frame {
	return b.frame
}

// Flags returns the flags of the wrapped kernel
func (b BSDF) Flags() Flags {
	return b.bxdf.Flags()
}

// RenderToLocal converts a render-space direction to the shading frame
func (b BSDF) RenderToLocal(v core.Vec3) core.Vec3 {
	return b.frame.ToLocal(v)
}

// LocalToRender converts a shading-frame direction to render space
func (b BSDF) LocalToRender(v core.Vec3) core.Vec3 {
	return b.frame.FromLocal(v)
}

// F evaluates the BSDF for a pair of render-space directions
func (b BSDF) F(woRender, wiRender core.Vec3, mode TransportMode) spectrum.SampledSpectrum {
	wi, wo := b.RenderToLocal(wiRender), b.RenderToLocal(woRender)
	if wo.Z == 0 {
		return spectrum.SampledSpectrum{}
	}
	return b.bxdf.F(wo, wi, mode)
}

// SampleF samples an incident direction. The returned direction is in render space.
func (b BSDF) SampleF(woRender core.Vec3, u float64, u2 core.Vec2, mode TransportMode, sampleFlags ReflTransFlags) (Sample, bool) {
	wo := b.RenderToLocal(woRender)
	if wo.Z == 0 || uint8(b.bxdf.Flags())&uint8(sampleFlags) == 0 {
		return Sample{}, false
	}
	bs, ok := b.bxdf.SampleF(wo, u, u2, mode, sampleFlags)
	if !ok || bs.F.IsZero() || bs.PDF == 0 || bs.Wi.Z == 0 {
		return Sample{}, false
	}
	bs.Wi = b.LocalToRender(bs.Wi)
	return bs, true
}

// PDF returns the density of sampling wiRender given woRender
func (b BSDF) PDF(woRender, wiRender core.Vec3, mode TransportMode, sampleFlags ReflTransFlags) float64 {
	wo, wi := b.RenderToLocal(woRender), b.RenderToLocal(wiRender)
	if wo.Z == 0 {
		return 0
	}
	return b.bxdf.PDF(wo, wi, mode, sampleFlags)
}
