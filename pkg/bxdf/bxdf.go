package bxdf

import (
	"fmt"
	"strings"

	"github.com/df07/go-material-eval/pkg/core"
	"github.com/df07/go-material-eval/pkg/spectrum"
)

// TransportMode tells a BxDF whether it carries radiance (from the camera)
// or importance (from the lights). Refraction scales the two differently.
type TransportMode int

const (
	Radiance TransportMode = iota
	Importance
)

// Flip returns the opposite transport mode
func (m TransportMode) Flip() TransportMode {
	if m == Radiance {
		return Importance
	}
	return Radiance
}

func (m TransportMode) String() string {
	if m == Radiance {
		return "Radiance"
	}
	return "Importance"
}

// ReflTransFlags restricts sampling to reflection, transmission or both
type ReflTransFlags uint8

const (
	SampleReflection   ReflTransFlags = 1 << 0
	SampleTransmission ReflTransFlags = 1 << 1
	SampleAll                         = SampleReflection | SampleTransmission
)

// Flags describes the kind of scattering a BxDF performs
type Flags uint8

const (
	Unset        Flags = 0
	Reflection   Flags = 1 << 0
	Transmission Flags = 1 << 1
	Diffuse      Flags = 1 << 2
	Glossy       Flags = 1 << 3
	Specular     Flags = 1 << 4

	DiffuseReflection    = Diffuse | Reflection
	DiffuseTransmission  = Diffuse | Transmission
	GlossyReflection     = Glossy | Reflection
	GlossyTransmission   = Glossy | Transmission
	SpecularReflection   = Specular | Reflection
	SpecularTransmission = Specular | Transmission
	All                  = Diffuse | Glossy | Specular | Reflection | Transmission
)

// IsReflective reports whether the reflection bit is set
func (f Flags) IsReflective() bool { return f&Reflection != 0 }

// IsTransmissive reports whether the transmission bit is set
func (f Flags) IsTransmissive() bool { return f&Transmission != 0 }

// IsDiffuse reports whether the diffuse bit is set
func (f Flags) IsDiffuse() bool { return f&Diffuse != 0 }

// IsGlossy reports whether the glossy bit is set
func (f Flags) IsGlossy() bool { return f&Glossy != 0 }

// IsSpecular reports whether the specular bit is set
func (f Flags) IsSpecular() bool { return f&Specular != 0 }

// IsNonSpecular reports whether any diffuse or glossy component is present
func (f Flags) IsNonSpecular() bool { return f&(Diffuse|Glossy) != 0 }

func (f Flags) String() string {
	if f == Unset {
		return "Unset"
	}
	var parts []string
	for _, p := range []struct {
		bit  Flags
		name string
	}{{Reflection, "Reflection"}, {Transmission, "Transmission"}, {Diffuse, "Diffuse"}, {Glossy, "Glossy"}, {Specular, "Specular"}} {
		if f&p.bit != 0 {
			parts = append(parts, p.name)
		}
	}
	return strings.Join(parts, "|")
}

// Sample is the result of sampling a BxDF
type Sample struct {
	F                 spectrum.SampledSpectrum
	Wi                core.Vec3
	PDF               float64
	Flags             Flags
	Eta               float64
	PDFIsProportional bool
}

// IsReflection reports whether the sampled direction was reflected
func (s Sample) IsReflection() bool { return s.Flags.IsReflective() }

// IsTransmission reports whether the sampled direction was transmitted
func (s Sample) IsTransmission() bool { return s.Flags.IsTransmissive() }

// IsSpecular reports whether the sample came from a delta lobe
func (s Sample) IsSpecular() bool { return s.Flags.IsSpecular() }

func (s Sample) String() string {
	return fmt.Sprintf("[ Sample f: %v wi: %v pdf: %g flags: %v eta: %g ]", s.F, s.Wi, s.PDF, s.Flags, s.Eta)
}

// BxDF is a scattering kernel expressed in the local shading frame, where the
// shading normal is +Z. Concrete kernels are allocated per shading point.
type BxDF interface {
	Flags() Flags
	F(wo, wi core.Vec3, mode TransportMode) spectrum.SampledSpectrum
	SampleF(wo core.Vec3, uc float64, u core.Vec2, mode TransportMode, sampleFlags ReflTransFlags) (Sample, bool)
	PDF(wo, wi core.Vec3, mode TransportMode, sampleFlags ReflTransFlags) float64
}

func newSample(f spectrum.SampledSpectrum, wi core.Vec3, pdf float64, flags Flags) Sample {
	return Sample{F: f, Wi: wi, PDF: pdf, Flags: flags, Eta: 1}
}
