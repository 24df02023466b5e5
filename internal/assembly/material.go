package assembly

import (
	"fmt"

	"github.com/Faultbox/brickscene/pkg/ldraw"
)

// materialIOR approximates molded ABS plastic.
const materialIOR float32 = 1.45

// transmissiveAlpha is the opacity at or below which a color renders
// as transmissive. LDraw encodes transparency as an alpha near
// 128/255.
const transmissiveAlpha float32 = 0.6

// SpeckleSpec is the secondary blend color of speckle finishes.
type SpeckleSpec struct {
	RGBALinear [4]float32
}

// MaterialGraphSpec carries every parameter a shader graph builder
// needs for one material. The assembler emits one record per distinct
// material key; turning the record into renderer nodes is up to the
// export backend.
type MaterialGraphSpec struct {
	Key     MaterialKey
	Name    string
	BaseRGB [3]float32
	Alpha   float32
	// Metallic and the roughness bounds derive from the color's
	// surface finish.
	Metallic       float32
	RoughnessMin   float32
	RoughnessMax   float32
	IsTransmissive bool
	IOR            float32
	IsGrainySlope  bool
	// Speckle is set for speckle finishes.
	Speckle *SpeckleSpec
	// TextureIndex addresses the assembly's texture list, or
	// NoTexture.
	TextureIndex int16
}

// deriveMaterial maps one resolved material key onto shader graph
// parameters. Color codes absent from the table fall back to a
// neutral near white appearance and are recorded once per distinct
// code.
func deriveMaterial(colors ldraw.ColorTable, key MaterialKey, warnings *Warnings) *MaterialGraphSpec {
	entry, ok := colors[key.Color]
	if !ok {
		warnings.missingColor(key.Color)
		return &MaterialGraphSpec{
			Key:           key,
			Name:          materialName("", key),
			BaseRGB:       [3]float32{0.9, 0.9, 0.9},
			Alpha:         1,
			RoughnessMin:  0.075,
			RoughnessMax:  0.2,
			IOR:           materialIOR,
			IsGrainySlope: key.IsGrainySlope,
			TextureIndex:  key.TextureID,
		}
	}

	spec := &MaterialGraphSpec{
		Key:           key,
		Name:          materialName(entry.Name, key),
		BaseRGB:       [3]float32{entry.RGBALinear[0], entry.RGBALinear[1], entry.RGBALinear[2]},
		Alpha:         entry.RGBALinear[3],
		IOR:           materialIOR,
		IsGrainySlope: key.IsGrainySlope,
		TextureIndex:  key.TextureID,
	}
	spec.Metallic, spec.RoughnessMin, spec.RoughnessMax = finishFactors(entry.Finish)

	spec.IsTransmissive = spec.Alpha <= transmissiveAlpha
	if spec.IsTransmissive {
		// Transparent plastic is smoother than the opaque finishes,
		// except rubber which stays visibly rough.
		if entry.Finish == ldraw.FinishRubber {
			spec.RoughnessMin, spec.RoughnessMax = 0.1, 0.35
		} else {
			spec.RoughnessMin, spec.RoughnessMax = 0.01, 0.15
		}
	}

	if entry.Finish == ldraw.FinishSpeckle && entry.SpeckleRGBALinear != nil {
		spec.Speckle = &SpeckleSpec{RGBALinear: *entry.SpeckleRGBALinear}
	}
	return spec
}

// finishFactors returns the metallic factor and roughness range of a
// surface finish.
func finishFactors(finish ldraw.ColorFinish) (metallic, roughnessMin, roughnessMax float32) {
	switch finish {
	case ldraw.FinishMatteMetallic:
		return 1, 0.075, 0.2
	case ldraw.FinishChrome:
		return 1, 0.075, 0.1
	case ldraw.FinishMetal:
		return 1, 0.15, 0.3
	case ldraw.FinishPearlescent:
		return 0.35, 0.3, 0.5
	case ldraw.FinishSpeckle:
		return 1, 0.075, 0.2
	default:
		return 0, 0.075, 0.2
	}
}

// materialName builds a stable, readable material name from the color
// and the key's variant flags.
func materialName(colorName string, key MaterialKey) string {
	name := colorName
	if name == "" {
		name = "color"
	}
	name = fmt.Sprintf("%s_%d", name, key.Color)
	if key.IsGrainySlope {
		name += "_slope"
	}
	if key.TextureID != NoTexture {
		name = fmt.Sprintf("%s_tex%d", name, key.TextureID)
	}
	return name
}
