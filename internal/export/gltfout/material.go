package gltfout

import (
	"bytes"
	"fmt"

	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"

	"github.com/Faultbox/brickscene/internal/assembly"
)

// writeTextures embeds each PNG and returns glTF texture indices
// aligned with the assembly's texture ids.
func writeTextures(doc *gltf.Document, textures [][]byte) ([]int, error) {
	indices := make([]int, len(textures))
	for i, data := range textures {
		img, err := modeler.WriteImage(doc, fmt.Sprintf("texture_%d", i), "image/png", bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("embedding texture %d: %w", i, err)
		}
		doc.Textures = append(doc.Textures, &gltf.Texture{Source: gltf.Index(img)})
		indices[i] = len(doc.Textures) - 1
	}
	return indices, nil
}

// writeMaterials maps material specs onto glTF PBR materials, returning
// the document index per spec. The finish derivation already happened in
// the assembler; here the roughness range collapses to its midpoint and
// transmissive materials switch to alpha blending.
func writeMaterials(doc *gltf.Document, specs []*assembly.MaterialGraphSpec, textureIndex []int) map[*assembly.MaterialGraphSpec]int {
	index := make(map[*assembly.MaterialGraphSpec]int, len(specs))
	for _, spec := range specs {
		pbr := &gltf.PBRMetallicRoughness{
			BaseColorFactor: &[4]float64{
				float64(spec.BaseRGB[0]),
				float64(spec.BaseRGB[1]),
				float64(spec.BaseRGB[2]),
				float64(spec.Alpha),
			},
			MetallicFactor:  gltf.Float(float64(spec.Metallic)),
			RoughnessFactor: gltf.Float(float64(spec.RoughnessMin+spec.RoughnessMax) / 2),
		}
		if spec.TextureIndex != assembly.NoTexture {
			pbr.BaseColorTexture = &gltf.TextureInfo{Index: textureIndex[spec.TextureIndex]}
		}

		mat := &gltf.Material{
			Name:                 spec.Name,
			PBRMetallicRoughness: pbr,
			AlphaMode:            gltf.AlphaOpaque,
			// Parts mix winding between certified and uncertified
			// files, so geometry stays visible from both sides.
			DoubleSided: true,
		}
		if spec.IsTransmissive {
			mat.AlphaMode = gltf.AlphaBlend
		}

		index[spec] = len(doc.Materials)
		doc.Materials = append(doc.Materials, mat)
	}
	return index
}
