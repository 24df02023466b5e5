package assembly

import "github.com/Faultbox/brickscene/pkg/ldraw"

// NoTexture marks a material without a texture.
const NoTexture int16 = -1

// MaterialKey identifies one required appearance. Faces that resolve
// to the same key share a material, so equality here drives every
// material and mesh level cache.
type MaterialKey struct {
	Color         uint32
	IsGrainySlope bool
	// TextureID indexes the geometry's embedded textures, or
	// NoTexture.
	TextureID int16
}

// ResolvedFaces is the outcome of color substitution for one geometry.
// Either Key applies to every face or PerFace holds one key per face.
type ResolvedFaces struct {
	Uniform bool
	Key     MaterialKey
	PerFace []MaterialKey
}

// Resolve substitutes the inherited color code 16 with currentColor
// and pairs every face with its material key. The grainy slope flag
// and texture indices come from the geometry, not the color table.
// The result is uniform when the geometry stores a single face color
// and a single texture state. A currentColor of 16 substitutes
// literally; root nodes must supply a concrete color.
//
// Resolve runs once per cache miss. Cache hits reuse the keys stored
// in the entry instead of resolving again.
func Resolve(currentColor uint32, g *ldraw.Geometry) ResolvedFaces {
	if len(g.FaceColors) == 1 && uniformTexture(g) {
		return ResolvedFaces{Uniform: true, Key: MaterialKey{
			Color:         ldraw.ReplaceColor(g.FaceColors[0], currentColor),
			IsGrainySlope: g.HasGrainySlopes,
			TextureID:     textureIndex(g, 0),
		}}
	}

	perFace := make([]MaterialKey, len(g.FaceSizes))
	for f := range perFace {
		perFace[f] = MaterialKey{
			Color:         ldraw.ReplaceColor(faceColor(g, f), currentColor),
			IsGrainySlope: g.HasGrainySlopes,
			TextureID:     textureIndex(g, f),
		}
	}
	return ResolvedFaces{PerFace: perFace}
}

// faceColor returns the stored color of a face, falling back to the
// shared color when the geometry collapsed to a single entry.
// Mismatched color counts are reported by Build, not here.
func faceColor(g *ldraw.Geometry, f int) uint32 {
	if f < len(g.FaceColors) {
		return g.FaceColors[f]
	}
	if len(g.FaceColors) > 0 {
		return g.FaceColors[0]
	}
	return ldraw.CurrentColor
}

// textureIndex returns the texture of a face as a material texture id.
func textureIndex(g *ldraw.Geometry, f int) int16 {
	if g.TextureInfo == nil || f >= len(g.TextureInfo.Indices) {
		return NoTexture
	}
	idx := g.TextureInfo.Indices[f]
	if idx == ldraw.NoTextureIndex {
		return NoTexture
	}
	return int16(idx)
}

// uniformTexture reports whether every face shares one texture state.
// A geometry with differing per face textures needs per face keys even
// when its colors collapsed to a single entry.
func uniformTexture(g *ldraw.Geometry) bool {
	if g.TextureInfo == nil || len(g.TextureInfo.Indices) == 0 {
		return true
	}
	for _, idx := range g.TextureInfo.Indices[1:] {
		if idx != g.TextureInfo.Indices[0] {
			return false
		}
	}
	return true
}
