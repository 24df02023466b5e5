package ldraw

import (
	"github.com/chewxy/math32"

	"github.com/Faultbox/brickscene/pkg/math"
)

// NoTextureIndex marks a face without a texture in TextureInfo.Indices.
const NoTextureIndex uint8 = 0xFF

// TextureInfo is the embedded Studio texture data of a mesh.
type TextureInfo struct {
	// Textures are the PNG encoded images from PE_TEX_INFO commands.
	Textures [][]byte
	// Indices name the texture of each face, or NoTextureIndex for
	// untextured faces. Eight bit indices save memory, especially for
	// the untextured majority of parts.
	Indices []uint8
	// UVs hold a coordinate for every entry of VertexIndices, even on
	// untextured faces.
	UVs []math.Vec2
}

// newTextureInfo catches up with a mesh that was assumed to have no
// textures by filling the arrays up to this point with placeholders.
func newTextureInfo(numFaces, numCorners int) *TextureInfo {
	info := &TextureInfo{
		Indices: make([]uint8, numFaces),
		UVs:     make([]math.Vec2, numCorners),
	}
	for i := range info.Indices {
		info.Indices[i] = NoTextureIndex
	}
	return info
}

// textureInfo lazily initializes the texture data.
func (g *Geometry) textureInfo() *TextureInfo {
	if g.TextureInfo == nil {
		g.TextureInfo = newTextureInfo(len(g.FaceStartIndices), len(g.VertexIndices))
	}
	return g.TextureInfo
}

// pendingTexture is a texture waiting for the sub-file reference path
// selected by a PE_TEX_PATH command.
type pendingTexture struct {
	index    uint8
	location *textureLocation
	path     []int32
}

// textureLocation is the planar projection of a texture: a box
// placement and the projected UV range.
type textureLocation struct {
	transform math.Mat4
	pointMin  math.Vec2
	pointMax  math.Vec2
}

// textureMap assigns a texture and UV coordinates to a single face.
type textureMap struct {
	index uint8
	uvs   []math.Vec2
}

// newPendingTexture registers the embedded image of a PE_TEX_INFO
// command and returns the texture waiting for its target faces.
func newPendingTexture(cmd PeTexInfoCmd, path []int32, geometry *Geometry) (pendingTexture, bool) {
	var location *textureLocation
	if cmd.Transform != nil {
		location = &textureLocation{
			transform: cmd.Transform.Transform.Matrix(),
			pointMin:  cmd.Transform.PointMin,
			pointMax:  cmd.Transform.PointMax,
		}
	}

	info := geometry.textureInfo()
	if len(info.Textures) >= int(NoTextureIndex) {
		// Why would a single part ever have 255 or more textures?
		log.Warn("texture limit exceeded")
		return pendingTexture{}, false
	}

	index := uint8(len(info.Textures))
	info.Textures = append(info.Textures, cmd.Data)
	return pendingTexture{
		index:    index,
		location: location,
		path:     append([]int32(nil), path...),
	}, true
}

// projectTexture maps a face onto the texture. Faces with authored UVs
// use them directly. Faces without UVs are projected through the
// texture box, and faces outside the box stay untextured.
func projectTexture(texture *pendingTexture, transform math.Mat4, vertices []math.Vec3, uvs []math.Vec2) (textureMap, bool) {
	if uvs != nil {
		return textureMap{index: texture.index, uvs: uvs}, true
	}
	if texture.location == nil {
		return textureMap{}, false
	}

	matrix, boxExtents := initTextureTransform(texture.location.transform, transform)
	inverse := matrix.Inverse()
	projected := make([]math.Vec3, len(vertices))
	for i, v := range vertices {
		projected[i] = inverse.TransformVec3(v)
	}

	if !intersectPolyBox(projected, boxExtents) {
		return textureMap{}, false
	}

	min := texture.location.pointMin
	diff := texture.location.pointMax.Sub(min)
	mapped := make([]math.Vec2, len(projected))
	for i, v := range projected {
		mapped[i] = v.XZ().Sub(min).Div(diff)
	}
	return textureMap{index: texture.index, uvs: mapped}, true
}

func initTextureTransform(textureMatrix, partMatrix math.Mat4) (math.Mat4, math.Vec3) {
	scale, rotation, translation := partMatrix.Mul(textureMatrix).Decompose()
	mirroring := scale.Signum()
	mirroring.Z *= -1
	boxExtents := scale.Abs().Scale(0.5)
	rhs := math.Compose(mirroring, rotation, translation)
	return partMatrix.Inverse().Mul(rhs), boxExtents
}

func intersectPolyBox(polygon []math.Vec3, extents math.Vec3) bool {
	switch len(polygon) {
	case 3:
		return intersectTriBox([3]math.Vec3{polygon[0], polygon[1], polygon[2]}, extents)
	case 4:
		return intersectTriBox([3]math.Vec3{polygon[0], polygon[1], polygon[2]}, extents) ||
			intersectTriBox([3]math.Vec3{polygon[2], polygon[3], polygon[0]}, extents)
	default:
		return false
	}
}

// intersectTriBox tests an origin centered box against a triangle using
// the separating axis theorem.
func intersectTriBox(triangle [3]math.Vec3, extents math.Vec3) bool {
	edges := [3]math.Vec3{
		triangle[1].Sub(triangle[0]),
		triangle[2].Sub(triangle[1]),
		triangle[0].Sub(triangle[2]),
	}
	normal := edges[0].Cross(edges[1])

	for _, e := range edges {
		axes := [3]struct {
			axis math.Vec3
			max  float32
		}{
			{math.Vec3{Y: -e.Z, Z: e.Y}, extents.Y*math32.Abs(e.Z) + extents.Z*math32.Abs(e.Y)},
			{math.Vec3{X: e.Z, Z: -e.X}, extents.X*math32.Abs(e.Z) + extents.Z*math32.Abs(e.X)},
			{math.Vec3{X: -e.Y, Y: e.X}, extents.X*math32.Abs(e.Y) + extents.Y*math32.Abs(e.X)},
		}
		for _, a := range axes {
			min, max := minMax(triangle[0].Dot(a.axis), triangle[1].Dot(a.axis), triangle[2].Dot(a.axis))
			if math32.Max(-max, min) > a.max {
				return false
			}
		}
	}

	box := extents.Array()
	for dim := 0; dim < 3; dim++ {
		min, max := minMax(
			triangle[0].Array()[dim],
			triangle[1].Array()[dim],
			triangle[2].Array()[dim],
		)
		if max < -box[dim] || min > box[dim] {
			return false
		}
	}

	return normal.Dot(triangle[0]) <= normal.Abs().Dot(extents)
}

func minMax(values ...float32) (float32, float32) {
	min, max := values[0], values[0]
	for _, n := range values[1:] {
		min = math32.Min(min, n)
		max = math32.Max(max, n)
	}
	return min, max
}
