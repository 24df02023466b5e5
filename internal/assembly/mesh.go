package assembly

import (
	"fmt"

	"github.com/Faultbox/brickscene/pkg/ldraw"
	"github.com/Faultbox/brickscene/pkg/math"
)

// Mesh is one renderable mesh in the local space of its part. Faces
// are loops of three or four corners, like the source geometry, with
// sharp edges already split so smooth per vertex normals shade
// correctly.
type Mesh struct {
	Positions []math.Vec3
	// Indices are the loop vertex indices after edge splitting. Face i
	// covers Indices[FaceStarts[i] : FaceStarts[i]+FaceSizes[i]].
	Indices    []uint32
	FaceStarts []uint32
	FaceSizes  []uint32
	// Normals are the smooth shading normals per vertex in object
	// space.
	Normals []math.Vec3
	// UVs hold one coordinate per loop entry when the geometry has
	// embedded textures, (0,0) on untextured faces. nil otherwise.
	UVs []math.Vec2
	// MaterialSlots maps each face to an entry of the mesh's material
	// key list. nil when every face uses slot 0.
	MaterialSlots []uint32
	// FaceIsStud marks the faces excluded from the grainy slope
	// effect. Present only on grainy slope parts.
	FaceIsStud []bool
}

// Build converts one geometry with resolved face colors into a mesh
// and its material keys, deduplicated in first use order. Positions
// stay in local space. Mismatched per face array lengths are reported
// as ErrMalformedGeometry with the offending key. A geometry with zero
// vertices builds an empty mesh.
func Build(key string, g *ldraw.Geometry, resolved ResolvedFaces) (*Mesh, []MaterialKey, error) {
	faceCount := len(g.FaceSizes)
	if len(g.FaceColors) != 1 && len(g.FaceColors) != faceCount {
		return nil, nil, fmt.Errorf("%w: %q has %d face colors for %d faces",
			ErrMalformedGeometry, key, len(g.FaceColors), faceCount)
	}
	if g.TextureInfo != nil {
		if len(g.TextureInfo.Indices) != faceCount {
			return nil, nil, fmt.Errorf("%w: %q has %d texture indices for %d faces",
				ErrMalformedGeometry, key, len(g.TextureInfo.Indices), faceCount)
		}
		if len(g.TextureInfo.UVs) != len(g.VertexIndices) {
			return nil, nil, fmt.Errorf("%w: %q has %d texture coordinates for %d corners",
				ErrMalformedGeometry, key, len(g.TextureInfo.UVs), len(g.VertexIndices))
		}
	}
	if !resolved.Uniform && len(resolved.PerFace) != faceCount {
		return nil, nil, fmt.Errorf("%w: %q resolved %d faces of %d",
			ErrMalformedGeometry, key, len(resolved.PerFace), faceCount)
	}

	var sharp [][2]uint32
	for i, edge := range g.Edges {
		if g.EdgeIsSharp[i] {
			sharp = append(sharp, edge)
		}
	}

	positions, indices := SplitEdges(g.Vertices, g.VertexIndices, g.FaceStartIndices, g.FaceSizes, sharp)

	mesh := &Mesh{
		Positions:  positions,
		Indices:    indices,
		FaceStarts: g.FaceStartIndices,
		FaceSizes:  g.FaceSizes,
		Normals:    vertexNormals(positions, indices, g.FaceStartIndices, g.FaceSizes),
	}
	if g.TextureInfo != nil {
		mesh.UVs = g.TextureInfo.UVs
	}
	if g.HasGrainySlopes {
		mesh.FaceIsStud = g.IsFaceStud
	}

	if resolved.Uniform {
		return mesh, []MaterialKey{resolved.Key}, nil
	}

	materials := make([]MaterialKey, 0, 1)
	slots := make([]uint32, faceCount)
	slotByKey := make(map[MaterialKey]uint32, 1)
	for f, k := range resolved.PerFace {
		slot, ok := slotByKey[k]
		if !ok {
			slot = uint32(len(materials))
			slotByKey[k] = slot
			materials = append(materials, k)
		}
		slots[f] = slot
	}
	mesh.MaterialSlots = slots
	return mesh, materials, nil
}
