package assembly

import "github.com/Faultbox/brickscene/pkg/math"

// faceNormals returns the unit normal of every face, computed from the
// first three corners of the loop. Quads are assumed planar.
func faceNormals(vertices []math.Vec3, vertexIndices, faceStarts, faceSizes []uint32) []math.Vec3 {
	normals := make([]math.Vec3, len(faceStarts))
	for f := range faceStarts {
		face := faceIndices(f, vertexIndices, faceStarts, faceSizes)
		v1 := vertices[face[0]]
		v2 := vertices[face[1]]
		v3 := vertices[face[2]]
		normals[f] = v2.Sub(v1).Cross(v3.Sub(v1)).Normalize()
	}
	return normals
}

// vertexNormals returns the smooth shading normal of every vertex, the
// normalized sum of the adjacent face normals. Sharp seams come out of
// edge splitting rather than the averaging, so this runs on the split
// arrays.
func vertexNormals(vertices []math.Vec3, vertexIndices, faceStarts, faceSizes []uint32) []math.Vec3 {
	faces := faceNormals(vertices, vertexIndices, faceStarts, faceSizes)
	normals := make([]math.Vec3, len(vertices))
	for f := range faceStarts {
		for _, v := range faceIndices(f, vertexIndices, faceStarts, faceSizes) {
			normals[v] = normals[v].Add(faces[f])
		}
	}
	for i := range normals {
		normals[i] = normals[i].Normalize()
	}
	return normals
}
