package assembly

import (
	"sort"

	"github.com/chewxy/math32"

	"github.com/Faultbox/brickscene/pkg/math"
)

// sharpEdgeAngle is the face normal angle in radians from which an
// unmarked edge is still treated as sharp.
const sharpEdgeAngle float32 = 89 * math32.Pi / 180

// undirectedEdge is a vertex index pair stored low to high so both
// edge directions compare equal.
type undirectedEdge [2]uint32

func newUndirectedEdge(v0, v1 uint32) undirectedEdge {
	if v0 <= v1 {
		return undirectedEdge{v0, v1}
	}
	return undirectedEdge{v1, v0}
}

type edgeSet map[undirectedEdge]struct{}

// SplitEdges duplicates the vertices along sharp edges so the faces on
// each side stop sharing them and shade with independent normals, the
// same effect as applying an edge split before computing smooth
// normals. The marked edges are split together with any edge whose two
// adjacent face normals differ by sharpEdgeAngle or more. Face loops
// keep their corner order and sizes, only the vertex identities at the
// seams change. Vertices are assumed fully welded.
func SplitEdges(vertices []math.Vec3, vertexIndices, faceStarts, faceSizes []uint32, sharpEdges [][2]uint32) ([]math.Vec3, []uint32) {
	oldAdjacent := adjacentFaces(len(vertices), vertexIndices, faceStarts, faceSizes)

	edgesToSplit := make(edgeSet, len(sharpEdges))
	for _, e := range sharpEdges {
		edgesToSplit[newUndirectedEdge(e[0], e[1])] = struct{}{}
	}

	normals := faceNormals(vertices, vertexIndices, faceStarts, faceSizes)
	addSharpEdges(edgesToSplit, vertexIndices, faceStarts, faceSizes, oldAdjacent, normals)

	// Mark every vertex on an edge to split for duplication, in
	// ascending order so the duplicates are appended deterministically.
	marked := make(map[uint32]struct{}, 2*len(edgesToSplit))
	verticesToSplit := make([]uint32, 0, 2*len(edgesToSplit))
	for edge := range edgesToSplit {
		for _, v := range edge {
			if _, ok := marked[v]; !ok {
				marked[v] = struct{}{}
				verticesToSplit = append(verticesToSplit, v)
			}
		}
	}
	sort.Slice(verticesToSplit, func(i, j int) bool { return verticesToSplit[i] < verticesToSplit[j] })

	splitVertices, splitIndices, duplicateEdges := splitFaceVerts(
		vertices, vertexIndices, faceStarts, faceSizes, oldAdjacent, verticesToSplit)

	// Track the new vertex adjacency while merging edges.
	newAdjacent := adjacentFaces(len(splitVertices), splitIndices, faceStarts, faceSizes)

	mergeDuplicateEdges(splitIndices, vertexIndices, faceStarts, faceSizes,
		duplicateEdges, edgesToSplit, oldAdjacent, newAdjacent)

	return removeLooseVertices(splitVertices, splitIndices)
}

// addSharpEdges inserts the edges whose adjacent faces meet at
// sharpEdgeAngle or more. Boundary edges have a single adjacent face
// and are never inserted.
func addSharpEdges(edgesToSplit edgeSet, vertexIndices, faceStarts, faceSizes []uint32, adjacent [][]uint32, normals []math.Vec3) {
	for f := range faceStarts {
		face := faceIndices(f, vertexIndices, faceStarts, faceSizes)
		for j := 0; j+1 < len(face); j++ {
			v0 := face[j]
			v1 := face[j+1]
			// Welded vertices make two shared faces equivalent to a
			// shared edge.
			f0, f1, ok := firstTwoShared(adjacent[v0], adjacent[v1])
			if ok && normals[f0].AngleBetween(normals[f1]) >= sharpEdgeAngle {
				edgesToSplit[newUndirectedEdge(v0, v1)] = struct{}{}
			}
		}
	}
}

// splitFaceVerts duplicates each marked vertex once per adjacent face
// beyond the first, which keeps the original index. The returned edge
// set holds the edges incident to a duplicated vertex, which may need
// to be merged back when they were not themselves split.
func splitFaceVerts(vertices []math.Vec3, vertexIndices, faceStarts, faceSizes []uint32,
	adjacent [][]uint32, verticesToSplit []uint32) ([]math.Vec3, []uint32, edgeSet) {

	splitVertices := make([]math.Vec3, len(vertices), len(vertices)+len(verticesToSplit))
	copy(splitVertices, vertices)
	splitIndices := make([]uint32, len(vertexIndices))
	copy(splitIndices, vertexIndices)

	duplicateEdges := make(edgeSet)

	for _, vertex := range verticesToSplit {
		for i, f := range adjacent[vertex] {
			face := faceIndices(int(f), splitIndices, faceStarts, faceSizes)

			if i > 0 {
				for k, corner := range face {
					if corner == vertex {
						face[k] = uint32(len(splitVertices))
						splitVertices = append(splitVertices, splitVertices[vertex])
					}
				}
			}

			originalFace := faceIndices(int(f), vertexIndices, faceStarts, faceSizes)
			e0, e1 := findIncidentEdges(originalFace, vertex)
			duplicateEdges[e0] = struct{}{}
			duplicateEdges[e1] = struct{}{}
		}
	}

	return splitVertices, splitIndices, duplicateEdges
}

// mergeDuplicateEdges merges back the vertex duplicates along edges
// that were incident to a split vertex without being split themselves.
// Edges merge in ascending order so later merges observe the rewrites
// of earlier ones.
func mergeDuplicateEdges(splitIndices []uint32, vertexIndices, faceStarts, faceSizes []uint32,
	duplicateEdges, edgesToSplit edgeSet, oldAdjacent, newAdjacent [][]uint32) {

	for _, edge := range sortedEdges(duplicateEdges) {
		if _, split := edgesToSplit[edge]; split {
			continue
		}
		v0, v1 := edge[0], edge[1]

		// The faces incident to this edge before splitting.
		f0, f1, ok := firstTwoShared(oldAdjacent[v0], oldAdjacent[v1])
		if !ok {
			continue
		}
		mergeVertsInFaces(v0, v1, int(f0), int(f1),
			vertexIndices, faceStarts, faceSizes, splitIndices, newAdjacent)
	}
}

// mergeVertsInFaces merges an edge between two faces by pointing both
// of its vertices in every adjacent face at the copies used by f0. The
// old indexing locates the matching vertices, the new adjacency tracks
// what has already been merged.
func mergeVertsInFaces(v0, v1 uint32, f0, f1 int,
	vertexIndices, faceStarts, faceSizes, splitIndices []uint32, newAdjacent [][]uint32) {

	v0f0 := findOldVertexInFace(v0, f0, vertexIndices, splitIndices, faceStarts, faceSizes)
	v0f1 := findOldVertexInFace(v0, f1, vertexIndices, splitIndices, faceStarts, faceSizes)
	newAdjacent[v0f0] = unionSorted(newAdjacent[v0f0], newAdjacent[v0f1])

	v1f0 := findOldVertexInFace(v1, f0, vertexIndices, splitIndices, faceStarts, faceSizes)
	v1f1 := findOldVertexInFace(v1, f1, vertexIndices, splitIndices, faceStarts, faceSizes)
	newAdjacent[v1f0] = unionSorted(newAdjacent[v1f0], newAdjacent[v1f1])

	for _, faces := range [2][]uint32{newAdjacent[v0f0], newAdjacent[v1f0]} {
		for _, af := range faces {
			start := faceStarts[af]
			for i := start; i < start+faceSizes[af]; i++ {
				if vertexIndices[i] == v0 {
					splitIndices[i] = v0f0
				}
				if vertexIndices[i] == v1 {
					splitIndices[i] = v1f0
				}
			}
		}
	}
}

// removeLooseVertices drops the vertices no index references and
// renumbers the rest consecutively, preserving their relative order.
func removeLooseVertices(vertices []math.Vec3, vertexIndices []uint32) ([]math.Vec3, []uint32) {
	used := make([]uint32, 0, len(vertices))
	seen := make(map[uint32]struct{}, len(vertices))
	for _, i := range vertexIndices {
		if _, ok := seen[i]; !ok {
			seen[i] = struct{}{}
			used = append(used, i)
		}
	}
	sort.Slice(used, func(i, j int) bool { return used[i] < used[j] })

	oldToNew := make([]uint32, len(vertices))
	newVertices := make([]math.Vec3, len(used))
	for n, i := range used {
		oldToNew[i] = uint32(n)
		newVertices[n] = vertices[i]
	}

	newIndices := make([]uint32, len(vertexIndices))
	for n, i := range vertexIndices {
		newIndices[n] = oldToNew[i]
	}
	return newVertices, newIndices
}

// findOldVertexInFace returns the current index of an original vertex
// within a face, matching by position between the old and new index
// loops. The vertex is in the face by construction of the adjacency
// sets.
func findOldVertexInFace(oldVertex uint32, face int, oldIndices, newIndices, faceStarts, faceSizes []uint32) uint32 {
	old := faceIndices(face, oldIndices, faceStarts, faceSizes)
	renumbered := faceIndices(face, newIndices, faceStarts, faceSizes)
	for i, v := range old {
		if v == oldVertex {
			return renumbered[i]
		}
	}
	return oldVertex
}

// findIncidentEdges returns the two edges of a face meeting at a
// vertex. Face edges run corner to corner with the last corner closing
// back to the first.
func findIncidentEdges(face []uint32, vertex uint32) (undirectedEdge, undirectedEdge) {
	i := 0
	for j, v := range face {
		if v == vertex {
			i = j
			break
		}
	}
	prev := len(face) - 1
	if i > 0 {
		prev = i - 1
	}
	next := (i + 1) % len(face)
	return newUndirectedEdge(face[i], face[prev]), newUndirectedEdge(face[i], face[next])
}

// faceIndices returns the vertex index loop of one face as a view into
// vertexIndices.
func faceIndices(face int, vertexIndices, faceStarts, faceSizes []uint32) []uint32 {
	start := faceStarts[face]
	return vertexIndices[start : start+faceSizes[face]]
}

// adjacentFaces returns the faces using each vertex in ascending
// order.
func adjacentFaces(vertexCount int, vertexIndices, faceStarts, faceSizes []uint32) [][]uint32 {
	adjacent := make([][]uint32, vertexCount)
	for f := range faceStarts {
		for _, v := range faceIndices(f, vertexIndices, faceStarts, faceSizes) {
			faces := adjacent[v]
			if len(faces) == 0 || faces[len(faces)-1] != uint32(f) {
				adjacent[v] = append(faces, uint32(f))
			}
		}
	}
	return adjacent
}

// firstTwoShared returns the two lowest values present in both sorted
// lists. ok is false when they share fewer than two.
func firstTwoShared(a, b []uint32) (uint32, uint32, bool) {
	var first uint32
	found := false
	for i, j := 0, 0; i < len(a) && j < len(b); {
		switch {
		case a[i] < b[j]:
			i++
		case a[i] > b[j]:
			j++
		default:
			if found {
				return first, a[i], true
			}
			first = a[i]
			found = true
			i++
			j++
		}
	}
	return 0, 0, false
}

// unionSorted merges two ascending lists into one without duplicates.
func unionSorted(a, b []uint32) []uint32 {
	merged := make([]uint32, 0, len(a)+len(b))
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		switch {
		case a[i] < b[j]:
			merged = append(merged, a[i])
			i++
		case a[i] > b[j]:
			merged = append(merged, b[j])
			j++
		default:
			merged = append(merged, a[i])
			i++
			j++
		}
	}
	merged = append(merged, a[i:]...)
	merged = append(merged, b[j:]...)
	return merged
}

func sortedEdges(set edgeSet) []undirectedEdge {
	edges := make([]undirectedEdge, 0, len(set))
	for e := range set {
		edges = append(edges, e)
	}
	sort.Slice(edges, func(i, j int) bool {
		if edges[i][0] != edges[j][0] {
			return edges[i][0] < edges[j][0]
		}
		return edges[i][1] < edges[j][1]
	})
	return edges
}
