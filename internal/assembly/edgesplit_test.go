package assembly

import (
	"reflect"
	"testing"

	"github.com/Faultbox/brickscene/pkg/math"
)

func v3(f float32) math.Vec3 {
	return math.Vec3{X: f, Y: f, Z: f}
}

func TestSplitEdges(t *testing.T) {
	tests := []struct {
		name         string
		vertices     []math.Vec3
		indices      []uint32
		starts       []uint32
		sizes        []uint32
		sharpEdges   [][2]uint32
		wantVertices []math.Vec3
		wantIndices  []uint32
	}{
		{
			// A single face has no edges to split.
			name:         "triangle",
			vertices:     []math.Vec3{v3(0), v3(1), v3(2)},
			indices:      []uint32{0, 1, 2},
			starts:       []uint32{0},
			sizes:        []uint32{3},
			wantVertices: []math.Vec3{v3(0), v3(1), v3(2)},
			wantIndices:  []uint32{0, 1, 2},
		},
		{
			// The marked edge borders a single face, so the seam merges
			// back together.
			name:         "triangulated quad boundary edge",
			vertices:     []math.Vec3{v3(0), v3(1), v3(2), v3(3)},
			indices:      []uint32{0, 1, 2, 2, 1, 3},
			starts:       []uint32{0, 3},
			sizes:        []uint32{3, 3},
			sharpEdges:   [][2]uint32{{2, 3}},
			wantVertices: []math.Vec3{v3(0), v3(1), v3(2), v3(3)},
			wantIndices:  []uint32{0, 1, 2, 2, 1, 3},
		},
		{
			// Every marked edge is on the outline, none between faces.
			name:         "quad strip boundary edges",
			vertices:     []math.Vec3{v3(0), v3(1), v3(2), v3(3), v3(4), v3(5)},
			indices:      []uint32{0, 1, 2, 2, 1, 3, 3, 1, 4, 3, 4, 5},
			starts:       []uint32{0, 3, 6, 9},
			sizes:        []uint32{3, 3, 3, 3},
			sharpEdges:   [][2]uint32{{2, 3}, {3, 5}, {0, 1}, {1, 4}},
			wantVertices: []math.Vec3{v3(0), v3(1), v3(2), v3(3), v3(4), v3(5)},
			wantIndices:  []uint32{0, 1, 2, 2, 1, 3, 3, 1, 4, 3, 4, 5},
		},
		{
			// The marked edge separates two triangulated quads, so both
			// of its vertices duplicate once.
			name:       "split triangulated quads",
			vertices:   []math.Vec3{v3(0), v3(1), v3(2), v3(3), v3(4), v3(5)},
			indices:    []uint32{0, 1, 2, 2, 1, 3, 3, 1, 5, 3, 5, 4},
			starts:     []uint32{0, 3, 6, 9},
			sizes:      []uint32{3, 3, 3, 3},
			sharpEdges: [][2]uint32{{1, 3}},
			wantVertices: []math.Vec3{
				v3(0), v3(1), v3(2), v3(3), v3(4), v3(5), v3(1), v3(3),
			},
			wantIndices: []uint32{0, 1, 2, 2, 1, 3, 7, 6, 5, 7, 5, 4},
		},
		{
			// Quads stay quads across a split.
			name:       "split quads",
			vertices:   []math.Vec3{v3(0), v3(1), v3(2), v3(3), v3(4), v3(5)},
			indices:    []uint32{0, 1, 2, 3, 1, 4, 5, 2},
			starts:     []uint32{0, 4},
			sizes:      []uint32{4, 4},
			sharpEdges: [][2]uint32{{1, 2}},
			wantVertices: []math.Vec3{
				v3(0), v3(1), v3(2), v3(3), v3(4), v3(5), v3(1), v3(2),
			},
			wantIndices: []uint32{0, 1, 2, 3, 6, 4, 5, 7},
		},
		{
			// A cylinder slice with its outline marked, like the
			// 1-8cyli primitive. Merging reorders the surviving
			// duplicates.
			name:       "cylinder slice outline",
			vertices:   []math.Vec3{v3(0), v3(1), v3(2), v3(3), v3(4), v3(5)},
			indices:    []uint32{2, 1, 0, 3, 2, 0, 1, 5, 4, 0, 1, 4},
			starts:     []uint32{0, 3, 6, 9},
			sizes:      []uint32{3, 3, 3, 3},
			sharpEdges: [][2]uint32{{2, 1}, {0, 3}, {1, 5}, {4, 0}},
			wantVertices: []math.Vec3{
				v3(0), v3(2), v3(3), v3(4), v3(5), v3(1),
			},
			wantIndices: []uint32{1, 5, 0, 2, 1, 0, 5, 4, 3, 0, 5, 3},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			vertices, indices := SplitEdges(tt.vertices, tt.indices, tt.starts, tt.sizes, tt.sharpEdges)
			if !reflect.DeepEqual(tt.wantVertices, vertices) {
				t.Errorf("expected vertices %v, got %v", tt.wantVertices, vertices)
			}
			if !reflect.DeepEqual(tt.wantIndices, indices) {
				t.Errorf("expected indices %v, got %v", tt.wantIndices, indices)
			}
		})
	}
}

func TestSplitEdges_SharpAngles(t *testing.T) {
	// A tetrahedron splits on its face angles alone, without any marked
	// edges. The edge between the last seen corners of two faces closes
	// both loops and stays smooth.
	vertices := []math.Vec3{
		{X: 0, Y: -0.707, Z: -1},
		{X: 0.866025, Y: -0.707, Z: 0.5},
		{X: -0.866025, Y: -0.707, Z: 0.5},
		{X: 0, Y: 0.707, Z: 0},
	}
	indices := []uint32{0, 3, 1, 0, 1, 2, 1, 3, 2, 2, 3, 0}
	starts := []uint32{0, 3, 6, 9}
	sizes := []uint32{3, 3, 3, 3}

	gotVertices, gotIndices := SplitEdges(vertices, indices, starts, sizes, nil)

	wantVertices := []math.Vec3{
		vertices[0], vertices[1], vertices[2], vertices[3],
		vertices[0], vertices[1], vertices[1], vertices[2], vertices[3], vertices[3],
	}
	if !reflect.DeepEqual(wantVertices, gotVertices) {
		t.Errorf("expected vertices %v, got %v", wantVertices, gotVertices)
	}
	wantIndices := []uint32{0, 3, 1, 4, 5, 2, 6, 8, 7, 2, 9, 4}
	if !reflect.DeepEqual(wantIndices, gotIndices) {
		t.Errorf("expected indices %v, got %v", wantIndices, gotIndices)
	}
}

func TestSplitEdges_InputUntouched(t *testing.T) {
	vertices := []math.Vec3{v3(0), v3(1), v3(2), v3(3), v3(4), v3(5)}
	indices := []uint32{0, 1, 2, 2, 1, 3, 3, 1, 5, 3, 5, 4}
	starts := []uint32{0, 3, 6, 9}
	sizes := []uint32{3, 3, 3, 3}

	SplitEdges(vertices, indices, starts, sizes, [][2]uint32{{1, 3}})

	if want := []uint32{0, 1, 2, 2, 1, 3, 3, 1, 5, 3, 5, 4}; !reflect.DeepEqual(want, indices) {
		t.Errorf("expected input indices unchanged as %v, got %v", want, indices)
	}
	for i, v := range vertices {
		if v != v3(float32(i)) {
			t.Errorf("expected input vertex %d unchanged, got %v", i, v)
		}
	}
}
