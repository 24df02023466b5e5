package assembly

import (
	"testing"

	"github.com/Faultbox/brickscene/pkg/ldraw"
)

func TestResolve_Uniform(t *testing.T) {
	// A single stored face color resolves to one key for the whole
	// geometry, with the inherited color replaced by the instance
	// color.
	g := &ldraw.Geometry{
		FaceSizes:  []uint32{3, 3, 4},
		FaceColors: []uint32{ldraw.CurrentColor},
	}

	resolved := Resolve(7, g)

	if !resolved.Uniform {
		t.Fatalf("expected a uniform resolution, got per face keys")
	}
	want := MaterialKey{Color: 7, TextureID: NoTexture}
	if resolved.Key != want {
		t.Errorf("expected key %+v, got %+v", want, resolved.Key)
	}
}

func TestResolve_UniformConcreteColor(t *testing.T) {
	// A concrete stored color ignores the instance color.
	g := &ldraw.Geometry{
		FaceSizes:  []uint32{3},
		FaceColors: []uint32{4},
	}

	resolved := Resolve(7, g)

	if !resolved.Uniform {
		t.Fatalf("expected a uniform resolution, got per face keys")
	}
	if resolved.Key.Color != 4 {
		t.Errorf("expected color 4, got %d", resolved.Key.Color)
	}
}

func TestResolve_PerFace(t *testing.T) {
	g := &ldraw.Geometry{
		FaceSizes:  []uint32{3, 3, 4},
		FaceColors: []uint32{5, ldraw.CurrentColor, 7},
	}

	resolved := Resolve(9, g)

	if resolved.Uniform {
		t.Fatalf("expected per face keys, got a uniform resolution")
	}
	if len(resolved.PerFace) != 3 {
		t.Fatalf("expected 3 face keys, got %d", len(resolved.PerFace))
	}
	wantColors := []uint32{5, 9, 7}
	for f, key := range resolved.PerFace {
		if key.Color != wantColors[f] {
			t.Errorf("face %d: expected color %d, got %d", f, wantColors[f], key.Color)
		}
		if key.TextureID != NoTexture {
			t.Errorf("face %d: expected no texture, got %d", f, key.TextureID)
		}
	}
}

func TestResolve_GrainySlope(t *testing.T) {
	g := &ldraw.Geometry{
		FaceSizes:       []uint32{4},
		FaceColors:      []uint32{ldraw.CurrentColor},
		HasGrainySlopes: true,
	}

	resolved := Resolve(4, g)

	if !resolved.Key.IsGrainySlope {
		t.Errorf("expected the grainy slope flag on the resolved key")
	}
}

func TestResolve_TexturedFaces(t *testing.T) {
	g := &ldraw.Geometry{
		FaceSizes:  []uint32{3, 3},
		FaceColors: []uint32{5, 5},
		TextureInfo: &ldraw.TextureInfo{
			Indices: []uint8{1, ldraw.NoTextureIndex},
		},
	}

	resolved := Resolve(9, g)

	if resolved.Uniform {
		t.Fatalf("expected per face keys, got a uniform resolution")
	}
	if resolved.PerFace[0].TextureID != 1 {
		t.Errorf("expected texture 1 on face 0, got %d", resolved.PerFace[0].TextureID)
	}
	if resolved.PerFace[1].TextureID != NoTexture {
		t.Errorf("expected no texture on face 1, got %d", resolved.PerFace[1].TextureID)
	}
}

func TestResolve_MixedTexturesNotUniform(t *testing.T) {
	// A single color entry with differing face textures still needs per
	// face keys, otherwise the textured faces would lose their texture.
	g := &ldraw.Geometry{
		FaceSizes:  []uint32{3, 3},
		FaceColors: []uint32{ldraw.CurrentColor},
		TextureInfo: &ldraw.TextureInfo{
			Indices: []uint8{0, ldraw.NoTextureIndex},
		},
	}

	resolved := Resolve(7, g)

	if resolved.Uniform {
		t.Fatalf("expected per face keys for mixed textures")
	}
	if resolved.PerFace[0].TextureID != 0 || resolved.PerFace[0].Color != 7 {
		t.Errorf("expected face 0 resolved as color 7 texture 0, got %+v", resolved.PerFace[0])
	}
	if resolved.PerFace[1].TextureID != NoTexture || resolved.PerFace[1].Color != 7 {
		t.Errorf("expected face 1 resolved as color 7 untextured, got %+v", resolved.PerFace[1])
	}
}

func TestResolve_UniformTextured(t *testing.T) {
	// One color and the same texture on every face keeps the uniform
	// fast path.
	g := &ldraw.Geometry{
		FaceSizes:  []uint32{3, 3},
		FaceColors: []uint32{ldraw.CurrentColor},
		TextureInfo: &ldraw.TextureInfo{
			Indices: []uint8{2, 2},
		},
	}

	resolved := Resolve(7, g)

	if !resolved.Uniform {
		t.Fatalf("expected a uniform resolution, got per face keys")
	}
	if resolved.Key.TextureID != 2 {
		t.Errorf("expected texture 2, got %d", resolved.Key.TextureID)
	}
}
