package assembly

import (
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/Faultbox/brickscene/pkg/ldraw"
	"github.com/Faultbox/brickscene/pkg/math"
)

func testColors() ldraw.ColorTable {
	return ldraw.ColorTable{
		2: {Code: 2, Name: "green", RGBALinear: [4]float32{0, 0.6, 0.2, 1}},
		4: {Code: 4, Name: "red", RGBALinear: [4]float32{0.8, 0.05, 0.05, 1}},
	}
}

// brickGeometry is a coplanar quad pair that inherits its color from
// the referencing node.
func brickGeometry() *ldraw.Geometry {
	g := coplanarPair()
	g.FaceColors = []uint32{ldraw.CurrentColor}
	return g
}

// tinyPNG is a 1x1 image header, enough for a decode check.
func tinyPNG() []byte {
	return []byte{
		0x89, 0x50, 0x4e, 0x47, 0x0d, 0x0a, 0x1a, 0x0a,
		0x00, 0x00, 0x00, 0x0d, 0x49, 0x48, 0x44, 0x52,
		0x00, 0x00, 0x00, 0x01, 0x00, 0x00, 0x00, 0x01,
		0x08, 0x06, 0x00, 0x00, 0x00, 0x1f, 0x15, 0xc4,
		0x89,
	}
}

func TestRootTransform(t *testing.T) {
	// A unit up in model space lands scaled along negative Z.
	up := RootTransform(0.01).TransformVec3(math.Vec3{Y: 1})
	if !nearVec3(up, math.Vec3{Z: -0.01}, 1e-6) {
		t.Errorf("expected (0, 0, -0.01), got %v", up)
	}

	forward := RootTransform(1).TransformVec3(math.Vec3{Z: 1})
	if !nearVec3(forward, math.Vec3{Y: 1}, 1e-6) {
		t.Errorf("expected (0, 1, 0), got %v", forward)
	}
}

func TestAssemble_Hierarchy(t *testing.T) {
	scene := &ldraw.Scene{
		Name: "car",
		Root: &ldraw.Node{
			Name:      "car",
			Transform: math.Identity(),
			Children: []*ldraw.Node{
				{Name: "3001.dat", GeometryKey: "3001.dat", CurrentColor: 4, Transform: math.Translate(10, 0, 0)},
				{Name: "3001.dat", GeometryKey: "3001.dat", CurrentColor: 4, Transform: math.Translate(-10, 0, 0)},
				{
					Name:      "wheels",
					Transform: math.Identity(),
					Children: []*ldraw.Node{
						{Name: "3001.dat", GeometryKey: "3001.dat", CurrentColor: 2, Transform: math.Identity()},
					},
				},
			},
		},
		Geometry: map[string]*ldraw.Geometry{"3001.dat": brickGeometry()},
		Colors:   testColors(),
	}

	assembly, err := Assemble(scene, nil)
	if err != nil {
		t.Fatalf("expected the assembly to succeed, got %v", err)
	}

	if assembly.Name != "car" {
		t.Errorf("expected name car, got %q", assembly.Name)
	}
	if assembly.Root.Transform != RootTransform(0.01) {
		t.Errorf("expected the root correction on the root transform")
	}
	if len(assembly.Root.Children) != 3 {
		t.Fatalf("expected 3 children, got %d", len(assembly.Root.Children))
	}

	left := assembly.Root.Children[0]
	right := assembly.Root.Children[1]
	wheels := assembly.Root.Children[2]

	if left.Transform != math.Translate(10, 0, 0) {
		t.Errorf("expected child transforms unchanged, got %v", left.Transform)
	}
	if left.Mesh == nil || left.Mesh != right.Mesh {
		t.Errorf("expected both red bricks to share one mesh build")
	}
	if len(wheels.Children) != 1 {
		t.Fatalf("expected 1 nested child, got %d", len(wheels.Children))
	}
	green := wheels.Children[0]
	if green.Mesh == nil || green.Mesh == left.Mesh {
		t.Errorf("expected a separate mesh per instance color")
	}
	if wheels.Mesh != nil {
		t.Errorf("expected no mesh on a grouping node")
	}

	if len(left.Materials) != 1 || left.Materials[0] != right.Materials[0] {
		t.Errorf("expected both red bricks to share one material")
	}
	if left.Materials[0].Name != "red_4" {
		t.Errorf("expected material red_4, got %q", left.Materials[0].Name)
	}
	if green.Materials[0].Name != "green_2" {
		t.Errorf("expected material green_2, got %q", green.Materials[0].Name)
	}

	if len(assembly.Materials) != 2 {
		t.Errorf("expected 2 distinct materials, got %d", len(assembly.Materials))
	}
	if !assembly.Warnings.Empty() {
		t.Errorf("expected no warnings, got %+v", assembly.Warnings)
	}
}

func TestAssemble_SceneScale(t *testing.T) {
	scene := &ldraw.Scene{
		Name:     "part",
		Root:     &ldraw.Node{Name: "part", GeometryKey: "p", CurrentColor: 4, Transform: math.Identity()},
		Geometry: map[string]*ldraw.Geometry{"p": brickGeometry()},
		Colors:   testColors(),
	}

	assembly, err := Assemble(scene, &Options{SceneScale: 1})
	if err != nil {
		t.Fatalf("expected the assembly to succeed, got %v", err)
	}

	up := assembly.Root.Transform.TransformVec3(math.Vec3{Y: 1})
	if !nearVec3(up, math.Vec3{Z: -1}, 1e-6) {
		t.Errorf("expected (0, 0, -1), got %v", up)
	}
}

func TestAssemble_MissingGeometry(t *testing.T) {
	scene := &ldraw.Scene{
		Name:     "broken",
		Root:     &ldraw.Node{Name: "broken", GeometryKey: "void.dat", CurrentColor: 4, Transform: math.Identity()},
		Geometry: map[string]*ldraw.Geometry{},
		Colors:   testColors(),
	}

	_, err := Assemble(scene, nil)
	if !errors.Is(err, ErrLookup) {
		t.Fatalf("expected ErrLookup, got %v", err)
	}
	if !strings.Contains(err.Error(), "void.dat") {
		t.Errorf("expected the key in the error, got %q", err.Error())
	}
}

func TestAssemble_MissingColorWarns(t *testing.T) {
	scene := &ldraw.Scene{
		Name:     "part",
		Root:     &ldraw.Node{Name: "part", GeometryKey: "p", CurrentColor: 512, Transform: math.Identity()},
		Geometry: map[string]*ldraw.Geometry{"p": brickGeometry()},
		Colors:   testColors(),
	}

	assembly, err := Assemble(scene, nil)
	if err != nil {
		t.Fatalf("expected a missing color to stay non fatal, got %v", err)
	}

	if want := []uint32{512}; !reflect.DeepEqual(want, assembly.Warnings.MissingColors) {
		t.Errorf("expected missing colors %v, got %v", want, assembly.Warnings.MissingColors)
	}
	if assembly.Root.Mesh == nil {
		t.Fatalf("expected the mesh to assemble regardless")
	}
	spec := assembly.Root.Materials[0]
	if want := [3]float32{0.9, 0.9, 0.9}; spec.BaseRGB != want {
		t.Errorf("expected the fallback base color %v, got %v", want, spec.BaseRGB)
	}
}

func TestAssemble_MalformedGeometryFails(t *testing.T) {
	g := brickGeometry()
	g.FaceColors = []uint32{4, 5, 4}

	scene := &ldraw.Scene{
		Name:     "part",
		Root:     &ldraw.Node{Name: "part", GeometryKey: "p", CurrentColor: 4, Transform: math.Identity()},
		Geometry: map[string]*ldraw.Geometry{"p": g},
		Colors:   testColors(),
	}

	_, err := Assemble(scene, nil)
	if !errors.Is(err, ErrMalformedGeometry) {
		t.Fatalf("expected ErrMalformedGeometry, got %v", err)
	}
}

func TestAssembleInstanced(t *testing.T) {
	shared := brickGeometry()
	red := ldraw.GeometryInstanceKey{Name: "3001.dat", Color: 4}
	green := ldraw.GeometryInstanceKey{Name: "3001.dat", Color: 2}

	scene := &ldraw.InstancedPointsScene{
		Name: "field",
		Geometry: map[ldraw.GeometryInstanceKey]*ldraw.Geometry{
			red:   shared,
			green: shared,
		},
		Points: map[ldraw.GeometryInstanceKey]ldraw.PointInstances{
			red: {
				Translations:   []math.Vec3{{X: 1}, {X: 2}, {X: 3}},
				RotationAxes:   []math.Vec3{{Y: 1}, {Y: 1}, {Y: 1}},
				RotationAngles: []float32{0, 1.5707964, 3.1415927},
				Scales:         []math.Vec3{{X: 1, Y: 1, Z: 1}, {X: 1, Y: 1, Z: 1}, {X: 1, Y: 1, Z: 1}},
			},
			green: {
				Translations:   []math.Vec3{{Z: 5}},
				RotationAxes:   []math.Vec3{{Y: 1}},
				RotationAngles: []float32{0},
				Scales:         []math.Vec3{{X: 1, Y: 1, Z: 1}},
			},
		},
		Colors: testColors(),
	}

	assembly, err := AssembleInstanced(scene, nil)
	if err != nil {
		t.Fatalf("expected the assembly to succeed, got %v", err)
	}

	if assembly.Transform != RootTransform(0.01) {
		t.Errorf("expected the root correction on the collection transform")
	}
	if len(assembly.Instancers) != 2 {
		t.Fatalf("expected 2 instancers, got %d", len(assembly.Instancers))
	}

	// Ordered by name then color.
	first := assembly.Instancers[0]
	second := assembly.Instancers[1]
	if first.Name != "3001.dat_2" || second.Name != "3001.dat_4" {
		t.Errorf("expected instancers 3001.dat_2, 3001.dat_4, got %q, %q", first.Name, second.Name)
	}

	if len(second.Translations) != 3 || len(second.RotationAxes) != 3 ||
		len(second.RotationAngles) != 3 || len(second.Scales) != 3 {
		t.Errorf("expected 3 aligned instance attributes, got %d, %d, %d, %d",
			len(second.Translations), len(second.RotationAxes),
			len(second.RotationAngles), len(second.Scales))
	}
	if second.Translations[2] != (math.Vec3{X: 3}) {
		t.Errorf("expected translation (3, 0, 0), got %v", second.Translations[2])
	}

	if first.Mesh == nil || second.Mesh == nil || first.Mesh == second.Mesh {
		t.Errorf("expected one mesh build per part and color")
	}
	if first.Materials[0].Name != "green_2" || second.Materials[0].Name != "red_4" {
		t.Errorf("expected materials green_2 and red_4, got %q and %q",
			first.Materials[0].Name, second.Materials[0].Name)
	}
	if len(assembly.Materials) != 2 {
		t.Errorf("expected 2 distinct materials, got %d", len(assembly.Materials))
	}
}

func TestAssembleInstanced_MissingGeometry(t *testing.T) {
	key := ldraw.GeometryInstanceKey{Name: "void.dat", Color: 4}
	scene := &ldraw.InstancedPointsScene{
		Name:     "field",
		Geometry: map[ldraw.GeometryInstanceKey]*ldraw.Geometry{},
		Points: map[ldraw.GeometryInstanceKey]ldraw.PointInstances{
			key: {},
		},
		Colors: testColors(),
	}

	_, err := AssembleInstanced(scene, nil)
	if !errors.Is(err, ErrLookup) {
		t.Fatalf("expected ErrLookup, got %v", err)
	}
}

// texturedQuad returns a single quad geometry with one embedded
// texture image.
func texturedQuad(image []byte) *ldraw.Geometry {
	return &ldraw.Geometry{
		Vertices: []math.Vec3{
			{}, {X: 1}, {X: 1, Y: 1}, {Y: 1},
		},
		VertexIndices:    []uint32{0, 1, 2, 3},
		FaceStartIndices: []uint32{0},
		FaceSizes:        []uint32{4},
		FaceColors:       []uint32{ldraw.CurrentColor},
		TextureInfo: &ldraw.TextureInfo{
			Textures: [][]byte{image},
			Indices:  []uint8{0},
			UVs: []math.Vec2{
				{}, {X: 1}, {X: 1, Y: 1}, {Y: 1},
			},
		},
	}
}

func TestAssemble_PromotesTextures(t *testing.T) {
	scene := &ldraw.Scene{
		Name: "print",
		Root: &ldraw.Node{
			Name:      "print",
			Transform: math.Identity(),
			Children: []*ldraw.Node{
				{Name: "a.dat", GeometryKey: "a.dat", CurrentColor: 4, Transform: math.Identity()},
				{Name: "b.dat", GeometryKey: "b.dat", CurrentColor: 2, Transform: math.Identity()},
			},
		},
		Geometry: map[string]*ldraw.Geometry{
			"a.dat": texturedQuad(tinyPNG()),
			"b.dat": texturedQuad(tinyPNG()),
		},
		Colors: testColors(),
	}

	assembly, err := Assemble(scene, nil)
	if err != nil {
		t.Fatalf("expected the assembly to succeed, got %v", err)
	}

	// Identical image bytes from different parts share one slot.
	if len(assembly.Textures) != 1 {
		t.Fatalf("expected 1 deduplicated texture, got %d", len(assembly.Textures))
	}
	if !reflect.DeepEqual(tinyPNG(), assembly.Textures[0]) {
		t.Errorf("expected the embedded image bytes to be carried over")
	}

	a := assembly.Root.Children[0].Materials[0]
	b := assembly.Root.Children[1].Materials[0]
	if a.TextureIndex != 0 || b.TextureIndex != 0 {
		t.Errorf("expected both materials on texture 0, got %d and %d", a.TextureIndex, b.TextureIndex)
	}
	if a.Name != "red_4_tex0" {
		t.Errorf("expected material red_4_tex0, got %q", a.Name)
	}
	if !assembly.Warnings.Empty() {
		t.Errorf("expected no warnings, got %+v", assembly.Warnings)
	}
}

func TestAssemble_BadTextureFallsBack(t *testing.T) {
	scene := &ldraw.Scene{
		Name:     "print",
		Root:     &ldraw.Node{Name: "bad.dat", GeometryKey: "bad.dat", CurrentColor: 4, Transform: math.Identity()},
		Geometry: map[string]*ldraw.Geometry{"bad.dat": texturedQuad([]byte{0xde, 0xad})},
		Colors:   testColors(),
	}

	assembly, err := Assemble(scene, nil)
	if err != nil {
		t.Fatalf("expected a bad texture to stay non fatal, got %v", err)
	}

	if len(assembly.Textures) != 0 {
		t.Errorf("expected no textures, got %d", len(assembly.Textures))
	}
	spec := assembly.Root.Materials[0]
	if spec.TextureIndex != NoTexture {
		t.Errorf("expected the material to fall back untextured, got texture %d", spec.TextureIndex)
	}
	if spec.Name != "red_4" {
		t.Errorf("expected material red_4, got %q", spec.Name)
	}
	if len(assembly.Warnings.TextureErrors) != 1 {
		t.Fatalf("expected 1 texture warning, got %d", len(assembly.Warnings.TextureErrors))
	}
	if !strings.Contains(assembly.Warnings.TextureErrors[0], "bad.dat texture 0") {
		t.Errorf("expected the part and index in the warning, got %q", assembly.Warnings.TextureErrors[0])
	}
}
