package assembly

import (
	"bytes"
	"fmt"
	"image/png"
	"sort"

	"github.com/chewxy/math32"

	"github.com/Faultbox/brickscene/pkg/ldraw"
	"github.com/Faultbox/brickscene/pkg/math"
)

// Options configure scene assembly. The zero value is usable but
// scales the scene to nothing; use DefaultOptions.
type Options struct {
	// SceneScale is the uniform scale applied together with the axis
	// correction at the root.
	SceneScale float32
}

// DefaultOptions returns the assembly defaults. The scale of 0.01
// brings LDraw units down to a desk sized scene.
func DefaultOptions() *Options {
	return &Options{SceneScale: 0.01}
}

// Object is one node of the assembled hierarchy. Transforms are
// relative to the parent object.
type Object struct {
	Name string
	// Mesh and Materials are nil on pure transform nodes. Materials
	// realize the mesh's material slots in order.
	Mesh      *Mesh
	Materials []*MaterialGraphSpec
	Transform math.Mat4
	Children  []*Object
}

// Instancer is one shared mesh with the placement attributes of every
// instance, the unit a point instancing facility consumes. The
// attribute arrays share one index per instance.
type Instancer struct {
	Name  string
	Color uint32

	Mesh      *Mesh
	Materials []*MaterialGraphSpec

	Translations   []math.Vec3
	RotationAxes   []math.Vec3
	RotationAngles []float32
	Scales         []math.Vec3
}

// Assembly is the assembled object hierarchy of one model. The root
// transform already carries the axis correction and scene scale.
type Assembly struct {
	Name string
	Root *Object
	// Materials lists every distinct material once, in first use
	// order.
	Materials []*MaterialGraphSpec
	// Textures are the PNG images referenced by material texture
	// indices, deduplicated by content.
	Textures [][]byte
	Warnings Warnings
}

// InstancedAssembly is the assembled instancer set of one model.
type InstancedAssembly struct {
	Name string
	// Transform corrects the axis convention and scale of the whole
	// collection. Instance attributes stay uncorrected.
	Transform  math.Mat4
	Instancers []*Instancer
	Materials  []*MaterialGraphSpec
	Textures   [][]byte
	Warnings   Warnings
}

// RootTransform returns the scene root correction. LDraw models are
// Y down; rotating -90 degrees about X makes them Z up, and the
// uniform scene scale applies on top.
func RootTransform(sceneScale float32) math.Mat4 {
	return math.Scale(sceneScale, sceneScale, sceneScale).Mul(math.RotateX(-math32.Pi / 2))
}

// Assemble builds the object hierarchy of a loaded scene, mirroring
// the node tree one to one. Meshes build at most once per part and
// color; every referencing object shares the cached build. A nil opts
// uses the defaults.
func Assemble(scene *ldraw.Scene, opts *Options) (*Assembly, error) {
	if opts == nil {
		opts = DefaultOptions()
	}
	a := newAssembler(scene.Colors)

	root, err := a.addNodes(scene.Root, scene.Geometry)
	if err != nil {
		return nil, err
	}

	// One global correction at the root.
	root.Transform = RootTransform(opts.SceneScale).Mul(root.Transform)

	return &Assembly{
		Name:      scene.Name,
		Root:      root,
		Materials: a.specList,
		Textures:  a.textures,
		Warnings:  a.warnings,
	}, nil
}

// AssembleInstanced builds the instancer set of a flattened scene.
// Each part and color pair becomes one instancer carrying all of its
// placements, ordered by name then color. A nil opts uses the
// defaults.
func AssembleInstanced(scene *ldraw.InstancedPointsScene, opts *Options) (*InstancedAssembly, error) {
	if opts == nil {
		opts = DefaultOptions()
	}
	a := newAssembler(scene.Colors)

	keys := make([]ldraw.GeometryInstanceKey, 0, len(scene.Points))
	for key := range scene.Points {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].Name != keys[j].Name {
			return keys[i].Name < keys[j].Name
		}
		return keys[i].Color < keys[j].Color
	})

	instancers := make([]*Instancer, 0, len(keys))
	for _, key := range keys {
		g, ok := scene.Geometry[key]
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrLookup, key.Name)
		}
		entry, err := a.meshFor(key.Name, key.Color, g)
		if err != nil {
			return nil, err
		}

		points := scene.Points[key]
		instancers = append(instancers, &Instancer{
			Name:           fmt.Sprintf("%s_%d", key.Name, key.Color),
			Color:          key.Color,
			Mesh:           entry.Mesh,
			Materials:      a.materialsOf(g, key.Name, entry),
			Translations:   points.Translations,
			RotationAxes:   points.RotationAxes,
			RotationAngles: points.RotationAngles,
			Scales:         points.Scales,
		})
	}

	return &InstancedAssembly{
		Name:       scene.Name,
		Transform:  RootTransform(opts.SceneScale),
		Instancers: instancers,
		Materials:  a.specList,
		Textures:   a.textures,
		Warnings:   a.warnings,
	}, nil
}

// assembler carries the per import caches. Meshes, materials and
// textures deduplicate within one run and are discarded with it.
type assembler struct {
	cache  *MeshCache
	colors ldraw.ColorTable

	specs    map[MaterialKey]*MaterialGraphSpec
	specList []*MaterialGraphSpec

	textures         [][]byte
	textureByContent map[string]int16
	textureIDs       map[*ldraw.Geometry][]int16

	warnings Warnings
}

func newAssembler(colors ldraw.ColorTable) *assembler {
	return &assembler{
		cache:            NewMeshCache(),
		colors:           colors,
		specs:            make(map[MaterialKey]*MaterialGraphSpec),
		textureByContent: make(map[string]int16),
		textureIDs:       make(map[*ldraw.Geometry][]int16),
	}
}

// addNodes builds the output object of one node and recurses into its
// children, returning the child handles for the caller to attach.
func (a *assembler) addNodes(node *ldraw.Node, geometry map[string]*ldraw.Geometry) (*Object, error) {
	obj := &Object{Name: node.Name, Transform: node.Transform}

	if node.GeometryKey != "" {
		g, ok := geometry[node.GeometryKey]
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrLookup, node.GeometryKey)
		}
		entry, err := a.meshFor(node.GeometryKey, node.CurrentColor, g)
		if err != nil {
			return nil, err
		}
		obj.Mesh = entry.Mesh
		obj.Materials = a.materialsOf(g, node.GeometryKey, entry)
	}

	for _, child := range node.Children {
		childObj, err := a.addNodes(child, geometry)
		if err != nil {
			return nil, err
		}
		obj.Children = append(obj.Children, childObj)
	}
	return obj, nil
}

// meshFor returns the cached mesh entry for a part and color,
// resolving and building it on the first request.
func (a *assembler) meshFor(key string, currentColor uint32, g *ldraw.Geometry) (*Entry, error) {
	return a.cache.GetOrBuild(key, currentColor, func() (*Entry, error) {
		mesh, materials, err := Build(key, g, Resolve(currentColor, g))
		if err != nil {
			return nil, err
		}
		return &Entry{Mesh: mesh, Materials: materials}, nil
	})
}

// materialsOf realizes the material specs of a mesh entry in slot
// order.
func (a *assembler) materialsOf(g *ldraw.Geometry, geometryKey string, entry *Entry) []*MaterialGraphSpec {
	materials := make([]*MaterialGraphSpec, len(entry.Materials))
	for i, k := range entry.Materials {
		materials[i] = a.materialFor(g, geometryKey, k)
	}
	return materials
}

// materialFor returns the spec of one material key, deriving and
// recording it on first use. Local texture indices promote to the
// assembly wide texture list first, so keys from different parts that
// share a texture image also share a material.
func (a *assembler) materialFor(g *ldraw.Geometry, geometryKey string, k MaterialKey) *MaterialGraphSpec {
	if k.TextureID != NoTexture {
		k.TextureID = a.globalTexture(g, geometryKey, k.TextureID)
	}

	if spec, ok := a.specs[k]; ok {
		return spec
	}
	spec := deriveMaterial(a.colors, k, &a.warnings)
	a.specs[k] = spec
	a.specList = append(a.specList, spec)
	return spec
}

// globalTexture maps a geometry local texture index to an assembly
// wide image index, registering the geometry's textures on first use.
// Textures that fail to decode map to NoTexture so the material falls
// back to its untextured variant.
func (a *assembler) globalTexture(g *ldraw.Geometry, geometryKey string, local int16) int16 {
	ids, ok := a.textureIDs[g]
	if !ok {
		ids = a.registerTextures(g, geometryKey)
		a.textureIDs[g] = ids
	}
	if int(local) >= len(ids) {
		return NoTexture
	}
	return ids[local]
}

func (a *assembler) registerTextures(g *ldraw.Geometry, geometryKey string) []int16 {
	if g.TextureInfo == nil {
		return nil
	}
	ids := make([]int16, len(g.TextureInfo.Textures))
	for i, data := range g.TextureInfo.Textures {
		if _, err := png.DecodeConfig(bytes.NewReader(data)); err != nil {
			a.warnings.textureError(geometryKey, int16(i), err)
			ids[i] = NoTexture
			continue
		}
		if id, ok := a.textureByContent[string(data)]; ok {
			ids[i] = id
			continue
		}
		id := int16(len(a.textures))
		a.textures = append(a.textures, data)
		a.textureByContent[string(data)] = id
		ids[i] = id
	}
	return ids
}
