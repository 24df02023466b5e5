package ldraw

import (
	"path/filepath"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/Faultbox/brickscene/pkg/math"
)

// Node is a model or submodel in the scene hierarchy. Transforms are
// relative to the parent node, so applications control how they are
// combined.
type Node struct {
	Name string
	// GeometryKey addresses this node's geometry in the scene cache.
	// Internal grouping nodes leave it empty.
	GeometryKey string
	// CurrentColor replaces color code 16 in the geometry.
	CurrentColor uint32
	Transform    math.Mat4
	Children     []*Node
}

// Scene is a loaded model with its full node hierarchy. Geometry is
// built once per unique part and shared between nodes through the
// cache, keyed by the lowercased part name.
type Scene struct {
	Name     string
	Root     *Node
	Geometry map[string]*Geometry
	Colors   ColorTable
}

// GeometryInstanceKey identifies all placements of one part in one
// color.
type GeometryInstanceKey struct {
	Name  string
	Color uint32
}

// InstancedScene flattens a model into world transforms grouped by
// part and color. Entries that differ only in color share the same
// geometry pointer.
type InstancedScene struct {
	Name      string
	Geometry  map[GeometryInstanceKey]*Geometry
	Instances map[GeometryInstanceKey][]math.Mat4
	Colors    ColorTable
}

// PointInstances holds decomposed instance transforms in a struct of
// arrays layout suitable for point cloud attributes.
type PointInstances struct {
	Translations []math.Vec3
	RotationAxes []math.Vec3
	// RotationAngles are in radians.
	RotationAngles []float32
	Scales         []math.Vec3
}

// InstancedPointsScene is an InstancedScene with every transform
// decomposed into translation, rotation and scale.
type InstancedPointsScene struct {
	Name     string
	Geometry map[GeometryInstanceKey]*Geometry
	Points   map[GeometryInstanceKey]PointInstances
	Colors   ColorTable
}

// geometryDescriptor defers geometry creation until the hierarchy has
// been walked, so each unique part is only built once.
type geometryDescriptor struct {
	source       *SourceFile
	currentColor uint32
	recursive    bool
}

// Load reads the model at path and builds its scene hierarchy.
// Referenced files resolve against the model's own directory, the
// LDraw library at libraryPath and any additionalPaths. References
// that cannot be resolved are logged and skipped so partial models
// still import. A nil settings uses the defaults.
//
// An error is only returned when path names a Studio .io archive that
// cannot be opened.
func Load(path, libraryPath string, additionalPaths []string, settings *GeometrySettings) (*Scene, error) {
	if settings == nil {
		settings = DefaultGeometrySettings()
	}

	sources, mainName, err := parseModel(path, libraryPath, additionalPaths, settings)
	if err != nil {
		return nil, err
	}
	source, _ := sources.Get(mainName)

	descriptors := make(map[string]geometryDescriptor)
	root := loadNode(source, mainName, math.Identity(), sources, descriptors, CurrentColor, settings)

	return &Scene{
		Name:     mainName,
		Root:     root,
		Geometry: createGeometryCache(descriptors, sources, settings),
		Colors:   loadColors(libraryPath),
	}, nil
}

// LoadInstanced reads the model at path and collects the world
// transform of every part placement instead of a node hierarchy. The
// flattened form suits renderers that draw with instancing.
func LoadInstanced(path, libraryPath string, additionalPaths []string, settings *GeometrySettings) (*InstancedScene, error) {
	if settings == nil {
		settings = DefaultGeometrySettings()
	}

	sources, mainName, err := parseModel(path, libraryPath, additionalPaths, settings)
	if err != nil {
		return nil, err
	}
	source, _ := sources.Get(mainName)

	descriptors := make(map[string]geometryDescriptor)
	instances := make(map[GeometryInstanceKey][]math.Mat4)
	loadNodeInstanced(source, mainName, math.Identity(), sources, descriptors, instances, CurrentColor, settings)

	cache := createGeometryCache(descriptors, sources, settings)

	// Share geometry between entries that only differ in color.
	geometry := make(map[GeometryInstanceKey]*Geometry, len(instances))
	for key := range instances {
		if g, ok := cache[key.Name]; ok {
			geometry[key] = g
		}
	}

	return &InstancedScene{
		Name:      mainName,
		Geometry:  geometry,
		Instances: instances,
		Colors:    loadColors(libraryPath),
	}, nil
}

// LoadInstancedPoints reads the model at path like LoadInstanced and
// decomposes every instance transform into translation, axis angle
// rotation and scale.
func LoadInstancedPoints(path, libraryPath string, additionalPaths []string, settings *GeometrySettings) (*InstancedPointsScene, error) {
	scene, err := LoadInstanced(path, libraryPath, additionalPaths, settings)
	if err != nil {
		return nil, err
	}

	points := make(map[GeometryInstanceKey]PointInstances, len(scene.Instances))
	for key, transforms := range scene.Instances {
		points[key] = geometryPointInstances(transforms)
	}

	return &InstancedPointsScene{
		Name:     scene.Name,
		Geometry: scene.Geometry,
		Points:   points,
		Colors:   scene.Colors,
	}, nil
}

// parseModel parses the model at path and everything it references
// into a source map and returns the name of the main model.
func parseModel(path, libraryPath string, additionalPaths []string, settings *GeometrySettings) (*SourceMap, string, error) {
	disk := NewDiskResolver(libraryPath, additionalPaths, settings)
	// Files next to the model take priority over the library.
	disk.BasePaths = append([]string{filepath.Dir(path)}, disk.BasePaths...)

	sources := NewSourceMap()
	ensureStuds(disk, sources, settings)

	var resolver Resolver = disk
	if filepath.Ext(path) == ".io" {
		ioResolver, err := NewIoResolver(path, disk)
		if err != nil {
			return nil, "", err
		}
		resolver = ioResolver
	}

	mainName := Parse(path, resolver, sources)
	return sources, mainName, nil
}

// ensureStuds parses the replacement stud files into the source map.
// The replaced studs are usually not referenced by any existing file.
func ensureStuds(resolver Resolver, sources *SourceMap, settings *GeometrySettings) {
	if settings.StudType == StudLogo4 {
		Parse("stud-logo4.dat", resolver, sources)
		Parse("stud2-logo4.dat", resolver, sources)
	}
}

// loadColors loads the library color table. A model without color
// definitions should still import, so failures leave the table empty.
func loadColors(libraryPath string) ColorTable {
	colors, err := LoadColorTable(libraryPath)
	if err != nil {
		log.Error("unable to load color table",
			zap.String("library", libraryPath), zap.Error(err))
		return ColorTable{}
	}
	return colors
}

func loadNode(source *SourceFile, name string, transform math.Mat4, sources *SourceMap,
	descriptors map[string]geometryDescriptor, currentColor uint32, settings *GeometrySettings) *Node {

	var children []*Node
	geometryKey := ""

	key := strings.ToLower(name)
	if isPart(name) {
		// Parts keep the placeholder color so identical parts in
		// different colors share one geometry.
		if _, ok := descriptors[key]; !ok {
			descriptors[key] = geometryDescriptor{
				source:       source,
				currentColor: CurrentColor,
				recursive:    true,
			}
		}
		geometryKey = key
		// Recursive geometry already covers the part's subfiles.
	} else {
		if hasGeometry(source) {
			// Bake the current color since this geometry may not be
			// referenced anywhere else.
			if _, ok := descriptors[key]; !ok {
				descriptors[key] = geometryDescriptor{
					source:       source,
					currentColor: currentColor,
					recursive:    false,
				}
			}
			geometryKey = key
		}
		for _, cmd := range source.Cmds {
			ref, ok := cmd.(SubFileRefCmd)
			if !ok {
				continue
			}
			subfile, ok := sources.Get(ref.File)
			if !ok {
				continue
			}
			// Child transforms stay relative to preserve the hierarchy.
			childColor := ReplaceColor(ref.Color, currentColor)
			children = append(children, loadNode(subfile, ref.File, ref.Transform.Matrix(),
				sources, descriptors, childColor, settings))
		}
	}

	return &Node{
		Name:         name,
		GeometryKey:  geometryKey,
		CurrentColor: currentColor,
		Transform:    scaledTransform(transform, settings.SceneScale),
		Children:     children,
	}
}

func loadNodeInstanced(source *SourceFile, name string, world math.Mat4, sources *SourceMap,
	descriptors map[string]geometryDescriptor, instances map[GeometryInstanceKey][]math.Mat4,
	currentColor uint32, settings *GeometrySettings) {

	key := strings.ToLower(name)
	part := isPart(name)
	if part {
		// Parts keep the placeholder color so identical parts in
		// different colors share one geometry.
		if _, ok := descriptors[key]; !ok {
			descriptors[key] = geometryDescriptor{
				source:       source,
				currentColor: CurrentColor,
				recursive:    true,
			}
		}
	} else if hasGeometry(source) {
		// Bake the current color since this geometry may not be
		// referenced anywhere else.
		if _, ok := descriptors[key]; !ok {
			descriptors[key] = geometryDescriptor{
				source:       source,
				currentColor: currentColor,
				recursive:    false,
			}
		}
	}
	if part || hasGeometry(source) {
		// Key placements by color as well since the same part can
		// appear in more than one color.
		instanceKey := GeometryInstanceKey{Name: key, Color: currentColor}
		instances[instanceKey] = append(instances[instanceKey],
			scaledTransform(world, settings.SceneScale))
	}

	// Recursive geometry already covers the subfiles of parts.
	if !part {
		for _, cmd := range source.Cmds {
			ref, ok := cmd.(SubFileRefCmd)
			if !ok {
				continue
			}
			subfile, ok := sources.Get(ref.File)
			if !ok {
				continue
			}
			childColor := ReplaceColor(ref.Color, currentColor)
			loadNodeInstanced(subfile, ref.File, world.Mul(ref.Transform.Matrix()),
				sources, descriptors, instances, childColor, settings)
		}
	}
}

// createGeometryCache builds the geometry for every descriptor. Parts
// are independent of each other, so they are built in parallel.
func createGeometryCache(descriptors map[string]geometryDescriptor, sources *SourceMap, settings *GeometrySettings) map[string]*Geometry {
	cache := make(map[string]*Geometry, len(descriptors))

	var mu sync.Mutex
	var wg sync.WaitGroup
	for name, descriptor := range descriptors {
		wg.Add(1)
		go func(name string, descriptor geometryDescriptor) {
			defer wg.Done()
			geometry := CreateGeometry(descriptor.source, sources, name,
				descriptor.currentColor, descriptor.recursive, settings)
			mu.Lock()
			cache[name] = geometry
			mu.Unlock()
		}(name, descriptor)
	}
	wg.Wait()

	return cache
}

// geometryPointInstances decomposes instance transforms into separate
// attribute arrays. Axis angle rotations represent the decomposed
// quaternion better than euler angles.
func geometryPointInstances(transforms []math.Mat4) PointInstances {
	instances := PointInstances{
		Translations:   make([]math.Vec3, 0, len(transforms)),
		RotationAxes:   make([]math.Vec3, 0, len(transforms)),
		RotationAngles: make([]float32, 0, len(transforms)),
		Scales:         make([]math.Vec3, 0, len(transforms)),
	}

	for _, transform := range transforms {
		scale, rotation, translation := transform.Decompose()
		axis, angle := rotation.ToAxisAngle()

		instances.Translations = append(instances.Translations, translation)
		instances.RotationAxes = append(instances.RotationAxes, axis)
		instances.RotationAngles = append(instances.RotationAngles, angle)
		instances.Scales = append(instances.Scales, scale)
	}

	return instances
}

// scaledTransform scales only the translation so that the scale does
// not accumulate down the hierarchy. Vertex positions are scaled when
// the geometry is created.
func scaledTransform(transform math.Mat4, scale float32) math.Mat4 {
	transform[12] *= scale
	transform[13] *= scale
	transform[14] *= scale
	return transform
}

// isPart reports whether a referenced file is a part from the library
// rather than a model or submodel.
// TODO: Check the part type header instead of the extension.
func isPart(filename string) bool {
	return strings.HasSuffix(strings.ToLower(filename), ".dat")
}

// hasGeometry reports whether the file defines faces of its own. Some
// models mix subfile references with inline part geometry.
func hasGeometry(source *SourceFile) bool {
	for _, cmd := range source.Cmds {
		switch cmd.(type) {
		case TriangleCmd, QuadCmd:
			return true
		}
	}
	return false
}
