package ldraw

import (
	"strings"

	"github.com/chewxy/math32"

	"github.com/Faultbox/brickscene/pkg/math"
)

// Geometry is the flattened mesh of a part or model. Faces are stored
// as variable sized vertex loops: face i covers
// VertexIndices[FaceStartIndices[i]:FaceStartIndices[i]+FaceSizes[i]].
type Geometry struct {
	Vertices         []math.Vec3
	VertexIndices    []uint32
	FaceStartIndices []uint32
	FaceSizes        []uint32
	// FaceColors holds the color of each face, or a single element if
	// all faces share a color.
	FaceColors []uint32
	IsFaceStud []bool
	// Edges are the vertex index pairs of line type 2 edges.
	Edges [][2]uint32
	// EdgeIsSharp marks the edges to split when building a shaded mesh.
	EdgeIsSharp []bool
	// HasGrainySlopes is true for slope pieces with grainy faces.
	// Applications may apply a separate texture to faces based on an
	// angle threshold.
	HasGrainySlopes bool
	TextureInfo     *TextureInfo
}

// geometryContext holds the state that inherits or accumulates when
// recursing into subfiles.
type geometryContext struct {
	currentColor uint32
	transform    math.Mat4
	inverted     bool
	isStud       bool
	isSlope      bool
	textures     []pendingTexture
}

// CreateGeometry flattens source and everything it references into a
// single mesh. Sub-file references are followed only when recursive is
// set. The current color replaces color 16 on faces without their own
// color.
func CreateGeometry(source *SourceFile, sources *SourceMap, name string, currentColor uint32, recursive bool, settings *GeometrySettings) *Geometry {
	if settings == nil {
		settings = DefaultGeometrySettings()
	}

	geometry := &Geometry{HasGrainySlopes: IsSlopePiece(name)}

	// Parts should never start out inverted.
	ctx := geometryContext{
		currentColor: currentColor,
		transform:    math.Identity(),
		isStud:       isStud(name),
		isSlope:      IsSlopePiece(name),
	}

	vm := newVertexMap()
	var hardEdges [][2]math.Vec3

	appendGeometry(geometry, &hardEdges, vm, source, sources, ctx, recursive, settings)

	geometry.Edges = edgeIndices(hardEdges, vm)
	geometry.EdgeIsSharp = make([]bool, len(geometry.Edges))
	for i := range geometry.EdgeIsSharp {
		geometry.EdgeIsSharp[i] = true
	}

	// Collapse the face colors if all faces share one. A single color
	// can be applied per object rather than per face.
	if uniformColors(geometry.FaceColors) {
		geometry.FaceColors = geometry.FaceColors[:1]
	}

	min, max := bounds(geometry.Vertices)
	dimensions := max.Sub(min)

	scale := math.Vec3{X: settings.SceneScale, Y: settings.SceneScale, Z: settings.SceneScale}
	if settings.AddGapBetweenParts {
		scale = gapsScale(dimensions).Scale(settings.SceneScale)
	}

	// Apply the scale last to use LDUs as the unit for vertex welding.
	// This avoids small floating point comparisons for small scene
	// scales.
	for i := range geometry.Vertices {
		geometry.Vertices[i] = geometry.Vertices[i].Mul(scale)
	}

	return geometry
}

func isStud(name string) bool {
	// TODO: find a more accurate way to check this.
	return strings.Contains(name, "stu")
}

func uniformColors(colors []uint32) bool {
	if len(colors) == 0 {
		return false
	}
	for _, c := range colors[1:] {
		if c != colors[0] {
			return false
		}
	}
	return true
}

func bounds(vertices []math.Vec3) (math.Vec3, math.Vec3) {
	var min, max math.Vec3
	for i, v := range vertices {
		if i == 0 {
			min, max = v, v
			continue
		}
		min = min.Min(v)
		max = max.Max(v)
	}
	return min, max
}

// gapsScale converts a distance between parts to a scale factor. The
// gap is in LDUs since the part has not been scaled yet.
func gapsScale(dimensions math.Vec3) math.Vec3 {
	const gapDistance = 0.1
	if dimensions.LengthSquared() <= 0 {
		return math.Vec3{X: 1, Y: 1, Z: 1}
	}
	return math.Vec3{
		X: math32.Abs((2*gapDistance - dimensions.X) / dimensions.X),
		Y: math32.Abs((2*gapDistance - dimensions.Y) / dimensions.Y),
		Z: math32.Abs((2*gapDistance - dimensions.Z) / dimensions.Z),
	}
}

// edgeIndices locates the line type 2 edges in the assembled mesh so
// consuming applications can split them later.
func edgeIndices(edges [][2]math.Vec3, vm *vertexMap) [][2]uint32 {
	var indices [][2]uint32
	for _, edge := range edges {
		// TODO: Why do edge endpoints need a nearest match instead of
		// the welding threshold?
		i0, ok0 := vm.getNearest(edge[0])
		i1, ok1 := vm.getNearest(edge[1])
		if ok0 && ok1 {
			indices = append(indices, [2]uint32{i0, i1})
		}
	}
	return indices
}

func appendGeometry(geometry *Geometry, hardEdges *[][2]math.Vec3, vm *vertexMap,
	source *SourceFile, sources *SourceMap, ctx geometryContext, recursive bool,
	settings *GeometrySettings) {

	// BFC Extension: https://www.ldraw.org/article/415.html
	// The default winding can be assumed to be CCW and can change
	// within a file. Winding only affects the current file commands.
	winding := WindingCcw

	currentInverted := ctx.inverted
	// Invert if the current transform is "inverted".
	if ctx.transform.Determinant() < 0 {
		currentInverted = !currentInverted
	}

	invertNext := false

	texPathIndex := int32(0)
	var currentTexPath []int32

	var activeTextures, pendingTextures []pendingTexture
	for _, t := range ctx.textures {
		if len(t.path) == 0 {
			activeTextures = append(activeTextures, t)
		} else {
			pendingTextures = append(pendingTextures, t)
		}
	}
	ctx.textures = pendingTextures

	if len(activeTextures) > 1 {
		// TODO: at least narrow it down to one intersecting the face.
		log.Warn("multiple active textures, ignoring all but one")
	}

	for _, cmd := range source.Cmds {
		switch c := cmd.(type) {
		case PeTexPathCmd:
			currentTexPath = c.Paths
		case PeTexInfoCmd:
			texture, ok := newPendingTexture(c, currentTexPath, geometry)
			if !ok {
				continue
			}
			if len(texture.path) == 1 && texture.path[0] == -1 {
				texture.path = nil
			}
			if len(texture.path) == 0 {
				if len(activeTextures) > 1 {
					log.Warn("multiple active textures, ignoring all but one")
				}
				activeTextures = append(activeTextures, texture)
			} else {
				ctx.textures = append(ctx.textures, texture)
			}
		case BfcCmd:
			if c.Statement == BfcInvertNext {
				invertNext = true
			} else if c.Winding != nil {
				winding = *c.Winding
			}
		case TriangleCmd:
			var uvs []math.Vec2
			if c.UVs != nil {
				uvs = c.UVs[:]
			}
			addFace(geometry, ctx.transform, c.Vertices[:], uvs,
				invertWinding(winding, currentInverted), vm,
				settings.WeldVertices, firstTexture(activeTextures))
			geometry.FaceColors = append(geometry.FaceColors, ReplaceColor(c.Color, ctx.currentColor))
			geometry.IsFaceStud = append(geometry.IsFaceStud, ctx.isStud)
		case QuadCmd:
			var uvs []math.Vec2
			if c.UVs != nil {
				uvs = c.UVs[:]
			}
			addFace(geometry, ctx.transform, c.Vertices[:], uvs,
				invertWinding(winding, currentInverted), vm,
				settings.WeldVertices, firstTexture(activeTextures))
			geometry.FaceColors = append(geometry.FaceColors, ReplaceColor(c.Color, ctx.currentColor))
			geometry.IsFaceStud = append(geometry.IsFaceStud, ctx.isStud)
		case LineCmd:
			*hardEdges = append(*hardEdges, [2]math.Vec3{
				ctx.transform.TransformVec3(c.Vertices[0]),
				ctx.transform.TransformVec3(c.Vertices[1]),
			})
		case SubFileRefCmd:
			if !recursive {
				continue
			}
			subfileName := replaceStuds(c.File, settings.StudType)
			subfile, ok := sources.Get(subfileName)
			if !ok {
				continue
			}

			// Subfiles of slopes or studs are still slopes or studs.
			childIsStud := ctx.isStud || isStud(subfileName)
			childIsSlope := ctx.isSlope || IsSlopePiece(subfileName)

			// Set the walls of high contrast studs to black.
			// TODO: Create custom stud files for better accuracy.
			childColor := ReplaceColor(c.Color, ctx.currentColor)
			if childIsStud && settings.StudType == StudHighContrast &&
				strings.Contains(subfileName, "cyli.dat") {
				childColor = 0
			}

			childTextures := append([]pendingTexture(nil), activeTextures...)
			for _, texture := range ctx.textures {
				if len(texture.path) > 0 && texture.path[0] == texPathIndex {
					child := texture
					child.path = texture.path[1:]
					childTextures = append(childTextures, child)
				}
			}

			// The determinant is checked in each file. It should not
			// be included in the child's context.
			childCtx := geometryContext{
				currentColor: childColor,
				transform:    ctx.transform.Mul(c.Transform.Matrix()),
				inverted:     ctx.inverted != invertNext,
				isStud:       childIsStud,
				isSlope:      childIsSlope,
				textures:     childTextures,
			}

			// Don't invert additional subfile reference commands.
			invertNext = false

			appendGeometry(geometry, hardEdges, vm, subfile, sources, childCtx, recursive, settings)

			texPathIndex++
		}
	}
}

// replaceStuds swaps stud references according to the stud setting.
// https://wiki.ldraw.org/wiki/Studs_with_Logos
func replaceStuds(file string, studType StudType) string {
	switch studType {
	case StudDisabled:
		if isStud(file) {
			return ""
		}
	case StudLogo4:
		switch file {
		case "stud.dat":
			return "stud-logo4.dat"
		case "stud2.dat":
			return "stud2-logo4.dat"
		case "stud20.dat":
			return "stud20-logo4.dat"
		}
	}
	return file
}

func invertWinding(winding Winding, invert bool) Winding {
	if !invert {
		return winding
	}
	if winding == WindingCcw {
		return WindingCw
	}
	return WindingCcw
}

func firstTexture(textures []pendingTexture) *pendingTexture {
	if len(textures) == 0 {
		return nil
	}
	return &textures[0]
}

func addFace(geometry *Geometry, transform math.Mat4, vertices []math.Vec3, uvs []math.Vec2,
	winding Winding, vm *vertexMap, weldVertices bool, texture *pendingTexture) {

	if winding == WindingCw {
		for i, j := 0, len(vertices)-1; i < j; i, j = i+1, j-1 {
			vertices[i], vertices[j] = vertices[j], vertices[i]
		}
	}

	var texmap textureMap
	hasTexmap := false
	if texture != nil {
		texmap, hasTexmap = projectTexture(texture, transform, vertices, uvs)
	}

	startingIndex := uint32(len(geometry.VertexIndices))
	for _, v := range vertices {
		geometry.VertexIndices = append(geometry.VertexIndices,
			insertVertex(geometry, transform, v, vm, weldVertices))
	}
	geometry.FaceStartIndices = append(geometry.FaceStartIndices, startingIndex)
	geometry.FaceSizes = append(geometry.FaceSizes, uint32(len(vertices)))

	if hasTexmap {
		info := geometry.textureInfo()
		info.Indices = append(info.Indices, texmap.index)
		info.UVs = append(info.UVs, texmap.uvs...)
	} else if info := geometry.TextureInfo; info != nil {
		// Pad the existing buffers so every vertex keeps a UV.
		info.Indices = append(info.Indices, NoTextureIndex)
		for range vertices {
			info.UVs = append(info.UVs, math.Vec2{})
		}
	}
}

func insertVertex(geometry *Geometry, transform math.Mat4, vertex math.Vec3, vm *vertexMap, weldVertices bool) uint32 {
	v := transform.TransformVec3(vertex)
	index := uint32(len(geometry.Vertices))
	if weldVertices {
		if existing, ok := vm.insert(index, v); ok {
			return existing
		}
	}
	geometry.Vertices = append(geometry.Vertices, v)
	return index
}
