package ldraw

import (
	"github.com/Faultbox/brickscene/pkg/math"
)

// Command is a single parsed line of an LDraw file. The concrete type
// identifies the line type: CommentCmd and the meta commands for line
// type 0, SubFileRefCmd for type 1, LineCmd for type 2, TriangleCmd for
// type 3, QuadCmd for type 4 and OptLineCmd for type 5.
type Command interface {
	isCommand()
}

// Color is an sRGB color with 8 bits per channel.
type Color struct {
	Red   uint8
	Green uint8
	Blue  uint8
}

// Winding is the winding order of front-facing polygons.
type Winding uint8

const (
	WindingCcw Winding = iota
	WindingCw
)

func (w Winding) String() string {
	if w == WindingCw {
		return "CW"
	}
	return "CCW"
}

// ColorFinish is the surface finish of a !COLOUR definition.
// The zero value means no finish keyword was present.
type ColorFinish uint8

const (
	FinishNone ColorFinish = iota
	FinishChrome
	FinishPearlescent
	FinishRubber
	FinishMatteMetallic
	FinishMetal
	FinishGlitter
	FinishSpeckle
	FinishOther
)

func (f ColorFinish) String() string {
	switch f {
	case FinishChrome:
		return "chrome"
	case FinishPearlescent:
		return "pearlescent"
	case FinishRubber:
		return "rubber"
	case FinishMatteMetallic:
		return "matte_metallic"
	case FinishMetal:
		return "metal"
	case FinishGlitter:
		return "glitter"
	case FinishSpeckle:
		return "speckle"
	case FinishOther:
		return "material"
	default:
		return ""
	}
}

// GrainSize is the grain size of a glitter or speckle material, either a
// single size or a min/max range.
type GrainSize struct {
	Size    float32
	MinSize float32
	MaxSize float32
	Ranged  bool
}

// GlitterMaterial describes a !COLOUR MATERIAL GLITTER finish.
type GlitterMaterial struct {
	Value           Color
	Alpha           *uint8
	Luminance       *uint8
	SurfaceFraction float32
	VolumeFraction  float32
	Size            GrainSize
}

// SpeckleMaterial describes a !COLOUR MATERIAL SPECKLE finish.
type SpeckleMaterial struct {
	Value           Color
	Alpha           *uint8
	Luminance       *uint8
	SurfaceFraction float32
	Size            GrainSize
}

// CategoryCmd is a !CATEGORY language extension command.
type CategoryCmd struct {
	Category string
}

// KeywordsCmd is a !KEYWORDS language extension command.
type KeywordsCmd struct {
	Keywords []string
}

// ColourCmd is a !COLOUR language extension command defining a color
// and its matching edge color.
type ColourCmd struct {
	Name  string
	Code  uint32
	Value Color
	Edge  Color
	// Alpha is the opacity from 0 (transparent) to 255 (opaque), if present.
	Alpha *uint8
	// Luminance is the brightness for glowing colors, if present.
	Luminance *uint8
	Finish    ColorFinish
	// Glitter is set when Finish is FinishGlitter.
	Glitter *GlitterMaterial
	// Speckle is set when Finish is FinishSpeckle.
	Speckle *SpeckleMaterial
	// Material holds the raw text of an unrecognized MATERIAL finish.
	Material string
}

// CommentCmd is a comment or any meta command that is not recognized.
type CommentCmd struct {
	Text string
}

// FileCmd starts a sub-file block in a multi-part document.
type FileCmd struct {
	File string
}

// NoFileCmd ends the current sub-file block in a multi-part document.
type NoFileCmd struct{}

// DataCmd starts an embedded !DATA block.
type DataCmd struct {
	File string
}

// Base64DataCmd is one line of base64 encoded content in a !DATA block.
type Base64DataCmd struct {
	Data []byte
}

// BfcStatement identifies a BFC language extension statement.
type BfcStatement uint8

const (
	BfcNoCertify BfcStatement = iota
	BfcCertify
	BfcWinding
	BfcNoClip
	BfcClip
	BfcInvertNext
)

// BfcCmd is a back-face culling meta command.
type BfcCmd struct {
	Statement BfcStatement
	// Winding is set for BfcWinding and optionally for BfcCertify and BfcClip.
	Winding *Winding
}

// PeTexPathCmd selects the sub-file reference path that the following
// PE_TEX_INFO command applies to. Studio extension.
type PeTexPathCmd struct {
	Paths []int32
}

// PeTexInfoTransform is the planar projection part of a PE_TEX_INFO
// command: a box placement and the projected UV range.
type PeTexInfoTransform struct {
	Transform Transform
	PointMin  math.Vec2
	PointMax  math.Vec2
}

// PeTexInfoCmd embeds a Studio texture image with an optional planar
// projection. Without a projection the UVs come from the face commands.
type PeTexInfoCmd struct {
	Transform *PeTexInfoTransform
	Data      []byte
}

// SubFileRefCmd is a line type 1 sub-file reference.
type SubFileRefCmd struct {
	Color     uint32
	Transform Transform
	File      string
}

// LineCmd is a line type 2 edge line between two vertices.
type LineCmd struct {
	Color    uint32
	Vertices [2]math.Vec3
}

// TriangleCmd is a line type 3 filled triangle. UVs is set when the line
// carries the Studio texture coordinate extension.
type TriangleCmd struct {
	Color    uint32
	Vertices [3]math.Vec3
	UVs      *[3]math.Vec2
}

// QuadCmd is a line type 4 filled quadrilateral.
type QuadCmd struct {
	Color    uint32
	Vertices [4]math.Vec3
	UVs      *[4]math.Vec2
}

// OptLineCmd is a line type 5 optional edge line with two control points.
type OptLineCmd struct {
	Color         uint32
	Vertices      [2]math.Vec3
	ControlPoints [2]math.Vec3
}

// Transform is the placement of a sub-file reference as it appears on
// the line: a position and the three rows of a 3x3 rotation/scale matrix.
type Transform struct {
	Pos  math.Vec3
	Row0 math.Vec3
	Row1 math.Vec3
	Row2 math.Vec3
}

// Matrix expands the transform to a column-major 4x4 matrix.
func (t Transform) Matrix() math.Mat4 {
	return math.Mat4{
		t.Row0.X, t.Row1.X, t.Row2.X, 0,
		t.Row0.Y, t.Row1.Y, t.Row2.Y, 0,
		t.Row0.Z, t.Row1.Z, t.Row2.Z, 0,
		t.Pos.X, t.Pos.Y, t.Pos.Z, 1,
	}
}

func (CategoryCmd) isCommand()   {}
func (KeywordsCmd) isCommand()   {}
func (ColourCmd) isCommand()     {}
func (CommentCmd) isCommand()    {}
func (FileCmd) isCommand()       {}
func (NoFileCmd) isCommand()     {}
func (DataCmd) isCommand()       {}
func (Base64DataCmd) isCommand() {}
func (BfcCmd) isCommand()        {}
func (PeTexPathCmd) isCommand()  {}
func (PeTexInfoCmd) isCommand()  {}
func (SubFileRefCmd) isCommand() {}
func (LineCmd) isCommand()       {}
func (TriangleCmd) isCommand()   {}
func (QuadCmd) isCommand()       {}
func (OptLineCmd) isCommand()    {}
