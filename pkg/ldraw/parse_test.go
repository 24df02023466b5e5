package ldraw

import (
	"reflect"
	"testing"

	"github.com/Faultbox/brickscene/pkg/math"
)

func u8ptr(v uint8) *uint8 {
	return &v
}

func windingPtr(w Winding) *Winding {
	return &w
}

func v3(x, y, z float32) math.Vec3 {
	return math.Vec3{X: x, Y: y, Z: z}
}

func subRef(color uint32, pos, row0, row1, row2 math.Vec3, file string) SubFileRefCmd {
	return SubFileRefCmd{
		Color:     color,
		Transform: Transform{Pos: pos, Row0: row0, Row1: row1, Row2: row2},
		File:      file,
	}
}

func checkCommands(t *testing.T, data string, want []Command) {
	t.Helper()
	got := ParseCommands([]byte(data))
	if !reflect.DeepEqual(got, want) {
		t.Errorf("expected %+v, got %+v", want, got)
	}
}

func TestParseCommands_Comment(t *testing.T) {
	checkCommands(t, "0 this is a comment", []Command{
		CommentCmd{Text: "this is a comment"},
	})
	checkCommands(t, "0 test of comment, with \"weird\" characters", []Command{
		CommentCmd{Text: "test of comment, with \"weird\" characters"},
	})
	// A bare 0 line is an empty comment.
	checkCommands(t, "0", []Command{CommentCmd{}})
	checkCommands(t, "0   ", []Command{CommentCmd{}})
}

func TestParseCommands_LineEndings(t *testing.T) {
	want := []Command{
		CommentCmd{Text: "first"},
		CommentCmd{Text: "second"},
	}
	checkCommands(t, "0 first\n0 second", want)
	checkCommands(t, "0 first\r\n0 second\r\n", want)
	checkCommands(t, "0 first\n\n   \n0 second\n", want)
}

func TestParseCommands_UTF8BOM(t *testing.T) {
	// LDraw OMR 4558-1 Metroliner
	checkCommands(t, "\xEF\xBB\xBF0 FILE 4558 - main.ldr", []Command{
		FileCmd{File: "4558 - main.ldr"},
	})
}

func TestParseCommands_InvalidLinesSkipped(t *testing.T) {
	data := "9 not a line type\n3 16 1 1 0 0.9239 1 0.3827 0.9239 0 0.3827\nnonsense"
	want := []Command{
		TriangleCmd{
			Color: 16,
			Vertices: [3]math.Vec3{
				{X: 1, Y: 1, Z: 0},
				{X: 0.9239, Y: 1, Z: 0.3827},
				{X: 0.9239, Y: 0, Z: 0.3827},
			},
		},
	}
	checkCommands(t, data, want)
}

func TestParseCommands_Category(t *testing.T) {
	checkCommands(t, "0 !CATEGORY Figure Accessory", []Command{
		CategoryCmd{Category: "Figure Accessory"},
	})
}

func TestParseCommands_Keywords(t *testing.T) {
	checkCommands(t, "0 !KEYWORDS western, wild west, spaghetti western, horse opera, cowboy", []Command{
		KeywordsCmd{Keywords: []string{
			"western", "wild west", "spaghetti western", "horse opera", "cowboy",
		}},
	})
}

func TestParseCommands_Colour(t *testing.T) {
	// One color of each type from LDCfgalt.ldr. The formatting is
	// similar in LDConfig.ldr.
	tests := []struct {
		name string
		line string
		want ColourCmd
	}{
		{
			name: "plain",
			line: "0 !COLOUR Black                              CODE   0   VALUE #1B2A34   EDGE #2B4354",
			want: ColourCmd{
				Name:  "Black",
				Code:  0,
				Value: Color{Red: 0x1B, Green: 0x2A, Blue: 0x34},
				Edge:  Color{Red: 0x2B, Green: 0x43, Blue: 0x54},
			},
		},
		{
			name: "alpha",
			line: "0 !COLOUR Trans_Dark_Blue                    CODE  33   VALUE #0020A0   EDGE #000B38   ALPHA 128",
			want: ColourCmd{
				Name:  "Trans_Dark_Blue",
				Code:  33,
				Value: Color{Green: 0x20, Blue: 0xA0},
				Edge:  Color{Blue: 0x38, Green: 0x0B},
				Alpha: u8ptr(128),
			},
		},
		{
			name: "chrome",
			line: "0 !COLOUR Chrome_Antique_Brass               CODE  60   VALUE #645A4C   EDGE #665B4D                               CHROME",
			want: ColourCmd{
				Name:   "Chrome_Antique_Brass",
				Code:   60,
				Value:  Color{Red: 0x64, Green: 0x5A, Blue: 0x4C},
				Edge:   Color{Red: 0x66, Green: 0x5B, Blue: 0x4D},
				Finish: FinishChrome,
			},
		},
		{
			name: "pearlescent",
			line: "0 !COLOUR Pearl_Gold                         CODE 297   VALUE #AA7F2E   EDGE #805F23                               PEARLESCENT",
			want: ColourCmd{
				Name:   "Pearl_Gold",
				Code:   297,
				Value:  Color{Red: 0xAA, Green: 0x7F, Blue: 0x2E},
				Edge:   Color{Red: 0x80, Green: 0x5F, Blue: 0x23},
				Finish: FinishPearlescent,
			},
		},
		{
			name: "metal",
			line: "0 !COLOUR Metallic_Silver                    CODE  80   VALUE #767676   EDGE #8E8E8E                               METAL",
			want: ColourCmd{
				Name:   "Metallic_Silver",
				Code:   80,
				Value:  Color{Red: 0x76, Green: 0x76, Blue: 0x76},
				Edge:   Color{Red: 0x8E, Green: 0x8E, Blue: 0x8E},
				Finish: FinishMetal,
			},
		},
		{
			name: "rubber",
			line: "0 !COLOUR Rubber_Yellow                      CODE  65   VALUE #FAC80A   EDGE #9A7C03                               RUBBER",
			want: ColourCmd{
				Name:   "Rubber_Yellow",
				Code:   65,
				Value:  Color{Red: 0xFA, Green: 0xC8, Blue: 0x0A},
				Edge:   Color{Red: 0x9A, Green: 0x7C, Blue: 0x03},
				Finish: FinishRubber,
			},
		},
		{
			name: "luminance",
			line: "0 !COLOUR Glow_In_Dark_White                 CODE 329   VALUE #F5F3D7   EDGE #E0DA85   ALPHA 240   LUMINANCE 15",
			want: ColourCmd{
				Name:      "Glow_In_Dark_White",
				Code:      329,
				Value:     Color{Red: 0xF5, Green: 0xF3, Blue: 0xD7},
				Edge:      Color{Red: 0xE0, Green: 0xDA, Blue: 0x85},
				Alpha:     u8ptr(240),
				Luminance: u8ptr(15),
			},
		},
		{
			name: "glitter",
			line: "0 !COLOUR Opal_Trans_Dark_Blue               CODE 10366 VALUE #0020A0   EDGE #000B38   ALPHA 200   LUMINANCE  5    MATERIAL GLITTER VALUE #001D38 FRACTION 0.8 VFRACTION 0.6 MINSIZE 0.02 MAXSIZE 0.1",
			want: ColourCmd{
				Name:      "Opal_Trans_Dark_Blue",
				Code:      10366,
				Value:     Color{Green: 0x20, Blue: 0xA0},
				Edge:      Color{Green: 0x0B, Blue: 0x38},
				Alpha:     u8ptr(200),
				Luminance: u8ptr(5),
				Finish:    FinishGlitter,
				Glitter: &GlitterMaterial{
					Value:           Color{Green: 0x1D, Blue: 0x38},
					SurfaceFraction: 0.8,
					VolumeFraction:  0.6,
					Size:            GrainSize{MinSize: 0.02, MaxSize: 0.1, Ranged: true},
				},
			},
		},
		{
			name: "speckle",
			line: "0 !COLOUR Speckle_Black_Silver               CODE 132   VALUE #000000   EDGE #898788                               MATERIAL SPECKLE VALUE #898788 FRACTION 0.4 MINSIZE 1 MAXSIZE 3",
			want: ColourCmd{
				Name:   "Speckle_Black_Silver",
				Code:   132,
				Value:  Color{},
				Edge:   Color{Red: 0x89, Green: 0x87, Blue: 0x88},
				Finish: FinishSpeckle,
				Speckle: &SpeckleMaterial{
					Value:           Color{Red: 0x89, Green: 0x87, Blue: 0x88},
					SurfaceFraction: 0.4,
					Size:            GrainSize{MinSize: 1, MaxSize: 3, Ranged: true},
				},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			checkCommands(t, tt.line, []Command{tt.want})
		})
	}
}

func TestParseCommands_ColourAlphaOutOfRange(t *testing.T) {
	// Values over 255 reject the whole ALPHA option.
	checkCommands(t, "0 !COLOUR X CODE 5 VALUE #010203 EDGE #040506 ALPHA 256", []Command{
		ColourCmd{
			Name:  "X",
			Code:  5,
			Value: Color{Red: 1, Green: 2, Blue: 3},
			Edge:  Color{Red: 4, Green: 5, Blue: 6},
		},
	})
}

func TestParseCommands_SubFileRef(t *testing.T) {
	checkCommands(t, "1 16 0 0 0 1 0 0 0 1 0 0 0 1 aa/aaaaddd", []Command{
		SubFileRefCmd{
			Color: 16,
			Transform: Transform{
				Pos:  math.Vec3{},
				Row0: math.Vec3{X: 1},
				Row1: math.Vec3{Y: 1},
				Row2: math.Vec3{Z: 1},
			},
			File: "aa/aaaaddd",
		},
	})
}

func TestParseCommands_Line(t *testing.T) {
	checkCommands(t, "2 16 1 1 0 0.9239 1 0.3827", []Command{
		LineCmd{
			Color: 16,
			Vertices: [2]math.Vec3{
				{X: 1, Y: 1, Z: 0},
				{X: 0.9239, Y: 1, Z: 0.3827},
			},
		},
	})
}

func TestParseCommands_Triangle(t *testing.T) {
	want := []Command{
		TriangleCmd{
			Color: 16,
			Vertices: [3]math.Vec3{
				{X: 1, Y: 1, Z: 0},
				{X: 0.9239, Y: 1, Z: 0.3827},
				{X: 0.9239, Y: 0, Z: 0.3827},
			},
		},
	}
	checkCommands(t, "3 16 1 1 0 0.9239 1 0.3827 0.9239 0 0.3827", want)
	// Trailing spaces are accepted.
	checkCommands(t, "3 16 1 1 0 0.9239 1 0.3827 0.9239 0 0.3827  ", want)
}

func TestParseCommands_TriangleUVs(t *testing.T) {
	checkCommands(t, "3 16 -1 0 1 -1 0 -1 1 0 -1 0 1 0 0 1 0", []Command{
		TriangleCmd{
			Color: 16,
			Vertices: [3]math.Vec3{
				{X: -1, Y: 0, Z: 1},
				{X: -1, Y: 0, Z: -1},
				{X: 1, Y: 0, Z: -1},
			},
			UVs: &[3]math.Vec2{{X: 0, Y: 1}, {X: 0, Y: 0}, {X: 1, Y: 0}},
		},
	})
}

func TestParseCommands_IncompleteTriangleUVs(t *testing.T) {
	// Studio 2.0/ldraw/parts/s/2528s01.dat has triangles followed by a
	// partial set of texture coordinates. The extras are ignored.
	data := "3 16 16.3651 -0.134918 2 18 -1 2 16.382 -4.12189 2 11.9744 -8.33964 2\n" +
		"4 16 8.01075 -14.6828 2 11.9744 -8.33964 2 11.3035 -13 2 8.99 -16.463 2\n"
	checkCommands(t, data, []Command{
		TriangleCmd{
			Color: 16,
			Vertices: [3]math.Vec3{
				{X: 16.3651, Y: -0.134918, Z: 2},
				{X: 18, Y: -1, Z: 2},
				{X: 16.382, Y: -4.12189, Z: 2},
			},
		},
		QuadCmd{
			Color: 16,
			Vertices: [4]math.Vec3{
				{X: 8.01075, Y: -14.6828, Z: 2},
				{X: 11.9744, Y: -8.33964, Z: 2},
				{X: 11.3035, Y: -13, Z: 2},
				{X: 8.99, Y: -16.463, Z: 2},
			},
		},
	})
}

func TestParseCommands_Quad(t *testing.T) {
	checkCommands(t, "4 16 1 1 0 0.9239 1 0.3827 0.9239 0 0.3827 1 0 0", []Command{
		QuadCmd{
			Color: 16,
			Vertices: [4]math.Vec3{
				{X: 1, Y: 1, Z: 0},
				{X: 0.9239, Y: 1, Z: 0.3827},
				{X: 0.9239, Y: 0, Z: 0.3827},
				{X: 1, Y: 0, Z: 0},
			},
		},
	})
}

func TestParseCommands_QuadUVs(t *testing.T) {
	checkCommands(t, "4 16 -1 0 1 -1 0 -1 1 0 -1 1 1 -1 0 1 0 0 1 0 1 1", []Command{
		QuadCmd{
			Color: 16,
			Vertices: [4]math.Vec3{
				{X: -1, Y: 0, Z: 1},
				{X: -1, Y: 0, Z: -1},
				{X: 1, Y: 0, Z: -1},
				{X: 1, Y: 1, Z: -1},
			},
			UVs: &[4]math.Vec2{
				{X: 0, Y: 1}, {X: 0, Y: 0}, {X: 1, Y: 0}, {X: 1, Y: 1},
			},
		},
	})
}

func TestParseCommands_QuadHexColor(t *testing.T) {
	// Studio 2.0/ldraw/parts/973ps6.dat
	checkCommands(t, "4 0x2995220 2.39 2.71 -10 1.74 2.94 -10 1.51 12.04 -10 3.51 8.62 -10", []Command{
		QuadCmd{
			Color: 0x2995220,
			Vertices: [4]math.Vec3{
				{X: 2.39, Y: 2.71, Z: -10},
				{X: 1.74, Y: 2.94, Z: -10},
				{X: 1.51, Y: 12.04, Z: -10},
				{X: 3.51, Y: 8.62, Z: -10},
			},
		},
	})
}

func TestParseCommands_OptLine(t *testing.T) {
	checkCommands(t, "5 16 1 1 0 0.9239 1 0.3827 0.9239 0 0.3827 1 0 0", []Command{
		OptLineCmd{
			Color: 16,
			Vertices: [2]math.Vec3{
				{X: 1, Y: 1, Z: 0},
				{X: 0.9239, Y: 1, Z: 0.3827},
			},
			ControlPoints: [2]math.Vec3{
				{X: 0.9239, Y: 0, Z: 0.3827},
				{X: 1, Y: 0, Z: 0},
			},
		},
	})
}

func TestParseCommands_OptLineNoControlPoints(t *testing.T) {
	// Bricklink Studio writes optional lines without control points.
	checkCommands(t, "5 24 2.475 5.763 30.000 2.517 6.319 34.679", []Command{
		OptLineCmd{
			Color: 24,
			Vertices: [2]math.Vec3{
				{X: 2.475, Y: 5.763, Z: 30},
				{X: 2.517, Y: 6.319, Z: 34.679},
			},
		},
	})
}

func TestParseCommands_BFC(t *testing.T) {
	data := `0 BFC NOCERTIFY
	0 BFC CERTIFY
	0 BFC CERTIFY CW
	0 BFC CERTIFY CCW

	0 BFC CW
	0 BFC CCW

	0 BFC CLIP
	0 BFC CLIP CW
	0 BFC CLIP CCW

	0 BFC NOCLIP

	0 BFC INVERTNEXT
	`
	checkCommands(t, data, []Command{
		BfcCmd{Statement: BfcNoCertify},
		BfcCmd{Statement: BfcCertify},
		BfcCmd{Statement: BfcCertify, Winding: windingPtr(WindingCw)},
		BfcCmd{Statement: BfcCertify, Winding: windingPtr(WindingCcw)},
		BfcCmd{Statement: BfcWinding, Winding: windingPtr(WindingCw)},
		BfcCmd{Statement: BfcWinding, Winding: windingPtr(WindingCcw)},
		BfcCmd{Statement: BfcClip},
		BfcCmd{Statement: BfcClip, Winding: windingPtr(WindingCw)},
		BfcCmd{Statement: BfcClip, Winding: windingPtr(WindingCcw)},
		BfcCmd{Statement: BfcNoClip},
		BfcCmd{Statement: BfcInvertNext},
	})
}

func TestParseCommands_File(t *testing.T) {
	checkCommands(t, "0 FILE submodel", []Command{FileCmd{File: "submodel"}})
	// Trailing whitespace is not part of the filename.
	checkCommands(t, "0 FILE 1489 - car crane.ldr ", []Command{
		FileCmd{File: "1489 - car crane.ldr"},
	})
}

func TestParseCommands_NoFile(t *testing.T) {
	checkCommands(t, "0 NOFILE", []Command{NoFileCmd{}})
}

func TestParseCommands_Data(t *testing.T) {
	checkCommands(t, "0 !DATA data.bin", []Command{DataCmd{File: "data.bin"}})
}

func TestParseCommands_Base64Data(t *testing.T) {
	checkCommands(t, "0 !: SGVsbG8gV29ybGQh", []Command{
		Base64DataCmd{Data: []byte("Hello World!")},
	})
}

func TestParseCommands_PeTexPath(t *testing.T) {
	checkCommands(t, "0 PE_TEX_PATH 0 1", []Command{
		PeTexPathCmd{Paths: []int32{0, 1}},
	})
	checkCommands(t, "0 PE_TEX_PATH -1", []Command{
		PeTexPathCmd{Paths: []int32{-1}},
	})
}

func TestParseCommands_PeTexInfo(t *testing.T) {
	data := "0 PE_TEX_INFO 0.0 0.8938 -0.25 -1.3367 0.0 0.0 0.0 -0.2750 0.0 0.0 0.0 -1.5050 -60.0 50.0 60.0 -30.0 YWJj"
	checkCommands(t, data, []Command{
		PeTexInfoCmd{
			Transform: &PeTexInfoTransform{
				Transform: Transform{
					Pos:  math.Vec3{X: 0, Y: 0.8938, Z: -0.25},
					Row0: math.Vec3{X: -1.3367},
					Row1: math.Vec3{Y: -0.275},
					Row2: math.Vec3{Z: -1.505},
				},
				PointMin: math.Vec2{X: -60, Y: 50},
				PointMax: math.Vec2{X: 60, Y: -30},
			},
			Data: []byte("abc"),
		},
	})
}

func TestParseCommands_PeTexInfoNoMatrix(t *testing.T) {
	checkCommands(t, "0 PE_TEX_INFO YWJj", []Command{
		PeTexInfoCmd{Data: []byte("abc")},
	})
}

// Multi-part document exercising several language extensions at once.
// Example taken from https://www.ldraw.org/article/47.html
func TestParseCommands_MPD(t *testing.T) {
	const data = `0 FILE main.ldr
        1 7 0 0 0 1 0 0 0 1 0 0 0 1 819.dat
        1 4 80 -8 70 1 0 0 0 1 0 0 0 1 house.ldr
        1 4 -70 -8 20 0 0 -1 0 1 0 1 0 0 house.ldr
        1 4 50 -8 -20 0 0 -1 0 1 0 1 0 0 house.ldr
        1 4 0 -8 -30 1 0 0 0 1 0 0 0 1 house.ldr
        1 4 -20 -8 70 1 0 0 0 1 0 0 0 1 house.ldr

        0 FILE house.ldr
        1 16 0 0 0 1 0 0 0 1 0 0 0 1 3023.dat
        1 16 0 -24 0 1 0 0 0 1 0 0 0 1 3065.dat
        1 16 0 -48 0 1 0 0 0 1 0 0 0 1 3065.dat
        1 16 0 -72 0 0 0 -1 0 1 0 1 0 0 3044b.dat
        1 4 0 -22 -10 1 0 0 0 0 -1 0 1 0 sticker.ldr

        0 FILE sticker.ldr
        0 UNOFFICIAL PART
        0 BFC CERTIFY CCW
        1 16   0 -0.25 0   20 0 0   0 0.25 0   0 0 30   box5.dat
        0 !TEXMAP START PLANAR   -20 -0.25 30   20 -0.25 30   -20 -0.25 -30   sticker.png
        4 16   -20 -0.25 30   -20 -0.25 -30   20 -0.25 -30   20 -0.25 30
        0 !TEXMAP END

        0 !DATA sticker.png
        0 !: iVBORw0KGgoAAAANSUhEUgAAAFAAAAB4CAIAAADqjOKhAAAAAXNSR0IArs4c6QAAAARnQU1BAACx
        0 !: jwv8YQUAAAAJcEhZcwAADsMAAA7DAcdvqGQAAAEUSURBVHhe7du9DcIwFABhk5WgQLSsQM0UjMEU
        0 !: 1BQsQIsoYAt6NkAYxQV/JQ7WvfuKkFTR6UmOFJzR9bJLkXTlNwyD6QymM5ju5Tl8m67KGUt3XJcz
        0 !: J/yY8HZ/6C8BFvNZPoaesMF0BtMZTGcwncF0BtMZTGcwncF0BtMZTGcwnf8t0bmLh85gOoPpDKYz
        0 !: mM5gOoPpDKYzmM5gunDBf3tN+/zqNKt367cbOeGUTstxf1nJZHPOx68T/u3XB5/7/zMXLTqD6Qym
        0 !: M5jOYDqD6QymM5jOYDqD6QymM5jOYDqD6QymM5jOYLpwwW3t8ajBXTxtTHgwLlp0BtMZTGcwncF0
        0 !: BtMZTNfKZzyDiT3hCFy06IIFp3QH/CBMh66aBy4AAAAASUVORK5CYII=
        `

	want := []Command{
		FileCmd{File: "main.ldr"},
		subRef(7, v3(0, 0, 0), v3(1, 0, 0), v3(0, 1, 0), v3(0, 0, 1), "819.dat"),
		subRef(4, v3(80, -8, 70), v3(1, 0, 0), v3(0, 1, 0), v3(0, 0, 1), "house.ldr"),
		subRef(4, v3(-70, -8, 20), v3(0, 0, -1), v3(0, 1, 0), v3(1, 0, 0), "house.ldr"),
		subRef(4, v3(50, -8, -20), v3(0, 0, -1), v3(0, 1, 0), v3(1, 0, 0), "house.ldr"),
		subRef(4, v3(0, -8, -30), v3(1, 0, 0), v3(0, 1, 0), v3(0, 0, 1), "house.ldr"),
		subRef(4, v3(-20, -8, 70), v3(1, 0, 0), v3(0, 1, 0), v3(0, 0, 1), "house.ldr"),
		FileCmd{File: "house.ldr"},
		subRef(16, v3(0, 0, 0), v3(1, 0, 0), v3(0, 1, 0), v3(0, 0, 1), "3023.dat"),
		subRef(16, v3(0, -24, 0), v3(1, 0, 0), v3(0, 1, 0), v3(0, 0, 1), "3065.dat"),
		subRef(16, v3(0, -48, 0), v3(1, 0, 0), v3(0, 1, 0), v3(0, 0, 1), "3065.dat"),
		subRef(16, v3(0, -72, 0), v3(0, 0, -1), v3(0, 1, 0), v3(1, 0, 0), "3044b.dat"),
		subRef(4, v3(0, -22, -10), v3(1, 0, 0), v3(0, 0, -1), v3(0, 1, 0), "sticker.ldr"),
		FileCmd{File: "sticker.ldr"},
		CommentCmd{Text: "UNOFFICIAL PART"},
		BfcCmd{Statement: BfcCertify, Winding: windingPtr(WindingCcw)},
		subRef(16, v3(0, -0.25, 0), v3(20, 0, 0), v3(0, 0.25, 0), v3(0, 0, 30), "box5.dat"),
		CommentCmd{Text: "!TEXMAP START PLANAR   -20 -0.25 30   20 -0.25 30   -20 -0.25 -30   sticker.png"},
		QuadCmd{
			Color: 16,
			Vertices: [4]math.Vec3{
				v3(-20, -0.25, 30),
				v3(-20, -0.25, -30),
				v3(20, -0.25, -30),
				v3(20, -0.25, 30),
			},
		},
		CommentCmd{Text: "!TEXMAP END"},
		DataCmd{File: "sticker.png"},
		Base64DataCmd{Data: []byte{
			137, 80, 78, 71, 13, 10, 26, 10, 0, 0, 0, 13, 73, 72, 68, 82, 0, 0, 0, 80,
			0, 0, 0, 120, 8, 2, 0, 0, 0, 234, 140, 226, 161, 0, 0, 0, 1, 115, 82, 71,
			66, 0, 174, 206, 28, 233, 0, 0, 0, 4, 103, 65, 77, 65, 0, 0, 177,
		}},
		Base64DataCmd{Data: []byte{
			143, 11, 252, 97, 5, 0, 0, 0, 9, 112, 72, 89, 115, 0, 0, 14, 195, 0, 0, 14,
			195, 1, 199, 111, 168, 100, 0, 0, 1, 20, 73, 68, 65, 84, 120, 94, 237, 219,
			189, 13, 194, 48, 20, 0, 97, 147, 149, 160, 64, 180, 172, 64, 205, 20, 140, 193, 20,
		}},
		Base64DataCmd{Data: []byte{
			212, 20, 44, 64, 139, 40, 96, 11, 122, 54, 64, 24, 197, 5, 127, 37, 14,
			214, 189, 251, 138, 144, 84, 209, 233, 73, 142, 20, 156, 209, 245, 178, 75,
			145, 116, 229, 55, 12, 131, 233, 12, 166, 51, 152, 238, 229, 57, 124, 155,
			174, 202, 25, 75, 119, 92, 151, 51,
		}},
		Base64DataCmd{Data: []byte{
			39, 252, 152, 240, 118, 127, 232, 47, 1, 22, 243, 89, 62, 134, 158, 176,
			193, 116, 6, 211, 25, 76, 103, 48, 157, 193, 116, 6, 211, 25, 76, 103, 48,
			157, 193, 116, 6, 211, 25, 76, 103, 48, 157, 255, 45, 209, 185, 139, 135,
			206, 96, 58, 131, 233, 12, 166, 51,
		}},
		Base64DataCmd{Data: []byte{
			152, 206, 96, 58, 131, 233, 12, 166, 51, 152, 206, 96, 186, 112, 193, 127,
			123, 77, 251, 252, 234, 52, 171, 119, 235, 183, 27, 57, 225, 148, 78, 203,
			113, 127, 89, 201, 100, 115, 206, 199, 175, 19, 254, 237, 215, 7, 159, 251,
			255, 51, 23, 45, 58, 131, 233, 12, 166,
		}},
		Base64DataCmd{Data: []byte{
			51, 152, 206, 96, 58, 131, 233, 12, 166, 51, 152, 206, 96, 58, 131, 233,
			12, 166, 51, 152, 206, 96, 58, 131, 233, 12, 166, 51, 152, 206, 96, 186,
			112, 193, 109, 237, 241, 168, 193, 93, 60, 109, 76, 120, 48, 46, 90, 116,
			6, 211, 25, 76, 103, 48, 157, 193, 116,
		}},
		Base64DataCmd{Data: []byte{
			6, 211, 25, 76, 215, 202, 103, 60, 131, 137, 61, 225, 8, 92, 180, 232, 130,
			5, 167, 116, 7, 252, 32, 76, 135, 174, 154, 7, 46, 0, 0, 0, 0, 73, 69, 78,
			68, 174, 66, 96, 130,
		}},
	}
	checkCommands(t, data, want)
}

func TestColorID(t *testing.T) {
	tests := []struct {
		input string
		want  uint32
		ok    bool
	}{
		{"", 0, false},
		{"1", 1, true},
		{"16 ", 16, true},
		// Studio 2.0/ldraw/parts/973ps6.dat
		{"0x2995220", 0x2995220, true},
		{"FF", 255, true},
	}
	for _, tt := range tests {
		s := &scanner{line: []byte(tt.input)}
		got, ok := s.colorID()
		if ok != tt.ok {
			t.Errorf("colorID(%q): expected ok %v, got %v", tt.input, tt.ok, ok)
			continue
		}
		if ok && got != tt.want {
			t.Errorf("colorID(%q): expected %d, got %d", tt.input, tt.want, got)
		}
	}
}

func TestHexColor(t *testing.T) {
	tests := []struct {
		input string
		want  Color
		ok    bool
	}{
		{"", Color{}, false},
		{"#", Color{}, false},
		{"#1", Color{}, false},
		{"#12345Z", Color{}, false},
		{"#123456", Color{Red: 0x12, Green: 0x34, Blue: 0x56}, true},
		{"#ABCDEF", Color{Red: 0xAB, Green: 0xCD, Blue: 0xEF}, true},
		{"#8E5cAf", Color{Red: 0x8E, Green: 0x5C, Blue: 0xAF}, true},
		{"#123456e", Color{Red: 0x12, Green: 0x34, Blue: 0x56}, true},
	}
	for _, tt := range tests {
		s := &scanner{line: []byte(tt.input)}
		got, ok := s.hexColor()
		if ok != tt.ok {
			t.Errorf("hexColor(%q): expected ok %v, got %v", tt.input, tt.ok, ok)
			continue
		}
		if ok && got != tt.want {
			t.Errorf("hexColor(%q): expected %+v, got %+v", tt.input, tt.want, got)
		}
	}
}
