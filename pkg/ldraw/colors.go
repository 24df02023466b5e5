package ldraw

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/chewxy/math32"
)

// ColorEntry is a single resolved color definition from LDConfig.ldr.
type ColorEntry struct {
	Code uint32
	Name string
	// FinishName is the lowercase name of the finish, or "" for plain
	// colors.
	FinishName string
	// RGBALinear is the color in linear color space. The alpha is an
	// opacity from 0 to 1.
	RGBALinear [4]float32
	// SpeckleRGBALinear is the speckle color for speckle finishes.
	SpeckleRGBALinear *[4]float32
	Finish            ColorFinish
	IsMetallic        bool
	IsTransmissive    bool
}

// ColorTable maps LDraw color codes to their definitions.
type ColorTable map[uint32]ColorEntry

// LoadColorTable parses the color definitions from LDConfig.ldr in the
// library root.
func LoadColorTable(libraryPath string) (ColorTable, error) {
	data, err := os.ReadFile(filepath.Join(libraryPath, "LDConfig.ldr"))
	if err != nil {
		return nil, fmt.Errorf("read color definitions: %w", err)
	}
	return colorTableFromCommands(ParseCommands(data)), nil
}

// colorOverrides replaces the RGB of selected colors with values that
// match the molded plastic better. 40 and 71 come from the Peeron
// color list. 80 and 256 are already linear.
var colorOverrides = map[uint32][3]float32{
	// Trans_Black
	40: {srgbToLinear(191.0 / 255), srgbToLinear(183.0 / 255), srgbToLinear(177.0 / 255)},
	// Light_Bluish_Gray
	71: {srgbToLinear(163.0 / 255), srgbToLinear(162.0 / 255), srgbToLinear(164.0 / 255)},
	// Metallic_Silver
	80: {0.55, 0.55, 0.55},
	// Rubber_Black
	256: {0.015, 0.015, 0.015},
}

func colorTableFromCommands(cmds []Command) ColorTable {
	table := make(ColorTable)
	for _, cmd := range cmds {
		c, ok := cmd.(ColourCmd)
		if !ok {
			continue
		}
		table[c.Code] = newColorEntry(c)
	}
	for code, rgb := range colorOverrides {
		if entry, ok := table[code]; ok {
			entry.RGBALinear[0] = rgb[0]
			entry.RGBALinear[1] = rgb[1]
			entry.RGBALinear[2] = rgb[2]
			table[code] = entry
		}
	}
	return table
}

func newColorEntry(c ColourCmd) ColorEntry {
	alpha := float32(1)
	if c.Alpha != nil {
		alpha = float32(*c.Alpha) / 255
	}
	entry := ColorEntry{
		Code:       c.Code,
		Name:       c.Name,
		FinishName: c.Finish.String(),
		RGBALinear: [4]float32{
			srgbToLinear(float32(c.Value.Red) / 255),
			srgbToLinear(float32(c.Value.Green) / 255),
			srgbToLinear(float32(c.Value.Blue) / 255),
			alpha,
		},
		Finish: c.Finish,
		IsMetallic: c.Finish == FinishChrome ||
			c.Finish == FinishMatteMetallic ||
			c.Finish == FinishMetal,
		IsTransmissive: c.Alpha != nil && *c.Alpha < 255,
	}
	if c.Speckle != nil {
		speckleAlpha := float32(1)
		if c.Speckle.Alpha != nil {
			speckleAlpha = float32(*c.Speckle.Alpha) / 255
		}
		entry.SpeckleRGBALinear = &[4]float32{
			srgbToLinear(float32(c.Speckle.Value.Red) / 255),
			srgbToLinear(float32(c.Speckle.Value.Green) / 255),
			srgbToLinear(float32(c.Speckle.Value.Blue) / 255),
			speckleAlpha,
		}
	}
	return entry
}

func srgbToLinear(srgb float32) float32 {
	if srgb <= 0.04045 {
		return srgb / 12.92
	}
	return math32.Pow((srgb+0.055)/1.055, 2.4)
}
