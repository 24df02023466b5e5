package main

import (
	"fmt"
	"os"
	"sort"

	"github.com/chewxy/math32"
	"github.com/spf13/cobra"

	"github.com/Faultbox/brickscene/pkg/ldraw"
)

func newColorsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "colors",
		Short: "List the library color definitions",
		Long:  "List the color definitions from LDConfig.ldr in the LDraw library, with the display values materials resolve to.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runColors()
		},
	}
}

func runColors() error {
	library, err := resolveLibrary()
	if err != nil {
		return err
	}
	table, err := ldraw.LoadColorTable(library)
	if err != nil {
		return err
	}

	codes := make([]uint32, 0, len(table))
	for code := range table {
		codes = append(codes, code)
	}
	sort.Slice(codes, func(i, j int) bool { return codes[i] < codes[j] })

	for _, code := range codes {
		entry := table[code]
		r, g, b := displayRGB(entry.RGBALinear)
		line := fmt.Sprintf("%4d  %-36s #%02X%02X%02X", entry.Code, entry.Name, r, g, b)
		if entry.IsTransmissive {
			line += fmt.Sprintf("  %3.0f%% opacity", entry.RGBALinear[3]*100)
		}
		if entry.FinishName != "" {
			line += "  " + entry.FinishName
		}
		fmt.Println(line)
	}

	fmt.Fprintf(os.Stderr, "\n(%d colors)\n", len(codes))
	return nil
}

// displayRGB converts a linear color back to 8 bit sRGB for display.
func displayRGB(rgba [4]float32) (r, g, b uint8) {
	return linearToSRGB(rgba[0]), linearToSRGB(rgba[1]), linearToSRGB(rgba[2])
}

func linearToSRGB(linear float32) uint8 {
	var srgb float32
	if linear <= 0.0031308 {
		srgb = linear * 12.92
	} else {
		srgb = 1.055*math32.Pow(linear, 1/2.4) - 0.055
	}
	if srgb < 0 {
		srgb = 0
	}
	if srgb > 1 {
		srgb = 1
	}
	return uint8(srgb*255 + 0.5)
}
