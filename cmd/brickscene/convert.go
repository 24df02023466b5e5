package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/qmuntal/gltf"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Faultbox/brickscene/internal/assembly"
	"github.com/Faultbox/brickscene/internal/export/gltfout"
	"github.com/Faultbox/brickscene/internal/logger"
	"github.com/Faultbox/brickscene/pkg/ldraw"
)

var (
	outputPath   string
	outputFormat string
	instanceMode string
	studType     string
	resolution   string
	sceneScale   float32
	noGap        bool
	noWeld       bool
)

func newConvertCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "convert <model.ldr|model.mpd|model.io>",
		Short: "Convert a model to glTF",
		Long: `Convert an LDraw model into a glTF 2.0 scene.

The objects mode mirrors the model structure as a node hierarchy with
one shared mesh per part and color. The instancing mode flattens the
model into per part instance lists carried as node transforms, for
consumers with their own instancing support.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConvert(args[0])
		},
	}

	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "Output file (default: model name with the format extension)")
	cmd.Flags().StringVar(&outputFormat, "format", "", `Output format, "glb" or "gltf"`)
	cmd.Flags().StringVar(&instanceMode, "mode", "", `Scene structure, "objects" or "instancing"`)
	cmd.Flags().StringVar(&studType, "studs", "", "Stud rendering: normal, disabled, logo4 or high-contrast")
	cmd.Flags().StringVar(&resolution, "resolution", "", "Curved primitive resolution: normal, low or high")
	cmd.Flags().Float32Var(&sceneScale, "scale", 0, "Uniform scale applied at the scene root")
	cmd.Flags().BoolVar(&noGap, "no-gap", false, "Disable the small gap between parts")
	cmd.Flags().BoolVar(&noWeld, "no-weld", false, "Disable vertex welding")
	return cmd
}

func runConvert(modelPath string) error {
	settings, err := cfg.GeometrySettings()
	if err != nil {
		return err
	}
	switch cfg.Export.Format {
	case "glb", "gltf":
	default:
		return fmt.Errorf("unknown output format %q", cfg.Export.Format)
	}
	library, err := resolveLibrary()
	if err != nil {
		return err
	}

	out := outputPath
	if out == "" {
		out = strings.TrimSuffix(modelPath, filepath.Ext(modelPath)) + "." + cfg.Export.Format
	}

	opts := &assembly.Options{SceneScale: cfg.Import.SceneScale}
	writer := gltfout.NewWriter()
	writer.YUp = cfg.Export.YUp

	var doc *gltf.Document
	switch cfg.Import.InstanceMode {
	case "", "objects":
		scene, err := ldraw.Load(modelPath, library, cfg.Library.AdditionalPaths, settings)
		if err != nil {
			return err
		}
		asm, err := assembly.Assemble(scene, opts)
		if err != nil {
			return err
		}
		reportWarnings(asm.Warnings)
		doc, err = writer.Document(asm)
		if err != nil {
			return err
		}
	case "instancing":
		scene, err := ldraw.LoadInstancedPoints(modelPath, library, cfg.Library.AdditionalPaths, settings)
		if err != nil {
			return err
		}
		asm, err := assembly.AssembleInstanced(scene, opts)
		if err != nil {
			return err
		}
		reportWarnings(asm.Warnings)
		doc, err = writer.DocumentInstanced(asm)
		if err != nil {
			return err
		}
	default:
		return fmt.Errorf("unknown instance mode %q", cfg.Import.InstanceMode)
	}

	if err := gltfout.Save(doc, out); err != nil {
		return err
	}

	if info, err := os.Stat(out); err == nil {
		fmt.Printf("Wrote: %s (%.2f MB)\n", out, float64(info.Size())/(1024*1024))
	} else {
		fmt.Printf("Wrote: %s\n", out)
	}
	return nil
}

func reportWarnings(w assembly.Warnings) {
	for _, code := range w.MissingColors {
		logger.Warn("color code not in color table", zap.Uint32("code", code))
	}
	for _, reason := range w.TextureErrors {
		logger.Warn("embedded texture skipped", zap.String("reason", reason))
	}
}
