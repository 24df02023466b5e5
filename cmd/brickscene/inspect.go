package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Faultbox/brickscene/pkg/ldraw"
)

var showTree bool

func newInspectCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "inspect <model.ldr|model.mpd|model.io>",
		Short: "Display model information",
		Long:  "Display information about a model: part, vertex and face counts, the color table size and optionally the node hierarchy.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInspect(args[0])
		},
	}
	cmd.Flags().BoolVar(&showTree, "tree", false, "Print the node hierarchy")
	return cmd
}

func runInspect(modelPath string) error {
	settings, err := cfg.GeometrySettings()
	if err != nil {
		return err
	}
	library, err := resolveLibrary()
	if err != nil {
		return err
	}

	info, err := os.Stat(modelPath)
	if err != nil {
		return fmt.Errorf("cannot access file: %w", err)
	}

	scene, err := ldraw.Load(modelPath, library, cfg.Library.AdditionalPaths, settings)
	if err != nil {
		return err
	}

	var placements int
	var countNodes func(n *ldraw.Node)
	countNodes = func(n *ldraw.Node) {
		if n.GeometryKey != "" {
			placements++
		}
		for _, c := range n.Children {
			countNodes(c)
		}
	}
	countNodes(scene.Root)

	var vertices, faces, edges, textured, grainy int
	for _, g := range scene.Geometry {
		vertices += len(g.Vertices)
		faces += len(g.FaceStartIndices)
		edges += len(g.Edges)
		if g.TextureInfo != nil {
			textured++
		}
		if g.HasGrainySlopes {
			grainy++
		}
	}

	fmt.Printf("File:       %s\n", filepath.Base(modelPath))
	fmt.Printf("Size:       %.2f KB\n", float64(info.Size())/1024)
	fmt.Printf("Model:      %s\n", scene.Name)
	fmt.Println()
	fmt.Printf("Parts:      %d unique\n", len(scene.Geometry))
	fmt.Printf("Placements: %d\n", placements)
	fmt.Printf("Vertices:   %d\n", vertices)
	fmt.Printf("Faces:      %d\n", faces)
	fmt.Printf("Edges:      %d\n", edges)
	fmt.Printf("Colors:     %d defined\n", len(scene.Colors))
	if textured > 0 {
		fmt.Printf("Textured:   %d parts\n", textured)
	}
	if grainy > 0 {
		fmt.Printf("Slopes:     %d grainy parts\n", grainy)
	}

	if showTree {
		fmt.Println()
		printTree(scene.Root, 0)
	}
	return nil
}

func printTree(n *ldraw.Node, depth int) {
	indent := strings.Repeat("  ", depth)
	name := n.Name
	if name == "" {
		name = "(group)"
	}
	if n.GeometryKey != "" {
		fmt.Printf("%s%s  color %d\n", indent, name, n.CurrentColor)
	} else {
		fmt.Println(indent + name)
	}
	for _, c := range n.Children {
		printTree(c, depth+1)
	}
}
