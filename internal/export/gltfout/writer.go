// Package gltfout writes assembled brick scenes as glTF 2.0 documents,
// either JSON .gltf with embedded buffers or binary .glb.
package gltfout

import (
	"path/filepath"
	"strings"

	"github.com/chewxy/math32"
	"github.com/qmuntal/gltf"

	"github.com/Faultbox/brickscene/internal/assembly"
	"github.com/Faultbox/brickscene/pkg/math"
)

// Writer builds glTF documents from assembled scenes.
type Writer struct {
	// YUp rotates the export onto glTF's Y-up convention. The assembler
	// leaves scenes Z-up.
	YUp bool
	// Generator is recorded in the asset header.
	Generator string
}

// NewWriter returns a writer with the Y-up conversion enabled.
func NewWriter() *Writer {
	return &Writer{YUp: true, Generator: "brickscene"}
}

// Document builds a glTF document from a hierarchical assembly. Objects
// that share a mesh share one glTF mesh, and every distinct material
// spec becomes one glTF material.
func (w *Writer) Document(a *assembly.Assembly) (*gltf.Document, error) {
	doc := gltf.NewDocument()
	doc.Asset.Generator = w.Generator
	doc.Scenes[0].Name = a.Name

	b, err := newDocBuilder(doc, a.Materials, a.Textures)
	if err != nil {
		return nil, err
	}

	root := b.addObject(a.Root)
	if w.YUp {
		doc.Nodes[root].Matrix = nodeMatrix(yUpCorrection().Mul(a.Root.Transform))
	}
	doc.Scenes[0].Nodes = append(doc.Scenes[0].Nodes, root)

	return doc, nil
}

// DocumentInstanced builds a glTF document from instancer bundles. Each
// instance becomes a node with its decomposed translation, rotation and
// scale under the bundle node, all sharing the bundle's mesh.
func (w *Writer) DocumentInstanced(a *assembly.InstancedAssembly) (*gltf.Document, error) {
	doc := gltf.NewDocument()
	doc.Asset.Generator = w.Generator
	doc.Scenes[0].Name = a.Name

	b, err := newDocBuilder(doc, a.Materials, a.Textures)
	if err != nil {
		return nil, err
	}

	rootTransform := a.Transform
	if w.YUp {
		rootTransform = yUpCorrection().Mul(rootTransform)
	}
	root := &gltf.Node{Name: a.Name, Matrix: nodeMatrix(rootTransform)}
	rootIdx := len(doc.Nodes)
	doc.Nodes = append(doc.Nodes, root)

	for _, inst := range a.Instancers {
		bundle := &gltf.Node{Name: inst.Name}
		bundleIdx := len(doc.Nodes)
		doc.Nodes = append(doc.Nodes, bundle)
		root.Children = append(root.Children, bundleIdx)

		if inst.Mesh == nil || len(inst.Mesh.Indices) == 0 {
			continue
		}
		meshIdx := b.addMesh(inst.Mesh, inst.Materials, inst.Name)

		for i := range inst.Translations {
			node := &gltf.Node{
				Mesh:        gltf.Index(meshIdx),
				Translation: vec3to64(inst.Translations[i]),
				Rotation:    rotationQuat(inst.RotationAxes[i], inst.RotationAngles[i]),
				Scale:       vec3to64(inst.Scales[i]),
			}
			nodeIdx := len(doc.Nodes)
			doc.Nodes = append(doc.Nodes, node)
			bundle.Children = append(bundle.Children, nodeIdx)
		}
	}

	doc.Scenes[0].Nodes = append(doc.Scenes[0].Nodes, rootIdx)
	return doc, nil
}

// Save writes the document to path, picking the container from the
// extension: .glb is binary, anything else is JSON with the buffers
// embedded as data URIs.
func Save(doc *gltf.Document, path string) error {
	if strings.EqualFold(filepath.Ext(path), ".glb") {
		return gltf.SaveBinary(doc, path)
	}
	for _, buf := range doc.Buffers {
		if buf.URI == "" && len(buf.Data) > 0 {
			buf.EmbeddedResource()
		}
	}
	return gltf.Save(doc, path)
}

// yUpCorrection rotates the assembled Z-up scene onto glTF's Y-up axis.
func yUpCorrection() math.Mat4 {
	return math.RotateX(-math32.Pi / 2)
}

// nodeMatrix converts a transform for a glTF node, both column major.
// The identity stays the zero value so the field is omitted on encode.
func nodeMatrix(m math.Mat4) [16]float64 {
	if m == math.Identity() {
		return [16]float64{}
	}
	var out [16]float64
	for i, v := range m {
		out[i] = float64(v)
	}
	return out
}

func vec3to64(v math.Vec3) [3]float64 {
	return [3]float64{float64(v.X), float64(v.Y), float64(v.Z)}
}

// rotationQuat converts an axis angle rotation to a glTF xyzw
// quaternion.
func rotationQuat(axis math.Vec3, angle float32) [4]float64 {
	half := angle / 2
	s := math32.Sin(half)
	return [4]float64{
		float64(axis.X * s),
		float64(axis.Y * s),
		float64(axis.Z * s),
		float64(math32.Cos(half)),
	}
}
