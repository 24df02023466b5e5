package gltfout

import (
	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"

	"github.com/Faultbox/brickscene/internal/assembly"
)

// docBuilder accumulates meshes and materials into one document,
// deduplicating materials by spec pointer and meshes by mesh pointer.
type docBuilder struct {
	doc           *gltf.Document
	materialIndex map[*assembly.MaterialGraphSpec]int
	meshIndex     map[*assembly.Mesh]int
}

func newDocBuilder(doc *gltf.Document, specs []*assembly.MaterialGraphSpec, textures [][]byte) (*docBuilder, error) {
	textureIndex, err := writeTextures(doc, textures)
	if err != nil {
		return nil, err
	}
	return &docBuilder{
		doc:           doc,
		materialIndex: writeMaterials(doc, specs, textureIndex),
		meshIndex:     make(map[*assembly.Mesh]int),
	}, nil
}

// addObject appends the object's node and its subtree, returning the
// node index. Objects without renderable geometry become bare grouping
// nodes.
func (b *docBuilder) addObject(o *assembly.Object) int {
	node := &gltf.Node{Name: o.Name, Matrix: nodeMatrix(o.Transform)}
	idx := len(b.doc.Nodes)
	b.doc.Nodes = append(b.doc.Nodes, node)

	if o.Mesh != nil && len(o.Mesh.Indices) > 0 {
		node.Mesh = gltf.Index(b.addMesh(o.Mesh, o.Materials, o.Name))
	}

	for _, child := range o.Children {
		node.Children = append(node.Children, b.addObject(child))
	}
	return idx
}

// addMesh writes the mesh once and reuses its index for later callers.
// One primitive is emitted per material slot, all sharing the same
// attribute accessors.
func (b *docBuilder) addMesh(m *assembly.Mesh, specs []*assembly.MaterialGraphSpec, name string) int {
	if idx, ok := b.meshIndex[m]; ok {
		return idx
	}

	positions, normals, uvs, tris := splitPrimitives(m, len(specs))

	posAcc := modeler.WritePosition(b.doc, positions)
	normAcc := modeler.WriteNormal(b.doc, normals)
	uvAcc := -1
	if uvs != nil {
		uvAcc = modeler.WriteTextureCoord(b.doc, uvs)
	}

	prims := make([]*gltf.Primitive, 0, len(tris))
	for slot, indices := range tris {
		attrs := map[string]int{
			gltf.POSITION: posAcc,
			gltf.NORMAL:   normAcc,
		}
		if uvAcc >= 0 {
			attrs[gltf.TEXCOORD_0] = uvAcc
		}
		prims = append(prims, &gltf.Primitive{
			Attributes: attrs,
			Indices:    gltf.Index(modeler.WriteIndices(b.doc, indices)),
			Material:   gltf.Index(b.materialIndex[specs[slot]]),
		})
	}

	idx := len(b.doc.Meshes)
	b.doc.Meshes = append(b.doc.Meshes, &gltf.Mesh{Name: name, Primitives: prims})
	b.meshIndex[m] = idx
	return idx
}

// splitPrimitives lays the mesh out for glTF: face loops fan into
// triangles grouped per material slot. Textured meshes expand to one
// vertex per corner because glTF has no per corner attributes; untextured
// meshes keep their shared vertices so smooth shading survives.
func splitPrimitives(m *assembly.Mesh, slotCount int) (positions, normals [][3]float32, uvs [][2]float32, tris [][]uint32) {
	tris = make([][]uint32, slotCount)

	textured := len(m.UVs) > 0
	if textured {
		positions = make([][3]float32, len(m.Indices))
		normals = make([][3]float32, len(m.Indices))
		uvs = make([][2]float32, len(m.Indices))
		for k, v := range m.Indices {
			positions[k] = m.Positions[v].Array()
			normals[k] = m.Normals[v].Array()
			// glTF texture coordinates have a top left origin.
			uvs[k] = [2]float32{m.UVs[k].X, 1 - m.UVs[k].Y}
		}
	} else {
		positions = make([][3]float32, len(m.Positions))
		normals = make([][3]float32, len(m.Positions))
		for i, p := range m.Positions {
			positions[i] = p.Array()
			normals[i] = m.Normals[i].Array()
		}
	}

	for f := range m.FaceStarts {
		slot := uint32(0)
		if len(m.MaterialSlots) > 0 {
			slot = m.MaterialSlots[f]
		}
		start := m.FaceStarts[f]
		end := start + m.FaceSizes[f]
		for i := start + 1; i+1 < end; i++ {
			if textured {
				tris[slot] = append(tris[slot], start, i, i+1)
			} else {
				tris[slot] = append(tris[slot], m.Indices[start], m.Indices[i], m.Indices[i+1])
			}
		}
	}

	return positions, normals, uvs, tris
}
