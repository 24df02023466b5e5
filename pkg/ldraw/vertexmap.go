package ldraw

import (
	"github.com/chewxy/math32"

	"github.com/Faultbox/brickscene/pkg/math"
)

// weldEpsilon is the merge distance for vertex welding. Welding happens
// before scaling, so distances are in LDUs and tend to be large.
const weldEpsilon = 0.01

// vertexMap finds previously inserted vertices near a query position
// using a uniform grid sized to the welding threshold.
type vertexMap struct {
	cells map[[3]int32][]vertexEntry
	all   []vertexEntry
}

type vertexEntry struct {
	pos   math.Vec3
	index uint32
}

func newVertexMap() *vertexMap {
	return &vertexMap{cells: make(map[[3]int32][]vertexEntry)}
}

func weldCell(v math.Vec3) [3]int32 {
	return [3]int32{
		int32(math32.Floor(v.X / weldEpsilon)),
		int32(math32.Floor(v.Y / weldEpsilon)),
		int32(math32.Floor(v.Z / weldEpsilon)),
	}
}

// get returns the index of a vertex within the welding threshold of v.
func (m *vertexMap) get(v math.Vec3) (uint32, bool) {
	cell := weldCell(v)
	for dx := int32(-1); dx <= 1; dx++ {
		for dy := int32(-1); dy <= 1; dy++ {
			for dz := int32(-1); dz <= 1; dz++ {
				key := [3]int32{cell[0] + dx, cell[1] + dy, cell[2] + dz}
				for _, entry := range m.cells[key] {
					if entry.pos.Sub(v).LengthSquared() <= weldEpsilon*weldEpsilon {
						return entry.index, true
					}
				}
			}
		}
	}
	return 0, false
}

// insert returns the index of an existing vertex within the welding
// threshold, or records v under index and reports a miss.
func (m *vertexMap) insert(index uint32, v math.Vec3) (uint32, bool) {
	if existing, ok := m.get(v); ok {
		return existing, true
	}
	entry := vertexEntry{pos: v, index: index}
	cell := weldCell(v)
	m.cells[cell] = append(m.cells[cell], entry)
	m.all = append(m.all, entry)
	return 0, false
}

// getNearest returns the index of the closest inserted vertex with no
// distance limit.
func (m *vertexMap) getNearest(v math.Vec3) (uint32, bool) {
	if len(m.all) == 0 {
		return 0, false
	}
	best := m.all[0].index
	bestDist := m.all[0].pos.Sub(v).LengthSquared()
	for _, entry := range m.all[1:] {
		if d := entry.pos.Sub(v).LengthSquared(); d < bestDist {
			best = entry.index
			bestDist = d
		}
	}
	return best, true
}
