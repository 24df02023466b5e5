package assembly

import "sync"

// Entry is one cached mesh with the material keys its slots point at.
// Entries are shared by reference and never mutated after build.
type Entry struct {
	Mesh      *Mesh
	Materials []MaterialKey
}

// cacheKey addresses a mesh build by part and instance color. Caching
// at instance color granularity builds a printed part once per color
// even though its faces span several material keys. Texture identity
// rides with the geometry key, so it never needs to be part of the
// cache key.
type cacheKey struct {
	geometry string
	color    uint32
}

// MeshCache deduplicates mesh builds per part and color. A model that
// references one part thousands of times pays for a single build.
type MeshCache struct {
	mu      sync.Mutex
	entries map[cacheKey]*cacheSlot
}

// cacheSlot decouples reserving a key from building its entry, so
// concurrent misses on one key run build exactly once while other
// keys build in parallel.
type cacheSlot struct {
	once  sync.Once
	entry *Entry
	err   error
}

func NewMeshCache() *MeshCache {
	return &MeshCache{entries: make(map[cacheKey]*cacheSlot)}
}

// GetOrBuild returns the entry for a part and instance color, calling
// build on the first request for the key. Hits return the existing
// entry without resolving or building again. A failed build is
// returned to every caller of its key.
func (c *MeshCache) GetOrBuild(key string, currentColor uint32, build func() (*Entry, error)) (*Entry, error) {
	ck := cacheKey{geometry: key, color: currentColor}

	c.mu.Lock()
	slot, ok := c.entries[ck]
	if !ok {
		slot = &cacheSlot{}
		c.entries[ck] = slot
	}
	c.mu.Unlock()

	slot.once.Do(func() {
		slot.entry, slot.err = build()
	})
	return slot.entry, slot.err
}
