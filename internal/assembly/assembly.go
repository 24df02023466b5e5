// Package assembly turns loaded brick models into renderable scene
// descriptions. It deduplicates meshes per part and color, splits
// sharp edges for crisp shading, derives physically based material
// parameters from the color table and emits either an object
// hierarchy or flat instance batches.
package assembly

import "errors"

var (
	// ErrLookup reports a geometry key with no entry in the scene's
	// geometry cache. The import cannot continue with a dangling
	// reference.
	ErrLookup = errors.New("geometry key not found in scene")

	// ErrMalformedGeometry reports a geometry whose per face arrays
	// disagree with its face count.
	ErrMalformedGeometry = errors.New("malformed geometry")
)
