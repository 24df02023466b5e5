package assembly

import "fmt"

// Warnings aggregates the non fatal conditions of one import so they
// can be reported once at the end instead of once per occurrence.
type Warnings struct {
	// MissingColors lists the color codes absent from the color
	// table, one entry per distinct code in first use order.
	MissingColors []uint32
	// TextureErrors describes embedded textures that could not be
	// used, one entry per failed texture.
	TextureErrors []string

	missingSeen map[uint32]struct{}
}

// Empty reports whether the import completed without warnings.
func (w *Warnings) Empty() bool {
	return len(w.MissingColors) == 0 && len(w.TextureErrors) == 0
}

func (w *Warnings) missingColor(code uint32) {
	if w.missingSeen == nil {
		w.missingSeen = make(map[uint32]struct{})
	}
	if _, ok := w.missingSeen[code]; ok {
		return
	}
	w.missingSeen[code] = struct{}{}
	w.MissingColors = append(w.MissingColors, code)
}

func (w *Warnings) textureError(key string, index int16, err error) {
	w.TextureErrors = append(w.TextureErrors, fmt.Sprintf("%s texture %d: %v", key, index, err))
}
