package ldraw

// StudType controls how stud sub-file references are resolved while
// building geometry.
type StudType uint8

const (
	// StudNormal keeps the stud files the part references.
	StudNormal StudType = iota
	// StudDisabled drops stud geometry entirely.
	StudDisabled
	// StudLogo4 swaps studs for their logo variants.
	StudLogo4
	// StudHighContrast colors stud walls black.
	StudHighContrast
)

// PrimitiveResolution selects the primitive detail level. Non default
// resolutions search the matching library folder before the normal one.
type PrimitiveResolution uint8

const (
	ResolutionNormal PrimitiveResolution = iota
	ResolutionLow
	ResolutionHigh
)

// GeometrySettings controls geometry creation for the load functions.
type GeometrySettings struct {
	// WeldVertices merges vertices closer than the welding threshold
	// into a single indexed vertex.
	WeldVertices bool
	// AddGapBetweenParts shrinks each part slightly to leave a visible
	// seam between adjacent parts.
	AddGapBetweenParts bool
	StudType           StudType
	Resolution         PrimitiveResolution
	// SceneScale scales all vertex positions after welding.
	SceneScale float32
	// UnofficialParts includes the UnOfficial library folders when
	// resolving file references.
	UnofficialParts bool
}

// DefaultGeometrySettings returns settings that keep geometry exactly
// as authored at its original scale.
func DefaultGeometrySettings() *GeometrySettings {
	return &GeometrySettings{
		SceneScale:      1,
		UnofficialParts: true,
	}
}
