package config

import (
	"fmt"

	"github.com/Faultbox/brickscene/pkg/ldraw"
)

// GeometrySettings converts the library and import sections into loader
// settings. SceneScale stays 1 here: the scene scale is applied once at
// the assembly root transform, not per vertex.
func (c *Config) GeometrySettings() (*ldraw.GeometrySettings, error) {
	s := ldraw.DefaultGeometrySettings()
	s.WeldVertices = c.Import.WeldVertices
	s.AddGapBetweenParts = c.Import.GapBetweenParts
	s.UnofficialParts = c.Library.UnofficialParts

	switch c.Import.StudType {
	case "", "normal":
		s.StudType = ldraw.StudNormal
	case "disabled":
		s.StudType = ldraw.StudDisabled
	case "logo4":
		s.StudType = ldraw.StudLogo4
	case "high-contrast":
		s.StudType = ldraw.StudHighContrast
	default:
		return nil, fmt.Errorf("unknown stud type %q", c.Import.StudType)
	}

	switch c.Import.Resolution {
	case "", "normal":
		s.Resolution = ldraw.ResolutionNormal
	case "low":
		s.Resolution = ldraw.ResolutionLow
	case "high":
		s.Resolution = ldraw.ResolutionHigh
	default:
		return nil, fmt.Errorf("unknown primitive resolution %q", c.Import.Resolution)
	}

	return s, nil
}
