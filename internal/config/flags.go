package config

// Overrides holds command-line values that win over file settings. The
// command layer fills it from its parsed flags; zero values mean the
// flag was not given.
type Overrides struct {
	Debug        bool
	LibraryPath  string
	LogFile      string
	InstanceMode string
	StudType     string
	Resolution   string
	SceneScale   float32
	Format       string
	NoGap        bool
	NoWeld       bool
}

// Apply merges command-line overrides into the config.
func (c *Config) Apply(o Overrides) {
	if o.Debug {
		c.Logging.Level = "debug"
	}
	if o.LibraryPath != "" {
		c.Library.Path = o.LibraryPath
	}
	if o.LogFile != "" {
		c.Logging.LogFile = o.LogFile
	}
	if o.InstanceMode != "" {
		c.Import.InstanceMode = o.InstanceMode
	}
	if o.StudType != "" {
		c.Import.StudType = o.StudType
	}
	if o.Resolution != "" {
		c.Import.Resolution = o.Resolution
	}
	if o.SceneScale > 0 {
		c.Import.SceneScale = o.SceneScale
	}
	if o.Format != "" {
		c.Export.Format = o.Format
	}
	if o.NoGap {
		c.Import.GapBetweenParts = false
	}
	if o.NoWeld {
		c.Import.WeldVertices = false
	}
}
