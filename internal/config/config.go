// Package config handles converter configuration loading and management.
package config

// Config holds all converter settings.
type Config struct {
	Library LibraryConfig `yaml:"library"`
	Import  ImportConfig  `yaml:"import"`
	Export  ExportConfig  `yaml:"export"`
	Logging LoggingConfig `yaml:"logging"`
}

// LibraryConfig holds LDraw part library locations.
type LibraryConfig struct {
	// Path is the library root containing LDConfig.ldr. Auto-discovered
	// when empty.
	Path string `yaml:"path"`
	// AdditionalPaths are extra directories searched for referenced files.
	AdditionalPaths []string `yaml:"additional_paths"`
	UnofficialParts bool     `yaml:"unofficial_parts"`
}

// ImportConfig holds geometry import settings.
type ImportConfig struct {
	InstanceMode    string  `yaml:"instance_mode"` // "objects" or "instancing"
	StudType        string  `yaml:"stud_type"`     // normal, disabled, logo4, high-contrast
	Resolution      string  `yaml:"resolution"`    // normal, low, high
	SceneScale      float32 `yaml:"scene_scale"`
	GapBetweenParts bool    `yaml:"gap_between_parts"`
	WeldVertices    bool    `yaml:"weld_vertices"`
}

// ExportConfig holds output settings.
type ExportConfig struct {
	Format string `yaml:"format"` // "glb" or "gltf"
	YUp    bool   `yaml:"y_up"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Library: LibraryConfig{
			Path:            "",
			UnofficialParts: true,
		},
		Import: ImportConfig{
			InstanceMode:    "objects",
			StudType:        "logo4",
			Resolution:      "normal",
			SceneScale:      0.01,
			GapBetweenParts: true,
			WeldVertices:    true,
		},
		Export: ExportConfig{
			Format: "glb",
			YUp:    true,
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}
