// Package config handles modelconv configuration loading and management.
package config

// Config holds all converter settings.
type Config struct {
	Output   OutputConfig   `yaml:"output"`
	Convert  ConvertConfig  `yaml:"convert"`
	Textures TexturesConfig `yaml:"textures"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// OutputConfig controls where and how results are written.
type OutputConfig struct {
	Directory      string `yaml:"directory"`       // Root directory; each model gets a subdirectory
	BinarySuffix   string `yaml:"binary_suffix"`   // Appended to the model base name
	ManifestSuffix string `yaml:"manifest_suffix"` // Appended to the model base name
	Indent         bool   `yaml:"indent"`          // Pretty-print the manifest
}

// ConvertConfig holds pipeline settings.
type ConvertConfig struct {
	VertexColors bool `yaml:"vertex_colors"` // Pack vertex color channel 0
	MaxDepth     int  `yaml:"max_depth"`     // Node hierarchy depth limit
}

// TexturesConfig holds texture post-processing settings.
type TexturesConfig struct {
	WriteLists       bool   `yaml:"write_lists"`       // Emit sRGB/linear texture list files
	RewriteExtension string `yaml:"rewrite_extension"` // e.g. ".dds"; empty keeps source paths
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Output: OutputConfig{
			Directory:      "output",
			BinarySuffix:   ".bin",
			ManifestSuffix: ".json",
			Indent:         true,
		},
		Convert: ConvertConfig{
			VertexColors: false,
			MaxDepth:     256,
		},
		Textures: TexturesConfig{
			WriteLists: true,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}
