package config

import "flag"

// Flags are the command-line overrides shared by every subcommand that
// reads the configuration. Zero values leave the config untouched.
type Flags struct {
	Config       *string
	Debug        *bool
	Output       *string
	VertexColors *bool
	MaxDepth     *int
	TextureExt   *string
	NoLists      *bool
	LogFile      *string
}

// BindFlags registers the override flags on fs.
func BindFlags(fs *flag.FlagSet) *Flags {
	return &Flags{
		Config:       fs.String("config", "", "Path to config file"),
		Debug:        fs.Bool("debug", false, "Enable debug logging"),
		Output:       fs.String("o", "", "Output directory"),
		VertexColors: fs.Bool("colors", false, "Pack vertex colors"),
		MaxDepth:     fs.Int("max-depth", 0, "Maximum node hierarchy depth"),
		TextureExt:   fs.String("texture-ext", "", "Rewrite texture extensions (e.g. .dds)"),
		NoLists:      fs.Bool("no-texture-lists", false, "Do not write texture list files"),
		LogFile:      fs.String("log", "", "Also log to this file"),
	}
}

// ConfigPath returns the explicit config path if provided via --config.
func (f *Flags) ConfigPath() string {
	if f == nil || f.Config == nil {
		return ""
	}
	return *f.Config
}

// applyFlags applies CLI flag overrides to the config.
func applyFlags(cfg *Config, f *Flags) {
	if f == nil {
		return
	}
	if f.Debug != nil && *f.Debug {
		cfg.Logging.Level = "debug"
	}
	if f.Output != nil && *f.Output != "" {
		cfg.Output.Directory = *f.Output
	}
	if f.VertexColors != nil && *f.VertexColors {
		cfg.Convert.VertexColors = true
	}
	if f.MaxDepth != nil && *f.MaxDepth > 0 {
		cfg.Convert.MaxDepth = *f.MaxDepth
	}
	if f.TextureExt != nil && *f.TextureExt != "" {
		cfg.Textures.RewriteExtension = *f.TextureExt
	}
	if f.NoLists != nil && *f.NoLists {
		cfg.Textures.WriteLists = false
	}
	if f.LogFile != nil && *f.LogFile != "" {
		cfg.Logging.LogFile = *f.LogFile
	}
}
