// Package converter drives a full conversion: import a model, flatten it
// into a binary package and write the package files.
package converter

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/Faultbox/modelconv/internal/config"
	"github.com/Faultbox/modelconv/internal/importer"
	"github.com/Faultbox/modelconv/pkg/asset"
	"github.com/Faultbox/modelconv/pkg/scene"
)

// Result describes the files one conversion produced.
type Result struct {
	Name         string
	Directory    string
	BinaryPath   string
	ManifestPath string
	TextureLists []string
	Bytes        int64
	Meshes       int
	Stats        asset.Stats
	Elapsed      time.Duration
}

// Converter converts models according to a configuration.
type Converter struct {
	cfg *config.Config
	log *zap.Logger
}

// New returns a converter. A nil logger disables logging.
func New(cfg *config.Config, log *zap.Logger) *Converter {
	if cfg == nil {
		cfg = config.Default()
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Converter{cfg: cfg, log: log}
}

// ConvertFile imports the model at path and converts it. The output name is
// the file name without its extension.
func (c *Converter) ConvertFile(path string) (*Result, error) {
	start := time.Now()
	s, err := importer.Open(path, c.log.Named("import"))
	if err != nil {
		c.log.Error("import failed", zap.String("path", path), zap.Error(err))
		return nil, err
	}

	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	res, err := c.ConvertScene(name, s)
	if err != nil {
		return nil, err
	}
	res.Elapsed = time.Since(start)
	return res, nil
}

// ConvertScene packs s and writes <output>/<name>/<name>.bin and .json.
// Scene-level problems are reported before any file is created.
func (c *Converter) ConvertScene(name string, s *scene.Scene) (*Result, error) {
	start := time.Now()
	log := c.log.With(zap.String("model", name))

	p, err := asset.Build(s, asset.Options{
		VertexColors: c.cfg.Convert.VertexColors,
		MaxDepth:     c.cfg.Convert.MaxDepth,
		Logger:       log,
	})
	if err != nil {
		log.Error("conversion aborted", zap.Error(err))
		return nil, fmt.Errorf("converting %s: %w", name, err)
	}

	res := &Result{
		Name:      name,
		Directory: filepath.Join(c.cfg.Output.Directory, name),
		Bytes:     p.Size(),
		Meshes:    len(p.Manifest.Meshes),
		Stats:     p.Stats,
	}
	binaryName := name + c.cfg.Output.BinarySuffix
	res.BinaryPath = filepath.Join(res.Directory, binaryName)
	res.ManifestPath = filepath.Join(res.Directory, name+c.cfg.Output.ManifestSuffix)

	p.Manifest.BinaryFilename = binaryName
	p.Manifest.OutputDirectory = filepath.ToSlash(res.Directory)

	if err := os.MkdirAll(res.Directory, 0755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	if err := writeFile(res.BinaryPath, func(w *bufio.Writer) error {
		_, err := p.WriteTo(w)
		return err
	}); err != nil {
		log.Error("writing binary failed", zap.String("path", res.BinaryPath), zap.Error(err))
		return nil, err
	}

	// Lists name the source images, so they are taken before any rewrite.
	if c.cfg.Textures.WriteLists {
		res.TextureLists, err = WriteTextureLists(res.ManifestPath, &p.Manifest)
		if err != nil {
			log.Error("writing texture lists failed", zap.Error(err))
			return nil, err
		}
	}
	if ext := c.cfg.Textures.RewriteExtension; ext != "" {
		n := RewriteTextureExtensions(&p.Manifest, ext)
		log.Debug("texture extensions rewritten", zap.String("ext", ext), zap.Int("textures", n))
	}

	if err := writeFile(res.ManifestPath, func(w *bufio.Writer) error {
		return asset.WriteManifest(w, &p.Manifest, c.cfg.Output.Indent)
	}); err != nil {
		log.Error("writing manifest failed", zap.String("path", res.ManifestPath), zap.Error(err))
		return nil, err
	}

	logStats(log, p.Stats)
	log.Info("model converted",
		zap.String("manifest", res.ManifestPath),
		zap.Int("meshes", res.Meshes),
		zap.Int("materials", len(p.Manifest.MaterialSettings.Materials)),
		zap.Int("textures", len(p.Manifest.MaterialSettings.Textures)),
		zap.Int64("bytes", res.Bytes),
		zap.Duration("elapsed", time.Since(start)))
	res.Elapsed = time.Since(start)
	return res, nil
}

func logStats(log *zap.Logger, st asset.Stats) {
	g, m := st.Geometry, st.Materials
	if g.MeshesSkipped+g.FacesSkipped+g.MissingTexCoords+g.AttributeFixups+m.Rejected+m.Fallbacks == 0 {
		return
	}
	log.Warn("model converted with substitutions",
		zap.Int("meshes_skipped", g.MeshesSkipped),
		zap.Int("faces_skipped", g.FacesSkipped),
		zap.Int("missing_texcoords", g.MissingTexCoords),
		zap.Int("attribute_fixups", g.AttributeFixups),
		zap.Int("materials_rejected", m.Rejected),
		zap.Int("texture_fallbacks", m.Fallbacks))
}

// writeFile creates or truncates name and hands a buffered writer to fill.
// The file is closed on every path.
func writeFile(name string, fill func(w *bufio.Writer) error) (err error) {
	f, err := os.OpenFile(name, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return fmt.Errorf("creating %s: %w", name, err)
	}
	defer func() {
		if cerr := f.Close(); err == nil && cerr != nil {
			err = fmt.Errorf("closing %s: %w", name, cerr)
		}
	}()

	w := bufio.NewWriter(f)
	if err := fill(w); err != nil {
		return fmt.Errorf("writing %s: %w", name, err)
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("writing %s: %w", name, err)
	}
	return nil
}
