package converter

import (
	"bufio"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/Faultbox/modelconv/pkg/asset"
)

// Texture list file suffixes, appended to the manifest path.
const (
	SRGBListSuffix   = "_texturelist_srgb.txt"
	LinearListSuffix = "_texturelist_linear.txt"
)

// TextureLists splits the image files a manifest references by color
// space. Built-in substitutes and embedded images are left out.
func TextureLists(m *asset.Manifest) (srgb, linear []string) {
	for _, t := range m.MaterialSettings.Textures {
		if !t.IsFile() {
			continue
		}
		if t.Type.SRGB() {
			srgb = append(srgb, t.Path)
		} else {
			linear = append(linear, t.Path)
		}
	}
	return srgb, linear
}

// WriteTextureLists writes the sRGB and linear lists next to the manifest
// and returns the paths written.
func WriteTextureLists(manifestPath string, m *asset.Manifest) ([]string, error) {
	srgb, linear := TextureLists(m)
	files := []struct {
		path  string
		lines []string
	}{
		{manifestPath + SRGBListSuffix, srgb},
		{manifestPath + LinearListSuffix, linear},
	}

	var written []string
	for _, f := range files {
		if err := writeLines(f.path, f.lines); err != nil {
			return written, err
		}
		written = append(written, f.path)
	}
	return written, nil
}

// RewriteTextureExtensions points every image file texture at a converted
// copy inside the manifest's output directory, e.g. "tex/a.png" becomes
// "<output>/tex/a.dds". It returns the number of paths changed.
func RewriteTextureExtensions(m *asset.Manifest, ext string) int {
	changed := 0
	for i := range m.MaterialSettings.Textures {
		t := &m.MaterialSettings.Textures[i]
		if !t.IsFile() {
			continue
		}
		p := filepath.ToSlash(t.Path)
		stem := strings.TrimSuffix(p, path.Ext(p))
		t.Path = path.Join(filepath.ToSlash(m.OutputDirectory), stem+ext)
		changed++
	}
	return changed
}

func writeLines(name string, lines []string) error {
	f, err := os.OpenFile(name, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return err
	}
	w := bufio.NewWriter(f)
	for _, l := range lines {
		w.WriteString(l)
		w.WriteByte('\n')
	}
	if err := w.Flush(); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
