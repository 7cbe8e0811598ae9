package converter

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/Faultbox/modelconv/pkg/asset"
)

// Package is a manifest loaded together with its binary.
type Package struct {
	Manifest   *asset.Manifest
	BinaryPath string
	Data       *asset.Decoded
}

// Inspect reads a manifest and the binary next to it, checks one against
// the other and decodes every section.
func Inspect(manifestPath string) (*Package, error) {
	f, err := os.Open(manifestPath)
	if err != nil {
		return nil, err
	}
	m, err := asset.ReadManifest(f)
	f.Close()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", manifestPath, err)
	}

	binPath := filepath.Join(filepath.Dir(manifestPath), m.BinaryFilename)
	data, err := os.ReadFile(binPath)
	if err != nil {
		return nil, err
	}
	if err := m.Validate(int64(len(data))); err != nil {
		return nil, fmt.Errorf("%s: %w", manifestPath, err)
	}

	decoded, err := asset.Decode(m.BinaryInfo, data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", binPath, err)
	}
	return &Package{Manifest: m, BinaryPath: binPath, Data: decoded}, nil
}
