// Package offline pre-installs the web app's assets into a disk cache so
// the UI keeps working without a network connection.
package offline

import (
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"
)

// ExternalAsset is a third-party file fetched from a pinned URL and
// served from a local path.
type ExternalAsset struct {
	Path string `toml:"path"`
	URL  string `toml:"url"`
}

// Manifest declares everything one app version needs to work offline.
// The generation tag names the cache bucket; bumping it invalidates all
// previously installed assets.
type Manifest struct {
	Generation string          `toml:"generation"`
	Local      []string        `toml:"local"`
	External   []ExternalAsset `toml:"external"`
}

// ParseManifest decodes and validates a TOML manifest.
func ParseManifest(data []byte) (Manifest, error) {
	var m Manifest
	if err := toml.Unmarshal(data, &m); err != nil {
		return Manifest{}, fmt.Errorf("decode manifest: %w", err)
	}
	if err := m.Validate(); err != nil {
		return Manifest{}, err
	}
	return m, nil
}

// Validate checks the manifest for structural problems.
func (m Manifest) Validate() error {
	if strings.TrimSpace(m.Generation) == "" {
		return fmt.Errorf("manifest: generation cannot be empty")
	}
	if len(m.Local)+len(m.External) == 0 {
		return fmt.Errorf("manifest: no assets declared")
	}
	for i, p := range m.Local {
		if !strings.HasPrefix(p, "/") {
			return fmt.Errorf("manifest: local asset %d (%q) must start with '/'", i, p)
		}
	}
	for i, e := range m.External {
		if !strings.HasPrefix(e.Path, "/") {
			return fmt.Errorf("manifest: external asset %d (%q) must start with '/'", i, e.Path)
		}
		if !strings.HasPrefix(e.URL, "http://") && !strings.HasPrefix(e.URL, "https://") {
			return fmt.Errorf("manifest: external asset %d (%q) has invalid url %q", i, e.Path, e.URL)
		}
	}
	return nil
}

// AssetCount returns the total number of declared assets.
func (m Manifest) AssetCount() int {
	return len(m.Local) + len(m.External)
}
