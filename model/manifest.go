package model

import (
	"encoding/json"
	"fmt"
)

// PackageManifest is the subset of a package.json the audit cares about.
type PackageManifest struct {
	Name            string            `json:"name,omitempty"`
	Version         string            `json:"version,omitempty"`
	Dependencies    map[string]string `json:"dependencies,omitempty"`
	DevDependencies map[string]string `json:"devDependencies,omitempty"`
}

// ParseManifest decodes manifest bytes into a PackageManifest.
func ParseManifest(data []byte) (*PackageManifest, error) {
	var m PackageManifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse manifest: %w", err)
	}
	return &m, nil
}

// MergedDependencies combines runtime and development dependencies into a
// single name to version-range map. devDependencies win on name collision.
func (m *PackageManifest) MergedDependencies() map[string]string {
	merged := make(map[string]string, len(m.Dependencies)+len(m.DevDependencies))
	for name, version := range m.Dependencies {
		merged[name] = version
	}
	for name, version := range m.DevDependencies {
		merged[name] = version
	}
	return merged
}

// HasDependencies reports whether the manifest declares anything to audit.
func (m *PackageManifest) HasDependencies() bool {
	return len(m.Dependencies)+len(m.DevDependencies) > 0
}
