// Package registry implements the npm registry client used by the scoring
// core: packument metadata lookups and weekly download counts.
package registry

import (
	"encoding/json"
	"time"
)

// Packument is the registry's package metadata document, reduced to the
// fields the audit consumes.
type Packument struct {
	Name        string                 `json:"name"`
	DistTags    map[string]string      `json:"dist-tags"`
	Versions    map[string]VersionInfo `json:"versions"`
	Time        map[string]time.Time   `json:"time"`
	Maintainers []Maintainer           `json:"maintainers"`
	Repository  *Repository            `json:"repository"`
	Downloads   *int64                 `json:"downloads"`
}

// VersionInfo is the per-version metadata inside a packument.
type VersionInfo struct {
	Version    string      `json:"version"`
	License    License     `json:"license"`
	Repository *Repository `json:"repository"`
}

// Maintainer is one listed package maintainer.
type Maintainer struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Repository points at the package's source repository.
type Repository struct {
	Type string `json:"type"`
	URL  string `json:"url"`
}

// License decodes both the modern SPDX string form and the legacy
// {"type": ...} object form. Shapes that are neither (old licenses arrays)
// decode to empty, which downstream treats as unknown.
type License string

// UnmarshalJSON implements json.Unmarshaler.
func (l *License) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*l = License(s)
		return nil
	}

	var obj struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &obj); err == nil {
		*l = License(obj.Type)
		return nil
	}

	*l = ""
	return nil
}

// LatestVersion returns the version the registry tags as latest.
func (p *Packument) LatestVersion() string {
	return p.DistTags["latest"]
}

// LicenseFor returns the license string recorded for one published version,
// or empty when the version carries none.
func (p *Packument) LicenseFor(version string) string {
	if v, ok := p.Versions[version]; ok {
		return string(v.License)
	}
	return ""
}

// LastReleaseTime returns the package's modification timestamp, falling back
// to the creation timestamp. The second return is false when the packument
// carries neither.
func (p *Packument) LastReleaseTime() (time.Time, bool) {
	if t, ok := p.Time["modified"]; ok {
		return t, true
	}
	if t, ok := p.Time["created"]; ok {
		return t, true
	}
	return time.Time{}, false
}

// RepositoryURL returns the package's source repository URL, preferring the
// top-level entry and falling back to the latest version's.
func (p *Packument) RepositoryURL() string {
	if p.Repository != nil && p.Repository.URL != "" {
		return p.Repository.URL
	}
	if v, ok := p.Versions[p.LatestVersion()]; ok && v.Repository != nil {
		return v.Repository.URL
	}
	return ""
}
