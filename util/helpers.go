// Package util provides utility functions for working with Package URLs (PURLs),
// npm version comparisons, and extracting metadata from the environment.
//
//revive:disable-next-line:var-naming
package util

import (
	"fmt"
	"os"
	"strings"

	"github.com/Masterminds/semver/v3"
	npm "github.com/aquasecurity/go-npm-version/pkg"
	"github.com/package-url/packageurl-go"
)

// GetEnvDefault is a convenience function for handling env vars
func GetEnvDefault(key, defVal string) string {
	val, ex := os.LookupEnv(key) // get the env var
	if !ex {                     // not found return default
		return defVal
	}
	return val // return value for env var
}

// IsEmpty checks if a string is empty or contains only whitespace
func IsEmpty(s string) bool {
	return len(strings.TrimSpace(s)) == 0
}

// IsNotEmpty checks if a string is not empty
func IsNotEmpty(s string) bool {
	return !IsEmpty(s)
}

// FileExists checks if a file exists
func FileExists(filename string) bool {
	_, err := os.Stat(filename)
	return err == nil
}

// ============================================================================
// Version Range Handling
// ============================================================================

// CleanVersionRange reduces a declared npm version range to its lowest
// concrete version so it can be compared against a resolved release.
// Examples:
//   - "^4.18.2"       -> "4.18.2"
//   - ">=3.0.0 <4"    -> "3.0.0"
//   - "1.x"           -> "1"
//   - "*" / "latest"  -> "" (no comparable version)
func CleanVersionRange(declared string) string {
	s := strings.TrimSpace(declared)
	if s == "" || s == "*" || s == "latest" {
		return ""
	}

	// Compound ranges: keep the first comparator only.
	for _, sep := range []string{"||", " - ", " "} {
		if i := strings.Index(s, sep); i >= 0 {
			s = s[:i]
		}
	}
	s = strings.TrimLeft(s, "^~<>=v ")

	// Wildcard segments end the usable prefix ("1.x" -> "1").
	parts := strings.Split(s, ".")
	for i, p := range parts {
		if p == "x" || p == "X" || p == "*" {
			parts = parts[:i]
			break
		}
	}

	return strings.TrimSpace(strings.Join(parts, "."))
}

// IsOutdated reports whether the declared version range sits strictly below
// the registry's latest release. npm version semantics are tried first, with
// plain semver as the fallback for identifiers the npm parser rejects.
func IsOutdated(declared, latest string) (bool, error) {
	base := CleanVersionRange(declared)
	if base == "" {
		return false, fmt.Errorf("no comparable version in %q", declared)
	}
	if latest == "" {
		return false, fmt.Errorf("no latest version to compare against")
	}

	if dv, err := npm.NewVersion(base); err == nil {
		if lv, err := npm.NewVersion(latest); err == nil {
			return dv.LessThan(lv), nil
		}
	}

	dv, err := semver.NewVersion(base)
	if err != nil {
		return false, fmt.Errorf("parse declared version %q: %w", base, err)
	}
	lv, err := semver.NewVersion(latest)
	if err != nil {
		return false, fmt.Errorf("parse latest version %q: %w", latest, err)
	}
	return dv.LessThan(lv), nil
}

// ============================================================================
// PURL Construction
// ============================================================================

// NpmPurl builds the canonical package URL for an npm package at a declared
// version range. Scoped names keep their scope as the PURL namespace; ranges
// without a comparable concrete version produce a versionless PURL.
func NpmPurl(name, declared string) string {
	namespace := ""
	shortname := name
	if strings.HasPrefix(name, "@") {
		if i := strings.Index(name, "/"); i > 0 {
			namespace = name[:i]
			shortname = name[i+1:]
		}
	}

	purl := packageurl.PackageURL{
		Type:      packageurl.TypeNPM,
		Namespace: namespace,
		Name:      shortname,
		Version:   CleanVersionRange(declared),
	}

	return strings.ToLower(purl.ToString())
}
