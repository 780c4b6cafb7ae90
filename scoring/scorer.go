// Package scoring computes per-dependency health scores and runs batch
// audits over a manifest's dependency map.
package scoring

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/dephealth/dha-backend/model"
	"github.com/dephealth/dha-backend/registry"
	"github.com/dephealth/dha-backend/util"
)

const (
	// FallbackScore is the neutral score assigned when a package cannot be
	// scored at all.
	FallbackScore = 3.0

	// LicenseUnknown is the license label for packages whose registry
	// metadata carries no usable license identifier.
	LicenseUnknown = "Unknown"

	baseScore = 5.0
)

// MetadataFetcher supplies registry metadata for the scorer. Satisfied by
// registry.Client.
type MetadataFetcher interface {
	Fetch(ctx context.Context, name string) (*registry.Packument, error)
	WeeklyDownloads(ctx context.Context, name string, doc *registry.Packument) int64
}

// AdvisoryFetcher supplies known advisory identifiers for a package.
// Satisfied by advisories.Client. Optional; a nil fetcher disables the
// advisory enrichment entirely.
type AdvisoryFetcher interface {
	AdvisoryIDs(ctx context.Context, name string) ([]string, error)
}

// Scorer computes the health score of a single package from registry
// metadata.
type Scorer struct {
	meta       MetadataFetcher
	advisories AdvisoryFetcher
	now        func() time.Time
}

// NewScorer wires a scorer. A nil clock defaults to time.Now; a nil advisory
// fetcher skips advisory enrichment.
func NewScorer(meta MetadataFetcher, advisories AdvisoryFetcher, now func() time.Time) *Scorer {
	if now == nil {
		now = time.Now
	}
	return &Scorer{meta: meta, advisories: advisories, now: now}
}

// Score fetches registry metadata for name and computes its health record.
// The returned record is always usable: on failure it is the fallback record
// and the error describes the cause. Callers distinguish degraded results by
// the error return (or the record's Error field), never by a missing record.
func (s *Scorer) Score(ctx context.Context, name, declared string) (model.HealthRecord, error) {
	doc, err := s.meta.Fetch(ctx, name)
	if err != nil {
		return NewFallbackRecord(name, declared, err), fmt.Errorf("score %s: %w", name, err)
	}

	latest := doc.LatestVersion()
	license := doc.LicenseFor(latest)
	if license == "" {
		license = LicenseUnknown
	}

	score := baseScore + licenseAdjustment(license)

	var lastRelease *string
	if released, ok := doc.LastReleaseTime(); ok {
		date := released.UTC().Format("2006-01-02")
		lastRelease = &date
		score += recencyAdjustment(daysSince(s.now(), released))
	}

	downloads := s.meta.WeeklyDownloads(ctx, name, doc)
	score += popularityAdjustment(downloads)

	maintainers := len(doc.Maintainers)

	record := model.HealthRecord{
		Dependency:    name,
		Version:       declared,
		License:       license,
		LastRelease:   lastRelease,
		HealthScore:   roundScore(clampScore(score)),
		Maintainers:   &maintainers,
		Downloads:     downloads,
		Repository:    doc.RepositoryURL(),
		Purl:          util.NpmPurl(name, declared),
		LatestVersion: latest,
	}

	if outdated, err := util.IsOutdated(declared, latest); err == nil {
		record.Outdated = &outdated
	}

	if s.advisories != nil {
		if ids, err := s.advisories.AdvisoryIDs(ctx, name); err == nil {
			record.Advisories = ids
		}
	}

	return record, nil
}

// NewFallbackRecord builds the degraded record substituted when a package
// cannot be scored. Identity fields survive; everything metadata-derived is
// neutral.
func NewFallbackRecord(name, declared string, cause error) model.HealthRecord {
	return model.HealthRecord{
		Dependency:  name,
		Version:     declared,
		License:     LicenseUnknown,
		HealthScore: FallbackScore,
		Purl:        util.NpmPurl(name, declared),
		Error:       cause.Error(),
	}
}

func licenseAdjustment(license string) float64 {
	switch license {
	case "MIT", "ISC", "BSD-3-Clause":
		return 2.0
	case "Apache-2.0":
		return 1.5
	case LicenseUnknown:
		return -1.0
	default:
		return 0
	}
}

func recencyAdjustment(days int) float64 {
	switch {
	case days < 30:
		return 2.0
	case days < 180:
		return 1.0
	case days > 365:
		return -1.0
	default:
		return 0
	}
}

func popularityAdjustment(downloads int64) float64 {
	switch {
	case downloads > 1_000_000:
		return 1.0
	case downloads >= 100_000:
		return 0.5
	default:
		return 0
	}
}

// daysSince counts whole elapsed days. Timestamps in the future (registry
// clock skew) count as zero days, not negative.
func daysSince(now, released time.Time) int {
	days := int(now.Sub(released).Hours() / 24)
	if days < 0 {
		return 0
	}
	return days
}

func clampScore(score float64) float64 {
	if score < 0 {
		return 0
	}
	if score > 10 {
		return 10
	}
	return score
}

// roundScore rounds half-up to one decimal place.
func roundScore(score float64) float64 {
	return math.Round(score*10) / 10
}
