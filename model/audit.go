// Package model - defines the audit report structures produced by the scoring
// core and stored by the report store.
package model

import (
	"math"
	"time"

	"github.com/google/uuid"
)

// SourceUpload labels audits created from a direct manifest upload.
const SourceUpload = "upload"

// HealthRecord is the per-dependency output of the scoring core.
type HealthRecord struct {
	Dependency    string   `json:"dependency"`
	Version       string   `json:"version"`
	License       string   `json:"license"`
	LastRelease   *string  `json:"last_release"` // ISO calendar date, null on failure
	HealthScore   float64  `json:"health_score"`
	Maintainers   *int     `json:"maintainers,omitempty"` // present only on success
	Downloads     int64    `json:"downloads"`
	Repository    string   `json:"repository,omitempty"`
	Purl          string   `json:"purl,omitempty"`
	LatestVersion string   `json:"latest_version,omitempty"`
	Outdated      *bool    `json:"outdated,omitempty"`
	Advisories    []string `json:"advisories,omitempty"`
	Error         string   `json:"error,omitempty"`
}

// Degraded reports whether the record is a fallback produced by a failed
// analysis rather than real registry data.
func (r *HealthRecord) Degraded() bool {
	return r.Error != ""
}

// AuditReport is a completed batch analysis, retrievable by its identifier
// until the process restarts.
type AuditReport struct {
	ID                string         `json:"audit_id"`
	CreatedAt         time.Time      `json:"created_at"`
	Source            string         `json:"source,omitempty"`
	TotalDependencies int            `json:"total_dependencies"`
	Records           []HealthRecord `json:"records"`
}

// AuditSummary is the listing projection of an AuditReport.
type AuditSummary struct {
	ID                string    `json:"audit_id"`
	CreatedAt         time.Time `json:"created_at"`
	Source            string    `json:"source,omitempty"`
	TotalDependencies int       `json:"total_dependencies"`
	MeanScore         float64   `json:"mean_score"`
}

// NewAuditReport assembles a report around the analyzer's sorted records and
// assigns it a fresh identifier.
func NewAuditReport(source string, records []HealthRecord) *AuditReport {
	return &AuditReport{
		ID:                uuid.NewString(),
		CreatedAt:         time.Now().UTC(),
		Source:            source,
		TotalDependencies: len(records),
		Records:           records,
	}
}

// Summary reduces the report to its listing projection.
func (a *AuditReport) Summary() AuditSummary {
	return AuditSummary{
		ID:                a.ID,
		CreatedAt:         a.CreatedAt,
		Source:            a.Source,
		TotalDependencies: a.TotalDependencies,
		MeanScore:         a.MeanScore(),
	}
}

// MeanScore is the mean health score across all records, rounded to one
// decimal. Zero for an empty record set.
func (a *AuditReport) MeanScore() float64 {
	if len(a.Records) == 0 {
		return 0
	}
	var sum float64
	for i := range a.Records {
		sum += a.Records[i].HealthScore
	}
	return math.Round(sum/float64(len(a.Records))*10) / 10
}
