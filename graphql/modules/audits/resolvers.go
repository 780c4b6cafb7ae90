// Package audits implements the resolvers for stored audit data.
package audits

import (
	"context"
	"fmt"
	"sort"

	"github.com/dephealth/dha-backend/database"
	"github.com/dephealth/dha-backend/model"
)

// ResolveAudit fetches a single audit report by its identifier.
func ResolveAudit(store database.ReportStore, id string) (interface{}, error) {
	ctx := context.Background()

	report, ok, err := store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("audit %s not found", id)
	}
	return report, nil
}

// ResolveAudits lists stored audit summaries, newest first.
func ResolveAudits(store database.ReportStore, limit int) ([]model.AuditSummary, error) {
	ctx := context.Background()

	summaries, err := store.List(ctx, limit)
	if err != nil {
		return nil, err
	}
	if summaries == nil {
		return []model.AuditSummary{}, nil
	}
	return summaries, nil
}

// ResolveRiskiestDependencies returns the lowest scoring records of one
// audit, ascending by score.
func ResolveRiskiestDependencies(store database.ReportStore, id string, limit int) ([]model.HealthRecord, error) {
	ctx := context.Background()

	report, ok, err := store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("audit %s not found", id)
	}

	records := make([]model.HealthRecord, len(report.Records))
	copy(records, report.Records)
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].HealthScore < records[j].HealthScore
	})

	if limit > 0 && limit < len(records) {
		records = records[:limit]
	}
	return records, nil
}
