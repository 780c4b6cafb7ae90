// Package audits implements the REST API handlers for audit operations.
package audits

import (
	"github.com/dephealth/dha-backend/database"
	"github.com/dephealth/dha-backend/events"
	"github.com/dephealth/dha-backend/restapi/modules/github"
	"github.com/dephealth/dha-backend/scoring"
)

// Service bundles the collaborators the audit handlers run against.
type Service struct {
	Scorer *scoring.Scorer
	Store  database.ReportStore
	Hub    *events.Hub
	GitHub *github.Service

	// Concurrency supplies the analyzer worker count per request, so a
	// config reload takes effect without restarting. Nil means sequential.
	Concurrency func() int
}

func (s *Service) analyzer() *scoring.Analyzer {
	workers := 1
	if s.Concurrency != nil {
		workers = s.Concurrency()
	}
	return scoring.NewAnalyzer(s.Scorer, workers)
}
