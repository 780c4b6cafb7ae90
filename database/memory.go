package database

import (
	"context"
	"sync"

	"github.com/dephealth/dha-backend/model"
)

// MemoryStore keeps audit reports in process memory, the default backing.
// Everything is wiped on restart.
type MemoryStore struct {
	mu      sync.RWMutex
	reports map[string]model.AuditReport
	order   []string // insertion order, newest last
}

// NewMemoryStore creates an empty in-memory report store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{reports: make(map[string]model.AuditReport)}
}

// Put stores a report under its own identifier.
func (s *MemoryStore) Put(_ context.Context, report model.AuditReport) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.reports[report.ID]; !exists {
		s.order = append(s.order, report.ID)
	}
	s.reports[report.ID] = report
	return nil
}

// Get looks a report up by identifier.
func (s *MemoryStore) Get(_ context.Context, id string) (model.AuditReport, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	report, ok := s.reports[id]
	return report, ok, nil
}

// List returns report summaries newest first. A limit below 1 returns all.
func (s *MemoryStore) List(_ context.Context, limit int) ([]model.AuditSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	summaries := make([]model.AuditSummary, 0, len(s.order))
	for i := len(s.order) - 1; i >= 0; i-- {
		if limit > 0 && len(summaries) == limit {
			break
		}
		report := s.reports[s.order[i]]
		summaries = append(summaries, report.Summary())
	}
	return summaries, nil
}
