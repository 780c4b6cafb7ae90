package scoring

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/dephealth/dha-backend/model"
)

// ErrNoDependencies flags a nil or empty dependency map. An audit over
// nothing is a malformed request, not an empty success.
var ErrNoDependencies = errors.New("no dependencies to analyze")

// Analyzer runs the scorer over a whole dependency map.
type Analyzer struct {
	scorer      *Scorer
	concurrency int
}

// NewAnalyzer wires a batch analyzer. Concurrency below 2 selects the
// sequential path.
func NewAnalyzer(scorer *Scorer, concurrency int) *Analyzer {
	if concurrency < 1 {
		concurrency = 1
	}
	return &Analyzer{scorer: scorer, concurrency: concurrency}
}

// AnalyzeAll scores every entry of the dependency map and returns the records
// sorted by descending health score, ties alphabetical by name. Every input
// entry yields exactly one record; per-package failures degrade to fallback
// records and never fail the batch. The only error is the empty-input
// precondition.
func (a *Analyzer) AnalyzeAll(ctx context.Context, deps map[string]string) ([]model.HealthRecord, error) {
	if len(deps) == 0 {
		return nil, ErrNoDependencies
	}

	names := make([]string, 0, len(deps))
	for name := range deps {
		names = append(names, name)
	}
	sort.Strings(names)

	var records []model.HealthRecord
	if a.concurrency > 1 && len(names) > 1 {
		records = a.analyzePool(ctx, names, deps)
	} else {
		records = a.analyzeSequential(ctx, names, deps)
	}

	// Stable sort over the alphabetical input order, so equal scores come
	// out alphabetically.
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].HealthScore > records[j].HealthScore
	})

	return records, nil
}

func (a *Analyzer) analyzeSequential(ctx context.Context, names []string, deps map[string]string) []model.HealthRecord {
	records := make([]model.HealthRecord, 0, len(names))
	for _, name := range names {
		record, _ := a.scorer.Score(ctx, name, deps[name])
		records = append(records, record)
	}
	return records
}

// analyzePool fans the entries out to a fixed worker pool. Results carry
// their input index so the collected slice matches the sequential ordering
// before the final sort.
func (a *Analyzer) analyzePool(ctx context.Context, names []string, deps map[string]string) []model.HealthRecord {
	workers := a.concurrency
	if len(names) < workers {
		workers = len(names)
	}

	type result struct {
		idx    int
		record model.HealthRecord
	}

	jobs := make(chan int, len(names))
	results := make(chan result, len(names))

	for i := range names {
		jobs <- i
	}
	close(jobs)

	var wg sync.WaitGroup
	wg.Add(workers)
	for n := 0; n < workers; n++ {
		go func() {
			defer wg.Done()
			for i := range jobs {
				record, _ := a.scorer.Score(ctx, names[i], deps[names[i]])
				results <- result{idx: i, record: record}
			}
		}()
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	records := make([]model.HealthRecord, len(names))
	for r := range results {
		records[r.idx] = r.record
	}
	return records
}
