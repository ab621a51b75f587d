// Package memory provides in-memory implementations of domain repositories.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/fontkiln/fontkiln/internal/domain/execution"
	"github.com/fontkiln/fontkiln/internal/domain/repositories"
	"github.com/fontkiln/fontkiln/internal/domain/values"
)

var _ repositories.ReportRepository = (*ReportRepository)(nil)

// ReportRepository is an in-memory implementation of
// repositories.ReportRepository. Useful for testing and ephemeral
// storage.
type ReportRepository struct {
	reports map[values.RunID]*execution.Report
	mu      sync.RWMutex
}

// NewReportRepository creates a new in-memory repository.
func NewReportRepository() *ReportRepository {
	return &ReportRepository{
		reports: make(map[values.RunID]*execution.Report),
	}
}

// Save persists a report. The pointer is stored as-is; callers should
// not modify a report after saving it.
func (r *ReportRepository) Save(_ context.Context, report *execution.Report) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.reports[report.RunID] = report
	return nil
}

// FindByID retrieves a report by its run ID.
func (r *ReportRepository) FindByID(_ context.Context, id values.RunID) (*execution.Report, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	report, ok := r.reports[id]
	if !ok {
		return nil, fmt.Errorf("report not found: %s", id)
	}
	return report, nil
}

// FindByProfile retrieves recent reports for a profile, newest first.
func (r *ReportRepository) FindByProfile(_ context.Context, profileName string, limit int) ([]*execution.Report, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var matches []*execution.Report
	for _, report := range r.reports {
		if report.ProfileName == profileName {
			matches = append(matches, report)
		}
	}

	sort.Slice(matches, func(i, j int) bool {
		return matches[i].StartTime.After(matches[j].StartTime)
	})

	if limit > 0 && len(matches) > limit {
		matches = matches[:limit]
	}

	return matches, nil
}

// FindBetween retrieves reports for a profile whose runs started
// within [start, end].
func (r *ReportRepository) FindBetween(_ context.Context, profileName string, start, end time.Time) ([]*execution.Report, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var matches []*execution.Report
	for _, report := range r.reports {
		if report.ProfileName != profileName {
			continue
		}
		if report.StartTime.Before(start) || report.StartTime.After(end) {
			continue
		}
		matches = append(matches, report)
	}

	sort.Slice(matches, func(i, j int) bool {
		return matches[i].StartTime.After(matches[j].StartTime)
	})

	return matches, nil
}
