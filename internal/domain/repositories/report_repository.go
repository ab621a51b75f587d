// Package repositories defines interfaces for domain persistence.
package repositories

import (
	"context"
	"time"

	"github.com/fontkiln/fontkiln/internal/domain/execution"
	"github.com/fontkiln/fontkiln/internal/domain/values"
)

// ReportRepository defines the interface for persisting run reports.
type ReportRepository interface {
	// Save persists a report.
	Save(ctx context.Context, report *execution.Report) error

	// FindByID retrieves a report by its run ID.
	FindByID(ctx context.Context, id values.RunID) (*execution.Report, error)

	// FindByProfile retrieves recent reports for a profile, newest
	// first. A limit of 0 means no limit.
	FindByProfile(ctx context.Context, profileName string, limit int) ([]*execution.Report, error)

	// FindBetween retrieves reports for a profile whose runs started
	// within [start, end].
	FindBetween(ctx context.Context, profileName string, start, end time.Time) ([]*execution.Report, error)
}
