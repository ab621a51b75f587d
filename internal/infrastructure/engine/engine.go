package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/fontkiln/fontkiln/internal/domain/callable"
	"github.com/fontkiln/fontkiln/internal/domain/conditions"
	"github.com/fontkiln/fontkiln/internal/domain/entities"
	"github.com/fontkiln/fontkiln/internal/domain/execution"
	"github.com/fontkiln/fontkiln/internal/domain/repositories"
	"github.com/fontkiln/fontkiln/internal/domain/services"
	"github.com/fontkiln/fontkiln/internal/version"
)

// Engine runs the checks of a profile against one subject and collects
// the outcomes into a report.
//
// The subject travels as the seed of the condition context: the engine
// itself never inspects it. Checks receive whatever slices of it their
// parameters name, resolved through the profile's conditions.
type Engine struct {
	repository repositories.ReportRepository
	config     RunConfig
	version    version.Info
	logger     *slog.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithRepository persists every finished report to repo.
func WithRepository(repo repositories.ReportRepository) Option {
	return func(e *Engine) { e.repository = repo }
}

// WithLogger routes engine logging through logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) { e.logger = logger }
}

// NewEngine creates an execution engine with default configuration.
func NewEngine(info version.Info, opts ...Option) *Engine {
	return NewEngineWithConfig(info, DefaultRunConfig(), opts...)
}

// NewEngineWithConfig creates an execution engine with custom
// configuration.
func NewEngineWithConfig(info version.Info, cfg RunConfig, opts ...Option) *Engine {
	e := &Engine{
		config:  cfg,
		version: info,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

type indexedCheck struct {
	check *callable.Check
	index int
}

// Execute runs the profile's checks and returns the report. The seed
// holds the externally provided facts about the subject (parsed font,
// file path, configuration values); condition and argument names
// resolve against it first, then against the profile's registered
// conditions.
//
// Checks excluded by the run filters do not appear in the report at
// all. Checks whose conditions are unfulfilled appear with a SKIP
// outcome: the filter decides what was asked to run, the conditions
// decide what was applicable.
func (e *Engine) Execute(ctx context.Context, profile *entities.Profile, seed map[string]any) (*execution.Report, error) {
	if err := wrapTimeout(ctx.Err()); err != nil {
		return nil, err
	}

	report := execution.NewReport(profile.Name())
	report.ToolVersion = e.version.String()

	conds := profile.Conditions().NewContext(seed)

	filter := e.buildFilter()
	selected := make([]indexedCheck, 0, profile.CheckCount())
	for i, chk := range profile.Checks() {
		if ok, reason := filter.ShouldRun(chk); !ok {
			e.logger.Debug("check excluded", "check", chk.ID().String(), "reason", reason)
			continue
		}
		selected = append(selected, indexedCheck{check: chk, index: i})
	}

	if e.config.Parallel && len(selected) > 1 {
		if err := e.runParallel(ctx, selected, conds, report); err != nil {
			return nil, wrapTimeout(err)
		}
	} else {
		for _, ic := range selected {
			if err := wrapTimeout(ctx.Err()); err != nil {
				return nil, err
			}
			report.AddOutcome(e.runCheck(ctx, ic.check, ic.index, conds))
		}
	}

	report.Finalize()

	if e.repository != nil {
		if err := e.repository.Save(ctx, report); err != nil {
			e.logger.Warn("failed to persist report", "error", err, "run_id", report.RunID)
		}
	}

	return report, nil
}

// runParallel executes checks on a bounded worker group. Outcomes land
// in the report in completion order; Finalize restores definition
// order. Condition memoization makes concurrent first computations
// collapse, so checks sharing a condition never compute it twice.
func (e *Engine) runParallel(ctx context.Context, checks []indexedCheck, conds *conditions.Context, report *execution.Report) error {
	g, gctx := errgroup.WithContext(ctx)
	if e.config.MaxConcurrentChecks > 0 {
		g.SetLimit(e.config.MaxConcurrentChecks)
	}

	for _, ic := range checks {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			report.AddOutcome(e.runCheck(gctx, ic.check, ic.index, conds))
			return nil
		})
	}

	return g.Wait()
}

// buildFilter assembles the check filter from the run configuration.
func (e *Engine) buildFilter() *services.CheckFilter {
	filter := services.NewCheckFilter().
		WithExclusiveChecks(e.config.IncludeCheckIDs).
		WithExcludedChecks(e.config.ExcludeCheckIDs).
		WithMinSeverity(e.config.MinSeverity).
		WithFilterExpression(e.config.FilterProgram)
	if e.config.SkipExperimental {
		filter = filter.WithoutExperimental()
	}
	return filter
}

func wrapTimeout(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("run timed out: %w", err)
	}
	return err
}
