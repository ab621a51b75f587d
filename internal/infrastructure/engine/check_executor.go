package engine

import (
	"context"
	"fmt"
	"strings"
	"time"

	apperrors "github.com/fontkiln/fontkiln/internal/application/errors"
	"github.com/fontkiln/fontkiln/internal/domain/callable"
	"github.com/fontkiln/fontkiln/internal/domain/conditions"
	"github.com/fontkiln/fontkiln/internal/domain/execution"
)

// negationPrefix inverts a condition name in a check declaration:
// "not is_variable_font" gates on the condition NOT holding.
const negationPrefix = "not "

// runCheck executes a single check and returns its outcome. A check
// never takes the run down with it: resolution failures and panics
// both land as error outcomes in the report.
func (e *Engine) runCheck(ctx context.Context, chk *callable.Check, index int, conds *conditions.Context) (outcome execution.Outcome) {
	startTime := time.Now()

	defer func() {
		if r := recover(); r != nil {
			outcome = execution.ErrorOutcome(chk.ID(),
				apperrors.NewExecutionError(chk.ID().String(), "check panicked", fmt.Errorf("%v", r)))
		}
		outcome.Index = index
		outcome.Duration = time.Since(startTime)
		outcome.Description = chk.Description()
		outcome.Severity = chk.Severity()
		outcome.Experimental = chk.Experimental()
		outcome.Findings = execution.ClampMessages(outcome.Findings, e.config.MaxMessageSizeBytes)
		e.logger.Debug("check completed",
			"check", chk.ID().String(),
			"status", outcome.Status,
			"duration", outcome.Duration,
		)
	}()

	if e.config.CheckTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.config.CheckTimeout)
		defer cancel()
	}

	if skip, errOutcome := e.gateConditions(ctx, chk, conds); errOutcome != nil {
		return *errOutcome
	} else if skip != "" {
		return execution.SkippedOutcome(chk.ID(), skip)
	}

	args, errOutcome := e.resolveArgs(ctx, chk, conds)
	if errOutcome != nil {
		return *errOutcome
	}

	result, err := chk.Invoke(ctx, args)
	if err != nil {
		return execution.ErrorOutcome(chk.ID(), err)
	}

	findings, err := findingsOf(result)
	if err != nil {
		return execution.ErrorOutcome(chk.ID(), err)
	}

	return execution.NewOutcome(chk.ID(), findings)
}

// gateConditions evaluates the check's condition names. It returns a
// skip reason when a condition is unfulfilled, or an error outcome when
// one cannot be resolved at all.
func (e *Engine) gateConditions(ctx context.Context, chk *callable.Check, conds *conditions.Context) (string, *execution.Outcome) {
	for _, name := range chk.Conditions() {
		want := true
		condName := name
		if strings.HasPrefix(condName, negationPrefix) {
			want = false
			condName = strings.TrimSpace(strings.TrimPrefix(condName, negationPrefix))
		}

		held, err := conds.GetBool(ctx, condName)
		if err != nil {
			o := execution.ErrorOutcome(chk.ID(), fmt.Errorf("cannot resolve condition %q: %w", condName, err))
			return "", &o
		}
		if held != want {
			return fmt.Sprintf("unfulfilled condition: %s", name), nil
		}
	}
	return "", nil
}

// resolveArgs gathers the check's argument values from the condition
// context. Mandatory arguments must resolve; optional ones are filled
// only when a value is available, leaving declared defaults in place
// otherwise.
func (e *Engine) resolveArgs(ctx context.Context, chk *callable.Check, conds *conditions.Context) (map[string]any, *execution.Outcome) {
	args := make(map[string]any)

	for _, name := range chk.MandatoryArgs() {
		value, err := conds.Get(ctx, name)
		if err != nil {
			o := execution.ErrorOutcome(chk.ID(), fmt.Errorf("cannot resolve argument %q: %w", name, err))
			return nil, &o
		}
		args[name] = value
	}

	for _, name := range chk.OptionalArgs() {
		if !conds.Has(name) {
			continue
		}
		value, err := conds.Get(ctx, name)
		if err != nil {
			o := execution.ErrorOutcome(chk.ID(), fmt.Errorf("cannot resolve argument %q: %w", name, err))
			return nil, &o
		}
		args[name] = value
	}

	return args, nil
}

// findingsOf converts a check's return value into findings. Checks may
// return nothing (a clean pass), a single finding or a slice of them.
func findingsOf(result any) ([]execution.Finding, error) {
	switch r := result.(type) {
	case nil:
		return nil, nil
	case []execution.Finding:
		return r, nil
	case execution.Finding:
		return []execution.Finding{r}, nil
	case *execution.Finding:
		if r == nil {
			return nil, nil
		}
		return []execution.Finding{*r}, nil
	default:
		return nil, fmt.Errorf("check returned %T, want findings", result)
	}
}
