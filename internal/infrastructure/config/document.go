// Package config loads and applies fontkiln run configuration documents.
//
// A document (conventionally fontkiln.yaml) tunes one run: which checks
// to include or exclude, how parallel to go, and the per-check variables
// that checks declare via their Configs metadata. Loading validates the
// document against an embedded JSON Schema and gates on apiVersion
// before anything is applied.
package config

import (
	"fmt"
	"time"

	apperrors "github.com/fontkiln/fontkiln/internal/application/errors"
	"github.com/fontkiln/fontkiln/internal/domain/entities"
	"github.com/fontkiln/fontkiln/internal/domain/services"
	"github.com/fontkiln/fontkiln/internal/domain/values"
	"github.com/fontkiln/fontkiln/internal/infrastructure/engine"
)

// Document is one parsed run configuration.
type Document struct {
	APIVersion string                    `yaml:"apiVersion"`
	Profile    string                    `yaml:"profile"`
	Vars       map[string]any            `yaml:"vars"`
	Run        RunSection                `yaml:"run"`
	Checks     map[string]map[string]any `yaml:"checks"`
}

// RunSection tunes check selection and execution for a run.
type RunSection struct {
	ExplicitChecks      []string `yaml:"explicit_checks"`
	ExcludeChecks       []string `yaml:"exclude_checks"`
	SkipExperimental    bool     `yaml:"skip_experimental"`
	MinSeverity         int      `yaml:"min_severity"`
	Filter              string   `yaml:"filter"`
	Parallel            *bool    `yaml:"parallel"`
	MaxConcurrentChecks int      `yaml:"max_concurrent_checks"`
	CheckTimeout        string   `yaml:"check_timeout"`
}

// EngineConfig converts the run section into engine settings, starting
// from the engine defaults so an empty section changes nothing.
func (d *Document) EngineConfig() (engine.RunConfig, error) {
	cfg := engine.DefaultRunConfig()

	cfg.IncludeCheckIDs = append([]string(nil), d.Run.ExplicitChecks...)
	cfg.ExcludeCheckIDs = append([]string(nil), d.Run.ExcludeChecks...)
	cfg.SkipExperimental = d.Run.SkipExperimental

	if d.Run.MinSeverity != 0 {
		sev, err := values.NewSeverity(d.Run.MinSeverity)
		if err != nil {
			return cfg, apperrors.NewConfigurationError("run.min_severity", err.Error(), nil)
		}
		cfg.MinSeverity = sev
	}

	if d.Run.Filter != "" {
		program, err := services.NewExpressionCompiler().Compile(d.Run.Filter)
		if err != nil {
			return cfg, apperrors.NewConfigurationError("run.filter", "cannot compile filter expression", err)
		}
		cfg.FilterProgram = program
	}

	if d.Run.Parallel != nil {
		cfg.Parallel = *d.Run.Parallel
	}
	if d.Run.MaxConcurrentChecks > 0 {
		cfg.MaxConcurrentChecks = d.Run.MaxConcurrentChecks
	}

	if d.Run.CheckTimeout != "" {
		timeout, err := time.ParseDuration(d.Run.CheckTimeout)
		if err != nil {
			return cfg, apperrors.NewConfigurationError("run.check_timeout", fmt.Sprintf("%q is not a duration", d.Run.CheckTimeout), err)
		}
		cfg.CheckTimeout = timeout
	}

	return cfg, nil
}

// Apply injects the per-check variable sections into the profile's
// checks. Every section must address a registered check and may only
// set variables the check declares via Configs; anything else is a
// configuration error, surfaced before the run starts rather than as a
// silently ignored key.
//
// Apply belongs to the configuration phase: it calls InjectGlobals,
// which must not race with running checks.
func (d *Document) Apply(profile *entities.Profile) error {
	for id, section := range d.Checks {
		chk, err := profile.Check(id)
		if err != nil {
			return apperrors.NewConfigurationError("checks", fmt.Sprintf("configuration for unknown check %q", id), err)
		}

		declared := make(map[string]bool, len(chk.Configs()))
		for _, name := range chk.Configs() {
			declared[name] = true
		}

		env := make(map[string]any, len(section))
		for name, value := range section {
			if !declared[name] {
				return apperrors.NewConfigurationError("checks",
					fmt.Sprintf("check %q does not declare a %q variable", id, name), nil)
			}
			env[name] = value
		}
		chk.InjectGlobals(env)
	}
	return nil
}
