package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/fontkiln/fontkiln/checks/opentype"
	"github.com/fontkiln/fontkiln/internal/domain/entities"
	"github.com/fontkiln/fontkiln/internal/domain/services"
	"github.com/fontkiln/fontkiln/internal/domain/values"
	"github.com/fontkiln/fontkiln/internal/infrastructure/config"
	"github.com/fontkiln/fontkiln/internal/infrastructure/engine"
	"github.com/fontkiln/fontkiln/internal/infrastructure/output"
	"github.com/fontkiln/fontkiln/internal/sfntlite"
	"github.com/fontkiln/fontkiln/internal/version"
)

var (
	format           string
	outFile          string
	runConfigPath    string
	includeCheckIDs  []string
	excludeCheckIDs  []string
	filterExpr       string
	minSeverity      int
	skipExperimental bool
	parallel         bool
	checkTimeout     time.Duration
	noColor          bool
)

// checkCmd represents the check command
var checkCmd = &cobra.Command{
	Use:   "check <font>",
	Short: "Run the bundled checks against a font binary",
	Long: `Parse a font binary and run the bundled opentype profile against it.

Filtering:
  Use flags to select specific checks to run.
  --check opentype/unitsperem   Run specific checks (exclusive)
  --exclude-check opentype/vendor_id
                                Exclude specific checks
  --min-severity 7              Only run checks graded at least this severe
  --skip-experimental           Leave experimental checks out
  --filter "severity >= 7 && !experimental"
                                Advanced filtering expression

A fontkiln.yaml run configuration (--run-config) can set the same
selection plus per-check variables; flags win over the document.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runCheckAction(cmd.Context(), args[0])
	},
}

func init() {
	rootCmd.AddCommand(checkCmd)

	checkCmd.Flags().StringVar(&format, "format", "table", "Output format: table, json, yaml, junit, sarif")
	checkCmd.Flags().StringVarP(&outFile, "output", "o", "", "Output file path (default: stdout)")
	checkCmd.Flags().StringVar(&runConfigPath, "run-config", "", "Run configuration document (fontkiln.yaml)")

	// Filtering flags
	checkCmd.Flags().StringSliceVar(&includeCheckIDs, "check", nil, "Run specific checks by ID (exclusive, comma-separated)")
	checkCmd.Flags().StringSliceVar(&excludeCheckIDs, "exclude-check", nil, "Exclude specific checks by ID (comma-separated)")
	checkCmd.Flags().StringVar(&filterExpr, "filter", "", "Advanced filter expression (e.g. \"severity >= 7\")")
	checkCmd.Flags().IntVar(&minSeverity, "min-severity", 0, "Only run checks graded at least this severe (1-10)")
	checkCmd.Flags().BoolVar(&skipExperimental, "skip-experimental", false, "Leave experimental checks out")

	// Execution flags
	checkCmd.Flags().BoolVar(&parallel, "parallel", true, "Run checks in parallel")
	checkCmd.Flags().DurationVar(&checkTimeout, "timeout", 0, "Per-check timeout (0 to disable)")
	checkCmd.Flags().BoolVar(&noColor, "no-color", false, "Disable colors in table output")
}

// runCheckAction implements the core logic for the check command
func runCheckAction(ctx context.Context, fontPath string) error {
	profile := opentype.Profile()

	doc, err := loadRunConfig()
	if err != nil {
		return err
	}

	cfg, err := buildRunConfig(doc)
	if err != nil {
		return err
	}

	if err := validateCheckSelection(profile, cfg); err != nil {
		return err
	}

	if doc != nil {
		if err := doc.Apply(profile); err != nil {
			return fmt.Errorf("failed to apply run configuration: %w", err)
		}
	}

	slog.Info("parsing font", "path", fontPath)
	font, err := sfntlite.ParseFile(fontPath)
	if err != nil {
		return fmt.Errorf("failed to parse font: %w", err)
	}

	seed := map[string]any{
		"font":      font,
		"font_path": fontPath,
	}

	slog.Info("running checks", "profile", profile.Name(), "checks", profile.CheckCount())

	eng := engine.NewEngineWithConfig(version.Get(), *cfg)
	report, err := eng.Execute(ctx, profile, seed)
	if err != nil {
		return fmt.Errorf("run failed: %w", err)
	}

	slog.Info("run complete",
		"run_id", report.RunID,
		"duration", report.Duration,
		"total", report.Summary.Total,
		"passed", report.Summary.Passed,
		"failed", report.Summary.Failed,
		"warned", report.Summary.Warned,
		"errors", report.Summary.Errored,
		"skipped", report.Summary.Skipped)

	writer := os.Stdout
	if outFile != "" {
		//nolint:gosec // G304: User-controlled output file path is intentional
		file, err := os.Create(outFile)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer func() {
			_ = file.Close() // Best-effort cleanup
		}()
		writer = file
		slog.Info("writing output", "file", outFile, "format", format)
	}

	formatter, err := output.NewFormatterFactory().Create(format, writer, output.Options{
		Indent:   true,
		FontPath: fontPath,
		NoColor:  noColor,
	})
	if err != nil {
		return err
	}
	if err := formatter.Format(report); err != nil {
		return fmt.Errorf("failed to format output: %w", err)
	}

	// Experimental checks report but never drive the exit code.
	if worst := report.WorstEnforced(); worst.IsFailure() {
		return fmt.Errorf("check failed: %d passed, %d failed, %d errors",
			report.Summary.Passed, report.Summary.Failed, report.Summary.Errored)
	}

	return nil
}

// loadRunConfig loads the run configuration document when one was
// requested.
func loadRunConfig() (*config.Document, error) {
	if runConfigPath == "" {
		return nil, nil
	}

	slog.Info("loading run configuration", "path", runConfigPath)
	doc, err := config.NewLoader().Load(runConfigPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load run configuration: %w", err)
	}
	return doc, nil
}

// buildRunConfig turns the optional document plus the command flags
// into engine settings. Flags win over the document.
func buildRunConfig(doc *config.Document) (*engine.RunConfig, error) {
	cfg := engine.DefaultRunConfig()
	if doc != nil {
		var err error
		cfg, err = doc.EngineConfig()
		if err != nil {
			return nil, err
		}
	}

	if len(includeCheckIDs) > 0 {
		cfg.IncludeCheckIDs = includeCheckIDs
	}
	if len(excludeCheckIDs) > 0 {
		cfg.ExcludeCheckIDs = excludeCheckIDs
	}
	if skipExperimental {
		cfg.SkipExperimental = true
	}
	cfg.Parallel = parallel
	if checkTimeout > 0 {
		cfg.CheckTimeout = checkTimeout
	}

	if minSeverity > 0 {
		sev, err := values.NewSeverity(minSeverity)
		if err != nil {
			return nil, fmt.Errorf("invalid --min-severity: %w", err)
		}
		cfg.MinSeverity = sev
	}

	if filterExpr != "" {
		program, err := services.NewExpressionCompiler().Compile(filterExpr)
		if err != nil {
			return nil, fmt.Errorf("invalid --filter expression: %w\nExample: severity >= 7 && !experimental", err)
		}
		cfg.FilterProgram = program
	}

	return &cfg, nil
}

// validateCheckSelection validates ID-based selection against the
// profile before the run starts.
func validateCheckSelection(profile *entities.Profile, cfg *engine.RunConfig) error {
	for _, id := range cfg.IncludeCheckIDs {
		if !profile.HasCheck(id) {
			return fmt.Errorf("--check references non-existent check: %s", id)
		}
	}

	if len(cfg.IncludeCheckIDs) > 0 && (filterExpr != "" || minSeverity > 0) {
		fmt.Fprintln(os.Stderr, "Warning: --check specified, ignoring other include filters")
	}

	for _, id := range cfg.ExcludeCheckIDs {
		if !profile.HasCheck(id) {
			return fmt.Errorf("--exclude-check references non-existent check: %s", id)
		}
	}

	return nil
}
