package main

import (
	"bytes"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"unicode"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/fontkiln/fontkiln/checks/opentype"
	"github.com/fontkiln/fontkiln/internal/domain/values"
	"github.com/fontkiln/fontkiln/internal/templates"
)

// NewCheckOptions holds options for the new check command.
type NewCheckOptions struct {
	id            string
	pkg           string
	description   string
	rationale     string
	severity      int
	conditions    []string
	output        string
	experimental  bool
	force         bool
	noInteractive bool
}

// newCmd groups the scaffolding commands.
var newCmd = &cobra.Command{
	Use:   "new",
	Short: "Scaffold new fontkiln code",
}

func newCheckCmd() *cobra.Command {
	opts := &NewCheckOptions{}

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Create a new check stub",
		Long: `Generate a check stub file plus a matching test file.

Missing values are asked for interactively; flags skip the questions.

Examples:
  # Fully interactive
  fontkiln new check

  # Non-interactive
  fontkiln new check --id vendor/em_square \
    --description "Checking the em square." \
    --severity 6 --conditions has_head_table --no-interactive`,
		RunE: func(_ *cobra.Command, _ []string) error {
			return runNewCheck(opts)
		},
	}

	cmd.Flags().StringVar(&opts.id, "id", "", "Check ID (e.g., 'vendor/em_square')")
	cmd.Flags().StringVar(&opts.pkg, "package", "", "Go package for the stub (default: derived from the ID)")
	cmd.Flags().StringVarP(&opts.description, "description", "d", "", "One-line check description")
	cmd.Flags().StringVar(&opts.rationale, "rationale", "", "Why the check matters")
	cmd.Flags().IntVar(&opts.severity, "severity", 0, "Severity grade 1-10 (0 leaves the check ungraded)")
	cmd.Flags().BoolVar(&opts.experimental, "experimental", false, "Mark the check experimental")
	cmd.Flags().StringSliceVar(&opts.conditions, "conditions", nil, "Condition names gating the check (comma-separated)")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "Output directory (default: ./checks/<package>)")
	cmd.Flags().BoolVarP(&opts.force, "force", "f", false, "Overwrite existing files")
	cmd.Flags().BoolVar(&opts.noInteractive, "no-interactive", false, "Never prompt; fail when required values are missing")

	return cmd
}

func init() {
	rootCmd.AddCommand(newCmd)
	newCmd.AddCommand(newCheckCmd())
}

func runNewCheck(opts *NewCheckOptions) error {
	if !opts.noInteractive {
		if err := askMissing(opts); err != nil {
			return err
		}
	}

	if _, err := values.NewCheckID(opts.id); err != nil {
		return fmt.Errorf("invalid check ID: %w", err)
	}
	if strings.TrimSpace(opts.description) == "" {
		return fmt.Errorf("a check needs a description")
	}
	if opts.severity != 0 {
		if _, err := values.NewSeverity(opts.severity); err != nil {
			return err
		}
	}

	if opts.pkg == "" {
		opts.pkg = packageFromID(opts.id)
	}
	if err := validatePackageName(opts.pkg); err != nil {
		return err
	}
	if opts.output == "" {
		opts.output = filepath.Join(".", "checks", opts.pkg)
	}

	data := templates.CheckData{
		Package:      opts.pkg,
		CheckID:      opts.id,
		FuncName:     funcNameFromID(opts.id),
		Description:  opts.description,
		Rationale:    opts.rationale,
		Severity:     opts.severity,
		Experimental: opts.experimental,
		Conditions:   opts.conditions,
	}

	outputDir, err := filepath.Abs(opts.output)
	if err != nil {
		return fmt.Errorf("resolving output path: %w", err)
	}

	if err := os.MkdirAll(outputDir, 0o750); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}

	tmpl, err := templates.CheckTemplates()
	if err != nil {
		return fmt.Errorf("loading templates: %w", err)
	}

	files, err := templates.TemplateFiles("check")
	if err != nil {
		return err
	}

	stem := fileStemFromID(opts.id)
	for _, file := range files {
		outputPath := filepath.Join(outputDir, strings.Replace(file, "check", stem, 1))

		if !opts.force {
			if _, err := os.Stat(outputPath); err == nil {
				return fmt.Errorf("file already exists: %s (use --force to overwrite)", outputPath)
			}
		}

		var buf bytes.Buffer
		if err := tmpl.ExecuteTemplate(&buf, file, data); err != nil {
			return fmt.Errorf("rendering %s: %w", file, err)
		}

		//nolint:gosec // G306: Generated source files need reasonable permissions
		if err := os.WriteFile(outputPath, buf.Bytes(), 0o644); err != nil {
			return fmt.Errorf("writing %s: %w", outputPath, err)
		}

		slog.Debug("created file", "path", outputPath)
	}

	fmt.Printf("Created check '%s' in %s\n", opts.id, outputDir)
	fmt.Printf("Register %s() on your profile and fill in the TODOs.\n", data.FuncName)

	return nil
}

// askMissing prompts for the values flags did not supply.
func askMissing(opts *NewCheckOptions) error {
	if opts.id == "" {
		err := huh.NewInput().
			Title("Check ID").
			Description("Stable identifier, never reused (e.g. vendor/em_square)").
			Value(&opts.id).
			Run()
		if err != nil {
			return err
		}
	}

	if opts.description == "" {
		err := huh.NewInput().
			Title("Description").
			Description("One line, shown in listings and reports").
			Value(&opts.description).
			Run()
		if err != nil {
			return err
		}
	}

	if opts.severity == 0 {
		choice := "0"
		severityOptions := []huh.Option[string]{huh.NewOption("ungraded", "0")}
		for grade := values.SeverityMin; grade <= values.SeverityMax; grade++ {
			severityOptions = append(severityOptions, huh.NewOption(strconv.Itoa(grade), strconv.Itoa(grade)))
		}
		err := huh.NewSelect[string]().
			Title("Severity").
			Options(severityOptions...).
			Value(&choice).
			Run()
		if err != nil {
			return err
		}
		opts.severity, _ = strconv.Atoi(choice)
	}

	if len(opts.conditions) == 0 {
		available := opentype.Profile().Conditions().Names()
		if len(available) > 0 {
			conditionOptions := make([]huh.Option[string], 0, len(available))
			for _, name := range available {
				conditionOptions = append(conditionOptions, huh.NewOption(name, name))
			}
			err := huh.NewMultiSelect[string]().
				Title("Conditions").
				Description("Named preconditions the check gates on").
				Options(conditionOptions...).
				Value(&opts.conditions).
				Run()
			if err != nil {
				return err
			}
		}
	}

	return nil
}

// packageFromID derives a Go package name from the ID's leading
// segment: "vendor/em_square" scaffolds into package vendor.
func packageFromID(id string) string {
	segment, _, found := strings.Cut(id, "/")
	if !found || segment == "" {
		segment = id
	}
	var sb strings.Builder
	for _, r := range strings.ToLower(segment) {
		if unicode.IsLower(r) || unicode.IsDigit(r) {
			sb.WriteRune(r)
		}
	}
	return sb.String()
}

// funcNameFromID turns the ID's last segment into a constructor name:
// "vendor/em_square" becomes emSquareCheck.
func funcNameFromID(id string) string {
	segment := id
	if i := strings.LastIndex(id, "/"); i >= 0 {
		segment = id[i+1:]
	}

	var sb strings.Builder
	upperNext := false
	for _, r := range segment {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			if upperNext && sb.Len() > 0 {
				r = unicode.ToUpper(r)
			} else if sb.Len() == 0 {
				r = unicode.ToLower(r)
			}
			sb.WriteRune(r)
			upperNext = false
		default:
			upperNext = true
		}
	}
	return sb.String() + "Check"
}

// fileStemFromID derives the stub file stem from the ID's last
// segment: "vendor/em_square" lands in em_square.go.
func fileStemFromID(id string) string {
	segment := id
	if i := strings.LastIndex(id, "/"); i >= 0 {
		segment = id[i+1:]
	}

	var sb strings.Builder
	for _, r := range strings.ToLower(segment) {
		if unicode.IsLower(r) || unicode.IsDigit(r) || r == '_' {
			sb.WriteRune(r)
		}
	}
	if sb.Len() == 0 {
		return "check"
	}
	return sb.String()
}

// validatePackageName rejects stems Go cannot use as package names.
func validatePackageName(pkg string) error {
	if pkg == "" {
		return fmt.Errorf("cannot derive a package name, use --package")
	}
	for i, r := range pkg {
		if unicode.IsLower(r) || (i > 0 && unicode.IsDigit(r)) {
			continue
		}
		return fmt.Errorf("invalid package name %q: use lowercase letters and digits", pkg)
	}
	return nil
}
