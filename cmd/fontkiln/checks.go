package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/fontkiln/fontkiln/checks/opentype"
	"github.com/fontkiln/fontkiln/internal/domain/callable"
	"github.com/fontkiln/fontkiln/internal/domain/services"
)

var (
	listFilterExpr   string
	listExperimental bool
)

// checksCmd groups the commands that inspect check definitions.
var checksCmd = &cobra.Command{
	Use:   "checks",
	Short: "Inspect the bundled check definitions",
}

// checksListCmd lists the registered checks with their metadata.
var checksListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the bundled checks",
	Long: `List the checks of the bundled opentype profile with their severity,
experimental flag and description.

  fontkiln checks list
  fontkiln checks list --filter "severity >= 7"
  fontkiln checks list --experimental`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runChecksList(cmd)
	},
}

// checksDescribeCmd prints everything known about one check.
var checksDescribeCmd = &cobra.Command{
	Use:   "describe <check-id>",
	Short: "Show the full definition of a check",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runChecksDescribe(cmd, args[0])
	},
}

func init() {
	rootCmd.AddCommand(checksCmd)
	checksCmd.AddCommand(checksListCmd)
	checksCmd.AddCommand(checksDescribeCmd)

	checksListCmd.Flags().StringVar(&listFilterExpr, "filter", "", "Filter expression (e.g. \"severity >= 7 && !experimental\")")
	checksListCmd.Flags().BoolVar(&listExperimental, "experimental", false, "Only list experimental checks")
}

func runChecksList(cmd *cobra.Command) error {
	profile := opentype.Profile()

	checks, err := selectChecks(profile.Checks(), listFilterExpr, listExperimental)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 2, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tSEVERITY\tFLAGS\tDESCRIPTION")
	for _, chk := range checks {
		severity := "-"
		if chk.Severity().IsSet() {
			severity = chk.Severity().String()
		}
		flags := "-"
		if chk.Experimental() {
			flags = "experimental"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", chk.ID(), severity, flags, chk.Description())
	}
	if err := w.Flush(); err != nil {
		return err
	}

	if disabled := profile.DisabledChecks(); len(disabled) > 0 {
		fmt.Fprintln(cmd.OutOrStdout())
		fmt.Fprintf(cmd.OutOrStdout(), "Disabled: %d check(s) defined but excluded from runs:\n", len(disabled))
		for _, chk := range disabled {
			fmt.Fprintf(cmd.OutOrStdout(), "  %s\n", chk.ID())
		}
	}

	return nil
}

// selectChecks narrows the check list with an optional filter
// expression and the experimental toggle.
func selectChecks(checks []*callable.Check, expression string, experimentalOnly bool) ([]*callable.Check, error) {
	filter := services.NewCheckFilter()

	if expression != "" {
		program, err := services.NewExpressionCompiler().Compile(expression)
		if err != nil {
			return nil, fmt.Errorf("invalid --filter expression: %w", err)
		}
		filter = filter.WithFilterExpression(program)
	}

	selected := filter.Select(checks)
	if !experimentalOnly {
		return selected, nil
	}

	out := selected[:0]
	for _, chk := range selected {
		if chk.Experimental() {
			out = append(out, chk)
		}
	}
	return out, nil
}

func runChecksDescribe(cmd *cobra.Command, id string) error {
	profile := opentype.Profile()

	chk, err := profile.Check(id)
	if err != nil {
		// Parked definitions are still describable.
		for _, d := range profile.DisabledChecks() {
			if d.ID().String() == id {
				chk = d
				fmt.Fprintln(cmd.OutOrStdout(), "(disabled: excluded from runs)")
				break
			}
		}
		if chk == nil {
			return err
		}
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "ID:           %s\n", chk.ID())
	fmt.Fprintf(out, "Function:     %s (%s)\n", chk.Name(), chk.Module())
	fmt.Fprintf(out, "Description:  %s\n", chk.Description())
	if chk.Severity().IsSet() {
		fmt.Fprintf(out, "Severity:     %s/10\n", chk.Severity())
	}
	fmt.Fprintf(out, "Experimental: %t\n", chk.Experimental())
	if proposal := chk.Proposal(); proposal != "" {
		fmt.Fprintf(out, "Proposal:     %s\n", proposal)
	}

	fmt.Fprintf(out, "Mandatory:    %s\n", formatNames(chk.MandatoryArgs()))
	fmt.Fprintf(out, "Optional:     %s\n", formatNames(chk.OptionalArgs()))
	fmt.Fprintf(out, "Conditions:   %s\n", formatNames(chk.Conditions()))
	if configs := chk.Configs(); len(configs) > 0 {
		fmt.Fprintf(out, "Configs:      %s\n", formatNames(configs))
	}

	if rationale := chk.Rationale(); rationale != "" {
		fmt.Fprintf(out, "\nRationale:\n%s\n", indent(rationale, "  "))
	}
	if documentation := chk.Documentation(); documentation != "" {
		fmt.Fprintf(out, "\nDocumentation:\n%s\n", indent(documentation, "  "))
	}

	return nil
}

func formatNames(names []string) string {
	if len(names) == 0 {
		return "(none)"
	}
	return strings.Join(names, ", ")
}

func indent(text, prefix string) string {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		if line != "" {
			lines[i] = prefix + line
		}
	}
	return strings.Join(lines, "\n")
}
