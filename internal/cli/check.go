package cli

import (
	"fmt"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/roach88/lits/internal/gen"
)

// CheckedValue is one converted declaration as reported by check.
type CheckedValue struct {
	Name  string `json:"name"`
	Kind  string `json:"kind"`
	Type  string `json:"type,omitempty"`
	Expr  string `json:"expr"`
	Value string `json:"value"` // the emitted Go expression
	Human string `json:"human"`
	Pos   string `json:"pos"`
}

// CheckResult holds every declaration converted by a check run.
type CheckResult struct {
	Values []CheckedValue `json:"values"`
}

// NewCheckCommand creates the check command.
func NewCheckCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check [dir...]",
		Short: "Convert literal declarations and print them without writing",
		Long: `Convert every literal declared in the given package directories (default
the current one) and print the resulting values. Nothing is written.

Exits 2 with all diagnostics if any literal fails to convert.`,
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				args = []string{"."}
			}
			return runCheck(rootOpts, args, cmd)
		},
	}
	return cmd
}

func runCheck(opts *RootOptions, dirs []string, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd)

	result := &CheckResult{Values: []CheckedValue{}}
	var errs []error
	for _, dir := range dirs {
		cfg, err := loadConfig(opts, dir)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		loaded, loadErrs := LoadDir(dir, cfg)
		if len(loadErrs) > 0 {
			errs = append(errs, loadErrs...)
			continue
		}
		formatter.VerboseLog("converted %d file(s) in %s", loaded.FileCount, dir)
		for _, v := range loaded.Values() {
			result.Values = append(result.Values, CheckedValue{
				Name:  v.Decl.Name,
				Kind:  string(v.Decl.Kind),
				Type:  v.Decl.TypeName,
				Expr:  v.Decl.Expr,
				Value: gen.Expr(v),
				Human: gen.Describe(v),
				Pos:   v.Decl.Pos.String(),
			})
		}
	}

	if len(errs) > 0 {
		return outputErrors(formatter, "check failed", errs)
	}

	if formatter.Format == "json" {
		return formatter.Success(result)
	}

	fmt.Fprintf(formatter.Writer, "✓ %d literal(s) converted\n\n", len(result.Values))
	if len(result.Values) == 0 {
		return nil
	}
	table := tablewriter.NewWriter(formatter.Writer)
	table.SetHeader([]string{"NAME", "KIND", "LITERAL", "VALUE"})
	table.SetAutoWrapText(false)
	for _, v := range result.Values {
		table.Append([]string{v.Name, v.Kind, v.Expr, v.Human})
	}
	table.Render()
	return nil
}
