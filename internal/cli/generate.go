package cli

import (
	"encoding/json"
	"fmt"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/roach88/lits/internal/gen"
)

// GenerateOptions holds flags for the generate command.
type GenerateOptions struct {
	*RootOptions
	Verify bool   // compare instead of writing
	Suffix string // overrides the configured output suffix
}

// Status values for GeneratedFile.
const (
	StatusWritten   = "written"
	StatusUnchanged = "unchanged"
	StatusStale     = "stale"
)

// GeneratedFile describes one output of a generate run.
type GeneratedFile struct {
	Source string `json:"source"`
	Output string `json:"output"`
	Count  int    `json:"count"`
	Status string `json:"status"`
}

// GenerateResult holds every output of a generate run.
type GenerateResult struct {
	Files []GeneratedFile `json:"files"`
}

// Stale returns the outputs that differ from what is on disk.
func (r *GenerateResult) Stale() []GeneratedFile {
	var out []GeneratedFile
	for _, f := range r.Files {
		if f.Status == StatusStale {
			out = append(out, f)
		}
	}
	return out
}

// NewGenerateCommand creates the generate command.
func NewGenerateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &GenerateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "generate [dir...]",
		Short: "Write generated Go files for literal declarations",
		Long: `Convert every literal declared in the given package directories (default
the current one) and write <file>_gen.go next to each declaration file.

Conversion is all-or-nothing per directory: if any literal fails, every
error is reported and no file in that directory is written.

With --verify nothing is written; the command exits 1 if any generated
file is missing or out of date. Suitable for CI.`,
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true, // Don't print usage on errors - we handle our own error output
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				args = []string{"."}
			}
			return runGenerate(opts, args, cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.Verify, "verify", false, "check generated files are current without writing")
	cmd.Flags().StringVar(&opts.Suffix, "suffix", "", "output file suffix (default from config, "+gen.DefaultSuffix+")")

	return cmd
}

func runGenerate(opts *GenerateOptions, dirs []string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	result := &GenerateResult{}
	for _, dir := range dirs {
		files, errs := generateDir(opts, dir, formatter.Logger())
		if len(errs) > 0 {
			return outputErrors(formatter, "generation failed", errs)
		}
		result.Files = append(result.Files, files...)
	}

	if stale := result.Stale(); len(stale) > 0 {
		return outputStale(formatter, result, stale)
	}
	return outputGenerateSuccess(formatter, result, opts.Verify)
}

// generateDir converts dir and writes its outputs, or with opts.Verify only
// compares them.
func generateDir(opts *GenerateOptions, dir string, log *zerolog.Logger) ([]GeneratedFile, []error) {
	cfg, err := loadConfig(opts.RootOptions, dir)
	if err != nil {
		return nil, []error{err}
	}
	if opts.Suffix != "" {
		cfg.Suffix = opts.Suffix
		if err := cfg.Validate(); err != nil {
			return nil, []error{&LoadError{Code: ErrCodeConfig, Message: err.Error()}}
		}
	}
	log.Debug().Str("dir", dir).Str("config", cfg.Path).Msg("loading declarations")

	loaded, errs := LoadDir(dir, cfg)
	if len(errs) > 0 {
		return nil, errs
	}
	log.Debug().Str("dir", dir).Int("files", loaded.FileCount).Msg("converted")

	files := make([]GeneratedFile, 0, len(loaded.Outputs))
	for _, o := range loaded.Outputs {
		gf := GeneratedFile{
			Source: o.Compiled.Source,
			Output: o.Path,
			Count:  len(o.Compiled.Values),
		}

		current, err := gen.Verify(o.Path, o.Data)
		if err != nil {
			errs = append(errs, &LoadError{Code: ErrCodeLoadFailed, Message: err.Error()})
			continue
		}
		switch {
		case current:
			gf.Status = StatusUnchanged
		case opts.Verify:
			gf.Status = StatusStale
		default:
			if err := gen.Write(o.Path, o.Data); err != nil {
				errs = append(errs, &LoadError{Code: ErrCodeWriteFailed, Message: err.Error()})
				continue
			}
			gf.Status = StatusWritten
			log.Debug().Str("file", o.Path).Int("literals", gf.Count).Msg("wrote")
		}
		files = append(files, gf)
	}
	return files, errs
}

// outputGenerateSuccess outputs a successful generate or verify run.
func outputGenerateSuccess(formatter *OutputFormatter, result *GenerateResult, verify bool) error {
	if formatter.Format == "json" {
		return formatter.Success(result)
	}

	if verify {
		fmt.Fprintf(formatter.Writer, "✓ %d generated file(s) up to date\n", len(result.Files))
		return nil
	}

	written := 0
	for _, f := range result.Files {
		if f.Status == StatusWritten {
			written++
		}
	}
	fmt.Fprintf(formatter.Writer, "✓ Generated %d file(s), %d changed\n\n", len(result.Files), written)
	for _, f := range result.Files {
		fmt.Fprintf(formatter.Writer, "  %s: %d literal(s) (%s)\n", filepath.Base(f.Output), f.Count, f.Status)
	}
	return nil
}

// outputStale reports out-of-date outputs found by --verify.
func outputStale(formatter *OutputFormatter, result *GenerateResult, stale []GeneratedFile) error {
	message := fmt.Sprintf("%d generated file(s) out of date; run lits generate", len(stale))

	if formatter.Format == "json" {
		response := CLIResponse{
			Status: "error",
			Error:  &CLIError{Code: ErrCodeStale, Message: message},
			Data:   result,
		}
		if err := json.NewEncoder(formatter.Writer).Encode(response); err != nil {
			return err
		}
		return NewExitError(ExitFailure, message)
	}

	fmt.Fprintf(formatter.Writer, "✗ %s\n\n", message)
	for _, f := range stale {
		fmt.Fprintf(formatter.Writer, "  %s\n", f.Output)
	}
	return NewExitError(ExitFailure, message)
}
