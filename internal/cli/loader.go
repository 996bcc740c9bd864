package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/roach88/lits/internal/compiler"
	"github.com/roach88/lits/internal/config"
	"github.com/roach88/lits/internal/gen"
	"github.com/roach88/lits/internal/ir"
	"github.com/roach88/lits/internal/lits"
	"github.com/roach88/lits/internal/manifest"
	"github.com/roach88/lits/internal/source"
)

// Output is one generated file and the declarations it carries.
type Output struct {
	Compiled *ir.Compiled
	Path     string
	Data     []byte
}

// LoadResult contains the converted declarations of one package directory.
type LoadResult struct {
	Dir       string
	Config    *config.Config
	Outputs   []Output
	FileCount int // Number of declaration files found
}

// Values returns every converted declaration in the directory, in file order.
func (r *LoadResult) Values() []ir.Value {
	var out []ir.Value
	for _, o := range r.Outputs {
		out = append(out, o.Compiled.Values...)
	}
	return out
}

// LoadError represents a command-level failure that has no better home in
// the compiler's error types.
type LoadError struct {
	Code    string
	Message string
	Pos     lits.Pos
}

func (e *LoadError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s: %s: %s", e.Pos, e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// LoadDir reads the declaration files in dir, converts every literal and
// renders the generated files. Errors are collected across all files; when
// there is any, the result is nil and nothing should be written.
func LoadDir(dir string, cfg *config.Config) (*LoadResult, []error) {
	info, err := os.Stat(dir)
	if os.IsNotExist(err) {
		return nil, []error{&LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("directory not found: %s", dir)}}
	}
	if err != nil {
		return nil, []error{&LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("error accessing directory: %v", err)}}
	}
	if !info.IsDir() {
		return nil, []error{&LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("not a directory: %s", dir)}}
	}

	opts := source.Options{Tag: cfg.Tag, Marker: cfg.Marker}
	files, errs := source.LoadDir(dir, opts)
	if cfg.WantManifests() {
		mfiles, merrs := manifest.LoadDir(dir)
		files = append(files, mfiles...)
		errs = append(errs, merrs...)
	}

	if len(files) == 0 && len(errs) == 0 {
		msg := fmt.Sprintf("no files tagged %q found in %s", cfg.Tag, dir)
		if cfg.WantManifests() {
			msg = fmt.Sprintf("no files tagged %q and no .cue manifests found in %s", cfg.Tag, dir)
		}
		return nil, []error{&LoadError{Code: ErrCodeNoFiles, Message: msg}}
	}

	errs = append(errs, compiler.CheckDuplicates(files)...)
	errs = append(errs, checkPackages(files)...)
	errs = append(errs, checkOutputs(files, cfg.Suffix)...)

	conv := lits.NewConverter(lits.DefaultParsers())
	result := &LoadResult{Dir: dir, Config: cfg, FileCount: len(files)}
	for _, f := range files {
		c, cerrs := compiler.Compile(f, conv)
		if len(cerrs) > 0 {
			errs = append(errs, cerrs...)
			continue
		}
		data, err := gen.Render(c, gen.Options{Tag: cfg.Tag, Comments: cfg.WantComments()})
		if err != nil {
			errs = append(errs, &LoadError{Code: ErrCodeGeneric, Message: err.Error(), Pos: lits.Pos{Filename: f.Path}})
			continue
		}
		result.Outputs = append(result.Outputs, Output{
			Compiled: c,
			Path:     gen.OutputPath(f.Path, cfg.Suffix),
			Data:     data,
		})
	}

	if len(errs) > 0 {
		compiler.SortErrors(errs)
		return nil, errs
	}
	return result, nil
}

// checkPackages requires every declaration source in a directory to name the
// same package, since the generated files land side by side.
func checkPackages(files []*ir.File) []error {
	if len(files) == 0 {
		return nil
	}
	want := files[0]
	var errs []error
	for _, f := range files[1:] {
		if f.Package != want.Package {
			errs = append(errs, &ir.CompileError{
				Field:   ir.FieldDecl,
				Message: fmt.Sprintf("package %s differs from package %s in %s", f.Package, want.Package, filepath.Base(want.Path)),
				Pos:     lits.Pos{Filename: f.Path},
			})
		}
	}
	return errs
}

// checkOutputs rejects sources that would generate the same file, or
// overwrite one another.
func checkOutputs(files []*ir.File, suffix string) []error {
	inputs := make(map[string]bool, len(files))
	for _, f := range files {
		inputs[filepath.Clean(f.Path)] = true
	}
	seen := make(map[string]string, len(files))
	var errs []error
	for _, f := range files {
		out := filepath.Clean(gen.OutputPath(f.Path, suffix))
		switch {
		case inputs[out]:
			errs = append(errs, &ir.CompileError{
				Field:   ir.FieldDecl,
				Message: fmt.Sprintf("output %s would overwrite a declaration file", filepath.Base(out)),
				Pos:     lits.Pos{Filename: f.Path},
			})
		case seen[out] != "":
			errs = append(errs, &ir.CompileError{
				Field:   ir.FieldDecl,
				Message: fmt.Sprintf("%s and %s both generate %s", filepath.Base(seen[out]), filepath.Base(f.Path), filepath.Base(out)),
				Pos:     lits.Pos{Filename: f.Path},
			})
		default:
			seen[out] = f.Path
		}
	}
	return errs
}

// loadConfig returns the config for dir: the --config file when given,
// otherwise the nearest .lits.yaml.
func loadConfig(opts *RootOptions, dir string) (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if opts.Config != "" {
		cfg, err = config.Load(opts.Config)
	} else {
		cfg, err = config.Find(dir)
	}
	if err != nil {
		return nil, &LoadError{Code: ErrCodeConfig, Message: err.Error()}
	}
	return cfg, nil
}

// Error code constants - unified across all CLI commands.
const (
	ErrCodeGeneric     = "E001" // Generic/unknown error
	ErrCodeScanError   = "E002" // Directory scan error
	ErrCodeNoFiles     = "E003" // No declaration files found
	ErrCodeLoadFailed  = "E004" // Declaration file unreadable
	ErrCodeNotFound    = "E005" // Path not found
	ErrCodeWriteFailed = "E007" // File write error
	ErrCodeStale       = "E008" // Generated file out of date
	ErrCodeConfig      = "E009" // Config file invalid

	// Literal conversion errors
	ErrCodeSyntax           = "E201" // Malformed literal expression
	ErrCodeDurationParse    = "E202" // Duration parser rejected the text
	ErrCodeTimestampParse   = "E203" // Timestamp parser rejected the text
	ErrCodeByteSizeParse    = "E204" // Byte-size parser rejected the text
	ErrCodeByteSizeOverflow = "E205" // Byte count exceeds the target width
	ErrCodeDurationRange    = "E206" // Duration exceeds time.Duration

	// Declaration errors
	ErrCodeUnsupportedDecl = "E210" // Not a marker-call const/var
	ErrCodeUnsupportedType = "E211" // Declared type cannot hold the kind

	ErrCodeEpochUnderflow = "E299" // Internal invariant violated
)

// MapFieldToErrorCode maps a compiler error field to its error code.
func MapFieldToErrorCode(field string) string {
	switch field {
	case ir.FieldSyntax:
		return ErrCodeSyntax
	case ir.FieldDecl:
		return ErrCodeUnsupportedDecl
	case ir.FieldType:
		return ErrCodeUnsupportedType
	case ir.FieldRange:
		return ErrCodeDurationRange
	case ir.FieldLoad:
		return ErrCodeLoadFailed
	default:
		return ErrCodeGeneric
	}
}

// MapKindToErrorCode maps a literal conversion error kind to its error code.
func MapKindToErrorCode(kind lits.ErrorKind) string {
	switch kind {
	case lits.SyntaxError:
		return ErrCodeSyntax
	case lits.DurationParse:
		return ErrCodeDurationParse
	case lits.TimestampParse:
		return ErrCodeTimestampParse
	case lits.ByteSizeParse:
		return ErrCodeByteSizeParse
	case lits.ByteSizeOverflow:
		return ErrCodeByteSizeOverflow
	case lits.EpochUnderflow:
		return ErrCodeEpochUnderflow
	default:
		return ErrCodeGeneric
	}
}

// parseLoadError extracts error code, message and position from an error.
func parseLoadError(err error) (string, string, lits.Pos) {
	var litErr *lits.Error
	if errors.As(err, &litErr) {
		return MapKindToErrorCode(litErr.Kind), litErr.Message, litErr.Span.Start
	}
	var compileErr *ir.CompileError
	if errors.As(err, &compileErr) {
		return MapFieldToErrorCode(compileErr.Field), compileErr.Message, compileErr.Pos
	}
	var loadErr *LoadError
	if errors.As(err, &loadErr) {
		return loadErr.Code, loadErr.Message, loadErr.Pos
	}
	return ErrCodeGeneric, err.Error(), lits.Pos{}
}
