package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/rs/zerolog"
)

// Exit codes. go generate and CI only look at whether the code is zero;
// 1 lets a --verify job tell stale output apart from broken declarations.
const (
	ExitSuccess      = 0
	ExitFailure      = 1 // generated files are stale
	ExitCommandError = 2 // bad input, failed conversion or failed write
)

// ExitError carries the process exit code of a command whose diagnostics
// have already been printed.
type ExitError struct {
	Code    int
	Message string
	Err     error
}

func (e *ExitError) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return fmt.Sprintf("%s: %v", e.Message, e.Err)
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

func NewExitError(code int, message string) *ExitError {
	return &ExitError{Code: code, Message: message}
}

func WrapExitError(code int, message string, err error) *ExitError {
	return &ExitError{Code: code, Message: message, Err: err}
}

// GetExitCode maps a command error to an exit code. Errors that are not
// an ExitError anywhere in their chain map to ExitFailure.
func GetExitCode(err error) int {
	var exitErr *ExitError
	switch {
	case err == nil:
		return ExitSuccess
	case errors.As(err, &exitErr):
		return exitErr.Code
	default:
		return ExitFailure
	}
}

// NewLogger returns the logger used for diagnostics: JSON lines for the
// json format, console output otherwise. Debug output is enabled by verbose.
func NewLogger(w io.Writer, format string, verbose bool) zerolog.Logger {
	level := zerolog.InfoLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	if format != "json" {
		w = zerolog.ConsoleWriter{Out: w, NoColor: true, TimeFormat: time.RFC3339}
	}
	return zerolog.New(w).Level(level).With().Timestamp().Logger()
}

// OutputFormatter writes command results as text or as one JSON document
// on Writer. Logs go to ErrWriter.
type OutputFormatter struct {
	Format    string
	Writer    io.Writer
	ErrWriter io.Writer // falls back to Writer when nil
	Verbose   bool

	log *zerolog.Logger
}

// CLIResponse is the JSON document every command prints with --format json.
type CLIResponse struct {
	Status string      `json:"status"`          // "ok" or "error"
	Data   interface{} `json:"data,omitempty"`  // success payload
	Error  *CLIError   `json:"error,omitempty"` // error details
}

// CLIError is the first diagnostic of a failed command.
type CLIError struct {
	Code    string      `json:"code"`              // "E001", "E202", etc.
	Message string      `json:"message"`           // human-readable message
	Details interface{} `json:"details,omitempty"` // additional context
}

// Success prints data, or wraps it in an "ok" response for json.
func (f *OutputFormatter) Success(data interface{}) error {
	if f.Format == "json" {
		return json.NewEncoder(f.Writer).Encode(CLIResponse{
			Status: "ok",
			Data:   data,
		})
	}

	fmt.Fprintln(f.Writer, data)
	return nil
}

// Error prints a single command-level error.
func (f *OutputFormatter) Error(code, message string, details interface{}) error {
	if f.Format == "json" {
		return json.NewEncoder(f.Writer).Encode(CLIResponse{
			Status: "error",
			Error: &CLIError{
				Code:    code,
				Message: message,
				Details: details,
			},
		})
	}

	fmt.Fprintf(f.Writer, "Error [%s]: %s\n", code, message)
	if f.Verbose && details != nil {
		fmt.Fprintf(f.Writer, "Details: %v\n", details)
	}
	return nil
}

// Logger returns the diagnostic logger, writing to ErrWriter so JSON output
// on Writer stays parseable.
func (f *OutputFormatter) Logger() *zerolog.Logger {
	if f.log == nil {
		l := NewLogger(f.GetErrWriter(), f.Format, f.Verbose)
		f.log = &l
	}
	return f.log
}

// VerboseLog logs at debug level, which only --verbose enables.
func (f *OutputFormatter) VerboseLog(format string, args ...interface{}) {
	if !f.Verbose {
		return
	}
	f.Logger().Debug().Msgf(format, args...)
}

// GetErrWriter returns the writer for logs.
func (f *OutputFormatter) GetErrWriter() io.Writer {
	if f.ErrWriter != nil {
		return f.ErrWriter
	}
	return f.Writer
}
