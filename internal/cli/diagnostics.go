package cli

import (
	"encoding/json"
	"fmt"

	"github.com/roach88/lits/internal/lits"
)

// Diagnostic is the JSON form of one reported error.
type Diagnostic struct {
	Code    string    `json:"code"`
	Message string    `json:"message"`
	Pos     *lits.Pos `json:"pos,omitempty"`
	Fatal   bool      `json:"fatal,omitempty"`
}

// NewDiagnostic converts any error the commands can produce.
func NewDiagnostic(err error) Diagnostic {
	code, message, pos := parseLoadError(err)
	d := Diagnostic{Code: code, Message: message}
	if pos.IsValid() || pos.Filename != "" {
		d.Pos = &pos
	}
	if le, ok := lits.AsError(err); ok && le.Kind.Fatal() {
		d.Fatal = true
	}
	return d
}

// outputError outputs a single command-level error.
func outputError(formatter *OutputFormatter, code, message string, details interface{}) error {
	_ = formatter.Error(code, message, details)
	return WrapExitError(ExitCommandError, fmt.Sprintf("%s: %s", code, message), nil)
}

// outputErrors outputs every diagnostic of a failed run. A single
// command-level error is reported the short way.
func outputErrors(formatter *OutputFormatter, title string, errs []error) error {
	if len(errs) == 1 {
		if le, ok := errs[0].(*LoadError); ok && !le.Pos.IsValid() {
			return outputError(formatter, le.Code, le.Message, nil)
		}
	}

	diags := make([]Diagnostic, len(errs))
	for i, err := range errs {
		diags[i] = NewDiagnostic(err)
	}

	if formatter.Format == "json" {
		response := CLIResponse{
			Status: "error",
			Error: &CLIError{
				Code:    diags[0].Code,
				Message: diags[0].Message,
			},
			Data: diags, // Include all errors in data
		}

		encoder := json.NewEncoder(formatter.Writer)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(response); err != nil {
			return err
		}
		return NewExitError(ExitCommandError, fmt.Sprintf("%s with %d error(s)", title, len(errs)))
	}

	// Text format
	fmt.Fprintf(formatter.Writer, "✗ %s\n\n", capitalize(title))
	for _, d := range diags {
		if d.Pos != nil {
			fmt.Fprintln(formatter.Writer, d.Pos)
		}
		fmt.Fprintf(formatter.Writer, "  %s: %s\n\n", d.Code, d.Message)
	}

	return NewExitError(ExitCommandError, fmt.Sprintf("%s with %d error(s)", title, len(errs)))
}

func capitalize(s string) string {
	if s == "" || s[0] < 'a' || s[0] > 'z' {
		return s
	}
	return string(s[0]-'a'+'A') + s[1:]
}
