package harness

import (
	"fmt"
	"strings"
)

// AssertionError is returned when an expectation fails.
// It includes detailed context to help debug the failure.
type AssertionError struct {
	Type     string // Expectation type for categorization
	Expected string // Human-readable expected outcome
	Actual   string // Human-readable actual outcome
	Result   *Result
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Expectation failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	if e.Result != nil && len(e.Result.Diagnostics) > 0 {
		fmt.Fprintf(&buf, "\nDiagnostics:\n")
		for _, d := range e.Result.Diagnostics {
			fmt.Fprintf(&buf, "  %s %s: %s\n", positionOf(d.Pos), d.Code, d.Message)
		}
	}

	return buf.String()
}

// checkExpectation dispatches on the expectation type.
func checkExpectation(r *Result, e Expectation) error {
	switch e.Type {
	case ExpectValue:
		return assertValue(r, e)
	case ExpectError:
		return assertError(r, e)
	case ExpectErrorCount:
		return assertErrorCount(r, e)
	default:
		return fmt.Errorf("unknown expectation type %q", e.Type)
	}
}

// assertValue checks a converted declaration's Go expression and human
// rendering; empty fields in e are not checked.
func assertValue(r *Result, e Expectation) error {
	o, ok := r.Outcome(e.Name)
	if !ok {
		names := make([]string, len(r.Outcomes))
		for i, o := range r.Outcomes {
			names[i] = o.Name
		}
		return &AssertionError{
			Type:     ExpectValue,
			Expected: fmt.Sprintf("declaration %s converted", e.Name),
			Actual:   fmt.Sprintf("converted %v", names),
			Result:   r,
		}
	}
	if e.Value != "" && o.Value != e.Value {
		return &AssertionError{
			Type:     ExpectValue,
			Expected: fmt.Sprintf("%s = %s", e.Name, e.Value),
			Actual:   fmt.Sprintf("%s = %s", e.Name, o.Value),
			Result:   r,
		}
	}
	if e.Human != "" && o.Human != e.Human {
		return &AssertionError{
			Type:     ExpectValue,
			Expected: fmt.Sprintf("%s reads %q", e.Name, e.Human),
			Actual:   fmt.Sprintf("%s reads %q", e.Name, o.Human),
			Result:   r,
		}
	}
	return nil
}

// assertError checks that some diagnostic matches the code, and the line
// and message fragment when given.
func assertError(r *Result, e Expectation) error {
	for _, d := range r.Diagnostics {
		if d.Code != e.Code {
			continue
		}
		if e.Line > 0 && (d.Pos == nil || d.Pos.Line != e.Line) {
			continue
		}
		if e.Contains != "" && !strings.Contains(d.Message, e.Contains) {
			continue
		}
		return nil
	}

	expected := e.Code
	if e.Line > 0 {
		expected += fmt.Sprintf(" on line %d", e.Line)
	}
	if e.Contains != "" {
		expected += fmt.Sprintf(" containing %q", e.Contains)
	}
	return &AssertionError{
		Type:     ExpectError,
		Expected: expected,
		Actual:   fmt.Sprintf("%d diagnostic(s), none matching", len(r.Diagnostics)),
		Result:   r,
	}
}

func assertErrorCount(r *Result, e Expectation) error {
	if len(r.Diagnostics) == e.Count {
		return nil
	}
	return &AssertionError{
		Type:     ExpectErrorCount,
		Expected: fmt.Sprintf("%d diagnostic(s)", e.Count),
		Actual:   fmt.Sprintf("%d diagnostic(s)", len(r.Diagnostics)),
		Result:   r,
	}
}
