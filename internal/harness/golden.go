package harness

import (
	"bytes"
	"fmt"
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/lits/internal/lits"
)

// Snapshot renders a result for golden comparison: every converted value
// with its file and line, then every diagnostic code the same way.
// Diagnostic messages are left out because they embed parser wording.
func Snapshot(result *Result) []byte {
	var b bytes.Buffer
	for _, o := range result.Outcomes {
		fmt.Fprintf(&b, "%s %s %s\n", location(&o.Pos), o.Kind, o.Name)
		fmt.Fprintf(&b, "  = %s\n", o.Value)
		fmt.Fprintf(&b, "  (%s)\n", o.Human)
	}
	for _, d := range result.Diagnostics {
		fmt.Fprintf(&b, "%s %s\n", location(d.Pos), d.Code)
	}
	return b.Bytes()
}

// location is file:line, or "-" without a position.
func location(pos *lits.Pos) string {
	switch {
	case pos == nil || (pos.Filename == "" && !pos.IsValid()):
		return "-"
	case !pos.IsValid():
		return pos.Filename
	}
	return fmt.Sprintf("%s:%d", pos.Filename, pos.Line)
}

func positionOf(pos *lits.Pos) string {
	if pos == nil {
		return "-"
	}
	return pos.String()
}

// RunWithGolden executes a scenario, fails the test on any unmet
// expectation, and compares the snapshot against
// testdata/golden/{scenario.Name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
func RunWithGolden(t *testing.T, scenario *Scenario) error {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return err
	}
	for _, msg := range result.Errors {
		t.Error(msg)
	}

	AssertGolden(t, scenario.Name, result)
	return nil
}

// AssertGolden compares an existing result against a golden file without
// re-running the scenario.
func AssertGolden(t *testing.T, name string, result *Result) {
	t.Helper()

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, name, Snapshot(result))
}
