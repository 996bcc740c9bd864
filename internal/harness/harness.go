package harness

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/rs/zerolog"

	"github.com/roach88/lits/internal/cli"
	"github.com/roach88/lits/internal/config"
	"github.com/roach88/lits/internal/gen"
	"github.com/roach88/lits/internal/lits"
)

// Harness is the scenario execution engine.
type Harness struct {
	logger zerolog.Logger
}

// New creates a Harness that logs scenario progress to logger.
func New(logger zerolog.Logger) *Harness {
	return &Harness{logger: logger}
}

// Run executes a scenario with a silent harness.
func Run(scenario *Scenario) (*Result, error) {
	return New(zerolog.Nop()).Run(scenario)
}

// Run executes a scenario and returns the result.
//
// Each scenario runs in a fresh scratch directory that is removed
// afterwards. A non-nil error means the scenario could not be executed at
// all; expectation failures are reported through Result.
func (h *Harness) Run(scenario *Scenario) (*Result, error) {
	dir, err := os.MkdirTemp("", "lits-scenario-")
	if err != nil {
		return nil, fmt.Errorf("creating scenario directory: %w", err)
	}
	defer os.RemoveAll(dir)

	names := make([]string, 0, len(scenario.Files))
	for name := range scenario.Files {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(scenario.Files[name]), 0644); err != nil {
			return nil, fmt.Errorf("writing %s: %w", name, err)
		}
	}

	cfg := config.Default()
	if scenario.Config != "" {
		cfg, err = config.Parse([]byte(scenario.Config))
		if err != nil {
			return nil, fmt.Errorf("scenario %s: %w", scenario.Name, err)
		}
	}

	h.logger.Debug().Str("scenario", scenario.Name).Int("files", len(names)).Msg("running scenario")

	result := NewResult()
	loaded, errs := cli.LoadDir(dir, cfg)
	if loaded != nil {
		for _, out := range loaded.Outputs {
			result.Files[filepath.Base(out.Path)] = string(out.Data)
		}
		for _, v := range loaded.Values() {
			result.Outcomes = append(result.Outcomes, Outcome{
				Name:  v.Decl.Name,
				Kind:  string(v.Decl.Kind),
				Value: gen.Expr(v),
				Human: gen.Describe(v),
				Pos:   relative(dir, v.Decl.Pos),
			})
		}
	}
	for _, err := range errs {
		d := cli.NewDiagnostic(err)
		if d.Pos != nil {
			pos := relative(dir, *d.Pos)
			d.Pos = &pos
		}
		result.Diagnostics = append(result.Diagnostics, d)
	}

	for i, e := range scenario.Expect {
		if err := checkExpectation(result, e); err != nil {
			result.AddError(fmt.Sprintf("expect[%d]: %v", i, err))
		}
	}

	h.logger.Debug().
		Str("scenario", scenario.Name).
		Bool("pass", result.Pass).
		Int("outcomes", len(result.Outcomes)).
		Int("diagnostics", len(result.Diagnostics)).
		Msg("scenario finished")

	return result, nil
}

// relative strips the scratch directory from a position so results do not
// depend on where the scenario ran.
func relative(dir string, pos lits.Pos) lits.Pos {
	if rel, err := filepath.Rel(dir, pos.Filename); err == nil && pos.Filename != "" {
		pos.Filename = rel
	}
	return pos
}
