// Package harness runs conformance scenarios against the literal pipeline.
//
// A scenario is a YAML file holding a package's worth of declaration files
// and the values or diagnostics they must produce. The harness writes the
// files into a scratch directory, runs the same load, convert and render
// path as lits generate, and checks every expectation against the outcome.
//
// # Scenario Format
//
//	name: durations
//	description: "Scalar modifiers scale the parsed duration"
//	config: |
//	  comments: false
//	files:
//	  limits.go: |
//	    //go:build lits
//
//	    package limits
//
//	    const Retry = lits.Duration("30m" * 2)
//	expect:
//	  - type: value
//	    name: Retry
//	    value: 3600*time.Second + 0*time.Nanosecond
//	    human: 1 hour
//	  - type: error
//	    code: E202
//	    line: 7
//	    contains: forever
//	  - type: error_count
//	    count: 1
//
// # Expectation Types
//
//   - value: a declaration converted to the given Go expression and/or
//     human rendering
//   - error: a diagnostic with the given code, optionally on a line and
//     containing a message fragment
//   - error_count: the exact number of diagnostics
//
// Scenario outcomes can also be compared against golden files with
// RunWithGolden; see golden.go.
package harness
