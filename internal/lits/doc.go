// Package lits converts human-readable literals into exact constant values.
//
// Three conversions are supported, each a pure function of its input:
//
//   - Durations: "1h 30m", "45s", optionally scaled by a numeric modifier
//     ("30m" * 2, "90s" / 3). The result is whole seconds plus a nanosecond
//     remainder.
//   - Timestamps: weak RFC3339 instants ("2000-01-01T00:00:00Z",
//     "2000-01-01 00:00:00") measured from the Unix epoch.
//   - Byte sizes: "1 KiB" (1024) versus "1 kB" (1000), optionally narrowed to
//     a declared integer width.
//
// Parsing of the human formats themselves is delegated to external parsers
// (see Parsers). This package orchestrates them, applies the duration
// modifier, enforces range constraints and reports every failure as an
// *Error anchored to the span of the offending literal.
//
// Nothing here holds state between calls; converters are safe for concurrent
// use.
package lits
