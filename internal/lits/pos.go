package lits

import "fmt"

// Pos is a location in a source file. Line and Column are 1-based; Offset is
// a 0-based byte offset.
type Pos struct {
	Filename string `json:"filename,omitempty"`
	Line     int    `json:"line"`
	Column   int    `json:"column"`
	Offset   int    `json:"offset"`
}

// IsValid reports whether the position carries line information.
func (p Pos) IsValid() bool {
	return p.Line > 0
}

func (p Pos) String() string {
	if !p.IsValid() {
		if p.Filename != "" {
			return p.Filename
		}
		return "-"
	}
	if p.Filename == "" {
		return fmt.Sprintf("%d:%d", p.Line, p.Column)
	}
	return fmt.Sprintf("%s:%d:%d", p.Filename, p.Line, p.Column)
}

// Span is the half-open source range [Start, End) of a literal.
type Span struct {
	Start Pos `json:"start"`
	End   Pos `json:"end"`
}

// IsValid reports whether the span starts at a known position.
func (s Span) IsValid() bool {
	return s.Start.IsValid()
}
