package ir

import (
	"fmt"

	"github.com/roach88/lits/internal/lits"
)

// Kind is the literal kind of a declaration.
type Kind string

const (
	KindDuration Kind = "duration"
	KindDatetime Kind = "datetime"
	KindBytes    Kind = "bytes"
)

// KindFromFunc maps a marker call name (Duration, Datetime, Bytes) to a Kind.
func KindFromFunc(name string) (Kind, bool) {
	switch name {
	case "Duration":
		return KindDuration, true
	case "Datetime":
		return KindDatetime, true
	case "Bytes":
		return KindBytes, true
	}
	return "", false
}

// Storage is the Go declaration keyword.
type Storage string

const (
	StorageConst Storage = "const"
	StorageVar   Storage = "var"
)

// File is one declaration source.
type File struct {
	// Path is the file the declarations came from.
	Path    string `json:"path"`
	Package string `json:"package"`
	Decls   []Decl `json:"decls"`
}

// Decl is a single named literal declaration.
type Decl struct {
	Name    string   `json:"name"`
	Kind    Kind     `json:"kind"`
	Storage Storage  `json:"storage"`
	Pos     lits.Pos `json:"pos"`

	// TypeName is the declared type as written ("uint32", "time.Duration"),
	// empty when the declaration is untyped.
	TypeName string   `json:"type,omitempty"`
	TypePos  lits.Pos `json:"-"`

	// Expr is the literal expression as written, for diagnostics and
	// generated comments.
	Expr string `json:"expr"`

	// Duration is set for KindDuration.
	Duration lits.DurationLiteral `json:"-"`
	// Text is set for KindDatetime and KindBytes.
	Text lits.StringLit `json:"-"`
}

// Value is a converted declaration. Only the field matching Decl.Kind is set.
type Value struct {
	Decl      Decl                    `json:"decl"`
	Duration  lits.ConvertedDuration  `json:"duration"`
	Timestamp lits.ConvertedTimestamp `json:"timestamp"`
	Bytes     lits.ConvertedByteCount `json:"bytes"`
}

// Compiled is the conversion result for a File.
type Compiled struct {
	Source  string  `json:"source"`
	Package string  `json:"package"`
	Values  []Value `json:"values"`
}

// CompileError is a declaration-level failure that is not itself a literal
// conversion error: unsupported declarations and types, results the Go
// target type cannot hold, unreadable inputs.
type CompileError struct {
	Field   string
	Message string
	Pos     lits.Pos
}

// Field values for CompileError.
const (
	FieldSyntax = "syntax"
	FieldDecl   = "decl"
	FieldType   = "type"
	FieldRange  = "range"
	FieldLoad   = "load"
)

func (e *CompileError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s: %s: %s", e.Pos, e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}
