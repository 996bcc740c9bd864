package compiler

import (
	"errors"
	"fmt"
	"sort"

	"github.com/roach88/lits/internal/ir"
	"github.com/roach88/lits/internal/lits"
)

// Compile converts every declaration in f.
//
// Conversion is all-or-nothing: every error in the file is collected and
// returned, and the Compiled result is nil if there is any. A nil converter
// uses the default parsers.
func Compile(f *ir.File, conv *lits.Converter) (*ir.Compiled, []error) {
	if conv == nil {
		conv = lits.NewConverter(lits.DefaultParsers())
	}

	out := &ir.Compiled{Source: f.Path, Package: f.Package}
	var errs []error

	for _, d := range f.Decls {
		v, err := compileDecl(d, conv)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		out.Values = append(out.Values, v)
	}

	if len(errs) > 0 {
		return nil, errs
	}
	return out, nil
}

func compileDecl(d ir.Decl, conv *lits.Converter) (ir.Value, error) {
	v := ir.Value{Decl: d}

	switch d.Kind {
	case ir.KindDuration:
		if d.TypeName != "" && d.TypeName != "time.Duration" {
			return v, typeError(d, "time.Duration")
		}
		cd, err := conv.ConvertDuration(d.Duration)
		if err != nil {
			return v, err
		}
		if _, ok := cd.Duration(); !ok {
			return v, &ir.CompileError{
				Field: ir.FieldRange,
				Message: fmt.Sprintf("%s is %ds, which exceeds the time.Duration range (about 292 years)",
					d.Expr, cd.Seconds),
				Pos: d.Duration.Text.Span.Start,
			}
		}
		v.Duration = cd

	case ir.KindDatetime:
		if d.TypeName != "" && d.TypeName != "time.Time" {
			return v, typeError(d, "time.Time")
		}
		if d.Storage != ir.StorageVar {
			return v, &ir.CompileError{
				Field:   ir.FieldDecl,
				Message: fmt.Sprintf("%s must be declared with var: time.Time has no constant form", d.Name),
				Pos:     d.Pos,
			}
		}
		ts, err := conv.ConvertTimestamp(d.Text)
		if err != nil {
			return v, err
		}
		v.Timestamp = ts

	case ir.KindBytes:
		w, ok := WidthOf(d.TypeName)
		if !ok {
			return v, typeError(d, "an integer type")
		}
		if d.TypeName == "" && d.Storage == ir.StorageVar {
			// An untyped var takes Go's default type int.
			w = integerWidths["int"]
		}
		n, err := conv.ConvertByteCount(d.Text, w)
		if err != nil {
			return v, err
		}
		v.Bytes = n

	default:
		return v, &ir.CompileError{Field: ir.FieldDecl, Message: fmt.Sprintf("unknown literal kind %q", d.Kind), Pos: d.Pos}
	}
	return v, nil
}

func typeError(d ir.Decl, want string) error {
	pos := d.TypePos
	if !pos.IsValid() {
		pos = d.Pos
	}
	return &ir.CompileError{
		Field:   ir.FieldType,
		Message: fmt.Sprintf("%s literal %s cannot have type %s; use %s or leave it untyped", d.Kind, d.Name, d.TypeName, want),
		Pos:     pos,
	}
}

// CheckDuplicates reports names declared more than once across files of
// the same package. Blank identifiers are ignored.
func CheckDuplicates(files []*ir.File) []error {
	first := make(map[string]lits.Pos)
	var errs []error
	for _, f := range files {
		for _, d := range f.Decls {
			if d.Name == "_" {
				continue
			}
			if prev, seen := first[d.Name]; seen {
				errs = append(errs, &ir.CompileError{
					Field:   ir.FieldDecl,
					Message: fmt.Sprintf("%s redeclared; previous declaration at %s", d.Name, prev),
					Pos:     d.Pos,
				})
				continue
			}
			first[d.Name] = d.Pos
		}
	}
	return errs
}

// SortErrors orders errors by file position; errors without one keep their
// relative order at the front.
func SortErrors(errs []error) {
	sort.SliceStable(errs, func(i, j int) bool {
		a, b := ErrorPos(errs[i]), ErrorPos(errs[j])
		if a.Filename != b.Filename {
			return a.Filename < b.Filename
		}
		if a.Line != b.Line {
			return a.Line < b.Line
		}
		return a.Column < b.Column
	})
}

// ErrorPos extracts the source position carried by err, if any.
func ErrorPos(err error) lits.Pos {
	if le, ok := lits.AsError(err); ok {
		return le.Span.Start
	}
	var ce *ir.CompileError
	if errors.As(err, &ce) {
		return ce.Pos
	}
	return lits.Pos{}
}
