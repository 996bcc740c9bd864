// Package manifest reads literal declarations from CUE files.
//
// A manifest names the Go package to generate and lists literals by kind:
//
//	goPackage: "config"
//
//	duration: {
//		Timeout: "1h"
//		Retry: {value: "30m", mul: 2}
//		Tick: {value: "1s", div: 2}
//	}
//	datetime: Launch: "2000-01-01T00:00:00Z"
//	bytes: {
//		Page: "4 KiB"
//		MaxBody: {value: "1 KiB", type: "uint32"}
//	}
//
// Durations and byte sizes become constants, datetimes become variables.
package manifest

import (
	"fmt"
	"go/token"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	cuetoken "cuelang.org/go/cue/token"

	"github.com/roach88/lits/internal/ir"
	"github.com/roach88/lits/internal/lits"
)

// FindFiles returns the .cue files directly inside dir, sorted.
func FindFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var files []string
	for _, e := range entries {
		if !e.IsDir() && filepath.Ext(e.Name()) == ".cue" {
			files = append(files, filepath.Join(dir, e.Name()))
		}
	}
	sort.Strings(files)
	return files, nil
}

// LoadDir parses every manifest in dir.
func LoadDir(dir string) ([]*ir.File, []error) {
	paths, err := FindFiles(dir)
	if err != nil {
		return nil, []error{&ir.CompileError{Field: ir.FieldLoad, Message: fmt.Sprintf("scanning %s: %v", dir, err)}}
	}

	ctx := cuecontext.New()
	var files []*ir.File
	var errs []error
	for _, path := range paths {
		src, err := os.ReadFile(path)
		if err != nil {
			errs = append(errs, &ir.CompileError{Field: ir.FieldLoad, Message: err.Error(), Pos: lits.Pos{Filename: path}})
			continue
		}
		f, fileErrs := parse(ctx, path, src)
		errs = append(errs, fileErrs...)
		if f != nil {
			files = append(files, f)
		}
	}
	return files, errs
}

// ParseFile reads the declarations of one manifest.
func ParseFile(path string, src []byte) (*ir.File, []error) {
	return parse(cuecontext.New(), path, src)
}

func parse(ctx *cue.Context, path string, src []byte) (*ir.File, []error) {
	v := ctx.CompileBytes(src, cue.Filename(path))
	if err := v.Err(); err != nil {
		return nil, cueErrors(err)
	}

	pkgVal := v.LookupPath(cue.ParsePath("goPackage"))
	if !pkgVal.Exists() {
		return nil, []error{&ir.CompileError{Field: ir.FieldDecl, Message: "goPackage is required", Pos: toPos(v.Pos())}}
	}
	pkg, err := pkgVal.String()
	if err != nil {
		return nil, cueErrors(err)
	}
	if !token.IsIdentifier(pkg) {
		return nil, []error{&ir.CompileError{Field: ir.FieldDecl, Message: fmt.Sprintf("goPackage %q is not a Go identifier", pkg), Pos: toPos(pkgVal.Pos())}}
	}

	p := &manifestParser{}
	out := &ir.File{Path: path, Package: pkg}
	out.Decls = append(out.Decls, p.section(v, ir.KindDuration, ir.StorageConst)...)
	out.Decls = append(out.Decls, p.section(v, ir.KindDatetime, ir.StorageVar)...)
	out.Decls = append(out.Decls, p.section(v, ir.KindBytes, ir.StorageConst)...)
	return out, p.errs
}

type manifestParser struct {
	errs []error
}

func (p *manifestParser) fail(err error) {
	p.errs = append(p.errs, err)
}

func (p *manifestParser) section(root cue.Value, kind ir.Kind, storage ir.Storage) []ir.Decl {
	sec := root.LookupPath(cue.ParsePath(string(kind)))
	if !sec.Exists() {
		return nil
	}
	iter, err := sec.Fields()
	if err != nil {
		p.errs = append(p.errs, cueErrors(err)...)
		return nil
	}

	var decls []ir.Decl
	for iter.Next() {
		name := iter.Label()
		val := iter.Value()
		if !token.IsIdentifier(name) {
			p.fail(&ir.CompileError{Field: ir.FieldDecl, Message: fmt.Sprintf("%s.%s: name is not a Go identifier", kind, name), Pos: toPos(val.Pos())})
			continue
		}
		d, ok := p.decl(kind, val)
		if !ok {
			continue
		}
		d.Name = name
		d.Storage = storage
		d.Pos = toPos(val.Pos())
		decls = append(decls, d)
	}
	return decls
}

func (p *manifestParser) decl(kind ir.Kind, val cue.Value) (ir.Decl, bool) {
	d := ir.Decl{Kind: kind}

	textVal := val
	if val.Kind() == cue.StructKind {
		if kind == ir.KindDatetime {
			p.fail(syntaxAt(val, "datetime must be a string"))
			return d, false
		}
		textVal = val.LookupPath(cue.ParsePath("value"))
		if !textVal.Exists() {
			p.fail(syntaxAt(val, "missing value field"))
			return d, false
		}
	}
	text, err := textVal.String()
	if err != nil {
		p.fail(syntaxAt(textVal, "expected string literal: %v", err))
		return d, false
	}
	lit := lits.StringLit{Value: text, Raw: strconv.Quote(text), Span: lits.Span{Start: toPos(textVal.Pos()), End: toPos(textVal.Pos())}}
	d.Expr = lit.Raw

	switch kind {
	case ir.KindDuration:
		d.Duration = lits.DurationLiteral{Text: lit}
		mod, ok := p.modifier(val)
		if !ok {
			return d, false
		}
		if mod != nil {
			d.Duration.Modifier = mod
			d.Expr = fmt.Sprintf("%s %s %s", lit.Raw, mod.Op, strconv.FormatFloat(mod.Number, 'g', -1, 64))
		}
	case ir.KindBytes:
		d.Text = lit
		if typ := val.LookupPath(cue.ParsePath("type")); val.Kind() == cue.StructKind && typ.Exists() {
			name, err := typ.String()
			if err != nil {
				p.fail(syntaxAt(typ, "type must be a string: %v", err))
				return d, false
			}
			d.TypeName = name
			d.TypePos = toPos(typ.Pos())
		}
	default:
		d.Text = lit
	}
	return d, true
}

// modifier reads the optional mul or div field of a duration struct.
func (p *manifestParser) modifier(val cue.Value) (*lits.Modifier, bool) {
	if val.Kind() != cue.StructKind {
		return nil, true
	}
	mulVal := val.LookupPath(cue.ParsePath("mul"))
	divVal := val.LookupPath(cue.ParsePath("div"))
	if mulVal.Exists() && divVal.Exists() {
		p.fail(syntaxAt(divVal, "mul and div are mutually exclusive"))
		return nil, false
	}

	op, numVal := lits.Multiply, mulVal
	if divVal.Exists() {
		op, numVal = lits.Divide, divVal
	}
	if !numVal.Exists() {
		return nil, true
	}
	n, err := numVal.Float64()
	if err != nil {
		p.fail(syntaxAt(numVal, "expected integer or float literal: %v", err))
		return nil, false
	}
	pos := toPos(numVal.Pos())
	return &lits.Modifier{Op: op, Number: n, Span: lits.Span{Start: pos, End: pos}}, true
}

func syntaxAt(v cue.Value, format string, args ...any) error {
	pos := toPos(v.Pos())
	return &lits.Error{
		Kind:    lits.SyntaxError,
		Span:    lits.Span{Start: pos, End: pos},
		Message: fmt.Sprintf(format, args...),
	}
}

func toPos(p cuetoken.Pos) lits.Pos {
	if !p.IsValid() {
		return lits.Pos{}
	}
	return lits.Pos{
		Filename: p.Filename(),
		Line:     p.Line(),
		Column:   p.Column(),
		Offset:   p.Offset(),
	}
}

// cueErrors flattens a CUE error into positioned CompileErrors.
func cueErrors(err error) []error {
	list := cueerrors.Errors(err)
	if len(list) == 0 {
		return []error{&ir.CompileError{Field: ir.FieldSyntax, Message: err.Error()}}
	}
	out := make([]error, 0, len(list))
	for _, e := range list {
		ce := &ir.CompileError{Field: ir.FieldSyntax, Message: e.Error()}
		if positions := cueerrors.Positions(e); len(positions) > 0 {
			ce.Pos = toPos(positions[0])
		}
		out = append(out, ce)
	}
	return out
}
