package source

import (
	"errors"
	"fmt"
	"go/ast"
	"go/build/constraint"
	"go/parser"
	"go/scanner"
	"go/token"
	"go/types"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/roach88/lits/internal/ir"
	"github.com/roach88/lits/internal/lits"
)

// Options configures how declaration files are recognised.
type Options struct {
	// Tag is the build tag that marks a declaration file.
	Tag string
	// Marker is the package selector of the marker calls (Marker.Duration...).
	Marker string
}

// DefaultOptions returns the tag and marker used when nothing is configured.
func DefaultOptions() Options {
	return Options{Tag: "lits", Marker: "lits"}
}

// FindFiles returns the declaration files directly inside dir, sorted.
// Test files are ignored.
func FindFiles(dir, tag string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var files []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || filepath.Ext(name) != ".go" || strings.HasSuffix(name, "_test.go") {
			continue
		}
		path := filepath.Join(dir, name)
		src, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		if HasTag(path, src, tag) {
			files = append(files, path)
		}
	}
	sort.Strings(files)
	return files, nil
}

// HasTag reports whether the //go:build line of src requires tag: the
// constraint holds when every tag is set and fails once tag is removed.
func HasTag(filename string, src []byte, tag string) bool {
	fset := token.NewFileSet()
	f, err := parser.ParseFile(fset, filename, src, parser.PackageClauseOnly|parser.ParseComments)
	if err != nil {
		return false
	}
	for _, group := range f.Comments {
		if group.Pos() >= f.Package {
			break
		}
		for _, c := range group.List {
			if !constraint.IsGoBuild(c.Text) {
				continue
			}
			expr, err := constraint.Parse(c.Text)
			if err != nil {
				return false
			}
			with := expr.Eval(func(string) bool { return true })
			without := expr.Eval(func(t string) bool { return t != tag })
			return with && !without
		}
	}
	return false
}

// ParseFile reads the literal declarations of one file. All problems found
// are returned; the File is nil only when src is not valid Go.
func ParseFile(filename string, src []byte, opts Options) (*ir.File, []error) {
	fset := token.NewFileSet()
	f, err := parser.ParseFile(fset, filename, src, parser.SkipObjectResolution)
	if err != nil {
		return nil, syntaxErrors(err)
	}

	scanSet := token.NewFileSet()
	toks, err := scanFile(scanSet, scanSet.AddFile(filename, -1, len(src)), src)
	if err != nil {
		return nil, []error{err}
	}

	p := &fileParser{fset: fset, src: src, toks: toks, opts: opts}
	out := &ir.File{Path: filename, Package: f.Name.Name}

	for _, decl := range f.Decls {
		gen, ok := decl.(*ast.GenDecl)
		if !ok {
			p.fail(decl.Pos(), ir.FieldDecl, "only const and var declarations are allowed in a lits file")
			continue
		}
		switch gen.Tok {
		case token.IMPORT:
			continue
		case token.CONST, token.VAR:
			for _, spec := range gen.Specs {
				out.Decls = append(out.Decls, p.valueSpec(gen.Tok, spec.(*ast.ValueSpec))...)
			}
		default:
			p.fail(gen.Pos(), ir.FieldDecl, fmt.Sprintf("%s declarations are not allowed in a lits file", gen.Tok))
		}
	}
	return out, p.errs
}

type fileParser struct {
	fset *token.FileSet
	src  []byte
	toks []lits.Token
	opts Options
	errs []error
}

func (p *fileParser) pos(pos token.Pos) lits.Pos {
	return toPos(p.fset.Position(pos))
}

func (p *fileParser) fail(pos token.Pos, field, msg string) {
	p.errs = append(p.errs, &ir.CompileError{Field: field, Message: msg, Pos: p.pos(pos)})
}

func (p *fileParser) valueSpec(tok token.Token, spec *ast.ValueSpec) []ir.Decl {
	if len(spec.Values) == 0 {
		p.fail(spec.Pos(), ir.FieldDecl, fmt.Sprintf("%s has no value; expected a %s.Duration, %s.Datetime or %s.Bytes call",
			spec.Names[0].Name, p.opts.Marker, p.opts.Marker, p.opts.Marker))
		return nil
	}
	if len(spec.Values) != len(spec.Names) {
		p.fail(spec.Pos(), ir.FieldDecl, fmt.Sprintf("%d names but %d values", len(spec.Names), len(spec.Values)))
		return nil
	}

	var typeName string
	var typePos lits.Pos
	if spec.Type != nil {
		typeName = types.ExprString(spec.Type)
		typePos = p.pos(spec.Type.Pos())
	}

	var decls []ir.Decl
	for i, name := range spec.Names {
		d, ok := p.decl(spec.Values[i])
		if !ok {
			continue
		}
		d.Name = name.Name
		d.Pos = p.pos(name.Pos())
		d.Storage = ir.StorageConst
		if tok == token.VAR {
			d.Storage = ir.StorageVar
		}
		d.TypeName = typeName
		d.TypePos = typePos
		decls = append(decls, d)
	}
	return decls
}

// decl recognises a marker call and parses its argument tokens.
func (p *fileParser) decl(value ast.Expr) (ir.Decl, bool) {
	call, ok := value.(*ast.CallExpr)
	var kind ir.Kind
	if ok {
		kind, ok = p.markerKind(call.Fun)
	}
	if !ok {
		m := p.opts.Marker
		p.fail(value.Pos(), ir.FieldDecl, fmt.Sprintf("value must be a %s.Duration, %s.Datetime or %s.Bytes call", m, m, m))
		return ir.Decl{}, false
	}

	lparen := p.fset.Position(call.Lparen).Offset
	rparen := p.fset.Position(call.Rparen).Offset
	args := p.tokensBetween(lparen, rparen)
	closing := p.pos(call.Rparen)
	args = append(args, lits.Token{Kind: lits.TokenEOF, Span: lits.Span{Start: closing, End: closing}})

	d := ir.Decl{
		Kind: kind,
		Expr: strings.TrimSpace(string(p.src[lparen+1 : rparen])),
	}

	var err error
	if kind == ir.KindDuration {
		d.Duration, err = lits.ParseDurationExpr(args)
	} else {
		d.Text, err = lits.ParseStringExpr(args)
	}
	if err != nil {
		p.errs = append(p.errs, err)
		return ir.Decl{}, false
	}
	return d, true
}

func (p *fileParser) markerKind(fun ast.Expr) (ir.Kind, bool) {
	sel, ok := fun.(*ast.SelectorExpr)
	if !ok {
		return "", false
	}
	pkg, ok := sel.X.(*ast.Ident)
	if !ok || pkg.Name != p.opts.Marker {
		return "", false
	}
	return ir.KindFromFunc(sel.Sel.Name)
}

// tokensBetween returns the tokens strictly inside the (lparen, rparen)
// byte range.
func (p *fileParser) tokensBetween(lparen, rparen int) []lits.Token {
	var out []lits.Token
	for _, t := range p.toks {
		off := t.Span.Start.Offset
		if off <= lparen {
			continue
		}
		if off >= rparen {
			break
		}
		out = append(out, t)
	}
	return out
}

func syntaxErrors(err error) []error {
	var list scanner.ErrorList
	if !errors.As(err, &list) {
		return []error{&ir.CompileError{Field: ir.FieldSyntax, Message: err.Error()}}
	}
	out := make([]error, 0, len(list))
	for _, e := range list {
		out = append(out, &ir.CompileError{Field: ir.FieldSyntax, Message: e.Msg, Pos: toPos(e.Pos)})
	}
	return out
}

// LoadDir parses every declaration file in dir. Files are returned even when
// other files fail, so callers can report all errors at once.
func LoadDir(dir string, opts Options) ([]*ir.File, []error) {
	paths, err := FindFiles(dir, opts.Tag)
	if err != nil {
		return nil, []error{&ir.CompileError{Field: ir.FieldLoad, Message: fmt.Sprintf("scanning %s: %v", dir, err)}}
	}

	var files []*ir.File
	var errs []error
	for _, path := range paths {
		src, err := os.ReadFile(path)
		if err != nil {
			errs = append(errs, &ir.CompileError{Field: ir.FieldLoad, Message: err.Error(), Pos: lits.Pos{Filename: path}})
			continue
		}
		f, fileErrs := ParseFile(path, src, opts)
		errs = append(errs, fileErrs...)
		if f != nil {
			files = append(files, f)
		}
	}
	return files, errs
}
