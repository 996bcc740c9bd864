package source

import (
	"go/scanner"
	"go/token"
	"strconv"

	"github.com/roach88/lits/internal/lits"
)

// Tokenize scans src as Go tokens and maps them onto lits tokens. The result
// always ends with a TokenEOF positioned after the last token.
func Tokenize(filename string, src []byte) ([]lits.Token, error) {
	fset := token.NewFileSet()
	file := fset.AddFile(filename, -1, len(src))
	toks, err := scanFile(fset, file, src)
	if err != nil {
		return nil, err
	}

	eof := lits.Token{Kind: lits.TokenEOF}
	if n := len(toks); n > 0 {
		end := toks[n-1].Span.End
		eof.Span = lits.Span{Start: end, End: end}
	}
	return append(toks, eof), nil
}

// scanFile returns every token of src except comments and automatically
// inserted semicolons.
func scanFile(fset *token.FileSet, file *token.File, src []byte) ([]lits.Token, error) {
	var firstErr error
	handler := func(pos token.Position, msg string) {
		if firstErr == nil {
			firstErr = &lits.Error{
				Kind:    lits.SyntaxError,
				Span:    lits.Span{Start: toPos(pos), End: toPos(pos)},
				Message: msg,
			}
		}
	}

	var s scanner.Scanner
	s.Init(file, src, handler, 0)

	var toks []lits.Token
	for {
		pos, tok, lit := s.Scan()
		if tok == token.EOF {
			break
		}
		if tok == token.SEMICOLON && lit == "\n" {
			continue
		}
		toks = append(toks, convertToken(fset, pos, tok, lit))
	}
	if firstErr != nil {
		return nil, firstErr
	}
	return toks, nil
}

func convertToken(fset *token.FileSet, pos token.Pos, tok token.Token, lit string) lits.Token {
	if lit == "" {
		lit = tok.String()
	}
	start := fset.Position(pos)
	end := fset.Position(pos + token.Pos(len(lit)))

	t := lits.Token{
		Lit:   lit,
		Value: lit,
		Span:  lits.Span{Start: toPos(start), End: toPos(end)},
	}
	switch tok {
	case token.STRING:
		t.Kind = lits.TokenString
		if v, err := strconv.Unquote(lit); err == nil {
			t.Value = v
		}
	case token.INT:
		t.Kind = lits.TokenInt
	case token.FLOAT:
		t.Kind = lits.TokenFloat
	case token.MUL:
		t.Kind = lits.TokenMul
	case token.QUO:
		t.Kind = lits.TokenQuo
	default:
		t.Kind = lits.TokenOther
	}
	return t
}

func toPos(p token.Position) lits.Pos {
	return lits.Pos{
		Filename: p.Filename,
		Line:     p.Line,
		Column:   p.Column,
		Offset:   p.Offset,
	}
}
