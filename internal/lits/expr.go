package lits

import (
	"go/constant"
	"go/token"
	"math"
)

// Operator is a duration modifier operator.
type Operator int

const (
	Multiply Operator = iota + 1
	Divide
)

func (o Operator) String() string {
	switch o {
	case Multiply:
		return "*"
	case Divide:
		return "/"
	default:
		return "?"
	}
}

// Modifier scales a duration by a number.
type Modifier struct {
	Op     Operator
	Number float64
	Span   Span
}

// DurationLiteral is a duration string with an optional modifier.
type DurationLiteral struct {
	Text     StringLit
	Modifier *Modifier
}

// Scalar is the factor the parsed duration gets multiplied by. Division is
// folded into a reciprocal so conversion only ever multiplies; a zero divisor
// yields +Inf, which conversion rejects.
func (d DurationLiteral) Scalar() float64 {
	if d.Modifier == nil {
		return 1.0
	}
	if d.Modifier.Op == Divide {
		return 1.0 / d.Modifier.Number
	}
	return d.Modifier.Number
}

// ParseDurationExpr parses tokens of the form
//
//	STRING [ ("*" | "/") (INT | FLOAT) ]
//
// A trailing TokenEOF is optional. Any token beyond the grammar is a
// SyntaxError; nothing is silently ignored.
func ParseDurationExpr(toks []Token) (DurationLiteral, error) {
	p := &exprParser{toks: toks}

	str, err := p.expect("expected string literal, found %s", TokenString)
	if err != nil {
		return DurationLiteral{}, err
	}
	lit := DurationLiteral{Text: StringLitFromToken(str)}

	if p.peek().Kind == TokenEOF {
		return lit, nil
	}

	opTok, err := p.expect("expected `*` or `/`, found %s", TokenMul, TokenQuo)
	if err != nil {
		return DurationLiteral{}, err
	}
	op := Multiply
	if opTok.Kind == TokenQuo {
		op = Divide
	}

	numTok, err := p.expect("expected integer or float literal, found %s", TokenInt, TokenFloat)
	if err != nil {
		return DurationLiteral{}, err
	}
	n, err := parseNumber(numTok)
	if err != nil {
		return DurationLiteral{}, err
	}
	lit.Modifier = &Modifier{Op: op, Number: n, Span: numTok.Span}

	if next := p.peek(); next.Kind != TokenEOF {
		return DurationLiteral{}, syntaxError(next.Span, "unexpected %s after duration modifier", next.describe())
	}
	return lit, nil
}

// ParseStringExpr parses an expression that must be a single string literal.
func ParseStringExpr(toks []Token) (StringLit, error) {
	p := &exprParser{toks: toks}
	str, err := p.expect("expected string literal, found %s", TokenString)
	if err != nil {
		return StringLit{}, err
	}
	if next := p.peek(); next.Kind != TokenEOF {
		return StringLit{}, syntaxError(next.Span, "unexpected %s after string literal", next.describe())
	}
	return StringLitFromToken(str), nil
}

type exprParser struct {
	toks []Token
	i    int
}

func (p *exprParser) peek() Token {
	if p.i < len(p.toks) {
		return p.toks[p.i]
	}
	eof := Token{Kind: TokenEOF}
	if n := len(p.toks); n > 0 {
		end := p.toks[n-1].Span.End
		eof.Span = Span{Start: end, End: end}
	}
	return eof
}

func (p *exprParser) expect(format string, kinds ...TokenKind) (Token, error) {
	t := p.peek()
	for _, k := range kinds {
		if t.Kind == k {
			p.i++
			return t, nil
		}
	}
	return Token{}, syntaxError(t.Span, format, t.describe())
}

// parseNumber reads an INT or FLOAT literal in Go syntax (hex, octal,
// binary and digit separators included) as a float64.
func parseNumber(t Token) (float64, error) {
	tok := token.INT
	if t.Kind == TokenFloat {
		tok = token.FLOAT
	}
	v := constant.MakeFromLiteral(t.Lit, tok, 0)
	if v.Kind() == constant.Unknown {
		return 0, syntaxError(t.Span, "malformed number %q", t.Lit)
	}
	f, _ := constant.Float64Val(constant.ToFloat(v))
	if math.IsInf(f, 0) {
		return 0, syntaxError(t.Span, "number %s overflows float64", t.Lit)
	}
	return f, nil
}
