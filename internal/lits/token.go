package lits

import "fmt"

// TokenKind classifies the tokens the duration expression grammar cares
// about. Everything else is TokenOther.
type TokenKind int

const (
	TokenEOF TokenKind = iota
	TokenString
	TokenInt
	TokenFloat
	TokenMul
	TokenQuo
	TokenOther
)

func (k TokenKind) String() string {
	switch k {
	case TokenEOF:
		return "end of input"
	case TokenString:
		return "string literal"
	case TokenInt:
		return "integer literal"
	case TokenFloat:
		return "float literal"
	case TokenMul:
		return "`*`"
	case TokenQuo:
		return "`/`"
	default:
		return "token"
	}
}

// Token is one lexical token of a literal expression.
type Token struct {
	Kind TokenKind
	// Lit is the token exactly as written in source.
	Lit string
	// Value is the unquoted string for TokenString and equals Lit otherwise.
	Value string
	Span  Span
}

// describe renders the token for diagnostics.
func (t Token) describe() string {
	if t.Kind == TokenEOF {
		return t.Kind.String()
	}
	return fmt.Sprintf("%q", t.Lit)
}

// StringLit is a string literal together with its source location.
type StringLit struct {
	// Value is the unquoted string.
	Value string
	// Raw is the literal as written, quotes included. May be empty when the
	// literal did not come from Go source.
	Raw  string
	Span Span
}

// StringLitFromToken converts a TokenString token into a StringLit.
func StringLitFromToken(t Token) StringLit {
	return StringLit{Value: t.Value, Raw: t.Lit, Span: t.Span}
}
