// Package source reads literal declarations from Go files.
//
// A declaration file is an ordinary Go file excluded from normal builds by a
// build tag, holding const and var declarations whose values are marker
// calls:
//
//	//go:build lits
//
//	package config
//
//	const (
//		Timeout        = lits.Duration("30m" * 2)
//		MaxBody uint32 = lits.Bytes("1 KiB")
//	)
//
//	var Launch = lits.Datetime("2000-01-01T00:00:00Z")
//
// The file is parsed with go/parser but never type-checked, so `"30m" * 2`
// is fine. The argument of each call is re-read as raw tokens and handed to
// the lits expression grammar.
package source
