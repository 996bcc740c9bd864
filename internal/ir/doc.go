// Package ir holds the declaration IR shared by the front-ends, the compiler
// and the emitter.
//
// Front-ends (Go source, CUE manifests) produce a File of Decls with their
// literals already tokenized and parsed. The compiler turns each Decl into a
// Value; the emitter renders Values. ir imports nothing internal except lits.
package ir
