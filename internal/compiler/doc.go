// Package compiler turns parsed literal declarations into converted values
// and checks them against the Go types they will be emitted as.
package compiler
