package compiler

import "github.com/roach88/lits/internal/lits"

// int, uint and uintptr are taken as 64-bit. On 32-bit targets the Go
// compiler still rejects a constant that does not fit.
var integerWidths = map[string]lits.Width{
	"int8":    {Bits: 8, Signed: true},
	"int16":   {Bits: 16, Signed: true},
	"int32":   {Bits: 32, Signed: true},
	"rune":    {Bits: 32, Signed: true},
	"int64":   {Bits: 64, Signed: true},
	"int":     {Bits: 64, Signed: true},
	"uint8":   {Bits: 8},
	"byte":    {Bits: 8},
	"uint16":  {Bits: 16},
	"uint32":  {Bits: 32},
	"uint64":  {Bits: 64},
	"uint":    {Bits: 64},
	"uintptr": {Bits: 64},
}

// WidthOf returns the width a byte count declared with typeName must fit.
// An empty typeName gets the full 64 bits, which holds for untyped
// constants only.
func WidthOf(typeName string) (lits.Width, bool) {
	if typeName == "" {
		return lits.Width64, true
	}
	w, ok := integerWidths[typeName]
	return w, ok
}
