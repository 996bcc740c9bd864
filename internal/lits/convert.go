package lits

import (
	"fmt"
	"math"
	"math/bits"
	"time"
)

// ConvertedDuration is a duration split into whole seconds and a nanosecond
// remainder. Nanos is always below one second.
type ConvertedDuration struct {
	Seconds uint64 `json:"seconds"`
	Nanos   uint32 `json:"nanos"`
}

// Duration returns the value as a time.Duration and false when it does not
// fit int64 nanoseconds.
func (d ConvertedDuration) Duration() (time.Duration, bool) {
	const maxSeconds = uint64(math.MaxInt64 / int64(time.Second))
	if d.Seconds > maxSeconds {
		return 0, false
	}
	ns := int64(d.Seconds)*int64(time.Second) + int64(d.Nanos)
	if ns < 0 {
		return 0, false
	}
	return time.Duration(ns), true
}

// ConvertedTimestamp is an instant measured from the Unix epoch.
type ConvertedTimestamp struct {
	Seconds uint64 `json:"seconds_since_epoch"`
	Nanos   uint32 `json:"nanos"`
}

// Time returns the instant in UTC.
func (t ConvertedTimestamp) Time() time.Time {
	return time.Unix(int64(t.Seconds), int64(t.Nanos)).UTC()
}

// ConvertedByteCount is a byte count that fits the width it was converted for.
type ConvertedByteCount struct {
	Value uint64 `json:"value"`
	Width Width  `json:"width"`
}

// Width is a target integer width. The zero value means 64-bit unsigned.
type Width struct {
	Bits   int  `json:"bits"`
	Signed bool `json:"signed,omitempty"`
}

// Width64 is the widest target, used for untyped byte constants.
var Width64 = Width{Bits: 64}

func (w Width) bits() int {
	if w.Bits <= 0 || w.Bits > 64 {
		return 64
	}
	return w.Bits
}

// Available is the number of value bits the width provides. Signed widths
// lose one bit to the sign.
func (w Width) Available() int {
	if w.Signed {
		return w.bits() - 1
	}
	return w.bits()
}

// Max is the largest byte count the width can hold.
func (w Width) Max() uint64 {
	n := w.Available()
	if n >= 64 {
		return math.MaxUint64
	}
	return 1<<uint(n) - 1
}

func (w Width) String() string {
	if w.Signed {
		return fmt.Sprintf("int%d", w.bits())
	}
	return fmt.Sprintf("uint%d", w.bits())
}

// Converter runs literals through a set of Parsers.
type Converter struct {
	parsers Parsers
}

// NewConverter returns a Converter backed by p. Nil fields fall back to the
// defaults.
func NewConverter(p Parsers) *Converter {
	def := DefaultParsers()
	if p.Duration == nil {
		p.Duration = def.Duration
	}
	if p.Timestamp == nil {
		p.Timestamp = def.Timestamp
	}
	if p.ByteSize == nil {
		p.ByteSize = def.ByteSize
	}
	return &Converter{parsers: p}
}

var std = NewConverter(DefaultParsers())

// ConvertDuration converts lit with the default parsers.
func ConvertDuration(lit DurationLiteral) (ConvertedDuration, error) {
	return std.ConvertDuration(lit)
}

// ConvertTimestamp converts lit with the default parsers.
func ConvertTimestamp(lit StringLit) (ConvertedTimestamp, error) {
	return std.ConvertTimestamp(lit)
}

// ConvertByteCount converts lit with the default parsers.
func ConvertByteCount(lit StringLit, w Width) (ConvertedByteCount, error) {
	return std.ConvertByteCount(lit, w)
}

// ConvertDuration parses the duration text and applies the modifier.
//
// Without a modifier the parsed value is split exactly. With one, scaling is
// done in float64 seconds: very large durations or scalars may lose
// sub-nanosecond precision. That is accepted; arbitrary precision is not a goal.
func (c *Converter) ConvertDuration(lit DurationLiteral) (ConvertedDuration, error) {
	d, err := c.parsers.Duration(canonical(lit.Text.Value))
	if err != nil {
		return ConvertedDuration{}, parseError(DurationParse, "Duration", lit.Text, err)
	}
	if d < 0 {
		return ConvertedDuration{}, parseError(DurationParse, "Duration", lit.Text, ErrNegativeDuration)
	}

	scalar := lit.Scalar()
	if scalar == 1 {
		return ConvertedDuration{
			Seconds: uint64(d / time.Second),
			Nanos:   uint32(d % time.Second),
		}, nil
	}

	secs, nanos, err := decompose(d.Seconds() * scalar)
	if err != nil {
		return ConvertedDuration{}, parseError(DurationParse, "Duration", lit.Text, err)
	}
	return ConvertedDuration{Seconds: secs, Nanos: nanos}, nil
}

// decompose splits non-negative float seconds into whole seconds and the
// remainder rounded to the nearest nanosecond.
func decompose(x float64) (uint64, uint32, error) {
	// Every float64 below 2^64 converts to uint64 exactly.
	const limit = 1 << 64

	switch {
	case math.IsNaN(x) || math.IsInf(x, 0):
		return 0, 0, ErrNonFinite
	case x < 0:
		return 0, 0, ErrNegativeDuration
	case x >= limit:
		return 0, 0, ErrDurationOverflow
	}

	whole := math.Trunc(x)
	nanos := math.Round((x - whole) * 1e9)
	secs := uint64(whole)
	if nanos >= 1e9 {
		secs++
		nanos -= 1e9
	}
	return secs, uint32(nanos), nil
}

// ConvertTimestamp parses a weak RFC3339 string and measures it from the
// Unix epoch.
func (c *Converter) ConvertTimestamp(lit StringLit) (ConvertedTimestamp, error) {
	t, err := c.parsers.Timestamp(canonical(lit.Value))
	if err != nil {
		return ConvertedTimestamp{}, parseError(TimestampParse, "time.Time", lit, err)
	}
	return sinceEpoch(t, lit)
}

func sinceEpoch(t time.Time, lit StringLit) (ConvertedTimestamp, error) {
	secs := t.Unix()
	if secs < 0 {
		return ConvertedTimestamp{}, &Error{
			Kind:    EpochUnderflow,
			Span:    lit.Span,
			Text:    lit.Value,
			Message: fmt.Sprintf("internal error: timestamp parser returned %s for %q, which precedes the Unix epoch", t.UTC().Format(time.RFC3339Nano), lit.Value),
			Err:     ErrEpochUnderflow,
		}
	}
	return ConvertedTimestamp{Seconds: uint64(secs), Nanos: uint32(t.Nanosecond())}, nil
}

// ConvertByteCount parses a byte size and checks that it fits w.
func (c *Converter) ConvertByteCount(lit StringLit, w Width) (ConvertedByteCount, error) {
	n, err := c.parsers.ByteSize(canonical(lit.Value))
	if err != nil {
		return ConvertedByteCount{}, parseError(ByteSizeParse, "byte size", lit, err)
	}
	if n > w.Max() {
		return ConvertedByteCount{}, &Error{
			Kind: ByteSizeOverflow,
			Span: lit.Span,
			Text: lit.Value,
			Message: fmt.Sprintf("byte size %q is %d bytes and needs %d bits, but %s provides %d",
				lit.Value, n, bits.Len64(n), w, w.Available()),
		}
	}
	return ConvertedByteCount{Value: n, Width: w}, nil
}
