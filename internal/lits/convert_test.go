package lits

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func durLit(text string, mod *Modifier) DurationLiteral {
	return DurationLiteral{
		Text:     StringLit{Value: text, Span: Span{Start: Pos{Filename: "x.go", Line: 3, Column: 20}}},
		Modifier: mod,
	}
}

func mul(n float64) *Modifier { return &Modifier{Op: Multiply, Number: n} }
func div(n float64) *Modifier { return &Modifier{Op: Divide, Number: n} }

func strLit(text string) StringLit {
	return StringLit{Value: text, Span: Span{Start: Pos{Filename: "x.go", Line: 7, Column: 4}}}
}

func TestConvertDuration(t *testing.T) {
	tests := []struct {
		name  string
		lit   DurationLiteral
		secs  uint64
		nanos uint32
	}{
		{"hours", durLit("2h", nil), 7200, 0},
		{"days", durLit("7d", nil), 7 * 24 * 60 * 60, 0},
		{"spaced components", durLit("1h 30m", nil), 5400, 0},
		{"millis", durLit("1500ms", nil), 1, 500_000_000},
		{"multiply", durLit("30m", mul(2)), 3600, 0},
		{"multiply days", durLit("1d", mul(7)), 7 * 24 * 60 * 60, 0},
		{"divide", durLit("90s", div(3)), 30, 0},
		{"divide float", durLit("1s", div(2.0)), 0, 500_000_000},
		{"multiply float", durLit("2s", mul(1.5)), 3, 0},
		{"divide to millis", durLit("2s", div(20)), 0, 100_000_000},
		{"surrounding space", durLit("  45s ", nil), 45, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ConvertDuration(tt.lit)
			require.NoError(t, err)
			assert.Equal(t, ConvertedDuration{Seconds: tt.secs, Nanos: tt.nanos}, got)
		})
	}
}

func TestConvertDurationUnscaledMatchesParser(t *testing.T) {
	for _, s := range []string{"1ns", "999ms", "1h1m1s", "3w", "123456789ns"} {
		t.Run(s, func(t *testing.T) {
			d, err := ParseHumanDuration(s)
			require.NoError(t, err)

			got, err := ConvertDuration(durLit(s, nil))
			require.NoError(t, err)
			assert.Equal(t, uint64(d/time.Second), got.Seconds)
			assert.Equal(t, uint32(d%time.Second), got.Nanos)

			back, ok := got.Duration()
			require.True(t, ok)
			assert.Equal(t, d, back)
		})
	}
}

func TestConvertDurationMultiplyIsRepeatedAddition(t *testing.T) {
	base, err := ConvertDuration(durLit("1m 7s 250ms", nil))
	require.NoError(t, err)
	baseD, ok := base.Duration()
	require.True(t, ok)

	for k := 1; k <= 10; k++ {
		t.Run(fmt.Sprintf("k=%d", k), func(t *testing.T) {
			got, err := ConvertDuration(durLit("1m 7s 250ms", mul(float64(k))))
			require.NoError(t, err)
			d, ok := got.Duration()
			require.True(t, ok)
			assert.InDelta(t, float64(baseD)*float64(k), float64(d), 1)
		})
	}
}

func TestConvertDurationDivideInvertsMultiply(t *testing.T) {
	for _, k := range []float64{2, 3, 7, 1.5, 0.25} {
		t.Run(fmt.Sprint(k), func(t *testing.T) {
			up, err := ConvertDuration(durLit("10s", mul(k)))
			require.NoError(t, err)
			upD, _ := up.Duration()

			down, err := ConvertDuration(durLit(upD.String(), div(k)))
			require.NoError(t, err)
			downD, _ := down.Duration()
			assert.InDelta(t, float64(10*time.Second), float64(downD), 2)
		})
	}
}

func TestConvertDurationNanosNormalized(t *testing.T) {
	secs, nanos, err := decompose(29.9999999999999964)
	require.NoError(t, err)
	assert.Equal(t, uint64(30), secs)
	assert.Equal(t, uint32(0), nanos)
}

func TestConvertDurationErrors(t *testing.T) {
	tests := []struct {
		name   string
		lit    DurationLiteral
		target error
	}{
		{"garbage", durLit("soon", nil), nil},
		{"empty", durLit("", nil), nil},
		{"number without unit", durLit("1h 30", nil), nil},
		{"unknown unit", durLit("5 parsecs", nil), nil},
		{"unit split by space", durLit("1 m s", nil), nil},
		{"zero divisor", durLit("1s", div(0)), ErrNonFinite},
		{"zero times infinity", durLit("0s", div(0)), ErrNonFinite},
		{"negative scalar", durLit("1s", mul(-2)), ErrNegativeDuration},
		{"overflow", durLit("1s", mul(1e30)), ErrDurationOverflow},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ConvertDuration(tt.lit)
			require.Error(t, err)

			le, ok := AsError(err)
			require.True(t, ok)
			assert.Equal(t, DurationParse, le.Kind)
			assert.Equal(t, tt.lit.Text.Span, le.Span)
			assert.Contains(t, le.Message, fmt.Sprintf("%q", tt.lit.Text.Value))
			assert.Contains(t, err.Error(), "x.go:3:20")
			if tt.target != nil {
				assert.True(t, errors.Is(err, tt.target))
			}
		})
	}
}

func TestConvertDurationEmbedsParserMessage(t *testing.T) {
	c := NewConverter(Parsers{
		Duration: func(string) (time.Duration, error) { return 0, errors.New("unit wobble unknown") },
	})
	_, err := c.ConvertDuration(durLit("3 wobbles", nil))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unit wobble unknown")
	assert.Contains(t, err.Error(), `"3 wobbles"`)
}

func TestConvertTimestamp(t *testing.T) {
	tests := []struct {
		in    string
		secs  uint64
		nanos uint32
	}{
		{"1970-01-01T00:00:00Z", 0, 0},
		{"2000-01-01T00:00:00Z", 946684800, 0},
		{"2000-01-01 00:00:00", 946684800, 0},
		{"2000-01-01t00:00:00z", 946684800, 0},
		{"2000-01-01T00:00:00.5Z", 946684800, 500_000_000},
		{"2000-01-01T00:00:00.000000001", 946684800, 1},
		{"2000-01-01T01:00:00+01:00", 946684800, 0},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ConvertTimestamp(strLit(tt.in))
			require.NoError(t, err)
			assert.Equal(t, ConvertedTimestamp{Seconds: tt.secs, Nanos: tt.nanos}, got)
			assert.Equal(t, time.UTC, got.Time().Location())
		})
	}
}

func TestConvertTimestampErrors(t *testing.T) {
	for _, in := range []string{"yesterday", "2000-01-01", "2000-13-01T00:00:00Z", "2000-01-01X00:00:00", "1969-12-31T23:59:59Z"} {
		t.Run(in, func(t *testing.T) {
			_, err := ConvertTimestamp(strLit(in))
			le, ok := AsError(err)
			require.True(t, ok)
			assert.Equal(t, TimestampParse, le.Kind)
			assert.Contains(t, le.Message, fmt.Sprintf("%q", in))
			assert.False(t, le.Kind.Fatal())
		})
	}
}

func TestConvertTimestampEpochUnderflowIsFatal(t *testing.T) {
	c := NewConverter(Parsers{
		Timestamp: func(string) (time.Time, error) { return time.Unix(-1, 0), nil },
	})

	_, err := c.ConvertTimestamp(strLit("1969-12-31T23:59:59Z"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrEpochUnderflow))

	le, ok := AsError(err)
	require.True(t, ok)
	assert.Equal(t, EpochUnderflow, le.Kind)
	assert.True(t, le.Kind.Fatal())
}

func TestConvertByteCount(t *testing.T) {
	u32 := Width{Bits: 32}
	i32 := Width{Bits: 32, Signed: true}

	tests := []struct {
		in    string
		width Width
		want  uint64
	}{
		{"1 KiB", u32, 1024},
		{"1 kB", u32, 1000},
		{"1 kiB", u32, 1024},
		{"1 MiB", Width64, 1 << 20},
		{"4 GiB", Width64, 4 << 30},
		{"2 GiB", u32, 2 << 30},
		{"1 GiB", i32, 1 << 30},
		{"255 B", Width{Bits: 8}, 255},
		{"512", Width{}, 512},
	}

	for _, tt := range tests {
		t.Run(tt.in+"/"+tt.width.String(), func(t *testing.T) {
			got, err := ConvertByteCount(strLit(tt.in), tt.width)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.Value)
		})
	}
}

func TestConvertByteCountOverflow(t *testing.T) {
	tests := []struct {
		in    string
		width Width
		msg   string
	}{
		{"4 GiB", Width{Bits: 32}, "needs 33 bits, but uint32 provides 32"},
		{"2 GiB", Width{Bits: 32, Signed: true}, "needs 32 bits, but int32 provides 31"},
		{"256 B", Width{Bits: 8}, "needs 9 bits, but uint8 provides 8"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			_, err := ConvertByteCount(strLit(tt.in), tt.width)
			le, ok := AsError(err)
			require.True(t, ok)
			assert.Equal(t, ByteSizeOverflow, le.Kind)
			assert.Contains(t, le.Message, tt.msg)
		})
	}
}

func TestConvertByteCountParseError(t *testing.T) {
	_, err := ConvertByteCount(strLit("lots"), Width64)
	le, ok := AsError(err)
	require.True(t, ok)
	assert.Equal(t, ByteSizeParse, le.Kind)
	assert.Contains(t, le.Message, `"lots"`)
	assert.NotNil(t, errors.Unwrap(err))
}

func TestWidth(t *testing.T) {
	assert.Equal(t, uint64(255), Width{Bits: 8}.Max())
	assert.Equal(t, uint64(127), Width{Bits: 8, Signed: true}.Max())
	assert.Equal(t, uint64(1<<64-1), Width{}.Max())
	assert.Equal(t, uint64(1<<63-1), Width{Bits: 64, Signed: true}.Max())
	assert.Equal(t, "uint64", Width{}.String())
	assert.Equal(t, "int16", Width{Bits: 16, Signed: true}.String())
}

func TestConvertedDurationRange(t *testing.T) {
	_, ok := ConvertedDuration{Seconds: 9223372036, Nanos: 854775807}.Duration()
	assert.True(t, ok)
	_, ok = ConvertedDuration{Seconds: 9223372036, Nanos: 854775808}.Duration()
	assert.False(t, ok)
	_, ok = ConvertedDuration{Seconds: 1 << 40}.Duration()
	assert.False(t, ok)
}
