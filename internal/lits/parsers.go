package lits

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/dustin/go-humanize"
	str2duration "github.com/xhit/go-str2duration/v2"
	"golang.org/x/text/unicode/norm"
)

// Parsers are the external human-format parsers a Converter orchestrates.
// Each is a black box returning a value or an error whose message is shown
// to the user verbatim.
type Parsers struct {
	// Duration parses "1h 30m", "45s", "1500ms", "7d", "2w", "3 hours".
	Duration func(string) (time.Duration, error)
	// Timestamp parses weak RFC3339. It must never return an instant
	// before the Unix epoch.
	Timestamp func(string) (time.Time, error)
	// ByteSize parses "1 KiB" (binary) and "1 kB" (decimal) sizes.
	ByteSize func(string) (uint64, error)
}

// DefaultParsers returns the parsers used by the package-level functions.
func DefaultParsers() Parsers {
	return Parsers{
		Duration:  ParseHumanDuration,
		Timestamp: ParseRFC3339Weak,
		ByteSize:  humanize.ParseBytes,
	}
}

// canonical trims and NFC-normalizes literal text before it reaches a
// parser, so visually identical unit suffixes compare equal.
func canonical(s string) string {
	return norm.NFC.String(strings.TrimSpace(s))
}

// ParseHumanDuration parses a duration made of number+unit components such
// as "1h 30m", "45 s", "2 days" or "1.5hr". Whitespace inside a number is
// skipped and whitespace after a unit ends the component. Every number needs
// a unit; see durationUnits for the accepted spellings.
func ParseHumanDuration(s string) (time.Duration, error) {
	comps, err := splitDuration(s)
	if err != nil {
		return 0, err
	}

	var total time.Duration
	for _, c := range comps {
		u, ok := durationUnits[c.unit]
		if !ok {
			return 0, fmt.Errorf("unknown time unit %q, supported units: ns, us/µs, ms, sec, min, hours, days, weeks, months, years (and few variations)", c.unit)
		}
		d, err := str2duration.ParseDuration(c.number + u.name)
		if err != nil {
			return 0, err
		}
		if d > math.MaxInt64/u.scale {
			return 0, errDurationTooLarge
		}
		d *= u.scale
		if total > math.MaxInt64-d {
			return 0, errDurationTooLarge
		}
		total += d
	}
	return total, nil
}

var errDurationTooLarge = errors.New("duration does not fit in 64-bit nanoseconds")

// durationUnit is a unit spelling resolved to the str2duration unit it is
// parsed as, times scale.
type durationUnit struct {
	name  string
	scale time.Duration
}

const (
	monthSeconds = 2_630_016  // 30.44 days
	yearSeconds  = 31_557_600 // 365.25 days
)

// durationUnits lists the unit spellings of a duration. Units are case
// sensitive: "M" is a month and "m" a minute. Months and years have no
// str2duration unit and are counted in seconds.
var durationUnits = map[string]durationUnit{
	"nanos": {"ns", 1}, "nsec": {"ns", 1}, "ns": {"ns", 1},
	"usec": {"us", 1}, "us": {"us", 1}, "µs": {"us", 1},
	"millis": {"ms", 1}, "msec": {"ms", 1}, "ms": {"ms", 1},
	"seconds": {"s", 1}, "second": {"s", 1}, "secs": {"s", 1}, "sec": {"s", 1}, "s": {"s", 1},
	"minutes": {"m", 1}, "minute": {"m", 1}, "mins": {"m", 1}, "min": {"m", 1}, "m": {"m", 1},
	"hours": {"h", 1}, "hour": {"h", 1}, "hrs": {"h", 1}, "hr": {"h", 1}, "h": {"h", 1},
	"days": {"d", 1}, "day": {"d", 1}, "d": {"d", 1},
	"weeks": {"w", 1}, "week": {"w", 1}, "wks": {"w", 1}, "wk": {"w", 1}, "w": {"w", 1},
	"months": {"s", monthSeconds}, "month": {"s", monthSeconds}, "M": {"s", monthSeconds},
	"years": {"s", yearSeconds}, "year": {"s", yearSeconds}, "yrs": {"s", yearSeconds}, "yr": {"s", yearSeconds}, "y": {"s", yearSeconds},
}

type durationComponent struct {
	number string // digits and an optional fraction, whitespace removed
	unit   string
}

// splitDuration breaks s into components. Offsets in errors are byte
// offsets into s.
func splitDuration(s string) ([]durationComponent, error) {
	var comps []durationComponent
	i := 0
	for {
		for i < len(s) {
			r, n := utf8.DecodeRuneInString(s[i:])
			if !unicode.IsSpace(r) {
				break
			}
			i += n
		}
		if i == len(s) {
			if len(comps) == 0 {
				return nil, errors.New("value was empty")
			}
			return comps, nil
		}
		if !isDigit(rune(s[i])) {
			return nil, fmt.Errorf("expected number at %d", i)
		}

		var num strings.Builder
		fraction := false
	number:
		for i < len(s) {
			r, n := utf8.DecodeRuneInString(s[i:])
			switch {
			case isDigit(r):
				num.WriteRune(r)
			case unicode.IsSpace(r):
			case r == '.' && !fraction:
				fraction = true
				num.WriteRune(r)
			case isUnitRune(r):
				break number
			default:
				return nil, fmt.Errorf("invalid character at %d", i)
			}
			i += n
		}
		if strings.HasSuffix(num.String(), ".") {
			return nil, fmt.Errorf("invalid character at %d", i)
		}
		if i == len(s) {
			whole, _, _ := strings.Cut(num.String(), ".")
			return nil, fmt.Errorf("time unit needed, for example %ssec or %sms", whole, whole)
		}

		start := i
	unit:
		for i < len(s) {
			r, n := utf8.DecodeRuneInString(s[i:])
			switch {
			case isUnitRune(r):
				i += n
			case isDigit(r), unicode.IsSpace(r):
				break unit
			default:
				return nil, fmt.Errorf("invalid character at %d", i)
			}
		}
		comps = append(comps, durationComponent{number: num.String(), unit: s[start:i]})
	}
}

func isDigit(r rune) bool {
	return r >= '0' && r <= '9'
}

func isUnitRune(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || r == 'µ'
}

var unixEpoch = time.Unix(0, 0).UTC()

// ParseRFC3339Weak parses an RFC3339 instant with the usual relaxations:
// the date/time separator may be 'T', 't' or a space, the fractional second
// is optional, and a missing zone means UTC. Numeric offsets are accepted and
// normalized to UTC. Instants before the Unix epoch are rejected.
func ParseRFC3339Weak(s string) (time.Time, error) {
	const minLen = len("2006-01-02T15:04:05")
	if len(s) < minLen {
		return time.Time{}, fmt.Errorf("timestamp %q is too short, expected at least YYYY-MM-DDTHH:MM:SS", s)
	}

	b := []byte(s)
	switch b[10] {
	case 'T', 't', ' ':
		b[10] = 'T'
	default:
		return time.Time{}, fmt.Errorf("expected 'T' or space after the date, found %q", s[10])
	}

	tail := b[minLen:]
	switch {
	case len(tail) > 0 && (tail[len(tail)-1] == 'Z' || tail[len(tail)-1] == 'z'):
		b[len(b)-1] = 'Z'
	case strings.ContainsAny(string(tail), "+-"):
	default:
		b = append(b, 'Z')
	}

	t, err := time.Parse(time.RFC3339Nano, string(b))
	if err != nil {
		return time.Time{}, err
	}
	t = t.UTC()
	if t.Before(unixEpoch) {
		return time.Time{}, fmt.Errorf("%s is before 1970-01-01T00:00:00Z", t.Format(time.RFC3339Nano))
	}
	return t, nil
}
