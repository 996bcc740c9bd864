package lits

import (
	"errors"
	"fmt"
)

// ErrorKind identifies the conversion stage that failed.
type ErrorKind int

const (
	// SyntaxError: the literal expression is malformed (wrong or missing token).
	SyntaxError ErrorKind = iota + 1
	// DurationParse: the duration parser rejected the string, or scaling
	// produced a value that is not a representable duration.
	DurationParse
	// TimestampParse: the timestamp parser rejected the string.
	TimestampParse
	// ByteSizeParse: the byte-size parser rejected the string.
	ByteSizeParse
	// ByteSizeOverflow: the byte count does not fit the requested width.
	ByteSizeOverflow
	// EpochUnderflow: a timestamp before the Unix epoch reached
	// decomposition. The timestamp parser must never produce one, so this
	// is an internal invariant violation rather than bad input.
	EpochUnderflow
)

func (k ErrorKind) String() string {
	switch k {
	case SyntaxError:
		return "syntax"
	case DurationParse:
		return "duration"
	case TimestampParse:
		return "timestamp"
	case ByteSizeParse:
		return "bytes"
	case ByteSizeOverflow:
		return "bytes overflow"
	case EpochUnderflow:
		return "epoch underflow"
	default:
		return fmt.Sprintf("ErrorKind(%d)", int(k))
	}
}

// Fatal reports whether the kind signals a broken internal invariant.
func (k ErrorKind) Fatal() bool {
	return k == EpochUnderflow
}

var (
	ErrNonFinite        = errors.New("non-finite result")
	ErrNegativeDuration = errors.New("negative duration")
	ErrDurationOverflow = errors.New("duration overflows 64-bit seconds")
	ErrEpochUnderflow   = errors.New("timestamp precedes the Unix epoch")
)

// Error is a conversion failure anchored to the literal that caused it.
type Error struct {
	Kind ErrorKind
	Span Span
	// Text is the literal text the failure refers to, when there is one.
	Text    string
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Span.IsValid() {
		return fmt.Sprintf("%s: %s", e.Span.Start, e.Message)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// AsError returns the *Error wrapped by err, if any.
func AsError(err error) (*Error, bool) {
	var le *Error
	if errors.As(err, &le) {
		return le, true
	}
	return nil, false
}

func syntaxError(span Span, format string, args ...any) *Error {
	return &Error{
		Kind:    SyntaxError,
		Span:    span,
		Message: fmt.Sprintf(format, args...),
	}
}

// parseError wraps an external parser failure. The external message is kept
// verbatim and the original literal is quoted so the diagnostic stands alone.
func parseError(kind ErrorKind, what string, lit StringLit, err error) *Error {
	return &Error{
		Kind:    kind,
		Span:    lit.Span,
		Text:    lit.Value,
		Message: fmt.Sprintf("failed to parse %q as %s: %v", lit.Value, what, err),
		Err:     err,
	}
}
