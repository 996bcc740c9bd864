// Package gen renders converted literals as Go source.
package gen

import (
	"bytes"
	"fmt"
	"go/format"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/hako/durafmt"

	"github.com/roach88/lits/internal/ir"
)

// DefaultSuffix is appended to the input file stem to name the output.
const DefaultSuffix = "_gen.go"

// Options controls rendering.
type Options struct {
	// Tag is the build tag of the declaration files. When set, the output
	// gets a "//go:build !Tag" line so the two never compile together.
	Tag string
	// Comments adds a line per declaration with the original expression
	// and a human-readable rendering of the value.
	Comments bool
}

// OutputPath names the generated file for a declaration source:
// limits.go and limits.cue both become limits<suffix>.
func OutputPath(source, suffix string) string {
	if suffix == "" {
		suffix = DefaultSuffix
	}
	dir, base := filepath.Split(source)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	return filepath.Join(dir, stem+suffix)
}

// Render produces gofmt-formatted Go source for c.
func Render(c *ir.Compiled, opts Options) ([]byte, error) {
	var b bytes.Buffer

	fmt.Fprintf(&b, "// Code generated by lits from %s. DO NOT EDIT.\n\n", filepath.Base(c.Source))
	if opts.Tag != "" {
		fmt.Fprintf(&b, "//go:build !%s\n\n", opts.Tag)
	}
	fmt.Fprintf(&b, "package %s\n", c.Package)
	if needsTime(c) {
		b.WriteString("\nimport \"time\"\n")
	}

	for _, v := range c.Values {
		b.WriteString("\n")
		if opts.Comments {
			fmt.Fprintf(&b, "// %s: %s (%s)\n", v.Decl.Name, oneLine(v.Decl.Expr), Describe(v))
		}
		typ := ""
		if v.Decl.TypeName != "" {
			typ = " " + v.Decl.TypeName
		}
		fmt.Fprintf(&b, "%s %s%s = %s\n", v.Decl.Storage, v.Decl.Name, typ, Expr(v))
	}

	out, err := format.Source(b.Bytes())
	if err != nil {
		return nil, fmt.Errorf("formatting generated source for %s: %w", c.Source, err)
	}
	return out, nil
}

// Expr is the Go expression a value is emitted as. Durations and instants
// are built from exactly their second and nanosecond integers.
func Expr(v ir.Value) string {
	switch v.Decl.Kind {
	case ir.KindDuration:
		return fmt.Sprintf("%d*time.Second + %d*time.Nanosecond", v.Duration.Seconds, v.Duration.Nanos)
	case ir.KindDatetime:
		return fmt.Sprintf("time.Unix(%d, %d).UTC()", v.Timestamp.Seconds, v.Timestamp.Nanos)
	default:
		return fmt.Sprintf("%d", v.Bytes.Value)
	}
}

// Describe renders a value for people.
func Describe(v ir.Value) string {
	switch v.Decl.Kind {
	case ir.KindDuration:
		d, ok := v.Duration.Duration()
		if !ok {
			return fmt.Sprintf("%ds", v.Duration.Seconds)
		}
		if d == 0 {
			return "0 seconds"
		}
		return durafmt.Parse(d).String()
	case ir.KindDatetime:
		return v.Timestamp.Time().Format(time.RFC3339Nano)
	default:
		return humanize.IBytes(v.Bytes.Value)
	}
}

func needsTime(c *ir.Compiled) bool {
	for _, v := range c.Values {
		if v.Decl.Kind == ir.KindDuration || v.Decl.Kind == ir.KindDatetime {
			return true
		}
	}
	return false
}

func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// Write stores generated source at path.
func Write(path string, data []byte) error {
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

// Verify reports whether the file at path already holds data. A missing
// file is stale, not an error.
func Verify(path string, data []byte) (bool, error) {
	existing, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return bytes.Equal(existing, data), nil
}
