package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/lits/internal/compiler"
	"github.com/roach88/lits/internal/gen"
	"github.com/roach88/lits/internal/ir"
	"github.com/roach88/lits/internal/lits"
	"github.com/roach88/lits/internal/source"
)

// EvalOptions holds flags for the eval command.
type EvalOptions struct {
	*RootOptions
	Type string // integer type a byte size must fit
}

// EvalResult is the outcome of evaluating one literal.
type EvalResult struct {
	Kind   string      `json:"kind"`
	Expr   string      `json:"expr"`
	Value  string      `json:"value"` // the Go expression lits generate would emit
	Human  string      `json:"human"`
	Result interface{} `json:"result"`
}

// String renders the result for text output.
func (r EvalResult) String() string {
	return fmt.Sprintf("%s\n  = %s\n  (%s)", r.Expr, r.Value, r.Human)
}

// evalFilename labels positions inside a command-line expression.
const evalFilename = "<arg>"

// NewEvalCommand creates the eval command.
func NewEvalCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &EvalOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "eval <duration|datetime|bytes> <expr>",
		Short: "Convert a single literal expression",
		Long: `Convert one literal expression and print the value lits generate would
emit for it.

The expression uses Go syntax, so modifiers need the text quoted:

  lits eval duration '"30m" * 2'
  lits eval datetime '"2024-01-01 12:00:00"'
  lits eval bytes --type uint16 '"64 KiB"'

A bare argument with no quotes is taken as the literal text itself.`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEval(opts, args[0], args[1], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Type, "type", "", "integer type a byte size must fit (default untyped, 64 bits)")

	return cmd
}

func runEval(opts *EvalOptions, kindArg, expr string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	kind := ir.Kind(kindArg)
	switch kind {
	case ir.KindDuration, ir.KindDatetime, ir.KindBytes:
	default:
		return outputError(formatter, ErrCodeGeneric,
			fmt.Sprintf("unknown literal kind %q: must be duration, datetime or bytes", kindArg), nil)
	}

	v, err := Eval(kind, expr, opts.Type)
	if err != nil {
		return outputErrors(formatter, "evaluation failed", []error{err})
	}
	formatter.VerboseLog("evaluated %s literal %s", kind, v.Decl.Expr)

	var raw interface{}
	switch kind {
	case ir.KindDuration:
		raw = v.Duration
	case ir.KindDatetime:
		raw = v.Timestamp
	default:
		raw = v.Bytes
	}
	return formatter.Success(EvalResult{
		Kind:   string(kind),
		Expr:   v.Decl.Expr,
		Value:  gen.Expr(v),
		Human:  gen.Describe(v),
		Result: raw,
	})
}

// Eval converts a single expression of the given kind. typeName constrains
// byte sizes the way a typed declaration would; other kinds ignore it.
func Eval(kind ir.Kind, expr, typeName string) (ir.Value, error) {
	text := strings.TrimSpace(expr)
	if text == "" || (text[0] != '"' && text[0] != '`') {
		text = strconv.Quote(text)
	}

	toks, err := source.Tokenize(evalFilename, []byte(text))
	if err != nil {
		return ir.Value{}, err
	}

	d := ir.Decl{
		Name:    "_",
		Kind:    kind,
		Storage: ir.StorageConst,
		Pos:     lits.Pos{Filename: evalFilename, Line: 1, Column: 1},
		Expr:    text,
	}
	switch kind {
	case ir.KindDuration:
		d.Duration, err = lits.ParseDurationExpr(toks)
	default:
		d.Text, err = lits.ParseStringExpr(toks)
	}
	if err != nil {
		return ir.Value{}, err
	}
	if kind == ir.KindDatetime {
		d.Storage = ir.StorageVar
	}
	if kind == ir.KindBytes {
		d.TypeName = typeName
	}

	c, errs := compiler.Compile(&ir.File{Path: evalFilename, Decls: []ir.Decl{d}}, nil)
	if len(errs) > 0 {
		return ir.Value{}, errs[0]
	}
	return c.Values[0], nil
}
