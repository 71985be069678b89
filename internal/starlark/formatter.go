package starlark

import (
	"fmt"
	"log/slog"
	"strconv"

	"github.com/leapstack-labs/gridview/pkg/grid"
	"go.starlark.net/starlark"
	"go.starlark.net/syntax"
)

// errorCell is shown in place of a cell whose expression failed.
const errorCell = "#ERR"

var fileOptions = &syntax.FileOptions{}

// Formatter compiles column format expressions.
type Formatter struct {
	pool     *ThreadPool
	builtins starlark.StringDict
	logger   *slog.Logger
}

// NewFormatter creates a formatter. A nil logger discards evaluation errors.
func NewFormatter(logger *slog.Logger) *Formatter {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Formatter{
		pool:     NewThreadPool(0),
		builtins: Builtins(),
		logger:   logger,
	}
}

// Expr is a compiled format expression for one column.
type Expr struct {
	column string
	src    string
	expr   syntax.Expr
	f      *Formatter
}

// Compile parses src as the format expression of column.
func (f *Formatter) Compile(column, src string) (*Expr, error) {
	expr, err := fileOptions.ParseExpr(column, src, 0)
	if err != nil {
		return nil, &EvalError{Column: column, Expr: src, Message: err.Error()}
	}
	return &Expr{column: column, src: src, expr: expr, f: f}, nil
}

// Source returns the expression text.
func (e *Expr) Source() string { return e.src }

// Eval evaluates the expression against r and converts the result to
// display text. None renders as the empty string.
func (e *Expr) Eval(r grid.Record) (string, error) {
	globals, err := RecordGlobals(e.column, r)
	if err != nil {
		return "", &EvalError{Column: e.column, Expr: e.src, RecordID: r.ID, Message: err.Error()}
	}
	for name, v := range e.f.builtins {
		globals[name] = v
	}

	thread := e.f.pool.Get(e.column)
	defer e.f.pool.Put(thread)

	result, err := starlark.EvalExprOptions(fileOptions, thread, e.expr, globals)
	if err != nil {
		return "", &EvalError{Column: e.column, Expr: e.src, RecordID: r.ID, Message: err.Error()}
	}
	return displayString(result), nil
}

// FormatFunc adapts the expression to grid.Column.Format. Failed
// evaluations are logged and render as #ERR.
func (e *Expr) FormatFunc() func(grid.Record) string {
	return func(r grid.Record) string {
		s, err := e.Eval(r)
		if err != nil {
			e.f.logger.Debug("format expression failed", "column", e.column, "id", r.ID, "error", err)
			return errorCell
		}
		return s
	}
}

func displayString(v starlark.Value) string {
	switch val := v.(type) {
	case starlark.String:
		return string(val)
	case starlark.NoneType:
		return ""
	case starlark.Float:
		return strconv.FormatFloat(float64(val), 'f', -1, 64)
	default:
		return v.String()
	}
}

// EvalError reports a format expression that failed to parse or evaluate.
type EvalError struct {
	Column   string
	Expr     string
	RecordID string
	Message  string
}

func (e *EvalError) Error() string {
	if e.RecordID != "" {
		return fmt.Sprintf("column %s, record %s: error evaluating %q: %s", e.Column, e.RecordID, e.Expr, e.Message)
	}
	return fmt.Sprintf("column %s: error evaluating %q: %s", e.Column, e.Expr, e.Message)
}
