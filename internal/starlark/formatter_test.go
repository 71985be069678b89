package starlark

import (
	"testing"

	"github.com/leapstack-labs/gridview/internal/testutil"
	"github.com/leapstack-labs/gridview/pkg/grid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExpr_Eval(t *testing.T) {
	record := grid.Record{ID: "u1", Fields: map[string]any{
		"first":  "Ada",
		"last":   "Lovelace",
		"salary": 1234567.891,
		"nick":   "",
		"tags":   []any{"admin", "ops"},
	}}

	tests := []struct {
		name   string
		column string
		expr   string
		want   string
	}{
		{"concat", "full", `row["first"] + " " + row["last"]`, "Ada Lovelace"},
		{"value is own field", "first", `value.upper()`, "ADA"},
		{"id", "x", `"#" + id`, "#u1"},
		{"fmt_number", "salary", `fmt_number(value)`, "1,234,567.89"},
		{"fmt_number places", "salary", `fmt_number(value, places=0)`, "1,234,568"},
		{"coalesce", "nick", `coalesce(value, row.get("alias"), row["first"])`, "Ada"},
		{"none is empty", "missing", `value`, ""},
		{"join list", "tags", `", ".join(value)`, "admin, ops"},
		{"conditional", "x", `"locked" if disabled else "open"`, "open"},
		{"pad", "first", `pad(value, 5)`, "  Ada"},
		{"int result", "x", `len(row)`, "5"},
	}

	f := NewFormatter(testutil.NewTestLogger(t))
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, err := f.Compile(tt.column, tt.expr)
			require.NoError(t, err)
			assert.Equal(t, tt.expr, e.Source())

			got, err := e.Eval(record)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFormatter_CompileError(t *testing.T) {
	f := NewFormatter(nil)
	_, err := f.Compile("bad", `row[`)
	require.Error(t, err)

	var evalErr *EvalError
	require.ErrorAs(t, err, &evalErr)
	assert.Equal(t, "bad", evalErr.Column)
	assert.Contains(t, err.Error(), "column bad")
}

func TestExpr_FormatFuncReportsErrors(t *testing.T) {
	f := NewFormatter(testutil.NewTestLogger(t))
	e, err := f.Compile("age", `value + 1`)
	require.NoError(t, err)

	format := e.FormatFunc()
	assert.Equal(t, "31", format(grid.Record{ID: "1", Fields: map[string]any{"age": 30}}))
	assert.Equal(t, "#ERR", format(grid.Record{ID: "2", Fields: map[string]any{"age": "x"}}))

	_, err = e.Eval(grid.Record{ID: "2", Fields: map[string]any{"age": "x"}})
	var evalErr *EvalError
	require.ErrorAs(t, err, &evalErr)
	assert.Equal(t, "2", evalErr.RecordID)
}

func TestExpr_UsableAsColumnFormat(t *testing.T) {
	f := NewFormatter(nil)
	e, err := f.Compile("name", `row["name"].title()`)
	require.NoError(t, err)

	col := grid.Column{Name: "name", Format: e.FormatFunc()}
	assert.Equal(t, "Grace Hopper", col.DisplayValue(grid.NewRecord("1", map[string]any{"name": "grace hopper"})))
}
