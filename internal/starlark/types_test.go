package starlark

import (
	"encoding/json"
	"testing"

	"github.com/leapstack-labs/gridview/pkg/grid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.starlark.net/starlark"
)

func TestGoToStarlark(t *testing.T) {
	tests := []struct {
		name    string
		input   any
		wantStr string
		wantErr bool
	}{
		{name: "string", input: "hello", wantStr: `"hello"`},
		{name: "int", input: 42, wantStr: "42"},
		{name: "float64", input: 3.5, wantStr: "3.5"},
		{name: "bool", input: true, wantStr: "True"},
		{name: "nil", input: nil, wantStr: "None"},
		{name: "json integer", input: json.Number("12"), wantStr: "12"},
		{name: "json float", input: json.Number("1.25"), wantStr: "1.25"},
		{name: "any slice", input: []any{"x", 1, false}, wantStr: `["x", 1, False]`},
		{name: "map sorted", input: map[string]any{"b": 2, "a": 1}, wantStr: `{"a": 1, "b": 2}`},
		{name: "unsupported", input: struct{}{}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := GoToStarlark(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantStr, got.String())
		})
	}
}

func TestToGo(t *testing.T) {
	tests := []struct {
		name  string
		input starlark.Value
		want  any
	}{
		{"string", starlark.String("hello"), "hello"},
		{"int", starlark.MakeInt(42), int64(42)},
		{"float", starlark.Float(2.5), 2.5},
		{"bool", starlark.Bool(true), true},
		{"none", starlark.None, nil},
		{"list", starlark.NewList([]starlark.Value{starlark.MakeInt(1)}), []any{int64(1)}},
		{"tuple", starlark.Tuple{starlark.String("a")}, []any{"a"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ToGo(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRecordGlobals(t *testing.T) {
	r := grid.Record{ID: "7", Fields: map[string]any{"age": 30, "name": "Ann"}, Disabled: true}

	globals, err := RecordGlobals("age", r)
	require.NoError(t, err)
	assert.Equal(t, `"7"`, globals["id"].String())
	assert.Equal(t, "30", globals["value"].String())
	assert.Equal(t, "True", globals["disabled"].String())
	assert.Equal(t, `{"age": 30, "name": "Ann"}`, globals["row"].String())

	globals, err = RecordGlobals("missing", r)
	require.NoError(t, err)
	assert.Equal(t, starlark.None, globals["value"])
}
