// Package starlark evaluates column format expressions written in Starlark.
//
// A column configured with `format: "row['first'] + ' ' + row['last']"` is
// compiled once into an Expr and evaluated against every record rendered.
// Expressions see the record as predeclared globals:
//
//	row       dict of the record's fields
//	id        the record id
//	value     the field named like the column, or None
//	disabled  whether the record is disabled
package starlark

import (
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/leapstack-labs/gridview/pkg/grid"
	"go.starlark.net/starlark"
)

// GoToStarlark converts a decoded field value to a Starlark value.
func GoToStarlark(v any) (starlark.Value, error) {
	if v == nil {
		return starlark.None, nil
	}

	switch val := v.(type) {
	case string:
		return starlark.String(val), nil
	case int:
		return starlark.MakeInt(val), nil
	case int32:
		return starlark.MakeInt64(int64(val)), nil
	case int64:
		return starlark.MakeInt64(val), nil
	case uint64:
		return starlark.MakeUint64(val), nil
	case float32:
		return starlark.Float(val), nil
	case float64:
		return starlark.Float(val), nil
	case bool:
		return starlark.Bool(val), nil
	case json.Number:
		if i, err := val.Int64(); err == nil {
			return starlark.MakeInt64(i), nil
		}
		f, err := val.Float64()
		if err != nil {
			return nil, fmt.Errorf("invalid number %q: %w", val, err)
		}
		return starlark.Float(f), nil
	case time.Time:
		return starlark.String(val.Format(time.RFC3339)), nil
	case []string:
		list := make([]starlark.Value, len(val))
		for i, s := range val {
			list[i] = starlark.String(s)
		}
		return starlark.NewList(list), nil
	case []any:
		list := make([]starlark.Value, len(val))
		for i, item := range val {
			sv, err := GoToStarlark(item)
			if err != nil {
				return nil, fmt.Errorf("list index %d: %w", i, err)
			}
			list[i] = sv
		}
		return starlark.NewList(list), nil
	case map[string]any:
		return mapToDict(val)
	default:
		return nil, fmt.Errorf("unsupported type: %T", v)
	}
}

// mapToDict builds a dict with keys in sorted order so that printing a
// row is deterministic.
func mapToDict(m map[string]any) (*starlark.Dict, error) {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	dict := starlark.NewDict(len(m))
	for _, k := range keys {
		sv, err := GoToStarlark(m[k])
		if err != nil {
			return nil, fmt.Errorf("field %q: %w", k, err)
		}
		if err := dict.SetKey(starlark.String(k), sv); err != nil {
			return nil, fmt.Errorf("field %q: %w", k, err)
		}
	}
	return dict, nil
}

// RecordGlobals returns the predeclared names an expression sees for r.
func RecordGlobals(column string, r grid.Record) (starlark.StringDict, error) {
	row, err := mapToDict(r.Fields)
	if err != nil {
		return nil, fmt.Errorf("record %s: %w", r.ID, err)
	}
	value, err := GoToStarlark(r.Get(column))
	if err != nil {
		return nil, fmt.Errorf("record %s: %w", r.ID, err)
	}
	row.Freeze()
	return starlark.StringDict{
		"row":      row,
		"id":       starlark.String(r.ID),
		"value":    value,
		"disabled": starlark.Bool(r.Disabled),
	}, nil
}

// ToGo converts a Starlark value back to a Go value.
// Returns string, int64, float64, bool, []any, map[string]any or nil.
func ToGo(v starlark.Value) (any, error) {
	switch val := v.(type) {
	case starlark.NoneType:
		return nil, nil
	case starlark.String:
		return string(val), nil
	case starlark.Int:
		if i64, ok := val.Int64(); ok {
			return i64, nil
		}
		return val.String(), nil
	case starlark.Float:
		return float64(val), nil
	case starlark.Bool:
		return bool(val), nil
	case starlark.Indexable:
		out := make([]any, val.Len())
		for i := range out {
			gv, err := ToGo(val.Index(i))
			if err != nil {
				return nil, fmt.Errorf("index %d: %w", i, err)
			}
			out[i] = gv
		}
		return out, nil
	case *starlark.Dict:
		out := make(map[string]any, val.Len())
		for _, item := range val.Items() {
			key, ok := item[0].(starlark.String)
			if !ok {
				return nil, fmt.Errorf("dict key must be string, got %s", item[0].Type())
			}
			gv, err := ToGo(item[1])
			if err != nil {
				return nil, fmt.Errorf("dict key %q: %w", key, err)
			}
			out[string(key)] = gv
		}
		return out, nil
	default:
		return val.String(), nil
	}
}
