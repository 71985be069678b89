// Package source holds the dataset decoding shared by the file and HTTP
// record sources.
package source

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/leapstack-labs/gridview/pkg/grid"
	"gopkg.in/yaml.v3"
)

// ErrUnsupportedFormat is returned for dataset formats other than JSON and YAML.
var ErrUnsupportedFormat = errors.New("unsupported dataset format")

// Format names a dataset encoding.
type Format string

// Supported dataset formats.
const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// FormatForPath picks the format from a file extension.
func FormatForPath(path string) (Format, error) {
	switch {
	case strings.HasSuffix(path, ".json"):
		return FormatJSON, nil
	case strings.HasSuffix(path, ".yaml"), strings.HasSuffix(path, ".yml"):
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}
}

// Dataset is the decoded document. Records may be given as a bare array
// or under one of the envelope keys records, rows or items.
type Dataset struct {
	Records []grid.Record
	// Total is the envelope's total count, or -1 when absent.
	Total int
}

// Decode parses a dataset in the given format.
func Decode(format Format, data []byte) (Dataset, error) {
	var doc any
	switch format {
	case FormatJSON:
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.UseNumber()
		if err := dec.Decode(&doc); err != nil {
			return Dataset{}, fmt.Errorf("failed to parse JSON dataset: %w", err)
		}
	case FormatYAML:
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return Dataset{}, fmt.Errorf("failed to parse YAML dataset: %w", err)
		}
	default:
		return Dataset{}, fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
	}
	return fromDocument(doc)
}

func fromDocument(doc any) (Dataset, error) {
	ds := Dataset{Total: -1}

	var items []any
	switch v := doc.(type) {
	case nil:
		return ds, nil
	case []any:
		items = v
	case map[string]any:
		found := false
		for _, key := range []string{"records", "rows", "items"} {
			if raw, ok := v[key]; ok {
				list, ok := raw.([]any)
				if !ok && raw != nil {
					return Dataset{}, fmt.Errorf("dataset %q must be a list, got %T", key, raw)
				}
				items = list
				found = true
				break
			}
		}
		if !found {
			return Dataset{}, errors.New("dataset object has no records, rows or items list")
		}
		if total, ok := v["total"]; ok {
			n, err := toInt(total)
			if err != nil {
				return Dataset{}, fmt.Errorf("dataset total: %w", err)
			}
			ds.Total = n
		}
	default:
		return Dataset{}, fmt.Errorf("dataset must be a list or object, got %T", doc)
	}

	ds.Records = make([]grid.Record, 0, len(items))
	for i, item := range items {
		r, err := toRecord(item)
		if err != nil {
			return Dataset{}, fmt.Errorf("record %d: %w", i, err)
		}
		ds.Records = append(ds.Records, r)
	}
	return ds, nil
}

// toRecord lifts id and the disabled markers out of an object; every
// other key becomes a field.
func toRecord(item any) (grid.Record, error) {
	obj, ok := item.(map[string]any)
	if !ok {
		return grid.Record{}, fmt.Errorf("expected object, got %T", item)
	}

	r := grid.Record{Fields: make(map[string]any, len(obj))}
	for k, v := range obj {
		switch k {
		case "id":
			id, err := idString(v)
			if err != nil {
				return grid.Record{}, err
			}
			r.ID = id
		case "cb_disabled", "disabled":
			b, _ := v.(bool)
			r.Disabled = r.Disabled || b
		default:
			r.Fields[k] = v
		}
	}
	if r.ID == "" {
		return grid.Record{}, errors.New("missing id")
	}
	return r, nil
}

func idString(v any) (string, error) {
	switch id := v.(type) {
	case string:
		return id, nil
	case json.Number:
		return id.String(), nil
	case int:
		return strconv.Itoa(id), nil
	case int64:
		return strconv.FormatInt(id, 10), nil
	case uint64:
		return strconv.FormatUint(id, 10), nil
	case float64:
		return strconv.FormatFloat(id, 'f', -1, 64), nil
	default:
		return "", fmt.Errorf("id must be a string or number, got %T", v)
	}
}

func toInt(v any) (int, error) {
	switch n := v.(type) {
	case int:
		return n, nil
	case json.Number:
		i, err := n.Int64()
		return int(i), err
	case float64:
		return int(n), nil
	default:
		return 0, fmt.Errorf("expected number, got %T", v)
	}
}
