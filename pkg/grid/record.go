package grid

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Record is one row of a grid's backing collection.
// Fields are owned by the RecordSource; the grid only reads them.
type Record struct {
	ID       string         `json:"id"`
	Fields   map[string]any `json:"fields"`
	Disabled bool           `json:"disabled,omitempty"`
}

// NewRecord creates a record with the given id and fields.
func NewRecord(id string, fields map[string]any) Record {
	if fields == nil {
		fields = make(map[string]any)
	}
	return Record{ID: id, Fields: fields}
}

// IDField is the column name that resolves to the record id when the
// record has no field of that name.
const IDField = "id"

// Get returns the raw value stored under name, or nil.
func (r Record) Get(name string) any {
	if v, ok := r.Fields[name]; ok {
		return v
	}
	if name == IDField {
		return r.ID
	}
	return nil
}

// FormatValue renders a raw field value as display text.
// Nil renders as the empty string.
func FormatValue(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case []byte:
		return string(val)
	case bool:
		return strconv.FormatBool(val)
	case int:
		return strconv.Itoa(val)
	case int64:
		return strconv.FormatInt(val, 10)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(val), 'f', -1, 32)
	case time.Time:
		return val.Format(time.RFC3339)
	case fmt.Stringer:
		return val.String()
	default:
		return fmt.Sprintf("%v", val)
	}
}

// numericValue extracts a float from a raw value for number sorting.
func numericValue(v any) (float64, bool) {
	switch val := v.(type) {
	case int:
		return float64(val), true
	case int32:
		return float64(val), true
	case int64:
		return float64(val), true
	case uint:
		return float64(val), true
	case uint64:
		return float64(val), true
	case float32:
		return float64(val), true
	case float64:
		return val, true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(val), 64)
		if err != nil {
			return 0, false
		}
		return f, true
	case interface{ Float64() (float64, error) }: // json.Number
		f, err := val.Float64()
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}
