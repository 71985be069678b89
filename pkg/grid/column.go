package grid

import "strings"

// =============================================================================
// Sort types and directions
// =============================================================================

// SortType selects how a column's values are compared.
type SortType int

const (
	// SortString compares case-folded display values.
	SortString SortType = iota
	// SortNumber compares raw values numerically.
	SortNumber
)

// String returns the config name of the sort type.
func (t SortType) String() string {
	if t == SortNumber {
		return "number"
	}
	return "string"
}

// ParseSortType converts a config string to a SortType.
// Unknown values fall back to SortString.
func ParseSortType(s string) (SortType, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "string":
		return SortString, true
	case "number", "numeric":
		return SortNumber, true
	default:
		return SortString, false
	}
}

// Direction is the sort order recorded for a column.
type Direction int

const (
	// Unsorted means the column does not take part in ordering.
	Unsorted Direction = iota
	// Ascending orders smallest first.
	Ascending
	// Descending orders largest first.
	Descending
)

// String returns "asc", "desc" or "".
func (d Direction) String() string {
	switch d {
	case Ascending:
		return "asc"
	case Descending:
		return "desc"
	default:
		return ""
	}
}

// ParseDirection parses "asc" or "desc". Anything else is Unsorted.
func ParseDirection(s string) Direction {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "asc", "ascending":
		return Ascending
	case "desc", "descending":
		return Descending
	default:
		return Unsorted
	}
}

func (d Direction) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

func (d *Direction) UnmarshalText(text []byte) error {
	*d = ParseDirection(string(text))
	return nil
}

// Toggle returns the direction a sort click moves to: asc becomes desc,
// anything else becomes asc.
func (d Direction) Toggle() Direction {
	if d == Ascending {
		return Descending
	}
	return Ascending
}

// =============================================================================
// Filters
// =============================================================================

// FilterKind selects how a column filter matches.
type FilterKind int

const (
	// FilterNone means the column cannot be filtered.
	FilterNone FilterKind = iota
	// FilterText matches a case-insensitive substring.
	FilterText
	// FilterEnumerated matches one of the column's distinct values exactly.
	FilterEnumerated
)

// String returns the config name of the filter kind.
func (k FilterKind) String() string {
	switch k {
	case FilterText:
		return "text"
	case FilterEnumerated:
		return "enumerated"
	default:
		return "none"
	}
}

// ParseFilterKind converts a config string to a FilterKind.
func ParseFilterKind(s string) (FilterKind, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "none", "false":
		return FilterNone, true
	case "text", "input", "true":
		return FilterText, true
	case "enumerated", "enum", "select":
		return FilterEnumerated, true
	default:
		return FilterNone, false
	}
}

// =============================================================================
// Column
// =============================================================================

// Column describes one column of the grid.
type Column struct {
	Name     string     `json:"name"`
	Title    string     `json:"title,omitempty"`
	Sortable bool       `json:"sortable,omitempty"`
	SortType SortType   `json:"-"`
	Filter   FilterKind `json:"-"`
	Hidden   bool       `json:"hidden,omitempty"`
	// Format computes the display value of the cell. When nil the raw field
	// value is formatted with FormatValue.
	Format func(Record) string `json:"-"`
	// SortOrder is written by the grid's sort operation only.
	SortOrder Direction `json:"sortOrder,omitempty"`
}

// Label returns the column title, falling back to its name.
func (c Column) Label() string {
	if c.Title != "" {
		return c.Title
	}
	return c.Name
}

// DisplayValue returns the text shown for this column in r.
func (c Column) DisplayValue(r Record) string {
	if c.Format != nil {
		return c.Format(r)
	}
	return FormatValue(r.Get(c.Name))
}
