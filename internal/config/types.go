// Package config provides the project configuration types shared by the
// CLI, the TUI and the web UI: where records come from, how the grid pages
// and selects, and which columns it shows.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/leapstack-labs/gridview/pkg/grid"
)

// Source types.
const (
	SourceFile   = "file"
	SourceHTTP   = "http"
	SourceSQLite = "sqlite"
)

// SourceConfig describes the record source backing the grid.
type SourceConfig struct {
	Type string `koanf:"type"` // file, http, sqlite

	// File and SQLite sources
	Path string `koanf:"path"`

	// HTTP source
	URL        string            `koanf:"url"`
	Headers    map[string]string `koanf:"headers"`
	Query      map[string]string `koanf:"query"`
	Timeout    time.Duration     `koanf:"timeout"`
	RetryCount int               `koanf:"retry_count"`

	// Watch reloads file sources when the dataset changes on disk.
	Watch bool `koanf:"watch"`
}

// GridConfig holds the grid options.
type GridConfig struct {
	PageSize    int    `koanf:"page_size"` // 0 shows all rows
	RowList     []int  `koanf:"row_list"`
	Multiselect bool   `koanf:"multiselect"`
	Multisort   bool   `koanf:"multisort"`
	Subgrid     bool   `koanf:"subgrid"`
	Accordion   bool   `koanf:"accordion"`
	Lang        string `koanf:"lang"`
}

// ColumnConfig describes one column of the column model.
type ColumnConfig struct {
	Name     string `koanf:"name"`
	Title    string `koanf:"title"`
	Sortable bool   `koanf:"sortable"`
	SortType string `koanf:"sort_type"` // string, number
	Filter   string `koanf:"filter"`    // none, text, enumerated
	Hidden   bool   `koanf:"hidden"`

	// Format is a Starlark expression computing the cell text.
	Format string `koanf:"format"`
}

// ProjectConfig holds the configuration read from a gridview.yaml file.
type ProjectConfig struct {
	Source  *SourceConfig  `koanf:"source"`
	Grid    *GridConfig    `koanf:"grid"`
	Columns []ColumnConfig `koanf:"columns"`
}

// Validate checks the source configuration.
func (s *SourceConfig) Validate() error {
	if s == nil {
		return fmt.Errorf("source is required")
	}
	switch strings.ToLower(s.Type) {
	case SourceFile, SourceSQLite:
		if s.Path == "" {
			return fmt.Errorf("%s source requires a path", s.Type)
		}
	case SourceHTTP:
		if s.URL == "" {
			return fmt.Errorf("http source requires a url")
		}
	case "":
		return fmt.Errorf("source type is required")
	default:
		return fmt.Errorf("unknown source type %q (available: %s, %s, %s)",
			s.Type, SourceFile, SourceHTTP, SourceSQLite)
	}
	return nil
}

// Validate checks the grid options.
func (g *GridConfig) Validate() error {
	if g == nil {
		return nil
	}
	if g.PageSize < 0 {
		return fmt.Errorf("page_size must not be negative, got %d", g.PageSize)
	}
	for _, n := range g.RowList {
		if n < 0 {
			return fmt.Errorf("row_list entries must not be negative, got %d", n)
		}
	}
	return nil
}

// Validate checks a column definition.
func (c ColumnConfig) Validate() error {
	if c.Name == "" {
		return fmt.Errorf("column name is required")
	}
	if _, ok := grid.ParseSortType(c.SortType); !ok {
		return fmt.Errorf("column %s: unknown sort_type %q", c.Name, c.SortType)
	}
	if _, ok := grid.ParseFilterKind(c.Filter); !ok {
		return fmt.Errorf("column %s: unknown filter %q", c.Name, c.Filter)
	}
	return nil
}

// ValidateColumns checks every column and rejects duplicate names.
func ValidateColumns(cols []ColumnConfig) error {
	seen := make(map[string]bool, len(cols))
	for _, c := range cols {
		if err := c.Validate(); err != nil {
			return err
		}
		if seen[c.Name] {
			return fmt.Errorf("duplicate column %q", c.Name)
		}
		seen[c.Name] = true
	}
	return nil
}
