package config

import (
	"path/filepath"
	"strings"
)

// Default configuration values.
const (
	DefaultPageSize = 10
	DefaultLang     = "en"
)

// DefaultRowList is offered when no row_list is configured.
var DefaultRowList = []int{10, 25, 50, 0}

// InferSourceType guesses the source type from a path or URL.
func InferSourceType(location string) string {
	lower := strings.ToLower(location)
	switch {
	case strings.HasPrefix(lower, "http://"), strings.HasPrefix(lower, "https://"):
		return SourceHTTP
	case location == ":memory:":
		return SourceSQLite
	}
	switch filepath.Ext(lower) {
	case ".db", ".sqlite", ".sqlite3":
		return SourceSQLite
	default:
		return SourceFile
	}
}

// ApplyDefaults fills unset values of a ProjectConfig.
func (c *ProjectConfig) ApplyDefaults() {
	if c == nil {
		return
	}
	if c.Grid == nil {
		c.Grid = &GridConfig{PageSize: DefaultPageSize}
	}
	c.Grid.ApplyDefaults()
	if c.Source != nil {
		c.Source.ApplyDefaults()
	}
}

// ApplyDefaults fills the grid language and row list.
func (g *GridConfig) ApplyDefaults() {
	if g == nil {
		return
	}
	if g.Lang == "" {
		g.Lang = DefaultLang
	}
	if len(g.RowList) == 0 {
		g.RowList = append([]int(nil), DefaultRowList...)
	}
}

// ApplyDefaults infers the source type and moves a URL given as path.
func (s *SourceConfig) ApplyDefaults() {
	if s == nil {
		return
	}
	if s.Type == "" {
		loc := s.Path
		if loc == "" {
			loc = s.URL
		}
		if loc != "" {
			s.Type = InferSourceType(loc)
		}
	}
	s.Type = strings.ToLower(s.Type)
	if s.Type == SourceHTTP && s.URL == "" {
		s.URL, s.Path = s.Path, ""
	}
}
