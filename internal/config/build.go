package config

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"

	"github.com/leapstack-labs/gridview/internal/source/filesrc"
	"github.com/leapstack-labs/gridview/internal/source/httpsrc"
	"github.com/leapstack-labs/gridview/internal/starlark"
	"github.com/leapstack-labs/gridview/internal/state"
	"github.com/leapstack-labs/gridview/pkg/grid"
)

// Options converts the grid section into grid options.
func (g *GridConfig) Options() []grid.Option {
	if g == nil {
		return nil
	}
	opts := []grid.Option{
		grid.WithPageSize(g.PageSize),
		grid.WithLang(g.Lang),
	}
	if len(g.RowList) > 0 {
		opts = append(opts, grid.WithRowList(g.RowList...))
	}
	if g.Multiselect {
		opts = append(opts, grid.WithMultiselect())
	}
	if g.Multisort {
		opts = append(opts, grid.WithMultisort())
	}
	if g.Subgrid {
		opts = append(opts, grid.WithSubgrid(g.Accordion))
	}
	return opts
}

// Column converts the definition into a grid column, compiling its format
// expression with f.
func (c ColumnConfig) Column(f *starlark.Formatter) (grid.Column, error) {
	if err := c.Validate(); err != nil {
		return grid.Column{}, err
	}
	sortType, _ := grid.ParseSortType(c.SortType)
	filter, _ := grid.ParseFilterKind(c.Filter)

	col := grid.Column{
		Name:     c.Name,
		Title:    c.Title,
		Sortable: c.Sortable,
		SortType: sortType,
		Filter:   filter,
		Hidden:   c.Hidden,
	}
	if c.Format != "" {
		expr, err := f.Compile(c.Name, c.Format)
		if err != nil {
			return grid.Column{}, err
		}
		col.Format = expr.FormatFunc()
	}
	return col, nil
}

// BuildColumns converts the column model. With no columns configured, one
// text column per field of sample is derived, in sorted field order.
func BuildColumns(cols []ColumnConfig, f *starlark.Formatter, sample []grid.Record) ([]grid.Column, error) {
	if len(cols) == 0 {
		return InferColumns(sample), nil
	}
	if err := ValidateColumns(cols); err != nil {
		return nil, err
	}
	out := make([]grid.Column, 0, len(cols))
	for _, c := range cols {
		col, err := c.Column(f)
		if err != nil {
			return nil, err
		}
		out = append(out, col)
	}
	return out, nil
}

// InferColumns derives sortable text columns from the fields present in
// records.
func InferColumns(records []grid.Record) []grid.Column {
	seen := make(map[string]bool)
	var names []string
	for _, r := range records {
		for name := range r.Fields {
			if !seen[name] {
				seen[name] = true
				names = append(names, name)
			}
		}
	}
	slices.Sort(names)

	cols := []grid.Column{{Name: grid.IDField, Title: "ID", Sortable: true}}
	for _, name := range names {
		if name == grid.IDField {
			continue
		}
		cols = append(cols, grid.Column{Name: name, Sortable: true, Filter: grid.FilterText})
	}
	return cols
}

// OpenedSource is a record source built from configuration together with
// the resources it holds.
type OpenedSource struct {
	grid.RecordSource
	close func() error
}

// Close releases the source's resources.
func (s *OpenedSource) Close() error {
	if s.close == nil {
		return nil
	}
	return s.close()
}

// ErrNotWatchable is returned by Watch for sources that cannot reload
// themselves.
var ErrNotWatchable = errors.New("source does not support watching")

type watcher interface {
	Watch(ctx context.Context) error
}

// Watchable reports whether the source can reload itself on change.
func (s *OpenedSource) Watchable() bool {
	_, ok := s.RecordSource.(watcher)
	return ok
}

// Watch blocks, reloading the source on change, until ctx is cancelled.
func (s *OpenedSource) Watch(ctx context.Context) error {
	w, ok := s.RecordSource.(watcher)
	if !ok {
		return ErrNotWatchable
	}
	return w.Watch(ctx)
}

// OpenSource builds the record source described by s. The collection is
// empty until the first Fetch.
func OpenSource(s *SourceConfig, logger *slog.Logger) (*OpenedSource, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}

	switch s.Type {
	case SourceFile:
		return &OpenedSource{RecordSource: filesrc.New(s.Path, logger)}, nil

	case SourceHTTP:
		src := httpsrc.New(s.URL, httpsrc.Options{
			Timeout:    s.Timeout,
			RetryCount: s.RetryCount,
			Headers:    s.Headers,
			Query:      s.Query,
		}, logger)
		return &OpenedSource{RecordSource: src}, nil

	case SourceSQLite:
		store := state.NewSQLiteStore(logger)
		if err := store.Open(s.Path); err != nil {
			return nil, fmt.Errorf("failed to open record store: %w", err)
		}
		return &OpenedSource{RecordSource: state.NewSource(store, logger), close: store.Close}, nil
	}
	return nil, fmt.Errorf("unknown source type %q", s.Type)
}
