package grid

import (
	"slices"
	"strings"
)

// View is the render tuple handed to a Renderer. Hidden names the columns
// left out of Columns.
type View struct {
	Rows          []Record
	Columns       []Column
	Selected      map[string]bool
	Expanded      map[string]bool
	Page          int
	PageCount     int
	PageSize      int
	RowList       []int
	FilteredCount int
	TotalCount    int
	Loading       bool
	Multiselect   bool
	Multisort     bool
	Subgrid       bool
	Labels        Labels
	Filters       []Filter
	Search        *SearchSpec
	Sort          []SortKey
	Hidden        []string
}

// Field is one name and display value of a record's detail panel.
type Field struct {
	Name  string
	Value string
}

// Renderer produces output for a grid view.
type Renderer interface {
	Render(View) error
}

// RendererFunc adapts a function to Renderer.
type RendererFunc func(View) error

func (f RendererFunc) Render(v View) error { return f(v) }

// VisibleSlice returns the records of the current page after filtering,
// search and sorting.
func (g *Grid) VisibleSlice() []Record {
	g.mu.Lock()
	defer g.mu.Unlock()
	return slices.Clone(g.visible())
}

// visible is VisibleSlice without locking or copying.
func (g *Grid) visible() []Record {
	return g.pageSlice(g.sorted(g.filtered()))
}

// Snapshot captures the current view state.
func (g *Grid) Snapshot() View {
	g.mu.Lock()
	defer g.mu.Unlock()

	v := View{
		Rows:          slices.Clone(g.visible()),
		Columns:       g.visibleColumns(),
		Selected:      make(map[string]bool, len(g.selected)),
		Expanded:      make(map[string]bool, len(g.expanded)),
		Page:          g.page,
		PageCount:     g.pageCount(),
		PageSize:      g.pageSize,
		RowList:       slices.Clone(g.opts.rowList),
		FilteredCount: g.filteredCount,
		TotalCount:    len(g.records),
		Loading:       g.loading,
		Multiselect:   g.opts.multiselect,
		Multisort:     g.opts.multisort,
		Subgrid:       g.opts.subgrid,
		Labels:        Dictionary(g.opts.lang),
		Filters:       slices.Clone(g.filters),
		Sort:          slices.Clone(g.sortKeys),
	}
	for _, c := range g.columns {
		if c.Hidden {
			v.Hidden = append(v.Hidden, c.Name)
		}
	}
	for id := range g.selected {
		v.Selected[id] = true
	}
	for id := range g.expanded {
		v.Expanded[id] = true
	}
	if g.search != nil {
		s := *g.search
		v.Search = &s
	}
	return v
}

// Render passes a snapshot of the grid to r.
func (g *Grid) Render(r Renderer) error {
	return r.Render(g.Snapshot())
}

// FilterText returns the stored filter text for column.
func (v View) FilterText(column string) string {
	for _, f := range v.Filters {
		if f.Column == column {
			return f.Text
		}
	}
	return ""
}

// SortDirection returns the direction of column in the sort spec.
func (v View) SortDirection(column string) Direction {
	for _, k := range v.Sort {
		if k.Column == column {
			return k.Direction
		}
	}
	return Unsorted
}

// Detail returns the fields of rec sorted by name. Fields backing hidden
// columns are left out.
func (v View) Detail(rec Record) []Field {
	out := make([]Field, 0, len(rec.Fields))
	for name, value := range rec.Fields {
		if slices.Contains(v.Hidden, name) {
			continue
		}
		out = append(out, Field{Name: name, Value: FormatValue(value)})
	}
	slices.SortFunc(out, func(a, b Field) int { return strings.Compare(a.Name, b.Name) })
	return out
}
