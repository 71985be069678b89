package commands

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/leapstack-labs/gridview/pkg/grid"
	"github.com/spf13/cobra"
)

// viewFlags are the grid intents a one-shot command applies before
// rendering.
type viewFlags struct {
	page     string
	pageSize int
	sorts    []string
	filters  []string
	search   string
	selects  []string
	expands  []string
	all      bool
}

func (f *viewFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.page, "page", "", "Page to show (number, first, last, next, prev)")
	cmd.Flags().IntVar(&f.pageSize, "rows", -1, "Rows per page for this view (0 shows all)")
	cmd.Flags().StringArrayVar(&f.sorts, "sort", nil, "Sort by column, optionally column:desc (repeatable)")
	cmd.Flags().StringArrayVar(&f.filters, "filter", nil, "Filter a column, column=text (repeatable)")
	cmd.Flags().StringVar(&f.search, "search", "", "Search a column, column=pattern")
	cmd.Flags().StringSliceVar(&f.selects, "select", nil, "Select rows by id")
	cmd.Flags().StringSliceVar(&f.expands, "expand", nil, "Expand rows by id")
	cmd.Flags().BoolVar(&f.all, "all", false, "Show all rows on one page")
}

// apply runs the intents against g in a fixed order: filters, search,
// sort, page size, page, then selection and expansion.
func (f *viewFlags) apply(g *grid.Grid) error {
	for _, spec := range f.filters {
		col, text, ok := strings.Cut(spec, "=")
		if !ok {
			return fmt.Errorf("invalid filter %q: expected column=text", spec)
		}
		if err := applyFilter(g, col, text); err != nil {
			return err
		}
	}

	if f.search != "" {
		col, pattern, ok := strings.Cut(f.search, "=")
		if !ok {
			return fmt.Errorf("invalid search %q: expected column=pattern", f.search)
		}
		if !g.Search(col, pattern) {
			return fmt.Errorf("cannot search column %q", col)
		}
	}

	for i, spec := range f.sorts {
		col, dir, _ := strings.Cut(spec, ":")
		if err := applySort(g, col, grid.ParseDirection(dir), i > 0); err != nil {
			return err
		}
	}

	switch {
	case f.all:
		g.SetPageSize(grid.ShowAll)
	case f.pageSize >= 0:
		g.SetPageSize(f.pageSize)
	}

	if f.page != "" {
		req, ok := grid.ParsePageRequest(f.page)
		if !ok {
			return fmt.Errorf("invalid page %q", f.page)
		}
		if !g.SetPage(req) {
			if n, err := strconv.Atoi(f.page); err == nil && n != g.CurrentPage() {
				return fmt.Errorf("page %d is out of range (1-%d)", n, g.PageCount())
			}
		}
	}

	for i, id := range f.selects {
		if !g.ToggleSelect(id, i > 0 && g.Multiselect()) {
			return fmt.Errorf("cannot select row %q", id)
		}
	}
	for _, id := range f.expands {
		if !g.ToggleExpand(id) {
			return fmt.Errorf("cannot expand row %q", id)
		}
	}
	return nil
}

func applyFilter(g *grid.Grid, column, text string) error {
	col, ok := g.Column(column)
	if !ok {
		return fmt.Errorf("unknown column %q", column)
	}
	if col.Filter == grid.FilterNone {
		return fmt.Errorf("column %q has no filter", column)
	}
	g.ApplyFilter(column, text)
	return nil
}

// applySort sorts by column in dir. Sorting toggles, so a descending
// request on a fresh column takes a second application.
func applySort(g *grid.Grid, column string, dir grid.Direction, multi bool) error {
	col, ok := g.Column(column)
	if !ok {
		return fmt.Errorf("unknown column %q", column)
	}
	if !col.Sortable {
		return fmt.Errorf("column %q is not sortable", column)
	}
	if multi && !g.Multisort() {
		return fmt.Errorf("multi-column sort is disabled")
	}
	if dir == grid.Unsorted {
		dir = grid.Ascending
	}
	for range 2 {
		g.ApplySort(column, multi)
		if currentDirection(g, column) == dir {
			return nil
		}
	}
	return fmt.Errorf("cannot sort by %q", column)
}

func currentDirection(g *grid.Grid, column string) grid.Direction {
	for _, k := range g.SortKeys() {
		if k.Column == column {
			return k.Direction
		}
	}
	return grid.Unsorted
}
