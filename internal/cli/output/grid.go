package output

import (
	"fmt"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/leapstack-labs/gridview/pkg/grid"
)

// GridRenderer renders grid views through a Renderer. It implements
// grid.Renderer.
type GridRenderer struct {
	r *Renderer
	// Detail lists all fields of expanded rows below them.
	Detail bool
}

var _ grid.Renderer = (*GridRenderer)(nil)

// Grid returns a grid renderer for r.
func (r *Renderer) Grid() *GridRenderer {
	return &GridRenderer{r: r, Detail: true}
}

// Render writes v in the renderer's effective mode.
func (g *GridRenderer) Render(v grid.View) error {
	switch g.r.EffectiveMode() {
	case ModeJSON:
		return g.r.JSON(NewGridJSON(v))
	case ModeCSV:
		g.renderCSV(v)
	case ModeMarkdown:
		g.renderMarkdown(v)
	default:
		g.renderText(v)
	}
	return nil
}

// selectionColumn reports whether the marker column is shown.
func selectionColumn(v grid.View) bool {
	return v.Multiselect || len(v.Selected) > 0 || v.Subgrid
}

func header(v grid.View, withMarker bool) table.Row {
	row := make(table.Row, 0, len(v.Columns)+1)
	if withMarker {
		row = append(row, "")
	}
	for _, c := range v.Columns {
		title := c.Label()
		switch v.SortDirection(c.Name) {
		case grid.Ascending:
			title += " ▲"
		case grid.Descending:
			title += " ▼"
		}
		row = append(row, title)
	}
	return row
}

func marker(v grid.View, rec grid.Record) string {
	var b strings.Builder
	if v.Subgrid {
		if v.Expanded[rec.ID] {
			b.WriteString("▾")
		} else {
			b.WriteString("▸")
		}
	}
	switch {
	case rec.Disabled:
		b.WriteString("-")
	case v.Selected[rec.ID]:
		b.WriteString("*")
	default:
		b.WriteString(" ")
	}
	return b.String()
}

func cells(v grid.View, rec grid.Record, withMarker bool) table.Row {
	row := make(table.Row, 0, len(v.Columns)+1)
	if withMarker {
		row = append(row, marker(v, rec))
	}
	for _, c := range v.Columns {
		row = append(row, c.DisplayValue(rec))
	}
	return row
}

// detail formats the visible fields of rec, sorted by name.
func detail(v grid.View, rec grid.Record) string {
	fields := v.Detail(rec)
	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		parts = append(parts, f.Name+": "+f.Value)
	}
	return strings.Join(parts, ", ")
}

func (g *GridRenderer) newTable(v grid.View) (table.Writer, bool) {
	withMarker := selectionColumn(v)

	t := table.NewWriter()
	t.SetOutputMirror(g.r.w)
	t.SetStyle(table.StyleLight)
	t.Style().Format.Header = text.FormatDefault
	t.AppendHeader(header(v, withMarker))
	for _, rec := range v.Rows {
		t.AppendRow(cells(v, rec, withMarker))
		if g.Detail && v.Expanded[rec.ID] {
			t.AppendRow(detailRow(v, rec, withMarker), table.RowConfig{AutoMerge: true})
		}
	}
	return t, withMarker
}

func detailRow(v grid.View, rec grid.Record, withMarker bool) table.Row {
	n := len(v.Columns)
	if withMarker {
		n++
	}
	text := detail(v, rec)
	row := make(table.Row, n)
	for i := range row {
		row[i] = text
	}
	if withMarker {
		row[0] = ""
	}
	return row
}

func (g *GridRenderer) renderText(v grid.View) {
	if v.Loading {
		g.r.Muted(v.Labels.Loading)
		return
	}
	if len(v.Rows) == 0 {
		g.r.Muted(v.Labels.NoData)
		g.r.Println(Footer(v))
		return
	}

	t, _ := g.newTable(v)
	t.Render()
	g.r.Println(g.r.styles.Muted.Render(Footer(v)))
}

func (g *GridRenderer) renderMarkdown(v grid.View) {
	if len(v.Rows) == 0 {
		g.r.Println("_" + v.Labels.NoData + "_")
		return
	}
	t, _ := g.newTable(v)
	t.RenderMarkdown()
	g.r.Println()
	g.r.Println("_" + Footer(v) + "_")
}

func (g *GridRenderer) renderCSV(v grid.View) {
	t := table.NewWriter()
	t.SetOutputMirror(g.r.w)
	t.Style().Format.Header = text.FormatDefault
	labels := make(table.Row, 0, len(v.Columns))
	for _, c := range v.Columns {
		labels = append(labels, c.Label())
	}
	t.AppendHeader(labels)
	for _, rec := range v.Rows {
		t.AppendRow(cells(v, rec, false))
	}
	t.RenderCSV()
}

// Footer formats the pager line, e.g. "Pg 1 of 3 (25 of 30)".
func Footer(v grid.View) string {
	rows := fmt.Sprintf("%d", v.FilteredCount)
	if v.FilteredCount != v.TotalCount {
		rows = fmt.Sprintf("%d %s %d", v.FilteredCount, v.Labels.Of, v.TotalCount)
	}
	size := v.Labels.All
	if v.PageSize > 0 {
		size = fmt.Sprintf("%d", v.PageSize)
	}
	return fmt.Sprintf("%s %d %s %d (%s) · %s: %s",
		v.Labels.Page, v.Page, v.Labels.Of, v.PageCount, rows, v.Labels.RowsOnPage, size)
}

// GridJSON is the JSON form of a grid view.
type GridJSON struct {
	Columns       []ColumnJSON     `json:"columns"`
	Rows          []RowJSON        `json:"rows"`
	Page          int              `json:"page"`
	PageCount     int              `json:"pageCount"`
	PageSize      int              `json:"pageSize"`
	FilteredCount int              `json:"filteredCount"`
	TotalCount    int              `json:"totalCount"`
	Loading       bool             `json:"loading,omitempty"`
	Sort          []grid.SortKey   `json:"sort,omitempty"`
	Filters       []grid.Filter    `json:"filters,omitempty"`
	Search        *grid.SearchSpec `json:"search,omitempty"`
}

// ColumnJSON describes a rendered column.
type ColumnJSON struct {
	Name      string `json:"name"`
	Title     string `json:"title"`
	Sortable  bool   `json:"sortable,omitempty"`
	SortOrder string `json:"sortOrder,omitempty"`
	Filter    string `json:"filter,omitempty"`
}

// RowJSON is one rendered row. Cells hold display text keyed by column.
type RowJSON struct {
	ID       string            `json:"id"`
	Cells    map[string]string `json:"cells"`
	Selected bool              `json:"selected,omitempty"`
	Expanded bool              `json:"expanded,omitempty"`
	Disabled bool              `json:"disabled,omitempty"`
}

// NewGridJSON converts a view.
func NewGridJSON(v grid.View) GridJSON {
	out := GridJSON{
		Columns:       make([]ColumnJSON, 0, len(v.Columns)),
		Rows:          make([]RowJSON, 0, len(v.Rows)),
		Page:          v.Page,
		PageCount:     v.PageCount,
		PageSize:      v.PageSize,
		FilteredCount: v.FilteredCount,
		TotalCount:    v.TotalCount,
		Loading:       v.Loading,
		Sort:          v.Sort,
		Filters:       v.Filters,
		Search:        v.Search,
	}
	for _, c := range v.Columns {
		col := ColumnJSON{
			Name:      c.Name,
			Title:     c.Label(),
			Sortable:  c.Sortable,
			SortOrder: v.SortDirection(c.Name).String(),
		}
		if c.Filter != grid.FilterNone {
			col.Filter = c.Filter.String()
		}
		out.Columns = append(out.Columns, col)
	}
	for _, rec := range v.Rows {
		row := RowJSON{
			ID:       rec.ID,
			Cells:    make(map[string]string, len(v.Columns)),
			Selected: v.Selected[rec.ID],
			Expanded: v.Expanded[rec.ID],
			Disabled: rec.Disabled,
		}
		for _, c := range v.Columns {
			row.Cells[c.Name] = c.DisplayValue(rec)
		}
		out.Rows = append(out.Rows, row)
	}
	return out
}
