package tui

import (
	"fmt"
	"slices"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/x/ansi"
	"github.com/leapstack-labs/gridview/pkg/grid"
)

// refresh rebuilds the table from a fresh snapshot.
func (m *Model) refresh() {
	v := m.grid.Snapshot()
	if m.column >= len(v.Columns) {
		m.column = max(len(v.Columns)-1, 0)
	}

	columns := make([]table.Column, 0, len(v.Columns)+1)
	columns = append(columns, table.Column{Title: "", Width: markerWidth(v)})
	for i, c := range v.Columns {
		title := c.Label()
		switch v.SortDirection(c.Name) {
		case grid.Ascending:
			title += " ▲"
		case grid.Descending:
			title += " ▼"
		}
		if i == m.column {
			title = "[" + title + "]"
		}
		width := ansi.StringWidth(title)
		for _, rec := range v.Rows {
			width = max(width, ansi.StringWidth(c.DisplayValue(rec)))
		}
		columns = append(columns, table.Column{Title: title, Width: min(width, maxColumnWidth)})
	}

	rows := make([]table.Row, 0, len(v.Rows))
	m.ids = m.ids[:0]
	for _, rec := range v.Rows {
		row := make(table.Row, 0, len(columns))
		row = append(row, marker(v, rec))
		for _, c := range v.Columns {
			row = append(row, c.DisplayValue(rec))
		}
		rows = append(rows, row)
		m.ids = append(m.ids, rec.ID)
	}

	// Rows must never have fewer cells than the columns being set.
	m.table.SetRows(nil)
	m.table.SetColumns(columns)
	m.table.SetRows(rows)
	if c := m.table.Cursor(); c >= len(rows) {
		m.table.SetCursor(max(len(rows)-1, 0))
	}
	m.updateDetail(v)
}

func markerWidth(v grid.View) int {
	w := 1
	if v.Multiselect {
		w = 3
	}
	if v.Subgrid {
		w += 2
	}
	return w
}

func marker(v grid.View, rec grid.Record) string {
	var b strings.Builder
	if v.Subgrid {
		if v.Expanded[rec.ID] {
			b.WriteString("▾ ")
		} else {
			b.WriteString("▸ ")
		}
	}
	switch {
	case v.Multiselect && rec.Disabled:
		b.WriteString("[-]")
	case v.Multiselect && v.Selected[rec.ID]:
		b.WriteString("[x]")
	case v.Multiselect:
		b.WriteString("[ ]")
	case v.Selected[rec.ID]:
		b.WriteString("*")
	default:
		b.WriteString(" ")
	}
	return b.String()
}

// updateDetail shows the visible fields of the cursor row when it is
// expanded.
func (m *Model) updateDetail(v grid.View) {
	id, ok := m.cursorID()
	if !ok || !v.Expanded[id] {
		m.detail.SetContent("")
		return
	}
	i := slices.IndexFunc(v.Rows, func(r grid.Record) bool { return r.ID == id })
	if i < 0 {
		m.detail.SetContent("")
		return
	}
	rec := v.Rows[i]

	var b strings.Builder
	fmt.Fprintf(&b, "id: %s\n", rec.ID)
	for _, f := range v.Detail(rec) {
		fmt.Fprintf(&b, "%s: %s\n", f.Name, f.Value)
	}
	m.detail.SetContent(strings.TrimRight(b.String(), "\n"))
	m.detail.GotoTop()
}

func (m *Model) resize() {
	reserved := 6
	if m.grid.Subgrid() {
		reserved += detailHeight + 2
	}
	if m.help.ShowAll {
		reserved += 4
	}
	m.table.SetHeight(max(m.height-reserved, 3))
	m.table.SetWidth(max(m.width, 20))
	m.detail.Width = max(m.width-4, 10)
	m.help.Width = m.width
}

// pager formats the footer, e.g. "Pg 2 of 5 · 48 of 120 · Rows on page: 10".
func pager(v grid.View) string {
	size := v.Labels.All
	if v.PageSize > 0 {
		size = fmt.Sprintf("%d", v.PageSize)
	}
	count := fmt.Sprintf("%d", v.FilteredCount)
	if v.FilteredCount != v.TotalCount {
		count = fmt.Sprintf("%d %s %d", v.FilteredCount, v.Labels.Of, v.TotalCount)
	}
	line := fmt.Sprintf("%s %d %s %d · %s · %s: %s",
		v.Labels.Page, v.Page, v.Labels.Of, v.PageCount, count, v.Labels.RowsOnPage, size)
	if n := len(v.Selected); n > 0 {
		line += fmt.Sprintf(" · %d selected", n)
	}
	return line
}

// criteria summarizes active filters and search.
func criteria(v grid.View) string {
	var parts []string
	for _, f := range v.Filters {
		parts = append(parts, fmt.Sprintf("%s~%q", f.Column, f.Text))
	}
	if v.Search != nil {
		parts = append(parts, fmt.Sprintf("%s: %s=/%s/", v.Labels.Search, v.Search.Column, v.Search.Pattern))
	}
	return strings.Join(parts, "  ")
}

// View renders the model.
func (m *Model) View() string {
	v := m.grid.Snapshot()
	var b strings.Builder

	b.WriteString(m.styles.title.Render("gridview"))
	if c := criteria(v); c != "" {
		b.WriteString("  " + m.styles.muted.Render(c))
	}
	b.WriteString("\n")

	switch {
	case v.Loading:
		b.WriteString(m.spinner.View() + " " + v.Labels.Loading + "\n")
	case len(v.Rows) == 0:
		b.WriteString(m.styles.muted.Render(v.Labels.NoData) + "\n")
	default:
		b.WriteString(m.table.View() + "\n")
	}

	if content := m.detail.View(); strings.TrimSpace(content) != "" {
		b.WriteString(m.styles.detail.Render(content) + "\n")
	}

	b.WriteString(m.styles.muted.Render(pager(v)) + "\n")

	if m.status != "" {
		b.WriteString(m.styles.errorMsg.Render(m.status) + "\n")
	}
	if m.mode != inputNone {
		b.WriteString(m.input.View() + "\n")
	}
	b.WriteString(m.help.View(m.keys))
	return b.String()
}
