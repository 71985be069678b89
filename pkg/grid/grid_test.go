package grid

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testColumns() []Column {
	return []Column{
		{Name: "name", Title: "Name", Sortable: true, Filter: FilterText},
		{Name: "status", Sortable: true, Filter: FilterEnumerated},
		{Name: "age", Sortable: true, SortType: SortNumber},
		{Name: "secret", Hidden: true},
	}
}

func numberedRecords(n int) []Record {
	out := make([]Record, n)
	for i := range out {
		out[i] = NewRecord(fmt.Sprint(i+1), map[string]any{
			"name": fmt.Sprintf("row %02d", i+1),
			"age":  i + 1,
		})
	}
	return out
}

func ids(records []Record) []string {
	out := make([]string, len(records))
	for i, r := range records {
		out[i] = r.ID
	}
	return out
}

// recorder collects grid events.
type recorder struct {
	events []Event
}

func (r *recorder) record(ev Event) { r.events = append(r.events, ev) }

func (r *recorder) kinds() []EventKind {
	out := make([]EventKind, len(r.events))
	for i, ev := range r.events {
		out[i] = ev.Kind()
	}
	return out
}

func newAttached(t *testing.T, records []Record, opts ...Option) (*Grid, *MemorySource, *recorder) {
	t.Helper()
	src := NewMemorySource(records...)
	g := New(testColumns(), opts...)
	g.Attach(src)
	rec := &recorder{}
	cancel := g.Subscribe(rec.record)
	t.Cleanup(cancel)
	return g, src, rec
}

func TestNew_ColumnModel(t *testing.T) {
	g := New(append(testColumns(), Column{Name: "name"}, Column{}))

	cols := g.Columns()
	require.Len(t, cols, 4, "duplicate and unnamed columns are dropped")
	assert.Equal(t, "Name", cols[0].Label())
	assert.Equal(t, "status", cols[1].Label(), "title falls back to name")

	visible := g.VisibleColumns()
	assert.Len(t, visible, 3)
	for _, c := range visible {
		assert.NotEqual(t, "secret", c.Name)
	}

	assert.Equal(t, 1, g.CurrentPage())
	assert.Equal(t, 1, g.PageCount())
	assert.Equal(t, ShowAll, g.PageSize())
	assert.Empty(t, g.VisibleSlice())
}

func TestPaging_LastPage(t *testing.T) {
	g, _, rec := newAttached(t, numberedRecords(25), WithPageSize(10))

	assert.Equal(t, 3, g.PageCount())
	require.True(t, g.SetPage(LastPage))
	assert.Equal(t, 3, g.CurrentPage())

	rows := g.VisibleSlice()
	assert.Len(t, rows, 5)
	assert.Equal(t, []string{"21", "22", "23", "24", "25"}, ids(rows))

	require.Len(t, rec.events, 1)
	assert.Equal(t, PageChanged{Page: 3, PageCount: 3, PageSize: 10}, rec.events[0])
}

func TestSetPage(t *testing.T) {
	tests := []struct {
		name    string
		start   int
		req     PageRequest
		want    int
		changed bool
	}{
		{"next", 1, NextPage, 2, true},
		{"prev from first", 1, PrevPage, 1, false},
		{"next from last", 3, NextPage, 3, false},
		{"absolute", 1, Page(2), 2, true},
		{"zero", 2, Page(0), 2, false},
		{"beyond", 2, Page(4), 2, false},
		{"same page", 2, Page(2), 2, false},
		{"first", 3, FirstPage, 1, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, _, _ := newAttached(t, numberedRecords(25), WithPageSize(10))
			if tt.start != 1 {
				require.True(t, g.SetPage(Page(tt.start)))
			}
			assert.Equal(t, tt.changed, g.SetPage(tt.req))
			assert.Equal(t, tt.want, g.CurrentPage())
		})
	}
}

func TestSetPage_Idempotent(t *testing.T) {
	g, _, rec := newAttached(t, numberedRecords(25), WithPageSize(10))

	assert.True(t, g.SetPage(Page(2)))
	assert.False(t, g.SetPage(Page(2)))
	assert.False(t, g.SetPage(Page(2)))
	assert.Equal(t, 2, g.CurrentPage())
	assert.Len(t, rec.events, 1, "repeated page requests emit once")
}

func TestSetPageSize(t *testing.T) {
	g, _, rec := newAttached(t, numberedRecords(25), WithPageSize(10))
	require.True(t, g.SetPage(LastPage))
	rec.events = nil

	assert.False(t, g.SetPageSize(-5), "negative size ignored")
	assert.False(t, g.SetPageSize(10), "same size")

	require.True(t, g.SetPageSize(20))
	assert.Equal(t, 2, g.PageCount())
	assert.Equal(t, 2, g.CurrentPage(), "page clamped")

	require.True(t, g.SetPageSize(ShowAll))
	assert.Equal(t, 1, g.PageCount())
	assert.Equal(t, 1, g.CurrentPage())
	assert.Len(t, g.VisibleSlice(), 25)

	assert.Equal(t, []EventKind{KindPageChanged, KindPageChanged}, rec.kinds())
}

func TestApplyFilter_Enumerated(t *testing.T) {
	records := numberedRecords(10)
	for _, i := range []int{0, 3, 5, 9} {
		records[i].Fields["status"] = "active"
	}
	records[1].Fields["status"] = "inactive"

	g, _, rec := newAttached(t, records, WithPageSize(10))

	require.True(t, g.ApplyFilter("status", "active"))
	assert.Equal(t, 4, g.FilteredCount())
	assert.Equal(t, 1, g.PageCount())
	assert.Equal(t, []string{"1", "4", "6", "10"}, ids(g.VisibleSlice()))
	assert.Equal(t, 10, g.TotalCount())

	assert.False(t, g.ApplyFilter("status", " active "), "same filter is idempotent")
	assert.Equal(t, 4, g.FilteredCount())

	require.Len(t, rec.events, 1)
	assert.Equal(t, Filtered{FilteredCount: 4}, rec.events[0])
}

func TestApplyFilter_Text(t *testing.T) {
	records := []Record{
		NewRecord("a", map[string]any{"name": "Alice"}),
		NewRecord("b", map[string]any{"name": "MALICE"}),
		NewRecord("c", map[string]any{"name": "Bob"}),
		NewRecord("d", map[string]any{}),
	}

	tests := []struct {
		name string
		text string
		want []string
	}{
		{"case insensitive", "alic", []string{"a", "b"}},
		{"upper query", "BOB", []string{"c"}},
		{"no match", "zed", nil},
		{"blank clears", "   ", []string{"a", "b", "c", "d"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, _, _ := newAttached(t, records)
			g.ApplyFilter("name", tt.text)
			got := ids(g.VisibleSlice())
			if tt.want == nil {
				assert.Empty(t, got)
				return
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestApplyFilter_Ignored(t *testing.T) {
	g, _, rec := newAttached(t, numberedRecords(5))

	assert.False(t, g.ApplyFilter("nope", "x"), "unknown column")
	assert.False(t, g.ApplyFilter("age", "1"), "non-filterable column")
	assert.False(t, g.ApplyFilter("name", ""), "clearing absent filter")
	assert.Empty(t, rec.events)
}

func TestApplyFilter_CombinesAndClampsPage(t *testing.T) {
	records := numberedRecords(30)
	for i := range records {
		if i%2 == 0 {
			records[i].Fields["status"] = "even"
		} else {
			records[i].Fields["status"] = "odd"
		}
	}
	g, _, _ := newAttached(t, records, WithPageSize(10))
	require.True(t, g.SetPage(LastPage))

	require.True(t, g.ApplyFilter("status", "odd"))
	assert.Equal(t, 15, g.FilteredCount())
	assert.Equal(t, 2, g.CurrentPage(), "page clamped to new page count")

	require.True(t, g.ApplyFilter("name", "row 1"))
	assert.Equal(t, []string{"10", "12", "14", "16", "18"}, ids(g.VisibleSlice()))
	assert.Equal(t, 1, g.CurrentPage())

	assert.Equal(t, []Filter{{Column: "status", Text: "odd"}, {Column: "name", Text: "row 1"}}, g.Filters())

	require.True(t, g.ApplyFilter("status", "even"), "update in place")
	assert.Equal(t, []Filter{{Column: "status", Text: "even"}, {Column: "name", Text: "row 1"}}, g.Filters())
}

func TestSearch(t *testing.T) {
	records := []Record{
		NewRecord("1", map[string]any{"name": "alpha.txt", "secret": "x"}),
		NewRecord("2", map[string]any{"name": "beta.log"}),
		NewRecord("3", map[string]any{"name": "ALPHA-2"}),
	}

	tests := []struct {
		name    string
		column  string
		pattern string
		changed bool
		want    []string
	}{
		{"regexp", "name", "^alpha", true, []string{"1", "3"}},
		{"literal fallback", "name", "a.txt(", true, nil},
		{"dot matches", "name", "a.txt", true, []string{"1"}},
		{"hidden column", "secret", "x", false, []string{"1", "2", "3"}},
		{"unknown column", "zzz", "x", false, []string{"1", "2", "3"}},
		{"blank", "name", "", false, []string{"1", "2", "3"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, _, _ := newAttached(t, records)
			assert.Equal(t, tt.changed, g.Search(tt.column, tt.pattern))
			got := ids(g.VisibleSlice())
			if tt.want == nil {
				assert.Empty(t, got)
				return
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSearch_Clear(t *testing.T) {
	g, _, _ := newAttached(t, numberedRecords(5))
	require.True(t, g.Search("name", "row 03"))
	assert.Equal(t, 1, g.FilteredCount())

	s, ok := g.CurrentSearch()
	require.True(t, ok)
	assert.Equal(t, SearchSpec{Column: "name", Pattern: "row 03"}, s)

	require.True(t, g.Search("name", " "))
	assert.Equal(t, 5, g.FilteredCount())
	_, ok = g.CurrentSearch()
	assert.False(t, ok)
}

func TestFilterOptions(t *testing.T) {
	records := []Record{
		NewRecord("1", map[string]any{"status": "open"}),
		NewRecord("2", map[string]any{"status": "closed"}),
		NewRecord("3", map[string]any{"status": "open"}),
		NewRecord("4", map[string]any{}),
	}
	g, _, _ := newAttached(t, records)

	assert.Equal(t, []string{"open", "closed"}, g.FilterOptions("status"))
	assert.Nil(t, g.FilterOptions("age"))
	assert.Nil(t, g.FilterOptions("missing"))
}

func TestToggleSelect(t *testing.T) {
	records := numberedRecords(4)
	records[3].Disabled = true
	g, _, rec := newAttached(t, records)

	assert.True(t, g.ToggleSelect("1", false))
	assert.False(t, g.ToggleSelect("1", false), "already the only selection")
	assert.True(t, g.ToggleSelect("2", false))
	assert.Equal(t, []string{"2"}, g.SelectedIDs())

	assert.True(t, g.ToggleSelect("3", true))
	assert.Equal(t, []string{"2", "3"}, g.SelectedIDs())
	assert.True(t, g.ToggleSelect("2", true))
	assert.Equal(t, []string{"3"}, g.SelectedIDs())

	assert.False(t, g.ToggleSelect("4", true), "disabled")
	assert.False(t, g.ToggleSelect("99", true), "unknown")

	assert.Len(t, rec.events, 4)
	assert.Equal(t, SelectionChanged{Selected: []string{"3"}}, rec.events[3])

	sel := g.Selected()
	require.Len(t, sel, 1)
	assert.Equal(t, "3", sel[0].ID)
	assert.True(t, g.IsSelected("3"))
}

func TestSelectAll_OnlyVisibleRows(t *testing.T) {
	g, _, _ := newAttached(t, numberedRecords(3), WithMultiselect(), WithPageSize(2))

	require.True(t, g.ToggleSelect("1", true))
	require.True(t, g.ToggleSelect("3", true))
	assert.Equal(t, []string{"1", "2"}, ids(g.VisibleSlice()))

	require.True(t, g.SelectAll(false))
	assert.Equal(t, []string{"3"}, g.SelectedIDs())

	require.True(t, g.SelectAll(true))
	assert.Equal(t, []string{"1", "2", "3"}, g.SelectedIDs())
	assert.False(t, g.SelectAll(true))
}

func TestSelectAll_SkipsDisabledAndRequiresMultiselect(t *testing.T) {
	records := numberedRecords(3)
	records[1].Disabled = true

	g, _, _ := newAttached(t, records)
	assert.False(t, g.SelectAll(true), "single-select grid")

	g, _, _ = newAttached(t, records, WithMultiselect())
	require.True(t, g.SelectAll(true))
	assert.Equal(t, []string{"1", "3"}, g.SelectedIDs())

	require.True(t, g.ClearSelection())
	assert.Empty(t, g.SelectedIDs())
	assert.False(t, g.ClearSelection())
}

func TestRemove_PrunesSelectionOnce(t *testing.T) {
	g, src, rec := newAttached(t, numberedRecords(5), WithMultiselect())
	require.True(t, g.ToggleSelect("2", true))
	require.True(t, g.ToggleSelect("4", true))
	rec.events = nil

	src.Remove("2")

	assert.Equal(t, []string{"4"}, g.SelectedIDs())
	assert.Equal(t, 4, g.TotalCount())

	var selEvents []Event
	for _, ev := range rec.events {
		if ev.Kind() == KindSelectionChanged {
			selEvents = append(selEvents, ev)
		}
	}
	require.Len(t, selEvents, 1)
	assert.Equal(t, SelectionChanged{Selected: []string{"4"}}, selEvents[0])

	src.Remove("2")
	assert.Equal(t, []string{"4"}, g.SelectedIDs())
}

func TestRecordsRemoved_ClampsPage(t *testing.T) {
	g, _, _ := newAttached(t, numberedRecords(25), WithPageSize(10))
	require.True(t, g.SetPage(LastPage))

	g.RecordsRemoved([]string{"21", "22", "23", "24", "25"})
	assert.Equal(t, 2, g.PageCount())
	assert.Equal(t, 2, g.CurrentPage())
}

func TestRecordsAdded_Upserts(t *testing.T) {
	g := New(testColumns())
	g.RecordsAdded(numberedRecords(2))
	g.RecordsAdded([]Record{
		NewRecord("2", map[string]any{"name": "changed"}),
		NewRecord("3", map[string]any{"name": "new"}),
		{Fields: map[string]any{"name": "no id"}},
	})

	rows := g.VisibleSlice()
	assert.Equal(t, []string{"1", "2", "3"}, ids(rows))
	assert.Equal(t, "changed", rows[1].Get("name"))

	g.Reset(numberedRecords(1))
	assert.Equal(t, 1, g.TotalCount())
}

func TestToggleExpand(t *testing.T) {
	t.Run("disabled without subgrid", func(t *testing.T) {
		g, _, _ := newAttached(t, numberedRecords(3))
		assert.False(t, g.ToggleExpand("1"))
	})

	t.Run("accordion collapses previous and selection follows", func(t *testing.T) {
		g, _, rec := newAttached(t, numberedRecords(3), WithSubgrid(true))

		require.True(t, g.ToggleExpand("1"))
		require.True(t, g.ToggleExpand("2"))
		assert.Equal(t, []string{"2"}, g.ExpandedIDs())
		assert.Equal(t, []string{"2"}, g.SelectedIDs())

		assert.Equal(t, []Event{
			ExpansionChanged{ID: "1", Expanded: true},
			SelectionChanged{Selected: []string{"1"}},
			ExpansionChanged{ID: "1", Expanded: false},
			ExpansionChanged{ID: "2", Expanded: true},
			SelectionChanged{Selected: []string{"2"}},
		}, rec.events)

		require.True(t, g.ToggleExpand("2"))
		assert.Empty(t, g.ExpandedIDs())
		assert.Empty(t, g.SelectedIDs())
	})

	t.Run("accordion selection skips disabled rows", func(t *testing.T) {
		records := numberedRecords(3)
		records[1].Disabled = true
		g, _, rec := newAttached(t, records, WithSubgrid(true))

		require.False(t, g.ToggleSelect("2", false))
		require.True(t, g.ToggleExpand("2"))
		assert.Equal(t, []string{"2"}, g.ExpandedIDs())
		assert.Empty(t, g.SelectedIDs())
		assert.Equal(t, []Event{ExpansionChanged{ID: "2", Expanded: true}}, rec.events)
	})

	t.Run("per row tracking", func(t *testing.T) {
		g, _, _ := newAttached(t, numberedRecords(3), WithSubgrid(false))
		require.True(t, g.ToggleExpand("1"))
		require.True(t, g.ToggleExpand("3"))
		assert.Equal(t, []string{"1", "3"}, g.ExpandedIDs())
		assert.Empty(t, g.SelectedIDs())
		assert.False(t, g.ToggleExpand("nope"))
	})

	t.Run("removal prunes expansion", func(t *testing.T) {
		g, src, rec := newAttached(t, numberedRecords(3), WithSubgrid(false))
		require.True(t, g.ToggleExpand("2"))
		rec.events = nil

		src.Remove("2")
		assert.False(t, g.IsExpanded("2"))
		assert.Contains(t, rec.events, Event(ExpansionChanged{ID: "2", Expanded: false}))
	})
}

func TestActivate(t *testing.T) {
	g, _, rec := newAttached(t, numberedRecords(2))
	assert.True(t, g.Activate("2"))
	assert.False(t, g.Activate("x"))
	assert.Equal(t, []Event{RowActivated{ID: "2"}}, rec.events)
}

func TestSubscribe_Cancel(t *testing.T) {
	g, _, _ := newAttached(t, numberedRecords(2))
	var n int
	cancel := g.Subscribe(func(Event) { n++ })
	g.Activate("1")
	cancel()
	cancel()
	g.Activate("1")
	assert.Equal(t, 1, n)
}

func TestSnapshot(t *testing.T) {
	g, _, _ := newAttached(t, numberedRecords(12), WithPageSize(5), WithRowList(5, 10, 0), WithMultiselect(), WithLang("ru"))
	require.True(t, g.ToggleSelect("2", true))
	require.True(t, g.ApplySort("age", false))
	require.True(t, g.ApplySort("age", false))

	v := g.Snapshot()
	assert.Equal(t, []string{"12", "11", "10", "9", "8"}, ids(v.Rows))
	assert.Len(t, v.Columns, 3)
	assert.True(t, v.Selected["2"])
	assert.Equal(t, 1, v.Page)
	assert.Equal(t, 3, v.PageCount)
	assert.Equal(t, 5, v.PageSize)
	assert.Equal(t, []int{5, 10, 0}, v.RowList)
	assert.Equal(t, 12, v.FilteredCount)
	assert.Equal(t, 12, v.TotalCount)
	assert.True(t, v.Multiselect)
	assert.Equal(t, "Стр", v.Labels.Page)
	assert.Equal(t, Descending, v.SortDirection("age"))
	assert.Equal(t, Unsorted, v.SortDirection("name"))
	assert.Nil(t, v.Search)

	var got View
	require.NoError(t, g.Render(RendererFunc(func(v View) error {
		got = v
		return nil
	})))
	assert.Equal(t, v.Rows, got.Rows)
}

func TestDetach_DiscardsState(t *testing.T) {
	g, src, _ := newAttached(t, numberedRecords(3))
	require.True(t, g.ToggleSelect("1", false))
	g.Detach()

	assert.Nil(t, g.Source())
	assert.Equal(t, 0, g.TotalCount())
	assert.Empty(t, g.SelectedIDs())

	src.Add(NewRecord("9", nil))
	assert.Equal(t, 0, g.TotalCount(), "no longer subscribed")
}

func TestView_Detail(t *testing.T) {
	records := []Record{NewRecord("1", map[string]any{
		"name":   "Ann",
		"age":    30,
		"secret": "s3cr3t",
		"note":   nil,
	})}
	g, _, _ := newAttached(t, records, WithSubgrid(false))

	v := g.Snapshot()
	assert.Equal(t, []string{"secret"}, v.Hidden)
	assert.Equal(t, []Field{
		{Name: "age", Value: "30"},
		{Name: "name", Value: "Ann"},
		{Name: "note", Value: ""},
	}, v.Detail(records[0]))
}
