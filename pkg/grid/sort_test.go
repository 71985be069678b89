package grid

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sortFixture() []Record {
	return []Record{
		NewRecord("1", map[string]any{"name": "bob", "status": "b", "age": 30}),
		NewRecord("2", map[string]any{"name": "Alice", "status": "a", "age": "9"}),
		NewRecord("3", map[string]any{"name": "carol", "status": "b", "age": 4.5}),
		NewRecord("4", map[string]any{"name": "alice", "status": "a", "age": "n/a"}),
		NewRecord("5", map[string]any{"name": "Dave", "status": "a", "age": 30}),
	}
}

func TestApplySort_ToggleCycle(t *testing.T) {
	g, _, _ := newAttached(t, sortFixture())

	require.True(t, g.ApplySort("name", false))
	first, _ := g.Column("name")
	require.True(t, g.ApplySort("name", false))
	second, _ := g.Column("name")
	require.True(t, g.ApplySort("name", false))
	third, _ := g.Column("name")

	assert.Equal(t, Ascending, first.SortOrder)
	assert.Equal(t, Descending, second.SortOrder)
	assert.Equal(t, first.SortOrder, third.SortOrder, "two-state toggle")
}

func TestApplySort_Ignored(t *testing.T) {
	g, _, rec := newAttached(t, sortFixture())
	assert.False(t, g.ApplySort("secret", false), "not sortable")
	assert.False(t, g.ApplySort("missing", true), "unknown")
	assert.Empty(t, rec.events)
	assert.Empty(t, g.SortKeys())
}

func TestApplySort_Orders(t *testing.T) {
	tests := []struct {
		name  string
		sorts []string
		multi bool
		want  []string
	}{
		{
			name:  "string ascending is case folded and stable",
			sorts: []string{"name"},
			want:  []string{"2", "4", "1", "3", "5"},
		},
		{
			name:  "string descending keeps ties in source order",
			sorts: []string{"name", "name"},
			want:  []string{"5", "3", "1", "2", "4"},
		},
		{
			name:  "number puts non numeric first",
			sorts: []string{"age"},
			want:  []string{"4", "3", "2", "1", "5"},
		},
		{
			name:  "multi sort primary is last toggled",
			sorts: []string{"name", "status"},
			multi: true,
			want:  []string{"2", "4", "5", "1", "3"},
		},
		{
			name:  "single sort replaces previous key",
			sorts: []string{"age", "status"},
			want:  []string{"2", "4", "5", "1", "3"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, _, _ := newAttached(t, sortFixture())
			for _, col := range tt.sorts {
				require.True(t, g.ApplySort(col, tt.multi))
			}
			assert.Equal(t, tt.want, ids(g.VisibleSlice()))
		})
	}
}

func TestApplySort_SingleClearsOtherColumns(t *testing.T) {
	g, _, _ := newAttached(t, sortFixture())
	require.True(t, g.ApplySort("name", true))
	require.True(t, g.ApplySort("age", true))
	require.True(t, g.ApplySort("status", false))

	var sorted []string
	for _, c := range g.Columns() {
		if c.SortOrder != Unsorted {
			sorted = append(sorted, c.Name)
		}
	}
	assert.Equal(t, []string{"status"}, sorted)
	assert.Equal(t, []SortKey{{Column: "status", Direction: Ascending}}, g.SortKeys())
}

func TestApplySort_MultiMovesKeyToFront(t *testing.T) {
	g, _, rec := newAttached(t, sortFixture())
	require.True(t, g.ApplySort("name", true))
	require.True(t, g.ApplySort("age", true))
	require.True(t, g.ApplySort("status", true))
	require.True(t, g.ApplySort("age", true))

	want := []SortKey{
		{Column: "age", Direction: Descending},
		{Column: "status", Direction: Ascending},
		{Column: "name", Direction: Ascending},
	}
	assert.Equal(t, want, g.SortKeys())
	require.Len(t, rec.events, 4)
	assert.Equal(t, Sorted{Keys: want}, rec.events[3])
}

func TestSortGroups_Recursive(t *testing.T) {
	records := []Record{
		NewRecord("1", map[string]any{"status": "b", "age": 2}),
		NewRecord("2", map[string]any{"status": "a", "age": 3}),
		NewRecord("3", map[string]any{"status": "b", "age": 1}),
		NewRecord("4", map[string]any{"status": "a", "age": 1}),
	}
	g, _, _ := newAttached(t, records)
	require.True(t, g.ApplySort("age", true))
	require.True(t, g.ApplySort("age", true))
	require.True(t, g.ApplySort("status", true))

	assert.Equal(t, []string{"2", "4", "1", "3"}, ids(g.VisibleSlice()))
}

func TestDirection(t *testing.T) {
	assert.Equal(t, Ascending, Unsorted.Toggle())
	assert.Equal(t, Descending, Ascending.Toggle())
	assert.Equal(t, Ascending, Descending.Toggle())
	assert.Equal(t, Descending, ParseDirection(" DESC "))
	assert.Equal(t, Unsorted, ParseDirection("sideways"))

	text, err := Descending.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "desc", string(text))
}
