package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/leapstack-labs/gridview/internal/source/filesrc"
	"github.com/leapstack-labs/gridview/internal/source/httpsrc"
	"github.com/leapstack-labs/gridview/internal/starlark"
	"github.com/leapstack-labs/gridview/internal/state"
	"github.com/leapstack-labs/gridview/pkg/grid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSourceConfig_Validate(t *testing.T) {
	tests := []struct {
		name      string
		source    *SourceConfig
		errSubstr string
	}{
		{name: "nil", source: nil, errSubstr: "source is required"},
		{name: "no type", source: &SourceConfig{}, errSubstr: "source type is required"},
		{name: "file", source: &SourceConfig{Type: "file", Path: "users.json"}},
		{name: "file without path", source: &SourceConfig{Type: "file"}, errSubstr: "requires a path"},
		{name: "http", source: &SourceConfig{Type: "HTTP", URL: "http://localhost/users"}},
		{name: "http without url", source: &SourceConfig{Type: "http"}, errSubstr: "requires a url"},
		{name: "sqlite", source: &SourceConfig{Type: "sqlite", Path: ":memory:"}},
		{name: "unknown", source: &SourceConfig{Type: "kafka"}, errSubstr: "unknown source type"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.source.Validate()
			if tt.errSubstr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errSubstr)
		})
	}
}

func TestInferSourceType(t *testing.T) {
	tests := map[string]string{
		"data/users.json":           SourceFile,
		"data/users.YAML":           SourceFile,
		"records.db":                SourceSQLite,
		"records.sqlite3":           SourceSQLite,
		":memory:":                  SourceSQLite,
		"https://example.com/users": SourceHTTP,
		"HTTP://example.com/users":  SourceHTTP,
	}
	for in, want := range tests {
		assert.Equal(t, want, InferSourceType(in), in)
	}
}

func TestSourceConfig_ApplyDefaults(t *testing.T) {
	s := &SourceConfig{Path: "http://localhost:8080/users"}
	s.ApplyDefaults()
	assert.Equal(t, SourceHTTP, s.Type)
	assert.Equal(t, "http://localhost:8080/users", s.URL)
	assert.Empty(t, s.Path)

	s = &SourceConfig{Type: "File", Path: "users.json"}
	s.ApplyDefaults()
	assert.Equal(t, SourceFile, s.Type)
}

func TestValidateColumns(t *testing.T) {
	tests := []struct {
		name      string
		cols      []ColumnConfig
		errSubstr string
	}{
		{name: "valid", cols: []ColumnConfig{{Name: "a", SortType: "number", Filter: "select"}, {Name: "b"}}},
		{name: "missing name", cols: []ColumnConfig{{Title: "A"}}, errSubstr: "column name is required"},
		{name: "duplicate", cols: []ColumnConfig{{Name: "a"}, {Name: "a"}}, errSubstr: `duplicate column "a"`},
		{name: "bad sort type", cols: []ColumnConfig{{Name: "a", SortType: "date"}}, errSubstr: "unknown sort_type"},
		{name: "bad filter", cols: []ColumnConfig{{Name: "a", Filter: "fuzzy"}}, errSubstr: "unknown filter"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateColumns(tt.cols)
			if tt.errSubstr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errSubstr)
		})
	}
}

func TestGridConfig_Validate(t *testing.T) {
	assert.NoError(t, (*GridConfig)(nil).Validate())
	assert.NoError(t, (&GridConfig{PageSize: 0}).Validate())
	assert.Error(t, (&GridConfig{PageSize: -1}).Validate())
	assert.Error(t, (&GridConfig{RowList: []int{10, -5}}).Validate())
}

func TestGridConfig_Options(t *testing.T) {
	cfg := &GridConfig{
		PageSize:    5,
		RowList:     []int{5, 10},
		Multiselect: true,
		Subgrid:     true,
		Accordion:   true,
		Lang:        "ru",
	}
	g := grid.New([]grid.Column{{Name: "name"}}, cfg.Options()...)

	assert.Equal(t, 5, g.PageSize())
	assert.Equal(t, []int{5, 10}, g.RowList())
	assert.True(t, g.Multiselect())
	assert.False(t, g.Multisort())
	assert.True(t, g.Subgrid())
	assert.True(t, g.Accordion())
	assert.Equal(t, "Стр", g.Labels().Page)
}

func TestBuildColumns(t *testing.T) {
	f := starlark.NewFormatter(nil)
	cols, err := BuildColumns([]ColumnConfig{
		{Name: "name", Title: "Name", Sortable: true, Filter: "text"},
		{Name: "age", SortType: "number", Format: `str(row["age"]) + "y"`},
	}, f, nil)
	require.NoError(t, err)
	require.Len(t, cols, 2)

	assert.Equal(t, grid.FilterText, cols[0].Filter)
	assert.Equal(t, grid.SortNumber, cols[1].SortType)

	r := grid.NewRecord("1", map[string]any{"name": "Ann", "age": 30})
	assert.Equal(t, "30y", cols[1].DisplayValue(r))
	assert.Equal(t, "Ann", cols[0].DisplayValue(r))

	_, err = BuildColumns([]ColumnConfig{{Name: "bad", Format: "row["}}, f, nil)
	assert.Error(t, err)
}

func TestInferColumns(t *testing.T) {
	records := []grid.Record{
		grid.NewRecord("1", map[string]any{"name": "a", "age": 1}),
		grid.NewRecord("2", map[string]any{"email": "b@example.com"}),
	}
	cols := InferColumns(records)

	var names []string
	for _, c := range cols {
		names = append(names, c.Name)
	}
	assert.Equal(t, []string{"id", "age", "email", "name"}, names)
	assert.Equal(t, "2", cols[0].DisplayValue(records[1]))
}

func TestLoadFromDir(t *testing.T) {
	dir := t.TempDir()
	content := `
source:
  path: data/users.yaml
  watch: true
grid:
  page_size: 25
  multisort: true
columns:
  - name: name
    sortable: true
    filter: text
  - name: status
    filter: enumerated
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, ConfigFileName), []byte(content), 0o600))

	cfg, err := LoadFromDir(dir)
	require.NoError(t, err)
	require.NotNil(t, cfg)

	assert.Equal(t, SourceFile, cfg.Source.Type)
	assert.Equal(t, filepath.Join(dir, "data/users.yaml"), cfg.Source.Path)
	assert.True(t, cfg.Source.Watch)
	assert.Equal(t, 25, cfg.Grid.PageSize)
	assert.True(t, cfg.Grid.Multisort)
	assert.Equal(t, DefaultLang, cfg.Grid.Lang)
	assert.Equal(t, DefaultRowList, cfg.Grid.RowList)
	require.Len(t, cfg.Columns, 2)
	assert.Equal(t, "enumerated", cfg.Columns[1].Filter)
}

func TestLoadFromDir_NoConfig(t *testing.T) {
	cfg, err := LoadFromDir(t.TempDir())
	require.NoError(t, err)
	assert.Nil(t, cfg)
}

func TestFindProjectRoot(t *testing.T) {
	root := t.TempDir()
	nested := filepath.Join(root, "a", "b")
	require.NoError(t, os.MkdirAll(nested, 0o750))
	require.NoError(t, os.WriteFile(filepath.Join(root, ConfigFileNameAlt), []byte("grid: {}\n"), 0o600))

	assert.Equal(t, root, FindProjectRoot(nested))
	assert.Equal(t, filepath.Join(root, ConfigFileNameAlt), FindConfigFile(root))
}

func TestOpenSource(t *testing.T) {
	file, err := OpenSource(&SourceConfig{Type: SourceFile, Path: "users.json"}, nil)
	require.NoError(t, err)
	assert.IsType(t, &filesrc.Source{}, file.RecordSource)
	assert.True(t, file.Watchable())
	assert.NoError(t, file.Close())

	web, err := OpenSource(&SourceConfig{Type: SourceHTTP, URL: "http://localhost/users"}, nil)
	require.NoError(t, err)
	assert.IsType(t, &httpsrc.Source{}, web.RecordSource)
	assert.False(t, web.Watchable())
	assert.ErrorIs(t, web.Watch(t.Context()), ErrNotWatchable)

	db, err := OpenSource(&SourceConfig{Type: SourceSQLite, Path: ":memory:"}, nil)
	require.NoError(t, err)
	assert.IsType(t, &state.Source{}, db.RecordSource)
	assert.NoError(t, db.Close())

	_, err = OpenSource(&SourceConfig{Type: "kafka"}, nil)
	assert.Error(t, err)
}
