package commands

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/leapstack-labs/gridview/internal/cli/config"
	"github.com/leapstack-labs/gridview/internal/cli/output"
	clitest "github.com/leapstack-labs/gridview/internal/cli/testutil"
	"github.com/leapstack-labs/gridview/internal/testutil"
	"github.com/leapstack-labs/gridview/pkg/grid"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newUsersGrid(t *testing.T, opts ...grid.Option) *grid.Grid {
	t.Helper()
	src := grid.NewMemorySource(testutil.Users(12)...)
	g := grid.New(testutil.UserColumns(), opts...)
	g.Attach(src)
	return g
}

// loadProject writes the named template to a temp dir and loads it as the
// current configuration.
func loadProject(t *testing.T, template, outputFormat string) *config.Config {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, copyTemplate(template, dir, false))

	config.ResetConfig()
	t.Cleanup(config.ResetConfig)
	cfg, err := config.LoadConfig(filepath.Join(dir, "gridview.yaml"), nil)
	require.NoError(t, err)
	cfg.OutputFormat = outputFormat
	return cfg
}

func execute(t *testing.T, cmd *cobra.Command, args ...string) (string, error) {
	t.Helper()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

func TestCommandMetadata(t *testing.T) {
	tests := []struct {
		cmd   *cobra.Command
		use   string
		flags []string
	}{
		{NewExportCommand(), "export", []string{"page", "rows", "sort", "filter", "search", "select", "expand", "all", "no-detail"}},
		{NewColumnsCommand(), "columns", nil},
		{NewViewCommand(), "view", []string{"watch"}},
		{NewShellCommand(), "shell", nil},
		{NewServeCommand(), "serve", []string{"port", "no-watch", "open"}},
		{NewImportCommand(), "import <file|url>", []string{"into", "replace"}},
	}

	for _, tt := range tests {
		t.Run(tt.use, func(t *testing.T) {
			assert.Equal(t, tt.use, tt.cmd.Use)
			assert.NotEmpty(t, tt.cmd.Short, "Short should not be empty")
			for _, flag := range tt.flags {
				assert.NotNil(t, tt.cmd.Flags().Lookup(flag), "flag %q should exist", flag)
			}
		})
	}
}

func TestViewFlags_Apply(t *testing.T) {
	tests := []struct {
		name    string
		flags   viewFlags
		wantErr string
		check   func(t *testing.T, g *grid.Grid)
	}{
		{
			name:  "sort descending",
			flags: viewFlags{pageSize: -1, sorts: []string{"age:desc"}},
			check: func(t *testing.T, g *grid.Grid) {
				assert.Equal(t, []grid.SortKey{{Column: "age", Direction: grid.Descending}}, g.SortKeys())
				assert.Equal(t, "12", g.VisibleSlice()[0].ID)
			},
		},
		{
			name:  "multi sort",
			flags: viewFlags{pageSize: -1, sorts: []string{"rol", "age:desc"}},
			check: func(t *testing.T, g *grid.Grid) {
				keys := g.SortKeys()
				require.Len(t, keys, 2)
				assert.Equal(t, "age", keys[0].Column)
				assert.Equal(t, "rol", keys[1].Column)
			},
		},
		{
			name:  "filter and page",
			flags: viewFlags{pageSize: 2, filters: []string{"rol=viewer"}, page: "last"},
			check: func(t *testing.T, g *grid.Grid) {
				assert.Equal(t, 4, g.FilteredCount())
				assert.Equal(t, 2, g.CurrentPage())
			},
		},
		{
			name:  "search",
			flags: viewFlags{pageSize: -1, search: "name=user 1[01]"},
			check: func(t *testing.T, g *grid.Grid) {
				assert.Equal(t, 2, g.FilteredCount())
			},
		},
		{
			name:  "select and expand",
			flags: viewFlags{pageSize: -1, selects: []string{"1", "2"}, expands: []string{"3"}},
			check: func(t *testing.T, g *grid.Grid) {
				assert.Equal(t, []string{"1", "2"}, g.SelectedIDs())
				assert.True(t, g.IsExpanded("3"))
			},
		},
		{
			name:  "all rows",
			flags: viewFlags{pageSize: -1, all: true},
			check: func(t *testing.T, g *grid.Grid) {
				assert.Equal(t, grid.ShowAll, g.PageSize())
				assert.Len(t, g.VisibleSlice(), 12)
			},
		},
		{name: "malformed filter", flags: viewFlags{pageSize: -1, filters: []string{"rol"}}, wantErr: "expected column=text"},
		{name: "unfilterable column", flags: viewFlags{pageSize: -1, filters: []string{"age=3"}}, wantErr: `column "age" has no filter`},
		{name: "unknown sort column", flags: viewFlags{pageSize: -1, sorts: []string{"nope"}}, wantErr: `unknown column "nope"`},
		{name: "page out of range", flags: viewFlags{pageSize: -1, page: "9"}, wantErr: "page 9 is out of range (1-3)"},
		{name: "invalid page", flags: viewFlags{pageSize: -1, page: "later"}, wantErr: `invalid page "later"`},
		{name: "disabled row", flags: viewFlags{pageSize: -1, selects: []string{"5"}}, wantErr: `cannot select row "5"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := newUsersGrid(t, grid.WithPageSize(5), grid.WithMultiselect(), grid.WithMultisort(), grid.WithSubgrid(false))

			err := tt.flags.apply(g)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			tt.check(t, g)
		})
	}
}

func TestApplySort_MultisortDisabled(t *testing.T) {
	g := newUsersGrid(t)
	require.NoError(t, applySort(g, "name", grid.Descending, false))
	assert.Equal(t, grid.Descending, currentDirection(g, "name"))

	err := applySort(g, "age", grid.Ascending, true)
	assert.EqualError(t, err, "multi-column sort is disabled")
}

func TestColumnInfos(t *testing.T) {
	g := newUsersGrid(t)
	infos := columnInfos(g)

	require.Len(t, infos, 3)
	assert.Equal(t, ColumnInfo{Name: "age", Title: "Age", Sortable: true, SortType: "number", Filter: "none"}, infos[1])
	assert.Equal(t, []string{"admin", "editor", "viewer"}, infos[2].Options)
}

func TestRenderColumns(t *testing.T) {
	infos := columnInfos(newUsersGrid(t))

	t.Run("markdown", func(t *testing.T) {
		r := clitest.NewTestRenderer(output.ModeAuto)
		require.NoError(t, renderColumns(r.Renderer, infos))

		out := r.Output()
		clitest.AssertValidMarkdown(t, out)
		clitest.AssertNoANSI(t, out)
		assert.Contains(t, out, "## Columns")
		assert.Contains(t, out, "- **rol:** Role, sort string, filter enumerated (admin | editor | viewer)")
	})

	t.Run("text", func(t *testing.T) {
		r := clitest.NewTestRenderer(output.ModeText)
		require.NoError(t, renderColumns(r.Renderer, infos))

		out := r.Output()
		clitest.AssertNoANSI(t, out)
		assert.Contains(t, out, "┌")
		assert.Contains(t, out, "admin | editor | viewer")
	})

	t.Run("csv", func(t *testing.T) {
		r := clitest.NewTestRenderer(output.ModeCSV)
		require.NoError(t, renderColumns(r.Renderer, infos))

		lines := clitest.CSVLines(r.Output())
		require.Len(t, lines, 4)
		assert.Equal(t, "Name,Title,Sort,Filter,Options", lines[0])
		assert.Equal(t, "age,Age,number,none,", lines[2])
	})
}

func TestExportCommand(t *testing.T) {
	loadProject(t, "minimal", "json")

	out, err := execute(t, NewExportCommand(), "--sort", "id:desc", "--rows", "2", "--select", "6")
	require.NoError(t, err)

	var got output.GridJSON
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, 6, got.TotalCount)
	assert.Equal(t, 3, got.PageCount)
	require.Len(t, got.Rows, 2)
	assert.Equal(t, "6", got.Rows[0].ID)
	assert.Equal(t, "6", got.Rows[0].Cells["id"])
	assert.True(t, got.Rows[0].Selected)
	assert.Equal(t, "Lena Novak", got.Rows[0].Cells["name"])
	assert.Equal(t, "desc", got.Columns[0].SortOrder)
}

func TestExportCommand_ExampleFormats(t *testing.T) {
	loadProject(t, "example", "csv")

	out, err := execute(t, NewExportCommand(), "--all")
	require.NoError(t, err)

	assert.Contains(t, out, "ID,Name,Status,Targets,Progress")
	assert.NotContains(t, out, "#ERR")
	assert.NotContains(t, out, "Owner", "hidden columns are not exported")
}

func TestExportCommand_NoSource(t *testing.T) {
	t.Chdir(t.TempDir())
	config.ResetConfig()
	t.Cleanup(config.ResetConfig)
	_, err := config.LoadConfig("", nil)
	require.NoError(t, err)

	_, err = execute(t, NewExportCommand())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no record source configured")
}

func TestColumnsCommand(t *testing.T) {
	loadProject(t, "minimal", "json")

	out, err := execute(t, NewColumnsCommand())
	require.NoError(t, err)

	var infos []ColumnInfo
	require.NoError(t, json.Unmarshal([]byte(out), &infos))
	require.Len(t, infos, 5)
	assert.Equal(t, "rol", infos[4].Name)
	assert.Equal(t, []string{"admin", "user", "auditor"}, infos[4].Options)
}
