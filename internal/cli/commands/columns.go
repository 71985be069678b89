package commands

import (
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/leapstack-labs/gridview/internal/cli/output"
	"github.com/leapstack-labs/gridview/pkg/grid"
	"github.com/spf13/cobra"
)

// ColumnInfo describes a column of the grid for listing.
type ColumnInfo struct {
	Name     string   `json:"name"`
	Title    string   `json:"title"`
	Sortable bool     `json:"sortable"`
	SortType string   `json:"sort_type"`
	Filter   string   `json:"filter"`
	Hidden   bool     `json:"hidden,omitempty"`
	Options  []string `json:"options,omitempty"`
}

// NewColumnsCommand creates the columns command.
func NewColumnsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "columns",
		Short: "List the column model",
		Long: `List the grid's columns with their sort and filter settings.

Enumerated filters also show the distinct values they accept.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := NewCommandContext(cmd)
			session, err := ctx.OpenSession(cmd.Context())
			if err != nil {
				return err
			}
			defer func() { _ = session.Close() }()

			return renderColumns(ctx.Renderer, columnInfos(session.Grid))
		},
	}

	return cmd
}

func columnInfos(g *grid.Grid) []ColumnInfo {
	cols := g.Columns()
	infos := make([]ColumnInfo, 0, len(cols))
	for _, c := range cols {
		info := ColumnInfo{
			Name:     c.Name,
			Title:    c.Label(),
			Sortable: c.Sortable,
			SortType: c.SortType.String(),
			Filter:   c.Filter.String(),
			Hidden:   c.Hidden,
		}
		if c.Filter == grid.FilterEnumerated {
			info.Options = g.FilterOptions(c.Name)
		}
		infos = append(infos, info)
	}
	return infos
}

func renderColumns(r *output.Renderer, infos []ColumnInfo) error {
	switch r.EffectiveMode() {
	case output.ModeJSON:
		return r.JSON(infos)
	case output.ModeMarkdown:
		r.Println(output.FormatHeader(2, "Columns"))
		for _, c := range infos {
			r.Println(output.FormatKeyValue(c.Name, columnSummary(c)))
		}
		return nil
	}

	t := table.NewWriter()
	t.SetOutputMirror(r.Writer())
	t.SetStyle(table.StyleLight)
	t.Style().Format.Header = text.FormatDefault
	t.AppendHeader(table.Row{"Name", "Title", "Sort", "Filter", "Options"})
	for _, c := range infos {
		sort := "-"
		if c.Sortable {
			sort = c.SortType
		}
		name := c.Name
		if c.Hidden {
			name += " (hidden)"
		}
		t.AppendRow(table.Row{name, c.Title, sort, c.Filter, strings.Join(c.Options, " | ")})
	}
	if r.EffectiveMode() == output.ModeCSV {
		t.RenderCSV()
	} else {
		t.Render()
	}
	return nil
}

func columnSummary(c ColumnInfo) string {
	s := c.Title
	if c.Sortable {
		s += ", sort " + c.SortType
	}
	if c.Filter != grid.FilterNone.String() {
		s += ", filter " + c.Filter
	}
	if len(c.Options) > 0 {
		s += " (" + strings.Join(c.Options, " | ") + ")"
	}
	if c.Hidden {
		s += ", hidden"
	}
	return s
}
