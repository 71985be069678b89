package commands

import (
	"github.com/spf13/cobra"
)

// NewExportCommand creates the export command.
func NewExportCommand() *cobra.Command {
	var flags viewFlags
	var noDetail bool

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Print one page of the grid",
		Long: `Load the configured record source and print one page of the grid.

Filters, search, sort, paging, selection and expansion can be applied with
flags before the page is rendered. The output format follows --output:
a table on a terminal, markdown when piped, or csv and json on request.`,
		Example: `  # First page as a table
  gridview export

  # Second page sorted by name, descending
  gridview export --page 2 --sort name:desc

  # Filtered rows as JSON
  gridview export --filter rol=admin -o json

  # Every row as CSV
  gridview export --all -o csv`,
		Aliases: []string{"show"},
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := NewCommandContext(cmd)
			session, err := ctx.OpenSession(cmd.Context())
			if err != nil {
				return err
			}
			defer func() { _ = session.Close() }()

			if err := flags.apply(session.Grid); err != nil {
				return err
			}

			gr := ctx.Renderer.Grid()
			gr.Detail = !noDetail
			return session.Grid.Render(gr)
		},
	}

	flags.register(cmd)
	cmd.Flags().BoolVar(&noDetail, "no-detail", false, "Do not list fields below expanded rows")

	return cmd
}
