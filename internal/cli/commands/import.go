package commands

import (
	"fmt"
	"path/filepath"

	sharedcfg "github.com/leapstack-labs/gridview/internal/config"
	"github.com/leapstack-labs/gridview/internal/state"
	"github.com/leapstack-labs/gridview/pkg/grid"
	"github.com/spf13/cobra"
)

// DefaultStoreFile is the record store import writes to when --into is
// not given, relative to the project root.
const DefaultStoreFile = "gridview.db"

// NewImportCommand creates the import command.
func NewImportCommand() *cobra.Command {
	var into string
	var replace bool

	cmd := &cobra.Command{
		Use:   "import <file|url>",
		Short: "Import a dataset into a SQLite record store",
		Long: `Load records from a JSON or YAML file, an HTTP endpoint, or another
store, and write them into a SQLite record store.

Records are upserted by id and keep their collection order. Use --replace
to empty the store first. Point source.path at the store to browse it.`,
		Example: `  # Import a file into ./gridview.db
  gridview import data/users.yaml

  # Replace the contents of a named store with an API response
  gridview import https://api.example.com/users --into users.db --replace`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cc := NewCommandContext(cmd)
			ctx := cmd.Context()

			if into == "" {
				into = filepath.Join(cc.Cfg.ProjectRoot, DefaultStoreFile)
			}

			from := &sharedcfg.SourceConfig{Path: args[0]}
			from.ApplyDefaults()
			if from.Type == sharedcfg.SourceSQLite && samePath(from.Path, into) {
				return fmt.Errorf("cannot import %s into itself", into)
			}

			src, err := sharedcfg.OpenSource(from, cc.Logger)
			if err != nil {
				return err
			}
			defer func() { _ = src.Close() }()
			if err := grid.FetchAndWait(ctx, src); err != nil {
				return fmt.Errorf("failed to load %s: %w", args[0], err)
			}

			store := state.NewSQLiteStore(cc.Logger)
			if err := store.Open(into); err != nil {
				return fmt.Errorf("failed to open record store: %w", err)
			}
			defer func() { _ = store.Close() }()

			n, err := store.Import(ctx, src.Records(), replace)
			if err != nil {
				return err
			}
			total, err := store.CountRecords(ctx)
			if err != nil {
				return err
			}

			cc.Renderer.Success(fmt.Sprintf("Imported %d records into %s", n, into))
			cc.Renderer.Muted(fmt.Sprintf("%d records in store", total))
			return nil
		},
	}

	cmd.Flags().StringVar(&into, "into", "", "Record store to write (default: gridview.db in the project root)")
	cmd.Flags().BoolVar(&replace, "replace", false, "Delete existing records first")

	return cmd
}

func samePath(a, b string) bool {
	absA, errA := filepath.Abs(a)
	absB, errB := filepath.Abs(b)
	return errA == nil && errB == nil && absA == absB
}
