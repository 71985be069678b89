package commands

import (
	"context"
	"errors"
	"os"
	"os/signal"

	"github.com/leapstack-labs/gridview/internal/tui"
	"github.com/spf13/cobra"
)

// NewViewCommand creates the view command.
func NewViewCommand() *cobra.Command {
	var watch bool

	cmd := &cobra.Command{
		Use:   "view",
		Short: "Browse the grid in the terminal",
		Long: `Open the grid full screen in the terminal.

Arrow keys move between rows and columns. Press f1 for the key map.
File sources configured with watch: true, or opened with --watch, reload
when the file changes.`,
		Example: `  # Browse the configured source
  gridview view

  # Browse a dataset file, reloading on change
  gridview view --source data/users.yaml --watch`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cc := NewCommandContext(cmd)
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()

			session, err := cc.OpenSession(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = session.Close() }()

			if watch || cc.Cfg.Source.Watch {
				watchSource(ctx, cc, session)
			}

			return tui.Run(ctx, session.Grid, session.Source, cc.Logger)
		},
	}

	cmd.Flags().BoolVar(&watch, "watch", false, "Reload the source when it changes")

	return cmd
}

// watchSource reloads the session's source in the background until ctx
// is done. Sources that cannot watch are left alone.
func watchSource(ctx context.Context, cc *CommandContext, session *Session) {
	if !session.Source.Watchable() {
		cc.Logger.Debug("source is not watchable", "type", cc.Cfg.Source.Type)
		return
	}
	go func() {
		if err := session.Source.Watch(ctx); err != nil && !errors.Is(err, context.Canceled) {
			cc.Logger.Warn("stopped watching source", "error", err)
		}
	}()
}
