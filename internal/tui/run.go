package tui

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/leapstack-labs/gridview/pkg/grid"
)

// Run shows g full screen until the user quits or ctx is cancelled.
func Run(ctx context.Context, g *grid.Grid, src grid.RecordSource, logger *slog.Logger, opts ...tea.ProgramOption) error {
	m := New(ctx, g, src, logger)
	defer m.Close()

	opts = append([]tea.ProgramOption{tea.WithAltScreen(), tea.WithContext(ctx)}, opts...)
	if _, err := tea.NewProgram(m, opts...).Run(); err != nil {
		if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
			return nil
		}
		return fmt.Errorf("terminal UI failed: %w", err)
	}
	return nil
}
