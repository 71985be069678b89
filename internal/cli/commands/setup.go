package commands

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/leapstack-labs/gridview/internal/cli/config"
	"github.com/leapstack-labs/gridview/internal/cli/output"
	sharedcfg "github.com/leapstack-labs/gridview/internal/config"
	"github.com/leapstack-labs/gridview/internal/starlark"
	"github.com/leapstack-labs/gridview/pkg/grid"
	"github.com/spf13/cobra"
)

// CommandContext holds common dependencies for CLI commands.
type CommandContext struct {
	Cfg      *config.Config
	Logger   *slog.Logger
	Renderer *output.Renderer
}

// NewCommandContext creates a CommandContext with a renderer for the
// configured output mode.
func NewCommandContext(cmd *cobra.Command) *CommandContext {
	cfg := getConfig()
	logger := config.GetLogger(cmd.Context())
	r := output.NewRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr(), output.Mode(cfg.OutputFormat))

	return &CommandContext{
		Cfg:      cfg,
		Logger:   logger,
		Renderer: r,
	}
}

// getConfig returns the current configuration, or defaults when the root
// command did not load one.
func getConfig() *config.Config {
	if cfg := config.GetCurrentConfig(); cfg != nil {
		return cfg
	}
	g := &sharedcfg.GridConfig{PageSize: sharedcfg.DefaultPageSize}
	g.ApplyDefaults()
	return &config.Config{
		OutputFormat: config.DefaultOutput,
		Grid:         g,
		UI:           config.DefaultUIConfig(),
	}
}

// Session is a grid attached to the configured record source.
type Session struct {
	Grid   *grid.Grid
	Source *sharedcfg.OpenedSource
}

// Close releases the source.
func (s *Session) Close() error {
	s.Grid.Detach()
	return s.Source.Close()
}

// OpenSource opens the configured source, loads it, and builds the column
// model. Columns are inferred from the records when none are configured.
// The caller owns the returned source.
func (c *CommandContext) OpenSource(ctx context.Context) (*sharedcfg.OpenedSource, []grid.Column, error) {
	srcCfg, err := c.Cfg.RequireSource()
	if err != nil {
		return nil, nil, err
	}

	src, err := sharedcfg.OpenSource(srcCfg, c.Logger)
	if err != nil {
		return nil, nil, err
	}
	if err := grid.FetchAndWait(ctx, src); err != nil {
		_ = src.Close()
		return nil, nil, fmt.Errorf("failed to load records: %w", err)
	}

	cols, err := sharedcfg.BuildColumns(c.Cfg.Columns, starlark.NewFormatter(c.Logger), src.Records())
	if err != nil {
		_ = src.Close()
		return nil, nil, fmt.Errorf("invalid column configuration: %w", err)
	}
	c.Logger.Debug("source ready",
		"source", srcCfg.Type,
		"records", len(src.Records()),
		"columns", len(cols))

	return src, cols, nil
}

// OpenSession opens the configured source and attaches a grid to it.
func (c *CommandContext) OpenSession(ctx context.Context) (*Session, error) {
	src, cols, err := c.OpenSource(ctx)
	if err != nil {
		return nil, err
	}
	g := grid.New(cols, c.Cfg.Grid.Options()...)
	g.Attach(src)
	return &Session{Grid: g, Source: src}, nil
}
