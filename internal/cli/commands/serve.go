package commands

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"os/signal"
	"runtime"

	"github.com/leapstack-labs/gridview/internal/ui"
	"github.com/spf13/cobra"
)

// ServeOptions holds options for the serve command.
type ServeOptions struct {
	Port    int
	NoWatch bool
	Open    bool
	Dev     bool
}

// NewServeCommand creates the serve command.
func NewServeCommand() *cobra.Command {
	opts := &ServeOptions{}

	cmd := &cobra.Command{
		Use:     "serve",
		Aliases: []string{"ui"},
		Short:   "Serve the grid in the browser",
		Long: `Start a local web server showing the grid.

Each browser gets its own sort, filter, page and selection state over the
shared source. Changes are pushed to open tabs as they happen.

Watchable sources reload on change unless --no-watch is given or
ui.watch is false. Prometheus metrics are served on /metrics when
ui.metrics is enabled.`,
		Example: `  # Serve on the default port
  gridview serve

  # Serve a dataset on a custom port and open the browser
  gridview serve --source data/users.json --port 3000 --open`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd, opts)
		},
	}

	cmd.Flags().IntVar(&opts.Port, "port", 0, "Port to serve on (default: 8765)")
	cmd.Flags().BoolVar(&opts.NoWatch, "no-watch", false, "Don't reload the source when it changes")
	cmd.Flags().BoolVar(&opts.Open, "open", false, "Open the browser once the server starts")
	cmd.Flags().BoolVar(&opts.Dev, "dev", false, "Log requests and enable /hotreload")
	_ = cmd.Flags().MarkHidden("dev")

	return cmd
}

func runServe(cmd *cobra.Command, opts *ServeOptions) error {
	cc := NewCommandContext(cmd)
	uiCfg := cc.Cfg.GetUIConfig()

	// CLI flags override config file
	port := uiCfg.Port
	if opts.Port != 0 {
		port = opts.Port
	}
	watch := uiCfg.Watch && !opts.NoWatch

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	src, cols, err := cc.OpenSource(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = src.Close() }()

	serverCfg := ui.Config{
		Source:        src,
		Columns:       cols,
		Options:       cc.Cfg.Grid.Options(),
		Port:          port,
		SessionSecret: uiCfg.SessionSecret,
		Metrics:       uiCfg.Metrics,
		Logger:        cc.Logger,
		IsDev:         opts.Dev,
	}
	if watch && src.Watchable() {
		serverCfg.Watch = src.Watch
	}

	server := ui.NewServer(serverCfg)

	url := fmt.Sprintf("http://localhost:%d", port)
	if opts.Open {
		go openBrowser(url)
	}

	cc.Renderer.Success(fmt.Sprintf("Serving %d records on %s", len(src.Records()), url))
	cc.Renderer.Muted("Press Ctrl+C to stop")

	return server.Serve(ctx)
}

// openBrowser opens the default browser to the specified URL.
func openBrowser(url string) {
	var cmd *exec.Cmd

	switch runtime.GOOS {
	case "darwin":
		cmd = exec.CommandContext(context.Background(), "open", url)
	case "linux":
		cmd = exec.CommandContext(context.Background(), "xdg-open", url)
	case "windows":
		cmd = exec.CommandContext(context.Background(), "rundll32", "url.dll,FileProtocolHandler", url)
	default:
		return
	}

	_ = cmd.Start()
}
