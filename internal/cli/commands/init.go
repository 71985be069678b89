package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/leapstack-labs/gridview/internal/cli/output"
	sharedcfg "github.com/leapstack-labs/gridview/internal/config"
	"github.com/spf13/cobra"
)

// NewInitCommand creates the init command.
func NewInitCommand() *cobra.Command {
	var force bool
	var example bool

	cmd := &cobra.Command{
		Use:   "init [directory]",
		Short: "Initialize a new gridview project",
		Long: `Initialize a new gridview project with a configuration file and sample data.

This creates:
  - gridview.yaml describing the record source, grid options and columns
  - data/ directory with a small dataset

Use --example to create a scan-history demo with computed columns,
multi-column sorting and expandable detail rows.`,
		Example: `  # Initialize in current directory
  gridview init

  # Initialize with the full example
  gridview init --example

  # Initialize in a new directory
  gridview init my-grid --example

  # Force overwrite existing config
  gridview init --force`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) > 0 {
				dir = args[0]
			}

			cfg := getConfig()
			r := output.NewRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr(), output.Mode(cfg.OutputFormat))

			template := "minimal"
			if example {
				template = "example"
			}
			return runInit(r, dir, template, force)
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Overwrite existing configuration")
	cmd.Flags().BoolVar(&example, "example", false, "Create the scan-history example with computed columns")

	return cmd
}

func runInit(r *output.Renderer, dir, template string, force bool) error {
	if dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	configPath := filepath.Join(dir, sharedcfg.ConfigFileName)
	if _, err := os.Stat(configPath); err == nil && !force {
		return fmt.Errorf("%s already exists. Use --force to overwrite", sharedcfg.ConfigFileName)
	}

	files, err := scaffold(template, dir, force)
	if err != nil {
		return fmt.Errorf("failed to initialize project: %w", err)
	}

	r.Header(2, "Configuration")
	printTemplateFiles(r, files, false)
	r.Println("")
	r.Header(2, "Data")
	printTemplateFiles(r, files, true)

	r.Println("")
	if template == "example" {
		r.Success("gridview project initialized with example data!")
	} else {
		r.Success("gridview project initialized!")
	}
	r.Println("")
	r.Println("Next steps:")
	r.Println("  gridview columns   Show the column model")
	r.Println("  gridview export    Print the first page")
	r.Println("  gridview view      Browse the grid in the terminal")
	r.Println("  gridview serve     Open the grid in a browser")

	return nil
}

func printTemplateFiles(r *output.Renderer, files []templateFile, datasets bool) {
	for _, f := range files {
		if f.Dataset != datasets {
			continue
		}
		if f.Kept {
			r.StatusLine(f.Path, "skipped", "(exists)")
			continue
		}
		r.StatusLine(f.Path, "success", "")
	}
}
