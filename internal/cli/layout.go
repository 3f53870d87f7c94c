package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tobiaswren/mapforge/pkg/layout"
	"github.com/tobiaswren/mapforge/pkg/pipeline"
)

// layoutOpts holds the command-line flags for the layout command.
type layoutOpts struct {
	output      string
	configPath  string
	algorithm   string
	currentRoom string
	refresh     bool
	noCache     bool
	useStore    bool
}

// layoutCommand creates the layout command for computing map layouts.
func (c *CLI) layoutCommand() *cobra.Command {
	opts := layoutOpts{}

	cmd := &cobra.Command{
		Use:   "layout [world.json|dir]",
		Short: "Compute a map layout from a world file",
		Long: `Compute a map layout from a world file.

The layout command reads a world JSON file and computes node positions with
the grid or force algorithm. The output is a layout document (same format
as 'render -f json') that records every node and edge with its final
position. Passing a directory opens an interactive world picker.

Results are cached locally for faster subsequent runs.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runLayout(cmd.Context(), args[0], opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (default: <input>.layout.json)")
	cmd.Flags().StringVarP(&opts.algorithm, "algorithm", "a", "", "layout algorithm: grid (default), force")
	cmd.Flags().StringVar(&opts.currentRoom, "current", "", "room ID to highlight as the current location")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "recompute even when cached")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&opts.useStore, "store", false, "overlay saved editor positions from the change-set store")
	cmd.Flags().StringVar(&opts.configPath, "config", "", "config file (default: ./mapforge.toml when present)")

	return cmd
}

// runLayout loads the world, computes the layout, and writes the document.
func (c *CLI) runLayout(ctx context.Context, input string, opts layoutOpts) error {
	cfg, err := LoadConfig(opts.configPath)
	if err != nil {
		return err
	}

	input, err = resolveWorldArg(ctx, input)
	if err != nil {
		return err
	}
	if input == "" {
		printInfo("No world selected")
		return nil
	}

	runner, err := c.newRunner(opts.noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	pipeOpts := pipeline.Options{
		WorldPath:   input,
		CurrentRoom: opts.currentRoom,
		Algorithm:   opts.algorithm,
		Grid:        cfg.Grid,
		Force:       cfg.Force,
		Refresh:     opts.refresh,
		Logger:      c.Logger,
	}
	if opts.useStore {
		st, err := cfg.Store.OpenStore(ctx)
		if err != nil {
			return fmt.Errorf("open store: %w", err)
		}
		defer st.Close()
		pipeOpts.Store = st
	}
	if err := pipeOpts.ValidateAndSetDefaults(); err != nil {
		return err
	}

	spinner := newSpinnerWithContext(ctx, fmt.Sprintf("Computing %s layout...", pipeOpts.Algorithm))
	spinner.Start()

	w, worldHash, err := runner.LoadWorld(ctx, pipeOpts)
	if err != nil {
		spinner.StopWithError("Layout failed")
		return err
	}
	doc, cacheHit, err := runner.ComputeLayoutWithCacheInfo(ctx, w, worldHash, pipeOpts)
	if err != nil {
		spinner.StopWithError("Layout failed")
		return err
	}
	spinner.Stop()

	if ctx.Err() != nil {
		return ctx.Err()
	}

	outputPath := opts.output
	if outputPath == "" {
		base := strings.TrimSuffix(input, filepath.Ext(input))
		outputPath = base + ".layout.json"
	}

	if err := layout.WriteDocumentFile(*doc, outputPath); err != nil {
		return fmt.Errorf("write output %s: %w", outputPath, err)
	}

	printSuccess("Layout complete")
	printFile(outputPath)
	printStats(len(doc.Nodes), len(doc.Edges), cacheHit)
	printNewline()
	printNextStep("Render", "mapforge render "+input)

	return nil
}
