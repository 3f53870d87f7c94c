package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tobiaswren/mapforge/pkg/pipeline"
)

// renderOpts holds the command-line flags for the render command.
type renderOpts struct {
	output      string // output file (single format) or base path (multiple)
	configPath  string // explicit mapforge.toml path
	formats     []string
	algorithm   string // grid or force
	currentRoom string // highlighted room ID
	theme       string // light or dark
	detailed    bool   // direction labels on edges
	refresh     bool   // bypass layout/render caches
	noCache     bool   // disable caching entirely
	useStore    bool   // overlay persisted editor positions
}

// renderCommand creates the render command for generating map artifacts.
func (c *CLI) renderCommand() *cobra.Command {
	var formatsStr string
	opts := renderOpts{}

	cmd := &cobra.Command{
		Use:   "render [world.json|dir]",
		Short: "Render a world file to map artifacts",
		Long: `Render a world file to map artifacts.

The render command reads a world JSON file, computes a layout, and writes
the requested formats next to the input (or to --output). Passing a
directory opens an interactive world picker.

Layouts and artifacts are cached locally for faster subsequent runs.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.formats = parseFormats(formatsStr)
			return c.runRender(cmd.Context(), args[0], opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (single format) or base path (multiple)")
	cmd.Flags().StringVarP(&formatsStr, "format", "f", "", "output format(s): svg (default), png, dot, json (comma-separated)")
	cmd.Flags().StringVarP(&opts.algorithm, "algorithm", "a", "", "layout algorithm: grid (default), force")
	cmd.Flags().StringVar(&opts.currentRoom, "current", "", "room ID to highlight as the current location")
	cmd.Flags().StringVar(&opts.theme, "theme", "", "color theme: light (default), dark")
	cmd.Flags().BoolVar(&opts.detailed, "detailed", false, "label edges with their directions")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "recompute even when cached")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&opts.useStore, "store", false, "overlay saved editor positions from the change-set store")
	cmd.Flags().StringVar(&opts.configPath, "config", "", "config file (default: ./mapforge.toml when present)")

	return cmd
}

// runRender resolves the world file, runs the pipeline, and writes artifacts.
func (c *CLI) runRender(ctx context.Context, input string, opts renderOpts) error {
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
		Formats:     opts.formats,
		Detailed:    opts.detailed,
		Theme:       opts.theme,
		Refresh:     opts.refresh,
		Logger:      c.Logger,
	}
	if pipeOpts.Theme == "" {
		pipeOpts.Theme = cfg.Theme
	}
	if opts.useStore {
		st, err := cfg.Store.OpenStore(ctx)
		if err != nil {
			return fmt.Errorf("open store: %w", err)
		}
		defer st.Close()
		pipeOpts.Store = st
	}

	prog := newProgress(c.Logger)
	spinner := newSpinnerWithContext(ctx, fmt.Sprintf("Rendering %s...", filepath.Base(input)))
	spinner.Start()

	result, err := runner.Execute(ctx, pipeOpts)
	if err != nil {
		spinner.StopWithError("Render failed")
		return err
	}
	spinner.Stop()

	if ctx.Err() != nil {
		return ctx.Err()
	}
	prog.done(fmt.Sprintf("Rendered %d format(s)", len(result.Artifacts)))

	paths, err := writeArtifacts(result.Artifacts, opts.formats, input, opts.output)
	if err != nil {
		return err
	}

	printSuccess("Render complete")
	for _, p := range paths {
		printFile(p)
	}
	printStats(result.Stats.RoomCount, result.Stats.EdgeCount, result.CacheInfo.RenderHit)
	printNewline()
	printNextStep("Edit", "mapforge serve --worlds "+filepath.Dir(input))

	return nil
}

// resolveWorldArg turns a directory argument into a concrete world file by
// opening the interactive picker. Files pass through unchanged. An empty
// return with nil error means the picker was dismissed.
func resolveWorldArg(ctx context.Context, input string) (string, error) {
	info, err := os.Stat(input)
	if err != nil {
		return "", fmt.Errorf("stat %s: %w", input, err)
	}
	if !info.IsDir() {
		return input, nil
	}
	return pickWorld(ctx, input)
}

// basePath derives the base output path from the output and input file paths.
// If output is empty, it strips the extension from input. If output carries a
// known format extension, that extension is stripped.
func basePath(output, input string) string {
	if output == "" {
		return strings.TrimSuffix(input, filepath.Ext(input))
	}
	ext := filepath.Ext(output)
	if pipeline.ValidFormats[strings.TrimPrefix(ext, ".")] {
		return strings.TrimSuffix(output, ext)
	}
	return output
}

// writeArtifacts writes one file per requested format and returns the paths.
// A single format honors --output verbatim; multiple formats share a base path.
func writeArtifacts(artifacts map[string][]byte, formats []string, input, output string) ([]string, error) {
	if len(formats) == 1 && output != "" {
		if err := os.WriteFile(output, artifacts[formats[0]], 0o600); err != nil {
			return nil, fmt.Errorf("write output %s: %w", output, err)
		}
		return []string{output}, nil
	}

	base := basePath(output, input)
	paths := make([]string, 0, len(formats))
	for _, format := range formats {
		path := base + "." + format
		if err := os.WriteFile(path, artifacts[format], 0o600); err != nil {
			return nil, fmt.Errorf("write output %s: %w", path, err)
		}
		paths = append(paths, path)
	}
	return paths, nil
}
