package cli

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/layershare/pkg/errors"
	"github.com/matzehuels/layershare/pkg/io"
	"github.com/matzehuels/layershare/pkg/layer"
	"github.com/matzehuels/layershare/pkg/pipeline"
)

// renderOpts holds the command-line flags for the render command.
type renderOpts struct {
	output      string // output base path
	formats     string // comma-separated output formats
	color       string // diagram fill color
	leftToRight bool   // lay the diagram out left to right
}

// renderCommand creates the render command, which re-renders forests saved
// with "compare -f json" or "-f yaml". Several files are merged in argument
// order before rendering.
func (c *CLI) renderCommand() *cobra.Command {
	var opts renderOpts

	cmd := &cobra.Command{
		Use:   "render <forest.json|forest.yaml>...",
		Short: "Render saved forests",
		Example: `  layershare render nginx.json -f svg,txt
  layershare render base.json app.json -o combined`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("color") {
				opts.color = c.Config.Color
			}
			return c.runRender(cmd.Context(), args, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output base path (default: first input without extension, plus -merged for several inputs)")
	cmd.Flags().StringVarP(&opts.formats, "format", "f", "", "output format(s): svg (default), png, dot, json, yaml, txt (comma-separated)")
	cmd.Flags().StringVar(&opts.color, "color", "", "fill color of the diagram")
	cmd.Flags().BoolVar(&opts.leftToRight, "left-to-right", false, "lay the diagram out left to right")

	return cmd
}

func (c *CLI) runRender(ctx context.Context, inputs []string, opts renderOpts) error {
	logger := loggerFromContext(ctx)

	formats := pipeline.ParseFormats(opts.formats)
	if len(formats) == 0 {
		formats = c.Config.Formats
	}
	if err := pipeline.ValidateFormats(formats); err != nil {
		return err
	}

	base := renderBase(opts.output, inputs)
	if err := checkOverwrite(base, formats, inputs); err != nil {
		return err
	}

	f, err := loadForests(ctx, inputs)
	if err != nil {
		return err
	}
	stats := layer.ComputeStats(f)
	logger.Infof("Loaded forest: %d roots, %d layers", stats.Roots, stats.Nodes)

	artifacts, err := pipeline.Render(ctx, f, pipeline.Options{
		Formats:     formats,
		Color:       opts.color,
		LeftToRight: opts.leftToRight,
		Logger:      logger,
	})
	if err != nil {
		return err
	}

	paths, err := writeArtifacts(base, formats, artifacts)
	if err != nil {
		return err
	}

	printSuccess("Rendered %d layers", stats.Nodes)
	for _, path := range paths {
		printFile(path)
	}
	return nil
}

// renderBase returns the output base path. Without -o it is the first input
// without its extension, suffixed with "-merged" when several files are merged.
func renderBase(output string, inputs []string) string {
	if output != "" {
		return basePath(output, "", "")
	}
	base := inputs[0]
	for _, ext := range []string{".json", ".yaml", ".yml"} {
		base = strings.TrimSuffix(base, ext)
	}
	if len(inputs) > 1 {
		base += "-merged"
	}
	return base
}

// checkOverwrite rejects outputs that would replace one of the inputs.
func checkOverwrite(base string, formats, inputs []string) error {
	in := make(map[string]bool, len(inputs))
	for _, path := range inputs {
		in[absPath(path)] = true
	}
	for _, format := range formats {
		path := base + "." + format
		if in[absPath(path)] {
			return errors.New(errors.ErrCodeInvalidInput, "output %s would overwrite an input file (use -o)", path)
		}
	}
	return nil
}

func absPath(path string) string {
	if abs, err := filepath.Abs(path); err == nil {
		return abs
	}
	return filepath.Clean(path)
}

// loadForests reads every input and grafts the roots of later files onto the
// forest of the earlier ones, then recomputes the totals.
func loadForests(ctx context.Context, inputs []string) (layer.Forest, error) {
	logger := loggerFromContext(ctx)

	var f layer.Forest
	for _, path := range inputs {
		next, err := io.ImportFile(path)
		if err != nil {
			return nil, err
		}
		logger.Debug("loaded forest", "path", path, "roots", len(next))
		for _, root := range next {
			f = layer.Graft(f, root)
		}
	}
	layer.Rollup(f)
	return f, nil
}
