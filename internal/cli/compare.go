package cli

import (
	"context"
	"fmt"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/matzehuels/layershare/pkg/errors"
	"github.com/matzehuels/layershare/pkg/history"
	"github.com/matzehuels/layershare/pkg/pipeline"
)

// compareOpts holds the command-line flags for the compare command.
type compareOpts struct {
	repository string
	versions   []string
	provider   string
	platform   string
	formats    string
	output     string
	color      string
	noCache    bool
	pick       bool
}

// compareCommand creates the compare command, the main entry point: fetch the
// histories of repository:version for every version, merge them and render
// the forest.
func (c *CLI) compareCommand() *cobra.Command {
	var opts compareOpts

	cmd := &cobra.Command{
		Use:   "compare -r <repository> -t <version> [-t <version>...]",
		Short: "Merge the layer histories of several tags",
		Long: `Compare fetches the build history of every repository:version reference,
merges the histories into a forest of shared layers and renders it.

Versions are merged in the order given. With --provider archive the
repository is the path of a "docker save" tarball.`,
		Example: `  layershare compare -r nginx -t 1.25 -t 1.26 -f svg,txt
  layershare compare -r ghcr.io/acme/api --provider registry --pick
  layershare compare -r images.tar --provider archive -t app:1 -t app:2`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c.applyCompareConfig(cmd, &opts)
			return c.runCompare(cmd.Context(), opts)
		},
	}

	cmd.Flags().StringVarP(&opts.repository, "repository", "r", "", "image repository (or archive path)")
	cmd.Flags().StringArrayVarP(&opts.versions, "versions", "t", nil, "version to compare (repeatable, merged in order)")
	cmd.Flags().StringVar(&opts.provider, "provider", "", "history source: daemon (default), registry, archive")
	cmd.Flags().StringVar(&opts.platform, "platform", "", "platform of multi-arch images (e.g. linux/arm64)")
	cmd.Flags().StringVarP(&opts.formats, "format", "f", "", "output format(s): svg (default), png, dot, json, yaml, txt (comma-separated)")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output base path (default: <output_dir>/<repository>)")
	cmd.Flags().StringVar(&opts.color, "color", "", "fill color of the diagram")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "bypass the history cache")
	cmd.Flags().BoolVar(&opts.pick, "pick", false, "pick versions interactively from the repository's tags")
	cmd.Flags().SetNormalizeFunc(compareFlagAliases)
	_ = cmd.MarkFlagRequired("repository")

	return cmd
}

// compareFlagAliases maps alternative long flag names onto compare's flags.
func compareFlagAliases(_ *pflag.FlagSet, name string) pflag.NormalizedName {
	switch name {
	case "repository-name":
		name = "repository"
	case "tag", "version":
		name = "versions"
	}
	return pflag.NormalizedName(name)
}

// applyCompareConfig fills flags the user did not set from the config file.
func (c *CLI) applyCompareConfig(cmd *cobra.Command, opts *compareOpts) {
	if !cmd.Flags().Changed("provider") {
		opts.provider = c.Config.Provider
	}
	if !cmd.Flags().Changed("platform") {
		opts.platform = c.Config.Platform
	}
	if !cmd.Flags().Changed("color") {
		opts.color = c.Config.Color
	}
}

func (c *CLI) runCompare(ctx context.Context, opts compareOpts) error {
	formats := pipeline.ParseFormats(opts.formats)
	if len(formats) == 0 {
		formats = c.Config.Formats
	}
	if err := pipeline.ValidateFormats(formats); err != nil {
		return err
	}

	runner, p, err := c.newRunner(opts.provider, opts.platform, opts.noCache)
	if err != nil {
		return err
	}
	defer history.Close(p)

	if opts.pick {
		picked, err := c.pickVersions(ctx, runner, opts.repository, opts.noCache)
		if err != nil {
			return err
		}
		if len(picked) == 0 {
			printInfo("No tags selected")
			return nil
		}
		opts.versions = append(opts.versions, picked...)
	}
	if len(opts.versions) == 0 {
		return errors.New(errors.ErrCodeInvalidVersion, "at least one version is required (use -t or --pick)")
	}

	prog := newProgress(c.Logger)
	spinner := newSpinnerWithContext(ctx, fmt.Sprintf("Fetching %d histories from %s...", len(opts.versions), p.Name()))
	spinner.Start()
	result, err := runner.Execute(ctx, pipeline.Options{
		Repository: opts.repository,
		Versions:   opts.versions,
		Refresh:    opts.noCache,
		Formats:    formats,
		Color:      opts.color,
		Logger:     c.Logger,
	})
	if err != nil {
		if spinner.Cancelled() {
			spinner.Stop()
			return err
		}
		spinner.StopWithError("Compare failed")
		return err
	}
	spinner.Stop()
	prog.done(fmt.Sprintf("Compared %d tags", len(opts.versions)))

	if result.Forest.Empty() {
		printWarning("No layer history found, nothing to draw")
	}

	base := basePath(opts.output, c.Config.OutputDir, opts.repository)
	paths, err := writeArtifacts(base, formats, result.Artifacts)
	if err != nil {
		return err
	}

	printSuccess("Merged %d images into %d layers", result.Stats.Images, result.Stats.Forest.Nodes)
	printStats(result.Stats)
	for _, path := range paths {
		printFile(path)
	}
	for _, path := range paths {
		if filepath.Ext(path) == "."+pipeline.FormatJSON {
			printNextStep("Re-render with", "layershare render "+path)
			break
		}
	}
	return nil
}

// pickVersions lists the repository's tags and lets the user select some.
func (c *CLI) pickVersions(ctx context.Context, runner *pipeline.Runner, repository string, noCache bool) ([]string, error) {
	lister, ok := cachedProvider(runner, noCache).(history.TagLister)
	if !ok {
		return nil, errors.New(errors.ErrCodeUnsupported, "provider %s cannot list tags", runner.Provider.Name())
	}

	spinner := newSpinnerWithContext(ctx, "Listing tags of "+repository+"...")
	spinner.Start()
	tags, err := lister.Tags(ctx, repository)
	spinner.Stop()
	if err != nil {
		return nil, err
	}
	if len(tags) == 0 {
		return nil, errors.New(errors.ErrCodeNotFound, "no tags found for %s", repository)
	}
	c.Logger.Debug("listed tags", "repository", repository, "tags", len(tags))

	final, err := tea.NewProgram(NewTagPickerModel(repository, tags), tea.WithContext(ctx)).Run()
	if err != nil {
		return nil, fmt.Errorf("tag picker: %w", err)
	}
	return final.(TagPickerModel).Picked(), nil
}
