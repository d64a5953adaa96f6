package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/layershare/pkg/history"
	"github.com/matzehuels/layershare/pkg/layer"
)

type inspectOpts struct {
	provider string
	platform string
	noCache  bool
}

// inspectCommand creates the inspect command, which prints the history of one
// image.
func (c *CLI) inspectCommand() *cobra.Command {
	var opts inspectOpts

	cmd := &cobra.Command{
		Use:   "inspect <image>",
		Short: "Print the layer history of one image",
		Example: `  layershare inspect nginx:1.25
  layershare inspect --provider archive images.tar:app:1`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("provider") {
				opts.provider = c.Config.Provider
			}
			if !cmd.Flags().Changed("platform") {
				opts.platform = c.Config.Platform
			}
			return c.runInspect(cmd.Context(), args[0], opts)
		},
	}

	cmd.Flags().StringVar(&opts.provider, "provider", "", "history source: daemon (default), registry, archive")
	cmd.Flags().StringVar(&opts.platform, "platform", "", "platform of multi-arch images (e.g. linux/arm64)")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "bypass the history cache")

	return cmd
}

func (c *CLI) runInspect(ctx context.Context, ref string, opts inspectOpts) error {
	runner, p, err := c.newRunner(opts.provider, opts.platform, opts.noCache)
	if err != nil {
		return err
	}
	defer history.Close(p)

	spinner := newSpinnerWithContext(ctx, "Fetching history of "+ref+"...")
	spinner.Start()
	records, err := cachedProvider(runner, opts.noCache).History(ctx, ref)
	spinner.Stop()
	if err != nil {
		return err
	}

	if len(records) == 0 {
		printWarning("%s has no layer history", ref)
		return nil
	}

	fmt.Println(StyleTitle.Render(ref))
	fmt.Println(historyTable(records))
	printKeyValue("Layers", StyleNumber.Render(fmt.Sprint(len(records))))
	printKeyValue("Size", layer.FormatSize(layer.BuildChain(ref, records).Size()))
	return nil
}
