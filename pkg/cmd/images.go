package cmd

import (
	"github.com/spf13/cobra"

	"github.com/siyuan-infoblox/dartfix/pkg/imgopt"
	"github.com/siyuan-infoblox/dartfix/pkg/log"
)

type imagesFlags struct {
	quality   int
	maxWidth  int
	maxHeight int
	minSize   string
	dryRun    bool
	exclude   []string
}

func newImagesCommand(opts *rootOptions) *cobra.Command {
	flags := &imagesFlags{}

	cmd := &cobra.Command{
		Use:   "images [PATH]",
		Short: "Downscale and re-encode oversized images",
		Long: `Re-encode every image under PATH (default: assets) that is larger than
the size threshold as a JPEG, scaled to fit the maximum dimensions while
keeping its aspect ratio. Images are replaced in place only when the
result is smaller.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ic := opts.cfg.Images
			if len(args) == 1 {
				ic.Root = args[0]
			}
			if cmd.Flags().Changed("quality") {
				ic.Quality = flags.quality
			}
			if cmd.Flags().Changed("max-width") {
				ic.MaxWidth = flags.maxWidth
			}
			if cmd.Flags().Changed("max-height") {
				ic.MaxHeight = flags.maxHeight
			}
			if cmd.Flags().Changed("min-size") {
				ic.MinSize = flags.minSize
			}
			if cmd.Flags().Changed("dry-run") {
				ic.DryRun = flags.dryRun
			}
			if cmd.Flags().Changed("exclude") {
				ic.Exclude = append(ic.Exclude, flags.exclude...)
			}
			effective := *opts.cfg
			effective.Images = ic
			if err := effective.Validate(); err != nil {
				return err
			}
			minSize, err := ic.MinSizeBytes()
			if err != nil {
				return err
			}

			optimizer, err := imgopt.NewOptimizer(imgopt.OptimizerConfig{
				Options: imgopt.Options{
					Quality:   ic.Quality,
					MaxWidth:  ic.MaxWidth,
					MaxHeight: ic.MaxHeight,
				},
				MinSize:    minSize,
				Extensions: ic.Extensions,
				Exclude:    ic.Exclude,
				DryRun:     ic.DryRun,
			})
			if err != nil {
				return err
			}

			log.FromContext(cmd.Context()).Header("images " + ic.Root)
			summary, err := optimizer.Run(cmd.Context(), ic.Root)
			if err != nil {
				return err
			}
			return summary.Err()
		},
	}

	cmd.Flags().IntVarP(&flags.quality, "quality", "q", 0, "JPEG quality 0-100 (default 70)")
	cmd.Flags().IntVar(&flags.maxWidth, "max-width", 0, "Maximum output width in pixels (default 600)")
	cmd.Flags().IntVar(&flags.maxHeight, "max-height", 0, "Maximum output height in pixels (default 400)")
	cmd.Flags().StringVar(&flags.minSize, "min-size", "", "Only images larger than this are compressed, e.g. 500KB (default 1MB)")
	cmd.Flags().BoolVarP(&flags.dryRun, "dry-run", "n", false, "Report savings without writing files")
	cmd.Flags().StringSliceVarP(&flags.exclude, "exclude", "x", nil, "Glob patterns relative to PATH to skip")
	return cmd
}
