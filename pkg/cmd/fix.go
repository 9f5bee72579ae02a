package cmd

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/siyuan-infoblox/dartfix/pkg/formatter"
	"github.com/siyuan-infoblox/dartfix/pkg/log"
	"github.com/siyuan-infoblox/dartfix/pkg/rewrite"
)

type fixFlags struct {
	dryRun     bool
	diff       bool
	extensions []string
	exclude    []string
}

func newFixCommand(opts *rootOptions) *cobra.Command {
	flags := &fixFlags{}

	cmd := &cobra.Command{
		Use:   "fix [PATH]",
		Short: "Reorder imports and apply rewrite rules to Dart sources",
		Long: `Reorder the leading imports of every Dart file under PATH (default: lib)
and apply the rewrite rules in order. Files are rewritten in place only
when their content changes. A file that fails is reported and the run
continues with the next one.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			fc := opts.cfg.Fix
			if len(args) == 1 {
				fc.Root = args[0]
			}
			if cmd.Flags().Changed("dry-run") {
				fc.DryRun = flags.dryRun
			}
			if cmd.Flags().Changed("diff") {
				fc.Diff = flags.diff
			}
			if cmd.Flags().Changed("ext") {
				fc.Extensions = normalizeExtensions(flags.extensions)
			}
			if cmd.Flags().Changed("exclude") {
				fc.Exclude = append(fc.Exclude, flags.exclude...)
			}
			effective := *opts.cfg
			effective.Fix = fc
			if err := effective.Validate(); err != nil {
				return err
			}

			reporter := log.FromContext(cmd.Context())
			reporter.Header("fix " + fc.Root)

			f := formatter.New(formatter.FormatterConfig{
				Extensions: fc.Extensions,
				Exclude:    fc.Exclude,
				DryRun:     fc.DryRun,
				ShowDiff:   fc.Diff,
			}, rewrite.DefaultRules())

			summary, err := f.ProcessPath(cmd.Context(), fc.Root)
			if err != nil {
				return err
			}
			return summary.Err()
		},
	}

	cmd.Flags().BoolVarP(&flags.dryRun, "dry-run", "n", false, "Report changes without writing files")
	cmd.Flags().BoolVarP(&flags.diff, "diff", "d", false, "Print a line diff for every changed file")
	cmd.Flags().StringSliceVarP(&flags.extensions, "ext", "e", nil, "File extensions to process (default .dart)")
	cmd.Flags().StringSliceVarP(&flags.exclude, "exclude", "x", nil, "Glob patterns relative to PATH to skip, e.g. '**/*.g.dart'")
	return cmd
}

// normalizeExtensions accepts "dart" as well as ".dart"
func normalizeExtensions(exts []string) []string {
	out := make([]string, 0, len(exts))
	for _, ext := range exts {
		ext = strings.TrimSpace(ext)
		if ext == "" {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		out = append(out, ext)
	}
	return out
}
