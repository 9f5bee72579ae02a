package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"gitlab.com/tozd/go/errors"

	"github.com/siyuan-infoblox/dartfix/pkg/config"
	errmsg "github.com/siyuan-infoblox/dartfix/pkg/errors"
	"github.com/siyuan-infoblox/dartfix/pkg/log"
	"github.com/siyuan-infoblox/dartfix/pkg/version"
)

const (
	UseDescription   = "dartfix"
	ShortDescription = "dartfix - batch lint fixes for Flutter source and assets"
	LongDescription  = `dartfix applies mechanical lint fixes to a Flutter project.

The fix command rewrites Dart sources in place:
1. Groups the leading imports into dart:, package: and relative blocks,
   each sorted and separated by a blank line
2. Applies a fixed, ordered list of text rewrites (single quotes,
   withOpacity -> withValues, N.0 -> N, const constructors, Offset.zero)

The images command re-encodes oversized images under an asset directory.

Settings are read from .dartfix.yaml in the working directory when present;
flags override the file.

Exit codes: 0 success, 1 some files failed, 2 fatal error.`
)

type rootOptions struct {
	configFile  string
	debug       bool
	showVersion bool
	cfg         *config.Config
}

// NewRootCommand builds the dartfix command tree
func NewRootCommand() *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:           UseDescription,
		Short:         ShortDescription,
		Long:          LongDescription,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.setup(cmd)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.showVersion {
				fmt.Fprintln(cmd.OutOrStdout(), version.Get().String())
				return nil
			}
			return cmd.Help()
		},
	}

	rootCmd.PersistentFlags().StringVar(&opts.configFile, "config", config.DefaultFile, "Path to the config file")
	rootCmd.PersistentFlags().BoolVar(&opts.debug, "debug", false, "Write structured debug logs to stderr")
	rootCmd.Flags().BoolVarP(&opts.showVersion, "version", "v", false, "Show version information")

	rootCmd.AddCommand(newFixCommand(opts), newImagesCommand(opts))
	return rootCmd
}

// setup loads the config and puts a reporter on the command context
func (o *rootOptions) setup(cmd *cobra.Command) error {
	level := zerolog.InfoLevel
	var logs io.Writer = io.Discard
	if o.debug {
		level = zerolog.DebugLevel
		logs = zerolog.ConsoleWriter{Out: cmd.ErrOrStderr()}
	}
	reporter := log.New(cmd.OutOrStdout(), logs, level)
	cmd.SetContext(log.NewContext(cmd.Context(), reporter))

	// an explicit --config must exist, the default one is optional
	explicit := cmd.Flags().Changed("config")
	cfg, err := config.Load(o.configFile, !explicit)
	if err != nil {
		return errors.Errorf("%s: %w", errmsg.ErrMsgFailedToLoadConfig, err)
	}
	o.cfg = cfg
	reporter.Logger().Debug().Str("config", o.configFile).Bool("explicit", explicit).Msg("config loaded")
	return nil
}

// Execute runs the CLI with os.Args and returns the process exit code
func Execute() int {
	return run(NewRootCommand(), os.Stderr)
}

func run(rootCmd *cobra.Command, stderr io.Writer) int {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(stderr, color.RedString("Error: %v", err))
		return errmsg.ExitCode(err)
	}
	return errmsg.ExitOK
}
