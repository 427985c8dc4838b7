package main

import (
	"os"

	"github.com/danmuck/megaverse/internal/config"
	"github.com/danmuck/megaverse/internal/observability"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

type options struct {
	kind     string
	output   string
	validate bool
	input    string
	force    bool
}

func newRootCommand(logger zerolog.Logger) *cobra.Command {
	var opts options
	cmd := &cobra.Command{
		Use:           "configgen [OPTIONS]",
		Short:         "Write or validate megaverse config files",
		Args:          cobra.NoArgs,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmd.SilenceUsage = true
			return run(opts, logger)
		},
	}
	flags := cmd.Flags()
	flags.StringVar(&opts.kind, "kind", config.KindClient, "config kind: client|sandbox")
	flags.StringVar(&opts.output, "output", "", "output path for config template (defaults to per-kind cmd path)")
	flags.BoolVar(&opts.validate, "validate", false, "validate an existing config file")
	flags.StringVar(&opts.input, "input", "", "config path for validation (defaults to per-kind cmd path)")
	flags.BoolVar(&opts.force, "force", false, "overwrite existing config file")
	return cmd
}

func run(opts options, logger zerolog.Logger) error {
	if opts.validate {
		path := opts.input
		if path == "" {
			p, err := config.DefaultPath(opts.kind)
			if err != nil {
				return err
			}
			path = p
		}
		if err := config.Load(path, opts.kind); err != nil {
			return err
		}
		logger.Info().Str("kind", opts.kind).Str("path", path).Msg("config validated")
		return nil
	}

	target := opts.output
	if target == "" {
		p, err := config.DefaultPath(opts.kind)
		if err != nil {
			return err
		}
		target = p
	}
	if err := config.WriteTemplate(target, opts.kind, opts.force); err != nil {
		return err
	}
	logger.Info().Str("kind", opts.kind).Str("path", target).Msg("config template written")
	return nil
}

func main() {
	logger := observability.InitLogger("configgen")
	if err := newRootCommand(logger).Execute(); err != nil {
		logger.Error().Err(err).Msg("configgen failed")
		os.Exit(1)
	}
}
