package main

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/danmuck/megaverse/internal/api"
	"github.com/danmuck/megaverse/internal/config"
	"github.com/danmuck/megaverse/internal/reconcile"
	"github.com/danmuck/megaverse/internal/render"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

type options struct {
	configFile string
	baseURL    string
	dryRun     bool
	verifySSL  bool
	showGrid   bool
	maxRetries int
}

func newRootCommand(stdout io.Writer) *cobra.Command {
	var opts options
	cmd := &cobra.Command{
		Use:   "megaversectl [OPTIONS] <candidate-id>",
		Short: "Reconcile a megaverse with its goal map",
		Example: "  megaversectl abc123def456\n" +
			"  megaversectl --dry-run --config cmd/megaversectl/config.toml abc123def456",
		Args:          cobra.ExactArgs(1),
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			// Arguments are valid; failures past this point are not usage errors.
			cmd.SilenceUsage = true
			cfg, err := resolveConfig(cmd, opts, args[0])
			if err != nil {
				return err
			}
			return run(cmd.Context(), cfg, stdout)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&opts.configFile, "config", "", "TOML config file")
	flags.StringVar(&opts.baseURL, "base-url", api.DefaultBaseURL, "megaverse API base URL")
	flags.BoolVar(&opts.dryRun, "dry-run", false, "plan and print changes without creating or deleting entities")
	flags.BoolVar(&opts.verifySSL, "verify-ssl", false, "verify TLS certificates")
	flags.BoolVar(&opts.showGrid, "show-grid", false, "print the goal grid with pending cells")
	flags.IntVar(&opts.maxRetries, "max-retries", 0, "cap on rate-limit retries per request (0 retries without bound)")
	return cmd
}

// resolveConfig layers defaults, the config file and explicitly set flags, in that order.
func resolveConfig(cmd *cobra.Command, opts options, candidate string) (config.ClientConfig, error) {
	cfg := config.DefaultClientConfig()
	if opts.configFile != "" {
		loaded, err := config.LoadClientConfig(opts.configFile)
		if err != nil {
			return config.ClientConfig{}, err
		}
		cfg = loaded
	}

	flags := cmd.Flags()
	if flags.Changed("base-url") {
		cfg.API.BaseURL = opts.baseURL
	}
	if flags.Changed("dry-run") {
		cfg.DryRun = opts.dryRun
	}
	if flags.Changed("verify-ssl") {
		cfg.API.VerifySSL = opts.verifySSL
	}
	if flags.Changed("show-grid") {
		cfg.ShowGrid = opts.showGrid
	}
	if flags.Changed("max-retries") {
		cfg.API.MaxRetries = opts.maxRetries
	}
	cfg.API.CandidateID = strings.TrimSpace(candidate)

	if err := config.ValidateClientConfig(cfg); err != nil {
		return config.ClientConfig{}, err
	}
	return cfg, nil
}

func run(ctx context.Context, cfg config.ClientConfig, stdout io.Writer) error {
	log.Info().
		Str("candidate", cfg.API.CandidateID).
		Str("base_url", cfg.API.BaseURL).
		Bool("dry_run", cfg.DryRun).
		Msg("initializing megaverse client")
	client, err := api.New(cfg.API)
	if err != nil {
		return err
	}

	summary, err := reconcile.New(client, reconcile.Options{DryRun: cfg.DryRun}).Run(ctx)
	if err != nil {
		return err
	}

	printer := render.New(stdout)
	if cfg.ShowGrid || cfg.DryRun {
		// Served from the client's goal cache.
		goal, err := client.GoalGrid(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintln(stdout, printer.Grid(goal, summary.Plan))
		fmt.Fprintln(stdout, printer.Legend())
		fmt.Fprintln(stdout, printer.Operations(summary.Plan))
	}
	fmt.Fprintln(stdout, printer.Summary(summary))
	return nil
}
