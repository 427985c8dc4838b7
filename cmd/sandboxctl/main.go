package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/danmuck/megaverse/internal/config"
	"github.com/danmuck/megaverse/internal/megaverse"
	"github.com/danmuck/megaverse/internal/observability"
	"github.com/danmuck/megaverse/internal/sandbox"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

type options struct {
	configFile string
	goal       string
	addr       string
	rps        float64
}

func newRootCommand(logger zerolog.Logger) *cobra.Command {
	var opts options
	cmd := &cobra.Command{
		Use:           "sandboxctl [OPTIONS]",
		Short:         "Serve an in-memory megaverse API for local runs",
		Args:          cobra.NoArgs,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmd.SilenceUsage = true
			cfg, err := resolveConfig(cmd, opts)
			if err != nil {
				return err
			}
			srv, err := build(cfg, logger)
			if err != nil {
				return err
			}
			return srv.ListenAndServe(cmd.Context())
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&opts.configFile, "config", "", "TOML config file")
	flags.StringVar(&opts.goal, "goal", "", "YAML goal fixture (default: built-in cross)")
	flags.StringVar(&opts.addr, "addr", sandbox.DefaultAddr, "listen address")
	flags.Float64Var(&opts.rps, "requests-per-second", 0, "answer requests above this rate with 429 (0 disables)")
	return cmd
}

func resolveConfig(cmd *cobra.Command, opts options) (config.SandboxConfig, error) {
	cfg := config.DefaultSandboxConfig()
	if opts.configFile != "" {
		loaded, err := config.LoadSandboxConfig(opts.configFile)
		if err != nil {
			return config.SandboxConfig{}, err
		}
		cfg = loaded
	}
	flags := cmd.Flags()
	if flags.Changed("goal") {
		cfg.GoalFile = opts.goal
	}
	if flags.Changed("addr") {
		cfg.Server.Addr = opts.addr
	}
	if flags.Changed("requests-per-second") {
		cfg.Server.RequestsPerSecond = opts.rps
	}
	if err := config.ValidateSandboxConfig(cfg); err != nil {
		return config.SandboxConfig{}, err
	}
	return cfg, nil
}

func build(cfg config.SandboxConfig, logger zerolog.Logger) (*sandbox.Server, error) {
	var goal megaverse.GoalGrid
	phase := cfg.Phase
	if cfg.GoalFile != "" {
		fx, g, err := sandbox.LoadGoalFixture(cfg.GoalFile)
		if err != nil {
			return nil, err
		}
		goal = g
		if fx.Phase != 0 {
			phase = fx.Phase
		}
	} else {
		goal = sandbox.CrossGoal(cfg.CrossSize, cfg.CrossMargin)
	}

	store, err := sandbox.NewStore(goal, phase)
	if err != nil {
		return nil, err
	}
	rows, cols := goal.Dimensions()
	logger.Info().
		Int("rows", rows).
		Int("columns", cols).
		Int("phase", phase).
		Str("goal_file", cfg.GoalFile).
		Float64("requests_per_second", cfg.Server.RequestsPerSecond).
		Msg("sandbox goal loaded")
	return sandbox.New(store, cfg.Server, logger), nil
}

func main() {
	logger := observability.InitLogger("sandboxctl")
	gin.SetMode(gin.ReleaseMode)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	err := newRootCommand(logger).ExecuteContext(ctx)
	stop()
	if err != nil {
		logger.Error().Err(err).Msg("sandboxctl failed")
		os.Exit(1)
	}
}
