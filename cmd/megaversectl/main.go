package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/danmuck/megaverse/internal/observability"
)

func main() {
	logger := observability.InitLogger("megaversectl")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	cmd := newRootCommand(os.Stdout)
	err := cmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		logger.Error().Err(err).Msg("megaversectl failed")
		os.Exit(1)
	}
}
