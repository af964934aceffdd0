package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/iWorld-y/fact_radar/app/fact_radar/pkg/logger"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCommand().ExecuteContext(ctx); err != nil {
		logger.Log.Error(err)
		os.Exit(1)
	}
}
