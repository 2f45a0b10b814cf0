package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/bcdannyboy/stocsim/config"
	"github.com/bcdannyboy/stocsim/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(logger.Config{Level: cfg.LogLevel, Pretty: cfg.LogPretty})
	logger.SetGlobalLogger(log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := execute(ctx, newRootCmd(cfg, log), os.Args[1:]); err != nil {
		log.Error().Err(err).Msg("Simulation failed")
		stop()
		os.Exit(1)
	}
}
