package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"fnsearch/internal/gateway/app"
	"fnsearch/internal/gateway/config"
	"fnsearch/internal/logging"
)

func main() {
	cfg, err := config.Load(os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(2)
	}
	logger := logging.Setup(os.Stderr, logging.ParseLevel(cfg.Log.Level), cfg.Log.Color)

	initCtx, cancelInit := context.WithTimeout(context.Background(), time.Minute)
	a, err := app.New(initCtx, cfg, logger)
	cancelInit()
	if err != nil {
		logger.Error("Failed to initialize app", "err", err)
		os.Exit(1)
	}

	go func() {
		if err := a.Start(); err != nil {
			logger.Error("Server error", "err", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := a.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", "err", err)
		os.Exit(1)
	}

	logger.Info("Server exiting")
}
