package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"syncorbit/internal/config"
	"syncorbit/internal/daemon"
	"syncorbit/internal/library"
	"syncorbit/internal/logging"
	"syncorbit/internal/scan"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg, _, _, err := config.Load("")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	if err := cfg.EnsureDirectories(); err != nil {
		log.Fatalf("ensure directories: %v", err)
	}

	logger, err := logging.NewFromConfig(cfg)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	logging.CleanupOldLogs(logger, cfg.Logging.RetentionDays, cfg.Paths.LogDir, "*.log")

	store, err := library.Open(cfg)
	if err != nil {
		logger.Error("open library store", logging.Error(err))
		os.Exit(1)
	}

	scanner, err := scan.New(cfg, store, logger)
	if err != nil {
		logger.Error("create scanner", logging.Error(err))
		_ = store.Close()
		os.Exit(1)
	}

	d, err := daemon.New(cfg, store, scanner, logger)
	if err != nil {
		logger.Error("create daemon", logging.Error(err))
		_ = store.Close()
		os.Exit(1)
	}
	defer d.Close()

	if err := d.Start(ctx); err != nil {
		logger.Error("daemon start", logging.Error(err))
		_ = d.Close()
		os.Exit(1)
	}

	<-ctx.Done()
	logger.Info("syncorbitd shutting down")
}
