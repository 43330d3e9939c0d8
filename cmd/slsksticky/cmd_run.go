package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/slsksticky/slsksticky/internal/api"
	"github.com/slsksticky/slsksticky/internal/config"
	"github.com/slsksticky/slsksticky/internal/engine"
	"github.com/slsksticky/slsksticky/internal/gluetun"
	"github.com/slsksticky/slsksticky/internal/health"
	"github.com/slsksticky/slsksticky/internal/pkg/logger"
	"github.com/slsksticky/slsksticky/internal/slskd"
)

// runDaemon starts the reconciliation loop and blocks until shutdown.
// A configuration error exits immediately with status 1; a shutdown
// signal exits 0.
func runDaemon() {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(logger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
	})

	log.Info("Starting slsksticky",
		"gluetun", cfg.Gluetun.BaseURL(),
		"slskd", cfg.Slskd.BaseURL(),
		"interval", cfg.Interval(),
	)

	gluetunClient := gluetun.NewClient(&cfg.Gluetun, log)
	slskdClient := slskd.NewClient(&cfg.Slskd, log)

	healthState := health.NewState()
	sink := health.NewFileSink(cfg.Health.File)
	defer func() {
		if err := sink.Remove(); err != nil {
			log.Error("Failed to remove health file", "error", err)
		}
	}()

	eng := engine.New(gluetunClient, slskdClient, healthState, cfg.Interval(), log, sink)

	var apiServer *api.Server
	if cfg.API.Enabled {
		apiServer = api.New(&cfg.API, healthState, log)
		go func() {
			if err := apiServer.Start(); err != nil {
				log.Error("Status API server error", "error", err)
			}
		}()
		defer apiServer.Stop()
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	eng.Run(ctx)

	log.Info("Shutdown complete")
}
