package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/slsksticky/slsksticky/internal/config"
	"github.com/slsksticky/slsksticky/internal/engine"
	"github.com/slsksticky/slsksticky/internal/gluetun"
	"github.com/slsksticky/slsksticky/internal/health"
	"github.com/slsksticky/slsksticky/internal/pkg/logger"
	"github.com/slsksticky/slsksticky/internal/slskd"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Run a single reconciliation cycle and exit",
	Long: `Run one check-and-sync cycle against gluetun and slskd, print the
resulting health snapshot, and exit 0 if healthy, 1 otherwise. Useful
for smoke tests and as a container healthcheck command.`,
	Run: func(cmd *cobra.Command, args []string) {
		runCheck(cfgFile)
	},
}

func init() {
	rootCmd.AddCommand(checkCmd)
}

func runCheck(configPath string) {
	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(logger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
	})

	gluetunClient := gluetun.NewClient(&cfg.Gluetun, log)
	slskdClient := slskd.NewClient(&cfg.Slskd, log)
	healthState := health.NewState()

	eng := engine.New(gluetunClient, slskdClient, healthState, cfg.Interval(), log)

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Interval())
	defer cancel()
	eng.Tick(ctx)

	snap := healthState.Current()
	fmt.Println()
	printSnapshot(snap)

	if !snap.Healthy {
		os.Exit(1)
	}
}
