package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/slsksticky/slsksticky/internal/config"
	"github.com/slsksticky/slsksticky/internal/health"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the last published health snapshot",
	Long:  `Read the health file written by the running daemon and print its contents.`,
	Run: func(cmd *cobra.Command, args []string) {
		showStatus(cfgFile)
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func showStatus(configPath string) {
	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	snap, err := health.Read(cfg.Health.File)
	if err != nil {
		if os.IsNotExist(err) {
			fmt.Println("Status: no health snapshot found")
			fmt.Println()
			fmt.Printf("The daemon has not written %s yet. Is it running?\n", cfg.Health.File)
			os.Exit(1)
		}
		fmt.Fprintf(os.Stderr, "Failed to read health file: %v\n", err)
		os.Exit(1)
	}

	printSnapshot(snap)
	if !snap.Healthy {
		os.Exit(1)
	}
}

func printSnapshot(snap health.Snapshot) {
	healthy := "healthy"
	if !snap.Healthy {
		healthy = "UNHEALTHY"
	}
	fmt.Printf("Status: %s\n", healthy)
	fmt.Printf("Uptime: %s\n", snap.Uptime)
	fmt.Printf("Last check: %s\n", snap.LastCheck.Format("2006/01/02 15:04:05"))

	fmt.Println()
	fmt.Printf("gluetun: connected=%v forwarded_port=%d\n",
		snap.Services.Gluetun.Connected, snap.Services.Gluetun.Port)
	fmt.Printf("slskd:   connected=%v port_synced=%v\n",
		snap.Services.Slskd.Connected, snap.Services.Slskd.PortSynced)

	if snap.LastPortChange != nil {
		fmt.Println()
		fmt.Printf("Last port change: %s\n", snap.LastPortChange.Format("2006/01/02 15:04:05"))
	}
	if snap.LastError != "" {
		fmt.Println()
		fmt.Printf("Last error: %s\n", snap.LastError)
	}
}
