package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/slsksticky/slsksticky/internal/config"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a default configuration file",
	Long:  `Create a commented default configuration file at the path given by --config.`,
	Run: func(cmd *cobra.Command, args []string) {
		initConfig(cfgFile)
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}

func initConfig(configPath string) {
	if _, err := os.Stat(configPath); err == nil {
		fmt.Fprintf(os.Stderr, "ERROR: %s already exists.\n", configPath)
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Remove it first or pass a different path with --config.")
		os.Exit(1)
	}

	if err := os.WriteFile(configPath, []byte(config.DefaultConfigYAML), 0o600); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing config: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Default configuration written to: %s\n", configPath)
	fmt.Println()
	fmt.Println("Set gluetun.api_key and slskd.api_key (Administrator role) before starting.")
	fmt.Println("The file permissions have been set to 0600 (owner read/write only).")
}
