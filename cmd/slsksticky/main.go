package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	cfgFile string
)

var rootCmd = &cobra.Command{
	Use:   "slsksticky",
	Short: "slsksticky - keep the slskd listen port in sync with gluetun",
	Long: `slsksticky watches the port gluetun has forwarded through the VPN
and keeps the slskd (Soulseek daemon) listen port aligned with it:
- polls the gluetun control server for the forwarded port
- updates soulseek.listen_port in the slskd options on change
- triggers a Soulseek reconnect so the new port takes effect
- publishes a health snapshot after every check`,
	Run: func(cmd *cobra.Command, args []string) {
		// Default: run the daemon
		runDaemon()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "config.yaml", "config file path")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
