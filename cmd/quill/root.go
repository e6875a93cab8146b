package main

import (
	"fmt"
	"os"

	"github.com/aussiebroadwan/quill/internal/quill/app"
	"github.com/spf13/cobra"
)

var (
	configFile string
	logLevel   string
)

// rootCmd runs the server when called without a subcommand.
var rootCmd = &cobra.Command{
	Use:   "quill",
	Short: "Collaborative notes backend",
	Long: `Quill serves notes over HTTP. A note has one owner and a ledger of
collaborators who joined by accepting an invite.`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return serveCmd.RunE(cmd, args)
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// loadConfig reads the config file and environment, then applies flag
// overrides.
func loadConfig() (app.Config, error) {
	cfg, err := app.LoadConfig(configFile)
	if err != nil {
		return app.Config{}, err
	}
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}
	return cfg, nil
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "Path to a YAML config file (env: QUILL_CONFIG_FILE)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Override LOG_LEVEL (debug, info, warn, error)")
}
