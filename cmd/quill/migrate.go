package main

import (
	"github.com/aussiebroadwan/quill/internal/quill/app"
	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply database migrations and exit",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		logger := app.NewLogger(cfg)

		db, err := app.OpenDatabase(cfg.DatabaseFile)
		if err != nil {
			return err
		}
		defer db.Close()

		version, dirty, err := db.MigrationVersion()
		if err != nil {
			return err
		}
		logger.Info("database is up to date", "path", cfg.DatabaseFile, "version", version, "dirty", dirty)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}
