package main

import (
	"fmt"

	"github.com/aussiebroadwan/quill/internal/quill/app"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of quill",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("quill version %s\n", app.BuildVersion)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
