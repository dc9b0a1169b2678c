package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/mpetrov/archmap/cmd"
	"github.com/mpetrov/archmap/internal/config"
)

func main() {
	// A .env in the working directory may carry ARCHMAP_DB / ARCHMAP_CONFIG
	_ = godotenv.Load()

	rootCmd := &cobra.Command{
		Use:   "archmap",
		Short: "Architecture discovery for polyglot codebases",
		Long: `archmap scans a project tree, discovers its endpoints, models, views
and services, infers the actors and trust boundaries around them, and
derives the use cases the system supports. Results persist to a local
SQLite database for listing, searching, tracing and export.`,
	}

	rootCmd.PersistentFlags().StringVarP(&cmd.DbPath, "db", "d", config.DefaultDatabase, "analysis database path")
	rootCmd.PersistentFlags().StringVarP(&cmd.ConfigPath, "config", "c", config.DefaultPath, "configuration file path")

	cmd.RegisterCommands(rootCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
