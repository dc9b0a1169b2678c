package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mpetrov/archmap/internal/analyzer"
	"github.com/mpetrov/archmap/internal/config"
	"github.com/mpetrov/archmap/internal/storage"
)

func outputJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// loadConfig reads the configuration file. The --config flag wins over
// ARCHMAP_CONFIG; a missing file yields defaults.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	path := ConfigPath
	if !cmd.Flags().Changed("config") {
		if env := os.Getenv("ARCHMAP_CONFIG"); env != "" {
			path = env
		}
	}
	return config.Load(path)
}

// resolveDBPath picks the database path: --db flag, then ARCHMAP_DB,
// then the configured database, then the built-in default.
func resolveDBPath(cmd *cobra.Command, cfg config.Config) string {
	if cmd.Flags().Changed("db") {
		return DbPath
	}
	if env := os.Getenv("ARCHMAP_DB"); env != "" {
		return env
	}
	if cfg.Database != "" {
		return cfg.Database
	}
	return DbPath
}

// openDB opens the analysis database for a read command
func openDB(cmd *cobra.Command) (*storage.DB, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	db, err := storage.Open(resolveDBPath(cmd, cfg))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return db, nil
}

// resultFrom assembles the persistable result from a completed run
func resultFrom(pa *analyzer.ProjectAnalyzer) *storage.Result {
	return &storage.Result{
		Root:       pa.Root(),
		Endpoints:  pa.Endpoints(),
		Models:     pa.Models(),
		Views:      pa.Views(),
		Services:   pa.Services(),
		Features:   pa.Features(),
		Actors:     pa.Actors(),
		Boundaries: pa.Boundaries(),
		Edges:      pa.Graph().Edges(),
		UseCases:   pa.UseCases(),
		Warnings:   pa.Warnings(),
	}
}
