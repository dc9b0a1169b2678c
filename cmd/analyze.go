package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mpetrov/archmap/internal/analyzer"
	"github.com/mpetrov/archmap/internal/storage"
)

func analyzeCmd() *cobra.Command {
	var outputPath string

	cmd := &cobra.Command{
		Use:   "analyze [project-path]",
		Short: "Analyze a project tree and build its architecture map",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			root := "."
			if len(args) > 0 {
				root = args[0]
			}

			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			opts, err := cfg.AnalyzerOptions()
			if err != nil {
				return err
			}

			dbPath := resolveDBPath(cmd, cfg)
			if outputPath != "" {
				dbPath = outputPath
			}

			pa := analyzer.New(root, opts)
			if err := pa.Run(); err != nil {
				return fmt.Errorf("analysis failed: %w", err)
			}

			for _, warn := range pa.Warnings() {
				fmt.Fprintf(os.Stderr, "warning: %s: %s\n", warn.File, warn.Reason)
			}

			db, err := storage.Open(dbPath)
			if err != nil {
				return fmt.Errorf("failed to open database: %w", err)
			}
			defer db.Close()

			if err := db.SaveResult(resultFrom(pa)); err != nil {
				return fmt.Errorf("failed to save result: %w", err)
			}

			st := pa.Stats()
			fmt.Printf("Analyzed %s (%d files)\n", pa.Root(), st.Files)
			fmt.Printf("  endpoints: %d  models: %d  views: %d  services: %d\n",
				st.Endpoints, st.Models, st.Views, st.Services)
			fmt.Printf("  features: %d  actors: %d  boundaries: %d  relationships: %d  use cases: %d\n",
				st.Features, st.Actors, st.Boundaries, st.Relationships, st.UseCases)
			fmt.Printf("Saved to %s\n", dbPath)

			return nil
		},
	}

	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "database output path (overrides --db)")

	return cmd
}
