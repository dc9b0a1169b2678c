package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/mpetrov/archmap/internal/export"
)

func exportCmd() *cobra.Command {
	var outputFile string
	var format string
	var projectName string
	var noMermaid bool

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the architecture document",
		Long:  "Export the persisted analysis as a markdown or JSON architecture document.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			db, err := openDB(cmd)
			if err != nil {
				return err
			}
			defer db.Close()

			opts := export.DefaultOptions()
			opts.IncludeMermaid = !noMermaid
			if cmd.Flags().Changed("format") {
				opts.Format = format
			} else if cfg.ExportFormat != "" {
				opts.Format = cfg.ExportFormat
			}
			if projectName != "" {
				opts.ProjectName = projectName
			} else if root, err := db.GetMeta("root"); err == nil && root != "" {
				opts.ProjectName = filepath.Base(root)
			}

			w := os.Stdout
			if outputFile != "" && outputFile != "-" {
				w, err = os.Create(outputFile)
				if err != nil {
					return fmt.Errorf("failed to create output file: %w", err)
				}
				defer w.Close()
			}

			return export.NewExporter(db).Export(w, opts)
		},
	}

	cmd.Flags().StringVarP(&outputFile, "output", "o", "", "output file path (default stdout)")
	cmd.Flags().StringVarP(&format, "format", "f", "markdown", "output format (markdown/json)")
	cmd.Flags().StringVar(&projectName, "name", "", "project name for the document header")
	cmd.Flags().BoolVar(&noMermaid, "no-mermaid", false, "skip the mermaid relationship diagram")

	return cmd
}
