package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/mpetrov/archmap/internal/analyzer"
	"github.com/mpetrov/archmap/internal/storage"
	"github.com/mpetrov/archmap/internal/watcher"
)

func watchCmd() *cobra.Command {
	var debounceMs int

	cmd := &cobra.Command{
		Use:   "watch [project-path]",
		Short: "Watch a project tree and re-analyze on change",
		Long: `Watch the project sources and re-run the full analysis whenever a
recognized source file changes. Each run replaces the persisted result.`,
		Args: cobra.MaximumNArgs(1),
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

			fmt.Println("Running initial analysis...")
			stats, err := runOnce(root, dbPath, opts)
			if err != nil {
				return fmt.Errorf("initial analysis failed: %w", err)
			}
			fmt.Printf("Initial analysis done: %d endpoints, %d use cases\n", stats.Endpoints, stats.UseCases)

			fmt.Printf("\nWatching %s (db: %s, debounce: %dms)\n", root, dbPath, debounceMs)
			fmt.Println("Press Ctrl+C to stop")
			fmt.Println()

			w, err := watcher.New(root, dbPath, opts,
				watcher.WithDebounceDelay(time.Duration(debounceMs)*time.Millisecond),
				watcher.WithOnAnalysisStart(func() {
					fmt.Printf("[%s] Change detected, re-analyzing...\n", time.Now().Format("15:04:05"))
				}),
				watcher.WithOnAnalysisDone(func(stats analyzer.Stats, duration time.Duration) {
					fmt.Printf("[%s] Done: %d endpoints, %d relationships, %d use cases (%v)\n",
						time.Now().Format("15:04:05"), stats.Endpoints, stats.Relationships,
						stats.UseCases, duration.Round(time.Millisecond))
				}),
				watcher.WithOnError(func(err error) {
					fmt.Fprintf(os.Stderr, "[%s] Error: %v\n", time.Now().Format("15:04:05"), err)
				}),
			)
			if err != nil {
				return fmt.Errorf("failed to create watcher: %w", err)
			}

			w.Start()
			defer w.Stop()

			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
			<-sigCh

			fmt.Println("\nStopping...")
			return nil
		},
	}

	cmd.Flags().IntVar(&debounceMs, "debounce", int(watcher.DefaultDebounce/time.Millisecond), "debounce delay in milliseconds")

	return cmd
}

// runOnce executes one full analysis and persists the result
func runOnce(root, dbPath string, opts analyzer.Options) (analyzer.Stats, error) {
	pa := analyzer.New(root, opts)
	if err := pa.Run(); err != nil {
		return analyzer.Stats{}, err
	}

	db, err := storage.Open(dbPath)
	if err != nil {
		return analyzer.Stats{}, fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	if err := db.SaveResult(resultFrom(pa)); err != nil {
		return analyzer.Stats{}, fmt.Errorf("failed to save result: %w", err)
	}
	return pa.Stats(), nil
}
