package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

func statsCmd() *cobra.Command {
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show counts for the persisted analysis",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := openDB(cmd)
			if err != nil {
				return err
			}
			defer db.Close()

			st, err := db.GetStats()
			if err != nil {
				return fmt.Errorf("query failed: %w", err)
			}
			if jsonOut {
				return outputJSON(st)
			}

			if st.Root != "" {
				fmt.Printf("Root:        %s\n", st.Root)
			}
			if st.AnalyzedAt != "" {
				fmt.Printf("Analyzed:    %s\n", st.AnalyzedAt)
			}
			fmt.Printf("Endpoints:   %d\n", st.Endpoints)
			fmt.Printf("Models:      %d\n", st.Models)
			fmt.Printf("Views:       %d\n", st.Views)
			fmt.Printf("Services:    %d\n", st.Services)
			fmt.Printf("Features:    %d\n", st.Features)
			fmt.Printf("Actors:      %d\n", st.Actors)
			fmt.Printf("Boundaries:  %d\n", st.Boundaries)
			fmt.Printf("Edges:       %d\n", st.Edges)
			fmt.Printf("Use cases:   %d\n", st.UseCases)
			fmt.Printf("Warnings:    %d\n", st.Warnings)
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOut, "json", false, "output as JSON")

	return cmd
}
