package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mpetrov/archmap/internal/display"
)

func usecasesCmd() *cobra.Command {
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "usecases",
		Short: "List derived use cases with their step narratives",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := openDB(cmd)
			if err != nil {
				return err
			}
			defer db.Close()

			ucs, err := db.GetUseCases()
			if err != nil {
				return fmt.Errorf("query failed: %w", err)
			}
			if jsonOut {
				return outputJSON(ucs)
			}
			if len(ucs) == 0 {
				fmt.Println("No use cases found, run analyze first")
				return nil
			}

			fmt.Printf("%d use cases:\n\n", len(ucs))
			for _, uc := range ucs {
				fmt.Printf("%s (actor: %s)\n", uc.Name, uc.Actor)
				fmt.Print(display.FormatSteps(uc.Steps))
				fmt.Println()
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOut, "json", false, "output as JSON")

	return cmd
}
