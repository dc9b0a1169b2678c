package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mpetrov/archmap/internal/display"
)

func actorsCmd() *cobra.Command {
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "actors",
		Short: "List inferred actors and their reachable endpoints",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := openDB(cmd)
			if err != nil {
				return err
			}
			defer db.Close()

			actors, err := db.GetActors()
			if err != nil {
				return fmt.Errorf("query failed: %w", err)
			}
			if jsonOut {
				return outputJSON(actors)
			}
			if len(actors) == 0 {
				fmt.Println("No actors found, run analyze first")
				return nil
			}

			for _, a := range actors {
				fmt.Printf("%s (%s)\n", a.Name, a.Role)
				for i, ep := range a.Endpoints {
					prefix := "├──"
					if i == len(a.Endpoints)-1 {
						prefix = "└──"
					}
					fmt.Printf("%s %s\n", prefix, display.Label(ep))
				}
				fmt.Println()
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOut, "json", false, "output as JSON")

	return cmd
}
