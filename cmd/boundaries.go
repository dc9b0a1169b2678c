package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mpetrov/archmap/internal/display"
)

func boundariesCmd() *cobra.Command {
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "boundaries",
		Short: "List inferred system boundaries and their members",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := openDB(cmd)
			if err != nil {
				return err
			}
			defer db.Close()

			boundaries, err := db.GetBoundaries()
			if err != nil {
				return fmt.Errorf("query failed: %w", err)
			}
			if jsonOut {
				return outputJSON(boundaries)
			}
			if len(boundaries) == 0 {
				fmt.Println("No boundaries found, run analyze first")
				return nil
			}

			for _, b := range boundaries {
				fmt.Printf("%s", b.Name)
				if b.Auth != "" {
					fmt.Printf(" [auth: %s]", b.Auth)
				}
				fmt.Println()
				for i, m := range b.Members {
					prefix := "├──"
					if i == len(b.Members)-1 {
						prefix = "└──"
					}
					fmt.Printf("%s %s (%s)\n", prefix, display.Label(m), m.Kind)
				}
				fmt.Println()
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOut, "json", false, "output as JSON")

	return cmd
}
