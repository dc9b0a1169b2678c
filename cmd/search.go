package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mpetrov/archmap/internal/display"
)

func searchCmd() *cobra.Command {
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "search <pattern>",
		Short: "Search discovered entities by name",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := openDB(cmd)
			if err != nil {
				return err
			}
			defer db.Close()

			rows, err := db.FindEntitiesByPattern(args[0])
			if err != nil {
				return fmt.Errorf("search failed: %w", err)
			}
			if jsonOut {
				return outputJSON(rows)
			}
			if len(rows) == 0 {
				fmt.Println("No matches found")
				return nil
			}

			fmt.Printf("%d matches:\n\n", len(rows))
			fmt.Print(display.FormatSearchResults(rows))
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOut, "json", false, "output as JSON")

	return cmd
}
