package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mpetrov/archmap/internal/display"
	"github.com/mpetrov/archmap/internal/entity"
)

func listCmd() *cobra.Command {
	var jsonOut bool

	cmd := &cobra.Command{
		Use:       "list <endpoints|models|views|services|features>",
		Short:     "List one discovered inventory",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"endpoints", "models", "views", "services", "features"},
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := openDB(cmd)
			if err != nil {
				return err
			}
			defer db.Close()

			if args[0] == "features" {
				features, err := db.GetFeatures()
				if err != nil {
					return fmt.Errorf("query failed: %w", err)
				}
				if jsonOut {
					return outputJSON(features)
				}
				fmt.Printf("%d features:\n\n", len(features))
				for _, f := range features {
					fmt.Printf("  %s (%s) %d members\n", f.Name, f.Module, f.Members)
				}
				return nil
			}

			var kind entity.Kind
			switch args[0] {
			case "endpoints":
				kind = entity.KindEndpoint
			case "models":
				kind = entity.KindModel
			case "views":
				kind = entity.KindView
			case "services":
				kind = entity.KindService
			default:
				return fmt.Errorf("unknown inventory %q", args[0])
			}

			rows, err := db.GetEntitiesByKind(kind)
			if err != nil {
				return fmt.Errorf("query failed: %w", err)
			}
			if jsonOut {
				return outputJSON(rows)
			}
			if len(rows) == 0 {
				fmt.Printf("No %s found\n", args[0])
				return nil
			}

			switch kind {
			case entity.KindEndpoint:
				fmt.Print(display.FormatEndpoints(rows))
			case entity.KindModel:
				fmt.Print(display.FormatModels(rows))
			default:
				fmt.Print(display.FormatNamedEntities(rows))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOut, "json", false, "output as JSON")

	return cmd
}
