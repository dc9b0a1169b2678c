package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mpetrov/archmap/internal/display"
	"github.com/mpetrov/archmap/internal/storage"
)

func traceCmd() *cobra.Command {
	var depth int
	var reverse bool
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "trace <name>",
		Short: "Follow relationships from an entity",
		Long: `Follow relationships transitively from the best-matching entity.
By default the trace runs source to target (what the entity reaches);
--reverse follows edges backwards (what reaches the entity).`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := openDB(cmd)
			if err != nil {
				return err
			}
			defer db.Close()

			matches, err := db.FindEntitiesByPattern(args[0])
			if err != nil {
				return fmt.Errorf("search failed: %w", err)
			}
			if len(matches) == 0 {
				fmt.Println("No matches found")
				return nil
			}
			target := matches[0]
			if len(matches) > 1 {
				fmt.Fprintf(os.Stderr, "%d matches, tracing best: %s\n", len(matches), display.Label(target))
			}

			var rows []storage.TraceRow
			if reverse {
				rows, err = db.GetIncomingTrace(target.ID, depth)
			} else {
				rows, err = db.GetOutgoingTrace(target.ID, depth)
			}
			if err != nil {
				return fmt.Errorf("trace failed: %w", err)
			}
			if jsonOut {
				return outputJSON(rows)
			}

			fmt.Printf("%s  %s:%d\n", display.Label(target), target.File, target.Line)
			if len(rows) == 0 {
				fmt.Println("└── (none)")
				return nil
			}
			fmt.Print(display.FormatTrace(rows))
			return nil
		},
	}

	cmd.Flags().IntVar(&depth, "depth", 0, "traversal depth (0 uses the built-in bound)")
	cmd.Flags().BoolVarP(&reverse, "reverse", "r", false, "trace incoming relationships instead")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "output as JSON")

	return cmd
}
