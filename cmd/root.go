package cmd

import (
	"github.com/spf13/cobra"
)

var (
	DbPath     string
	ConfigPath string
)

// RegisterCommands adds all subcommands to the root command
func RegisterCommands(rootCmd *cobra.Command) {
	rootCmd.AddCommand(analyzeCmd())
	rootCmd.AddCommand(listCmd())
	rootCmd.AddCommand(searchCmd())
	rootCmd.AddCommand(actorsCmd())
	rootCmd.AddCommand(boundariesCmd())
	rootCmd.AddCommand(usecasesCmd())
	rootCmd.AddCommand(traceCmd())
	rootCmd.AddCommand(statsCmd())
	rootCmd.AddCommand(exportCmd())
	rootCmd.AddCommand(watchCmd())
}
