package main

import (
	"os"

	"github.com/serin-lang/serin/cmd"
	"github.com/spf13/cobra"
)

func main() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:          "serin [subcommand]",
	Short:        "serin 🐦\n a small expression-oriented language with user-extensible syntax",
	Args:         cobra.MinimumNArgs(1),
	SilenceUsage: true,
}

func init() {
	rootCmd.AddCommand(cmd.ExpandCmd)
}
