// Command sqljson generates SQL statements returning JSON and multi-column
// results, together with their result type documents, from query group
// specifications and a database metadata document.
//
// Usage:
//
//	sqljson fetch-dbmd --url postgres://localhost/drugs --output dbmd.json
//	sqljson generate --dbmd dbmd.json --specs queries.yaml --sql-dir sql --types-dir types
package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/stokaro/sqljson/cmd/fetchdbmd"
	"github.com/stokaro/sqljson/cmd/generate"
)

func newRootCommand() *cobra.Command {
	var verbose bool

	rootCmd := &cobra.Command{
		Use:   "sqljson",
		Short: "Generate JSON producing SQL and result types from table output specifications",
		PersistentPreRun: func(_ *cobra.Command, _ []string) {
			level := slog.LevelWarn
			if verbose {
				level = slog.LevelDebug
			}
			slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
		},
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log progress details to standard error")

	rootCmd.AddCommand(generate.NewGenerateCommand())
	rootCmd.AddCommand(fetchdbmd.NewFetchDBMDCommand())
	return rootCmd
}

func main() {
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
