package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	var verbose bool
	root := &cobra.Command{
		Use:   "ontocat",
		Short: "Metadata-driven accessor for a catalog of ontology models",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := slog.LevelWarn
			if verbose {
				level = slog.LevelInfo
			}
			slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
		},
	}
	root.Version = version
	root.SetVersionTemplate("{{.Version}}\n")
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log catalog and query activity")
	root.AddCommand(initCmd())
	root.AddCommand(modelsCmd())
	root.AddCommand(queryCmd())
	root.AddCommand(exportCmd())
	root.AddCommand(validateCmd())
	root.AddCommand(serveCmd())
	root.AddCommand(versionCmd())
	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}
