package main

import (
	"fmt"
	"os"

	"github.com/knakk/rdf"
	"github.com/spf13/cobra"
)

func exportCmd() *cobra.Command {
	var format string
	var out string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Serialize the merged catalog graph to a single file",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, cat, err := loadCatalog()
			if err != nil {
				return err
			}

			var f rdf.Format
			switch format {
			case "nt":
				f = rdf.NTriples
			case "ttl":
				f = rdf.Turtle
			default:
				return fmt.Errorf("unsupported export format %q (use nt or ttl)", format)
			}

			w := os.Stdout
			if out != "" {
				file, err := os.Create(out)
				if err != nil {
					return fmt.Errorf("creating %s: %w", out, err)
				}
				defer file.Close()
				w = file
			}

			if err := cat.Graph().Serialize(w, f); err != nil {
				return fmt.Errorf("serializing catalog graph: %w", err)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&format, "format", "nt", "Output format: nt or ttl")
	cmd.Flags().StringVar(&out, "out", "", "Output file (default stdout)")
	return cmd
}
