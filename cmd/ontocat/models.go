package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"ontocat/internal/catalog"
)

func modelsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "models",
		Short: "Inspect the loaded model set",
	}
	cmd.AddCommand(modelsListCmd())
	cmd.AddCommand(modelsShowCmd())
	return cmd
}

func modelsListCmd() *cobra.Command {
	var language, keyword, task, devContext, style, ontologyType, theme, operand string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List models, optionally filtered by metadata attributes",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, cat, err := loadCatalog()
			if err != nil {
				return err
			}

			combine, err := catalog.ParseCombine(operand)
			if err != nil {
				return err
			}

			var filters []catalog.Filter
			add := func(field, value string) {
				if value != "" {
					filters = append(filters, catalog.Filter{Field: field, Values: []string{value}})
				}
			}
			add("language", language)
			add("keyword", keyword)
			add("designedForTask", task)
			add("context", devContext)
			add("representationStyle", style)
			add("ontologyType", ontologyType)
			add("theme", theme)

			models, err := cat.FilterModels(combine, filters...)
			if err != nil {
				return err
			}
			if len(models) == 0 {
				fmt.Fprintln(os.Stdout, "No models found.")
				return nil
			}
			for _, m := range models {
				title := m.Title
				if title == "" {
					title = "(untitled)"
				}
				fmt.Fprintf(os.Stdout, "%s\t%s\t%d triples\n", m.ID(), title, m.Graph().Len())
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&language, "language", "", "Language filter (IANA sub tag, e.g. en)")
	cmd.Flags().StringVar(&keyword, "keyword", "", "Keyword filter")
	cmd.Flags().StringVar(&task, "task", "", "designedForTask filter")
	cmd.Flags().StringVar(&devContext, "context", "", "Development context filter")
	cmd.Flags().StringVar(&style, "style", "", "Representation style filter")
	cmd.Flags().StringVar(&ontologyType, "type", "", "Ontology type filter")
	cmd.Flags().StringVar(&theme, "theme", "", "Theme filter")
	cmd.Flags().StringVar(&operand, "operand", "and", `Combine filters with "and" or "or"`)
	return cmd
}

func modelsShowCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Print one model's metadata record as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, cat, err := loadCatalog()
			if err != nil {
				return err
			}
			m, err := cat.GetModel(args[0])
			if err != nil {
				return err
			}

			record := map[string]any{
				"id":         m.ID(),
				"path":       m.Path(),
				"graph_hash": m.GraphHash(),
				"triples":    m.Graph().Len(),
				"metadata":   m.Metadata,
			}
			payload, err := json.MarshalIndent(record, "", "  ")
			if err != nil {
				return fmt.Errorf("encoding model record: %w", err)
			}
			fmt.Fprintln(os.Stdout, string(payload))
			return nil
		},
	}
	return cmd
}
