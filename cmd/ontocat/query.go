package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"ontocat/internal/runner"
	"ontocat/internal/sparql"
)

func queryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "query",
		Short: "Run SPARQL queries against the catalog",
	}
	cmd.AddCommand(queryRunCmd())
	cmd.AddCommand(queryBatchCmd())
	return cmd
}

func queryRunCmd() *cobra.Command {
	var modelID string
	var allModels bool
	var resultsDir string
	var noSave bool
	cmd := &cobra.Command{
		Use:   "run <query-file>",
		Short: "Run one query against the merged graph, one model, or every model",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, cat, err := loadCatalog()
			if err != nil {
				return err
			}

			query, err := sparql.Load(args[0])
			if err != nil {
				return err
			}

			dir := resultsDir
			if dir == "" {
				dir = cfg.Catalog.ResultsDir
			}

			if allModels {
				if noSave {
					return fmt.Errorf("--no-save cannot be combined with --all-models")
				}
				return cat.ExecuteQueryAllModels(query, dir)
			}

			target := runner.Target(cat)
			if modelID != "" {
				m, err := cat.GetModel(modelID)
				if err != nil {
					return err
				}
				target = m
			}

			exec := runner.New(dir, slog.Default())
			exec.Save = !noSave
			results, err := exec.Execute(target, query)
			if err != nil {
				return err
			}
			if results == nil {
				fmt.Fprintln(os.Stdout, "Query already executed for this graph; see the results directory.")
				return nil
			}
			return printResults(results)
		},
	}
	cmd.Flags().StringVar(&modelID, "model", "", "Run against one model instead of the merged graph")
	cmd.Flags().BoolVar(&allModels, "all-models", false, "Run against every model and compile the rows")
	cmd.Flags().StringVar(&resultsDir, "results", "", "Results directory (default from ontocat.yaml)")
	cmd.Flags().BoolVar(&noSave, "no-save", false, "Print results without writing files or ledger entries")
	return cmd
}

func queryBatchCmd() *cobra.Command {
	var resultsDir string
	cmd := &cobra.Command{
		Use:   "batch [queries-dir]",
		Short: "Run every query in a directory against every model",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, cat, err := loadCatalog()
			if err != nil {
				return err
			}

			dir := cfg.Catalog.QueriesDir
			if len(args) == 1 {
				dir = args[0]
			}
			if dir == "" {
				return fmt.Errorf("no queries directory: pass one or set queries_dir in %s", "ontocat.yaml")
			}

			queries, err := sparql.LoadDir(dir)
			if err != nil {
				return err
			}

			out := resultsDir
			if out == "" {
				out = cfg.Catalog.ResultsDir
			}
			return cat.ExecuteAllQueriesAllModels(queries, out)
		},
	}
	cmd.Flags().StringVar(&resultsDir, "results", "", "Results directory (default from ontocat.yaml)")
	return cmd
}

func printResults(results *sparql.Results) error {
	rows := make([]map[string]string, 0, len(results.Rows))
	for _, row := range results.Rows {
		rendered := make(map[string]string, len(results.Vars))
		for _, v := range results.Vars {
			rendered[v] = runner.RenderTerm(row[v])
		}
		rows = append(rows, rendered)
	}
	payload, err := json.MarshalIndent(rows, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding results: %w", err)
	}
	fmt.Fprintln(os.Stdout, string(payload))
	return nil
}
