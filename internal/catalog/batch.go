package catalog

import (
	"fmt"
	"path/filepath"

	"ontocat/internal/runner"
	"ontocat/internal/sparql"
)

// ExecuteQueryAllModels runs one query against every loaded model, writes
// the per-model result files through the executor's memoization, and
// compiles all rows into <query.Name>_result_compiled.csv with the model id
// as the first column. Models skipped by the hash ledger contribute no rows
// to the compiled file.
func (c *Catalog) ExecuteQueryAllModels(query *sparql.Query, resultsDir string) error {
	exec := runner.New(resultsDir, c.logger)

	var vars []string
	var compiled []runner.CompiledRow
	for _, m := range c.models {
		results, err := exec.Execute(m, query)
		if err != nil {
			return fmt.Errorf("query %s on model %s: %w", query.Name, m.ID(), err)
		}
		if results == nil {
			continue // already executed for this graph
		}
		if vars == nil {
			vars = results.Vars
		}
		for _, row := range results.Rows {
			compiled = append(compiled, runner.CompiledRow{ModelID: m.ID(), Binding: row})
		}
	}

	if len(compiled) == 0 {
		c.logger.Info("no rows to compile", "query", query.Name)
		return nil
	}

	compiledPath := filepath.Join(resultsDir, fmt.Sprintf("%s_result_compiled.csv", query.Name))
	if err := runner.WriteCompiled(compiledPath, vars, compiled); err != nil {
		return err
	}
	c.logger.Info("compiled results written", "query", query.Name, "rows", len(compiled), "file", compiledPath)
	return nil
}

// ExecuteAllQueriesAllModels fans every query out over every model,
// sequentially. The first failure aborts; files already written stay.
func (c *Catalog) ExecuteAllQueriesAllModels(queries []*sparql.Query, resultsDir string) error {
	for _, query := range queries {
		if err := c.ExecuteQueryAllModels(query, resultsDir); err != nil {
			return err
		}
	}
	return nil
}
