package runner

import (
	"encoding/csv"
	"fmt"
	"os"
	"strings"

	"github.com/knakk/rdf"

	"ontocat/internal/sparql"
)

// RenderTerm gives the CSV cell value for a bound term. IRIs are shortened
// to their local name (the fragment after the last # or /); literals keep
// their lexical value.
func RenderTerm(t rdf.Term) string {
	if t == nil {
		return ""
	}
	if t.Type() == rdf.TermIRI {
		return localName(t.String())
	}
	return t.String()
}

func localName(iri string) string {
	if idx := strings.LastIndex(iri, "#"); idx >= 0 && idx < len(iri)-1 {
		return iri[idx+1:]
	}
	if idx := strings.LastIndex(iri, "/"); idx >= 0 && idx < len(iri)-1 {
		return iri[idx+1:]
	}
	return iri
}

// writeResultsCSV writes one result file: columns are the projection
// variables, one row per binding. An empty result set still produces a file
// with the header only.
func writeResultsCSV(path string, results *sparql.Results) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating result file %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(results.Vars); err != nil {
		return fmt.Errorf("writing result header: %w", err)
	}
	for _, row := range results.Rows {
		record := make([]string, len(results.Vars))
		for i, v := range results.Vars {
			record[i] = RenderTerm(row[v])
		}
		if err := w.Write(record); err != nil {
			return fmt.Errorf("writing result row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("flushing result file %s: %w", path, err)
	}
	return nil
}

// WriteCompiled writes the catalog-wide compiled file for one query: the
// model_id column first, then the projection variables.
func WriteCompiled(path string, vars []string, rows []CompiledRow) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating compiled result file %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	header := append([]string{"model_id"}, vars...)
	if err := w.Write(header); err != nil {
		return fmt.Errorf("writing compiled header: %w", err)
	}
	for _, row := range rows {
		record := make([]string, 0, len(vars)+1)
		record = append(record, row.ModelID)
		for _, v := range vars {
			record = append(record, RenderTerm(row.Binding[v]))
		}
		if err := w.Write(record); err != nil {
			return fmt.Errorf("writing compiled row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("flushing compiled result file %s: %w", path, err)
	}
	return nil
}

// CompiledRow is one binding row tagged with the model it came from.
type CompiledRow struct {
	ModelID string
	Binding sparql.Binding
}
