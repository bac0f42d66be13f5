package runner

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"ontocat/internal/rdfgraph"
	"ontocat/internal/sparql"
)

// ErrResultsDir marks a results directory that could not be created.
var ErrResultsDir = errors.New("results directory not available")

// Target is anything holding a queryable RDF graph: a model or the whole
// catalog. Both implement it by composition.
type Target interface {
	ID() string
	Graph() *rdfgraph.Graph
	GraphHash() string
}

// Executor runs queries against targets. When Save is set, results go to
// CSV files under Dir and executed (query, graph) pairs are recorded in the
// directory's hash ledger so identical pairs are never re-run.
type Executor struct {
	Dir    string
	Save   bool
	Logger *slog.Logger
}

// New returns an Executor that saves results under dir.
func New(dir string, logger *slog.Logger) *Executor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Executor{Dir: dir, Save: true, Logger: logger}
}

// Execute runs one query against one target.
//
// With Save set, a (query hash, graph hash) pair already present in the
// ledger skips execution and returns nil results: the ledger is a
// write-avoidance cache, not a read-through one, so callers needing prior
// rows must read the result file themselves. Otherwise the query runs, the
// results land in <Dir>/<query.Name>_result_<target.ID()>.csv (header-only
// when empty), and the pair is appended to the ledger.
func (e *Executor) Execute(target Target, query *sparql.Query) (*sparql.Results, error) {
	if e.Save {
		if err := os.MkdirAll(e.Dir, 0o755); err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrResultsDir, e.Dir, err)
		}

		ledger := OpenLedger(e.Dir)
		seen, err := ledger.Seen(query.Hash, target.GraphHash())
		if err != nil {
			return nil, err
		}
		if seen {
			e.Logger.Info("skipping query, hash pair already executed",
				"query", query.Name,
				"target", target.ID())
			return nil, nil
		}
	}

	e.Logger.Info("executing query", "query", query.Name, "target", target.ID())

	results, err := sparql.Execute(target.Graph(), query)
	if err != nil {
		return nil, err
	}

	if e.Save {
		resultPath := filepath.Join(e.Dir, fmt.Sprintf("%s_result_%s.csv", query.Name, target.ID()))
		if err := writeResultsCSV(resultPath, results); err != nil {
			return nil, err
		}
		if err := OpenLedger(e.Dir).Record(query.Hash, target.GraphHash()); err != nil {
			return nil, err
		}
		e.Logger.Info("results written",
			"query", query.Name,
			"target", target.ID(),
			"rows", len(results.Rows),
			"file", resultPath)
	}

	return results, nil
}

// ExecuteAll runs queries sequentially against one target. The first failure
// aborts; results already written stay on disk.
func (e *Executor) ExecuteAll(target Target, queries []*sparql.Query) error {
	for _, query := range queries {
		if _, err := e.Execute(target, query); err != nil {
			return fmt.Errorf("query %s on %s: %w", query.Name, target.ID(), err)
		}
	}
	return nil
}
