package runner

import (
	"encoding/csv"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/knakk/rdf"

	"ontocat/internal/rdfgraph"
	"ontocat/internal/sparql"
)

const runnerTurtle = `@prefix ex: <http://example.org/> .
ex:alpha a ex:Vehicle ;
    ex:name "Alpha" .
ex:beta a ex:Vehicle ;
    ex:name "Beta" .
`

const vehicleQuery = `PREFIX ex: <http://example.org/>
SELECT ?v ?name WHERE {
  ?v a ex:Vehicle .
  ?v ex:name ?name .
}
ORDER BY ?name
`

type fakeTarget struct {
	id    string
	graph *rdfgraph.Graph
}

func (t *fakeTarget) ID() string             { return t.id }
func (t *fakeTarget) Graph() *rdfgraph.Graph { return t.graph }
func (t *fakeTarget) GraphHash() string      { return t.graph.CanonicalHash() }

func newFakeTarget(t *testing.T, id, turtle string) *fakeTarget {
	t.Helper()
	g, err := rdfgraph.Parse(strings.NewReader(turtle), rdf.Turtle)
	if err != nil {
		t.Fatalf("parsing fixture graph: %v", err)
	}
	return &fakeTarget{id: id, graph: g}
}

func newQuery(t *testing.T, name, text string) *sparql.Query {
	t.Helper()
	return &sparql.Query{Name: name, Text: text, Hash: sparql.HashText(text)}
}

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("opening %s: %v", path, err)
	}
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("reading %s: %v", path, err)
	}
	return rows
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func TestExecute(t *testing.T) {
	t.Run("writes result file and ledger", func(t *testing.T) {
		dir := t.TempDir()
		exec := New(dir, quietLogger())
		target := newFakeTarget(t, "alpha", runnerTurtle)
		query := newQuery(t, "vehicles", vehicleQuery)

		results, err := exec.Execute(target, query)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if len(results.Rows) != 2 {
			t.Fatalf("expected 2 rows, got %d", len(results.Rows))
		}

		rows := readCSV(t, filepath.Join(dir, "vehicles_result_alpha.csv"))
		if len(rows) != 3 {
			t.Fatalf("expected header plus 2 rows, got %d lines", len(rows))
		}
		if rows[0][0] != "v" || rows[0][1] != "name" {
			t.Fatalf("unexpected header %v", rows[0])
		}
		if rows[1][0] != "alpha" || rows[1][1] != "Alpha" {
			t.Fatalf("unexpected first row %v", rows[1])
		}

		ledger := readCSV(t, filepath.Join(dir, ".hashes.csv"))
		if len(ledger) != 2 {
			t.Fatalf("expected header plus 1 ledger row, got %d", len(ledger))
		}
		if ledger[0][0] != "query_hash" || ledger[0][1] != "model_hash" {
			t.Fatalf("unexpected ledger header %v", ledger[0])
		}
		if ledger[1][0] != query.Hash || ledger[1][1] != target.GraphHash() {
			t.Fatalf("ledger row does not match hash pair: %v", ledger[1])
		}
	})

	t.Run("second run with same hashes is skipped", func(t *testing.T) {
		dir := t.TempDir()
		exec := New(dir, quietLogger())
		target := newFakeTarget(t, "alpha", runnerTurtle)
		query := newQuery(t, "vehicles", vehicleQuery)

		if _, err := exec.Execute(target, query); err != nil {
			t.Fatalf("first run: %v", err)
		}
		results, err := exec.Execute(target, query)
		if err != nil {
			t.Fatalf("second run: %v", err)
		}
		if results != nil {
			t.Fatalf("expected nil results on skip, got %v", results)
		}
		ledger := readCSV(t, filepath.Join(dir, ".hashes.csv"))
		if len(ledger) != 2 {
			t.Fatalf("skip must not append a duplicate ledger row, got %d lines", len(ledger))
		}
	})

	t.Run("changed graph re-executes", func(t *testing.T) {
		dir := t.TempDir()
		exec := New(dir, quietLogger())
		query := newQuery(t, "vehicles", vehicleQuery)

		if _, err := exec.Execute(newFakeTarget(t, "alpha", runnerTurtle), query); err != nil {
			t.Fatalf("first run: %v", err)
		}
		grown := runnerTurtle + "ex:gamma a ex:Vehicle ;\n    ex:name \"Gamma\" .\n"
		results, err := exec.Execute(newFakeTarget(t, "alpha", grown), query)
		if err != nil {
			t.Fatalf("second run: %v", err)
		}
		if results == nil || len(results.Rows) != 3 {
			t.Fatalf("expected re-execution with 3 rows, got %v", results)
		}
		ledger := readCSV(t, filepath.Join(dir, ".hashes.csv"))
		if len(ledger) != 3 {
			t.Fatalf("expected 2 ledger rows after graph change, got %d lines", len(ledger))
		}
	})

	t.Run("different query texts cached independently", func(t *testing.T) {
		dir := t.TempDir()
		exec := New(dir, quietLogger())
		target := newFakeTarget(t, "alpha", runnerTurtle)

		q1 := newQuery(t, "vehicles", vehicleQuery)
		q2 := newQuery(t, "names", "PREFIX ex: <http://example.org/>\nSELECT ?name WHERE { ?v ex:name ?name . }\n")

		if _, err := exec.Execute(target, q1); err != nil {
			t.Fatalf("first query: %v", err)
		}
		results, err := exec.Execute(target, q2)
		if err != nil {
			t.Fatalf("second query: %v", err)
		}
		if results == nil {
			t.Fatalf("a different query text must not be skipped")
		}
	})

	t.Run("empty results write header-only file", func(t *testing.T) {
		dir := t.TempDir()
		exec := New(dir, quietLogger())
		target := newFakeTarget(t, "alpha", runnerTurtle)
		query := newQuery(t, "boats", "PREFIX ex: <http://example.org/>\nSELECT ?b WHERE { ?b a ex:Boat . }\n")

		if _, err := exec.Execute(target, query); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		rows := readCSV(t, filepath.Join(dir, "boats_result_alpha.csv"))
		if len(rows) != 1 || rows[0][0] != "b" {
			t.Fatalf("expected header-only file, got %v", rows)
		}
	})

	t.Run("save disabled leaves directory untouched", func(t *testing.T) {
		dir := t.TempDir()
		exec := New(dir, quietLogger())
		exec.Save = false
		target := newFakeTarget(t, "alpha", runnerTurtle)

		results, err := exec.Execute(target, newQuery(t, "vehicles", vehicleQuery))
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if len(results.Rows) != 2 {
			t.Fatalf("expected 2 rows, got %d", len(results.Rows))
		}
		entries, err := os.ReadDir(dir)
		if err != nil {
			t.Fatalf("reading dir: %v", err)
		}
		if len(entries) != 0 {
			t.Fatalf("expected no files without save, got %d", len(entries))
		}
	})

	t.Run("invalid query surfaces error", func(t *testing.T) {
		exec := New(t.TempDir(), quietLogger())
		target := newFakeTarget(t, "alpha", runnerTurtle)
		_, err := exec.Execute(target, newQuery(t, "bad", "SELECT ?x WHERE { ?x FILTER(?x) }"))
		if err == nil {
			t.Fatalf("expected error for malformed query")
		}
	})
}

func TestExecuteAll(t *testing.T) {
	dir := t.TempDir()
	exec := New(dir, quietLogger())
	target := newFakeTarget(t, "alpha", runnerTurtle)
	queries := []*sparql.Query{
		newQuery(t, "vehicles", vehicleQuery),
		newQuery(t, "names", "PREFIX ex: <http://example.org/>\nSELECT ?name WHERE { ?v ex:name ?name . }\n"),
	}

	if err := exec.ExecuteAll(target, queries); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	for _, name := range []string{"vehicles_result_alpha.csv", "names_result_alpha.csv"} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Fatalf("expected %s to exist: %v", name, err)
		}
	}
}

func TestRenderTerm(t *testing.T) {
	hashIRI, _ := rdf.NewIRI("http://example.org/ns#Vehicle")
	slashIRI, _ := rdf.NewIRI("http://example.org/alpha")
	lit, _ := rdf.NewLiteral("Alpha")

	if got := RenderTerm(hashIRI); got != "Vehicle" {
		t.Fatalf("expected fragment local name, got %q", got)
	}
	if got := RenderTerm(slashIRI); got != "alpha" {
		t.Fatalf("expected path local name, got %q", got)
	}
	if got := RenderTerm(lit); got != "Alpha" {
		t.Fatalf("expected literal value, got %q", got)
	}
	if got := RenderTerm(nil); got != "" {
		t.Fatalf("expected empty cell for unbound, got %q", got)
	}
}

func TestWriteCompiled(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vehicles_result_compiled.csv")
	name, _ := rdf.NewLiteral("Alpha")
	rows := []CompiledRow{{ModelID: "alpha", Binding: sparql.Binding{"name": name}}}

	if err := WriteCompiled(path, []string{"name"}, rows); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	got := readCSV(t, path)
	if len(got) != 2 {
		t.Fatalf("expected header plus 1 row, got %v", got)
	}
	if got[0][0] != "model_id" || got[0][1] != "name" {
		t.Fatalf("unexpected header %v", got[0])
	}
	if got[1][0] != "alpha" || got[1][1] != "Alpha" {
		t.Fatalf("unexpected row %v", got[1])
	}
}
