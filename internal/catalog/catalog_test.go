package catalog

import (
	"encoding/csv"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"ontocat/internal/sparql"
)

const vehiclesTurtle = `@prefix ex: <http://example.org/> .
ex:car a ex:Vehicle ;
    ex:name "Car" .
`

const buildingsTurtle = `@prefix ex: <http://example.org/> .
ex:house a ex:Building ;
    ex:name "House" .
ex:tower a ex:Building ;
    ex:name "Tower" .
`

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

// writeCatalog lays out <root>/models/<id>/{ontology.ttl,metadata.yaml} for
// each fixture model.
func writeCatalog(t *testing.T, models map[string][2]string) string {
	t.Helper()
	root := t.TempDir()
	for id, files := range models {
		dir := filepath.Join(root, "models", id)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			t.Fatalf("creating model folder: %v", err)
		}
		if err := os.WriteFile(filepath.Join(dir, "ontology.ttl"), []byte(files[0]), 0o600); err != nil {
			t.Fatalf("writing ontology: %v", err)
		}
		if err := os.WriteFile(filepath.Join(dir, "metadata.yaml"), []byte(files[1]), 0o600); err != nil {
			t.Fatalf("writing metadata: %v", err)
		}
	}
	return root
}

func twoModelCatalog(t *testing.T) *Catalog {
	t.Helper()
	root := writeCatalog(t, map[string][2]string{
		"buildings": {buildingsTurtle, "title: Buildings\nkeyword:\n  - architecture\ncontext:\n  - Industry\nontologyType: Domain\n"},
		"vehicles":  {vehiclesTurtle, "title: Vehicles\nkeyword:\n  - transport\ncontext:\n  - Research\nontologyType: Domain\nrepresentationStyle: OntoumlStyle\n"},
	})
	c, err := Load(root, Options{Logger: quietLogger()})
	if err != nil {
		t.Fatalf("loading catalog: %v", err)
	}
	return c
}

func TestLoad(t *testing.T) {
	t.Run("loads models in sorted order", func(t *testing.T) {
		c := twoModelCatalog(t)
		models := c.Models()
		if len(models) != 2 {
			t.Fatalf("expected 2 models, got %d", len(models))
		}
		if models[0].ID() != "buildings" || models[1].ID() != "vehicles" {
			t.Fatalf("expected sorted load order, got %s, %s", models[0].ID(), models[1].ID())
		}
		if c.Graph().Len() != 6 {
			t.Fatalf("expected merged graph with 6 triples, got %d", c.Graph().Len())
		}
		if c.ID() != "catalog" {
			t.Fatalf("unexpected catalog id %q", c.ID())
		}
	})

	t.Run("missing models directory", func(t *testing.T) {
		_, err := Load(t.TempDir(), Options{Logger: quietLogger()})
		if !errors.Is(err, ErrNoModels) {
			t.Fatalf("expected ErrNoModels, got %v", err)
		}
	})

	t.Run("empty models directory", func(t *testing.T) {
		root := t.TempDir()
		if err := os.MkdirAll(filepath.Join(root, "models"), 0o755); err != nil {
			t.Fatalf("mkdir: %v", err)
		}
		_, err := Load(root, Options{Logger: quietLogger()})
		if !errors.Is(err, ErrNoModels) {
			t.Fatalf("expected ErrNoModels, got %v", err)
		}
	})

	t.Run("limit caps loaded models", func(t *testing.T) {
		root := writeCatalog(t, map[string][2]string{
			"alpha": {vehiclesTurtle, "title: A\n"},
			"beta":  {vehiclesTurtle, "title: B\n"},
		})
		c, err := Load(root, Options{Limit: 1, Logger: quietLogger()})
		if err != nil {
			t.Fatalf("loading catalog: %v", err)
		}
		if len(c.Models()) != 1 || c.Models()[0].ID() != "alpha" {
			t.Fatalf("expected only the first sorted model, got %v", c.Models())
		}
	})

	t.Run("exclude globs", func(t *testing.T) {
		root := writeCatalog(t, map[string][2]string{
			"alpha":      {vehiclesTurtle, "title: A\n"},
			"draft-beta": {vehiclesTurtle, "title: B\n"},
		})
		c, err := Load(root, Options{Exclude: []string{"draft-*"}, Logger: quietLogger()})
		if err != nil {
			t.Fatalf("loading catalog: %v", err)
		}
		if len(c.Models()) != 1 || c.Models()[0].ID() != "alpha" {
			t.Fatalf("expected draft folder excluded, got %v", c.Models())
		}
	})

	t.Run("malformed model fails fast by default", func(t *testing.T) {
		root := writeCatalog(t, map[string][2]string{
			"alpha": {vehiclesTurtle, "title: A\n"},
			"bad":   {vehiclesTurtle, "title: B\ncontext:\n  - Alien\n"},
		})
		if _, err := Load(root, Options{Logger: quietLogger()}); err == nil {
			t.Fatalf("expected load failure for malformed metadata")
		}
	})

	t.Run("skip invalid collects load errors", func(t *testing.T) {
		root := writeCatalog(t, map[string][2]string{
			"alpha": {vehiclesTurtle, "title: A\n"},
			"bad":   {vehiclesTurtle, "title: B\ncontext:\n  - Alien\n"},
		})
		c, err := Load(root, Options{SkipInvalid: true, Logger: quietLogger()})
		if err != nil {
			t.Fatalf("expected skip-invalid load to succeed, got %v", err)
		}
		if len(c.Models()) != 1 {
			t.Fatalf("expected 1 model, got %d", len(c.Models()))
		}
		loadErrs := c.LoadErrors()
		if len(loadErrs) != 1 || loadErrs[0].Folder != "bad" {
			t.Fatalf("expected one load error for bad folder, got %v", loadErrs)
		}
	})
}

func TestGetAndRemoveModel(t *testing.T) {
	c := twoModelCatalog(t)

	m, err := c.GetModel("vehicles")
	if err != nil || m.ID() != "vehicles" {
		t.Fatalf("expected vehicles model, got %v (%v)", m, err)
	}
	if _, err := c.GetModel("ships"); !errors.Is(err, ErrModelNotFound) {
		t.Fatalf("expected ErrModelNotFound, got %v", err)
	}

	before := c.GraphHash()
	if err := c.RemoveModel("buildings"); err != nil {
		t.Fatalf("removing model: %v", err)
	}
	if len(c.Models()) != 1 {
		t.Fatalf("expected 1 model after removal, got %d", len(c.Models()))
	}
	if c.GraphHash() == before {
		t.Fatalf("graph hash must change after removal")
	}
	if c.Graph().Len() != 2 {
		t.Fatalf("expected merged graph rebuilt to 2 triples, got %d", c.Graph().Len())
	}
	if err := c.RemoveModel("buildings"); !errors.Is(err, ErrModelNotFound) {
		t.Fatalf("expected ErrModelNotFound on double removal, got %v", err)
	}
}

func TestFilterModels(t *testing.T) {
	c := twoModelCatalog(t)

	t.Run("no filters keep everything", func(t *testing.T) {
		out, err := c.FilterModels(CombineAll)
		if err != nil || len(out) != 2 {
			t.Fatalf("expected all models, got %v (%v)", out, err)
		}
	})

	t.Run("single field", func(t *testing.T) {
		out, err := c.FilterModels(CombineAll, Filter{Field: "keyword", Values: []string{"transport"}})
		if err != nil || len(out) != 1 || out[0].ID() != "vehicles" {
			t.Fatalf("expected vehicles only, got %v (%v)", out, err)
		}
	})

	t.Run("case-insensitive match", func(t *testing.T) {
		out, err := c.FilterModels(CombineAll, Filter{Field: "context", Values: []string{"research"}})
		if err != nil || len(out) != 1 || out[0].ID() != "vehicles" {
			t.Fatalf("expected case-folded context match, got %v (%v)", out, err)
		}
	})

	t.Run("and requires every filter", func(t *testing.T) {
		out, err := c.FilterModels(CombineAll,
			Filter{Field: "ontologyType", Values: []string{"Domain"}},
			Filter{Field: "context", Values: []string{"Research"}})
		if err != nil || len(out) != 1 || out[0].ID() != "vehicles" {
			t.Fatalf("expected conjunction to keep vehicles only, got %v (%v)", out, err)
		}
	})

	t.Run("or accepts any filter", func(t *testing.T) {
		out, err := c.FilterModels(CombineAny,
			Filter{Field: "context", Values: []string{"Research"}},
			Filter{Field: "keyword", Values: []string{"architecture"}})
		if err != nil || len(out) != 2 {
			t.Fatalf("expected disjunction to keep both models, got %v (%v)", out, err)
		}
	})

	t.Run("values within a filter are or", func(t *testing.T) {
		out, err := c.FilterModels(CombineAll,
			Filter{Field: "keyword", Values: []string{"transport", "architecture"}})
		if err != nil || len(out) != 2 {
			t.Fatalf("expected multi-value filter to keep both models, got %v (%v)", out, err)
		}
	})

	t.Run("unknown field", func(t *testing.T) {
		_, err := c.FilterModels(CombineAll, Filter{Field: "color", Values: []string{"red"}})
		if !errors.Is(err, ErrInvalidArgument) {
			t.Fatalf("expected ErrInvalidArgument, got %v", err)
		}
	})

	t.Run("bad combinator", func(t *testing.T) {
		_, err := c.FilterModels(Combine("xor"), Filter{Field: "title", Values: []string{"Vehicles"}})
		if !errors.Is(err, ErrInvalidArgument) {
			t.Fatalf("expected ErrInvalidArgument, got %v", err)
		}
	})
}

func TestParseCombine(t *testing.T) {
	if got, err := ParseCombine(""); err != nil || got != CombineAll {
		t.Fatalf("expected empty operand to default to and, got %q (%v)", got, err)
	}
	if got, err := ParseCombine("OR"); err != nil || got != CombineAny {
		t.Fatalf("expected case-folded or, got %q (%v)", got, err)
	}
	if _, err := ParseCombine("nand"); !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("expected ErrInvalidArgument, got %v", err)
	}
}

func TestExecuteQueryAllModels(t *testing.T) {
	queryText := "PREFIX ex: <http://example.org/>\nSELECT ?thing ?name WHERE { ?thing ex:name ?name . }\nORDER BY ?name\n"
	query := &sparql.Query{Name: "names", Text: queryText, Hash: sparql.HashText(queryText)}

	t.Run("writes per-model and compiled files", func(t *testing.T) {
		c := twoModelCatalog(t)
		dir := t.TempDir()
		if err := c.ExecuteQueryAllModels(query, dir); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		for _, name := range []string{"names_result_buildings.csv", "names_result_vehicles.csv"} {
			if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
				t.Fatalf("expected %s to exist: %v", name, err)
			}
		}

		f, err := os.Open(filepath.Join(dir, "names_result_compiled.csv"))
		if err != nil {
			t.Fatalf("opening compiled file: %v", err)
		}
		defer f.Close()
		rows, err := csv.NewReader(f).ReadAll()
		if err != nil {
			t.Fatalf("reading compiled file: %v", err)
		}
		if len(rows) != 4 {
			t.Fatalf("expected header plus 3 compiled rows, got %d lines", len(rows))
		}
		if rows[0][0] != "model_id" {
			t.Fatalf("expected model_id first column, got %v", rows[0])
		}
	})

	t.Run("second run compiles nothing", func(t *testing.T) {
		c := twoModelCatalog(t)
		dir := t.TempDir()
		if err := c.ExecuteQueryAllModels(query, dir); err != nil {
			t.Fatalf("first run: %v", err)
		}
		if err := os.Remove(filepath.Join(dir, "names_result_compiled.csv")); err != nil {
			t.Fatalf("removing compiled file: %v", err)
		}
		if err := c.ExecuteQueryAllModels(query, dir); err != nil {
			t.Fatalf("second run: %v", err)
		}
		if _, err := os.Stat(filepath.Join(dir, "names_result_compiled.csv")); !os.IsNotExist(err) {
			t.Fatalf("expected no compiled file when every model was skipped")
		}
	})
}
