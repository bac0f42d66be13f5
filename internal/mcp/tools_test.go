package mcp

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"ontocat/internal/catalog"
)

const vehiclesTurtle = `@prefix ex: <http://example.org/> .
ex:car a ex:Vehicle ;
    ex:name "Car" .
`

const buildingsTurtle = `@prefix ex: <http://example.org/> .
ex:house a ex:Building ;
    ex:name "House" .
`

func testServer(t *testing.T) *Server {
	t.Helper()
	root := t.TempDir()
	models := map[string][2]string{
		"buildings": {buildingsTurtle, "title: Buildings\nkeyword:\n  - architecture\nlanguage: en\n"},
		"vehicles":  {vehiclesTurtle, "title: Vehicles\nkeyword:\n  - transport\nlanguage: en\ncontext:\n  - Research\n"},
	}
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

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
	cat, err := catalog.Load(root, catalog.Options{Logger: logger})
	if err != nil {
		t.Fatalf("loading catalog: %v", err)
	}
	return NewServer(cat, "test")
}

func TestListModels(t *testing.T) {
	server := testServer(t)

	_, output, err := server.handleListModels(context.Background(), nil, ListModelsInput{})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(output.Models) != 2 {
		t.Fatalf("expected 2 models, got %d", len(output.Models))
	}

	_, output, err = server.handleListModels(context.Background(), nil, ListModelsInput{Keyword: "transport"})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(output.Models) != 1 || output.Models[0].ID != "vehicles" {
		t.Fatalf("expected vehicles only, got %v", output.Models)
	}
}

func TestListModels_Operand(t *testing.T) {
	server := testServer(t)

	_, output, err := server.handleListModels(context.Background(), nil, ListModelsInput{
		Keyword: "architecture",
		Context: "Research",
		Operand: "or",
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(output.Models) != 2 {
		t.Fatalf("expected disjunction to keep both models, got %v", output.Models)
	}

	_, _, err = server.handleListModels(context.Background(), nil, ListModelsInput{Operand: "nand"})
	if err == nil {
		t.Fatalf("expected error for bad operand")
	}
}

func TestGetModel(t *testing.T) {
	server := testServer(t)

	_, output, err := server.handleGetModel(context.Background(), nil, GetModelInput{ID: "vehicles"})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if output.Title != "Vehicles" || output.Triples != 2 {
		t.Fatalf("unexpected model output %+v", output)
	}
	if output.GraphHash == "" {
		t.Fatalf("expected graph hash in output")
	}

	_, _, err = server.handleGetModel(context.Background(), nil, GetModelInput{ID: "ships"})
	if err == nil {
		t.Fatalf("expected error for unknown model")
	}

	_, _, err = server.handleGetModel(context.Background(), nil, GetModelInput{})
	if err == nil {
		t.Fatalf("expected error for missing id")
	}
}

func TestRunQuery(t *testing.T) {
	server := testServer(t)
	query := "PREFIX ex: <http://example.org/>\nSELECT ?name WHERE { ?s ex:name ?name . }\nORDER BY ?name\n"

	t.Run("merged catalog graph", func(t *testing.T) {
		_, output, err := server.handleRunQuery(context.Background(), nil, RunQueryInput{Query: query})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if len(output.Rows) != 2 {
			t.Fatalf("expected rows from both models, got %v", output.Rows)
		}
		if output.Rows[0]["name"] != "Car" {
			t.Fatalf("expected ordered rows, got %v", output.Rows)
		}
	})

	t.Run("single model", func(t *testing.T) {
		_, output, err := server.handleRunQuery(context.Background(), nil, RunQueryInput{Query: query, Model: "buildings"})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if len(output.Rows) != 1 || output.Rows[0]["name"] != "House" {
			t.Fatalf("expected buildings rows only, got %v", output.Rows)
		}
	})

	t.Run("row limit", func(t *testing.T) {
		_, output, err := server.handleRunQuery(context.Background(), nil, RunQueryInput{Query: query, Limit: 1})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if len(output.Rows) != 1 {
			t.Fatalf("expected 1 row after limit, got %d", len(output.Rows))
		}
	})

	t.Run("empty query", func(t *testing.T) {
		_, _, err := server.handleRunQuery(context.Background(), nil, RunQueryInput{})
		if err == nil {
			t.Fatalf("expected error for empty query")
		}
	})

	t.Run("unsupported form", func(t *testing.T) {
		_, _, err := server.handleRunQuery(context.Background(), nil, RunQueryInput{Query: "ASK { ?s ?p ?o }"})
		if err == nil {
			t.Fatalf("expected error for non-SELECT query")
		}
	})
}
