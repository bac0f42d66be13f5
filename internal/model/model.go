package model

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"ontocat/internal/rdfgraph"
)

var (
	// ErrOntologyNotFound marks a model folder without an ontology file.
	ErrOntologyNotFound = errors.New("ontology file not found")
	// ErrAmbiguousOntology marks a folder with more than one candidate
	// ontology file and no canonical ontology.ttl.
	ErrAmbiguousOntology = errors.New("model folder holds more than one ontology file")
)

const canonicalOntologyFile = "ontology.ttl"

var metadataFiles = []string{"metadata.yaml", "metadata.yml"}

var ontologyExtensions = map[string]bool{
	".ttl": true,
	".nt":  true,
	".owl": true,
	".rdf": true,
}

// Model is one ontology model on disk: an RDF graph plus its typed metadata
// record. The graph hash is computed once at load and reused by the query
// runner's memoization.
type Model struct {
	Metadata

	id        string
	path      string
	graph     *rdfgraph.Graph
	graphHash string

	// metaGraph is the optional metadata.ttl sidecar graph. It is kept
	// separate from the ontology graph and never merged into the catalog.
	metaGraph *rdfgraph.Graph
}

// Load reads a model from its folder. The folder must hold exactly one
// ontology file (ontology.ttl preferred) and one metadata sidecar. The
// model id is the folder name.
func Load(dir string) (*Model, error) {
	info, err := os.Stat(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: model folder %s", ErrOntologyNotFound, dir)
		}
		return nil, fmt.Errorf("model folder %s: %w", dir, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("model path %s is not a directory", dir)
	}

	ontologyPath, err := findOntologyFile(dir)
	if err != nil {
		return nil, err
	}

	graph, err := rdfgraph.Load(ontologyPath)
	if err != nil {
		return nil, fmt.Errorf("model %s: %w", filepath.Base(dir), err)
	}

	metadataPath, err := findMetadataFile(dir)
	if err != nil {
		return nil, err
	}
	md, err := LoadMetadata(metadataPath)
	if err != nil {
		return nil, fmt.Errorf("model %s: %w", filepath.Base(dir), err)
	}

	m := &Model{
		Metadata:  *md,
		id:        filepath.Base(dir),
		path:      dir,
		graph:     graph,
		graphHash: graph.CanonicalHash(),
	}

	// Optional metadata graph sidecar.
	metaTTL := filepath.Join(dir, "metadata.ttl")
	if _, err := os.Stat(metaTTL); err == nil {
		metaGraph, err := rdfgraph.Load(metaTTL)
		if err != nil {
			return nil, fmt.Errorf("model %s: %w", m.id, err)
		}
		m.metaGraph = metaGraph
	}

	return m, nil
}

func (m *Model) ID() string                     { return m.id }
func (m *Model) Path() string                   { return m.path }
func (m *Model) Graph() *rdfgraph.Graph         { return m.graph }
func (m *Model) GraphHash() string              { return m.graphHash }
func (m *Model) MetadataGraph() *rdfgraph.Graph { return m.metaGraph }

func findOntologyFile(dir string) (string, error) {
	canonical := filepath.Join(dir, canonicalOntologyFile)
	if _, err := os.Stat(canonical); err == nil {
		return canonical, nil
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", fmt.Errorf("reading model folder %s: %w", dir, err)
	}

	var candidates []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if name == "metadata.ttl" {
			continue
		}
		if ontologyExtensions[strings.ToLower(filepath.Ext(name))] {
			candidates = append(candidates, filepath.Join(dir, name))
		}
	}

	switch len(candidates) {
	case 0:
		return "", fmt.Errorf("%w: no ontology file in %s", ErrOntologyNotFound, dir)
	case 1:
		return candidates[0], nil
	default:
		return "", fmt.Errorf("%w: %s", ErrAmbiguousOntology, dir)
	}
}

func findMetadataFile(dir string) (string, error) {
	for _, name := range metadataFiles {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
	}
	return "", fmt.Errorf("%w: no metadata sidecar in %s", ErrMetadataNotFound, dir)
}
