// Package sparql loads SPARQL query files and evaluates a restricted SELECT
// subset against an in-memory RDF graph. The subset covers basic graph
// patterns only; anything beyond it fails with ErrUnsupported rather than
// silently returning wrong rows.
package sparql

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

var (
	ErrNotFound    = errors.New("query file not found")
	ErrSyntax      = errors.New("invalid query syntax")
	ErrUnsupported = errors.New("unsupported query feature")
)

// Query is one SPARQL query loaded from disk. Immutable after load.
type Query struct {
	Name string // file stem, used for result file naming
	Path string
	Text string
	Hash string // sha256 hex of Text, stable across runs
}

// queryExtensions are the file suffixes recognized by LoadDir.
var queryExtensions = map[string]bool{
	".sparql": true,
	".rq":     true,
	".txt":    true,
}

// Load reads a query file and computes its content hash.
func Load(path string) (*Query, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return nil, fmt.Errorf("reading query %s: %w", path, err)
	}

	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return &Query{
		Name: name,
		Path: path,
		Text: string(data),
		Hash: HashText(string(data)),
	}, nil
}

// LoadDir loads every query file in dir, in directory-listing order. The
// order is for display only; callers must not depend on it for correctness.
func LoadDir(dir string) ([]*Query, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, dir)
		}
		return nil, fmt.Errorf("reading query directory %s: %w", dir, err)
	}

	var queries []*Query
	for _, entry := range entries {
		if entry.IsDir() || !queryExtensions[strings.ToLower(filepath.Ext(entry.Name()))] {
			continue
		}
		q, err := Load(filepath.Join(dir, entry.Name()))
		if err != nil {
			return nil, err
		}
		queries = append(queries, q)
	}
	if len(queries) == 0 {
		return nil, fmt.Errorf("%w: no query files in %s", ErrNotFound, dir)
	}
	return queries, nil
}

// HashText returns the sha256 hex digest of a query text.
func HashText(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}
