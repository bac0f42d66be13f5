// Package rdfgraph wraps knakk/rdf with the graph operations the catalog
// needs: loading serialized ontology files, triple-pattern matching,
// merging, and content hashing that is stable across serialization order.
package rdfgraph

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/knakk/rdf"
)

var (
	ErrNotFound      = errors.New("ontology file not found")
	ErrParse         = errors.New("parsing ontology file")
	ErrUnknownFormat = errors.New("unrecognized ontology file extension")
)

// Graph is an in-memory set of RDF triples.
type Graph struct {
	triples []rdf.Triple
}

func New() *Graph {
	return &Graph{}
}

// FormatForPath maps a file extension to a knakk/rdf decoder format.
func FormatForPath(path string) (rdf.Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".ttl":
		return rdf.Turtle, nil
	case ".nt":
		return rdf.NTriples, nil
	case ".owl", ".rdf", ".xml":
		return rdf.RDFXML, nil
	default:
		return 0, fmt.Errorf("%w: %s", ErrUnknownFormat, filepath.Ext(path))
	}
}

// Load reads and parses an ontology file, picking the format by extension.
func Load(path string) (*Graph, error) {
	format, err := FormatForPath(path)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	g, err := Parse(f, format)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrParse, path, err)
	}
	return g, nil
}

// Parse decodes all triples from r in the given format.
func Parse(r io.Reader, format rdf.Format) (*Graph, error) {
	dec := rdf.NewTripleDecoder(r, format)
	triples, err := dec.DecodeAll()
	if err != nil {
		return nil, err
	}
	return &Graph{triples: triples}, nil
}

func (g *Graph) Len() int {
	return len(g.triples)
}

// Triples returns the backing triple slice. Callers must not mutate it.
func (g *Graph) Triples() []rdf.Triple {
	return g.triples
}

func (g *Graph) Add(triples ...rdf.Triple) {
	g.triples = append(g.triples, triples...)
}

// Merge unions the triples of other into g. The union keeps duplicates the
// way a plain triple append does; hashing canonicalizes, so identical graphs
// merged in different orders still compare equal.
func (g *Graph) Merge(other *Graph) {
	if other == nil {
		return
	}
	g.triples = append(g.triples, other.triples...)
}

// TermsEqual compares two terms by type and N-Triples serialization, which
// keeps language tags and datatypes significant.
func TermsEqual(a, b rdf.Term) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.Type() == b.Type() && a.Serialize(rdf.NTriples) == b.Serialize(rdf.NTriples)
}

// Match returns every triple matching the given pattern. A nil term is a
// wildcard.
func (g *Graph) Match(s, p, o rdf.Term) []rdf.Triple {
	var out []rdf.Triple
	for _, t := range g.triples {
		if s != nil && !TermsEqual(t.Subj, s) {
			continue
		}
		if p != nil && !TermsEqual(t.Pred, p) {
			continue
		}
		if o != nil && !TermsEqual(t.Obj, o) {
			continue
		}
		out = append(out, t)
	}
	return out
}

// CanonicalHash digests the graph's content independent of triple order:
// each triple is serialized to N-Triples, the lines are sorted, and the
// result is SHA-256 hashed. Two graphs with the same triple set always hash
// identically even when their source serializations differ.
func (g *Graph) CanonicalHash() string {
	lines := make([]string, 0, len(g.triples))
	for _, t := range g.triples {
		lines = append(lines, strings.TrimRight(t.Serialize(rdf.NTriples), "\n"))
	}
	sort.Strings(lines)
	sum := sha256.Sum256([]byte(strings.Join(lines, "\n")))
	return hex.EncodeToString(sum[:])
}

// Serialize writes the graph to w in the given format. Only N-Triples and
// Turtle encoders are supported by the underlying library.
func (g *Graph) Serialize(w io.Writer, format rdf.Format) error {
	enc := rdf.NewTripleEncoder(w, format)
	for _, t := range g.triples {
		if err := enc.Encode(t); err != nil {
			return fmt.Errorf("encoding triple: %w", err)
		}
	}
	return enc.Close()
}
