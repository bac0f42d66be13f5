// Package catalog discovers ontology models under a root directory, merges
// their graphs into one catalog-wide graph, and offers filtering and batch
// query execution over the loaded model set.
package catalog

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"

	"ontocat/internal/model"
	"ontocat/internal/rdfgraph"
)

var (
	// ErrNoModels marks a catalog root without any model subfolders.
	ErrNoModels = errors.New("no model subfolders found")
	// ErrModelNotFound marks a lookup for a model id the catalog does not hold.
	ErrModelNotFound = errors.New("model not found in catalog")
)

const modelsSubdir = "models"

// Options controls catalog loading.
type Options struct {
	// Limit caps the number of models loaded when > 0.
	Limit int
	// SkipInvalid collects per-folder load failures instead of aborting.
	// The default is fail-fast: one malformed model fails the whole load.
	SkipInvalid bool
	// Exclude holds doublestar globs matched against model folder names.
	Exclude []string
	Logger  *slog.Logger
}

// LoadError records a model folder that failed to load under SkipInvalid.
type LoadError struct {
	Folder string
	Err    error
}

// Catalog is the aggregate of all loaded models plus their merged graph.
// The merged graph is rebuilt lazily after structural changes.
type Catalog struct {
	path       string
	models     []*model.Model
	loadErrors []LoadError
	logger     *slog.Logger

	graph     *rdfgraph.Graph
	graphHash string
	stale     bool
}

// Load builds a catalog from the immediate subfolders of <root>/models,
// in sorted name order.
func Load(root string, opts Options) (*Catalog, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	modelsDir := filepath.Join(root, modelsSubdir)
	entries, err := os.ReadDir(modelsDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNoModels, modelsDir)
		}
		return nil, fmt.Errorf("reading models directory %s: %w", modelsDir, err)
	}

	c := &Catalog{path: root, logger: logger, stale: true}

	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		if opts.Limit > 0 && len(c.models) >= opts.Limit {
			break
		}
		excluded, err := matchesAny(opts.Exclude, entry.Name())
		if err != nil {
			return nil, err
		}
		if excluded {
			logger.Debug("skipping excluded model folder", "folder", entry.Name())
			continue
		}

		m, err := model.Load(filepath.Join(modelsDir, entry.Name()))
		if err != nil {
			if opts.SkipInvalid {
				logger.Warn("skipping model folder", "folder", entry.Name(), "error", err)
				c.loadErrors = append(c.loadErrors, LoadError{Folder: entry.Name(), Err: err})
				continue
			}
			return nil, fmt.Errorf("loading model folder %s: %w", entry.Name(), err)
		}
		c.models = append(c.models, m)
		logger.Info("loaded model", "id", m.ID(), "triples", m.Graph().Len())
	}

	if len(c.models) == 0 && len(c.loadErrors) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoModels, modelsDir)
	}

	c.rebuild()
	return c, nil
}

func matchesAny(globs []string, name string) (bool, error) {
	for _, glob := range globs {
		ok, err := doublestar.Match(glob, name)
		if err != nil {
			return false, fmt.Errorf("invalid exclude pattern %q: %w", glob, err)
		}
		if ok {
			return true, nil
		}
	}
	return false, nil
}

// rebuild unions every model graph into the catalog graph and refreshes the
// canonical hash.
func (c *Catalog) rebuild() {
	g := rdfgraph.New()
	for _, m := range c.models {
		g.Merge(m.Graph())
	}
	c.graph = g
	c.graphHash = g.CanonicalHash()
	c.stale = false
}

// ID implements runner.Target.
func (c *Catalog) ID() string { return "catalog" }

// Graph returns the merged catalog graph, rebuilding it after structural
// changes.
func (c *Catalog) Graph() *rdfgraph.Graph {
	if c.stale {
		c.rebuild()
	}
	return c.graph
}

// GraphHash returns the canonical hash of the merged graph.
func (c *Catalog) GraphHash() string {
	if c.stale {
		c.rebuild()
	}
	return c.graphHash
}

// Path returns the catalog root directory.
func (c *Catalog) Path() string { return c.path }

// Models returns the loaded models in load order.
func (c *Catalog) Models() []*model.Model { return c.models }

// LoadErrors returns the folders skipped during a SkipInvalid load.
func (c *Catalog) LoadErrors() []LoadError { return c.loadErrors }

// GetModel finds a model by id.
func (c *Catalog) GetModel(id string) (*model.Model, error) {
	for _, m := range c.models {
		if m.ID() == id {
			return m, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrModelNotFound, id)
}

// AddModel appends a model and marks the merged graph stale.
func (c *Catalog) AddModel(m *model.Model) {
	c.models = append(c.models, m)
	c.stale = true
}

// RemoveModel removes a model by id and marks the merged graph stale.
func (c *Catalog) RemoveModel(id string) error {
	for i, m := range c.models {
		if m.ID() == id {
			c.models = append(c.models[:i], c.models[i+1:]...)
			c.stale = true
			c.logger.Info("removed model from catalog", "id", id)
			return nil
		}
	}
	return fmt.Errorf("%w: %s", ErrModelNotFound, id)
}
