package main

import (
	"log/slog"

	"ontocat/internal/catalog"
	"ontocat/internal/config"
)

// loadCatalog reads ontocat.yaml and loads the catalog it points at.
func loadCatalog() (*config.ProjectConfig, *catalog.Catalog, error) {
	cfg, err := config.Load(config.DefaultFile)
	if err != nil {
		return nil, nil, err
	}

	cat, err := catalog.Load(cfg.Catalog.Path, catalog.Options{
		Limit:       cfg.Catalog.Limit,
		SkipInvalid: cfg.Catalog.SkipInvalid,
		Exclude:     cfg.Catalog.Exclude,
		Logger:      slog.Default(),
	})
	if err != nil {
		return nil, nil, err
	}
	return cfg, cat, nil
}
