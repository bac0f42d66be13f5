package model

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

var (
	// ErrMetadataNotFound marks a model folder without a metadata sidecar.
	ErrMetadataNotFound = errors.New("metadata file not found")
	// ErrMetadataParse marks a metadata sidecar that is not valid YAML.
	ErrMetadataParse = errors.New("invalid YAML in metadata file")
)

// Metadata is the typed record behind a model's metadata sidecar. Optional
// single-valued fields are empty strings when absent.
type Metadata struct {
	Title               string
	Keyword             []string
	Acronym             string
	Source              string
	Language            string
	DesignedForTask     []Purpose
	Context             []DevelopmentContext
	RepresentationStyle RepresentationStyle
	OntologyType        OntologyType
	Theme               string
	Contributor         string
	EditorialNote       string
	Issued              string
	LandingPage         string
	License             string
	Modified            string
}

// LoadMetadata reads a YAML metadata sidecar and maps it field by field onto
// the typed record, validating enum membership at the boundary.
func LoadMetadata(path string) (*Metadata, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrMetadataNotFound, path)
		}
		return nil, fmt.Errorf("reading metadata %s: %w", path, err)
	}

	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrMetadataParse, path, err)
	}

	md, err := mapMetadata(raw)
	if err != nil {
		return nil, fmt.Errorf("metadata %s: %w", path, err)
	}
	return md, nil
}

func mapMetadata(raw map[string]any) (*Metadata, error) {
	md := &Metadata{}

	singles := []struct {
		key  string
		dest *string
	}{
		{"title", &md.Title},
		{"acronym", &md.Acronym},
		{"source", &md.Source},
		{"language", &md.Language},
		{"theme", &md.Theme},
		{"contributor", &md.Contributor},
		{"editorialNote", &md.EditorialNote},
		{"issued", &md.Issued},
		{"landingPage", &md.LandingPage},
		{"license", &md.License},
		{"modified", &md.Modified},
	}
	for _, field := range singles {
		value, err := singleString(raw, field.key)
		if err != nil {
			return nil, err
		}
		*field.dest = value
	}

	keywords, err := stringList(raw, "keyword")
	if err != nil {
		return nil, err
	}
	md.Keyword = keywords

	tasks, err := stringList(raw, "designedForTask")
	if err != nil {
		return nil, err
	}
	for _, task := range tasks {
		p, err := ParsePurpose(task)
		if err != nil {
			return nil, err
		}
		md.DesignedForTask = append(md.DesignedForTask, p)
	}

	contexts, err := stringList(raw, "context")
	if err != nil {
		return nil, err
	}
	for _, ctx := range contexts {
		c, err := ParseDevelopmentContext(ctx)
		if err != nil {
			return nil, err
		}
		md.Context = append(md.Context, c)
	}

	if value, err := singleString(raw, "representationStyle"); err != nil {
		return nil, err
	} else if value != "" {
		style, err := ParseRepresentationStyle(value)
		if err != nil {
			return nil, err
		}
		md.RepresentationStyle = style
	}

	if value, err := singleString(raw, "ontologyType"); err != nil {
		return nil, err
	} else if value != "" {
		otype, err := ParseOntologyType(value)
		if err != nil {
			return nil, err
		}
		md.OntologyType = otype
	}

	return md, nil
}

// singleString reads a field that admits at most one value. A one-element
// YAML list is accepted as its element; anything longer is an error.
func singleString(raw map[string]any, key string) (string, error) {
	value, ok := raw[key]
	if !ok || value == nil {
		return "", nil
	}
	switch v := value.(type) {
	case string:
		return v, nil
	case []any:
		if len(v) > 1 {
			return "", fmt.Errorf("%w: %s declares %d values, at most one allowed", ErrInvalidValue, key, len(v))
		}
		if len(v) == 0 {
			return "", nil
		}
		s, ok := v[0].(string)
		if !ok {
			return "", fmt.Errorf("%w: %s must be a string", ErrInvalidValue, key)
		}
		return s, nil
	default:
		return fmt.Sprintf("%v", v), nil
	}
}

// stringList reads a field that admits a string or a list of strings.
func stringList(raw map[string]any, key string) ([]string, error) {
	value, ok := raw[key]
	if !ok || value == nil {
		return nil, nil
	}
	switch v := value.(type) {
	case string:
		if strings.TrimSpace(v) == "" {
			return nil, nil
		}
		return []string{v}, nil
	case []any:
		items := make([]string, 0, len(v))
		for _, item := range v {
			s, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("%w: %s entries must be strings", ErrInvalidValue, key)
			}
			if strings.TrimSpace(s) == "" {
				continue
			}
			items = append(items, s)
		}
		if len(items) == 0 {
			return nil, nil
		}
		return items, nil
	default:
		return nil, fmt.Errorf("%w: %s must be a string or list of strings", ErrInvalidValue, key)
	}
}
