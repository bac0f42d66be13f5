package catalog

import (
	"errors"
	"fmt"
	"strings"

	"ontocat/internal/model"
)

// ErrInvalidArgument marks a bad combinator or an unknown filter field.
var ErrInvalidArgument = errors.New("invalid filter argument")

// Combine tells FilterModels how filter results combine across filters.
type Combine string

const (
	// CombineAll keeps models matching every filter.
	CombineAll Combine = "and"
	// CombineAny keeps models matching at least one filter.
	CombineAny Combine = "or"
)

// ParseCombine maps the textual operand onto a Combine.
func ParseCombine(s string) (Combine, error) {
	switch strings.ToLower(s) {
	case "", string(CombineAll):
		return CombineAll, nil
	case string(CombineAny):
		return CombineAny, nil
	default:
		return "", fmt.Errorf(`%w: operand must be "and" or "or", got %q`, ErrInvalidArgument, s)
	}
}

// Filter is one attribute restriction. Multiple Values are OR within the
// filter, regardless of the outer combinator.
type Filter struct {
	Field  string
	Values []string
}

// FilterModels returns the models matching the filters under the given
// combinator. Field names are the metadata keys (title, keyword, acronym,
// source, language, designedForTask, context, representationStyle,
// ontologyType, theme, contributor, editorialNote, issued, landingPage,
// license, modified); matching is case-insensitive.
func (c *Catalog) FilterModels(combine Combine, filters ...Filter) ([]*model.Model, error) {
	if combine != CombineAll && combine != CombineAny {
		return nil, fmt.Errorf(`%w: operand must be "and" or "or", got %q`, ErrInvalidArgument, string(combine))
	}

	var out []*model.Model
	for _, m := range c.models {
		ok, err := matchModel(m, combine, filters)
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, m)
		}
	}
	return out, nil
}

func matchModel(m *model.Model, combine Combine, filters []Filter) (bool, error) {
	if len(filters) == 0 {
		return true, nil
	}

	for _, f := range filters {
		have, err := fieldValues(m, f.Field)
		if err != nil {
			return false, err
		}
		matched := anyEqualFold(have, f.Values)

		if combine == CombineAny && matched {
			return true, nil
		}
		if combine == CombineAll && !matched {
			return false, nil
		}
	}
	return combine == CombineAll, nil
}

func anyEqualFold(have, want []string) bool {
	for _, h := range have {
		for _, w := range want {
			if strings.EqualFold(h, w) {
				return true
			}
		}
	}
	return false
}

// fieldValues exposes a model's metadata field as a string slice. The
// explicit switch keeps filtering off reflection.
func fieldValues(m *model.Model, field string) ([]string, error) {
	switch field {
	case "title":
		return []string{m.Title}, nil
	case "keyword":
		return m.Keyword, nil
	case "acronym":
		return []string{m.Acronym}, nil
	case "source":
		return []string{m.Source}, nil
	case "language":
		return []string{m.Language}, nil
	case "designedForTask":
		values := make([]string, len(m.DesignedForTask))
		for i, p := range m.DesignedForTask {
			values[i] = string(p)
		}
		return values, nil
	case "context":
		values := make([]string, len(m.Context))
		for i, ctx := range m.Context {
			values[i] = string(ctx)
		}
		return values, nil
	case "representationStyle":
		return []string{string(m.RepresentationStyle)}, nil
	case "ontologyType":
		return []string{string(m.OntologyType)}, nil
	case "theme":
		return []string{m.Theme}, nil
	case "contributor":
		return []string{m.Contributor}, nil
	case "editorialNote":
		return []string{m.EditorialNote}, nil
	case "issued":
		return []string{m.Issued}, nil
	case "landingPage":
		return []string{m.LandingPage}, nil
	case "license":
		return []string{m.License}, nil
	case "modified":
		return []string{m.Modified}, nil
	default:
		return nil, fmt.Errorf("%w: unknown filter field %q", ErrInvalidArgument, field)
	}
}
