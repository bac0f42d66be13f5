// Package validate inspects a catalog tree and reports per-model problems:
// folders that fail to load and metadata gaps worth fixing.
package validate

import (
	"fmt"
	"log/slog"

	"ontocat/internal/catalog"
)

type Severity string

const (
	SeverityError Severity = "error"
	SeverityWarn  Severity = "warning"
)

const (
	codeLoadFailed     = "model_load_failed"
	codeMissingTitle   = "missing_title"
	codeMissingKeyword = "missing_keyword"
	codeMissingLicense = "missing_license"
	codeDuplicateID    = "duplicate_model_id"
	codeEmptyGraph     = "empty_graph"
)

type Issue struct {
	Severity Severity
	Code     string
	Message  string
	Model    string
}

type Report struct {
	Issues []Issue
}

// HasErrors reports whether any issue is error severity.
func (r *Report) HasErrors() bool {
	for _, issue := range r.Issues {
		if issue.Severity == SeverityError {
			return true
		}
	}
	return false
}

// Run loads the catalog with SkipInvalid so that broken folders surface as
// issues instead of aborting, then checks each loaded model's metadata.
func Run(root string, exclude []string, logger *slog.Logger) (*Report, error) {
	cat, err := catalog.Load(root, catalog.Options{
		SkipInvalid: true,
		Exclude:     exclude,
		Logger:      logger,
	})
	if err != nil {
		return nil, fmt.Errorf("loading catalog: %w", err)
	}

	report := &Report{Issues: make([]Issue, 0)}

	for _, loadErr := range cat.LoadErrors() {
		report.Issues = append(report.Issues, Issue{
			Severity: SeverityError,
			Code:     codeLoadFailed,
			Message:  loadErr.Err.Error(),
			Model:    loadErr.Folder,
		})
	}

	seen := make(map[string]bool)
	for _, m := range cat.Models() {
		if seen[m.ID()] {
			report.Issues = append(report.Issues, Issue{
				Severity: SeverityError,
				Code:     codeDuplicateID,
				Message:  "model id appears more than once",
				Model:    m.ID(),
			})
		}
		seen[m.ID()] = true

		if m.Title == "" {
			report.Issues = append(report.Issues, issueWarn(codeMissingTitle, "metadata has no title", m.ID()))
		}
		if len(m.Keyword) == 0 {
			report.Issues = append(report.Issues, issueWarn(codeMissingKeyword, "metadata has no keywords", m.ID()))
		}
		if m.License == "" {
			report.Issues = append(report.Issues, issueWarn(codeMissingLicense, "metadata has no license", m.ID()))
		}
		if m.Graph().Len() == 0 {
			report.Issues = append(report.Issues, issueWarn(codeEmptyGraph, "ontology graph holds no triples", m.ID()))
		}
	}

	return report, nil
}

func issueWarn(code, message, modelID string) Issue {
	return Issue{Severity: SeverityWarn, Code: code, Message: message, Model: modelID}
}
