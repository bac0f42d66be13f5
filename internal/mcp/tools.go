package mcp

import (
	"context"
	"fmt"

	sdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"ontocat/internal/catalog"
	"ontocat/internal/model"
	"ontocat/internal/runner"
	"ontocat/internal/sparql"
)

type ListModelsInput struct {
	Language string `json:"language,omitempty" jsonschema:"language filter (IANA sub tag, e.g. en)"`
	Keyword  string `json:"keyword,omitempty" jsonschema:"keyword filter"`
	Task     string `json:"task,omitempty" jsonschema:"designedForTask filter"`
	Context  string `json:"context,omitempty" jsonschema:"development context filter"`
	Style    string `json:"style,omitempty" jsonschema:"representation style filter"`
	Type     string `json:"type,omitempty" jsonschema:"ontology type filter"`
	Theme    string `json:"theme,omitempty" jsonschema:"theme filter"`
	Operand  string `json:"operand,omitempty" jsonschema:"combine filters with and (default) or or"`
}

type GetModelInput struct {
	ID string `json:"id" jsonschema:"model id (folder name)"`
}

type RunQueryInput struct {
	Query string `json:"query" jsonschema:"SPARQL SELECT query text"`
	Model string `json:"model,omitempty" jsonschema:"model id; empty runs against the merged catalog graph"`
	Limit int    `json:"limit,omitempty" jsonschema:"cap on returned rows"`
}

type ModelSummaryOutput struct {
	ID       string   `json:"id"`
	Title    string   `json:"title"`
	Keyword  []string `json:"keyword,omitempty"`
	Language string   `json:"language,omitempty"`
	Triples  int      `json:"triples"`
}

type ModelOutput struct {
	ID                  string   `json:"id"`
	Title               string   `json:"title"`
	Keyword             []string `json:"keyword,omitempty"`
	Acronym             string   `json:"acronym,omitempty"`
	Source              string   `json:"source,omitempty"`
	Language            string   `json:"language,omitempty"`
	DesignedForTask     []string `json:"designedForTask,omitempty"`
	Context             []string `json:"context,omitempty"`
	RepresentationStyle string   `json:"representationStyle,omitempty"`
	OntologyType        string   `json:"ontologyType,omitempty"`
	Theme               string   `json:"theme,omitempty"`
	Contributor         string   `json:"contributor,omitempty"`
	License             string   `json:"license,omitempty"`
	Issued              string   `json:"issued,omitempty"`
	Modified            string   `json:"modified,omitempty"`
	LandingPage         string   `json:"landingPage,omitempty"`
	Triples             int      `json:"triples"`
	GraphHash           string   `json:"graph_hash"`
}

type ListModelsOutput struct {
	Models []ModelSummaryOutput `json:"models"`
}

type RunQueryOutput struct {
	Vars []string            `json:"vars"`
	Rows []map[string]string `json:"rows"`
}

func (s *Server) registerTools() {
	sdk.AddTool(s.mcp, &sdk.Tool{
		Name:        "list_models",
		Description: "List catalog models, optionally filtered by metadata attributes",
	}, s.handleListModels)

	sdk.AddTool(s.mcp, &sdk.Tool{
		Name:        "get_model",
		Description: "Retrieve one model's metadata record",
	}, s.handleGetModel)

	sdk.AddTool(s.mcp, &sdk.Tool{
		Name:        "run_query",
		Description: "Run a SPARQL SELECT query against one model or the merged catalog graph",
	}, s.handleRunQuery)
}

func (s *Server) handleListModels(ctx context.Context, req *sdk.CallToolRequest, input ListModelsInput) (*sdk.CallToolResult, ListModelsOutput, error) {
	combine, err := catalog.ParseCombine(input.Operand)
	if err != nil {
		return nil, ListModelsOutput{}, err
	}

	var filters []catalog.Filter
	add := func(field, value string) {
		if value != "" {
			filters = append(filters, catalog.Filter{Field: field, Values: []string{value}})
		}
	}
	add("language", input.Language)
	add("keyword", input.Keyword)
	add("designedForTask", input.Task)
	add("context", input.Context)
	add("representationStyle", input.Style)
	add("ontologyType", input.Type)
	add("theme", input.Theme)

	models, err := s.catalog.FilterModels(combine, filters...)
	if err != nil {
		return nil, ListModelsOutput{}, err
	}

	output := make([]ModelSummaryOutput, 0, len(models))
	for _, m := range models {
		output = append(output, ModelSummaryOutput{
			ID:       m.ID(),
			Title:    m.Title,
			Keyword:  m.Keyword,
			Language: m.Language,
			Triples:  m.Graph().Len(),
		})
	}
	return nil, ListModelsOutput{Models: output}, nil
}

func (s *Server) handleGetModel(ctx context.Context, req *sdk.CallToolRequest, input GetModelInput) (*sdk.CallToolResult, ModelOutput, error) {
	if input.ID == "" {
		return nil, ModelOutput{}, fmt.Errorf("id is required")
	}
	m, err := s.catalog.GetModel(input.ID)
	if err != nil {
		return nil, ModelOutput{}, err
	}
	return nil, modelOutputFrom(m), nil
}

func (s *Server) handleRunQuery(ctx context.Context, req *sdk.CallToolRequest, input RunQueryInput) (*sdk.CallToolResult, RunQueryOutput, error) {
	if input.Query == "" {
		return nil, RunQueryOutput{}, fmt.Errorf("query is required")
	}

	graph := s.catalog.Graph()
	if input.Model != "" {
		m, err := s.catalog.GetModel(input.Model)
		if err != nil {
			return nil, RunQueryOutput{}, err
		}
		graph = m.Graph()
	}

	parsed, err := sparql.Parse(input.Query)
	if err != nil {
		return nil, RunQueryOutput{}, err
	}
	results, err := sparql.Eval(graph, parsed)
	if err != nil {
		return nil, RunQueryOutput{}, err
	}

	rows := results.Rows
	if input.Limit > 0 && input.Limit < len(rows) {
		rows = rows[:input.Limit]
	}

	output := RunQueryOutput{Vars: results.Vars, Rows: make([]map[string]string, 0, len(rows))}
	for _, row := range rows {
		rendered := make(map[string]string, len(results.Vars))
		for _, v := range results.Vars {
			rendered[v] = runner.RenderTerm(row[v])
		}
		output.Rows = append(output.Rows, rendered)
	}
	return nil, output, nil
}

func modelOutputFrom(m *model.Model) ModelOutput {
	tasks := make([]string, 0, len(m.DesignedForTask))
	for _, t := range m.DesignedForTask {
		tasks = append(tasks, string(t))
	}
	contexts := make([]string, 0, len(m.Context))
	for _, c := range m.Context {
		contexts = append(contexts, string(c))
	}
	return ModelOutput{
		ID:                  m.ID(),
		Title:               m.Title,
		Keyword:             m.Keyword,
		Acronym:             m.Acronym,
		Source:              m.Source,
		Language:            m.Language,
		DesignedForTask:     tasks,
		Context:             contexts,
		RepresentationStyle: string(m.RepresentationStyle),
		OntologyType:        string(m.OntologyType),
		Theme:               m.Theme,
		Contributor:         m.Contributor,
		License:             m.License,
		Issued:              m.Issued,
		Modified:            m.Modified,
		LandingPage:         m.LandingPage,
		Triples:             m.Graph().Len(),
		GraphHash:           m.GraphHash(),
	}
}
