// Package mcp exposes the loaded catalog to MCP clients over stdio.
package mcp

import (
	"context"

	sdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"ontocat/internal/catalog"
)

type Server struct {
	catalog *catalog.Catalog
	mcp     *sdk.Server
}

func NewServer(cat *catalog.Catalog, version string) *Server {
	s := &Server{
		catalog: cat,
		mcp: sdk.NewServer(&sdk.Implementation{
			Name:    "ontocat",
			Version: version,
		}, nil),
	}
	s.registerTools()
	return s
}

func (s *Server) Run(ctx context.Context, transport sdk.Transport) error {
	return s.mcp.Run(ctx, transport)
}
