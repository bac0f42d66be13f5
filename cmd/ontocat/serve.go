package main

import (
	"context"

	sdk "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/spf13/cobra"

	"ontocat/internal/mcp"
)

func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the MCP server over stdio",
		RunE:  runServe,
	}
	return cmd
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	_, cat, err := loadCatalog()
	if err != nil {
		return err
	}

	server := mcp.NewServer(cat, version)
	return server.Run(ctx, &sdk.StdioTransport{})
}
