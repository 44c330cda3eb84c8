// Package mcp serves the extracted model to MCP clients over stdio.
package mcp

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/mark3labs/mcp-go/server"
	"github.com/tliron/commonlog"
)

var log = commonlog.GetLogger("specmodel.mcp")

// ServerName is announced to MCP clients.
const ServerName = "specmodel"

const instructions = `Read-only access to a metamodel extracted from specification documents.
Start with specmodel_list_root_classes or specmodel_get_package, then drill into
types with specmodel_get_type and specmodel_get_ancestry. Package paths use the
delimiter reported in every type summary.`

// MCPServer exposes a ModelStore through the model tools.
type MCPServer struct {
	store *ModelStore
	mcp   *server.MCPServer
}

// NewMCPServer creates a server exposing the model tools over store.
func NewMCPServer(store *ModelStore, version string) (*MCPServer, error) {
	if store == nil {
		return nil, errors.New("model store is required")
	}

	mcpServer := server.NewMCPServer(
		ServerName,
		version,
		server.WithToolCapabilities(true),
		server.WithRecovery(),
		server.WithInstructions(instructions),
	)
	AddModelTools(mcpServer, store)

	return &MCPServer{store: store, mcp: mcpServer}, nil
}

// Serve speaks MCP on stdin and stdout until ctx is cancelled or stdin closes.
func (s *MCPServer) Serve(ctx context.Context) error {
	return s.ServeIO(ctx, os.Stdin, os.Stdout)
}

// ServeIO speaks MCP over in and out.
func (s *MCPServer) ServeIO(ctx context.Context, in io.Reader, out io.Writer) error {
	log.Info("starting MCP server on stdio")
	err := server.NewStdioServer(s.mcp).Listen(ctx, in, out)
	switch {
	case err == nil, errors.Is(err, context.Canceled), errors.Is(err, io.EOF):
		log.Info("MCP server stopped")
		return nil
	default:
		return fmt.Errorf("MCP server error: %w", err)
	}
}
