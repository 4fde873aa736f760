package mcp

import (
	"github.com/mark3labs/mcp-go/server"

	"github.com/ziadkadry99/ai-tutor/internal/namespace"
	"github.com/ziadkadry99/ai-tutor/internal/tutor"
)

// Version is set via ldflags at build time.
var Version = "dev"

// clientID is the rate limiter key used for every MCP tool call. A stdio
// server has exactly one client.
const clientID = "mcp"

// Server wraps an MCP server that exposes the document Q&A tools.
type Server struct {
	svc        *tutor.Service
	namespaces *namespace.Store
	mcp        *server.MCPServer
}

// NewServer creates a new MCP server with the given dependencies.
func NewServer(svc *tutor.Service, namespaces *namespace.Store) *Server {
	s := &Server{
		svc:        svc,
		namespaces: namespaces,
	}

	s.mcp = server.NewMCPServer(
		"tutor",
		Version,
		server.WithToolCapabilities(false),
	)

	s.registerTools()

	return s
}

// registerTools adds all tool definitions and their handlers to the MCP server.
func (s *Server) registerTools() {
	s.mcp.AddTool(askDocumentTool, s.handleAskDocument)
	s.mcp.AddTool(searchDocumentTool, s.handleSearchDocument)
	s.mcp.AddTool(getActiveNamespaceTool, s.handleGetActiveNamespace)
}

// Serve starts the MCP server on stdio. Stdout is used for MCP protocol
// messages; all logging must go to stderr.
func (s *Server) Serve() error {
	return server.ServeStdio(s.mcp)
}
