package mcp

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/ziadkadry99/ai-tutor/internal/retrieval"
	"github.com/ziadkadry99/ai-tutor/internal/tutor"
)

// handleAskDocument runs the full question pipeline and returns the tagged answer.
func (s *Server) handleAskDocument(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := request.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: query"), nil
	}

	resp, err := s.svc.Ask(ctx, clientID, query)
	if err != nil {
		return mcp.NewToolResultError(tutor.AsError(err).Message), nil
	}

	return mcp.NewToolResultText(resp.AIResponse), nil
}

// handleSearchDocument runs retrieval only and lists the passages found.
func (s *Server) handleSearchDocument(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := request.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: query"), nil
	}

	matches, err := s.svc.Search(ctx, clientID, query)
	if err != nil {
		return mcp.NewToolResultError(tutor.AsError(err).Message), nil
	}
	if len(matches) == 0 {
		return mcp.NewToolResultText("No passages found. The document may not be indexed yet."), nil
	}

	return mcp.NewToolResultText(formatMatches(matches)), nil
}

// handleGetActiveNamespace reports the namespace pointer written by the indexing flow.
func (s *Server) handleGetActiveNamespace(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	p, err := s.namespaces.Read()
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return mcp.NewToolResultText("No active namespace. Queries search the whole index."), nil
		}
		return mcp.NewToolResultError(fmt.Sprintf("reading namespace: %v", err)), nil
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Active namespace: %s\n", p.Namespace)
	if !p.LastUpdated.IsZero() {
		fmt.Fprintf(&sb, "Last updated: %s\n", p.LastUpdated.Format(time.RFC3339))
	}
	return mcp.NewToolResultText(sb.String()), nil
}

// formatMatches renders formatted passages as numbered markdown sections.
func formatMatches(matches []retrieval.SearchMatch) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Found %d passage(s):\n\n", len(matches))
	for i, m := range matches {
		fmt.Fprintf(&sb, "### %d. Chunk %s\n\n%s\n\n", i+1, m.ChunkNumber, m.Text)
	}
	return sb.String()
}
