package mcp

import "github.com/mark3labs/mcp-go/mcp"

// askDocumentTool defines the ask_document MCP tool.
var askDocumentTool = mcp.NewTool("ask_document",
	mcp.WithDescription("Answer a question from the indexed document. The answer starts with a SOURCE line saying whether it is grounded in the document."),
	mcp.WithString("query",
		mcp.Required(),
		mcp.Description("The question to answer"),
	),
)

// searchDocumentTool defines the search_document MCP tool.
var searchDocumentTool = mcp.NewTool("search_document",
	mcp.WithDescription("Return the document passages most similar to a query, with their similarity scores."),
	mcp.WithString("query",
		mcp.Required(),
		mcp.Description("Natural language search query"),
	),
)

// getActiveNamespaceTool defines the get_active_namespace MCP tool.
var getActiveNamespaceTool = mcp.NewTool("get_active_namespace",
	mcp.WithDescription("Get the namespace of the most recently indexed document."),
)
