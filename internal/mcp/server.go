// Package mcp exposes the knowledge search pipeline as an MCP tool server
// over the streamable HTTP transport.
package mcp

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	logSDK "github.com/Laisky/go-utils/v6/log"
	"github.com/Laisky/zap"
	mcp "github.com/mark3labs/mcp-go/mcp"
	srv "github.com/mark3labs/mcp-go/server"

	"github.com/flipbytes-dk/absolutely-you/internal/web/knowledge/dto"
	"github.com/flipbytes-dk/absolutely-you/library/log"
)

// SearchProvider abstracts the search execution capability used by the tool.
type SearchProvider interface {
	Search(ctx context.Context, query string) ([]dto.SearchResultItem, error)
}

// Server wraps the MCP server state for the HTTP transport.
type Server struct {
	handler http.Handler
	logger  logSDK.Logger
	search  SearchProvider
}

// NewServer constructs a remote MCP server exposing the knowledge_search
// tool under a single HTTP handler.
func NewServer(search SearchProvider, logger logSDK.Logger) (*Server, error) {
	if search == nil {
		return nil, fmt.Errorf("search provider is required")
	}
	if logger == nil {
		logger = log.Logger
	}

	mcpServer := srv.NewMCPServer(
		"absolutely-you",
		"1.0.0",
		srv.WithToolCapabilities(true),
		srv.WithInstructions("Use the knowledge_search tool to query the clinic procedure knowledge graph."),
		srv.WithRecovery(),
		srv.WithHooks(newMCPHooks(logger.Named("mcp_hooks"))),
	)

	s := &Server{
		handler: srv.NewStreamableHTTPServer(mcpServer),
		logger:  logger.Named("mcp"),
		search:  search,
	}

	tool := mcp.NewTool(
		"knowledge_search",
		mcp.WithDescription("Search the clinic procedure knowledge graph and return matched entities."),
		mcp.WithString(
			"query",
			mcp.Required(),
			mcp.Description("Plain text search query."),
		),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithIdempotentHintAnnotation(true),
	)

	mcpServer.AddTool(tool, s.handleKnowledgeSearch)

	return s, nil
}

// Handler returns the HTTP handler that should be mounted to serve MCP traffic.
func (s *Server) Handler() http.Handler {
	return s.handler
}

func (s *Server) handleKnowledgeSearch(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := req.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	query = strings.TrimSpace(query)
	if query == "" {
		return mcp.NewToolResultError("query cannot be empty"), nil
	}

	items, err := s.search.Search(ctx, query)
	if err != nil {
		s.logger.Error("knowledge_search failed", zap.Error(err), zap.String("query", query))
		return mcp.NewToolResultError(fmt.Sprintf("search failed: %v", err)), nil
	}

	result, err := mcp.NewToolResultJSON(dto.SearchResponse{Results: items})
	if err != nil {
		s.logger.Error("encode search result", zap.Error(err))
		return mcp.NewToolResultError("failed to encode search result"), nil
	}

	return result, nil
}

func newMCPHooks(logger logSDK.Logger) *srv.Hooks {
	hooks := &srv.Hooks{}

	hooks.AddOnSuccess(func(ctx context.Context, id any, method mcp.MCPMethod, message any, result any) {
		logger.Info("mcp request succeeded", zap.String("method", string(method)))
	})

	hooks.AddOnError(func(ctx context.Context, id any, method mcp.MCPMethod, message any, err error) {
		logger.Error("mcp request failed", zap.String("method", string(method)), zap.Error(err))
	})

	return hooks
}
