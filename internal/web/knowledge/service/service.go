// Package service implements the knowledge search pipeline: payload
// normalization, dispatch to the graph engine, node projection and
// response shaping.
package service

import (
	"context"
	"strings"

	"github.com/Laisky/errors/v2"
	gmw "github.com/Laisky/gin-middlewares/v7"
	"github.com/Laisky/zap"

	"github.com/flipbytes-dk/absolutely-you/internal/web/knowledge/dto"
	"github.com/flipbytes-dk/absolutely-you/library/graph"
)

// nodesGroupLabel is the result-group label carrying entity nodes.
const nodesGroupLabel = "nodes"

// Knowledge dispatches queries against the graph engine with a fixed search
// recipe and partition. Recipe, limit and group are deployment-time
// constants; every instance serves exactly one knowledge partition.
type Knowledge struct {
	engine  graph.Engine
	cfg     graph.SearchConfig
	groupID string
}

// New creates the knowledge service around an injected engine handle.
func New(engine graph.Engine, cfg graph.SearchConfig, groupID string) (*Knowledge, error) {
	if engine == nil {
		return nil, errors.New("graph engine is required")
	}
	if groupID == "" {
		return nil, errors.New("group id is required")
	}

	return &Knowledge{
		engine:  engine,
		cfg:     cfg,
		groupID: groupID,
	}, nil
}

// Search runs one query through the engine and projects the matched nodes.
// No retries: a failed search is reported once with the upstream message.
func (s *Knowledge) Search(ctx context.Context, query string) ([]dto.SearchResultItem, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, ErrEmptyQuery
	}

	groups, err := s.engine.Search(ctx, query, s.cfg, []string{s.groupID})
	if err != nil {
		return nil, errors.Wrap(err, "search graph")
	}

	var nodes []graph.Node
	for _, group := range groups {
		if group.Label == nodesGroupLabel {
			nodes = group.Nodes
			break
		}
	}

	gmw.GetLogger(ctx).Debug("knowledge search completed",
		zap.String("query", query),
		zap.Int("matched", len(nodes)))

	return projectNodes(nodes), nil
}

// projectNodes maps raw graph nodes to display items. A node missing all
// three display fields yields an all-null item, never an error.
func projectNodes(nodes []graph.Node) []dto.SearchResultItem {
	items := make([]dto.SearchResultItem, 0, len(nodes))
	for _, node := range nodes {
		items = append(items, dto.SearchResultItem{
			Name:    optional(node.Name),
			GroupID: optional(node.GroupID),
			Summary: optional(node.Summary),
		})
	}

	return items
}

func optional(value string) *string {
	if value == "" {
		return nil
	}

	return &value
}

// ShapeResponse wraps projected items in the envelope matching the request
// variant. Tool-call requests always get a results list with exactly one
// entry, even when the item list is empty.
func ShapeResponse(req dto.NormalizedRequest, items []dto.SearchResultItem) any {
	if items == nil {
		items = []dto.SearchResultItem{}
	}

	if req.IsToolCall() {
		return dto.ToolCallResponse{
			Results: []dto.ToolCallResult{{
				ToolCallID: req.ToolCallID,
				Result:     items,
			}},
		}
	}

	return dto.SearchResponse{Results: items}
}
