// Package graph wraps the temporal knowledge-graph engine behind a narrow
// request/response contract. The engine owns all indexing, extraction and
// ranking; this package only submits episodes and runs canned search recipes.
package graph

import "context"

// Engine is the contract every graph backend must honor. Implementations
// must be safe for concurrent read queries over a single shared handle.
type Engine interface {
	// Search runs the recipe named by cfg over the given partitions and
	// returns labeled result groups, e.g. a "nodes" group.
	Search(ctx context.Context, query string, cfg SearchConfig, groupIDs []string) ([]ResultGroup, error)
	// AddEpisode submits one unit of knowledge. Re-submitting the same
	// episode is safe and reports Created=false.
	AddEpisode(ctx context.Context, ep Episode) (*EpisodeResult, error)
	// EnsureIndices creates the indices and constraints the recipes rely
	// on. Idempotent, intended to run once at startup.
	EnsureIndices(ctx context.Context) error
	// Close releases the underlying connection.
	Close(ctx context.Context) error
}
