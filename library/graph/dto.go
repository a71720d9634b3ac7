package graph

import "time"

// EpisodeSource identifies what kind of raw content an episode carries.
type EpisodeSource string

const (
	// SourceJSON marks structured documents, e.g. scraped procedure metadata.
	SourceJSON EpisodeSource = "json"
	// SourceText marks free-form text content.
	SourceText EpisodeSource = "text"
	// SourceMessage marks conversational transcripts.
	SourceMessage EpisodeSource = "message"
)

// Episode is a named, timestamped unit of source content submitted to the
// graph engine for entity and fact extraction.
type Episode struct {
	Name              string
	Body              string
	Source            EpisodeSource
	SourceDescription string
	ReferenceTime     time.Time
	GroupID           string
	EntityTypes       []EntityType
}

// EpisodeResult reports the outcome of a single episode submission.
type EpisodeResult struct {
	UUID    string
	Created bool
}

// EntityField describes one attribute the engine should try to fill in when
// it recognizes an entity of the enclosing type.
type EntityField struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// EntityType describes one kind of entity the engine should extract from an
// episode body. The engine treats this as a hint, not a constraint.
type EntityType struct {
	Name        string        `json:"name"`
	Description string        `json:"description"`
	Fields      []EntityField `json:"fields,omitempty"`
}

// Node is a projection of a graph entity returned by a search. Fields the
// stored node lacks are left as zero values.
type Node struct {
	UUID    string
	Name    string
	GroupID string
	Summary string
	Score   float64
}

// ResultGroup is one labeled bucket of a search response. The engine returns
// results grouped by kind; callers pick the labels they care about.
type ResultGroup struct {
	Label string
	Nodes []Node
}

// SearchConfig selects a named hybrid-search recipe and caps the number of
// returned nodes. Both are deployment-time constants, not request inputs.
type SearchConfig struct {
	Recipe string
	Limit  int
}
