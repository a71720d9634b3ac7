package graph

import (
	"github.com/Laisky/errors/v2"
)

// Recipe names selectable via SearchConfig. Each maps to a pre-defined
// combination of fulltext matching and tie-break rules; ranking itself is
// delegated to the database.
const (
	// RecipeNodeHybridEpisodeMentions ranks entity nodes by how many
	// episodes mention them, breaking ties on fulltext score.
	RecipeNodeHybridEpisodeMentions = "node_hybrid_episode_mentions"
	// RecipeNodeHybridRRF ranks entity nodes on fulltext score alone.
	RecipeNodeHybridRRF = "node_hybrid_rrf"

	// DefaultRecipe is used when no recipe is configured.
	DefaultRecipe = RecipeNodeHybridEpisodeMentions

	entityFulltextIndex = "node_name_and_summary"
)

const nodeEpisodeMentionsCypher = `
CALL db.index.fulltext.queryNodes($index, $query) YIELD node, score
WHERE node:Entity AND node.group_id IN $group_ids
OPTIONAL MATCH (node)<-[:MENTIONS]-(ep:Episodic)
WITH node, score, count(ep) AS mentions
RETURN node.uuid AS uuid, node.name AS name, node.group_id AS group_id,
       node.summary AS summary, score
ORDER BY mentions DESC, score DESC
LIMIT $limit`

const nodeFulltextCypher = `
CALL db.index.fulltext.queryNodes($index, $query) YIELD node, score
WHERE node:Entity AND node.group_id IN $group_ids
RETURN node.uuid AS uuid, node.name AS name, node.group_id AS group_id,
       node.summary AS summary, score
ORDER BY score DESC
LIMIT $limit`

var recipeCypher = map[string]string{
	RecipeNodeHybridEpisodeMentions: nodeEpisodeMentionsCypher,
	RecipeNodeHybridRRF:             nodeFulltextCypher,
}

// cypherForRecipe resolves a recipe name to its query. An empty name falls
// back to DefaultRecipe; an unknown name is a configuration error.
func cypherForRecipe(name string) (string, error) {
	if name == "" {
		name = DefaultRecipe
	}

	cypher, ok := recipeCypher[name]
	if !ok {
		return "", errors.Errorf("unknown search recipe `%s`", name)
	}

	return cypher, nil
}
