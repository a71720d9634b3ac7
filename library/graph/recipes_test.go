package graph

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// TestCypherForRecipe_Default verifies an empty name resolves to the
// default recipe.
func TestCypherForRecipe_Default(t *testing.T) {
	t.Parallel()

	cypher, err := cypherForRecipe("")
	require.NoError(t, err)
	require.Equal(t, recipeCypher[DefaultRecipe], cypher)
}

// TestCypherForRecipe_Known verifies every registered recipe resolves and
// carries the group filter and limit placeholders.
func TestCypherForRecipe_Known(t *testing.T) {
	t.Parallel()

	for name := range recipeCypher {
		cypher, err := cypherForRecipe(name)
		require.NoError(t, err, name)
		require.Contains(t, cypher, "$group_ids", name)
		require.Contains(t, cypher, "$limit", name)
	}
}

// TestCypherForRecipe_Unknown verifies an unknown name is a configuration
// error.
func TestCypherForRecipe_Unknown(t *testing.T) {
	t.Parallel()

	_, err := cypherForRecipe("community_hybrid_mmr")
	require.Error(t, err)
	require.Contains(t, err.Error(), "unknown search recipe")
}

// TestMarshalEntityTypes verifies an empty schema serializes to an empty
// string rather than "null".
func TestMarshalEntityTypes(t *testing.T) {
	t.Parallel()

	payload, err := marshalEntityTypes(nil)
	require.NoError(t, err)
	require.Empty(t, payload)

	payload, err = marshalEntityTypes([]EntityType{{
		Name:        "Procedure",
		Description: "A cosmetic procedure.",
		Fields:      []EntityField{{Name: "cost_raw", Description: "Original cost string"}},
	}})
	require.NoError(t, err)
	require.Contains(t, payload, `"name":"Procedure"`)
	require.Contains(t, payload, `"cost_raw"`)
}
