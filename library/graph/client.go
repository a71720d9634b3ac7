package graph

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"

	"github.com/Laisky/errors/v2"
	logSDK "github.com/Laisky/go-utils/v6/log"
	"github.com/Laisky/zap"
	"github.com/google/uuid"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j/db"

	"github.com/flipbytes-dk/absolutely-you/library/log"
)

// DialInfo defines the graph database connection information.
type DialInfo struct {
	URI      string
	User     string
	Password string
}

// Client implements Engine over a Neo4j database populated by the graph
// platform. The shared driver is safe for concurrent read queries.
type Client struct {
	driver neo4j.DriverWithContext
	logger logSDK.Logger
}

// NewClient dials the graph database and verifies connectivity. All three
// dial fields are required; a missing one is a fatal configuration error.
func NewClient(ctx context.Context, dialInfo DialInfo) (*Client, error) {
	if dialInfo.URI == "" || dialInfo.User == "" || dialInfo.Password == "" {
		return nil, errors.New("graph uri, user and password are required")
	}

	driver, err := neo4j.NewDriverWithContext(dialInfo.URI,
		neo4j.BasicAuth(dialInfo.User, dialInfo.Password, ""))
	if err != nil {
		return nil, errors.Wrapf(err, "create driver for `%s`", dialInfo.URI)
	}

	if err = driver.VerifyConnectivity(ctx); err != nil {
		return nil, errors.Wrapf(err, "verify connectivity to `%s`", dialInfo.URI)
	}

	logger := log.Logger.Named("graph")
	logger.Info("connected graph database", zap.String("uri", dialInfo.URI))

	return &Client{
		driver: driver,
		logger: logger,
	}, nil
}

// Close releases the shared driver.
func (c *Client) Close(ctx context.Context) error {
	if err := c.driver.Close(ctx); err != nil {
		return errors.Wrap(err, "close graph driver")
	}

	c.logger.Info("graph connection closed")
	return nil
}

var bootstrapCyphers = []string{
	`CREATE CONSTRAINT entity_uuid IF NOT EXISTS FOR (n:Entity) REQUIRE n.uuid IS UNIQUE`,
	`CREATE CONSTRAINT episode_uuid IF NOT EXISTS FOR (e:Episodic) REQUIRE e.uuid IS UNIQUE`,
	`CREATE FULLTEXT INDEX node_name_and_summary IF NOT EXISTS
		FOR (n:Entity) ON EACH [n.name, n.summary]`,
	`CREATE FULLTEXT INDEX episode_content IF NOT EXISTS
		FOR (e:Episodic) ON EACH [e.name, e.content]`,
}

// EnsureIndices creates the constraints and fulltext indices the search
// recipes depend on. Every statement is idempotent.
func (c *Client) EnsureIndices(ctx context.Context) error {
	for _, cypher := range bootstrapCyphers {
		if _, err := neo4j.ExecuteQuery(ctx, c.driver, cypher, nil,
			neo4j.EagerResultTransformer); err != nil {
			return errors.Wrapf(err, "run bootstrap statement `%s`", cypher)
		}
	}

	return nil
}

// Search runs the configured recipe over the given partitions and returns
// the matched entity nodes as a single "nodes" result group.
func (c *Client) Search(ctx context.Context, query string,
	cfg SearchConfig, groupIDs []string) ([]ResultGroup, error) {
	cypher, err := cypherForRecipe(cfg.Recipe)
	if err != nil {
		return nil, err
	}

	limit := cfg.Limit
	if limit <= 0 {
		limit = 10
	}

	result, err := neo4j.ExecuteQuery(ctx, c.driver, cypher,
		map[string]any{
			"index":     entityFulltextIndex,
			"query":     query,
			"group_ids": groupIDs,
			"limit":     limit,
		},
		neo4j.EagerResultTransformer,
		neo4j.ExecuteQueryWithReadersRouting())
	if err != nil {
		return nil, errors.Wrapf(err, "run search recipe `%s`", cfg.Recipe)
	}

	nodes := make([]Node, 0, len(result.Records))
	for _, record := range result.Records {
		nodes = append(nodes, Node{
			UUID:    recordString(record, "uuid"),
			Name:    recordString(record, "name"),
			GroupID: recordString(record, "group_id"),
			Summary: recordString(record, "summary"),
			Score:   recordFloat(record, "score"),
		})
	}

	c.logger.Debug("search recipe completed",
		zap.String("recipe", cfg.Recipe),
		zap.Int("matched", len(nodes)))

	return []ResultGroup{{Label: "nodes", Nodes: nodes}}, nil
}

// AddEpisode writes one episodic node keyed on (group, name, body hash) so
// re-submitting the same document never duplicates it.
func (c *Client) AddEpisode(ctx context.Context, ep Episode) (*EpisodeResult, error) {
	if ep.Name == "" {
		return nil, errors.New("episode name is required")
	}
	if ep.GroupID == "" {
		return nil, errors.New("episode group id is required")
	}

	schema, err := marshalEntityTypes(ep.EntityTypes)
	if err != nil {
		return nil, errors.Wrap(err, "marshal entity schema")
	}

	sum := sha256.Sum256([]byte(ep.Body))

	const cypher = `
MERGE (e:Episodic {group_id: $group_id, name: $name, content_hash: $content_hash})
ON CREATE SET e.uuid = $uuid, e.created_at = $now
SET e.content = $content,
    e.source = $source,
    e.source_description = $source_description,
    e.valid_at = $valid_at,
    e.entity_schema = $entity_schema
RETURN e.uuid AS uuid`

	result, err := neo4j.ExecuteQuery(ctx, c.driver, cypher,
		map[string]any{
			"group_id":           ep.GroupID,
			"name":               ep.Name,
			"content_hash":       hex.EncodeToString(sum[:]),
			"uuid":               uuid.NewString(),
			"now":                ep.ReferenceTime.UTC(),
			"content":            ep.Body,
			"source":             string(ep.Source),
			"source_description": ep.SourceDescription,
			"valid_at":           ep.ReferenceTime.UTC(),
			"entity_schema":      schema,
		},
		neo4j.EagerResultTransformer)
	if err != nil {
		return nil, errors.Wrapf(err, "add episode `%s`", ep.Name)
	}

	if len(result.Records) == 0 {
		return nil, errors.Errorf("episode `%s` write returned no record", ep.Name)
	}

	return &EpisodeResult{
		UUID:    recordString(result.Records[0], "uuid"),
		Created: result.Summary.Counters().NodesCreated() > 0,
	}, nil
}

// marshalEntityTypes serializes the typed-entity schema for the extraction
// pipeline. An empty schema serializes to an empty string, not "null".
func marshalEntityTypes(types []EntityType) (string, error) {
	if len(types) == 0 {
		return "", nil
	}

	payload, err := json.Marshal(types)
	if err != nil {
		return "", errors.Wrap(err, "marshal entity types")
	}

	return string(payload), nil
}

func recordString(record *db.Record, key string) string {
	raw, ok := record.Get(key)
	if !ok || raw == nil {
		return ""
	}

	value, ok := raw.(string)
	if !ok {
		return ""
	}

	return value
}

func recordFloat(record *db.Record, key string) float64 {
	raw, ok := record.Get(key)
	if !ok || raw == nil {
		return 0
	}

	value, ok := raw.(float64)
	if !ok {
		return 0
	}

	return value
}
