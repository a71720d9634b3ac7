package ingest

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/Laisky/errors/v2"
	logSDK "github.com/Laisky/go-utils/v6/log"
	"github.com/stretchr/testify/require"

	"github.com/flipbytes-dk/absolutely-you/library/graph"
)

type mockEngine struct {
	episodes []graph.Episode
	failOn   string
}

func (m *mockEngine) AddEpisode(ctx context.Context, ep graph.Episode) (*graph.EpisodeResult, error) {
	if m.failOn != "" && ep.Name == m.failOn {
		return nil, errors.New("engine rejected episode")
	}
	m.episodes = append(m.episodes, ep)
	return &graph.EpisodeResult{UUID: "ep-" + ep.Name, Created: true}, nil
}

func (m *mockEngine) Search(ctx context.Context, query string,
	cfg graph.SearchConfig, groupIDs []string) ([]graph.ResultGroup, error) {
	return nil, nil
}

func (m *mockEngine) EnsureIndices(ctx context.Context) error { return nil }
func (m *mockEngine) Close(ctx context.Context) error         { return nil }

func writeDoc(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func newTestRunner(t *testing.T, engine graph.Engine, dir string, opts ...RunnerOption) *Runner {
	t.Helper()
	opts = append(opts, WithClock(func() time.Time {
		return time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	}))
	runner, err := NewRunner(engine, logSDK.Shared.Named("test"), dir, "procedures", opts...)
	require.NoError(t, err)
	return runner
}

// TestRun_Tally verifies per-document accounting: one good document, one
// without the content field, one denylisted file.
func TestRun_Tally(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeDoc(t, dir, "001.json", `{"json":{"procedure_name":"Lip Filler","cost":"$500"}}`)
	writeDoc(t, dir, "002.json", `{}`)
	writeDoc(t, dir, "all_links.json", `["https://example.com"]`)
	writeDoc(t, dir, "notes.txt", `not a document`)

	engine := &mockEngine{}
	runner := newTestRunner(t, engine, dir)

	tally, err := runner.Run(context.Background())
	require.NoError(t, err)
	require.Equal(t, Tally{Success: 1, Skipped: 1, Failed: 0}, tally)

	require.Len(t, engine.episodes, 1)
	ep := engine.episodes[0]
	require.Equal(t, "Lip Filler", ep.Name)
	require.Equal(t, graph.SourceJSON, ep.Source)
	require.Equal(t, "procedures", ep.GroupID)
	require.Contains(t, ep.Body, `"cost":"$500"`)
}

// TestRun_Rerun verifies re-running over the same directory does not
// introduce failures; documents are independently re-submittable.
func TestRun_Rerun(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeDoc(t, dir, "001.json", `{"json":{"procedure_name":"Rhinoplasty"}}`)
	writeDoc(t, dir, "002.json", `{"json":{"procedure_name":"Labiaplasty"}}`)

	engine := &mockEngine{}
	runner := newTestRunner(t, engine, dir)

	first, err := runner.Run(context.Background())
	require.NoError(t, err)
	second, err := runner.Run(context.Background())
	require.NoError(t, err)

	require.Equal(t, first, second)
	require.Zero(t, second.Failed)
}

// TestRun_FailureDoesNotAbort verifies a rejected episode is counted and
// the batch continues.
func TestRun_FailureDoesNotAbort(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeDoc(t, dir, "001.json", `{"json":{"procedure_name":"Bad One"}}`)
	writeDoc(t, dir, "002.json", `{"json":{"procedure_name":"Good One"}}`)
	writeDoc(t, dir, "003.json", `not json at all`)

	engine := &mockEngine{failOn: "Bad One"}
	runner := newTestRunner(t, engine, dir)

	tally, err := runner.Run(context.Background())
	require.NoError(t, err)
	require.Equal(t, Tally{Success: 1, Skipped: 0, Failed: 2}, tally)
}

// TestRun_SliceAndOrder verifies lexicographic order and the configured
// sub-range restriction.
func TestRun_SliceAndOrder(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeDoc(t, dir, "003.json", `{"json":{"procedure_name":"Third"}}`)
	writeDoc(t, dir, "001.json", `{"json":{"procedure_name":"First"}}`)
	writeDoc(t, dir, "002.json", `{"json":{"procedure_name":"Second"}}`)

	engine := &mockEngine{}
	runner := newTestRunner(t, engine, dir, WithSlice(1, 2))

	tally, err := runner.Run(context.Background())
	require.NoError(t, err)
	require.Equal(t, Tally{Success: 1}, tally)
	require.Len(t, engine.episodes, 1)
	require.Equal(t, "Second", engine.episodes[0].Name)
}

// TestRun_NameFallback verifies documents without procedure_name get a
// positional name.
func TestRun_NameFallback(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeDoc(t, dir, "001.json", `{"json":{"cost":"$500"}}`)

	engine := &mockEngine{}
	runner := newTestRunner(t, engine, dir)

	_, err := runner.Run(context.Background())
	require.NoError(t, err)
	require.Len(t, engine.episodes, 1)
	require.Equal(t, "Procedure 1", engine.episodes[0].Name)
}

// TestRun_MissingDirFails verifies an unreadable source directory aborts
// the whole batch.
func TestRun_MissingDirFails(t *testing.T) {
	t.Parallel()

	runner := newTestRunner(t, &mockEngine{}, filepath.Join(t.TempDir(), "missing"))

	_, err := runner.Run(context.Background())
	require.Error(t, err)
}

// TestRun_OntologyAttached verifies the entity schema rides along on every
// episode when configured.
func TestRun_OntologyAttached(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeDoc(t, dir, "001.json", `{"json":{"procedure_name":"Lip Filler"}}`)

	engine := &mockEngine{}
	runner := newTestRunner(t, engine, dir, WithEntityTypes(ProcedureOntology()))

	_, err := runner.Run(context.Background())
	require.NoError(t, err)
	require.Len(t, engine.episodes, 1)
	require.Len(t, engine.episodes[0].EntityTypes, 4)
	require.Equal(t, "Procedure", engine.episodes[0].EntityTypes[0].Name)
}
