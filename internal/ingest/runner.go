// Package ingest drives the offline batch that loads scraped procedure
// documents into the graph engine, one episode per document.
package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/Laisky/errors/v2"
	logSDK "github.com/Laisky/go-utils/v6/log"
	"github.com/Laisky/zap"

	"github.com/flipbytes-dk/absolutely-you/library/graph"
)

// deniedFilenames are non-content files the scraper leaves in the source
// directory.
var deniedFilenames = map[string]struct{}{
	"all_links.json": {},
	".DS_Store":      {},
}

// Tally accumulates per-document outcomes of one batch run.
type Tally struct {
	Success int
	Skipped int
	Failed  int
}

// Runner submits every eligible document in a directory to the graph
// engine. It processes documents strictly sequentially; ingestion is a
// low-frequency offline job, not a latency-sensitive path.
type Runner struct {
	engine      graph.Engine
	logger      logSDK.Logger
	dir         string
	groupID     string
	source      string
	entityTypes []graph.EntityType
	start       int
	end         int
	now         func() time.Time
}

// RunnerOption customises a Runner during construction.
type RunnerOption func(*Runner)

// WithSlice restricts the run to the [start, end) range of the sorted file
// list. A non-positive end means "to the end".
func WithSlice(start, end int) RunnerOption {
	return func(r *Runner) {
		r.start = start
		r.end = end
	}
}

// WithEntityTypes attaches a typed-entity schema to every submitted episode.
func WithEntityTypes(types []graph.EntityType) RunnerOption {
	return func(r *Runner) {
		r.entityTypes = types
	}
}

// WithSourceDescription overrides the episode source description.
func WithSourceDescription(desc string) RunnerOption {
	return func(r *Runner) {
		r.source = desc
	}
}

// WithClock supplies a deterministic clock, primarily for testing.
func WithClock(now func() time.Time) RunnerOption {
	return func(r *Runner) {
		if now != nil {
			r.now = now
		}
	}
}

// NewRunner creates a batch runner over the given source directory.
func NewRunner(engine graph.Engine, logger logSDK.Logger,
	dir, groupID string, opts ...RunnerOption) (*Runner, error) {
	if engine == nil {
		return nil, errors.New("graph engine is required")
	}
	if logger == nil {
		return nil, errors.New("logger is required")
	}
	if dir == "" {
		return nil, errors.New("source directory is required")
	}
	if groupID == "" {
		return nil, errors.New("group id is required")
	}

	runner := &Runner{
		engine:  engine,
		logger:  logger,
		dir:     dir,
		groupID: groupID,
		source:  "procedure metadata",
		now:     func() time.Time { return time.Now().UTC() },
	}

	for _, opt := range opts {
		opt(runner)
	}

	return runner, nil
}

// scrapedDocument is the scraper's output envelope; the extracted fields
// live under "json".
type scrapedDocument struct {
	JSON map[string]any `json:"json"`
}

// Run processes the directory slice one document at a time. Per-document
// failures are counted, never abort the batch; only an unreadable source
// directory fails the run as a whole.
func (r *Runner) Run(ctx context.Context) (Tally, error) {
	files, err := r.listDocuments()
	if err != nil {
		return Tally{}, errors.Wrapf(err, "list documents in `%s`", r.dir)
	}

	r.logger.Info("found files to process",
		zap.Int("count", len(files)), zap.String("dir", r.dir))

	var tally Tally
	for i, fname := range files {
		logger := r.logger.With(
			zap.String("file", fname),
			zap.Int("index", i),
		)
		logger.Info("processing file")

		switch err := r.processFile(ctx, fname, i); {
		case err == nil:
			tally.Success++
		case errors.Is(err, errNoContent):
			logger.Warn("skip file without content field")
			tally.Skipped++
		default:
			logger.Error("failed to add episode", zap.Error(err))
			tally.Failed++
		}
	}

	r.logger.Info("processing complete",
		zap.Int("success", tally.Success),
		zap.Int("skipped", tally.Skipped),
		zap.Int("failed", tally.Failed))

	return tally, nil
}

// errNoContent marks a document lacking the expected content field; these
// are counted as skips, not failures.
var errNoContent = errors.New("document has no content field")

func (r *Runner) processFile(ctx context.Context, fname string, index int) error {
	raw, err := os.ReadFile(filepath.Join(r.dir, fname))
	if err != nil {
		return errors.Wrap(err, "read document")
	}

	var doc scrapedDocument
	if err = json.Unmarshal(raw, &doc); err != nil {
		return errors.Wrap(err, "parse document")
	}

	if len(doc.JSON) == 0 {
		return errNoContent
	}

	body, err := json.Marshal(doc.JSON)
	if err != nil {
		return errors.Wrap(err, "encode episode body")
	}

	name := fmt.Sprintf("Procedure %d", index+1)
	if v, ok := doc.JSON["procedure_name"].(string); ok && v != "" {
		name = v
	}

	result, err := r.engine.AddEpisode(ctx, graph.Episode{
		Name:              name,
		Body:              string(body),
		Source:            graph.SourceJSON,
		SourceDescription: r.source,
		ReferenceTime:     r.now(),
		GroupID:           r.groupID,
		EntityTypes:       r.entityTypes,
	})
	if err != nil {
		return errors.Wrap(err, "add episode")
	}

	r.logger.Info("added episode",
		zap.String("name", name),
		zap.String("uuid", result.UUID),
		zap.Bool("created", result.Created))

	return nil
}

// listDocuments enumerates eligible documents in lexicographic order,
// optionally restricted to the configured slice.
func (r *Runner) listDocuments() ([]string, error) {
	entries, err := os.ReadDir(r.dir)
	if err != nil {
		return nil, errors.Wrap(err, "read dir")
	}

	files := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if !strings.HasSuffix(name, ".json") {
			continue
		}
		if _, denied := deniedFilenames[name]; denied {
			continue
		}
		files = append(files, name)
	}

	sort.Strings(files)

	start, end := r.start, r.end
	if end <= 0 || end > len(files) {
		end = len(files)
	}
	if start < 0 {
		start = 0
	}
	if start > end {
		start = end
	}

	return files[start:end], nil
}
