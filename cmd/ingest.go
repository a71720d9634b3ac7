package cmd

import (
	"context"

	gconfig "github.com/Laisky/go-config/v2"
	gcmd "github.com/Laisky/go-utils/v6/cmd"
	"github.com/Laisky/zap"
	"github.com/spf13/cobra"

	"github.com/flipbytes-dk/absolutely-you/internal/ingest"
	"github.com/flipbytes-dk/absolutely-you/library/graph"
	"github.com/flipbytes-dk/absolutely-you/library/log"
)

var ingestCMD = &cobra.Command{
	Use:   "ingest",
	Short: "ingest scraped documents into the knowledge graph",
	Long: `Read a directory of scraped procedure JSON documents and submit each one
to the graph engine as a timestamped episode. Documents without the expected
content field are skipped; per-document failures are counted and never abort
the batch. Re-running over the same directory is safe.

Example usage:
  absolutely-you ingest --dir docs_kb --start 100 --end 124`,
	Args: gcmd.NoExtraArgs,
	PreRun: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		if err := initialize(ctx, cmd); err != nil {
			log.Logger.Panic("init", zap.Error(err))
		}
	},
	Run: func(cmd *cobra.Command, args []string) {
		runIngest(context.Background())
	},
}

func runIngest(ctx context.Context) {
	engine, err := graph.NewClient(ctx, graphDialInfoFromSettings())
	if err != nil {
		log.Logger.Panic("connect graph engine", zap.Error(err))
	}
	defer func() {
		if err := engine.Close(context.Background()); err != nil {
			log.Logger.Error("close graph engine", zap.Error(err))
		}
	}()

	if err = engine.EnsureIndices(ctx); err != nil {
		log.Logger.Panic("ensure graph indices", zap.Error(err))
	}

	opts := []ingest.RunnerOption{
		ingest.WithSlice(
			gconfig.Shared.GetInt("ingest-start"),
			gconfig.Shared.GetInt("ingest-end"),
		),
	}
	if gconfig.Shared.GetBool("with-ontology") {
		opts = append(opts, ingest.WithEntityTypes(ingest.ProcedureOntology()))
	}

	runner, err := ingest.NewRunner(
		engine,
		log.Logger.Named("ingest"),
		gconfig.Shared.GetString("ingest-dir"),
		knowledgeGroupID(),
		opts...,
	)
	if err != nil {
		log.Logger.Panic("create ingest runner", zap.Error(err))
	}

	tally, err := runner.Run(ctx)
	if err != nil {
		log.Logger.Panic("run ingest batch", zap.Error(err))
	}

	log.Logger.Info("ingest finished",
		zap.Int("success", tally.Success),
		zap.Int("skipped", tally.Skipped),
		zap.Int("failed", tally.Failed))
}

func init() {
	ingestCMD.Flags().String("ingest-dir", "docs_kb", "source directory of scraped JSON documents")
	ingestCMD.Flags().Int("ingest-start", 0, "first file index to process")
	ingestCMD.Flags().Int("ingest-end", 0, "one past the last file index, 0 means all")
	ingestCMD.Flags().Bool("with-ontology", true, "attach the procedure entity schema to episodes")
	rootCMD.AddCommand(ingestCMD)
}
