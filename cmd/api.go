package cmd

import (
	"context"
	"net/http"

	gconfig "github.com/Laisky/go-config/v2"
	gcmd "github.com/Laisky/go-utils/v6/cmd"
	"github.com/Laisky/zap"
	"github.com/spf13/cobra"

	"github.com/flipbytes-dk/absolutely-you/internal/mcp"
	"github.com/flipbytes-dk/absolutely-you/internal/web"
	knowledgeCtl "github.com/flipbytes-dk/absolutely-you/internal/web/knowledge/controller"
	knowledgeSvc "github.com/flipbytes-dk/absolutely-you/internal/web/knowledge/service"
	"github.com/flipbytes-dk/absolutely-you/library/graph"
	"github.com/flipbytes-dk/absolutely-you/library/log"
)

var apiCMD = &cobra.Command{
	Use:   "api",
	Short: "api",
	Long:  `HTTP gateway translating voice-assistant tool calls into graph searches`,
	Args:  gcmd.NoExtraArgs,
	PreRun: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		if err := initialize(ctx, cmd); err != nil {
			log.Logger.Panic("init", zap.Error(err))
		}
	},
	Run: func(cmd *cobra.Command, args []string) {
		runAPI(context.Background())
	},
}

func runAPI(ctx context.Context) {
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

	svc, err := knowledgeSvc.New(engine, searchConfigFromSettings(), knowledgeGroupID())
	if err != nil {
		log.Logger.Panic("create knowledge service", zap.Error(err))
	}

	ctl, err := knowledgeCtl.New(svc)
	if err != nil {
		log.Logger.Panic("create knowledge controller", zap.Error(err))
	}

	var mcpHandler http.Handler
	if gconfig.Shared.GetBool("settings.mcp.enable") {
		mcpServer, err := mcp.NewServer(svc, log.Logger)
		if err != nil {
			log.Logger.Panic("create mcp server", zap.Error(err))
		}
		mcpHandler = mcpServer.Handler()
	}

	web.RunServer(gconfig.Shared.GetString("listen"), ctl, mcpHandler)
}

func searchConfigFromSettings() graph.SearchConfig {
	cfg := graph.SearchConfig{
		Recipe: gconfig.Shared.GetString("settings.knowledge.recipe"),
		Limit:  gconfig.Shared.GetInt("settings.knowledge.limit"),
	}
	if cfg.Limit <= 0 {
		cfg.Limit = 5
	}

	return cfg
}

func knowledgeGroupID() string {
	if v := gconfig.Shared.GetString("settings.knowledge.group_id"); v != "" {
		return v
	}

	return "absolute_cosmetic_procedures"
}

func init() {
	rootCMD.AddCommand(apiCMD)
}
