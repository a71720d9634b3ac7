// Package cmd command line
package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/Laisky/errors/v2"
	gconfig "github.com/Laisky/go-config/v2"
	gutils "github.com/Laisky/go-utils/v6"
	gcmd "github.com/Laisky/go-utils/v6/cmd"
	glog "github.com/Laisky/go-utils/v6/log"
	"github.com/Laisky/zap"
	"github.com/spf13/cobra"

	"github.com/flipbytes-dk/absolutely-you/library/config"
	"github.com/flipbytes-dk/absolutely-you/library/graph"
	"github.com/flipbytes-dk/absolutely-you/library/log"
)

var rootCMD = &cobra.Command{
	Use:   "absolutely-you",
	Short: "absolutely-you",
	Long:  `knowledge-graph gateway for the clinic voice assistant`,
	Args:  gcmd.NoExtraArgs,
}

func initialize(ctx context.Context, cmd *cobra.Command) error {
	if err := gconfig.Shared.BindPFlags(cmd.Flags()); err != nil {
		return errors.Wrap(err, "bind pflags")
	}

	setupSettings(ctx)
	setupLogger(ctx)

	return nil
}

func setupSettings(ctx context.Context) {
	// mode
	if gconfig.Shared.GetBool("debug") {
		fmt.Println("run in debug mode")
		gconfig.Shared.Set("log-level", "debug")
	} else { // prod mode
		fmt.Println("run in prod mode")
	}

	// clock
	gutils.SetInternalClock(100 * time.Millisecond)

	// load configuration
	cfgPath := gconfig.Shared.GetString("config")
	config.LoadFromFile(cfgPath)
}

func setupLogger(ctx context.Context) {
	lvl := gconfig.Shared.GetString("log-level")
	if err := log.Logger.ChangeLevel(glog.Level(lvl)); err != nil {
		log.Logger.Panic("change log level", zap.Error(err), zap.String("level", lvl))
	}
}

// graphDialInfoFromSettings assembles the graph connection config, falling
// back to the conventional environment variables. All three values are
// required; the process does not start without them.
func graphDialInfoFromSettings() graph.DialInfo {
	dialInfo := graph.DialInfo{
		URI:      settingOrEnv("settings.neo4j.uri", "NEO4J_URI"),
		User:     settingOrEnv("settings.neo4j.user", "NEO4J_USER"),
		Password: settingOrEnv("settings.neo4j.pwd", "NEO4J_PASSWORD"),
	}

	if dialInfo.URI == "" || dialInfo.User == "" || dialInfo.Password == "" {
		log.Logger.Panic("NEO4J_URI, NEO4J_USER, and NEO4J_PASSWORD must be set")
	}

	return dialInfo
}

func settingOrEnv(settingKey, envKey string) string {
	if v := gconfig.Shared.GetString(settingKey); v != "" {
		return v
	}

	return os.Getenv(envKey)
}

func init() {
	rootCMD.PersistentFlags().Bool("debug", false, "run in debug mode")
	rootCMD.PersistentFlags().String("listen", "localhost:8080", "like `localhost:8080`")
	rootCMD.PersistentFlags().StringP("config", "c", "/etc/absolutely-you/settings.yml", "config file path")
	rootCMD.PersistentFlags().String("log-level", "info", "`debug/info/error`")
}

// Execute execute root command
func Execute() {
	if err := rootCMD.Execute(); err != nil {
		glog.Shared.Panic("start", zap.Error(err))
	}
}
