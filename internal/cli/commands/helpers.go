package commands

import (
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/merkit/merkit/internal/cli/config"
	"github.com/merkit/merkit/internal/llm"
	"github.com/merkit/merkit/internal/pipeline"
)

// newLogger builds the command's logger, honoring the root --verbose flag.
func newLogger(cmd *cobra.Command) *zap.Logger {
	verbose, _ := cmd.Flags().GetBool("verbose")
	if verbose {
		log, err := zap.NewDevelopment()
		if err == nil {
			return log
		}
	}
	log, err := zap.NewProduction()
	if err != nil {
		return zap.NewNop()
	}
	return log
}

// newCompletionClient builds the configured provider client, wrapped in
// the Redis completion cache when enabled.
func newCompletionClient(cfg *config.Config, log *zap.Logger) (llm.Client, error) {
	client, err := llm.NewClient(cfg.ProviderConfig())
	if err != nil {
		return nil, fmt.Errorf("configuring completion client: %w", err)
	}

	if cfg.Cache.Enabled {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.Cache.Addr})
		client = llm.NewCachedClient(client, rdb, cfg.CacheTTL(), log)
		log.Debug("completion cache enabled", zap.String("addr", cfg.Cache.Addr))
	}

	return client, nil
}

// newPipeline loads configuration and assembles the pipeline with its
// client and retry policy.
func newPipeline(log *zap.Logger) (*pipeline.Pipeline, *config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}

	client, err := newCompletionClient(cfg, log)
	if err != nil {
		return nil, nil, err
	}

	p := pipeline.New(client, log,
		pipeline.WithRetryPolicy(pipeline.RetryPolicy{MaxAttempts: cfg.Pipeline.PassAttempts}))
	return p, cfg, nil
}
