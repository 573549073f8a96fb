package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	assistant "github.com/datalens-ai/datalens"
	"github.com/datalens-ai/datalens/src/config"
	"github.com/datalens-ai/datalens/src/imagegen"
	"github.com/datalens-ai/datalens/src/models"
	"github.com/datalens-ai/datalens/src/store"
	"github.com/datalens-ai/datalens/src/tools"
)

var cfgPath string

func main() {
	root := &cobra.Command{
		Use:   "datalens",
		Short: "Conversational analytics over uploaded CSV/JSON datasets",
	}
	root.PersistentFlags().StringVar(&cfgPath, "config", "", "path to config file")
	root.AddCommand(serveCmd(), chatCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// buildAssistant wires the full stack from config: logger, model provider,
// store backend, image generator and the operation registry.
func buildAssistant(ctx context.Context, cfg *config.Config) (*assistant.Assistant, store.ChatStore, *zap.Logger, error) {
	log, err := newLogger(cfg.LogLevel)
	if err != nil {
		return nil, nil, nil, err
	}

	model, err := models.FromName(ctx, cfg.Provider, cfg.Model, "")
	if err != nil {
		return nil, nil, nil, fmt.Errorf("model provider: %w", err)
	}

	st, err := openStore(ctx, cfg)
	if err != nil {
		return nil, nil, nil, err
	}

	registry := tools.NewRegistry(
		&tools.ColumnStatsTool{},
		&tools.FieldStatsTool{},
		&tools.ValueCountsTool{},
		&tools.RankRowsTool{},
		&tools.MetricOverTimeTool{},
		&tools.PlayVideoTool{},
		&tools.EngagementOverviewTool{},
	)
	if gen := buildImageGen(ctx, cfg, log); gen != nil {
		if err := registry.Register(&tools.GenerateImageTool{Generator: gen}); err != nil {
			log.Warn("image tool registration failed", zap.Error(err))
		}
	}

	a := assistant.New(model, registry, st, log)
	return a, st, log, nil
}

func buildImageGen(ctx context.Context, cfg *config.Config, log *zap.Logger) *imagegen.Client {
	apiKey := os.Getenv("GOOGLE_API_KEY")
	if apiKey == "" {
		apiKey = os.Getenv("GEMINI_API_KEY")
	}
	if apiKey == "" {
		log.Warn("no Google API key set, image generation disabled")
		return nil
	}
	gen, err := imagegen.New(ctx, apiKey, cfg.ImageModel, imagegen.RetryOptions{
		MaxRetries:  cfg.MaxRetries,
		DefaultWait: cfg.RetryDefaultWait,
		MaxWait:     cfg.RetryMaxWait,
	})
	if err != nil {
		log.Warn("image generator unavailable", zap.Error(err))
		return nil
	}
	return gen
}

func openStore(ctx context.Context, cfg *config.Config) (store.ChatStore, error) {
	switch cfg.Store {
	case "", "memory":
		return store.NewMemoryStore(), nil
	case "mongo":
		ms, err := store.NewMongoStore(ctx, cfg.MongoURI, cfg.MongoDB)
		if err != nil {
			return nil, fmt.Errorf("mongo store: %w", err)
		}
		if err := ms.CreateSchema(ctx); err != nil {
			return nil, fmt.Errorf("mongo schema: %w", err)
		}
		return ms, nil
	case "postgres":
		ps, err := store.NewPostgresStore(ctx, cfg.PostgresURL)
		if err != nil {
			return nil, err
		}
		if err := ps.CreateSchema(ctx); err != nil {
			return nil, fmt.Errorf("postgres schema: %w", err)
		}
		return ps, nil
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.Store)
	}
}

func newLogger(level string) (*zap.Logger, error) {
	zcfg := zap.NewProductionConfig()
	if err := zcfg.Level.UnmarshalText([]byte(level)); err != nil {
		return nil, fmt.Errorf("log level %q: %w", level, err)
	}
	return zcfg.Build()
}
