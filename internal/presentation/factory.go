package presentation

import (
	"context"
	"fmt"

	"slide-generator/internal/common/config"
	"slide-generator/internal/common/database"
	"slide-generator/internal/common/logger"
	"slide-generator/internal/common/observability"
	"slide-generator/internal/content"
	"slide-generator/internal/deck"
	"slide-generator/internal/render"
)

// NewFromConfig builds the service with the backends selected in cfg. rdb may
// be nil when no redis backend is configured.
func NewFromConfig(ctx context.Context, cfg *config.Config, rdb *database.RedisClient, obs *observability.Observability, log logger.Logger) (*Service, error) {
	if cfg.UsesRedis() && rdb == nil {
		return nil, fmt.Errorf("a redis backend is configured but no redis client was provided")
	}

	var store deck.Store = deck.NewMemoryStore()
	if cfg.Storage.Backend == "redis" {
		store = deck.NewRedisStore(rdb)
	}

	ttl := config.GetDuration(cfg.Cache.RenderTTL)
	var cache render.Cache = render.NewMemoryCache(ttl)
	if cfg.Cache.Backend == "redis" {
		cache = render.NewRedisCache(rdb, ttl)
	}

	gen, err := content.NewFromConfig(ctx, cfg.Content, log)
	if err != nil {
		return nil, fmt.Errorf("content generator: %w", err)
	}

	templates := render.NewTemplateStore(cfg.Storage.TemplatePath())
	if err := templates.Ensure(); err != nil {
		return nil, err
	}

	log.Info("Presentation service configured", map[string]interface{}{
		"storage":   cfg.Storage.Backend,
		"cache":     cfg.Cache.Backend,
		"generator": gen.Name(),
		"template":  templates.Path(),
		"outputDir": cfg.Storage.OutputDir,
	})

	return NewService(Dependencies{
		Decks:         deck.NewService(store, log),
		Generator:     gen,
		Assembler:     render.NewAssembler(templates, cfg.Storage.OutputDir),
		Cache:         cache,
		Observability: obs,
		Logger:        log,
	}), nil
}
