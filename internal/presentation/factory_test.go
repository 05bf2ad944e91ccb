package presentation

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"slide-generator/internal/common/config"
	"slide-generator/internal/common/database"
	"slide-generator/internal/common/logger"
	"slide-generator/internal/models"
)

func factoryConfig(t *testing.T, backend string) *config.Config {
	dir := t.TempDir()
	return &config.Config{
		Storage: config.StorageConfig{
			TemplateDir:  filepath.Join(dir, "templates"),
			TemplateName: "default.pptx",
			OutputDir:    filepath.Join(dir, "output"),
			Backend:      backend,
		},
		Content: config.ContentConfig{Provider: "outline"},
		Cache:   config.CacheConfig{Backend: backend, RenderTTL: 60000},
	}
}

func TestNewFromConfig_Memory(t *testing.T) {
	cfg := factoryConfig(t, "memory")

	svc, err := NewFromConfig(context.Background(), cfg, nil, nil, logger.NewTestLogger(t))
	require.NoError(t, err)
	assert.FileExists(t, cfg.Storage.TemplatePath())

	d, err := svc.Create(context.Background(), models.CreatePresentationRequest{Topic: "Edge Computing"})
	require.NoError(t, err)

	path, _, err := svc.Render(context.Background(), d.ID)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(cfg.Storage.OutputDir, d.ID+".pptx"), path)
}

func TestNewFromConfig_Redis(t *testing.T) {
	cfg := factoryConfig(t, "redis")

	_, err := NewFromConfig(context.Background(), cfg, nil, nil, logger.NewTestLogger(t))
	require.Error(t, err)

	mr := miniredis.RunT(t)
	rdb := database.WrapRedis(redis.NewClient(&redis.Options{Addr: mr.Addr()}), "slides")

	svc, err := NewFromConfig(context.Background(), cfg, rdb, nil, logger.NewTestLogger(t))
	require.NoError(t, err)

	d, err := svc.Create(context.Background(), models.CreatePresentationRequest{Topic: "Edge Computing"})
	require.NoError(t, err)
	assert.True(t, mr.Exists("slides:presentation:"+d.ID))

	_, _, err = svc.Render(context.Background(), d.ID)
	require.NoError(t, err)
	assert.True(t, mr.Exists("slides:render:"+d.ID))
}
