// internal/workers/presentation/generate-slide-content/config.go
package generateslidecontent

import (
	"time"

	"slide-generator/internal/common/config"
	"slide-generator/internal/models"
)

type Config struct {
	Timeout          time.Duration
	DefaultNumSlides int
}

func LoadConfig(wcfg config.WorkerConfig) *Config {
	cfg := &Config{
		Timeout:          config.GetDuration(wcfg.Timeout),
		DefaultNumSlides: models.DefaultNumSlides,
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 60 * time.Second
	}
	return cfg
}
