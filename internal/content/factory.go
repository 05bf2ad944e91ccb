package content

import (
	"context"

	"slide-generator/internal/common/config"
	"slide-generator/internal/common/logger"
)

// NewFromConfig builds the generator selected by cfg.Provider.
func NewFromConfig(ctx context.Context, cfg config.ContentConfig, log logger.Logger) (Generator, error) {
	if cfg.Provider != "openai" {
		return NewOutlineGenerator(), nil
	}

	cm, err := NewOpenAIChatModel(ctx, cfg.APIKey, cfg.BaseURL, cfg.Model, config.GetDuration(cfg.Timeout))
	if err != nil {
		return nil, err
	}

	llm := NewLLMGenerator(cm, LLMConfig{
		Provider: cfg.Provider,
		Timeout:  config.GetDuration(cfg.Timeout),
		Breaker: BreakerSettings{
			MaxRequests:      cfg.Breaker.MaxRequests,
			Interval:         config.GetDuration(cfg.Breaker.Interval),
			Timeout:          config.GetDuration(cfg.Breaker.Timeout),
			FailureThreshold: cfg.Breaker.FailureThreshold,
			MinRequests:      cfg.Breaker.MinRequests,
		},
	}, log)

	if cfg.FallbackOnError {
		return NewFallbackGenerator(llm, NewOutlineGenerator(), log), nil
	}
	return llm, nil
}
