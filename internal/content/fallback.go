package content

import (
	"context"

	apperrors "slide-generator/internal/common/errors"
	"slide-generator/internal/common/logger"
	"slide-generator/internal/models"
)

// FallbackGenerator serves from secondary when primary fails with a
// retryable error. Other errors are returned as they are.
type FallbackGenerator struct {
	primary   Generator
	secondary Generator
	logger    logger.Logger
}

func NewFallbackGenerator(primary, secondary Generator, log logger.Logger) *FallbackGenerator {
	return &FallbackGenerator{primary: primary, secondary: secondary, logger: log}
}

func (g *FallbackGenerator) Name() string { return g.primary.Name() }

func (g *FallbackGenerator) Generate(ctx context.Context, topic string, numSlides int) ([]models.Slide, error) {
	slides, err := g.primary.Generate(ctx, topic, numSlides)
	if err == nil {
		return slides, nil
	}
	if !apperrors.Classify(err).Retryable {
		return nil, err
	}

	g.logger.Warn("Content generation failed, using fallback", map[string]interface{}{
		"primary":  g.primary.Name(),
		"fallback": g.secondary.Name(),
		"error":    err,
	})
	return g.secondary.Generate(ctx, topic, numSlides)
}
