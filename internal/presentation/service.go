// Package presentation wires deck storage, content generation and rendering
// into the operations exposed by the HTTP API and the job workers.
package presentation

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/singleflight"

	apperrors "slide-generator/internal/common/errors"
	"slide-generator/internal/common/logger"
	"slide-generator/internal/common/metrics"
	"slide-generator/internal/common/observability"
	"slide-generator/internal/content"
	"slide-generator/internal/deck"
	"slide-generator/internal/models"
	"slide-generator/internal/render"
)

type Service struct {
	decks     *deck.Service
	generator content.Generator
	markdown  *content.MarkdownParser
	assembler *render.Assembler
	cache     render.Cache
	previewer render.Previewer
	obs       *observability.Observability
	logger    logger.Logger

	renders     singleflight.Group
	renderLocks deck.KeyedMutex
}

type Dependencies struct {
	Decks         *deck.Service
	Generator     content.Generator
	Assembler     *render.Assembler
	Cache         render.Cache
	Observability *observability.Observability
	Logger        logger.Logger
}

func NewService(deps Dependencies) *Service {
	if deps.Logger == nil {
		deps.Logger = logger.NewNoOpLogger()
	}
	return &Service{
		decks:     deps.Decks,
		generator: deps.Generator,
		markdown:  content.NewMarkdownParser(),
		assembler: deps.Assembler,
		cache:     deps.Cache,
		previewer: render.NewPreviewer(),
		obs:       deps.Observability,
		logger:    deps.Logger.With(map[string]interface{}{"component": "presentation"}),
	}
}

// Create stores a new deck. Supplied slides win over markdown, and either
// one skips the content generator. The declared slide count always matches
// the stored slides.
func (s *Service) Create(ctx context.Context, req models.CreatePresentationRequest) (*models.Deck, error) {
	var slides []models.Slide
	switch {
	case len(req.Content) > 0:
		slides = req.Content
	case strings.TrimSpace(req.CustomContent) != "":
		slides = s.markdown.Parse(req.Topic, req.CustomContent)
		if len(slides) < models.MinNumSlides || len(slides) > models.MaxNumSlides {
			return nil, apperrors.NewValidationFailedError(fmt.Sprintf(
				"custom_content: yields %d slides, expected %d to %d", len(slides), models.MinNumSlides, models.MaxNumSlides))
		}
	default:
		generated, err := s.Generate(ctx, req.Topic, req.SlideCount())
		if err != nil {
			return nil, err
		}
		if len(generated) == 0 {
			return nil, apperrors.NewContentGenerationError(s.generator.Name(), fmt.Errorf("no slides generated for %q", req.Topic))
		}
		if len(generated) != req.SlideCount() {
			s.logger.Warn("Generator returned a different slide count", map[string]interface{}{
				"topic":     req.Topic,
				"requested": req.SlideCount(),
				"generated": len(generated),
			})
		}
		return s.decks.CreateWithID(ctx, req.ID, req.Topic, generated, req.Theme, len(generated))
	}

	if req.NumSlides != nil && *req.NumSlides != len(slides) {
		return nil, apperrors.NewValidationFailedError(fmt.Sprintf(
			"num_slides: %d does not match the %d supplied slides", *req.NumSlides, len(slides)))
	}
	return s.decks.CreateWithID(ctx, req.ID, req.Topic, slides, req.Theme, len(slides))
}

// Generate runs the configured content generator.
func (s *Service) Generate(ctx context.Context, topic string, numSlides int) ([]models.Slide, error) {
	ctx, span := s.obs.StartSpan(ctx, "content.generate",
		attribute.String("provider", s.generator.Name()),
		attribute.Int("num_slides", numSlides),
	)
	defer span.End()

	start := time.Now()
	slides, err := s.generator.Generate(ctx, topic, numSlides)
	if err != nil {
		span.RecordError(err)
		metrics.ContentGenerations.WithLabelValues(s.generator.Name(), "error").Inc()
		s.logger.Error("Content generation failed", map[string]interface{}{
			"topic": topic,
			"error": err,
		})
		return nil, err
	}

	metrics.ContentGenerations.WithLabelValues(s.generator.Name(), "success").Inc()
	s.logger.Info("Content generated", map[string]interface{}{
		"topic":      topic,
		"slideCount": len(slides),
		"durationMs": time.Since(start).Milliseconds(),
	})
	return slides, nil
}

func (s *Service) Get(ctx context.Context, id string) (*models.Deck, error) {
	return s.decks.Get(ctx, id)
}

func (s *Service) View(ctx context.Context, id string) (models.DeckView, error) {
	return s.decks.View(ctx, id)
}

func (s *Service) Count(ctx context.Context) (int, error) {
	return s.decks.Count(ctx)
}

func (s *Service) Configure(ctx context.Context, id string, u models.DeckUpdate) (models.DeckView, error) {
	view, err := s.decks.Configure(ctx, id, u)
	if err != nil {
		return models.DeckView{}, err
	}
	if err := s.cache.Invalidate(ctx, id); err != nil {
		s.logger.Warn("Failed to invalidate render cache", map[string]interface{}{
			"presentationId": id,
			"error":          err,
		})
	}
	return view, nil
}

// Render returns the path of an up-to-date rendering of deck id.
func (s *Service) Render(ctx context.Context, id string) (string, *models.Deck, error) {
	d, err := s.decks.Get(ctx, id)
	if err != nil {
		return "", nil, err
	}
	path, err := s.RenderDeck(ctx, d)
	if err != nil {
		return "", nil, err
	}
	return path, d, nil
}

// RenderDeck renders d unless the cache holds a file produced from the same
// deck state. Concurrent renders of one state share a single build, and
// builds of one deck id run one at a time so the file on disk and its cache
// entry always describe the same state.
func (s *Service) RenderDeck(ctx context.Context, d *models.Deck) (string, error) {
	fingerprint := render.Fingerprint(d)

	if path, ok := s.cachedRender(ctx, d.ID, fingerprint); ok {
		metrics.RenderCacheLookups.WithLabelValues("hit").Inc()
		return path, nil
	}
	metrics.RenderCacheLookups.WithLabelValues("miss").Inc()

	v, err, _ := s.renders.Do(d.ID+":"+fingerprint, func() (interface{}, error) {
		unlock := s.renderLocks.Lock(d.ID)
		defer unlock()

		// another state of this deck may have been written while we waited
		if path, ok := s.cachedRender(ctx, d.ID, fingerprint); ok {
			return path, nil
		}

		path, err := s.render(ctx, d)
		if err != nil {
			return nil, err
		}
		if err := s.cache.Put(ctx, d.ID, render.CachedRender{Fingerprint: fingerprint, Path: path}); err != nil {
			s.logger.Warn("Failed to store render cache entry", map[string]interface{}{
				"presentationId": d.ID,
				"error":          err,
			})
		}
		return path, nil
	})
	if err != nil {
		return "", err
	}
	return v.(string), nil
}

func (s *Service) cachedRender(ctx context.Context, id, fingerprint string) (string, bool) {
	cached, ok, err := s.cache.Get(ctx, id)
	if err != nil {
		s.logger.Warn("Render cache lookup failed", map[string]interface{}{
			"presentationId": id,
			"error":          err,
		})
		return "", false
	}
	if !ok || cached.Fingerprint != fingerprint || !fileExists(cached.Path) {
		return "", false
	}
	return cached.Path, true
}

func (s *Service) render(ctx context.Context, d *models.Deck) (string, error) {
	ctx, span := s.obs.StartSpan(ctx, "presentation.render",
		attribute.String("presentation_id", d.ID),
		attribute.Int("slides", len(d.Slides)),
	)
	defer span.End()

	start := time.Now()
	path, err := s.assembler.Render(d)
	elapsed := time.Since(start)
	metrics.PresentationRenderDuration.Observe(elapsed.Seconds())

	if err != nil {
		span.RecordError(err)
		metrics.PresentationsRendered.WithLabelValues("error").Inc()
		s.obs.RecordRender(ctx, elapsed, 0, "error")
		s.logger.Error("Presentation render failed", map[string]interface{}{
			"presentationId": d.ID,
			"error":          err,
		})
		return "", err
	}

	metrics.PresentationsRendered.WithLabelValues("success").Inc()
	s.obs.RecordRender(ctx, elapsed, len(d.Slides), "success")
	s.logger.Info("Presentation rendered", map[string]interface{}{
		"presentationId": d.ID,
		"path":           path,
		"slideCount":     len(d.Slides),
		"durationMs":     elapsed.Milliseconds(),
	})
	return path, nil
}

// Preview renders deck id if needed and reads back the text of slide n.
func (s *Service) Preview(ctx context.Context, id string, n int) (render.SlidePreview, error) {
	path, _, err := s.Render(ctx, id)
	if err != nil {
		return render.SlidePreview{}, err
	}
	return s.previewer.Slide(path, n)
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
