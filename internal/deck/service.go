package deck

import (
	"context"
	"time"

	"slide-generator/internal/common/logger"
	"slide-generator/internal/common/metrics"
	"slide-generator/internal/models"
)

// Service is the deck registry used by the HTTP API and the workers.
type Service struct {
	store  Store
	logger logger.Logger
	now    func() time.Time
}

func NewService(store Store, log logger.Logger) *Service {
	return &Service{
		store:  store,
		logger: log.With(map[string]interface{}{"component": "deck"}),
		now:    time.Now,
	}
}

// Create numbers the slides by position and stores a new deck.
func (s *Service) Create(ctx context.Context, topic string, slides []models.Slide, theme *models.ThemeOverrides, numSlides int) (*models.Deck, error) {
	return s.CreateWithID(ctx, "", topic, slides, theme, numSlides)
}

// CreateWithID is Create with a caller-chosen identifier. An empty id gets a
// generated one.
func (s *Service) CreateWithID(ctx context.Context, id, topic string, slides []models.Slide, theme *models.ThemeOverrides, numSlides int) (*models.Deck, error) {
	var overrides models.ThemeOverrides
	if theme != nil {
		overrides = *theme
	}

	d := Create(topic, NumberSlides(slides), overrides, numSlides, s.now())
	if id != "" {
		d.ID = id
	}
	if err := s.store.Create(ctx, d); err != nil {
		return nil, err
	}

	s.logger.Info("Presentation created", map[string]interface{}{
		"presentationId": d.ID,
		"topic":          d.Topic,
		"slideCount":     len(d.Slides),
	})
	s.refreshGauge(ctx)
	return d, nil
}

func (s *Service) Get(ctx context.Context, id string) (*models.Deck, error) {
	return s.store.Get(ctx, id)
}

func (s *Service) View(ctx context.Context, id string) (models.DeckView, error) {
	d, err := s.store.Get(ctx, id)
	if err != nil {
		return models.DeckView{}, err
	}
	return ToView(d), nil
}

// Configure applies u under the store's per-deck exclusion.
func (s *Service) Configure(ctx context.Context, id string, u models.DeckUpdate) (models.DeckView, error) {
	d, err := s.store.Update(ctx, id, func(d *models.Deck) error {
		return Configure(d, u, s.now())
	})
	if err != nil {
		return models.DeckView{}, err
	}

	s.logger.Info("Presentation configured", map[string]interface{}{
		"presentationId": id,
		"numSlides":      d.NumSlides,
		"layoutChanges":  len(u.LayoutChanges),
		"themeChanged":   u.Theme != nil,
	})
	return ToView(d), nil
}

func (s *Service) Count(ctx context.Context) (int, error) {
	return s.store.Count(ctx)
}

func (s *Service) refreshGauge(ctx context.Context) {
	n, err := s.store.Count(ctx)
	if err != nil {
		s.logger.Warn("Failed to count presentations", map[string]interface{}{"error": err})
		return
	}
	metrics.PresentationsStored.Set(float64(n))
}
