// Package deck holds the presentation record, its mutation contract and the
// stores that keep it between requests.
package deck

import (
	"time"

	"github.com/google/uuid"

	apperrors "slide-generator/internal/common/errors"
	"slide-generator/internal/models"
)

// Create builds a new deck with a fresh identifier. Slides and theme
// overrides are stored as given; defaults are applied at render time.
func Create(topic string, slides []models.Slide, theme models.ThemeOverrides, numSlides int, now time.Time) *models.Deck {
	d := &models.Deck{
		ID:        uuid.NewString(),
		Topic:     topic,
		Slides:    make([]models.Slide, len(slides)),
		Theme:     theme,
		NumSlides: numSlides,
		CreatedAt: now.UTC(),
		UpdatedAt: now.UTC(),
	}
	copy(d.Slides, slides)
	return d.Clone()
}

// Configure applies u to d in order: slide count, theme merge, layout changes.
// The count never resizes Slides. If any layout change targets a missing
// slide, d is left unchanged.
func Configure(d *models.Deck, u models.DeckUpdate, now time.Time) error {
	next := d.Clone()

	if u.NumSlides != nil {
		next.NumSlides = *u.NumSlides
	}

	if u.Theme != nil {
		next.Theme.Merge(*u.Theme)
	}

	for _, change := range u.LayoutChanges {
		i := indexOfSlide(next.Slides, change.SlideNumber)
		if i < 0 {
			return &apperrors.SlideNotFoundError{SlideNumber: change.SlideNumber}
		}
		next.Slides[i].Layout = change.Layout
	}

	next.UpdatedAt = now.UTC()
	*d = *next
	return nil
}

func indexOfSlide(slides []models.Slide, number int) int {
	for i := range slides {
		if slides[i].SlideNumber == number {
			return i
		}
	}
	return -1
}

// ToView is the boundary representation of d. It carries no theme data.
func ToView(d *models.Deck) models.DeckView {
	slides := make([]models.Slide, len(d.Slides))
	for i, s := range d.Slides {
		s.Points = append([]string{}, s.Points...)
		slides[i] = s
	}
	return models.DeckView{
		ID:            d.ID,
		Topic:         d.Topic,
		NumSlides:     d.NumSlides,
		SlideCount:    len(d.Slides),
		CountMismatch: d.NumSlides != len(d.Slides),
		Slides:        slides,
		CreatedAt:     d.CreatedAt,
		UpdatedAt:     d.UpdatedAt,
	}
}

// NumberSlides assigns 1-based slide numbers in order.
func NumberSlides(slides []models.Slide) []models.Slide {
	for i := range slides {
		slides[i].SlideNumber = i + 1
	}
	return slides
}
