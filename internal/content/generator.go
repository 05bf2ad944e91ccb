// Package content produces slide records for a topic, either from a language
// model, from a deterministic outline, or from caller-supplied markdown.
package content

import (
	"context"
	"strings"

	"slide-generator/internal/models"
)

// Generator turns a topic into an ordered list of slides.
type Generator interface {
	Generate(ctx context.Context, topic string, numSlides int) ([]models.Slide, error)
	Name() string
}

// normalize makes generated slides safe to store: at most numSlides entries,
// a title layout on the first slide, a known layout everywhere else and
// positional slide numbers.
func normalize(slides []models.Slide, topic string, numSlides int) []models.Slide {
	if numSlides > 0 && len(slides) > numSlides {
		slides = slides[:numSlides]
	}

	out := make([]models.Slide, 0, len(slides))
	for i, s := range slides {
		s.Title = strings.TrimSpace(s.Title)
		if s.Title == "" {
			s.Title = topic
		}
		s.Points = cleanPoints(s.Points)
		s.ImageSuggestion = strings.TrimSpace(s.ImageSuggestion)
		s.Citation = strings.TrimSpace(s.Citation)

		switch {
		case i == 0:
			s.Layout = models.LayoutTagTitle
		case s.Layout == "":
			s.Layout = models.LayoutTagContent
		}
		s.SlideNumber = i + 1
		out = append(out, s)
	}
	return out
}

func cleanPoints(points []string) []string {
	out := make([]string, 0, len(points))
	for _, p := range points {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
