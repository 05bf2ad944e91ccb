// internal/workers/presentation/render-presentation/models.go
package renderpresentation

import "slide-generator/internal/models"

// Input names a stored deck, or carries an inline one that is stored first.
type Input struct {
	PresentationID string                 `json:"presentationId"`
	Topic          string                 `json:"topic"`
	Slides         []models.Slide         `json:"slides"`
	Theme          *models.ThemeOverrides `json:"theme"`

	// InlineDeckID is where an inline deck is stored. Set from the job key.
	InlineDeckID string `json:"-"`
}

type Output struct {
	PresentationID string `json:"presentationId"`
	FilePath       string `json:"filePath"`
	SlideCount     int    `json:"slideCount"`
}
