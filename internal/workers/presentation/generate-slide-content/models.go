// internal/workers/presentation/generate-slide-content/models.go
package generateslidecontent

import "slide-generator/internal/models"

type Input struct {
	Topic     string `json:"topic"`
	NumSlides *int   `json:"numSlides"`
}

type Output struct {
	Topic      string         `json:"topic"`
	Slides     []models.Slide `json:"slides"`
	SlideCount int            `json:"slideCount"`
}
