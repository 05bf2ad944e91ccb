// internal/models/presentation.go
package models

import "time"

const (
	LayoutTagTitle   = "title"
	LayoutTagContent = "content"

	DefaultNumSlides = 5
	MinNumSlides     = 1
	MaxNumSlides     = 20
)

type Slide struct {
	Title           string   `json:"title"`
	Points          []string `json:"points"`
	Layout          string   `json:"layout"`
	ImageSuggestion string   `json:"image_suggestion,omitempty"`
	Citation        string   `json:"citation,omitempty"`
	SlideNumber     int      `json:"slide_number"`
}

// ThemeOverrides is the raw, partial theme supplied by a caller. Nil fields
// resolve to defaults at render time.
type ThemeOverrides struct {
	PrimaryColor   *string `json:"primary_color,omitempty"`
	SecondaryColor *string `json:"secondary_color,omitempty"`
	Font           *string `json:"font,omitempty"`
}

// Merge copies every key set in other over t. Keys absent from other are kept.
func (t *ThemeOverrides) Merge(other ThemeOverrides) {
	if other.PrimaryColor != nil {
		v := *other.PrimaryColor
		t.PrimaryColor = &v
	}
	if other.SecondaryColor != nil {
		v := *other.SecondaryColor
		t.SecondaryColor = &v
	}
	if other.Font != nil {
		v := *other.Font
		t.Font = &v
	}
}

func (t ThemeOverrides) Clone() ThemeOverrides {
	var out ThemeOverrides
	out.Merge(t)
	return out
}

type Deck struct {
	ID        string         `json:"id"`
	Topic     string         `json:"topic"`
	Slides    []Slide        `json:"slides"`
	Theme     ThemeOverrides `json:"theme"`
	NumSlides int            `json:"num_slides"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

func (d *Deck) Clone() *Deck {
	if d == nil {
		return nil
	}
	out := *d
	out.Theme = d.Theme.Clone()
	out.Slides = make([]Slide, len(d.Slides))
	for i, s := range d.Slides {
		s.Points = clonePoints(s.Points)
		out.Slides[i] = s
	}
	return &out
}

func clonePoints(points []string) []string {
	if points == nil {
		return nil
	}
	return append(make([]string, 0, len(points)), points...)
}

type LayoutChange struct {
	SlideNumber int    `json:"slide_number"`
	Layout      string `json:"layout"`
}

type DeckUpdate struct {
	NumSlides     *int            `json:"num_slides,omitempty"`
	Theme         *ThemeOverrides `json:"theme,omitempty"`
	LayoutChanges []LayoutChange  `json:"layout_changes,omitempty"`
}

type CreatePresentationRequest struct {
	// ID replaces the generated identifier when set. Never read from clients.
	ID            string          `json:"-"`
	Topic         string          `json:"topic"`
	NumSlides     *int            `json:"num_slides,omitempty"`
	CustomContent string          `json:"custom_content,omitempty"`
	Content       []Slide         `json:"content,omitempty"`
	Theme         *ThemeOverrides `json:"theme,omitempty"`
}

func (r CreatePresentationRequest) SlideCount() int {
	if r.NumSlides != nil {
		return *r.NumSlides
	}
	return DefaultNumSlides
}

type CreatePresentationResponse struct {
	ID     string `json:"id"`
	Topic  string `json:"topic"`
	Status string `json:"status"`
}

// DeckView is the boundary-facing record of a deck. It carries no theme data.
type DeckView struct {
	ID         string `json:"id"`
	Topic      string `json:"topic"`
	NumSlides  int    `json:"num_slides"`
	SlideCount int    `json:"slide_count"`

	// CountMismatch is set when num_slides was reconfigured away from len(slides).
	CountMismatch bool      `json:"count_mismatch"`
	Slides        []Slide   `json:"slides"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

type HealthResponse struct {
	Status             string `json:"status"`
	Timestamp          string `json:"timestamp"`
	PresentationsCount int    `json:"presentations_count"`
}
