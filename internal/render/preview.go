package render

import (
	"fmt"
	"strings"

	ppt "github.com/VantageDataChat/GoPPT"

	apperrors "slide-generator/internal/common/errors"
)

// SlidePreview is the text content of one rendered slide.
type SlidePreview struct {
	SlideNumber int      `json:"slide_number"`
	Title       string   `json:"title"`
	Texts       []string `json:"texts"`
}

// Previewer reads rendered packages back with an independent pptx reader.
type Previewer struct{}

func NewPreviewer() Previewer {
	return Previewer{}
}

// Slides returns one preview per slide in the package at path.
func (Previewer) Slides(path string) ([]SlidePreview, error) {
	reader := &ppt.PPTXReader{}
	pres, err := reader.Read(path)
	if err != nil {
		return nil, apperrors.NewPreviewFailedError(0, fmt.Errorf("open %s: %w", path, err))
	}

	slides := pres.GetAllSlides()
	out := make([]SlidePreview, 0, len(slides))
	for i, slide := range slides {
		sp := SlidePreview{SlideNumber: i + 1, Texts: []string{}}
		for _, shape := range slide.GetShapes() {
			rts, ok := shape.(*ppt.RichTextShape)
			if !ok {
				continue
			}
			for _, para := range rts.GetParagraphs() {
				var b strings.Builder
				for _, elem := range para.GetElements() {
					if run, ok := elem.(*ppt.TextRun); ok {
						b.WriteString(run.GetText())
					}
				}
				text := strings.TrimSpace(b.String())
				if text == "" {
					continue
				}
				if sp.Title == "" {
					sp.Title = text
				} else {
					sp.Texts = append(sp.Texts, text)
				}
			}
		}
		out = append(out, sp)
	}
	return out, nil
}

// Slide returns the preview of the 1-based slide n.
func (pv Previewer) Slide(path string, n int) (SlidePreview, error) {
	all, err := pv.Slides(path)
	if err != nil {
		return SlidePreview{}, err
	}
	if n < 1 || n > len(all) {
		return SlidePreview{}, &apperrors.SlideNotFoundError{SlideNumber: n}
	}
	return all[n-1], nil
}
