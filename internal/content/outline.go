package content

import (
	"context"
	"fmt"
	"strings"

	"slide-generator/internal/models"
)

var outlineSections = []struct {
	heading string
	points  []string
}{
	{"Introduction", []string{"What {topic} is", "Why {topic} matters today", "Scope of this presentation"}},
	{"Background", []string{"Origins of {topic}", "Key milestones", "Current state of the field"}},
	{"Key Concepts", []string{"Core principles of {topic}", "Common terminology", "How the pieces fit together"}},
	{"Benefits", []string{"Advantages of {topic}", "Who gains the most", "Measurable outcomes"}},
	{"Challenges", []string{"Open problems in {topic}", "Risks and trade-offs", "Common misconceptions"}},
	{"Case Study", []string{"A real-world example of {topic}", "What worked", "Lessons learned"}},
	{"Best Practices", []string{"Getting started with {topic}", "Practices to adopt", "Pitfalls to avoid"}},
	{"Future Outlook", []string{"Emerging trends in {topic}", "Predictions for the next decade", "Areas to watch"}},
	{"Summary", []string{"Key takeaways about {topic}", "Next steps", "Questions"}},
}

// OutlineGenerator builds a generic, deterministic outline without any
// external service. It backs the API when no model is configured.
type OutlineGenerator struct{}

func NewOutlineGenerator() OutlineGenerator {
	return OutlineGenerator{}
}

func (OutlineGenerator) Name() string { return "outline" }

func (OutlineGenerator) Generate(ctx context.Context, topic string, numSlides int) ([]models.Slide, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if numSlides < 1 {
		numSlides = models.DefaultNumSlides
	}

	slides := make([]models.Slide, 0, numSlides)
	slides = append(slides, models.Slide{
		Title:  topic,
		Layout: models.LayoutTagTitle,
		Points: []string{"An overview of " + topic},
	})

	for i := 1; i < numSlides; i++ {
		section := outlineSections[(i-1)%len(outlineSections)]
		title := section.heading
		if round := (i - 1) / len(outlineSections); round > 0 {
			title = fmt.Sprintf("%s (%d)", title, round+1)
		}
		points := make([]string, len(section.points))
		for j, p := range section.points {
			points[j] = strings.ReplaceAll(p, "{topic}", topic)
		}
		slides = append(slides, models.Slide{
			Title:  title,
			Layout: models.LayoutTagContent,
			Points: points,
		})
	}

	return normalize(slides, topic, numSlides), nil
}
