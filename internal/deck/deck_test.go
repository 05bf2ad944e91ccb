package deck

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "slide-generator/internal/common/errors"
	"slide-generator/internal/models"
)

func strPtr(s string) *string { return &s }
func intPtr(i int) *int { return &i }

var fixedNow = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func twoSlideDeck() *models.Deck {
	return Create("AI Ethics", NumberSlides([]models.Slide{
		{Title: "Intro", Layout: "title", Points: []string{}},
		{Title: "Risks", Layout: "content", Points: []string{"Bias", "Safety"}, Citation: "Smith 2023"},
	}), models.ThemeOverrides{}, 2, fixedNow)
}

func TestCreate(t *testing.T) {
	slides := []models.Slide{{Title: "Intro", Layout: "title", Points: []string{"a"}}}
	theme := models.ThemeOverrides{PrimaryColor: strPtr("not-a-color")}

	d := Create("Topic", slides, theme, 1, fixedNow)

	_, err := uuid.Parse(d.ID)
	assert.NoError(t, err)
	assert.Equal(t, "Topic", d.Topic)
	assert.Equal(t, "not-a-color", *d.Theme.PrimaryColor, "overrides are stored verbatim")
	assert.Nil(t, d.Theme.Font)
	assert.Equal(t, fixedNow, d.CreatedAt)

	slides[0].Points[0] = "mutated"
	*theme.PrimaryColor = "changed"
	assert.Equal(t, "a", d.Slides[0].Points[0])
	assert.Equal(t, "not-a-color", *d.Theme.PrimaryColor)
}

func TestCreate_UniqueIDs(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		d := Create("t", nil, models.ThemeOverrides{}, 1, fixedNow)
		require.False(t, seen[d.ID])
		seen[d.ID] = true
	}
}

func TestConfigure_NumSlidesDoesNotResize(t *testing.T) {
	d := twoSlideDeck()

	require.NoError(t, Configure(d, models.DeckUpdate{NumSlides: intPtr(7)}, fixedNow))

	assert.Equal(t, 7, d.NumSlides)
	assert.Len(t, d.Slides, 2)
	view := ToView(d)
	assert.True(t, view.CountMismatch)
	assert.Equal(t, 2, view.SlideCount)
}

func TestConfigure_ThemeMerge(t *testing.T) {
	tests := []struct {
		name   string
		first  models.ThemeOverrides
		second models.ThemeOverrides
		want   models.ThemeOverrides
	}{
		{
			name:   "disjoint keys union",
			first:  models.ThemeOverrides{PrimaryColor: strPtr("#111111")},
			second: models.ThemeOverrides{Font: strPtr("Arial")},
			want:   models.ThemeOverrides{PrimaryColor: strPtr("#111111"), Font: strPtr("Arial")},
		},
		{
			name:   "later call wins",
			first:  models.ThemeOverrides{PrimaryColor: strPtr("#111111")},
			second: models.ThemeOverrides{PrimaryColor: strPtr("#222222")},
			want:   models.ThemeOverrides{PrimaryColor: strPtr("#222222")},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := twoSlideDeck()
			require.NoError(t, Configure(d, models.DeckUpdate{Theme: &tt.first}, fixedNow))
			require.NoError(t, Configure(d, models.DeckUpdate{Theme: &tt.second}, fixedNow))
			assert.Equal(t, tt.want, d.Theme)
		})
	}
}

func TestConfigure_DisjointThemeKeysCommute(t *testing.T) {
	a := models.ThemeOverrides{SecondaryColor: strPtr("#00FF00")}
	b := models.ThemeOverrides{Font: strPtr("Georgia")}

	d1 := twoSlideDeck()
	require.NoError(t, Configure(d1, models.DeckUpdate{Theme: &a}, fixedNow))
	require.NoError(t, Configure(d1, models.DeckUpdate{Theme: &b}, fixedNow))

	d2 := twoSlideDeck()
	require.NoError(t, Configure(d2, models.DeckUpdate{Theme: &b}, fixedNow))
	require.NoError(t, Configure(d2, models.DeckUpdate{Theme: &a}, fixedNow))

	assert.Equal(t, d1.Theme, d2.Theme)
}

func TestConfigure_LayoutChanges(t *testing.T) {
	d := twoSlideDeck()

	err := Configure(d, models.DeckUpdate{LayoutChanges: []models.LayoutChange{
		{SlideNumber: 1, Layout: "content"},
		{SlideNumber: 2, Layout: "title"},
	}}, fixedNow)

	require.NoError(t, err)
	assert.Equal(t, "content", d.Slides[0].Layout)
	assert.Equal(t, "title", d.Slides[1].Layout)
}

func TestConfigure_UnknownSlideLeavesDeckUnchanged(t *testing.T) {
	d := twoSlideDeck()
	before := d.Clone()
	later := fixedNow.Add(time.Hour)

	err := Configure(d, models.DeckUpdate{
		NumSlides:     intPtr(3),
		Theme:         &models.ThemeOverrides{Font: strPtr("Arial")},
		LayoutChanges: []models.LayoutChange{{SlideNumber: 1, Layout: "content"}, {SlideNumber: 5, Layout: "content"}},
	}, later)

	var notFound *apperrors.SlideNotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, 5, notFound.SlideNumber)
	assert.Equal(t, before, d)
}

func TestConfigure_UpdatesTimestamp(t *testing.T) {
	d := twoSlideDeck()
	later := fixedNow.Add(time.Minute)

	require.NoError(t, Configure(d, models.DeckUpdate{}, later))
	assert.Equal(t, later, d.UpdatedAt)
	assert.Equal(t, fixedNow, d.CreatedAt)
}

func TestToView(t *testing.T) {
	d := twoSlideDeck()
	d.Theme.PrimaryColor = strPtr("#FF0000")

	view := ToView(d)

	assert.Equal(t, d.ID, view.ID)
	assert.Equal(t, "AI Ethics", view.Topic)
	assert.Equal(t, 2, view.NumSlides)
	assert.Equal(t, 2, view.SlideCount)
	assert.False(t, view.CountMismatch)
	require.Len(t, view.Slides, 2)
	assert.Equal(t, 2, view.Slides[1].SlideNumber)

	view.Slides[1].Points[0] = "changed"
	assert.Equal(t, "Bias", d.Slides[1].Points[0])
}

func TestNumberSlides(t *testing.T) {
	slides := NumberSlides([]models.Slide{{SlideNumber: 9}, {}, {SlideNumber: 1}})
	for i, s := range slides {
		assert.Equal(t, i+1, s.SlideNumber)
	}
}
