package deck

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "slide-generator/internal/common/errors"
	"slide-generator/internal/common/logger"
	"slide-generator/internal/models"
)

func newTestService(t *testing.T) *Service {
	svc := NewService(NewMemoryStore(), logger.NewTestLogger(t))
	svc.now = func() time.Time { return fixedNow }
	return svc
}

func TestService_CreateNumbersSlides(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	d, err := svc.Create(ctx, "Oceans", []models.Slide{
		{Title: "Oceans", Layout: "title", SlideNumber: 7},
		{Title: "Currents", Layout: "content"},
	}, nil, 2)
	require.NoError(t, err)

	assert.Equal(t, 1, d.Slides[0].SlideNumber)
	assert.Equal(t, 2, d.Slides[1].SlideNumber)
	assert.Equal(t, models.ThemeOverrides{}, d.Theme)

	n, err := svc.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestService_ConfigureAndView(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	d, err := svc.Create(ctx, "Oceans", []models.Slide{
		{Title: "Oceans", Layout: "title"},
		{Title: "Currents", Layout: "content"},
	}, &models.ThemeOverrides{Font: strPtr("Arial")}, 2)
	require.NoError(t, err)

	view, err := svc.Configure(ctx, d.ID, models.DeckUpdate{
		LayoutChanges: []models.LayoutChange{{SlideNumber: 2, Layout: "title"}},
	})
	require.NoError(t, err)
	assert.Equal(t, "title", view.Slides[1].Layout)

	_, err = svc.Configure(ctx, d.ID, models.DeckUpdate{
		LayoutChanges: []models.LayoutChange{{SlideNumber: 5, Layout: "content"}},
	})
	var notFound *apperrors.SlideNotFoundError
	require.ErrorAs(t, err, &notFound)

	got, err := svc.Get(ctx, d.ID)
	require.NoError(t, err)
	assert.Equal(t, "Arial", *got.Theme.Font)
	assert.Equal(t, "title", got.Slides[1].Layout)
}

func TestService_ViewMissing(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.View(context.Background(), "nope")
	require.Error(t, err)
	assert.Equal(t, 404, apperrors.Classify(err).HTTPStatus())
}
