package render

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redismock/v9"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"slide-generator/internal/common/database"
	"slide-generator/internal/models"
)

func TestFingerprint_TracksRenderedState(t *testing.T) {
	d := sampleDeck()
	base := Fingerprint(d)

	clone := d.Clone()
	clone.UpdatedAt = time.Now()
	clone.NumSlides = 42
	assert.Equal(t, base, Fingerprint(clone), "metadata does not affect output")

	clone.Theme.Font = strPtr("Arial")
	assert.NotEqual(t, base, Fingerprint(clone))

	clone = d.Clone()
	clone.Slides[1].Layout = models.LayoutTagTitle
	assert.NotEqual(t, base, Fingerprint(clone))
}

func TestMemoryCache_Expiry(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache(time.Minute)
	now := time.Now()
	c.now = func() time.Time { return now }

	require.NoError(t, c.Put(ctx, "a", CachedRender{Fingerprint: "f1", Path: "/tmp/a.pptx"}))

	got, ok, err := c.Get(ctx, "a")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "f1", got.Fingerprint)

	now = now.Add(2 * time.Minute)
	_, ok, err = c.Get(ctx, "a")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMemoryCache_Invalidate(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache(time.Minute)
	require.NoError(t, c.Put(ctx, "a", CachedRender{Fingerprint: "f1"}))
	require.NoError(t, c.Invalidate(ctx, "a"))

	_, ok, err := c.Get(ctx, "a")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRedisCache_RoundTrip(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	c := NewRedisCache(database.WrapRedis(client, "slides"), 5*time.Minute)
	ctx := context.Background()

	_, ok, err := c.Get(ctx, "deck-1")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, c.Put(ctx, "deck-1", CachedRender{Fingerprint: "abc", Path: "output/deck-1.pptx"}))
	assert.True(t, mr.Exists("slides:render:deck-1"))
	assert.Equal(t, 5*time.Minute, mr.TTL("slides:render:deck-1"))

	got, ok, err := c.Get(ctx, "deck-1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, CachedRender{Fingerprint: "abc", Path: "output/deck-1.pptx"}, got)

	mr.FastForward(6 * time.Minute)
	_, ok, err = c.Get(ctx, "deck-1")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRedisCache_GetError(t *testing.T) {
	client, mock := redismock.NewClientMock()
	c := NewRedisCache(database.WrapRedis(client, "slides"), time.Minute)

	mock.ExpectGet("slides:render:deck-1").SetErr(assert.AnError)

	_, _, err := c.Get(context.Background(), "deck-1")
	assert.ErrorIs(t, err, assert.AnError)
	assert.NoError(t, mock.ExpectationsWereMet())
}
