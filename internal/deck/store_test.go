package deck

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redismock/v9"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"slide-generator/internal/common/database"
	apperrors "slide-generator/internal/common/errors"
	"slide-generator/internal/models"
)

// ==========================
// Test Helper Functions
// ==========================

func newRedisStore(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewRedisStore(database.WrapRedis(client, "slides")), mr
}

func storesUnderTest(t *testing.T) map[string]Store {
	rs, _ := newRedisStore(t)
	return map[string]Store{
		"memory": NewMemoryStore(),
		"redis":  rs,
	}
}

func requireCode(t *testing.T, err error, code apperrors.ErrorCode) {
	t.Helper()
	require.Error(t, err)
	assert.Equal(t, code, apperrors.Classify(err).Code)
}

// ==========================
// Shared Store Contract
// ==========================

func TestStore_CreateGet(t *testing.T) {
	for name, store := range storesUnderTest(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			d := twoSlideDeck()
			require.NoError(t, store.Create(ctx, d))

			got, err := store.Get(ctx, d.ID)
			require.NoError(t, err)
			assert.Equal(t, d.ID, got.ID)
			assert.Equal(t, d.Slides, got.Slides)
			assert.True(t, d.CreatedAt.Equal(got.CreatedAt))

			n, err := store.Count(ctx)
			require.NoError(t, err)
			assert.Equal(t, 1, n)
		})
	}
}

func TestStore_GetReturnsCopy(t *testing.T) {
	for name, store := range storesUnderTest(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			d := twoSlideDeck()
			require.NoError(t, store.Create(ctx, d))

			got, err := store.Get(ctx, d.ID)
			require.NoError(t, err)
			got.Slides[0].Title = "changed"

			again, err := store.Get(ctx, d.ID)
			require.NoError(t, err)
			assert.Equal(t, "Intro", again.Slides[0].Title)
		})
	}
}

func TestStore_GetMissing(t *testing.T) {
	for name, store := range storesUnderTest(t) {
		t.Run(name, func(t *testing.T) {
			_, err := store.Get(context.Background(), "missing")
			requireCode(t, err, apperrors.ErrCodePresentationNotFound)
		})
	}
}

func TestStore_Update(t *testing.T) {
	for name, store := range storesUnderTest(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			d := twoSlideDeck()
			require.NoError(t, store.Create(ctx, d))

			updated, err := store.Update(ctx, d.ID, func(d *models.Deck) error {
				d.NumSlides = 9
				return nil
			})
			require.NoError(t, err)
			assert.Equal(t, 9, updated.NumSlides)

			got, err := store.Get(ctx, d.ID)
			require.NoError(t, err)
			assert.Equal(t, 9, got.NumSlides)
		})
	}
}

func TestStore_UpdateErrorDiscardsChanges(t *testing.T) {
	for name, store := range storesUnderTest(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			d := twoSlideDeck()
			require.NoError(t, store.Create(ctx, d))

			boom := errors.New("boom")
			_, err := store.Update(ctx, d.ID, func(d *models.Deck) error {
				d.Topic = "changed"
				return boom
			})
			assert.ErrorIs(t, err, boom)

			got, err := store.Get(ctx, d.ID)
			require.NoError(t, err)
			assert.Equal(t, "AI Ethics", got.Topic)
		})
	}
}

func TestStore_UpdateMissing(t *testing.T) {
	for name, store := range storesUnderTest(t) {
		t.Run(name, func(t *testing.T) {
			_, err := store.Update(context.Background(), "missing", func(*models.Deck) error { return nil })
			requireCode(t, err, apperrors.ErrCodePresentationNotFound)
		})
	}
}

func TestStore_ConcurrentUpdatesAreSerialized(t *testing.T) {
	for name, store := range storesUnderTest(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			d := twoSlideDeck()
			d.NumSlides = 0
			require.NoError(t, store.Create(ctx, d))

			const workers = 4
			var wg sync.WaitGroup
			for i := 0; i < workers; i++ {
				wg.Add(1)
				go func() {
					defer wg.Done()
					_, err := store.Update(ctx, d.ID, func(d *models.Deck) error {
						d.NumSlides++
						return nil
					})
					assert.NoError(t, err)
				}()
			}
			wg.Wait()

			got, err := store.Get(ctx, d.ID)
			require.NoError(t, err)
			assert.Equal(t, workers, got.NumSlides)
		})
	}
}

// ==========================
// Redis Specifics
// ==========================

func TestRedisStore_Layout(t *testing.T) {
	store, mr := newRedisStore(t)
	d := twoSlideDeck()
	require.NoError(t, store.Create(context.Background(), d))

	assert.True(t, mr.Exists("slides:presentation:"+d.ID))
	members, err := mr.Members("slides:presentations")
	require.NoError(t, err)
	assert.Equal(t, []string{d.ID}, members)
}

func TestRedisStore_CorruptRecord(t *testing.T) {
	store, mr := newRedisStore(t)
	require.NoError(t, mr.Set("slides:presentation:bad", "{not json"))

	_, err := store.Get(context.Background(), "bad")
	requireCode(t, err, apperrors.ErrCodeInternal)
}

func TestRedisStore_Unavailable(t *testing.T) {
	client, mock := redismock.NewClientMock()
	store := NewRedisStore(database.WrapRedis(client, "slides"))

	mock.ExpectGet("slides:presentation:abc").SetErr(errors.New("connection refused"))
	_, err := store.Get(context.Background(), "abc")
	requireCode(t, err, apperrors.ErrCodeStoreUnavailable)

	mock.ExpectSCard("slides:presentations").SetErr(errors.New("connection refused"))
	_, err = store.Count(context.Background())
	requireCode(t, err, apperrors.ErrCodeStoreUnavailable)

	assert.NoError(t, mock.ExpectationsWereMet())
}
