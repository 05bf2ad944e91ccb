package deck

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"slide-generator/internal/common/database"
	apperrors "slide-generator/internal/common/errors"
	"slide-generator/internal/models"
)

const maxUpdateAttempts = 5

// RedisStore keeps each deck as JSON under "<prefix>:presentation:<id>" and
// tracks ids in the "<prefix>:presentations" set. Updates use optimistic
// WATCH/MULTI transactions and retry on conflict.
type RedisStore struct {
	client *database.RedisClient
}

func NewRedisStore(client *database.RedisClient) *RedisStore {
	return &RedisStore{client: client}
}

func (s *RedisStore) deckKey(id string) string {
	return s.client.Key("presentation", id)
}

func (s *RedisStore) indexKey() string {
	return s.client.Key("presentations")
}

func (s *RedisStore) Create(ctx context.Context, d *models.Deck) error {
	data, err := json.Marshal(d)
	if err != nil {
		return apperrors.NewInternalError(fmt.Errorf("encode deck: %w", err))
	}

	_, err = s.client.Client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, s.deckKey(d.ID), data, 0)
		pipe.SAdd(ctx, s.indexKey(), d.ID)
		return nil
	})
	if err != nil {
		return apperrors.NewStoreUnavailableError("create", err)
	}
	return nil
}

func (s *RedisStore) Get(ctx context.Context, id string) (*models.Deck, error) {
	raw, err := s.client.Client.Get(ctx, s.deckKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, apperrors.NewPresentationNotFoundError(id)
	}
	if err != nil {
		return nil, apperrors.NewStoreUnavailableError("get", err)
	}
	return decodeDeck(raw)
}

func (s *RedisStore) Update(ctx context.Context, id string, fn func(d *models.Deck) error) (*models.Deck, error) {
	key := s.deckKey(id)

	for attempt := 0; attempt < maxUpdateAttempts; attempt++ {
		var (
			updated *models.Deck
			fnErr   error
		)

		err := s.client.Client.Watch(ctx, func(tx *redis.Tx) error {
			raw, err := tx.Get(ctx, key).Bytes()
			if err != nil {
				return err
			}
			d, err := decodeDeck(raw)
			if err != nil {
				fnErr = err
				return err
			}
			if err := fn(d); err != nil {
				fnErr = err
				return err
			}
			data, err := json.Marshal(d)
			if err != nil {
				return err
			}
			_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
				pipe.Set(ctx, key, data, 0)
				return nil
			})
			if err == nil {
				updated = d
			}
			return err
		}, key)

		switch {
		case err == nil:
			return updated, nil
		case fnErr != nil:
			return nil, fnErr
		case errors.Is(err, redis.Nil):
			return nil, apperrors.NewPresentationNotFoundError(id)
		case errors.Is(err, redis.TxFailedErr):
			continue
		default:
			return nil, apperrors.NewStoreUnavailableError("update", err)
		}
	}

	return nil, apperrors.NewStoreUnavailableError("update", fmt.Errorf("deck %s: too many concurrent updates", id))
}

func (s *RedisStore) Count(ctx context.Context) (int, error) {
	n, err := s.client.Client.SCard(ctx, s.indexKey()).Result()
	if err != nil {
		return 0, apperrors.NewStoreUnavailableError("count", err)
	}
	return int(n), nil
}

func decodeDeck(raw []byte) (*models.Deck, error) {
	var d models.Deck
	if err := json.Unmarshal(raw, &d); err != nil {
		return nil, apperrors.NewInternalError(fmt.Errorf("decode deck: %w", err))
	}
	return &d, nil
}
