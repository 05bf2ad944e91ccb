package deck

import (
	"context"
	"sync"

	apperrors "slide-generator/internal/common/errors"
	"slide-generator/internal/models"
)

// Store keeps decks by id. Get returns a copy the caller may modify freely;
// Update runs fn with exclusive access to the stored deck and persists it only
// when fn returns nil.
type Store interface {
	Create(ctx context.Context, d *models.Deck) error
	Get(ctx context.Context, id string) (*models.Deck, error)
	Update(ctx context.Context, id string, fn func(d *models.Deck) error) (*models.Deck, error)
	Count(ctx context.Context) (int, error)
}

// MemoryStore is a process-local Store.
type MemoryStore struct {
	mu    sync.RWMutex
	decks map[string]*models.Deck
	locks KeyedMutex
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{decks: make(map[string]*models.Deck)}
}

func (s *MemoryStore) Create(_ context.Context, d *models.Deck) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.decks[d.ID] = d.Clone()
	return nil
}

func (s *MemoryStore) Get(_ context.Context, id string) (*models.Deck, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	d, ok := s.decks[id]
	if !ok {
		return nil, apperrors.NewPresentationNotFoundError(id)
	}
	return d.Clone(), nil
}

func (s *MemoryStore) Update(ctx context.Context, id string, fn func(d *models.Deck) error) (*models.Deck, error) {
	unlock := s.locks.Lock(id)
	defer unlock()

	current, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := fn(current); err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.decks[id] = current.Clone()
	s.mu.Unlock()
	return current, nil
}

func (s *MemoryStore) Count(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.decks), nil
}

// KeyedMutex serializes work per key. Entries are dropped once unused. The
// zero value is ready to use.
type KeyedMutex struct {
	mu    sync.Mutex
	locks map[string]*refMutex
}

type refMutex struct {
	sync.Mutex
	refs int
}

func (k *KeyedMutex) Lock(key string) (unlock func()) {
	k.mu.Lock()
	if k.locks == nil {
		k.locks = make(map[string]*refMutex)
	}
	m, ok := k.locks[key]
	if !ok {
		m = &refMutex{}
		k.locks[key] = m
	}
	m.refs++
	k.mu.Unlock()

	m.Lock()
	return func() {
		m.Unlock()
		k.mu.Lock()
		m.refs--
		if m.refs == 0 {
			delete(k.locks, key)
		}
		k.mu.Unlock()
	}
}
