package core

import (
	"book-explorer/internal/core/model"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
)

// Slot is a single durable or session-scoped value.
type Slot interface {
	Load(ctx context.Context) ([]byte, error)
	Store(ctx context.Context, data []byte) error
	Clear(ctx context.Context) error
}

// FavoritesStore owns the user's saved books. The whole set is rewritten to
// the slot after every change.
type FavoritesStore struct {
	mu    sync.RWMutex
	slot  Slot
	log   *slog.Logger
	books []model.Book
}

// NewFavoritesStore loads the persisted set. A missing or unreadable slot
// starts an empty set; the failure is only logged.
func NewFavoritesStore(ctx context.Context, slot Slot, logger *slog.Logger) *FavoritesStore {
	s := &FavoritesStore{slot: slot, log: orDiscard(logger)}
	s.books = s.load(ctx)
	return s
}

func (s *FavoritesStore) load(ctx context.Context) []model.Book {
	data, err := s.slot.Load(ctx)
	if errors.Is(err, model.ErrSlotEmpty) {
		return []model.Book{}
	}
	if err != nil {
		s.log.Error("favorites: load failed, starting empty", "err", err)
		return []model.Book{}
	}

	var stored []model.Book
	if err := json.Unmarshal(data, &stored); err != nil {
		s.log.Warn("favorites: discarding unreadable data", "err", fmt.Errorf("%w: %v", model.ErrMalformedState, err))
		return []model.Book{}
	}
	books := make([]model.Book, 0, len(stored))
	seen := make(map[string]struct{}, len(stored))
	for _, b := range stored {
		if _, dup := seen[b.ID]; dup || b.ID == "" {
			continue
		}
		seen[b.ID] = struct{}{}
		books = append(books, b)
	}
	return books
}

// Add appends b unless a favorite with the same id exists. It reports whether
// the set changed.
func (s *FavoritesStore) Add(ctx context.Context, b model.Book) (bool, error) {
	if b.ID == "" {
		return false, model.ErrInvalidBook
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.indexOf(b.ID) >= 0 {
		return false, nil
	}
	s.books = append(s.books, b.Clone())
	return true, s.persist(ctx)
}

// Remove drops the favorite with id, if any. It reports whether the set changed.
func (s *FavoritesStore) Remove(ctx context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexOf(id)
	if i < 0 {
		return false, nil
	}
	s.books = append(s.books[:i:i], s.books[i+1:]...)
	return true, s.persist(ctx)
}

func (s *FavoritesStore) IsFavorite(id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.indexOf(id) >= 0
}

// List returns the favorites in insertion order.
func (s *FavoritesStore) List() []model.Book {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.Book, len(s.books))
	for i, b := range s.books {
		out[i] = b.Clone()
	}
	return out
}

func (s *FavoritesStore) indexOf(id string) int {
	for i, b := range s.books {
		if b.ID == id {
			return i
		}
	}
	return -1
}

// persist must be called with mu held.
func (s *FavoritesStore) persist(ctx context.Context) error {
	data, err := json.Marshal(s.books)
	if err != nil {
		return fmt.Errorf("favorites: encode: %w", err)
	}
	if err := s.slot.Store(ctx, data); err != nil {
		s.log.Error("favorites: write failed", "count", len(s.books), "err", err)
		return fmt.Errorf("favorites: %w", err)
	}
	return nil
}
