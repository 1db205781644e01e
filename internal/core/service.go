package core

import (
	"book-explorer/internal/core/model"
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
)

// Service is the single facade the app root hands to its surfaces.
type Service struct {
	Catalog   Catalog
	Search    *SearchOrchestrator
	Favorites *FavoritesStore
}

func NewService(catalog Catalog, search *SearchOrchestrator, favorites *FavoritesStore) *Service {
	return &Service{Catalog: catalog, Search: search, Favorites: favorites}
}

// SubmitSearch feeds the debounced orchestrator.
func (s *Service) SubmitSearch(params model.SearchParams) (model.SubmitOutcome, error) {
	return s.Search.Submit(params)
}

func (s *Service) SearchState() model.SearchView {
	return s.Search.View()
}

// SearchCatalog runs a single, non-debounced search.
func (s *Service) SearchCatalog(ctx context.Context, params model.SearchParams) (model.SearchResponse, error) {
	if !params.HasTerms() {
		return model.SearchResponse{}, model.ErrInvalidQuery
	}
	return s.Catalog.Search(ctx, params)
}

// GetBook builds the detail view for id.
func (s *Service) GetBook(ctx context.Context, id string) (model.BookDetail, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return model.BookDetail{}, model.ErrNotFound
	}
	b, err := s.Catalog.GetByID(ctx, id)
	if err != nil {
		return model.BookDetail{}, err
	}
	return DescribeBook(b, s.Favorites.IsFavorite(b.ID)), nil
}

func (s *Service) ListFavorites() []model.Book {
	return s.Favorites.List()
}

func (s *Service) IsFavorite(id string) bool {
	return s.Favorites.IsFavorite(strings.TrimSpace(id))
}

// AddFavorite resolves id through the catalog and saves the book. It reports
// whether the set changed; an existing favorite is returned without a lookup.
func (s *Service) AddFavorite(ctx context.Context, id string) (model.Book, bool, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return model.Book{}, false, model.ErrInvalidBook
	}
	for _, b := range s.Favorites.List() {
		if b.ID == id {
			return b, false, nil
		}
	}
	b, err := s.Catalog.GetByID(ctx, id)
	if err != nil {
		return model.Book{}, false, fmt.Errorf("lookup %s: %w", id, err)
	}
	added, err := s.Favorites.Add(ctx, b)
	return b, added, err
}

func (s *Service) RemoveFavorite(ctx context.Context, id string) (bool, error) {
	return s.Favorites.Remove(ctx, strings.TrimSpace(id))
}

// ToggleFavorite flips the favorite state of id and returns the new state.
func (s *Service) ToggleFavorite(ctx context.Context, id string) (bool, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return false, model.ErrInvalidBook
	}
	if s.Favorites.IsFavorite(id) {
		_, err := s.Favorites.Remove(ctx, id)
		return false, err
	}
	_, _, err := s.AddFavorite(ctx, id)
	// a failed write still leaves the book favorited in memory
	if err != nil && !s.Favorites.IsFavorite(id) {
		return false, err
	}
	return true, err
}

// DescribeBook picks the cover and sanitizes the description for display.
func DescribeBook(b model.Book, favorite bool) model.BookDetail {
	d := model.BookDetail{
		Book:     b.Clone(),
		CoverURL: b.CoverURL(),
		Favorite: favorite,
	}
	d.DescriptionHTML = model.SanitizeHTML(b.Description)
	return d
}

func orDiscard(l *slog.Logger) *slog.Logger {
	if l == nil {
		return slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return l
}
