//go:build unit

package core

import (
	"book-explorer/internal/adapter"
	"book-explorer/internal/core/model"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService(t *testing.T, catalog Catalog) *Service {
	t.Helper()
	ctx := context.Background()
	o := NewSearchOrchestrator(catalog, adapter.NewMemorySlot(), nil)
	t.Cleanup(o.Close)
	return NewService(catalog, o, NewFavoritesStore(ctx, adapter.NewMemorySlot(), nil))
}

func TestDescribeBook_SanitizesAndPicksCover(t *testing.T) {
	b := model.Book{
		ID:          "x1",
		Title:       "Dune",
		Description: `<p>Desert <b>planet</b></p><script>alert(1)</script><a href="javascript:evil()">x</a>`,
		ImageLinks: map[model.ImageSize]string{
			model.ImageThumbnail: "http://books.google.com/thumb",
			model.ImageLarge:     "http://books.google.com/large",
		},
	}

	d := DescribeBook(b, true)
	assert.True(t, d.Favorite)
	assert.Equal(t, "https://books.google.com/large", d.CoverURL)
	assert.Contains(t, d.DescriptionHTML, "<b>planet</b>")
	assert.NotContains(t, d.DescriptionHTML, "<script")
	assert.NotContains(t, d.DescriptionHTML, "javascript:")
	assert.Equal(t, b.Description, d.Book.Description, "raw description kept on the book")
}

func TestDescribeBook_Placeholder(t *testing.T) {
	d := DescribeBook(model.Book{ID: "x1"}, false)
	assert.Equal(t, model.PlaceholderCover, d.CoverURL)
	assert.Empty(t, d.DescriptionHTML)
}

func TestService_GetBook(t *testing.T) {
	cat := &fakeCatalog{books: map[string]model.Book{"x1": {ID: "x1", Title: "Dune"}}}
	svc := newTestService(t, cat)
	ctx := context.Background()

	d, err := svc.GetBook(ctx, "x1")
	require.NoError(t, err)
	assert.Equal(t, "Dune", d.Book.Title)
	assert.False(t, d.Favorite)

	_, err = svc.Favorites.Add(ctx, d.Book)
	require.NoError(t, err)
	d, err = svc.GetBook(ctx, "x1")
	require.NoError(t, err)
	assert.True(t, d.Favorite)

	_, err = svc.GetBook(ctx, "missing")
	assert.ErrorIs(t, err, model.ErrNotFound)
	_, err = svc.GetBook(ctx, " ")
	assert.ErrorIs(t, err, model.ErrNotFound)
}

func TestService_SearchCatalog_RequiresTerms(t *testing.T) {
	cat := &fakeCatalog{}
	svc := newTestService(t, cat)

	_, err := svc.SearchCatalog(context.Background(), model.SearchParams{Keyword: "\t"})
	assert.ErrorIs(t, err, model.ErrInvalidQuery)
	assert.Empty(t, cat.Calls())

	resp, err := svc.SearchCatalog(context.Background(), model.SearchParams{Keyword: "spice"})
	require.NoError(t, err)
	assert.Equal(t, 1, resp.TotalItems)
}

func TestService_AddFavoriteByID(t *testing.T) {
	cat := &fakeCatalog{books: map[string]model.Book{"x1": {ID: "x1", Title: "Dune"}}}
	svc := newTestService(t, cat)
	ctx := context.Background()

	b, added, err := svc.AddFavorite(ctx, "x1")
	require.NoError(t, err)
	assert.True(t, added)
	assert.Equal(t, "Dune", b.Title)

	b, added, err = svc.AddFavorite(ctx, "x1")
	require.NoError(t, err)
	assert.False(t, added)
	assert.Equal(t, "Dune", b.Title)
	assert.Len(t, svc.ListFavorites(), 1)

	_, _, err = svc.AddFavorite(ctx, "missing")
	assert.ErrorIs(t, err, model.ErrNotFound)
	_, _, err = svc.AddFavorite(ctx, "")
	assert.ErrorIs(t, err, model.ErrInvalidBook)
}

func TestService_ToggleFavorite(t *testing.T) {
	cat := &fakeCatalog{books: map[string]model.Book{"x1": {ID: "x1", Title: "Dune"}}}
	svc := newTestService(t, cat)
	ctx := context.Background()

	on, err := svc.ToggleFavorite(ctx, "x1")
	require.NoError(t, err)
	assert.True(t, on)
	assert.True(t, svc.IsFavorite("x1"))

	on, err = svc.ToggleFavorite(ctx, "x1")
	require.NoError(t, err)
	assert.False(t, on)
	assert.False(t, svc.IsFavorite("x1"))

	on, err = svc.ToggleFavorite(ctx, "missing")
	assert.ErrorIs(t, err, model.ErrNotFound)
	assert.False(t, on)
}

func TestService_FavoriteIDsAreTrimmed(t *testing.T) {
	cat := &fakeCatalog{books: map[string]model.Book{"x1": {ID: "x1", Title: "Dune"}}}
	svc := newTestService(t, cat)
	ctx := context.Background()

	on, err := svc.ToggleFavorite(ctx, " x1 ")
	require.NoError(t, err)
	assert.True(t, on)
	assert.True(t, svc.IsFavorite("x1"))
	assert.True(t, svc.IsFavorite(" x1\t"))
	require.Len(t, svc.ListFavorites(), 1)
	assert.Equal(t, "x1", svc.ListFavorites()[0].ID)

	on, err = svc.ToggleFavorite(ctx, "x1 ")
	require.NoError(t, err)
	assert.False(t, on)
	assert.False(t, svc.IsFavorite("x1"))
	assert.Empty(t, svc.ListFavorites())

	_, err = svc.ToggleFavorite(ctx, "   ")
	assert.ErrorIs(t, err, model.ErrInvalidBook)
}

func TestService_WithGoogleBooksClient(t *testing.T) {
	var calls atomic.Int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		if strings.HasSuffix(r.URL.Path, "/x1") {
			_ = json.NewEncoder(w).Encode(map[string]any{
				"id": "x1",
				"volumeInfo": map[string]any{
					"title":       "Dune",
					"authors":     []string{"Frank Herbert"},
					"description": "<i>Spice</i><script>x()</script>",
					"imageLinks":  map[string]any{"thumbnail": "http://img/t"},
				},
			})
			return
		}
		http.NotFound(w, r)
	}))
	defer ts.Close()

	client := adapter.NewGoogleBooksClient(ts.URL, 1, http.DefaultClient)
	svc := newTestService(t, client)
	ctx := context.Background()

	d, err := svc.GetBook(ctx, "x1")
	require.NoError(t, err)
	assert.Equal(t, []string{"Frank Herbert"}, d.Book.Authors)
	assert.Equal(t, "https://img/t", d.CoverURL)
	assert.Equal(t, "<i>Spice</i>", d.DescriptionHTML)

	_, added, err := svc.AddFavorite(ctx, "x1")
	require.NoError(t, err)
	assert.True(t, added)
	assert.Equal(t, int32(1), calls.Load(), "favorite lookup served from the book cache")

	_, err = svc.GetBook(ctx, "nope")
	assert.ErrorIs(t, err, model.ErrNotFound)
}
