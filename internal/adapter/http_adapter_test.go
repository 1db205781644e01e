//go:build unit

package adapter

import (
	"book-explorer/api"
	"book-explorer/internal/core"
	"book-explorer/internal/core/model"
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// test wiring: router + real core service over a stubbed catalog
func newServer(t *testing.T, catalog http.HandlerFunc) http.Handler {
	t.Helper()
	ctx := context.Background()
	stub := &catalogStub{}
	ts := stub.server(t, catalog)

	reg := prometheus.NewRegistry()
	client := newTestClient(ts.URL, WithMetrics(NewCatalogMetrics(reg)))
	search := core.NewSearchOrchestrator(client, NewMemorySlot(), nil, core.WithDebounce(time.Millisecond))
	t.Cleanup(search.Close)
	svc := core.NewService(client, search, core.NewFavoritesStore(ctx, NewMemorySlot(), nil))

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewRouter(NewHandler(svc, logger), reg)
}

func catalogHandler(w http.ResponseWriter, r *http.Request) {
	switch {
	case r.URL.Path == "/" || r.URL.Path == "":
		duneHandler(w, r)
	case strings.HasSuffix(r.URL.Path, "/x1"):
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id": "x1",
			"volumeInfo": map[string]any{
				"title":       "Dune",
				"description": "<b>Spice</b><script>x()</script>",
				"imageLinks":  map[string]any{"thumbnail": "http://img/t"},
			},
		})
	default:
		http.NotFound(w, r)
	}
}

func do(t *testing.T, h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var rdr io.Reader
	if body != "" {
		rdr = bytes.NewReader([]byte(body))
	}
	r := httptest.NewRequest(method, target, rdr)
	if body != "" {
		r.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)
	return w
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) httpError {
	t.Helper()
	var e httpError
	require.NoError(t, json.NewDecoder(w.Body).Decode(&e))
	return e
}

func TestHome_And_Redirect(t *testing.T) {
	h := newServer(t, catalogHandler)

	w := do(t, h, http.MethodGet, "/", "")
	require.Equal(t, http.StatusOK, w.Code)
	var home homeView
	require.NoError(t, json.NewDecoder(w.Body).Decode(&home))
	assert.Equal(t, api.SearchViewStatusIdle, home.Search.Status)
	assert.Empty(t, home.Favorites)
	assert.NotEmpty(t, w.Header().Get(requestIDHeader))

	w = do(t, h, http.MethodGet, "/no/such/page", "")
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/", w.Header().Get("Location"))
}

func TestRequestID_Propagated(t *testing.T) {
	h := newServer(t, catalogHandler)
	r := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	r.Header.Set(requestIDHeader, "abc-123")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "abc-123", w.Header().Get(requestIDHeader))
}

func TestSubmitSearch_202_ThenState(t *testing.T) {
	h := newServer(t, catalogHandler)

	w := do(t, h, http.MethodPost, "/api/v1/search", `{"title":"Dune"}`)
	require.Equal(t, http.StatusAccepted, w.Code)
	var out api.SubmitSearchResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&out))
	assert.Equal(t, api.SubmitSearchResponseOutcomeScheduled, out.Outcome)

	var view api.SearchView
	require.Eventually(t, func() bool {
		w := do(t, h, http.MethodGet, "/api/v1/search", "")
		if w.Code != http.StatusOK {
			return false
		}
		_ = json.NewDecoder(w.Body).Decode(&view)
		return view.Status == api.SearchViewStatusSucceeded
	}, 2*time.Second, 5*time.Millisecond)

	assert.True(t, view.HasSearched)
	assert.Equal(t, "Dune", view.Params.Title)
	require.Len(t, view.Books, 1)
	assert.Equal(t, "x1", view.Books[0].Id)
	assert.Nil(t, view.Error)
}

func TestSubmitSearch_400s(t *testing.T) {
	h := newServer(t, catalogHandler)

	w := do(t, h, http.MethodPost, "/api/v1/search", `{}`)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "INVALID_QUERY", decodeError(t, w).Error.Code)

	w = do(t, h, http.MethodPost, "/api/v1/search", `{"title":`)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "INVALID_BODY", decodeError(t, w).Error.Code)

	w = do(t, h, http.MethodPost, "/api/v1/search", `{"title":"`+strings.Repeat("a", 300)+`"}`)
	require.Equal(t, http.StatusBadRequest, w.Code)
	e := decodeError(t, w)
	assert.Equal(t, "VALIDATION", e.Error.Code)
	assert.Contains(t, e.Error.Details, "title")
}

func TestSearchCatalog(t *testing.T) {
	h := newServer(t, catalogHandler)

	w := do(t, h, http.MethodGet, "/api/v1/volumes?title=Dune&maxResults=10", "")
	require.Equal(t, http.StatusOK, w.Code)
	var out api.SearchResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&out))
	assert.Equal(t, 1, out.TotalItems)
	require.Len(t, out.Books, 1)
	assert.Equal(t, "Dune", out.Books[0].Title)

	w = do(t, h, http.MethodGet, "/api/v1/volumes", "")
	require.Equal(t, http.StatusBadRequest, w.Code)
	e := decodeError(t, w)
	assert.Equal(t, "INVALID_QUERY", e.Error.Code)
	assert.Equal(t, model.Describe(model.ErrInvalidQuery), e.Error.Message)

	w = do(t, h, http.MethodGet, "/api/v1/volumes?title=Dune&maxResults=lots", "")
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "INVALID_PARAMETER", decodeError(t, w).Error.Code)
}

func TestSearchCatalog_UpstreamErrors(t *testing.T) {
	h := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		if strings.Contains(r.URL.RawQuery, "busy") {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		if strings.Contains(r.URL.RawQuery, "garbled") {
			_, _ = w.Write([]byte(`{"items":[`))
			return
		}
		w.WriteHeader(http.StatusInternalServerError)
	})

	w := do(t, h, http.MethodGet, "/api/v1/volumes?keyword=busy", "")
	require.Equal(t, http.StatusTooManyRequests, w.Code)
	e := decodeError(t, w)
	assert.Equal(t, "RATE_LIMITED", e.Error.Code)
	assert.Contains(t, e.Error.Message, "Rate limit exceeded")

	w = do(t, h, http.MethodGet, "/api/v1/volumes?keyword=broken", "")
	require.Equal(t, http.StatusBadGateway, w.Code)
	e = decodeError(t, w)
	assert.Equal(t, "UPSTREAM_ERROR", e.Error.Code)
	assert.Equal(t, "API error: 500", e.Error.Message)
	assert.EqualValues(t, 500, e.Error.Details["status"])

	w = do(t, h, http.MethodGet, "/api/v1/volumes?keyword=garbled", "")
	require.Equal(t, http.StatusBadGateway, w.Code)
	e = decodeError(t, w)
	assert.Equal(t, "BAD_RESPONSE", e.Error.Code)
	assert.Contains(t, e.Error.Message, "unreadable response")
}

func TestGetBook_200_and_404(t *testing.T) {
	h := newServer(t, catalogHandler)

	w := do(t, h, http.MethodGet, "/api/v1/books/x1", "")
	require.Equal(t, http.StatusOK, w.Code)
	var d api.BookDetail
	require.NoError(t, json.NewDecoder(w.Body).Decode(&d))
	assert.Equal(t, "x1", d.Book.Id)
	assert.Equal(t, "https://img/t", d.CoverUrl)
	assert.Equal(t, "<b>Spice</b>", d.DescriptionHtml)
	assert.Equal(t, "<b>Spice</b>", d.Book.Description)
	assert.False(t, d.Favorite)

	w = do(t, h, http.MethodGet, "/api/v1/books/does-not-exist", "")
	require.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "NOT_FOUND", decodeError(t, w).Error.Code)
}

func TestFavorites_Flow(t *testing.T) {
	h := newServer(t, catalogHandler)

	w := do(t, h, http.MethodPut, "/api/v1/favorites/x1", "")
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "/api/v1/favorites/x1", w.Header().Get("Location"))

	w = do(t, h, http.MethodPut, "/api/v1/favorites/x1", "")
	require.Equal(t, http.StatusOK, w.Code)

	w = do(t, h, http.MethodGet, "/api/v1/favorites", "")
	require.Equal(t, http.StatusOK, w.Code)
	var list []api.Book
	require.NoError(t, json.NewDecoder(w.Body).Decode(&list))
	require.Len(t, list, 1)
	assert.Equal(t, "Dune", list[0].Title)
	assert.Equal(t, "<b>Spice</b>", list[0].Description)
	assert.NotContains(t, w.Body.String(), "script")

	w = do(t, h, http.MethodGet, "/api/v1/favorites/x1", "")
	var st api.FavoriteStatus
	require.NoError(t, json.NewDecoder(w.Body).Decode(&st))
	assert.True(t, st.Favorite)

	w = do(t, h, http.MethodGet, "/api/v1/favorites/%20x1%20", "")
	require.NoError(t, json.NewDecoder(w.Body).Decode(&st))
	assert.Equal(t, "x1", st.Id)
	assert.True(t, st.Favorite)

	w = do(t, h, http.MethodGet, "/api/v1/books/x1", "")
	var d api.BookDetail
	require.NoError(t, json.NewDecoder(w.Body).Decode(&d))
	assert.True(t, d.Favorite)

	w = do(t, h, http.MethodDelete, "/api/v1/favorites/x1", "")
	assert.Equal(t, http.StatusNoContent, w.Code)
	w = do(t, h, http.MethodDelete, "/api/v1/favorites/x1", "")
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = do(t, h, http.MethodGet, "/api/v1/favorites/x1", "")
	require.NoError(t, json.NewDecoder(w.Body).Decode(&st))
	assert.False(t, st.Favorite)

	w = do(t, h, http.MethodPut, "/api/v1/favorites/ghost", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	h := newServer(t, catalogHandler)
	_ = do(t, h, http.MethodGet, "/api/v1/volumes?title=Dune", "")

	w := do(t, h, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "bookexplorer_catalog_requests_total")
}
