package adapter

import (
	"book-explorer/api"
	"book-explorer/internal/core/model"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
)

// ExplorerService is what the HTTP surface needs from the application facade.
type ExplorerService interface {
	SubmitSearch(params model.SearchParams) (model.SubmitOutcome, error)
	SearchState() model.SearchView
	SearchCatalog(ctx context.Context, params model.SearchParams) (model.SearchResponse, error)
	GetBook(ctx context.Context, id string) (model.BookDetail, error)
	ListFavorites() []model.Book
	IsFavorite(id string) bool
	AddFavorite(ctx context.Context, id string) (model.Book, bool, error)
	RemoveFavorite(ctx context.Context, id string) (bool, error)
}

var _ api.ServerInterface = (*Handler)(nil)

var validate = validator.New(validator.WithRequiredStructEnabled())

type Handler struct {
	Svc ExplorerService
	log *slog.Logger
}

func NewHandler(svc ExplorerService, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{Svc: svc, log: logger}
}

type httpError struct {
	Error struct {
		Code    string                 `json:"code"`
		Message string                 `json:"message"`
		Details map[string]interface{} `json:"details,omitempty"`
	} `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, msg string, details map[string]interface{}) {
	e := httpError{}
	e.Error.Code = code
	e.Error.Message = msg
	e.Error.Details = details
	writeJSON(w, status, e)
}

// writeServiceError maps the error taxonomy onto status codes. The message is
// always the user-facing description.
func (h *Handler) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	msg := model.Describe(err)
	var upstream *model.UpstreamError
	switch {
	case errors.Is(err, model.ErrInvalidQuery):
		writeError(w, http.StatusBadRequest, "INVALID_QUERY", msg, nil)
	case errors.Is(err, model.ErrInvalidBook):
		writeError(w, http.StatusBadRequest, "INVALID_BOOK", msg, nil)
	case errors.Is(err, model.ErrNotFound):
		writeError(w, http.StatusNotFound, "NOT_FOUND", msg, nil)
	case errors.Is(err, model.ErrRateLimited):
		writeError(w, http.StatusTooManyRequests, "RATE_LIMITED", msg, nil)
	case errors.As(err, &upstream):
		writeError(w, http.StatusBadGateway, "UPSTREAM_ERROR", msg, map[string]interface{}{"status": upstream.Status})
	case errors.Is(err, model.ErrNetwork):
		writeError(w, http.StatusBadGateway, "NETWORK_ERROR", msg, nil)
	case errors.Is(err, model.ErrBadResponse):
		writeError(w, http.StatusBadGateway, "BAD_RESPONSE", msg, nil)
	default:
		h.log.Error("request failed", "method", r.Method, "path", r.URL.Path, "request_id", RequestIDFrom(r.Context()), "err", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL", "internal error", nil)
	}
}

// ParamError answers parameters the router could not bind.
func (h *Handler) ParamError(w http.ResponseWriter, _ *http.Request, err error) {
	var pe *api.InvalidParamFormatError
	if errors.As(err, &pe) {
		writeError(w, http.StatusBadRequest, "INVALID_PARAMETER", pe.Error(), map[string]interface{}{"param": pe.ParamName})
		return
	}
	writeError(w, http.StatusBadRequest, "INVALID_PARAMETER", err.Error(), nil)
}

type homeView struct {
	Search    api.SearchView `json:"search"`
	Favorites []api.Book     `json:"favorites"`
}

// Home renders the landing view: the current search and the saved books.
func (h *Handler) Home(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, homeView{
		Search:    toAPISearchView(h.Svc.SearchState()),
		Favorites: toAPIBooks(h.Svc.ListFavorites()),
	})
}

// RedirectHome sends every unknown path back to the landing view.
func (h *Handler) RedirectHome(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/", http.StatusFound)
}

func (h *Handler) SubmitSearch(w http.ResponseWriter, r *http.Request) {
	var body api.SubmitSearchJSONRequestBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_BODY", "request body must be a JSON object", nil)
		return
	}
	if err := validate.Struct(body); err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION", "invalid search parameters", validationDetails(err))
		return
	}

	outcome, err := h.Svc.SubmitSearch(model.SearchParams{
		Title:   deref(body.Title),
		Author:  deref(body.Author),
		Keyword: deref(body.Keyword),
	})
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusAccepted, api.SubmitSearchResponse{Outcome: api.SubmitSearchResponseOutcome(outcome)})
}

func (h *Handler) GetSearchState(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, toAPISearchView(h.Svc.SearchState()))
}

func (h *Handler) SearchCatalog(w http.ResponseWriter, r *http.Request, params api.SearchCatalogParams) {
	p := model.SearchParams{
		Title:   deref(params.Title),
		Author:  deref(params.Author),
		Keyword: deref(params.Keyword),
	}
	if params.StartIndex != nil {
		p.StartIndex = *params.StartIndex
	}
	if params.MaxResults != nil {
		p.MaxResults = *params.MaxResults
	}

	resp, err := h.Svc.SearchCatalog(r.Context(), p)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, api.SearchResponse{Books: toAPIBooks(resp.Books), TotalItems: resp.TotalItems})
}

func (h *Handler) GetBookById(w http.ResponseWriter, r *http.Request, id string) {
	d, err := h.Svc.GetBook(r.Context(), id)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, api.BookDetail{
		Book:            toAPIBook(d.Book),
		CoverUrl:        d.CoverURL,
		DescriptionHtml: d.DescriptionHTML,
		Favorite:        d.Favorite,
	})
}

func (h *Handler) ListFavorites(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, toAPIBooks(h.Svc.ListFavorites()))
}

func (h *Handler) GetFavoriteStatus(w http.ResponseWriter, r *http.Request, id string) {
	id = strings.TrimSpace(id)
	writeJSON(w, http.StatusOK, api.FavoriteStatus{Id: id, Favorite: h.Svc.IsFavorite(id)})
}

func (h *Handler) AddFavorite(w http.ResponseWriter, r *http.Request, id string) {
	b, added, err := h.Svc.AddFavorite(r.Context(), id)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	status := http.StatusOK
	if added {
		status = http.StatusCreated
		w.Header().Set("Location", fmt.Sprintf("/api/v1/favorites/%s", b.ID))
	}
	writeJSON(w, status, toAPIBook(b))
}

func (h *Handler) RemoveFavorite(w http.ResponseWriter, r *http.Request, id string) {
	if _, err := h.Svc.RemoveFavorite(r.Context(), id); err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func validationDetails(err error) map[string]interface{} {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return nil
	}
	details := make(map[string]interface{}, len(verrs))
	for _, fe := range verrs {
		field := strings.ToLower(fe.Field()[:1]) + fe.Field()[1:]
		switch fe.Tag() {
		case "max":
			details[field] = fmt.Sprintf("must be at most %s characters", fe.Param())
		default:
			details[field] = "is invalid"
		}
	}
	return details
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func toAPIBook(b model.Book) api.Book {
	links := make(map[string]string, len(b.ImageLinks))
	for size, u := range b.ImageLinks {
		links[string(size)] = u
	}
	return api.Book{
		Id:            b.ID,
		Title:         b.Title,
		Authors:       nonNil(b.Authors),
		Description:   model.SanitizeHTML(b.Description),
		PublishedDate: b.PublishedDate,
		Publisher:     b.Publisher,
		Categories:    nonNil(b.Categories),
		ImageLinks:    links,
		PageCount:     b.PageCount,
		Language:      b.Language,
		AverageRating: b.AverageRating,
		RatingsCount:  b.RatingsCount,
		PreviewLink:   b.PreviewLink,
		InfoLink:      b.InfoLink,
	}
}

func toAPIBooks(books []model.Book) []api.Book {
	out := make([]api.Book, 0, len(books))
	for _, b := range books {
		out = append(out, toAPIBook(b))
	}
	return out
}

func toAPISearchView(v model.SearchView) api.SearchView {
	out := api.SearchView{
		Params: api.SearchParams{
			Title:      v.Params.Title,
			Author:     v.Params.Author,
			Keyword:    v.Params.Keyword,
			StartIndex: v.Params.StartIndex,
			MaxResults: v.Params.MaxResults,
		},
		Books:       toAPIBooks(v.Books),
		TotalItems:  v.TotalItems,
		HasSearched: v.HasSearched,
		Status:      api.SearchViewStatus(v.Status),
	}
	if v.Error != "" {
		msg := v.Error
		out.Error = &msg
	}
	return out
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
