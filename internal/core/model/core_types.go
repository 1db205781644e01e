package model

import (
	"errors"
	"fmt"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// All core models live here together for simplicity.

const (
	// DefaultMaxResults is the page size used when a query does not set one.
	// The catalog rejects anything above it.
	DefaultMaxResults = 40

	// PlaceholderCover is returned by CoverURL when a book carries no image.
	PlaceholderCover = "/placeholder-book.png"
)

var (
	ErrInvalidQuery   = errors.New("invalid_query")
	ErrRateLimited    = errors.New("rate_limited")
	ErrNotFound       = errors.New("not_found")
	ErrNetwork        = errors.New("network")
	ErrUpstream       = errors.New("upstream")
	ErrMalformedState = errors.New("malformed_state")
	ErrSlotEmpty      = errors.New("slot_empty")
	ErrInvalidBook    = errors.New("invalid_book")
	ErrBadResponse    = errors.New("bad_response")
)

// UpstreamError is a non-2xx catalog answer other than 429.
type UpstreamError struct {
	Status int
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("upstream: status %d", e.Status)
}

func (e *UpstreamError) Is(target error) bool { return target == ErrUpstream }

type ImageSize string

const (
	ImageSmallThumbnail ImageSize = "smallThumbnail"
	ImageThumbnail      ImageSize = "thumbnail"
	ImageSmall          ImageSize = "small"
	ImageMedium         ImageSize = "medium"
	ImageLarge          ImageSize = "large"
	ImageExtraLarge     ImageSize = "extraLarge"
)

// ImageSizes lists every size label the catalog may send, smallest first.
var ImageSizes = []ImageSize{
	ImageSmallThumbnail, ImageThumbnail, ImageSmall, ImageMedium, ImageLarge, ImageExtraLarge,
}

// coverPreference is the order in which detail views pick a cover.
var coverPreference = []ImageSize{
	ImageExtraLarge, ImageLarge, ImageMedium, ImageThumbnail, ImageSmallThumbnail,
}

type Book struct {
	ID            string               `json:"id"`
	Title         string               `json:"title"`
	Authors       []string             `json:"authors,omitempty"`
	Description   string               `json:"description,omitempty"`
	PublishedDate string               `json:"publishedDate,omitempty"`
	Publisher     string               `json:"publisher,omitempty"`
	Categories    []string             `json:"categories,omitempty"`
	ImageLinks    map[ImageSize]string `json:"imageLinks,omitempty"`
	PageCount     int                  `json:"pageCount,omitempty"`
	Language      string               `json:"language,omitempty"`
	AverageRating float64              `json:"averageRating,omitempty"`
	RatingsCount  int                  `json:"ratingsCount,omitempty"`
	PreviewLink   string               `json:"previewLink,omitempty"`
	InfoLink      string               `json:"infoLink,omitempty"`
}

// CoverURL returns the largest available image, upgraded to https.
func (b Book) CoverURL() string {
	for _, size := range coverPreference {
		if u := b.ImageLinks[size]; u != "" {
			if strings.HasPrefix(strings.ToLower(u), "http://") {
				return "https://" + u[len("http://"):]
			}
			return u
		}
	}
	return PlaceholderCover
}

// Clone returns a deep copy so callers never share slices or maps with a cache.
func (b Book) Clone() Book {
	b.Authors = append([]string(nil), b.Authors...)
	b.Categories = append([]string(nil), b.Categories...)
	if b.ImageLinks != nil {
		links := make(map[ImageSize]string, len(b.ImageLinks))
		for k, v := range b.ImageLinks {
			links[k] = v
		}
		b.ImageLinks = links
	}
	return b
}

type SearchParams struct {
	Title      string `json:"title,omitempty"`
	Author     string `json:"author,omitempty"`
	Keyword    string `json:"keyword,omitempty"`
	StartIndex int    `json:"startIndex"`
	MaxResults int    `json:"maxResults"`
}

// Normalize trims the text fields and applies paging defaults.
func (p SearchParams) Normalize() SearchParams {
	p.Title = strings.TrimSpace(p.Title)
	p.Author = strings.TrimSpace(p.Author)
	p.Keyword = strings.TrimSpace(p.Keyword)
	if p.StartIndex < 0 {
		p.StartIndex = 0
	}
	if p.MaxResults <= 0 || p.MaxResults > DefaultMaxResults {
		p.MaxResults = DefaultMaxResults
	}
	return p
}

// HasTerms reports whether at least one text field is set.
func (p SearchParams) HasTerms() bool {
	n := p.Normalize()
	return n.Title != "" || n.Author != "" || n.Keyword != ""
}

type SearchResponse struct {
	Books      []Book `json:"books"`
	TotalItems int    `json:"totalItems"`
}

// Clone deep-copies the result set.
func (r SearchResponse) Clone() SearchResponse {
	books := make([]Book, len(r.Books))
	for i, b := range r.Books {
		books[i] = b.Clone()
	}
	return SearchResponse{Books: books, TotalItems: r.TotalItems}
}

// SearchState is the snapshot persisted to session storage.
type SearchState struct {
	Params      SearchParams `json:"params"`
	Books       []Book       `json:"books"`
	TotalItems  int          `json:"totalItems"`
	HasSearched bool         `json:"hasSearched"`
}

type SearchStatus string

const (
	SearchIdle       SearchStatus = "idle"
	SearchDebouncing SearchStatus = "debouncing"
	SearchFetching   SearchStatus = "fetching"
	SearchSucceeded  SearchStatus = "succeeded"
	SearchFailed     SearchStatus = "failed"
)

// SearchView is what the home view renders: the snapshot plus lifecycle.
type SearchView struct {
	SearchState
	Status SearchStatus `json:"status"`
	Error  string       `json:"error,omitempty"`
}

type SubmitOutcome string

const (
	SubmitScheduled  SubmitOutcome = "scheduled"
	SubmitSuppressed SubmitOutcome = "suppressed"
)

type BookDetail struct {
	Book            Book   `json:"book"`
	CoverURL        string `json:"coverUrl"`
	DescriptionHTML string `json:"descriptionHtml,omitempty"`
	Favorite        bool   `json:"favorite"`
}

// Describe turns any error of the taxonomy into the one line shown to the user.
func Describe(err error) string {
	var upstream *UpstreamError
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrInvalidQuery):
		return "At least one search parameter is required"
	case errors.Is(err, ErrRateLimited):
		return "Rate limit exceeded. Please wait 1-2 minutes before searching again. Consider adding a Google Books API key to increase limits."
	case errors.As(err, &upstream):
		return fmt.Sprintf("API error: %d", upstream.Status)
	case errors.Is(err, ErrNetwork):
		return "Could not reach the book catalog. Please check your connection and try again."
	case errors.Is(err, ErrBadResponse):
		return "The book catalog sent an unreadable response. Please try again."
	case errors.Is(err, ErrNotFound):
		return "Book not found"
	case errors.Is(err, ErrInvalidBook):
		return "Book ID is missing"
	default:
		return "An error occurred while searching books"
	}
}

var descriptionPolicy = bluemonday.UGCPolicy()

// SanitizeHTML keeps the formatting tags of a catalog description and drops
// scripts, event handlers and anything else unsafe to render.
func SanitizeHTML(s string) string {
	if s == "" {
		return ""
	}
	return descriptionPolicy.Sanitize(s)
}
