package adapter

import (
	"book-explorer/internal/core/model"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"
	"golang.org/x/time/rate"
)

const (
	DefaultCatalogURL     = "https://www.googleapis.com/books/v1/volumes"
	DefaultRetry          = 1
	DefaultInitialBackoff = 2 * time.Second
	DefaultCacheTTL       = 5 * time.Minute
)

// GoogleBooksClient talks to the Google Books volumes API. Search results and
// single volumes are cached in memory for CacheTTL; 429s and transport
// failures are retried Retry times with exponential backoff.
type GoogleBooksClient struct {
	BaseURL        string
	APIKey         string
	Client         *http.Client
	Retry          int
	InitialBackoff time.Duration

	cacheTTL time.Duration
	now      func() time.Time
	limiter  *rate.Limiter
	metrics  *CatalogMetrics
	log      *slog.Logger

	searches *ttlCache[model.SearchResponse]
	volumes  *ttlCache[model.Book]
	group    singleflight.Group
}

type CatalogOption func(*GoogleBooksClient)

func WithAPIKey(key string) CatalogOption {
	return func(c *GoogleBooksClient) { c.APIKey = key }
}

func WithInitialBackoff(d time.Duration) CatalogOption {
	return func(c *GoogleBooksClient) { c.InitialBackoff = d }
}

func WithCacheTTL(ttl time.Duration) CatalogOption {
	return func(c *GoogleBooksClient) {
		if ttl > 0 {
			c.cacheTTL = ttl
		}
	}
}

func WithClock(now func() time.Time) CatalogOption {
	return func(c *GoogleBooksClient) { c.now = now }
}

// WithRateLimit throttles outgoing attempts on the client side. rps <= 0 disables it.
func WithRateLimit(rps float64, burst int) CatalogOption {
	return func(c *GoogleBooksClient) {
		if rps <= 0 {
			c.limiter = nil
			return
		}
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
}

func WithMetrics(m *CatalogMetrics) CatalogOption {
	return func(c *GoogleBooksClient) { c.metrics = m }
}

func WithLogger(l *slog.Logger) CatalogOption {
	return func(c *GoogleBooksClient) {
		if l != nil {
			c.log = l
		}
	}
}

func NewGoogleBooksClient(baseURL string, retry int, httpClient *http.Client, opts ...CatalogOption) *GoogleBooksClient {
	if baseURL == "" {
		baseURL = DefaultCatalogURL
	}
	if retry < 0 {
		retry = 0
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	c := &GoogleBooksClient{
		BaseURL:        strings.TrimRight(baseURL, "/"),
		Client:         httpClient,
		Retry:          retry,
		InitialBackoff: DefaultInitialBackoff,
		cacheTTL:       DefaultCacheTTL,
		now:            time.Now,
		log:            slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.searches = newTTLCache[model.SearchResponse](c.cacheTTL, c.now)
	c.volumes = newTTLCache[model.Book](c.cacheTTL, c.now)
	return c
}

// Search runs a volumes query. Results are served from cache while fresh.
func (c *GoogleBooksClient) Search(ctx context.Context, params model.SearchParams) (model.SearchResponse, error) {
	params = params.Normalize()
	q := buildQuery(params)
	if q == "" {
		return model.SearchResponse{}, model.ErrInvalidQuery
	}

	key := searchCacheKey(params)
	if resp, ok := c.searches.get(key); ok {
		c.metrics.observeCache("search", true)
		c.log.Debug("catalog search served from cache", "key", key)
		return resp.Clone(), nil
	}
	c.metrics.observeCache("search", false)

	v, err := c.shared(ctx, "search:"+key, func(ctx context.Context) (any, error) {
		start := time.Now()
		var vr volumesResponse
		err := c.getJSON(ctx, "search", c.searchURL(q, params), &vr)
		c.metrics.observeRequest("search", start, err)
		if err != nil {
			return nil, err
		}
		resp := vr.toSearchResponse()
		c.searches.set(key, resp)
		return resp, nil
	})
	if err != nil {
		c.log.Error("catalog search failed", "query", q, "err", err)
		return model.SearchResponse{}, err
	}
	return v.(model.SearchResponse).Clone(), nil
}

// GetByID fetches one volume. A catalog 404 or an empty body yields model.ErrNotFound.
func (c *GoogleBooksClient) GetByID(ctx context.Context, id string) (model.Book, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return model.Book{}, model.ErrNotFound
	}
	if b, ok := c.volumes.get(id); ok {
		c.metrics.observeCache("volume", true)
		return b.Clone(), nil
	}
	c.metrics.observeCache("volume", false)

	v, err := c.shared(ctx, "volume:"+id, func(ctx context.Context) (any, error) {
		start := time.Now()
		var vol volume
		err := c.getJSON(ctx, "lookup", c.volumeURL(id), &vol)
		var upstream *model.UpstreamError
		if errors.As(err, &upstream) && upstream.Status == http.StatusNotFound {
			err = model.ErrNotFound
		}
		if err == nil && vol.ID == "" {
			err = model.ErrNotFound
		}
		c.metrics.observeRequest("lookup", start, err)
		if err != nil {
			return nil, err
		}
		b := mapToBook(vol)
		c.volumes.set(id, b)
		return b, nil
	})
	if err != nil {
		if !errors.Is(err, model.ErrNotFound) {
			c.log.Error("catalog lookup failed", "id", id, "err", err)
		}
		return model.Book{}, err
	}
	return v.(model.Book).Clone(), nil
}

// shared runs fetch once for all concurrent callers of key. The fetch is
// detached from the caller that started it, so one caller giving up does not
// fail the others; each caller stops waiting when its own ctx is done.
func (c *GoogleBooksClient) shared(ctx context.Context, key string, fetch func(context.Context) (any, error)) (any, error) {
	detached := context.WithoutCancel(ctx)
	ch := c.group.DoChan(key, func() (any, error) {
		return fetch(detached)
	})
	select {
	case res := <-ch:
		return res.Val, res.Err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (c *GoogleBooksClient) searchURL(q string, p model.SearchParams) string {
	v := url.Values{}
	v.Set("q", q)
	v.Set("startIndex", strconv.Itoa(p.StartIndex))
	v.Set("maxResults", strconv.Itoa(p.MaxResults))
	if c.APIKey != "" {
		v.Set("key", c.APIKey)
	}
	return c.BaseURL + "?" + v.Encode()
}

func (c *GoogleBooksClient) volumeURL(id string) string {
	u := c.BaseURL + "/" + url.PathEscape(id)
	if c.APIKey != "" {
		u += "?" + url.Values{"key": {c.APIKey}}.Encode()
	}
	return u
}

func (c *GoogleBooksClient) getJSON(ctx context.Context, op, url string, target any) error {
	var lastErr error
	attempts := c.Retry + 1
	for i := 0; i < attempts; i++ {
		if i > 0 {
			// 2s, 4s, 8s...
			wait := c.InitialBackoff << (i - 1)
			c.metrics.observeRetry(op)
			c.log.Warn("catalog retry", "op", op, "attempt", i+1, "of", attempts, "wait", wait, "err", lastErr)
			select {
			case <-time.After(wait):
			case <-ctx.Done():
				return ctx.Err()
			}
		}
		if c.limiter != nil {
			if err := c.limiter.Wait(ctx); err != nil {
				return err
			}
		}

		err := c.fetchOnce(ctx, url, target)
		if err == nil {
			return nil
		}
		if !errors.Is(err, model.ErrRateLimited) && !errors.Is(err, model.ErrNetwork) {
			return err
		}
		lastErr = err
	}
	return lastErr
}

func (c *GoogleBooksClient) fetchOnce(ctx context.Context, url string, target any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	resp, err := c.Client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("%w: %v", model.ErrNetwork, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return model.ErrRateLimited
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		c.log.Debug("catalog non-2xx", "status", resp.StatusCode, "body", string(b))
		return &model.UpstreamError{Status: resp.StatusCode}
	}

	if err := json.NewDecoder(resp.Body).Decode(target); err != nil {
		return fmt.Errorf("%w: decode: %v", model.ErrBadResponse, err)
	}
	return nil
}

// buildQuery renders title:, author: and a bare keyword joined by '+'.
func buildQuery(p model.SearchParams) string {
	terms := make([]string, 0, 3)
	if p.Title != "" {
		terms = append(terms, "title:"+p.Title)
	}
	if p.Author != "" {
		terms = append(terms, "author:"+p.Author)
	}
	if p.Keyword != "" {
		terms = append(terms, p.Keyword)
	}
	return strings.Join(terms, "+")
}

func searchCacheKey(p model.SearchParams) string {
	return fmt.Sprintf("%s-%s-%s-%d", p.Title, p.Author, p.Keyword, p.StartIndex)
}

type volumesResponse struct {
	TotalItems int      `json:"totalItems"`
	Items      []volume `json:"items"`
}

type volume struct {
	ID         string     `json:"id"`
	VolumeInfo volumeInfo `json:"volumeInfo"`
}

type volumeInfo struct {
	Title         string            `json:"title"`
	Authors       []string          `json:"authors"`
	Description   string            `json:"description"`
	PublishedDate string            `json:"publishedDate"`
	Publisher     string            `json:"publisher"`
	Categories    []string          `json:"categories"`
	ImageLinks    map[string]string `json:"imageLinks"`
	PageCount     int               `json:"pageCount"`
	Language      string            `json:"language"`
	AverageRating float64           `json:"averageRating"`
	RatingsCount  int               `json:"ratingsCount"`
	PreviewLink   string            `json:"previewLink"`
	InfoLink      string            `json:"infoLink"`
}

func (vr volumesResponse) toSearchResponse() model.SearchResponse {
	books := make([]model.Book, 0, len(vr.Items))
	seen := make(map[string]struct{}, len(vr.Items))
	for _, v := range vr.Items {
		// the catalog occasionally repeats a volume within one page
		if _, dup := seen[v.ID]; dup || v.ID == "" {
			continue
		}
		seen[v.ID] = struct{}{}
		books = append(books, mapToBook(v))
	}
	total := vr.TotalItems
	if total < 0 {
		total = 0
	}
	return model.SearchResponse{Books: books, TotalItems: total}
}

func mapToBook(v volume) model.Book {
	vi := v.VolumeInfo
	var links map[model.ImageSize]string
	for _, size := range model.ImageSizes {
		if u := vi.ImageLinks[string(size)]; u != "" {
			if links == nil {
				links = make(map[model.ImageSize]string)
			}
			links[size] = u
		}
	}
	pages := vi.PageCount
	if pages < 0 {
		pages = 0
	}
	return model.Book{
		ID:            v.ID,
		Title:         vi.Title,
		Authors:       vi.Authors,
		Description:   vi.Description,
		PublishedDate: vi.PublishedDate,
		Publisher:     vi.Publisher,
		Categories:    vi.Categories,
		ImageLinks:    links,
		PageCount:     pages,
		Language:      vi.Language,
		AverageRating: vi.AverageRating,
		RatingsCount:  vi.RatingsCount,
		PreviewLink:   vi.PreviewLink,
		InfoLink:      vi.InfoLink,
	}
}
