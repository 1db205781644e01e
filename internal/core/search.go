package core

import (
	"book-explorer/internal/core/model"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

const DefaultDebounce = 500 * time.Millisecond

var ErrClosed = errors.New("search orchestrator closed")

type Catalog interface {
	Search(ctx context.Context, params model.SearchParams) (model.SearchResponse, error)
	GetByID(ctx context.Context, id string) (model.Book, error)
}

// SearchOrchestrator turns bursts of submissions into single catalog searches.
//
//   - Submit replaces any pending timer (trailing-edge debounce).
//   - Params identical to a search already in flight are suppressed.
//   - Every fired search takes a sequence number; only the latest one may
//     update the view, so a slow stale response never overwrites a newer one.
//   - Successful results are snapshotted to the session slot for Restore.
type SearchOrchestrator struct {
	catalog  Catalog
	session  Slot
	log      *slog.Logger
	delay    time.Duration
	pageSize int

	ctx    context.Context
	cancel context.CancelFunc

	mu       sync.Mutex
	pending  *time.Timer
	timerGen uint64
	seq      uint64
	inFlight map[string]int
	view     model.SearchView
	restored bool
}

type SearchOption func(*SearchOrchestrator)

func WithDebounce(d time.Duration) SearchOption {
	return func(o *SearchOrchestrator) {
		if d >= 0 {
			o.delay = d
		}
	}
}

func WithPageSize(n int) SearchOption {
	return func(o *SearchOrchestrator) {
		if n > 0 && n <= model.DefaultMaxResults {
			o.pageSize = n
		}
	}
}

func NewSearchOrchestrator(catalog Catalog, session Slot, logger *slog.Logger, opts ...SearchOption) *SearchOrchestrator {
	ctx, cancel := context.WithCancel(context.Background())
	o := &SearchOrchestrator{
		catalog:  catalog,
		session:  session,
		log:      orDiscard(logger),
		delay:    DefaultDebounce,
		pageSize: model.DefaultMaxResults,
		ctx:      ctx,
		cancel:   cancel,
		inFlight: make(map[string]int),
		view: model.SearchView{
			SearchState: model.SearchState{Books: []model.Book{}},
			Status:      model.SearchIdle,
		},
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Submit schedules a search for params after the debounce delay.
func (o *SearchOrchestrator) Submit(params model.SearchParams) (model.SubmitOutcome, error) {
	params = params.Normalize()
	if !params.HasTerms() {
		return "", model.ErrInvalidQuery
	}
	key := dedupeKey(params)

	o.mu.Lock()
	defer o.mu.Unlock()
	if o.ctx.Err() != nil {
		return "", ErrClosed
	}
	if o.inFlight[key] > 0 {
		o.log.Debug("duplicate search suppressed", "key", key)
		return model.SubmitSuppressed, nil
	}

	if o.pending != nil {
		o.pending.Stop()
	}
	o.timerGen++
	gen := o.timerGen
	o.pending = time.AfterFunc(o.delay, func() { o.fire(gen, params) })
	o.view.Status = model.SearchDebouncing
	o.view.Error = ""
	return model.SubmitScheduled, nil
}

func (o *SearchOrchestrator) fire(gen uint64, params model.SearchParams) {
	key := dedupeKey(params)

	o.mu.Lock()
	// a later Submit may have replaced this timer after it already fired
	if gen != o.timerGen || o.ctx.Err() != nil {
		o.mu.Unlock()
		return
	}
	o.pending = nil
	o.seq++
	seq := o.seq
	o.inFlight[key]++
	o.view.Status = model.SearchFetching
	o.mu.Unlock()

	query := params
	query.StartIndex = 0
	query.MaxResults = o.pageSize
	resp, err := o.catalog.Search(o.ctx, query)

	o.mu.Lock()
	defer o.mu.Unlock()
	if o.inFlight[key]--; o.inFlight[key] <= 0 {
		delete(o.inFlight, key)
	}
	if o.ctx.Err() != nil {
		return
	}
	if seq != o.seq {
		o.log.Info("discarding stale search response", "key", key, "seq", seq, "latest", o.seq)
		return
	}

	settled := model.SearchSucceeded
	if err != nil {
		settled = model.SearchFailed
	}
	if o.pending != nil {
		settled = model.SearchDebouncing
	}

	if err != nil {
		o.log.Warn("search failed", "key", key, "err", err)
		o.view.Books = []model.Book{}
		o.view.TotalItems = 0
		o.view.Error = model.Describe(err)
		o.view.Status = settled
		return
	}

	state := model.SearchState{
		Params:      params,
		Books:       resp.Books,
		TotalItems:  resp.TotalItems,
		HasSearched: true,
	}
	if state.Books == nil {
		state.Books = []model.Book{}
	}
	o.view.SearchState = state
	o.view.Error = ""
	o.view.Status = settled
	o.saveSnapshot(state)
}

// saveSnapshot must be called with mu held.
func (o *SearchOrchestrator) saveSnapshot(state model.SearchState) {
	data, err := json.Marshal(state)
	if err != nil {
		o.log.Error("search snapshot: encode", "err", err)
		return
	}
	if err := o.session.Store(o.ctx, data); err != nil {
		o.log.Error("search snapshot: write", "err", err)
	}
}

// Restore hydrates the view from the session snapshot, at most once per
// orchestrator. It never touches the network. A malformed snapshot is
// logged and cleared.
func (o *SearchOrchestrator) Restore(ctx context.Context) (model.SearchState, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.restored {
		return model.SearchState{}, false
	}
	o.restored = true

	data, err := o.session.Load(ctx)
	if errors.Is(err, model.ErrSlotEmpty) {
		return model.SearchState{}, false
	}
	if err != nil {
		o.log.Error("search snapshot: read", "err", err)
		return model.SearchState{}, false
	}

	var st model.SearchState
	if err := json.Unmarshal(data, &st); err != nil || !wellFormed(st) {
		if err == nil {
			err = errors.New("invalid fields")
		}
		o.log.Warn("search snapshot: discarded", "err", fmt.Errorf("%w: %v", model.ErrMalformedState, err))
		if err := o.session.Clear(ctx); err != nil {
			o.log.Error("search snapshot: clear", "err", err)
		}
		return model.SearchState{}, false
	}
	if st.Books == nil {
		st.Books = []model.Book{}
	}

	o.view.SearchState = st
	o.view.Error = ""
	o.view.Status = model.SearchIdle
	if st.HasSearched {
		o.view.Status = model.SearchSucceeded
	}
	return cloneState(st), true
}

// View returns a copy of the current search lifecycle and results.
func (o *SearchOrchestrator) View() model.SearchView {
	o.mu.Lock()
	defer o.mu.Unlock()
	v := o.view
	v.SearchState = cloneState(v.SearchState)
	return v
}

// Close drops the pending timer and cancels in-flight searches.
func (o *SearchOrchestrator) Close() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.cancel()
	if o.pending != nil {
		o.pending.Stop()
		o.pending = nil
	}
}

func dedupeKey(p model.SearchParams) string {
	return fmt.Sprintf("%s-%s-%s", p.Title, p.Author, p.Keyword)
}

func wellFormed(st model.SearchState) bool {
	if st.TotalItems < 0 {
		return false
	}
	for _, b := range st.Books {
		if b.ID == "" {
			return false
		}
	}
	return true
}

func cloneState(st model.SearchState) model.SearchState {
	st.Books = model.SearchResponse{Books: st.Books}.Clone().Books
	return st
}
