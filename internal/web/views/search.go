package views

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/Leopold1975/stackit/internal/stackit/domain/models"
)

type SearchKey struct {
	Query  string
	Filter Filter
}

type SearchSnapshot struct {
	Input     string
	Query     string
	Filter    Filter
	Status    Status
	Questions []models.Question
	Err       error
}

func (s SearchSnapshot) Empty() bool {
	return s.Status == Ready && len(s.Questions) == 0
}

// Keystroke is one change of the search box. Keystrokes may arrive out of order, so
// those with a Seq not above the last one seen are dropped; a zero Seq is never
// dropped. An empty Filter keeps the current one.
type Keystroke struct {
	Seq    uint64
	Text   string
	Filter Filter
}

// SearchView applies the typed query only after it has been stable for the debounce
// delay. An empty query never reaches the API.
type SearchView struct {
	api      API
	query    *Query[SearchKey, []models.Question]
	debounce *Debouncer

	ctx    context.Context //nolint:containedctx
	cancel context.CancelFunc

	mu      sync.Mutex
	input   string
	applied string
	filter  Filter
	lastSeq uint64
	subs    map[int]func(SearchSnapshot)
	nextSub int
}

func NewSearchView(api API, delay time.Duration) *SearchView {
	ctx, cancel := context.WithCancel(context.Background())

	v := &SearchView{
		api:      api,
		debounce: NewDebouncer(delay),
		ctx:      ctx,
		cancel:   cancel,
		filter:   FilterNewest,
		subs:     make(map[int]func(SearchSnapshot)),
	}

	v.query = NewQuery(func(ctx context.Context, k SearchKey) ([]models.Question, error) {
		p := k.Filter.Params()
		p.Search = k.Query

		return api.ListQuestions(ctx, p) //nolint:wrapcheck
	})

	return v
}

// Mount applies q immediately, as when the page is opened from a /search?q= link.
func (v *SearchView) Mount(ctx context.Context, q string, f Filter) SearchSnapshot {
	v.apply(q, f)

	return v.load(ctx)
}

// Ensure applies q and f, fetching only when no data is loaded for them yet.
func (v *SearchView) Ensure(ctx context.Context, q string, f Filter) SearchSnapshot {
	v.apply(q, f)

	key := v.key()
	if key.Query == "" {
		return v.idle()
	}

	return v.snapshot(v.query.Ensure(ctx, key))
}

func (v *SearchView) apply(q string, f Filter) {
	q = strings.TrimSpace(q)

	v.mu.Lock()
	defer v.mu.Unlock()

	v.input = q
	v.applied = q
	v.filter = f
}

// Type records a keystroke and reports whether it was accepted. The fetch happens on
// the view's own context once the input settles, and subscribers get the result.
func (v *SearchView) Type(k Keystroke) bool {
	v.mu.Lock()

	if k.Seq != 0 {
		if k.Seq <= v.lastSeq {
			v.mu.Unlock()

			return false
		}

		v.lastSeq = k.Seq
	}

	v.input = k.Text

	if k.Filter != "" {
		v.filter = k.Filter
	}
	v.mu.Unlock()

	v.debounce.Push(func() {
		v.mu.Lock()
		v.applied = strings.TrimSpace(k.Text)
		v.mu.Unlock()

		v.publish(v.load(v.ctx))
	})

	return true
}

func (v *SearchView) SetFilter(ctx context.Context, f Filter) SearchSnapshot {
	v.mu.Lock()
	v.filter = f
	v.mu.Unlock()

	return v.load(ctx)
}

func (v *SearchView) Vote(ctx context.Context, id string, vt models.VoteType) (SearchSnapshot, error) {
	if err := v.api.VoteQuestion(ctx, id, vt); err != nil {
		return v.Snapshot(), fmt.Errorf("vote error: %w", err)
	}

	if v.key().Query == "" {
		return v.Snapshot(), nil
	}

	return v.snapshot(v.query.Refetch(ctx)), nil
}

// Subscribe registers fn for snapshots produced by debounced fetches.
func (v *SearchView) Subscribe(fn func(SearchSnapshot)) (unsubscribe func()) {
	v.mu.Lock()
	defer v.mu.Unlock()

	id := v.nextSub
	v.nextSub++
	v.subs[id] = fn

	return func() {
		v.mu.Lock()
		defer v.mu.Unlock()

		delete(v.subs, id)
	}
}

func (v *SearchView) Snapshot() SearchSnapshot {
	if v.key().Query == "" {
		return v.idle()
	}

	return v.snapshot(v.query.Snapshot())
}

// Done is closed when the view is unmounted. Subscribers holding an event stream end it
// then, and the browser reconnects to whatever view replaced this one.
func (v *SearchView) Done() <-chan struct{} {
	return v.ctx.Done()
}

// Unmount stops the pending debounce timer and cancels any fetch in flight.
func (v *SearchView) Unmount() {
	v.debounce.Stop()
	v.cancel()
	v.query.Close()

	v.mu.Lock()
	v.subs = make(map[int]func(SearchSnapshot))
	v.mu.Unlock()
}

func (v *SearchView) load(ctx context.Context) SearchSnapshot {
	key := v.key()
	if key.Query == "" {
		return v.idle()
	}

	return v.snapshot(v.query.Load(ctx, key))
}

func (v *SearchView) key() SearchKey {
	v.mu.Lock()
	defer v.mu.Unlock()

	return SearchKey{Query: v.applied, Filter: v.filter}
}

func (v *SearchView) idle() SearchSnapshot {
	v.mu.Lock()
	defer v.mu.Unlock()

	return SearchSnapshot{Input: v.input, Filter: v.filter, Status: Idle}
}

// snapshot reports the fetched data only while it matches the current key.
func (v *SearchView) snapshot(s Snapshot[SearchKey, []models.Question]) SearchSnapshot {
	v.mu.Lock()
	defer v.mu.Unlock()

	out := SearchSnapshot{
		Input:  v.input,
		Query:  v.applied,
		Filter: v.filter,
		Status: s.Status,
		Err:    s.Err,
	}

	if s.Key == (SearchKey{Query: v.applied, Filter: v.filter}) {
		out.Questions = s.Data
	} else {
		out.Status = Loading
	}

	return out
}

func (v *SearchView) publish(s SearchSnapshot) {
	v.mu.Lock()
	subs := make([]func(SearchSnapshot), 0, len(v.subs))

	for _, fn := range v.subs {
		subs = append(subs, fn)
	}
	v.mu.Unlock()

	for _, fn := range subs {
		fn(s)
	}
}
