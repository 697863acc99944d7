package views

import (
	"context"
	"errors"
	"sync"
)

// ErrSuperseded is the error of a load replaced by a load of a different key.
var ErrSuperseded = errors.New("load superseded")

// Snapshot is a copy of a query's state at one instant.
type Snapshot[K comparable, V any] struct {
	Key    K
	Status Status
	Data   V
	Err    error
}

// Query is one cache entry keyed by the parameters it was fetched with. Every fetch
// gets a generation number; a response whose generation is no longer current is
// dropped, and starting a fetch cancels the one it supersedes. The superseded caller
// waits for the entry to settle and gets its result when the key matches, or a Failed
// snapshot with ErrSuperseded when it does not, so no load returns a Loading snapshot.
//
// A Load always fetches, except that the result of a Refetch is held fresh for the
// one Load that follows it: a mutation refetches, and the page shown afterwards
// reuses that result.
type Query[K comparable, V any] struct {
	fetch func(context.Context, K) (V, error)

	mu      sync.Mutex
	settled *sync.Cond
	key     K
	hasKey  bool
	fresh   bool
	status  Status
	data    V
	err     error
	gen     uint64
	cancel  context.CancelFunc
}

func NewQuery[K comparable, V any](fetch func(context.Context, K) (V, error)) *Query[K, V] {
	q := &Query[K, V]{fetch: fetch}
	q.settled = sync.NewCond(&q.mu)

	return q
}

// Load fetches key unless a fresh Refetch result for it is waiting.
func (q *Query[K, V]) Load(ctx context.Context, key K) Snapshot[K, V] {
	q.mu.Lock()

	if q.hasKey && q.fresh && q.key == key {
		defer q.mu.Unlock()

		q.fresh = false

		return q.snapshotLocked()
	}

	return q.fetchLocked(ctx, key, false)
}

// Ensure returns the entry when it already holds data for key and loads otherwise.
// Actions use it to make sure the view is mounted without fetching twice.
func (q *Query[K, V]) Ensure(ctx context.Context, key K) Snapshot[K, V] {
	q.mu.Lock()

	if q.hasKey && q.key == key && q.status == Ready {
		defer q.mu.Unlock()

		return q.snapshotLocked()
	}

	return q.fetchLocked(ctx, key, false)
}

// Refetch reloads the current key and keeps the result fresh for the next Load.
func (q *Query[K, V]) Refetch(ctx context.Context) Snapshot[K, V] {
	q.mu.Lock()

	if !q.hasKey {
		defer q.mu.Unlock()

		return q.snapshotLocked()
	}

	return q.fetchLocked(ctx, q.key, true)
}

// fetchLocked is entered with q.mu held and returns with it released.
func (q *Query[K, V]) fetchLocked(ctx context.Context, key K, keepFresh bool) Snapshot[K, V] {
	if q.cancel != nil {
		q.cancel()
	}

	q.gen++
	gen := q.gen

	fctx, cancel := context.WithCancel(ctx)

	q.key = key
	q.hasKey = true
	q.fresh = false
	q.status = Loading
	q.err = nil
	q.cancel = cancel

	q.mu.Unlock()

	v, err := q.fetch(fctx, key)

	q.mu.Lock()
	defer q.mu.Unlock()

	if gen != q.gen {
		cancel()

		return q.awaitLocked(key)
	}

	q.cancel = nil
	cancel()
	q.settled.Broadcast()

	if err != nil {
		q.status = Failed
		q.err = err

		return q.snapshotLocked()
	}

	q.status = Ready
	q.data = v
	q.fresh = keepFresh

	return q.snapshotLocked()
}

// awaitLocked waits until no fetch is in flight and returns the settled entry for key.
func (q *Query[K, V]) awaitLocked(key K) Snapshot[K, V] {
	for q.cancel != nil {
		q.settled.Wait()
	}

	if q.hasKey && q.key == key && (q.status == Ready || q.status == Failed) {
		return q.snapshotLocked()
	}

	return Snapshot[K, V]{Key: key, Status: Failed, Err: ErrSuperseded}
}

func (q *Query[K, V]) Snapshot() Snapshot[K, V] {
	q.mu.Lock()
	defer q.mu.Unlock()

	return q.snapshotLocked()
}

// Close cancels an in-flight fetch. Its result will be dropped.
func (q *Query[K, V]) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.cancel != nil {
		q.cancel()
		q.cancel = nil
	}

	q.gen++
	q.settled.Broadcast()

	if q.status == Loading {
		q.status = Idle
	}
}

func (q *Query[K, V]) snapshotLocked() Snapshot[K, V] {
	return Snapshot[K, V]{
		Key:    q.key,
		Status: q.status,
		Data:   q.data,
		Err:    q.err,
	}
}
