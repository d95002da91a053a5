package store

import (
	"context"
	"log/slog"
	"sync"

	"github.com/jordanekay/PersistDB/compiler"
	"github.com/jordanekay/PersistDB/expr"
	"github.com/jordanekay/PersistDB/schema"
)

// Snapshot is one complete observation result. Exactly one of Rows,
// Groups, or Value is meaningful, matching the observed request's shape.
// A snapshot with Err set is terminal: the channel closes after it.
type Snapshot struct {
	Rows   []Row
	Groups []Group
	Value  any
	Err    error
}

// subscription is one observation's view of committed effects. The
// signal channel (buffered, size 1) coalesces invalidations that arrive
// while a re-fetch is in flight, so re-fetches never overlap and a burst
// of effects costs one refresh.
type subscription struct {
	tables map[string]struct{}
	signal chan struct{}
	closed chan struct{}
}

func (sub *subscription) invalidate() {
	select {
	case sub.signal <- struct{}{}:
	default:
	}
}

// observerHub fans committed effects out to subscriptions. This is the
// observer side of the pipeline: waiters get per-tag replies, observers
// get table-level invalidations.
type observerHub struct {
	mu   sync.Mutex
	subs map[int]*subscription
	next int
}

func newObserverHub() *observerHub {
	return &observerHub{subs: make(map[int]*subscription)}
}

func (h *observerHub) subscribe(tables []string) (int, *subscription) {
	sub := &subscription{
		tables: make(map[string]struct{}, len(tables)),
		signal: make(chan struct{}, 1),
		closed: make(chan struct{}),
	}
	for _, t := range tables {
		sub.tables[t] = struct{}{}
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	id := h.next
	h.next++
	h.subs[id] = sub
	return id, sub
}

func (h *observerHub) unsubscribe(id int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.subs, id)
}

// invalidate wakes every subscription whose table set contains the
// mutated table. The match is conservative by construction: the table
// set covers predicate, ordering, grouping, and projected paths.
func (h *observerHub) invalidate(table string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, sub := range h.subs {
		if _, ok := sub.tables[table]; ok {
			sub.invalidate()
		}
	}
}

// invalidateAll wakes every subscription unconditionally, used for peer
// change signals whose content says nothing about what changed.
func (h *observerHub) invalidateAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, sub := range h.subs {
		sub.invalidate()
	}
}

// closeAll wakes subscriptions into their terminal state on store close.
func (h *observerHub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, sub := range h.subs {
		close(sub.closed)
	}
}

// Observe delivers an initial snapshot of the query, then a fresh
// complete snapshot after every committed effect that could change the
// result. The channel closes when ctx is cancelled, the store closes, or
// a terminal error snapshot is delivered. Grouped queries deliver
// Snapshot.Groups, others Snapshot.Rows.
func (s *Store) Observe(ctx context.Context, q expr.Query) (<-chan Snapshot, error) {
	cq, err := compiler.CompileQuery(q)
	if err != nil {
		return nil, err
	}
	grouped := q.GroupBy != nil
	return s.observe(ctx, cq, func(ctx context.Context) Snapshot {
		raw, err := s.read(ctx, cq)
		if err != nil {
			return Snapshot{Err: err}
		}
		if grouped {
			return Snapshot{Groups: decodeGroups(raw, cq)}
		}
		return Snapshot{Rows: decodeRows(raw, cq)}
	}), nil
}

// ObserveAggregate observes a scalar reduction; snapshots carry Value.
func (s *Store) ObserveAggregate(ctx context.Context, a expr.Aggregate) (<-chan Snapshot, error) {
	cq, err := compiler.CompileAggregate(a)
	if err != nil {
		return nil, err
	}
	return s.observe(ctx, cq, func(ctx context.Context) Snapshot {
		raw, err := s.read(ctx, cq)
		if err != nil {
			return Snapshot{Err: err}
		}
		if len(raw) == 0 {
			return Snapshot{}
		}
		return Snapshot{Value: decodeValue(raw[0][0], cq.Columns[0])}
	}), nil
}

// ObserveByID observes the single row with the given id; snapshots carry
// zero or one Rows.
func (s *Store) ObserveByID(ctx context.Context, m *schema.Model, id int64) (<-chan Snapshot, error) {
	return s.Observe(ctx, byID(m, id))
}

// observe subscribes to invalidations for cq's table set and runs the
// refresh loop. One goroutine per observation: fetch, deliver, wait -
// re-fetches are serialized by construction.
func (s *Store) observe(ctx context.Context, cq compiler.CompiledQuery, fetch func(context.Context) Snapshot) <-chan Snapshot {
	out := make(chan Snapshot)
	id, sub := s.hub.subscribe(cq.Tables)
	slog.Debug("observation started", "tables", cq.Tables)

	go func() {
		defer close(out)
		defer s.hub.unsubscribe(id)

		deliver := func(snap Snapshot) bool {
			select {
			case out <- snap:
				return true
			case <-ctx.Done():
				return false
			}
		}

		for {
			snap := fetch(ctx)
			if !deliver(snap) || snap.Err != nil {
				return
			}
			select {
			case <-ctx.Done():
				return
			case <-sub.closed:
				return
			case <-sub.signal:
			}
		}
	}()
	return out
}
