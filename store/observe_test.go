package store

import (
	"context"
	"testing"
	"time"

	"github.com/jordanekay/PersistDB/expr"
)

func nextSnapshot(t *testing.T, ch <-chan Snapshot) Snapshot {
	t.Helper()
	select {
	case snap, ok := <-ch:
		if !ok {
			t.Fatal("observation channel closed unexpectedly")
		}
		if snap.Err != nil {
			t.Fatalf("snapshot error: %v", snap.Err)
		}
		return snap
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for snapshot")
		return Snapshot{}
	}
}

func expectNoSnapshot(t *testing.T, ch <-chan Snapshot) {
	t.Helper()
	select {
	case snap := <-ch:
		t.Fatalf("unexpected snapshot: %+v", snap)
	case <-time.After(200 * time.Millisecond):
	}
}

func expectClosed(t *testing.T, ch <-chan Snapshot) {
	t.Helper()
	for {
		select {
		case _, ok := <-ch:
			if !ok {
				return
			}
		case <-time.After(5 * time.Second):
			t.Fatal("timed out waiting for channel close")
		}
	}
}

func TestObserve_DeliversOnCommit(t *testing.T) {
	s, _, widget := openTestStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	name := expr.Path(widget.Property("name"))
	ch, err := s.Observe(ctx, expr.From(widget).Project(name).Sort(expr.Asc(name)))
	if err != nil {
		t.Fatalf("observe: %v", err)
	}

	initial := nextSnapshot(t, ch)
	if len(initial.Rows) != 0 {
		t.Fatalf("initial snapshot: got %d rows, want 0", len(initial.Rows))
	}
	if initial.Rows == nil {
		t.Fatal("initial snapshot rows should be non-nil")
	}

	if _, err := s.Insert(ctx, widget, expr.ValueSet{}.Set(widget.Property("name"), expr.Lit("A"))); err != nil {
		t.Fatalf("insert: %v", err)
	}

	refreshed := nextSnapshot(t, ch)
	if len(refreshed.Rows) != 1 || refreshed.Rows[0]["name"] != "A" {
		t.Fatalf("refreshed snapshot: got %v", refreshed.Rows)
	}
}

func TestObserve_UnrelatedTableDoesNotInvalidate(t *testing.T) {
	s, person, widget := openTestStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch, err := s.Observe(ctx, expr.From(widget))
	if err != nil {
		t.Fatalf("observe: %v", err)
	}
	nextSnapshot(t, ch)

	if _, err := s.Insert(ctx, person, expr.ValueSet{}.Set(person.Property("name"), expr.Lit("Ada"))); err != nil {
		t.Fatalf("insert: %v", err)
	}
	expectNoSnapshot(t, ch)
}

func TestObserve_JoinedTableInvalidates(t *testing.T) {
	s, person, widget := openTestStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// The query crosses into people, so effects there must refresh it.
	ownerName := expr.Path(widget.Property("owner"), person.Property("name"))
	ch, err := s.Observe(ctx, expr.From(widget).Project(ownerName))
	if err != nil {
		t.Fatalf("observe: %v", err)
	}
	nextSnapshot(t, ch)

	if _, err := s.Insert(ctx, person, expr.ValueSet{}.Set(person.Property("name"), expr.Lit("Ada"))); err != nil {
		t.Fatalf("insert: %v", err)
	}
	nextSnapshot(t, ch)
}

func TestObserve_CoalescesBursts(t *testing.T) {
	s, _, widget := openTestStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch, err := s.Observe(ctx, expr.From(widget))
	if err != nil {
		t.Fatalf("observe: %v", err)
	}
	nextSnapshot(t, ch)

	// A burst of commits before the observer drains: the final snapshot
	// it settles on must reflect all of them.
	for _, name := range []string{"A", "B", "C"} {
		if _, err := s.Insert(ctx, widget, expr.ValueSet{}.Set(widget.Property("name"), expr.Lit(name))); err != nil {
			t.Fatalf("insert: %v", err)
		}
	}

	deadline := time.After(5 * time.Second)
	for {
		select {
		case snap := <-ch:
			if snap.Err != nil {
				t.Fatalf("snapshot error: %v", snap.Err)
			}
			if len(snap.Rows) == 3 {
				return
			}
		case <-deadline:
			t.Fatal("never observed all three rows")
		}
	}
}

func TestObserveAggregate(t *testing.T) {
	s, _, widget := openTestStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	count := expr.Reduce(widget, expr.Count(expr.Path(widget.ID())))
	ch, err := s.ObserveAggregate(ctx, count)
	if err != nil {
		t.Fatalf("observe aggregate: %v", err)
	}

	if snap := nextSnapshot(t, ch); snap.Value != int64(0) {
		t.Fatalf("initial value: got %v, want 0", snap.Value)
	}

	if _, err := s.Insert(ctx, widget, expr.ValueSet{}.Set(widget.Property("name"), expr.Lit("A"))); err != nil {
		t.Fatalf("insert: %v", err)
	}
	if snap := nextSnapshot(t, ch); snap.Value != int64(1) {
		t.Fatalf("refreshed value: got %v, want 1", snap.Value)
	}
}

func TestObserveByID(t *testing.T) {
	s, _, widget := openTestStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	id, err := s.Insert(ctx, widget, expr.ValueSet{}.Set(widget.Property("name"), expr.Lit("A")))
	if err != nil {
		t.Fatalf("insert: %v", err)
	}

	ch, err := s.ObserveByID(ctx, widget, id)
	if err != nil {
		t.Fatalf("observe by id: %v", err)
	}
	if snap := nextSnapshot(t, ch); len(snap.Rows) != 1 || snap.Rows[0]["name"] != "A" {
		t.Fatalf("initial snapshot: got %v", snap.Rows)
	}

	if _, err := s.Delete(ctx, widget, nil); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if snap := nextSnapshot(t, ch); len(snap.Rows) != 0 {
		t.Fatalf("after delete: got %v", snap.Rows)
	}
}

func TestObserve_ClosesOnCancel(t *testing.T) {
	s, _, widget := openTestStore(t)
	ctx, cancel := context.WithCancel(context.Background())

	ch, err := s.Observe(ctx, expr.From(widget))
	if err != nil {
		t.Fatalf("observe: %v", err)
	}
	nextSnapshot(t, ch)

	cancel()
	expectClosed(t, ch)
}

func TestObserve_ClosesOnStoreClose(t *testing.T) {
	s, _, widget := openTestStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch, err := s.Observe(ctx, expr.From(widget))
	if err != nil {
		t.Fatalf("observe: %v", err)
	}
	nextSnapshot(t, ch)

	if err := s.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	expectClosed(t, ch)
}
