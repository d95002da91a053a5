package store

import (
	"path/filepath"
	"testing"
	"time"
)

func TestFileSignal_PeerDelivery(t *testing.T) {
	storePath := filepath.Join(t.TempDir(), "store.db")

	a, err := newFileSignal(storePath)
	if err != nil {
		t.Fatalf("signal a: %v", err)
	}
	defer a.Close()
	b, err := newFileSignal(storePath)
	if err != nil {
		t.Fatalf("signal b: %v", err)
	}
	defer b.Close()

	if err := a.Notify(); err != nil {
		t.Fatalf("notify: %v", err)
	}

	select {
	case <-b.Changes():
	case <-time.After(5 * time.Second):
		t.Fatal("peer signal never arrived")
	}
}

func TestFileSignal_SuppressesOwnNotify(t *testing.T) {
	storePath := filepath.Join(t.TempDir(), "store.db")

	a, err := newFileSignal(storePath)
	if err != nil {
		t.Fatalf("signal: %v", err)
	}
	defer a.Close()

	if err := a.Notify(); err != nil {
		t.Fatalf("notify: %v", err)
	}

	select {
	case <-a.Changes():
		t.Fatal("received own change signal")
	case <-time.After(300 * time.Millisecond):
	}
}

func TestFileSignal_CloseClosesChanges(t *testing.T) {
	storePath := filepath.Join(t.TempDir(), "store.db")

	a, err := newFileSignal(storePath)
	if err != nil {
		t.Fatalf("signal: %v", err)
	}
	if err := a.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	select {
	case _, ok := <-a.Changes():
		if ok {
			t.Fatal("got a signal after close")
		}
	case <-time.After(5 * time.Second):
		t.Fatal("changes channel never closed")
	}
}

func TestFileSignal_CoalescesBursts(t *testing.T) {
	storePath := filepath.Join(t.TempDir(), "store.db")

	a, err := newFileSignal(storePath)
	if err != nil {
		t.Fatalf("signal a: %v", err)
	}
	defer a.Close()
	b, err := newFileSignal(storePath)
	if err != nil {
		t.Fatalf("signal b: %v", err)
	}
	defer b.Close()

	for i := 0; i < 5; i++ {
		if err := a.Notify(); err != nil {
			t.Fatalf("notify %d: %v", i, err)
		}
	}

	// At least one signal arrives; the rest coalesce into it.
	select {
	case <-b.Changes():
	case <-time.After(5 * time.Second):
		t.Fatal("peer signal never arrived")
	}
}
