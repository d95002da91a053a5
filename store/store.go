package store

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/jordanekay/PersistDB/compiler"
	"github.com/jordanekay/PersistDB/internal/sqlite"
	"github.com/jordanekay/PersistDB/schema"
	"github.com/jordanekay/PersistDB/sqlast"
)

// Mode selects how a file-backed store is opened.
type Mode int

const (
	// ModeReadWrite creates missing tables from the declared schema.
	// Existing tables that differ structurally still fail the open.
	ModeReadWrite Mode = iota
	// ModeReadOnly requires every declared table to exist with an exactly
	// matching structure.
	ModeReadOnly
)

// Store is a typed persistence store over one SQLite file (or one
// in-memory database). See the package documentation for the execution
// model.
type Store struct {
	db     *sqlite.DB
	mode   Mode
	queue  *requestQueue
	hub    *observerHub
	signal ChangeSignal

	loopDone   chan struct{}
	signalDone chan struct{}

	closeOnce sync.Once
	closeErr  error
}

// Option configures Open.
type Option func(*openConfig)

type openConfig struct {
	signal   ChangeSignal
	noSignal bool
}

// WithChangeSignal substitutes a cross-process change signal for the
// default sentinel-file one.
func WithChangeSignal(sig ChangeSignal) Option {
	return func(c *openConfig) { c.signal = sig }
}

// WithoutChangeSignal disables cross-process coherence for this store.
func WithoutChangeSignal() Option {
	return func(c *openConfig) { c.noSignal = true }
}

// Open opens a file-backed store and verifies the declared models
// against the on-disk schema.
//
// Read-only: every declared table must already exist and be structurally
// identical (column names, types, nullability, primary-key flags); any
// missing table or mismatch fails with CodeIncompatibleSchema.
// Read-write: missing tables are created; structural mismatches still
// fail. There is no implicit migration.
//
// Lower-level I/O failures are wrapped as CodeUnknown, distinct from
// schema incompatibility.
func Open(path string, mode Mode, models []*schema.Model, opts ...Option) (*Store, error) {
	var cfg openConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	db, err := sqlite.Open(path, mode == ModeReadOnly)
	if err != nil {
		return nil, unknownOpen(err)
	}
	if err := verifySchema(context.Background(), db, mode, models); err != nil {
		db.Close()
		return nil, err
	}

	sig := cfg.signal
	if sig == nil && !cfg.noSignal {
		sig, err = newFileSignal(path)
		if err != nil {
			db.Close()
			return nil, unknownOpen(err)
		}
	}
	return newStore(db, mode, sig), nil
}

// OpenInMemory opens a fresh in-memory store. It always starts from an
// empty, newly created schema, so it cannot fail for schema reasons.
func OpenInMemory(models ...*schema.Model) (*Store, error) {
	db, err := sqlite.OpenInMemory()
	if err != nil {
		return nil, unknownOpen(err)
	}
	for _, m := range models {
		if err := db.CreateTable(context.Background(), m.Definition()); err != nil {
			db.Close()
			return nil, unknownOpen(err)
		}
	}
	return newStore(db, ModeReadWrite, nil), nil
}

func newStore(db *sqlite.DB, mode Mode, sig ChangeSignal) *Store {
	s := &Store{
		db:       db,
		mode:     mode,
		queue:    newRequestQueue(),
		hub:      newObserverHub(),
		signal:   sig,
		loopDone: make(chan struct{}),
	}
	go s.run()
	if sig != nil {
		s.signalDone = make(chan struct{})
		go s.listenSignals()
	}
	return s
}

// verifySchema checks each declared model against the on-disk tables,
// creating missing ones in read-write mode.
func verifySchema(ctx context.Context, db *sqlite.DB, mode Mode, models []*schema.Model) error {
	existing, err := db.IntrospectSchema(ctx)
	if err != nil {
		return unknownOpen(err)
	}
	onDisk := make(map[string]schema.TableDef, len(existing))
	for _, def := range existing {
		onDisk[def.Name] = def
	}

	for _, m := range models {
		declared := m.Definition()
		found, ok := onDisk[declared.Name]
		if !ok {
			if mode == ModeReadOnly {
				return incompatible(declared.Name, "declared table missing from store")
			}
			if err := db.CreateTable(ctx, declared); err != nil {
				return unknownOpen(err)
			}
			slog.Info("created table", "table", declared.Name)
			continue
		}
		if !declared.Equal(found) {
			return incompatible(declared.Name, "on-disk structure differs from declared schema")
		}
	}
	return nil
}

// Close stops the run loop after already-queued work completes, stops
// the change signal, and closes the engine. Idempotent.
func (s *Store) Close() error {
	s.closeOnce.Do(func() {
		s.queue.Close()
		<-s.loopDone
		if s.signal != nil {
			if err := s.signal.Close(); err != nil {
				slog.Warn("close change signal", "error", err)
			}
			<-s.signalDone
		}
		s.hub.closeAll()
		s.closeErr = s.db.Close()
	})
	return s.closeErr
}

// run is the store's serialized execution loop: the sole caller of
// engine operations, consuming requests strictly in submission order.
func (s *Store) run() {
	defer close(s.loopDone)
	for {
		req, ok := s.queue.Dequeue()
		if !ok {
			return
		}
		switch {
		case req.action != nil:
			s.applyAction(req.action)
		case req.read != nil:
			// Queued work runs to completion even if its waiter is gone,
			// so the engine call is not tied to the caller's context.
			rows, err := s.db.Select(context.Background(), req.read.query.Select)
			req.read.reply <- readResult{rows: rows, err: err}
		}
	}
}

func (s *Store) applyAction(ta *taggedAction) {
	ctx := context.Background()
	effect := sqlast.Effect{Tag: ta.tag, Table: ta.action.ActionTable()}

	var err error
	switch a := ta.action.(type) {
	case sqlast.Insert:
		effect.Kind = sqlast.EffectInserted
		effect.ID, err = s.db.Insert(ctx, a)
	case sqlast.Update, sqlast.Delete:
		effect.Kind = sqlast.EffectRowsAffected
		effect.Rows, err = s.db.Exec(ctx, ta.action)
	default:
		err = fmt.Errorf("store: unsupported action type %T", ta.action)
	}

	// Exactly one reply per action, error or not. Buffered channel: an
	// abandoned waiter never blocks the loop.
	ta.reply <- effectResult{effect: effect, err: err}

	if err != nil {
		slog.Error("action failed", "tag", ta.tag, "table", effect.Table, "error", err)
		return
	}
	slog.Debug("action applied", "tag", ta.tag, "effect", effect.String())

	s.hub.invalidate(effect.Table)
	if s.signal != nil {
		if err := s.signal.Notify(); err != nil {
			slog.Warn("change signal notify failed", "error", err)
		}
	}
}

// listenSignals turns peer change signals into whole-store invalidation:
// conservative, trading precision for correctness across processes.
func (s *Store) listenSignals() {
	defer close(s.signalDone)
	for range s.signal.Changes() {
		slog.Debug("peer change signal received")
		s.hub.invalidateAll()
	}
}

// submit enqueues a tagged action and waits for its effect. Cancellation
// abandons the wait only; the action still executes.
func (s *Store) submit(ctx context.Context, action sqlast.Action) (sqlast.Effect, error) {
	ta := &taggedAction{
		tag:    sqlast.NewTag(),
		action: action,
		reply:  make(chan effectResult, 1),
	}
	if !s.queue.Enqueue(request{action: ta}) {
		return sqlast.Effect{}, ErrClosed
	}
	select {
	case res := <-ta.reply:
		return res.effect, res.err
	case <-ctx.Done():
		return sqlast.Effect{}, ctx.Err()
	}
}

// read enqueues a compiled select and waits for its raw rows.
func (s *Store) read(ctx context.Context, cq compiler.CompiledQuery) ([]sqlite.RawRow, error) {
	rr := &readRequest{query: cq, reply: make(chan readResult, 1)}
	if !s.queue.Enqueue(request{read: rr}) {
		return nil, ErrClosed
	}
	select {
	case res := <-rr.reply:
		return res.rows, res.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
