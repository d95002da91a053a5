package store

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/google/uuid"
)

// ChangeSignal is the pluggable cross-process "something changed"
// capability for stores sharing a file. Delivery is at-least-once and
// content-free: a received signal says only that a peer committed an
// effect, so the receiver must invalidate conservatively.
type ChangeSignal interface {
	// Notify tells sibling processes that an effect committed here.
	Notify() error
	// Changes delivers peer signals. The channel closes on Close.
	Changes() <-chan struct{}
	// Close stops listening and releases resources.
	Close() error
}

// fileSignal implements ChangeSignal with a sentinel file next to the
// store file, rewritten on Notify and watched with fsnotify.
//
// Each Notify writes a fresh token; the watcher reads the file back and
// drops events carrying its own last-written token, so a process is not
// re-invalidated by its own commits.
type fileSignal struct {
	path    string
	watcher *fsnotify.Watcher
	changes chan struct{}

	mu        sync.Mutex
	lastToken string

	cancel context.CancelFunc
	done   chan struct{}
}

// newFileSignal creates the sentinel file signal for a store file.
func newFileSignal(storePath string) (*fileSignal, error) {
	path := storePath + ".changed"

	// The sentinel must exist before the directory watch starts, or a
	// peer's first Notify would look like an unrelated file creation.
	if err := os.WriteFile(path, nil, 0o644); err != nil {
		return nil, fmt.Errorf("change signal: create sentinel: %w", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("change signal: %w", err)
	}
	// Watch the directory, not the file: rewrites that replace the file
	// would silently drop a direct watch.
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("change signal: watch %s: %w", filepath.Dir(path), err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	s := &fileSignal{
		path:    path,
		watcher: watcher,
		changes: make(chan struct{}, 1),
		cancel:  cancel,
		done:    make(chan struct{}),
	}
	go s.watch(ctx)
	return s, nil
}

// Notify implements ChangeSignal.
func (s *fileSignal) Notify() error {
	token := uuid.Must(uuid.NewV7()).String()
	s.mu.Lock()
	s.lastToken = token
	s.mu.Unlock()

	if err := os.WriteFile(s.path, []byte(token), 0o644); err != nil {
		return fmt.Errorf("change signal: notify: %w", err)
	}
	return nil
}

// Changes implements ChangeSignal.
func (s *fileSignal) Changes() <-chan struct{} { return s.changes }

// Close implements ChangeSignal.
func (s *fileSignal) Close() error {
	s.cancel()
	err := s.watcher.Close()
	<-s.done
	return err
}

func (s *fileSignal) watch(ctx context.Context) {
	defer close(s.done)
	defer close(s.changes)

	base := filepath.Base(s.path)
	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-s.watcher.Events:
			if !ok {
				return
			}
			if filepath.Base(event.Name) != base {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			if s.ownToken() {
				continue
			}
			// Coalesce: a pending signal already covers this change.
			select {
			case s.changes <- struct{}{}:
			default:
			}

		case err, ok := <-s.watcher.Errors:
			if !ok {
				return
			}
			slog.Warn("change signal: watch error", "error", err)
		}
	}
}

// ownToken reports whether the sentinel currently carries this process's
// last-written token.
func (s *fileSignal) ownToken() bool {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastToken != "" && string(data) == s.lastToken
}
