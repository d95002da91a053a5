// Package store provides the SQLite-backed persistence store: serialized
// mutation execution, one-shot fetches, and live-updating observations.
//
// # Execution model
//
// Every store owns exactly one run-loop goroutine and one engine handle.
// The loop is the only caller of engine operations - the engine is not
// safely reentrant from concurrent callers, so single-writer discipline
// is enforced structurally, not by locking inside the engine.
//
// Public operations enqueue a request and wait:
//   - Mutations (Insert, Update, Delete, Perform) are wrapped with a
//     fresh tag at submission; the loop consumes them strictly in
//     submission order, applies each to the engine, and answers on a
//     per-request reply channel keyed by that tag. Exactly one effect is
//     produced per action, even when zero rows are affected.
//   - Reads (Fetch and friends) travel through the same queue, so an
//     effect is visible to every fetch issued after its action completed.
//
// Abandoning a waiter (context cancellation) does not cancel queued
// engine work; the work still runs to completion and its result is
// discarded.
//
// # Observations
//
// Observe delivers an initial snapshot, then re-fetches after each
// committed effect whose table could affect the query. The test is
// table-level and conservative: it may re-fetch unnecessarily but never
// skips an invalidation. Snapshots are always complete results, never
// diffs, and one observation never overlaps its own re-fetches.
//
// # Cross-process coherence
//
// Stores sharing a file exchange content-free change signals (see
// ChangeSignal). A committed local effect notifies peers; a signal from
// a peer conservatively invalidates every open observation in the
// receiving process.
package store
