// Package sqlite is the embedded relational engine handle.
//
// It owns the database/sql connection over mattn/go-sqlite3 and exposes
// exactly the operations the store pipeline needs: schema introspection,
// table creation, and execution of compiled select/insert/update/delete
// ASTs.
//
// The handle is not safe for concurrent callers; the store's serialized
// execution loop is structurally its only caller. The connection pool is
// pinned to a single connection, which also keeps in-memory databases
// alive and avoids SQLITE_BUSY under write contention.
package sqlite
