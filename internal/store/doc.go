// Package store provides durable blob storage for flashdeck progress.
//
// The progress store persists its whole table as one serialized blob under a
// single key. This package supplies two backends for that slot:
//   - Store: SQLite-backed (github.com/mattn/go-sqlite3), one row per key
//   - Memory: in-process map with failure injection, for tests
//
// Both satisfy progress.Backend. Writes replace the whole value (last writer
// wins); each write bumps the row's revision counter.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - Single open connection: SQLite allows one writer
//
// Schema migrations are tracked with PRAGMA user_version.
package store
