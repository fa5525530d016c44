// Package store writes assembled tables to their destination.
//
// Three sinks share one table layout:
//   - SQLite (Open): a single-file database, the default
//   - Postgres (OpenPostgres): the same tables on a server
//   - JSONL (NewJSONLSink): one canonical JSON object per line per table
//
// Rows are keyed by game id plus sequence and ordinal columns. Inserts use
// ON CONFLICT DO NOTHING, so writing the same run twice leaves the
// database unchanged. Every run also records its table fingerprint in
// ingest_runs, which VerifyRun recomputes from the stored rows.
//
// # Database Configuration
//
//   - WAL mode: concurrent reads during writes
//   - synchronous=NORMAL: balance durability/performance
//   - busy_timeout=5000: wait for locks up to 5 seconds
//   - foreign_keys=ON: rows must reference a stored game
//
// Reads order rows by their key columns so results are identical across
// runs.
package store
