// Package queue persists script items in SQLite and exposes the status state
// machine that drives their lifecycle.
//
// The Store manages database connections, schema initialization, stats queries,
// stuck-item recovery, and maintenance helpers (retry, clear). Script items
// capture the source text, an opaque external row handle, per-phase artifacts,
// and a failure reason recorded once when an item exits the pipeline.
//
// The database is treated as transient storage for in-flight batches rather
// than a long-term archive. Schema changes bump the version in schema.go;
// users clear the database to adopt the new schema.
//
// Treat this package as the single source of truth for status semantics; when
// you add new statuses or artifact fields, update schema.sql and bump
// schemaVersion.
package queue
