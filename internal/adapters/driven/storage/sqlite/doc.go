// Package sqlite persists the knowledge base in a SQLite database.
//
// This adapter uses modernc.org/sqlite, a pure Go SQLite implementation that
// requires no CGO. It implements driven.KnowledgeRepository: knowledge items
// with their metadata and optional embedding vectors.
//
// # Schema
//
// The schema is managed through versioned migrations in the migrations/
// directory. Each migration is a pair of .up.sql and .down.sql files.
//
// # Data Location
//
// The database is stored at <data dir>/knowledge.db, by default
// ~/.tutorforge/knowledge.db.
//
// # Thread Safety
//
// All operations are safe for concurrent use. The store relies on SQLite
// locking in WAL mode.
package sqlite
