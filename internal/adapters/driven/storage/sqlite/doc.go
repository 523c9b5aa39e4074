// Package sqlite archives cache snapshots in a local SQLite file so the
// next CLI run starts with the projects and requests it last saw.
//
// Snapshots are stored as JSON documents keyed by project or request ID.
// Saving replaces the previous snapshot; nothing is ever merged in SQL.
// The database lives at ~/.duediligence/data/snapshots.db unless
// archive.path points elsewhere.
//
// modernc.org/sqlite is used so the binary builds without cgo. The schema
// is created from the embedded migrations/ directory and the database runs
// in WAL mode with a busy timeout, which lets a watcher process and a
// foreground command share the file.
package sqlite
