// Package store provides SQLite-backed storage for materialized tables.
//
// A stored table is a named ir.Table. The catalog records its schema and
// the kind of every column; rows live in a per-table data table whose
// columns are positional (c0, c1, ...), so column names never need to be
// valid SQL identifiers.
//
// # Column kinds
//
//   - int:  INTEGER
//   - bool: INTEGER 0 or 1
//   - str:  TEXT
//   - unit: NULL
//   - any:  column of a table saved with no rows
//
// Records, tables, abstractions and functions cannot be stored.
//
// # Determinism
//
// Rows are read back in insertion order (ORDER BY rowid). Each catalog
// entry carries the content key (ir.ValueKey) of the saved table, which
// LoadTable checks so a modified data table is reported instead of
// silently returned.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Catalog columns are removed with their table
//
// All statements are built as internal/queryir values and compiled by
// internal/querysql; values are always bound as parameters.
package store
