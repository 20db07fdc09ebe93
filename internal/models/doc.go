// Package models defines the in-memory catalog assembled for a single locale export and the persisted run ledger entry.
//
// Catalog entities:
//   - [Catalog] : every [Game] observed for one locale, keyed by id
//   - [Game] : a catalog title with related-game names, release year and its owned [Track] mapping
//   - [Track] : a game's track with duration, loop/best flags and three playlist membership sets
//   - [StringSet] : unordered set sorted only when serialized
//
// Persisted entities implement [Model]:
//   - [Run] : one locale export attempt recorded in the SQLite ledger
package models
