// Package store provides persistence backends for the rule configuration
// document.
//
// A DocumentStore saves and loads the serialized configuration as an
// opaque byte payload; the repository owns the JSON encoding. Three
// backends are available: FileStore (a single JSON file, the canonical
// layout), SQLiteStore (the same document in a one-row SQLite table),
// and MemoryStore for tests.
package store
