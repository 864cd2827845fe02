// Package domain contains the core domain entities and value objects for entryship.
//
// This package is the innermost layer of the application. It has no
// dependencies on infrastructure concerns (databases, HTTP, file system,
// logging) and holds only data shapes and sentinel errors.
//
// # Entities
//
//   - [Entry]: one opaque record read by an import and destined for a backend
//   - [Batch]: an ordered group of entries committed as one write
//   - [Progress]: a read/persisted snapshot reported to observers
//
// Entries are never inspected here. Adapters decide how to serialize them.
package domain
