// Package ports defines the interfaces (ports) that connect the application
// layer to infrastructure adapters.
//
// Ports are the boundaries between the pipeline core and the outside world.
// They define what the core needs from external systems without specifying
// how those needs are fulfilled.
//
// # Port Interfaces
//
//   - [EntryWriter]: Commits a batch of entries to a backend destination
//   - [Monitor]: Receives progress, error and completion notifications
//   - [EntryReader]: Produces entries from an import source
//   - [ChangeNotifier]: Signals that a followed source has new data
//   - [Logger]: Structured logging abstraction
//   - [HTTPClient]: HTTP request abstraction for dependency injection
//
// # Usage
//
// The application layer (internal/app) depends only on these interfaces.
// Infrastructure adapters (internal/adapters) implement them with concrete
// backends (SQLite, Redis, Kafka, S3, HTTP, files, zerolog).
package ports
