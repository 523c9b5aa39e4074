// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
// These must be provided for the application to function:
//
//   - Backend: Typed access to the questionnaire backend (REST)
//   - SnapshotStore: Observable in-process cache of projects, requests and answers
//   - ConfigStore: Application configuration
//
// # Optional Interfaces
//
// These can be nil - the application degrades gracefully:
//
//   - SnapshotArchive: Persists cache snapshots between runs (SQLite, Redis).
//     Without it the cache starts empty on every run.
//   - JobEventPublisher: Publishes terminal job events (RabbitMQ).
//     Without it events are only delivered to in-process subscribers.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter package
package driven
