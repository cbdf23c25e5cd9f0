// Package filesystem abstracts the few filesystem reads the migrator makes so
// the orchestrator can be tested against in-memory dumps.
//
// Implementations:
//   - OSFileSystem: Production implementation using OS filesystem
//   - MemoryFileSystem: In-memory implementation for testing
package filesystem
