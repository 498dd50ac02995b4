// Package session provides session management for Math Quest.
//
// The session package implements:
//   - Thread-safe session storage and retrieval
//   - Unique session ID generation
//   - Session lifecycle management
//   - Optional file-based persistence across restarts
//   - Session cleanup and expiration
//
// Core Types:
//
// Manager is the main session manager that handles all session operations.
// FilePersistence stores session snapshots as JSON files so games survive a
// server restart. Each session holds its own engine instance plus metadata
// like creation time and last access time.
//
// Session Identifiers:
//
// Sessions use short 8-character IDs (the first segment of a UUID) so codes
// are easy to read out and share. Lookups are case-insensitive.
//
// Concurrency:
//
// The session manager is thread-safe and supports concurrent operations.
// Multiple goroutines can safely create, retrieve, and modify different
// sessions simultaneously. Internal locking ensures data consistency.
//
// Usage:
//
//	manager := session.NewManager()
//
//	// Create a new session
//	sess, err := manager.Create("", preset)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	// Retrieve existing session
//	sess, err = manager.Get(sessionID)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	// List all active sessions
//	sessions := manager.List()
//
// Cleanup:
//
// Sessions can be explicitly deleted or may expire based on inactivity.
// The manager provides cleanup methods for removing stale sessions and
// freeing resources.
package session
