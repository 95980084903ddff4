// Package session provides session management for 2048 games.
//
// The session package implements:
//   - Thread-safe session storage and retrieval
//   - Unique session ID generation
//   - Pluggable persistence (JSON files or Redis)
//   - Session cleanup and expiration
//
// Core Types:
//
// Manager keeps live sessions in memory, keyed case-insensitively, and falls
// back to a SessionPersistence when a session is not resident. Each session
// owns its own engine instance, so sessions never share grid state.
//
// Session Identifiers:
//
// Generated IDs are 4 hex characters from crypto/rand. Caller-chosen IDs may
// use letters, digits, '-' and '_', up to 64 characters.
//
// Persistence:
//
// FilePersistence writes one JSON document per session, replacing it
// atomically on save. RedisPersistence stores the same document under a
// prefixed key with an optional TTL and indexes IDs in a sorted set scored
// by expiry, pruning stale entries when listing.
//
// Both store the config ID rather than the config itself; loading rebuilds
// the engine from the config manager and restores the saved state into it.
//
// Usage:
//
//	persistence, err := session.NewFilePersistence("sessions", configManager)
//	if err != nil {
//		return err
//	}
//	manager := session.NewManagerWithPersistence(persistence)
//	if err := manager.LoadPersistedSessions(); err != nil {
//		return err
//	}
//
//	sess, err := manager.Create("", config)
//	if err != nil {
//		return err
//	}
//	err = manager.Save(sess.ID)
package session
