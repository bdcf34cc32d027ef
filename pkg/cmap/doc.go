// Package cmap provides a concurrent map for session-state tracking.
//
// This package implements a sharded concurrent map with per-shard
// RWMutex locking, used by the stub server to hold per-token session
// state under concurrent load:
//
//   - Sharding: configurable power-of-two shard count
//   - Fine-grained locking: per-shard RWMutex for minimal contention
//   - Atomic read-modify-write via Update
//   - Safe iteration while holding read locks
//
// Usage:
//
//	m := cmap.New[State]()
//	m.Set(token, StateAuthenticated)
//	state, ok := m.Get(token)
//
// All operations are safe for concurrent use.
package cmap
