// Package stubserver is a reference implementation of the endpoint
// contract for offline conformance checks and load runs.
//
// It enforces the X-Api-Key credential with a constant-time compare,
// validates token format and action names, and applies the
// LOGIN/ACTION/LOGOUT session semantics over an in-memory concurrent
// session table. A configurable failure rate simulates backing-service
// unavailability.
//
// Concurrent requests for one token are serialized per shard of the
// session table, but the contract promises nothing about their
// interleaving; clients are expected to issue per-token requests
// sequentially.
package stubserver
