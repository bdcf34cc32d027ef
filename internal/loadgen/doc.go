// Package loadgen implements the load-simulation engine.
//
// An Engine runs an arbitrary population of virtual users concurrently.
// Each user owns one token, one session-state oracle, and a private
// weighted scheduler, and models realistic behavior:
//
//   - on start: generate a token and LOGIN
//   - loop: think-time delay, then ACTION (weight 3) or LOGOUT (weight 1)
//   - on LOGOUT success: fresh token, LOGIN again (session churn)
//
// Every request is classified as success or failure; a failed request
// is recorded and the user's loop continues. Aggregate throughput,
// latency, and failure rates are collected in Stats and exported via
// the Prometheus registry.
package loadgen
