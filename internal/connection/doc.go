// Package connection implements the per-channel Connection Core.
//
// A Core owns one transport connection's full lifecycle:
//   - connect / identify / disconnect, guarded against re-entrant calls
//   - heartbeat probe and latency sampling while connected
//   - exponential-backoff reconnection up to a bounded attempt count
//   - stats counters exposed as a read-only snapshot
//
// Inbound frames and synthetic lifecycle events are pushed into the shared
// event sink; the Core never calls back into application code directly.
package connection
