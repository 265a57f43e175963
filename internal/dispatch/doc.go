// Package dispatch implements the event fan-out registry.
//
// Subscribers register per message type and receive every frame of that type
// synchronously with the inbound read that produced it. A panicking
// subscriber is recovered and logged; its siblings still run. Synthetic
// lifecycle events (connect, authenticated, disconnect, error) flow through
// the same registry as server-sent frames.
package dispatch
