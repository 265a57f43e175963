// Package transport provides the WebSocket layer under the connection cores.
//
// A Socket wraps one gorilla/websocket connection:
//   - serialized writes with a write deadline
//   - a read loop feeding a buffered message channel
//   - read errors surfaced on a dedicated error channel
//   - optional gzip payload compression
//
// Sockets are single-use: once the read loop exits the socket is dead and the
// owning core dials a fresh one.
package transport
