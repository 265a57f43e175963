// Package protocol defines the wire format shared with the APEX gateway.
//
// Frames are JSON objects with a "type" discriminator and the payload
// fields inlined at the top level:
//
//	{"type": "heartbeat", "client_time": 1712345678901}
//
// The type strings are part of the server contract and must not change.
package protocol
