// Package voice implements the privileged voice-call channel.
//
// The channel rides its own connection core and adds a second handshake
// step: after the transport connects, the caller authenticates with a
// bearer token and role. Privileged commands are rejected locally until
// that handshake succeeds, so nothing is silently dropped on the wire.
//
// Authentication never survives a reconnect. The session is cleared on
// every disconnect and the caller must re-run Authenticate; credentials
// are never replayed automatically.
package voice
