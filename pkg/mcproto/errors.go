// Package mcproto implements the wire encoding used by the Minecraft
// (Java edition) handshake and status-ping protocol: VarInts, the
// length-prefixed packet envelope, and the JSON status response.
//
// Every read operation distinguishes two failure modes, mirrored by the two
// sentinel errors below: ErrIncomplete means the caller handed us a buffer
// that doesn't yet hold a full value and should read more and retry without
// discarding anything; ErrMalformed means the bytes present can never form a
// valid value no matter how much more arrives, and is fatal for the current
// probe. Merging the two would make a partially-arrived status response look
// identical to a protocol violation.
package mcproto

import "errors"

var (
	ErrIncomplete = errors.New("mcproto: incomplete")
	ErrMalformed  = errors.New("mcproto: malformed")
)
