// File: wire/errors.go
//
// Sentinel errors for the wire-level closed error sets spec.md §7 names:
// handshake failures and framing/decode failures. Lifecycle and admission
// errors (Closed, NotReady, OutOfSpace, ...) live in perr instead — nothing
// at this layer needs to carry extra context, so plain sentinel vars are
// enough (grounded on the teacher's sentinel-error-var idiom, minus the
// Code/Context struct machinery no caller here needs).

package wire

import "errors"

// Handshake errors.
var (
	ErrWrongCode       = errors.New("wire: wrong code")
	ErrHandshakeFailed = errors.New("wire: handshake failed")
	ErrNotSupported    = errors.New("wire: operation not supported by this codec")
)

// Framing / decode errors.
var (
	ErrMessageCorrupted   = errors.New("wire: message corrupted")
	ErrFrameLengthInvalid = errors.New("wire: frame length invalid")
	ErrFrameLengthTooLong = errors.New("wire: frame length too long (64-bit lengths unsupported)")
	ErrNotMasked          = errors.New("wire: client frame not masked")
	ErrReservedBitSet     = errors.New("wire: reserved bit set")
	ErrOpcodeNotBinary    = errors.New("wire: opcode not binary")
	ErrMultiFrameMessage  = errors.New("wire: fragmented frame unsupported")
)

// WebSocket handshake errors.
var (
	ErrInvalidHeader     = errors.New("wire: invalid header line")
	ErrInvalidUpgrade    = errors.New("wire: invalid Upgrade header")
	ErrInvalidConnection = errors.New("wire: invalid Connection header")
	ErrInvalidVersion    = errors.New("wire: invalid Sec-WebSocket-Version")
	ErrInvalidRequest    = errors.New("wire: invalid request line")
	ErrInvalidKey        = errors.New("wire: invalid Sec-WebSocket-Key")
	ErrMissingLine       = errors.New("wire: missing required header line")
)
