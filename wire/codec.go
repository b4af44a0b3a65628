// File: wire/codec.go
//
// Codec is the contract every handshake/transport implementation satisfies:
// Coded, AE, Websocket, and Websockify[Inner]. Each codec type is
// instantiated fresh per connection and carries its own handshake scratch
// state as receiver fields, so there is no separate "Data" type threaded
// through every call the way the source's trait-with-associated-state does
// it — the codec value itself is the per-connection state.

package wire

// HandshakeEvent is the result of one handshake step.
type HandshakeEvent struct {
	// OutLen is the number of bytes of the codec's out-buffer to send.
	OutLen int
	// NextLen is the size of the next inbound chunk to read; 0 means the
	// handshake is complete.
	NextLen int
	// RemLen is the number of still-unconsumed bytes at the tail of the
	// input that must be carried over into the next read.
	RemLen int
}

// Codec is the per-connection handshake/transport contract. Args are
// externally supplied parameters; Result is the value produced on
// handshake completion.
type Codec[Args any, Result any] interface {
	// MinHandshakeSpace is the upper bound on scratch bytes any single
	// handshake exchange needs.
	MinHandshakeSpace() int

	// HeaderInLen returns the received-frame prefix size for a body of M bytes.
	HeaderInLen(m int) int
	// HeaderOutLen returns the sent-frame prefix size for a body of M bytes.
	HeaderOutLen(m int) int

	// Accept initializes acceptor state; returns the number of bytes wanted
	// for the first inbound chunk (0 transitions directly to open).
	Accept(args Args) (nextInLen int, err error)

	// Connect initializes initiator state and populates the first outbound
	// chunk into out.
	Connect(out []byte, args Args) (HandshakeEvent, error)

	// Handshake consumes the inbound chunk that just arrived. A nil event
	// with nil error requests more bytes (partial consumption).
	Handshake(out []byte, in []byte) (*HandshakeEvent, error)

	// Result returns the finalization value once NextLen first hits 0.
	Result() Result

	// Encode frames a single outbound message in place.
	Encode(headerOut []byte, body []byte)

	// Decode validates/decrypts a single inbound frame in place.
	Decode(headerIn []byte, body []byte) error
}
