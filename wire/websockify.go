// File: wire/websockify.go
//
// Websockify composes Websocket over an arbitrary inner Codec so every
// inner handshake message and every inner data frame is tunneled inside
// exactly one WS binary frame. The WS phase retains the inner codec's Args
// so Inner.Accept/Inner.Connect can run once the WS upgrade completes.

package wire

type websockifyPhase int

const (
	wsPhaseWS websockifyPhase = iota
	wsPhaseInner
)

// Inner is the contract Websockify requires of its wrapped codec: the same
// shape as Codec, restated here (rather than embedding Codec[Args,Result]
// directly) because Go cannot express "Inner's own Args/Result type
// parameters" as a dependent type inside Websockify's own interface list
// without the caller choosing them explicitly at instantiation.
type Inner[Args any, Result any] interface {
	MinHandshakeSpace() int
	HeaderInLen(m int) int
	HeaderOutLen(m int) int
	Accept(args Args) (int, error)
	Connect(out []byte, args Args) (HandshakeEvent, error)
	Handshake(out []byte, in []byte) (*HandshakeEvent, error)
	Result() Result
	Encode(headerOut []byte, body []byte)
	Decode(headerIn []byte, body []byte) error
}

// Websockify wraps an Inner codec with a WS binary-frame tunnel.
type Websockify[Args any, Result any] struct {
	ws        Websocket
	inner     Inner[Args, Result]
	phase     websockifyPhase
	connect   bool
	innerArgs Args
}

// NewWebsockify returns a fresh Websockify codec wrapping the given inner
// codec instance.
func NewWebsockify[Args any, Result any](inner Inner[Args, Result]) *Websockify[Args, Result] {
	return &Websockify[Args, Result]{inner: inner}
}

func (c *Websockify[Args, Result]) innerHeaderIn(m int) int  { return c.inner.HeaderInLen(m) }
func (c *Websockify[Args, Result]) innerHeaderOut(m int) int { return c.inner.HeaderOutLen(m) }

func (c *Websockify[Args, Result]) MinHandshakeSpace() int {
	a := c.ws.MinHandshakeSpace()
	b := c.inner.MinHandshakeSpace()
	if a > b {
		return a
	}
	return b
}

// HeaderInLen composes: ws_in_header(M + inner_in(M)) + inner_in(M).
func (c *Websockify[Args, Result]) HeaderInLen(m int) int {
	innerIn := c.innerHeaderIn(m)
	return c.ws.HeaderInLen(m+innerIn) + innerIn
}

// HeaderOutLen composes the same shape for the outbound direction.
func (c *Websockify[Args, Result]) HeaderOutLen(m int) int {
	innerOut := c.innerHeaderOut(m)
	return c.ws.HeaderOutLen(m+innerOut) + innerOut
}

func (c *Websockify[Args, Result]) Result() Result { return c.inner.Result() }

// Accept begins in the WS phase.
func (c *Websockify[Args, Result]) Accept(args Args) (int, error) {
	c.innerArgs = args
	return c.ws.Accept(struct{}{})
}

// Connect begins in the WS phase and remembers that this side is the initiator.
func (c *Websockify[Args, Result]) Connect(out []byte, args Args) (HandshakeEvent, error) {
	c.innerArgs = args
	c.connect = true
	// Websocket has no client role in this repo; the initiator side of a
	// Websockify handshake drives the WS phase directly via Handshake once
	// bytes arrive from the peer, matching the symmetric-Inner path below.
	return HandshakeEvent{OutLen: 0, NextLen: c.ws.MinHandshakeSpace()}, nil
}

// Handshake dispatches to the WS phase until the upgrade completes, then to
// the Inner phase for the wrapped codec's own handshake.
func (c *Websockify[Args, Result]) Handshake(out []byte, in []byte) (*HandshakeEvent, error) {
	if c.phase == wsPhaseWS {
		ev, err := c.ws.Handshake(out, in)
		if err != nil {
			return nil, err
		}
		if ev == nil {
			return nil, nil
		}
		if ev.NextLen != 0 {
			// WS handshake still in progress.
			return ev, nil
		}

		// WS phase complete. The tag flips to Inner only on a successful
		// response emission (fixed Open Question: no-response accept path
		// is not reachable from a server-only Websocket, but the initiator
		// side reaches here with OutLen == 0 and must still flip).
		c.phase = wsPhaseInner

		if ev.OutLen > 0 {
			// Server wrote the 101 response; still need the Inner accept
			// handshake to start once the client's first Inner bytes arrive.
			innerNext, err := c.inner.Accept(c.innerArgs)
			if err != nil {
				return nil, err
			}
			nextLen := 0
			if innerNext > 0 {
				nextLen = c.ws.HeaderInLen(innerNext) + innerNext
			}
			return &HandshakeEvent{OutLen: ev.OutLen, NextLen: nextLen}, nil
		}

		// Initiator side: drive Inner.Connect and WS-encode its output.
		innerOut := make([]byte, c.inner.MinHandshakeSpace())
		innerEv, err := c.inner.Connect(innerOut, c.innerArgs)
		if err != nil {
			return nil, err
		}
		wsOutHdr := c.ws.HeaderOutLen(innerEv.OutLen)
		c.ws.Encode(out[:wsOutHdr], innerOut[:innerEv.OutLen])
		copy(out[wsOutHdr:], innerOut[:innerEv.OutLen])
		nextLen := 0
		if innerEv.NextLen > 0 {
			nextLen = c.ws.HeaderInLen(innerEv.NextLen) + innerEv.NextLen
		}
		return &HandshakeEvent{
			OutLen:  wsOutHdr + innerEv.OutLen,
			NextLen: nextLen,
		}, nil
	}

	// Inner phase: strip the WS frame, then pass the payload to Inner.
	hdrLen := wsHeaderLenForFrame(in)
	if hdrLen < 0 || len(in) < hdrLen {
		return nil, ErrFrameLengthInvalid
	}
	if err := c.ws.Decode(in[:hdrLen], in[hdrLen:]); err != nil {
		return nil, err
	}

	innerOut := make([]byte, c.inner.MinHandshakeSpace())
	innerEv, err := c.inner.Handshake(innerOut, in[hdrLen:])
	if err != nil {
		return nil, err
	}
	if innerEv == nil {
		return nil, nil
	}

	// innerEv.NextLen == 0 means the inner handshake is done: no more
	// handshake bytes are expected, steady-state framing takes over. A
	// nonzero NextLen here is ws.HeaderInLen's minimum frame-header size,
	// which would otherwise mask completion.
	nextLen := 0
	if innerEv.NextLen > 0 {
		nextLen = c.ws.HeaderInLen(innerEv.NextLen) + innerEv.NextLen
	}

	if innerEv.OutLen == 0 {
		return &HandshakeEvent{NextLen: nextLen, RemLen: innerEv.RemLen}, nil
	}

	wsOutHdr := c.ws.HeaderOutLen(innerEv.OutLen)
	c.ws.Encode(out[:wsOutHdr], innerOut[:innerEv.OutLen])
	copy(out[wsOutHdr:], innerOut[:innerEv.OutLen])
	return &HandshakeEvent{
		OutLen:  wsOutHdr + innerEv.OutLen,
		NextLen: nextLen,
		RemLen:  innerEv.RemLen,
	}, nil
}

// wsHeaderLenForFrame determines the 2/4-byte WS header length for an
// already-received frame by inspecting its 7-bit length field, then adds
// the 4-byte mask that is always present on client->server frames.
func wsHeaderLenForFrame(in []byte) int {
	if len(in) < 2 {
		return -1
	}
	lenField := in[1] &^ 0x80
	switch {
	case lenField <= 125:
		return 6
	case lenField == 126:
		return 8
	default:
		return -1 // FrameLengthTooLong, surfaced by ws.Decode
	}
}

// Encode first encodes the inner frame into header's tail, then writes the
// WS header over header's head: header must be exactly HeaderOutLen(len(body)).
func (c *Websockify[Args, Result]) Encode(header []byte, body []byte) {
	innerHdrLen := c.innerHeaderOut(len(body))
	wsHdrLen := len(header) - innerHdrLen
	innerHeader := header[wsHdrLen:]
	c.inner.Encode(innerHeader, body)
	c.ws.encodeLen(header[:wsHdrLen], innerHdrLen+len(body))
}

// Decode first WS-decodes (unmask, validate), then Inner-decodes.
func (c *Websockify[Args, Result]) Decode(header []byte, body []byte) error {
	wsHdrLen := wsHeaderLenForFrame(header)
	if wsHdrLen < 0 || wsHdrLen > len(header) {
		return ErrFrameLengthInvalid
	}
	innerHeader := header[wsHdrLen:]
	full := append(append([]byte{}, innerHeader...), body...)
	if err := c.ws.Decode(header[:wsHdrLen], full); err != nil {
		return err
	}
	copy(innerHeader, full[:len(innerHeader)])
	copy(body, full[len(innerHeader):])
	return c.inner.Decode(innerHeader, body)
}
