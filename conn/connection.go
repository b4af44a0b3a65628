// File: conn/connection.go
//
// Connection is the per-socket protocol state machine: init (accumulating a
// handshake) -> open (framed messages) -> closed. It owns exactly one
// socket and one codec instance, and drives both across a single
// readiness-triggered recv() call at a time — grounded on the teacher's
// NetConn abstraction (api/interfaces.go), rewritten single-threaded with
// no goroutines or channels per the single-threaded cooperative model this
// repo targets.

package conn

import (
	"errors"

	"github.com/nordholt/portkey/perr"
	"github.com/nordholt/portkey/wire"
)

// Socket abstracts the raw OS socket a Connection drives. Read/Write map
// directly onto read(2)/write(2). A short write closes the connection; a
// short read is accumulated, while a read that fails or returns zero bytes
// is treated as peer close, so Recv expects the socket to be readable.
type Socket interface {
	Fd() uintptr
	Read(b []byte) (int, error)
	Write(b []byte) (int, error)
	Close() error
}

type state int

const (
	stateInit state = iota
	stateOpen
	stateClosed
)

// EventKind tags the result of a Recv call.
type EventKind int

const (
	EventNone EventKind = iota
	EventOpen
	EventMessage
	EventClose
	EventFail
)

// Event is the nondestructive result Recv yields for one readiness wakeup.
type Event[Result any] struct {
	Kind    EventKind
	Open    Result // valid when Kind == EventOpen
	Message []byte // valid when Kind == EventMessage; aliases the protocol buffer body
	Err     error  // valid when Kind == EventFail
}

// Connection drives one socket through a Codec's handshake then steady-state
// framing. Args/Result mirror the codec's own handshake parameter/result
// types.
type Connection[Args any, Result any] struct {
	sock  Socket
	codec wire.Codec[Args, Result]

	st state

	hs         *wire.HandshakeBuffer
	pb         *wire.ProtocolBuffer
	messageLen int // fixed serialized size M of the application message type

	// outHeaderLen is codec.HeaderOutLen(messageLen); the header region pb
	// reserves is sized for the (possibly larger) inbound header, so an
	// outbound frame is written tail-aligned against the body and only that
	// tail-aligned slice is ever transmitted.
	outHeaderLen int
}

// NewConnection constructs a Connection in init state around sock and
// codec, with a handshake buffer sized to the codec's MinHandshakeSpace.
// messageLen is the compile-time-fixed serialized size of the application
// message type exchanged once the connection reaches open.
func NewConnection[Args any, Result any](sock Socket, codec wire.Codec[Args, Result], messageLen int) *Connection[Args, Result] {
	return &Connection[Args, Result]{
		sock:       sock,
		codec:      codec,
		st:         stateInit,
		hs:         wire.NewHandshakeBuffer(codec.MinHandshakeSpace()),
		messageLen: messageLen,
	}
}

// Fd exposes the underlying socket descriptor for reactor registration.
func (c *Connection[Args, Result]) Fd() uintptr { return c.sock.Fd() }

// Accept runs the codec's acceptor-side handshake initialization.
func (c *Connection[Args, Result]) Accept(args Args) error {
	nextLen, err := c.codec.Accept(args)
	if err != nil {
		return err
	}
	if nextLen == 0 {
		c.open()
		return nil
	}
	c.hs.Resize(nextLen)
	return nil
}

// Connect runs the codec's initiator-side handshake initialization and
// sends the first outbound chunk.
func (c *Connection[Args, Result]) Connect(args Args) error {
	out := make([]byte, c.codec.MinHandshakeSpace())
	ev, err := c.codec.Connect(out, args)
	if err != nil {
		return err
	}
	if ev.OutLen > 0 {
		if werr := c.writeAll(out[:ev.OutLen]); werr != nil {
			c.Close()
			return perr.ErrClosed
		}
	}
	if ev.NextLen == 0 {
		c.open()
		return nil
	}
	c.hs.Resize(ev.NextLen)
	return nil
}

func (c *Connection[Args, Result]) writeAll(b []byte) error {
	n, err := c.sock.Write(b)
	if err != nil || n != len(b) {
		return errors.New("conn: short write")
	}
	return nil
}

// open transitions to open with a newly allocated protocol buffer sized for
// the fixed application message length plus the larger of the inbound and
// outbound header lengths. The handshake buffer's region is not reused.
func (c *Connection[Args, Result]) open() {
	headerLen := c.codec.HeaderInLen(c.messageLen)
	outHeaderLen := c.codec.HeaderOutLen(c.messageLen)
	if outHeaderLen > headerLen {
		headerLen = outHeaderLen
	}
	c.pb = wire.NewProtocolBuffer(headerLen, c.messageLen)
	c.outHeaderLen = outHeaderLen
	c.st = stateOpen
}

// Send requires the connection be open; copies body into the protocol
// buffer, encodes a header_out-sized header tail-aligned against the body,
// and writes exactly header_out+M bytes, never the full (possibly larger)
// inbound-sized header region.
func (c *Connection[Args, Result]) Send(body []byte) error {
	if c.st == stateClosed {
		return perr.ErrClosed
	}
	if c.st != stateOpen {
		return perr.ErrNotReady
	}
	copy(c.pb.Body(), body)
	frame := c.pb.Full()[len(c.pb.Header())-c.outHeaderLen:]
	outHeader := frame[:c.outHeaderLen]
	c.codec.Encode(outHeader, c.pb.Body())
	if err := c.writeAll(frame); err != nil {
		c.Close()
		return perr.ErrClosed
	}
	return nil
}

// Recv performs one read and advances the state machine, yielding a
// nondestructive Event describing what happened.
func (c *Connection[Args, Result]) Recv() Event[Result] {
	switch c.st {
	case stateClosed:
		return Event[Result]{Kind: EventFail, Err: perr.ErrClosed}
	case stateInit:
		return c.recvInit()
	default:
		return c.recvOpen()
	}
}

func (c *Connection[Args, Result]) recvInit() Event[Result] {
	n, err := c.sock.Read(c.hs.ReadSlice())
	if err != nil || n == 0 {
		c.Close()
		return Event[Result]{Kind: EventFail, Err: perr.ErrClosed}
	}
	c.hs.Increment(n)

	out := make([]byte, c.codec.MinHandshakeSpace())
	ev, err := c.codec.Handshake(out, c.hs.AsSlice())
	if err != nil {
		c.Close()
		return Event[Result]{Kind: EventFail, Err: err}
	}
	if ev == nil {
		return Event[Result]{Kind: EventNone}
	}
	if ev.OutLen > 0 {
		if werr := c.writeAll(out[:ev.OutLen]); werr != nil {
			c.Close()
			return Event[Result]{Kind: EventFail, Err: perr.ErrClosed}
		}
	}
	if ev.NextLen > 0 {
		if ev.RemLen > 0 {
			tail := c.hs.Bytes()[c.hs.Pos()-ev.RemLen : c.hs.Pos()]
			copy(c.hs.Bytes(), tail)
		}
		c.hs.Resize(ev.NextLen)
		c.hs.Seek(ev.RemLen)
		return Event[Result]{Kind: EventNone}
	}

	result := c.codec.Result()
	c.open()
	return Event[Result]{Kind: EventOpen, Open: result}
}

func (c *Connection[Args, Result]) recvOpen() Event[Result] {
	if c.pb.IsFull() {
		c.pb.Clear()
	}
	n, err := c.sock.Read(c.pb.ReadSlice())
	if err != nil || n == 0 {
		c.Close()
		return Event[Result]{Kind: EventClose}
	}
	c.pb.Increment(n)
	if !c.pb.IsFull() {
		return Event[Result]{Kind: EventNone}
	}
	if err := c.codec.Decode(c.pb.Header(), c.pb.Body()); err != nil {
		return Event[Result]{Kind: EventFail, Err: err}
	}
	return Event[Result]{Kind: EventMessage, Message: c.pb.Body()}
}

// Close closes the socket exactly once and stamps the state closed.
func (c *Connection[Args, Result]) Close() {
	if c.st == stateClosed {
		return
	}
	c.st = stateClosed
	c.sock.Close()
}

// IsOpen reports whether the connection has completed its handshake.
func (c *Connection[Args, Result]) IsOpen() bool { return c.st == stateOpen }

// IsClosed reports whether Close has run.
func (c *Connection[Args, Result]) IsClosed() bool { return c.st == stateClosed }
