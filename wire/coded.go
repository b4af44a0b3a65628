// File: wire/coded.go
//
// Coded is the plain shared-secret handshake: both peers exchange the same
// 16-byte code and compare it byte-for-byte. No encryption, no framing
// header, unit Result.

package wire

import "bytes"

// Code is the 16-byte shared secret exchanged by Coded.
type Code [16]byte

// Coded implements Codec[*Code, struct{}].
type Coded struct {
	code Code
	sent bool
}

// NewCoded returns a fresh Coded codec instance for one connection.
func NewCoded() *Coded { return &Coded{} }

func (c *Coded) MinHandshakeSpace() int   { return 16 }
func (c *Coded) HeaderInLen(m int) int    { return 0 }
func (c *Coded) HeaderOutLen(m int) int   { return 0 }
func (c *Coded) Result() struct{}         { return struct{}{} }
func (c *Coded) Encode(header, body []byte) {}
func (c *Coded) Decode(header, body []byte) error { return nil }

// Accept records the expected code and waits for 16 bytes from the initiator.
func (c *Coded) Accept(args *Code) (int, error) {
	c.code = *args
	return 16, nil
}

// Connect sends the code first, then waits for 16 bytes back.
func (c *Coded) Connect(out []byte, args *Code) (HandshakeEvent, error) {
	c.code = *args
	copy(out, args[:])
	c.sent = true
	return HandshakeEvent{OutLen: 16, NextLen: 16}, nil
}

// Handshake compares the inbound 16 bytes against the expected code.
func (c *Coded) Handshake(out []byte, in []byte) (*HandshakeEvent, error) {
	if len(in) < 16 {
		return nil, nil
	}
	var got Code
	copy(got[:], in[:16])
	if !bytes.Equal(got[:], c.code[:]) {
		return nil, ErrWrongCode
	}
	if c.sent {
		return &HandshakeEvent{OutLen: 0, NextLen: 0}, nil
	}
	copy(out, c.code[:])
	c.sent = true
	return &HandshakeEvent{OutLen: 16, NextLen: 0}, nil
}
