// File: client/client.go
//
// Client is the single-connection analogue of Server: same state machine,
// with an additional connecting state for platforms where TCP connect is
// asynchronous. On this module's target (blocking connect via
// golang.org/x/sys/unix.Connect), connect completes synchronously, so
// Client passes through connecting on its way from disconnected to
// connected within a single Connect call.

package client

import (
	"time"

	"github.com/nordholt/portkey/conn"
	"github.com/nordholt/portkey/perr"
	"github.com/nordholt/portkey/reactor"
	"github.com/nordholt/portkey/wire"
)

type clientState int

const (
	stateDisconnected clientState = iota
	stateConnecting
	stateConnected
)

// Events mirrors server.Callbacks for a single connection.
type Events[Result any] struct {
	OnOpen    func(result Result)
	OnMessage func(body []byte)
	OnClose   func()
}

// Client drives one Connection[Args, Result] from its own readiness handle.
type Client[Args any, Result any] struct {
	cfg   *Config
	react reactor.EventReactor
	c     *conn.Connection[Args, Result]
	st    clientState
}

// New constructs a disconnected Client from cfg (or DefaultConfig if nil)
// adjusted by opts.
func New[Args any, Result any](cfg *Config, opts ...Option) (*Client[Args, Result], error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	for _, opt := range opts {
		opt(cfg)
	}
	react, err := reactor.NewReactor()
	if err != nil {
		return nil, err
	}
	return &Client[Args, Result]{cfg: cfg, react: react, st: stateDisconnected}, nil
}

// Connect takes an already-connected socket (see DialTCP), runs the codec's
// initiator handshake step, and registers the socket for readiness.
func (cl *Client[Args, Result]) Connect(sock conn.Socket, codec wire.Codec[Args, Result], args Args) error {
	if cl.st != stateDisconnected {
		return perr.ErrAlreadyListening
	}
	cl.st = stateConnecting
	c := conn.NewConnection[Args, Result](sock, codec, cl.cfg.MessageLen)
	if err := c.Connect(args); err != nil {
		cl.st = stateDisconnected
		return err
	}
	if err := cl.react.Register(sock.Fd(), 0); err != nil {
		cl.st = stateDisconnected
		return err
	}
	cl.c = c
	cl.st = stateConnected
	return nil
}

// Poll blocks up to the client's configured wait duration for readiness on
// its single connection and dispatches at most one event.
func (cl *Client[Args, Result]) Poll(ev Events[Result]) error {
	if cl.st != stateConnected {
		return perr.ErrNotListening
	}
	events := make([]reactor.Event, 1)
	n, err := cl.react.Wait(events, int(cl.cfg.WaitTimeout/time.Millisecond))
	if err != nil || n == 0 {
		return err
	}
	if !events[0].Readable && !events[0].Error {
		return nil // write readiness alone has nothing to recv
	}

	e := cl.c.Recv()
	switch e.Kind {
	case conn.EventOpen:
		if ev.OnOpen != nil {
			ev.OnOpen(e.Open)
		}
	case conn.EventMessage:
		if ev.OnMessage != nil {
			ev.OnMessage(e.Message)
		}
	case conn.EventClose, conn.EventFail:
		cl.react.Unregister(cl.c.Fd())
		cl.st = stateDisconnected
		if ev.OnClose != nil {
			ev.OnClose()
		}
	}
	return nil
}

// Send forwards body to the underlying Connection.
func (cl *Client[Args, Result]) Send(body []byte) error {
	if cl.st != stateConnected {
		return perr.ErrNotReady
	}
	return cl.c.Send(body)
}

// Close closes the underlying connection and releases the reactor.
func (cl *Client[Args, Result]) Close() error {
	if cl.c != nil {
		cl.react.Unregister(cl.c.Fd())
		cl.c.Close()
	}
	cl.st = stateDisconnected
	return cl.react.Close()
}

// IsOpen reports whether the handshake has completed.
func (cl *Client[Args, Result]) IsOpen() bool {
	return cl.st == stateConnected && cl.c != nil && cl.c.IsOpen()
}
