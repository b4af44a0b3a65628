package conn_test

import (
	"errors"
	"testing"

	"github.com/nordholt/portkey/conn"
	"github.com/nordholt/portkey/wire"
)

// pipeSocket is an in-memory Socket backed by two byte queues, standing in
// for a connected TCP socket in tests.
type pipeSocket struct {
	in  *[]byte
	out *[]byte
}

func (p *pipeSocket) Fd() uintptr { return 0 }

func (p *pipeSocket) Read(b []byte) (int, error) {
	if len(*p.in) == 0 {
		return 0, errors.New("pipeSocket: would block")
	}
	n := copy(b, *p.in)
	*p.in = (*p.in)[n:]
	return n, nil
}

func (p *pipeSocket) Write(b []byte) (int, error) {
	*p.out = append(*p.out, b...)
	return len(b), nil
}

func (p *pipeSocket) Close() error { return nil }

func newPipePair() (a, b *pipeSocket) {
	buf1 := make([]byte, 0, 256)
	buf2 := make([]byte, 0, 256)
	a = &pipeSocket{in: &buf2, out: &buf1}
	b = &pipeSocket{in: &buf1, out: &buf2}
	return a, b
}

func feedByte(t *testing.T, sock *pipeSocket, b byte) {
	t.Helper()
	*sock.in = append(*sock.in, b)
}

func TestConnectionCodedHandshakeAndEcho(t *testing.T) {
	serverSock, clientSock := newPipePair()

	code := wire.Code{0x0F, 0x00, 0x0D, 0xBE, 0xEF, 0x0F, 0x00, 0x0D, 0xBE, 0xEF, 0x0F, 0x00, 0x0D, 0xBE, 0xEF, 0x0F}
	const messageLen = 22

	server := conn.NewConnection[*wire.Code, struct{}](serverSock, wire.NewCoded(), messageLen)
	client := conn.NewConnection[*wire.Code, struct{}](clientSock, wire.NewCoded(), messageLen)

	if err := server.Accept(&code); err != nil {
		t.Fatalf("server accept: %v", err)
	}
	if err := client.Connect(&code); err != nil {
		t.Fatalf("client connect: %v", err)
	}

	// Server reads the client's code, replies with its own.
	ev := server.Recv()
	if ev.Kind != conn.EventOpen {
		t.Fatalf("server expected open, got kind %v err %v", ev.Kind, ev.Err)
	}

	// Client reads the server's echoed code.
	ev = client.Recv()
	if ev.Kind != conn.EventOpen {
		t.Fatalf("client expected open, got kind %v err %v", ev.Kind, ev.Err)
	}

	if !server.IsOpen() || !client.IsOpen() {
		t.Fatal("expected both sides open")
	}

	msg := []byte("Hello from the client!")
	if len(msg) != messageLen {
		t.Fatalf("fixture message length mismatch: %d", len(msg))
	}
	if err := client.Send(msg); err != nil {
		t.Fatalf("client send: %v", err)
	}

	ev = server.Recv()
	if ev.Kind != conn.EventMessage {
		t.Fatalf("server expected message, got kind %v err %v", ev.Kind, ev.Err)
	}
	if string(ev.Message) != string(msg) {
		t.Fatalf("server got %q, want %q", ev.Message, msg)
	}
}

func TestConnectionCodedWrongCode(t *testing.T) {
	serverSock, clientSock := newPipePair()

	goodCode := wire.Code{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15, 16}
	badCode := wire.Code{9, 9, 9, 9, 9, 9, 9, 9, 9, 9, 9, 9, 9, 9, 9, 9}

	server := conn.NewConnection[*wire.Code, struct{}](serverSock, wire.NewCoded(), 4)
	client := conn.NewConnection[*wire.Code, struct{}](clientSock, wire.NewCoded(), 4)

	if err := server.Accept(&goodCode); err != nil {
		t.Fatalf("server accept: %v", err)
	}
	if err := client.Connect(&badCode); err != nil {
		t.Fatalf("client connect: %v", err)
	}

	ev := server.Recv()
	if ev.Kind != conn.EventFail {
		t.Fatalf("expected fail on wrong code, got kind %v", ev.Kind)
	}
	if !server.IsClosed() {
		t.Fatal("expected connection closed after wrong code")
	}
}

func TestConnectionPartialHandshakeReads(t *testing.T) {
	serverSock, _ := newPipePair()
	code := wire.Code{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15, 16}

	server := conn.NewConnection[*wire.Code, struct{}](serverSock, wire.NewCoded(), 4)
	if err := server.Accept(&code); err != nil {
		t.Fatalf("accept: %v", err)
	}
	// drain the client socket's queue directly, one byte at a time.
	payload := append([]byte{}, code[:]...)
	*serverSock.in = nil
	for i, b := range payload {
		feedByte(t, serverSock, b)
		ev := server.Recv()
		if i < len(payload)-1 {
			if ev.Kind != conn.EventNone {
				t.Fatalf("byte %d: expected none, got %v", i, ev.Kind)
			}
		} else {
			if ev.Kind != conn.EventOpen {
				t.Fatalf("final byte: expected open, got %v err %v", ev.Kind, ev.Err)
			}
		}
	}
}
