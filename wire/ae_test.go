package wire_test

import (
	"crypto/ed25519"
	"crypto/rand"
	"testing"

	"github.com/nordholt/portkey/wire"
)

func genAEArgs(t *testing.T) *wire.AEArgs {
	t.Helper()
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		t.Fatal(err)
	}
	return &wire.AEArgs{Private: priv, Public: pub}
}

// aeStep feeds one handshake message into dst, returning dst's reply (empty
// when dst has nothing to send) and whether dst reported NextLen == 0.
func aeStep(t *testing.T, dst *wire.AE, in []byte) (reply []byte, done bool) {
	t.Helper()
	out := make([]byte, dst.MinHandshakeSpace())
	ev, err := dst.Handshake(out, in)
	if err != nil {
		t.Fatalf("Handshake: %v", err)
	}
	if ev == nil {
		t.Fatalf("Handshake returned nil event on a full-length message")
	}
	return append([]byte{}, out[:ev.OutLen]...), ev.NextLen == 0
}

// driveAEHandshake runs Accept/Connect/Handshake to completion between two
// fresh AE codecs and returns both, open and ready for Encode/Decode.
func driveAEHandshake(t *testing.T) (acceptor, initiator *wire.AE) {
	t.Helper()
	acceptor = wire.NewAE()
	initiator = wire.NewAE()

	if _, err := acceptor.Accept(genAEArgs(t)); err != nil {
		t.Fatalf("Accept: %v", err)
	}
	connectOut := make([]byte, initiator.MinHandshakeSpace())
	ev, err := initiator.Connect(connectOut, genAEArgs(t))
	if err != nil {
		t.Fatalf("Connect: %v", err)
	}
	msg := append([]byte{}, connectOut[:ev.OutLen]...)

	// acceptor <- initiator M_keys; acceptor -> initiator M_keys
	msg, _ = aeStep(t, acceptor, msg)
	// initiator <- acceptor M_keys; initiator -> acceptor M_sig
	msg, _ = aeStep(t, initiator, msg)
	// acceptor <- initiator M_sig; acceptor -> initiator M_sig; acceptor done
	msg, done := aeStep(t, acceptor, msg)
	if !done {
		t.Fatalf("acceptor did not finish after verifying initiator's signature")
	}
	// initiator <- acceptor M_sig; initiator done
	_, done = aeStep(t, initiator, msg)
	if !done {
		t.Fatalf("initiator did not finish after verifying acceptor's signature")
	}
	return acceptor, initiator
}

func TestAEHandshakeDerivesMatchingKey(t *testing.T) {
	acceptor, initiator := driveAEHandshake(t)

	header := make([]byte, acceptor.HeaderOutLen(0))
	plain := []byte("a 32 byte fixed application msg!")
	body := append([]byte{}, plain...)

	acceptor.Encode(header, body)
	if err := initiator.Decode(header, body); err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if string(body) != string(plain) {
		t.Fatalf("decoded body = %q, want %q", body, plain)
	}
}

func TestAEBitFlipCorruptsMessage(t *testing.T) {
	acceptor, initiator := driveAEHandshake(t)

	header := make([]byte, acceptor.HeaderOutLen(0))
	body := []byte("another 32 byte fixed app msg!!!")
	acceptor.Encode(header, body)

	header[0] ^= 0x01 // flip one bit of the nonce

	if err := initiator.Decode(header, body); err != wire.ErrMessageCorrupted {
		t.Fatalf("Decode after bit flip = %v, want ErrMessageCorrupted", err)
	}
}

func TestAETamperedSignatureFailsHandshake(t *testing.T) {
	acceptor := wire.NewAE()
	initiator := wire.NewAE()

	if _, err := acceptor.Accept(genAEArgs(t)); err != nil {
		t.Fatal(err)
	}
	connectOut := make([]byte, initiator.MinHandshakeSpace())
	ev, err := initiator.Connect(connectOut, genAEArgs(t))
	if err != nil {
		t.Fatal(err)
	}
	msg := append([]byte{}, connectOut[:ev.OutLen]...)

	msg, _ = aeStep(t, acceptor, msg) // acceptor consumes/replies M_keys
	msg, _ = aeStep(t, initiator, msg) // initiator consumes M_keys, emits M_sig

	msg[0] ^= 0x01 // tamper with the initiator's signature bytes

	out := make([]byte, acceptor.MinHandshakeSpace())
	if _, err := acceptor.Handshake(out, msg); err != wire.ErrHandshakeFailed {
		t.Fatalf("acceptor verify of tampered signature = %v, want ErrHandshakeFailed", err)
	}
}
