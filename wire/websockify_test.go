package wire_test

import (
	"bytes"
	"testing"

	"github.com/nordholt/portkey/wire"
)

// maskFrame builds a client->server masked binary WS frame carrying payload.
func maskFrame(mask [4]byte, payload []byte) []byte {
	frame := make([]byte, 6+len(payload))
	frame[0] = 0x82
	frame[1] = 0x80 | byte(len(payload))
	copy(frame[2:6], mask[:])
	for i, b := range payload {
		frame[6+i] = b ^ mask[i%4]
	}
	return frame
}

// TestWebsockifyCodedAccept exercises the server side of a WS-tunneled
// Coded handshake: a browser-style upgrade request, followed by one masked
// binary frame carrying the 16-byte code, matching this repo's S4 scenario.
func TestWebsockifyCodedAccept(t *testing.T) {
	code := wire.Code{0x0F, 0x00, 0x0D, 0xBE, 0xEF}
	wsi := wire.NewWebsockify[*wire.Code, struct{}](wire.NewCoded())

	if _, err := wsi.Accept(&code); err != nil {
		t.Fatalf("Accept: %v", err)
	}

	out := make([]byte, wsi.MinHandshakeSpace())
	ev, err := wsi.Handshake(out, []byte(wsTestRequest))
	if err != nil {
		t.Fatalf("Handshake (upgrade): %v", err)
	}
	if ev == nil {
		t.Fatalf("Handshake returned nil for a complete upgrade request")
	}
	if ev.NextLen != 22 { // 6-byte WS header + 16-byte code
		t.Fatalf("NextLen after upgrade = %d, want 22", ev.NextLen)
	}
	upgradeResp := append([]byte{}, out[:ev.OutLen]...)
	if !bytes.Contains(upgradeResp, []byte("101 Switching Protocols")) {
		t.Fatalf("upgrade response missing 101 status:\n%s", upgradeResp)
	}

	mask := [4]byte{0xAA, 0xBB, 0xCC, 0xDD}
	frame := maskFrame(mask, code[:])

	out2 := make([]byte, wsi.MinHandshakeSpace())
	ev2, err := wsi.Handshake(out2, frame)
	if err != nil {
		t.Fatalf("Handshake (inner code): %v", err)
	}
	if ev2 == nil {
		t.Fatalf("Handshake returned nil for a complete code frame")
	}
	if ev2.NextLen != 0 {
		t.Fatalf("NextLen after inner handshake = %d, want 0 (complete)", ev2.NextLen)
	}

	// Server's reply: a 2-byte unmasked WS header + the 16-byte echoed code.
	if ev2.OutLen != 18 {
		t.Fatalf("OutLen = %d, want 18", ev2.OutLen)
	}
	reply := out2[:ev2.OutLen]
	if reply[0] != 0x82 || reply[1] != 16 {
		t.Fatalf("reply WS header = % x, want FIN+binary with len 16", reply[:2])
	}
	if !bytes.Equal(reply[2:18], code[:]) {
		t.Fatalf("echoed code = % x, want % x", reply[2:18], code[:])
	}
}
