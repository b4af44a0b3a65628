// File: wire/ae.go
//
// AE is the authenticated-encrypted handshake: X25519 key agreement with
// Ed25519 long-term identity signatures over the exchanged ephemeral keys,
// a Blake2b-256 keyed hash to derive the session key, and XChaCha20-Poly1305
// for steady-state framing. Grounded on the X25519/Ed25519 shape surveyed in
// the reflex handshake package, adapted to this repo's explicit two-phase
// keys-then-signature exchange and raw scalar/low-order retry loop.

package wire

import (
	"crypto/ed25519"
	"crypto/rand"

	"golang.org/x/crypto/blake2b"
	"golang.org/x/crypto/chacha20poly1305"
	"golang.org/x/crypto/curve25519"
)

const (
	aeMKeysLen = 64
	aeMSigLen  = 96
	aeDataLen  = 40 // header_in_len = header_out_len = nonce[24] + mac[16]
)

type aeSendState int

const (
	aeSendNone aeSendState = iota
	aeSendKeys
	aeSendSignature
)

func (s aeSendState) size() int {
	switch s {
	case aeSendKeys:
		return aeMKeysLen
	case aeSendSignature:
		return aeMSigLen
	default:
		return 0
	}
}

// AEArgs is the local long-term Ed25519 signing key pair.
type AEArgs struct {
	Private ed25519.PrivateKey
	Public  ed25519.PublicKey
}

// AE implements Codec[*AEArgs, ed25519.PublicKey].
type AE struct {
	acceptNonce  [32]byte
	acceptDH     [32]byte
	connectNonce [32]byte
	connectDH    [32]byte
	foreignEdDSA [32]byte

	ourScalar [32]byte
	local     AEArgs

	accepting bool
	sending   aeSendState
	awaiting  aeSendState

	sharedKey [32]byte
}

// NewAE returns a fresh AE codec instance for one connection.
func NewAE() *AE { return &AE{} }

func (a *AE) MinHandshakeSpace() int { return aeMSigLen }
func (a *AE) HeaderInLen(m int) int  { return aeDataLen }
func (a *AE) HeaderOutLen(m int) int { return aeDataLen }
func (a *AE) Result() ed25519.PublicKey {
	out := make([]byte, 32)
	copy(out, a.foreignEdDSA[:])
	return ed25519.PublicKey(out)
}

func (a *AE) dhScalar() ([32]byte, [32]byte, error) {
	for {
		var scalar [32]byte
		if _, err := rand.Read(scalar[:]); err != nil {
			return [32]byte{}, [32]byte{}, err
		}
		pub, err := curve25519.X25519(scalar[:], curve25519.Basepoint)
		if err != nil {
			continue // low-order scalar, retry
		}
		var pubArr [32]byte
		copy(pubArr[:], pub)
		return scalar, pubArr, nil
	}
}

// Accept initializes acceptor state: random nonce+DH key, reads 64 bytes.
func (a *AE) Accept(args *AEArgs) (int, error) {
	a.local = *args
	if _, err := rand.Read(a.acceptNonce[:]); err != nil {
		return 0, err
	}
	scalar, pub, err := a.dhScalar()
	if err != nil {
		return 0, err
	}
	a.ourScalar = scalar
	a.acceptDH = pub
	a.accepting = true
	a.sending = aeSendKeys
	a.awaiting = aeSendKeys
	return aeMKeysLen, nil
}

// Connect initializes initiator state, emits M_keys in initiator layout.
func (a *AE) Connect(out []byte, args *AEArgs) (HandshakeEvent, error) {
	a.local = *args
	if _, err := rand.Read(a.connectNonce[:]); err != nil {
		return HandshakeEvent{}, err
	}
	scalar, pub, err := a.dhScalar()
	if err != nil {
		return HandshakeEvent{}, err
	}
	a.ourScalar = scalar
	a.connectDH = pub
	a.accepting = false
	a.sending = aeSendSignature
	a.awaiting = aeSendKeys

	// initiator M_keys layout: {key[32], nonce[32]}
	copy(out[0:32], a.connectDH[:])
	copy(out[32:64], a.connectNonce[:])

	return HandshakeEvent{OutLen: aeMKeysLen, NextLen: aeMKeysLen}, nil
}

// localKeysView returns the 64-byte M_keys view this side sent for its own
// role, used as the message signed/verified in M_sig.
func (a *AE) localKeysView() []byte {
	buf := make([]byte, aeMKeysLen)
	if a.accepting {
		copy(buf[0:32], a.acceptNonce[:])
		copy(buf[32:64], a.acceptDH[:])
	} else {
		copy(buf[0:32], a.connectDH[:])
		copy(buf[32:64], a.connectNonce[:])
	}
	return buf
}

func (a *AE) peerKeysView() []byte {
	buf := make([]byte, aeMKeysLen)
	if a.accepting {
		// peer is initiator: {key[32], nonce[32]}
		copy(buf[0:32], a.connectDH[:])
		copy(buf[32:64], a.connectNonce[:])
	} else {
		// peer is acceptor: {nonce[32], key[32]}
		copy(buf[0:32], a.acceptNonce[:])
		copy(buf[32:64], a.acceptDH[:])
	}
	return buf
}

func (a *AE) deriveSharedKey() error {
	var peerDH [32]byte
	if a.accepting {
		peerDH = a.connectDH
	} else {
		peerDH = a.acceptDH
	}
	raw, err := curve25519.X25519(a.ourScalar[:], peerDH[:])
	if err != nil {
		return ErrHandshakeFailed
	}

	// Key order per the fixed Open Question decision: accept_dh ∥ accept_nonce ∥
	// connect_dh ∥ connect_nonce, mixing all four contributions.
	key := make([]byte, 0, 128)
	key = append(key, a.acceptDH[:]...)
	key = append(key, a.acceptNonce[:]...)
	key = append(key, a.connectDH[:]...)
	key = append(key, a.connectNonce[:]...)

	h, err := blake2b.New256(key)
	if err != nil {
		return err
	}
	h.Write(raw)
	sum := h.Sum(nil)
	copy(a.sharedKey[:], sum)
	return nil
}

// Handshake consumes one inbound chunk (64 or 96 bytes) and advances state.
func (a *AE) Handshake(out []byte, in []byte) (*HandshakeEvent, error) {
	switch a.awaiting {
	case aeSendKeys:
		if len(in) < aeMKeysLen {
			return nil, nil
		}
		if a.accepting {
			// peer is initiator: {key[32], nonce[32]}
			copy(a.connectDH[:], in[0:32])
			copy(a.connectNonce[:], in[32:64])
		} else {
			// peer is acceptor: {nonce[32], key[32]}
			copy(a.acceptNonce[:], in[0:32])
			copy(a.acceptDH[:], in[32:64])
		}
		a.awaiting = aeSendSignature
	case aeSendSignature:
		if len(in) < aeMSigLen {
			return nil, nil
		}
		sig := in[0:64]
		verifyKey := in[64:96]
		if !ed25519.Verify(ed25519.PublicKey(verifyKey), a.peerKeysView(), sig) {
			return nil, ErrHandshakeFailed
		}
		copy(a.foreignEdDSA[:], verifyKey)
		if err := a.deriveSharedKey(); err != nil {
			return nil, err
		}
		a.awaiting = aeSendNone
	default:
		return nil, ErrHandshakeFailed
	}

	outLen := 0
	switch a.sending {
	case aeSendKeys:
		// acceptor-layout M_keys: {nonce[32], key[32]}
		copy(out[0:32], a.acceptNonce[:])
		copy(out[32:64], a.acceptDH[:])
		outLen = aeMKeysLen
		a.sending = aeSendSignature
	case aeSendSignature:
		msg := a.localKeysView()
		sig := ed25519.Sign(a.local.Private, msg)
		copy(out[0:64], sig)
		copy(out[64:96], a.local.Public)
		outLen = aeMSigLen
		a.sending = aeSendNone
	}

	return &HandshakeEvent{OutLen: outLen, NextLen: a.awaiting.size()}, nil
}

// Encode draws a random nonce, encrypts body in place, writes the MAC into header.
func (a *AE) Encode(header []byte, body []byte) {
	var nonce [24]byte
	rand.Read(nonce[:])
	aead, _ := chacha20poly1305.NewX(a.sharedKey[:])
	// body has no room for the appended tag, so Seal reallocates; split the
	// result back into body (ciphertext) and header (nonce+mac) explicitly.
	sealed := aead.Seal(nil, nonce[:], body, nil)
	copy(body, sealed[:len(body)])
	copy(header[0:24], nonce[:])
	copy(header[24:40], sealed[len(body):])
}

// Decode authenticates and decrypts body in place using the header's nonce+mac.
func (a *AE) Decode(header []byte, body []byte) error {
	nonce := header[0:24]
	mac := header[24:40]
	aead, _ := chacha20poly1305.NewX(a.sharedKey[:])
	ciphertext := append(append([]byte{}, body...), mac...)
	plain, err := aead.Open(body[:0], nonce, ciphertext, nil)
	if err != nil {
		return ErrMessageCorrupted
	}
	copy(body, plain)
	return nil
}
