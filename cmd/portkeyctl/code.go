package main

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"

	"github.com/nordholt/portkey/wire"
)

// parseCode decodes s as 32 hex characters, or generates a random Code
// (and prints it) when s is empty.
func parseCode(s string) (wire.Code, error) {
	var code wire.Code
	if s == "" {
		if _, err := rand.Read(code[:]); err != nil {
			return code, err
		}
		fmt.Printf("generated code: %s\n", hex.EncodeToString(code[:]))
		return code, nil
	}
	b, err := hex.DecodeString(s)
	if err != nil {
		return code, fmt.Errorf("invalid --code: %w", err)
	}
	if len(b) != len(code) {
		return code, fmt.Errorf("--code must decode to %d bytes, got %d", len(code), len(b))
	}
	copy(code[:], b)
	return code, nil
}
