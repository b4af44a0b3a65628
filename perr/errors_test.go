package perr_test

import (
	"errors"
	"testing"

	"github.com/nordholt/portkey/perr"
)

func TestWithWrapsAndUnwraps(t *testing.T) {
	wrapped := perr.With(perr.ErrClosed, "handle 7")

	if !errors.Is(wrapped, perr.ErrClosed) {
		t.Fatalf("errors.Is(wrapped, ErrClosed) = false, want true")
	}
	if wrapped.Context != "handle 7" {
		t.Fatalf("Context = %q, want %q", wrapped.Context, "handle 7")
	}
}

func TestSentinelsAreDistinct(t *testing.T) {
	sentinels := []error{
		perr.ErrClosed,
		perr.ErrNotReady,
		perr.ErrAlreadyListening,
		perr.ErrNotListening,
		perr.ErrInvalidHandle,
		perr.ErrHandshakeQueueFull,
		perr.ErrOutOfSpace,
	}
	for i, a := range sentinels {
		for j, b := range sentinels {
			if i != j && errors.Is(a, b) {
				t.Fatalf("sentinel %d unexpectedly matches sentinel %d", i, j)
			}
		}
	}
}
