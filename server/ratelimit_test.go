package server

import "testing"

func TestNoRateLimitAlwaysAllows(t *testing.T) {
	l := newLimiter(NoRateLimit())
	for i := 0; i < 1000; i++ {
		if !l.Allow() {
			t.Fatalf("disabled limiter rejected call %d", i)
		}
	}
}

func TestRateLimitBurstThenReject(t *testing.T) {
	cfg := &RateLimitConfig{MessagesPerSecond: 1, Burst: 3, Enabled: true}
	l := newLimiter(cfg)

	for i := 0; i < 3; i++ {
		if !l.Allow() {
			t.Fatalf("call %d within burst was rejected", i)
		}
	}
	if l.Allow() {
		t.Fatalf("call past burst capacity was allowed")
	}
}

func TestNilConfigBehavesLikeDisabled(t *testing.T) {
	l := newLimiter(nil)
	if !l.Allow() {
		t.Fatalf("nil config limiter rejected a call")
	}
}
