// File: server/ratelimit.go
//
// Per-connection message rate limiting, grounded on kephasnet's
// RateLimitConfig/DefaultRateLimitConfig/NoRateLimit trio. Not part of
// spec.md's core (the spec has no notion of a message-rate policy) but a
// natural steady-state guard for the interactive game sessions this server
// targets, so it rides along as an optional per-connection gate in front of
// Connection.Recv's message path.

package server

import "golang.org/x/time/rate"

// RateLimitConfig bounds how many application messages a single connection
// may submit per second.
type RateLimitConfig struct {
	MessagesPerSecond rate.Limit
	Burst             int
	Enabled           bool
}

// DefaultRateLimitConfig allows 100 messages/sec with a burst of 200.
func DefaultRateLimitConfig() *RateLimitConfig {
	return &RateLimitConfig{
		MessagesPerSecond: 100,
		Burst:             200,
		Enabled:           true,
	}
}

// NoRateLimit disables rate limiting.
func NoRateLimit() *RateLimitConfig {
	return &RateLimitConfig{Enabled: false}
}

// limiter wraps a rate.Limiter that is a no-op when the policy is disabled.
type limiter struct {
	rl *rate.Limiter
}

func newLimiter(cfg *RateLimitConfig) *limiter {
	if cfg == nil || !cfg.Enabled {
		return &limiter{}
	}
	return &limiter{rl: rate.NewLimiter(cfg.MessagesPerSecond, cfg.Burst)}
}

// Allow reports whether one more message may be admitted now.
func (l *limiter) Allow() bool {
	if l.rl == nil {
		return true
	}
	return l.rl.Allow()
}
