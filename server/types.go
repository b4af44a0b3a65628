// File: server/types.go
//
// Config and its defaults, grounded on the teacher's Config/DefaultConfig
// shape (server/options.go's sibling types.go).

package server

import "time"

// Config bounds the server's fixed-capacity resources.
type Config struct {
	Port             int
	Backlog          int
	MaxConns         int
	MaxActiveHandshakes int
	HandshakeTimeout time.Duration
	MaxEvents        int
	WaitTimeout      time.Duration
	MessageLen       int // fixed serialized size M of the application message
	RateLimit        *RateLimitConfig
}

// DefaultConfig returns reasonable bounds for an interactive game server.
func DefaultConfig() *Config {
	return &Config{
		Port:                8081,
		Backlog:             128,
		MaxConns:            1024,
		MaxActiveHandshakes: 32,
		HandshakeTimeout:    5 * time.Second,
		MaxEvents:           256,
		WaitTimeout:         100 * time.Millisecond,
		MessageLen:          0,
		RateLimit:           NoRateLimit(),
	}
}
