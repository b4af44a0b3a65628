// File: client/options.go
//
// Functional options for Client construction, mirroring server/options.go.

package client

import "time"

// Option customizes Config before a Client is constructed.
type Option func(*Config)

// WithMessageLen sets the fixed serialized application message size.
func WithMessageLen(m int) Option {
	return func(c *Config) { c.MessageLen = m }
}

// WithWaitTimeout sets how long Poll blocks for readiness before returning.
func WithWaitTimeout(d time.Duration) Option {
	return func(c *Config) { c.WaitTimeout = d }
}
