// File: reactor/reactor.go
// Author: momentics <momentics@gmail.com>
//
// Platform-neutral event reactor interface for cross-platform IO multiplexing.
// Level-triggered: the server's poll loop does exactly one recv per ready
// connection per call, so a notifier that would otherwise need draining
// until EAGAIN is not required here.

package reactor

// ListenToken is the reserved notification token for the listening socket,
// distinct from any valid connection handle.
const ListenToken int32 = -1

// EventReactor defines basic reactor operations across OS platforms.
type EventReactor interface {
	// Register a descriptor for read/write readiness under token.
	Register(fd uintptr, token int32) error

	// Unregister removes a previously registered descriptor.
	Unregister(fd uintptr) error

	// Wait blocks up to timeoutMs (negative blocks indefinitely) for
	// readiness events, writing up to len(events) of them into events.
	// Returns the number of events written.
	Wait(events []Event, timeoutMs int) (n int, err error)

	// Close cleans up resources (handle/epfd).
	Close() error
}

// Event reports readiness for the descriptor registered under Token.
type Event struct {
	Token    int32
	Readable bool
	Writable bool
	Error    bool
}
