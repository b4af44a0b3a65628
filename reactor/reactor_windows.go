//go:build windows
// +build windows

// File: reactor/reactor_windows.go
// Author: momentics <momentics@gmail.com>
//
// Windows IOCP (I/O Completion Port) reactor implementation and factory.

package reactor

import (
	"errors"

	"golang.org/x/sys/windows"
)

// windowsReactor is an IOCP-based event reactor. IOCP is completion-based
// rather than readiness-based; each queued completion is surfaced here as
// a Readable event carrying the token it was registered under.
type windowsReactor struct {
	iocp windows.Handle
}

// NewReactor constructs a new platform-specific EventReactor for Windows.
func NewReactor() (EventReactor, error) {
	port, err := windows.CreateIoCompletionPort(
		windows.InvalidHandle,
		0,
		0,
		0,
	)
	if err != nil {
		return nil, err
	}
	return &windowsReactor{
		iocp: port,
	}, nil
}

// Register associates a handle with the completion port under token.
func (r *windowsReactor) Register(handle uintptr, token int32) error {
	h := windows.Handle(handle)
	_, err := windows.CreateIoCompletionPort(
		h,
		r.iocp,
		uintptr(token),
		0,
	)
	return err
}

// Unregister is a no-op: IOCP has no explicit deregistration API. A handle
// stops generating completions once the underlying socket is closed.
func (r *windowsReactor) Unregister(fd uintptr) error { return nil }

// Wait blocks up to timeoutMs (negative blocks indefinitely) for one
// completion and reports it as a single Readable event.
func (r *windowsReactor) Wait(events []Event, timeoutMs int) (int, error) {
	if len(events) == 0 {
		return 0, errors.New("reactor: empty event buffer")
	}

	wait := uint32(windows.INFINITE)
	if timeoutMs >= 0 {
		wait = uint32(timeoutMs)
	}

	var key uintptr
	var overlapped *windows.Overlapped

	err := windows.GetQueuedCompletionStatus(r.iocp, nil, &key, &overlapped, wait)
	if err != nil {
		if err == windows.WAIT_TIMEOUT {
			return 0, nil
		}
		return 0, err
	}
	events[0] = Event{Token: int32(key), Readable: true}
	return 1, nil
}

// Close closes the IOCP handle.
func (r *windowsReactor) Close() error {
	return windows.CloseHandle(r.iocp)
}
