//go:build unix

// File: server/socket_unix.go
//
// Raw nonblocking IPv4 TCP sockets via golang.org/x/sys/unix. net.Listener
// doesn't expose the underlying fd cheaply enough for reactor registration,
// so the listening and per-connection sockets are built directly on the
// accept4/bind/listen/connect syscalls, grounded on the raw-fd style of
// transport/tcp/listener.go.

package server

import (
	"golang.org/x/sys/unix"
)

// rawSocket adapts a raw nonblocking fd to conn.Socket.
type rawSocket struct {
	fd int
}

func (s *rawSocket) Fd() uintptr { return uintptr(s.fd) }

func (s *rawSocket) Read(b []byte) (int, error) {
	n, err := unix.Read(s.fd, b)
	if err == unix.EAGAIN {
		return 0, nil
	}
	return n, err
}

func (s *rawSocket) Write(b []byte) (int, error) {
	n, err := unix.Write(s.fd, b)
	if err == unix.EAGAIN {
		return 0, nil
	}
	return n, err
}

func (s *rawSocket) Close() error {
	return unix.Close(s.fd)
}

// listenTCP binds and listens on 0.0.0.0:port with SO_REUSEADDR, returning
// the raw nonblocking listening fd.
func listenTCP(port int, backlog int) (int, error) {
	fd, err := unix.Socket(unix.AF_INET, unix.SOCK_STREAM|unix.SOCK_NONBLOCK, 0)
	if err != nil {
		return -1, err
	}
	if err := unix.SetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_REUSEADDR, 1); err != nil {
		unix.Close(fd)
		return -1, err
	}
	addr := &unix.SockaddrInet4{Port: port}
	if err := unix.Bind(fd, addr); err != nil {
		unix.Close(fd)
		return -1, err
	}
	if err := unix.Listen(fd, backlog); err != nil {
		unix.Close(fd)
		return -1, err
	}
	return fd, nil
}

// acceptTCP pulls one connection off the listening fd, nonblocking.
// A nil *rawSocket with nil error means no connection was pending.
func acceptTCP(listenFd int) (*rawSocket, error) {
	connFd, _, err := unix.Accept4(listenFd, unix.SOCK_NONBLOCK)
	if err != nil {
		if err == unix.EAGAIN || err == unix.EWOULDBLOCK {
			return nil, nil
		}
		return nil, err
	}
	return &rawSocket{fd: connFd}, nil
}

// connectTCP synchronously connects to ip:port and returns the raw fd.
func connectTCP(ip [4]byte, port int) (*rawSocket, error) {
	fd, err := unix.Socket(unix.AF_INET, unix.SOCK_STREAM, 0)
	if err != nil {
		return nil, err
	}
	addr := &unix.SockaddrInet4{Port: port, Addr: ip}
	if err := unix.Connect(fd, addr); err != nil {
		unix.Close(fd)
		return nil, err
	}
	return &rawSocket{fd: fd}, nil
}
