//go:build unix

// File: client/socket_unix.go
//
// Raw nonblocking IPv4 TCP dial, mirroring server/socket_unix.go's rawSocket
// so Client and Server share the same conn.Socket shape without the client
// package depending on the unix-only server package.

package client

import (
	"golang.org/x/sys/unix"
)

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

// DialTCP synchronously connects to ip:port and switches the resulting fd
// to nonblocking mode before handing it to Connect.
func DialTCP(ip [4]byte, port int) (*rawSocket, error) {
	fd, err := unix.Socket(unix.AF_INET, unix.SOCK_STREAM, 0)
	if err != nil {
		return nil, err
	}
	addr := &unix.SockaddrInet4{Port: port, Addr: ip}
	if err := unix.Connect(fd, addr); err != nil {
		unix.Close(fd)
		return nil, err
	}
	if err := unix.SetNonblock(fd, true); err != nil {
		unix.Close(fd)
		return nil, err
	}
	return &rawSocket{fd: fd}, nil
}
