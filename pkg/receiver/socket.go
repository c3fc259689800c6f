package receiver

import (
	"net"
	"time"
)

// Socket is the part of *net.UDPConn the receiver needs.
type Socket interface {
	ReadFromUDP(b []byte) (n int, addr *net.UDPAddr, err error)
	SetReadDeadline(t time.Time) error
	LocalAddr() net.Addr
	Close() error
}

// SocketFactory opens the listening socket. Tests swap it out to feed
// datagrams without touching the network.
type SocketFactory interface {
	ListenUDP(network string, address *net.UDPAddr) (Socket, error)
}

type UDPSocketFactory struct{}

func (UDPSocketFactory) ListenUDP(network string, address *net.UDPAddr) (Socket, error) {
	conn, err := net.ListenUDP(network, address)
	if err != nil {
		return nil, err
	}
	return conn, nil
}
