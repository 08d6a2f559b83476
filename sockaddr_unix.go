//go:build unix

//
// SPDX-License-Identifier: GPL-3.0-or-later
//

package rtcore

import (
	"fmt"
	"net"

	"golang.org/x/sys/unix"
)

// sockaddrFromNetAddr converts a [net.Addr] (as produced by the standard
// library's net.ResolveTCPAddr/ResolveUDPAddr) into the unix.Sockaddr the
// raw syscalls in reactor_epoll_linux.go require.
func sockaddrFromNetAddr(addr net.Addr) (unix.Sockaddr, error) {
	var ip net.IP
	var port int
	switch a := addr.(type) {
	case *net.TCPAddr:
		ip, port = a.IP, a.Port
	case *net.UDPAddr:
		ip, port = a.IP, a.Port
	default:
		return nil, fmt.Errorf("rtcore: unsupported address type %T", addr)
	}

	if ip4 := ip.To4(); ip4 != nil {
		var sa unix.SockaddrInet4
		sa.Port = port
		copy(sa.Addr[:], ip4)
		return &sa, nil
	}
	var sa unix.SockaddrInet6
	sa.Port = port
	copy(sa.Addr[:], ip.To16())
	return &sa, nil
}

// netAddrFromSockaddr converts a unix.Sockaddr returned by recvfrom back
// into a [net.Addr] for the reactor's public [RecvFromResult].
func netAddrFromSockaddr(sa unix.Sockaddr) net.Addr {
	switch s := sa.(type) {
	case *unix.SockaddrInet4:
		return &net.UDPAddr{IP: net.IP(s.Addr[:]), Port: s.Port}
	case *unix.SockaddrInet6:
		return &net.UDPAddr{IP: net.IP(s.Addr[:]), Port: s.Port}
	default:
		return nil
	}
}
