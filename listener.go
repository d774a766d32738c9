/* ipp-emu - Virtual IPP printer, advertised over DNS-SD
 *
 * Copyright (C) 2026 and up by the ipp-emu authors
 * See LICENSE for license terms and conditions
 *
 * TCP listener
 */

package main

import (
	"net"
	"strconv"
	"time"
)

// Listener wraps net.Listener
//
// If no IP address is given, the go stdlib creates a listener
// able to serve IPv4 and IPv6 simultaneously, which it cannot
// do for a bound address. So we always listen on the wildcard
// address and filter connections in the Accept wrapper instead
type Listener struct {
	net.Listener // Underlying net.Listener
}

// NewListener creates a new listener on the given port
func NewListener(port int) (net.Listener, error) {
	network := "tcp4"
	if Conf.IPV6Enable {
		network = "tcp"
	}

	nl, err := net.Listen(network, ":"+strconv.Itoa(port))
	if err != nil {
		return nil, err
	}

	return Listener{nl}, nil
}

// Accept accepts the next connection
func (l Listener) Accept() (net.Conn, error) {
	for {
		conn, err := l.Listener.Accept()
		if err != nil {
			return nil, err
		}

		tcpconn, ok := conn.(*net.TCPConn)
		if !ok {
			// Should never happen, actually
			conn.Close()
			continue
		}

		// Reject non-loopback connections, if required
		if Conf.LoopbackOnly &&
			!tcpconn.LocalAddr().(*net.TCPAddr).IP.IsLoopback() {
			tcpconn.SetLinger(0)
			tcpconn.Close()
			continue
		}

		tcpconn.SetKeepAlive(true)
		tcpconn.SetKeepAlivePeriod(20 * time.Second)

		return tcpconn, nil
	}
}
