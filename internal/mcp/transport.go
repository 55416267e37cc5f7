package mcp

import (
	"context"
	"net"
	"strconv"
	"time"
)

// Prober checks whether a server accepts TCP connections.
type Prober interface {
	Probe(ctx context.Context, host string, port int) bool
}

// TCPProber dials once with a fixed timeout. No retries.
type TCPProber struct {
	Timeout time.Duration
}

// Probe reports whether host:port accepted a TCP connection.
func (p TCPProber) Probe(ctx context.Context, host string, port int) bool {
	timeout := p.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	dialer := net.Dialer{Timeout: timeout}

	conn, err := dialer.DialContext(ctx, "tcp", net.JoinHostPort(host, strconv.Itoa(port)))
	if err != nil {
		return false
	}
	conn.Close()
	return true
}
