package sheetsync

import (
	"context"
	"net"
	"net/url"
	"strings"
	"time"
)

// Prober answers whether the remote endpoint is reachable right now.
type Prober interface {
	Probe(ctx context.Context) bool
}

// DialProber opens a TCP connection to the endpoint host and closes it.
type DialProber struct {
	address string
	timeout time.Duration
	dialer  net.Dialer
}

// NewDialProber derives host:port from endpoint; it returns nil when the
// endpoint has no host to dial.
func NewDialProber(endpoint string, timeout time.Duration) *DialProber {
	u, err := url.Parse(strings.TrimSpace(endpoint))
	if err != nil || u.Hostname() == "" {
		return nil
	}
	port := u.Port()
	if port == "" {
		port = "443"
		if u.Scheme == "http" {
			port = "80"
		}
	}
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &DialProber{address: net.JoinHostPort(u.Hostname(), port), timeout: timeout}
}

func (p *DialProber) Probe(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()
	conn, err := p.dialer.DialContext(ctx, "tcp", p.address)
	if err != nil {
		return false
	}
	_ = conn.Close()
	return true
}

func (p *DialProber) Address() string {
	return p.address
}
