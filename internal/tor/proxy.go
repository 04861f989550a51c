package tor

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"

	"golang.org/x/net/proxy"
)

// checkProxyTimeout bounds a whole proxy check.
const checkProxyTimeout = 15 * time.Second

// Proxy is a SOCKS5 proxy the browser is pointed at.
type Proxy struct {
	// address is the proxy in "host:port" format.
	address string

	// dialer connects through the proxy.
	dialer proxy.Dialer

	// timeout bounds CheckConnection.
	timeout time.Duration
}

// NewProxy creates a Proxy for address ("host:port", an optional socks5://
// prefix is accepted). It does not connect; call CheckConnection for that.
func NewProxy(address string, timeout time.Duration) (*Proxy, error) {
	address = strings.TrimPrefix(address, "socks5://")
	if !isValidProxyAddress(address) {
		return nil, ErrInvalidProxyAddress
	}
	if timeout <= 0 {
		timeout = checkProxyTimeout
	}

	// No auth: both Tor and ssh -D listen without credentials.
	dialer, err := proxy.SOCKS5("tcp", address, nil, proxy.Direct)
	if err != nil {
		return nil, fmt.Errorf("failed to create SOCKS5 dialer: %w", err)
	}

	return &Proxy{
		address: address,
		dialer:  dialer,
		timeout: timeout,
	}, nil
}

// isValidProxyAddress checks for "host:port" with a port in 1..65535.
func isValidProxyAddress(address string) bool {
	host, port, err := net.SplitHostPort(address)
	if err != nil || host == "" {
		return false
	}
	n, err := strconv.Atoi(port)
	return err == nil && n >= 1 && n <= 65535
}

// Address returns the proxy in "host:port" format.
func (p *Proxy) Address() string {
	return p.address
}

// URL returns the proxy in the form Chrome expects for --proxy-server.
func (p *Proxy) URL() string {
	return SOCKSURL(p.address)
}

// SOCKSURL turns "host:port" into "socks5://host:port".
func SOCKSURL(address string) string {
	return "socks5://" + address
}

// CheckConnection verifies that target ("host:port") can be reached through
// the proxy.
//
// The proxy itself is dialed first so that a proxy that is down is told apart
// from a proxy that cannot reach the site.
func (p *Proxy) CheckConnection(ctx context.Context, target string) ProxyStatus {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", p.address)
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return ProxyStatusTimeout
		}
		return ProxyStatusCannotConnect
	}
	_ = conn.Close()

	cd, ok := p.dialer.(proxy.ContextDialer)
	if !ok {
		return ProxyStatusWrongType
	}

	conn, err = cd.DialContext(ctx, "tcp", target)
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return ProxyStatusTimeout
		}
		return ProxyStatusUnreachable
	}
	_ = conn.Close()

	return ProxyStatusOK
}

// CheckProxy is a shortcut for NewProxy followed by CheckConnection. It
// returns nil when target is reachable and the status error otherwise.
func CheckProxy(ctx context.Context, address, target string) error {
	p, err := NewProxy(address, 0)
	if err != nil {
		return err
	}
	if status := p.CheckConnection(ctx, target); status != ProxyStatusOK {
		return fmt.Errorf("proxy %s, target %s: %w", p.Address(), target, status.Error())
	}
	return nil
}
