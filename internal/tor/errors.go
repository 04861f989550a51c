package tor

import "errors"

// Proxy errors.
//
// Design decision: We define specific errors rather than wrapping all errors
// generically, so the CLI can tell a proxy that is down from one that is up
// but cannot reach the site.
var (
	// ErrProxyNotSOCKS is returned when the configured address answers but
	// does not behave like a SOCKS5 proxy.
	ErrProxyNotSOCKS = errors.New("proxy is not a SOCKS5 proxy")

	// ErrProxyCannotConnect is returned when we cannot establish a TCP
	// connection to the proxy address.
	ErrProxyCannotConnect = errors.New("cannot connect to proxy")

	// ErrProxyUnreachable is returned when the proxy is up but could not open
	// a connection to the target site.
	ErrProxyUnreachable = errors.New("site is not reachable through proxy")

	// ErrProxyTimeout is returned when the check did not finish in time.
	ErrProxyTimeout = errors.New("timeout checking proxy")

	// ErrInvalidProxyAddress is returned when the proxy address format is invalid.
	// Expected format is "host:port".
	ErrInvalidProxyAddress = errors.New("invalid proxy address format: expected host:port")

	// ErrTorNotRunning is returned when the embedded Tor daemon is used
	// before Start.
	ErrTorNotRunning = errors.New("embedded Tor daemon is not running")
)

// ProxyStatus is the result of checking a proxy.
type ProxyStatus int

const (
	// ProxyStatusOK indicates the target was reached through the proxy.
	ProxyStatusOK ProxyStatus = iota

	// ProxyStatusWrongType indicates the address is not a SOCKS5 proxy.
	ProxyStatusWrongType

	// ProxyStatusCannotConnect indicates the proxy could not be dialed.
	ProxyStatusCannotConnect

	// ProxyStatusUnreachable indicates the proxy refused or failed the
	// connection to the target.
	ProxyStatusUnreachable

	// ProxyStatusTimeout indicates the check timed out.
	ProxyStatusTimeout
)

// String returns a human-readable description of the proxy status.
func (s ProxyStatus) String() string {
	switch s {
	case ProxyStatusOK:
		return "OK"
	case ProxyStatusWrongType:
		return "wrong type (not SOCKS5)"
	case ProxyStatusCannotConnect:
		return "cannot connect"
	case ProxyStatusUnreachable:
		return "target unreachable"
	case ProxyStatusTimeout:
		return "timeout"
	default:
		return "unknown"
	}
}

// Error returns the appropriate error for this status, or nil if OK.
func (s ProxyStatus) Error() error {
	switch s {
	case ProxyStatusOK:
		return nil
	case ProxyStatusWrongType:
		return ErrProxyNotSOCKS
	case ProxyStatusCannotConnect:
		return ErrProxyCannotConnect
	case ProxyStatusUnreachable:
		return ErrProxyUnreachable
	case ProxyStatusTimeout:
		return ErrProxyTimeout
	default:
		return errors.New("unknown proxy status")
	}
}
