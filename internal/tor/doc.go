// Package tor routes the crawler's browser through a SOCKS5 proxy.
//
// Two sources are supported: an external proxy given by address (a system
// Tor daemon, an ssh -D tunnel) and a private Tor daemon started through
// tornago. Either way the browser receives a socks5:// URL, and CheckProxy
// verifies beforehand that the site answers through the proxy so a crawl
// does not burn its retry budget on a dead tunnel.
package tor
