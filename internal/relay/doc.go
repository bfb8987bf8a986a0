// Package relay builds HTTP clients that route requests through a single
// candidate relay endpoint.
//
// A ClientFactory is constructed once per run with the immutable settings
// (timeout, relay scheme) and handed to every probe worker. Each probe asks
// the factory for a client bound to its own candidate; nothing in this
// package mutates shared state after construction, so concurrent use is
// safe without synchronization.
//
// Both plain HTTP CONNECT-style relays and SOCKS5 relays are supported.
// SOCKS5 dialing uses golang.org/x/net/proxy, the same primitive used for
// any SOCKS upstream in Go.
package relay
