package model

import (
	"fmt"
	"net"
	"strconv"
	"strings"
)

// Endpoint is a candidate relay address in "host:port" form.
// It is the uniqueness key for a candidate across one run: the deduplicator
// guarantees each endpoint enters the probe set at most once.
type Endpoint string

// ParseEndpoint validates a raw "host:port" string and returns it as an
// Endpoint. The host may be an IP address or a DNS name; the port must be
// a number in the 1-65535 range.
//
// Design decision: We validate at the boundary where raw strings enter the
// system (source collectors) rather than at each point of use. Everything
// downstream can then treat an Endpoint as well-formed.
func ParseEndpoint(raw string) (Endpoint, error) {
	raw = strings.TrimSpace(raw)

	host, port, err := net.SplitHostPort(raw)
	if err != nil {
		return "", fmt.Errorf("invalid endpoint %q: %w", raw, err)
	}
	if host == "" {
		return "", fmt.Errorf("invalid endpoint %q: empty host", raw)
	}

	n, err := strconv.Atoi(port)
	if err != nil {
		return "", fmt.Errorf("invalid endpoint %q: non-numeric port", raw)
	}
	if n < 1 || n > 65535 {
		return "", fmt.Errorf("invalid endpoint %q: port out of range", raw)
	}

	return Endpoint(net.JoinHostPort(host, port)), nil
}

// String returns the endpoint in "host:port" form.
func (e Endpoint) String() string {
	return string(e)
}

// Host returns the host part of the endpoint. For a well-formed Endpoint
// (produced by ParseEndpoint) this never fails; malformed values return
// the whole string as a best effort.
func (e Endpoint) Host() string {
	host, _, err := net.SplitHostPort(string(e))
	if err != nil {
		return string(e)
	}
	return host
}

// Port returns the port part of the endpoint, or an empty string when the
// endpoint is malformed.
func (e Endpoint) Port() string {
	_, port, err := net.SplitHostPort(string(e))
	if err != nil {
		return ""
	}
	return port
}
