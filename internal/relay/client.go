package relay

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/net/proxy"

	"github.com/mkosuda/proxyvet/internal/model"
)

// Scheme selects how requests are tunneled through a candidate relay.
type Scheme string

const (
	// SchemeHTTP treats the candidate as a plain HTTP forward proxy.
	// This is the default; the public list sources publish HTTP relays.
	SchemeHTTP Scheme = "http"

	// SchemeSOCKS5 treats the candidate as a SOCKS5 proxy.
	SchemeSOCKS5 Scheme = "socks5"
)

// ClientFactory builds per-candidate HTTP clients from one immutable
// configuration. Construct it once and share it; it holds no mutable state.
//
// Design decision: We hand out a fresh *http.Client per candidate rather
// than sharing one client with a mutable proxy setting. A shared mutable
// client would need locking and would let one candidate's configuration
// bleed into another's probe.
type ClientFactory struct {
	// timeout is the mandatory per-request deadline. Every client this
	// factory builds carries it; no relayed call can block indefinitely.
	timeout time.Duration

	// scheme selects HTTP or SOCKS5 tunneling.
	scheme Scheme
}

// Option configures a ClientFactory.
type Option func(*ClientFactory)

// WithScheme selects the relay scheme. Default is SchemeHTTP.
func WithScheme(s Scheme) Option {
	return func(f *ClientFactory) {
		if s != "" {
			f.scheme = s
		}
	}
}

// NewClientFactory creates a factory with the given per-request timeout.
func NewClientFactory(timeout time.Duration, opts ...Option) *ClientFactory {
	f := &ClientFactory{
		timeout: timeout,
		scheme:  SchemeHTTP,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Timeout returns the per-request deadline the factory applies.
func (f *ClientFactory) Timeout() time.Duration {
	return f.timeout
}

// ClientFor returns an HTTP client whose requests are routed through the
// given candidate.
//
// Design decisions, mirrored from how we build probe clients elsewhere:
//   - Redirects are not followed: an echo oracle answers directly, and a
//     relay that redirects is interfering with the response anyway.
//   - Compression is disabled so the body we parse is the body on the wire.
//   - Keep-alives are disabled; each candidate gets exactly the requests
//     its probe needs and the connection is not reused across candidates.
func (f *ClientFactory) ClientFor(endpoint model.Endpoint) (*http.Client, error) {
	transport, err := f.transportFor(endpoint)
	if err != nil {
		return nil, err
	}

	return &http.Client{
		Transport: transport,
		Timeout:   f.timeout,
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}, nil
}

// Direct returns an HTTP client that connects without any relay. It carries
// the same timeout discipline as relayed clients and is what identity
// resolution uses.
func (f *ClientFactory) Direct() *http.Client {
	return &http.Client{
		Transport: &http.Transport{
			DisableCompression: true,
			DisableKeepAlives:  true,
		},
		Timeout: f.timeout,
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
}

// transportFor builds the transport tunneling through the candidate.
func (f *ClientFactory) transportFor(endpoint model.Endpoint) (*http.Transport, error) {
	switch f.scheme {
	case SchemeSOCKS5:
		// No auth: public SOCKS relays do not expect credentials.
		dialer, err := proxy.SOCKS5("tcp", endpoint.String(), nil, proxy.Direct)
		if err != nil {
			return nil, fmt.Errorf("failed to create SOCKS5 dialer for %s: %w", endpoint, err)
		}
		return &http.Transport{
			DialContext: func(_ context.Context, network, addr string) (net.Conn, error) {
				return dialer.Dial(network, addr)
			},
			DisableCompression: true,
			DisableKeepAlives:  true,
		}, nil
	default:
		proxyURL, err := url.Parse("http://" + endpoint.String())
		if err != nil {
			return nil, fmt.Errorf("failed to build proxy URL for %s: %w", endpoint, err)
		}
		return &http.Transport{
			Proxy:              http.ProxyURL(proxyURL),
			DisableCompression: true,
			DisableKeepAlives:  true,
		}, nil
	}
}
