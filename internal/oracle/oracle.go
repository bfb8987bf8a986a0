package oracle

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// maxBodySize caps how much of an oracle response we read. Echo responses
// are tiny; anything larger is a relay injecting content.
const maxBodySize = 1 << 20 // 1MB

// Client queries the echo oracles. It is stateless and safe for concurrent
// use; the HTTP client to route through (direct or relayed) is supplied per
// call, which is how the same oracle serves both identity resolution and
// relayed probing.
type Client struct {
	// originURL is the echo-IP endpoint.
	originURL string

	// headersURL is the echo-headers endpoint.
	headersURL string

	// userAgent is sent on every request.
	userAgent string
}

// NewClient creates an oracle client for the given endpoints.
func NewClient(originURL, headersURL, userAgent string) *Client {
	return &Client{
		originURL:  originURL,
		headersURL: headersURL,
		userAgent:  userAgent,
	}
}

// originResponse is the echo-IP oracle's body: the origin field holds the
// observed source addresses, comma-separated when a relay appended ours.
type originResponse struct {
	Origin string `json:"origin"`
}

// headersResponse is the echo-headers oracle's body.
type headersResponse struct {
	Headers map[string]string `json:"headers"`
}

// Origin fetches the echo-IP oracle through httpc and returns the ordered
// list of origin addresses it observed.
func (c *Client) Origin(ctx context.Context, httpc *http.Client) ([]string, error) {
	body, err := c.get(ctx, httpc, c.originURL)
	if err != nil {
		return nil, err
	}

	var parsed originResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	origins := splitOrigins(parsed.Origin)
	if len(origins) == 0 {
		return nil, fmt.Errorf("%w: missing origin field", ErrMalformedResponse)
	}

	return origins, nil
}

// Headers fetches the echo-headers oracle through httpc and returns the
// header map as the oracle received it, post-relay.
func (c *Client) Headers(ctx context.Context, httpc *http.Client) (map[string]string, error) {
	body, err := c.get(ctx, httpc, c.headersURL)
	if err != nil {
		return nil, err
	}

	var parsed headersResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	if parsed.Headers == nil {
		return nil, fmt.Errorf("%w: missing headers field", ErrMalformedResponse)
	}

	return parsed.Headers, nil
}

// get performs one GET and returns the size-limited body.
func (c *Client) get(ctx context.Context, httpc *http.Client, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create oracle request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := httpc.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: %d", ErrBadStatus, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}

	return body, nil
}

// splitOrigins splits a comma-separated origin field into trimmed
// addresses, preserving the oracle's order. An appending relay reports
// "client, relay", and that order is meaningful to the classifier.
func splitOrigins(origin string) []string {
	parts := strings.Split(origin, ",")
	ips := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			ips = append(ips, trimmed)
		}
	}
	return ips
}
