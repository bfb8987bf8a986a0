package source

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/mkosuda/proxyvet/internal/config"
	"github.com/mkosuda/proxyvet/internal/model"
)

// maxListSize caps how much of a list response is read. Public proxy lists
// are a few hundred kilobytes at most; anything larger is a misbehaving
// source.
const maxListSize = 8 << 20 // 8MB

// ErrBadStatus is returned when a list source answers with a non-2xx
// status code.
var ErrBadStatus = errors.New("source returned non-2xx status")

// Collector fetches candidate relay endpoints from one list source.
type Collector interface {
	// Name identifies the source in logs and error messages.
	Name() string

	// Collect fetches and parses the source's list. Entries that do not
	// parse as "host:port" are skipped, not errors; a returned error
	// means the source itself was unreachable or unreadable.
	Collect(ctx context.Context) ([]model.Endpoint, error)
}

// New builds the Collector for one source spec. The HTTP client is shared
// across collectors; list sources are fetched directly, never through a
// relay.
func New(spec config.SourceSpec, httpc *http.Client, userAgent string) (Collector, error) {
	switch spec.Kind {
	case config.SourceKindPlain:
		return &plainCollector{spec: spec, httpc: httpc, userAgent: userAgent}, nil
	case config.SourceKindProxyScrape:
		return &proxyScrapeCollector{spec: spec, httpc: httpc, userAgent: userAgent}, nil
	case config.SourceKindGeonode:
		return &geonodeCollector{spec: spec, httpc: httpc, userAgent: userAgent}, nil
	case config.SourceKindHTML:
		return &htmlCollector{spec: spec, httpc: httpc, userAgent: userAgent}, nil
	default:
		return nil, fmt.Errorf("unknown source kind %q for source %q", spec.Kind, spec.Name)
	}
}

// fetch retrieves a source URL and returns its body, bounded by
// maxListSize.
func fetch(ctx context.Context, httpc *http.Client, url, userAgent string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request for %s: %w", url, err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")

	resp, err := httpc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("fetch %s: %w: %s", url, ErrBadStatus, resp.Status)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxListSize))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", url, err)
	}
	return body, nil
}
