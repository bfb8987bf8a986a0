package source

import (
	"context"
	"net/http"
	"strings"

	"github.com/mkosuda/proxyvet/internal/config"
	"github.com/mkosuda/proxyvet/internal/model"
)

// plainCollector parses a plain text list, one "host:port" per line.
// This is the dominant format among the raw GitHub lists and the simple
// download APIs.
type plainCollector struct {
	spec      config.SourceSpec
	httpc     *http.Client
	userAgent string
}

func (c *plainCollector) Name() string { return c.spec.Name }

func (c *plainCollector) Collect(ctx context.Context) ([]model.Endpoint, error) {
	body, err := fetch(ctx, c.httpc, c.spec.URL, c.userAgent)
	if err != nil {
		return nil, err
	}
	return parsePlainList(string(body)), nil
}

// parsePlainList extracts endpoints from a newline-separated list. Blank
// lines, comments, and lines that do not parse as "host:port" are
// skipped.
func parsePlainList(body string) []model.Endpoint {
	var endpoints []model.Endpoint
	for _, line := range strings.Split(body, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		endpoint, err := model.ParseEndpoint(line)
		if err != nil {
			continue
		}
		endpoints = append(endpoints, endpoint)
	}
	return endpoints
}
