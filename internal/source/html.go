package source

import (
	"context"
	"fmt"
	"net/http"
	"regexp"

	"github.com/mkosuda/proxyvet/internal/config"
	"github.com/mkosuda/proxyvet/internal/model"
)

// addressCellPattern matches the "address</td><td>port" cell pairs in the
// proxy tables free-proxy-list.net and its mirrors render. Scraping with a
// pattern instead of a DOM parser keeps the collector working across the
// minor markup changes these sites go through.
var addressCellPattern = regexp.MustCompile(`(\d{1,3}\.\d{1,3}\.\d{1,3}\.\d{1,3})</td><td>(\d+)`)

// htmlCollector scrapes endpoints out of an HTML proxy table.
type htmlCollector struct {
	spec      config.SourceSpec
	httpc     *http.Client
	userAgent string
}

func (c *htmlCollector) Name() string { return c.spec.Name }

func (c *htmlCollector) Collect(ctx context.Context) ([]model.Endpoint, error) {
	body, err := fetch(ctx, c.httpc, c.spec.URL, c.userAgent)
	if err != nil {
		return nil, err
	}

	var endpoints []model.Endpoint
	for _, match := range addressCellPattern.FindAllStringSubmatch(string(body), -1) {
		endpoint, err := model.ParseEndpoint(fmt.Sprintf("%s:%s", match[1], match[2]))
		if err != nil {
			continue
		}
		endpoints = append(endpoints, endpoint)
	}
	return endpoints, nil
}
