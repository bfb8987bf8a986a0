package source

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/mkosuda/proxyvet/internal/config"
	"github.com/mkosuda/proxyvet/internal/model"
)

// proxyScrapeCollector parses the proxyscrape.com v4 JSON API. Entries the
// API itself marks dead are dropped before probing; there is no point
// spending a probe slot on a relay the list already knows is down.
type proxyScrapeCollector struct {
	spec      config.SourceSpec
	httpc     *http.Client
	userAgent string
}

func (c *proxyScrapeCollector) Name() string { return c.spec.Name }

func (c *proxyScrapeCollector) Collect(ctx context.Context) ([]model.Endpoint, error) {
	body, err := fetch(ctx, c.httpc, c.spec.URL, c.userAgent)
	if err != nil {
		return nil, err
	}

	var payload struct {
		Proxies []struct {
			IP    string      `json:"ip"`
			Port  json.Number `json:"port"`
			Alive bool        `json:"alive"`
		} `json:"proxies"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("parse %s response: %w", c.spec.Name, err)
	}

	var endpoints []model.Endpoint
	for _, p := range payload.Proxies {
		if !p.Alive {
			continue
		}
		endpoint, err := model.ParseEndpoint(fmt.Sprintf("%s:%s", p.IP, p.Port))
		if err != nil {
			continue
		}
		endpoints = append(endpoints, endpoint)
	}
	return endpoints, nil
}

// geonodeCollector parses the geonode.com JSON API. Geonode reports ports
// as strings, proxyscrape as numbers; json.Number absorbs both.
type geonodeCollector struct {
	spec      config.SourceSpec
	httpc     *http.Client
	userAgent string
}

func (c *geonodeCollector) Name() string { return c.spec.Name }

func (c *geonodeCollector) Collect(ctx context.Context) ([]model.Endpoint, error) {
	body, err := fetch(ctx, c.httpc, c.spec.URL, c.userAgent)
	if err != nil {
		return nil, err
	}

	var payload struct {
		Data []struct {
			IP   string      `json:"ip"`
			Port json.Number `json:"port"`
		} `json:"data"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("parse %s response: %w", c.spec.Name, err)
	}

	var endpoints []model.Endpoint
	for _, p := range payload.Data {
		endpoint, err := model.ParseEndpoint(fmt.Sprintf("%s:%s", p.IP, p.Port))
		if err != nil {
			continue
		}
		endpoints = append(endpoints, endpoint)
	}
	return endpoints, nil
}
