package source

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/mkosuda/proxyvet/internal/config"
	"github.com/mkosuda/proxyvet/internal/model"
)

// Harvester fetches every configured list source in order and merges the
// results into one deduplicated candidate set.
type Harvester struct {
	collectors []Collector
	delay      time.Duration
	logger     *slog.Logger
}

// NewHarvester builds a Harvester for the given source specs. Specs whose
// kind is unknown are logged and skipped rather than failing the whole
// harvest; a typo in one user-supplied source should not disable the rest.
func NewHarvester(specs []config.SourceSpec, httpc *http.Client, userAgent string, delay time.Duration, logger *slog.Logger) *Harvester {
	collectors := make([]Collector, 0, len(specs))
	for _, spec := range specs {
		collector, err := New(spec, httpc, userAgent)
		if err != nil {
			logger.Warn("skipping source", "source", spec.Name, "error", err)
			continue
		}
		collectors = append(collectors, collector)
	}
	return &Harvester{
		collectors: collectors,
		delay:      delay,
		logger:     logger,
	}
}

// Harvest fetches all sources sequentially and returns the unique
// endpoints in first-seen order. A source that fails is logged and
// skipped; the harvest fails only when the context is cancelled. Sources
// are separated by the configured courtesy delay.
func (h *Harvester) Harvest(ctx context.Context) ([]model.Endpoint, error) {
	seen := make(map[model.Endpoint]struct{})
	var unique []model.Endpoint

	for i, collector := range h.collectors {
		if i > 0 && h.delay > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(h.delay):
			}
		}

		endpoints, err := collector.Collect(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			h.logger.Warn("source failed", "source", collector.Name(), "error", err)
			continue
		}

		fresh := 0
		for _, endpoint := range endpoints {
			if _, ok := seen[endpoint]; ok {
				continue
			}
			seen[endpoint] = struct{}{}
			unique = append(unique, endpoint)
			fresh++
		}
		h.logger.Info("source harvested",
			"source", collector.Name(),
			"listed", len(endpoints),
			"new", fresh)
	}

	h.logger.Info("harvest complete", "sources", len(h.collectors), "candidates", len(unique))
	return unique, nil
}
