package probe

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"time"

	"github.com/mkosuda/proxyvet/internal/model"
	"github.com/mkosuda/proxyvet/internal/oracle"
	"github.com/mkosuda/proxyvet/internal/relay"
)

// Prober classifies one candidate relay at a time. It holds no mutable
// state between invocations; the oracle client and relay factory it wraps
// are themselves immutable, so a single Prober serves all workers.
type Prober struct {
	oracle  *oracle.Client
	factory *relay.ClientFactory
	logger  *slog.Logger
}

// New creates a Prober using the given oracle client and relay factory.
func New(oracleClient *oracle.Client, factory *relay.ClientFactory, logger *slog.Logger) *Prober {
	if logger == nil {
		logger = slog.Default()
	}
	return &Prober{
		oracle:  oracleClient,
		factory: factory,
		logger:  logger,
	}
}

// Probe classifies the candidate against the resolved identity and returns
// its terminal result. Errors never escape: every failure mode maps to a
// failed classification with a reason, so one broken candidate cannot
// disturb the run.
func (p *Prober) Probe(ctx context.Context, endpoint model.Endpoint, identity model.RealIdentity) model.ProbeResult {
	httpc, err := p.factory.ClientFor(endpoint)
	if err != nil {
		return p.failed(endpoint, nil, model.ReasonConnection)
	}

	// Stage 1: who did the oracle see connecting?
	origins, err := p.oracle.Origin(ctx, httpc)
	if err != nil {
		p.logger.Debug("origin probe failed", "endpoint", endpoint, "error", err)
		return p.failed(endpoint, nil, failureReason(err))
	}

	if identity.Known() && slices.Contains(origins, string(identity)) {
		return p.transparent(endpoint, origins, model.ReasonExposesIdentity, "")
	}
	if len(origins) > 1 {
		return p.transparent(endpoint, origins, model.ReasonMultipleOrigins, "")
	}

	// Single clean origin. A relay whose exit differs from the address we
	// dialed is usually NATed or multi-homed; it stays a candidate for the
	// anonymous verdict but keeps a distinct reason so the caller can tell
	// the cases apart.
	reason := model.ReasonElite
	if origins[0] != endpoint.Host() {
		reason = model.ReasonDifferentExit
		p.logger.Debug("relay exit address differs from relay address",
			"endpoint", endpoint,
			"exit", origins[0],
		)
	}

	// Stage 2: did the relay forward our address in a header? Without a
	// known identity there is nothing to look for, so the stage is skipped
	// entirely in degraded mode.
	if identity.Known() {
		headers, err := p.oracle.Headers(ctx, httpc)
		if err != nil {
			// Best effort: the stage-1 verdict stands.
			p.logger.Debug("header probe failed; keeping origin verdict",
				"endpoint", endpoint,
				"error", err,
			)
		} else if name, found := FindLeak(headers, identity); found {
			return p.transparent(endpoint, origins, model.ReasonHeaderLeak, name)
		}
	}

	return model.ProbeResult{
		Endpoint:       endpoint,
		Classification: model.ClassAnonymous,
		OriginIPs:      origins,
		Reason:         reason,
		CheckedAt:      time.Now(),
	}
}

// failed builds a terminal failed result.
func (p *Prober) failed(endpoint model.Endpoint, origins []string, reason string) model.ProbeResult {
	return model.ProbeResult{
		Endpoint:       endpoint,
		Classification: model.ClassFailed,
		OriginIPs:      origins,
		Reason:         reason,
		CheckedAt:      time.Now(),
	}
}

// transparent builds a terminal transparent result.
func (p *Prober) transparent(endpoint model.Endpoint, origins []string, reason, leakedHeader string) model.ProbeResult {
	return model.ProbeResult{
		Endpoint:       endpoint,
		Classification: model.ClassTransparent,
		OriginIPs:      origins,
		Reason:         reason,
		LeakedHeader:   leakedHeader,
		CheckedAt:      time.Now(),
	}
}

// failureReason maps a stage-1 transport error to its reason code.
func failureReason(err error) string {
	switch {
	case relay.IsTimeout(err):
		return model.ReasonTimeout
	case errors.Is(err, oracle.ErrMalformedResponse):
		return model.ReasonMalformed
	default:
		return model.ReasonConnection
	}
}
