package oracle

import (
	"context"
	"log/slog"
	"net/http"
	"sync"

	"github.com/mkosuda/proxyvet/internal/model"
)

// Resolver determines the process's real outbound address by asking the
// echo-IP oracle directly, with no relay in between. The answer is the
// reference every probe compares against.
//
// Resolution happens at most once: the first Resolve performs the network
// call and every later call returns the memoized snapshot. Failure is not
// an error — the run proceeds in degraded mode with IdentityUnknown — so
// Resolve never returns one.
type Resolver struct {
	oracle *Client
	httpc  *http.Client
	logger *slog.Logger

	once     sync.Once
	identity model.RealIdentity
}

// NewResolver creates a Resolver that queries the given oracle through the
// given direct (unproxied) HTTP client.
func NewResolver(oracle *Client, httpc *http.Client, logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = slog.Default()
	}
	return &Resolver{
		oracle: oracle,
		httpc:  httpc,
		logger: logger,
	}
}

// Resolve returns the real outbound address, performing the oracle call on
// first use. On any failure it returns IdentityUnknown; subsequent calls do
// not retry. This is a single blocking prerequisite step, not something to
// run alongside probes.
func (r *Resolver) Resolve(ctx context.Context) model.RealIdentity {
	r.once.Do(func() {
		origins, err := r.oracle.Origin(ctx, r.httpc)
		if err != nil {
			r.logger.Warn("failed to resolve real outbound address; continuing in degraded mode",
				"error", err,
			)
			r.identity = model.IdentityUnknown
			return
		}

		// The first entry is our own address even if an intermediate hop
		// appended itself.
		r.identity = model.RealIdentity(origins[0])
		r.logger.Info("resolved real outbound address", "identity", r.identity.String())
	})

	return r.identity
}
