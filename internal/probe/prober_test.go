package probe

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/mkosuda/proxyvet/internal/model"
	"github.com/mkosuda/proxyvet/internal/oracle"
	"github.com/mkosuda/proxyvet/internal/relay"
)

// fakeRelay runs an HTTP server that plays both roles of a probe: it is the
// relay the client dials and the oracle answering /ip and /headers. The
// probe client sends forward-proxied requests (absolute URIs) at it, and
// the handler dispatches on the URL path, so one server exercises the full
// stage-1/stage-2 flow.
type fakeRelay struct {
	srv *httptest.Server

	// originBody is the /ip response body.
	originBody string

	// headersBody is the /headers response body. Empty means fail the
	// header probe with a 502.
	headersBody string

	// stallOrigin makes /ip hang until the server closes.
	stallOrigin bool
}

func (f *fakeRelay) start(t *testing.T) model.Endpoint {
	t.Helper()

	stall := make(chan struct{})
	f.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/ip":
			if f.stallOrigin {
				<-stall
				return
			}
			fmt.Fprint(w, f.originBody)
		case "/headers":
			if f.headersBody == "" {
				http.Error(w, "bad gateway", http.StatusBadGateway)
				return
			}
			fmt.Fprint(w, f.headersBody)
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(func() {
		close(stall)
		f.srv.Close()
	})

	endpoint, err := model.ParseEndpoint(f.srv.Listener.Addr().String())
	if err != nil {
		t.Fatal(err)
	}
	return endpoint
}

// newTestProber builds a prober whose oracle URLs point at an unreachable
// host; the fake relay intercepts the absolute URIs regardless.
func newTestProber(timeout time.Duration) *Prober {
	oracleClient := oracle.NewClient("http://oracle.invalid/ip", "http://oracle.invalid/headers", "test-agent")
	factory := relay.NewClientFactory(timeout)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return New(oracleClient, factory, logger)
}

const testIdentity = model.RealIdentity("203.0.113.9")

// TestProbeAnonymous covers the clean two-stage pass: the relay reports
// only its own address and forwards no identifying header.
func TestProbeAnonymous(t *testing.T) {
	t.Parallel()

	f := &fakeRelay{
		headersBody: `{"headers": {"Accept": "application/json", "Via": "1.1 something-else"}}`,
	}
	endpoint := f.start(t)
	f.originBody = fmt.Sprintf(`{"origin": "%s"}`, endpoint.Host())

	result := newTestProber(5*time.Second).Probe(context.Background(), endpoint, testIdentity)

	if result.Classification != model.ClassAnonymous {
		t.Fatalf("classification = %s (%s), expected anonymous", result.Classification, result.Reason)
	}
	if result.Reason != model.ReasonElite {
		t.Errorf("reason = %q, expected %q", result.Reason, model.ReasonElite)
	}
	if len(result.OriginIPs) != 1 || result.OriginIPs[0] != endpoint.Host() {
		t.Errorf("origins = %v, expected the relay's own address", result.OriginIPs)
	}
}

// TestProbeTransparentIdentityInOrigin covers stage-1 rule 1: our real
// address showing up in the origin list.
func TestProbeTransparentIdentityInOrigin(t *testing.T) {
	t.Parallel()

	f := &fakeRelay{originBody: `{"origin": "203.0.113.9"}`}
	endpoint := f.start(t)

	result := newTestProber(5*time.Second).Probe(context.Background(), endpoint, testIdentity)

	if result.Classification != model.ClassTransparent {
		t.Fatalf("classification = %s, expected transparent", result.Classification)
	}
	if result.Reason != model.ReasonExposesIdentity {
		t.Errorf("reason = %q, expected %q", result.Reason, model.ReasonExposesIdentity)
	}
}

// TestProbeTransparentMultipleOrigins covers stage-1 rule 2, regardless of
// what stage 2 would have said.
func TestProbeTransparentMultipleOrigins(t *testing.T) {
	t.Parallel()

	f := &fakeRelay{
		headersBody: `{"headers": {}}`,
	}
	endpoint := f.start(t)
	f.originBody = fmt.Sprintf(`{"origin": "%s, 203.0.113.9"}`, endpoint.Host())

	result := newTestProber(5*time.Second).Probe(context.Background(), endpoint, testIdentity)

	if result.Classification != model.ClassTransparent {
		t.Fatalf("classification = %s, expected transparent", result.Classification)
	}
	if result.Reason != model.ReasonMultipleOrigins {
		t.Errorf("reason = %q, expected %q", result.Reason, model.ReasonMultipleOrigins)
	}
	if len(result.OriginIPs) != 2 {
		t.Errorf("origins = %v, expected both reported addresses", result.OriginIPs)
	}
}

// TestProbeTransparentHeaderLeak covers stage 2: a clean origin but the
// real address forwarded in a header.
func TestProbeTransparentHeaderLeak(t *testing.T) {
	t.Parallel()

	f := &fakeRelay{
		headersBody: `{"headers": {"X-Forwarded-For": "203.0.113.9"}}`,
	}
	endpoint := f.start(t)
	f.originBody = fmt.Sprintf(`{"origin": "%s"}`, endpoint.Host())

	result := newTestProber(5*time.Second).Probe(context.Background(), endpoint, testIdentity)

	if result.Classification != model.ClassTransparent {
		t.Fatalf("classification = %s, expected transparent", result.Classification)
	}
	if result.Reason != model.ReasonHeaderLeak {
		t.Errorf("reason = %q, expected %q", result.Reason, model.ReasonHeaderLeak)
	}
	if result.LeakedHeader != "X-Forwarded-For" {
		t.Errorf("leaked header = %q, expected X-Forwarded-For", result.LeakedHeader)
	}
}

// TestProbeHeaderStageBestEffort verifies a failing header probe does not
// overturn the provisional verdict from stage 1.
func TestProbeHeaderStageBestEffort(t *testing.T) {
	t.Parallel()

	f := &fakeRelay{} // headersBody empty: /headers answers 502
	endpoint := f.start(t)
	f.originBody = fmt.Sprintf(`{"origin": "%s"}`, endpoint.Host())

	result := newTestProber(5*time.Second).Probe(context.Background(), endpoint, testIdentity)

	if result.Classification != model.ClassAnonymous {
		t.Errorf("classification = %s (%s), expected anonymous despite header-probe failure",
			result.Classification, result.Reason)
	}
}

// TestProbeFailedTimeout verifies a stalled stage 1 yields failed/timeout
// and never reaches stage 2.
func TestProbeFailedTimeout(t *testing.T) {
	t.Parallel()

	f := &fakeRelay{stallOrigin: true}
	endpoint := f.start(t)

	result := newTestProber(100*time.Millisecond).Probe(context.Background(), endpoint, testIdentity)

	if result.Classification != model.ClassFailed {
		t.Fatalf("classification = %s, expected failed", result.Classification)
	}
	if result.Reason != model.ReasonTimeout {
		t.Errorf("reason = %q, expected %q", result.Reason, model.ReasonTimeout)
	}
}

// TestProbeFailedConnection verifies an unreachable relay yields
// failed/connection.
func TestProbeFailedConnection(t *testing.T) {
	t.Parallel()

	// Reserve a port and close it so nothing is listening there.
	f := &fakeRelay{originBody: `{"origin": "ignored"}`}
	endpoint := f.start(t)
	f.srv.Close()

	result := newTestProber(2*time.Second).Probe(context.Background(), endpoint, testIdentity)

	if result.Classification != model.ClassFailed {
		t.Fatalf("classification = %s, expected failed", result.Classification)
	}
	if result.Reason != model.ReasonConnection {
		t.Errorf("reason = %q, expected %q", result.Reason, model.ReasonConnection)
	}
}

// TestProbeFailedMalformed verifies a relay substituting its own content
// for the oracle's yields failed/malformed.
func TestProbeFailedMalformed(t *testing.T) {
	t.Parallel()

	f := &fakeRelay{originBody: `<html>totally a proxy error page</html>`}
	endpoint := f.start(t)

	result := newTestProber(5*time.Second).Probe(context.Background(), endpoint, testIdentity)

	if result.Classification != model.ClassFailed {
		t.Fatalf("classification = %s, expected failed", result.Classification)
	}
	if result.Reason != model.ReasonMalformed {
		t.Errorf("reason = %q, expected %q", result.Reason, model.ReasonMalformed)
	}
}

// TestProbeDifferentExit covers the single-origin case where the exit
// address does not match the relay address: still anonymous when the
// headers are clean, but with the distinct reason.
func TestProbeDifferentExit(t *testing.T) {
	t.Parallel()

	f := &fakeRelay{
		originBody:  `{"origin": "198.51.100.77"}`,
		headersBody: `{"headers": {}}`,
	}
	endpoint := f.start(t)

	result := newTestProber(5*time.Second).Probe(context.Background(), endpoint, testIdentity)

	if result.Classification != model.ClassAnonymous {
		t.Fatalf("classification = %s (%s), expected anonymous", result.Classification, result.Reason)
	}
	if result.Reason != model.ReasonDifferentExit {
		t.Errorf("reason = %q, expected %q", result.Reason, model.ReasonDifferentExit)
	}
}

// TestProbeDegradedMode covers probing without a resolved identity: the
// header stage is disabled, the identity rule cannot fire, and only the
// multiple-origins rule can mark a relay transparent.
func TestProbeDegradedMode(t *testing.T) {
	t.Parallel()

	t.Run("clean single origin is anonymous without a header probe", func(t *testing.T) {
		t.Parallel()

		var headerProbes int
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch r.URL.Path {
			case "/ip":
				fmt.Fprint(w, `{"origin": "198.51.100.77"}`)
			case "/headers":
				headerProbes++
				fmt.Fprint(w, `{"headers": {"X-Forwarded-For": "203.0.113.9"}}`)
			}
		}))
		defer srv.Close()

		endpoint, err := model.ParseEndpoint(srv.Listener.Addr().String())
		if err != nil {
			t.Fatal(err)
		}

		result := newTestProber(5*time.Second).Probe(context.Background(), endpoint, model.IdentityUnknown)

		if result.Classification != model.ClassAnonymous {
			t.Errorf("classification = %s, expected anonymous in degraded mode", result.Classification)
		}
		if headerProbes != 0 {
			t.Errorf("header oracle probed %d times, expected 0 in degraded mode", headerProbes)
		}
	})

	t.Run("multiple origins still transparent", func(t *testing.T) {
		t.Parallel()

		f := &fakeRelay{originBody: `{"origin": "198.51.100.77, 198.51.100.78"}`}
		endpoint := f.start(t)

		result := newTestProber(5*time.Second).Probe(context.Background(), endpoint, model.IdentityUnknown)

		if result.Classification != model.ClassTransparent {
			t.Errorf("classification = %s, expected transparent", result.Classification)
		}
		if result.Reason != model.ReasonMultipleOrigins {
			t.Errorf("reason = %q, expected %q", result.Reason, model.ReasonMultipleOrigins)
		}
	})
}

// TestProbeDeterministic verifies probing the same candidate twice against
// fixed oracle responses yields the same classification.
func TestProbeDeterministic(t *testing.T) {
	t.Parallel()

	f := &fakeRelay{
		headersBody: `{"headers": {}}`,
	}
	endpoint := f.start(t)
	f.originBody = fmt.Sprintf(`{"origin": "%s"}`, endpoint.Host())

	p := newTestProber(5 * time.Second)
	first := p.Probe(context.Background(), endpoint, testIdentity)
	second := p.Probe(context.Background(), endpoint, testIdentity)

	if first.Classification != second.Classification || first.Reason != second.Reason {
		t.Errorf("probe not deterministic: first=%s/%s second=%s/%s",
			first.Classification, first.Reason, second.Classification, second.Reason)
	}
}
