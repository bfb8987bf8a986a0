package source

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/mkosuda/proxyvet/internal/config"
	"github.com/mkosuda/proxyvet/internal/model"
)

const testUserAgent = "proxyvet-test"

// serveBody runs a test server answering every request with the given
// body and returns a spec pointing at it.
func serveBody(t *testing.T, kind config.SourceKind, body string) config.SourceSpec {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, body)
	}))
	t.Cleanup(srv.Close)

	return config.SourceSpec{Name: "test-" + string(kind), URL: srv.URL, Kind: kind}
}

func collect(t *testing.T, spec config.SourceSpec) []model.Endpoint {
	t.Helper()

	collector, err := New(spec, &http.Client{}, testUserAgent)
	if err != nil {
		t.Fatal(err)
	}
	endpoints, err := collector.Collect(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	return endpoints
}

func TestPlainCollector(t *testing.T) {
	t.Parallel()

	body := "10.0.0.1:8080\n\n  10.0.0.2:3128  \n# comment\nnot-an-endpoint\n10.0.0.3:99999\n10.0.0.4:80"
	spec := serveBody(t, config.SourceKindPlain, body)

	got := collect(t, spec)
	want := []model.Endpoint{"10.0.0.1:8080", "10.0.0.2:3128", "10.0.0.4:80"}

	if len(got) != len(want) {
		t.Fatalf("collected %v, expected %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("endpoint[%d] = %q, expected %q", i, got[i], want[i])
		}
	}
}

func TestProxyScrapeCollector(t *testing.T) {
	t.Parallel()

	body := `{"proxies": [
		{"ip": "10.0.0.1", "port": 8080, "alive": true},
		{"ip": "10.0.0.2", "port": 3128, "alive": false},
		{"ip": "10.0.0.3", "port": 80, "alive": true}
	]}`
	spec := serveBody(t, config.SourceKindProxyScrape, body)

	got := collect(t, spec)
	want := []model.Endpoint{"10.0.0.1:8080", "10.0.0.3:80"}

	if len(got) != len(want) {
		t.Fatalf("collected %v, expected %v (dead entries dropped)", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("endpoint[%d] = %q, expected %q", i, got[i], want[i])
		}
	}
}

func TestGeonodeCollector(t *testing.T) {
	t.Parallel()

	// Geonode reports ports as JSON strings.
	body := `{"data": [
		{"ip": "10.0.0.1", "port": "8080"},
		{"ip": "10.0.0.2", "port": "3128"}
	]}`
	spec := serveBody(t, config.SourceKindGeonode, body)

	got := collect(t, spec)
	want := []model.Endpoint{"10.0.0.1:8080", "10.0.0.2:3128"}

	if len(got) != len(want) {
		t.Fatalf("collected %v, expected %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("endpoint[%d] = %q, expected %q", i, got[i], want[i])
		}
	}
}

func TestHTMLCollector(t *testing.T) {
	t.Parallel()

	body := `<table><tbody>
		<tr><td>10.0.0.1</td><td>8080</td><td>US</td></tr>
		<tr><td>10.0.0.2</td><td>3128</td><td>DE</td></tr>
	</tbody></table>`
	spec := serveBody(t, config.SourceKindHTML, body)

	got := collect(t, spec)
	want := []model.Endpoint{"10.0.0.1:8080", "10.0.0.2:3128"}

	if len(got) != len(want) {
		t.Fatalf("collected %v, expected %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("endpoint[%d] = %q, expected %q", i, got[i], want[i])
		}
	}
}

func TestCollectorBadStatus(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	}))
	t.Cleanup(srv.Close)

	collector, err := New(config.SourceSpec{Name: "limited", URL: srv.URL, Kind: config.SourceKindPlain}, &http.Client{}, testUserAgent)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := collector.Collect(context.Background()); err == nil {
		t.Error("Collect() succeeded against a non-2xx source, expected error")
	}
}

func TestNewUnknownKind(t *testing.T) {
	t.Parallel()

	if _, err := New(config.SourceSpec{Name: "odd", URL: "http://example.com", Kind: "csv"}, &http.Client{}, testUserAgent); err == nil {
		t.Error("New() accepted an unknown source kind, expected error")
	}
}
