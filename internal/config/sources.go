package config

// SourceKind selects the parser used for one proxy list source.
type SourceKind string

const (
	// SourceKindPlain is a plain text list, one "host:port" per line.
	// Used by the raw GitHub lists (TheSpeedX, sunny9577, clarketm) and
	// the proxy-list.download API.
	SourceKindPlain SourceKind = "plain"

	// SourceKindProxyScrape is the proxyscrape.com v4 JSON API
	// ({"proxies": [{"ip": ..., "port": ..., "alive": ...}]}).
	SourceKindProxyScrape SourceKind = "proxyscrape"

	// SourceKindGeonode is the geonode.com JSON API
	// ({"data": [{"ip": ..., "port": ...}]}).
	SourceKindGeonode SourceKind = "geonode"

	// SourceKindHTML is an HTML page carrying an address table, scraped
	// with a regular expression (free-proxy-list.net style).
	SourceKindHTML SourceKind = "html"
)

// SourceSpec describes one proxy list source.
type SourceSpec struct {
	// Name identifies the source in logs.
	Name string `yaml:"name"`

	// URL is the list endpoint to fetch.
	URL string `yaml:"url"`

	// Kind selects the parser for the response body.
	Kind SourceKind `yaml:"kind"`
}

// SourcesFile represents the structure of the .proxyvet source-list file.
// It lets users replace or extend the built-in source set without
// rebuilding the tool.
type SourcesFile struct {
	// Sources is the ordered list of sources to harvest. Order matters:
	// earlier sources win when the same endpoint appears in several lists.
	Sources []SourceSpec `yaml:"sources"`
}

// DefaultSources is the built-in source set, used when no sources file is
// found. The set mirrors the public lists free-proxy checkers commonly
// aggregate.
func DefaultSources() []SourceSpec {
	return []SourceSpec{
		{Name: "thespeedx", URL: "https://raw.githubusercontent.com/TheSpeedX/SOCKS-List/master/http.txt", Kind: SourceKindPlain},
		{Name: "proxyscrape", URL: "https://api.proxyscrape.com/v4/free-proxy-list/get?request=get_proxies&skip=0&proxy_format=protocolipport&format=json&limit=500", Kind: SourceKindProxyScrape},
		{Name: "geonode", URL: "https://proxylist.geonode.com/api/proxy-list?limit=200&page=1&sort_by=lastChecked&sort_type=desc", Kind: SourceKindGeonode},
		{Name: "free-proxy-list", URL: "https://free-proxy-list.net/", Kind: SourceKindHTML},
		{Name: "proxy-list-download-http", URL: "https://www.proxy-list.download/api/v1/get?type=http", Kind: SourceKindPlain},
		{Name: "proxy-list-download-https", URL: "https://www.proxy-list.download/api/v1/get?type=https", Kind: SourceKindPlain},
		{Name: "sunny9577", URL: "https://raw.githubusercontent.com/sunny9577/proxy-scraper/master/proxies.txt", Kind: SourceKindPlain},
		{Name: "clarketm", URL: "https://raw.githubusercontent.com/clarketm/proxy-list/master/proxy-list-raw.txt", Kind: SourceKindPlain},
	}
}

// Specs returns the configured sources, falling back to the built-in set
// when the file declared none.
func (sf *SourcesFile) Specs() []SourceSpec {
	if sf == nil || len(sf.Sources) == 0 {
		return DefaultSources()
	}
	return sf.Sources
}
