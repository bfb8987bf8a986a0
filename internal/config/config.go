package config

import (
	"path/filepath"
	"strings"
	"time"

	"github.com/adrg/xdg"
)

// Default configuration values.
// These values match the behavior of typical free-proxy checkers: free
// relays are slow and flaky, so timeouts are generous and concurrency is
// kept modest to avoid tripping rate limits on the echo oracles.
const (
	// DefaultOriginOracleURL is the echo endpoint that reflects the observed
	// source address of a request as JSON ({"origin": "ip1, ip2"}).
	DefaultOriginOracleURL = "http://httpbin.org/ip"

	// DefaultTimeout is the per-request timeout for oracle calls, both
	// direct and relayed. 10 seconds is long enough for slow free relays
	// while keeping a full run bounded.
	DefaultTimeout = 10 * time.Second

	// DefaultWorkers is the number of candidates probed concurrently.
	// Higher values speed up large runs but hammer the oracle; 10 keeps
	// request rates well under public oracle limits.
	DefaultWorkers = 10

	// DefaultSourceDelay is the pause inserted between list sources during
	// collection. This is network courtesy toward the list publishers, not
	// a correctness requirement.
	DefaultSourceDelay = 500 * time.Millisecond

	// DefaultUserAgent is sent on every probe request. A browser-like agent
	// avoids relays that special-case obvious bot agents.
	DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36"

	// AppName is the application name used for XDG directory paths.
	AppName = "proxyvet"

	// DefaultSourcesFile is the default source-list configuration file name.
	DefaultSourcesFile = ".proxyvet"
)

// Config holds all options for a verification run.
// This struct is populated from CLI flags and passed through the
// application via dependency injection rather than global state.
//
// Design decision: We use a single flat struct instead of nested structs
// (e.g., OracleConfig, StoreConfig) for simplicity. The number of options
// is manageable, and nesting would add complexity without benefit.
type Config struct {
	// OriginOracleURL is the echo-IP oracle endpoint. Requests to it return
	// a JSON object whose "origin" field lists the observed source
	// addresses, comma-separated.
	OriginOracleURL string

	// HeadersOracleURL is the echo-headers oracle endpoint. Requests to it
	// return a JSON object whose "headers" field maps received header names
	// to values. When empty, it is derived from OriginOracleURL by
	// replacing the trailing "/ip" path with "/headers".
	HeadersOracleURL string

	// Timeout is the deadline applied to every outbound request: identity
	// resolution, the origin probe, and the header probe. No request may
	// block past this.
	Timeout time.Duration

	// Workers bounds the number of concurrently probed candidates.
	Workers int

	// SourceDelay is the courtesy pause between list sources.
	SourceDelay time.Duration

	// UserAgent is sent on every oracle request.
	UserAgent string

	// SourcesFilePath is the path to the YAML source-list file. If empty,
	// the tool searches for .proxyvet in the current directory and then in
	// the user's home directory, falling back to the built-in source set.
	SourcesFilePath string

	// Sources holds the source list loaded from the sources file, or nil
	// when the built-in defaults apply.
	Sources *SourcesFile

	// FromStore re-verifies the relays already persisted in the database
	// instead of harvesting fresh candidates from list sources.
	FromStore bool

	// NoStore disables persistence: results are only counted and reported.
	NoStore bool

	// DBDir is the directory holding the SQLite database.
	// Defaults to the XDG data directory (~/.local/share/proxyvet on Linux).
	DBDir string

	// JSONReport and MarkdownReport select the run-summary output format.
	// Mutually exclusive; the default is a human-readable text summary.
	JSONReport     bool
	MarkdownReport bool

	// ReportFile writes the run summary to this path instead of stdout.
	ReportFile string

	// Verbose enables debug-level log output.
	Verbose bool
}

// NewConfig creates a new Config with default values.
// All fields are set to safe, sensible defaults that work for most use
// cases. Users can override specific values after creation.
func NewConfig() *Config {
	return &Config{
		OriginOracleURL: DefaultOriginOracleURL,
		Timeout:         DefaultTimeout,
		Workers:         DefaultWorkers,
		SourceDelay:     DefaultSourceDelay,
		UserAgent:       DefaultUserAgent,
		DBDir:           XDGDataDir(),
	}
}

// HeadersOracle returns the echo-headers oracle URL, deriving it from the
// origin oracle when it was not set explicitly. The derivation mirrors how
// httpbin-style oracles are laid out: /ip and /headers are siblings.
func (c *Config) HeadersOracle() string {
	if c.HeadersOracleURL != "" {
		return c.HeadersOracleURL
	}
	if strings.HasSuffix(c.OriginOracleURL, "/ip") {
		return strings.TrimSuffix(c.OriginOracleURL, "/ip") + "/headers"
	}
	return c.OriginOracleURL + "/headers"
}

// XDGDataDir returns the XDG data directory for proxyvet.
// On Linux: ~/.local/share/proxyvet
// On macOS: ~/Library/Application Support/proxyvet
// On Windows: %LOCALAPPDATA%\proxyvet
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the XDG config directory for proxyvet.
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// Validate checks if the configuration is valid.
// It returns a specific error describing what is invalid.
//
// Design decision: We validate at the config level rather than at each
// point of use to fail fast and provide clear error messages upfront.
// This is called once after CLI parsing, before any probing begins.
// We return the first error found rather than collecting all errors
// because fixing one error often makes others irrelevant.
func (c *Config) Validate() error {
	if c.OriginOracleURL == "" {
		return ErrNoOracle
	}
	if c.Timeout <= 0 {
		return ErrInvalidTimeout
	}
	if c.Workers <= 0 {
		return ErrInvalidWorkers
	}
	if c.SourceDelay < 0 {
		return ErrInvalidSourceDelay
	}
	if c.JSONReport && c.MarkdownReport {
		return ErrConflictingReportFormats
	}
	if c.FromStore && c.NoStore {
		return ErrStoreConflict
	}
	return nil
}
