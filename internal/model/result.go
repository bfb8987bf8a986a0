package model

import "time"

// Classification is the anonymity verdict for one candidate relay.
//
// Design decision: We use iota-based constants rather than string constants
// for efficiency in comparisons and counter indexing. The String() method
// provides human-readable output when needed.
type Classification int

const (
	// ClassFailed indicates the candidate could not be probed: the relay
	// refused the connection, the request timed out, or the oracle response
	// could not be parsed. Failed candidates are never persisted.
	ClassFailed Classification = iota

	// ClassTransparent indicates the relay forwards traffic but reveals the
	// original client, either in the oracle-observed origin addresses or in
	// a forwarded request header.
	ClassTransparent

	// ClassAnonymous indicates the relay passed both probe stages without
	// revealing the original client. Only these candidates are persisted.
	ClassAnonymous
)

// String returns a human-readable representation of the classification.
func (c Classification) String() string {
	switch c {
	case ClassFailed:
		return "failed"
	case ClassTransparent:
		return "transparent"
	case ClassAnonymous:
		return "anonymous"
	default:
		return "unknown"
	}
}

// Reason codes attached to ProbeResult. These are stable strings used in
// logs, reports, and the database, so changing them is a breaking change
// for anyone parsing stored results.
const (
	// ReasonExposesIdentity: the origin list returned through the relay
	// contained our own real address.
	ReasonExposesIdentity = "exposes real identity"

	// ReasonMultipleOrigins: the oracle observed more than one origin
	// address, the classic mark of an appending (X-Forwarded-For) relay.
	ReasonMultipleOrigins = "multiple origins reported"

	// ReasonHeaderLeak: a forwarded request header carried our real
	// address. ProbeResult.LeakedHeader names the offending header.
	ReasonHeaderLeak = "identity leaked in header"

	// ReasonElite: clean verdict, the exit address matched the relay.
	ReasonElite = "high anonymity"

	// ReasonDifferentExit: clean verdict, but the relay's exit address
	// differs from the address we connected to. Common for relays that sit
	// behind NAT or use a separate egress interface.
	ReasonDifferentExit = "exit address differs from relay"

	// ReasonTimeout: a probe request exceeded the configured deadline.
	ReasonTimeout = "timeout"

	// ReasonConnection: the relay refused or dropped the connection.
	ReasonConnection = "relay connection failed"

	// ReasonMalformed: the oracle response body was not parseable or was
	// missing the expected field. Typically a relay injecting its own
	// error page into the response.
	ReasonMalformed = "malformed oracle response"
)

// ProbeResult is the terminal, immutable outcome of probing one candidate.
// Exactly one ProbeResult is produced per candidate per run; it is either
// persisted (anonymous) or dropped (transparent, failed), never both.
type ProbeResult struct {
	// Endpoint is the candidate this result belongs to.
	Endpoint Endpoint `json:"endpoint"`

	// Classification is the final verdict.
	Classification Classification `json:"classification"`

	// OriginIPs is the ordered list of origin addresses the echo oracle
	// observed for the relayed request. Empty when the first probe stage
	// failed before a response was parsed.
	OriginIPs []string `json:"origin_ips,omitempty"`

	// Reason is one of the Reason* codes above.
	Reason string `json:"reason"`

	// LeakedHeader names the request header that carried the real identity.
	// Only set when Reason is ReasonHeaderLeak.
	LeakedHeader string `json:"leaked_header,omitempty"`

	// CheckedAt is when the probe completed.
	CheckedAt time.Time `json:"checked_at"`
}

// Persistable reports whether this result should be written to the store.
// Only anonymous relays are kept; everything else is discarded after it has
// been counted.
func (r ProbeResult) Persistable() bool {
	return r.Classification == ClassAnonymous
}
