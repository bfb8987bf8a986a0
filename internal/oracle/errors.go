package oracle

import "errors"

// Oracle response errors.
//
// Design decision: We define sentinel errors rather than wrapping all
// failures generically so the prober can map each failure mode to its own
// classification reason with errors.Is instead of matching message text.
var (
	// ErrMalformedResponse is returned when an oracle response body cannot
	// be parsed or is missing the expected field. Through a relay this
	// usually means the relay substituted its own content for the oracle's.
	ErrMalformedResponse = errors.New("malformed oracle response")

	// ErrBadStatus is returned when the oracle answers with a non-2xx
	// status. Through a relay this is typically the relay's own error page
	// (502 and friends), not the oracle misbehaving.
	ErrBadStatus = errors.New("unexpected oracle status")
)
