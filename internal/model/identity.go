package model

// RealIdentity is the outbound IP address this process presents when it
// connects directly, without any relay in between. It is resolved at most
// once per run and then shared read-only by every probe worker.
type RealIdentity string

// IdentityUnknown is the sentinel value used when the real identity could
// not be resolved. Probes fall back to a degraded mode in which only the
// rules that do not need the real address can fire.
const IdentityUnknown RealIdentity = ""

// Known reports whether the identity was successfully resolved.
func (id RealIdentity) Known() bool {
	return id != IdentityUnknown
}

// String returns the resolved address, or "unknown" for the sentinel.
// The sentinel form is what appears in logs and reports.
func (id RealIdentity) String() string {
	if !id.Known() {
		return "unknown"
	}
	return string(id)
}
