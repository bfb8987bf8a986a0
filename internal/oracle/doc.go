// Package oracle talks to the external echo endpoints used as verification
// references.
//
// An echo-IP oracle reflects the source address it observed for a request
// ({"origin": "ip1, ip2"}); an echo-headers oracle reflects the request
// headers it received ({"headers": {...}}). Comparing what the oracle saw
// for a relayed request against our own directly-resolved address is what
// lets the prober tell an anonymous relay from a transparent one.
//
// The oracle is untrusted input: responses may be error pages injected by
// a broken relay, truncated bodies, or JSON missing the expected field.
// Every parse failure is reported as ErrMalformedResponse so callers can
// classify it without string matching.
package oracle
