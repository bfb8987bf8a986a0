// Package probe implements the anonymity classification of candidate relays.
//
// Each candidate is probed in two stages through the relay itself:
//
//  1. Origin probe: ask the echo-IP oracle who it saw connecting. A relay
//     that reports our real address, or reports several origins, is
//     transparent.
//  2. Header probe: ask the echo-headers oracle what request headers
//     arrived. A relay that forwards our real address inside a well-known
//     forwarding header (X-Forwarded-For family, Via, client-IP variants)
//     is transparent even if the origin looked clean.
//
// A transport failure in stage 1 terminates the probe as failed; stage 2
// is best-effort, and its failure leaves the stage-1 verdict standing.
// When the real identity could not be resolved the prober degrades: only
// the multiple-origins rule can mark a relay transparent.
//
// The prober is stateless between invocations. Classification is a pure
// function of the stage-1 origin list, the stage-2 header map, and the
// (immutable) real identity, so concurrent probes never interfere.
package probe
