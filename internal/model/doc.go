// Package model defines the core data structures used throughout proxyvet.
//
// This package contains the following main types:
//   - Endpoint: A candidate relay in "host:port" form
//   - Classification: The anonymity verdict for one candidate
//   - ProbeResult: The terminal outcome of probing one candidate
//   - Counters: Run-wide tallies updated from concurrent probe completions
//   - RealIdentity: The checker's own outbound IP address
//
// Design decision: We separate models into their own package to avoid circular
// dependencies. Multiple packages (source, probe, runner, database, report)
// need to use these types, so centralizing them prevents import cycles.
//
// The models are designed to be serializable to JSON for report output and
// database storage.
package model
