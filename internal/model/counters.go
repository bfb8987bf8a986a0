package model

import "sync/atomic"

// Counters tallies probe outcomes across one run. Probe completions arrive
// from many workers at once, so each field is an atomic counter: increments
// are never lost regardless of completion interleaving.
//
// Design decision: We use atomic.Int64 rather than a mutex-guarded struct
// because the counters are the only shared mutable state in a run and each
// update touches exactly one field. A mutex would serialize completions for
// no benefit.
type Counters struct {
	anonymous   atomic.Int64
	transparent atomic.Int64
	failed      atomic.Int64
}

// Record adds one outcome to the tally. Unknown classifications count as
// failed so every probed candidate is accounted for exactly once.
func (c *Counters) Record(cl Classification) {
	switch cl {
	case ClassAnonymous:
		c.anonymous.Add(1)
	case ClassTransparent:
		c.transparent.Add(1)
	default:
		c.failed.Add(1)
	}
}

// Snapshot returns a plain-value copy of the current tallies.
func (c *Counters) Snapshot() CountersSnapshot {
	return CountersSnapshot{
		Anonymous:   c.anonymous.Load(),
		Transparent: c.transparent.Load(),
		Failed:      c.failed.Load(),
	}
}

// CountersSnapshot is an immutable copy of the run tallies, safe to pass
// around after the run has completed. This is the sole required output of
// a full run.
type CountersSnapshot struct {
	Anonymous   int64 `json:"anonymous"`
	Transparent int64 `json:"transparent"`
	Failed      int64 `json:"failed"`
}

// Total returns the number of candidates that produced a terminal result.
func (s CountersSnapshot) Total() int64 {
	return s.Anonymous + s.Transparent + s.Failed
}
