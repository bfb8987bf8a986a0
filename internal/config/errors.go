package config

import "errors"

// Configuration validation errors.
// These errors are returned by Config.Validate() and provide specific
// information about what is wrong with the configuration.
//
// Design decision: We use package-level sentinel errors rather than
// creating new error instances in Validate(). This allows callers to use
// errors.Is() for programmatic error handling while still providing
// human-readable messages.
var (
	// ErrNoOracle is returned when no echo-IP oracle URL is configured.
	// Probing is meaningless without a reference oracle.
	ErrNoOracle = errors.New("no origin oracle configured: set an echo-IP endpoint")

	// ErrInvalidTimeout is returned when the timeout is not positive.
	// A zero or negative timeout would let probe requests block forever.
	ErrInvalidTimeout = errors.New("invalid timeout: must be positive")

	// ErrInvalidWorkers is returned when the worker count is not positive.
	// Zero workers would mean no candidate is ever probed.
	ErrInvalidWorkers = errors.New("invalid worker count: must be positive")

	// ErrInvalidSourceDelay is returned when the source delay is negative.
	// Use 0 for no pause between list sources.
	ErrInvalidSourceDelay = errors.New("invalid source delay: must be non-negative")

	// ErrConflictingReportFormats is returned when both --json and
	// --markdown are specified. Only one output format can be used at a time.
	ErrConflictingReportFormats = errors.New("conflicting report formats: --json and --markdown cannot be used together")

	// ErrStoreConflict is returned when --from-store and --no-store are
	// combined: re-verifying the store while refusing to touch it is
	// almost certainly a mistake.
	ErrStoreConflict = errors.New("conflicting store options: --from-store and --no-store cannot be used together")
)
