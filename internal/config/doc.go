// Package config provides configuration structures and utilities for proxyvet.
// It defines the main options for harvesting candidate relays, probing them
// against the echo oracles, and persisting verified results.
package config
