// Package main provides the entry point for the proxyvet CLI.
//
// Proxyvet harvests free proxy relays from public list sources and
// classifies each one by whether it hides the client's real address.
//
// Usage:
//
//	proxyvet check
//	proxyvet check --from-store
//	proxyvet list
//
// See --help for all available options.
package main

// main is the entry point for proxyvet.
func main() {
	Execute()
}
