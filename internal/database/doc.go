// Package database provides SQLite-based storage for proxyvet.
//
// This package implements the Store, which keeps:
//   - Relays verified anonymous, reusable as candidates in later runs
//   - Run records with the aggregate tallies of each classification run
//
// Design decision: We use SQLite (via modernc.org/sqlite) instead of other
// databases because:
// 1. No external dependencies - the database is a single file
// 2. CGO-free implementation allows easy cross-compilation
// 3. Sufficient performance for our use case
// 4. WAL mode provides good concurrent read performance
package database
