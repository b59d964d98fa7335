// Package integrity provides consistency checks over the counting data.
//
// Unlike the 'counting' package which enforces its invariants at write
// time, this package audits the stored data after the fact, catching
// damage done by manual intervention, partial restores, or bugs.
//
// # Checks Provided
//
//   - Schema: Verifies that every counting table exists and has columns.
//   - Ledger: Detects rows referencing missing sessions and locked
//     sessions without a snapshot or lock timestamp.
//   - Archive: Compares locked sessions against the exported snapshot
//     objects in the storage bucket.
//
// # HTTP Endpoints
//
//   - GET /integrity : Runs all checks.
//   - GET /integrity/schema : Runs the schema check.
//   - GET /integrity/ledger : Runs the ledger check.
//   - GET /integrity/archive : Runs the archive check.
package integrity
