// Package archive exports locked session snapshots to object storage.
//
// When a session is locked, its FinalSnapshot rows are written to the
// configured bucket as a JSON report under snapshots/<session-id>.json.
// The export is a convenience copy for downstream audit tooling; a failed
// export never rolls back the lock, because the database rows remain the
// authoritative record.
package archive
