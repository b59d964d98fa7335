// Package counting implements the collaborative physical-inventory counting
// engine: shared counting sessions that many actors scan into concurrently,
// an append-only idempotent event log, derived per-item totals, and a
// finalization step that freezes totals into an auditable snapshot and
// diffs it against the previous locked session.
//
// # Concurrency model
//
// All coordination happens through the backing store; there is no in-process
// shared mutable state. Idempotency is the concurrency control: every event
// carries a client-generated id, unique per session, and inserts use
// insert-if-absent semantics, so retries over flaky connections are no-ops.
// Event application is commutative (summation), so no ordering between
// concurrent submissions matters for correctness.
//
// Mutual exclusion exists only at the session-status boundary. A submission
// gates on the session row being active with a conditional update inside
// its transaction, so once finalization has begun, late submissions are
// rejected with CONFLICT rather than silently accepted.
//
// # Lifecycle
//
// active -> finalizing -> locked, one-directional. Both finalize paths stop
// event intake; only locked is permanent. A finalizing session may be
// re-finalized with different overrides until it is locked.
package counting
