package models

import "time"

// EventInput is one candidate event in a submit call, as sent by a client.
type EventInput struct {
	// EventID is the client-generated idempotency key, unique per session.
	EventID string `json:"event_id"`
	// ItemKey is the scanned identifier, normalized before storage.
	ItemKey string `json:"item_key"`
	// Delta is the signed quantity adjustment.
	Delta int64 `json:"delta"`
	// Timestamp is the client-asserted event time (RFC 3339).
	Timestamp string `json:"timestamp"`
}

// ItemTotal is the current quantity for one item in a session.
type ItemTotal struct {
	ItemKey  string `gorm:"column:item_key" json:"item_key"`
	Quantity int64  `gorm:"column:quantity" json:"quantity"`
}

// Contribution is one actor's summed deltas for one item. Purely
// informational attribution.
type Contribution struct {
	ActorID  string `gorm:"column:actor_id" json:"actor_id"`
	ItemKey  string `gorm:"column:item_key" json:"item_key"`
	Quantity int64  `gorm:"column:quantity" json:"quantity"`
}

// SubmitResult is returned from a submit call so the client can reconcile
// its local optimistic state immediately.
type SubmitResult struct {
	// AcceptedCount is how many events were accepted in this call. Dedup is
	// invisible here: a retried batch reports the same count as the first
	// attempt.
	AcceptedCount int           `json:"accepted_count"`
	Totals        []ItemTotal   `json:"totals"`
	Participants  []Participant `json:"participants"`
}

// SessionState is the full client view of a session.
type SessionState struct {
	Session       Session        `json:"session"`
	Participants  []Participant  `json:"participants"`
	Totals        []ItemTotal    `json:"totals"`
	Contributions []Contribution `json:"contributions"`
	// PendingEventCount is the total number of events recorded. A diagnostic
	// measure of how much history exists, not a queue depth.
	PendingEventCount int64      `json:"pending_event_count"`
	LastSyncAt        *time.Time `json:"last_sync_at,omitempty"`
}

// Mismatch is a nonzero difference between the current session's final
// quantity for an item and that item's quantity in the baseline session.
type Mismatch struct {
	ItemKey  string `json:"item_key"`
	Current  int64  `json:"current"`
	Baseline int64  `json:"baseline"`
	Delta    int64  `json:"delta"`
}

// FinalizeResult is returned from a finalize call.
type FinalizeResult struct {
	Totals     []ItemTotal `json:"totals"`
	Mismatches []Mismatch  `json:"mismatches"`
	// ArchiveObject is the object name of the exported snapshot, when the
	// session was locked and archival is enabled.
	ArchiveObject string `json:"archive_object,omitempty"`
	// ArchiveError reports a failed export. The lock itself is not rolled
	// back; the database rows remain the source of truth.
	ArchiveError string `json:"archive_error,omitempty"`
}
