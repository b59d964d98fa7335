package models

import (
	"time"

	"gorm.io/gorm"
)

// SessionStatus is the lifecycle state of a counting session.
type SessionStatus string

const (
	// StatusActive accepts count events.
	StatusActive SessionStatus = "active"
	// StatusFinalizing has been finalized without a lock; events are no
	// longer accepted, but the snapshot may still be recomputed.
	StatusFinalizing SessionStatus = "finalizing"
	// StatusLocked is terminal; the snapshot is permanent and usable as a
	// future baseline.
	StatusLocked SessionStatus = "locked"
)

// Session represents one bounded, collaborative counting effort.
// Sessions are never physically deleted; they are the audit record.
type Session struct {
	ID        string        `gorm:"column:id;primaryKey;size:36" json:"id"`
	Name      string        `gorm:"column:name;size:255" json:"name"`
	HostID    string        `gorm:"column:host_id;size:64" json:"host_id"`
	CreatedBy string        `gorm:"column:created_by;size:64" json:"created_by"`
	Status    SessionStatus `gorm:"column:status;size:16;index" json:"status"`

	// BaselineSessionID is an informational link to a prior session used as
	// a starting point. Mismatch comparison does not use it; the most
	// recently locked session is located at finalize time instead.
	BaselineSessionID *string `gorm:"column:baseline_session_id;size:36" json:"baseline_session_id,omitempty"`

	CreatedAt  time.Time  `gorm:"column:created_at" json:"created_at"`
	UpdatedAt  time.Time  `gorm:"column:updated_at" json:"updated_at"`
	LastSyncAt *time.Time `gorm:"column:last_sync_at" json:"last_sync_at,omitempty"`
	LockedAt   *time.Time `gorm:"column:locked_at" json:"locked_at,omitempty"`
}

// TableName overrides the table name.
func (Session) TableName() string {
	return "sessions"
}

// Participant is one actor's membership in one session. Last-seen is
// advisory presence information only; it never gates event acceptance.
type Participant struct {
	SessionID   string    `gorm:"column:session_id;primaryKey;size:36" json:"session_id"`
	ActorID     string    `gorm:"column:actor_id;primaryKey;size:64" json:"actor_id"`
	DisplayName string    `gorm:"column:display_name;size:255" json:"display_name"`
	JoinedAt    time.Time `gorm:"column:joined_at" json:"joined_at"`
	LastSeenAt  time.Time `gorm:"column:last_seen_at" json:"last_seen_at"`
}

// TableName overrides the table name.
func (Participant) TableName() string {
	return "participants"
}

// CountEvent is one atomic, idempotent quantity adjustment. The pair
// (session_id, event_id) is the idempotency key: a resubmission with the
// same pair has no additional effect. Events are immutable; corrections are
// made with new compensating events, never by mutating history.
type CountEvent struct {
	SessionID       string    `gorm:"column:session_id;primaryKey;size:36" json:"session_id"`
	EventID         string    `gorm:"column:event_id;primaryKey;size:64" json:"event_id"`
	ActorID         string    `gorm:"column:actor_id;size:64;index" json:"actor_id"`
	ItemKey         string    `gorm:"column:item_key;size:128;index" json:"item_key"`
	Delta           int64     `gorm:"column:delta" json:"delta"`
	ClientTimestamp time.Time `gorm:"column:client_timestamp" json:"client_timestamp"`
	CreatedBy       string    `gorm:"column:created_by;size:64" json:"created_by"`
	CreatedAt       time.Time `gorm:"column:created_at" json:"created_at"`
}

// TableName overrides the table name.
func (CountEvent) TableName() string {
	return "count_events"
}

// ManualOverride supersedes the summed event total for one item during
// finalization. At most one override per item per session. It does not
// rewrite the event log or the live aggregate seen by counters.
type ManualOverride struct {
	SessionID string    `gorm:"column:session_id;primaryKey;size:36" json:"session_id"`
	ItemKey   string    `gorm:"column:item_key;primaryKey;size:128" json:"item_key"`
	Quantity  int64     `gorm:"column:quantity" json:"quantity"`
	SetBy     string    `gorm:"column:set_by;size:64" json:"set_by"`
	UpdatedAt time.Time `gorm:"column:updated_at" json:"updated_at"`
}

// TableName overrides the table name.
func (ManualOverride) TableName() string {
	return "manual_overrides"
}

// FinalSnapshot is one immutable row per (session, item) written at finalize
// time. Re-finalizing before lock upserts; once the session is locked the
// rows are permanent.
type FinalSnapshot struct {
	SessionID   string    `gorm:"column:session_id;primaryKey;size:36" json:"session_id"`
	ItemKey     string    `gorm:"column:item_key;primaryKey;size:128" json:"item_key"`
	Quantity    int64     `gorm:"column:quantity" json:"quantity"`
	FinalizedBy string    `gorm:"column:finalized_by;size:64" json:"finalized_by"`
	FinalizedAt time.Time `gorm:"column:finalized_at" json:"finalized_at"`
}

// TableName overrides the table name.
func (FinalSnapshot) TableName() string {
	return "final_snapshots"
}

// AutoMigrate creates or updates the counting tables.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&Session{},
		&Participant{},
		&CountEvent{},
		&ManualOverride{},
		&FinalSnapshot{},
	)
}

// Tables lists the counting table names for schema verification.
func Tables() []string {
	return []string{
		Session{}.TableName(),
		Participant{}.TableName(),
		CountEvent{}.TableName(),
		ManualOverride{}.TableName(),
		FinalSnapshot{}.TableName(),
	}
}
