package checks

import (
	"fmt"

	"stocktake/feature/counting/models"

	"gorm.io/gorm"
)

// LedgerReport strictly types the result of a ledger consistency check.
// Sessions are never deleted, so any row pointing at a missing session
// means something wrote around the service layer.
type LedgerReport struct {
	Matched bool `json:"matched"`

	OrphanParticipants int64 `json:"orphan_participants"`
	OrphanEvents       int64 `json:"orphan_events"`
	OrphanOverrides    int64 `json:"orphan_overrides"`
	OrphanSnapshots    int64 `json:"orphan_snapshots"`

	// LockedWithoutSnapshot lists locked sessions with no snapshot rows.
	// A lock always writes the snapshot in the same transaction.
	LockedWithoutSnapshot []string `json:"locked_without_snapshot"`

	// LockedWithoutTimestamp lists locked sessions missing locked_at.
	LockedWithoutTimestamp []string `json:"locked_without_timestamp"`
}

// CheckLedger cross-checks the counting tables against each other.
func CheckLedger(db *gorm.DB) (*LedgerReport, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection is nil")
	}

	report := &LedgerReport{Matched: true}

	orphans := []struct {
		table string
		dest  *int64
	}{
		{models.Participant{}.TableName(), &report.OrphanParticipants},
		{models.CountEvent{}.TableName(), &report.OrphanEvents},
		{models.ManualOverride{}.TableName(), &report.OrphanOverrides},
		{models.FinalSnapshot{}.TableName(), &report.OrphanSnapshots},
	}
	for _, o := range orphans {
		err := db.Table(o.table).
			Where("session_id NOT IN (?)", db.Model(&models.Session{}).Select("id")).
			Count(o.dest).Error
		if err != nil {
			return nil, fmt.Errorf("failed to count orphan rows in %s: %w", o.table, err)
		}
		if *o.dest > 0 {
			report.Matched = false
		}
	}

	var locked []models.Session
	if err := db.Where("status = ?", models.StatusLocked).Order("id").Find(&locked).Error; err != nil {
		return nil, fmt.Errorf("failed to load locked sessions: %w", err)
	}
	for _, s := range locked {
		var rows int64
		err := db.Model(&models.FinalSnapshot{}).Where("session_id = ?", s.ID).Count(&rows).Error
		if err != nil {
			return nil, fmt.Errorf("failed to count snapshot rows for %s: %w", s.ID, err)
		}
		if rows == 0 {
			report.LockedWithoutSnapshot = append(report.LockedWithoutSnapshot, s.ID)
			report.Matched = false
		}
		if s.LockedAt == nil {
			report.LockedWithoutTimestamp = append(report.LockedWithoutTimestamp, s.ID)
			report.Matched = false
		}
	}

	return report, nil
}
