package counting

import (
	"context"
	"errors"
	"sort"
	"time"

	"stocktake/core/faults"
	"stocktake/feature/counting/models"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Finalize freezes the session's totals into a FinalSnapshot, merges manual
// overrides, compares against the previous locked session, and transitions
// the session to finalizing (lock=false) or locked (lock=true).
//
// Re-finalizing a finalizing session is allowed and idempotent: totals are
// recomputed, overrides re-read, and snapshot rows upserted. A locked
// session cannot be finalized again.
func (s *Service) Finalize(ctx context.Context, sessionID, finalizedBy string, lock bool) (*models.FinalizeResult, error) {
	if sessionID == "" {
		return nil, faults.Validation("session id is required")
	}
	if finalizedBy == "" {
		return nil, faults.Validation("finalized_by is required")
	}

	now := time.Now().UTC()
	result := &models.FinalizeResult{}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// The conditional update gates on lifecycle state and takes the row
		// lock, so the totals read below reflects every batch committed
		// before this call and no batch that started after it.
		res := tx.Model(&models.Session{}).
			Where("id = ? AND status <> ?", sessionID, models.StatusLocked).
			Update("updated_at", now)
		if res.Error != nil {
			return faults.Storage(res.Error, "failed to claim session for finalization")
		}
		if res.RowsAffected == 0 {
			var session models.Session
			if err := tx.First(&session, "id = ?", sessionID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return faults.NotFound("session %s does not exist", sessionID)
				}
				return faults.Storage(err, "failed to load session")
			}
			return faults.Conflict("session %s is already locked", sessionID)
		}

		totals, err := sessionTotals(tx, sessionID)
		if err != nil {
			return err
		}

		merged, err := mergeOverrides(tx, sessionID, totals)
		if err != nil {
			return err
		}

		if err := writeSnapshot(tx, sessionID, finalizedBy, merged, now); err != nil {
			return err
		}

		mismatches, err := compareToBaseline(tx, sessionID, merged)
		if err != nil {
			return err
		}

		updates := map[string]any{"status": models.StatusFinalizing, "updated_at": now}
		if lock {
			updates["status"] = models.StatusLocked
			updates["locked_at"] = now
		}
		if err := tx.Model(&models.Session{}).Where("id = ?", sessionID).Updates(updates).Error; err != nil {
			return faults.Storage(err, "failed to transition session status")
		}

		result.Totals = merged
		result.Mismatches = mismatches
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Session finalized",
		zap.String("session_id", sessionID),
		zap.String("finalized_by", finalizedBy),
		zap.Bool("locked", lock),
		zap.Int("items", len(result.Totals)),
		zap.Int("mismatches", len(result.Mismatches)),
	)

	if lock && s.archiver != nil {
		object, err := s.archiver.Export(ctx, sessionID)
		if err != nil {
			// The database rows are the source of truth; a failed export
			// does not undo the lock, but it must not go unnoticed.
			s.logger.Warn("Snapshot archive export failed",
				zap.String("session_id", sessionID),
				zap.Error(err),
			)
			result.ArchiveError = err.Error()
		} else {
			result.ArchiveObject = object
		}
	}

	return result, nil
}

// mergeOverrides replaces summed totals with manual overrides where one is
// present. Overrides on items with no events add those items to the set.
// The event history itself is left untouched.
func mergeOverrides(tx *gorm.DB, sessionID string, totals []models.ItemTotal) ([]models.ItemTotal, error) {
	var overrides []models.ManualOverride
	if err := tx.Where("session_id = ?", sessionID).Find(&overrides).Error; err != nil {
		return nil, faults.Storage(err, "failed to load overrides")
	}

	byKey := make(map[string]int64, len(totals)+len(overrides))
	for _, t := range totals {
		byKey[t.ItemKey] = t.Quantity
	}
	for _, o := range overrides {
		byKey[o.ItemKey] = o.Quantity
	}

	merged := make([]models.ItemTotal, 0, len(byKey))
	for key, qty := range byKey {
		merged = append(merged, models.ItemTotal{ItemKey: key, Quantity: qty})
	}
	sort.Slice(merged, func(i, j int) bool {
		return merged[i].ItemKey < merged[j].ItemKey
	})
	return merged, nil
}

// writeSnapshot upserts one FinalSnapshot row per merged item and drops
// rows for items no longer in the set (an override added on a previous
// finalize and cleared since).
func writeSnapshot(tx *gorm.DB, sessionID, finalizedBy string, merged []models.ItemTotal, now time.Time) error {
	keys := make([]string, 0, len(merged))
	rows := make([]models.FinalSnapshot, 0, len(merged))
	for _, t := range merged {
		keys = append(keys, t.ItemKey)
		rows = append(rows, models.FinalSnapshot{
			SessionID:   sessionID,
			ItemKey:     t.ItemKey,
			Quantity:    t.Quantity,
			FinalizedBy: finalizedBy,
			FinalizedAt: now,
		})
	}

	stale := tx.Where("session_id = ?", sessionID)
	if len(keys) > 0 {
		stale = stale.Where("item_key NOT IN ?", keys)
	}
	if err := stale.Delete(&models.FinalSnapshot{}).Error; err != nil {
		return faults.Storage(err, "failed to prune stale snapshot rows")
	}

	if len(rows) == 0 {
		return nil
	}
	err := tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "session_id"}, {Name: "item_key"}},
		DoUpdates: clause.AssignmentColumns([]string{"quantity", "finalized_by", "finalized_at"}),
	}).Create(&rows).Error
	if err != nil {
		return faults.Storage(err, "failed to write final snapshot")
	}
	return nil
}

// compareToBaseline diffs the merged totals against the most recently
// locked session's snapshot. Items absent from the baseline count as
// baseline quantity 0; only nonzero deltas are kept, sorted by |delta|
// descending so the largest discrepancies surface first for human review.
func compareToBaseline(tx *gorm.DB, sessionID string, merged []models.ItemTotal) ([]models.Mismatch, error) {
	var baseline models.Session
	err := tx.Where("status = ? AND id <> ?", models.StatusLocked, sessionID).
		Order("locked_at DESC").
		First(&baseline).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// First session ever locked: nothing to compare against.
			return []models.Mismatch{}, nil
		}
		return nil, faults.Storage(err, "failed to locate baseline session")
	}

	var rows []models.FinalSnapshot
	if err := tx.Where("session_id = ?", baseline.ID).Find(&rows).Error; err != nil {
		return nil, faults.Storage(err, "failed to load baseline snapshot")
	}
	baselineQty := make(map[string]int64, len(rows))
	for _, r := range rows {
		baselineQty[r.ItemKey] = r.Quantity
	}

	mismatches := make([]models.Mismatch, 0)
	for _, t := range merged {
		base := baselineQty[t.ItemKey]
		delta := t.Quantity - base
		if delta == 0 {
			continue
		}
		mismatches = append(mismatches, models.Mismatch{
			ItemKey:  t.ItemKey,
			Current:  t.Quantity,
			Baseline: base,
			Delta:    delta,
		})
	}

	sort.Slice(mismatches, func(i, j int) bool {
		ai, aj := abs(mismatches[i].Delta), abs(mismatches[j].Delta)
		if ai != aj {
			return ai > aj
		}
		return mismatches[i].ItemKey < mismatches[j].ItemKey
	})
	return mismatches, nil
}

func abs(n int64) int64 {
	if n < 0 {
		return -n
	}
	return n
}
