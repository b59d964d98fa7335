package counting

import (
	"context"
	"errors"
	"strings"
	"time"

	"stocktake/core/faults"
	"stocktake/core/itemkey"
	"stocktake/feature/counting/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Archiver exports a locked session's snapshot to external storage.
// Implementations must return the name of the written object.
type Archiver interface {
	Export(ctx context.Context, sessionID string) (string, error)
}

// Service implements the collaborative counting operations.
type Service struct {
	db       *gorm.DB
	logger   *zap.Logger
	archiver Archiver
}

// NewService creates a new counting service. archiver may be nil, in which
// case locked sessions are not exported.
func NewService(db *gorm.DB, logger *zap.Logger, archiver Archiver) *Service {
	return &Service{db: db, logger: logger, archiver: archiver}
}

// CreateSession starts a new counting effort in active status.
func (s *Service) CreateSession(ctx context.Context, name, hostID, createdBy, baselineSessionID string) (*models.Session, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, faults.Validation("session name is required")
	}
	if hostID == "" {
		return nil, faults.Validation("host id is required")
	}
	if createdBy == "" {
		createdBy = hostID
	}

	now := time.Now().UTC()
	session := &models.Session{
		ID:        uuid.NewString(),
		Name:      name,
		HostID:    hostID,
		CreatedBy: createdBy,
		Status:    models.StatusActive,
		CreatedAt: now,
		UpdatedAt: now,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if baselineSessionID != "" {
			// The link is informational, but a dangling reference would
			// poison the audit trail, so it must resolve.
			var count int64
			if err := tx.Model(&models.Session{}).Where("id = ?", baselineSessionID).Count(&count).Error; err != nil {
				return faults.Storage(err, "failed to resolve baseline session")
			}
			if count == 0 {
				return faults.NotFound("baseline session %s does not exist", baselineSessionID)
			}
			session.BaselineSessionID = &baselineSessionID
		}
		if err := tx.Create(session).Error; err != nil {
			return faults.Storage(err, "failed to create session")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Session created",
		zap.String("session_id", session.ID),
		zap.String("host_id", hostID),
	)
	return session, nil
}

// ListSessions returns all sessions, newest first.
func (s *Service) ListSessions(ctx context.Context) ([]models.Session, error) {
	var sessions []models.Session
	if err := s.db.WithContext(ctx).Order("created_at DESC, id").Find(&sessions).Error; err != nil {
		return nil, faults.Storage(err, "failed to list sessions")
	}
	return sessions, nil
}

// SubmitEvents records a batch of count events for a session.
//
// The whole batch runs in one transaction: the session's status check and
// the event inserts are atomic per submission, so once finalization has
// begun no event can slip in. Duplicate (session_id, event_id) pairs are
// ignored by the store's uniqueness constraint, which is the exactly-once
// guarantee under at-least-once delivery.
func (s *Service) SubmitEvents(ctx context.Context, sessionID, actorID, actorName string, events []models.EventInput) (*models.SubmitResult, error) {
	if sessionID == "" {
		return nil, faults.Validation("session id is required")
	}
	if actorID == "" {
		return nil, faults.Validation("actor id is required")
	}

	now := time.Now().UTC()

	// Validate and filter before touching the store: a rejected call must
	// have no partial side effects.
	rows := make([]models.CountEvent, 0, len(events))
	for i, ev := range events {
		if ev.EventID == "" {
			return nil, faults.Validation("event %d is missing an event id", i)
		}
		ts, err := time.Parse(time.RFC3339, ev.Timestamp)
		if err != nil {
			return nil, faults.Validation("event %s has a malformed timestamp %q", ev.EventID, ev.Timestamp)
		}
		key := itemkey.Normalize(ev.ItemKey)
		if key == "" || ev.Delta == 0 {
			// No information: discard, not an error.
			continue
		}
		rows = append(rows, models.CountEvent{
			SessionID:       sessionID,
			EventID:         ev.EventID,
			ActorID:         actorID,
			ItemKey:         key,
			Delta:           ev.Delta,
			ClientTimestamp: ts.UTC(),
			CreatedBy:       actorID,
			CreatedAt:       now,
		})
	}

	result := &models.SubmitResult{AcceptedCount: len(rows)}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Conditional update is the status gate: it only matches an active
		// session, and the row lock it takes holds off a concurrent
		// finalize until this batch commits.
		res := tx.Model(&models.Session{}).
			Where("id = ? AND status = ?", sessionID, models.StatusActive).
			Updates(map[string]any{"last_sync_at": now, "updated_at": now})
		if res.Error != nil {
			return faults.Storage(res.Error, "failed to update session sync time")
		}
		if res.RowsAffected == 0 {
			return s.explainRejection(tx, sessionID)
		}

		if err := upsertParticipant(tx, sessionID, actorID, actorName, now); err != nil {
			return err
		}

		if len(rows) > 0 {
			// Insert-if-absent on the (session_id, event_id) key: retries
			// are no-ops, so no delta is ever counted twice.
			err := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "session_id"}, {Name: "event_id"}},
				DoNothing: true,
			}).Create(&rows).Error
			if err != nil {
				return faults.Storage(err, "failed to persist events")
			}
		}

		totals, err := sessionTotals(tx, sessionID)
		if err != nil {
			return err
		}
		participants, err := sessionParticipants(tx, sessionID)
		if err != nil {
			return err
		}
		result.Totals = totals
		result.Participants = participants
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Events submitted",
		zap.String("session_id", sessionID),
		zap.String("actor_id", actorID),
		zap.Int("accepted", result.AcceptedCount),
	)
	return result, nil
}

// GetSessionState returns the full current view of a session. Pure read:
// it runs inside one transaction so totals, contributions, and the event
// count reflect a single consistent snapshot of the event table.
func (s *Service) GetSessionState(ctx context.Context, sessionID string) (*models.SessionState, error) {
	if sessionID == "" {
		return nil, faults.Validation("session id is required")
	}

	state := &models.SessionState{}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var session models.Session
		if err := tx.First(&session, "id = ?", sessionID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return faults.NotFound("session %s does not exist", sessionID)
			}
			return faults.Storage(err, "failed to load session")
		}
		state.Session = session
		state.LastSyncAt = session.LastSyncAt

		participants, err := sessionParticipants(tx, sessionID)
		if err != nil {
			return err
		}
		state.Participants = participants

		totals, err := sessionTotals(tx, sessionID)
		if err != nil {
			return err
		}
		state.Totals = totals

		var contributions []models.Contribution
		err = tx.Model(&models.CountEvent{}).
			Select("actor_id, item_key, SUM(delta) AS quantity").
			Where("session_id = ?", sessionID).
			Group("actor_id, item_key").
			Order("actor_id, item_key").
			Scan(&contributions).Error
		if err != nil {
			return faults.Storage(err, "failed to compute contributions")
		}
		state.Contributions = contributions

		err = tx.Model(&models.CountEvent{}).
			Where("session_id = ?", sessionID).
			Count(&state.PendingEventCount).Error
		if err != nil {
			return faults.Storage(err, "failed to count events")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return state, nil
}

// SetOverride records an authoritative quantity for one item, superseding
// the summed event total at finalize time. Legal until the session is
// locked.
func (s *Service) SetOverride(ctx context.Context, sessionID, rawItemKey string, quantity int64, setBy string) (*models.ManualOverride, error) {
	key := itemkey.Normalize(rawItemKey)
	if sessionID == "" || key == "" {
		return nil, faults.Validation("session id and item key are required")
	}
	if setBy == "" {
		return nil, faults.Validation("set_by is required")
	}

	now := time.Now().UTC()
	override := &models.ManualOverride{
		SessionID: sessionID,
		ItemKey:   key,
		Quantity:  quantity,
		SetBy:     setBy,
		UpdatedAt: now,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.requireUnlocked(tx, sessionID); err != nil {
			return err
		}
		err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "session_id"}, {Name: "item_key"}},
			DoUpdates: clause.AssignmentColumns([]string{"quantity", "set_by", "updated_at"}),
		}).Create(override).Error
		if err != nil {
			return faults.Storage(err, "failed to save override")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Override set",
		zap.String("session_id", sessionID),
		zap.String("item_key", key),
		zap.Int64("quantity", quantity),
	)
	return override, nil
}

// ClearOverride removes the override for one item, reverting its finalized
// quantity to the summed event total.
func (s *Service) ClearOverride(ctx context.Context, sessionID, rawItemKey string) error {
	key := itemkey.Normalize(rawItemKey)
	if sessionID == "" || key == "" {
		return faults.Validation("session id and item key are required")
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.requireUnlocked(tx, sessionID); err != nil {
			return err
		}
		res := tx.Where("session_id = ? AND item_key = ?", sessionID, key).Delete(&models.ManualOverride{})
		if res.Error != nil {
			return faults.Storage(res.Error, "failed to delete override")
		}
		if res.RowsAffected == 0 {
			return faults.NotFound("no override for item %s in session %s", key, sessionID)
		}
		return nil
	})
}

// explainRejection distinguishes a missing session from an inactive one
// after the conditional status gate matched no row.
func (s *Service) explainRejection(tx *gorm.DB, sessionID string) error {
	var session models.Session
	if err := tx.First(&session, "id = ?", sessionID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return faults.NotFound("session %s does not exist", sessionID)
		}
		return faults.Storage(err, "failed to load session")
	}
	return faults.Conflict("session %s is %s; events are no longer accepted", sessionID, session.Status)
}

// requireUnlocked loads the session and rejects the operation if it has
// reached the terminal locked state.
func (s *Service) requireUnlocked(tx *gorm.DB, sessionID string) error {
	var session models.Session
	if err := tx.First(&session, "id = ?", sessionID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return faults.NotFound("session %s does not exist", sessionID)
		}
		return faults.Storage(err, "failed to load session")
	}
	if session.Status == models.StatusLocked {
		return faults.Conflict("session %s is locked", sessionID)
	}
	return nil
}

func upsertParticipant(tx *gorm.DB, sessionID, actorID, displayName string, now time.Time) error {
	p := models.Participant{
		SessionID:   sessionID,
		ActorID:     actorID,
		DisplayName: displayName,
		JoinedAt:    now,
		LastSeenAt:  now,
	}
	err := tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "session_id"}, {Name: "actor_id"}},
		DoUpdates: clause.Assignments(map[string]any{"display_name": displayName, "last_seen_at": now}),
	}).Create(&p).Error
	if err != nil {
		return faults.Storage(err, "failed to upsert participant")
	}
	return nil
}

func sessionTotals(tx *gorm.DB, sessionID string) ([]models.ItemTotal, error) {
	var totals []models.ItemTotal
	err := tx.Model(&models.CountEvent{}).
		Select("item_key, SUM(delta) AS quantity").
		Where("session_id = ?", sessionID).
		Group("item_key").
		Order("item_key").
		Scan(&totals).Error
	if err != nil {
		return nil, faults.Storage(err, "failed to compute totals")
	}
	return totals, nil
}

func sessionParticipants(tx *gorm.DB, sessionID string) ([]models.Participant, error) {
	var participants []models.Participant
	err := tx.Where("session_id = ?", sessionID).
		Order("joined_at, actor_id").
		Find(&participants).Error
	if err != nil {
		return nil, faults.Storage(err, "failed to load participants")
	}
	return participants, nil
}
