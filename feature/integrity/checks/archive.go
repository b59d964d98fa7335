package checks

import (
	"context"
	"fmt"
	"sort"

	"stocktake/core/storage"
	"stocktake/feature/counting/models"

	"github.com/minio/minio-go/v7"
	"gorm.io/gorm"
)

// ArchiveReport strictly types the result of an archive completeness check.
type ArchiveReport struct {
	Matched bool `json:"matched"`

	// Missing lists locked sessions with no exported snapshot object.
	Missing []string `json:"missing"`
	// Unexpected lists archive objects that match no locked session.
	Unexpected []string `json:"unexpected"`
}

// CheckArchive compares the locked sessions in the database against the
// snapshot exports in the bucket. objectName maps a session id to its
// expected object name; sessionID inverts it, returning "" for objects
// that do not look like an export.
func CheckArchive(ctx context.Context, client storage.Client, bucket string, db *gorm.DB,
	objectName func(string) string, sessionID func(string) string) (*ArchiveReport, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection is nil")
	}

	exists, err := client.BucketExists(ctx, bucket)
	if err != nil {
		return nil, fmt.Errorf("failed to check bucket existence: %w", err)
	}
	if !exists {
		return nil, fmt.Errorf("bucket %s does not exist", bucket)
	}

	var lockedIDs []string
	err = db.Model(&models.Session{}).
		Where("status = ?", models.StatusLocked).
		Order("id").
		Pluck("id", &lockedIDs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load locked sessions: %w", err)
	}

	archived := make(map[string]bool)
	report := &ArchiveReport{Matched: true}

	objects := client.ListObjects(ctx, bucket, minio.ListObjectsOptions{Recursive: true})
	for obj := range objects {
		if obj.Err != nil {
			return nil, fmt.Errorf("failed to list archive objects: %w", obj.Err)
		}
		id := sessionID(obj.Key)
		if id == "" {
			continue
		}
		archived[id] = true
	}

	lockedSet := make(map[string]bool, len(lockedIDs))
	for _, id := range lockedIDs {
		lockedSet[id] = true
		if !archived[id] {
			report.Missing = append(report.Missing, objectName(id))
			report.Matched = false
		}
	}
	for id := range archived {
		if !lockedSet[id] {
			report.Unexpected = append(report.Unexpected, objectName(id))
			report.Matched = false
		}
	}
	sort.Strings(report.Unexpected)

	return report, nil
}
