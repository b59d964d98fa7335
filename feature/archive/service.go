package archive

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"strings"
	"time"

	"stocktake/core/faults"
	"stocktake/core/storage"
	"stocktake/feature/counting/models"

	"github.com/minio/minio-go/v7"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// prefix under which snapshot exports are stored in the bucket.
const prefix = "snapshots/"

// Report is the JSON document written to object storage for one locked
// session. It is a convenience copy for downstream audit tooling; the
// database rows remain the source of truth.
type Report struct {
	SessionID   string       `json:"session_id"`
	Name        string       `json:"name"`
	FinalizedBy string       `json:"finalized_by"`
	LockedAt    *time.Time   `json:"locked_at"`
	GeneratedAt string       `json:"generated_at"`
	Items       []ReportItem `json:"items"`
}

// ReportItem is one item's final quantity in a Report.
type ReportItem struct {
	ItemKey  string `json:"item_key"`
	Quantity int64  `json:"quantity"`
}

// Service exports locked session snapshots to object storage.
type Service struct {
	client storage.Client
	bucket string
	logger *zap.Logger
	db     *gorm.DB
}

// NewService creates a new archive service.
func NewService(client storage.Client, bucket string, logger *zap.Logger, db *gorm.DB) *Service {
	return &Service{client: client, bucket: bucket, logger: logger, db: db}
}

// ObjectName returns the object name a session's export is stored under.
func ObjectName(sessionID string) string {
	return prefix + sessionID + ".json"
}

// SessionID extracts the session id from an export object name. It returns
// "" for objects that are not snapshot exports.
func SessionID(object string) string {
	if !strings.HasPrefix(object, prefix) || !strings.HasSuffix(object, ".json") {
		return ""
	}
	return strings.TrimSuffix(strings.TrimPrefix(object, prefix), ".json")
}

// Export writes the FinalSnapshot rows of a locked session to the archive
// bucket and returns the object name. Only locked sessions may be exported;
// a finalizing snapshot can still change.
func (s *Service) Export(ctx context.Context, sessionID string) (string, error) {
	var session models.Session
	if err := s.db.WithContext(ctx).First(&session, "id = ?", sessionID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", faults.NotFound("session %s does not exist", sessionID)
		}
		return "", faults.Storage(err, "failed to load session")
	}
	if session.Status != models.StatusLocked {
		return "", faults.Conflict("session %s is %s; only locked sessions are archived", sessionID, session.Status)
	}

	var rows []models.FinalSnapshot
	err := s.db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Order("item_key").
		Find(&rows).Error
	if err != nil {
		return "", faults.Storage(err, "failed to load snapshot")
	}

	report := Report{
		SessionID:   session.ID,
		Name:        session.Name,
		LockedAt:    session.LockedAt,
		GeneratedAt: time.Now().UTC().Format(time.RFC3339),
		Items:       make([]ReportItem, 0, len(rows)),
	}
	for _, r := range rows {
		report.FinalizedBy = r.FinalizedBy
		report.Items = append(report.Items, ReportItem{ItemKey: r.ItemKey, Quantity: r.Quantity})
	}

	body, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return "", faults.Storage(err, "failed to encode report")
	}

	if err := s.ensureBucket(ctx); err != nil {
		return "", err
	}

	object := ObjectName(sessionID)
	_, err = s.client.PutObject(ctx, s.bucket, object, bytes.NewReader(body), int64(len(body)), minio.PutObjectOptions{
		ContentType: "application/json",
	})
	if err != nil {
		return "", faults.Storage(err, "failed to upload snapshot export")
	}

	s.logger.Info("Snapshot archived",
		zap.String("session_id", sessionID),
		zap.String("object", object),
		zap.Int("items", len(report.Items)),
	)
	return object, nil
}

// Fetch streams a previously exported snapshot report.
func (s *Service) Fetch(ctx context.Context, sessionID string) ([]byte, error) {
	rc, err := s.client.GetObject(ctx, s.bucket, ObjectName(sessionID), minio.GetObjectOptions{})
	if err != nil {
		return nil, faults.Storage(err, "failed to open snapshot export")
	}
	defer rc.Close()

	body, err := io.ReadAll(rc)
	if err != nil {
		return nil, faults.NotFound("no archived snapshot for session %s", sessionID)
	}
	return body, nil
}

// List returns the object names of all archived snapshots.
func (s *Service) List(ctx context.Context) ([]string, error) {
	objects := s.client.ListObjects(ctx, s.bucket, minio.ListObjectsOptions{
		Prefix:    prefix,
		Recursive: true,
	})

	var names []string
	for obj := range objects {
		if obj.Err != nil {
			return nil, faults.Storage(obj.Err, "failed to list archived snapshots")
		}
		names = append(names, obj.Key)
	}
	return names, nil
}

func (s *Service) ensureBucket(ctx context.Context) error {
	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return faults.Storage(err, "failed to check archive bucket")
	}
	if exists {
		return nil
	}
	if err := s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{}); err != nil {
		return faults.Storage(err, "failed to create archive bucket %s", s.bucket)
	}
	return nil
}
