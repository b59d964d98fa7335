package integrity

import (
	"context"

	"stocktake/core/storage"
	"stocktake/feature/archive"
	"stocktake/feature/integrity/checks"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Service handles integrity checks.
type Service struct {
	client storage.Client
	bucket string
	logger *zap.Logger
	db     *gorm.DB
}

// NewService creates a new integrity service. client may be nil; the
// archive check is then reported as skipped.
func NewService(client storage.Client, bucket string, logger *zap.Logger, db *gorm.DB) *Service {
	return &Service{
		client: client,
		bucket: bucket,
		logger: logger,
		db:     db,
	}
}

// CheckSchema verifies the counting tables exist and have columns.
func (s *Service) CheckSchema() (*checks.SchemaReport, error) {
	return checks.CheckSchema(s.db)
}

// CheckLedger cross-checks the counting tables for orphan rows and
// locked sessions in impossible states.
func (s *Service) CheckLedger() (*checks.LedgerReport, error) {
	return checks.CheckLedger(s.db)
}

// CheckArchive compares locked sessions against the exported snapshot
// objects in the bucket.
func (s *Service) CheckArchive(ctx context.Context) (*checks.ArchiveReport, error) {
	return checks.CheckArchive(ctx, s.client, s.bucket, s.db, archive.ObjectName, archive.SessionID)
}

// HasArchive reports whether the archive check can run.
func (s *Service) HasArchive() bool {
	return s.client != nil
}
