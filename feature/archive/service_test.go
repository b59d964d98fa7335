package archive

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"testing"
	"time"

	"stocktake/core/database"
	"stocktake/core/faults"
	"stocktake/core/storage/mocks"
	"stocktake/feature/counting/models"

	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.Connect(database.Config{
		Driver: database.DriverSQLite,
		Name:   ":memory:",
	})
	require.NoError(t, err)
	require.NoError(t, models.AutoMigrate(db))
	return db
}

func newTestService(t *testing.T) (*Service, *mocks.Client, *gorm.DB) {
	t.Helper()
	client := new(mocks.Client)
	db := setupTestDB(t)
	return NewService(client, "test-bucket", zap.NewNop(), db), client, db
}

// seedSession inserts a session with snapshot rows directly, bypassing the
// counting service.
func seedSession(t *testing.T, db *gorm.DB, id string, status models.SessionStatus, items map[string]int64) {
	t.Helper()
	now := time.Now().UTC()
	session := models.Session{
		ID:        id,
		Name:      "seeded count",
		HostID:    "host-1",
		CreatedBy: "host-1",
		Status:    status,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if status == models.StatusLocked {
		session.LockedAt = &now
	}
	require.NoError(t, db.Create(&session).Error)

	for key, qty := range items {
		require.NoError(t, db.Create(&models.FinalSnapshot{
			SessionID:   id,
			ItemKey:     key,
			Quantity:    qty,
			FinalizedBy: "auditor-1",
			FinalizedAt: now,
		}).Error)
	}
}

func TestObjectName(t *testing.T) {
	assert.Equal(t, "snapshots/abc.json", ObjectName("abc"))
}

func TestExport(t *testing.T) {
	ctx := context.Background()

	t.Run("WritesReport", func(t *testing.T) {
		svc, client, db := newTestService(t)
		seedSession(t, db, "s1", models.StatusLocked, map[string]int64{"WIDGET": 7, "GADGET": 3})

		client.On("BucketExists", mock.Anything, "test-bucket").Return(true, nil)

		var uploaded []byte
		client.On("PutObject", mock.Anything, "test-bucket", "snapshots/s1.json",
			mock.Anything, mock.Anything, mock.Anything).
			Run(func(args mock.Arguments) {
				uploaded, _ = io.ReadAll(args.Get(3).(io.Reader))
			}).
			Return(minio.UploadInfo{}, nil)

		object, err := svc.Export(ctx, "s1")
		require.NoError(t, err)
		assert.Equal(t, "snapshots/s1.json", object)

		var report Report
		require.NoError(t, json.Unmarshal(uploaded, &report))
		assert.Equal(t, "s1", report.SessionID)
		assert.Equal(t, "auditor-1", report.FinalizedBy)
		require.Len(t, report.Items, 2)
		// Snapshot rows are exported in item key order.
		assert.Equal(t, ReportItem{ItemKey: "GADGET", Quantity: 3}, report.Items[0])
		assert.Equal(t, ReportItem{ItemKey: "WIDGET", Quantity: 7}, report.Items[1])

		client.AssertExpectations(t)
	})

	t.Run("CreatesMissingBucket", func(t *testing.T) {
		svc, client, db := newTestService(t)
		seedSession(t, db, "s2", models.StatusLocked, map[string]int64{"WIDGET": 1})

		client.On("BucketExists", mock.Anything, "test-bucket").Return(false, nil)
		client.On("MakeBucket", mock.Anything, "test-bucket", mock.Anything).Return(nil)
		client.On("PutObject", mock.Anything, "test-bucket", "snapshots/s2.json",
			mock.Anything, mock.Anything, mock.Anything).
			Return(minio.UploadInfo{}, nil)

		_, err := svc.Export(ctx, "s2")
		require.NoError(t, err)
		client.AssertExpectations(t)
	})

	t.Run("RejectsUnlockedSession", func(t *testing.T) {
		svc, client, db := newTestService(t)
		seedSession(t, db, "s3", models.StatusFinalizing, nil)

		_, err := svc.Export(ctx, "s3")
		assert.Equal(t, faults.CodeConflict, faults.CodeOf(err))
		client.AssertNotCalled(t, "PutObject", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("UnknownSession", func(t *testing.T) {
		svc, _, _ := newTestService(t)
		_, err := svc.Export(ctx, "missing")
		assert.Equal(t, faults.CodeNotFound, faults.CodeOf(err))
	})

	t.Run("UploadFailure", func(t *testing.T) {
		svc, client, db := newTestService(t)
		seedSession(t, db, "s4", models.StatusLocked, map[string]int64{"WIDGET": 1})

		client.On("BucketExists", mock.Anything, "test-bucket").Return(true, nil)
		client.On("PutObject", mock.Anything, "test-bucket", "snapshots/s4.json",
			mock.Anything, mock.Anything, mock.Anything).
			Return(minio.UploadInfo{}, assert.AnError)

		_, err := svc.Export(ctx, "s4")
		assert.Equal(t, faults.CodeStorage, faults.CodeOf(err))
	})
}

func TestFetch(t *testing.T) {
	svc, client, _ := newTestService(t)

	body := []byte(`{"session_id":"s1"}`)
	client.On("GetObject", mock.Anything, "test-bucket", "snapshots/s1.json", mock.Anything).
		Return(io.NopCloser(bytes.NewReader(body)), nil)

	got, err := svc.Fetch(context.Background(), "s1")
	require.NoError(t, err)
	assert.Equal(t, body, got)
}

func TestList(t *testing.T) {
	t.Run("Names", func(t *testing.T) {
		svc, client, _ := newTestService(t)

		ch := make(chan minio.ObjectInfo, 2)
		ch <- minio.ObjectInfo{Key: "snapshots/a.json"}
		ch <- minio.ObjectInfo{Key: "snapshots/b.json"}
		close(ch)
		client.On("ListObjects", mock.Anything, "test-bucket", mock.Anything).
			Return((<-chan minio.ObjectInfo)(ch))

		names, err := svc.List(context.Background())
		require.NoError(t, err)
		assert.Equal(t, []string{"snapshots/a.json", "snapshots/b.json"}, names)
	})

	t.Run("ListingError", func(t *testing.T) {
		svc, client, _ := newTestService(t)

		ch := make(chan minio.ObjectInfo, 1)
		ch <- minio.ObjectInfo{Err: assert.AnError}
		close(ch)
		client.On("ListObjects", mock.Anything, "test-bucket", mock.Anything).
			Return((<-chan minio.ObjectInfo)(ch))

		_, err := svc.List(context.Background())
		assert.Equal(t, faults.CodeStorage, faults.CodeOf(err))
	})
}
