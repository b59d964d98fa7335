package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetTableColumns(t *testing.T) {
	cfg := Config{
		Driver: DriverSQLite,
		Name:   ":memory:",
	}
	db, err := Connect(cfg)
	assert.NoError(t, err)
	assert.NotNil(t, db)

	err = db.Exec("CREATE TABLE count_events (session_id TEXT, event_id TEXT, delta INTEGER)").Error
	assert.NoError(t, err)

	columns, err := GetTableColumns(db, "count_events")
	assert.NoError(t, err)
	assert.Len(t, columns, 3)

	colMap := make(map[string]string)
	for _, col := range columns {
		colMap[col.Field] = col.Type
	}

	assert.Equal(t, "text", colMap["session_id"])
	assert.Equal(t, "text", colMap["event_id"])
	assert.Equal(t, "integer", colMap["delta"])

	// Non-existent table: PRAGMA returns no rows, not an error.
	cols, err := GetTableColumns(db, "non_existent")
	assert.NoError(t, err)
	assert.Empty(t, cols)
}

func TestVerifySchema(t *testing.T) {
	db, err := Connect(Config{Driver: DriverSQLite, Name: ":memory:"})
	assert.NoError(t, err)

	err = db.Exec("CREATE TABLE sessions (id TEXT PRIMARY KEY)").Error
	assert.NoError(t, err)

	t.Run("Present", func(t *testing.T) {
		assert.NoError(t, VerifySchema(db, []string{"sessions"}))
	})

	t.Run("Missing", func(t *testing.T) {
		err := VerifySchema(db, []string{"sessions", "count_events"})
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "count_events")
	})
}
