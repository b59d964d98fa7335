package checks

import (
	"fmt"

	"stocktake/core/database"
	"stocktake/feature/counting/models"

	"gorm.io/gorm"
)

// SchemaReport strictly types the result of a schema integrity check.
type SchemaReport struct {
	Matched bool                   `json:"matched"`
	Tables  map[string]TableReport `json:"tables"`
	Errors  []string               `json:"errors"`
}

type TableReport struct {
	Columns int    `json:"columns"`
	Status  string `json:"status"` // "ok", "error"
}

// CheckSchema verifies that every counting table exists and has columns.
// The tables are the audit record; a half-migrated schema must surface
// before it silently drops data.
func CheckSchema(db *gorm.DB) (*SchemaReport, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection is nil")
	}

	report := &SchemaReport{
		Tables:  make(map[string]TableReport),
		Matched: true,
	}

	for _, table := range models.Tables() {
		columns, err := database.GetTableColumns(db, table)
		if err != nil {
			report.Errors = append(report.Errors, fmt.Sprintf("Failed to inspect table %s: %v", table, err))
			report.Matched = false
			continue
		}

		tblReport := TableReport{Columns: len(columns), Status: "ok"}
		if len(columns) == 0 {
			tblReport.Status = "error"
			report.Matched = false
		}
		report.Tables[table] = tblReport
	}

	return report, nil
}
