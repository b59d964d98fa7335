package cmd

import (
	"context"
	"fmt"
	"os"

	"stocktake/core/config"
	"stocktake/core/database"
	"stocktake/core/logger"
	"stocktake/core/storage"
	"stocktake/feature/integrity"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// integrityCmd represents the integrity command
var integrityCmd = &cobra.Command{
	Use:   "integrity",
	Short: "Perform consistency checks on the counting data",
	Long:  `Checks the session tables for orphan rows, verifies the schema, and compares locked sessions against the snapshot archive.`,
	Run: func(cmd *cobra.Command, args []string) {
		if len(args) > 0 {
			cmd.Help()
			return
		}
		runIntegrityChecks(cmd.Context(), true, true, true)
	},
}

// schemaCmd represents the integrity schema command
var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Check the counting table schema",
	Run: func(cmd *cobra.Command, args []string) {
		runIntegrityChecks(cmd.Context(), true, false, false)
	},
}

// ledgerCmd represents the integrity ledger command
var ledgerCmd = &cobra.Command{
	Use:   "ledger",
	Short: "Check the counting tables for orphan rows",
	Run: func(cmd *cobra.Command, args []string) {
		runIntegrityChecks(cmd.Context(), false, true, false)
	},
}

// archiveCheckCmd represents the integrity archive command
var archiveCheckCmd = &cobra.Command{
	Use:   "archive",
	Short: "Compare locked sessions against the snapshot archive",
	Run: func(cmd *cobra.Command, args []string) {
		runIntegrityChecks(cmd.Context(), false, false, true)
	},
}

func init() {
	RootCmd.AddCommand(integrityCmd)
	integrityCmd.AddCommand(schemaCmd, ledgerCmd, archiveCheckCmd)
}

func runIntegrityChecks(ctx context.Context, runSchema, runLedger, runArchive bool) {
	cfg, err := config.LoadConfig(".")
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	logg, err := logger.New(&cfg.Log)
	if err != nil {
		fmt.Printf("Failed to create logger: %v\n", err)
		os.Exit(1)
	}

	db, err := database.Connect(cfg.Database)
	if err != nil {
		logg.Fatal("Database connection required", zap.Error(err))
	}

	// Storage is optional; without it the archive check is skipped.
	var store storage.Client
	if cfg.Storage.Enabled {
		s, err := storage.NewClient(cfg.Storage)
		if err != nil {
			logg.Fatal("Failed to create storage client", zap.Error(err))
		}
		store = s
	}

	svc := integrity.NewService(store, cfg.Storage.Bucket, logg, db)

	if runSchema {
		logg.Info("Checking schema...")
		report, err := svc.CheckSchema()
		if err != nil {
			logg.Fatal("Schema check failed", zap.Error(err))
		}
		if report.Matched {
			logg.Info("Schema is intact.")
		} else {
			for table, tbl := range report.Tables {
				if tbl.Status != "ok" {
					logg.Warn("Broken table", zap.String("table", table))
				}
			}
			for _, e := range report.Errors {
				logg.Error("Inspection error", zap.String("error", e))
			}
		}
	}

	if runLedger {
		logg.Info("Checking ledger consistency...")
		report, err := svc.CheckLedger()
		if err != nil {
			logg.Fatal("Ledger check failed", zap.Error(err))
		}
		if report.Matched {
			logg.Info("Ledger is consistent.")
		} else {
			logg.Warn("Ledger inconsistencies found",
				zap.Int64("orphan_participants", report.OrphanParticipants),
				zap.Int64("orphan_events", report.OrphanEvents),
				zap.Int64("orphan_overrides", report.OrphanOverrides),
				zap.Int64("orphan_snapshots", report.OrphanSnapshots),
				zap.Strings("locked_without_snapshot", report.LockedWithoutSnapshot),
				zap.Strings("locked_without_timestamp", report.LockedWithoutTimestamp),
			)
		}
	}

	if runArchive {
		if !svc.HasArchive() {
			logg.Info("Object storage not configured; skipping archive check.")
			return
		}
		logg.Info("Checking snapshot archive...")
		report, err := svc.CheckArchive(ctx)
		if err != nil {
			logg.Fatal("Archive check failed", zap.Error(err))
		}
		if report.Matched {
			logg.Info("Archive matches the locked sessions.")
		} else {
			logg.Warn("Archive inconsistencies found",
				zap.Strings("missing", report.Missing),
				zap.Strings("unexpected", report.Unexpected),
			)
		}
	}
}
