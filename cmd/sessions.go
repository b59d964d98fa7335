package cmd

import (
	"context"
	"fmt"

	"stocktake/core/config"
	"stocktake/core/database"
	"stocktake/core/logger"
	"stocktake/feature/counting"
	"stocktake/feature/counting/models"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// sessionsCmd is the parent command for session inspection operations.
var sessionsCmd = &cobra.Command{
	Use:   "sessions",
	Short: "Inspect counting sessions",
	Long:  `List counting sessions and show the live state of a single session.`,
}

// sessionsListCmd lists all sessions.
var sessionsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all counting sessions, newest first",
	RunE:  runSessionsList,
}

// sessionsStateCmd shows the live state of one session.
var sessionsStateCmd = &cobra.Command{
	Use:   "state <session-id>",
	Short: "Show current totals, contributions and participants for a session",
	Args:  cobra.ExactArgs(1),
	RunE:  runSessionsState,
}

func init() {
	sessionsCmd.AddCommand(sessionsListCmd)
	sessionsCmd.AddCommand(sessionsStateCmd)
	RootCmd.AddCommand(sessionsCmd)
}

// openCountingService wires config, logger and database for CLI use.
func openCountingService() (*counting.Service, *zap.Logger, error) {
	cfg, err := config.LoadConfig(".")
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}

	l, err := logger.New(&logger.Config{Level: cfg.Log.Level, Format: "console"})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	db, err := database.Connect(cfg.Database)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := models.AutoMigrate(db); err != nil {
		return nil, nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return counting.NewService(db, l, nil), l, nil
}

func runSessionsList(cmd *cobra.Command, args []string) error {
	svc, l, err := openCountingService()
	if err != nil {
		return err
	}

	sessions, err := svc.ListSessions(context.Background())
	if err != nil {
		return err
	}

	if len(sessions) == 0 {
		l.Info("No sessions found")
		return nil
	}

	for _, s := range sessions {
		fields := []zap.Field{
			zap.String("id", s.ID),
			zap.String("name", s.Name),
			zap.String("status", string(s.Status)),
			zap.String("host", s.HostID),
			zap.Time("created_at", s.CreatedAt),
		}
		if s.LockedAt != nil {
			fields = append(fields, zap.Time("locked_at", *s.LockedAt))
		}
		l.Info("Session", fields...)
	}
	return nil
}

func runSessionsState(cmd *cobra.Command, args []string) error {
	svc, l, err := openCountingService()
	if err != nil {
		return err
	}

	state, err := svc.GetSessionState(context.Background(), args[0])
	if err != nil {
		return err
	}

	l.Info("Session state",
		zap.String("id", state.Session.ID),
		zap.String("name", state.Session.Name),
		zap.String("status", string(state.Session.Status)),
		zap.Int64("events", state.PendingEventCount),
		zap.Int("participants", len(state.Participants)),
	)
	for _, t := range state.Totals {
		l.Info("Total", zap.String("item", t.ItemKey), zap.Int64("quantity", t.Quantity))
	}
	for _, c := range state.Contributions {
		l.Info("Contribution",
			zap.String("actor", c.ActorID),
			zap.String("item", c.ItemKey),
			zap.Int64("quantity", c.Quantity),
		)
	}
	return nil
}
