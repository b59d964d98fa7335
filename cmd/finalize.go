package cmd

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	// Flags for the finalize command
	lockSession bool
	yesConfirm  bool
	finalizedBy string
)

// finalizeCmd finalizes a counting session from the command line.
var finalizeCmd = &cobra.Command{
	Use:   "finalize <session-id>",
	Short: "Finalize a counting session (optionally locking it)",
	Long: `Finalize a counting session: freeze totals into a snapshot, merge manual
overrides, and report mismatches against the previous locked session.

Without --lock the session moves to 'finalizing' and can be finalized again
with different overrides. With --lock the session becomes permanent and will
serve as the baseline for future sessions.

Examples:
  # Finalize without locking
  stocktake finalize 7f3c... --by auditor-1

  # Lock (with interactive confirmation)
  stocktake finalize 7f3c... --by auditor-1 --lock

  # Lock non-interactively
  stocktake finalize 7f3c... --by auditor-1 --lock --yes`,
	Args: cobra.ExactArgs(1),
	RunE: runFinalize,
}

func init() {
	finalizeCmd.Flags().BoolVar(&lockSession, "lock", false, "Permanently lock the session after finalizing")
	finalizeCmd.Flags().BoolVar(&yesConfirm, "yes", false, "Auto-confirm the lock (non-interactive)")
	finalizeCmd.Flags().StringVar(&finalizedBy, "by", "", "Actor id recorded as the finalizer (required)")

	RootCmd.AddCommand(finalizeCmd)
}

func runFinalize(cmd *cobra.Command, args []string) error {
	sessionID := args[0]
	if finalizedBy == "" {
		return fmt.Errorf("--by is required")
	}

	svc, l, err := openCountingService()
	if err != nil {
		return err
	}

	// Locking is irreversible, so it gets a confirmation gate.
	if lockSession && !confirmLock() {
		l.Warn("Operation cancelled by user. No changes were made.")
		return nil
	}

	result, err := svc.Finalize(context.Background(), sessionID, finalizedBy, lockSession)
	if err != nil {
		return err
	}

	l.Info("Finalized session",
		zap.String("session_id", sessionID),
		zap.Bool("locked", lockSession),
		zap.Int("items", len(result.Totals)),
		zap.Int("mismatches", len(result.Mismatches)),
	)
	for _, m := range result.Mismatches {
		l.Info("Mismatch",
			zap.String("item", m.ItemKey),
			zap.Int64("current", m.Current),
			zap.Int64("baseline", m.Baseline),
			zap.Int64("delta", m.Delta),
		)
	}
	if result.ArchiveError != "" {
		l.Warn("Snapshot archive export failed", zap.String("error", result.ArchiveError))
	}
	return nil
}

// confirmLock prompts the user for confirmation or uses the --yes flag.
func confirmLock() bool {
	if yesConfirm {
		fmt.Println("\n✓ Auto-confirmed via --yes flag")
		return true
	}

	fmt.Print("\n⚠️  Locking is permanent. Type 'yes' to confirm: ")
	reader := bufio.NewReader(os.Stdin)
	response, err := reader.ReadString('\n')
	if err != nil {
		return false
	}

	response = strings.TrimSpace(response)
	return response == "yes"
}
