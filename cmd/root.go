package cmd

import (
	"fmt"
	"os"

	"stocktake/core/logger"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// RootCmd represents the base command when called without any subcommands
var RootCmd = &cobra.Command{
	Use:   "stocktake",
	Short: "Collaborative inventory counting service",
	Long: `Stocktake is the collaborative physical-inventory counting engine.
Multiple devices count into a shared session; totals converge without double
counting, and finalized sessions become locked, auditable snapshots.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func Execute() {
	if err := RootCmd.Execute(); err != nil {
		// Console format with debug level gives ISO8601 timestamps, which
		// reads better for a CLI tool than prod epoch output.
		cfg := &logger.Config{
			Level:  "debug",
			Format: "console",
		}

		l, logErr := logger.New(cfg)
		if logErr == nil {
			l.Error("command failed", zap.Error(err))
			_ = l.Sync()
		} else {
			// Absolute fallback if logger creation fails (rare)
			fmt.Println(err)
		}
		os.Exit(1)
	}
}
