package cmd

import (
	"context"
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/RyanBlaney/phase-skew-monitor/configs"
	"github.com/RyanBlaney/phase-skew-monitor/internal/storage"
)

var sessionsLimit int

// sessionsCmd represents the sessions command
var sessionsCmd = &cobra.Command{
	Use:   "sessions",
	Short: "List recorded acquisition sessions",
	Long: `List the acquisition sessions recorded in the session store.

Sessions are listed newest first with their device, synchronization mode,
detection policy, and acquisition geometry. Use the report command to inspect
the skew statistics of a single session.

Examples:
  # List all recorded sessions
  phase-skew-monitor sessions

  # List the five most recent sessions
  phase-skew-monitor sessions --limit 5`,
	RunE: runSessions,
}

func init() {
	rootCmd.AddCommand(sessionsCmd)

	sessionsCmd.Flags().IntVar(&sessionsLimit, "limit", 0,
		"maximum number of sessions to list (0=all)")
}

func runSessions(cmd *cobra.Command, args []string) error {
	config, err := configs.LoadConfig()
	if err != nil {
		return err
	}

	store := storage.NewSqliteStore(config.Storage.ResolvePath(config.DataDir))
	defer store.Close()

	sessions, err := store.Sessions(context.Background())
	if err != nil {
		return fmt.Errorf("failed to list sessions: %w", err)
	}

	if len(sessions) == 0 {
		fmt.Println("No sessions recorded yet.")
		return nil
	}

	// The store returns sessions oldest first; show newest at the top.
	if sessionsLimit > 0 && len(sessions) > sessionsLimit {
		sessions = sessions[len(sessions)-sessionsLimit:]
	}

	fmt.Printf("%s%-6s  %-20s  %-16s  %-20s  %-17s  %-15s  %12s  %8s%s\n",
		ColorBold, "ID", "STARTED", "AGE", "DEVICE", "SYNC", "POLICY", "RATE (HZ)", "BLOCK", ColorReset)

	for i := len(sessions) - 1; i >= 0; i-- {
		s := sessions[i]
		fmt.Printf("%-6d  %-20s  %-16s  %-20s  %-17s  %-15s  %12.1f  %8d\n",
			s.ID,
			s.StartTime.Format("2006-01-02 15:04:05"),
			humanize.Time(s.StartTime),
			s.Device,
			s.SyncMode,
			s.Policy,
			s.SampleRateHz,
			s.BlockSize)
	}

	return nil
}
