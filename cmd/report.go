package cmd

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/RyanBlaney/phase-skew-monitor/configs"
	"github.com/RyanBlaney/phase-skew-monitor/internal/app"
	"github.com/RyanBlaney/phase-skew-monitor/internal/report"
	"github.com/RyanBlaney/phase-skew-monitor/internal/storage"
)

var reportOutputFile string

// reportCmd represents the report command
var reportCmd = &cobra.Command{
	Use:   "report [session-id]",
	Short: "Report skew statistics for a recorded session",
	Long: `Summarize the skew estimates recorded for one acquisition session.

The report covers the detection rate plus the distribution of the detected
frequency, the phase skew in degrees, and the phase skew in seconds across
the session's blocks. Without a session ID the most recent session is
reported.

Examples:
  # Report the most recent session
  phase-skew-monitor report

  # Report session 12 as JSON
  phase-skew-monitor report 12 --output json

  # Write the report to a file
  phase-skew-monitor report 12 --output yaml --output-file report.yaml`,
	Args: cobra.MaximumNArgs(1),
	RunE: runReport,
}

func init() {
	rootCmd.AddCommand(reportCmd)

	reportCmd.Flags().StringVar(&reportOutputFile, "output-file", "",
		"write the report to file instead of stdout")
}

func runReport(cmd *cobra.Command, args []string) error {
	config, err := configs.LoadConfig()
	if err != nil {
		return err
	}

	store := storage.NewSqliteStore(config.Storage.ResolvePath(config.DataDir))
	defer store.Close()

	ctx := context.Background()

	sessionID, err := resolveSessionID(ctx, store, args)
	if err != nil {
		return err
	}

	session, err := store.Session(ctx, sessionID)
	if err != nil {
		return fmt.Errorf("failed to load session %d: %w", sessionID, err)
	}

	records, err := store.ResultsForSession(ctx, sessionID)
	if err != nil {
		return fmt.Errorf("failed to load session results: %w", err)
	}

	sessionReport := report.NewCalculator(nil).Summarize(session, records)

	format := viper.GetString("output_format")
	if reportOutputFile == "" && (format == "" || format == "table") {
		printSessionReport(sessionReport)
		return nil
	}

	data, err := app.FormatterFor(format).Format(sessionReport, true)
	if err != nil {
		return fmt.Errorf("failed to format report: %w", err)
	}

	if reportOutputFile != "" {
		return os.WriteFile(reportOutputFile, data, 0644)
	}

	_, err = os.Stdout.Write(data)
	return err
}

// resolveSessionID picks the explicit session or falls back to the most
// recent one.
func resolveSessionID(ctx context.Context, store storage.Store, args []string) (int64, error) {
	if len(args) == 1 {
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid session ID %q", args[0])
		}
		return id, nil
	}

	sessions, err := store.Sessions(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list sessions: %w", err)
	}
	if len(sessions) == 0 {
		return 0, fmt.Errorf("no sessions recorded yet")
	}

	return sessions[len(sessions)-1].ID, nil
}

func printSessionReport(r *report.SessionReport) {
	s := r.Session

	fmt.Printf("\n%s%s%s\n", ColorBold+ColorBlue, strings.Repeat("=", 80), ColorReset)
	fmt.Printf("%sSESSION %d REPORT%s\n", ColorBold+ColorCyan, s.ID, ColorReset)
	fmt.Printf("%s%s%s\n", ColorBold+ColorBlue, strings.Repeat("=", 80), ColorReset)

	printSection("SESSION")
	printKeyValue("Started", s.StartTime.Format("2006-01-02 15:04:05"))
	printKeyValue("Device", s.Device)
	printKeyValue("Sync Mode", s.SyncMode)
	printKeyValue("Policy", s.Policy)
	printKeyValue("Sample Rate", fmt.Sprintf("%.1f Hz", s.SampleRateHz))
	printKeyValue("Block Size", strconv.Itoa(s.BlockSize))

	printSection("DETECTION")
	printKeyValue("Blocks", strconv.Itoa(r.BlockCount))
	printKeyValue("Detections", strconv.Itoa(r.DetectionCount))
	printKeyValue("Detection Rate", fmt.Sprintf("%.1f%%", r.DetectionRate*100))

	printStats("DETECTED FREQUENCY (HZ)", r.FrequencyHz, "%.2f")
	printStats("PHASE SKEW (DEGREES)", r.SkewDegrees, "%.3f")
	printStats("PHASE SKEW (SECONDS)", r.SkewSeconds, "%.6g")

	if len(r.Insights) > 0 {
		printSection("INSIGHTS")
		for _, insight := range r.Insights {
			fmt.Printf("  %s•%s %s\n", ColorCyan, ColorReset, insight)
		}
	}

	fmt.Println()
}

func printStats(title string, stats *report.SkewStats, format string) {
	if stats == nil {
		return
	}

	printSection(title)
	printKeyValue("Mean", fmt.Sprintf(format, stats.Mean))
	printKeyValue("Median", fmt.Sprintf(format, stats.Median))
	printKeyValue("Min", fmt.Sprintf(format, stats.Min))
	printKeyValue("Max", fmt.Sprintf(format, stats.Max))
	printKeyValue("Std Dev", fmt.Sprintf(format, stats.StdDev))
}
