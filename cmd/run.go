package cmd

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/RyanBlaney/phase-skew-monitor/internal/app"
)

var (
	// Run command flags
	runSyncMode   string
	runPolicy     string
	runThreshold  float64
	runBlocks     uint64
	runOutputFile string
	runDetailed   bool
	runQuiet      bool
)

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a dual-channel acquisition session",
	Long: `Acquire synchronized sample blocks from the DSA/MIO channel pair and
estimate the phase skew between the channels for every block.

Each block is deinterleaved, transformed with an FFT per channel, and searched
for the generator tone according to the configured detection policy. Detected
blocks report the tone frequency and the phase skew in degrees and seconds.
Voltage samples and the latest spectra are exported as CSV, and every result
is recorded in the session store.

Examples:
  # Run with configuration defaults
  phase-skew-monitor run

  # Acquire 100 blocks with the max-magnitude policy
  phase-skew-monitor run --blocks 100 --policy max-magnitude

  # Sample-clock synchronization with JSON results written to a file
  phase-skew-monitor run --sync sample-clock --output json --output-file results.json

  # Detailed session statistics after the run
  phase-skew-monitor run --detailed`,
	RunE: runMonitor,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVar(&runSyncMode, "sync", "",
		"synchronization mode (reference-clock, sample-clock, channel-expansion)")
	runCmd.Flags().StringVar(&runPolicy, "policy", "",
		"tone detection policy (threshold, max-magnitude)")
	runCmd.Flags().Float64Var(&runThreshold, "threshold", 0,
		"magnitude threshold for the threshold policy")
	runCmd.Flags().Uint64Var(&runBlocks, "blocks", 0,
		"number of blocks to acquire (0=use configuration)")
	runCmd.Flags().StringVar(&runOutputFile, "output-file", "",
		"write results to file instead of stdout")
	runCmd.Flags().BoolVar(&runDetailed, "detailed", false,
		"include detailed session statistics in the results")
	runCmd.Flags().BoolVarP(&runQuiet, "quiet", "q", false,
		"suppress per-block status output")
}

func runMonitor(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	appCtx := &app.Context{
		ConfigFile:   configFile,
		OutputFile:   runOutputFile,
		OutputFormat: viper.GetString("output_format"),
		SyncMode:     runSyncMode,
		Policy:       runPolicy,
		Threshold:    runThreshold,
		Blocks:       runBlocks,
		Verbose:      viper.GetBool("verbose"),
		Quiet:        runQuiet,
		Detailed:     runDetailed,
	}

	monitorApp, err := app.NewMonitorApp(appCtx)
	if err != nil {
		return err
	}

	return monitorApp.Run(ctx)
}
