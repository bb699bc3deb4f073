package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/RyanBlaney/phase-skew-monitor/configs"
	"github.com/RyanBlaney/phase-skew-monitor/internal/app"
)

var configTestGenerate string

// configTestCmd represents the config test command
var configTestCmd = &cobra.Command{
	Use:   "config-test",
	Short: "Test and display all configuration values",
	Long: `Test configuration loading and display all values to verify proper parsing.

This command loads the configuration and displays all values in a structured
format to help verify that your YAML configuration is being parsed correctly.

Examples:
  # Test with default config file
  phase-skew-monitor config-test

  # Test with specific config file
  phase-skew-monitor --config /path/to/config.yaml config-test

  # Write an example configuration with every default value
  phase-skew-monitor config-test --generate configs/phase-skew-monitor.yaml`,
	RunE: runConfigTest,
}

func init() {
	rootCmd.AddCommand(configTestCmd)

	configTestCmd.Flags().StringVar(&configTestGenerate, "generate", "",
		"write an example configuration file to the given path and exit")
}

func runConfigTest(cmd *cobra.Command, args []string) error {
	if configTestGenerate != "" {
		return app.GenerateExampleConfig(configTestGenerate)
	}

	fmt.Println("PHASE SKEW MONITOR CONFIGURATION TEST")
	fmt.Println(strings.Repeat("=", 80))

	// Load configuration
	config, err := configs.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	printSection("APPLICATION SETTINGS")
	printKeyValue("Verbose", fmt.Sprintf("%t", config.Verbose))
	printKeyValue("Log Level", config.LogLevel)
	printKeyValue("Output Format", config.OutputFormat)
	printKeyValue("Data Directory", config.DataDir)

	printSection("ACQUISITION CONFIGURATION")
	printKeyValue("Sample Rate", fmt.Sprintf("%.1f Hz", config.Acquisition.SampleRate))
	printKeyValue("Block Size", fmt.Sprintf("%d samples", config.Acquisition.BlockSize))
	printKeyValue("Sync Mode", config.Acquisition.SyncMode)
	printKeyValue("Blocks", fmt.Sprintf("%d", config.Acquisition.Blocks))
	printKeyValue("Interval", config.Acquisition.Interval.String())

	printSubsection("DSA Tone")
	printKeyValue("  Frequency", fmt.Sprintf("%.1f Hz", config.Acquisition.DSA.Frequency))
	printKeyValue("  Amplitude", fmt.Sprintf("%.3f V", config.Acquisition.DSA.Amplitude))
	printKeyValue("  Phase", fmt.Sprintf("%.1f deg", config.Acquisition.DSA.Phase))
	printKeyValue("  Noise", fmt.Sprintf("%.3f V", config.Acquisition.DSA.Noise))

	printSubsection("MIO Tone")
	printKeyValue("  Frequency", fmt.Sprintf("%.1f Hz", config.Acquisition.MIO.Frequency))
	printKeyValue("  Amplitude", fmt.Sprintf("%.3f V", config.Acquisition.MIO.Amplitude))
	printKeyValue("  Phase", fmt.Sprintf("%.1f deg", config.Acquisition.MIO.Phase))
	printKeyValue("  Noise", fmt.Sprintf("%.3f V", config.Acquisition.MIO.Noise))

	printSection("ESTIMATOR CONFIGURATION")
	printKeyValue("Policy", config.Estimator.Policy)
	printKeyValue("Threshold", fmt.Sprintf("%.3f", config.Estimator.Threshold))

	printSection("OUTPUT CONFIGURATION")
	printKeyValue("Voltage Path", config.Output.VoltagePath)
	printKeyValue("Spectrum Path", config.Output.SpectrumPath)
	printKeyValue("Voltage Precision", fmt.Sprintf("%d", config.Output.VoltagePrecision))
	printKeyValue("Frequency Precision", fmt.Sprintf("%d", config.Output.FrequencyPrecision))
	printKeyValue("Value Precision", fmt.Sprintf("%d", config.Output.ValuePrecision))
	printKeyValue("Status", fmt.Sprintf("%t", config.Output.Status))

	printSection("STORAGE CONFIGURATION")
	printKeyValue("Enabled", fmt.Sprintf("%t", config.Storage.Enabled))
	printKeyValue("Path", config.Storage.Path)
	printKeyValue("Resolved Path", config.Storage.ResolvePath(config.DataDir))

	printSection("RENDER CONFIGURATION")
	printKeyValue("Width", fmt.Sprintf("%d px", config.Render.Width))
	printKeyValue("Height", fmt.Sprintf("%d px", config.Render.Height))
	printKeyValue("Theme", config.Render.Theme)
	printKeyValue("Dynamic Range", fmt.Sprintf("%.1f dB", config.Render.DynamicRange))

	// Validate what we just printed
	printSection("VALIDATION")
	if err := configs.ValidateConfig(config); err != nil {
		printKeyValue("Result", fmt.Sprintf("%sINVALID: %v%s", ColorRed, err, ColorReset))
		return err
	}
	printKeyValue("Result", ColorGreen+"VALID"+ColorReset)

	fmt.Println()
	fmt.Println(ColorGreen + strings.Repeat("-", 80))
	fmt.Println("CONFIGURATION TEST COMPLETED SUCCESSFULLY")
	fmt.Printf("Config file: %s\n", getConfigFilePath())
	fmt.Println(strings.Repeat("=", 80) + ColorReset)

	return nil
}

func printSection(title string) {
	fmt.Printf("\n%s\n", title)
	fmt.Println(strings.Repeat("-", len(title)))
}

func printSubsection(title string) {
	fmt.Printf("\n  %s\n", title)
}

func printKeyValue(key, value string) {
	if value == "" {
		fmt.Printf("%-35s\n", key)
	} else {
		fmt.Printf("%-35s %s\n", key+":", value)
	}
}

func getConfigFilePath() string {
	if used := viper.ConfigFileUsed(); used != "" {
		return used
	}
	return "(built-in defaults)"
}
