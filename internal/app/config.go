package app

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/RyanBlaney/sonido-sonar/logging"
	"gopkg.in/yaml.v3"

	"github.com/RyanBlaney/phase-skew-monitor/configs"
)

// resolveConfig loads the viper configuration and applies CLI overrides
func resolveConfig(ctx *Context) (*configs.Config, error) {
	config, err := configs.LoadConfig()
	if err != nil {
		return nil, err
	}

	// Override with CLI flags
	if ctx.SyncMode != "" {
		config.Acquisition.SyncMode = ctx.SyncMode
	}
	if ctx.Policy != "" {
		config.Estimator.Policy = ctx.Policy
	}
	if ctx.Threshold > 0 {
		config.Estimator.Threshold = ctx.Threshold
	}
	if ctx.Blocks > 0 {
		config.Acquisition.Blocks = ctx.Blocks
	}
	if ctx.OutputFormat != "" {
		config.OutputFormat = ctx.OutputFormat
	} else {
		ctx.OutputFormat = config.OutputFormat
	}
	if ctx.Verbose {
		config.Verbose = true
	}

	// Validate final configuration
	if err := configs.ValidateConfig(config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// applyLogLevel maps CLI verbosity onto the logger level. Quiet wins
// over verbose.
func applyLogLevel(logger logging.Logger, ctx *Context) {
	switch {
	case ctx.Quiet:
		logger.SetLevel(logging.ErrorLevel)
	case ctx.Config.Verbose:
		logger.SetLevel(logging.DebugLevel)
	default:
		logger.SetLevel(parseLogLevel(ctx.Config.LogLevel))
	}
}

// parseLogLevel converts a configuration string to a logging level
func parseLogLevel(level string) logging.Level {
	switch strings.ToLower(level) {
	case "debug":
		return logging.DebugLevel
	case "warn", "warning":
		return logging.WarnLevel
	case "error":
		return logging.ErrorLevel
	default:
		return logging.InfoLevel
	}
}

// GenerateExampleConfig generates an example configuration file with
// every setting at its default value
func GenerateExampleConfig(outputFile string) error {
	// Write to YAML file
	data, err := yaml.Marshal(configs.GetDefaultConfig())
	if err != nil {
		return fmt.Errorf("failed to marshal example config: %w", err)
	}

	// Ensure directory exists
	dir := filepath.Dir(outputFile)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	if err := os.WriteFile(outputFile, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	fmt.Printf("Example configuration written to: %s\n", outputFile)
	return nil
}
