package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/RyanBlaney/latency-benchmark-common/output"
	"github.com/RyanBlaney/sonido-sonar/logging"

	"github.com/RyanBlaney/phase-skew-monitor/configs"
	"github.com/RyanBlaney/phase-skew-monitor/internal/daq"
	"github.com/RyanBlaney/phase-skew-monitor/internal/monitor"
	"github.com/RyanBlaney/phase-skew-monitor/internal/report"
	"github.com/RyanBlaney/phase-skew-monitor/internal/sink"
	"github.com/RyanBlaney/phase-skew-monitor/internal/storage"
	"github.com/RyanBlaney/phase-skew-monitor/pkg/dsp/spectral"
)

// Context holds the application context and configuration
type Context struct {
	// CLI arguments
	ConfigFile   string
	OutputFile   string
	OutputFormat string
	SyncMode     string
	Policy       string
	Threshold    float64
	Blocks       uint64
	Verbose      bool
	Quiet        bool
	Detailed     bool

	// Runtime context
	Logger logging.Logger
	Config *configs.Config
}

// MonitorApp handles the acquisition application lifecycle
type MonitorApp struct {
	ctx    *Context
	config *configs.Config
	logger logging.Logger
}

// NewMonitorApp creates a new monitor application
func NewMonitorApp(ctx *Context) (*MonitorApp, error) {
	// Set up logging
	logger := setupLogging(ctx)
	ctx.Logger = logger

	// Load configuration
	config, err := resolveConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	ctx.Config = config
	applyLogLevel(logger, ctx)

	logger.Debug("Monitor application initialized", logging.Fields{
		"config_file": ctx.ConfigFile,
		"sync_mode":   config.Acquisition.SyncMode,
		"policy":      config.Estimator.Policy,
		"sample_rate": config.Acquisition.SampleRate,
		"block_size":  config.Acquisition.BlockSize,
	})

	return &MonitorApp{
		ctx:    ctx,
		config: config,
		logger: logger,
	}, nil
}

// Run executes one acquisition session
func (app *MonitorApp) Run(ctx context.Context) error {
	acq := app.config.Acquisition

	syncMode, err := daq.ParseSyncMode(acq.SyncMode)
	if err != nil {
		return err
	}

	device, err := daq.NewSimulator(daq.SimulatorConfig{
		SampleRateHz: acq.SampleRate,
		BlockSize:    acq.BlockSize,
		Sync:         syncMode,
		ToneA:        toneConfig(acq.DSA),
		ToneB:        toneConfig(acq.MIO),
		Blocks:       acq.Blocks,
		Interval:     acq.Interval,
	}, daq.WithLogger(app.logger))
	if err != nil {
		return fmt.Errorf("failed to create device: %w", err)
	}

	estimator := spectral.EstimatorConfig{
		Policy:    spectral.SelectionPolicy(app.config.Estimator.Policy),
		Threshold: app.config.Estimator.Threshold,
	}

	pipelineConfig := monitor.PipelineConfig{
		SampleRateHz: acq.SampleRate,
		BlockSize:    acq.BlockSize,
		Estimator:    estimator,
		Logger:       app.logger,
	}

	if path := app.config.Output.VoltagePath; path != "" {
		voltage, err := sink.NewVoltageWriter(path, app.config.Output.VoltagePrecision)
		if err != nil {
			return fmt.Errorf("failed to create voltage writer: %w", err)
		}
		defer voltage.Close()
		pipelineConfig.Voltage = voltage
	}

	if path := app.config.Output.SpectrumPath; path != "" {
		spectrum, err := sink.NewSpectrumWriter(path, app.config.Output.FrequencyPrecision, app.config.Output.ValuePrecision)
		if err != nil {
			return fmt.Errorf("failed to create spectrum writer: %w", err)
		}
		pipelineConfig.Spectrum = spectrum
	}

	var status *sink.StatusWriter
	if app.config.Output.Status && !app.ctx.Quiet {
		status = sink.NewStatusWriter(os.Stdout)
		pipelineConfig.Status = status
	}

	var store storage.Store
	var sessionID int64
	if app.config.Storage.Enabled {
		dbPath := app.config.Storage.ResolvePath(app.config.DataDir)
		if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
			return fmt.Errorf("failed to create data directory: %w", err)
		}

		sqlStore := storage.NewSqliteStore(dbPath)
		defer sqlStore.Close()
		store = sqlStore

		sessionID, err = store.CreateSession(ctx, device.Info(), app.config.Estimator.Policy, acq)
		if err != nil {
			return fmt.Errorf("failed to create session: %w", err)
		}
		pipelineConfig.Store = store
		pipelineConfig.SessionID = sessionID

		app.logger.Debug("Session created", logging.Fields{
			"session_id": sessionID,
			"db_path":    dbPath,
		})
	}

	pipeline, err := monitor.NewPipeline(pipelineConfig)
	if err != nil {
		return fmt.Errorf("failed to create pipeline: %w", err)
	}

	if status != nil {
		status.Banner(device.Info(), estimator.Policy)
	}

	mon := monitor.NewMonitor(device, pipeline, app.logger)

	summary, runErr := mon.Run(ctx)
	if summary == nil {
		return runErr
	}

	// Generate detailed session statistics if requested
	var sessionReport *report.SessionReport
	if app.ctx.Detailed && store != nil {
		sessionReport = app.sessionReport(ctx, store, sessionID)
	}

	// Output results
	if err := app.outputResults(summary, sessionReport); err != nil {
		return fmt.Errorf("failed to output results: %w", err)
	}

	if runErr != nil {
		return runErr
	}

	// Return error if every block failed
	if summary.BlocksProcessed == 0 && summary.BlocksFailed > 0 {
		return fmt.Errorf("all %d blocks failed processing", summary.BlocksFailed)
	}

	return nil
}

// setupLogging configures logging based on context
func setupLogging(ctx *Context) logging.Logger {
	return logging.NewDefaultLogger()
}

// sessionReport loads the stored session back and computes its
// statistics. Failures only cost the report, not the finished run.
func (app *MonitorApp) sessionReport(ctx context.Context, store storage.Store, sessionID int64) *report.SessionReport {
	session, err := store.Session(ctx, sessionID)
	if err != nil {
		app.logger.Error(err, "Failed to load session for report", logging.Fields{
			"session_id": sessionID,
		})
		return nil
	}

	records, err := store.ResultsForSession(ctx, sessionID)
	if err != nil {
		app.logger.Error(err, "Failed to load session results for report", logging.Fields{
			"session_id": sessionID,
		})
		return nil
	}

	return report.NewCalculator(app.logger).Summarize(session, records)
}

// outputResults handles all result output
func (app *MonitorApp) outputResults(summary *monitor.RunSummary, sessionReport *report.SessionReport) error {
	outputData := map[string]any{
		"run_summary": summary,
		"timestamp":   time.Now(),
		"configuration": map[string]any{
			"sync_mode":   app.config.Acquisition.SyncMode,
			"policy":      app.config.Estimator.Policy,
			"sample_rate": app.config.Acquisition.SampleRate,
			"block_size":  app.config.Acquisition.BlockSize,
			"blocks":      app.config.Acquisition.Blocks,
		},
	}

	if sessionReport != nil {
		outputData["session_report"] = sessionReport
	}

	formattedData, err := FormatterFor(app.ctx.OutputFormat).Format(outputData, true)
	if err != nil {
		return fmt.Errorf("failed to format output data: %w", err)
	}

	// Write to file or stdout
	if app.ctx.OutputFile != "" {
		return app.writeToFile(formattedData)
	}

	_, err = os.Stdout.Write(formattedData)
	return err
}

// FormatterFor returns the formatter for the named output format.
// Unknown names fall back to JSON.
func FormatterFor(format string) output.Formatter {
	switch format {
	case "json":
		return &output.JSONFormatter{}
	case "yaml":
		return &output.YAMLFormatter{}
	case "csv":
		return &output.CSVFormatter{}
	case "table":
		return &output.TableFormatter{}
	default:
		return &output.JSONFormatter{}
	}
}

// writeToFile writes data to the specified output file
func (app *MonitorApp) writeToFile(data []byte) error {
	// Ensure directory exists
	dir := filepath.Dir(app.ctx.OutputFile)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	// Write file
	if err := os.WriteFile(app.ctx.OutputFile, data, 0644); err != nil {
		return fmt.Errorf("failed to write output file: %w", err)
	}

	app.logger.Debug("Results written to file", logging.Fields{
		"output_file": app.ctx.OutputFile,
		"size_bytes":  len(data),
	})

	return nil
}

func toneConfig(tone configs.ToneConfig) daq.ToneConfig {
	return daq.ToneConfig{
		FrequencyHz: tone.Frequency,
		AmplitudeV:  tone.Amplitude,
		PhaseDeg:    tone.Phase,
		NoiseV:      tone.Noise,
	}
}
