package monitor

import (
	"context"
	"fmt"
	"time"

	"github.com/RyanBlaney/sonido-sonar/logging"

	"github.com/RyanBlaney/phase-skew-monitor/internal/daq"
	"github.com/RyanBlaney/phase-skew-monitor/pkg/dsp/spectral"
)

// RunSummary aggregates one acquisition run.
type RunSummary struct {
	StartTime     time.Time     `json:"start_time"`
	EndTime       time.Time     `json:"end_time"`
	TotalDuration time.Duration `json:"total_duration"`

	BlocksProcessed uint64 `json:"blocks_processed"`
	BlocksFailed    uint64 `json:"blocks_failed"`
	Detections      uint64 `json:"detections"`

	DSASamples uint64 `json:"dsa_samples"`
	MIOSamples uint64 `json:"mio_samples"`

	// LastResult is the run's final estimate that detected a tone; zero
	// when no block produced a detection.
	LastResult spectral.SkewResult `json:"last_result"`
}

// Monitor drives a device's block stream through the pipeline, one
// block at a time in arrival order.
type Monitor struct {
	device   daq.Device
	pipeline *Pipeline
	logger   logging.Logger
}

// NewMonitor creates a monitor for the given device and pipeline.
func NewMonitor(device daq.Device, pipeline *Pipeline, logger logging.Logger) *Monitor {
	if logger == nil {
		logger = logging.NewDefaultLogger()
	}
	return &Monitor{
		device:   device,
		pipeline: pipeline,
		logger:   logger,
	}
}

// Run starts the device and processes its blocks until the device
// finishes, the context is cancelled, or acquisition fails upstream.
// Block-local failures are logged and skipped; an upstream device error
// ends the run and is returned alongside the summary of the blocks
// processed up to that point.
func (m *Monitor) Run(ctx context.Context) (*RunSummary, error) {
	info := m.device.Info()
	summary := &RunSummary{StartTime: time.Now()}

	m.logger.Debug("Starting acquisition run", logging.Fields{
		"device":      info.Name,
		"sync":        string(info.Sync),
		"sample_rate": info.SampleRateHz,
		"block_size":  info.BlockSize,
	})

	blocks := make(chan daq.Block, 1)
	stopped, err := m.device.Begin(ctx, blocks)
	if err != nil {
		return nil, fmt.Errorf("failed to start device: %w", err)
	}
	defer m.device.Stop()

	var runErr error
loop:
	for {
		select {
		case block := <-blocks:
			m.handleBlock(ctx, block, summary)

		case devErr := <-stopped:
			if devErr != nil {
				// Upstream acquisition failure: no further blocks are
				// processed, including any still buffered.
				runErr = fmt.Errorf("acquisition failed: %w", devErr)
				break loop
			}
		drain:
			for {
				select {
				case block := <-blocks:
					m.handleBlock(ctx, block, summary)
				default:
					break drain
				}
			}
			break loop
		}
	}

	summary.EndTime = time.Now()
	summary.TotalDuration = summary.EndTime.Sub(summary.StartTime)
	summary.DSASamples, summary.MIOSamples = m.pipeline.Totals()

	m.logger.Debug("Acquisition run completed", logging.Fields{
		"blocks_processed": summary.BlocksProcessed,
		"blocks_failed":    summary.BlocksFailed,
		"detections":       summary.Detections,
		"duration_s":       summary.TotalDuration.Seconds(),
	})

	return summary, runErr
}

func (m *Monitor) handleBlock(ctx context.Context, block daq.Block, summary *RunSummary) {
	result, err := m.pipeline.ProcessBlock(ctx, block)
	if err != nil {
		summary.BlocksFailed++
		m.logger.Error(err, "Dropped block", logging.Fields{"block": block.Index})
		return
	}

	summary.BlocksProcessed++
	if result.Detected {
		summary.Detections++
		summary.LastResult = result
	}
}
