package monitor

import (
	"context"
	"fmt"
	"math"

	"github.com/RyanBlaney/sonido-sonar/logging"

	"github.com/RyanBlaney/phase-skew-monitor/internal/daq"
	"github.com/RyanBlaney/phase-skew-monitor/internal/sink"
	"github.com/RyanBlaney/phase-skew-monitor/internal/storage"
	"github.com/RyanBlaney/phase-skew-monitor/pkg/dsp/spectral"
)

// PipelineConfig configures the per-block estimation pipeline. The sink
// and store fields are optional; a nil field disables that output.
type PipelineConfig struct {
	SampleRateHz float64
	BlockSize    int
	Estimator    spectral.EstimatorConfig

	Voltage  *sink.VoltageWriter
	Spectrum *sink.SpectrumWriter
	Status   *sink.StatusWriter

	Store     storage.Store
	SessionID int64

	Logger logging.Logger
}

// Pipeline runs one estimation cycle per delivered block: demultiplex if
// needed, transform both channels, derive spectra, estimate skew, then
// emit CSV rows, the status line and the stored record.
//
// A pipeline is single-threaded by contract: the acquisition loop calls
// ProcessBlock serially, so the running totals need no locking. Each
// block either completes fully or leaves totals and outputs untouched.
type Pipeline struct {
	config    PipelineConfig
	transform *spectral.Transform
	estimator *spectral.SkewEstimator
	logger    logging.Logger

	// Scratch blocks for interleaved input, reused across calls.
	demuxA []float64
	demuxB []float64

	dsaSamples uint64
	mioSamples uint64
	lastResult spectral.SkewResult
}

// NewPipeline validates the configuration and creates a pipeline.
func NewPipeline(config PipelineConfig) (*Pipeline, error) {
	if config.SampleRateHz <= 0 {
		return nil, fmt.Errorf("sample rate must be positive, got %g", config.SampleRateHz)
	}
	if config.BlockSize < 2 || config.BlockSize%2 != 0 {
		return nil, fmt.Errorf("block size must be even and at least 2, got %d", config.BlockSize)
	}

	estimator, err := spectral.NewSkewEstimator(config.Estimator)
	if err != nil {
		return nil, fmt.Errorf("failed to create skew estimator: %w", err)
	}

	logger := config.Logger
	if logger == nil {
		logger = logging.NewDefaultLogger()
	}

	return &Pipeline{
		config:    config,
		transform: spectral.NewTransform(),
		estimator: estimator,
		logger:    logger,
		demuxA:    make([]float64, config.BlockSize),
		demuxB:    make([]float64, config.BlockSize),
	}, nil
}

// Estimator returns the estimator the pipeline runs.
func (p *Pipeline) Estimator() *spectral.SkewEstimator {
	return p.estimator
}

// Totals returns the cumulative samples processed per channel.
func (p *Pipeline) Totals() (dsaSamples, mioSamples uint64) {
	return p.dsaSamples, p.mioSamples
}

// LastResult returns the most recent successful estimate.
func (p *Pipeline) LastResult() spectral.SkewResult {
	return p.lastResult
}

// ProcessBlock runs one full estimation cycle. A failure in any stage
// stops the cycle with running totals unchanged and no status line or
// stored record emitted; computation failures emit nothing at all, and
// the error names the stage that failed. Failures are local to the
// block; the caller may keep feeding subsequent blocks.
func (p *Pipeline) ProcessBlock(ctx context.Context, block daq.Block) (spectral.SkewResult, error) {
	a, b, err := p.channelBlocks(block)
	if err != nil {
		return spectral.SkewResult{}, fmt.Errorf("failed to split block %d: %w", block.Index, err)
	}

	// The transform reuses one output buffer per block length, so
	// channel A's bins must be consumed into a spectrum before channel
	// B overwrites them.
	binsA, err := p.transform.Compute(a)
	if err != nil {
		return spectral.SkewResult{}, fmt.Errorf("failed to transform DSA block %d: %w", block.Index, err)
	}
	specA, err := spectral.NewMagnitudeSpectrum(binsA, len(a), p.config.SampleRateHz)
	if err != nil {
		return spectral.SkewResult{}, fmt.Errorf("failed to derive DSA spectrum for block %d: %w", block.Index, err)
	}

	binsB, err := p.transform.Compute(b)
	if err != nil {
		return spectral.SkewResult{}, fmt.Errorf("failed to transform MIO block %d: %w", block.Index, err)
	}
	specB, err := spectral.NewMagnitudeSpectrum(binsB, len(b), p.config.SampleRateHz)
	if err != nil {
		return spectral.SkewResult{}, fmt.Errorf("failed to derive MIO spectrum for block %d: %w", block.Index, err)
	}

	result, err := p.estimator.Estimate(specA, specB)
	if err != nil {
		return spectral.SkewResult{}, fmt.Errorf("failed to estimate skew for block %d: %w", block.Index, err)
	}
	if err := guardNumeric(result); err != nil {
		return spectral.SkewResult{}, fmt.Errorf("rejecting estimate for block %d: %w", block.Index, err)
	}

	if p.config.Voltage != nil {
		if err := p.config.Voltage.AppendBlock(a, b, p.dsaSamples, p.config.SampleRateHz); err != nil {
			return spectral.SkewResult{}, fmt.Errorf("failed to append voltage rows for block %d: %w", block.Index, err)
		}
	}
	if p.config.Spectrum != nil {
		if err := p.config.Spectrum.WriteSpectra(specA, specB); err != nil {
			return spectral.SkewResult{}, fmt.Errorf("failed to write spectra for block %d: %w", block.Index, err)
		}
	}
	if p.config.Store != nil {
		rec := storage.SkewRecord{
			BlockIndex:       block.Index,
			DSASamples:       p.dsaSamples + uint64(len(a)),
			MIOSamples:       p.mioSamples + uint64(len(b)),
			Detected:         result.Detected,
			FrequencyHz:      result.DetectedFrequencyHz,
			PhaseSkewDegrees: result.PhaseSkewDegrees,
			PhaseSkewSeconds: result.PhaseSkewSeconds,
		}
		if err := p.config.Store.AppendResult(ctx, p.config.SessionID, rec); err != nil {
			return spectral.SkewResult{}, fmt.Errorf("failed to store result for block %d: %w", block.Index, err)
		}
	}

	p.dsaSamples += uint64(len(a))
	p.mioSamples += uint64(len(b))
	p.lastResult = result

	if p.config.Status != nil {
		p.config.Status.Status(p.dsaSamples, p.mioSamples, result)
	}

	p.logger.Debug("Processed block", logging.Fields{
		"block":        block.Index,
		"detected":     result.Detected,
		"frequency_hz": result.DetectedFrequencyHz,
		"skew_deg":     result.PhaseSkewDegrees,
	})

	return result, nil
}

// channelBlocks resolves a block into its two per-channel sample slices.
func (p *Pipeline) channelBlocks(block daq.Block) (a, b []float64, err error) {
	switch block.Layout {
	case daq.LayoutInterleaved:
		if err := spectral.DeinterleaveInto(p.demuxA, p.demuxB, block.Interleaved); err != nil {
			return nil, nil, err
		}
		return p.demuxA, p.demuxB, nil

	case daq.LayoutSplit:
		if len(block.A) != p.config.BlockSize || len(block.B) != p.config.BlockSize {
			return nil, nil, fmt.Errorf("split block holds %d and %d samples, configured block size is %d",
				len(block.A), len(block.B), p.config.BlockSize)
		}
		return block.A, block.B, nil
	}
	return nil, nil, fmt.Errorf("unknown channel layout %d", block.Layout)
}

// guardNumeric rejects estimates whose values would corrupt the output
// streams. A detected result must carry finite, positive frequency and
// finite skew values.
func guardNumeric(result spectral.SkewResult) error {
	if !result.Detected {
		return nil
	}
	if !finite(result.DetectedFrequencyHz) || result.DetectedFrequencyHz <= 0 {
		return fmt.Errorf("non-positive or non-finite detected frequency %g", result.DetectedFrequencyHz)
	}
	if !finite(result.PhaseSkewDegrees) || !finite(result.PhaseSkewSeconds) {
		return fmt.Errorf("non-finite skew %g deg / %g s", result.PhaseSkewDegrees, result.PhaseSkewSeconds)
	}
	return nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
