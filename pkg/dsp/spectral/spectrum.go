package spectral

import (
	"fmt"
	"math"
	"math/cmplx"
)

// BinPoint is a single frequency bin of a magnitude spectrum.
type BinPoint struct {
	FrequencyHz float64 `json:"frequency_hz"`
	Magnitude   float64 `json:"magnitude"`
	AmplitudeV  float64 `json:"amplitude_v"`
	PhaseDeg    float64 `json:"phase_deg"`
}

// MagnitudeSpectrum is the one-sided magnitude, amplitude and phase view
// of a single real-valued sample block.
type MagnitudeSpectrum struct {
	Bins           []BinPoint `json:"bins"`
	BlockSize      int        `json:"block_size"`      // N, samples in the source block
	SampleRateHz   float64    `json:"sample_rate_hz"`  // R
	FreqResolution float64    `json:"freq_resolution"` // R/N, Hz per bin
}

// NewMagnitudeSpectrum converts the N/2+1 complex bins of a block of
// blockSize samples at sampleRateHz into per-bin points:
//
//	frequency = i * R / N
//	magnitude = sqrt(re^2 + im^2)
//	amplitude = magnitude * 2 / N  (single-sided scaling, volts)
//	phase     = atan2(im, re) in degrees
func NewMagnitudeSpectrum(bins []complex128, blockSize int, sampleRateHz float64) (*MagnitudeSpectrum, error) {
	if blockSize < minBlockSize {
		return nil, fmt.Errorf("block size %d is too short for a spectrum (minimum %d)", blockSize, minBlockSize)
	}
	if sampleRateHz <= 0 {
		return nil, fmt.Errorf("sample rate must be positive, got %g", sampleRateHz)
	}
	if len(bins) != BinCount(blockSize) {
		return nil, fmt.Errorf("got %d bins, block size %d requires %d", len(bins), blockSize, BinCount(blockSize))
	}

	n := float64(blockSize)
	resolution := sampleRateHz / n

	points := make([]BinPoint, len(bins))
	for i, bin := range bins {
		mag := cmplx.Abs(bin)
		points[i] = BinPoint{
			FrequencyHz: float64(i) * resolution,
			Magnitude:   mag,
			AmplitudeV:  mag * 2 / n,
			PhaseDeg:    cmplx.Phase(bin) * 180 / math.Pi,
		}
	}

	return &MagnitudeSpectrum{
		Bins:           points,
		BlockSize:      blockSize,
		SampleRateHz:   sampleRateHz,
		FreqResolution: resolution,
	}, nil
}

// SameGeometry reports whether two spectra share block size and sample
// rate, and therefore bin-for-bin frequencies.
func (s *MagnitudeSpectrum) SameGeometry(other *MagnitudeSpectrum) bool {
	return other != nil &&
		s.BlockSize == other.BlockSize &&
		s.SampleRateHz == other.SampleRateHz
}
