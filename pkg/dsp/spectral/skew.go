package spectral

import (
	"fmt"
)

// SelectionPolicy names a strategy for picking the measurement bin out
// of a pair of spectra.
type SelectionPolicy string

const (
	// PolicyThreshold selects the first bin whose magnitude clears a
	// configured floor on both channels.
	PolicyThreshold SelectionPolicy = "threshold"

	// PolicyMaxMagnitude selects the strongest bin present on both
	// channels.
	PolicyMaxMagnitude SelectionPolicy = "max-magnitude"
)

// EstimatorConfig configures bin selection for skew estimation.
type EstimatorConfig struct {
	Policy SelectionPolicy `json:"policy"`

	// Threshold is the minimum bin magnitude both channels must reach
	// under PolicyThreshold. Ignored by PolicyMaxMagnitude.
	Threshold float64 `json:"threshold"`
}

// SkewResult is the phase skew measured between two channels at the
// selected bin. When Detected is false no tone qualified and the other
// fields are zero.
type SkewResult struct {
	Detected            bool    `json:"detected"`
	BinIndex            int     `json:"bin_index"`
	DetectedFrequencyHz float64 `json:"detected_frequency_hz"`
	PhaseSkewDegrees    float64 `json:"phase_skew_degrees"`
	PhaseSkewSeconds    float64 `json:"phase_skew_seconds"`
}

// SkewEstimator measures the inter-channel phase skew of a tone common
// to two spectra.
type SkewEstimator struct {
	config EstimatorConfig
}

// NewSkewEstimator validates the configuration and creates an estimator.
func NewSkewEstimator(config EstimatorConfig) (*SkewEstimator, error) {
	switch config.Policy {
	case PolicyThreshold:
		if config.Threshold <= 0 {
			return nil, fmt.Errorf("threshold must be positive, got %g", config.Threshold)
		}
	case PolicyMaxMagnitude:
		// No tuning parameters.
	default:
		return nil, fmt.Errorf("unknown selection policy %q", config.Policy)
	}

	return &SkewEstimator{config: config}, nil
}

// Policy returns the configured selection policy.
func (e *SkewEstimator) Policy() SelectionPolicy {
	return e.config.Policy
}

// Estimate selects a bin from the two spectra per the configured policy
// and returns the normalized phase skew of channel A relative to
// channel B at that bin.
//
// The skew in seconds is deg/360 of the detected tone's period. A
// selected bin at frequency zero, including the DC bin an all-zero
// input degenerates to, is reported as no detection rather than as a
// division by zero.
func (e *SkewEstimator) Estimate(a, b *MagnitudeSpectrum) (SkewResult, error) {
	if a == nil || b == nil {
		return SkewResult{}, fmt.Errorf("both spectra are required")
	}
	if !a.SameGeometry(b) {
		return SkewResult{}, fmt.Errorf("spectra geometry mismatch: %d bins at %g Hz vs %d bins at %g Hz",
			len(a.Bins), a.SampleRateHz, len(b.Bins), b.SampleRateHz)
	}

	var (
		idx   int
		found bool
	)
	switch e.config.Policy {
	case PolicyThreshold:
		idx, found = selectFirstAboveThreshold(a.Bins, b.Bins, e.config.Threshold)
	case PolicyMaxMagnitude:
		idx, found = selectJointMaxMagnitude(a.Bins, b.Bins)
	default:
		return SkewResult{}, fmt.Errorf("unknown selection policy %q", e.config.Policy)
	}
	if !found {
		return SkewResult{}, nil
	}

	freq := a.Bins[idx].FrequencyHz
	if freq == 0 {
		return SkewResult{}, nil
	}

	deg := NormalizePhaseAngle(a.Bins[idx].PhaseDeg - b.Bins[idx].PhaseDeg)

	return SkewResult{
		Detected:            true,
		BinIndex:            idx,
		DetectedFrequencyHz: freq,
		PhaseSkewDegrees:    deg,
		PhaseSkewSeconds:    deg / 360 / freq,
	}, nil
}

// selectFirstAboveThreshold scans ascending and returns the first bin
// whose magnitude reaches the threshold on both channels.
func selectFirstAboveThreshold(a, b []BinPoint, threshold float64) (int, bool) {
	for i := range a {
		if a[i].Magnitude >= threshold && b[i].Magnitude >= threshold {
			return i, true
		}
	}
	return 0, false
}

// selectJointMaxMagnitude scans for the strongest channel-A bin that
// channel B also carries. A later bin replaces the best only when its
// A magnitude strictly exceeds the recorded best and its B magnitude is
// not below it; on all-zero input the scan stays at the DC bin.
func selectJointMaxMagnitude(a, b []BinPoint) (int, bool) {
	bestIdx := 0
	bestMag := 0.0
	for i := range a {
		if a[i].Magnitude > bestMag && b[i].Magnitude >= bestMag {
			bestIdx = i
			bestMag = a[i].Magnitude
		}
	}
	return bestIdx, true
}
