package spectral

import (
	"math"
	"testing"
)

func TestNewMagnitudeSpectrumGeometry(t *testing.T) {
	const (
		n    = 1000
		rate = 10000.0
	)

	bins, err := NewTransform().Compute(make([]float64, n))
	if err != nil {
		t.Fatalf("Compute: unexpected error: %v", err)
	}

	spec, err := NewMagnitudeSpectrum(bins, n, rate)
	if err != nil {
		t.Fatalf("NewMagnitudeSpectrum: unexpected error: %v", err)
	}

	if len(spec.Bins) != 501 {
		t.Errorf("bin count: want 501, got %d", len(spec.Bins))
	}
	if spec.FreqResolution != 10 {
		t.Errorf("frequency resolution: want 10, got %g", spec.FreqResolution)
	}
	if got := spec.Bins[50].FrequencyHz; got != 500 {
		t.Errorf("bin 50 frequency: want 500, got %g", got)
	}
	if got := spec.Bins[500].FrequencyHz; got != 5000 {
		t.Errorf("last bin frequency: want 5000, got %g", got)
	}
}

func TestMagnitudeSpectrumSineScaling(t *testing.T) {
	const (
		n    = 1000
		rate = 10000.0
		freq = 500.0
		amp  = 0.5
	)

	block := sineBlock(n, freq, rate, amp, 0)
	bins, err := NewTransform().Compute(block)
	if err != nil {
		t.Fatalf("Compute: unexpected error: %v", err)
	}

	spec, err := NewMagnitudeSpectrum(bins, n, rate)
	if err != nil {
		t.Fatalf("NewMagnitudeSpectrum: unexpected error: %v", err)
	}

	tone := spec.Bins[50]
	if math.Abs(tone.Magnitude-amp*n/2) > 1e-6 {
		t.Errorf("tone magnitude: want %g, got %g", amp*float64(n)/2, tone.Magnitude)
	}
	// Single-sided scaling recovers the time-domain amplitude in volts.
	if math.Abs(tone.AmplitudeV-amp) > 1e-6 {
		t.Errorf("tone amplitude: want %g, got %g", amp, tone.AmplitudeV)
	}
	if math.Abs(tone.PhaseDeg-(-90)) > 1e-6 {
		t.Errorf("tone phase: want -90, got %g", tone.PhaseDeg)
	}
}

func TestNewMagnitudeSpectrumValidation(t *testing.T) {
	bins := make([]complex128, 9)

	tests := []struct {
		name      string
		bins      []complex128
		blockSize int
		rate      float64
	}{
		{"short block", bins, 1, 1000},
		{"zero rate", bins, 16, 0},
		{"negative rate", bins, 16, -1},
		{"bin count mismatch", bins, 32, 1000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewMagnitudeSpectrum(tt.bins, tt.blockSize, tt.rate); err == nil {
				t.Errorf("NewMagnitudeSpectrum(%d bins, block %d, rate %g): want error, got none",
					len(tt.bins), tt.blockSize, tt.rate)
			}
		})
	}
}

func TestSameGeometry(t *testing.T) {
	mk := func(n int, rate float64) *MagnitudeSpectrum {
		bins, err := NewTransform().Compute(make([]float64, n))
		if err != nil {
			t.Fatalf("Compute: unexpected error: %v", err)
		}
		spec, err := NewMagnitudeSpectrum(bins, n, rate)
		if err != nil {
			t.Fatalf("NewMagnitudeSpectrum: unexpected error: %v", err)
		}
		return spec
	}

	base := mk(64, 1000)
	if !base.SameGeometry(mk(64, 1000)) {
		t.Error("identical geometry reported as mismatch")
	}
	if base.SameGeometry(mk(128, 1000)) {
		t.Error("different block size reported as match")
	}
	if base.SameGeometry(mk(64, 2000)) {
		t.Error("different sample rate reported as match")
	}
	if base.SameGeometry(nil) {
		t.Error("nil spectrum reported as match")
	}
}
