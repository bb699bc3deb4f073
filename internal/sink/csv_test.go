package sink

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/RyanBlaney/phase-skew-monitor/internal/daq"
	"github.com/RyanBlaney/phase-skew-monitor/pkg/dsp/spectral"
)

func TestVoltageWriterHeaderAndRows(t *testing.T) {
	var buf bytes.Buffer

	vw, err := NewVoltageWriterTo(&buf, 6)
	if err != nil {
		t.Fatalf("NewVoltageWriterTo: unexpected error: %v", err)
	}

	// Rows continue the running acquisition clock, not block-local time.
	err = vw.AppendBlock([]float64{0.5, -0.5}, []float64{0.25, 0}, 1000, 10000)
	if err != nil {
		t.Fatalf("AppendBlock: unexpected error: %v", err)
	}
	if err := vw.Close(); err != nil {
		t.Fatalf("Close: unexpected error: %v", err)
	}

	want := strings.Join([]string{
		"Time (s),DSA Data (V),MIO Data (V)",
		"0.100000,0.500000,0.250000",
		"0.100100,-0.500000,0.000000",
		"",
	}, "\n")
	if got := buf.String(); got != want {
		t.Errorf("voltage log:\nwant %q\ngot  %q", want, got)
	}
}

func TestVoltageWriterErrors(t *testing.T) {
	if _, err := NewVoltageWriterTo(&bytes.Buffer{}, -1); err == nil {
		t.Error("negative precision: want error, got none")
	}

	vw, err := NewVoltageWriterTo(&bytes.Buffer{}, 3)
	if err != nil {
		t.Fatalf("NewVoltageWriterTo: unexpected error: %v", err)
	}
	if err := vw.AppendBlock([]float64{1, 2}, []float64{1}, 0, 10000); err == nil {
		t.Error("mismatched block lengths: want error, got none")
	}
	if err := vw.AppendBlock([]float64{1}, []float64{1}, 0, 0); err == nil {
		t.Error("zero sample rate: want error, got none")
	}
}

func testSpectrum(mags []float64) *spectral.MagnitudeSpectrum {
	blockSize := (len(mags) - 1) * 2
	bins := make([]spectral.BinPoint, len(mags))
	for i, mag := range mags {
		bins[i] = spectral.BinPoint{
			FrequencyHz: float64(i) * 10,
			Magnitude:   mag,
			AmplitudeV:  mag * 2 / float64(blockSize),
			PhaseDeg:    0,
		}
	}
	return &spectral.MagnitudeSpectrum{
		Bins:           bins,
		BlockSize:      blockSize,
		SampleRateHz:   float64(blockSize) * 10,
		FreqResolution: 10,
	}
}

func TestSpectrumWriterRewritesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "spectrum.csv")

	sw, err := NewSpectrumWriter(path, 2, 4)
	if err != nil {
		t.Fatalf("NewSpectrumWriter: unexpected error: %v", err)
	}

	if err := sw.WriteSpectra(testSpectrum([]float64{0, 8, 0}), testSpectrum([]float64{0, 4, 0})); err != nil {
		t.Fatalf("WriteSpectra: unexpected error: %v", err)
	}

	first, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading spectrum log: %v", err)
	}
	wantFirst := strings.Join([]string{
		"Frequency (Hz),DSA Magnitude,DSA Amplitude (V),MIO Magnitude,MIO Amplitude (V)",
		"0.00,0.0000,0.0000,0.0000,0.0000",
		"10.00,8.0000,4.0000,4.0000,2.0000",
		"20.00,0.0000,0.0000,0.0000,0.0000",
		"",
	}, "\n")
	if string(first) != wantFirst {
		t.Errorf("first write:\nwant %q\ngot  %q", wantFirst, string(first))
	}

	// The next block replaces the file rather than appending to it.
	if err := sw.WriteSpectra(testSpectrum([]float64{0, 0, 2}), testSpectrum([]float64{0, 0, 2})); err != nil {
		t.Fatalf("WriteSpectra: unexpected error: %v", err)
	}

	second, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading spectrum log: %v", err)
	}
	if strings.Contains(string(second), "8.0000") {
		t.Error("second write still contains first block's rows")
	}
	if got := strings.Count(string(second), "\n"); got != 4 {
		t.Errorf("second write line count: want 4, got %d", got)
	}
}

func TestSpectrumWriterGeometryMismatch(t *testing.T) {
	sw, err := NewSpectrumWriter(filepath.Join(t.TempDir(), "spectrum.csv"), 2, 4)
	if err != nil {
		t.Fatalf("NewSpectrumWriter: unexpected error: %v", err)
	}

	if err := sw.WriteSpectra(testSpectrum([]float64{0, 1, 2}), testSpectrum([]float64{0, 1, 2, 3})); err == nil {
		t.Error("mismatched spectra: want error, got none")
	}
	if err := sw.WriteSpectra(testSpectrum([]float64{0, 1, 2}), nil); err == nil {
		t.Error("nil spectrum: want error, got none")
	}
}

func TestStatusWriter(t *testing.T) {
	var buf bytes.Buffer
	sw := NewStatusWriter(&buf)

	sw.Banner(daq.DeviceInfo{
		Name:         "sim-4461-6259",
		Channels:     []string{"DSA", "MIO"},
		SampleRateHz: 10000,
		BlockSize:    1000,
		Sync:         daq.SyncReferenceClock,
	}, spectral.PolicyThreshold)

	banner := buf.String()
	for _, want := range []string{"Reference-Clock", "PXI_Clk10", "Threshold", "10.00 kHz", "DSA samples"} {
		if !strings.Contains(banner, want) {
			t.Errorf("banner missing %q:\n%s", want, banner)
		}
	}

	buf.Reset()
	sw.Status(2000, 2000, spectral.SkewResult{
		Detected:            true,
		DetectedFrequencyHz: 500,
		PhaseSkewDegrees:    30.004,
		PhaseSkewSeconds:    1.667e-4,
	})
	line := buf.String()
	for _, want := range []string{"2,000", "500.00 Hz", "30.00", "1.67e-04"} {
		if !strings.Contains(line, want) {
			t.Errorf("status line missing %q: %s", want, line)
		}
	}

	buf.Reset()
	sw.Status(3000, 3000, spectral.SkewResult{})
	if !strings.Contains(buf.String(), "-") {
		t.Errorf("undetected status line missing dash: %s", buf.String())
	}
	if strings.Contains(buf.String(), "NaN") {
		t.Errorf("undetected status line renders NaN: %s", buf.String())
	}
}
