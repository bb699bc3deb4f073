package report

import (
	"math"
	"strings"
	"testing"

	"github.com/RyanBlaney/sonido-sonar/logging"

	"github.com/RyanBlaney/phase-skew-monitor/internal/storage"
)

func testSession() *storage.Session {
	return &storage.Session{
		ID:           1,
		Device:       "sim-4461-6259",
		SyncMode:     "reference-clock",
		Policy:       "threshold",
		SampleRateHz: 10000,
		BlockSize:    1000,
	}
}

func detectedRecord(index uint64, freq, deg float64) storage.SkewRecord {
	return storage.SkewRecord{
		BlockIndex:       index,
		DSASamples:       (index + 1) * 1000,
		MIOSamples:       (index + 1) * 1000,
		Detected:         true,
		FrequencyHz:      freq,
		PhaseSkewDegrees: deg,
		PhaseSkewSeconds: deg / 360 / freq,
	}
}

func TestSummarizeStats(t *testing.T) {
	calc := NewCalculator(&logging.NoOpLogger{})

	records := []storage.SkewRecord{
		detectedRecord(0, 500, 29),
		detectedRecord(1, 500, 30),
		detectedRecord(2, 500, 31),
		{BlockIndex: 3, DSASamples: 4000, MIOSamples: 4000},
	}

	report := calc.Summarize(testSession(), records)

	if report.BlockCount != 4 {
		t.Errorf("block count: want 4, got %d", report.BlockCount)
	}
	if report.DetectionCount != 3 {
		t.Errorf("detection count: want 3, got %d", report.DetectionCount)
	}
	if report.DetectionRate != 0.75 {
		t.Errorf("detection rate: want 0.75, got %g", report.DetectionRate)
	}

	deg := report.SkewDegrees
	if deg.Count != 3 {
		t.Fatalf("degree count: want 3, got %d", deg.Count)
	}
	if math.Abs(deg.Mean-30) > 1e-9 {
		t.Errorf("degree mean: want 30, got %g", deg.Mean)
	}
	if deg.Median != 30 {
		t.Errorf("degree median: want 30, got %g", deg.Median)
	}
	if deg.Min != 29 || deg.Max != 31 {
		t.Errorf("degree range: want [29, 31], got [%g, %g]", deg.Min, deg.Max)
	}
	if math.Abs(deg.StdDev-1) > 1e-9 {
		t.Errorf("degree stddev: want 1, got %g", deg.StdDev)
	}

	freq := report.FrequencyHz
	if math.Abs(freq.Mean-500) > 1e-9 || freq.StdDev != 0 {
		t.Errorf("frequency stats: want mean 500 stddev 0, got mean %g stddev %g", freq.Mean, freq.StdDev)
	}
}

func TestSummarizeSingleDetection(t *testing.T) {
	calc := NewCalculator(&logging.NoOpLogger{})

	report := calc.Summarize(testSession(), []storage.SkewRecord{detectedRecord(0, 500, 30)})

	deg := report.SkewDegrees
	if deg.Count != 1 {
		t.Fatalf("degree count: want 1, got %d", deg.Count)
	}
	// One sample has no defined spread; it must sanitize to zero, not NaN.
	if deg.StdDev != 0 {
		t.Errorf("degree stddev: want 0 for single sample, got %g", deg.StdDev)
	}
	if deg.Mean != 30 || deg.Median != 30 || deg.Min != 30 || deg.Max != 30 {
		t.Errorf("degree stats should all equal the single sample, got %+v", deg)
	}
}

func TestSummarizeEmpty(t *testing.T) {
	calc := NewCalculator(&logging.NoOpLogger{})

	report := calc.Summarize(testSession(), nil)

	if report.BlockCount != 0 || report.DetectionRate != 0 {
		t.Errorf("empty session: want zero counts, got %+v", report)
	}
	if len(report.Insights) != 1 || !strings.Contains(report.Insights[0], "No blocks") {
		t.Errorf("empty session insight: got %v", report.Insights)
	}
}

func TestGenerateInsights(t *testing.T) {
	calc := NewCalculator(&logging.NoOpLogger{})

	tests := []struct {
		name    string
		records []storage.SkewRecord
		want    string
	}{
		{
			"no detections",
			[]storage.SkewRecord{{BlockIndex: 0}, {BlockIndex: 1}},
			"No block detected",
		},
		{
			"intermittent detections",
			[]storage.SkewRecord{detectedRecord(0, 500, 30), {BlockIndex: 1}, {BlockIndex: 2}},
			"intermittent",
		},
		{
			"aligned channels",
			[]storage.SkewRecord{detectedRecord(0, 500, 0.4), detectedRecord(1, 500, 0.5), detectedRecord(2, 500, 0.6)},
			"phase-aligned",
		},
		{
			"unstable skew",
			[]storage.SkewRecord{detectedRecord(0, 500, 10), detectedRecord(1, 500, 20), detectedRecord(2, 500, 30)},
			"unstable",
		},
		{
			"inverted channel",
			[]storage.SkewRecord{detectedRecord(0, 500, 170), detectedRecord(1, 500, 175), detectedRecord(2, 500, 180)},
			"inverted",
		},
		{
			"drifting tone",
			[]storage.SkewRecord{detectedRecord(0, 480, 30), detectedRecord(1, 500, 30), detectedRecord(2, 520, 30)},
			"drifting",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			report := calc.Summarize(testSession(), tt.records)

			found := false
			for _, insight := range report.Insights {
				if strings.Contains(insight, tt.want) {
					found = true
					break
				}
			}
			if !found {
				t.Errorf("want an insight containing %q, got %v", tt.want, report.Insights)
			}
		})
	}
}
