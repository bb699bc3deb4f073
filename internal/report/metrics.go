package report

import (
	"fmt"
	"math"
	"sort"

	"github.com/RyanBlaney/sonido-sonar/logging"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/RyanBlaney/phase-skew-monitor/internal/storage"
)

// SkewStats represents statistical measures of one reported quantity.
type SkewStats struct {
	Mean   float64 `json:"mean"`
	Median float64 `json:"median"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	StdDev float64 `json:"std_dev"`
	Count  int     `json:"count"`
}

// SessionReport is the statistical summary of one stored session.
type SessionReport struct {
	Session *storage.Session `json:"session"`

	BlockCount     int     `json:"block_count"`
	DetectionCount int     `json:"detection_count"`
	DetectionRate  float64 `json:"detection_rate"`

	FrequencyHz *SkewStats `json:"frequency_hz"`
	SkewDegrees *SkewStats `json:"skew_degrees"`
	SkewSeconds *SkewStats `json:"skew_seconds"`

	Insights []string `json:"insights,omitempty"`
}

// Calculator computes session statistics from stored skew rows.
type Calculator struct {
	logger logging.Logger
}

// NewCalculator creates a new report calculator.
func NewCalculator(logger logging.Logger) *Calculator {
	if logger == nil {
		logger = logging.NewDefaultLogger()
	}

	return &Calculator{
		logger: logger,
	}
}

// Summarize builds the statistical report for one session. Frequency and
// skew statistics cover only blocks with a detection; blocks without one
// count toward the detection rate alone.
func (c *Calculator) Summarize(session *storage.Session, records []storage.SkewRecord) *SessionReport {
	var frequencies []float64
	var degrees []float64
	var seconds []float64

	for _, rec := range records {
		if !rec.Detected {
			continue
		}
		frequencies = append(frequencies, rec.FrequencyHz)
		degrees = append(degrees, rec.PhaseSkewDegrees)
		seconds = append(seconds, rec.PhaseSkewSeconds)
	}

	report := &SessionReport{
		Session:        session,
		BlockCount:     len(records),
		DetectionCount: len(frequencies),
		FrequencyHz:    c.calculateStats(frequencies),
		SkewDegrees:    c.calculateStats(degrees),
		SkewSeconds:    c.calculateStats(seconds),
	}
	if report.BlockCount > 0 {
		report.DetectionRate = float64(report.DetectionCount) / float64(report.BlockCount)
	}
	report.Insights = c.GenerateInsights(report)

	c.logger.Debug("Summarized session", logging.Fields{
		"session":        session.ID,
		"blocks":         report.BlockCount,
		"detections":     report.DetectionCount,
		"detection_rate": report.DetectionRate,
	})

	return report
}

// calculateStats calculates statistical measures for a dataset.
func (c *Calculator) calculateStats(data []float64) *SkewStats {
	if len(data) == 0 {
		return &SkewStats{Count: 0}
	}

	sorted := make([]float64, len(data))
	copy(sorted, data)
	sort.Float64s(sorted)

	stats := &SkewStats{
		Count:  len(data),
		Mean:   stat.Mean(data, nil),
		Median: stat.Quantile(0.5, stat.Empirical, sorted, nil),
		Min:    floats.Min(sorted),
		Max:    floats.Max(sorted),
		StdDev: stat.StdDev(data, nil),
	}

	return c.sanitizeStats(stats)
}

// sanitizeStats replaces non-finite values so reports serialize cleanly.
// A single-sample dataset has no defined standard deviation, for one.
func (c *Calculator) sanitizeStats(stats *SkewStats) *SkewStats {
	for _, v := range []*float64{&stats.Mean, &stats.Median, &stats.Min, &stats.Max, &stats.StdDev} {
		if math.IsInf(*v, 0) || math.IsNaN(*v) {
			*v = 0
		}
	}
	return stats
}

// GenerateInsights derives human-readable observations from a report.
func (c *Calculator) GenerateInsights(report *SessionReport) []string {
	var insights []string

	if report.BlockCount == 0 {
		return []string{"No blocks were recorded for this session."}
	}

	switch {
	case report.DetectionCount == 0:
		insights = append(insights,
			"No block detected a common tone; check signal amplitude against the magnitude threshold.")
	case report.DetectionRate < 0.5:
		insights = append(insights, fmt.Sprintf(
			"Only %.0f%% of blocks detected a tone; the signal may be intermittent or near the threshold.",
			report.DetectionRate*100))
	}

	if report.DetectionCount == 0 {
		return insights
	}

	deg := report.SkewDegrees
	if math.Abs(deg.Mean) < 1.0 && deg.StdDev < 1.0 {
		insights = append(insights,
			"Channels are phase-aligned within a degree; the sync configuration is holding.")
	}
	if deg.StdDev > 5.0 {
		insights = append(insights, fmt.Sprintf(
			"Phase skew is unstable across blocks (%.1f degree spread); check the shared clock routing.",
			deg.StdDev))
	}
	if math.Abs(deg.Mean) > 90.0 {
		insights = append(insights, fmt.Sprintf(
			"Mean skew of %.1f degrees is large; a channel may be inverted or mislabeled.", deg.Mean))
	}

	// Resolution of one bin: detections wandering further than that
	// suggest the tone itself is moving.
	if report.Session != nil && report.Session.BlockSize > 0 {
		resolution := report.Session.SampleRateHz / float64(report.Session.BlockSize)
		if report.FrequencyHz.StdDev > resolution {
			insights = append(insights, fmt.Sprintf(
				"Detected frequency wanders beyond one bin width (%.2f Hz); the tone may be drifting.",
				report.FrequencyHz.StdDev))
		}
	}

	return insights
}
