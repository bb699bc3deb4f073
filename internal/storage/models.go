package storage

import "time"

// Session is one acquisition run.
type Session struct {
	ID           int64     `json:"id"`
	StartTime    time.Time `json:"start_time"`
	Device       string    `json:"device"`
	SyncMode     string    `json:"sync_mode"`
	Policy       string    `json:"policy"`
	SampleRateHz float64   `json:"sample_rate_hz"`
	BlockSize    int       `json:"block_size"`
	Config       *string   `json:"config,omitempty"`
}

// SkewRecord is the stored outcome of one processed block. Frequency
// and skew fields are only meaningful when Detected is true; they are
// stored as NULL otherwise.
type SkewRecord struct {
	BlockIndex       uint64  `json:"block_index"`
	DSASamples       uint64  `json:"dsa_samples"`
	MIOSamples       uint64  `json:"mio_samples"`
	Detected         bool    `json:"detected"`
	FrequencyHz      float64 `json:"frequency_hz"`
	PhaseSkewDegrees float64 `json:"phase_skew_degrees"`
	PhaseSkewSeconds float64 `json:"phase_skew_seconds"`
}
