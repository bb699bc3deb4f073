package daq

import "fmt"

// SyncMode selects how the two channels are clock-aligned and therefore
// how their samples arrive.
type SyncMode string

const (
	// SyncReferenceClock phase-locks both devices to the chassis 10 MHz
	// backplane reference. Each channel arrives as its own block.
	SyncReferenceClock SyncMode = "reference-clock"

	// SyncSampleClock drives the slave device from the master's
	// exported sample clock. Each channel arrives as its own block.
	SyncSampleClock SyncMode = "sample-clock"

	// SyncChannelExpansion acquires both channels on a single task, so
	// samples arrive as one interleaved scan-ordered buffer.
	SyncChannelExpansion SyncMode = "channel-expansion"
)

// ParseSyncMode validates a configuration string as a SyncMode.
func ParseSyncMode(s string) (SyncMode, error) {
	switch SyncMode(s) {
	case SyncReferenceClock, SyncSampleClock, SyncChannelExpansion:
		return SyncMode(s), nil
	}
	return "", fmt.Errorf("unknown sync mode %q (want %s, %s or %s)",
		s, SyncReferenceClock, SyncSampleClock, SyncChannelExpansion)
}

// Layout returns the channel layout blocks arrive in under this mode.
func (m SyncMode) Layout() ChannelLayout {
	if m == SyncChannelExpansion {
		return LayoutInterleaved
	}
	return LayoutSplit
}

// ClockRoute names the timing signal the mode aligns the channels with.
func (m SyncMode) ClockRoute() string {
	switch m {
	case SyncReferenceClock:
		return "PXI_Clk10"
	case SyncSampleClock:
		return "master sample clock"
	case SyncChannelExpansion:
		return "PXI_Clk100"
	}
	return "unknown"
}
