package daq

import "time"

// ChannelLayout describes how the two channels' samples arrive in a Block.
type ChannelLayout int

const (
	// LayoutSplit delivers one separate block per channel.
	LayoutSplit ChannelLayout = iota

	// LayoutInterleaved delivers a single scan-ordered buffer holding
	// both channels: A0 B0 A1 B1 ...
	LayoutInterleaved
)

// Block is one callback's worth of samples from the acquisition layer.
//
// For LayoutSplit, A and B each hold one block of samples and
// Interleaved is nil. For LayoutInterleaved, Interleaved holds both
// channels in scan order and A and B are nil.
type Block struct {
	Index     uint64
	Timestamp time.Time
	Layout    ChannelLayout

	A []float64
	B []float64

	Interleaved []float64
}

// DeviceInfo describes an acquisition device to the rest of the system.
type DeviceInfo struct {
	Name         string
	Channels     []string
	SampleRateHz float64
	BlockSize    int
	Sync         SyncMode
}
