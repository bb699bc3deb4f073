package daq

import (
	"context"
	"errors"
)

var (
	// ErrDeviceRunning is returned when Begin is called on a device that
	// is already producing blocks.
	ErrDeviceRunning = errors.New("device is already running")
)

// Device produces fixed-size dual-channel sample blocks until its
// context is cancelled, its configured block count is reached, or Stop
// is called.
type Device interface {
	// Begin starts acquisition and sends blocks to the given channel.
	// The returned channel closes when acquisition ends; it carries an
	// error when acquisition ended because of one.
	Begin(ctx context.Context, blocks chan<- Block) (<-chan error, error)

	// Stop ends acquisition and waits for the producer to finish. It is
	// safe to call on a stopped device.
	Stop()

	// Info describes the device.
	Info() DeviceInfo
}
