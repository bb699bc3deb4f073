package daq

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"sync"
	"sync/atomic"
	"time"

	"github.com/RyanBlaney/sonido-sonar/logging"
)

// ToneConfig describes the synthetic tone one simulated channel carries.
type ToneConfig struct {
	FrequencyHz float64 `json:"frequency_hz" yaml:"frequency_hz"`
	AmplitudeV  float64 `json:"amplitude_v" yaml:"amplitude_v"`
	PhaseDeg    float64 `json:"phase_deg" yaml:"phase_deg"`

	// NoiseV is the peak of the uniform noise added to the tone. Zero
	// disables noise and makes the channel fully deterministic.
	NoiseV float64 `json:"noise_v" yaml:"noise_v"`
}

// SimulatorConfig configures a simulated device pair.
type SimulatorConfig struct {
	SampleRateHz float64
	BlockSize    int
	Sync         SyncMode

	ToneA ToneConfig
	ToneB ToneConfig

	// Blocks bounds the run; zero means run until stopped.
	Blocks uint64

	// Interval paces block production; zero produces blocks as fast as
	// the consumer drains them.
	Interval time.Duration
}

// Simulator stands in for a synchronized DSA/MIO device pair and
// produces phase-coherent sine blocks on both channels.
type Simulator struct {
	config SimulatorConfig
	logger logging.Logger
	seed   int64

	isRunning atomic.Bool
	cancel    context.CancelFunc
	wg        sync.WaitGroup
}

// SimulatorOption adjusts a Simulator at construction.
type SimulatorOption func(*Simulator)

// WithLogger sets the logger for the simulator.
func WithLogger(logger logging.Logger) SimulatorOption {
	return func(s *Simulator) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithSeed seeds the noise generator for reproducible runs.
func WithSeed(seed int64) SimulatorOption {
	return func(s *Simulator) {
		s.seed = seed
	}
}

// NewSimulator validates the configuration and creates a simulator.
func NewSimulator(config SimulatorConfig, options ...SimulatorOption) (*Simulator, error) {
	if config.SampleRateHz <= 0 {
		return nil, fmt.Errorf("sample rate must be positive, got %g", config.SampleRateHz)
	}
	if config.BlockSize < 2 {
		return nil, fmt.Errorf("block size must be at least 2, got %d", config.BlockSize)
	}
	if _, err := ParseSyncMode(string(config.Sync)); err != nil {
		return nil, err
	}

	s := &Simulator{
		config: config,
		logger: logging.NewDefaultLogger(),
		seed:   time.Now().UnixNano(),
	}
	for _, option := range options {
		option(s)
	}

	s.logger = s.logger.WithFields(logging.Fields{
		"device": s.Info().Name,
		"sync":   string(config.Sync),
	})

	return s, nil
}

// Info describes the simulated device pair.
func (s *Simulator) Info() DeviceInfo {
	return DeviceInfo{
		Name:         "sim-4461-6259",
		Channels:     []string{"DSA", "MIO"},
		SampleRateHz: s.config.SampleRateHz,
		BlockSize:    s.config.BlockSize,
		Sync:         s.config.Sync,
	}
}

// Begin starts producing blocks. The slave side is armed before the
// master is started so the first master clock edge is never missed; the
// order is reversed on shutdown.
func (s *Simulator) Begin(ctx context.Context, blocks chan<- Block) (<-chan error, error) {
	if !s.isRunning.CompareAndSwap(false, true) {
		return nil, ErrDeviceRunning
	}

	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	stopped := make(chan error, 1)

	if s.config.Sync.Layout() == LayoutSplit {
		s.logger.Debug("arming slave task", logging.Fields{"clock": s.config.Sync.ClockRoute()})
		s.logger.Debug("starting master task")
	} else {
		s.logger.Debug("starting combined task", logging.Fields{"clock": s.config.Sync.ClockRoute()})
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer close(stopped)
		defer cancel()

		s.produce(ctx, blocks)

		if s.config.Sync.Layout() == LayoutSplit {
			s.logger.Debug("stopping master task")
			s.logger.Debug("stopping slave task")
		} else {
			s.logger.Debug("stopping combined task")
		}

		s.isRunning.Store(false)
	}()

	return stopped, nil
}

// Stop ends acquisition and waits for the producer to drain.
func (s *Simulator) Stop() {
	if !s.isRunning.Load() {
		return
	}
	s.cancel()
	s.wg.Wait()
}

// IsRunning reports whether the simulator is producing blocks.
func (s *Simulator) IsRunning() bool {
	return s.isRunning.Load()
}

func (s *Simulator) produce(ctx context.Context, blocks chan<- Block) {
	var (
		rng        = rand.New(rand.NewSource(s.seed))
		n          = s.config.BlockSize
		interleave = s.config.Sync.Layout() == LayoutInterleaved
		sampleBase uint64
	)

	for index := uint64(0); s.config.Blocks == 0 || index < s.config.Blocks; index++ {
		a := s.synthesize(s.config.ToneA, sampleBase, n, rng)
		b := s.synthesize(s.config.ToneB, sampleBase, n, rng)

		block := Block{
			Index:     index,
			Timestamp: time.Now(),
			Layout:    s.config.Sync.Layout(),
		}
		if interleave {
			buf := make([]float64, 2*n)
			for i := 0; i < n; i++ {
				buf[2*i] = a[i]
				buf[2*i+1] = b[i]
			}
			block.Interleaved = buf
		} else {
			block.A = a
			block.B = b
		}

		select {
		case blocks <- block:
		case <-ctx.Done():
			return
		}

		sampleBase += uint64(n)

		if s.config.Interval > 0 {
			select {
			case <-time.After(s.config.Interval):
			case <-ctx.Done():
				return
			}
		}
	}
}

// synthesize generates n samples of the tone starting at the given
// absolute sample offset, so phase is continuous across blocks.
func (s *Simulator) synthesize(tone ToneConfig, base uint64, n int, rng *rand.Rand) []float64 {
	var (
		step  = 2 * math.Pi * tone.FrequencyHz / s.config.SampleRateHz
		phase = tone.PhaseDeg * math.Pi / 180
		out   = make([]float64, n)
	)
	for i := range out {
		t := float64(base + uint64(i))
		out[i] = tone.AmplitudeV * math.Sin(step*t+phase)
		if tone.NoiseV > 0 {
			out[i] += (rng.Float64()*2 - 1) * tone.NoiseV
		}
	}
	return out
}
