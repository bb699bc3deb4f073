package configs

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/viper"

	"github.com/RyanBlaney/phase-skew-monitor/internal/daq"
	"github.com/RyanBlaney/phase-skew-monitor/pkg/dsp/spectral"
)

// Config represents the application configuration
type Config struct {
	// Application settings
	Verbose      bool   `mapstructure:"verbose" json:"verbose" yaml:"verbose"`
	LogLevel     string `mapstructure:"log_level" json:"log_level" yaml:"log_level"`
	OutputFormat string `mapstructure:"output_format" json:"output_format" yaml:"output_format"`
	DataDir      string `mapstructure:"data_dir" json:"data_dir" yaml:"data_dir"`

	// Acquisition configuration
	Acquisition AcquisitionConfig `mapstructure:"acquisition" json:"acquisition" yaml:"acquisition"`

	// Skew estimator configuration
	Estimator EstimatorConfig `mapstructure:"estimator" json:"estimator" yaml:"estimator"`

	// CSV and status output configuration
	Output OutputConfig `mapstructure:"output" json:"output" yaml:"output"`

	// Session store configuration
	Storage StorageConfig `mapstructure:"storage" json:"storage" yaml:"storage"`

	// Spectrum image configuration
	Render RenderConfig `mapstructure:"render" json:"render" yaml:"render"`
}

// AcquisitionConfig contains device and signal source settings
type AcquisitionConfig struct {
	SampleRate float64       `mapstructure:"sample_rate" json:"sample_rate" yaml:"sample_rate"`
	BlockSize  int           `mapstructure:"block_size" json:"block_size" yaml:"block_size"`
	SyncMode   string        `mapstructure:"sync_mode" json:"sync_mode" yaml:"sync_mode"`
	Blocks     uint64        `mapstructure:"blocks" json:"blocks" yaml:"blocks"`
	Interval   time.Duration `mapstructure:"interval" json:"interval" yaml:"interval"`

	DSA ToneConfig `mapstructure:"dsa" json:"dsa" yaml:"dsa"`
	MIO ToneConfig `mapstructure:"mio" json:"mio" yaml:"mio"`
}

// ToneConfig contains the simulated tone for one channel
type ToneConfig struct {
	Frequency float64 `mapstructure:"frequency" json:"frequency" yaml:"frequency"`
	Amplitude float64 `mapstructure:"amplitude" json:"amplitude" yaml:"amplitude"`
	Phase     float64 `mapstructure:"phase" json:"phase" yaml:"phase"`
	Noise     float64 `mapstructure:"noise" json:"noise" yaml:"noise"`
}

// EstimatorConfig contains bin selection settings
type EstimatorConfig struct {
	Policy    string  `mapstructure:"policy" json:"policy" yaml:"policy"`
	Threshold float64 `mapstructure:"threshold" json:"threshold" yaml:"threshold"`
}

// OutputConfig contains CSV formatting settings
type OutputConfig struct {
	VoltagePath        string `mapstructure:"voltage_path" json:"voltage_path" yaml:"voltage_path"`
	SpectrumPath       string `mapstructure:"spectrum_path" json:"spectrum_path" yaml:"spectrum_path"`
	VoltagePrecision   int    `mapstructure:"voltage_precision" json:"voltage_precision" yaml:"voltage_precision"`
	FrequencyPrecision int    `mapstructure:"frequency_precision" json:"frequency_precision" yaml:"frequency_precision"`
	ValuePrecision     int    `mapstructure:"value_precision" json:"value_precision" yaml:"value_precision"`
	Status             bool   `mapstructure:"status" json:"status" yaml:"status"`
}

// StorageConfig contains session store settings
type StorageConfig struct {
	Enabled bool   `mapstructure:"enabled" json:"enabled" yaml:"enabled"`
	Path    string `mapstructure:"path" json:"path" yaml:"path"`
}

// ResolvePath returns the session store location, anchoring relative
// paths in the data directory.
func (s StorageConfig) ResolvePath(dataDir string) string {
	if s.Path == "" || filepath.IsAbs(s.Path) {
		return s.Path
	}
	return filepath.Join(dataDir, s.Path)
}

// RenderConfig contains spectrum image settings
type RenderConfig struct {
	Width        int     `mapstructure:"width" json:"width" yaml:"width"`
	Height       int     `mapstructure:"height" json:"height" yaml:"height"`
	Theme        string  `mapstructure:"theme" json:"theme" yaml:"theme"`
	DynamicRange float64 `mapstructure:"dynamic_range" json:"dynamic_range" yaml:"dynamic_range"`
}

// LoadConfig loads configuration from viper
func LoadConfig() (*Config, error) {
	config := &Config{}

	if err := viper.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("unable to decode configuration: %w", err)
	}

	return config, nil
}

// ValidateConfig validates the configuration
func ValidateConfig(config *Config) error {
	if config.Acquisition.SampleRate <= 0 {
		return fmt.Errorf("sample rate must be positive")
	}

	if config.Acquisition.BlockSize < 2 || config.Acquisition.BlockSize%2 != 0 {
		return fmt.Errorf("block size must be even and at least 2")
	}

	if _, err := daq.ParseSyncMode(config.Acquisition.SyncMode); err != nil {
		return err
	}

	if config.Acquisition.Interval < 0 {
		return fmt.Errorf("block interval cannot be negative")
	}

	for _, tone := range []struct {
		name string
		cfg  ToneConfig
	}{
		{"dsa", config.Acquisition.DSA},
		{"mio", config.Acquisition.MIO},
	} {
		if tone.cfg.Frequency < 0 {
			return fmt.Errorf("%s tone frequency cannot be negative", tone.name)
		}
		if tone.cfg.Noise < 0 {
			return fmt.Errorf("%s tone noise cannot be negative", tone.name)
		}
	}

	switch spectral.SelectionPolicy(config.Estimator.Policy) {
	case spectral.PolicyThreshold:
		if config.Estimator.Threshold <= 0 {
			return fmt.Errorf("threshold policy requires a positive magnitude threshold")
		}
	case spectral.PolicyMaxMagnitude:
	default:
		return fmt.Errorf("unknown estimator policy %q", config.Estimator.Policy)
	}

	if config.Output.VoltagePrecision < 0 ||
		config.Output.FrequencyPrecision < 0 ||
		config.Output.ValuePrecision < 0 {
		return fmt.Errorf("output precision cannot be negative")
	}

	if config.Render.Width < 0 || config.Render.Height < 0 {
		return fmt.Errorf("render dimensions cannot be negative")
	}

	switch config.Render.Theme {
	case "", "classic", "grayscale", "thermal":
	default:
		return fmt.Errorf("unknown render theme %q", config.Render.Theme)
	}

	switch config.OutputFormat {
	case "", "table", "json", "yaml", "csv":
	default:
		return fmt.Errorf("unknown output format %q", config.OutputFormat)
	}

	return nil
}
