package configs

import (
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// SetDefaults sets default configuration values for all components
func SetDefaults(v *viper.Viper) {
	// Application defaults
	v.SetDefault("verbose", false)
	v.SetDefault("log_level", "info")
	v.SetDefault("output_format", "table")

	home, _ := os.UserHomeDir()
	v.SetDefault("data_dir", filepath.Join(home, ".local", "share", "phase-skew-monitor"))

	// Acquisition defaults follow the bench setup: both channels fed
	// from one 500 Hz generator at 1 V, channel B lagging 30 degrees.
	v.SetDefault("acquisition.sample_rate", 10000.0)
	v.SetDefault("acquisition.block_size", 1000)
	v.SetDefault("acquisition.sync_mode", "reference-clock")
	v.SetDefault("acquisition.blocks", 10)
	v.SetDefault("acquisition.interval", "0s")
	v.SetDefault("acquisition.dsa.frequency", 500.0)
	v.SetDefault("acquisition.dsa.amplitude", 1.0)
	v.SetDefault("acquisition.dsa.phase", 0.0)
	v.SetDefault("acquisition.dsa.noise", 0.0)
	v.SetDefault("acquisition.mio.frequency", 500.0)
	v.SetDefault("acquisition.mio.amplitude", 1.0)
	v.SetDefault("acquisition.mio.phase", -30.0)
	v.SetDefault("acquisition.mio.noise", 0.0)

	// Estimator defaults
	v.SetDefault("estimator.policy", "threshold")
	v.SetDefault("estimator.threshold", 5.0)

	// Output defaults
	v.SetDefault("output.voltage_path", "voltage.csv")
	v.SetDefault("output.spectrum_path", "spectrum.csv")
	v.SetDefault("output.voltage_precision", 6)
	v.SetDefault("output.frequency_precision", 2)
	v.SetDefault("output.value_precision", 4)
	v.SetDefault("output.status", true)

	// Storage defaults
	v.SetDefault("storage.enabled", true)
	v.SetDefault("storage.path", "sessions.db")

	// Render defaults
	v.SetDefault("render.width", 1024)
	v.SetDefault("render.height", 512)
	v.SetDefault("render.theme", "classic")
	v.SetDefault("render.dynamic_range", 100.0)
}

// GetDefaultConfig returns a Config populated with the default values
func GetDefaultConfig() *Config {
	v := viper.New()
	SetDefaults(v)

	config := &Config{}
	if err := v.Unmarshal(config); err != nil {
		return &Config{}
	}

	return config
}
