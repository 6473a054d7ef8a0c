package lfdemod

/*------------------------------------------------------------------
 *
 * Purpose:	Tunable thresholds and device settings.
 *
 * Description:	The numbers here came from a lot of trial and error
 *		against real captures.  They are defaults, and any of
 *		them can be overridden from a YAML file:
 *
 *			demod:
 *			  max_errors: 100
 *			  noise_amplitude: 20
 *			device:
 *			  port: /dev/ttyACM0
 *			  timeout: 2500ms
 *			log:
 *			  level: debug
 *
 *---------------------------------------------------------------*/

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

type DemodConfig struct {
	MaxErrors      int `yaml:"max_errors"`
	NoiseAmplitude int `yaml:"noise_amplitude"`
	MinSamples     int `yaml:"min_samples"`
	SettleSamples  int `yaml:"settle_samples"`
	ClockMaxErrors int `yaml:"clock_max_errors"`
}

type DeviceConfig struct {
	Port          string        `yaml:"port"`
	Baud          int           `yaml:"baud"`
	Timeout       time.Duration `yaml:"timeout"`
	BitsPerSample int           `yaml:"bits_per_sample"`
}

type LogConfig struct {
	Level           string `yaml:"level"`
	TimestampFormat string `yaml:"timestamp_format"`
	Color           int    `yaml:"color"`
}

type Config struct {
	Demod  DemodConfig  `yaml:"demod"`
	Device DeviceConfig `yaml:"device"`
	Log    LogConfig    `yaml:"log"`
}

const (
	DefaultMaxErrors      = 100
	DefaultNoiseAmplitude = 20
	DefaultMinSamples     = 100
	DefaultSettleSamples  = 10
	DefaultClockMaxErrors = 20
)

func DefaultConfig() Config {
	return Config{
		Demod: DemodConfig{
			MaxErrors:      DefaultMaxErrors,
			NoiseAmplitude: DefaultNoiseAmplitude,
			MinSamples:     DefaultMinSamples,
			SettleSamples:  DefaultSettleSamples,
			ClockMaxErrors: DefaultClockMaxErrors,
		},
		Device: DeviceConfig{
			Port:          "auto",
			Baud:          115200,
			Timeout:       2500 * time.Millisecond,
			BitsPerSample: 8,
		},
		Log: LogConfig{
			Level: "info",
			Color: 1,
		},
	}
}

// ParseConfig overlays YAML onto the defaults.  Keys not present keep their default value.
func ParseConfig(r io.Reader) (Config, error) {
	var cfg = DefaultConfig()

	var data, readErr = io.ReadAll(r)
	if readErr != nil {
		return cfg, fmt.Errorf("reading config: %w", readErr)
	}

	var unmarshalErr = yaml.Unmarshal(data, &cfg)
	if unmarshalErr != nil {
		return cfg, fmt.Errorf("parsing config: %w", unmarshalErr)
	}

	var validateErr = cfg.Validate()
	if validateErr != nil {
		return cfg, validateErr
	}

	return cfg, nil
}

func LoadConfig(path string) (Config, error) {
	var fp, openErr = os.Open(path) //nolint:gosec
	if openErr != nil {
		return DefaultConfig(), fmt.Errorf("opening config: %w", openErr)
	}
	defer fp.Close()

	return ParseConfig(fp)
}

func (c Config) Validate() error {
	if c.Demod.MaxErrors < 0 {
		return demodErr("config", ErrInvalidArgument, "demod.max_errors %d is negative", c.Demod.MaxErrors)
	}

	if c.Demod.MinSamples < 1 || c.Demod.SettleSamples < 0 || c.Demod.NoiseAmplitude < 0 {
		return demodErr("config", ErrInvalidArgument, "demod thresholds must not be negative")
	}

	switch c.Device.BitsPerSample {
	case 1, 2, 4, 8:
	default:
		return demodErr("config", ErrInvalidArgument, "device.bits_per_sample %d not one of 1, 2, 4, 8", c.Device.BitsPerSample)
	}

	if c.Device.Timeout <= 0 {
		return demodErr("config", ErrInvalidArgument, "device.timeout must be positive")
	}

	return nil
}

/*-------------------------------------------------------------------
 *
 * Name:	FindConfig
 *
 * Purpose:	Locate a configuration file.
 *
 * Returns:	Path of the first file found, or "" for none, in which
 *		case the defaults apply.
 *
 *---------------------------------------------------------------*/

func FindConfig() string {
	var search_locations = []string{"lfdemod.yaml"}

	var home, homeErr = os.UserHomeDir()
	if homeErr == nil {
		search_locations = append(search_locations, filepath.Join(home, ".lfdemod.yaml"))
	}

	search_locations = append(search_locations, "/etc/lfdemod.yaml")

	for _, location := range search_locations {
		var _, statErr = os.Stat(location)
		if statErr == nil {
			return location
		}
	}

	return ""
}

/* end config.go */
