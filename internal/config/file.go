package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

// Transport backends.
const (
	TransportTinyGo = "tinygo"
	TransportGoBLE  = "goble"
	TransportSim    = "sim"
)

// File is the on-disk configuration.
type File struct {
	Transport  string   `yaml:"transport"`
	SimProfile string   `yaml:"sim_profile"`
	Scan       Scan     `yaml:"scan"`
	Explore    Explore  `yaml:"explore"`
	Timeouts   Timeouts `yaml:"timeouts"`
	LogLevel   string   `yaml:"log_level"`
	LogFile    string   `yaml:"log_file"`
	// Store is the snapshot directory; empty means next to the config file.
	Store string `yaml:"store"`
}

// Scan configures peripheral discovery.
type Scan struct {
	Duration        time.Duration `yaml:"duration"`
	AllowDuplicates bool          `yaml:"allow_duplicates"`
}

// Explore configures GATT traversal.
type Explore struct {
	EagerRead          bool `yaml:"eager_read"`
	PresentationFormat bool `yaml:"presentation_format"`
	DefaultFormats     bool `yaml:"default_formats"`
}

// Timeouts bound transport requests.
type Timeouts struct {
	Connect time.Duration `yaml:"connect"`
	Request time.Duration `yaml:"request"`
}

// Default returns a config with sensible defaults.
func Default() *File {
	return &File{
		Transport: TransportTinyGo,
		Scan: Scan{
			Duration:        5 * time.Second,
			AllowDuplicates: true,
		},
		Explore: Explore{
			EagerRead:          true,
			PresentationFormat: true,
			DefaultFormats:     true,
		},
		Timeouts: Timeouts{
			Connect: 10 * time.Second,
			Request: 5 * time.Second,
		},
		LogLevel: "info",
	}
}

// DefaultPath returns the config location under the user config directory.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		home, _ := os.UserHomeDir()
		dir = filepath.Join(home, ".config")
	}
	return filepath.Join(dir, "gattx", "config.yaml")
}

// Load reads a config file over the defaults. A missing file is not an error.
func Load(path string) (*File, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks the config for values the explorer cannot use.
func (f *File) Validate() error {
	switch f.Transport {
	case TransportTinyGo, TransportGoBLE:
	case TransportSim:
		if f.SimProfile == "" {
			return errors.New("transport sim requires sim_profile")
		}
	default:
		return fmt.Errorf("unknown transport %q", f.Transport)
	}
	if f.Scan.Duration <= 0 {
		return fmt.Errorf("scan.duration must be positive, got %s", f.Scan.Duration)
	}
	if f.Timeouts.Connect <= 0 || f.Timeouts.Request <= 0 {
		return errors.New("timeouts must be positive")
	}
	if _, err := logrus.ParseLevel(f.LogLevel); err != nil {
		return fmt.Errorf("log_level: %w", err)
	}
	return nil
}
