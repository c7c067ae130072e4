package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
transport: sim
sim_profile: ./devices.yaml
scan:
  duration: 2s
explore:
  eager_read: false
log_level: debug
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, TransportSim, cfg.Transport)
	assert.Equal(t, "./devices.yaml", cfg.SimProfile)
	assert.Equal(t, 2*time.Second, cfg.Scan.Duration)
	assert.True(t, cfg.Scan.AllowDuplicates)
	assert.False(t, cfg.Explore.EagerRead)
	assert.True(t, cfg.Explore.PresentationFormat)
	assert.Equal(t, 5*time.Second, cfg.Timeouts.Request)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*File)
	}{
		{"unknown transport", func(f *File) { f.Transport = "serial" }},
		{"sim without profile", func(f *File) { f.Transport = TransportSim }},
		{"zero scan duration", func(f *File) { f.Scan.Duration = 0 }},
		{"negative request timeout", func(f *File) { f.Timeouts.Request = -time.Second }},
		{"bad log level", func(f *File) { f.LogLevel = "loud" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
	assert.NoError(t, Default().Validate())
}

func TestLoadRejectsInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("transport: carrier-pigeon\n"), 0o644))
	_, err := Load(path)
	assert.ErrorContains(t, err, "unknown transport")
}

func TestConfigureLogFile(t *testing.T) {
	defer func() {
		Log = newLogger()
		Verbose = false
	}()
	cfg := Default()
	cfg.LogLevel = "warn"
	cfg.LogFile = filepath.Join(t.TempDir(), "gattx.log")

	closer, err := Configure(cfg)
	require.NoError(t, err)
	Log.Warn("link lost")
	require.NoError(t, closer.Close())

	assert.Equal(t, logrus.WarnLevel, Log.GetLevel())
	data, err := os.ReadFile(cfg.LogFile)
	require.NoError(t, err)
	assert.Contains(t, string(data), "link lost")
}
