package cli

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/alecthomas/kong"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vitaminmoo/gattx/internal/config"
	"github.com/vitaminmoo/gattx/internal/store"
	"github.com/vitaminmoo/gattx/internal/transport/sim"
)

const sensortag = "../transport/sim/testdata/sensortag.yaml"

func parse(t *testing.T, args ...string) (*CLI, *kong.Context) {
	t.Helper()
	var c CLI
	parser, err := kong.New(&c, kong.Vars{"config_path": "test"}, kong.Exit(func(int) { t.Fatal("kong exited") }))
	require.NoError(t, err)
	kctx, err := parser.Parse(args)
	require.NoError(t, err)
	return &c, kctx
}

func TestParseCommands(t *testing.T) {
	tests := []struct {
		args []string
		cmd  string
	}{
		{nil, "tui"},
		{[]string{"scan", "--json"}, "scan"},
		{[]string{"explore", "0"}, "explore"},
		{[]string{"read", "c4:be:84:70:2b:11", "1", "0", "READ", "uint8"}, "read"},
		{[]string{"write", "0", "2", "1", "WRITE", "01"}, "write"},
		{[]string{"formats"}, "formats"},
		{[]string{"explore", "--save", "0"}, "explore"},
		{[]string{"snapshots"}, "snapshots"},
		{[]string{"snapshots", "show", "abc123"}, "snapshots"},
	}
	for _, tt := range tests {
		t.Run(tt.cmd, func(t *testing.T) {
			_, kctx := parse(t, tt.args...)
			assert.Equal(t, tt.cmd, strings.Fields(kctx.Command())[0])
		})
	}

	c, _ := parse(t, "--scan-time", "2s", "read", "0", "1", "0", "READ", "uint8")
	assert.Equal(t, 2*time.Second, c.ScanTime)
	assert.Equal(t, 1, c.Read.Service)
	assert.Equal(t, []string{"0", "READ", "uint8"}, c.Read.Command)

	c, _ = parse(t, "--store", "/tmp/snaps", "snapshots", "show", "abc123")
	assert.Equal(t, "/tmp/snaps", c.Store)
	assert.Equal(t, "abc123", c.Snapshots.Show.Hash)
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	missing := filepath.Join(dir, "none.yaml")

	c := &CLI{Config: missing}
	cfg, err := c.Load()
	require.NoError(t, err)
	assert.Equal(t, config.TransportTinyGo, cfg.Transport)

	c = &CLI{Config: missing, Profile: sensortag, ScanTime: time.Second}
	cfg, err = c.Load()
	require.NoError(t, err)
	assert.Equal(t, config.TransportSim, cfg.Transport, "a profile implies the sim transport")
	assert.Equal(t, time.Second, cfg.Scan.Duration)

	c = &CLI{Config: missing, Transport: "bluez"}
	_, err = c.Load()
	assert.Error(t, err)

	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("transport: goble\nscan:\n  duration: 3s\n"), 0o644))
	c = &CLI{Config: path}
	cfg, err = c.Load()
	require.NoError(t, err)
	assert.Equal(t, config.TransportGoBLE, cfg.Transport)
	assert.Equal(t, 3*time.Second, cfg.Scan.Duration)
}

func TestOpenTransport(t *testing.T) {
	cfg := config.Default()
	cfg.Transport = config.TransportSim
	cfg.SimProfile = sensortag
	a, err := openTransport(cfg)
	require.NoError(t, err)
	assert.IsType(t, &sim.Transport{}, a)

	cfg.SimProfile = "does-not-exist.yaml"
	_, err = openTransport(cfg)
	assert.Error(t, err)

	cfg.Transport = "bluez"
	_, err = openTransport(cfg)
	assert.Error(t, err)
}

func TestStartSession(t *testing.T) {
	cfg := config.Default()
	cfg.Transport = config.TransportSim
	cfg.SimProfile = sensortag
	s, err := startSession(context.Background(), cfg, nil)
	require.NoError(t, err)
	devices, err := s.Scan(context.Background(), 20*time.Millisecond)
	require.NoError(t, err)
	assert.Len(t, devices, 2)
}

func TestAccessActionMismatch(t *testing.T) {
	globals := &CLI{Config: filepath.Join(t.TempDir(), "none.yaml"), Profile: sensortag}
	cmd := &ReadCmd{Target: "0", Service: 1, Command: []string{"0", "WRITE", "01"}}
	err := cmd.Run(globals, context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "use gattx write")

	wcmd := &WriteCmd{Target: "0", Service: 1, Command: []string{"0", "WRITE"}}
	assert.Error(t, wcmd.Run(globals, context.Background()))
}

func TestSnapshotCommands(t *testing.T) {
	dir := t.TempDir()
	globals := &CLI{Config: filepath.Join(dir, "none.yaml"), Store: filepath.Join(dir, "snaps")}

	require.NoError(t, (&SnapshotListCmd{}).Run(globals))
	_, err := os.Stat(filepath.Join(dir, "snaps", "topologies"))
	assert.NoError(t, err, "listing creates the store")

	err = (&SnapshotShowCmd{Hash: "abc"}).Run(globals)
	assert.ErrorIs(t, err, store.ErrNotFound)
}
