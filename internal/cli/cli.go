package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/vitaminmoo/gattx/internal/access"
	"github.com/vitaminmoo/gattx/internal/commands"
	"github.com/vitaminmoo/gattx/internal/config"
	"github.com/vitaminmoo/gattx/internal/session"
	"github.com/vitaminmoo/gattx/internal/store"
	"github.com/vitaminmoo/gattx/internal/tui"
)

// CLI is the root command structure for gattx.
type CLI struct {
	Verbose   bool          `short:"v" help:"Enable verbose debug output"`
	Config    string        `help:"Config file (default: ${config_path})" type:"path" placeholder:"PATH"`
	Transport string        `help:"BLE backend: tinygo, goble or sim" placeholder:"NAME"`
	Profile   string        `help:"Device profile for the sim transport" type:"path" placeholder:"PATH"`
	ScanTime  time.Duration `name:"scan-time" help:"How long to scan for peripherals" placeholder:"5s"`
	Store     string        `help:"Snapshot store directory" type:"path" placeholder:"DIR"`

	// Default command - TUI
	Tui TuiCmd `cmd:"" default:"withargs" help:"Launch interactive explorer (default)"`

	Scan      ScanCmd      `cmd:"" help:"List advertising peripherals"`
	Explore   ExploreCmd   `cmd:"" help:"Walk every service and characteristic of a peripheral"`
	Read      ReadCmd      `cmd:"" help:"Run a READ command, e.g. gattx read <addr> 1 0 READ uint8"`
	Write     WriteCmd     `cmd:"" help:"Run a WRITE command, e.g. gattx write <addr> 2 1 WRITE uint8 1"`
	Formats   FormatsCmd   `cmd:"" help:"List value formats"`
	Snapshots SnapshotsCmd `cmd:"" help:"Browse saved GATT snapshots"`
}

// Load reads the config file and applies flag overrides on top.
func (c *CLI) Load() (*config.File, error) {
	config.SetVerbose(c.Verbose)
	path := c.Config
	if path == "" {
		path = config.DefaultPath()
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	if c.Transport != "" {
		cfg.Transport = c.Transport
	}
	if c.Profile != "" {
		cfg.SimProfile = c.Profile
		if c.Transport == "" {
			cfg.Transport = config.TransportSim
		}
	}
	if c.ScanTime > 0 {
		cfg.Scan.Duration = c.ScanTime
	}
	if c.Store != "" {
		cfg.Store = c.Store
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	config.Debugf("config: transport=%s scan=%s", cfg.Transport, cfg.Scan.Duration)
	return cfg, nil
}

// open loads the config, sets up logging and returns a session whose
// adapter is powered on. The closer releases the log file.
func (c *CLI) open(ctx context.Context, onEvent func(session.Event)) (*session.Session, *config.File, io.Closer, error) {
	cfg, err := c.Load()
	if err != nil {
		return nil, nil, nil, err
	}
	closer, err := config.Configure(cfg)
	if err != nil {
		return nil, nil, nil, err
	}
	s, err := startSession(ctx, cfg, onEvent)
	if err != nil {
		closer.Close()
		return nil, nil, nil, err
	}
	return s, cfg, closer, nil
}

func startSession(ctx context.Context, cfg *config.File, onEvent func(session.Event)) (*session.Session, error) {
	adapter, err := openTransport(cfg)
	if err != nil {
		return nil, err
	}
	opts := session.OptionsFromConfig(cfg)
	opts.OnEvent = onEvent
	s := session.New(adapter, opts)
	if err := s.Start(); err != nil {
		return nil, err
	}
	readyCtx, cancel := context.WithTimeout(ctx, cfg.Timeouts.Connect)
	defer cancel()
	if err := s.WaitReady(readyCtx); err != nil {
		return nil, fmt.Errorf("bluetooth adapter is %s: %w", s.AdapterState(), err)
	}
	return s, nil
}

func printer(asJSON bool) commands.Printer {
	return commands.Printer{W: os.Stdout, JSON: asJSON}
}

// --- TUI Command ---

type TuiCmd struct{}

func (c *TuiCmd) Run(globals *CLI, ctx context.Context) error {
	cfg, err := globals.Load()
	if err != nil {
		return err
	}
	closer, err := config.Configure(cfg)
	if err != nil {
		return err
	}
	defer closer.Close()
	if cfg.LogFile == "" {
		config.Discard()
	}
	adapter, err := openTransport(cfg)
	if err != nil {
		return err
	}
	return tui.Run(ctx, adapter, cfg)
}

// --- Scan Command ---

type ScanCmd struct {
	JSON bool `help:"Print JSON instead of a table"`
}

func (c *ScanCmd) Run(globals *CLI, ctx context.Context) error {
	s, cfg, closer, err := globals.open(ctx, nil)
	if err != nil {
		return err
	}
	defer closer.Close()
	return commands.Scan(ctx, s, cfg.Scan.Duration, printer(c.JSON))
}

// --- Explore Command ---

type ExploreCmd struct {
	Target string `arg:"" help:"Peripheral address, or its index in the scan list"`
	JSON   bool   `help:"Print JSON instead of tables"`
	Save   bool   `help:"Save the result to the snapshot store"`
}

func (c *ExploreCmd) Run(globals *CLI, ctx context.Context) error {
	s, cfg, closer, err := globals.open(ctx, nil)
	if err != nil {
		return err
	}
	defer closer.Close()
	var st *store.Store
	if c.Save {
		if st, err = openStore(cfg); err != nil {
			return err
		}
	}
	return commands.Explore(ctx, s, c.Target, cfg.Scan.Duration, printer(c.JSON), st)
}

// --- Read / Write Commands ---

type ReadCmd struct {
	Target  string   `arg:"" help:"Peripheral address, or its index in the scan list"`
	Service int      `arg:"" help:"Service index"`
	Command []string `arg:"" help:"Access command: <index> READ [format]"`
	JSON    bool     `help:"Print JSON instead of text"`
}

func (c *ReadCmd) Run(globals *CLI, ctx context.Context) error {
	return runAccess(ctx, globals, access.Read, c.Target, c.Service, c.Command, c.JSON)
}

type WriteCmd struct {
	Target  string   `arg:"" help:"Peripheral address, or its index in the scan list"`
	Service int      `arg:"" help:"Service index"`
	Command []string `arg:"" help:"Access command: <index> WRITE [format] <value>"`
	JSON    bool     `help:"Print JSON instead of text"`
}

func (c *WriteCmd) Run(globals *CLI, ctx context.Context) error {
	return runAccess(ctx, globals, access.Write, c.Target, c.Service, c.Command, c.JSON)
}

func runAccess(ctx context.Context, globals *CLI, want access.Action, target string, service int, args []string, asJSON bool) error {
	text := strings.Join(args, " ")
	cmd, err := access.Parse(text)
	if err != nil {
		return err
	}
	if cmd.Action != want {
		return fmt.Errorf("%q is a %s command; use gattx %s", text, cmd.Action, strings.ToLower(string(cmd.Action)))
	}

	s, cfg, closer, err := globals.open(ctx, nil)
	if err != nil {
		return err
	}
	defer closer.Close()
	return commands.Access(ctx, s, target, service, text, cfg.Scan.Duration, printer(asJSON))
}

// --- Formats Command ---

type FormatsCmd struct {
	JSON bool `help:"Print JSON instead of a table"`
}

func (c *FormatsCmd) Run(globals *CLI) error {
	config.SetVerbose(globals.Verbose)
	return commands.Formats(printer(c.JSON))
}

// --- Snapshot Commands ---

type SnapshotsCmd struct {
	List SnapshotListCmd `cmd:"" default:"1" help:"List saved snapshots"`
	Show SnapshotShowCmd `cmd:"" help:"Show one snapshot"`
}

type SnapshotListCmd struct {
	JSON bool `help:"Print JSON instead of a table"`
}

func (c *SnapshotListCmd) Run(globals *CLI) error {
	st, err := globals.loadStore()
	if err != nil {
		return err
	}
	return commands.SnapshotList(st, printer(c.JSON))
}

type SnapshotShowCmd struct {
	Hash string `arg:"" help:"Snapshot hash or unique prefix"`
	JSON bool   `help:"Print JSON instead of tables"`
}

func (c *SnapshotShowCmd) Run(globals *CLI) error {
	st, err := globals.loadStore()
	if err != nil {
		return err
	}
	return commands.SnapshotShow(st, c.Hash, printer(c.JSON))
}

func (c *CLI) loadStore() (*store.Store, error) {
	cfg, err := c.Load()
	if err != nil {
		return nil, err
	}
	return openStore(cfg)
}

func openStore(cfg *config.File) (*store.Store, error) {
	path := cfg.Store
	if path == "" {
		path = store.DefaultPath()
	}
	return store.Open(path)
}
