package tui

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/vitaminmoo/gattx/internal/access"
	"github.com/vitaminmoo/gattx/internal/explore"
	"github.com/vitaminmoo/gattx/internal/gatt"
	"github.com/vitaminmoo/gattx/internal/session"
)

// View represents different screens in the TUI.
type View int

const (
	ViewDevices View = iota
	ViewServices
	ViewCharacteristics
)

func (v View) String() string {
	switch v {
	case ViewServices:
		return "services"
	case ViewCharacteristics:
		return "characteristics"
	}
	return "devices"
}

// Busy labels shown next to the spinner.
const (
	busyStarting      = "Starting adapter..."
	busyScanning      = "Scanning..."
	busyConnecting    = "Connecting..."
	busyDiscovering   = "Discovering..."
	busyRunning       = "Running..."
	busyDisconnecting = "Disconnecting..."
)

// maxResults bounds the command history shown under the characteristics.
const maxResults = 6

// defaultTableHeight is used until the first WindowSizeMsg.
const defaultTableHeight = 12

// Model is the main Bubbletea model for the TUI.
type Model struct {
	// State
	view   View
	width  int
	height int
	ctx    context.Context

	sess     *session.Session
	scanTime time.Duration

	// Data
	devices []gatt.Peripheral
	topo    *explore.Topology
	service *explore.Service
	results []access.Result
	records int // discovery records received during the current operation

	// Status
	ready     bool
	busy      string
	errorMsg  string
	statusMsg string
	showHelp  bool
	now       time.Time

	// Components
	table   table.Model
	prompt  textinput.Model
	scan    ScanProgress
	keys    KeyMap
	help    help.Model
	spinner spinner.Model
	styles  Styles
}

// NewModel returns a model driving s. ctx bounds every session operation.
func NewModel(ctx context.Context, s *session.Session, scanTime time.Duration) Model {
	styles := DefaultStyles()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = styles.Warning

	prompt := textinput.New()
	prompt.Prompt = "> "
	prompt.PromptStyle = styles.Prompt
	prompt.CharLimit = 256
	prompt.Focus()

	tbl := table.New(
		table.WithFocused(true),
		table.WithHeight(defaultTableHeight),
		table.WithStyles(styles.Table),
	)

	m := Model{
		view:     ViewDevices,
		ctx:      ctx,
		sess:     s,
		scanTime: scanTime,
		busy:     busyStarting,
		now:      time.Now(),
		table:    tbl,
		prompt:   prompt,
		scan:     NewScanProgress(),
		keys:     DefaultKeyMap(),
		help:     help.New(),
		spinner:  sp,
		styles:   styles,
	}
	m.setDeviceRows()
	return m
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(startCmd(m.ctx, m.sess), m.spinner.Tick, textinput.Blink)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.prompt.Width = max(msg.Width-8, 20)
		m.table.SetHeight(m.tableHeight())
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case scanTickMsg:
		m.now = time.Time(msg)
		if m.scan.IsActive() {
			return m, scanTickCmd()
		}
		return m, nil

	case eventMsg:
		return m.handleEvent(session.Event(msg))

	case readyMsg:
		m.busy = ""
		if msg.err != nil {
			m.errorMsg = fmt.Sprintf("Bluetooth unavailable: %v", msg.err)
			return m, nil
		}
		m.ready = true
		return m.startScan()

	case scanDoneMsg:
		m.scan.Stop()
		m.busy = ""
		if msg.err != nil {
			m.errorMsg = fmt.Sprintf("Scan failed: %v", msg.err)
		}
		if msg.devices != nil || msg.err == nil {
			m.devices = msg.devices
		}
		m.statusMsg = fmt.Sprintf("Found %d peripheral(s)", len(m.devices))
		if m.view == ViewDevices {
			m.setDeviceRows()
		}
		return m, nil

	case connectedMsg:
		m.busy = ""
		if msg.err != nil {
			m.errorMsg = fmt.Sprintf("Connection failed: %v", msg.err)
			return m, nil
		}
		m.topo = msg.topo
		m.errorMsg = ""
		m.statusMsg = fmt.Sprintf("Connected, %d service(s)", len(msg.topo.Services))
		m.view = ViewServices
		m.setServiceRows()
		return m, nil

	case serviceMsg:
		m.busy = ""
		if msg.topo != nil {
			m.topo = msg.topo
		}
		if msg.err != nil {
			m.errorMsg = fmt.Sprintf("Discovery failed: %v", msg.err)
			if msg.service == nil || errors.Is(msg.err, session.ErrDisconnected) {
				if m.view == ViewServices {
					m.setServiceRows()
				}
				return m, nil
			}
		} else {
			m.errorMsg = ""
		}
		// A partial failure still shows what was discovered.
		m.service = msg.service
		m.results = nil
		m.view = ViewCharacteristics
		m.statusMsg = fmt.Sprintf("%d characteristic(s)", len(msg.service.Characteristics))
		m.setCharacteristicRows()
		return m, nil

	case resultMsg:
		m.busy = ""
		m.results = append(m.results, msg.result)
		if len(m.results) > maxResults {
			m.results = m.results[len(m.results)-maxResults:]
		}
		if msg.topo != nil && m.service != nil {
			if svc := msg.topo.Service(m.service.Index); svc != nil {
				m.topo, m.service = msg.topo, svc
			}
		}
		if m.view == ViewCharacteristics {
			m.setCharacteristicRows()
		}
		return m, nil

	case rediscoveredMsg:
		m.busy = ""
		if msg.err != nil {
			m.errorMsg = fmt.Sprintf("Rediscovery failed: %v", msg.err)
		}
		if msg.topo == nil {
			return m, nil
		}
		m.topo = msg.topo
		m.service = nil
		m.results = nil
		m.view = ViewServices
		m.setServiceRows()
		return m, nil

	case disconnectedMsg:
		m.busy = ""
		if msg.quit {
			return m, tea.Quit
		}
		if msg.err != nil {
			m.errorMsg = fmt.Sprintf("Disconnect failed: %v", msg.err)
		}
		m.clearConnection()
		return m.startScan()
	}

	var cmd tea.Cmd
	m.prompt, cmd = m.prompt.Update(msg)
	return m, cmd
}

// handleEvent applies session notifications that arrive outside any
// request this model made, such as a dropped link.
func (m Model) handleEvent(e session.Event) (tea.Model, tea.Cmd) {
	switch e.Kind {
	case session.EventPeripheral:
		m.upsertDevice(e.Peripheral)
		if m.view == ViewDevices {
			m.setDeviceRows()
		}

	case session.EventRecord:
		m.records++

	case session.EventState:
		switch e.State {
		case session.AdapterNotReady:
			if m.ready {
				m.errorMsg = "Bluetooth adapter is not powered on"
				m.scan.Stop()
				m.busy = ""
				m.clearConnection()
			}
		case session.Disconnected:
			if m.view != ViewDevices && m.busy != busyDisconnecting {
				m.errorMsg = "Peripheral disconnected"
				m.busy = ""
				m.clearConnection()
			}
		}
	}
	return m, nil
}

func (m *Model) upsertDevice(p gatt.Peripheral) {
	for i := range m.devices {
		if m.devices[i].Address == p.Address {
			m.devices[i] = p
			return
		}
	}
	m.devices = append(m.devices, p)
}

// clearConnection drops everything tied to the connection and shows the
// device list.
func (m *Model) clearConnection() {
	m.topo = nil
	m.service = nil
	m.results = nil
	m.showHelp = false
	m.view = ViewDevices
	m.setDeviceRows()
}

func (m Model) startScan() (tea.Model, tea.Cmd) {
	m.busy = busyScanning
	m.errorMsg = ""
	m.statusMsg = ""
	m.devices = nil
	m.setDeviceRows()
	m.now = time.Now()
	m.scan.Start(m.now, m.scanTime)
	return m, tea.Batch(scanCmd(m.ctx, m.sess, m.scanTime), scanTickCmd())
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m.exit()

	case key.Matches(msg, m.keys.Help):
		m.showHelp = !m.showHelp
		m.help.ShowAll = m.showHelp
		return m, nil

	case key.Matches(msg, m.keys.Up):
		m.table.MoveUp(1)
		return m, nil

	case key.Matches(msg, m.keys.Down):
		m.table.MoveDown(1)
		return m, nil

	case key.Matches(msg, m.keys.Back):
		if m.busy != "" {
			return m, nil
		}
		return m.goBack()

	case key.Matches(msg, m.keys.Refresh):
		if m.busy != "" || !m.ready {
			return m, nil
		}
		return m.refresh()

	case key.Matches(msg, m.keys.Select):
		return m.handleSubmit()
	}

	var cmd tea.Cmd
	m.prompt, cmd = m.prompt.Update(msg)
	return m, cmd
}

// exit disconnects first when connected, then quits.
func (m Model) exit() (tea.Model, tea.Cmd) {
	if m.topo != nil && m.busy != busyDisconnecting {
		m.busy = busyDisconnecting
		return m, disconnectCmd(m.sess, true)
	}
	return m, tea.Quit
}

func (m Model) goBack() (tea.Model, tea.Cmd) {
	m.errorMsg = ""
	switch m.view {
	case ViewCharacteristics:
		m.sess.Back()
		m.service = nil
		m.results = nil
		m.showHelp = false
		m.view = ViewServices
		m.setServiceRows()
		return m, nil
	case ViewServices:
		m.busy = busyDisconnecting
		return m, disconnectCmd(m.sess, false)
	}
	return m, nil
}

func (m Model) refresh() (tea.Model, tea.Cmd) {
	switch m.view {
	case ViewDevices:
		return m.startScan()
	default:
		m.busy = busyDiscovering
		m.records = 0
		return m, rediscoverCmd(m.ctx, m.sess)
	}
}

// handleSubmit interprets the prompt line. An empty line selects the
// highlighted row; in the characteristics view it reads it.
func (m Model) handleSubmit() (tea.Model, tea.Cmd) {
	text := strings.TrimSpace(m.prompt.Value())
	if m.busy != "" {
		return m, nil
	}
	m.prompt.Reset()
	m.errorMsg = ""

	switch access.ParseKeyword(text) {
	case access.Exit:
		return m.exit()
	case access.Back:
		return m.goBack()
	case access.Help:
		m.showHelp = !m.showHelp
		return m, nil
	}

	switch m.view {
	case ViewDevices:
		if !m.ready {
			return m, nil
		}
		idx, ok := m.pickIndex(text, len(m.devices), "peripheral")
		if !ok {
			return m, nil
		}
		m.busy = busyConnecting
		m.records = 0
		return m, connectCmd(m.ctx, m.sess, idx)

	case ViewServices:
		idx, ok := m.pickIndex(text, len(m.topo.Services), "service")
		if !ok {
			return m, nil
		}
		m.busy = busyDiscovering
		m.records = 0
		return m, selectServiceCmd(m.ctx, m.sess, idx)

	case ViewCharacteristics:
		if text == "" {
			if len(m.service.Characteristics) == 0 {
				return m, nil
			}
			text = fmt.Sprintf("%d READ", m.table.Cursor())
		}
		m.busy = busyRunning
		return m, executeCmd(m.ctx, m.sess, text)
	}
	return m, nil
}

// pickIndex resolves the prompt text, or the highlighted row when empty, to
// a row index.
func (m *Model) pickIndex(text string, count int, what string) (int, bool) {
	if count == 0 {
		m.errorMsg = fmt.Sprintf("No %s to select", what)
		return 0, false
	}
	idx := m.table.Cursor()
	if text != "" {
		n, err := strconv.Atoi(text)
		if err != nil || n < 0 || n >= count {
			m.errorMsg = fmt.Sprintf("You must enter a %s number between 0 and %d", what, count-1)
			return 0, false
		}
		idx = n
	}
	return idx, true
}

func (m Model) tableHeight() int {
	if m.height == 0 {
		return defaultTableHeight
	}
	// title, heading, prompt, status, help and the results panel
	reserved := 14
	if m.view == ViewCharacteristics {
		reserved += maxResults
	}
	return max(m.height-reserved, 3)
}
