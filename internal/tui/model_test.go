package tui

import (
	"context"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vitaminmoo/gattx/internal/access"
	"github.com/vitaminmoo/gattx/internal/explore"
	"github.com/vitaminmoo/gattx/internal/session"
	"github.com/vitaminmoo/gattx/internal/transport/sim"
)

const scanTime = 30 * time.Millisecond

func newSession(t *testing.T) *session.Session {
	t.Helper()
	p, err := sim.LoadProfile("../transport/sim/testdata/sensortag.yaml")
	require.NoError(t, err)
	tr, err := sim.New(p)
	require.NoError(t, err)
	s := session.New(tr, session.Options{Explore: explore.DefaultOptions(), RequestTimeout: time.Second})
	require.NoError(t, s.Start())
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, s.WaitReady(ctx))
	require.Eventually(t, func() bool { return s.State() == session.Disconnected }, time.Second, 5*time.Millisecond)
	t.Cleanup(func() { _ = s.Disconnect() })
	return s
}

func update(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	nm, ok := next.(Model)
	require.True(t, ok)
	return nm, cmd
}

// enter types text into the prompt and submits it.
func enter(t *testing.T, m Model, text string) (Model, tea.Cmd) {
	t.Helper()
	if text != "" {
		m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(text)})
	}
	return update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
}

// submit enters text and feeds the resulting command's message back.
func submit(t *testing.T, m Model, text string) Model {
	t.Helper()
	m, cmd := enter(t, m, text)
	require.NotNil(t, cmd)
	m, _ = update(t, m, cmd())
	return m
}

// scanned returns a model showing the device list of a finished scan.
func scanned(t *testing.T) (Model, *session.Session) {
	t.Helper()
	s := newSession(t)
	ctx := context.Background()
	m := NewModel(ctx, s, scanTime)

	m, cmd := update(t, m, readyMsg{})
	require.NotNil(t, cmd)
	assert.True(t, m.ready)
	assert.Equal(t, busyScanning, m.busy)

	m, _ = update(t, m, scanCmd(ctx, s, scanTime)())
	require.Empty(t, m.busy)
	require.Len(t, m.devices, 2)
	return m, s
}

func connected(t *testing.T) (Model, *session.Session) {
	t.Helper()
	m, s := scanned(t)
	m = submit(t, m, "0")
	require.Equal(t, ViewServices, m.view)
	require.Equal(t, session.Connected, s.State())
	return m, s
}

func inBattery(t *testing.T) (Model, *session.Session) {
	t.Helper()
	m, s := connected(t)
	m = submit(t, m, "1")
	require.Equal(t, ViewCharacteristics, m.view)
	return m, s
}

func TestDeviceList(t *testing.T) {
	m, _ := scanned(t)

	assert.Equal(t, ViewDevices, m.view)
	assert.Equal(t, "Found 2 peripheral(s)", m.statusMsg)
	out := m.View()
	assert.Contains(t, out, "SensorTag")
	assert.Contains(t, out, "Thermo 1")
	assert.Contains(t, out, "-58 dBm")
}

func TestInvalidIndex(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"out of range", "7"},
		{"negative", "-1"},
		{"not a number", "abc"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, s := scanned(t)
			m, cmd := enter(t, m, tt.input)
			assert.Nil(t, cmd)
			assert.Equal(t, "You must enter a peripheral number between 0 and 1", m.errorMsg)
			assert.Equal(t, ViewDevices, m.view)
			assert.Equal(t, session.DeviceListReady, s.State())
		})
	}
}

func TestConnect(t *testing.T) {
	m, s := connected(t)

	require.NotNil(t, m.topo)
	assert.Len(t, m.topo.Services, 3)
	assert.Equal(t, "c4:be:84:70:2b:11", m.topo.Peripheral.Address)
	assert.Contains(t, m.View(), "Battery Service")
	assert.Equal(t, -1, s.Cursor())
}

func TestSubmitIgnoredWhileBusy(t *testing.T) {
	m, _ := scanned(t)

	m, cmd := enter(t, m, "0")
	require.NotNil(t, cmd)
	assert.Equal(t, busyConnecting, m.busy)

	_, again := enter(t, m, "1")
	assert.Nil(t, again)
}

func TestSelectService(t *testing.T) {
	m, s := inBattery(t)

	assert.Equal(t, 1, s.Cursor())
	require.NotNil(t, m.service)
	require.Len(t, m.service.Characteristics, 1)
	out := m.View()
	assert.Contains(t, out, "Battery Level")
	assert.Contains(t, out, "Characteristics of [1]")
}

func TestRead(t *testing.T) {
	m, _ := inBattery(t)

	m = submit(t, m, "0 READ uint8")
	require.Len(t, m.results, 1)
	res := m.results[0]
	require.True(t, res.OK, res.Error)
	require.NotNil(t, res.Value)
	assert.Equal(t, "100", res.Value.String())

	// An empty line reads the highlighted characteristic.
	m = submit(t, m, "")
	require.Len(t, m.results, 2)
	assert.True(t, m.results[1].OK)
	assert.Equal(t, "0 READ", m.results[1].Input)
	assert.Contains(t, m.View(), "> 0 READ")
}

func TestResultHistoryBounded(t *testing.T) {
	m, _ := inBattery(t)

	for range maxResults + 2 {
		m = submit(t, m, "0 READ")
	}
	assert.Len(t, m.results, maxResults)
}

func TestQueryErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		kind  access.ErrorKind
	}{
		{"unknown action", "0 FROB", access.KindSyntax},
		{"index out of range", "5 READ", access.KindIndex},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, _ := inBattery(t)
			m = submit(t, m, tt.input)
			require.Len(t, m.results, 1)
			assert.False(t, m.results[0].OK)
			assert.Equal(t, tt.kind, m.results[0].Kind)
			assert.Contains(t, m.View(), string(tt.kind)+" error")
		})
	}
}

func TestHelpKeyword(t *testing.T) {
	m, _ := inBattery(t)

	m, cmd := enter(t, m, "help")
	assert.Nil(t, cmd)
	assert.True(t, m.showHelp)
	out := m.View()
	assert.Contains(t, out, "Query format")
	assert.Contains(t, out, `42 READ UInt32"is_the_answer"`)
}

func TestBack(t *testing.T) {
	m, s := inBattery(t)

	m, cmd := enter(t, m, "BACK")
	assert.Nil(t, cmd)
	assert.Equal(t, ViewServices, m.view)
	assert.Nil(t, m.service)
	assert.Equal(t, -1, s.Cursor())
	assert.Equal(t, session.Connected, s.State())

	m, cmd = enter(t, m, "BACK")
	require.NotNil(t, cmd)
	assert.Equal(t, busyDisconnecting, m.busy)
	m, cmd = update(t, m, cmd())
	assert.NotNil(t, cmd)
	assert.Equal(t, ViewDevices, m.view)
	assert.Equal(t, busyScanning, m.busy)
	assert.Nil(t, m.topo)
	assert.Equal(t, session.Disconnected, s.State())
}

func TestEscGoesBack(t *testing.T) {
	m, _ := inBattery(t)

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	assert.Equal(t, ViewServices, m.view)
}

func TestExit(t *testing.T) {
	t.Run("not connected", func(t *testing.T) {
		m, _ := scanned(t)
		_, cmd := enter(t, m, "EXIT")
		require.NotNil(t, cmd)
		assert.IsType(t, tea.QuitMsg{}, cmd())
	})

	t.Run("connected", func(t *testing.T) {
		m, s := inBattery(t)
		m, cmd := enter(t, m, "exit")
		require.NotNil(t, cmd)
		m, cmd = update(t, m, cmd())
		require.NotNil(t, cmd)
		assert.IsType(t, tea.QuitMsg{}, cmd())
		assert.Equal(t, session.Disconnected, s.State())
		assert.Empty(t, m.busy)
	})

	t.Run("ctrl+c", func(t *testing.T) {
		m, _ := scanned(t)
		_, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyCtrlC})
		require.NotNil(t, cmd)
		assert.IsType(t, tea.QuitMsg{}, cmd())
	})
}

func TestLinkLost(t *testing.T) {
	m, _ := inBattery(t)

	m, _ = update(t, m, eventMsg(session.Event{Kind: session.EventState, State: session.Disconnected}))
	assert.Equal(t, ViewDevices, m.view)
	assert.Equal(t, "Peripheral disconnected", m.errorMsg)
	assert.Nil(t, m.topo)
	assert.Nil(t, m.results)
}

func TestPeripheralEvent(t *testing.T) {
	m, _ := scanned(t)

	p := m.devices[1]
	p.RSSI = -42
	m, _ = update(t, m, eventMsg(session.Event{Kind: session.EventPeripheral, Peripheral: p}))
	require.Len(t, m.devices, 2)
	assert.Equal(t, -42, m.devices[1].RSSI)
	assert.Contains(t, m.View(), "-42 dBm")
}

func TestRediscover(t *testing.T) {
	m, _ := inBattery(t)

	m, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyCtrlR})
	require.NotNil(t, cmd)
	assert.Equal(t, busyDiscovering, m.busy)
	m, _ = update(t, m, cmd())
	assert.Empty(t, m.busy)
	assert.Empty(t, m.errorMsg)
	assert.Equal(t, ViewServices, m.view)
	require.NotNil(t, m.topo)
	assert.True(t, m.topo.Services[1].Discovered)
}
