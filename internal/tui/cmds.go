package tui

import (
	"context"
	"strconv"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/vitaminmoo/gattx/internal/access"
	"github.com/vitaminmoo/gattx/internal/explore"
	"github.com/vitaminmoo/gattx/internal/gatt"
	"github.com/vitaminmoo/gattx/internal/session"
)

// readyTimeout bounds the wait for the adapter to power on.
const readyTimeout = 15 * time.Second

// --- Messages for async session operations ---

// eventMsg carries a session event pushed through tea.Program.Send.
type eventMsg session.Event

// readyMsg signals the adapter is powered on, or why it is not.
type readyMsg struct {
	err error
}

// scanDoneMsg delivers the device list when a scan ends.
type scanDoneMsg struct {
	devices []gatt.Peripheral
	err     error
}

// connectedMsg signals a connection attempt result.
type connectedMsg struct {
	topo *explore.Topology
	err  error
}

// serviceMsg delivers a service with its characteristics discovered, and the
// topology it belongs to.
type serviceMsg struct {
	topo    *explore.Topology
	service *explore.Service
	err     error
}

// resultMsg delivers the outcome of an access command. topo carries the
// values cached by the command.
type resultMsg struct {
	result access.Result
	topo   *explore.Topology
}

// rediscoveredMsg delivers a freshly discovered topology.
type rediscoveredMsg struct {
	topo *explore.Topology
	err  error
}

// disconnectedMsg signals a requested disconnect finished.
type disconnectedMsg struct {
	err  error
	quit bool
}

// --- Async commands ---

func startCmd(ctx context.Context, s *session.Session) tea.Cmd {
	return func() tea.Msg {
		if err := s.Start(); err != nil {
			return readyMsg{err: err}
		}
		ctx, cancel := context.WithTimeout(ctx, readyTimeout)
		defer cancel()
		return readyMsg{err: s.WaitReady(ctx)}
	}
}

func scanCmd(ctx context.Context, s *session.Session, d time.Duration) tea.Cmd {
	return func() tea.Msg {
		devices, err := s.Scan(ctx, d)
		return scanDoneMsg{devices: devices, err: err}
	}
}

func connectCmd(ctx context.Context, s *session.Session, index int) tea.Cmd {
	return func() tea.Msg {
		topo, err := s.Connect(ctx, strconv.Itoa(index))
		return connectedMsg{topo: topo, err: err}
	}
}

func selectServiceCmd(ctx context.Context, s *session.Session, index int) tea.Cmd {
	return func() tea.Msg {
		svc, err := s.SelectService(ctx, index)
		return serviceMsg{topo: s.Topology(), service: svc, err: err}
	}
}

func executeCmd(ctx context.Context, s *session.Session, text string) tea.Cmd {
	return func() tea.Msg {
		res := s.Execute(ctx, text)
		return resultMsg{result: res, topo: s.Topology()}
	}
}

func rediscoverCmd(ctx context.Context, s *session.Session) tea.Cmd {
	return func() tea.Msg {
		topo, err := s.Rediscover(ctx)
		return rediscoveredMsg{topo: topo, err: err}
	}
}

func disconnectCmd(s *session.Session, quit bool) tea.Cmd {
	return func() tea.Msg {
		return disconnectedMsg{err: s.Disconnect(), quit: quit}
	}
}
