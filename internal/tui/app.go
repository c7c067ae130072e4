package tui

import (
	"context"
	"errors"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/vitaminmoo/gattx/internal/config"
	"github.com/vitaminmoo/gattx/internal/session"
	"github.com/vitaminmoo/gattx/internal/transport"
)

// Run starts the TUI application over adapter and blocks until the user
// quits or ctx ends. Any connection left open is closed on the way out.
func Run(ctx context.Context, adapter transport.Adapter, cfg *config.File) error {
	var p *tea.Program

	opts := session.OptionsFromConfig(cfg)
	opts.OnEvent = func(e session.Event) {
		p.Send(eventMsg(e))
	}
	s := session.New(adapter, opts)

	m := NewModel(ctx, s, cfg.Scan.Duration)
	// Assigned before Run so no event can observe a nil program.
	p = tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))

	_, err := p.Run()
	if derr := s.Disconnect(); derr != nil {
		config.Debugf("disconnect on exit: %v", derr)
	}
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error running TUI: %v\n", err)
		return err
	}
	return nil
}
