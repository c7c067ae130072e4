package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/vitaminmoo/gattx/internal/codec"
	"github.com/vitaminmoo/gattx/internal/config"
	"github.com/vitaminmoo/gattx/internal/session"
	"github.com/vitaminmoo/gattx/internal/util"
)

// dumpThreshold is the payload size above which a read also gets a hex dump.
const dumpThreshold = 16

// Access runs one access command (e.g. "0 READ uint8") against a service of
// target. A failed command is printed and returned as an error.
func Access(ctx context.Context, s *session.Session, target string, service int, command string, d time.Duration, p Printer) error {
	if err := connect(ctx, s, target, d); err != nil {
		return err
	}
	defer func() {
		if err := s.Disconnect(); err != nil {
			config.Debugf("disconnect: %v", err)
		}
	}()

	if _, err := s.SelectService(ctx, service); err != nil {
		return fmt.Errorf("service %d: %w", service, err)
	}
	res := s.Execute(ctx, command)
	if p.JSON {
		if err := p.PrintJSON(res); err != nil {
			return err
		}
	} else {
		p.println(ResultText(res))
		if res.OK && len(res.Raw) > dumpThreshold {
			p.println(util.HexDump(res.Raw))
		}
	}
	if !res.OK {
		return fmt.Errorf("%s: %w", res.Kind, res.Err)
	}
	return nil
}

// Formats lists the registered value formats.
func Formats(p Printer) error {
	if p.JSON {
		return p.PrintJSON(formatList())
	}
	p.println(FormatTable())
	return nil
}

type formatEntry struct {
	Name    string `json:"name"`
	Width   int    `json:"width"`
	Numeric bool   `json:"numeric"`
}

func formatList() []formatEntry {
	var out []formatEntry
	for _, f := range codec.Formats() {
		out = append(out, formatEntry{Name: f.String(), Width: f.Width(), Numeric: f.Numeric()})
	}
	return out
}
