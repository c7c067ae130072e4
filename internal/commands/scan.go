package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/vitaminmoo/gattx/internal/session"
)

// Scan lists the peripherals advertising within d.
func Scan(ctx context.Context, s *session.Session, d time.Duration, p Printer) error {
	devices, err := s.Scan(ctx, d)
	if err != nil {
		return fmt.Errorf("scan: %w", err)
	}
	if p.JSON {
		return p.PrintJSON(devices)
	}
	if len(devices) == 0 {
		p.println("No peripherals found.")
		return nil
	}
	p.println(fmt.Sprintf("Found %d peripheral(s):", len(devices)))
	p.println(DeviceTable(devices, time.Now()))
	return nil
}

// connect scans for d so the target can be resolved by index and the
// backend has seen its address, then connects.
func connect(ctx context.Context, s *session.Session, target string, d time.Duration) error {
	if _, err := s.Scan(ctx, d); err != nil {
		return fmt.Errorf("scan: %w", err)
	}
	if _, err := s.Connect(ctx, target); err != nil {
		return fmt.Errorf("connect %s: %w", target, err)
	}
	return nil
}
