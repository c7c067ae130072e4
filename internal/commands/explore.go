package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/vitaminmoo/gattx/internal/config"
	"github.com/vitaminmoo/gattx/internal/session"
	"github.com/vitaminmoo/gattx/internal/store"
)

// Explore connects to target and walks its whole GATT table. Services whose
// characteristics could not be discovered are reported but do not fail the
// command. With a non-nil st the result is also saved as a snapshot.
func Explore(ctx context.Context, s *session.Session, target string, d time.Duration, p Printer, st *store.Store) error {
	if err := connect(ctx, s, target, d); err != nil {
		return err
	}
	defer func() {
		if err := s.Disconnect(); err != nil {
			config.Debugf("disconnect: %v", err)
		}
	}()

	topo, walkErr := s.Walk(ctx)
	if topo == nil {
		return fmt.Errorf("explore: %w", walkErr)
	}
	if walkErr != nil {
		config.Log.WithError(walkErr).Warn("exploration incomplete")
	}
	if p.JSON {
		if err := p.PrintJSON(topo); err != nil {
			return err
		}
	} else {
		p.println(TopologyText(topo))
	}
	if st != nil {
		return saveSnapshot(st, topo, p)
	}
	return nil
}
