package cli

import (
	"fmt"
	"time"

	"github.com/vitaminmoo/gattx/internal/config"
	"github.com/vitaminmoo/gattx/internal/transport"
	"github.com/vitaminmoo/gattx/internal/transport/goble"
	"github.com/vitaminmoo/gattx/internal/transport/sim"
	"github.com/vitaminmoo/gattx/internal/transport/tinygo"
)

// simAdvertiseInterval paces simulated advertisements so RSSI and sighting
// counts move while a scan runs.
const simAdvertiseInterval = 500 * time.Millisecond

func openTransport(cfg *config.File) (transport.Adapter, error) {
	switch cfg.Transport {
	case config.TransportSim:
		p, err := sim.LoadProfile(cfg.SimProfile)
		if err != nil {
			return nil, err
		}
		t, err := sim.New(p, sim.WithAdvertiseInterval(simAdvertiseInterval))
		if err != nil {
			return nil, err
		}
		return t, nil
	case config.TransportGoBLE:
		return goble.New(), nil
	case config.TransportTinyGo:
		return tinygo.New(), nil
	}
	return nil, fmt.Errorf("unknown transport %q", cfg.Transport)
}
