// Package sim is an in-process BLE transport driven by a declarative device
// profile. It backs the demo mode and the test suites.
package sim

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/vitaminmoo/gattx/internal/config"
	"github.com/vitaminmoo/gattx/internal/gatt"
	"github.com/vitaminmoo/gattx/internal/transport"
)

// Op names a transport request, for counters and hooks.
type Op string

const (
	OpEnable                  Op = "enable"
	OpStartScanning           Op = "start-scanning"
	OpStopScanning            Op = "stop-scanning"
	OpConnect                 Op = "connect"
	OpDisconnect              Op = "disconnect"
	OpDiscoverServices        Op = "discover-services"
	OpDiscoverCharacteristics Op = "discover-characteristics"
	OpDiscoverDescriptors     Op = "discover-descriptors"
	OpRead                    Op = "read"
	OpWrite                   Op = "write"
	OpReadDescriptor          Op = "read-descriptor"
)

// Hook runs before a request is served. Returning an error fails the request;
// blocking until ctx is done simulates a request that never completes.
type Hook func(ctx context.Context, op Op, target string) error

// Transport simulates an adapter and the peripherals around it.
type Transport struct {
	mu       sync.Mutex
	state    transport.AdapterState
	devices  []*device
	onState  func(transport.AdapterState)
	onSight  func(transport.Sighting)
	scanStop context.CancelFunc
	conns    map[string]*conn
	calls    map[Op]int
	hook     Hook

	latency  time.Duration
	interval time.Duration
}

// Option configures a Transport.
type Option func(*Transport)

// WithLatency delays every GATT request.
func WithLatency(d time.Duration) Option {
	return func(t *Transport) { t.latency = d }
}

// WithAdvertiseInterval re-sends every advertisement at the interval while
// scanning. Zero advertises once per scan.
func WithAdvertiseInterval(d time.Duration) Option {
	return func(t *Transport) { t.interval = d }
}

// WithHook installs a request hook.
func WithHook(h Hook) Option {
	return func(t *Transport) { t.hook = h }
}

// New builds a simulated transport from a profile.
func New(p Profile, opts ...Option) (*Transport, error) {
	state, devices, err := p.build()
	if err != nil {
		return nil, err
	}
	t := &Transport{
		state:   state,
		devices: devices,
		conns:   make(map[string]*conn),
		calls:   make(map[Op]int),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t, nil
}

var _ transport.Adapter = (*Transport)(nil)

// Calls returns how many times op was requested.
func (t *Transport) Calls(op Op) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.calls[op]
}

// SetHook replaces the request hook.
func (t *Transport) SetHook(h Hook) {
	t.mu.Lock()
	t.hook = h
	t.mu.Unlock()
}

// SetState changes the adapter power state. Powering off stops the scan and
// drops every connection.
func (t *Transport) SetState(s transport.AdapterState) {
	t.mu.Lock()
	t.state = s
	cb := t.onState
	var drop []*conn
	if s != transport.StatePoweredOn {
		if t.scanStop != nil {
			t.scanStop()
			t.scanStop = nil
		}
		for addr, c := range t.conns {
			drop = append(drop, c)
			delete(t.conns, addr)
		}
	}
	t.mu.Unlock()

	for _, c := range drop {
		c.close()
	}
	if cb != nil {
		go cb(s)
	}
}

// DropConnection simulates the peripheral going out of range.
func (t *Transport) DropConnection(address string) {
	t.mu.Lock()
	c := t.conns[strings.ToLower(address)]
	delete(t.conns, strings.ToLower(address))
	t.mu.Unlock()
	if c != nil {
		c.close()
	}
}

// Value returns the current value of a characteristic, including writes.
func (t *Transport) Value(address string, svc, char gatt.UUID) ([]byte, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	d := t.device(address)
	if d == nil {
		return nil, false
	}
	for _, s := range d.services {
		if s.uuid != svc {
			continue
		}
		for _, c := range s.chars {
			if c.uuid == char {
				return append([]byte(nil), c.value...), true
			}
		}
	}
	return nil, false
}

func (t *Transport) Enable() error {
	t.mu.Lock()
	t.calls[OpEnable]++
	s, cb := t.state, t.onState
	t.mu.Unlock()
	if cb != nil {
		go cb(s)
	}
	return nil
}

func (t *Transport) OnStateChange(cb func(transport.AdapterState)) {
	t.mu.Lock()
	t.onState = cb
	t.mu.Unlock()
}

func (t *Transport) OnPeripheralDiscovered(cb func(transport.Sighting)) {
	t.mu.Lock()
	t.onSight = cb
	t.mu.Unlock()
}

func (t *Transport) StartScanning(ctx context.Context) error {
	t.mu.Lock()
	t.calls[OpStartScanning]++
	if t.state != transport.StatePoweredOn {
		t.mu.Unlock()
		return fmt.Errorf("adapter is %s", t.state)
	}
	if t.scanStop != nil {
		t.mu.Unlock()
		return errors.New("already scanning")
	}
	scanCtx, cancel := context.WithCancel(ctx)
	t.scanStop = cancel
	sightings := make([]transport.Sighting, 0, len(t.devices))
	for _, d := range t.devices {
		sightings = append(sightings, d.sighting())
	}
	cb, interval := t.onSight, t.interval
	t.mu.Unlock()

	config.Debugf("sim: scanning, %d peripherals in range", len(sightings))
	go func() {
		for {
			for _, s := range sightings {
				if scanCtx.Err() != nil {
					return
				}
				if cb != nil {
					cb(s)
				}
			}
			if interval <= 0 {
				return
			}
			select {
			case <-scanCtx.Done():
				return
			case <-time.After(interval):
			}
		}
	}()
	return nil
}

func (t *Transport) StopScanning() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.calls[OpStopScanning]++
	if t.scanStop != nil {
		t.scanStop()
		t.scanStop = nil
	}
	return nil
}

func (t *Transport) Connect(ctx context.Context, address string) (transport.Conn, error) {
	t.mu.Lock()
	t.calls[OpConnect]++
	hook, latency := t.hook, t.latency
	state := t.state
	d := t.device(address)
	t.mu.Unlock()

	if state != transport.StatePoweredOn {
		return nil, fmt.Errorf("adapter is %s", state)
	}
	if d == nil {
		return nil, fmt.Errorf("peripheral %s not in range", address)
	}
	if hook != nil {
		if err := hook(ctx, OpConnect, d.address); err != nil {
			return nil, err
		}
	}
	if err := sleep(ctx, latency, nil); err != nil {
		return nil, err
	}

	c := &conn{t: t, dev: d, closed: make(chan struct{})}
	t.mu.Lock()
	if old := t.conns[d.address]; old != nil {
		t.mu.Unlock()
		return nil, fmt.Errorf("peripheral %s already connected", d.address)
	}
	t.conns[d.address] = c
	t.mu.Unlock()
	return c, nil
}

// device must be called with t.mu held.
func (t *Transport) device(address string) *device {
	for _, d := range t.devices {
		if d.address == strings.ToLower(address) {
			return d
		}
	}
	return nil
}

func sleep(ctx context.Context, d time.Duration, closed <-chan struct{}) error {
	if d <= 0 {
		return nil
	}
	select {
	case <-time.After(d):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-closed:
		return transport.ErrDisconnected
	}
}
