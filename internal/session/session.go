// Package session owns the single adapter, scan, connection and topology of a
// gattx process and decides which operations are legal when.
package session

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/sirupsen/logrus"

	"github.com/vitaminmoo/gattx/internal/access"
	"github.com/vitaminmoo/gattx/internal/config"
	"github.com/vitaminmoo/gattx/internal/explore"
	"github.com/vitaminmoo/gattx/internal/gatt"
	"github.com/vitaminmoo/gattx/internal/transport"
)

// Options configures a Session.
type Options struct {
	Explore        explore.Options
	ConnectTimeout time.Duration
	RequestTimeout time.Duration
	// OnEvent receives state changes, sightings and discovery records. It is
	// never called with the session lock held.
	OnEvent func(Event)
}

// OptionsFromConfig maps the config file onto session options.
func OptionsFromConfig(f *config.File) Options {
	return Options{
		Explore: explore.Options{
			EagerRead:          f.Explore.EagerRead,
			PresentationFormat: f.Explore.PresentationFormat,
			DefaultFormats:     f.Explore.DefaultFormats,
		},
		ConnectTimeout: f.Timeouts.Connect,
		RequestTimeout: f.Timeouts.Request,
	}
}

// Session is the one coordinator of adapter, scan and connection state.
// All state lives behind mu; opMu keeps a single request outstanding on the
// connection. A published topology is never modified: operations work on a
// clone and publish it under mu when they finish.
type Session struct {
	adapter transport.Adapter
	engine  *explore.Engine
	opts    Options

	opMu sync.Mutex

	mu           sync.Mutex
	state        State
	adapterState transport.AdapterState
	changed      chan struct{}
	pending      []Event

	devices    []*gatt.Peripheral
	scanCancel context.CancelFunc

	conn       transport.Conn
	connCtx    context.Context
	connCancel context.CancelFunc
	topo       *explore.Topology
	cursor     int
}

// New returns a session over adapter. Call Start before anything else.
func New(adapter transport.Adapter, opts Options) *Session {
	s := &Session{
		adapter: adapter,
		opts:    opts,
		state:   AdapterNotReady,
		changed: make(chan struct{}),
		cursor:  -1,
	}
	eopts := opts.Explore
	user := eopts.OnRecord
	eopts.OnRecord = func(r explore.Record) {
		if user != nil {
			user(r)
		}
		s.emit(Event{Kind: EventRecord, Record: r})
	}
	s.engine = explore.New(eopts)
	return s
}

// Start registers the transport callbacks and enables the adapter. The
// session leaves AdapterNotReady on the first powered-on report.
func (s *Session) Start() error {
	s.adapter.OnStateChange(s.onAdapterState)
	s.adapter.OnPeripheralDiscovered(s.onSighting)
	if err := s.adapter.Enable(); err != nil {
		return transport.Wrap("enable", "", err)
	}
	return nil
}

// WaitReady blocks until the adapter is powered on.
func (s *Session) WaitReady(ctx context.Context) error {
	for {
		s.mu.Lock()
		if s.adapterState == transport.StatePoweredOn {
			s.mu.Unlock()
			return nil
		}
		ch := s.changed
		s.mu.Unlock()
		select {
		case <-ch:
		case <-ctx.Done():
			return fmt.Errorf("waiting for adapter: %w", ctx.Err())
		}
	}
}

// State returns the current state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// AdapterState returns the last reported adapter state.
func (s *Session) AdapterState() transport.AdapterState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.adapterState
}

// Devices returns the peripherals seen by the last scan, in sighting order.
func (s *Session) Devices() []gatt.Peripheral {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]gatt.Peripheral, len(s.devices))
	for i, p := range s.devices {
		out[i] = *p
	}
	return out
}

// Topology returns the connected peripheral's topology, or nil. The result is
// a snapshot; later operations publish a new one instead of changing it.
func (s *Session) Topology() *explore.Topology {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.topo
}

// Cursor returns the selected service index, -1 when none is selected.
func (s *Session) Cursor() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cursor
}

func (s *Session) onAdapterState(st transport.AdapterState) {
	s.mu.Lock()
	s.adapterState = st
	s.broadcast()
	log := config.Log.WithField("adapter", st)

	var drop transport.Conn
	if st == transport.StatePoweredOn {
		if s.state == AdapterNotReady {
			s.setState(Disconnected)
		}
	} else {
		if s.scanCancel != nil {
			s.scanCancel()
		}
		drop = s.teardown()
		s.setState(AdapterNotReady)
	}
	s.unlock()

	log.Info("adapter state changed")
	if drop != nil {
		_ = drop.Disconnect()
	}
}

func (s *Session) onSighting(sg transport.Sighting) {
	s.mu.Lock()
	if s.state != Scanning {
		s.mu.Unlock()
		return
	}
	now := time.Now()
	addr := strings.ToLower(sg.Address)
	var p *gatt.Peripheral
	for _, d := range s.devices {
		if d.Address == addr {
			p = d
			break
		}
	}
	if p == nil {
		p = &gatt.Peripheral{Index: len(s.devices), Address: addr, FirstSeen: now}
		s.devices = append(s.devices, p)
		config.Log.WithFields(logrus.Fields{"peripheral": addr, "rssi": sg.RSSI}).Debug("peripheral discovered")
	}
	p.RSSI = sg.RSSI
	p.Advertisement = mergeAdvertisement(p.Advertisement, sg.Advertisement)
	p.LastSeen = now
	p.Sightings++
	s.pending = append(s.pending, Event{Kind: EventPeripheral, Peripheral: *p})
	s.unlock()
}

// mergeAdvertisement keeps fields a scan response left out. Scan responses
// often carry the name while the advertisement carries the data.
func mergeAdvertisement(old, cur gatt.Advertisement) gatt.Advertisement {
	if cur.LocalName == "" {
		cur.LocalName = old.LocalName
	}
	if cur.TxPower == nil {
		cur.TxPower = old.TxPower
	}
	if len(cur.ServiceUUIDs) == 0 {
		cur.ServiceUUIDs = old.ServiceUUIDs
	}
	if len(cur.ManufacturerData) == 0 {
		cur.ManufacturerData = old.ManufacturerData
	}
	if len(cur.ServiceData) == 0 {
		cur.ServiceData = old.ServiceData
	}
	return cur
}

// Scan discovers peripherals for d, or until ctx ends, then stops scanning
// and moves to DeviceListReady. The previous device list is replaced.
func (s *Session) Scan(ctx context.Context, d time.Duration) ([]gatt.Peripheral, error) {
	s.mu.Lock()
	switch s.state {
	case Disconnected, DeviceListReady:
	default:
		st := s.state
		s.mu.Unlock()
		return nil, &StateError{Op: "scan", State: st}
	}
	scanCtx, cancel := context.WithCancel(context.Background())
	s.scanCancel = cancel
	s.devices = nil
	s.setState(Scanning)
	s.unlock()
	defer cancel()

	config.Log.WithField("duration", d).Info("scanning")
	if err := s.adapter.StartScanning(scanCtx); err != nil {
		s.mu.Lock()
		if s.state == Scanning {
			s.setState(Disconnected)
		}
		s.scanCancel = nil
		s.unlock()
		return nil, transport.Wrap("start scanning", "", err)
	}

	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
	case <-ctx.Done():
	case <-scanCtx.Done():
	}
	stopErr := s.adapter.StopScanning()

	s.mu.Lock()
	s.scanCancel = nil
	if s.state != Scanning {
		// powered off mid-scan
		st := s.state
		s.unlock()
		return nil, &StateError{Op: "scan", State: st}
	}
	s.setState(DeviceListReady)
	s.unlock()

	devices := s.Devices()
	config.Log.WithField("count", len(devices)).Info("scan finished")
	if stopErr != nil {
		return devices, transport.Wrap("stop scanning", "", stopErr)
	}
	return devices, nil
}

// Resolve maps a device-list index or an address onto an address.
func (s *Session) Resolve(target string) (string, error) {
	target = strings.TrimSpace(target)
	if i, err := strconv.Atoi(target); err == nil {
		s.mu.Lock()
		defer s.mu.Unlock()
		if i < 0 || i >= len(s.devices) {
			return "", &access.IndexOutOfRangeError{Index: i, Max: len(s.devices) - 1}
		}
		return s.devices[i].Address, nil
	}
	if target == "" {
		return "", errors.New("no peripheral given")
	}
	return strings.ToLower(target), nil
}

// Connect opens a connection to target (address or device-list index) and
// discovers its services. While connected, Connect returns the cached
// topology for any target without issuing transport requests.
func (s *Session) Connect(ctx context.Context, target string) (*explore.Topology, error) {
	addr, err := s.Resolve(target)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	switch s.state {
	case Connected:
		topo := s.topo
		if topo.Peripheral.Address != addr {
			config.Log.WithFields(logrus.Fields{
				"peripheral": topo.Peripheral.Address,
				"requested":  addr,
			}).Warn("already connected, reusing the current peripheral")
		}
		s.mu.Unlock()
		return topo, nil
	case Disconnected, DeviceListReady:
	default:
		st := s.state
		s.mu.Unlock()
		return nil, &StateError{Op: "connect", State: st}
	}
	prev := s.state
	periph := gatt.Peripheral{Index: -1, Address: addr}
	for _, d := range s.devices {
		if d.Address == addr {
			periph = *d
		}
	}
	s.setState(Connecting)
	s.unlock()

	log := config.Log.WithField("peripheral", addr)
	log.Info("connecting")

	cctx := ctx
	if s.opts.ConnectTimeout > 0 {
		var cancel context.CancelFunc
		cctx, cancel = context.WithTimeout(ctx, s.opts.ConnectTimeout)
		defer cancel()
	}
	conn, err := s.adapter.Connect(cctx, addr)
	if err != nil {
		s.mu.Lock()
		if s.state == Connecting {
			s.setState(prev)
		}
		s.unlock()
		return nil, transport.Wrap("connect", addr, err)
	}

	s.mu.Lock()
	if s.state != Connecting {
		st := s.state
		s.unlock()
		_ = conn.Disconnect()
		return nil, &StateError{Op: "connect", State: st}
	}
	id := ulid.Make().String()
	s.conn = withRequestTimeout(conn, s.opts.RequestTimeout)
	s.connCtx, s.connCancel = context.WithCancel(context.Background())
	s.topo = &explore.Topology{Session: id, Peripheral: periph, Services: []*explore.Service{}}
	s.cursor = -1
	s.setState(Connected)
	go s.watch(conn, s.connCtx)
	s.unlock()
	log.WithField("conn", id).Info("connected")

	err = s.run(ctx, "discover services", func(ctx context.Context, c transport.Conn, t *explore.Topology) error {
		return s.engine.DiscoverServices(ctx, c, t)
	})
	if err != nil {
		if !errors.Is(err, ErrDisconnected) {
			// Nothing to navigate without services: fall back to idle.
			_ = s.Disconnect()
		}
		return nil, err
	}
	return s.Topology(), nil
}

// watch turns a dropped link into a transition to Disconnected.
func (s *Session) watch(conn transport.Conn, connCtx context.Context) {
	select {
	case <-connCtx.Done():
		return
	case <-conn.Disconnected():
	}
	s.mu.Lock()
	if s.connCtx != connCtx {
		s.mu.Unlock()
		return
	}
	config.Log.WithField("peripheral", conn.Address()).Warn("link lost")
	s.teardown()
	if s.state != AdapterNotReady {
		s.setState(Disconnected)
	}
	s.unlock()
}

// teardown discards the connection and its topology. Callers hold mu and
// disconnect the returned conn after unlocking.
func (s *Session) teardown() transport.Conn {
	conn := s.conn
	if s.connCancel != nil {
		s.connCancel()
	}
	s.conn, s.connCtx, s.connCancel = nil, nil, nil
	s.topo = nil
	s.cursor = -1
	return conn
}

// Disconnect closes the connection and destroys the topology. Any request in
// flight fails with ErrDisconnected.
func (s *Session) Disconnect() error {
	s.mu.Lock()
	switch s.state {
	case Connected, Connecting:
	default:
		st := s.state
		s.mu.Unlock()
		return &StateError{Op: "disconnect", State: st}
	}
	s.setState(Disconnecting)
	conn := s.teardown()
	s.unlock()

	var err error
	if conn != nil {
		config.Log.WithField("peripheral", conn.Address()).Info("disconnecting")
		err = conn.Disconnect()
	}

	s.mu.Lock()
	if s.state == Disconnecting {
		s.setState(Disconnected)
	}
	s.unlock()
	if err != nil {
		return transport.Wrap("disconnect", conn.Address(), err)
	}
	return nil
}

// run executes fn as the single outstanding operation on the connection.
// If the connection goes away meanwhile the result is replaced by
// ErrDisconnected.
func (s *Session) run(ctx context.Context, op string, fn func(context.Context, transport.Conn, *explore.Topology) error) error {
	s.opMu.Lock()
	defer s.opMu.Unlock()

	s.mu.Lock()
	if s.state != Connected {
		st := s.state
		s.mu.Unlock()
		return &StateError{Op: op, State: st}
	}
	conn, topo, connCtx := s.conn, s.topo.Clone(), s.connCtx
	s.mu.Unlock()

	opCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	stop := context.AfterFunc(connCtx, cancel)
	defer stop()

	err := fn(opCtx, conn, topo)

	s.mu.Lock()
	if s.connCtx != connCtx || connCtx.Err() != nil {
		s.mu.Unlock()
		if err == nil {
			err = errors.New("result discarded")
		}
		return fmt.Errorf("%s: %w: %w", op, ErrDisconnected, err)
	}
	s.topo = topo
	s.mu.Unlock()
	return err
}

// SelectService moves the cursor to service index and discovers its
// characteristics the first time. Later selections reuse the cache.
func (s *Session) SelectService(ctx context.Context, index int) (*explore.Service, error) {
	s.mu.Lock()
	if s.state == Connected {
		if svc := s.topo.Service(index); svc != nil && svc.Discovered {
			s.cursor = index
			s.mu.Unlock()
			return svc, nil
		}
	}
	s.mu.Unlock()

	var svc *explore.Service
	err := s.run(ctx, "select service", func(ctx context.Context, _ transport.Conn, t *explore.Topology) error {
		svc = t.Service(index)
		if svc == nil {
			return &access.IndexOutOfRangeError{Index: index, Max: len(t.Services) - 1}
		}
		if svc.Discovered {
			return nil
		}
		return s.engine.DiscoverCharacteristics(ctx, t, svc)
	})
	if svc != nil && !errors.Is(err, ErrDisconnected) {
		s.mu.Lock()
		if s.topo != nil {
			s.cursor = index
		}
		s.mu.Unlock()
	}
	if err != nil {
		return nil, err
	}
	return svc, nil
}

// Back clears the service cursor.
func (s *Session) Back() {
	s.mu.Lock()
	s.cursor = -1
	s.mu.Unlock()
}

// Rediscover replaces the whole topology: services, and the characteristics
// of every service that had been explored before.
func (s *Session) Rediscover(ctx context.Context) (*explore.Topology, error) {
	err := s.run(ctx, "rediscover", func(ctx context.Context, c transport.Conn, t *explore.Topology) error {
		explored := map[gatt.UUID]bool{}
		for _, svc := range t.Services {
			if svc.Discovered {
				explored[svc.UUID] = true
			}
		}
		if err := s.engine.DiscoverServices(ctx, c, t); err != nil {
			return err
		}
		var errs []error
		for _, svc := range t.Services {
			if !explored[svc.UUID] {
				continue
			}
			if err := s.engine.DiscoverCharacteristics(ctx, t, svc); err != nil {
				errs = append(errs, err)
			}
		}
		return errors.Join(errs...)
	})
	s.mu.Lock()
	if s.topo != nil && s.cursor >= len(s.topo.Services) {
		s.cursor = -1
	}
	s.mu.Unlock()
	return s.Topology(), err
}

// Walk explores every service of the connected peripheral.
func (s *Session) Walk(ctx context.Context) (*explore.Topology, error) {
	err := s.run(ctx, "walk", func(ctx context.Context, c transport.Conn, t *explore.Topology) error {
		return s.engine.Walk(ctx, c, t)
	})
	return s.Topology(), err
}

// Execute runs an access command against the selected service.
func (s *Session) Execute(ctx context.Context, text string) access.Result {
	var res access.Result
	err := s.run(ctx, "execute", func(ctx context.Context, _ transport.Conn, t *explore.Topology) error {
		s.mu.Lock()
		cursor := s.cursor
		s.mu.Unlock()
		svc := t.Service(cursor)
		if svc == nil {
			return ErrNoService
		}
		res = access.Run(ctx, svc.Characteristics, text)
		return nil
	})
	if err != nil {
		res = access.Result{Input: text, Err: err, Error: err.Error(), Kind: access.Kind(err)}
		if errors.Is(err, ErrNoService) {
			res.Kind = access.KindState
		}
	}
	return res
}

func (s *Session) setState(st State) {
	if s.state == st {
		return
	}
	config.Log.WithFields(logrus.Fields{"from": s.state, "to": st}).Debug("session state")
	s.state = st
	s.broadcast()
	s.pending = append(s.pending, Event{Kind: EventState, State: st})
}

// broadcast wakes WaitReady callers. Called with mu held.
func (s *Session) broadcast() {
	close(s.changed)
	s.changed = make(chan struct{})
}

// unlock releases mu and then delivers the events queued while it was held.
func (s *Session) unlock() {
	events := s.pending
	s.pending = nil
	s.mu.Unlock()
	for _, e := range events {
		s.emit(e)
	}
}

func (s *Session) emit(e Event) {
	if s.opts.OnEvent != nil {
		s.opts.OnEvent(e)
	}
}
