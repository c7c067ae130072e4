//go:build linux

// Package goble is a BLE backend that talks HCI directly through
// github.com/go-ble/ble. It needs CAP_NET_ADMIN and exclusive use of the
// controller, so BlueZ must not be managing hci0.
package goble

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/go-ble/ble"
	"github.com/go-ble/ble/linux"

	"github.com/vitaminmoo/gattx/internal/config"
	"github.com/vitaminmoo/gattx/internal/gatt"
	"github.com/vitaminmoo/gattx/internal/transport"
)

// txPowerAbsent is what the library reports when no TX power field was
// advertised.
const txPowerAbsent = 127

// newDevice opens the default HCI controller.
var newDevice = func() (*linux.Device, error) { return linux.NewDevice() }

type Adapter struct {
	mu      sync.Mutex
	dev     ble.Device
	onState func(transport.AdapterState)
	onSight func(transport.Sighting)
	stop    context.CancelFunc
	done    chan struct{}
}

var _ transport.Adapter = (*Adapter)(nil)

func New() *Adapter { return &Adapter{} }

func (a *Adapter) OnStateChange(cb func(transport.AdapterState)) {
	a.mu.Lock()
	a.onState = cb
	a.mu.Unlock()
}

func (a *Adapter) OnPeripheralDiscovered(cb func(transport.Sighting)) {
	a.mu.Lock()
	a.onSight = cb
	a.mu.Unlock()
}

func (a *Adapter) Enable() error {
	dev, err := newDevice()
	state := transport.StatePoweredOn
	if err != nil {
		state = transport.StateUnsupported
	}
	a.mu.Lock()
	if err == nil {
		a.dev = dev
	}
	cb := a.onState
	a.mu.Unlock()
	if cb != nil {
		go cb(state)
	}
	if err != nil {
		return fmt.Errorf("open hci device: %w", err)
	}
	return nil
}

func (a *Adapter) device() (ble.Device, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.dev == nil {
		return nil, fmt.Errorf("adapter not enabled")
	}
	return a.dev, nil
}

func (a *Adapter) StartScanning(ctx context.Context) error {
	dev, err := a.device()
	if err != nil {
		return err
	}
	a.mu.Lock()
	if a.done != nil {
		a.mu.Unlock()
		return fmt.Errorf("already scanning")
	}
	scanCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	a.stop, a.done = cancel, done
	a.mu.Unlock()

	go func() {
		defer close(done)
		err := dev.Scan(scanCtx, true, a.handle)
		if err != nil && scanCtx.Err() == nil {
			config.Log.WithError(err).Warn("goble: scan ended")
		}
	}()
	return nil
}

func (a *Adapter) StopScanning() error {
	a.mu.Lock()
	stop, done := a.stop, a.done
	a.stop, a.done = nil, nil
	a.mu.Unlock()
	if stop == nil {
		return nil
	}
	stop()
	<-done
	return nil
}

func (a *Adapter) handle(adv ble.Advertisement) {
	a.mu.Lock()
	cb := a.onSight
	a.mu.Unlock()
	if cb == nil {
		return
	}

	out := gatt.Advertisement{
		LocalName:        adv.LocalName(),
		ManufacturerData: adv.ManufacturerData(),
		Connectable:      adv.Connectable(),
	}
	if p := adv.TxPowerLevel(); p != txPowerAbsent {
		out.TxPower = &p
	}
	for _, u := range adv.Services() {
		if gu, err := gatt.ParseUUID(u.String()); err == nil {
			out.ServiceUUIDs = append(out.ServiceUUIDs, gu)
		}
	}
	for _, sd := range adv.ServiceData() {
		if gu, err := gatt.ParseUUID(sd.UUID.String()); err == nil {
			out.ServiceData = append(out.ServiceData, gatt.ServiceData{UUID: gu, Data: sd.Data})
		}
	}
	cb(transport.Sighting{
		Address:       strings.ToLower(adv.Addr().String()),
		RSSI:          adv.RSSI(),
		Advertisement: out,
	})
}

func (a *Adapter) Connect(ctx context.Context, address string) (transport.Conn, error) {
	dev, err := a.device()
	if err != nil {
		return nil, err
	}
	cln, err := dev.Dial(ctx, ble.NewAddr(address))
	if err != nil {
		return nil, err
	}
	return &conn{cln: cln, addr: strings.ToLower(address)}, nil
}

type conn struct {
	cln  ble.Client
	addr string
}

func (c *conn) Address() string { return c.addr }

func (c *conn) Disconnected() <-chan struct{} { return c.cln.Disconnected() }

func (c *conn) Disconnect() error { return c.cln.CancelConnection() }

func (c *conn) DiscoverServices(ctx context.Context, filter []gatt.UUID) ([]transport.Service, error) {
	uuids, err := toUUIDs(filter)
	if err != nil {
		return nil, err
	}
	svcs, err := transport.Await(ctx, c.cln.Disconnected(), func() ([]*ble.Service, error) {
		return c.cln.DiscoverServices(uuids)
	})
	if err != nil {
		return nil, err
	}
	out := make([]transport.Service, 0, len(svcs))
	for _, s := range svcs {
		u, err := gatt.ParseUUID(s.UUID.String())
		if err != nil {
			return nil, err
		}
		out = append(out, &service{c: c, s: s, uuid: u})
	}
	return out, nil
}

type service struct {
	c    *conn
	s    *ble.Service
	uuid gatt.UUID
}

func (s *service) UUID() gatt.UUID { return s.uuid }

func (s *service) DiscoverCharacteristics(ctx context.Context, filter []gatt.UUID) ([]transport.Characteristic, error) {
	uuids, err := toUUIDs(filter)
	if err != nil {
		return nil, err
	}
	chars, err := transport.Await(ctx, s.c.cln.Disconnected(), func() ([]*ble.Characteristic, error) {
		return s.c.cln.DiscoverCharacteristics(uuids, s.s)
	})
	if err != nil {
		return nil, err
	}
	out := make([]transport.Characteristic, 0, len(chars))
	for _, ch := range chars {
		u, err := gatt.ParseUUID(ch.UUID.String())
		if err != nil {
			return nil, err
		}
		out = append(out, &characteristic{c: s.c, ch: ch, uuid: u})
	}
	return out, nil
}

type characteristic struct {
	c    *conn
	ch   *ble.Characteristic
	uuid gatt.UUID
}

func (ch *characteristic) UUID() gatt.UUID { return ch.uuid }

// The library uses the on-air property bit layout.
func (ch *characteristic) Properties() gatt.Properties { return gatt.Properties(ch.ch.Property) }

func (ch *characteristic) DiscoverDescriptors(ctx context.Context) ([]transport.Descriptor, error) {
	descs, err := transport.Await(ctx, ch.c.cln.Disconnected(), func() ([]*ble.Descriptor, error) {
		return ch.c.cln.DiscoverDescriptors(nil, ch.ch)
	})
	if err != nil {
		return nil, err
	}
	out := make([]transport.Descriptor, 0, len(descs))
	for _, d := range descs {
		u, err := gatt.ParseUUID(d.UUID.String())
		if err != nil {
			return nil, err
		}
		out = append(out, &descriptor{c: ch.c, d: d, uuid: u})
	}
	return out, nil
}

func (ch *characteristic) Read(ctx context.Context) ([]byte, error) {
	return transport.Await(ctx, ch.c.cln.Disconnected(), func() ([]byte, error) {
		return ch.c.cln.ReadLongCharacteristic(ch.ch)
	})
}

func (ch *characteristic) Write(ctx context.Context, data []byte, requireAck bool) error {
	_, err := transport.Await(ctx, ch.c.cln.Disconnected(), func() (struct{}, error) {
		return struct{}{}, ch.c.cln.WriteCharacteristic(ch.ch, data, !requireAck)
	})
	return err
}

type descriptor struct {
	c    *conn
	d    *ble.Descriptor
	uuid gatt.UUID
}

func (d *descriptor) UUID() gatt.UUID { return d.uuid }

func (d *descriptor) Read(ctx context.Context) ([]byte, error) {
	return transport.Await(ctx, d.c.cln.Disconnected(), func() ([]byte, error) {
		return d.c.cln.ReadDescriptor(d.d)
	})
}

func toUUIDs(filter []gatt.UUID) ([]ble.UUID, error) {
	if len(filter) == 0 {
		return nil, nil
	}
	out := make([]ble.UUID, 0, len(filter))
	for _, u := range filter {
		bu, err := ble.Parse(u.Full())
		if err != nil {
			return nil, err
		}
		out = append(out, bu)
	}
	return out, nil
}
