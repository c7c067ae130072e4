// Package tinygo is the default BLE backend, built on tinygo.org/x/bluetooth
// (BlueZ over D-Bus on Linux, CoreBluetooth on macOS, WinRT on Windows).
package tinygo

import (
	"context"
	"encoding/binary"
	"fmt"
	"strings"
	"sync"

	"tinygo.org/x/bluetooth"

	"github.com/vitaminmoo/gattx/internal/config"
	"github.com/vitaminmoo/gattx/internal/gatt"
	"github.com/vitaminmoo/gattx/internal/transport"
)

// readBufferSize covers the largest attribute value ATT allows.
const readBufferSize = 512

// Adapter wraps the platform default adapter.
type Adapter struct {
	bt *bluetooth.Adapter

	mu       sync.Mutex
	onState  func(transport.AdapterState)
	onSight  func(transport.Sighting)
	seen     map[string]bluetooth.Address
	conns    map[string]*conn
	scanDone chan struct{}
}

var _ transport.Adapter = (*Adapter)(nil)

// New returns an adapter over bluetooth.DefaultAdapter.
func New() *Adapter {
	return &Adapter{
		bt:    bluetooth.DefaultAdapter,
		seen:  make(map[string]bluetooth.Address),
		conns: make(map[string]*conn),
	}
}

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

// Enable powers up the stack. The library has no power-state callback, so
// the result of Enable is the only state report.
func (a *Adapter) Enable() error {
	a.bt.SetConnectHandler(func(device bluetooth.Device, connected bool) {
		if connected {
			return
		}
		addr := strings.ToLower(device.Address.String())
		a.mu.Lock()
		c := a.conns[addr]
		delete(a.conns, addr)
		a.mu.Unlock()
		if c != nil {
			config.Debugf("tinygo: %s disconnected", addr)
			c.close()
		}
	})

	err := a.bt.Enable()
	state := transport.StatePoweredOn
	if err != nil {
		state = transport.StateUnsupported
	}
	a.mu.Lock()
	cb := a.onState
	a.mu.Unlock()
	if cb != nil {
		go cb(state)
	}
	if err != nil {
		return fmt.Errorf("enable bluetooth: %w", err)
	}
	return nil
}

func (a *Adapter) StartScanning(ctx context.Context) error {
	a.mu.Lock()
	if a.scanDone != nil {
		a.mu.Unlock()
		return fmt.Errorf("already scanning")
	}
	done := make(chan struct{})
	a.scanDone = done
	a.mu.Unlock()

	// Scan blocks until StopScan.
	go func() {
		defer close(done)
		err := a.bt.Scan(func(_ *bluetooth.Adapter, result bluetooth.ScanResult) {
			a.handle(result)
		})
		if err != nil {
			config.Log.WithError(err).Warn("tinygo: scan ended")
		}
	}()
	context.AfterFunc(ctx, func() { _ = a.StopScanning() })
	return nil
}

func (a *Adapter) StopScanning() error {
	a.mu.Lock()
	done := a.scanDone
	a.scanDone = nil
	a.mu.Unlock()
	if done == nil {
		return nil
	}
	err := a.bt.StopScan()
	<-done
	return err
}

func (a *Adapter) handle(r bluetooth.ScanResult) {
	addr := strings.ToLower(r.Address.String())
	a.mu.Lock()
	a.seen[addr] = r.Address
	cb := a.onSight
	a.mu.Unlock()
	if cb == nil {
		return
	}

	adv := gatt.Advertisement{LocalName: r.LocalName(), Connectable: true}
	for _, md := range r.ManufacturerData() {
		// Keep the on-air layout: company identifier first, little-endian.
		adv.ManufacturerData = binary.LittleEndian.AppendUint16(adv.ManufacturerData, md.CompanyID)
		adv.ManufacturerData = append(adv.ManufacturerData, md.Data...)
	}
	for _, sd := range r.ServiceData() {
		u, err := gatt.ParseUUID(sd.UUID.String())
		if err != nil {
			continue
		}
		adv.ServiceData = append(adv.ServiceData, gatt.ServiceData{UUID: u, Data: sd.Data})
	}
	cb(transport.Sighting{Address: addr, RSSI: int(r.RSSI), Advertisement: adv})
}

// Connect dials a peripheral seen by an earlier scan. Platform address types
// differ, so an address alone is not enough to connect.
func (a *Adapter) Connect(ctx context.Context, address string) (transport.Conn, error) {
	addr := strings.ToLower(address)
	a.mu.Lock()
	target, ok := a.seen[addr]
	a.mu.Unlock()
	if !ok {
		return nil, fmt.Errorf("peripheral %s was not seen while scanning", address)
	}

	type result struct {
		dev bluetooth.Device
		err error
	}
	done := make(chan result, 1)
	go func() {
		dev, err := a.bt.Connect(target, bluetooth.ConnectionParams{})
		done <- result{dev, err}
	}()

	var r result
	select {
	case r = <-done:
	case <-ctx.Done():
		// Tear down a connection that completes after we gave up.
		go func() {
			if r := <-done; r.err == nil {
				_ = r.dev.Disconnect()
			}
		}()
		return nil, ctx.Err()
	}
	if r.err != nil {
		return nil, r.err
	}

	c := &conn{dev: r.dev, addr: addr, closed: make(chan struct{})}
	a.mu.Lock()
	a.conns[addr] = c
	a.mu.Unlock()
	return c, nil
}
