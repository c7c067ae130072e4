//go:build !linux

package goble

import (
	"context"
	"errors"

	"github.com/vitaminmoo/gattx/internal/transport"
)

var errUnsupported = errors.New("the hci backend is only available on linux")

// Adapter reports the backend as unsupported off Linux.
type Adapter struct {
	onState func(transport.AdapterState)
}

var _ transport.Adapter = (*Adapter)(nil)

func New() *Adapter { return &Adapter{} }

func (a *Adapter) OnStateChange(cb func(transport.AdapterState)) { a.onState = cb }

func (a *Adapter) OnPeripheralDiscovered(func(transport.Sighting)) {}

func (a *Adapter) Enable() error {
	if a.onState != nil {
		go a.onState(transport.StateUnsupported)
	}
	return errUnsupported
}

func (a *Adapter) StartScanning(context.Context) error { return errUnsupported }

func (a *Adapter) StopScanning() error { return nil }

func (a *Adapter) Connect(context.Context, string) (transport.Conn, error) {
	return nil, errUnsupported
}
