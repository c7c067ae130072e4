// Package transport defines the capabilities the explorer needs from a BLE
// stack. Backends live in subpackages.
package transport

import (
	"context"
	"errors"
	"fmt"

	"github.com/vitaminmoo/gattx/internal/gatt"
)

// AdapterState is the power state reported by the local adapter.
type AdapterState int

const (
	StateUnknown AdapterState = iota
	StatePoweredOn
	StatePoweredOff
	StateUnsupported
)

func (s AdapterState) String() string {
	switch s {
	case StatePoweredOn:
		return "poweredOn"
	case StatePoweredOff:
		return "poweredOff"
	case StateUnsupported:
		return "unsupported"
	}
	return "unknown"
}

// ParseAdapterState is the inverse of AdapterState.String.
func ParseAdapterState(s string) (AdapterState, error) {
	for _, st := range []AdapterState{StateUnknown, StatePoweredOn, StatePoweredOff, StateUnsupported} {
		if st.String() == s {
			return st, nil
		}
	}
	return StateUnknown, fmt.Errorf("unknown adapter state %q", s)
}

// Sighting is one advertisement received while scanning.
type Sighting struct {
	Address       string
	RSSI          int
	Advertisement gatt.Advertisement
}

// Adapter is the local BLE central. Callbacks may be invoked from any
// goroutine.
type Adapter interface {
	// Enable powers up the stack; the resulting state is delivered through
	// the OnStateChange callback.
	Enable() error
	OnStateChange(func(AdapterState))
	OnPeripheralDiscovered(func(Sighting))
	StartScanning(ctx context.Context) error
	StopScanning() error
	Connect(ctx context.Context, address string) (Conn, error)
}

// Conn is an open connection to one peripheral. Implementations serialise
// requests internally; callers still issue one request at a time.
type Conn interface {
	Address() string
	DiscoverServices(ctx context.Context, filter []gatt.UUID) ([]Service, error)
	Disconnect() error
	// Disconnected is closed when the link drops for any reason.
	Disconnected() <-chan struct{}
}

// Service is a remote primary service.
type Service interface {
	UUID() gatt.UUID
	DiscoverCharacteristics(ctx context.Context, filter []gatt.UUID) ([]Characteristic, error)
}

// Characteristic is a remote characteristic.
type Characteristic interface {
	UUID() gatt.UUID
	Properties() gatt.Properties
	DiscoverDescriptors(ctx context.Context) ([]Descriptor, error)
	Read(ctx context.Context) ([]byte, error)
	Write(ctx context.Context, data []byte, requireAck bool) error
}

// Descriptor is a remote characteristic descriptor.
type Descriptor interface {
	UUID() gatt.UUID
	Read(ctx context.Context) ([]byte, error)
}

// ErrDisconnected is returned by backends for requests on a dropped link.
var ErrDisconnected = errors.New("link disconnected")

// Error is a failure below the explorer: the radio, the OS stack, or the
// peripheral rejecting a request.
type Error struct {
	Op     string
	Target string
	Err    error
}

func (e *Error) Error() string {
	if e.Target == "" {
		return fmt.Sprintf("transport: %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("transport: %s %s: %v", e.Op, e.Target, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Wrap tags err as a transport failure. Nil stays nil and errors that are
// already tagged are returned unchanged.
func Wrap(op, target string, err error) error {
	if err == nil {
		return nil
	}
	var te *Error
	if errors.As(err, &te) {
		return err
	}
	return &Error{Op: op, Target: target, Err: err}
}
