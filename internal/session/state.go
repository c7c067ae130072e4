package session

import (
	"errors"
	"fmt"

	"github.com/vitaminmoo/gattx/internal/access"
	"github.com/vitaminmoo/gattx/internal/transport"
)

// State is the session's position in its lifecycle.
type State int

const (
	AdapterNotReady State = iota
	Scanning
	DeviceListReady
	Connecting
	Connected
	Disconnecting
	Disconnected
)

var stateNames = [...]string{
	AdapterNotReady: "adapter not ready",
	Scanning:        "scanning",
	DeviceListReady: "device list ready",
	Connecting:      "connecting",
	Connected:       "connected",
	Disconnecting:   "disconnecting",
	Disconnected:    "disconnected",
}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return fmt.Sprintf("state(%d)", int(s))
	}
	return stateNames[s]
}

// ErrDisconnected is returned by operations whose connection went away while
// they ran. Their results are discarded.
var ErrDisconnected = transport.ErrDisconnected

// ErrNoService is returned by Execute before a service is selected.
var ErrNoService = errors.New("no service selected")

// StateError is an operation attempted in a state that forbids it.
type StateError struct {
	Op    string
	State State
}

func (e *StateError) Error() string {
	return fmt.Sprintf("cannot %s while %s", e.Op, e.State)
}

// ErrorKind classifies the error for the presentation layer.
func (e *StateError) ErrorKind() access.ErrorKind { return access.KindState }
