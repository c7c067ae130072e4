package session

import (
	"github.com/vitaminmoo/gattx/internal/explore"
	"github.com/vitaminmoo/gattx/internal/gatt"
)

// EventKind says which field of an Event is set.
type EventKind int

const (
	EventState EventKind = iota
	EventPeripheral
	EventRecord
)

// Event is a notification for the presentation layer.
type Event struct {
	Kind       EventKind
	State      State
	Peripheral gatt.Peripheral
	Record     explore.Record
}
