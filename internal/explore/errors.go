package explore

import (
	"fmt"
	"strings"

	"github.com/vitaminmoo/gattx/internal/gatt"
)

// Error reports where a traversal stopped. Index fields are -1 when the
// failure happened above that level.
type Error struct {
	Peripheral          string
	Service             gatt.UUID
	ServiceIndex        int
	Characteristic      gatt.UUID
	CharacteristicIndex int
	Step                string
	Err                 error
}

func (e *Error) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "explore %s", e.Peripheral)
	if e.ServiceIndex >= 0 {
		fmt.Fprintf(&b, ": service %d (%s)", e.ServiceIndex, e.Service)
	}
	if e.CharacteristicIndex >= 0 {
		fmt.Fprintf(&b, ": characteristic %d (%s)", e.CharacteristicIndex, e.Characteristic)
	}
	fmt.Fprintf(&b, ": %s: %v", e.Step, e.Err)
	return b.String()
}

func (e *Error) Unwrap() error { return e.Err }
