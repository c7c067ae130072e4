//go:build linux

package goble

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/go-ble/ble/linux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vitaminmoo/gattx/internal/transport"
)

func TestEnableWithoutController(t *testing.T) {
	orig := newDevice
	t.Cleanup(func() { newDevice = orig })
	newDevice = func() (*linux.Device, error) { return nil, errors.New("no hci0") }

	a := New()
	states := make(chan transport.AdapterState, 1)
	a.OnStateChange(func(s transport.AdapterState) { states <- s })

	err := a.Enable()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no hci0")

	select {
	case s := <-states:
		assert.Equal(t, transport.StateUnsupported, s)
	case <-time.After(time.Second):
		t.Fatal("no state reported")
	}

	_, err = a.device()
	assert.Error(t, err)
	assert.Error(t, a.StartScanning(context.Background()))
}
