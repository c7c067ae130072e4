package sim

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vitaminmoo/gattx/internal/gatt"
	"github.com/vitaminmoo/gattx/internal/transport"
)

func loadSensorTag(t *testing.T, opts ...Option) *Transport {
	t.Helper()
	p, err := LoadProfile("testdata/sensortag.yaml")
	require.NoError(t, err)
	tr, err := New(p, opts...)
	require.NoError(t, err)
	return tr
}

func TestProfileBuild(t *testing.T) {
	tr := loadSensorTag(t)
	require.Len(t, tr.devices, 2)

	d := tr.devices[0]
	assert.Equal(t, "c4:be:84:70:2b:11", d.address)
	assert.Equal(t, "SensorTag", d.adv.LocalName)
	assert.Equal(t, []gatt.UUID{"180f", "181a"}, d.adv.ServiceUUIDs)
	require.Len(t, d.services, 3)
	assert.Equal(t, gatt.UUID("f000aa02-0451-4000-b000-000000000000"), d.services[2].chars[1].uuid)
	assert.Equal(t, []byte("SensorTag"), d.services[0].chars[0].value)
}

func TestProfileErrors(t *testing.T) {
	_, err := New(Profile{Peripherals: []PeripheralProfile{{Name: "no address"}}})
	assert.ErrorContains(t, err, "address is required")

	_, err = New(Profile{State: "sleepy"})
	assert.Error(t, err)

	_, err = New(Profile{Peripherals: []PeripheralProfile{{
		Address:  "aa",
		Services: []ServiceProfile{{UUID: "180f", Characteristics: []CharacteristicProfile{{UUID: "2a19", Properties: []string{"fly"}}}}},
	}}})
	assert.ErrorContains(t, err, "unknown property")
}

func TestScanDeliversSightings(t *testing.T) {
	tr := loadSensorTag(t)

	var mu sync.Mutex
	var seen []string
	done := make(chan struct{})
	tr.OnPeripheralDiscovered(func(s transport.Sighting) {
		mu.Lock()
		defer mu.Unlock()
		seen = append(seen, s.Address)
		if len(seen) == 2 {
			close(done)
		}
	})

	require.NoError(t, tr.StartScanning(context.Background()))
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("no sightings")
	}
	require.NoError(t, tr.StopScanning())
	assert.Equal(t, []string{"c4:be:84:70:2b:11", "d0:39:72:b7:af:66"}, seen)
	assert.Equal(t, 1, tr.Calls(OpStartScanning))
}

func TestScanRequiresPower(t *testing.T) {
	tr := loadSensorTag(t)
	tr.SetState(transport.StatePoweredOff)
	assert.Error(t, tr.StartScanning(context.Background()))
}

func TestReadWrite(t *testing.T) {
	tr := loadSensorTag(t)
	ctx := context.Background()

	c, err := tr.Connect(ctx, "C4:BE:84:70:2B:11")
	require.NoError(t, err)
	defer c.Disconnect()

	svcs, err := c.DiscoverServices(ctx, nil)
	require.NoError(t, err)
	require.Len(t, svcs, 3)

	chars, err := svcs[2].DiscoverCharacteristics(ctx, nil)
	require.NoError(t, err)
	require.Len(t, chars, 3)

	require.NoError(t, chars[1].Write(ctx, []byte{0x01}, true))
	v, err := chars[1].Read(ctx)
	require.NoError(t, err)
	assert.Equal(t, []byte{0x01}, v)

	_, err = chars[2].Read(ctx)
	assert.ErrorContains(t, err, "insufficient authentication")

	assert.ErrorContains(t, chars[0].Write(ctx, []byte{0x00}, true), "not permitted")

	filtered, err := c.DiscoverServices(ctx, []gatt.UUID{"180f"})
	require.NoError(t, err)
	require.Len(t, filtered, 1)
	assert.Equal(t, gatt.UUID("180f"), filtered[0].UUID())
}

func TestHookBlocksUntilDisconnect(t *testing.T) {
	entered := make(chan struct{})
	tr := loadSensorTag(t, WithHook(func(ctx context.Context, op Op, target string) error {
		if op == OpDiscoverServices {
			close(entered)
			<-ctx.Done()
			return ctx.Err()
		}
		return nil
	}))

	c, err := tr.Connect(context.Background(), "c4:be:84:70:2b:11")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	errc := make(chan error, 1)
	go func() {
		_, err := c.DiscoverServices(ctx, nil)
		errc <- err
	}()
	<-entered
	cancel()
	require.NoError(t, c.Disconnect())

	err = <-errc
	assert.True(t, errors.Is(err, context.Canceled))
	select {
	case <-c.Disconnected():
	default:
		t.Fatal("disconnected channel not closed")
	}
}

func TestPowerOffDropsConnections(t *testing.T) {
	tr := loadSensorTag(t)
	c, err := tr.Connect(context.Background(), "c4:be:84:70:2b:11")
	require.NoError(t, err)

	tr.SetState(transport.StatePoweredOff)
	<-c.Disconnected()

	_, err = c.DiscoverServices(context.Background(), nil)
	assert.ErrorIs(t, err, transport.ErrDisconnected)
}
