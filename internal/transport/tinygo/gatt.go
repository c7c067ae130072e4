package tinygo

import (
	"context"
	"sync"

	"tinygo.org/x/bluetooth"

	"github.com/vitaminmoo/gattx/internal/gatt"
	"github.com/vitaminmoo/gattx/internal/transport"
)

type conn struct {
	dev  bluetooth.Device
	addr string
	once sync.Once

	closed chan struct{}
}

func (c *conn) close() { c.once.Do(func() { close(c.closed) }) }

func (c *conn) Address() string { return c.addr }

func (c *conn) Disconnected() <-chan struct{} { return c.closed }

func (c *conn) Disconnect() error {
	err := c.dev.Disconnect()
	c.close()
	return err
}

func (c *conn) DiscoverServices(ctx context.Context, filter []gatt.UUID) ([]transport.Service, error) {
	uuids, err := toUUIDs(filter)
	if err != nil {
		return nil, err
	}
	svcs, err := transport.Await(ctx, c.closed, func() ([]bluetooth.DeviceService, error) {
		return c.dev.DiscoverServices(uuids)
	})
	if err != nil {
		return nil, err
	}
	out := make([]transport.Service, 0, len(svcs))
	for _, s := range svcs {
		u, err := gatt.ParseUUID(s.UUID().String())
		if err != nil {
			return nil, err
		}
		out = append(out, &service{c: c, s: s, uuid: u})
	}
	return out, nil
}

type service struct {
	c    *conn
	s    bluetooth.DeviceService
	uuid gatt.UUID
}

func (s *service) UUID() gatt.UUID { return s.uuid }

func (s *service) DiscoverCharacteristics(ctx context.Context, filter []gatt.UUID) ([]transport.Characteristic, error) {
	uuids, err := toUUIDs(filter)
	if err != nil {
		return nil, err
	}
	chars, err := transport.Await(ctx, s.c.closed, func() ([]bluetooth.DeviceCharacteristic, error) {
		return s.s.DiscoverCharacteristics(uuids)
	})
	if err != nil {
		return nil, err
	}
	out := make([]transport.Characteristic, 0, len(chars))
	for _, ch := range chars {
		u, err := gatt.ParseUUID(ch.UUID().String())
		if err != nil {
			return nil, err
		}
		out = append(out, &characteristic{c: s.c, ch: ch, uuid: u})
	}
	return out, nil
}

type characteristic struct {
	c    *conn
	ch   bluetooth.DeviceCharacteristic
	uuid gatt.UUID
}

func (ch *characteristic) UUID() gatt.UUID { return ch.uuid }

// Properties is not exposed uniformly by the library; every characteristic
// is offered for reading and writing and the peripheral has the last word.
func (ch *characteristic) Properties() gatt.Properties {
	return gatt.PropRead | gatt.PropWrite
}

// DiscoverDescriptors returns none: the library does not expose descriptor
// discovery on the central side.
func (ch *characteristic) DiscoverDescriptors(ctx context.Context) ([]transport.Descriptor, error) {
	return []transport.Descriptor{}, ctx.Err()
}

func (ch *characteristic) Read(ctx context.Context) ([]byte, error) {
	return transport.Await(ctx, ch.c.closed, func() ([]byte, error) {
		buf := make([]byte, readBufferSize)
		n, err := ch.ch.Read(buf)
		if err != nil {
			return nil, err
		}
		return buf[:n], nil
	})
}

func (ch *characteristic) Write(ctx context.Context, data []byte, requireAck bool) error {
	_, err := transport.Await(ctx, ch.c.closed, func() (int, error) {
		if requireAck {
			return ch.ch.Write(data)
		}
		return ch.ch.WriteWithoutResponse(data)
	})
	return err
}

func toUUIDs(filter []gatt.UUID) ([]bluetooth.UUID, error) {
	if len(filter) == 0 {
		return nil, nil
	}
	out := make([]bluetooth.UUID, 0, len(filter))
	for _, u := range filter {
		bu, err := bluetooth.ParseUUID(u.Full())
		if err != nil {
			return nil, err
		}
		out = append(out, bu)
	}
	return out, nil
}
