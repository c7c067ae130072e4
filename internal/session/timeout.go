package session

import (
	"context"
	"time"

	"github.com/vitaminmoo/gattx/internal/gatt"
	"github.com/vitaminmoo/gattx/internal/transport"
)

// The wrappers below bound every GATT request on a connection by the
// configured request timeout.

type timeoutConn struct {
	transport.Conn
	d time.Duration
}

func withRequestTimeout(c transport.Conn, d time.Duration) transport.Conn {
	if d <= 0 {
		return c
	}
	return &timeoutConn{Conn: c, d: d}
}

func (c *timeoutConn) DiscoverServices(ctx context.Context, filter []gatt.UUID) ([]transport.Service, error) {
	ctx, cancel := context.WithTimeout(ctx, c.d)
	defer cancel()
	svcs, err := c.Conn.DiscoverServices(ctx, filter)
	if err != nil {
		return nil, err
	}
	out := make([]transport.Service, len(svcs))
	for i, s := range svcs {
		out[i] = &timeoutService{Service: s, d: c.d}
	}
	return out, nil
}

type timeoutService struct {
	transport.Service
	d time.Duration
}

func (s *timeoutService) DiscoverCharacteristics(ctx context.Context, filter []gatt.UUID) ([]transport.Characteristic, error) {
	ctx, cancel := context.WithTimeout(ctx, s.d)
	defer cancel()
	chars, err := s.Service.DiscoverCharacteristics(ctx, filter)
	if err != nil {
		return nil, err
	}
	out := make([]transport.Characteristic, len(chars))
	for i, c := range chars {
		out[i] = &timeoutCharacteristic{Characteristic: c, d: s.d}
	}
	return out, nil
}

type timeoutCharacteristic struct {
	transport.Characteristic
	d time.Duration
}

func (c *timeoutCharacteristic) DiscoverDescriptors(ctx context.Context) ([]transport.Descriptor, error) {
	ctx, cancel := context.WithTimeout(ctx, c.d)
	defer cancel()
	descs, err := c.Characteristic.DiscoverDescriptors(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]transport.Descriptor, len(descs))
	for i, d := range descs {
		out[i] = &timeoutDescriptor{Descriptor: d, d: c.d}
	}
	return out, nil
}

func (c *timeoutCharacteristic) Read(ctx context.Context) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, c.d)
	defer cancel()
	return c.Characteristic.Read(ctx)
}

func (c *timeoutCharacteristic) Write(ctx context.Context, data []byte, requireAck bool) error {
	ctx, cancel := context.WithTimeout(ctx, c.d)
	defer cancel()
	return c.Characteristic.Write(ctx, data, requireAck)
}

type timeoutDescriptor struct {
	transport.Descriptor
	d time.Duration
}

func (d *timeoutDescriptor) Read(ctx context.Context) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, d.d)
	defer cancel()
	return d.Descriptor.Read(ctx)
}
