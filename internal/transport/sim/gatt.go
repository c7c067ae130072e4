package sim

import (
	"context"
	"errors"
	"sync"

	"github.com/vitaminmoo/gattx/internal/gatt"
	"github.com/vitaminmoo/gattx/internal/transport"
)

type device struct {
	address  string
	rssi     int
	adv      gatt.Advertisement
	services []*service
}

func (d *device) sighting() transport.Sighting {
	return transport.Sighting{Address: d.address, RSSI: d.rssi, Advertisement: d.adv}
}

type service struct {
	uuid  gatt.UUID
	chars []*characteristic
}

type characteristic struct {
	uuid    gatt.UUID
	props   gatt.Properties
	value   []byte
	readErr string
	descs   []*descriptor
}

type descriptor struct {
	uuid  gatt.UUID
	value []byte
}

type conn struct {
	t    *Transport
	dev  *device
	once sync.Once

	closed chan struct{}
}

func (c *conn) close() {
	c.once.Do(func() { close(c.closed) })
}

// begin accounts for a request and runs the hook and latency.
func (c *conn) begin(ctx context.Context, op Op, target string) error {
	c.t.mu.Lock()
	c.t.calls[op]++
	hook, latency := c.t.hook, c.t.latency
	c.t.mu.Unlock()

	select {
	case <-c.closed:
		return transport.ErrDisconnected
	default:
	}
	if hook != nil {
		if err := hook(ctx, op, target); err != nil {
			return err
		}
	}
	if err := sleep(ctx, latency, c.closed); err != nil {
		return err
	}
	select {
	case <-c.closed:
		return transport.ErrDisconnected
	default:
		return ctx.Err()
	}
}

func (c *conn) Address() string { return c.dev.address }

func (c *conn) Disconnected() <-chan struct{} { return c.closed }

func (c *conn) Disconnect() error {
	c.t.mu.Lock()
	c.t.calls[OpDisconnect]++
	if c.t.conns[c.dev.address] == c {
		delete(c.t.conns, c.dev.address)
	}
	c.t.mu.Unlock()
	c.close()
	return nil
}

func (c *conn) DiscoverServices(ctx context.Context, filter []gatt.UUID) ([]transport.Service, error) {
	if err := c.begin(ctx, OpDiscoverServices, c.dev.address); err != nil {
		return nil, err
	}
	var out []transport.Service
	for _, s := range c.dev.services {
		if matches(filter, s.uuid) {
			out = append(out, &remoteService{c: c, s: s})
		}
	}
	return out, nil
}

type remoteService struct {
	c *conn
	s *service
}

func (r *remoteService) UUID() gatt.UUID { return r.s.uuid }

func (r *remoteService) DiscoverCharacteristics(ctx context.Context, filter []gatt.UUID) ([]transport.Characteristic, error) {
	if err := r.c.begin(ctx, OpDiscoverCharacteristics, r.s.uuid.String()); err != nil {
		return nil, err
	}
	var out []transport.Characteristic
	for _, ch := range r.s.chars {
		if matches(filter, ch.uuid) {
			out = append(out, &remoteCharacteristic{c: r.c, ch: ch})
		}
	}
	return out, nil
}

type remoteCharacteristic struct {
	c  *conn
	ch *characteristic
}

func (r *remoteCharacteristic) UUID() gatt.UUID { return r.ch.uuid }

func (r *remoteCharacteristic) Properties() gatt.Properties { return r.ch.props }

func (r *remoteCharacteristic) DiscoverDescriptors(ctx context.Context) ([]transport.Descriptor, error) {
	if err := r.c.begin(ctx, OpDiscoverDescriptors, r.ch.uuid.String()); err != nil {
		return nil, err
	}
	out := make([]transport.Descriptor, 0, len(r.ch.descs))
	for _, d := range r.ch.descs {
		out = append(out, &remoteDescriptor{c: r.c, d: d})
	}
	return out, nil
}

func (r *remoteCharacteristic) Read(ctx context.Context) ([]byte, error) {
	if err := r.c.begin(ctx, OpRead, r.ch.uuid.String()); err != nil {
		return nil, err
	}
	if !r.ch.props.Has(gatt.PropRead) {
		return nil, errors.New("read not permitted")
	}
	if r.ch.readErr != "" {
		return nil, errors.New(r.ch.readErr)
	}
	r.c.t.mu.Lock()
	defer r.c.t.mu.Unlock()
	return append([]byte(nil), r.ch.value...), nil
}

func (r *remoteCharacteristic) Write(ctx context.Context, data []byte, requireAck bool) error {
	if err := r.c.begin(ctx, OpWrite, r.ch.uuid.String()); err != nil {
		return err
	}
	switch {
	case requireAck && !r.ch.props.Has(gatt.PropWrite):
		return errors.New("write not permitted")
	case !requireAck && !r.ch.props.Has(gatt.PropWriteWithoutResponse):
		return errors.New("write without response not permitted")
	}
	r.c.t.mu.Lock()
	r.ch.value = append([]byte(nil), data...)
	r.c.t.mu.Unlock()
	return nil
}

type remoteDescriptor struct {
	c *conn
	d *descriptor
}

func (r *remoteDescriptor) UUID() gatt.UUID { return r.d.uuid }

func (r *remoteDescriptor) Read(ctx context.Context) ([]byte, error) {
	if err := r.c.begin(ctx, OpReadDescriptor, r.d.uuid.String()); err != nil {
		return nil, err
	}
	return append([]byte(nil), r.d.value...), nil
}

func matches(filter []gatt.UUID, u gatt.UUID) bool {
	if len(filter) == 0 {
		return true
	}
	for _, f := range filter {
		if f == u {
			return true
		}
	}
	return false
}
