// Package explore walks a peripheral's GATT table: services, then
// characteristics, then descriptors, one request at a time.
package explore

import (
	"context"
	"errors"

	"github.com/sirupsen/logrus"

	"github.com/vitaminmoo/gattx/internal/codec"
	"github.com/vitaminmoo/gattx/internal/config"
	"github.com/vitaminmoo/gattx/internal/gatt"
	"github.com/vitaminmoo/gattx/internal/transport"
)

// Options tunes the traversal.
type Options struct {
	// EagerRead reads every readable characteristic once after discovery.
	EagerRead bool
	// PresentationFormat reads 0x2904 descriptors and uses them as the
	// characteristic's default format.
	PresentationFormat bool
	// DefaultFormats falls back to assigned-numbers formats.
	DefaultFormats bool
	// OnRecord receives one record per discovered entity, in index order.
	OnRecord func(Record)
}

// DefaultOptions matches the config defaults.
func DefaultOptions() Options {
	return Options{EagerRead: true, PresentationFormat: true, DefaultFormats: true}
}

// Engine drives discovery over a transport connection. It holds no per
// connection state; callers own the Topology.
type Engine struct {
	opts Options
}

// New returns an engine.
func New(opts Options) *Engine {
	return &Engine{opts: opts}
}

// DiscoverServices replaces t.Services with the peripheral's primary
// services.
func (e *Engine) DiscoverServices(ctx context.Context, conn transport.Conn, t *Topology) error {
	log := e.log(t, nil, nil)
	log.Debug("discovering services")

	if err := ctx.Err(); err != nil {
		return e.fail(t, nil, nil, "discover services", err)
	}
	remotes, err := conn.DiscoverServices(ctx, nil)
	if err != nil {
		return e.fail(t, nil, nil, "discover services", e.cause(ctx, "discover services", conn.Address(), err))
	}

	services := make([]*Service, 0, len(remotes))
	for i, r := range remotes {
		s := &Service{Index: i, UUID: r.UUID(), Characteristics: []*Characteristic{}, remote: r}
		if a, ok := gatt.Lookup(s.UUID); ok {
			s.Name, s.Type = a.Name, a.Type
		}
		services = append(services, s)
	}
	t.Services = services
	for _, s := range services {
		e.emit(serviceRecord(s))
	}
	log.WithField("count", len(services)).Debug("services discovered")
	return nil
}

// DiscoverCharacteristics replaces s.Characteristics. Each characteristic
// gets its descriptors, its user description and presentation format, and
// an eager read, before the next one is touched. On failure at index k the
// characteristics before k are kept and nothing after k is requested.
func (e *Engine) DiscoverCharacteristics(ctx context.Context, t *Topology, s *Service) error {
	log := e.log(t, s, nil)
	log.Debug("discovering characteristics")

	s.Discovered = false
	s.Error = ""
	if err := ctx.Err(); err != nil {
		return e.fail(t, s, nil, "discover characteristics", err)
	}
	remotes, err := s.remote.DiscoverCharacteristics(ctx, nil)
	if err != nil {
		s.Characteristics = []*Characteristic{}
		ferr := e.fail(t, s, nil, "discover characteristics", e.cause(ctx, "discover characteristics", s.UUID.String(), err))
		s.Error = ferr.Error()
		return ferr
	}

	chars := make([]*Characteristic, 0, len(remotes))
	for i, r := range remotes {
		c := &Characteristic{
			Index:       i,
			UUID:        r.UUID(),
			Properties:  r.Properties(),
			Descriptors: []*Descriptor{},
			Format:      codec.Hex,
			remote:      r,
		}
		if a, ok := gatt.Lookup(c.UUID); ok {
			c.Name, c.Type = a.Name, a.Type
			if e.opts.DefaultFormats && a.HasFormat {
				c.Format = a.Format
			}
		}

		if err := e.discoverDescriptors(ctx, t, s, c); err != nil {
			s.Characteristics = chars
			s.Error = err.Error()
			return err
		}
		if e.opts.EagerRead && c.Properties.Has(gatt.PropRead) {
			if err := e.eagerRead(ctx, t, s, c); err != nil {
				s.Characteristics = chars
				s.Error = err.Error()
				return err
			}
		}
		chars = append(chars, c)
		e.emit(characteristicRecord(c))
		for _, d := range c.Descriptors {
			e.emit(descriptorRecord(d))
		}
	}
	s.Characteristics = chars
	s.Discovered = true
	log.WithField("count", len(chars)).Debug("characteristics discovered")
	return nil
}

// DiscoverDescriptors replaces c.Descriptors and performs the single reads of
// the user description and presentation format descriptors.
func (e *Engine) DiscoverDescriptors(ctx context.Context, t *Topology, s *Service, c *Characteristic) error {
	if err := e.discoverDescriptors(ctx, t, s, c); err != nil {
		return err
	}
	for _, d := range c.Descriptors {
		e.emit(descriptorRecord(d))
	}
	return nil
}

func (e *Engine) discoverDescriptors(ctx context.Context, t *Topology, s *Service, c *Characteristic) error {
	if err := ctx.Err(); err != nil {
		return e.fail(t, s, c, "discover descriptors", err)
	}
	remotes, err := c.remote.DiscoverDescriptors(ctx)
	if err != nil {
		return e.fail(t, s, c, "discover descriptors", e.cause(ctx, "discover descriptors", c.UUID.String(), err))
	}

	descs := make([]*Descriptor, 0, len(remotes))
	for i, r := range remotes {
		d := &Descriptor{Index: i, UUID: r.UUID(), Name: gatt.Name(r.UUID()), remote: r}
		descs = append(descs, d)
	}
	c.Descriptors = descs

	for _, d := range descs {
		switch {
		case d.UUID == gatt.UserDescription:
			data, err := e.readDescriptor(ctx, t, s, c, d)
			if err != nil {
				return err
			}
			if data != nil {
				c.UserDescription = gatt.ParseUserDescription(data)
			}
		case d.UUID == gatt.PresentationFormat && e.opts.PresentationFormat:
			data, err := e.readDescriptor(ctx, t, s, c, d)
			if err != nil {
				return err
			}
			if data == nil {
				continue
			}
			pf, perr := gatt.ParsePresentationFormat(data)
			if perr != nil {
				e.log(t, s, c).WithError(perr).Warn("ignoring presentation format")
				continue
			}
			c.Presentation = &pf
			if f, ok := pf.CodecFormat(); ok {
				c.Format = f
			}
		}
	}
	return nil
}

// readDescriptor fails soft: a rejected read yields nil data. Only a dead
// link or a cancelled context aborts the traversal.
func (e *Engine) readDescriptor(ctx context.Context, t *Topology, s *Service, c *Characteristic, d *Descriptor) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, e.fail(t, s, c, "read descriptor "+d.UUID.String(), err)
	}
	data, err := d.remote.Read(ctx)
	if err != nil {
		if aborted(ctx, err) {
			return nil, e.fail(t, s, c, "read descriptor "+d.UUID.String(), e.cause(ctx, "read descriptor", d.UUID.String(), err))
		}
		e.log(t, s, c).WithError(err).WithField("descriptor", d.UUID).Warn("descriptor read failed")
		return nil, nil
	}
	if data == nil {
		data = []byte{}
	}
	d.Value = data
	return data, nil
}

// eagerRead caches the characteristic value. Failures are recorded on the
// characteristic and traversal continues.
func (e *Engine) eagerRead(ctx context.Context, t *Topology, s *Service, c *Characteristic) error {
	if err := ctx.Err(); err != nil {
		return e.fail(t, s, c, "read", err)
	}
	data, err := c.remote.Read(ctx)
	if err != nil {
		if aborted(ctx, err) {
			return e.fail(t, s, c, "read", e.cause(ctx, "read", c.UUID.String(), err))
		}
		e.log(t, s, c).WithError(err).Debug("value unavailable")
		c.ValueError = err.Error()
		return nil
	}
	if data == nil {
		data = []byte{}
	}
	c.Value = data
	return nil
}

// Walk discovers every service and every service's characteristics. A failing
// service is recorded and skipped; a dead link stops the walk.
func (e *Engine) Walk(ctx context.Context, conn transport.Conn, t *Topology) error {
	if err := e.DiscoverServices(ctx, conn, t); err != nil {
		return err
	}
	var errs []error
	for _, s := range t.Services {
		if err := e.DiscoverCharacteristics(ctx, t, s); err != nil {
			errs = append(errs, err)
			if aborted(ctx, err) {
				break
			}
		}
	}
	return errors.Join(errs...)
}

// cause prefers the context error when the request failed because the
// context ended, and tags everything else as a transport failure.
func (e *Engine) cause(ctx context.Context, op, target string, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	return transport.Wrap(op, target, err)
}

// aborted reports whether err ends the whole traversal rather than one
// request. A single request timing out is not enough.
func aborted(ctx context.Context, err error) bool {
	return ctx.Err() != nil || errors.Is(err, transport.ErrDisconnected)
}

func (e *Engine) fail(t *Topology, s *Service, c *Characteristic, step string, err error) error {
	ferr := &Error{
		Peripheral:          t.Peripheral.Address,
		ServiceIndex:        -1,
		CharacteristicIndex: -1,
		Step:                step,
		Err:                 err,
	}
	if s != nil {
		ferr.Service, ferr.ServiceIndex = s.UUID, s.Index
	}
	if c != nil {
		ferr.Characteristic, ferr.CharacteristicIndex = c.UUID, c.Index
	}
	e.log(t, s, c).WithError(err).Warn(step + " failed")
	return ferr
}

func (e *Engine) emit(r Record) {
	if e.opts.OnRecord != nil {
		e.opts.OnRecord(r)
	}
}

func (e *Engine) log(t *Topology, s *Service, c *Characteristic) *logrus.Entry {
	fields := logrus.Fields{"peripheral": t.Peripheral.Address}
	if t.Session != "" {
		fields["conn"] = t.Session
	}
	if s != nil {
		fields["service"] = s.UUID
	}
	if c != nil {
		fields["characteristic"] = c.UUID
	}
	return config.Log.WithFields(fields)
}
