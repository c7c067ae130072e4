package explore

import (
	"encoding/hex"
	"strconv"
	"strings"

	"github.com/vitaminmoo/gattx/internal/codec"
	"github.com/vitaminmoo/gattx/internal/gatt"
	"github.com/vitaminmoo/gattx/internal/transport"
)

// Topology is the GATT tree of the connected peripheral. Indices are dense
// and follow discovery order; rediscovery replaces a subtree wholesale.
type Topology struct {
	Session    string          `json:"session"`
	Peripheral gatt.Peripheral `json:"peripheral"`
	Services   []*Service      `json:"services"`
}

// Service is a discovered primary service.
type Service struct {
	Index           int               `json:"index"`
	UUID            gatt.UUID         `json:"uuid"`
	Name            string            `json:"name,omitempty"`
	Type            string            `json:"type,omitempty"`
	Characteristics []*Characteristic `json:"characteristics"`
	Discovered      bool              `json:"discovered"`
	Error           string            `json:"error,omitempty"`

	remote transport.Service
}

// Characteristic is a discovered characteristic.
type Characteristic struct {
	Index           int                           `json:"index"`
	UUID            gatt.UUID                     `json:"uuid"`
	Name            string                        `json:"name,omitempty"`
	Type            string                        `json:"type,omitempty"`
	UserDescription string                        `json:"user_description,omitempty"`
	Properties      gatt.Properties               `json:"properties"`
	Presentation    *gatt.PresentationFormatValue `json:"presentation,omitempty"`
	Format          codec.Format                  `json:"-"`
	Descriptors     []*Descriptor                 `json:"descriptors"`

	// Value is the last payload read; nil with ValueError set when the
	// eager read failed, nil without it when no read happened.
	Value      []byte `json:"value,omitempty"`
	ValueError string `json:"value_error,omitempty"`

	remote transport.Characteristic
}

// Descriptor is a discovered descriptor. Value is only populated for the
// descriptors the engine reads (0x2901 and 0x2904).
type Descriptor struct {
	Index int       `json:"index"`
	UUID  gatt.UUID `json:"uuid"`
	Name  string    `json:"name,omitempty"`
	Value []byte    `json:"value,omitempty"`

	remote transport.Descriptor
}

// Remote returns the transport handle for reads and writes.
func (c *Characteristic) Remote() transport.Characteristic { return c.remote }

// DisplayName prefers the peripheral's own description over the
// assigned-numbers name.
func (c *Characteristic) DisplayName() string {
	if c.UserDescription != "" {
		return c.UserDescription
	}
	return c.Name
}

// Decoded decodes the cached value with the characteristic's default format.
func (c *Characteristic) Decoded() (codec.Value, bool, error) {
	if c.Value == nil {
		return codec.Value{}, false, nil
	}
	v, err := c.Format.Decode(c.Value)
	return v, true, err
}

// DisplayValue renders the cached value for tables, applying the
// presentation exponent and unit when known.
func (c *Characteristic) DisplayValue() string {
	if c.ValueError != "" {
		return "unavailable"
	}
	v, ok, err := c.Decoded()
	if !ok {
		return ""
	}
	if err != nil {
		return "0x" + strings.ToUpper(hex.EncodeToString(c.Value))
	}
	s := v.String()
	if c.Presentation != nil {
		if exp := int(c.Presentation.Exponent); exp != 0 {
			s = applyExponent(v, exp)
		}
		if unit := c.Presentation.UnitName(); unit != "" {
			s += " " + unit
		}
	}
	return s
}

func applyExponent(v codec.Value, exp int) string {
	var x float64
	switch d := v.Data.(type) {
	case uint64:
		x = float64(d)
	case int64:
		x = float64(d)
	default:
		return v.String()
	}
	if exp < 0 {
		return strconv.FormatFloat(x/pow10(-exp), 'f', -exp, 64)
	}
	return strconv.FormatFloat(x*pow10(exp), 'f', 0, 64)
}

func pow10(n int) float64 {
	out := 1.0
	for i := 0; i < n; i++ {
		out *= 10
	}
	return out
}

// Service returns the service at index, or nil.
func (t *Topology) Service(index int) *Service {
	if t == nil || index < 0 || index >= len(t.Services) {
		return nil
	}
	return t.Services[index]
}

// ResolveFormats recomputes each characteristic's default format from the
// assigned numbers and its presentation descriptor. Format is not part of
// the JSON form, so a topology loaded from disk needs this before display.
func (t *Topology) ResolveFormats() {
	for _, s := range t.Services {
		for _, c := range s.Characteristics {
			c.Format = codec.Hex
			if a, ok := gatt.Lookup(c.UUID); ok && a.HasFormat {
				c.Format = a.Format
			}
			if c.Presentation != nil {
				if f, ok := c.Presentation.CodecFormat(); ok {
					c.Format = f
				}
			}
		}
	}
}

// Clone returns a copy of t whose services, characteristics and descriptors
// can be modified without affecting t. Transport handles are shared.
func (t *Topology) Clone() *Topology {
	if t == nil {
		return nil
	}
	out := *t
	out.Services = make([]*Service, len(t.Services))
	for i, s := range t.Services {
		ns := *s
		ns.Characteristics = make([]*Characteristic, len(s.Characteristics))
		for j, c := range s.Characteristics {
			nc := *c
			nc.Descriptors = make([]*Descriptor, len(c.Descriptors))
			for k, d := range c.Descriptors {
				nd := *d
				nc.Descriptors[k] = &nd
			}
			ns.Characteristics[j] = &nc
		}
		out.Services[i] = &ns
	}
	return &out
}
