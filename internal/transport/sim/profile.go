package sim

import (
	"encoding/hex"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/vitaminmoo/gattx/internal/gatt"
	"github.com/vitaminmoo/gattx/internal/transport"
)

// Profile declares the simulated radio environment.
type Profile struct {
	State       string              `yaml:"state"`
	Peripherals []PeripheralProfile `yaml:"peripherals"`
}

// PeripheralProfile declares one advertising peripheral and its GATT table.
type PeripheralProfile struct {
	Address          string           `yaml:"address"`
	Name             string           `yaml:"name"`
	RSSI             int              `yaml:"rssi"`
	TxPower          *int             `yaml:"tx_power"`
	ManufacturerData string           `yaml:"manufacturer_data"`
	ServiceUUIDs     []string         `yaml:"service_uuids"`
	Services         []ServiceProfile `yaml:"services"`
}

// ServiceProfile declares a primary service.
type ServiceProfile struct {
	UUID            string                  `yaml:"uuid"`
	Characteristics []CharacteristicProfile `yaml:"characteristics"`
}

// CharacteristicProfile declares a characteristic. Value is hex; Text is a
// UTF-8 shorthand used when Value is empty.
type CharacteristicProfile struct {
	UUID        string              `yaml:"uuid"`
	Properties  []string            `yaml:"properties"`
	Value       string              `yaml:"value"`
	Text        string              `yaml:"text"`
	ReadError   string              `yaml:"read_error"`
	Descriptors []DescriptorProfile `yaml:"descriptors"`
}

// DescriptorProfile declares a descriptor.
type DescriptorProfile struct {
	UUID  string `yaml:"uuid"`
	Value string `yaml:"value"`
	Text  string `yaml:"text"`
}

// LoadProfile reads a YAML profile from disk.
func LoadProfile(path string) (Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Profile{}, fmt.Errorf("read profile: %w", err)
	}
	return ParseProfile(data)
}

// ParseProfile decodes a YAML profile.
func ParseProfile(data []byte) (Profile, error) {
	var p Profile
	if err := yaml.Unmarshal(data, &p); err != nil {
		return Profile{}, fmt.Errorf("parse profile: %w", err)
	}
	return p, nil
}

// build resolves the declarative profile into the simulated device tree.
func (p Profile) build() (transport.AdapterState, []*device, error) {
	state := transport.StatePoweredOn
	if p.State != "" {
		s, err := transport.ParseAdapterState(p.State)
		if err != nil {
			return 0, nil, err
		}
		state = s
	}

	devices := make([]*device, 0, len(p.Peripherals))
	for i, pp := range p.Peripherals {
		if pp.Address == "" {
			return 0, nil, fmt.Errorf("peripheral %d: address is required", i)
		}
		d := &device{address: strings.ToLower(pp.Address), rssi: pp.RSSI}
		d.adv = gatt.Advertisement{LocalName: pp.Name, TxPower: pp.TxPower, Connectable: true}
		if pp.ManufacturerData != "" {
			b, err := decodeHex(pp.ManufacturerData)
			if err != nil {
				return 0, nil, fmt.Errorf("peripheral %s: manufacturer_data: %w", pp.Address, err)
			}
			d.adv.ManufacturerData = b
		}
		for _, s := range pp.ServiceUUIDs {
			u, err := gatt.ParseUUID(s)
			if err != nil {
				return 0, nil, fmt.Errorf("peripheral %s: %w", pp.Address, err)
			}
			d.adv.ServiceUUIDs = append(d.adv.ServiceUUIDs, u)
		}

		for _, sp := range pp.Services {
			su, err := gatt.ParseUUID(sp.UUID)
			if err != nil {
				return 0, nil, fmt.Errorf("peripheral %s: %w", pp.Address, err)
			}
			svc := &service{uuid: su}
			for _, cp := range sp.Characteristics {
				c, err := cp.build()
				if err != nil {
					return 0, nil, fmt.Errorf("peripheral %s service %s: %w", pp.Address, su, err)
				}
				svc.chars = append(svc.chars, c)
			}
			d.services = append(d.services, svc)
		}
		devices = append(devices, d)
	}
	return state, devices, nil
}

func (cp CharacteristicProfile) build() (*characteristic, error) {
	u, err := gatt.ParseUUID(cp.UUID)
	if err != nil {
		return nil, err
	}
	props, err := gatt.ParseProperties(cp.Properties)
	if err != nil {
		return nil, fmt.Errorf("characteristic %s: %w", u, err)
	}
	value, err := valueOf(cp.Value, cp.Text)
	if err != nil {
		return nil, fmt.Errorf("characteristic %s: %w", u, err)
	}
	c := &characteristic{uuid: u, props: props, value: value, readErr: cp.ReadError}
	for _, dp := range cp.Descriptors {
		du, err := gatt.ParseUUID(dp.UUID)
		if err != nil {
			return nil, fmt.Errorf("characteristic %s: %w", u, err)
		}
		dv, err := valueOf(dp.Value, dp.Text)
		if err != nil {
			return nil, fmt.Errorf("descriptor %s: %w", du, err)
		}
		c.descs = append(c.descs, &descriptor{uuid: du, value: dv})
	}
	return c, nil
}

func valueOf(hexValue, text string) ([]byte, error) {
	if hexValue != "" {
		return decodeHex(hexValue)
	}
	return []byte(text), nil
}

func decodeHex(s string) ([]byte, error) {
	s = strings.NewReplacer(" ", "", ":", "").Replace(strings.TrimPrefix(s, "0x"))
	return hex.DecodeString(s)
}
