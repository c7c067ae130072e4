package gatt

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Properties is the characteristic properties bit field.
type Properties uint8

const (
	PropBroadcast Properties = 1 << iota
	PropRead
	PropWriteWithoutResponse
	PropWrite
	PropNotify
	PropIndicate
	PropAuthenticatedSignedWrites
	PropExtendedProperties
)

var propNames = []struct {
	p    Properties
	name string
}{
	{PropBroadcast, "broadcast"},
	{PropRead, "read"},
	{PropWriteWithoutResponse, "writeWithoutResponse"},
	{PropWrite, "write"},
	{PropNotify, "notify"},
	{PropIndicate, "indicate"},
	{PropAuthenticatedSignedWrites, "authenticatedSignedWrites"},
	{PropExtendedProperties, "extendedProperties"},
}

// Has reports whether all bits of q are set.
func (p Properties) Has(q Properties) bool {
	return p&q == q
}

// Names lists the set properties in bit order.
func (p Properties) Names() []string {
	var out []string
	for _, pn := range propNames {
		if p.Has(pn.p) {
			out = append(out, pn.name)
		}
	}
	return out
}

func (p Properties) String() string {
	return strings.Join(p.Names(), "|")
}

// ParseProperties builds a bit field from property names, ignoring case.
func ParseProperties(names []string) (Properties, error) {
	var p Properties
outer:
	for _, n := range names {
		for _, pn := range propNames {
			if strings.EqualFold(pn.name, strings.TrimSpace(n)) {
				p |= pn.p
				continue outer
			}
		}
		return 0, fmt.Errorf("unknown property %q", n)
	}
	return p, nil
}

func (p Properties) MarshalJSON() ([]byte, error) {
	names := p.Names()
	if names == nil {
		names = []string{}
	}
	return json.Marshal(names)
}

func (p *Properties) UnmarshalJSON(data []byte) error {
	var names []string
	if err := json.Unmarshal(data, &names); err != nil {
		return err
	}
	v, err := ParseProperties(names)
	if err != nil {
		return err
	}
	*p = v
	return nil
}
