package explore

import "github.com/vitaminmoo/gattx/internal/gatt"

// RecordKind says which level of the tree a record describes.
type RecordKind int

const (
	KindService RecordKind = iota
	KindCharacteristic
	KindDescriptor
)

func (k RecordKind) String() string {
	switch k {
	case KindService:
		return "service"
	case KindCharacteristic:
		return "characteristic"
	}
	return "descriptor"
}

// Record is one row for the presentation layer.
type Record struct {
	Kind       RecordKind      `json:"kind"`
	Index      int             `json:"index"`
	UUID       gatt.UUID       `json:"uuid"`
	Name       string          `json:"name,omitempty"`
	Type       string          `json:"type,omitempty"`
	Properties gatt.Properties `json:"properties,omitempty"`
	Value      string          `json:"value,omitempty"`
}

func serviceRecord(s *Service) Record {
	return Record{Kind: KindService, Index: s.Index, UUID: s.UUID, Name: s.Name, Type: s.Type}
}

func characteristicRecord(c *Characteristic) Record {
	return Record{
		Kind:       KindCharacteristic,
		Index:      c.Index,
		UUID:       c.UUID,
		Name:       c.DisplayName(),
		Type:       c.Format.String(),
		Properties: c.Properties,
		Value:      c.DisplayValue(),
	}
}

func descriptorRecord(d *Descriptor) Record {
	return Record{Kind: KindDescriptor, Index: d.Index, UUID: d.UUID, Name: d.Name}
}
