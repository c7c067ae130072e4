package gatt

import (
	"encoding/binary"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/vitaminmoo/gattx/internal/codec"
)

// PresentationFormatValue is a decoded Characteristic Presentation Format
// descriptor (0x2904).
type PresentationFormatValue struct {
	Format      uint8  `json:"format"`
	Exponent    int8   `json:"exponent"`
	Unit        uint16 `json:"unit"`
	Namespace   uint8  `json:"namespace"`
	Description uint16 `json:"description"`
}

// ParsePresentationFormat decodes the 7-octet 0x2904 value.
func ParsePresentationFormat(data []byte) (PresentationFormatValue, error) {
	if len(data) < 7 {
		return PresentationFormatValue{}, fmt.Errorf("presentation format: want 7 bytes, got %d", len(data))
	}
	return PresentationFormatValue{
		Format:      data[0],
		Exponent:    int8(data[1]),
		Unit:        binary.LittleEndian.Uint16(data[2:4]),
		Namespace:   data[4],
		Description: binary.LittleEndian.Uint16(data[5:7]),
	}, nil
}

// CodecFormat maps the descriptor's format code onto the codec registry.
func (p PresentationFormatValue) CodecFormat() (codec.Format, bool) {
	return codec.FromPresentation(p.Format)
}

// UnitName returns the unit's display name, or "" when unknown or unitless.
func (p PresentationFormatValue) UnitName() string {
	if p.Unit == 0x2700 {
		return ""
	}
	u, ok := LookupUnit(p.Unit)
	if !ok {
		return fmt.Sprintf("unit 0x%04x", p.Unit)
	}
	return u.Name
}

// ParseUserDescription decodes a 0x2901 value. Trailing NULs are dropped and
// invalid UTF-8 sequences are replaced.
func ParseUserDescription(data []byte) string {
	s := strings.TrimRight(string(data), "\x00")
	if !utf8.ValidString(s) {
		s = strings.ToValidUTF8(s, "�")
	}
	return strings.TrimSpace(s)
}
