package codec

import (
	"sort"
	"strings"
)

// Format identifies a characteristic's wire encoding. The set is closed:
// every value below has a decode and an encode arm in this package.
type Format int

const (
	Hex Format = iota // raw bytes, the fallback for unknown identifiers
	RFU
	GattUUID
	Boolean
	Bit2
	Nibble
	Bit8
	Bit16
	Bit24
	Bit32
	Uint8
	Uint12
	Uint16
	Uint24
	Uint32
	Uint40
	Uint48
	Uint64
	Uint128
	Sint8
	Sint12
	Sint16
	Sint24
	Sint32
	Sint48
	Sint64
	Sint128
	Float32
	Float64
	SFloat
	Float
	Duint16
	UTF8S
	UTF16S
	RegCertDataList
	Variable
	Array
	Struct

	numFormats
)

type kind int

const (
	kindOpaque kind = iota
	kindBool
	kindUnsigned
	kindSigned
	kindIEEE754
	kindMedFloat
	kindDuint16
	kindUTF8
	kindUTF16
)

type formatInfo struct {
	name  string
	kind  kind
	width int // bytes on the wire, 0 for variable length
	bits  int // significant bits for integer formats
}

var formats = [numFormats]formatInfo{
	Hex:             {"hex", kindOpaque, 0, 0},
	RFU:             {"rfu", kindOpaque, 0, 0},
	GattUUID:        {"gatt_uuid", kindOpaque, 0, 0},
	Boolean:         {"boolean", kindBool, 1, 1},
	Bit2:            {"2bit", kindOpaque, 1, 0},
	Nibble:          {"nibble", kindOpaque, 1, 0},
	Bit8:            {"8bit", kindOpaque, 1, 0},
	Bit16:           {"16bit", kindOpaque, 2, 0},
	Bit24:           {"24bit", kindOpaque, 3, 0},
	Bit32:           {"32bit", kindOpaque, 4, 0},
	Uint8:           {"uint8", kindUnsigned, 1, 8},
	Uint12:          {"uint12", kindUnsigned, 2, 12},
	Uint16:          {"uint16", kindUnsigned, 2, 16},
	Uint24:          {"uint24", kindUnsigned, 3, 24},
	Uint32:          {"uint32", kindUnsigned, 4, 32},
	Uint40:          {"uint40", kindUnsigned, 5, 40},
	Uint48:          {"uint48", kindUnsigned, 6, 48},
	Uint64:          {"uint64", kindUnsigned, 8, 64},
	Uint128:         {"uint128", kindUnsigned, 16, 128},
	Sint8:           {"sint8", kindSigned, 1, 8},
	Sint12:          {"sint12", kindSigned, 2, 12},
	Sint16:          {"sint16", kindSigned, 2, 16},
	Sint24:          {"sint24", kindSigned, 3, 24},
	Sint32:          {"sint32", kindSigned, 4, 32},
	Sint48:          {"sint48", kindSigned, 6, 48},
	Sint64:          {"sint64", kindSigned, 8, 64},
	Sint128:         {"sint128", kindSigned, 16, 128},
	Float32:         {"float32", kindIEEE754, 4, 32},
	Float64:         {"float64", kindIEEE754, 8, 64},
	SFloat:          {"SFLOAT", kindMedFloat, 2, 16},
	Float:           {"FLOAT", kindMedFloat, 4, 32},
	Duint16:         {"duint16", kindDuint16, 4, 16},
	UTF8S:           {"utf8s", kindUTF8, 0, 0},
	UTF16S:          {"utf16s", kindUTF16, 0, 0},
	RegCertDataList: {"reg-cert-data-list", kindOpaque, 0, 0},
	Variable:        {"variable", kindOpaque, 0, 0},
	Array:           {"Array[]", kindOpaque, 0, 0},
	Struct:          {"struct", kindOpaque, 0, 0},
}

// aliases maps alternative spellings seen in the wild onto a format.
var aliases = map[string]Format{
	"dunit16": Duint16,
	"array":   Array,
	"raw":     Hex,
	"utf8":    UTF8S,
	"utf16":   UTF16S,
	"bool":    Boolean,
}

var byName = func() map[string]Format {
	m := make(map[string]Format, len(formats)+len(aliases))
	for f := Format(0); f < numFormats; f++ {
		m[strings.ToLower(formats[f].name)] = f
	}
	for k, f := range aliases {
		m[k] = f
	}
	return m
}()

// Lookup resolves a format identifier, ignoring case.
func Lookup(name string) (Format, bool) {
	f, ok := byName[strings.ToLower(strings.TrimSpace(name))]
	return f, ok
}

// String returns the canonical identifier, e.g. "uint16" or "SFLOAT".
func (f Format) String() string {
	if f < 0 || f >= numFormats {
		return "hex"
	}
	return formats[f].name
}

// Width returns the number of octets the format occupies on the wire, or 0
// when the format is variable length.
func (f Format) Width() int {
	if f < 0 || f >= numFormats {
		return 0
	}
	return formats[f].width
}

// Numeric reports whether values of this format are numbers.
func (f Format) Numeric() bool {
	switch f.info().kind {
	case kindUnsigned, kindSigned, kindIEEE754, kindMedFloat, kindDuint16:
		return true
	}
	return false
}

func (f Format) info() formatInfo {
	if f < 0 || f >= numFormats {
		return formats[Hex]
	}
	return formats[f]
}

// Formats lists every registered format, sorted by identifier.
func Formats() []Format {
	out := make([]Format, 0, numFormats)
	for f := Format(0); f < numFormats; f++ {
		out = append(out, f)
	}
	sort.Slice(out, func(i, j int) bool {
		return strings.ToLower(out[i].String()) < strings.ToLower(out[j].String())
	})
	return out
}

// presentationFormats maps the Format field of a Characteristic Presentation
// Format descriptor (0x2904) onto a Format.
var presentationFormats = map[uint8]Format{
	0x01: Boolean,
	0x02: Bit2,
	0x03: Nibble,
	0x04: Uint8,
	0x05: Uint12,
	0x06: Uint16,
	0x07: Uint24,
	0x08: Uint32,
	0x09: Uint48,
	0x0A: Uint64,
	0x0B: Uint128,
	0x0C: Sint8,
	0x0D: Sint12,
	0x0E: Sint16,
	0x0F: Sint24,
	0x10: Sint32,
	0x11: Sint48,
	0x12: Sint64,
	0x13: Sint128,
	0x14: Float32,
	0x15: Float64,
	0x16: SFloat,
	0x17: Float,
	0x18: Duint16,
	0x19: UTF8S,
	0x1A: UTF16S,
	0x1B: Struct,
}

// FromPresentation maps a Presentation Format code to a Format.
func FromPresentation(code uint8) (Format, bool) {
	f, ok := presentationFormats[code]
	return f, ok
}
