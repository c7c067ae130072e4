package gatt

import (
	"encoding/hex"
	"fmt"
	"strings"
)

// UUID is a normalised attribute UUID: the 4-digit short form for anything
// on the Bluetooth SIG base, otherwise the lowercase dashed 128-bit form.
type UUID string

const baseSuffix = "-0000-1000-8000-00805f9b34fb"

// Well-known descriptor UUIDs read during traversal.
const (
	ExtendedProperties  UUID = "2900"
	UserDescription     UUID = "2901"
	ClientConfiguration UUID = "2902"
	PresentationFormat  UUID = "2904"
)

// ParseUUID accepts 16-bit, 32-bit and 128-bit UUIDs, with or without dashes
// and an optional 0x prefix.
func ParseUUID(s string) (UUID, error) {
	raw := strings.ToLower(strings.TrimSpace(s))
	raw = strings.TrimPrefix(raw, "0x")
	hexOnly := strings.ReplaceAll(raw, "-", "")
	if _, err := hex.DecodeString(hexOnly); err != nil {
		return "", fmt.Errorf("invalid uuid %q", s)
	}
	switch len(hexOnly) {
	case 4:
		return UUID(hexOnly), nil
	case 8:
		if strings.HasPrefix(hexOnly, "0000") {
			return UUID(hexOnly[4:]), nil
		}
		return UUID(hexOnly + baseSuffix), nil
	case 32:
		dashed := hexOnly[0:8] + "-" + hexOnly[8:12] + "-" + hexOnly[12:16] + "-" + hexOnly[16:20] + "-" + hexOnly[20:32]
		if strings.HasSuffix(dashed, baseSuffix) && strings.HasPrefix(dashed, "0000") {
			return UUID(dashed[4:8]), nil
		}
		return UUID(dashed), nil
	}
	return "", fmt.Errorf("invalid uuid %q: want 4, 8 or 32 hex digits", s)
}

// MustParseUUID is ParseUUID for constants; it panics on bad input.
func MustParseUUID(s string) UUID {
	u, err := ParseUUID(s)
	if err != nil {
		panic(err)
	}
	return u
}

// UUID16 builds a short UUID from its assigned number.
func UUID16(v uint16) UUID {
	return UUID(fmt.Sprintf("%04x", v))
}

// IsShort reports whether the UUID is a 16-bit SIG assigned number.
func (u UUID) IsShort() bool {
	return len(u) == 4
}

// Full returns the dashed 128-bit form.
func (u UUID) Full() string {
	if u.IsShort() {
		return "0000" + string(u) + baseSuffix
	}
	return string(u)
}

func (u UUID) String() string { return string(u) }
