package util

import (
	"encoding/hex"
	"fmt"
	"strings"
)

// IsTextData checks if a byte slice contains only printable ASCII text
func IsTextData(data []byte) bool {
	for _, b := range data {
		if b < 32 && b != 9 && b != 10 && b != 13 || b > 126 {
			return false
		}
	}
	return true
}

// HexDump formats data as offset, hex and ASCII columns, 16 bytes a line.
func HexDump(data []byte) string {
	var b strings.Builder
	for i := 0; i < len(data); i += 16 {
		fmt.Fprintf(&b, "%04x  ", i)

		for j := 0; j < 16; j++ {
			if i+j < len(data) {
				fmt.Fprintf(&b, "%02x ", data[i+j])
			} else {
				b.WriteString("   ")
			}
			if j == 7 {
				b.WriteString(" ")
			}
		}

		b.WriteString(" |")
		for j := 0; j < 16 && i+j < len(data); j++ {
			c := data[i+j]
			if c >= 32 && c < 127 {
				b.WriteByte(c)
			} else {
				b.WriteByte('.')
			}
		}
		b.WriteString("|\n")
	}
	return b.String()
}

// Preview renders a payload for a single table cell: quoted text when it is
// printable, otherwise 0x-prefixed hex.
func Preview(data []byte) string {
	if len(data) == 0 {
		return ""
	}
	if IsTextData(data) && !strings.ContainsAny(string(data), "\r\n") {
		return fmt.Sprintf("%q", data)
	}
	return "0x" + strings.ToUpper(hex.EncodeToString(data))
}

// Truncate shortens s to max runes, marking the cut with an ellipsis.
func Truncate(s string, max int) string {
	r := []rune(s)
	if max <= 0 || len(r) <= max {
		return s
	}
	if max == 1 {
		return "…"
	}
	return string(r[:max-1]) + "…"
}

// FormatMAC formats a MAC address with colons (aa:bb:cc:dd:ee:ff). Other
// identifiers, such as CoreBluetooth UUIDs, are returned unchanged.
func FormatMAC(mac string) string {
	clean := strings.ToLower(strings.ReplaceAll(strings.ReplaceAll(mac, ":", ""), "-", ""))
	if len(clean) != 12 {
		return mac
	}
	if _, err := hex.DecodeString(clean); err != nil {
		return mac
	}
	return fmt.Sprintf("%s:%s:%s:%s:%s:%s",
		clean[0:2], clean[2:4], clean[4:6],
		clean[6:8], clean[8:10], clean[10:12])
}
