package codec

import (
	"bytes"
	"encoding/binary"
	"encoding/hex"
	"math"
	"math/big"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/unicode"
)

// Decode turns a payload into a value using the named format. Unknown
// identifiers never fail: the payload is rendered as hexadecimal.
func Decode(name string, data []byte) (Value, error) {
	f, ok := Lookup(name)
	if !ok {
		f = Hex
	}
	return f.Decode(data)
}

// Decode turns a payload into a value. Payloads shorter than the format's
// width fail with a Truncated error; trailing octets are ignored.
func (f Format) Decode(data []byte) (Value, error) {
	info := f.info()
	if info.width > 0 && len(data) < info.width {
		return Value{}, &DecodeError{Format: f.String(), Kind: Truncated, Want: info.width, Got: len(data)}
	}
	raw := data
	if info.width > 0 {
		raw = data[:info.width]
	}
	v := Value{Format: f, Raw: append([]byte(nil), raw...)}

	switch info.kind {
	case kindBool:
		switch raw[0] {
		case 0x00:
			v.Data = false
		case 0x01:
			v.Data = true
		default:
			return Value{}, &DecodeError{Format: f.String(), Kind: MalformedEncoding, Detail: "boolean must be 0x00 or 0x01, got 0x" + hex.EncodeToString(raw)}
		}

	case kindUnsigned, kindSigned:
		n := leUnsigned(raw, info.bits)
		if info.kind == kindSigned && n.Bit(info.bits-1) == 1 {
			n.Sub(n, new(big.Int).Lsh(big.NewInt(1), uint(info.bits)))
		}
		switch {
		case info.bits > 64:
			v.Data = n
		case info.kind == kindSigned:
			v.Data = n.Int64()
		default:
			v.Data = n.Uint64()
		}

	case kindIEEE754:
		if info.width == 4 {
			v.Data = float64(math.Float32frombits(binary.LittleEndian.Uint32(raw)))
		} else {
			v.Data = math.Float64frombits(binary.LittleEndian.Uint64(raw))
		}

	case kindMedFloat:
		var m medFloat
		if f == SFloat {
			m = decodeSFloat(binary.LittleEndian.Uint16(raw))
		} else {
			m = decodeFloat(binary.LittleEndian.Uint32(raw))
		}
		v.Data, v.Special = m.float(), m.special

	case kindDuint16:
		v.Data = [2]uint16{binary.LittleEndian.Uint16(raw[0:2]), binary.LittleEndian.Uint16(raw[2:4])}

	case kindUTF8:
		s := bytes.TrimRight(raw, "\x00")
		if !utf8.Valid(s) {
			return Value{}, &DecodeError{Format: f.String(), Kind: MalformedEncoding, Detail: "invalid UTF-8"}
		}
		v.Data = string(s)

	case kindUTF16:
		if len(raw)%2 != 0 {
			return Value{}, &DecodeError{Format: f.String(), Kind: MalformedEncoding, Detail: "odd number of octets"}
		}
		out, err := utf16le().NewDecoder().Bytes(raw)
		if err != nil {
			return Value{}, &DecodeError{Format: f.String(), Kind: MalformedEncoding, Detail: err.Error()}
		}
		v.Data = string(bytes.TrimRight(out, "\x00"))

	default:
		v.Data = v.Raw
	}
	return v, nil
}

// leUnsigned reads a little-endian integer and keeps the low bits.
func leUnsigned(raw []byte, bits int) *big.Int {
	be := make([]byte, len(raw))
	for i, b := range raw {
		be[len(raw)-1-i] = b
	}
	n := new(big.Int).SetBytes(be)
	if bits < len(raw)*8 {
		mask := new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), uint(bits)), big.NewInt(1))
		n.And(n, mask)
	}
	return n
}

func utf16le() encoding.Encoding {
	return unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM)
}
