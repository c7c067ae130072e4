package codec

import (
	"encoding/binary"
	"encoding/hex"
	"errors"
	"fmt"
	"math"
	"math/big"
	"strconv"
	"strings"
)

// Encode turns user input into a payload using the named format.
func Encode(name, input string) ([]byte, error) {
	f, ok := Lookup(name)
	if !ok {
		return nil, &EncodeError{Format: name, Kind: UnknownFormat, Input: input}
	}
	return f.Encode(input)
}

// Encode turns user input into a payload of the format's declared width,
// little-endian for numbers.
func (f Format) Encode(input string) ([]byte, error) {
	info := f.info()
	s := strings.TrimSpace(input)
	fail := func(kind ErrorKind, err error) ([]byte, error) {
		return nil, &EncodeError{Format: f.String(), Kind: kind, Input: input, Err: err}
	}

	switch info.kind {
	case kindBool:
		b, err := strconv.ParseBool(s)
		if err != nil {
			return fail(InvalidValue, errors.New("want true, false, 1 or 0"))
		}
		if b {
			return []byte{0x01}, nil
		}
		return []byte{0x00}, nil

	case kindUnsigned, kindSigned:
		n, err := parseInteger(s)
		if err != nil {
			return fail(InvalidNumericLiteral, err)
		}
		out, err := packInteger(n, info.bits, info.width, info.kind == kindSigned)
		if err != nil {
			return fail(InvalidNumericLiteral, err)
		}
		return out, nil

	case kindIEEE754:
		x, err := strconv.ParseFloat(s, info.bits)
		if err != nil {
			return fail(InvalidNumericLiteral, err)
		}
		out := make([]byte, info.width)
		if info.width == 4 {
			binary.LittleEndian.PutUint32(out, math.Float32bits(float32(x)))
		} else {
			binary.LittleEndian.PutUint64(out, math.Float64bits(x))
		}
		return out, nil

	case kindMedFloat:
		layout := floatLayout
		if f == SFloat {
			layout = sfloatLayout
		}
		raw, ok := layout.special(s)
		if !ok {
			x, err := strconv.ParseFloat(s, 64)
			if err != nil {
				return fail(InvalidNumericLiteral, err)
			}
			if raw, ok = layout.encode(x); !ok {
				return fail(InvalidNumericLiteral, errors.New("out of range"))
			}
		}
		out := make([]byte, info.width)
		if f == SFloat {
			binary.LittleEndian.PutUint16(out, uint16(raw))
		} else {
			binary.LittleEndian.PutUint32(out, raw)
		}
		return out, nil

	case kindDuint16:
		parts := strings.FieldsFunc(s, func(r rune) bool { return r == ',' || r == ' ' })
		if len(parts) != 2 {
			return fail(InvalidNumericLiteral, errors.New("want two values separated by a comma"))
		}
		out := make([]byte, 4)
		for i, p := range parts {
			n, err := parseInteger(p)
			if err != nil {
				return fail(InvalidNumericLiteral, err)
			}
			b, err := packInteger(n, 16, 2, false)
			if err != nil {
				return fail(InvalidNumericLiteral, err)
			}
			copy(out[i*2:], b)
		}
		return out, nil

	case kindUTF8:
		return []byte(input), nil

	case kindUTF16:
		out, err := utf16le().NewEncoder().Bytes([]byte(input))
		if err != nil {
			return fail(InvalidValue, err)
		}
		return out, nil
	}

	out, err := parseHex(s)
	if err != nil {
		return fail(InvalidNumericLiteral, err)
	}
	if info.width > 0 && len(out) != info.width {
		return fail(InvalidValue, fmt.Errorf("want %d bytes, got %d", info.width, len(out)))
	}
	return out, nil
}

// parseInteger accepts base 10, or base 16 with a 0x prefix.
func parseInteger(s string) (*big.Int, error) {
	neg := false
	body := s
	if strings.HasPrefix(body, "-") {
		neg, body = true, body[1:]
	} else if strings.HasPrefix(body, "+") {
		body = body[1:]
	}
	base := 10
	if len(body) > 2 && (body[:2] == "0x" || body[:2] == "0X") {
		base, body = 16, body[2:]
	}
	if body == "" || strings.HasPrefix(body, "-") || strings.HasPrefix(body, "+") {
		return nil, fmt.Errorf("not an integer")
	}
	n, ok := new(big.Int).SetString(body, base)
	if !ok {
		return nil, fmt.Errorf("not an integer")
	}
	if neg {
		n.Neg(n)
	}
	return n, nil
}

// packInteger range-checks n and writes it as a little-endian field of width
// octets. Negative values are stored in two's complement over bits.
func packInteger(n *big.Int, bits, width int, signed bool) ([]byte, error) {
	one := big.NewInt(1)
	var lo, hi *big.Int
	if signed {
		hi = new(big.Int).Sub(new(big.Int).Lsh(one, uint(bits-1)), one)
		lo = new(big.Int).Neg(new(big.Int).Lsh(one, uint(bits-1)))
	} else {
		hi = new(big.Int).Sub(new(big.Int).Lsh(one, uint(bits)), one)
		lo = new(big.Int)
	}
	if n.Cmp(lo) < 0 || n.Cmp(hi) > 0 {
		return nil, fmt.Errorf("out of range [%s, %s]", lo, hi)
	}
	u := new(big.Int).Set(n)
	if u.Sign() < 0 {
		u.Add(u, new(big.Int).Lsh(one, uint(bits)))
	}
	be := u.Bytes()
	out := make([]byte, width)
	for i := 0; i < len(be) && i < width; i++ {
		out[i] = be[len(be)-1-i]
	}
	return out, nil
}

// parseHex reads an octet string written as hex. A 0x prefix, spaces and
// colons are allowed; an odd digit count is padded with a leading zero.
func parseHex(s string) ([]byte, error) {
	s = strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
	s = strings.NewReplacer(" ", "", ":", "").Replace(s)
	if s == "" {
		return nil, fmt.Errorf("empty hex string")
	}
	if len(s)%2 == 1 {
		s = "0" + s
	}
	return hex.DecodeString(s)
}
