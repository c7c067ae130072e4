package codec

import (
	"math"
	"strings"
)

// IEEE-11073 20601 floating point: value = mantissa * 10^exponent.
// SFLOAT packs a 4-bit exponent over a 12-bit mantissa, FLOAT an 8-bit
// exponent over a 24-bit mantissa. Both reserve the mantissas around the
// signed limit for special values.

type medFloat struct {
	mantissa int64
	exponent int
	special  string
}

type medLayout struct {
	mantBits, expBits int
	specials          map[uint32]string
}

var (
	sfloatLayout = medLayout{mantBits: 12, expBits: 4, specials: map[uint32]string{
		0x07FF: "NaN",
		0x0800: "NRes",
		0x07FE: "+INF",
		0x0802: "-INF",
		0x0801: "reserved",
	}}
	floatLayout = medLayout{mantBits: 24, expBits: 8, specials: map[uint32]string{
		0x007FFFFF: "NaN",
		0x00800000: "NRes",
		0x007FFFFE: "+INF",
		0x00800002: "-INF",
		0x00800001: "reserved",
	}}
)

// maxMantissa is the largest magnitude that does not collide with a special.
func (l medLayout) maxMantissa() int64 {
	return int64(1)<<(l.mantBits-1) - 3
}

func (l medLayout) decode(raw uint32) medFloat {
	if name, ok := l.specials[raw]; ok {
		return medFloat{special: name}
	}
	m := int64(raw & (1<<l.mantBits - 1))
	if m&(1<<(l.mantBits-1)) != 0 {
		m -= 1 << l.mantBits
	}
	e := int(raw >> l.mantBits & (1<<l.expBits - 1))
	if e&(1<<(l.expBits-1)) != 0 {
		e -= 1 << l.expBits
	}
	return medFloat{mantissa: m, exponent: e}
}

func (l medLayout) pack(m int64, e int) uint32 {
	mant := uint32(m) & (1<<l.mantBits - 1)
	exp := uint32(e) & (1<<l.expBits - 1)
	return exp<<l.mantBits | mant
}

// encode picks the smallest exponent whose rounded mantissa fits, which keeps
// the most precision and reproduces decoded values exactly. Mantissas that
// collide with special values are only excluded at exponent zero.
func (l medLayout) encode(x float64) (uint32, bool) {
	minExp := -(1 << (l.expBits - 1))
	maxExp := 1<<(l.expBits-1) - 1
	for e := minExp; e <= maxExp; e++ {
		lo, hi := -(int64(1) << (l.mantBits - 1)), int64(1)<<(l.mantBits-1)-1
		if e == 0 {
			lo, hi = -l.maxMantissa(), l.maxMantissa()
		}
		var scaled float64
		if e < 0 {
			scaled = x * math.Pow10(-e)
		} else {
			scaled = x / math.Pow10(e)
		}
		if math.IsInf(scaled, 0) {
			continue
		}
		m := math.Round(scaled)
		if m >= float64(lo) && m <= float64(hi) {
			return l.pack(int64(m), e), true
		}
	}
	return 0, false
}

func (l medLayout) special(name string) (uint32, bool) {
	want := strings.ToLower(name)
	if want == "inf" {
		want = "+inf"
	}
	for raw, n := range l.specials {
		if strings.ToLower(n) == want {
			return raw, true
		}
	}
	return 0, false
}

func decodeSFloat(raw uint16) medFloat { return sfloatLayout.decode(uint32(raw)) }

func decodeFloat(raw uint32) medFloat { return floatLayout.decode(raw) }

func (m medFloat) float() float64 {
	switch m.special {
	case "":
	case "+INF":
		return math.Inf(1)
	case "-INF":
		return math.Inf(-1)
	default:
		return math.NaN()
	}
	if m.exponent < 0 {
		return float64(m.mantissa) / math.Pow10(-m.exponent)
	}
	return float64(m.mantissa) * math.Pow10(m.exponent)
}
