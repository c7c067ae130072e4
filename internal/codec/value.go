package codec

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"math"
	"math/big"
	"strconv"
)

// Value is a decoded payload.
//
// Data holds the Go representation for the format:
//
//	boolean                 bool
//	uint8 .. uint64         uint64
//	sint8 .. sint64         int64
//	uint128, sint128        *big.Int
//	float32, float64        float64
//	SFLOAT, FLOAT           float64 (NaN/Inf for special values, see Special)
//	duint16                 [2]uint16
//	utf8s, utf16s           string
//	everything else         []byte
type Value struct {
	Format  Format
	Data    any
	Special string // IEEE-11073 special value name, e.g. "NRes"
	Raw     []byte // octets the value was decoded from
}

// String renders the value the way it is shown to users and the way Encode
// parses it back.
func (v Value) String() string {
	if v.Special != "" {
		return v.Special
	}
	switch d := v.Data.(type) {
	case bool:
		return strconv.FormatBool(d)
	case uint64:
		return strconv.FormatUint(d, 10)
	case int64:
		return strconv.FormatInt(d, 10)
	case *big.Int:
		return d.String()
	case float64:
		bits := 64
		if v.Format == Float32 {
			bits = 32
		}
		return strconv.FormatFloat(d, 'g', -1, bits)
	case [2]uint16:
		return fmt.Sprintf("%d,%d", d[0], d[1])
	case string:
		return d
	case []byte:
		return hex.EncodeToString(d)
	}
	return hex.EncodeToString(v.Raw)
}

// Hex returns the raw octets as lowercase hexadecimal.
func (v Value) Hex() string {
	return hex.EncodeToString(v.Raw)
}

// MarshalJSON emits numbers and booleans natively and everything else as
// its rendered string.
func (v Value) MarshalJSON() ([]byte, error) {
	if v.Special == "" {
		switch d := v.Data.(type) {
		case bool, uint64, int64:
			return json.Marshal(d)
		case float64:
			if !math.IsNaN(d) && !math.IsInf(d, 0) {
				return []byte(v.String()), nil
			}
		}
	}
	return json.Marshal(v.String())
}
