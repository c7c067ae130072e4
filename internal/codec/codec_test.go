package codec

import (
	"math"
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecode(t *testing.T) {
	tests := []struct {
		name   string
		format string
		data   []byte
		want   any
		render string
	}{
		{"uint8", "uint8", []byte{0x2A}, uint64(42), "42"},
		{"boolean true", "boolean", []byte{0x01}, true, "true"},
		{"boolean false", "BOOLEAN", []byte{0x00}, false, "false"},
		{"uint16 little endian", "uint16", []byte{0x02, 0x01}, uint64(258), "258"},
		{"uint12 keeps low bits", "uint12", []byte{0xFF, 0xFF}, uint64(0x0FFF), "4095"},
		{"sint12 negative", "sint12", []byte{0xFF, 0x0F}, int64(-1), "-1"},
		{"uint24", "uint24", []byte{0x01, 0x02, 0x03}, uint64(0x030201), "197121"},
		{"sint16 negative", "sint16", []byte{0xFE, 0xFF}, int64(-2), "-2"},
		{"sint8 min", "sint8", []byte{0x80}, int64(-128), "-128"},
		{"uint48", "uint48", []byte{1, 0, 0, 0, 0, 1}, uint64(1<<40 + 1), "1099511627777"},
		{"uint64 max", "uint64", []byte{0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF}, uint64(math.MaxUint64), "18446744073709551615"},
		{"float32", "float32", []byte{0x00, 0x00, 0x20, 0x41}, float64(10), "10"},
		{"float64", "float64", []byte{0, 0, 0, 0, 0, 0, 0xF0, 0x3F}, float64(1), "1"},
		{"sfloat 36.6", "SFLOAT", []byte{0x6E, 0xF1}, 36.6, "36.6"},
		{"float 36.4", "FLOAT", []byte{0x6C, 0x01, 0x00, 0xFF}, 36.4, "36.4"},
		{"duint16", "duint16", []byte{0x01, 0x00, 0x02, 0x00}, [2]uint16{1, 2}, "1,2"},
		{"dunit16 alias", "dunit16", []byte{0x01, 0x00, 0x02, 0x00}, [2]uint16{1, 2}, "1,2"},
		{"utf8s", "utf8s", []byte("Heart Rate\x00"), "Heart Rate", "Heart Rate"},
		{"utf16s", "utf16s", []byte{'h', 0, 'i', 0}, "hi", "hi"},
		{"hex", "hex", []byte{0xDE, 0xAD}, []byte{0xDE, 0xAD}, "dead"},
		{"16bit opaque", "16bit", []byte{0x0A, 0x0B, 0xFF}, []byte{0x0A, 0x0B}, "0a0b"},
		{"trailing bytes ignored", "uint8", []byte{0x07, 0xFF}, uint64(7), "7"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := Decode(tt.format, tt.data)
			require.NoError(t, err)
			assert.Equal(t, tt.want, v.Data)
			assert.Equal(t, tt.render, v.String())
		})
	}
}

func TestDecodeUnknownFormatFallsBackToHex(t *testing.T) {
	for _, name := range []string{"vendor-thing", "", "uint7"} {
		v, err := Decode(name, []byte{0x01, 0xAB})
		require.NoError(t, err, name)
		assert.Equal(t, Hex, v.Format)
		assert.Equal(t, "01ab", v.String())
	}
}

func TestDecodeErrors(t *testing.T) {
	_, err := Decode("uint32", []byte{0x01, 0x02})
	assert.ErrorIs(t, err, ErrTruncated)
	var de *DecodeError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, 4, de.Want)
	assert.Equal(t, 2, de.Got)

	_, err = Decode("boolean", []byte{0x02})
	assert.ErrorIs(t, err, ErrMalformedEncoding)

	_, err = Decode("utf8s", []byte{0xFF, 0xFE})
	assert.ErrorIs(t, err, ErrMalformedEncoding)

	_, err = Decode("utf16s", []byte{0x41})
	assert.ErrorIs(t, err, ErrMalformedEncoding)

	_, err = Decode("boolean", nil)
	assert.ErrorIs(t, err, ErrTruncated)
}

func TestDecodeMedicalSpecials(t *testing.T) {
	tests := []struct {
		format string
		data   []byte
		want   string
	}{
		{"SFLOAT", []byte{0xFF, 0x07}, "NaN"},
		{"SFLOAT", []byte{0x00, 0x08}, "NRes"},
		{"SFLOAT", []byte{0xFE, 0x07}, "+INF"},
		{"SFLOAT", []byte{0x02, 0x08}, "-INF"},
		{"FLOAT", []byte{0xFF, 0xFF, 0x7F, 0x00}, "NaN"},
		{"FLOAT", []byte{0x02, 0x00, 0x80, 0x00}, "-INF"},
	}
	for _, tt := range tests {
		v, err := Decode(tt.format, tt.data)
		require.NoError(t, err)
		assert.Equal(t, tt.want, v.String())
	}
}

func TestEncode(t *testing.T) {
	tests := []struct {
		format string
		input  string
		want   []byte
	}{
		{"uint16", "258", []byte{0x02, 0x01}},
		{"uint8", "0x2a", []byte{0x2A}},
		{"uint8", "255", []byte{0xFF}},
		{"sint8", "-1", []byte{0xFF}},
		{"sint12", "-1", []byte{0xFF, 0x0F}},
		{"uint24", "197121", []byte{0x01, 0x02, 0x03}},
		{"uint128", "1", append([]byte{0x01}, make([]byte, 15)...)},
		{"boolean", "true", []byte{0x01}},
		{"boolean", "0", []byte{0x00}},
		{"float32", "10", []byte{0x00, 0x00, 0x20, 0x41}},
		{"SFLOAT", "36.6", []byte{0x6E, 0xF1}},
		{"SFLOAT", "NRes", []byte{0x00, 0x08}},
		{"FLOAT", "-INF", []byte{0x02, 0x00, 0x80, 0x00}},
		{"duint16", "1,2", []byte{0x01, 0x00, 0x02, 0x00}},
		{"utf8s", "hi", []byte("hi")},
		{"utf16s", "hi", []byte{'h', 0, 'i', 0}},
		{"hex", "0xdeadbeef", []byte{0xDE, 0xAD, 0xBE, 0xEF}},
		{"hex", "abc", []byte{0x0A, 0xBC}},
		{"16bit", "0a0b", []byte{0x0A, 0x0B}},
	}
	for _, tt := range tests {
		t.Run(tt.format+" "+tt.input, func(t *testing.T) {
			got, err := Encode(tt.format, tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEncodeErrors(t *testing.T) {
	tests := []struct {
		format string
		input  string
		want   error
	}{
		{"uint8", "256", ErrInvalidNumericLiteral},
		{"uint8", "-1", ErrInvalidNumericLiteral},
		{"sint8", "128", ErrInvalidNumericLiteral},
		{"uint16", "twelve", ErrInvalidNumericLiteral},
		{"uint16", "010x", ErrInvalidNumericLiteral},
		{"float32", "1.2.3", ErrInvalidNumericLiteral},
		{"SFLOAT", "1e300", ErrInvalidNumericLiteral},
		{"hex", "zz", ErrInvalidNumericLiteral},
		{"boolean", "maybe", ErrInvalidValue},
		{"16bit", "0a", ErrInvalidValue},
		{"not-a-format", "1", ErrUnknownFormat},
	}
	for _, tt := range tests {
		t.Run(tt.format+" "+tt.input, func(t *testing.T) {
			_, err := Encode(tt.format, tt.input)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

// Decoding, rendering, encoding the rendering and decoding again must give
// back the same value for every numeric format.
func TestNumericRoundTrip(t *testing.T) {
	samples := map[Format][][]byte{
		Uint8:   {{0x00}, {0x2A}, {0xFF}},
		Uint12:  {{0x34, 0x02}, {0xFF, 0x0F}},
		Uint16:  {{0x02, 0x01}, {0xFF, 0xFF}},
		Uint24:  {{0x01, 0x02, 0x03}},
		Uint32:  {{0x78, 0x56, 0x34, 0x12}},
		Uint40:  {{1, 2, 3, 4, 5}},
		Uint48:  {{1, 2, 3, 4, 5, 6}},
		Uint64:  {{1, 2, 3, 4, 5, 6, 7, 0xF8}},
		Uint128: {{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15, 0xFF}},
		Sint8:   {{0x80}, {0x7F}, {0xFF}},
		Sint12:  {{0x00, 0x08}, {0xFF, 0x07}},
		Sint16:  {{0x00, 0x80}, {0x34, 0x12}},
		Sint24:  {{0xFF, 0xFF, 0xFF}},
		Sint32:  {{0x00, 0x00, 0x00, 0x80}},
		Sint48:  {{0xFE, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF}},
		Sint64:  {{0, 0, 0, 0, 0, 0, 0, 0x80}},
		Sint128: {{0xFE, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF}},
		Float32: {{0xCD, 0xCC, 0x8C, 0x3F}, {0x00, 0x00, 0x20, 0xC1}},
		Float64: {{0x9A, 0x99, 0x99, 0x99, 0x99, 0x99, 0xF1, 0x3F}},
		SFloat:  {{0x6E, 0xF1}, {0x01, 0x00}, {0xFF, 0x87}, {0x10, 0x2F}},
		Float:   {{0x6C, 0x01, 0x00, 0xFF}, {0x39, 0x30, 0x00, 0x02}},
		Duint16: {{0xFF, 0xFF, 0x00, 0x00}},
	}
	for f, inputs := range samples {
		for _, b := range inputs {
			first, err := f.Decode(b)
			require.NoError(t, err, "%s %x", f, b)

			encoded, err := f.Encode(first.String())
			require.NoError(t, err, "%s %q", f, first.String())

			second, err := f.Decode(encoded)
			require.NoError(t, err)
			assert.Equal(t, first.Data, second.Data, "%s %x -> %q -> %x", f, b, first.String(), encoded)
		}
	}
}

func TestDecode128(t *testing.T) {
	v, err := Decode("sint128", append([]byte{0xFE}, bytesOf(0xFF, 15)...))
	require.NoError(t, err)
	assert.Equal(t, 0, v.Data.(*big.Int).Cmp(big.NewInt(-2)))
	assert.Equal(t, "-2", v.String())
}

func TestLookup(t *testing.T) {
	f, ok := Lookup("sfloat")
	require.True(t, ok)
	assert.Equal(t, SFloat, f)

	f, ok = Lookup("Array[]")
	require.True(t, ok)
	assert.Equal(t, Array, f)

	_, ok = Lookup("uint7")
	assert.False(t, ok)

	assert.Len(t, Formats(), int(numFormats))
}

func TestFromPresentation(t *testing.T) {
	tests := map[uint8]Format{
		0x01: Boolean,
		0x04: Uint8,
		0x06: Uint16,
		0x07: Uint24,
		0x0E: Sint16,
		0x16: SFloat,
		0x19: UTF8S,
	}
	for code, want := range tests {
		got, ok := FromPresentation(code)
		require.True(t, ok)
		assert.Equal(t, want, got)
	}
	_, ok := FromPresentation(0xEE)
	assert.False(t, ok)
}

func TestValueJSON(t *testing.T) {
	v, err := Decode("uint16", []byte{0x02, 0x01})
	require.NoError(t, err)
	b, err := v.MarshalJSON()
	require.NoError(t, err)
	assert.Equal(t, "258", string(b))

	v, err = Decode("SFLOAT", []byte{0xFF, 0x07})
	require.NoError(t, err)
	b, err = v.MarshalJSON()
	require.NoError(t, err)
	assert.Equal(t, `"NaN"`, string(b))
}

func bytesOf(b byte, n int) []byte {
	out := make([]byte, n)
	for i := range out {
		out[i] = b
	}
	return out
}
