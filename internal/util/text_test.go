package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsTextData(t *testing.T) {
	assert.True(t, IsTextData([]byte("SensorTag 2.0\n")))
	assert.True(t, IsTextData(nil))
	assert.False(t, IsTextData([]byte{0x64, 0x00}))
	assert.False(t, IsTextData([]byte{0xff}))
}

func TestHexDump(t *testing.T) {
	got := HexDump([]byte("0123456789abcdefXY\x00"))
	want := "0000  30 31 32 33 34 35 36 37  38 39 61 62 63 64 65 66  |0123456789abcdef|\n" +
		"0010  58 59 00                                          |XY.|\n"
	assert.Equal(t, want, got)
	assert.Empty(t, HexDump(nil))
}

func TestPreview(t *testing.T) {
	tests := []struct {
		in   []byte
		want string
	}{
		{nil, ""},
		{[]byte("Thermo 1"), `"Thermo 1"`},
		{[]byte{0x64}, "0x64"},
		{[]byte("a\nb"), "0x610A62"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Preview(tt.in), "%x", tt.in)
	}
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "Heart Rate", Truncate("Heart Rate", 10))
	assert.Equal(t, "Heart R…", Truncate("Heart Rate", 8))
	assert.Equal(t, "°C", Truncate("°C", 2))
	assert.Equal(t, "abc", Truncate("abc", 0))
}

func TestFormatMAC(t *testing.T) {
	assert.Equal(t, "c4:be:84:70:2b:11", FormatMAC("C4BE84702B11"))
	assert.Equal(t, "c4:be:84:70:2b:11", FormatMAC("c4-be-84-70-2b-11"))
	assert.Equal(t, "0a1b2c3d-aaaa-bbbb-cccc-1234567890ab", FormatMAC("0a1b2c3d-aaaa-bbbb-cccc-1234567890ab"))
}
