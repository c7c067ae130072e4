package access

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vitaminmoo/gattx/internal/codec"
	"github.com/vitaminmoo/gattx/internal/explore"
	"github.com/vitaminmoo/gattx/internal/gatt"
	"github.com/vitaminmoo/gattx/internal/transport"
	"github.com/vitaminmoo/gattx/internal/transport/sim"
)

func TestParse(t *testing.T) {
	tests := []struct {
		input string
		want  Command
	}{
		{"2 READ", Command{Index: 2, Action: Read, Format: "hex"}},
		{"2 read", Command{Index: 2, Action: Read, Format: "hex"}},
		{`42 READ uint32 "5"`, Command{Index: 42, Action: Read, Format: "uint32", Explicit: true, Value: "5"}},
		{`42 READ UInt32"is_the_answer"`, Command{Index: 42, Action: Read, Format: "UInt32", Explicit: true, Value: "is_the_answer"}},
		{"0 READ utf8s", Command{Index: 0, Action: Read, Format: "utf8s", Explicit: true}},
		{"  1   Write   uint16   258  ", Command{Index: 1, Action: Write, Format: "uint16", Explicit: true, Value: "258"}},
		{`3 WRITE "hello"`, Command{Index: 3, Action: Write, Format: "hex", Value: "hello"}},
		{"3 WRITE 0a0b", Command{Index: 3, Action: Write, Format: "hex", Explicit: true, Value: "0a0b"}},
		{"3 WRITE utf8s hello world", Command{Index: 3, Action: Write, Format: "utf8s", Explicit: true, Value: "hello world"}},
		{`3 WRITE utf8s "say \"hi\""`, Command{Index: 3, Action: Write, Format: "utf8s", Explicit: true, Value: `say "hi"`}},
		{"4 READ Array[]", Command{Index: 4, Action: Read, Format: "Array[]", Explicit: true}},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := Parse(tt.input)
			require.NoError(t, err)
			tt.want.Input = tt.input
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		input string
		check func(t *testing.T, err error)
	}{
		{"garbage", isSyntax},
		{"", isSyntax},
		{"READ 2", isSyntax},
		{"2 DELETE", isSyntax},
		{"-1 READ", isSyntax},
		{"2READ", isSyntax},
		{`2 WRITE "unterminated`, isSyntax},
		{"2 WRITE utf8s:oops", isSyntax},
		{"99999999999999999999999 READ", isSyntax},
		{"5 WRITE", isMissing},
		{`5 WRITE ""`, isMissing},
		{"5 WRITE uint8", isMissing},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			_, err := Parse(tt.input)
			require.Error(t, err)
			tt.check(t, err)
		})
	}
}

func isSyntax(t *testing.T, err error) {
	t.Helper()
	var se *SyntaxError
	assert.ErrorAs(t, err, &se)
	assert.Equal(t, KindSyntax, Kind(err))
}

func isMissing(t *testing.T, err error) {
	t.Helper()
	assert.ErrorIs(t, err, ErrMissingValue)
	assert.Equal(t, KindMissingValue, Kind(err))
}

func TestParseForValidationOrder(t *testing.T) {
	_, err := ParseFor("garbage", 0)
	isSyntax(t, err)

	_, err = ParseFor("5 WRITE", 3)
	var ie *IndexOutOfRangeError
	require.ErrorAs(t, err, &ie, "index is checked before the value")
	assert.Equal(t, 5, ie.Index)
	assert.Equal(t, 2, ie.Max)
	assert.Equal(t, KindIndex, Kind(err))

	_, err = ParseFor("0 READ", 0)
	require.ErrorAs(t, err, &ie)
	assert.Equal(t, -1, ie.Max)

	_, err = ParseFor("2 WRITE", 3)
	isMissing(t, err)

	cmd, err := ParseFor("2 READ", 3)
	require.NoError(t, err)
	assert.Equal(t, 2, cmd.Index)
}

func TestParseKeyword(t *testing.T) {
	assert.Equal(t, Exit, ParseKeyword("exit"))
	assert.Equal(t, Back, ParseKeyword(" BACK "))
	assert.Equal(t, Help, ParseKeyword("Help"))
	assert.Equal(t, NoKeyword, ParseKeyword("2 READ"))
}

const addr = "c4:be:84:70:2b:11"

func characteristics(t *testing.T, hook sim.Hook) (*sim.Transport, []*explore.Characteristic) {
	t.Helper()
	p := sim.Profile{Peripherals: []sim.PeripheralProfile{{
		Address: addr,
		Services: []sim.ServiceProfile{{
			UUID: "180f",
			Characteristics: []sim.CharacteristicProfile{
				{UUID: "2a19", Properties: []string{"read", "notify"}, Value: "64"},
				{UUID: "2a00", Properties: []string{"read", "write"}, Text: "SensorTag"},
				{UUID: "f000aa02-0451-4000-b000-000000000000", Properties: []string{"read", "write"}, Value: "00"},
				{UUID: "f000aa03-0451-4000-b000-000000000000", Properties: []string{"read"}, Value: "ff"},
				{UUID: "2a6e", Properties: []string{"read"}, Value: "01"},
			},
		}},
	}}}
	tr, err := sim.New(p)
	require.NoError(t, err)
	conn, err := tr.Connect(context.Background(), addr)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Disconnect() })

	topo := &explore.Topology{Peripheral: gatt.Peripheral{Address: addr}}
	e := explore.New(explore.Options{DefaultFormats: true})
	require.NoError(t, e.Walk(context.Background(), conn, topo))
	if hook != nil {
		tr.SetHook(hook)
	}
	return tr, topo.Services[0].Characteristics
}

func TestRunRead(t *testing.T) {
	_, chars := characteristics(t, nil)
	ctx := context.Background()

	tests := []struct {
		input  string
		format string
		want   string
	}{
		{"0 READ", "hex", "64"},
		{"0 READ hex", "hex", "64"},
		{"0 READ uint8", "uint8", "100"},
		{"0 READ sint8", "sint8", "100"},
		{"1 READ", "hex", "53656e736f72546167"},
		{"1 READ utf8s", "utf8s", "SensorTag"},
		{"2 READ", "hex", "00"},
		{"4 READ", "hex", "01"},
		{"3 READ vendor_blob", "hex", "ff"},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			r := Run(ctx, chars, tt.input)
			require.True(t, r.OK, r.Error)
			assert.Equal(t, tt.format, r.Format)
			require.NotNil(t, r.Value)
			assert.Equal(t, tt.want, r.Value.String())
			assert.Equal(t, KindNone, r.Kind)
		})
	}
}

func TestRunReadDecodeError(t *testing.T) {
	_, chars := characteristics(t, nil)

	r := Run(context.Background(), chars, "4 READ sint16")
	assert.False(t, r.OK)
	assert.Equal(t, KindDecode, r.Kind)
	assert.ErrorIs(t, r.Err, codec.ErrTruncated)
	assert.Equal(t, HexBytes{0x01}, r.Raw)
}

func TestRunWrite(t *testing.T) {
	tr, chars := characteristics(t, nil)
	ctx := context.Background()
	svc := gatt.UUID("180f")
	conf := gatt.MustParseUUID("f000aa02-0451-4000-b000-000000000000")

	r := Run(ctx, chars, "2 WRITE 01")
	require.True(t, r.OK, r.Error)
	assert.Equal(t, HexBytes{0x01}, r.Written)
	got, _ := tr.Value(addr, svc, conf)
	assert.Equal(t, []byte{0x01}, got)

	r = Run(ctx, chars, "2 WRITE uint16 258")
	require.True(t, r.OK, r.Error)
	got, _ = tr.Value(addr, svc, conf)
	assert.Equal(t, []byte{0x02, 0x01}, got)

	r = Run(ctx, chars, `1 WRITE utf8s "Tag"`)
	require.True(t, r.OK, r.Error)
	assert.Equal(t, "utf8s", r.Format)
	got, _ = tr.Value(addr, svc, "2a00")
	assert.Equal(t, []byte("Tag"), got)
}

// A command without a format is hex, whatever the characteristic's
// display format is.
func TestRunWithoutFormatIsHex(t *testing.T) {
	tr, chars := characteristics(t, nil)
	ctx := context.Background()
	require.Equal(t, codec.Uint8, chars[0].Format)

	r := Run(ctx, chars, `0 WRITE "0a"`)
	require.True(t, r.OK, r.Error)
	assert.Equal(t, "hex", r.Format)
	assert.Equal(t, HexBytes{0x0a}, r.Written)
	got, _ := tr.Value(addr, "180f", "2a19")
	assert.Equal(t, []byte{0x0a}, got)

	r = Run(ctx, chars, "0 READ")
	require.True(t, r.OK, r.Error)
	assert.Equal(t, "hex", r.Format)
	assert.Equal(t, "0a", r.Value.String())

	r = Run(ctx, chars, `1 WRITE "Tag"`)
	assert.Equal(t, KindEncode, r.Kind)
	assert.Equal(t, "hex", r.Format)
}

func TestRunWriteFailures(t *testing.T) {
	tr, chars := characteristics(t, nil)
	ctx := context.Background()
	writes := tr.Calls(sim.OpWrite)

	r := Run(ctx, chars, "2 WRITE uint8 300")
	assert.Equal(t, KindEncode, r.Kind)
	assert.ErrorIs(t, r.Err, codec.ErrInvalidNumericLiteral)

	r = Run(ctx, chars, "2 WRITE nosuchformat 1")
	assert.Equal(t, KindEncode, r.Kind)
	assert.ErrorIs(t, r.Err, codec.ErrUnknownFormat)
	assert.Equal(t, writes, tr.Calls(sim.OpWrite), "encode failures never reach the transport")

	r = Run(ctx, chars, "3 WRITE 01")
	assert.False(t, r.OK)
	assert.Equal(t, KindTransport, r.Kind)
	var te *transport.Error
	assert.ErrorAs(t, r.Err, &te)
}

func TestRunTransportFailure(t *testing.T) {
	_, chars := characteristics(t, func(ctx context.Context, op sim.Op, target string) error {
		if op == sim.OpRead {
			return errors.New("att: insufficient authentication")
		}
		return nil
	})

	r := Run(context.Background(), chars, "0 READ")
	assert.False(t, r.OK)
	assert.Equal(t, KindTransport, r.Kind)
	assert.Contains(t, r.Error, "insufficient authentication")
	assert.Equal(t, gatt.UUID("2a19"), r.Characteristic)
}

func TestRunDisconnected(t *testing.T) {
	tr, chars := characteristics(t, nil)
	tr.DropConnection(addr)

	r := Run(context.Background(), chars, "0 READ")
	assert.Equal(t, KindDisconnected, r.Kind)
	assert.ErrorIs(t, r.Err, transport.ErrDisconnected)
}

type stateErr struct{}

func (stateErr) Error() string { return "not connected" }
func (stateErr) ErrorKind() ErrorKind { return KindState }

func TestKind(t *testing.T) {
	tests := []struct {
		err  error
		want ErrorKind
	}{
		{nil, KindNone},
		{fmt.Errorf("op: %w", stateErr{}), KindState},
		{transport.Wrap("read", "2a19", errors.New("boom")), KindTransport},
		{transport.Wrap("read", "2a19", transport.ErrDisconnected), KindDisconnected},
		{context.DeadlineExceeded, KindTransport},
		{&codec.DecodeError{Format: "uint8", Kind: codec.Truncated}, KindDecode},
		{&codec.EncodeError{Format: "uint8", Kind: codec.InvalidValue}, KindEncode},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Kind(tt.err), "%v", tt.err)
	}
}
