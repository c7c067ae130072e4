package access

import (
	"errors"
	"fmt"

	"github.com/vitaminmoo/gattx/internal/codec"
	"github.com/vitaminmoo/gattx/internal/transport"
)

// SyntaxError is a command that does not match the grammar.
type SyntaxError struct {
	Input  string
	Reason string
}

func (e *SyntaxError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("invalid command %q: %s", e.Input, e.Reason)
	}
	return fmt.Sprintf("invalid command %q: want <index> <READ|WRITE> [<format>] [<value>]", e.Input)
}

// IndexOutOfRangeError is a command naming a characteristic that does not
// exist. Max is the highest valid index, -1 when there are none.
type IndexOutOfRangeError struct {
	Index int
	Max   int
}

func (e *IndexOutOfRangeError) Error() string {
	if e.Max < 0 {
		return fmt.Sprintf("index %d out of range: service has no characteristics", e.Index)
	}
	return fmt.Sprintf("index %d out of range: want 0..%d", e.Index, e.Max)
}

// ErrMissingValue is a WRITE without a value.
var ErrMissingValue = errors.New("WRITE needs a value")

var errBadQuote = errors.New(`value must be a complete "quoted" string`)

// ErrorKind is the presentation-facing classification of a failure.
type ErrorKind string

const (
	KindNone         ErrorKind = ""
	KindTransport    ErrorKind = "transport"
	KindDecode       ErrorKind = "decode"
	KindEncode       ErrorKind = "encode"
	KindSyntax       ErrorKind = "syntax"
	KindIndex        ErrorKind = "index"
	KindMissingValue ErrorKind = "missing-value"
	KindState        ErrorKind = "state"
	KindDisconnected ErrorKind = "disconnected"
)

// Kinder is implemented by errors from other layers that classify
// themselves, such as session state errors.
type Kinder interface {
	error
	ErrorKind() ErrorKind
}

// Kind classifies err. Transport failures and codec failures never share a
// kind, so callers can tell a dead link from bytes that did not decode.
func Kind(err error) ErrorKind {
	if err == nil {
		return KindNone
	}
	var (
		k  Kinder
		se *SyntaxError
		ie *IndexOutOfRangeError
		de *codec.DecodeError
		ee *codec.EncodeError
	)
	switch {
	case errors.Is(err, transport.ErrDisconnected):
		return KindDisconnected
	case errors.As(err, &k):
		return k.ErrorKind()
	case errors.As(err, &se):
		return KindSyntax
	case errors.As(err, &ie):
		return KindIndex
	case errors.Is(err, ErrMissingValue):
		return KindMissingValue
	case errors.As(err, &de):
		return KindDecode
	case errors.As(err, &ee):
		return KindEncode
	}
	// Everything else came from below the core: a transport.Error, or a
	// request that timed out or was cancelled.
	return KindTransport
}
