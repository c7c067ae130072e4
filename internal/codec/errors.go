package codec

import "fmt"

// ErrorKind classifies codec failures.
type ErrorKind int

const (
	UnknownFormat ErrorKind = iota + 1
	Truncated
	MalformedEncoding
	InvalidNumericLiteral
	InvalidValue
)

func (k ErrorKind) String() string {
	switch k {
	case UnknownFormat:
		return "unknown format"
	case Truncated:
		return "truncated"
	case MalformedEncoding:
		return "malformed encoding"
	case InvalidNumericLiteral:
		return "invalid numeric literal"
	case InvalidValue:
		return "invalid value"
	}
	return "codec error"
}

// Sentinels for errors.Is. They match any error of the same kind.
var (
	ErrTruncated             = &DecodeError{Kind: Truncated}
	ErrMalformedEncoding     = &DecodeError{Kind: MalformedEncoding}
	ErrUnknownFormat         = &EncodeError{Kind: UnknownFormat}
	ErrInvalidNumericLiteral = &EncodeError{Kind: InvalidNumericLiteral}
	ErrInvalidValue          = &EncodeError{Kind: InvalidValue}
)

// DecodeError reports bytes that could not be turned into a value.
type DecodeError struct {
	Format string
	Kind   ErrorKind
	Want   int // expected octets, for Truncated
	Got    int
	Detail string
}

func (e *DecodeError) Error() string {
	switch {
	case e.Kind == Truncated:
		return fmt.Sprintf("decode %s: truncated: want %d bytes, got %d", e.Format, e.Want, e.Got)
	case e.Detail != "":
		return fmt.Sprintf("decode %s: %s: %s", e.Format, e.Kind, e.Detail)
	}
	return fmt.Sprintf("decode %s: %s", e.Format, e.Kind)
}

// Is matches a sentinel of the same kind.
func (e *DecodeError) Is(target error) bool {
	t, ok := target.(*DecodeError)
	return ok && t.Format == "" && t.Kind == e.Kind
}

// EncodeError reports user input that could not be turned into bytes.
type EncodeError struct {
	Format string
	Kind   ErrorKind
	Input  string
	Err    error
}

func (e *EncodeError) Error() string {
	msg := fmt.Sprintf("encode %s: %s %q", e.Format, e.Kind, e.Input)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *EncodeError) Unwrap() error { return e.Err }

// Is matches a sentinel of the same kind.
func (e *EncodeError) Is(target error) bool {
	t, ok := target.(*EncodeError)
	return ok && t.Format == "" && t.Kind == e.Kind
}
