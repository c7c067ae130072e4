package access

import (
	"context"
	"encoding/hex"
	"errors"

	"github.com/sirupsen/logrus"

	"github.com/vitaminmoo/gattx/internal/codec"
	"github.com/vitaminmoo/gattx/internal/config"
	"github.com/vitaminmoo/gattx/internal/explore"
	"github.com/vitaminmoo/gattx/internal/gatt"
	"github.com/vitaminmoo/gattx/internal/transport"
)

// Result is the outcome of one command, ready for the presentation layer.
type Result struct {
	Command        Command      `json:"-"`
	Input          string       `json:"command"`
	Characteristic gatt.UUID    `json:"characteristic,omitempty"`
	OK             bool         `json:"ok"`
	Format         string       `json:"format,omitempty"`
	Value          *codec.Value `json:"value,omitempty"`
	Raw            HexBytes     `json:"raw,omitempty"`
	Written        HexBytes     `json:"written,omitempty"`
	Kind           ErrorKind    `json:"error_kind,omitempty"`
	Error          string       `json:"error,omitempty"`
	Err            error        `json:"-"`
}

// HexBytes marshals as a lowercase hex string.
type HexBytes []byte

func (b HexBytes) MarshalText() ([]byte, error) {
	return []byte(hex.EncodeToString(b)), nil
}

func failed(r Result, err error) Result {
	r.OK = false
	r.Err = err
	r.Error = err.Error()
	r.Kind = Kind(err)
	return r
}

// Run parses text against chars and executes it. Parse failures come back as
// a failed Result, never as a panic or a partial request.
func Run(ctx context.Context, chars []*explore.Characteristic, text string) Result {
	cmd, err := ParseFor(text, len(chars))
	if err != nil {
		return failed(Result{Input: text}, err)
	}
	return Execute(ctx, chars, cmd)
}

// Execute runs a parsed command against the characteristic at cmd.Index.
// READ reads then decodes; WRITE encodes then writes with acknowledgement.
func Execute(ctx context.Context, chars []*explore.Characteristic, cmd Command) Result {
	r := Result{Command: cmd, Input: cmd.Input}
	if r.Input == "" {
		r.Input = cmd.String()
	}
	if cmd.Index < 0 || cmd.Index >= len(chars) {
		return failed(r, &IndexOutOfRangeError{Index: cmd.Index, Max: len(chars) - 1})
	}
	c := chars[cmd.Index]
	r.Characteristic = c.UUID

	log := config.Log.WithFields(logrus.Fields{
		"characteristic": c.UUID,
		"action":         cmd.Action,
	})
	remote := c.Remote()
	if remote == nil {
		return failed(r, transport.Wrap(string(cmd.Action), c.UUID.String(), errors.New("characteristic has no transport handle")))
	}

	switch cmd.Action {
	case Read:
		data, err := remote.Read(ctx)
		if err != nil {
			log.WithError(err).Debug("read failed")
			return failed(r, requestError(ctx, "read", c.UUID, err))
		}
		c.Value, c.ValueError = data, ""
		r.Raw = data

		r.Format = formatName(cmd)
		v, err := decode(cmd, data)
		if err != nil {
			return failed(r, err)
		}
		r.Value = &v
		r.OK = true
		log.WithField("value", v.String()).Debug("read")
		return r

	case Write:
		data, f, err := encode(cmd)
		r.Format = f
		if err != nil {
			return failed(r, err)
		}
		if err := remote.Write(ctx, data, true); err != nil {
			log.WithError(err).Debug("write failed")
			return failed(r, requestError(ctx, "write", c.UUID, err))
		}
		r.Written = data
		r.OK = true
		log.WithField("bytes", len(data)).Debug("wrote")
		return r
	}
	return failed(r, &SyntaxError{Input: r.Input, Reason: "unknown action " + string(cmd.Action)})
}

// decode uses the command's format, or hex when it names none.
func decode(cmd Command, data []byte) (codec.Value, error) {
	if cmd.Explicit {
		return codec.Decode(cmd.Format, data)
	}
	return codec.Hex.Decode(data)
}

func encode(cmd Command) ([]byte, string, error) {
	if cmd.Explicit {
		data, err := codec.Encode(cmd.Format, cmd.Value)
		return data, cmd.Format, err
	}
	data, err := codec.Hex.Encode(cmd.Value)
	return data, codec.Hex.String(), err
}

// formatName reports the format a READ decodes with. Unknown identifiers
// fall back to hex.
func formatName(cmd Command) string {
	if !cmd.Explicit {
		return codec.Hex.String()
	}
	f, _ := codec.Lookup(cmd.Format)
	return f.String()
}

// requestError tags a failed request as a transport failure, preferring the
// context error when the context ended first.
func requestError(ctx context.Context, op string, u gatt.UUID, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil && !errors.Is(err, transport.ErrDisconnected) {
		return transport.Wrap(op, u.String(), ctxErr)
	}
	return transport.Wrap(op, u.String(), err)
}
