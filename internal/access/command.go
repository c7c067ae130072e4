// Package access parses and runs the per-characteristic READ/WRITE command
// language used by the interactive prompt and the read/write subcommands.
package access

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/vitaminmoo/gattx/internal/codec"
)

// Action is what a command does to the characteristic.
type Action string

const (
	Read  Action = "READ"
	Write Action = "WRITE"
)

// Command is a parsed request: `<index> <READ|WRITE> [<format>] [<value>]`.
type Command struct {
	Index  int
	Action Action
	// Format is the identifier as typed, or "hex" when omitted.
	Format string
	// Explicit is false when the format was omitted, in which case the
	// characteristic's default format applies.
	Explicit bool
	Value    string
	Input    string
}

// Keyword is a prompt navigation word.
type Keyword int

const (
	NoKeyword Keyword = iota
	Exit
	Back
	Help
)

var (
	commandPattern = regexp.MustCompile(`(?i)^(\d+)\s+(READ|WRITE)(?:\s+(.*?))?\s*$`)
	formatPattern  = regexp.MustCompile(`^([A-Za-z0-9_\-\[\]]+)(?:\s+|$|("))`)
)

// ParseKeyword recognises EXIT, BACK and HELP, ignoring case.
func ParseKeyword(text string) Keyword {
	switch strings.ToUpper(strings.TrimSpace(text)) {
	case "EXIT":
		return Exit
	case "BACK":
		return Back
	case "HELP":
		return Help
	}
	return NoKeyword
}

// Parse checks the grammar and, for WRITE, that a value is present.
func Parse(text string) (Command, error) {
	cmd, err := parse(text)
	if err != nil {
		return Command{}, err
	}
	if err := cmd.checkValue(); err != nil {
		return Command{}, err
	}
	return cmd, nil
}

// ParseFor validates in order: grammar, index against count characteristics,
// then the WRITE value.
func ParseFor(text string, count int) (Command, error) {
	cmd, err := parse(text)
	if err != nil {
		return Command{}, err
	}
	if cmd.Index >= count {
		return Command{}, &IndexOutOfRangeError{Index: cmd.Index, Max: count - 1}
	}
	if err := cmd.checkValue(); err != nil {
		return Command{}, err
	}
	return cmd, nil
}

func (c Command) checkValue() error {
	if c.Action == Write && c.Value == "" {
		return ErrMissingValue
	}
	return nil
}

func parse(text string) (Command, error) {
	m := commandPattern.FindStringSubmatch(strings.TrimSpace(text))
	if m == nil {
		return Command{}, &SyntaxError{Input: text}
	}
	index, err := strconv.Atoi(m[1])
	if err != nil {
		return Command{}, &SyntaxError{Input: text, Reason: "index is too large"}
	}
	cmd := Command{
		Index:  index,
		Action: Action(strings.ToUpper(m[2])),
		Format: codec.Hex.String(),
		Input:  text,
	}

	rest := m[3]
	if rest == "" {
		return cmd, nil
	}
	if strings.HasPrefix(rest, `"`) {
		v, err := unquote(rest)
		if err != nil {
			return Command{}, &SyntaxError{Input: text, Reason: err.Error()}
		}
		cmd.Value = v
		return cmd, nil
	}

	fm := formatPattern.FindStringSubmatchIndex(rest)
	if fm == nil {
		return Command{}, &SyntaxError{Input: text, Reason: "expected a format or a quoted value"}
	}
	token := rest[fm[2]:fm[3]]
	tail := rest[fm[1]:]
	if fm[4] >= 0 {
		// format immediately followed by a quoted value, e.g. uint32"5"
		tail = rest[fm[4]:]
	}

	if tail == "" {
		// A lone WRITE token is a hex payload unless it names a format.
		if _, known := codec.Lookup(token); cmd.Action == Write && !known {
			cmd.Explicit = true
			cmd.Value = token
			return cmd, nil
		}
		cmd.Format, cmd.Explicit = token, true
		return cmd, nil
	}

	cmd.Format, cmd.Explicit = token, true
	if strings.HasPrefix(tail, `"`) {
		v, err := unquote(tail)
		if err != nil {
			return Command{}, &SyntaxError{Input: text, Reason: err.Error()}
		}
		cmd.Value = v
		return cmd, nil
	}
	cmd.Value = tail
	return cmd, nil
}

// unquote accepts Go-style escapes inside a double-quoted value.
func unquote(s string) (string, error) {
	s = strings.TrimSpace(s)
	if len(s) < 2 || !strings.HasSuffix(s, `"`) {
		return "", errBadQuote
	}
	v, err := strconv.Unquote(s)
	if err != nil {
		return "", errBadQuote
	}
	return v, nil
}

func (c Command) String() string {
	var b strings.Builder
	b.WriteString(strconv.Itoa(c.Index))
	b.WriteByte(' ')
	b.WriteString(string(c.Action))
	if c.Explicit {
		b.WriteByte(' ')
		b.WriteString(c.Format)
	}
	if c.Value != "" {
		b.WriteByte(' ')
		b.WriteString(strconv.Quote(c.Value))
	}
	return b.String()
}
