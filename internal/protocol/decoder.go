package protocol

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Decode failure causes. Every error returned by the decoder wraps one of
// these.
var (
	ErrMissingField  = errors.New("missing field")
	ErrInvalidFormat = errors.New("invalid format")
	ErrInvalidJSON   = errors.New("invalid json payload")
)

// DecodeError is a failure to decode one line of a frame.
type DecodeError struct {
	// Line is the zero-based index of the line within its frame, or -1
	// when the line was decoded on its own.
	Line int
	Verb Verb
	Text string
	Err  error
}

func (e *DecodeError) Error() string {
	if e.Line >= 0 {
		return fmt.Sprintf("line %d: failed to parse %s: %v", e.Line, e.Verb, e.Err)
	}
	return fmt.Sprintf("failed to parse %s: %v", e.Verb, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// Frame is one decoded server frame.
type Frame struct {
	// RoomID is set when the frame started with a ">ROOMID" line.
	RoomID   string
	Messages []Message
	// Errors holds the lines that failed; the remaining lines are still
	// present in Messages, in order.
	Errors []*DecodeError
}

// Err joins the per-line errors, nil when every line decoded.
func (f *Frame) Err() error {
	if len(f.Errors) == 0 {
		return nil
	}
	errs := make([]error, len(f.Errors))
	for i, e := range f.Errors {
		errs[i] = e
	}
	return errors.Join(errs...)
}

type lineParser func(f fields) (Message, error)

// Decoder turns raw frames into messages. It holds no per-frame state and
// is safe for concurrent use.
type Decoder struct {
	logger zerolog.Logger
}

// NewDecoder creates a decoder with a component-scoped logger.
func NewDecoder() *Decoder {
	return &Decoder{
		logger: log.With().Str("component", "decoder").Logger(),
	}
}

// DecodeFrame splits a frame into its room id and lines and decodes every
// non-empty line. A malformed line is recorded in Frame.Errors and does not
// stop the rest of the frame from decoding.
func (d *Decoder) DecodeFrame(raw string) *Frame {
	frame := &Frame{}
	lines := strings.Split(raw, "\n")

	if len(lines) > 0 && strings.HasPrefix(lines[0], ">") {
		frame.RoomID = strings.TrimSpace(strings.TrimPrefix(lines[0], ">"))
		lines = lines[1:]
	}

	for i, line := range lines {
		line = strings.TrimRight(line, "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}

		msg, err := d.DecodeLine(line)
		if err != nil {
			var de *DecodeError
			if errors.As(err, &de) {
				de.Line = i
			} else {
				de = &DecodeError{Line: i, Text: line, Err: err}
			}
			frame.Errors = append(frame.Errors, de)
			continue
		}
		frame.Messages = append(frame.Messages, msg)
	}

	if len(frame.Errors) > 0 {
		d.logger.Debug().
			Str("room", frame.RoomID).
			Int("messages", len(frame.Messages)).
			Int("errors", len(frame.Errors)).
			Msg("frame decoded with errors")
	}

	return frame
}

// DecodeLine decodes a single protocol line. Lines that are not
// pipe-prefixed, and verbs that are not recognised, decode to Raw.
func (d *Decoder) DecodeLine(line string) (Message, error) {
	if !strings.HasPrefix(line, "|") {
		return Raw{Line: line}, nil
	}

	parts := strings.Split(line, "|")
	if len(parts) < 2 {
		return Raw{Line: line}, nil
	}

	verb, ok := LookupVerb(parts[1])
	if !ok {
		d.logger.Trace().Str("verb", parts[1]).Msg("unrecognised verb, passing through")
		return Raw{Line: line}, nil
	}

	parse := lineParsers[verb]
	if parse == nil {
		return Raw{Line: line}, nil
	}

	msg, err := parse(fields(parts[2:]))
	if err != nil {
		d.logger.Debug().
			Err(err).
			Str("verb", verb.String()).
			Str("line", line).
			Msg("malformed line")
		return nil, &DecodeError{Line: -1, Verb: verb, Text: line, Err: err}
	}
	return msg, nil
}

// fields are the pipe-separated values after the verb.
type fields []string

// get returns field i, or "" when the line is too short.
func (f fields) get(i int) string {
	if i < len(f) {
		return f[i]
	}
	return ""
}

// require returns field i or an ErrMissingField naming it.
func (f fields) require(i int, name string) (string, error) {
	if i >= len(f) || f[i] == "" {
		return "", fmt.Errorf("%w: %s", ErrMissingField, name)
	}
	return f[i], nil
}

// rest re-joins fields from i onwards. Free text may contain the delimiter.
func (f fields) rest(i int) string {
	if i >= len(f) {
		return ""
	}
	return strings.Join(f[i:], "|")
}

// number parses a required integer field.
func (f fields) number(i int, name string) (int, error) {
	s, err := f.require(i, name)
	if err != nil {
		return 0, err
	}
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("%w: %s %q", ErrInvalidFormat, name, s)
	}
	return n, nil
}

// ref parses a required pokemon reference.
func (f fields) ref(i int) (PokemonRef, error) {
	s, err := f.require(i, "pokemon")
	if err != nil {
		return PokemonRef{}, err
	}
	return ParsePokemonRef(s)
}

// tag finds a "[name] value" field from index start and returns its value.
func (f fields) tag(start int, name string) (string, bool) {
	prefix := "[" + name + "]"
	for i := start; i < len(f); i++ {
		if v, ok := strings.CutPrefix(f[i], prefix); ok {
			return strings.TrimSpace(v), true
		}
	}
	return "", false
}

// untagged returns the fields from start onwards that are not [tags].
func (f fields) untagged(start int) []string {
	var out []string
	for i := start; i < len(f); i++ {
		if f[i] == "" || strings.HasPrefix(f[i], "[") {
			continue
		}
		out = append(out, f[i])
	}
	return out
}

// plain returns field i unless it is a [tag].
func (f fields) plain(i int) string {
	s := f.get(i)
	if strings.HasPrefix(s, "[") {
		return ""
	}
	return s
}
