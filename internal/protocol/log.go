package protocol

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// ReadLogFile decodes a saved battle log from disk.
func (d *Decoder) ReadLogFile(path string) (*Frame, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open battle log %s: %w", path, err)
	}
	defer file.Close()

	frame, err := d.ReadLog(file)
	if err != nil {
		return frame, fmt.Errorf("failed to read battle log %s: %w", path, err)
	}

	d.logger.Info().
		Str("file", path).
		Str("room", frame.RoomID).
		Int("messages", len(frame.Messages)).
		Int("errors", len(frame.Errors)).
		Msg("battle log decoded")
	return frame, nil
}

// ReadLog decodes a line-per-message battle log, as saved by the client or
// exported from a replay. A leading byte order mark selects UTF-8 or
// UTF-16; logs without one are read as UTF-8. Lines starting with ">" set
// the room id. The returned frame holds everything decoded before a read
// error.
func (d *Decoder) ReadLog(r io.Reader) (*Frame, error) {
	decoded := transform.NewReader(r, unicode.BOMOverride(unicode.UTF8.NewDecoder()))

	scanner := bufio.NewScanner(decoded)
	scanner.Buffer(make([]byte, 1024*1024), 1024*1024) // 1MB buffer

	frame := &Frame{}
	lineNum := -1
	for scanner.Scan() {
		lineNum++
		line := cleanLine(scanner.Text())
		if line == "" {
			continue
		}
		if room, ok := strings.CutPrefix(line, ">"); ok {
			frame.RoomID = strings.TrimSpace(room)
			continue
		}

		msg, err := d.DecodeLine(line)
		if err != nil {
			var de *DecodeError
			if !errors.As(err, &de) {
				de = &DecodeError{Text: line, Err: err}
			}
			de.Line = lineNum
			frame.Errors = append(frame.Errors, de)
			continue
		}
		frame.Messages = append(frame.Messages, msg)
	}

	return frame, scanner.Err()
}

// cleanLine strips stray NUL bytes and trailing whitespace.
func cleanLine(line string) string {
	line = strings.ReplaceAll(line, "\x00", "")
	return strings.TrimRight(line, " \t\r")
}
