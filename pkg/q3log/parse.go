package q3log

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"iter"

	"github.com/q3log/q3log-go/internal/parser"
	"github.com/q3log/q3log-go/pkg/q3log/event"
)

// ParseLine parses a single server log line into an Event.
// number is the 1-based line number recorded in the event and in errors.
//
// Return values:
//   - (*Event, nil): Successfully parsed event
//   - (nil, nil): Separator line ("  0:00 ------"), which carries no event
//   - (nil, error): *LogParsingError or *EventParsingError
//
// Example:
//
//	ev, err := q3log.ParseLine(1, "  0:00 ClientConnect: 2")
//	if err != nil {
//	    log.Printf("parse error: %v", err)
//	} else if ev != nil {
//	    fmt.Println(ev.Type)
//	}
func ParseLine(number int, line string) (*Event, error) {
	ev, ok, err := decodeLine(RawLine{Number: number, Text: line}, false)
	if err != nil || !ok {
		return nil, err
	}
	return &ev, nil
}

// decodeLine runs the line grammar and the payload decoder on one line.
// ok is false for separator lines.
func decodeLine(raw RawLine, passthrough bool) (ev event.Event, ok bool, err error) {
	l, err := parser.Split(raw.Number, raw.Text)
	if err != nil {
		return event.Event{}, false, err
	}
	if l.Comment {
		return event.Event{}, false, nil
	}

	data, err := parser.Decode(l.Name, l.Payload)
	if err != nil {
		var epe *event.EventParsingError
		if !errors.As(err, &epe) {
			return event.Event{}, false, err
		}
		if passthrough && epe.Cause == event.CauseUnknownEventName {
			data = event.Unrecognized{Name: l.Name, Payload: l.Payload}
		} else {
			epe.Line, epe.Raw = raw.Number, raw.Text
			return event.Event{}, false, epe
		}
	}

	return event.Event{
		Type:      data.Type(),
		Timestamp: l.Timestamp,
		Line:      l.Number,
		Data:      data,
	}, true, nil
}

// Lines reads r line by line. Line endings ("\n" or "\r\n") are removed.
//
// A line longer than maxLineBytes is consumed and reported as a
// *LogParsingError, so the strictness policy decides whether it ends the
// stream. Read errors always end the sequence.
//
// The returned sequence is single use.
func Lines(r io.Reader, maxLineBytes int) iter.Seq2[RawLine, error] {
	if maxLineBytes <= 0 {
		maxLineBytes = DefaultMaxLineBytes
	}
	return func(yield func(RawLine, error) bool) {
		br := bufio.NewReaderSize(r, min(maxLineBytes+2, 64*1024))

		n := 0
		for {
			line, tooLong, err := readLine(br, maxLineBytes)
			if err != nil && !errors.Is(err, io.EOF) {
				yield(RawLine{}, fmt.Errorf("reading line %d: %w", n+1, err))
				return
			}
			if err != nil && len(line) == 0 && !tooLong {
				return
			}

			n++
			if tooLong {
				lerr := &event.LogParsingError{
					Line:   n,
					Raw:    string(line[:min(len(line), rawExcerpt)]),
					Reason: fmt.Sprintf("longer than %d bytes", maxLineBytes),
				}
				if !yield(RawLine{Number: n}, lerr) {
					return
				}
			} else if !yield(RawLine{Number: n, Text: string(line)}, nil) {
				return
			}
			if err != nil {
				return
			}
		}
	}
}

// rawExcerpt bounds the part of an overlong line kept in its error.
const rawExcerpt = 80

// readLine reads one line without its line ending. A line longer than limit
// is read up to its end but only its first limit bytes are returned, with
// tooLong set. err is io.EOF when the input ended after this line.
func readLine(br *bufio.Reader, limit int) (line []byte, tooLong bool, err error) {
	for {
		chunk, err := br.ReadSlice('\n')
		partial := errors.Is(err, bufio.ErrBufferFull)
		if !tooLong {
			line = append(line, chunk...)
			// A partial line may still end in the '\r' of "\r\n".
			slack := 0
			if partial {
				slack = 1
			}
			if content := dropLineEnding(line); len(content) > limit+slack {
				line, tooLong = content[:limit], true
			}
		}
		if partial {
			continue
		}
		if tooLong {
			return line, true, err
		}
		return dropLineEnding(line), false, err
	}
}

func dropLineEnding(b []byte) []byte {
	if n := len(b); n > 0 && b[n-1] == '\n' {
		b = b[:n-1]
		if n := len(b); n > 0 && b[n-1] == '\r' {
			b = b[:n-1]
		}
	}
	return b
}
