// Package parser splits Quake 3 server log lines and decodes their payloads
// into typed events.
package parser

import (
	"strconv"
	"strings"

	"github.com/q3log/q3log-go/pkg/q3log/event"
)

// Line is one log line split into its grammar parts.
type Line struct {
	Number    int
	Timestamp event.Timestamp
	// Comment is set for separator lines ("  0:00 -----"); Name and
	// Payload are empty in that case.
	Comment bool
	Name    string
	Payload string
}

// Split parses the shape of a log line: "TIMESTAMP NAME: PAYLOAD" or
// "TIMESTAMP -----". It does not look at the payload.
//
// Returns a *event.LogParsingError when the line has neither shape.
func Split(number int, raw string) (Line, error) {
	// Trim trailing CR for Windows CRLF compatibility
	line := strings.TrimRight(raw, "\r")
	// The server right-aligns the clock
	line = strings.TrimLeft(line, " \t")
	if line == "" {
		return Line{}, lineError(number, raw, "empty line")
	}

	clock, rest, ok := strings.Cut(line, " ")
	if !ok {
		return Line{}, lineError(number, raw, "nothing after timestamp")
	}
	ts, ok := parseTimestamp(clock)
	if !ok {
		return Line{}, lineError(number, raw, "malformed timestamp")
	}

	rest = strings.TrimLeft(rest, " \t")
	if isSeparator(rest) {
		return Line{Number: number, Timestamp: ts, Comment: true}, nil
	}

	name, payload, ok := strings.Cut(rest, ":")
	if !ok {
		return Line{}, lineError(number, raw, "missing colon after event name")
	}
	if name == "" {
		return Line{}, lineError(number, raw, "empty event name")
	}

	return Line{
		Number:    number,
		Timestamp: ts,
		Name:      name,
		Payload:   strings.TrimLeft(payload, " "),
	}, nil
}

// parseTimestamp accepts DIGITS ":" DIGITS without range checks.
func parseTimestamp(s string) (event.Timestamp, bool) {
	h, m, ok := strings.Cut(s, ":")
	if !ok || !allDigits(h) || !allDigits(m) {
		return event.Timestamp{}, false
	}
	hours, err := strconv.Atoi(h)
	if err != nil {
		return event.Timestamp{}, false
	}
	minutes, err := strconv.Atoi(m)
	if err != nil {
		return event.Timestamp{}, false
	}
	return event.Timestamp{Hours: hours, Minutes: minutes}, true
}

func allDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// isSeparator reports whether s is a non-empty run of dashes.
func isSeparator(s string) bool {
	s = strings.TrimRight(s, " \t")
	return s != "" && strings.Trim(s, "-") == ""
}

func lineError(number int, raw, reason string) error {
	return &event.LogParsingError{Line: number, Raw: raw, Reason: reason}
}
