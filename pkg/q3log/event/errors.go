package event

import "fmt"

// LogParsingError reports a line that does not have the
// "TIMESTAMP NAME: PAYLOAD" shape.
type LogParsingError struct {
	Line   int
	Raw    string
	Reason string
}

func (e *LogParsingError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("line %d: unrecognized line format (%s): %q", e.Line, e.Reason, e.Raw)
	}
	return fmt.Sprintf("line %d: unrecognized line format: %q", e.Line, e.Raw)
}

// Cause classifies why an event payload failed to decode.
type Cause int

const (
	CauseUnknownEventName Cause = iota + 1
	CauseMalformedMap
	CauseFieldCountMismatch
	CauseNotAnInteger
	CauseMissingKey
)

func (c Cause) String() string {
	switch c {
	case CauseUnknownEventName:
		return "unknown event name"
	case CauseMalformedMap:
		return "malformed key/value map"
	case CauseFieldCountMismatch:
		return "field count mismatch"
	case CauseNotAnInteger:
		return "not an integer"
	case CauseMissingKey:
		return "missing key"
	default:
		return fmt.Sprintf("cause(%d)", int(c))
	}
}

// EventParsingError reports a payload that does not decode for its event
// name. Line and Raw are zero when the error comes straight from the decoder
// and are filled in by the pipeline stage that knows the source line.
type EventParsingError struct {
	Line      int
	Raw       string
	EventName string
	Cause     Cause
	// Field names the offending field for CauseNotAnInteger,
	// CauseFieldCountMismatch and CauseMissingKey.
	Field    string
	Observed string
}

func (e *EventParsingError) Error() string {
	msg := fmt.Sprintf("event %q: %s", e.EventName, e.Cause)
	if e.Field != "" {
		msg += fmt.Sprintf(": %s", e.Field)
	}
	if e.Observed != "" {
		msg += fmt.Sprintf(" (got %q)", e.Observed)
	}
	if e.Line > 0 {
		msg = fmt.Sprintf("line %d: %s", e.Line, msg)
	}
	return msg
}

// Is matches another *EventParsingError with the same Cause, so callers can
// write errors.Is(err, &event.EventParsingError{Cause: event.CauseNotAnInteger}).
func (e *EventParsingError) Is(target error) bool {
	t, ok := target.(*EventParsingError)
	if !ok {
		return false
	}
	return t.Cause == e.Cause && (t.EventName == "" || t.EventName == e.EventName)
}
