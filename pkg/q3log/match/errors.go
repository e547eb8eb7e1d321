package match

import (
	"fmt"

	"github.com/q3log/q3log-go/pkg/q3log/event"
)

// ViolationKind names the protocol rule an event broke.
type ViolationKind int

const (
	// DoubleInit is an InitGame while a match is already open.
	DoubleInit ViolationKind = iota + 1
	// DoubleConnect is a ClientConnect for a client that is still connected.
	DoubleConnect
	// UnknownClient is a per-client event for an id never connected in the match.
	UnknownClient
	// OutOfOrderEvent is a match event with no open match.
	OutOfOrderEvent
)

func (k ViolationKind) String() string {
	switch k {
	case DoubleInit:
		return "double init"
	case DoubleConnect:
		return "double connect"
	case UnknownClient:
		return "unknown client"
	case OutOfOrderEvent:
		return "out of order event"
	default:
		return fmt.Sprintf("violation(%d)", int(k))
	}
}

// ModelViolationError reports an event that breaks the match protocol.
// The event is not applied.
type ModelViolationError struct {
	Kind  ViolationKind
	Event event.Event
	// MatchID is the id of the open match, 0 when none is open.
	MatchID int
	// ClientID is set for DoubleConnect and UnknownClient.
	ClientID int
}

func (e *ModelViolationError) Error() string {
	where := fmt.Sprintf("line %d", e.Event.Line)
	if e.MatchID > 0 {
		where += fmt.Sprintf(", match %d", e.MatchID)
	}
	switch e.Kind {
	case DoubleConnect, UnknownClient:
		return fmt.Sprintf("%s: %s %d in %s event", where, e.Kind, e.ClientID, e.Event.Type)
	default:
		return fmt.Sprintf("%s: %s: %s", where, e.Kind, e.Event.Type)
	}
}

// Recoverable marks model violations as skippable under a lenient policy.
func (e *ModelViolationError) Recoverable() bool { return true }

// Is matches a target *ModelViolationError of the same Kind, so callers can
// write errors.Is(err, &match.ModelViolationError{Kind: match.DoubleInit}).
func (e *ModelViolationError) Is(target error) bool {
	t, ok := target.(*ModelViolationError)
	return ok && t.Kind == e.Kind
}
