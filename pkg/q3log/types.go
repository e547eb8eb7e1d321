package q3log

import (
	"github.com/q3log/q3log-go/pkg/q3log/event"
	"github.com/q3log/q3log-go/pkg/q3log/match"
	"github.com/q3log/q3log-go/pkg/q3log/policy"
)

// Type aliases so common callers only import this package.
type (
	Event               = event.Event
	MatchSummary        = match.MatchSummary
	Policy              = policy.Policy
	SkippedError        = policy.SkippedError
	LogParsingError     = event.LogParsingError
	EventParsingError   = event.EventParsingError
	ModelViolationError = match.ModelViolationError
)

// RawLine is one line of input and its 1-based line number.
type RawLine struct {
	Number int
	Text   string
}
