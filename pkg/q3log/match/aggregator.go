// Package match aggregates an ordered stream of server events into match
// summaries.
//
// The Aggregator is a two-state machine. It is idle until an InitGame opens a
// match, applies per-match events to that match, and emits a MatchSummary
// when ShutdownGame closes it. Events that break the protocol are reported as
// *ModelViolationError and never applied; the strictness policy decides
// whether a violation stops the stream, is reported, or is dropped.
package match

import (
	"io"
	"iter"
	"log/slog"

	"github.com/q3log/q3log-go/pkg/q3log/event"
	"github.com/q3log/q3log-go/pkg/q3log/policy"
)

// Option configures an Aggregator.
type Option func(*Aggregator)

// WithLogger sets the logger used for skipped events.
// If logger is nil, logging is disabled (default behavior).
func WithLogger(logger *slog.Logger) Option {
	return func(a *Aggregator) {
		if logger != nil {
			a.log = logger
		}
	}
}

// WithFlushOpenMatch makes Summaries emit a match that is still open when
// the input ends, marked Aborted and Truncated. By default it is dropped.
func WithFlushOpenMatch(flush bool) Option {
	return func(a *Aggregator) {
		a.flushOpen = flush
	}
}

// discardLogger returns a logger that discards all output.
var discardLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

// Aggregator is the match state machine. It is not safe for concurrent use;
// one Aggregator serves one sequential event stream.
type Aggregator struct {
	policy    policy.Policy
	log       *slog.Logger
	flushOpen bool

	current *Match
	opened  int
}

// NewAggregator returns an idle Aggregator using p for violations.
func NewAggregator(p policy.Policy, opts ...Option) *Aggregator {
	a := &Aggregator{policy: p, log: discardLogger}
	for _, opt := range opts {
		if opt != nil {
			opt(a)
		}
	}
	return a
}

// Current returns the open match, or nil when idle.
func (a *Aggregator) Current() *Match {
	return a.current
}

// Apply feeds one event to the state machine. It returns a summary when ev
// closed a match. A non-nil error is a *ModelViolationError (or the decode
// error of an InitGame with unusable limits); in that case ev was not
// applied and the state is unchanged.
func (a *Aggregator) Apply(ev event.Event) (*MatchSummary, error) {
	if a.current == nil {
		return a.applyIdle(ev)
	}
	return a.applyInMatch(ev)
}

func (a *Aggregator) applyIdle(ev event.Event) (*MatchSummary, error) {
	switch p := ev.Data.(type) {
	case event.InitGame:
		limits, err := p.Limits()
		if err != nil {
			return nil, err
		}
		a.opened++
		a.current = newMatch(a.opened, ev, p, limits)
		a.log.Debug("match opened", "match", a.opened, "line", ev.Line, "game_type", p.GameType())
		return nil, nil
	default:
		if ev.Data == nil || event.Neutral(ev.Data) {
			return nil, nil
		}
		return nil, a.violation(OutOfOrderEvent, ev, 0)
	}
}

func (a *Aggregator) applyInMatch(ev event.Event) (*MatchSummary, error) {
	m := a.current

	switch p := ev.Data.(type) {
	case event.InitGame:
		return nil, a.violation(DoubleInit, ev, 0)

	case event.ClientConnect:
		if pl, ok := m.Players[p.ClientID]; ok {
			if pl.Connected {
				return nil, a.violation(DoubleConnect, ev, p.ClientID)
			}
			pl.Connected = true
			return nil, nil
		}
		m.Players[p.ClientID] = &Player{ID: p.ClientID, Connected: true}

	case event.ClientBegin:
		pl, ok := m.Players[p.ClientID]
		if !ok {
			return nil, a.violation(UnknownClient, ev, p.ClientID)
		}
		pl.Began = true

	case event.ClientUserinfoChanged:
		pl, ok := m.Players[p.ClientID]
		if !ok {
			if a.policy.Pedantic {
				return nil, a.violation(UnknownClient, ev, p.ClientID)
			}
			pl = &Player{ID: p.ClientID, Connected: true}
			m.Players[p.ClientID] = pl
		}
		pl.Name = p.Name

	case event.ClientDisconnect:
		pl, ok := m.Players[p.ClientID]
		if !ok {
			return nil, a.violation(UnknownClient, ev, p.ClientID)
		}
		pl.Connected = false

	case event.Kill:
		victim, ok := m.Players[p.VictimID]
		if !ok {
			return nil, a.violation(UnknownClient, ev, p.VictimID)
		}
		victim.Deaths++
		if p.KillerID == event.WorldID {
			victim.WorldDeaths++
		}
		m.KillTally[p.Weapon]++
		m.TotalKills++
		if p.KillerID != event.WorldID && p.KillerID != p.VictimID {
			if killer, ok := m.Players[p.KillerID]; ok {
				killer.Kills++
			} else {
				a.log.Debug("kill by unknown client credits nobody", "match", m.ID, "line", ev.Line, "killer", p.KillerID)
			}
		}

	case event.Score:
		r := m.reported()
		if r.Players == nil {
			r.Players = make(map[int]ReportedScore)
		}
		r.Players[p.ClientID] = ReportedScore{Name: p.Name, Score: p.Score, Ping: p.Ping}

	case event.TeamScore:
		team := p
		m.reported().Team = &team

	case event.Exit:
		m.End = End{Kind: PlannedExit, Reason: p.Reason}

	case event.ShutdownGame:
		if m.End.Kind == Open {
			m.End = End{Kind: Aborted}
		}
		s := m.summarize(ev)
		a.current = nil
		a.log.Debug("match closed", "match", m.ID, "line", ev.Line, "end", s.End.Kind)
		return &s, nil
	}

	return nil, nil
}

// Flush closes the open match as Aborted and Truncated, as if the input had
// ended with ShutdownGame. It reports false when no match is open.
func (a *Aggregator) Flush() (MatchSummary, bool) {
	m := a.current
	if m == nil {
		return MatchSummary{}, false
	}
	if m.End.Kind == Open {
		m.End = End{Kind: Aborted}
	}
	s := m.summarize(event.Event{Line: m.StartLine, Timestamp: m.StartedAt})
	s.EndedAt, s.EndLine = event.Timestamp{}, 0
	s.Truncated = true
	a.current = nil
	return s, true
}

// Reset drops the open match, if any.
func (a *Aggregator) Reset() {
	a.current = nil
}

func (a *Aggregator) violation(kind ViolationKind, ev event.Event, clientID int) error {
	var id int
	if a.current != nil {
		id = a.current.ID
	}
	return &ModelViolationError{Kind: kind, Event: ev, MatchID: id, ClientID: clientID}
}

// Summaries aggregates events into match summaries lazily.
//
// Errors coming from upstream are passed through: a *policy.SkippedError
// continues the sequence, any other error ends it. Violations found here are
// classified with the Aggregator's policy: Fatal ends the sequence with the
// violation and discards the open match, Tolerant yields a
// *policy.SkippedError and continues, Silent drops the event.
//
// The returned sequence is single use.
func (a *Aggregator) Summaries(events iter.Seq2[event.Event, error]) iter.Seq2[MatchSummary, error] {
	return func(yield func(MatchSummary, error) bool) {
		for ev, err := range events {
			if err != nil {
				if !yield(MatchSummary{}, err) {
					return
				}
				if !policy.IsSkipped(err) {
					a.Reset()
					return
				}
				continue
			}

			s, err := a.Apply(ev)
			if err != nil {
				switch a.policy.Classify(err) {
				case policy.Fatal:
					a.Reset()
					yield(MatchSummary{}, err)
					return
				case policy.Tolerant:
					a.log.Warn("skipping event", "error", err)
					if !yield(MatchSummary{}, &policy.SkippedError{Err: err}) {
						return
					}
				default:
					a.log.Debug("dropping event", "error", err)
				}
				continue
			}
			if s != nil {
				if !yield(*s, nil) {
					return
				}
			}
		}

		if a.flushOpen {
			if s, ok := a.Flush(); ok {
				yield(s, nil)
			}
		} else if m := a.current; m != nil {
			a.log.Debug("input ended inside a match", "match", m.ID, "start_line", m.StartLine)
			a.Reset()
		}
	}
}
