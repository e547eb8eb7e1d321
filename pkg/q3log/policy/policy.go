// Package policy decides how the pipeline reacts to malformed lines and
// protocol violations.
//
// A Policy is a plain value. It is handed to both the decoder stage and the
// match aggregator when they are built, so two pipelines can run side by
// side with different strictness.
package policy

import (
	"context"
	"errors"

	"github.com/q3log/q3log-go/pkg/q3log/event"
)

// Severity is the outcome of classifying an error.
type Severity int

const (
	// Fatal stops the pipeline; the error is its last value.
	Fatal Severity = iota
	// Tolerant reports the error and skips the offending line or event.
	Tolerant
	// Silent skips the offending line or event without reporting it.
	Silent
)

func (s Severity) String() string {
	switch s {
	case Fatal:
		return "fatal"
	case Tolerant:
		return "tolerant"
	case Silent:
		return "silent"
	default:
		return "unknown"
	}
}

// Policy is the strictness configuration shared by the pipeline stages.
// The zero value skips every recoverable condition silently.
type Policy struct {
	// Pedantic turns every recoverable condition into a fatal one.
	Pedantic bool `yaml:"pedantic" json:"pedantic"`
	// Verbose reports recoverable conditions instead of dropping them quietly.
	Verbose bool `yaml:"verbose" json:"verbose"`
}

// Recoverable is implemented by errors that describe bad input rather than a
// broken pipeline. Model violations from the match package implement it.
type Recoverable interface {
	error
	Recoverable() bool
}

// Classify returns the severity of err under p.
//
// Line and payload decode errors and errors implementing Recoverable are
// recoverable. Everything else (I/O failures, context cancellation) is
// always Fatal.
func (p Policy) Classify(err error) Severity {
	if !IsRecoverable(err) {
		return Fatal
	}
	return p.Recoverable()
}

// Recoverable returns the severity p assigns to any recoverable condition.
func (p Policy) Recoverable() Severity {
	switch {
	case p.Pedantic:
		return Fatal
	case p.Verbose:
		return Tolerant
	default:
		return Silent
	}
}

// IsRecoverable reports whether err describes bad input that a non-pedantic
// policy may skip.
func IsRecoverable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var lpe *event.LogParsingError
	if errors.As(err, &lpe) {
		return true
	}
	var epe *event.EventParsingError
	if errors.As(err, &epe) {
		return true
	}
	var r Recoverable
	if errors.As(err, &r) {
		return r.Recoverable()
	}
	return false
}
