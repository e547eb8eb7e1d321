package q3log

import (
	"context"
	"io"
	"iter"
	"log/slog"

	"github.com/q3log/q3log-go/pkg/q3log/event"
	"github.com/q3log/q3log-go/pkg/q3log/policy"
)

// discardLogger returns a logger that discards all output.
var discardLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

// Decoder is the first pipeline stage. It turns raw lines into events and
// applies the strictness policy to lines that fail to decode.
type Decoder struct {
	policy      policy.Policy
	log         *slog.Logger
	passthrough bool
}

// NewDecoder creates a Decoder. Only WithPolicy, WithPedantic, WithVerbose,
// WithLogger and WithPassthroughUnknown affect it.
func NewDecoder(opts ...ParseOption) (*Decoder, error) {
	cfg := applyParseOptions(opts)
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return newDecoder(cfg), nil
}

func newDecoder(cfg *parseConfig) *Decoder {
	return &Decoder{
		policy:      cfg.policy,
		log:         cfg.logger,
		passthrough: cfg.passthrough,
	}
}

// Policy returns the strictness policy of d.
func (d *Decoder) Policy() policy.Policy {
	return d.policy
}

// Events decodes lines lazily. Separator lines produce nothing.
//
// A line that fails to decode is classified with the Decoder's policy:
// Fatal ends the sequence with the error, Tolerant yields a *SkippedError
// and continues, Silent drops the line. Recoverable errors coming from lines,
// such as an overlong line, are classified the same way. Other errors from
// lines are passed through and end the sequence unless they are a
// *SkippedError. ctx is checked before each line is pulled.
//
// The returned sequence is single use.
func (d *Decoder) Events(ctx context.Context, lines iter.Seq2[RawLine, error]) iter.Seq2[event.Event, error] {
	return func(yield func(event.Event, error) bool) {
		if err := ctx.Err(); err != nil {
			yield(event.Event{}, err)
			return
		}

		for raw, err := range lines {
			switch {
			case err == nil:
				ev, ok, err := decodeLine(raw, d.passthrough)
				if err != nil {
					if !d.reject(raw.Number, err, yield) {
						return
					}
				} else if ok && !yield(ev, nil) {
					return
				}
			case policy.IsSkipped(err):
				if !yield(event.Event{}, err) {
					return
				}
			case policy.IsRecoverable(err):
				if !d.reject(raw.Number, err, yield) {
					return
				}
			default:
				yield(event.Event{}, err)
				return
			}

			if err := ctx.Err(); err != nil {
				yield(event.Event{}, err)
				return
			}
		}
	}
}

// reject applies the policy to a line that could not be decoded. It reports
// whether the sequence goes on.
func (d *Decoder) reject(line int, err error, yield func(event.Event, error) bool) bool {
	switch d.policy.Classify(err) {
	case policy.Fatal:
		yield(event.Event{}, err)
		return false
	case policy.Tolerant:
		d.log.Warn("skipping line", "line", line, "error", err)
		return yield(event.Event{}, &policy.SkippedError{Err: err})
	default:
		d.log.Debug("dropping line", "line", line, "error", err)
		return true
	}
}
