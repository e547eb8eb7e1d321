package q3log

import (
	"context"
	"errors"
	"fmt"
	"io"
	"iter"

	"github.com/q3log/q3log-go/internal/safefile"
	"github.com/q3log/q3log-go/pkg/q3log/match"
	"github.com/q3log/q3log-go/pkg/q3log/policy"
)

// Summarize runs the whole pipeline over lines and yields one MatchSummary
// per completed match, in input order.
//
// Errors follow the policy set by the options: a fatal error is the last
// value of the sequence, a tolerated one is yielded as *SkippedError and
// processing continues. An invalid option is yielded as the only value.
//
// Example:
//
//	for s, err := range q3log.Summarize(ctx, lines, q3log.WithVerbose(true)) {
//	    var skipped *q3log.SkippedError
//	    if errors.As(err, &skipped) {
//	        log.Printf("skipped: %v", skipped.Err)
//	        continue
//	    }
//	    if err != nil {
//	        return err
//	    }
//	    fmt.Println(s.ID, s.TotalKills)
//	}
func Summarize(ctx context.Context, lines iter.Seq2[RawLine, error], opts ...ParseOption) iter.Seq2[MatchSummary, error] {
	cfg := applyParseOptions(opts)
	if err := cfg.validate(); err != nil {
		return errSeq(err)
	}
	return summarize(ctx, cfg, lines)
}

func summarize(ctx context.Context, cfg *parseConfig, lines iter.Seq2[RawLine, error]) iter.Seq2[MatchSummary, error] {
	agg := match.NewAggregator(cfg.policy,
		match.WithLogger(cfg.logger),
		match.WithFlushOpenMatch(cfg.flushOpen),
	)
	return agg.Summaries(newDecoder(cfg).Events(ctx, lines))
}

// ParseReader summarizes the server log read from r.
func ParseReader(ctx context.Context, r io.Reader, opts ...ParseOption) iter.Seq2[MatchSummary, error] {
	cfg := applyParseOptions(opts)
	if err := cfg.validate(); err != nil {
		return errSeq(err)
	}
	return summarize(ctx, cfg, Lines(r, cfg.maxLineBytes))
}

// ParseFile summarizes the server log at path. The file is opened when the
// sequence is first pulled and closed when it ends.
//
// path must name a regular file; symlinks and special files are rejected.
func ParseFile(ctx context.Context, path string, opts ...ParseOption) iter.Seq2[MatchSummary, error] {
	cfg := applyParseOptions(opts)
	if err := cfg.validate(); err != nil {
		return errSeq(err)
	}
	return func(yield func(MatchSummary, error) bool) {
		f, _, err := safefile.OpenRegular(path)
		if err != nil {
			yield(MatchSummary{}, fmt.Errorf("opening log file: %w", err))
			return
		}
		defer f.Close()

		for s, err := range summarize(ctx, cfg, Lines(f, cfg.maxLineBytes)) {
			if !yield(s, err) {
				return
			}
		}
	}
}

// Result collects everything ParseFileAll produced.
type Result struct {
	Matches []MatchSummary
	// Skipped holds the lines and events skipped under a verbose policy.
	Skipped []*SkippedError
}

// ParseFileAll is ParseFile collected into memory.
// On a fatal error it returns the matches completed before it together with
// the error.
func ParseFileAll(ctx context.Context, path string, opts ...ParseOption) (*Result, error) {
	res := &Result{}
	for s, err := range ParseFile(ctx, path, opts...) {
		if err != nil {
			var skipped *policy.SkippedError
			if errors.As(err, &skipped) {
				res.Skipped = append(res.Skipped, skipped)
				continue
			}
			return res, err
		}
		res.Matches = append(res.Matches, s)
	}
	return res, nil
}

func errSeq(err error) iter.Seq2[MatchSummary, error] {
	return func(yield func(MatchSummary, error) bool) {
		yield(MatchSummary{}, err)
	}
}
