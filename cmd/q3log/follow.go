package main

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"log/slog"

	"github.com/q3log/q3log-go/internal/logfinder"
	"github.com/q3log/q3log-go/internal/tailer"
	"github.com/q3log/q3log-go/pkg/q3log"
	"github.com/q3log/q3log-go/pkg/q3log/config"
	"github.com/q3log/q3log-go/pkg/q3log/policy"
	"github.com/spf13/cobra"
)

type followFlags struct {
	logFile   string
	format    string
	extended  bool
	fromStart bool
	poll      bool
}

func newFollowCmd(g *globalFlags) *cobra.Command {
	f := &followFlags{}

	cmd := &cobra.Command{
		Use:   "follow",
		Short: "Follow a running server's log and report matches as they end",
		Long: `Follow a server log as the server writes it, like tail -F, and print
each match as soon as its ShutdownGame line arrives.

The file is reopened when the server rotates or truncates it. A match
already reported (same server config, start time and position in the
file) is not reported again when the log is rewritten with the same
content. A server restart that plays the same map again is a new match.

Examples:
  # Follow ./qgames.log from the end
  q3log follow

  # Replay the existing content first, human-readable
  q3log follow --log-file /srv/q3/baseq3/games.log --from-start --format pretty

  # Pipe to jq
  q3log follow | jq '.total_kills'`,
		Args: noArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFollow(cmd, g, f)
		},
	}

	cmd.Flags().StringVarP(&f.logFile, "log-file", "l", "", "Server log file or directory")
	cmd.Flags().StringVarP(&f.format, "format", "f", "", "Output format: jsonl, pretty (default jsonl)")
	cmd.Flags().BoolVar(&f.extended, "extended", false, "Include weapons, end state and server-reported scores")
	cmd.Flags().BoolVar(&f.fromStart, "from-start", false, "Read the existing content before following")
	cmd.Flags().BoolVar(&f.poll, "poll", false, "Poll for changes instead of using filesystem notifications")
	return cmd
}

func runFollow(cmd *cobra.Command, g *globalFlags, f *followFlags) error {
	p, err := g.profile(cmd)
	if err != nil {
		return err
	}
	// json is a single document and cannot be streamed.
	if p.Report.Format == config.FormatJSON {
		p.Report.Format = config.FormatJSONL
	}
	flags := cmd.Flags()
	if flags.Changed("log-file") {
		p.Input.LogFile = f.logFile
	}
	if flags.Changed("format") {
		p.Report.Format = f.format
	}
	if flags.Changed("extended") {
		p.Report.Extended = f.extended
	}
	if flags.Changed("from-start") {
		p.Follow.FromStart = f.fromStart
	}
	if flags.Changed("poll") {
		p.Follow.Poll = f.poll
	}
	if !streamFormats[p.Report.Format] {
		return usage(fmt.Errorf("invalid --format %q for follow (valid: jsonl, pretty)", p.Report.Format))
	}

	path, err := logfinder.FindLogFile(p.Input.LogFile)
	if err != nil {
		return usage(err)
	}

	base := g.logger(cmd.ErrOrStderr())
	limited := newRateLimitedHandler(base.Handler(), p.Follow.WarnRate, p.Follow.WarnBurst)
	logger := slog.New(limited)

	ctx := cmd.Context()
	tcfg := tailer.DefaultConfig()
	tcfg.FromStart = p.Follow.FromStart
	tcfg.Poll = p.Follow.Poll
	tcfg.Logger = logger
	tl, err := tailer.New(ctx, path, tcfg)
	if err != nil {
		return err
	}
	defer func() { _ = tl.Stop() }()
	logger.Debug("following server log", "path", path, "from_start", tcfg.FromStart)

	w, err := newReportWriter(p.Report.Format, p.Report.Extended, cmd.OutOrStdout())
	if err != nil {
		return usage(err)
	}
	defer w.Close()

	opts := append(p.ParseOptions(), q3log.WithLogger(logger))
	reported := newReportedMatches()
	for s, err := range q3log.Summarize(ctx, tailLines(ctx, tl, reported), opts...) {
		if err != nil {
			if policy.IsSkipped(err) {
				continue
			}
			if errors.Is(err, context.Canceled) {
				break
			}
			return err
		}
		if !reported.add(s) {
			logger.Debug("match already reported", "game", s.ID, "fingerprint", s.Fingerprint)
			continue
		}
		if err := w.Write(s); err != nil {
			return fmt.Errorf("output error: %w", err)
		}
	}

	if n := limited.Dropped(); n > 0 {
		base.Warn("warnings suppressed by rate limit", "count", n)
	}
	return nil
}

// matchKey identifies a match by content and by where it starts in the file.
type matchKey struct {
	fingerprint uint64
	offset      int64
}

// reportedMatches remembers the matches follow has written. Line offsets are
// kept from the moment a line is read until the match containing it is
// reported.
type reportedMatches struct {
	offsets map[int]int64
	seen    map[matchKey]bool
}

func newReportedMatches() *reportedMatches {
	return &reportedMatches{
		offsets: make(map[int]int64),
		seen:    make(map[matchKey]bool),
	}
}

// observe records where line number ends in the file.
func (r *reportedMatches) observe(number int, offset int64) {
	r.offsets[number] = offset
}

// add reports whether s is new, and remembers it.
func (r *reportedMatches) add(s q3log.MatchSummary) bool {
	off, ok := r.offsets[s.StartLine]
	if !ok {
		// Position unknown, so it cannot be a repeat.
		return true
	}
	if s.EndLine > 0 {
		for n := range r.offsets {
			if n <= s.EndLine {
				delete(r.offsets, n)
			}
		}
	}
	k := matchKey{fingerprint: s.Fingerprint, offset: off}
	if r.seen[k] {
		return false
	}
	r.seen[k] = true
	return true
}

// tailLines adapts the tailer's channels to a line sequence that ends when
// ctx is done or the tailer stops. Every line is recorded in reported.
func tailLines(ctx context.Context, tl *tailer.Tailer, reported *reportedMatches) iter.Seq2[q3log.RawLine, error] {
	return func(yield func(q3log.RawLine, error) bool) {
		for {
			select {
			case <-ctx.Done():
				return
			case l, ok := <-tl.Lines():
				if !ok {
					return
				}
				reported.observe(l.Number, l.Offset)
				if !yield(q3log.RawLine{Number: l.Number, Text: l.Text}, nil) {
					return
				}
			case err, ok := <-tl.Errors():
				if !ok {
					return
				}
				if !yield(q3log.RawLine{}, err) {
					return
				}
			}
		}
	}
}
