package main

import (
	"errors"
	"fmt"
	"iter"

	"github.com/q3log/q3log-go/internal/logfinder"
	"github.com/q3log/q3log-go/pkg/q3log"
	"github.com/q3log/q3log-go/pkg/q3log/policy"
	"github.com/spf13/cobra"
)

// stdinPath selects standard input as the log.
const stdinPath = "-"

type parseFlags struct {
	logFile   string
	format    string
	extended  bool
	flushOpen bool
}

func newParseCmd(g *globalFlags) *cobra.Command {
	f := &parseFlags{}

	cmd := &cobra.Command{
		Use:   "parse",
		Short: "Summarize the matches in a server log",
		Long: `Read a whole server log and print one summary per match.

The log is looked up in this order: --log-file, the Q3LOG_FILE environment
variable, ./qgames.log, ./games.log, then the per-user baseq3 directories.
Use --log-file - to read standard input.

Examples:
  # JSON report of ./qgames.log
  q3log parse

  # Extended report with weapons and server-reported scores
  q3log parse --log-file games.log --extended

  # One match per line, stop at the first malformed line
  q3log parse --format jsonl --pedantic --log-file - < games.log`,
		Args: noArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runParse(cmd, g, f)
		},
	}

	cmd.Flags().StringVarP(&f.logFile, "log-file", "l", "", "Server log file, directory, or - for stdin")
	cmd.Flags().StringVarP(&f.format, "format", "f", "", "Output format: json, jsonl, pretty (default json)")
	cmd.Flags().BoolVar(&f.extended, "extended", false, "Include weapons, end state and server-reported scores")
	cmd.Flags().BoolVar(&f.flushOpen, "flush-open", false, "Report a match left open at end of input as truncated")
	return cmd
}

func runParse(cmd *cobra.Command, g *globalFlags, f *parseFlags) error {
	p, err := g.profile(cmd)
	if err != nil {
		return err
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
	if flags.Changed("flush-open") {
		p.Report.FlushOpen = f.flushOpen
	}
	if !validFormats[p.Report.Format] {
		return usage(fmt.Errorf("invalid --format %q (valid: json, jsonl, pretty)", p.Report.Format))
	}

	logger := g.logger(cmd.ErrOrStderr())
	opts := append(p.ParseOptions(), q3log.WithLogger(logger))

	var summaries iter.Seq2[q3log.MatchSummary, error]
	if p.Input.LogFile == stdinPath {
		summaries = q3log.ParseReader(cmd.Context(), cmd.InOrStdin(), opts...)
	} else {
		path, err := logfinder.FindLogFile(p.Input.LogFile)
		if err != nil {
			return usage(err)
		}
		logger.Debug("reading server log", "path", path)
		summaries = q3log.ParseFile(cmd.Context(), path, opts...)
	}

	w, err := newReportWriter(p.Report.Format, p.Report.Extended, cmd.OutOrStdout())
	if err != nil {
		return usage(err)
	}

	var skipped int
	for s, err := range summaries {
		if err != nil {
			if policy.IsSkipped(err) {
				skipped++
				continue
			}
			// Keep the report well formed up to the failure.
			return errors.Join(err, w.Close())
		}
		if err := w.Write(s); err != nil {
			return fmt.Errorf("output error: %w", err)
		}
	}
	if skipped > 0 {
		logger.Warn("skipped malformed input", "count", skipped)
	}
	return w.Close()
}
