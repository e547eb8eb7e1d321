package q3log_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/q3log/q3log-go/internal/safefile"
	"github.com/q3log/q3log-go/pkg/q3log"
	"github.com/q3log/q3log-go/pkg/q3log/event"
	"github.com/q3log/q3log-go/pkg/q3log/match"
	"github.com/q3log/q3log-go/pkg/q3log/policy"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFileAll_Sample(t *testing.T) {
	res, err := q3log.ParseFileAll(t.Context(), filepath.Join("testdata", "games.log"), q3log.WithPedantic(true))
	require.NoError(t, err)
	assert.Empty(t, res.Skipped)
	require.Len(t, res.Matches, 2)

	first := res.Matches[0]
	assert.Equal(t, match.End{Kind: match.PlannedExit, Reason: "Timelimit hit."}, first.End)
	assert.Zero(t, first.TotalKills)
	assert.Equal(t, []match.PlayerSummary{{ID: 2, Name: "Isgalamido", Connected: true}}, first.Players)

	second := res.Matches[1]
	assert.Equal(t, 2, second.ID)
	assert.Equal(t, "q3dm17", second.Map)
	assert.Equal(t, event.Deathmatch, second.GameType)
	assert.Equal(t, 5, second.TotalKills)
	assert.Equal(t, map[event.MeansOfDeath]int{
		event.ModTriggerHurt:  2,
		event.ModRocketSplash: 2,
		event.ModRailgun:      1,
	}, second.KillTally)
	assert.Equal(t, []match.PlayerSummary{
		{ID: 2, Name: "Isgalamido", Kills: 1, Deaths: 4, WorldDeaths: 2, Connected: true},
		{ID: 3, Name: "Dono da Bola", Kills: 1, Deaths: 1, Connected: true},
	}, second.Players)
	assert.Equal(t, match.End{Kind: match.PlannedExit, Reason: "Fraglimit hit."}, second.End)
	require.NotNil(t, second.Reported)
	assert.Equal(t, 1, second.Reported.Players[3].Score)
	assert.Equal(t, 4, second.Reported.Players[3].Ping)
	assert.Equal(t, event.Timestamp{Hours: 20, Minutes: 37}, second.StartedAt)
	assert.Equal(t, event.Timestamp{Hours: 26, Minutes: 9}, second.EndedAt)

	assert.NotEqual(t, first.Fingerprint, second.Fingerprint)
}

const brokenLog = `  0:00 InitGame: \g_gametype\0
  0:01 ClientConnect: 2
  0:02 this is not a log line
  0:03 Kill: 1022 two 22: <world> killed Isgalamido by MOD_TRIGGER_HURT
  0:04 Kill: 1022 2 22: <world> killed Isgalamido by MOD_TRIGGER_HURT
  0:05 ShutdownGame:
`

func TestParseReader_Policies(t *testing.T) {
	t.Run("default drops bad lines", func(t *testing.T) {
		var summaries []q3log.MatchSummary
		for s, err := range q3log.ParseReader(t.Context(), strings.NewReader(brokenLog)) {
			require.NoError(t, err)
			summaries = append(summaries, s)
		}
		require.Len(t, summaries, 1)
		assert.Equal(t, 1, summaries[0].TotalKills)
	})

	t.Run("verbose reports bad lines", func(t *testing.T) {
		var logs bytes.Buffer
		logger := slog.New(slog.NewTextHandler(&logs, nil))

		var skipped []*q3log.SkippedError
		var summaries int
		for _, err := range q3log.ParseReader(t.Context(), strings.NewReader(brokenLog),
			q3log.WithVerbose(true), q3log.WithLogger(logger)) {
			if err != nil {
				var se *q3log.SkippedError
				require.ErrorAs(t, err, &se)
				skipped = append(skipped, se)
				continue
			}
			summaries++
		}
		assert.Equal(t, 1, summaries)
		require.Len(t, skipped, 2)

		var lpe *q3log.LogParsingError
		require.ErrorAs(t, skipped[0], &lpe)
		assert.Equal(t, 3, lpe.Line)

		var epe *q3log.EventParsingError
		require.ErrorAs(t, skipped[1], &epe)
		assert.Equal(t, 4, epe.Line)
		assert.Equal(t, "victim_id", epe.Field)

		assert.Contains(t, logs.String(), "skipping line")
	})

	t.Run("pedantic stops at the first bad line", func(t *testing.T) {
		var errs []error
		var summaries int
		for _, err := range q3log.ParseReader(t.Context(), strings.NewReader(brokenLog), q3log.WithPedantic(true)) {
			if err != nil {
				errs = append(errs, err)
				continue
			}
			summaries++
		}
		assert.Zero(t, summaries)
		require.Len(t, errs, 1)
		assert.False(t, policy.IsSkipped(errs[0]))
		var lpe *q3log.LogParsingError
		require.ErrorAs(t, errs[0], &lpe)
		assert.Equal(t, 3, lpe.Line)
	})
}

func TestParseReader_OverlongLine(t *testing.T) {
	input := strings.Join([]string{
		"  0:00 InitGame: \\g_gametype\\0",
		"  0:01 ClientConnect: 2",
		"  0:02 say: " + strings.Repeat("spam ", 200),
		"  0:03 Kill: 1022 2 22: <world> killed Isgalamido by MOD_TRIGGER_HURT",
		"  0:04 ShutdownGame:",
	}, "\n")

	t.Run("default drops the line", func(t *testing.T) {
		var summaries []q3log.MatchSummary
		for s, err := range q3log.ParseReader(t.Context(), strings.NewReader(input), q3log.WithMaxLineBytes(128)) {
			require.NoError(t, err)
			summaries = append(summaries, s)
		}
		require.Len(t, summaries, 1)
		assert.Equal(t, 1, summaries[0].TotalKills)
	})

	t.Run("verbose skips the line", func(t *testing.T) {
		var skipped []error
		var summaries int
		for _, err := range q3log.ParseReader(t.Context(), strings.NewReader(input),
			q3log.WithMaxLineBytes(128), q3log.WithVerbose(true)) {
			if err != nil {
				skipped = append(skipped, err)
				continue
			}
			summaries++
		}
		assert.Equal(t, 1, summaries)
		require.Len(t, skipped, 1)
		assert.True(t, policy.IsSkipped(skipped[0]))
		var lpe *q3log.LogParsingError
		require.ErrorAs(t, skipped[0], &lpe)
		assert.Equal(t, 3, lpe.Line)
	})

	t.Run("pedantic stops", func(t *testing.T) {
		var errs []error
		for _, err := range q3log.ParseReader(t.Context(), strings.NewReader(input),
			q3log.WithMaxLineBytes(128), q3log.WithPedantic(true)) {
			if err != nil {
				errs = append(errs, err)
			}
		}
		require.Len(t, errs, 1)
		assert.False(t, policy.IsSkipped(errs[0]))
		assert.ErrorAs(t, errs[0], new(*q3log.LogParsingError))
	})
}

func TestParseReader_Passthrough(t *testing.T) {
	input := "  0:00 InitGame: \\g_gametype\\0\n  0:01 Warmup: 10\n  0:02 ShutdownGame:\n"

	var errs int
	for _, err := range q3log.ParseReader(t.Context(), strings.NewReader(input), q3log.WithPedantic(true)) {
		if err != nil {
			errs++
		}
	}
	assert.Equal(t, 1, errs, "unknown names are errors by default")

	var summaries int
	for _, err := range q3log.ParseReader(t.Context(), strings.NewReader(input),
		q3log.WithPedantic(true), q3log.WithPassthroughUnknown(true)) {
		require.NoError(t, err)
		summaries++
	}
	assert.Equal(t, 1, summaries)
}

func TestParseReader_FlushOpenMatch(t *testing.T) {
	input := "  0:00 InitGame: \\g_gametype\\4\n  0:01 ClientConnect: 2\n"

	var summaries []q3log.MatchSummary
	for s, err := range q3log.ParseReader(t.Context(), strings.NewReader(input), q3log.WithFlushOpenMatch(true)) {
		require.NoError(t, err)
		summaries = append(summaries, s)
	}
	require.Len(t, summaries, 1)
	assert.True(t, summaries[0].Truncated)
	assert.Equal(t, event.CaptureTheFlag, summaries[0].GameType)
}

func TestParseReader_ContextCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(t.Context())
	cancel()

	var errs []error
	for _, err := range q3log.ParseReader(ctx, strings.NewReader(brokenLog), q3log.WithVerbose(true)) {
		errs = append(errs, err)
	}
	require.Len(t, errs, 1)
	assert.ErrorIs(t, errs[0], context.Canceled)
}

func TestParseReader_InvalidOption(t *testing.T) {
	var errs []error
	for _, err := range q3log.ParseReader(t.Context(), strings.NewReader(brokenLog), q3log.WithMaxLineBytes(-1)) {
		errs = append(errs, err)
	}
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0].Error(), "max line bytes")
}

func TestParseFile_Errors(t *testing.T) {
	dir := t.TempDir()

	t.Run("missing file", func(t *testing.T) {
		_, err := q3log.ParseFileAll(t.Context(), filepath.Join(dir, "nope.log"))
		require.Error(t, err)
		assert.True(t, errors.Is(err, os.ErrNotExist))
	})

	t.Run("directory", func(t *testing.T) {
		_, err := q3log.ParseFileAll(t.Context(), dir)
		assert.ErrorIs(t, err, safefile.ErrNotRegularFile)
	})

	t.Run("partial result before fatal error", func(t *testing.T) {
		path := filepath.Join(dir, "games.log")
		content := "  0:00 InitGame: \\g_gametype\\0\n  0:01 ShutdownGame:\n  0:02 garbage\n"
		require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

		res, err := q3log.ParseFileAll(t.Context(), path, q3log.WithPedantic(true))
		require.Error(t, err)
		assert.Len(t, res.Matches, 1)
	})
}

func TestDecoder_EarlyBreak(t *testing.T) {
	d, err := q3log.NewDecoder()
	require.NoError(t, err)

	pulled := 0
	lines := func(yield func(q3log.RawLine, error) bool) {
		for i := 1; i <= 10; i++ {
			pulled++
			if !yield(q3log.RawLine{Number: i, Text: "  0:00 ClientConnect: 2"}, nil) {
				return
			}
		}
	}
	for range d.Events(t.Context(), lines) {
		break
	}
	assert.Equal(t, 1, pulled)
}
