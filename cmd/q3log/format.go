package main

import (
	"encoding/json"
	"fmt"
	"io"
	"maps"
	"slices"
	"strconv"
	"strings"

	"github.com/q3log/q3log-go/pkg/q3log"
	"github.com/q3log/q3log-go/pkg/q3log/config"
	"github.com/q3log/q3log-go/pkg/q3log/event"
	"github.com/q3log/q3log-go/pkg/q3log/match"
)

// validFormats lists the output formats per command.
var validFormats = map[string]bool{
	config.FormatJSON:   true,
	config.FormatJSONL:  true,
	config.FormatPretty: true,
}

// streamFormats are the formats usable by follow, which never ends a
// document.
var streamFormats = map[string]bool{
	config.FormatJSONL:  true,
	config.FormatPretty: true,
}

// reportWriter writes match summaries as they complete.
type reportWriter interface {
	Write(s q3log.MatchSummary) error
	// Close finishes the document. It is called once, also after an error.
	Close() error
}

func newReportWriter(format string, extended bool, out io.Writer) (reportWriter, error) {
	switch format {
	case config.FormatJSON:
		return &jsonReport{out: out, extended: extended}, nil
	case config.FormatJSONL:
		return &jsonlReport{out: out, extended: extended}, nil
	case config.FormatPretty:
		return &prettyReport{out: out, extended: extended}, nil
	default:
		return nil, fmt.Errorf("unknown format: %s", format)
	}
}

// gameReport is the per-match object of the json and jsonl reports.
type gameReport struct {
	TotalKills int            `json:"total_kills"`
	Players    []string       `json:"players"`
	Kills      map[string]int `json:"kills"`

	// Extended fields.
	KillsByMeans        map[event.MeansOfDeath]int `json:"kills_by_means,omitempty"`
	ReportedScores      *reportedScores            `json:"game_reported_scores,omitempty"`
	DisconnectedPlayers []disconnectedPlayer       `json:"disconnected_players,omitempty"`
	End                 *match.End                 `json:"end,omitempty"`
	GameType            string                     `json:"game_type,omitempty"`
	Map                 string                     `json:"map,omitempty"`
	Truncated           bool                       `json:"truncated,omitempty"`
}

// disconnectedPlayer is a player that had left when the match ended. It is
// left out of players and kills.
type disconnectedPlayer struct {
	ID    int    `json:"id"`
	Name  string `json:"name"`
	Kills int    `json:"kills"`
}

type reportedScores struct {
	Players map[string]int `json:"players,omitempty"`
	Red     *int           `json:"red,omitempty"`
	Blue    *int           `json:"blue,omitempty"`
}

// playerName is the key a player is reported under. Players that never
// sent userinfo are named after their slot.
func playerName(p match.PlayerSummary) string {
	if p.Name != "" {
		return p.Name
	}
	return "client " + strconv.Itoa(p.ID)
}

// frags is the score a player is reported with: one up per kill, one down
// per death caused by the world.
func frags(p match.PlayerSummary) int {
	return p.Kills - p.WorldDeaths
}

func newGameReport(s q3log.MatchSummary, extended bool) gameReport {
	r := gameReport{
		TotalKills: s.TotalKills,
		Players:    make([]string, 0, len(s.Players)),
		Kills:      make(map[string]int, len(s.Players)),
	}
	var gone []disconnectedPlayer
	for _, p := range s.Players {
		name := playerName(p)
		if !p.Connected {
			gone = append(gone, disconnectedPlayer{ID: p.ID, Name: name, Kills: frags(p)})
			continue
		}
		if _, dup := r.Kills[name]; !dup {
			r.Players = append(r.Players, name)
		}
		// Two slots sharing a nickname are reported as one player.
		r.Kills[name] += frags(p)
	}
	slices.Sort(r.Players)

	if !extended {
		return r
	}
	r.DisconnectedPlayers = gone
	r.KillsByMeans = s.KillTally
	end := s.End
	r.End = &end
	r.GameType = s.GameType.String()
	r.Map = s.Map
	r.Truncated = s.Truncated
	if s.Reported != nil {
		rs := &reportedScores{}
		if len(s.Reported.Players) > 0 {
			rs.Players = make(map[string]int, len(s.Reported.Players))
			for id, sc := range s.Reported.Players {
				name := sc.Name
				if name == "" {
					name = "client " + strconv.Itoa(id)
				}
				rs.Players[name] = sc.Score
			}
		}
		if t := s.Reported.Team; t != nil {
			red, blue := t.Red, t.Blue
			rs.Red, rs.Blue = &red, &blue
		}
		r.ReportedScores = rs
	}
	return r
}

// jsonReport writes one JSON object keyed "game_<id>", in match order.
type jsonReport struct {
	out      io.Writer
	extended bool
	n        int
}

func (j *jsonReport) Write(s q3log.MatchSummary) error {
	data, err := json.MarshalIndent(newGameReport(s, j.extended), "  ", "  ")
	if err != nil {
		return err
	}
	sep := "{\n"
	if j.n > 0 {
		sep = ",\n"
	}
	j.n++
	_, err = fmt.Fprintf(j.out, "%s  \"game_%d\": %s", sep, s.ID, data)
	return err
}

func (j *jsonReport) Close() error {
	if j.n == 0 {
		_, err := fmt.Fprintln(j.out, "{}")
		return err
	}
	_, err := fmt.Fprintln(j.out, "\n}")
	return err
}

// jsonlReport writes one JSON object per line. With extended set the whole
// MatchSummary is written.
type jsonlReport struct {
	out      io.Writer
	extended bool
}

func (j *jsonlReport) Write(s q3log.MatchSummary) error {
	var v any = struct {
		Game int `json:"game"`
		gameReport
	}{s.ID, newGameReport(s, false)}
	if j.extended {
		v = s
	}
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(j.out, string(data))
	return err
}

func (j *jsonlReport) Close() error { return nil }

// prettyReport writes a human-readable block per match.
type prettyReport struct {
	out      io.Writer
	extended bool
}

func (p *prettyReport) Write(s q3log.MatchSummary) error {
	var sb strings.Builder

	fmt.Fprintf(&sb, "game %d", s.ID)
	if s.Map != "" {
		fmt.Fprintf(&sb, " on %s", s.Map)
	}
	fmt.Fprintf(&sb, " (%s) [%s-%s]", s.GameType, s.StartedAt, s.EndedAt)
	switch {
	case s.Truncated:
		sb.WriteString(" truncated")
	case s.End.Kind == match.PlannedExit:
		fmt.Fprintf(&sb, " %s", strings.TrimSuffix(s.End.Reason, "."))
	default:
		fmt.Fprintf(&sb, " %s", s.End.Kind)
	}
	fmt.Fprintf(&sb, "\n  total kills: %d\n", s.TotalKills)

	for _, pl := range s.Players {
		fmt.Fprintf(&sb, "  %-20s score %3d  kills %3d  deaths %3d", quoteIfNeeded(playerName(pl)), frags(pl), pl.Kills, pl.Deaths)
		if !pl.Connected {
			sb.WriteString("  (disconnected)")
		}
		sb.WriteByte('\n')
	}

	if p.extended {
		for _, mod := range slices.Sorted(maps.Keys(s.KillTally)) {
			fmt.Fprintf(&sb, "  * %s: %d\n", mod, s.KillTally[mod])
		}
		if s.Reported != nil && s.Reported.Team != nil {
			fmt.Fprintf(&sb, "  * red %d, blue %d\n", s.Reported.Team.Red, s.Reported.Team.Blue)
		}
	}

	_, err := io.WriteString(p.out, sb.String())
	return err
}

func (p *prettyReport) Close() error { return nil }

// quoteIfNeeded quotes a nickname holding control characters or quotes so
// one player cannot break the layout of the report.
func quoteIfNeeded(v string) string {
	for _, c := range v {
		if c == '"' || c == '\\' || c < 0x20 || c == 0x7F {
			return strconv.Quote(v)
		}
	}
	return v
}
