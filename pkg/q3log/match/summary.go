package match

import (
	"maps"
	"slices"
	"strconv"

	"github.com/cespare/xxhash/v2"
	"github.com/q3log/q3log-go/pkg/q3log/event"
)

// PlayerSummary is the final state of a player.
type PlayerSummary struct {
	ID     int    `json:"id"`
	Name   string `json:"name"`
	Kills  int    `json:"kills"`
	Deaths int    `json:"deaths"`
	// WorldDeaths counts the deaths caused by the world, a subset of Deaths.
	WorldDeaths int  `json:"world_deaths"`
	Connected   bool `json:"connected"`
}

// MatchSummary is the read-only result of a closed match.
type MatchSummary struct {
	ID       int            `json:"id"`
	GameType event.GameType `json:"game_type"`
	Map      string         `json:"map,omitempty"`
	Limits   event.Limits   `json:"limits"`
	// Players is ordered by client id.
	Players    []PlayerSummary            `json:"players"`
	TotalKills int                        `json:"total_kills"`
	KillTally  map[event.MeansOfDeath]int `json:"kills_by_means"`
	End        End                        `json:"end"`
	Reported   *ReportedScores            `json:"reported_scores,omitempty"`

	StartedAt event.Timestamp `json:"started_at"`
	EndedAt   event.Timestamp `json:"ended_at"`
	StartLine int             `json:"start_line"`
	EndLine   int             `json:"end_line"`
	// Truncated is set when the input ended before ShutdownGame and the
	// match was flushed.
	Truncated bool `json:"truncated,omitempty"`
	// Fingerprint identifies the match by its server config and start
	// time, independent of line numbers.
	Fingerprint uint64 `json:"fingerprint"`
}

// Player returns the summary of the player with the given id.
func (s MatchSummary) Player(id int) (PlayerSummary, bool) {
	for _, p := range s.Players {
		if p.ID == id {
			return p, true
		}
	}
	return PlayerSummary{}, false
}

// summarize freezes m. The returned value shares nothing with m.
func (m *Match) summarize(closing event.Event) MatchSummary {
	ids := slices.Sorted(maps.Keys(m.Players))
	players := make([]PlayerSummary, 0, len(ids))
	for _, id := range ids {
		p := m.Players[id]
		players = append(players, PlayerSummary{
			ID:          p.ID,
			Name:        p.Name,
			Kills:       p.Kills,
			Deaths:      p.Deaths,
			WorldDeaths: p.WorldDeaths,
			Connected:   p.Connected,
		})
	}

	var reported *ReportedScores
	if m.Reported != nil {
		reported = &ReportedScores{Players: maps.Clone(m.Reported.Players)}
		if m.Reported.Team != nil {
			team := *m.Reported.Team
			reported.Team = &team
		}
	}

	return MatchSummary{
		ID:          m.ID,
		GameType:    m.GameType,
		Map:         m.Config[event.KeyMapName],
		Limits:      m.Limits,
		Players:     players,
		TotalKills:  m.TotalKills,
		KillTally:   maps.Clone(m.KillTally),
		End:         m.End,
		Reported:    reported,
		StartedAt:   m.StartedAt,
		EndedAt:     closing.Timestamp,
		StartLine:   m.StartLine,
		EndLine:     closing.Line,
		Fingerprint: fingerprint(m.Config, m.StartedAt),
	}
}

// fingerprint hashes the server config in key order together with the start
// time.
func fingerprint(cfg map[string]string, start event.Timestamp) uint64 {
	d := xxhash.New()
	for _, k := range slices.Sorted(maps.Keys(cfg)) {
		_, _ = d.WriteString(k)
		_, _ = d.WriteString("\x00")
		_, _ = d.WriteString(cfg[k])
		_, _ = d.WriteString("\x00")
	}
	_, _ = d.WriteString(strconv.Itoa(start.Hours))
	_, _ = d.WriteString(":")
	_, _ = d.WriteString(strconv.Itoa(start.Minutes))
	return d.Sum64()
}
