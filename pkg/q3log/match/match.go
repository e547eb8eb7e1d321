package match

import (
	"fmt"

	"github.com/q3log/q3log-go/pkg/q3log/event"
)

// EndKind tells how a match finished.
type EndKind int

const (
	// Open means the match has not seen ShutdownGame yet.
	Open EndKind = iota
	// PlannedExit means an Exit line announced a reached limit.
	PlannedExit
	// Aborted means ShutdownGame came without a preceding Exit.
	Aborted
)

func (k EndKind) String() string {
	switch k {
	case Open:
		return "open"
	case PlannedExit:
		return "planned_exit"
	case Aborted:
		return "aborted"
	default:
		return fmt.Sprintf("end(%d)", int(k))
	}
}

// MarshalText implements encoding.TextMarshaler.
func (k EndKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// End is the end state of a match. Reason is only set for PlannedExit.
type End struct {
	Kind   EndKind `json:"kind"`
	Reason string  `json:"reason,omitempty"`
}

// Player is one client slot within a match.
type Player struct {
	ID        int
	Name      string
	Connected bool
	Began     bool
	Kills     int
	Deaths    int
	// WorldDeaths counts the deaths caused by the world, a subset of Deaths.
	WorldDeaths int
}

// ReportedScore is a score line as printed by the server.
type ReportedScore struct {
	Name  string `json:"name"`
	Score int    `json:"score"`
	Ping  int    `json:"ping"`
}

// ReportedScores holds what the server printed before ShutdownGame. The
// values are kept verbatim and never compared with the computed tallies.
type ReportedScores struct {
	Players map[int]ReportedScore `json:"players,omitempty"`
	Team    *event.TeamScore      `json:"team,omitempty"`
}

// Match is the mutable aggregate of one open match.
// It is owned by the Aggregator and must not be retained after Close.
type Match struct {
	ID        int
	GameType  event.GameType
	Limits    event.Limits
	Config    map[string]string
	Players   map[int]*Player
	KillTally map[event.MeansOfDeath]int
	// TotalKills counts Kill events, world kills and suicides included.
	TotalKills int
	End        End
	Reported   *ReportedScores

	StartedAt event.Timestamp
	StartLine int
}

func newMatch(id int, ev event.Event, g event.InitGame, limits event.Limits) *Match {
	return &Match{
		ID:        id,
		GameType:  g.GameType(),
		Limits:    limits,
		Config:    g.Config,
		Players:   make(map[int]*Player),
		KillTally: make(map[event.MeansOfDeath]int),
		StartedAt: ev.Timestamp,
		StartLine: ev.Line,
	}
}

func (m *Match) reported() *ReportedScores {
	if m.Reported == nil {
		m.Reported = &ReportedScores{}
	}
	return m.Reported
}
