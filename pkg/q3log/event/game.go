package event

import (
	"strconv"
	"strings"
)

// GameType is the match mode announced by InitGame.
type GameType int

const (
	Deathmatch GameType = iota
	CaptureTheFlag
)

// ctfGameType is the g_gametype value of GT_CTF in ioquake3.
const ctfGameType = "4"

// String returns the display name of the game type.
func (g GameType) String() string {
	switch g {
	case CaptureTheFlag:
		return "capture_the_flag"
	default:
		return "deathmatch"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (g GameType) MarshalText() ([]byte, error) {
	return []byte(g.String()), nil
}

// Limits holds the match end conditions. Nil means the cvar was not set.
type Limits struct {
	FragLimit    *int `json:"fraglimit,omitempty"`
	CaptureLimit *int `json:"capturelimit,omitempty"`
	TimeLimit    *int `json:"timelimit,omitempty"`
}

// Limit cvar names.
const (
	KeyGameType     = "g_gametype"
	KeyFragLimit    = "fraglimit"
	KeyCaptureLimit = "capturelimit"
	KeyTimeLimit    = "timelimit"
	KeyMapName      = "mapname"
)

// GameType derives the game type from the g_gametype cvar.
// Anything other than CTF, including a missing key, is deathmatch.
func (g InitGame) GameType() GameType {
	if strings.TrimSpace(g.Config[KeyGameType]) == ctfGameType {
		return CaptureTheFlag
	}
	return Deathmatch
}

// Limits parses the limit cvars. A present but non-numeric value fails with
// an EventParsingError naming the cvar.
func (g InitGame) Limits() (Limits, error) {
	var l Limits
	for _, f := range []struct {
		key string
		dst **int
	}{
		{KeyFragLimit, &l.FragLimit},
		{KeyCaptureLimit, &l.CaptureLimit},
		{KeyTimeLimit, &l.TimeLimit},
	} {
		raw, ok := g.Config[f.key]
		if !ok {
			continue
		}
		n, err := strconv.Atoi(strings.TrimSpace(raw))
		if err != nil {
			return Limits{}, &EventParsingError{
				EventName: string(TypeInitGame),
				Cause:     CauseNotAnInteger,
				Field:     f.key,
				Observed:  raw,
			}
		}
		*f.dst = &n
	}
	return l, nil
}

// MapName returns the mapname cvar, or "" if absent.
func (g InitGame) MapName() string {
	return g.Config[KeyMapName]
}
