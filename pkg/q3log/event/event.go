// Package event defines the typed Quake 3 server events produced by the
// line decoder and consumed by the match aggregator.
package event

import "fmt"

// Type identifies the kind of server event.
type Type string

// Server event types.
const (
	TypeInitGame              Type = "InitGame"
	TypeClientConnect         Type = "ClientConnect"
	TypeClientBegin           Type = "ClientBegin"
	TypeClientUserinfoChanged Type = "ClientUserinfoChanged"
	TypeClientDisconnect      Type = "ClientDisconnect"
	TypeKill                  Type = "Kill"
	TypeItem                  Type = "Item"
	TypeSay                   Type = "say"
	TypeSayTeam               Type = "sayteam"
	TypeTell                  Type = "tell"
	TypeScore                 Type = "score"
	TypeTeamScore             Type = "red"
	TypeExit                  Type = "Exit"
	TypeShutdownGame          Type = "ShutdownGame"

	// TypeUnrecognized is only produced when unknown event names are
	// passed through instead of being reported as errors.
	TypeUnrecognized Type = "Unrecognized"
)

// WorldID is the client id the server uses as killer for environment deaths
// (falling, lava, trigger_hurt and friends).
const WorldID = 1022

// Timestamp is the server clock printed at the start of every log line.
// The server right-aligns it and does not bound the leading field, so
// values such as "980:37" are kept as-is.
type Timestamp struct {
	Hours   int `json:"hours"`
	Minutes int `json:"minutes"`
}

// String formats the timestamp the way the server prints it, without padding.
func (t Timestamp) String() string {
	return fmt.Sprintf("%d:%02d", t.Hours, t.Minutes)
}

// Event is a single decoded log line.
type Event struct {
	Type      Type      `json:"type"`
	Timestamp Timestamp `json:"timestamp"`
	// Line is the 1-based line number in the source.
	Line int     `json:"line"`
	Data Payload `json:"data"`
}

// String returns a short description used in diagnostics.
func (e Event) String() string {
	return fmt.Sprintf("line %d (%s %s)", e.Line, e.Timestamp, e.Type)
}

// Payload is implemented by every event variant. The set of variants is
// closed: switch on the concrete type to handle each one.
type Payload interface {
	// Type reports the event type this payload belongs to.
	Type() Type
	payload()
}

// InitGame opens a new match. Config holds the server cvars.
type InitGame struct {
	Config map[string]string `json:"config"`
}

// ClientConnect registers a client slot.
type ClientConnect struct {
	ClientID int `json:"client_id"`
}

// ClientBegin marks a client as entering the game.
type ClientBegin struct {
	ClientID int `json:"client_id"`
}

// ClientUserinfoChanged carries the client's user info; Name is its "n" key.
type ClientUserinfoChanged struct {
	ClientID int               `json:"client_id"`
	Name     string            `json:"name"`
	Info     map[string]string `json:"info,omitempty"`
}

// ClientDisconnect releases a client slot.
type ClientDisconnect struct {
	ClientID int `json:"client_id"`
}

// Kill reports a death. KillerID is WorldID for environment deaths.
// The names come from the free-text tail of the line and are informational.
type Kill struct {
	KillerID   int          `json:"killer_id"`
	VictimID   int          `json:"victim_id"`
	Weapon     MeansOfDeath `json:"weapon"`
	KillerName string       `json:"killer_name,omitempty"`
	VictimName string       `json:"victim_name,omitempty"`
	WeaponName string       `json:"weapon_name,omitempty"`
}

// Item reports an item pickup.
type Item struct {
	ClientID int    `json:"client_id"`
	Item     string `json:"item"`
}

// Say is a chat line (say, sayteam or tell).
type Say struct {
	Channel string `json:"channel"`
	Text    string `json:"text"`
}

// Score is a per-player score line printed by the server at match end.
type Score struct {
	ClientID int    `json:"client_id"`
	Score    int    `json:"score"`
	Ping     int    `json:"ping"`
	Name     string `json:"name"`
}

// TeamScore is the capture the flag score line ("red:8  blue:6").
type TeamScore struct {
	Red  int `json:"red"`
	Blue int `json:"blue"`
}

// Exit reports the limit that ended the match.
type Exit struct {
	Reason string `json:"reason"`
}

// ShutdownGame closes the current match.
type ShutdownGame struct{}

// Unrecognized carries an event name the decoder does not know.
type Unrecognized struct {
	Name    string `json:"name"`
	Payload string `json:"payload"`
}

func (InitGame) Type() Type              { return TypeInitGame }
func (ClientConnect) Type() Type         { return TypeClientConnect }
func (ClientBegin) Type() Type           { return TypeClientBegin }
func (ClientUserinfoChanged) Type() Type { return TypeClientUserinfoChanged }
func (ClientDisconnect) Type() Type      { return TypeClientDisconnect }
func (Kill) Type() Type                  { return TypeKill }
func (Item) Type() Type                  { return TypeItem }
func (Score) Type() Type                 { return TypeScore }
func (TeamScore) Type() Type             { return TypeTeamScore }
func (Exit) Type() Type                  { return TypeExit }
func (ShutdownGame) Type() Type          { return TypeShutdownGame }
func (Unrecognized) Type() Type          { return TypeUnrecognized }

// Type returns the chat channel the line was written to.
func (s Say) Type() Type {
	if s.Channel == "" {
		return TypeSay
	}
	return Type(s.Channel)
}

func (InitGame) payload()              {}
func (ClientConnect) payload()         {}
func (ClientBegin) payload()           {}
func (ClientUserinfoChanged) payload() {}
func (ClientDisconnect) payload()      {}
func (Kill) payload()                  {}
func (Item) payload()                  {}
func (Say) payload()                   {}
func (Score) payload()                 {}
func (TeamScore) payload()             {}
func (Exit) payload()                  {}
func (ShutdownGame) payload()          {}
func (Unrecognized) payload()          {}

// Neutral reports whether p never changes match state. Such events are
// accepted anywhere in the stream and dropped by the aggregator.
func Neutral(p Payload) bool {
	switch p.(type) {
	case Item, Say, Unrecognized:
		return true
	}
	return false
}
