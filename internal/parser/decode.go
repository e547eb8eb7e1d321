package parser

import (
	"strconv"
	"strings"

	"github.com/q3log/q3log-go/pkg/q3log/event"
)

// Decode maps an event name and its raw payload to a typed payload.
// Decoding is pure: the same input always yields an equal result.
//
// Returns a *event.EventParsingError when the name is unknown or the payload
// does not fit the shape of its event. Line and Raw are left for the caller.
func Decode(name, payload string) (event.Payload, error) {
	switch event.Type(name) {
	case event.TypeInitGame:
		return decodeInitGame(payload)
	case event.TypeClientConnect:
		id, err := clientID(name, payload)
		if err != nil {
			return nil, err
		}
		return event.ClientConnect{ClientID: id}, nil
	case event.TypeClientBegin:
		id, err := clientID(name, payload)
		if err != nil {
			return nil, err
		}
		return event.ClientBegin{ClientID: id}, nil
	case event.TypeClientDisconnect:
		id, err := clientID(name, payload)
		if err != nil {
			return nil, err
		}
		return event.ClientDisconnect{ClientID: id}, nil
	case event.TypeClientUserinfoChanged:
		return decodeUserinfo(payload)
	case event.TypeKill:
		return decodeKill(payload)
	case event.TypeItem:
		return decodeItem(payload)
	case event.TypeScore:
		return decodeScore(payload)
	case event.TypeTeamScore:
		return decodeTeamScore(payload)
	case event.TypeExit:
		return event.Exit{Reason: strings.TrimSpace(payload)}, nil
	case event.TypeShutdownGame:
		return event.ShutdownGame{}, nil
	}

	if chatEvents[name] {
		return event.Say{Channel: name, Text: payload}, nil
	}
	return nil, &event.EventParsingError{
		EventName: name,
		Cause:     event.CauseUnknownEventName,
	}
}

func decodeInitGame(payload string) (event.Payload, error) {
	cfg, err := parseInfoMap(string(event.TypeInitGame), payload)
	if err != nil {
		return nil, err
	}
	g := event.InitGame{Config: cfg}
	// Reject unusable limits here so the aggregator never sees them.
	if _, err := g.Limits(); err != nil {
		return nil, err
	}
	return g, nil
}

// decodeUserinfo decodes "<ID> n\Name\t\0\model\...".
func decodeUserinfo(payload string) (event.Payload, error) {
	name := string(event.TypeClientUserinfoChanged)
	idField, infoField, ok := strings.Cut(strings.TrimSpace(payload), " ")
	if !ok {
		return nil, &event.EventParsingError{
			EventName: name,
			Cause:     event.CauseFieldCountMismatch,
			Field:     "client_id user_info",
			Observed:  payload,
		}
	}
	id, err := integer(name, "client_id", idField)
	if err != nil {
		return nil, err
	}
	info, err := parseInfoMap(name, infoField)
	if err != nil {
		return nil, err
	}
	nick, ok := info["n"]
	if !ok {
		return nil, &event.EventParsingError{
			EventName: name,
			Cause:     event.CauseMissingKey,
			Field:     "n",
			Observed:  infoField,
		}
	}
	return event.ClientUserinfoChanged{ClientID: id, Name: nick, Info: info}, nil
}

// decodeKill decodes "<KILLER> <VICTIM> <MOD>[: <KILLER_NAME> killed <VICTIM_NAME> by <MOD_NAME>]".
func decodeKill(payload string) (event.Payload, error) {
	name := string(event.TypeKill)
	head, text, _ := strings.Cut(payload, ":")

	m := killHeadPattern.FindStringSubmatch(strings.TrimSpace(head))
	if m == nil {
		return nil, &event.EventParsingError{
			EventName: name,
			Cause:     event.CauseFieldCountMismatch,
			Field:     "killer_id victim_id weapon",
			Observed:  payload,
		}
	}
	killer, err := integer(name, "killer_id", m[1])
	if err != nil {
		return nil, err
	}
	victim, err := integer(name, "victim_id", m[2])
	if err != nil {
		return nil, err
	}
	weapon, err := integer(name, "weapon", m[3])
	if err != nil {
		return nil, err
	}

	k := event.Kill{
		KillerID: killer,
		VictimID: victim,
		Weapon:   event.MeansOfDeath(weapon),
	}
	// The description is informational; a tail that does not follow the
	// usual wording is ignored rather than rejected.
	if t := killTextPattern.FindStringSubmatch(strings.TrimSpace(text)); t != nil {
		k.KillerName, k.VictimName, k.WeaponName = t[1], t[2], t[3]
	}
	return k, nil
}

func decodeItem(payload string) (event.Payload, error) {
	name := string(event.TypeItem)
	m := itemPattern.FindStringSubmatch(strings.TrimSpace(payload))
	if m == nil {
		return nil, &event.EventParsingError{
			EventName: name,
			Cause:     event.CauseFieldCountMismatch,
			Field:     "client_id item",
			Observed:  payload,
		}
	}
	id, err := integer(name, "client_id", m[1])
	if err != nil {
		return nil, err
	}
	return event.Item{ClientID: id, Item: m[2]}, nil
}

// decodeScore decodes "<SCORE>  ping: <PING>  client: <ID> <NAME>".
func decodeScore(payload string) (event.Payload, error) {
	name := string(event.TypeScore)
	m := scorePattern.FindStringSubmatch(strings.TrimSpace(payload))
	if m == nil {
		return nil, &event.EventParsingError{
			EventName: name,
			Cause:     event.CauseFieldCountMismatch,
			Field:     "score ping client",
			Observed:  payload,
		}
	}
	score, err := integer(name, "score", m[1])
	if err != nil {
		return nil, err
	}
	ping, err := integer(name, "ping", m[2])
	if err != nil {
		return nil, err
	}
	id, err := integer(name, "client_id", m[3])
	if err != nil {
		return nil, err
	}
	return event.Score{ClientID: id, Score: score, Ping: ping, Name: m[4]}, nil
}

// decodeTeamScore decodes the tail of "red:<R>  blue:<B>".
func decodeTeamScore(payload string) (event.Payload, error) {
	name := string(event.TypeTeamScore)
	m := teamScorePattern.FindStringSubmatch(strings.TrimSpace(payload))
	if m == nil {
		return nil, &event.EventParsingError{
			EventName: name,
			Cause:     event.CauseFieldCountMismatch,
			Field:     "red blue",
			Observed:  payload,
		}
	}
	red, err := integer(name, "red", m[1])
	if err != nil {
		return nil, err
	}
	blue, err := integer(name, "blue", m[2])
	if err != nil {
		return nil, err
	}
	return event.TeamScore{Red: red, Blue: blue}, nil
}

// parseInfoMap decodes a backslash separated "\key\value\key\value" map.
// The leading backslash is optional and the last duplicate key wins.
func parseInfoMap(eventName, data string) (map[string]string, error) {
	data = strings.TrimPrefix(data, `\`)
	if data == "" {
		return map[string]string{}, nil
	}
	tokens := strings.Split(data, `\`)
	if len(tokens)%2 != 0 {
		return nil, &event.EventParsingError{
			EventName: eventName,
			Cause:     event.CauseMalformedMap,
			Observed:  data,
		}
	}
	m := make(map[string]string, len(tokens)/2)
	for i := 0; i < len(tokens); i += 2 {
		m[tokens[i]] = tokens[i+1]
	}
	return m, nil
}

func clientID(eventName, payload string) (int, error) {
	return integer(eventName, "client_id", strings.TrimSpace(payload))
}

func integer(eventName, field, s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, &event.EventParsingError{
			EventName: eventName,
			Cause:     event.CauseNotAnInteger,
			Field:     field,
			Observed:  s,
		}
	}
	return n, nil
}
