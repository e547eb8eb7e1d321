package parser

import "regexp"

// Compiled patterns for the positional payloads. Fields are captured as
// \S+ so that a non-numeric value still matches and can be reported as
// NotAnInteger for the right field instead of a shape mismatch.
var (
	// Matches: "3 2 10"
	// Captures: (1) killer id, (2) victim id, (3) means of death
	killHeadPattern = regexp.MustCompile(
		`^(\S+)\s+(\S+)\s+(\S+)$`,
	)

	// Matches: "<world> killed Isgalamido by MOD_TRIGGER_HURT"
	// Victim names may contain " by ", so the weapon is anchored to the end.
	// Captures: (1) killer name, (2) victim name, (3) weapon name
	killTextPattern = regexp.MustCompile(
		`^(.*?) killed (.*) by (\S+)$`,
	)

	// Matches: "77  ping: 3  client: 2 Isgalamido"
	// Captures: (1) score, (2) ping, (3) client id, (4) name (optional)
	scorePattern = regexp.MustCompile(
		`^(\S+)\s+ping:\s*(\S+)\s+client:\s*(\S+)(?:\s+(.*))?$`,
	)

	// Matches: "8  blue:6" (the line itself starts with "red:")
	// Captures: (1) red score, (2) blue score
	teamScorePattern = regexp.MustCompile(
		`^(\S+)\s+blue:\s*(\S+)$`,
	)

	// Matches: "2 ammo_rockets"
	// Captures: (1) client id, (2) item class name
	itemPattern = regexp.MustCompile(
		`^(\S+)\s+(\S.*)$`,
	)
)

// chatEvents are the event names the server uses for chat lines.
var chatEvents = map[string]bool{
	"say":     true,
	"sayteam": true,
	"tell":    true,
}
