package q3log_test

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/q3log/q3log-go/pkg/q3log"
)

// ExampleParseReader summarizes a short log held in memory.
func ExampleParseReader() {
	const games = `  0:00 ------------------------------------------------------------
  1:00 InitGame: \g_gametype\0\fraglimit\20\mapname\q3dm17
  1:01 ClientConnect: 2
  1:01 ClientUserinfoChanged: 2 n\Isgalamido\t\0
  1:08 Kill: 1022 2 7: <world> killed Isgalamido by MOD_ROCKET_SPLASH
  1:09 Exit: Fraglimit hit
  1:09 ShutdownGame:
`
	for s, err := range q3log.ParseReader(context.Background(), strings.NewReader(games)) {
		if err != nil {
			log.Fatal(err)
		}
		p, _ := s.Player(2)
		fmt.Printf("game %d on %s: %d kills, %s died %d times (%s)\n",
			s.ID, s.Map, s.TotalKills, p.Name, p.Deaths, s.End.Reason)
	}
	// Output:
	// game 1 on q3dm17: 1 kills, Isgalamido died 1 times (Fraglimit hit)
}

// ExampleWithVerbose shows how skipped lines are reported.
func ExampleWithVerbose() {
	const games = `  1:00 InitGame: \g_gametype\0
  1:01 ClientConnect: x
  1:02 ShutdownGame:
`
	for s, err := range q3log.ParseReader(context.Background(), strings.NewReader(games), q3log.WithVerbose(true)) {
		var skipped *q3log.SkippedError
		if errors.As(err, &skipped) {
			fmt.Println("skipped:", skipped.Err)
			continue
		}
		if err != nil {
			log.Fatal(err)
		}
		fmt.Println("game", s.ID, "players:", len(s.Players))
	}
	// Output:
	// skipped: line 2: event "ClientConnect": not an integer: client_id (got "x")
	// game 1 players: 0
}

// ExampleParseLine parses one line.
func ExampleParseLine() {
	ev, err := q3log.ParseLine(1, " 20:54 Kill: 1022 2 22: <world> killed Isgalamido by MOD_TRIGGER_HURT")
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(ev)
	// Output:
	// line 1 (20:54 Kill)
}
