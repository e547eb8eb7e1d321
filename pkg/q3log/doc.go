// Package q3log reads Quake 3 Arena server logs (games.log) and summarizes
// the matches they contain.
//
// The pipeline has two stages connected by iterators. The [Decoder] turns
// raw lines into typed events, and a [match.Aggregator] folds the event
// stream into one [MatchSummary] per completed match. Both stages pull
// lazily, so a log of any size is processed in constant memory and a
// consumer that stops ranging stops the whole pipeline.
//
// # Basic Usage
//
// To summarize a log file:
//
//	for s, err := range q3log.ParseFile(ctx, "games.log") {
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    fmt.Printf("game %d: %d kills\n", s.ID, s.TotalKills)
//	}
//
// To parse a single log line:
//
//	ev, err := q3log.ParseLine(1, "  1:47 Kill: 1022 2 22: <world> killed Isgalamido by MOD_TRIGGER_HURT")
//
// # Strictness
//
// Malformed lines and events that break the match protocol are handled
// according to a [policy.Policy]:
//
//   - default: skipped silently
//   - [WithVerbose]: skipped and yielded as *[SkippedError]
//   - [WithPedantic]: fatal, the sequence ends with the error
//
// I/O errors and context cancellation are always fatal.
package q3log
