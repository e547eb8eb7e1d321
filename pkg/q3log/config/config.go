// Package config loads q3log run profiles.
//
// A run profile is a YAML file holding the settings a server operator would
// otherwise repeat on every command line:
//
//	version: 1
//	strictness:
//	  pedantic: false
//	  verbose: true
//	input:
//	  log_file: /srv/q3/baseq3/games.log
//	  max_line_bytes: 65536
//	  passthrough_unknown: true
//	report:
//	  format: json
//	  extended: true
//	  flush_open: false
//	follow:
//	  from_start: true
//	  poll: false
//	  warn_rate: 1
//	  warn_burst: 5
//
// Command-line flags override profile values.
package config

import (
	"github.com/q3log/q3log-go/pkg/q3log"
	"github.com/q3log/q3log-go/pkg/q3log/policy"
)

// Report formats.
const (
	FormatJSON   = "json"
	FormatJSONL  = "jsonl"
	FormatPretty = "pretty"
)

// Profile is a parsed run profile.
type Profile struct {
	// Version is the profile format version. Only version 1 exists.
	Version int `yaml:"version"`

	Strictness policy.Policy `yaml:"strictness"`
	Input      Input         `yaml:"input"`
	Report     Report        `yaml:"report"`
	Follow     Follow        `yaml:"follow"`
}

// Input describes where lines come from.
type Input struct {
	LogFile            string `yaml:"log_file"`
	MaxLineBytes       int    `yaml:"max_line_bytes"`
	PassthroughUnknown bool   `yaml:"passthrough_unknown"`
}

// Report describes the output.
type Report struct {
	Format   string `yaml:"format"`
	Extended bool   `yaml:"extended"`
	// FlushOpen reports a match left open at end of input as truncated.
	FlushOpen bool `yaml:"flush_open"`
}

// Follow tunes the follow command.
type Follow struct {
	FromStart bool `yaml:"from_start"`
	Poll      bool `yaml:"poll"`
	// WarnRate caps skipped-line warnings per second; 0 disables the cap.
	WarnRate  float64 `yaml:"warn_rate"`
	WarnBurst int     `yaml:"warn_burst"`
}

// Default returns the profile used when no file is given.
func Default() *Profile {
	return &Profile{
		Version: SupportedVersion,
		Input:   Input{MaxLineBytes: q3log.DefaultMaxLineBytes},
		Report:  Report{Format: FormatJSON},
		Follow:  Follow{WarnRate: 1, WarnBurst: 5},
	}
}

// ParseOptions returns the pipeline options the profile describes.
func (p *Profile) ParseOptions() []q3log.ParseOption {
	return []q3log.ParseOption{
		q3log.WithPolicy(p.Strictness),
		q3log.WithMaxLineBytes(p.Input.MaxLineBytes),
		q3log.WithPassthroughUnknown(p.Input.PassthroughUnknown),
		q3log.WithFlushOpenMatch(p.Report.FlushOpen),
	}
}
