package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/q3log/q3log-go/internal/safefile"
	"gopkg.in/yaml.v3"
)

const (
	// MaxProfileSize is the largest run profile accepted (64KB).
	MaxProfileSize = 64 * 1024

	// MaxLineBytesLimit caps input.max_line_bytes (16MB).
	MaxLineBytesLimit = 16 * 1024 * 1024

	// SupportedVersion is the only profile format version.
	SupportedVersion = 1
)

// Load reads and validates the run profile at path. Values missing from the
// file keep their Default.
//
// The file must be a regular file no larger than MaxProfileSize. Error
// messages do not include the path.
func Load(path string) (*Profile, error) {
	data, err := safefile.ReadLimited(path, MaxProfileSize)
	if err != nil {
		return nil, &LoadError{Op: "read", Err: err}
	}
	return LoadBytes(data)
}

// LoadBytes parses and validates a run profile. Unknown keys are rejected.
func LoadBytes(data []byte) (*Profile, error) {
	if len(data) == 0 {
		return nil, &LoadError{Op: "parse", Err: errors.New("profile is empty")}
	}
	if len(data) > MaxProfileSize {
		return nil, &LoadError{Op: "parse", Err: fmt.Errorf("profile too large: %d bytes (max %d)", len(data), MaxProfileSize)}
	}

	p := Default()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(p); err != nil && !errors.Is(err, io.EOF) {
		return nil, &LoadError{Op: "parse", Err: err}
	}

	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}

// Validate checks every field against its allowed range.
func (p *Profile) Validate() error {
	if p.Version != SupportedVersion {
		return &ValidationError{
			Field:   "version",
			Message: fmt.Sprintf("unsupported version %d (only version %d is supported)", p.Version, SupportedVersion),
		}
	}

	switch p.Report.Format {
	case FormatJSON, FormatJSONL, FormatPretty:
	default:
		return &ValidationError{
			Field:   "report.format",
			Message: fmt.Sprintf("unknown format %q (want %s, %s or %s)", p.Report.Format, FormatJSON, FormatJSONL, FormatPretty),
		}
	}

	if p.Input.MaxLineBytes <= 0 || p.Input.MaxLineBytes > MaxLineBytesLimit {
		return &ValidationError{
			Field:   "input.max_line_bytes",
			Message: fmt.Sprintf("must be between 1 and %d, got %d", MaxLineBytesLimit, p.Input.MaxLineBytes),
		}
	}

	if p.Follow.WarnRate < 0 {
		return &ValidationError{
			Field:   "follow.warn_rate",
			Message: fmt.Sprintf("must be non-negative, got %v", p.Follow.WarnRate),
		}
	}
	if p.Follow.WarnRate > 0 && p.Follow.WarnBurst < 1 {
		return &ValidationError{
			Field:   "follow.warn_burst",
			Message: "must be at least 1 when warn_rate is set",
		}
	}

	return nil
}
